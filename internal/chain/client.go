// Package chain implements the value-transfer rail on an Ethereum
// compatible network. The ledger's operator account holds the escrowed
// funds; disbursements are plain native-value transactions signed with
// the operator key.
package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/tanishkhot/mayhouse-sub002/internal/domain"
)

const transferGasLimit = 21000

type Config struct {
	RPCURL        string
	PrivateKey    string
	ChainID       int64
	Confirmations uint64
}

type Client struct {
	client        *ethclient.Client
	privateKey    *ecdsa.PrivateKey
	from          common.Address
	chainID       *big.Int
	confirmations uint64
}

func Dial(ctx context.Context, cfg Config) (*Client, error) {
	const op = "chain.Dial"

	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("%s: invalid private key: %w", op, err)
	}

	chainID := big.NewInt(cfg.ChainID)
	if cfg.ChainID == 0 {
		chainID, err = client.ChainID(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
	}

	return &Client{
		client:        client,
		privateKey:    privateKey,
		from:          crypto.PubkeyToAddress(privateKey.PublicKey),
		chainID:       chainID,
		confirmations: cfg.Confirmations,
	}, nil
}

// Push sends amount (smallest units) to the recipient and returns the
// transaction hash. The transaction is only submitted here; settlement
// does not wait for inclusion, the confirmation tracker follows up.
func (c *Client) Push(ctx context.Context, to domain.Address, amount int64) (string, error) {
	const op = "chain.Client.Push"

	nonce, err := c.client.PendingNonceAt(ctx, c.from)
	if err != nil {
		return "", fmt.Errorf("%s:%w", op, err)
	}

	gasPrice, err := c.client.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("%s:%w", op, err)
	}

	tx := types.NewTransaction(
		nonce,
		common.HexToAddress(to.String()),
		big.NewInt(amount),
		transferGasLimit,
		gasPrice,
		nil,
	)

	signed, err := types.SignTx(tx, types.NewEIP155Signer(c.chainID), c.privateKey)
	if err != nil {
		return "", fmt.Errorf("%s:%w", op, err)
	}

	if err := c.client.SendTransaction(ctx, signed); err != nil {
		return "", fmt.Errorf("%s:%w", op, err)
	}

	return signed.Hash().Hex(), nil
}

// IsConfirmed reports whether the transaction succeeded and has the
// configured number of confirmations.
func (c *Client) IsConfirmed(ctx context.Context, txHash string) (bool, error) {
	const op = "chain.Client.IsConfirmed"

	receipt, err := c.client.TransactionReceipt(ctx, common.HexToHash(txHash))
	if errors.Is(err, ethereum.NotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s:%w", op, err)
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return false, fmt.Errorf("%s: transaction %s reverted", op, txHash)
	}

	header, err := c.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("%s:%w", op, err)
	}

	return header.Number.Uint64() >= receipt.BlockNumber.Uint64()+c.confirmations, nil
}

// OperatorAddress is the account the escrowed funds are held on.
func (c *Client) OperatorAddress() domain.Address {
	return domain.Address(strings.ToLower(c.from.Hex()))
}
