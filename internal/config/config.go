package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Chain    ChainConfig
	Escrow   EscrowConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type PostgresConfig struct {
	User     string
	Password string
	Name     string
	Host     string
	Port     int
	SSLMode  string
}

type ChainConfig struct {
	RPCURL          string
	PrivateKey      string
	ChainID         int64
	Confirmations   uint64
	ConfirmInterval time.Duration
}

// EscrowConfig seeds the platform configuration row on first start.
// After that the row is owned by the admin operations, not the
// environment.
type EscrowConfig struct {
	Owner    string
	Wallet   string
	FeePct   int
	StakePct int
}

func New() (*Config, error) {
	const op = "config.New"

	_ = godotenv.Load()

	serverHost := getEnv("SERVER_HOST", "localhost")

	serverPort, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid SERVER_PORT: %w", op, err)
	}

	serverCfg := ServerConfig{
		Host: serverHost,
		Port: serverPort,
	}

	postgresHost := getEnv("POSTGRES_HOST", "localhost")

	postgresPort, err := getEnvInt("POSTGRES_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid POSTGRES_PORT: %w", op, err)
	}

	postgresUser := os.Getenv("POSTGRES_USER")
	if postgresUser == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_USER", op)
	}

	postgresPassword := os.Getenv("POSTGRES_PASSWORD")
	if postgresPassword == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_PASSWORD", op)
	}

	postgresDB := os.Getenv("POSTGRES_DB")
	if postgresDB == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_DB", op)
	}

	postgresCfg := PostgresConfig{
		User:     postgresUser,
		Password: postgresPassword,
		Name:     postgresDB,
		Host:     postgresHost,
		Port:     postgresPort,
		SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
	}

	redisCfg := RedisConfig{
		Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	}

	chainRPC := os.Getenv("CHAIN_RPC_URL")
	if chainRPC == "" {
		return nil, fmt.Errorf("%s: missing CHAIN_RPC_URL", op)
	}

	chainKey := os.Getenv("CHAIN_OPERATOR_KEY")
	if chainKey == "" {
		return nil, fmt.Errorf("%s: missing CHAIN_OPERATOR_KEY", op)
	}

	chainID, err := getEnvInt("CHAIN_ID", 0)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid CHAIN_ID: %w", op, err)
	}

	confirmations, err := getEnvInt("CHAIN_CONFIRMATIONS", 3)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid CHAIN_CONFIRMATIONS: %w", op, err)
	}

	confirmIntervalSec, err := getEnvInt("CHAIN_CONFIRM_INTERVAL_SEC", 30)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid CHAIN_CONFIRM_INTERVAL_SEC: %w", op, err)
	}

	chainCfg := ChainConfig{
		RPCURL:          chainRPC,
		PrivateKey:      chainKey,
		ChainID:         int64(chainID),
		Confirmations:   uint64(confirmations),
		ConfirmInterval: time.Duration(confirmIntervalSec) * time.Second,
	}

	escrowOwner := os.Getenv("ESCROW_OWNER")
	if escrowOwner == "" {
		return nil, fmt.Errorf("%s: missing ESCROW_OWNER", op)
	}

	escrowWallet := os.Getenv("ESCROW_PLATFORM_WALLET")
	if escrowWallet == "" {
		return nil, fmt.Errorf("%s: missing ESCROW_PLATFORM_WALLET", op)
	}

	feePct, err := getEnvInt("ESCROW_FEE_PCT", 10)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid ESCROW_FEE_PCT: %w", op, err)
	}

	stakePct, err := getEnvInt("ESCROW_STAKE_PCT", 20)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid ESCROW_STAKE_PCT: %w", op, err)
	}

	escrowCfg := EscrowConfig{
		Owner:    escrowOwner,
		Wallet:   escrowWallet,
		FeePct:   feePct,
		StakePct: stakePct,
	}

	return &Config{
		Server:   serverCfg,
		Postgres: postgresCfg,
		Redis:    redisCfg,
		Chain:    chainCfg,
		Escrow:   escrowCfg,
	}, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}
