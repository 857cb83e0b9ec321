package httpgin

import (
	"time"

	"github.com/tanishkhot/mayhouse-sub002/internal/domain"
)

type CreateBookingRequest struct {
	EventRunRef string `json:"event_run_ref" binding:"required"`
	Host        string `json:"host" binding:"required"`
	Amount      int64  `json:"amount" binding:"required,gt=0"`
}

type CreateBookingResponse struct {
	BookingID   int64  `json:"booking_id"`
	EventRunRef string `json:"event_run_ref"`
	PriceAmount int64  `json:"price_amount"`
	StakeAmount int64  `json:"stake_amount"`
}

type BookingResponse struct {
	ID          int64      `json:"id"`
	EventRunRef string     `json:"event_run_ref"`
	Traveler    string     `json:"traveler"`
	Host        string     `json:"host"`
	GrossAmount int64      `json:"gross_amount"`
	PriceAmount int64      `json:"price_amount"`
	StakeAmount int64      `json:"stake_amount"`
	StakePct    int        `json:"stake_pct"`
	FeePct      int        `json:"fee_pct"`
	Status      string     `json:"status"`
	Outcome     *string    `json:"outcome,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	SettledAt   *time.Time `json:"settled_at,omitempty"`
}

func toBookingResponse(b *domain.Booking) BookingResponse {
	resp := BookingResponse{
		ID:          b.ID,
		EventRunRef: b.EventRunRef,
		Traveler:    b.Traveler.String(),
		Host:        b.Host.String(),
		GrossAmount: b.GrossAmount,
		PriceAmount: b.PriceAmount,
		StakeAmount: b.StakeAmount,
		StakePct:    b.StakePct,
		FeePct:      b.FeePct,
		Status:      string(b.Status),
		CreatedAt:   b.CreatedAt,
		SettledAt:   b.SettledAt,
	}
	if b.Outcome != nil {
		o := string(*b.Outcome)
		resp.Outcome = &o
	}
	return resp
}

type SettlementResponse struct {
	BookingID      int64  `json:"booking_id"`
	Outcome        string `json:"outcome,omitempty"`
	HostPayout     int64  `json:"host_payout"`
	TravelerPayout int64  `json:"traveler_payout"`
	PlatformFee    int64  `json:"platform_fee"`
}

func toSettlementResponse(s *domain.Settlement) SettlementResponse {
	resp := SettlementResponse{
		BookingID:      s.BookingID,
		HostPayout:     s.HostPayout,
		TravelerPayout: s.TravelerPayout,
		PlatformFee:    s.PlatformFee,
	}
	if s.Outcome != nil {
		resp.Outcome = string(*s.Outcome)
	}
	return resp
}

type CancelBookingResponse struct {
	BookingID    int64 `json:"booking_id"`
	RefundAmount int64 `json:"refund_amount"`
}

type PlatformConfigResponse struct {
	Owner    string `json:"owner"`
	Wallet   string `json:"wallet"`
	FeePct   int    `json:"fee_pct"`
	StakePct int    `json:"stake_pct"`
	Version  int64  `json:"version"`
}

type CreditBalanceResponse struct {
	Address string `json:"address"`
	Balance int64  `json:"balance"`
}

type WithdrawRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

type WithdrawResponse struct {
	TxHash string `json:"tx_hash"`
}

type UpdateWalletRequest struct {
	Wallet string `json:"wallet" binding:"required"`
}

type UpdatePercentageRequest struct {
	Pct *int `json:"pct" binding:"required"`
}

type TransferOwnershipRequest struct {
	NewOwner string `json:"new_owner" binding:"required"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
