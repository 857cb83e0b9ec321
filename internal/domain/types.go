package domain

import "time"

type BookingStatus string

const (
	BookingPaid      BookingStatus = "paid"
	BookingSettled   BookingStatus = "settled"
	BookingCancelled BookingStatus = "cancelled"
)

// Outcome is the attendance result reported by the host. It is recorded
// in the same transaction that settles the booking.
type Outcome string

const (
	OutcomeAttended Outcome = "attended"
	OutcomeNoShow   Outcome = "no_show"
)

// Booking holds funds for one experience booking: the traveler's payment
// plus a refundable stake. EventRunRef is an opaque identifier owned by
// the off-chain backend; the ledger stores and echoes it, nothing more.
//
// GrossAmount, PriceAmount and StakeAmount are fixed at creation:
// PriceAmount + StakeAmount == GrossAmount always. StakePct and FeePct
// are the percentages in effect when the booking was created, so later
// platform config changes never touch an open booking.
type Booking struct {
	ID          int64
	EventRunRef string
	Traveler    Address
	Host        Address
	GrossAmount int64
	PriceAmount int64
	StakeAmount int64
	StakePct    int
	FeePct      int
	Status      BookingStatus
	Outcome     *Outcome
	CreatedAt   time.Time
	SettledAt   *time.Time
}

// Terminal reports whether the booking holds no more value.
func (b *Booking) Terminal() bool {
	return b.Status == BookingSettled || b.Status == BookingCancelled
}

// Settlement is the disbursement of a booking's held funds. The three
// payouts always sum to the booking's gross amount.
type Settlement struct {
	BookingID      int64
	Outcome        *Outcome // nil for a cancellation refund
	HostPayout     int64
	TravelerPayout int64
	PlatformFee    int64
	SettledAt      time.Time
}

// PlatformConfig is the single mutable piece of global state: the
// administrative owner, the platform payout wallet and the two
// percentages applied to new bookings. Version increments on every
// update.
type PlatformConfig struct {
	Owner     Address
	Wallet    Address
	FeePct    int
	StakePct  int
	Version   int64
	UpdatedAt time.Time
}

// TransferMethod records how a disbursement reached its recipient.
type TransferMethod string

const (
	TransferPush   TransferMethod = "push"   // direct value transfer
	TransferCredit TransferMethod = "credit" // fallback internal credit
)

type TransferParty string

const (
	PartyPlatform   TransferParty = "platform"
	PartyHost       TransferParty = "host"
	PartyTraveler   TransferParty = "traveler"
	PartyWithdrawal TransferParty = "withdrawal"
)

// Transfer is one row of the disbursement audit log.
type Transfer struct {
	ID        int64
	BookingID int64
	Party     TransferParty
	Recipient Address
	Amount    int64
	Method    TransferMethod
	TxHash    string
	Confirmed bool
	CreatedAt time.Time
}

type BookingFilter struct {
	Traveler *Address
	Host     *Address
	Limit    int
	Offset   int
}
