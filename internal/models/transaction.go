package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod represents how a transaction is settled.
type PaymentMethod string

const (
	MethodTimeCredit PaymentMethod = "TC"
	MethodUPI        PaymentMethod = "UPI"
	MethodExchange   PaymentMethod = "EXCHANGE"
)

// Valid reports whether the method is one the engine knows.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodTimeCredit, MethodUPI, MethodExchange:
		return true
	}
	return false
}

// MovesCredits reports whether verification transfers time credits.
// Only TC moves value inside the system; UPI settles off-system and
// EXCHANGE is a barter agreement the engine merely records.
func (m PaymentMethod) MovesCredits() bool {
	return m == MethodTimeCredit
}

// RequiresReference reports whether the buyer must attach an external
// payment reference before the seller can verify.
func (m PaymentMethod) RequiresReference() bool {
	return m == MethodUPI
}

// SettlementStatus is the transaction lifecycle state. PENDING is the
// only non-terminal state; VERIFIED and REJECTED are final.
type SettlementStatus string

const (
	StatusPending  SettlementStatus = "PENDING"
	StatusVerified SettlementStatus = "VERIFIED"
	StatusRejected SettlementStatus = "REJECTED"
)

// Terminal reports whether no further transition is allowed.
func (s SettlementStatus) Terminal() bool {
	return s == StatusVerified || s == StatusRejected
}

// CanTransitionTo reports whether s -> next is a legal transition.
func (s SettlementStatus) CanTransitionTo(next SettlementStatus) bool {
	if s != StatusPending {
		return false
	}
	return next == StatusVerified || next == StatusRejected
}

// Transaction is one buy attempt against a listing. PaymentMethod and
// TCAmount are fixed at creation; BuyerTxnID is write-once; Status only
// moves PENDING -> VERIFIED or PENDING -> REJECTED through the
// repository's compare-and-set.
type Transaction struct {
	ID            string           `db:"id"` // VARCHAR PK like TRX-20260830-A1B2C3
	BuyerID       uint64           `db:"buyer_id"`
	SellerID      uint64           `db:"seller_id"`
	ListingID     uint64           `db:"listing_id"`
	PaymentMethod PaymentMethod    `db:"payment_method"`
	TCAmount      *decimal.Decimal `db:"tc_amount"`
	BuyerTxnID    *string          `db:"buyer_txn_id"`
	Status        SettlementStatus `db:"status"`
	VerifiedAt    *time.Time       `db:"verified_at"`
	RejectedAt    *time.Time       `db:"rejected_at"`
	CreatedAt     time.Time        `db:"created_at"`
	UpdatedAt     time.Time        `db:"updated_at"`
}
