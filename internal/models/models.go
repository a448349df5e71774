package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is a marketplace account. TimeCredits is the internal barter
// currency; it is only ever mutated through the account repository's
// atomic transfer.
type User struct {
	ID          uint64          `db:"id"`
	Username    string          `db:"username"`
	Email       string          `db:"email"`
	Phone       *string         `db:"phone"`
	Bio         string          `db:"bio"`
	UPIID       *string         `db:"upi_id"`
	TimeCredits decimal.Decimal `db:"time_credits"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

// SkillListing is a tradable skill/service offer. Either price may be
// absent; a listing only supports the payment methods it carries a price
// for.
type SkillListing struct {
	ID               uint64           `db:"id"`
	ProviderID       uint64           `db:"provider_id"`
	Title            string           `db:"title"`
	Description      string           `db:"description"`
	Location         string           `db:"location"`
	PriceRupees      *decimal.Decimal `db:"price_rupees"`
	PriceTimeCredits *decimal.Decimal `db:"price_timecredits"`
	CreatedAt        time.Time        `db:"created_at"`
}

// SupportsTimeCredits reports whether the listing can be bought with
// time credits.
func (l *SkillListing) SupportsTimeCredits() bool {
	return l.PriceTimeCredits != nil
}

// ChatRoom is a conversation thread, resolved per listing or per
// transaction by room name.
type ChatRoom struct {
	ID        uint64    `db:"id"`
	RoomName  string    `db:"room_name"`
	ListingID *uint64   `db:"listing_id"`
	CreatedAt time.Time `db:"created_at"`
}

type ChatMessage struct {
	ID        uint64    `db:"id"`
	RoomID    uint64    `db:"room_id"`
	SenderID  *uint64   `db:"sender_id"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}
