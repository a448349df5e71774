package models

// TransactionDTO is the client-facing view of a transaction.
type TransactionDTO struct {
	ID            string  `json:"id"`
	BuyerID       uint64  `json:"buyer_id"`
	SellerID      uint64  `json:"seller_id"`
	ListingID     uint64  `json:"listing_id"`
	PaymentMethod string  `json:"payment_method"`
	TCAmount      *string `json:"tc_amount,omitempty"`
	BuyerTxnID    *string `json:"buyer_txn_id,omitempty"`
	Status        string  `json:"status"`
	VerifiedAt    *string `json:"verified_at,omitempty"`
	RejectedAt    *string `json:"rejected_at,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

// ListingDTO is the client-facing view of a skill listing.
type ListingDTO struct {
	ID               uint64  `json:"id"`
	ProviderID       uint64  `json:"provider_id"`
	ProviderName     string  `json:"provider_name,omitempty"`
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	Location         string  `json:"location,omitempty"`
	PriceRupees      *string `json:"price_rupees,omitempty"`
	PriceTimeCredits *string `json:"price_timecredits,omitempty"`
	CreatedAt        string  `json:"created_at"`
}

// UserDTO is the profile view. BoughtListings carries the listing ids
// the user holds a VERIFIED purchase for.
type UserDTO struct {
	ID             uint64   `json:"id"`
	Username       string   `json:"username"`
	Email          string   `json:"email"`
	Phone          *string  `json:"phone,omitempty"`
	Bio            string   `json:"bio"`
	UPIID          *string  `json:"upi_id,omitempty"`
	TimeCredits    string   `json:"time_credits"`
	BoughtListings []uint64 `json:"bought_listings"`
}

// ChatMessageDTO is one message in a thread.
type ChatMessageDTO struct {
	ID        uint64  `json:"id"`
	SenderID  *uint64 `json:"sender_id,omitempty"`
	Content   string  `json:"content"`
	CreatedAt string  `json:"created_at"`
}

// BuyerDTO is one row of the seller's buyers view.
type BuyerDTO struct {
	BuyerID       uint64 `json:"buyer_id"`
	BuyerName     string `json:"buyer_name"`
	ListingID     uint64 `json:"listing_id"`
	ListingTitle  string `json:"listing_title"`
	TransactionID string `json:"transaction_id"`
	VerifiedAt    string `json:"verified_at"`
}
