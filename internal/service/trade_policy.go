package service

import (
	"context"
	"fmt"

	"github.com/AdvythVaman05/TradeCraft-Platform/internal/models"
	"github.com/AdvythVaman05/TradeCraft-Platform/internal/repository"
)

// TradePolicy holds the purchase guards checked before a transaction
// record is created.
type TradePolicy interface {
	CheckPurchase(ctx context.Context, buyerID uint64, listing *models.SkillListing) error
}

type tradePolicy struct {
	transactionRepo repository.TransactionRepository
}

func NewTradePolicy(transactionRepo repository.TransactionRepository) TradePolicy {
	return &tradePolicy{
		transactionRepo: transactionRepo,
	}
}

// CheckPurchase rejects self-trades and duplicate completed purchases.
// A buyer may retry a listing while earlier attempts are PENDING or
// REJECTED; only a VERIFIED purchase blocks a new one.
func (p *tradePolicy) CheckPurchase(ctx context.Context, buyerID uint64, listing *models.SkillListing) error {
	if buyerID == listing.ProviderID {
		return models.ErrSelfTrade
	}

	purchased, err := p.transactionRepo.HasVerifiedPurchase(ctx, buyerID, listing.ID)
	if err != nil {
		return fmt.Errorf("failed to check purchase history: %w", err)
	}
	if purchased {
		return models.ErrDuplicatePurchase
	}

	return nil
}
