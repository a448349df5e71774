package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/AdvythVaman05/TradeCraft-Platform/internal/models"
	"github.com/AdvythVaman05/TradeCraft-Platform/internal/repository"
	"github.com/AdvythVaman05/TradeCraft-Platform/pkg/helpers"
	"github.com/AdvythVaman05/TradeCraft-Platform/pkg/logger"
)

// Notifier receives settlement events for display purposes. Delivery is
// best-effort and never gates the settlement outcome.
type Notifier interface {
	TransactionEvent(ctx context.Context, txn *models.Transaction, event string) error
}

type SettlementService interface {
	CreateTransaction(ctx context.Context, buyerID, listingID uint64, method models.PaymentMethod) (*models.Transaction, error)
	SubmitPaymentReference(ctx context.Context, transactionID string, actorID uint64, reference string) (*models.Transaction, error)
	Verify(ctx context.Context, transactionID string, actorID uint64) (*models.Transaction, error)
	Reject(ctx context.Context, transactionID string, actorID uint64) (*models.Transaction, error)
	GetBalance(ctx context.Context, userID uint64) (decimal.Decimal, error)
	ListTransactions(ctx context.Context, userID uint64) ([]*models.TransactionDTO, error)
	ListBuyers(ctx context.Context, sellerID uint64) ([]*models.BuyerDTO, error)
}

type settlementService struct {
	transactionRepo repository.TransactionRepository
	accountRepo     repository.AccountRepository
	listingRepo     repository.ListingRepository
	policy          TradePolicy
	notifier        Notifier
	idGen           *helpers.IDGenerator
	log             *logger.Logger
}

func NewSettlementService(
	transactionRepo repository.TransactionRepository,
	accountRepo repository.AccountRepository,
	listingRepo repository.ListingRepository,
	policy TradePolicy,
	notifier Notifier,
	idGen *helpers.IDGenerator,
	log *logger.Logger,
) SettlementService {
	return &settlementService{
		transactionRepo: transactionRepo,
		accountRepo:     accountRepo,
		listingRepo:     listingRepo,
		policy:          policy,
		notifier:        notifier,
		idGen:           idGen,
		log:             log,
	}
}

// CreateTransaction records a buy attempt against a listing. The
// time-credit price is snapshotted into the record so later price edits
// never change what an open transaction settles for. No balance moves
// here; the transfer is deferred to the seller's verify.
func (s *settlementService) CreateTransaction(ctx context.Context, buyerID, listingID uint64, method models.PaymentMethod) (*models.Transaction, error) {
	if !method.Valid() {
		return nil, models.ErrUnsupportedMethod
	}

	listing, err := s.listingRepo.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}

	if err := s.policy.CheckPurchase(ctx, buyerID, listing); err != nil {
		return nil, err
	}

	txn := &models.Transaction{
		ID:            s.idGen.GenerateTransactionID(),
		BuyerID:       buyerID,
		SellerID:      listing.ProviderID,
		ListingID:     listing.ID,
		PaymentMethod: method,
		Status:        models.StatusPending,
		CreatedAt:     time.Now(),
	}

	if method.MovesCredits() {
		if !listing.SupportsTimeCredits() {
			return nil, models.ErrUnsupportedMethod
		}
		amount := *listing.PriceTimeCredits
		txn.TCAmount = &amount
	}

	if err := s.transactionRepo.Create(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	s.notifyAsync(txn, "created")

	return txn, nil
}

// SubmitPaymentReference attaches the buyer's external payment id to a
// UPI transaction. The field is write-once.
func (s *settlementService) SubmitPaymentReference(ctx context.Context, transactionID string, actorID uint64, reference string) (*models.Transaction, error) {
	txn, err := s.transactionRepo.FindByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if txn.BuyerID != actorID {
		return nil, models.ErrNotAuthorized
	}

	if !txn.PaymentMethod.RequiresReference() {
		return nil, models.ErrInapplicableMethod
	}

	if txn.BuyerTxnID != nil {
		return nil, models.ErrReferenceAlreadySet
	}

	if err := s.transactionRepo.SetPaymentReference(ctx, txn.ID, reference); err != nil {
		return nil, err
	}

	txn.BuyerTxnID = &reference

	return txn, nil
}

// Verify is the seller's confirmation and the single commit point for
// time-credit value transfer. The status flip and the ledger transfer
// run as one atomic unit; a failed transfer leaves the transaction
// PENDING with balances untouched.
func (s *settlementService) Verify(ctx context.Context, transactionID string, actorID uint64) (*models.Transaction, error) {
	txn, err := s.transactionRepo.FindByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if txn.SellerID != actorID {
		return nil, models.ErrNotAuthorized
	}

	if txn.Status.Terminal() {
		return nil, terminalStateError(txn.Status)
	}

	if txn.PaymentMethod.RequiresReference() && txn.BuyerTxnID == nil {
		return nil, models.ErrMissingReference
	}

	verifiedAt := time.Now()

	if txn.PaymentMethod.MovesCredits() {
		if txn.TCAmount == nil {
			return nil, fmt.Errorf("time credit transaction %s has no amount", txn.ID)
		}
		err = s.transactionRepo.VerifyWithTransfer(ctx, txn.ID, txn.BuyerID, txn.SellerID, *txn.TCAmount, verifiedAt)
	} else {
		err = s.transactionRepo.Verify(ctx, txn.ID, verifiedAt)
	}

	if errors.Is(err, repository.ErrNotPending) {
		return nil, s.settledStateError(ctx, txn.ID)
	}
	if err != nil {
		// ErrInsufficientBalance passes through wrapped; status did not
		// move and no credits moved.
		return nil, fmt.Errorf("failed to verify transaction: %w", err)
	}

	txn.Status = models.StatusVerified
	txn.VerifiedAt = &verifiedAt
	txn.RejectedAt = nil

	s.notifyAsync(txn, "verified")

	return txn, nil
}

// Reject is the seller's refusal. Creation never moved balances, so
// there is nothing to reverse.
func (s *settlementService) Reject(ctx context.Context, transactionID string, actorID uint64) (*models.Transaction, error) {
	txn, err := s.transactionRepo.FindByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if txn.SellerID != actorID {
		return nil, models.ErrNotAuthorized
	}

	if txn.Status.Terminal() {
		return nil, terminalStateError(txn.Status)
	}

	rejectedAt := time.Now()

	err = s.transactionRepo.Reject(ctx, txn.ID, rejectedAt)
	if errors.Is(err, repository.ErrNotPending) {
		return nil, s.settledStateError(ctx, txn.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to reject transaction: %w", err)
	}

	txn.Status = models.StatusRejected
	txn.RejectedAt = &rejectedAt

	s.notifyAsync(txn, "rejected")

	return txn, nil
}

func (s *settlementService) GetBalance(ctx context.Context, userID uint64) (decimal.Decimal, error) {
	return s.accountRepo.GetBalance(ctx, userID)
}

func (s *settlementService) ListTransactions(ctx context.Context, userID uint64) ([]*models.TransactionDTO, error) {
	transactions, err := s.transactionRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	dtos := make([]*models.TransactionDTO, len(transactions))
	for i, txn := range transactions {
		dtos[i] = TransactionToDTO(txn)
	}

	return dtos, nil
}

func (s *settlementService) ListBuyers(ctx context.Context, sellerID uint64) ([]*models.BuyerDTO, error) {
	buyers, err := s.transactionRepo.FindVerifiedBuyers(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list buyers: %w", err)
	}
	return buyers, nil
}

// settledStateError re-reads a transaction that lost a settlement race
// and reports which terminal state won.
func (s *settlementService) settledStateError(ctx context.Context, transactionID string) error {
	current, err := s.transactionRepo.FindByID(ctx, transactionID)
	if err != nil {
		return fmt.Errorf("failed to re-read transaction after conflict: %w", err)
	}
	return terminalStateError(current.Status)
}

func terminalStateError(status models.SettlementStatus) error {
	switch status {
	case models.StatusVerified:
		return models.ErrAlreadyVerified
	case models.StatusRejected:
		return models.ErrAlreadyRejected
	default:
		return fmt.Errorf("transaction in unexpected state %s", status)
	}
}

// notifyAsync emits the settlement event to the chat channel after
// commit. Fire-and-forget: failures are logged and swallowed.
func (s *settlementService) notifyAsync(txn *models.Transaction, event string) {
	if s.notifier == nil {
		return
	}

	snapshot := *txn
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.notifier.TransactionEvent(ctx, &snapshot, event); err != nil {
			s.log.WithField("transaction_id", snapshot.ID).
				WithError(err).
				Warn("failed to emit transaction event")
		}
	}()
}

// TransactionToDTO converts a Transaction to its response form.
func TransactionToDTO(txn *models.Transaction) *models.TransactionDTO {
	dto := &models.TransactionDTO{
		ID:            txn.ID,
		BuyerID:       txn.BuyerID,
		SellerID:      txn.SellerID,
		ListingID:     txn.ListingID,
		PaymentMethod: string(txn.PaymentMethod),
		BuyerTxnID:    txn.BuyerTxnID,
		Status:        string(txn.Status),
		CreatedAt:     txn.CreatedAt.Format(time.RFC3339),
	}

	if txn.TCAmount != nil {
		amount := txn.TCAmount.StringFixed(2)
		dto.TCAmount = &amount
	}

	if txn.VerifiedAt != nil {
		verifiedAt := txn.VerifiedAt.Format(time.RFC3339)
		dto.VerifiedAt = &verifiedAt
	}

	if txn.RejectedAt != nil {
		rejectedAt := txn.RejectedAt.Format(time.RFC3339)
		dto.RejectedAt = &rejectedAt
	}

	return dto
}
