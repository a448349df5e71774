package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/AdvythVaman05/TradeCraft-Platform/internal/models"
)

// ErrNotPending is returned when a settlement compare-and-set affects
// zero rows: another request already moved the transaction out of
// PENDING. Callers re-read to learn which terminal state won.
var ErrNotPending = errors.New("transaction is no longer pending")

type TransactionRepository interface {
	Create(ctx context.Context, txn *models.Transaction) error
	FindByID(ctx context.Context, id string) (*models.Transaction, error)
	FindByUserID(ctx context.Context, userID uint64) ([]*models.Transaction, error)
	HasVerifiedPurchase(ctx context.Context, buyerID, listingID uint64) (bool, error)
	SetPaymentReference(ctx context.Context, id, reference string) error
	Verify(ctx context.Context, id string, verifiedAt time.Time) error
	VerifyWithTransfer(ctx context.Context, id string, buyerID, sellerID uint64, amount decimal.Decimal, verifiedAt time.Time) error
	Reject(ctx context.Context, id string, rejectedAt time.Time) error
	FindVerifiedBuyers(ctx context.Context, sellerID uint64) ([]*models.BuyerDTO, error)
}

type transactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, txn *models.Transaction) error {
	query := `
		INSERT INTO transactions (id, buyer_id, seller_id, listing_id, payment_method, tc_amount, buyer_txn_id, status, verified_at, rejected_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var tcAmount *string
	if txn.TCAmount != nil {
		s := txn.TCAmount.String()
		tcAmount = &s
	}

	_, err := r.db.ExecContext(ctx, query,
		txn.ID, txn.BuyerID, txn.SellerID, txn.ListingID, string(txn.PaymentMethod),
		tcAmount, txn.BuyerTxnID, string(txn.Status), txn.VerifiedAt, txn.RejectedAt,
		time.Now(), time.Now())
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

func (r *transactionRepository) FindByID(ctx context.Context, id string) (*models.Transaction, error) {
	query := `
		SELECT id, buyer_id, seller_id, listing_id, payment_method, tc_amount, buyer_txn_id, status, verified_at, rejected_at, created_at, updated_at
		FROM transactions
		WHERE id = ?
	`

	txn, err := scanTransaction(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction: %w", err)
	}

	return txn, nil
}

func (r *transactionRepository) FindByUserID(ctx context.Context, userID uint64) ([]*models.Transaction, error) {
	query := `
		SELECT id, buyer_id, seller_id, listing_id, payment_method, tc_amount, buyer_txn_id, status, verified_at, rejected_at, created_at, updated_at
		FROM transactions
		WHERE buyer_id = ? OR seller_id = ?
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, txn)
	}

	return transactions, rows.Err()
}

func (r *transactionRepository) HasVerifiedPurchase(ctx context.Context, buyerID, listingID uint64) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM transactions
			WHERE buyer_id = ? AND listing_id = ? AND status = ?
		)
	`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, buyerID, listingID, string(models.StatusVerified)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check verified purchase: %w", err)
	}

	return exists, nil
}

// SetPaymentReference writes the buyer's external payment reference.
// The WHERE clause makes the field write-once: a second submission
// affects zero rows.
func (r *transactionRepository) SetPaymentReference(ctx context.Context, id, reference string) error {
	query := `
		UPDATE transactions
		SET buyer_txn_id = ?, updated_at = ?
		WHERE id = ? AND buyer_txn_id IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, reference, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set payment reference: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return models.ErrReferenceAlreadySet
	}

	return nil
}

// Verify flips PENDING -> VERIFIED via compare-and-set. Used for
// payment methods that move no credits (UPI, EXCHANGE).
func (r *transactionRepository) Verify(ctx context.Context, id string, verifiedAt time.Time) error {
	result, err := r.db.ExecContext(ctx, casVerifyQuery,
		string(models.StatusVerified), verifiedAt, time.Now(), id, string(models.StatusPending))
	if err != nil {
		return fmt.Errorf("failed to verify transaction: %w", err)
	}

	return checkSettled(result)
}

// VerifyWithTransfer flips PENDING -> VERIFIED and moves the time
// credits in a single database transaction. If the conditional debit
// fails the status flip rolls back with it, so a failed transfer never
// advances the transaction.
func (r *transactionRepository) VerifyWithTransfer(ctx context.Context, id string, buyerID, sellerID uint64, amount decimal.Decimal, verifiedAt time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, casVerifyQuery,
		string(models.StatusVerified), verifiedAt, time.Now(), id, string(models.StatusPending))
	if err != nil {
		return fmt.Errorf("failed to verify transaction: %w", err)
	}

	if err := checkSettled(result); err != nil {
		return err
	}

	if err := transferTimeCredits(ctx, tx, buyerID, sellerID, amount); err != nil {
		return err
	}

	return tx.Commit()
}

// Reject flips PENDING -> REJECTED via compare-and-set. No ledger
// movement: funds were never moved at creation, so there is nothing to
// reverse.
func (r *transactionRepository) Reject(ctx context.Context, id string, rejectedAt time.Time) error {
	query := `
		UPDATE transactions
		SET status = ?, rejected_at = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		string(models.StatusRejected), rejectedAt, time.Now(), id, string(models.StatusPending))
	if err != nil {
		return fmt.Errorf("failed to reject transaction: %w", err)
	}

	return checkSettled(result)
}

func (r *transactionRepository) FindVerifiedBuyers(ctx context.Context, sellerID uint64) ([]*models.BuyerDTO, error) {
	query := `
		SELECT t.buyer_id, u.username, t.listing_id, l.title, t.id, t.verified_at
		FROM transactions t
		JOIN users u ON u.id = t.buyer_id
		JOIN listings l ON l.id = t.listing_id
		WHERE t.seller_id = ? AND t.status = ?
		ORDER BY t.verified_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, sellerID, string(models.StatusVerified))
	if err != nil {
		return nil, fmt.Errorf("failed to list buyers: %w", err)
	}
	defer rows.Close()

	var buyers []*models.BuyerDTO
	for rows.Next() {
		buyer := &models.BuyerDTO{}
		var verifiedAt time.Time
		if err := rows.Scan(&buyer.BuyerID, &buyer.BuyerName, &buyer.ListingID, &buyer.ListingTitle, &buyer.TransactionID, &verifiedAt); err != nil {
			return nil, fmt.Errorf("failed to scan buyer: %w", err)
		}
		buyer.VerifiedAt = verifiedAt.Format(time.RFC3339)
		buyers = append(buyers, buyer)
	}

	return buyers, rows.Err()
}

const casVerifyQuery = `
	UPDATE transactions
	SET status = ?, verified_at = ?, updated_at = ?
	WHERE id = ? AND status = ?
`

// checkSettled maps a zero-row compare-and-set to ErrNotPending.
func checkSettled(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotPending
	}

	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	txn := &models.Transaction{}

	var method, status string
	var tcAmount sql.NullString

	err := row.Scan(
		&txn.ID, &txn.BuyerID, &txn.SellerID, &txn.ListingID, &method,
		&tcAmount, &txn.BuyerTxnID, &status, &txn.VerifiedAt, &txn.RejectedAt,
		&txn.CreatedAt, &txn.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	txn.PaymentMethod = models.PaymentMethod(method)
	txn.Status = models.SettlementStatus(status)

	if tcAmount.Valid {
		amount, err := decimal.NewFromString(tcAmount.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse tc_amount: %w", err)
		}
		txn.TCAmount = &amount
	}

	return txn, nil
}
