package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/AdvythVaman05/TradeCraft-Platform/internal/models"
)

// AccountRepository is the time-credit ledger. Balances live on the
// users table and are only mutated here, through conditional updates.
type AccountRepository interface {
	GetBalance(ctx context.Context, userID uint64) (decimal.Decimal, error)
	Transfer(ctx context.Context, fromID, toID uint64, amount decimal.Decimal) error
}

type accountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) GetBalance(ctx context.Context, userID uint64) (decimal.Decimal, error) {
	query := `
		SELECT time_credits
		FROM users
		WHERE id = ?
	`

	var raw string
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&raw)
	if err == sql.ErrNoRows {
		return decimal.Zero, models.ErrNotFound
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get balance: %w", err)
	}

	balance, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse balance: %w", err)
	}

	return balance, nil
}

// Transfer moves amount from one account to another. Both legs run in
// one database transaction; the debit is conditional on the current
// stored balance so concurrent spenders cannot overdraw.
func (r *accountRepository) Transfer(ctx context.Context, fromID, toID uint64, amount decimal.Decimal) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := transferTimeCredits(ctx, tx, fromID, toID, amount); err != nil {
		return err
	}

	return tx.Commit()
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// transferTimeCredits performs the two ledger legs against the given
// executor. The debit is a single conditional update; zero affected
// rows means the balance was insufficient at execution time.
func transferTimeCredits(ctx context.Context, ex execer, fromID, toID uint64, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return models.ErrInvalidAmount
	}

	debit := `
		UPDATE users
		SET time_credits = time_credits - ?, updated_at = ?
		WHERE id = ? AND time_credits >= ?
	`

	result, err := ex.ExecContext(ctx, debit, amount.String(), time.Now(), fromID, amount.String())
	if err != nil {
		return fmt.Errorf("failed to deduct balance: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return models.ErrInsufficientBalance
	}

	credit := `
		UPDATE users
		SET time_credits = time_credits + ?, updated_at = ?
		WHERE id = ?
	`

	result, err = ex.ExecContext(ctx, credit, amount.String(), time.Now(), toID)
	if err != nil {
		return fmt.Errorf("failed to add balance: %w", err)
	}

	rowsAffected, err = result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("credit account %d not found", toID)
	}

	return nil
}
