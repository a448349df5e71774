package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/AdvythVaman05/TradeCraft-Platform/internal/models"
)

type UserRepository interface {
	FindByID(ctx context.Context, id uint64) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	FindVerifiedListingIDs(ctx context.Context, buyerID uint64) ([]uint64, error)
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByID(ctx context.Context, id uint64) (*models.User, error) {
	query := `
		SELECT id, username, email, phone, bio, upi_id, time_credits, created_at, updated_at
		FROM users
		WHERE id = ?
	`

	user := &models.User{}
	var timeCredits string

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Username, &user.Email, &user.Phone, &user.Bio,
		&user.UPIID, &timeCredits, &user.CreatedAt, &user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	user.TimeCredits, err = decimal.NewFromString(timeCredits)
	if err != nil {
		return nil, fmt.Errorf("failed to parse time_credits: %w", err)
	}

	return user, nil
}

// UpdateProfile writes the editable profile fields. Balances are
// excluded on purpose; those only move through the account repository.
func (r *userRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET phone = ?, bio = ?, upi_id = ?, updated_at = ?
		WHERE id = ?
	`

	_, err := r.db.ExecContext(ctx, query, user.Phone, user.Bio, user.UPIID, time.Now(), user.ID)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	return nil
}

func (r *userRepository) FindVerifiedListingIDs(ctx context.Context, buyerID uint64) ([]uint64, error) {
	query := `
		SELECT listing_id
		FROM transactions
		WHERE buyer_id = ? AND status = ?
	`

	rows, err := r.db.QueryContext(ctx, query, buyerID, string(models.StatusVerified))
	if err != nil {
		return nil, fmt.Errorf("failed to list bought listings: %w", err)
	}
	defer rows.Close()

	ids := []uint64{}
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan listing id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
