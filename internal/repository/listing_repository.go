package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/AdvythVaman05/TradeCraft-Platform/internal/models"
)

// ListingRepository is the listing catalog. The settlement engine only
// reads from it; writes come from the listing endpoints.
type ListingRepository interface {
	Create(ctx context.Context, listing *models.SkillListing) error
	FindByID(ctx context.Context, id uint64) (*models.SkillListing, error)
	FindAll(ctx context.Context) ([]*models.SkillListing, error)
}

type listingRepository struct {
	db *sql.DB
}

func NewListingRepository(db *sql.DB) ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) Create(ctx context.Context, listing *models.SkillListing) error {
	query := `
		INSERT INTO listings (provider_id, title, description, location, price_rupees, price_timecredits, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		listing.ProviderID, listing.Title, listing.Description, listing.Location,
		decimalPtrString(listing.PriceRupees), decimalPtrString(listing.PriceTimeCredits), time.Now())
	if err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get listing id: %w", err)
	}
	listing.ID = uint64(id)

	return nil
}

func (r *listingRepository) FindByID(ctx context.Context, id uint64) (*models.SkillListing, error) {
	query := `
		SELECT id, provider_id, title, description, location, price_rupees, price_timecredits, created_at
		FROM listings
		WHERE id = ?
	`

	listing, err := scanListing(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find listing: %w", err)
	}

	return listing, nil
}

func (r *listingRepository) FindAll(ctx context.Context) ([]*models.SkillListing, error) {
	query := `
		SELECT id, provider_id, title, description, location, price_rupees, price_timecredits, created_at
		FROM listings
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	defer rows.Close()

	var listings []*models.SkillListing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, listing)
	}

	return listings, rows.Err()
}

func scanListing(row rowScanner) (*models.SkillListing, error) {
	listing := &models.SkillListing{}

	var priceRupees, priceTC sql.NullString

	err := row.Scan(
		&listing.ID, &listing.ProviderID, &listing.Title, &listing.Description,
		&listing.Location, &priceRupees, &priceTC, &listing.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if priceRupees.Valid {
		price, err := decimal.NewFromString(priceRupees.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse price_rupees: %w", err)
		}
		listing.PriceRupees = &price
	}

	if priceTC.Valid {
		price, err := decimal.NewFromString(priceTC.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse price_timecredits: %w", err)
		}
		listing.PriceTimeCredits = &price
	}

	return listing, nil
}

func decimalPtrString(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}
