package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/AdvythVaman05/TradeCraft-Platform/internal/models"
	"github.com/AdvythVaman05/TradeCraft-Platform/internal/repository"
)

type ListingService interface {
	CreateListing(ctx context.Context, providerID uint64, title, description, location string, priceRupees, priceTimeCredits *decimal.Decimal) (*models.ListingDTO, error)
	GetListing(ctx context.Context, id uint64) (*models.ListingDTO, error)
	ListListings(ctx context.Context) ([]*models.ListingDTO, error)
}

type listingService struct {
	listingRepo repository.ListingRepository
	userRepo    repository.UserRepository
}

func NewListingService(listingRepo repository.ListingRepository, userRepo repository.UserRepository) ListingService {
	return &listingService{
		listingRepo: listingRepo,
		userRepo:    userRepo,
	}
}

func (s *listingService) CreateListing(ctx context.Context, providerID uint64, title, description, location string, priceRupees, priceTimeCredits *decimal.Decimal) (*models.ListingDTO, error) {
	listing := &models.SkillListing{
		ProviderID:       providerID,
		Title:            title,
		Description:      description,
		Location:         location,
		PriceRupees:      priceRupees,
		PriceTimeCredits: priceTimeCredits,
		CreatedAt:        time.Now(),
	}

	if err := s.listingRepo.Create(ctx, listing); err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	return s.listingToDTO(ctx, listing), nil
}

func (s *listingService) GetListing(ctx context.Context, id uint64) (*models.ListingDTO, error) {
	listing, err := s.listingRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.listingToDTO(ctx, listing), nil
}

func (s *listingService) ListListings(ctx context.Context) ([]*models.ListingDTO, error) {
	listings, err := s.listingRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}

	dtos := make([]*models.ListingDTO, len(listings))
	for i, listing := range listings {
		dtos[i] = s.listingToDTO(ctx, listing)
	}

	return dtos, nil
}

func (s *listingService) listingToDTO(ctx context.Context, listing *models.SkillListing) *models.ListingDTO {
	dto := &models.ListingDTO{
		ID:          listing.ID,
		ProviderID:  listing.ProviderID,
		Title:       listing.Title,
		Description: listing.Description,
		Location:    listing.Location,
		CreatedAt:   listing.CreatedAt.Format(time.RFC3339),
	}

	if listing.PriceRupees != nil {
		price := listing.PriceRupees.StringFixed(2)
		dto.PriceRupees = &price
	}

	if listing.PriceTimeCredits != nil {
		price := listing.PriceTimeCredits.StringFixed(2)
		dto.PriceTimeCredits = &price
	}

	// Provider name is display-only; a missing provider never fails the
	// listing response.
	if provider, err := s.userRepo.FindByID(ctx, listing.ProviderID); err == nil {
		dto.ProviderName = provider.Username
	}

	return dto
}
