package service

import (
	"context"
	"fmt"

	"github.com/AdvythVaman05/TradeCraft-Platform/internal/models"
	"github.com/AdvythVaman05/TradeCraft-Platform/internal/repository"
)

// ProfileUpdate carries the editable profile fields. Nil means leave
// the field unchanged.
type ProfileUpdate struct {
	Phone *string
	Bio   *string
	UPIID *string
}

type UserService interface {
	GetProfile(ctx context.Context, userID uint64) (*models.UserDTO, error)
	UpdateProfile(ctx context.Context, userID uint64, update ProfileUpdate) (*models.UserDTO, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{
		userRepo: userRepo,
	}
}

func (s *userService) GetProfile(ctx context.Context, userID uint64) (*models.UserDTO, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.userToDTO(ctx, user)
}

func (s *userService) UpdateProfile(ctx context.Context, userID uint64, update ProfileUpdate) (*models.UserDTO, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Phone != nil {
		user.Phone = update.Phone
	}
	if update.Bio != nil {
		user.Bio = *update.Bio
	}
	if update.UPIID != nil {
		user.UPIID = update.UPIID
	}

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return s.userToDTO(ctx, user)
}

func (s *userService) userToDTO(ctx context.Context, user *models.User) (*models.UserDTO, error) {
	boughtListings, err := s.userRepo.FindVerifiedListingIDs(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bought listings: %w", err)
	}

	return &models.UserDTO{
		ID:             user.ID,
		Username:       user.Username,
		Email:          user.Email,
		Phone:          user.Phone,
		Bio:            user.Bio,
		UPIID:          user.UPIID,
		TimeCredits:    user.TimeCredits.StringFixed(2),
		BoughtListings: boughtListings,
	}, nil
}
