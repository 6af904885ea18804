package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ninja813/NFT-marketplace/internal/models"
	"github.com/ninja813/NFT-marketplace/internal/store"
	"github.com/sirupsen/logrus"
)

// UserService handles profile reads and updates
type UserService struct {
	users  UserStore
	market *MarketplaceService
	log    logrus.FieldLogger
}

// NewUserService creates a new UserService
func NewUserService(stores Stores, market *MarketplaceService, log logrus.FieldLogger) *UserService {
	return &UserService{
		users:  stores.Users,
		market: market,
		log:    log,
	}
}

// Me returns the full account of the signed-in user
func (s *UserService) Me(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, fail(ErrUnauthenticated, "Unauthorized")
	}
	return user, nil
}

// Profile returns the public view of a user
func (s *UserService) Profile(ctx context.Context, id string) (*models.PublicUser, error) {
	if !validID(id) {
		return nil, fail(ErrNotFound, "Not found")
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, fail(ErrNotFound, "Not found")
	}
	return user.Public(), nil
}

// UpdateProfile changes the bio and/or username of the signed-in user
func (s *UserService) UpdateProfile(ctx context.Context, id string, upd models.ProfileUpdate) (*models.User, error) {
	if upd.Empty() {
		return nil, fail(ErrValidation, "No changes provided.")
	}
	if upd.Bio != nil && runeLen(*upd.Bio) > 1000 {
		return nil, fail(ErrValidation, "bio must be at most 1000 characters")
	}
	if upd.Username != nil {
		name := strings.TrimSpace(*upd.Username)
		if n := runeLen(name); n < 3 || n > 30 {
			return nil, fail(ErrValidation, "username must be 3 to 30 characters")
		}
		upd.Username = &name
	}

	user, err := s.users.UpdateProfile(ctx, id, upd)
	if err != nil {
		var dup *store.DuplicateError
		if errors.As(err, &dup) {
			return nil, &ConflictError{Field: dup.Field}
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if user == nil {
		return nil, fail(ErrNotFound, "User not found.")
	}

	// Catalog pages and details embed creator and owner names
	if upd.Username != nil && s.market != nil {
		s.market.invalidate(ctx)
	}

	s.log.WithField("user_id", id).Info("Profile updated")
	return user, nil
}

// OwnedNFTs returns a catalog page pinned to the NFTs a user owns
func (s *UserService) OwnedNFTs(ctx context.Context, id string, q models.NFTQuery) (*models.NFTListResponse, error) {
	if _, err := s.Profile(ctx, id); err != nil {
		return nil, err
	}
	q.OwnerID = id
	return s.market.Catalog(ctx, q)
}
