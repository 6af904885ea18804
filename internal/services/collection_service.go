package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/ninja813/NFT-marketplace/internal/config"
	"github.com/ninja813/NFT-marketplace/internal/models"
	"github.com/sirupsen/logrus"
)

// CollectionService handles collection browsing and creation
type CollectionService struct {
	collections CollectionStore
	users       UserStore
	nfts        NFTStore
	cfg         config.MarketConfig
	log         logrus.FieldLogger
}

// NewCollectionService creates a new CollectionService
func NewCollectionService(stores Stores, cfg config.MarketConfig, log logrus.FieldLogger) *CollectionService {
	return &CollectionService{
		collections: stores.Collections,
		users:       stores.Users,
		nfts:        stores.NFTs,
		cfg:         cfg,
		log:         log,
	}
}

// List retrieves a page of collections, newest first
func (s *CollectionService) List(ctx context.Context, params models.CollectionParams) (*models.CollectionListResponse, error) {
	params.Search = strings.TrimSpace(params.Search)
	params.Category = strings.TrimSpace(params.Category)
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit <= 0 {
		params.Limit = s.cfg.DefaultPageSize
	}
	if params.Limit > s.cfg.MaxPageSize {
		params.Limit = s.cfg.MaxPageSize
	}
	params.Page = models.ClampPage(params.Page, params.Limit)

	items, total, err := s.collections.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}

	return &models.CollectionListResponse{
		Items: items,
		Total: total,
		Page:  params.Page,
		Pages: models.TotalPages(total, params.Limit),
	}, nil
}

// Get returns a collection with its creator and newest NFTs
func (s *CollectionService) Get(ctx context.Context, id string) (*models.CollectionDetail, error) {
	if !validID(id) {
		return nil, fail(ErrNotFound, "Not found")
	}
	col, err := s.collections.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load collection: %w", err)
	}
	if col == nil {
		return nil, fail(ErrNotFound, "Not found")
	}

	creator, err := s.users.GetByID(ctx, col.CreatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load creator: %w", err)
	}

	q := models.NFTQuery{CollectionID: col.ID, Sort: models.SortNewest, Limit: s.cfg.CollectionNFTLimit}
	if err := q.Normalize(s.cfg.CollectionNFTLimit, s.cfg.CollectionNFTLimit); err != nil {
		return nil, err
	}
	nfts, _, err := s.nfts.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to load collection NFTs: %w", err)
	}

	return &models.CollectionDetail{
		Collection: col,
		Creator:    creator.Public(),
		NFTs:       nfts,
	}, nil
}

// Create creates a collection owned by creatorID
func (s *CollectionService) Create(ctx context.Context, creatorID string, req models.CreateCollectionRequest) (*models.Collection, error) {
	name := strings.TrimSpace(req.Name)
	if runeLen(name) < 2 {
		return nil, fail(ErrValidation, "name must be at least 2 characters")
	}

	creator, err := s.users.GetByID(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load creator: %w", err)
	}
	if creator == nil {
		return nil, fail(ErrUnauthenticated, "Unauthorized")
	}

	col := &models.Collection{
		Name:        name,
		Description: req.Description,
		CreatorID:   creator.ID,
		Category:    req.Category,
		BannerSeed:  req.BannerSeed,
	}
	if col.BannerSeed == nil || *col.BannerSeed == "" {
		col.BannerSeed = &name
	}
	if err := s.collections.Create(ctx, col); err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"collection_id": col.ID,
		"creator_id":    creator.ID,
	}).Info("Collection created")
	return col, nil
}
