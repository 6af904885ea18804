package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ninja813/NFT-marketplace/internal/cache"
	"github.com/ninja813/NFT-marketplace/internal/config"
	"github.com/ninja813/NFT-marketplace/internal/metrics"
	"github.com/ninja813/NFT-marketplace/internal/models"
	"github.com/ninja813/NFT-marketplace/internal/store"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	catalogVersionKey = "catalog:version"
	// EventSale is broadcast after every completed sale
	EventSale = "sale"
)

func nftCacheKey(version int64, id string) string { return fmt.Sprintf("nft:%d:%s", version, id) }

// MarketplaceService orchestrates mint, list and buy against the catalog,
// the ledger and the transaction log
type MarketplaceService struct {
	users       UserStore
	collections CollectionStore
	nfts        NFTStore
	txs         TransactionStore
	cache       cache.Cache
	hub         Broadcaster
	cfg         config.MarketConfig
	cacheTTL    time.Duration
	log         logrus.FieldLogger
}

// NewMarketplaceService creates a new MarketplaceService. A nil cache or
// broadcaster disables that concern.
func NewMarketplaceService(stores Stores, c cache.Cache, hub Broadcaster, cfg config.MarketConfig, cacheTTL time.Duration, log logrus.FieldLogger) *MarketplaceService {
	if c == nil {
		c = cache.Nop{}
	}
	if hub == nil {
		hub = nopBroadcaster{}
	}
	return &MarketplaceService{
		users:       stores.Users,
		collections: stores.Collections,
		nfts:        stores.NFTs,
		txs:         stores.Transactions,
		cache:       c,
		hub:         hub,
		cfg:         cfg,
		cacheTTL:    cacheTTL,
		log:         log,
	}
}

// Mint creates an NFT owned by its creator and records the mint
func (s *MarketplaceService) Mint(ctx context.Context, creatorID string, req models.MintRequest) (*models.NFT, error) {
	name := strings.TrimSpace(req.Name)
	if runeLen(name) < 2 {
		return nil, fail(ErrValidation, "name must be at least 2 characters")
	}
	if req.Price != nil && !req.Price.IsPositive() {
		return nil, fail(ErrValidation, "price must be a positive number")
	}
	for i, a := range req.Attributes {
		if strings.TrimSpace(a.TraitType) == "" || strings.TrimSpace(a.Value) == "" {
			return nil, fail(ErrValidation, "attribute %d needs trait_type and value", i)
		}
	}

	creator, err := s.users.GetByID(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load creator: %w", err)
	}
	if creator == nil {
		return nil, fail(ErrUnauthenticated, "Unauthorized")
	}

	nft := &models.NFT{
		Name:        name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		ImageSeed:   req.ImageSeed,
		CreatorID:   creator.ID,
		OwnerID:     creator.ID,
		Attributes:  models.Attributes(req.Attributes),
		Price:       req.Price,
		OnSale:      req.Price != nil,
	}
	if nft.ImageSeed == nil || *nft.ImageSeed == "" {
		nft.ImageSeed = &name
	}

	// An unknown collection is dropped rather than rejected
	if req.CollectionID != nil && validID(*req.CollectionID) {
		col, err := s.collections.GetByID(ctx, *req.CollectionID)
		if err != nil {
			return nil, fmt.Errorf("failed to load collection: %w", err)
		}
		if col != nil {
			nft.CollectionID = &col.ID
		}
	}

	if _, err := s.nfts.Mint(ctx, nft); err != nil {
		metrics.RecordOperation("mint", "error")
		return nil, fmt.Errorf("failed to mint NFT: %w", err)
	}
	metrics.RecordOperation("mint", "ok")
	s.invalidate(ctx)

	s.log.WithFields(logrus.Fields{
		"nft_id":     nft.ID,
		"creator_id": creator.ID,
		"on_sale":    nft.OnSale,
	}).Info("NFT minted")

	if stored, err := s.nfts.GetByID(ctx, nft.ID); err == nil && stored != nil {
		return stored, nil
	}
	return nft, nil
}

// List puts an NFT on sale at price. Only the current owner may list.
func (s *MarketplaceService) List(ctx context.Context, nftID, requesterID string, price *decimal.Decimal) (*models.NFT, error) {
	if price == nil || !price.IsPositive() {
		return nil, fail(ErrValidation, "Invalid price")
	}

	nft, err := s.getNFT(ctx, nftID)
	if err != nil {
		return nil, err
	}
	if nft.OwnerID != requesterID {
		return nil, fail(ErrForbidden, "Not owner")
	}

	listed, err := s.nfts.ListForSale(ctx, nft.ID, requesterID, *price)
	if err != nil {
		metrics.RecordOperation("list", "error")
		if errors.Is(err, store.ErrNotOwner) {
			return nil, fail(ErrForbidden, "Not owner")
		}
		return nil, fmt.Errorf("failed to list NFT: %w", err)
	}
	metrics.RecordOperation("list", "ok")
	s.invalidate(ctx)

	s.log.WithFields(logrus.Fields{
		"nft_id":   nft.ID,
		"owner_id": requesterID,
		"price":    price.String(),
	}).Info("NFT listed")

	return listed, nil
}

// Buy transfers a listed NFT to buyerID and moves the price from buyer to seller.
// The transfer is applied by the store as one conditional unit; when two buyers
// race, the loser sees ErrNotForSale.
func (s *MarketplaceService) Buy(ctx context.Context, nftID, buyerID string) error {
	nft, err := s.getNFT(ctx, nftID)
	if err != nil {
		return err
	}
	if !nft.Purchasable() {
		return ErrNotForSale
	}
	if nft.OwnerID == buyerID {
		return ErrAlreadyOwner
	}

	buyer, err := s.users.GetByID(ctx, buyerID)
	if err != nil {
		return fmt.Errorf("failed to load buyer: %w", err)
	}
	if buyer == nil {
		return fail(ErrNotFound, "Not found")
	}
	price := *nft.Price
	if buyer.Balance.LessThan(price) {
		return fail(ErrInsufficientFunds, "Insufficient balance")
	}

	fields := logrus.Fields{
		"nft_id":    nft.ID,
		"buyer_id":  buyerID,
		"seller_id": nft.OwnerID,
		"price":     price.String(),
	}

	record, err := s.nfts.ExecuteSale(ctx, models.Sale{
		NFTID:    nft.ID,
		SellerID: nft.OwnerID,
		BuyerID:  buyerID,
		Price:    price,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrSaleConflict):
			metrics.RecordOperation("buy", "conflict")
			s.log.WithFields(fields).Warn("Sale lost to a concurrent change")
			return ErrNotForSale
		case errors.Is(err, store.ErrInsufficientBalance):
			metrics.RecordOperation("buy", "insufficient")
			return fail(ErrInsufficientFunds, "Insufficient balance")
		case errors.Is(err, store.ErrUserMissing):
			metrics.RecordOperation("buy", "error")
			return ErrSellerMissing
		}
		metrics.RecordOperation("buy", "error")
		s.log.WithFields(fields).WithError(err).Error("Sale failed")
		return fmt.Errorf("failed to execute sale: %w", err)
	}

	metrics.RecordOperation("buy", "ok")
	metrics.RecordSale(price.InexactFloat64())
	s.invalidate(ctx)
	s.log.WithFields(fields).Info("NFT sold")

	s.hub.Broadcast(EventSale, models.SaleEvent{
		NFTID: nft.ID,
		From:  nft.OwnerID,
		To:    buyerID,
		Price: price,
		At:    record.CreatedAt,
	})
	return nil
}

// History returns the transaction log of an NFT, newest first. limit <= 0 is unbounded.
func (s *MarketplaceService) History(ctx context.Context, nftID string, limit int) ([]models.Transaction, error) {
	if !validID(nftID) {
		return []models.Transaction{}, nil
	}
	txs, err := s.txs.ListByNFT(ctx, nftID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return txs, nil
}

// Detail returns an NFT with its most recent history
func (s *MarketplaceService) Detail(ctx context.Context, nftID string) (*models.NFTDetail, error) {
	if !validID(nftID) {
		return nil, fail(ErrNotFound, "Not found")
	}

	// Versioned so a read racing a list or buy never repopulates a stale view
	key := nftCacheKey(s.catalogVersion(ctx), nftID)
	var cached models.NFTDetail
	if found, err := s.cache.Get(ctx, key, &cached); err == nil && found {
		metrics.RecordCacheLookup("nft", true)
		return &cached, nil
	}
	metrics.RecordCacheLookup("nft", false)

	nft, err := s.getNFT(ctx, nftID)
	if err != nil {
		return nil, err
	}
	history, err := s.History(ctx, nftID, s.cfg.HistoryLimit)
	if err != nil {
		return nil, err
	}

	detail := &models.NFTDetail{NFT: nft, History: history}
	if err := s.cache.Set(ctx, key, detail, s.cacheTTL); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("Failed to cache NFT detail")
	}
	return detail, nil
}

// Catalog returns one page of NFTs matching q
func (s *MarketplaceService) Catalog(ctx context.Context, q models.NFTQuery) (*models.NFTListResponse, error) {
	if err := q.Normalize(s.cfg.DefaultPageSize, s.cfg.MaxPageSize); err != nil {
		return nil, fail(ErrValidation, "%s", err.Error())
	}

	key := fmt.Sprintf("catalog:%d:%s", s.catalogVersion(ctx), q.CacheKey())

	var cached models.NFTListResponse
	if found, err := s.cache.Get(ctx, key, &cached); err == nil && found {
		metrics.RecordCacheLookup("catalog", true)
		return &cached, nil
	}
	metrics.RecordCacheLookup("catalog", false)

	items, total, err := s.nfts.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog: %w", err)
	}

	resp := &models.NFTListResponse{
		Items: items,
		Total: total,
		Page:  q.Page,
		Pages: models.TotalPages(total, q.Limit),
	}
	if err := s.cache.Set(ctx, key, resp, s.cacheTTL); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("Failed to cache catalog page")
	}
	return resp, nil
}

func (s *MarketplaceService) getNFT(ctx context.Context, id string) (*models.NFT, error) {
	if !validID(id) {
		return nil, fail(ErrNotFound, "Not found")
	}
	nft, err := s.nfts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load NFT: %w", err)
	}
	if nft == nil {
		return nil, fail(ErrNotFound, "Not found")
	}
	return nft, nil
}

func (s *MarketplaceService) catalogVersion(ctx context.Context) int64 {
	var version int64
	if _, err := s.cache.Get(ctx, catalogVersionKey, &version); err != nil {
		s.log.WithError(err).Warn("Failed to read catalog version")
	}
	return version
}

// invalidate retires every cached catalog page and NFT detail
func (s *MarketplaceService) invalidate(ctx context.Context) {
	if _, err := s.cache.Incr(ctx, catalogVersionKey); err != nil {
		s.log.WithError(err).Warn("Failed to bump catalog version")
	}
}
