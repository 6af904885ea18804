package main

import (
	"context"
	"fmt"

	"github.com/ninja813/NFT-marketplace/internal/cache"
	"github.com/ninja813/NFT-marketplace/internal/config"
	"github.com/ninja813/NFT-marketplace/internal/models"
	"github.com/ninja813/NFT-marketplace/internal/services"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const demoPassword = "password123"

type demoUser struct {
	name    string
	balance int64
}

type demoCollection struct {
	name, description, category string
}

var (
	demoUsers = []demoUser{
		{"alice", 500},
		{"bob", 200},
		{"charlie", 300},
	}
	demoCollections = []demoCollection{
		{"Neon Dreams", "Futuristic neon vibes", "Art"},
		{"Aqua Echo", "Fluid forms and teal tones", "Photography"},
		{"Golden Hour", "Warm gold accents and light", "Art"},
	}
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	log := cfg.NewLogger()
	ctx := context.Background()

	backend, err := services.OpenBackend(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("failed to open %s backend: %v", cfg.Database.Driver, err)
	}
	defer backend.Close()

	if err := backend.Truncate(ctx); err != nil {
		log.Fatalf("failed to reset data: %v", err)
	}
	if err := seed(ctx, backend.Stores, cfg, log); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
	log.Info("Seed complete")
}

func seed(ctx context.Context, stores services.Stores, cfg *config.Config, log logrus.FieldLogger) error {
	market := services.NewMarketplaceService(stores, cache.Nop{}, nil, cfg.Market, 0, log)
	collections := services.NewCollectionService(stores, cfg.Market, log)

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	users := make([]*models.User, len(demoUsers))
	for i, du := range demoUsers {
		seedName := du.name
		users[i] = &models.User{
			Email:        du.name + "@example.com",
			Username:     du.name,
			PasswordHash: string(hash),
			AvatarSeed:   &seedName,
			Balance:      decimal.NewFromInt(du.balance),
		}
		if err := stores.Users.Create(ctx, users[i]); err != nil {
			return fmt.Errorf("user %s: %w", du.name, err)
		}
	}

	cols := make([]*models.Collection, len(demoCollections))
	for i, dc := range demoCollections {
		description, category := dc.description, dc.category
		cols[i], err = collections.Create(ctx, users[i].ID, models.CreateCollectionRequest{
			Name:        dc.name,
			Description: &description,
			Category:    &category,
		})
		if err != nil {
			return fmt.Errorf("collection %s: %w", dc.name, err)
		}
	}

	var listed []*models.NFT
	for i := 1; i <= 24; i++ {
		creator := users[i%len(users)]
		req := demoNFT(i)
		req.CollectionID = &cols[i%len(cols)].ID

		nft, err := market.Mint(ctx, creator.ID, req)
		if err != nil {
			return fmt.Errorf("nft %d: %w", i, err)
		}
		if nft.OnSale {
			listed = append(listed, nft)
		}
	}

	// One completed sale so the ticker and history have data
	for _, nft := range listed {
		if nft.OwnerID == users[0].ID {
			continue
		}
		if err := market.Buy(ctx, nft.ID, users[0].ID); err != nil {
			return fmt.Errorf("demo sale: %w", err)
		}
		break
	}

	log.WithFields(logrus.Fields{
		"users":       len(users),
		"collections": len(cols),
		"nfts":        24,
		"password":    demoPassword,
	}).Info("Demo data created")
	return nil
}

// demoNFT builds a deterministic NFT; roughly three in five are listed
func demoNFT(i int) models.MintRequest {
	description := "Curated visual from open placeholder photography"
	seed := fmt.Sprintf("Spectra %d", i)
	image := fmt.Sprintf("https://picsum.photos/id/%d/1200/1200", 101+i)

	req := models.MintRequest{
		Name:        fmt.Sprintf("Spectra #%d", i),
		Description: &description,
		ImageSeed:   &seed,
		ImageURL:    &image,
		Attributes: []models.Attribute{
			{TraitType: "Background", Value: []string{"Purple", "Teal", "Gold"}[i%3], Rarity: []string{"Common", "Uncommon", "Rare"}[i%3]},
			{TraitType: "Aura", Value: []string{"Soft", "Vivid", "Sharp"}[i%3], Rarity: []string{"Common", "Uncommon", "Epic"}[i%3]},
			{TraitType: "Element", Value: []string{"Fire", "Water", "Air", "Earth"}[i%4], Rarity: []string{"Common", "Uncommon", "Rare", "Legendary"}[i%4]},
		},
	}
	if i%5 < 3 {
		price := decimal.New(int64(50+(i*37)%400), -2)
		req.Price = &price
	}
	return req
}
