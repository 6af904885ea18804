package services

import (
	"context"
	"strings"
	"testing"

	"github.com/ninja813/NFT-marketplace/internal/config"
	"github.com/ninja813/NFT-marketplace/internal/models"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	logger, _ := test.NewNullLogger()
	users := NewUserService(env.stores, env.market, logger)

	alice := env.user(t, "alice", "0")
	env.user(t, "bobby", "0")

	_, err := users.UpdateProfile(ctx, alice.ID, models.ProfileUpdate{})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "No changes provided.", err.Error())

	_, err = users.UpdateProfile(ctx, alice.ID, models.ProfileUpdate{Bio: strPtr(strings.Repeat("x", 1001))})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = users.UpdateProfile(ctx, alice.ID, models.ProfileUpdate{Username: strPtr(" al ")})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = users.UpdateProfile(ctx, alice.ID, models.ProfileUpdate{Username: strPtr("bobby")})
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, "username already in use.", err.Error())

	updated, err := users.UpdateProfile(ctx, alice.ID, models.ProfileUpdate{
		Bio:      strPtr("collector"),
		Username: strPtr("  alice_w  "),
	})
	require.NoError(t, err)
	assert.Equal(t, "alice_w", updated.Username)
	require.NotNil(t, updated.Bio)
	assert.Equal(t, "collector", *updated.Bio)

	// Omitted fields stay as they were
	updated, err = users.UpdateProfile(ctx, alice.ID, models.ProfileUpdate{Bio: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, "alice_w", updated.Username)

	_, err = users.UpdateProfile(ctx, "00000000-0000-0000-0000-000000000000", models.ProfileUpdate{Bio: strPtr("hi")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRenameRefreshesCachedViews(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	logger, _ := test.NewNullLogger()
	users := NewUserService(env.stores, env.market, logger)

	alice := env.user(t, "alice", "0")
	nft, err := env.market.Mint(ctx, alice.ID, models.MintRequest{Name: "Aurora"})
	require.NoError(t, err)

	page, err := env.market.Catalog(ctx, models.NFTQuery{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "alice", *page.Items[0].CreatorName)
	detail, err := env.market.Detail(ctx, nft.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", *detail.NFT.OwnerName)

	_, err = users.UpdateProfile(ctx, alice.ID, models.ProfileUpdate{Username: strPtr("alicia")})
	require.NoError(t, err)

	page, err = env.market.Catalog(ctx, models.NFTQuery{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "alicia", *page.Items[0].CreatorName)
	detail, err = env.market.Detail(ctx, nft.ID)
	require.NoError(t, err)
	assert.Equal(t, "alicia", *detail.NFT.OwnerName)
}

func TestProfileHidesLedger(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	logger, _ := test.NewNullLogger()
	users := NewUserService(env.stores, env.market, logger)

	alice := env.user(t, "alice", "12")

	profile, err := users.Profile(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)

	me, err := users.Me(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "12", me.Balance.String())

	_, err = users.Profile(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = users.Me(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestOwnedNFTs(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	logger, _ := test.NewNullLogger()
	users := NewUserService(env.stores, env.market, logger)

	alice := env.user(t, "alice", "0")
	bob := env.user(t, "bobby", "10")

	nft, err := env.market.Mint(ctx, alice.ID, models.MintRequest{Name: "Aurora", Price: dec("1")})
	require.NoError(t, err)
	_, err = env.market.Mint(ctx, alice.ID, models.MintRequest{Name: "Borealis"})
	require.NoError(t, err)

	page, err := users.OwnedNFTs(ctx, bob.ID, models.NFTQuery{})
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)

	require.NoError(t, env.market.Buy(ctx, nft.ID, bob.ID))

	page, err = users.OwnedNFTs(ctx, bob.ID, models.NFTQuery{})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, nft.ID, page.Items[0].ID)

	page, err = users.OwnedNFTs(ctx, alice.ID, models.NFTQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, "Borealis", page.Items[0].Name)
}

func TestCollections(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	logger, _ := test.NewNullLogger()
	cols := NewCollectionService(env.stores, config.Default().Market, logger)

	alice := env.user(t, "alice", "0")

	_, err := cols.Create(ctx, alice.ID, models.CreateCollectionRequest{Name: "x"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = cols.Create(ctx, "00000000-0000-0000-0000-000000000000", models.CreateCollectionRequest{Name: "Skies"})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	art := "art"
	skies, err := cols.Create(ctx, alice.ID, models.CreateCollectionRequest{Name: " Skies ", Category: &art})
	require.NoError(t, err)
	assert.Equal(t, "Skies", skies.Name)
	require.NotNil(t, skies.BannerSeed)
	assert.Equal(t, "Skies", *skies.BannerSeed)

	_, err = cols.Create(ctx, alice.ID, models.CreateCollectionRequest{Name: "Oceans"})
	require.NoError(t, err)

	for _, name := range []string{"Cirrus", "Stratus"} {
		_, err := env.market.Mint(ctx, alice.ID, models.MintRequest{Name: name, CollectionID: &skies.ID})
		require.NoError(t, err)
	}

	detail, err := cols.Get(ctx, skies.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", detail.Creator.Username)
	require.Len(t, detail.NFTs, 2)
	assert.Equal(t, "Stratus", detail.NFTs[0].Name)

	list, err := cols.List(ctx, models.CollectionParams{Category: "art"})
	require.NoError(t, err)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, skies.ID, list.Items[0].ID)

	list, err = cols.List(ctx, models.CollectionParams{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, list.Total)
	assert.Equal(t, 2, list.Pages)
	assert.Equal(t, "Oceans", list.Items[0].Name)

	_, err = cols.Get(ctx, "bad-id")
	assert.ErrorIs(t, err, ErrNotFound)
}
