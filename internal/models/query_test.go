package models

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestNormalizeDefaults(t *testing.T) {
	q := NFTQuery{Search: "  neon  ", Page: -3, Sort: "bogus"}
	require.NoError(t, q.Normalize(12, 50))

	assert.Equal(t, "neon", q.Search)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 12, q.Limit)
	assert.Equal(t, SortNewest, q.Sort)
	assert.Equal(t, 0, q.Offset())
}

func TestNormalizeCapsLimit(t *testing.T) {
	q := NFTQuery{Page: 3, Limit: 500, Sort: SortPriceDesc}
	require.NoError(t, q.Normalize(12, 50))

	assert.Equal(t, 50, q.Limit)
	assert.Equal(t, SortPriceDesc, q.Sort)
	assert.Equal(t, 100, q.Offset())
}

func TestNormalizeClampsHugePage(t *testing.T) {
	q := NFTQuery{Page: math.MaxInt64, Limit: 12}
	require.NoError(t, q.Normalize(12, 50))

	assert.Equal(t, math.MaxInt32/12, q.Page)
	assert.Positive(t, q.Offset())
	assert.LessOrEqual(t, q.Offset(), math.MaxInt32)

	assert.Equal(t, 1, ClampPage(0, 12))
	assert.Equal(t, 7, ClampPage(7, 12))
}

func TestNormalizeRejectsPriceRanges(t *testing.T) {
	tests := []struct {
		name     string
		min, max *decimal.Decimal
	}{
		{"negative min", dec("-1"), nil},
		{"negative max", nil, dec("-0.5")},
		{"inverted", dec("3"), dec("2")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NFTQuery{MinPrice: tt.min, MaxPrice: tt.max}
			err := q.Normalize(12, 50)
			assert.True(t, errors.Is(err, ErrInvalidQuery))
		})
	}

	q := NFTQuery{MinPrice: dec("2"), MaxPrice: dec("2")}
	assert.NoError(t, q.Normalize(12, 50))
}

func TestMatches(t *testing.T) {
	col := "col-1"
	desc := "Glowing city at night"
	n := &NFT{
		Name:         "Neon Skyline",
		Description:  &desc,
		OwnerID:      "u1",
		CollectionID: &col,
		Price:        dec("1.5"),
		OnSale:       true,
		Attributes:   Attributes{{TraitType: "Aura", Value: "Vivid", Rarity: "Epic"}},
	}
	categoryOf := func(id string) string {
		if id == col {
			return "Art"
		}
		return ""
	}
	yes, no := true, false

	tests := []struct {
		name string
		q    NFTQuery
		want bool
	}{
		{"empty query", NFTQuery{}, true},
		{"on sale", NFTQuery{OnSale: &yes}, true},
		{"not on sale", NFTQuery{OnSale: &no}, false},
		{"inside price range", NFTQuery{MinPrice: dec("1"), MaxPrice: dec("2")}, true},
		{"below min", NFTQuery{MinPrice: dec("1.51")}, false},
		{"above max", NFTQuery{MaxPrice: dec("1.49")}, false},
		{"owner", NFTQuery{OwnerID: "u1"}, true},
		{"other owner", NFTQuery{OwnerID: "u2"}, false},
		{"collection", NFTQuery{CollectionID: col}, true},
		{"category", NFTQuery{Category: "Art"}, true},
		{"other category", NFTQuery{Category: "Music"}, false},
		{"rarity", NFTQuery{Rarity: "Epic"}, true},
		{"missing rarity", NFTQuery{Rarity: "Legendary"}, false},
		{"search name and description", NFTQuery{Search: "NEON night"}, true},
		{"search miss", NFTQuery{Search: "neon ocean"}, false},
		{"search prefix is not a word", NFTQuery{Search: "ne"}, false},
		{"search inside word", NFTQuery{Search: "sky"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.q.Matches(n, categoryOf))
		})
	}
}

func TestMatchesUnpricedNFT(t *testing.T) {
	n := &NFT{Name: "Draft"}
	assert.False(t, NFTQuery{MinPrice: dec("0")}.Matches(n, nil))
	assert.False(t, NFTQuery{Category: "Art"}.Matches(n, nil))
	assert.False(t, n.Purchasable())
}

func TestMatchesWords(t *testing.T) {
	assert.True(t, MatchesWords("Bored Apes #12", "apes"))
	assert.True(t, MatchesWords("Bored Apes #12", "12 BORED"))
	assert.False(t, MatchesWords("Bored Apes", "Ap"))
	assert.True(t, MatchesWords("anything", "  "))
}

func TestCacheKeyDistinguishesFilters(t *testing.T) {
	yes := true
	a := NFTQuery{Page: 1, Limit: 12}
	b := NFTQuery{Page: 2, Limit: 12}
	c := NFTQuery{Page: 1, Limit: 12, OnSale: &yes}

	assert.Equal(t, a.CacheKey(), NFTQuery{Page: 1, Limit: 12}.CacheKey())
	assert.NotEqual(t, a.CacheKey(), b.CacheKey())
	assert.NotEqual(t, a.CacheKey(), c.CacheKey())
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 12))
	assert.Equal(t, 1, TotalPages(12, 12))
	assert.Equal(t, 2, TotalPages(13, 12))
	assert.Equal(t, 0, TotalPages(5, 0))
}
