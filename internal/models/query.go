package models

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// CatalogSort is the ordering of catalog results
type CatalogSort string

const (
	SortNewest    CatalogSort = "new"
	SortPriceAsc  CatalogSort = "price_asc"
	SortPriceDesc CatalogSort = "price_desc"
)

// ErrInvalidQuery is returned by NFTQuery.Normalize for filters that cannot be satisfied
var ErrInvalidQuery = errors.New("invalid query")

// NFTQuery represents the parameters for filtering the catalog
type NFTQuery struct {
	Search       string           `json:"q,omitempty"`
	OnSale       *bool            `json:"onSale,omitempty"`
	MinPrice     *decimal.Decimal `json:"minPrice,omitempty"`
	MaxPrice     *decimal.Decimal `json:"maxPrice,omitempty"`
	Category     string           `json:"category,omitempty"`
	Rarity       string           `json:"rarity,omitempty"`
	OwnerID      string           `json:"ownerId,omitempty"`
	CollectionID string           `json:"collectionId,omitempty"`
	Sort         CatalogSort      `json:"sort,omitempty"`
	Page         int              `json:"page"`
	Limit        int              `json:"limit"`
}

// Normalize applies pagination defaults and bounds and rejects contradictory filters.
// Page is at least 1; Limit defaults to defaultLimit and is capped at maxLimit.
func (q *NFTQuery) Normalize(defaultLimit, maxLimit int) error {
	q.Search = strings.TrimSpace(q.Search)
	q.Category = strings.TrimSpace(q.Category)
	q.Rarity = strings.TrimSpace(q.Rarity)

	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = defaultLimit
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	q.Page = ClampPage(q.Page, q.Limit)

	switch q.Sort {
	case SortNewest, SortPriceAsc, SortPriceDesc:
	default:
		q.Sort = SortNewest
	}

	if q.MinPrice != nil && q.MinPrice.IsNegative() {
		return fmt.Errorf("%w: minPrice must not be negative", ErrInvalidQuery)
	}
	if q.MaxPrice != nil && q.MaxPrice.IsNegative() {
		return fmt.Errorf("%w: maxPrice must not be negative", ErrInvalidQuery)
	}
	if q.MinPrice != nil && q.MaxPrice != nil && q.MinPrice.GreaterThan(*q.MaxPrice) {
		return fmt.Errorf("%w: minPrice is greater than maxPrice", ErrInvalidQuery)
	}
	return nil
}

// Offset is the number of rows skipped for the current page
func (q NFTQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// Matches evaluates the filters against a single NFT. categoryOf resolves the
// category of a collection id and is only consulted when Category is set.
func (q NFTQuery) Matches(n *NFT, categoryOf func(collectionID string) string) bool {
	if q.OnSale != nil && n.OnSale != *q.OnSale {
		return false
	}
	if q.MinPrice != nil && (n.Price == nil || n.Price.LessThan(*q.MinPrice)) {
		return false
	}
	if q.MaxPrice != nil && (n.Price == nil || n.Price.GreaterThan(*q.MaxPrice)) {
		return false
	}
	if q.OwnerID != "" && n.OwnerID != q.OwnerID {
		return false
	}
	if q.CollectionID != "" && (n.CollectionID == nil || *n.CollectionID != q.CollectionID) {
		return false
	}
	if q.Category != "" {
		if n.CollectionID == nil || categoryOf(*n.CollectionID) != q.Category {
			return false
		}
	}
	if q.Rarity != "" && !n.Attributes.HasRarity(q.Rarity) {
		return false
	}
	if q.Search != "" {
		text := n.Name
		if n.Description != nil {
			text += " " + *n.Description
		}
		if !MatchesWords(text, q.Search) {
			return false
		}
	}
	return true
}

// MatchesWords reports whether every word of search appears as a whole word
// of text, case-insensitively. Words are runs of letters and digits.
func MatchesWords(text, search string) bool {
	words := make(map[string]struct{})
	for _, w := range searchWords(text) {
		words[w] = struct{}{}
	}
	for _, w := range searchWords(search) {
		if _, ok := words[w]; !ok {
			return false
		}
	}
	return true
}

func searchWords(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// CacheKey renders the query deterministically for cache lookups
func (q NFTQuery) CacheKey() string {
	v := url.Values{}
	v.Set("q", q.Search)
	if q.OnSale != nil {
		v.Set("onSale", strconv.FormatBool(*q.OnSale))
	}
	if q.MinPrice != nil {
		v.Set("minPrice", q.MinPrice.String())
	}
	if q.MaxPrice != nil {
		v.Set("maxPrice", q.MaxPrice.String())
	}
	v.Set("category", q.Category)
	v.Set("rarity", q.Rarity)
	v.Set("owner", q.OwnerID)
	v.Set("collection", q.CollectionID)
	v.Set("sort", string(q.Sort))
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("limit", strconv.Itoa(q.Limit))
	return v.Encode()
}

// ClampPage bounds page so that (page-1)*limit stays within an int32 offset
func ClampPage(page, limit int) int {
	if page < 1 {
		return 1
	}
	if limit > 0 && page > math.MaxInt32/limit {
		return math.MaxInt32 / limit
	}
	return page
}

// TotalPages computes the page count for a result total
func TotalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
