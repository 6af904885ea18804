package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/ninja813/NFT-marketplace/internal/models"
	"github.com/ninja813/NFT-marketplace/internal/services"
	"github.com/shopspring/decimal"
)

// ListNFTs handles the catalog query
func ListNFTs(market *services.MarketplaceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := parseNFTQuery(r.URL.Query())
		if err != nil {
			writeMessage(w, r, http.StatusBadRequest, err.Error())
			return
		}

		resp, err := market.Catalog(r.Context(), q)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, resp)
	}
}

// GetNFT handles retrieving a single NFT with its recent history
func GetNFT(market *services.MarketplaceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		detail, err := market.Detail(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, detail)
	}
}

// GetNFTTransactions handles the transaction log of an NFT
func GetNFTTransactions(market *services.MarketplaceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				writeMessage(w, r, http.StatusBadRequest, "Invalid limit")
				return
			}
			limit = n
		}

		txs, err := market.History(r.Context(), chi.URLParam(r, "id"), limit)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, txs)
	}
}

// MintNFT handles minting a new NFT for the signed-in user
func MintNFT(market *services.MarketplaceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := UserIDFromContext(r.Context())

		var req models.MintRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeMessage(w, r, http.StatusBadRequest, "Invalid input")
			return
		}

		nft, err := market.Mint(r.Context(), userID, req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusCreated, nft)
	}
}

// ListNFT handles putting an NFT up for sale
func ListNFT(market *services.MarketplaceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := UserIDFromContext(r.Context())

		var req models.ListRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeMessage(w, r, http.StatusBadRequest, "Invalid price")
			return
		}

		nft, err := market.List(r.Context(), chi.URLParam(r, "id"), userID, req.Price)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, nft)
	}
}

// BuyNFT handles purchasing a listed NFT
func BuyNFT(market *services.MarketplaceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := UserIDFromContext(r.Context())

		if err := market.Buy(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, okResponse{OK: true})
	}
}

// parseNFTQuery reads catalog filters. Malformed numbers are rejected; bounds
// and defaults are applied by the service.
func parseNFTQuery(v url.Values) (models.NFTQuery, error) {
	q := models.NFTQuery{
		Search:   v.Get("q"),
		Category: v.Get("category"),
		Rarity:   v.Get("rarity"),
		Sort:     models.CatalogSort(v.Get("sort")),
	}

	if s := v.Get("onSale"); s != "" {
		onSale, err := strconv.ParseBool(s)
		if err != nil {
			return q, errors.New("Invalid onSale")
		}
		q.OnSale = &onSale
	}

	for _, p := range []struct {
		name string
		dest **decimal.Decimal
	}{
		{"minPrice", &q.MinPrice},
		{"maxPrice", &q.MaxPrice},
	} {
		s := v.Get(p.name)
		if s == "" {
			continue
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return q, fmt.Errorf("Invalid %s", p.name)
		}
		*p.dest = &d
	}

	q.Page, q.Limit = parsePaging(v)
	return q, nil
}

// parsePaging ignores values that are not positive integers
func parsePaging(v url.Values) (page, limit int) {
	if n, err := strconv.Atoi(v.Get("page")); err == nil && n > 0 {
		page = n
	}
	if n, err := strconv.Atoi(v.Get("limit")); err == nil && n > 0 {
		limit = n
	}
	return page, limit
}
