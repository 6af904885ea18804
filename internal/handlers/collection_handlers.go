package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ninja813/NFT-marketplace/internal/models"
	"github.com/ninja813/NFT-marketplace/internal/services"
)

// ListCollections handles browsing collections
func ListCollections(collections *services.CollectionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v := r.URL.Query()
		params := models.CollectionParams{
			Search:   v.Get("q"),
			Category: v.Get("category"),
		}
		params.Page, params.Limit = parsePaging(v)

		resp, err := collections.List(r.Context(), params)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, resp)
	}
}

// GetCollection handles the collection page
func GetCollection(collections *services.CollectionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		detail, err := collections.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, detail)
	}
}

// CreateCollection handles creating a collection for the signed-in user
func CreateCollection(collections *services.CollectionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := UserIDFromContext(r.Context())

		var req models.CreateCollectionRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeMessage(w, r, http.StatusBadRequest, "Invalid input")
			return
		}

		col, err := collections.Create(r.Context(), userID, req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusCreated, col)
	}
}
