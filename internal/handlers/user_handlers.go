package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ninja813/NFT-marketplace/internal/models"
	"github.com/ninja813/NFT-marketplace/internal/services"
)

// GetUser returns the public profile of a user
func GetUser(users *services.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := users.Profile(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, profile)
	}
}

// UpdateMe changes the profile of the signed-in user
func UpdateMe(users *services.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := UserIDFromContext(r.Context())

		var upd models.ProfileUpdate
		if err := decodeJSON(w, r, &upd); err != nil {
			writeMessage(w, r, http.StatusBadRequest, "Invalid request body")
			return
		}

		user, err := users.UpdateProfile(r.Context(), userID, upd)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, user)
	}
}

// GetUserNFTs handles retrieving the NFTs a user owns
func GetUserNFTs(users *services.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := parseNFTQuery(r.URL.Query())
		if err != nil {
			writeMessage(w, r, http.StatusBadRequest, err.Error())
			return
		}

		resp, err := users.OwnedNFTs(r.Context(), chi.URLParam(r, "id"), q)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, resp)
	}
}
