package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/ninja813/NFT-marketplace/internal/models"
	"github.com/ninja813/NFT-marketplace/internal/services"
)

// SessionCookie describes the cookie that carries the session token
type SessionCookie struct {
	Name   string
	Secure bool
}

func (c SessionCookie) set(w http.ResponseWriter, tok *models.AuthToken) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    tok.Token,
		Path:     "/",
		Expires:  tok.ExpiresAt,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c SessionCookie) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Register handles password account creation
func Register(authService *services.AuthService, cookie SessionCookie) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.RegisterRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeMessage(w, r, http.StatusBadRequest, "Invalid request body")
			return
		}

		tok, err := authService.Register(r.Context(), req)
		if err != nil {
			writeError(w, r, err)
			return
		}

		cookie.set(w, tok)
		writeJSON(w, r, http.StatusCreated, tok.User)
	}
}

// Login handles email and password authentication
func Login(authService *services.AuthService, cookie SessionCookie) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeMessage(w, r, http.StatusBadRequest, "Invalid request body")
			return
		}

		tok, err := authService.Login(r.Context(), req)
		if err != nil {
			writeError(w, r, err)
			return
		}

		cookie.set(w, tok)
		writeJSON(w, r, http.StatusOK, tok.User)
	}
}

// Logout clears the session cookie
func Logout(cookie SessionCookie) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie.clear(w)
		writeJSON(w, r, http.StatusOK, okResponse{OK: true})
	}
}

// Me returns the signed-in account including its balance
func Me(userService *services.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := UserIDFromContext(r.Context())
		user, err := userService.Me(r.Context(), userID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, user)
	}
}

// WalletNonce issues a sign-in challenge for ?address=0x...
func WalletNonce(authService *services.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		domain, uri := requestOrigin(r)
		resp, err := authService.Nonce(r.Context(), r.URL.Query().Get("address"), domain, uri)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, resp)
	}
}

// WalletLogin handles wallet authentication
func WalletLogin(authService *services.AuthService, cookie SessionCookie) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.WalletAuthRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeMessage(w, r, http.StatusBadRequest, "Invalid request body")
			return
		}

		domain, uri := requestOrigin(r)
		tok, err := authService.AuthenticateWithWallet(r.Context(), req, domain, uri)
		if err != nil {
			writeError(w, r, err)
			return
		}

		cookie.set(w, tok)
		writeJSON(w, r, http.StatusOK, tok.User)
	}
}

// requestOrigin derives the sign-in domain and URI from the request host
func requestOrigin(r *http.Request) (string, string) {
	if r.Host == "" {
		return "", ""
	}
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return r.Host, scheme + "://" + r.Host
}

// AuthMiddleware is a middleware for authenticating requests. The token is
// read from the session cookie or a Bearer Authorization header.
func AuthMiddleware(authService *services.AuthService, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if c, err := r.Cookie(cookieName); err == nil {
				token = c.Value
			}
			if authHeader := r.Header.Get("Authorization"); token == "" && authHeader != "" {
				// Extract token from "Bearer <token>"
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) != 2 || parts[0] != "Bearer" {
					writeMessage(w, r, http.StatusUnauthorized, "Invalid Authorization header format")
					return
				}
				token = parts[1]
			}
			if token == "" {
				writeMessage(w, r, http.StatusUnauthorized, "Unauthorized")
				return
			}

			userID, err := authService.ValidateToken(token)
			if err != nil {
				writeMessage(w, r, http.StatusUnauthorized, "Unauthorized")
				return
			}

			next.ServeHTTP(w, r.WithContext(NewContextWithUserID(r.Context(), userID)))
		})
	}
}
