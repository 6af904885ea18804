package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ninja813/NFT-marketplace/internal/config"
	"github.com/ninja813/NFT-marketplace/internal/metrics"
	"github.com/ninja813/NFT-marketplace/internal/services"
	"github.com/sirupsen/logrus"
)

// Dependencies are the collaborators the HTTP surface is built from
type Dependencies struct {
	Config      *config.Config
	Log         logrus.FieldLogger
	Auth        *services.AuthService
	Market      *services.MarketplaceService
	Collections *services.CollectionService
	Users       *services.UserService
	Hub         *Hub
	AuthLimiter *RateLimiter
}

// NewRouter wires every route of the API
func NewRouter(d Dependencies) http.Handler {
	cookie := SessionCookie{
		Name:   d.Config.Auth.CookieName,
		Secure: d.Config.Server.IsProd,
	}
	requireAuth := AuthMiddleware(d.Auth, cookie.Name)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(d.Log))
	r.Use(middleware.Recoverer)
	r.Use(metrics.InstrumentHandler)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{d.Config.Server.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, okResponse{OK: true})
	})
	r.Handle("/metrics", metrics.Handler())
	if d.Hub != nil {
		r.Get("/ws", ServeWs(d.Hub, d.Config.Server.CORSOrigin))
	}

	r.Route("/auth", func(r chi.Router) {
		if d.AuthLimiter != nil {
			r.Use(d.AuthLimiter.Handler)
		}
		r.Post("/register", Register(d.Auth, cookie))
		r.Post("/login", Login(d.Auth, cookie))
		r.Post("/logout", Logout(cookie))
		r.Get("/nonce", WalletNonce(d.Auth))
		r.Post("/wallet", WalletLogin(d.Auth, cookie))
		r.With(requireAuth).Get("/me", Me(d.Users))
	})

	r.Route("/nfts", func(r chi.Router) {
		r.Get("/", ListNFTs(d.Market))
		r.Get("/{id}", GetNFT(d.Market))
		r.Get("/{id}/transactions", GetNFTTransactions(d.Market))

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", MintNFT(d.Market))
			r.Post("/{id}/list", ListNFT(d.Market))
			r.Post("/{id}/buy", BuyNFT(d.Market))
		})
	})

	r.Route("/collections", func(r chi.Router) {
		r.Get("/", ListCollections(d.Collections))
		r.Get("/{id}", GetCollection(d.Collections))
		r.With(requireAuth).Post("/", CreateCollection(d.Collections))
	})

	r.Route("/users", func(r chi.Router) {
		r.With(requireAuth).Patch("/me", UpdateMe(d.Users))
		r.Get("/{id}", GetUser(d.Users))
		r.Get("/{id}/nfts", GetUserNFTs(d.Users))
	})

	return r
}
