package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ninja813/NFT-marketplace/internal/config"
	"github.com/ninja813/NFT-marketplace/internal/models"
	"github.com/ninja813/NFT-marketplace/internal/store"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var signaturePattern = regexp.MustCompile(`^0x[0-9a-fA-F]+$`)

// Claims represents the JWT claims
type Claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// AuthService handles authentication operations
type AuthService struct {
	users    UserStore
	wallet   *WalletService
	cfg      config.AuthConfig
	market   config.MarketConfig
	log      logrus.FieldLogger
	hashCost int
}

// NewAuthService creates a new AuthService
func NewAuthService(stores Stores, wallet *WalletService, cfg config.AuthConfig, market config.MarketConfig, log logrus.FieldLogger) *AuthService {
	return &AuthService{
		users:    stores.Users,
		wallet:   wallet,
		cfg:      cfg,
		market:   market,
		log:      log,
		hashCost: bcrypt.DefaultCost,
	}
}

// Register creates a password account with the starting balance
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthToken, error) {
	email := normalizeEmail(req.Email)
	username := strings.TrimSpace(req.Username)

	if !isEmailValid(email) {
		return nil, fail(ErrValidation, "Invalid email address")
	}
	if n := runeLen(username); n < 3 || n > 24 {
		return nil, fail(ErrValidation, "username must be 3 to 24 characters")
	}
	if len(req.Password) < 6 {
		return nil, fail(ErrValidation, "password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		AvatarSeed:   &username,
		Balance:      decimal.NewFromInt(s.market.RegisterBalance),
	}
	if err := s.users.Create(ctx, user); err != nil {
		var dup *store.DuplicateError
		if errors.As(err, &dup) {
			return nil, &ConflictError{Field: dup.Field}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "username": username}).Info("User registered")
	return s.issue(user)
}

// Login authenticates with email and password
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthToken, error) {
	email := normalizeEmail(req.Email)
	if !isEmailValid(email) || req.Password == "" {
		return nil, fail(ErrValidation, "Invalid input")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil || user.PasswordHash == "" {
		return nil, fail(ErrUnauthenticated, "Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fail(ErrUnauthenticated, "Invalid credentials")
	}

	return s.issue(user)
}

// Nonce issues a single-use sign-in challenge for a wallet address,
// creating a wallet account on first contact
func (s *AuthService) Nonce(ctx context.Context, address, domain, uri string) (*models.NonceResponse, error) {
	addr, ok := normalizeAddress(address)
	if !ok {
		return nil, fail(ErrValidation, "Invalid address")
	}
	if domain == "" {
		domain = s.cfg.Domain
	}
	if uri == "" {
		uri = s.cfg.URI
	}

	nonce, err := s.wallet.GenerateNonce()
	if err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	user, err := s.walletUser(ctx, addr)
	if err != nil {
		return nil, err
	}
	if err := s.users.SetLoginNonce(ctx, user.ID, nonce); err != nil {
		return nil, fmt.Errorf("failed to store nonce: %w", err)
	}

	return &models.NonceResponse{
		Nonce:     nonce,
		Statement: SignInStatement,
		Domain:    domain,
		URI:       uri,
		Message:   s.wallet.SignInMessage(domain, uri, addr, nonce),
	}, nil
}

// walletUser finds the account bound to addr or creates one
func (s *AuthService) walletUser(ctx context.Context, addr string) (*models.User, error) {
	user, err := s.users.GetByWalletAddress(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to load wallet user: %w", err)
	}
	if user != nil {
		return user, nil
	}

	secret, err := s.wallet.GenerateNonce()
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Short handle first, longer ones if it is taken
	for _, end := range []int{8, 12, len(addr)} {
		seed := addr
		user = &models.User{
			Email:         addr + "@wallet.local",
			Username:      "user_" + addr[2:end],
			PasswordHash:  string(hash),
			AvatarSeed:    &seed,
			Balance:       decimal.NewFromInt(s.market.WalletBalance),
			WalletAddress: &seed,
		}
		err = s.users.Create(ctx, user)
		if err == nil {
			s.log.WithFields(logrus.Fields{"user_id": user.ID, "address": addr}).Info("Wallet user created")
			return user, nil
		}

		var dup *store.DuplicateError
		if !errors.As(err, &dup) {
			return nil, fmt.Errorf("failed to create wallet user: %w", err)
		}
		if dup.Field != "username" {
			// Created concurrently by another request
			existing, err := s.users.GetByWalletAddress(ctx, addr)
			if err != nil {
				return nil, fmt.Errorf("failed to load wallet user: %w", err)
			}
			if existing != nil {
				return existing, nil
			}
			return nil, &ConflictError{Field: dup.Field}
		}
	}
	return nil, &ConflictError{Field: "username"}
}

// AuthenticateWithWallet verifies a signed sign-in message and consumes the nonce
func (s *AuthService) AuthenticateWithWallet(ctx context.Context, req models.WalletAuthRequest, domain, uri string) (*models.AuthToken, error) {
	addr, ok := normalizeAddress(req.Address)
	if !ok {
		return nil, fail(ErrValidation, "Invalid address")
	}
	if !signaturePattern.MatchString(req.Signature) {
		return nil, fail(ErrValidation, "Invalid signature")
	}
	if domain == "" {
		domain = s.cfg.Domain
	}
	if uri == "" {
		uri = s.cfg.URI
	}

	user, err := s.users.GetByWalletAddress(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to load wallet user: %w", err)
	}
	if user == nil || user.LoginNonce == nil {
		return nil, fail(ErrValidation, "No nonce for address")
	}

	message := s.wallet.SignInMessage(domain, uri, addr, *user.LoginNonce)
	valid, err := s.wallet.VerifySignature(addr, message, req.Signature)
	if err != nil || !valid {
		s.log.WithFields(logrus.Fields{"address": addr}).WithError(err).Warn("Wallet signature rejected")
		return nil, fail(ErrUnauthenticated, "Invalid signature")
	}

	if err := s.users.ConsumeLoginNonce(ctx, user.ID, *user.LoginNonce); err != nil {
		if errors.Is(err, store.ErrNonceMismatch) {
			return nil, fail(ErrUnauthenticated, "Nonce already used")
		}
		return nil, fmt.Errorf("failed to consume nonce: %w", err)
	}
	user.LoginNonce = nil

	return s.issue(user)
}

// ValidateToken validates a JWT token and returns the user id
func (s *AuthService) ValidateToken(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Check the signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return []byte(s.cfg.JWTSecret), nil
	})

	if err != nil {
		return "", err
	}

	if !token.Valid || claims.UserID == "" {
		return "", fmt.Errorf("invalid token")
	}

	return claims.UserID, nil
}

func (s *AuthService) issue(user *models.User) (*models.AuthToken, error) {
	token, expiresAt, err := s.generateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &models.AuthToken{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}

// generateToken generates a JWT token for a user
func (s *AuthService) generateToken(userID string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.JWTExpiration.Duration)

	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "nft-marketplace",
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}
