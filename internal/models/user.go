package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents a marketplace account
type User struct {
	ID            string          `json:"id" db:"id"`
	Email         string          `json:"email" db:"email"`
	Username      string          `json:"username" db:"username"`
	PasswordHash  string          `json:"-" db:"password_hash"`
	Bio           *string         `json:"bio,omitempty" db:"bio"`
	AvatarSeed    *string         `json:"avatarSeed,omitempty" db:"avatar_seed"`
	Balance       decimal.Decimal `json:"balance" db:"balance"`
	WalletAddress *string         `json:"walletAddress,omitempty" db:"wallet_address"`
	LoginNonce    *string         `json:"-" db:"login_nonce"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`
}

// PublicUser is the profile view of a user shown to other accounts
type PublicUser struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Bio           *string   `json:"bio,omitempty"`
	AvatarSeed    *string   `json:"avatarSeed,omitempty"`
	WalletAddress *string   `json:"walletAddress,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Public strips credentials and ledger data from a user
func (u *User) Public() *PublicUser {
	if u == nil {
		return nil
	}
	return &PublicUser{
		ID:            u.ID,
		Username:      u.Username,
		Bio:           u.Bio,
		AvatarSeed:    u.AvatarSeed,
		WalletAddress: u.WalletAddress,
		CreatedAt:     u.CreatedAt,
	}
}

// ProfileUpdate holds the mutable profile fields; nil means unchanged
type ProfileUpdate struct {
	Bio      *string `json:"bio,omitempty"`
	Username *string `json:"username,omitempty"`
}

// Empty reports whether the update changes nothing
func (p ProfileUpdate) Empty() bool {
	return p.Bio == nil && p.Username == nil
}

// AuthToken represents the authentication token response
type AuthToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user,omitempty"`
}

// RegisterRequest represents a request to create a password account
type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest represents a password login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// WalletAuthRequest represents a request to authenticate with a wallet
type WalletAuthRequest struct {
	Address   string `json:"address"`
	Signature string `json:"signature"`
}

// NonceResponse carries the sign-in challenge for a wallet address
type NonceResponse struct {
	Nonce     string `json:"nonce"`
	Statement string `json:"statement"`
	Domain    string `json:"domain"`
	URI       string `json:"uri"`
	Message   string `json:"message"`
}
