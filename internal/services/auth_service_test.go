package services

import (
	"context"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/ninja813/NFT-marketplace/internal/config"
	"github.com/ninja813/NFT-marketplace/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthService(t *testing.T, env *testEnv) *AuthService {
	t.Helper()
	logger, _ := test.NewNullLogger()
	cfg := config.Default()
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.JWTExpiration = config.Duration{Duration: time.Hour}
	svc := NewAuthService(env.stores, NewWalletService(), cfg.Auth, cfg.Market, logger)
	svc.hashCost = bcrypt.MinCost
	return svc
}

// signPersonal produces an r || s || v personal_sign signature
func signPersonal(t *testing.T, key *btcec.PrivateKey, message string) string {
	t.Helper()
	compact := ecdsa.SignCompact(key, personalMessageHash(message), false)
	sig := make([]byte, 65)
	copy(sig, compact[1:])
	sig[64] = compact[0]
	return "0x" + hex.EncodeToString(sig)
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	auth := newAuthService(t, env)

	tok, err := auth.Register(ctx, models.RegisterRequest{
		Email:    " Alice@Example.com ",
		Username: "alice",
		Password: "hunter22",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", tok.User.Email)
	assert.True(t, tok.User.Balance.Equal(decimal.NewFromInt(250)))
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.ExpiresAt, 5*time.Second)

	id, err := auth.ValidateToken(tok.Token)
	require.NoError(t, err)
	assert.Equal(t, tok.User.ID, id)

	login, err := auth.Login(ctx, models.LoginRequest{Email: "alice@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, tok.User.ID, login.User.ID)

	_, err = auth.Login(ctx, models.LoginRequest{Email: "alice@example.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Equal(t, "Invalid credentials", err.Error())

	_, err = auth.Login(ctx, models.LoginRequest{Email: "nobody@example.com", Password: "hunter22"})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestRegisterRejects(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	auth := newAuthService(t, env)

	_, err := auth.Register(ctx, models.RegisterRequest{Email: "a@example.com", Username: "alice", Password: "hunter22"})
	require.NoError(t, err)

	tests := []struct {
		name string
		req  models.RegisterRequest
		want error
	}{
		{name: "bad email", req: models.RegisterRequest{Email: "nope", Username: "bobby", Password: "hunter22"}, want: ErrValidation},
		{name: "short username", req: models.RegisterRequest{Email: "b@example.com", Username: "bo", Password: "hunter22"}, want: ErrValidation},
		{name: "short password", req: models.RegisterRequest{Email: "b@example.com", Username: "bobby", Password: "123"}, want: ErrValidation},
		{name: "email taken", req: models.RegisterRequest{Email: "A@example.com", Username: "bobby", Password: "hunter22"}, want: ErrConflict},
		{name: "username taken", req: models.RegisterRequest{Email: "b@example.com", Username: "alice", Password: "hunter22"}, want: ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.Register(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err = auth.Register(ctx, models.RegisterRequest{Email: "a@example.com", Username: "other", Password: "hunter22"})
	assert.EqualError(t, err, "email already in use.")
}

func TestValidateTokenRejectsForeignSignature(t *testing.T) {
	env := newTestEnv(t)
	auth := newAuthService(t, env)
	other := newAuthService(t, env)
	other.cfg.JWTSecret = "another-secret"

	token, _, err := other.generateToken("user-1")
	require.NoError(t, err)

	_, err = auth.ValidateToken(token)
	assert.Error(t, err)

	_, err = auth.ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestWalletSignIn(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	auth := newAuthService(t, env)

	key, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	addr := PublicKeyAddress(key.PubKey())

	_, err = auth.Nonce(ctx, addr[2:], "market.test", "https://market.test")
	assert.ErrorIs(t, err, ErrValidation)

	// Mixed-case addresses resolve to the same account
	challenge, err := auth.Nonce(ctx, "0x"+strings.ToUpper(addr[2:]), "market.test", "https://market.test")
	require.NoError(t, err)
	assert.Len(t, challenge.Nonce, 32)
	assert.Contains(t, challenge.Message, "Nonce: "+challenge.Nonce)
	assert.Contains(t, challenge.Message, addr)

	user, err := env.stores.Users.GetByWalletAddress(ctx, addr)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "user_"+addr[2:8], user.Username)
	assert.True(t, user.Balance.Equal(decimal.NewFromInt(200)))

	req := models.WalletAuthRequest{Address: addr, Signature: signPersonal(t, key, challenge.Message)}
	tok, err := auth.AuthenticateWithWallet(ctx, req, "market.test", "https://market.test")
	require.NoError(t, err)
	assert.Equal(t, user.ID, tok.User.ID)

	_, err = auth.AuthenticateWithWallet(ctx, req, "market.test", "https://market.test")
	assert.ErrorIs(t, err, ErrValidation, "nonce is single use")
}

func TestWalletSignInRejectsOtherSigner(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	auth := newAuthService(t, env)

	key, _ := btcec.NewPrivateKey()
	imposter, _ := btcec.NewPrivateKey()
	addr := PublicKeyAddress(key.PubKey())

	challenge, err := auth.Nonce(ctx, addr, "", "")
	require.NoError(t, err)

	_, err = auth.AuthenticateWithWallet(ctx, models.WalletAuthRequest{
		Address:   addr,
		Signature: signPersonal(t, imposter, challenge.Message),
	}, "", "")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	// The nonce survives a rejected attempt
	_, err = auth.AuthenticateWithWallet(ctx, models.WalletAuthRequest{
		Address:   addr,
		Signature: signPersonal(t, key, challenge.Message),
	}, "", "")
	require.NoError(t, err)

	_, err = auth.AuthenticateWithWallet(ctx, models.WalletAuthRequest{Address: addr, Signature: "zz"}, "", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestNonceReusesWalletAccount(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	auth := newAuthService(t, env)

	key, _ := btcec.NewPrivateKey()
	addr := PublicKeyAddress(key.PubKey())

	first, err := auth.Nonce(ctx, addr, "", "")
	require.NoError(t, err)
	second, err := auth.Nonce(ctx, addr, "", "")
	require.NoError(t, err)
	assert.NotEqual(t, first.Nonce, second.Nonce)

	user, err := env.stores.Users.GetByWalletAddress(ctx, addr)
	require.NoError(t, err)
	require.NotNil(t, user.LoginNonce)
	assert.Equal(t, second.Nonce, *user.LoginNonce)

	// A stale challenge no longer verifies
	_, err = auth.AuthenticateWithWallet(ctx, models.WalletAuthRequest{
		Address:   addr,
		Signature: signPersonal(t, key, first.Message),
	}, "", "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestRecoverAddressAcceptsBothRecoveryForms(t *testing.T) {
	wallet := NewWalletService()
	key, _ := btcec.NewPrivateKey()
	addr := PublicKeyAddress(key.PubKey())
	msg := wallet.SignInMessage("market.test", "https://market.test", addr, "abc")

	sig := signPersonal(t, key, msg)
	got, err := wallet.RecoverAddress(msg, sig)
	require.NoError(t, err)
	assert.Equal(t, addr, got)

	raw, _ := hex.DecodeString(sig[2:])
	raw[64] -= 27
	ok, err := wallet.VerifySignature(addr, msg, hex.EncodeToString(raw))
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = wallet.RecoverAddress(msg, "0x1234")
	assert.Error(t, err)
}

func TestPublicKeyAddressKnownVector(t *testing.T) {
	// Private key 1 maps to the well-known address of the generator point
	keyBytes, _ := hex.DecodeString("0000000000000000000000000000000000000000000000000000000000000001")
	key, _ := btcec.PrivKeyFromBytes(keyBytes)
	assert.Equal(t, "0x7e5f4552091a69125d5dfcb7b8c2659029395bdf", PublicKeyAddress(key.PubKey()))
}
