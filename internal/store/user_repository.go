package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/ninja813/NFT-marketplace/internal/models"
)

const userColumns = `id, email, username, password_hash, bio, avatar_seed, balance,
	wallet_address, login_nonce, created_at, updated_at`

// UserRepository handles database operations related to users
type UserRepository struct {
	db *Database
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *Database) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getBy(ctx, "id", id)
}

// GetByEmail retrieves a user by email address
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getBy(ctx, "email", email)
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getBy(ctx, "username", username)
}

// GetByWalletAddress retrieves a user by wallet address
func (r *UserRepository) GetByWalletAddress(ctx context.Context, address string) (*models.User, error) {
	return r.getBy(ctx, "wallet_address", address)
}

func (r *UserRepository) getBy(ctx context.Context, column, value string) (*models.User, error) {
	user := &models.User{}
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1`

	err := r.db.GetDB().GetContext(ctx, user, query, value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return user, nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `INSERT INTO users (id, email, username, password_hash, bio, avatar_seed, balance,
			  wallet_address, login_nonce, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.GetDB().ExecContext(ctx, query,
		user.ID, user.Email, user.Username, user.PasswordHash, user.Bio, user.AvatarSeed,
		user.Balance, user.WalletAddress, user.LoginNonce, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return asDuplicate(err, "users")
	}

	return nil
}

// UpdateProfile applies the non-nil fields of upd and returns the updated user
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, upd models.ProfileUpdate) (*models.User, error) {
	user := &models.User{}
	query := `UPDATE users SET bio = COALESCE($1, bio), username = COALESCE($2, username), updated_at = $3
			  WHERE id = $4
			  RETURNING ` + userColumns

	err := r.db.GetDB().GetContext(ctx, user, query, upd.Bio, upd.Username, time.Now().UTC(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, asDuplicate(err, "users")
	}

	return user, nil
}

// SetLoginNonce stores a fresh single-use wallet login nonce
func (r *UserRepository) SetLoginNonce(ctx context.Context, id, nonce string) error {
	query := `UPDATE users SET login_nonce = $1, updated_at = $2 WHERE id = $3`
	res, err := r.db.GetDB().ExecContext(ctx, query, nonce, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return expectOne(res, ErrUserMissing)
}

// ConsumeLoginNonce clears the nonce only if it still equals nonce
func (r *UserRepository) ConsumeLoginNonce(ctx context.Context, id, nonce string) error {
	query := `UPDATE users SET login_nonce = NULL, updated_at = $1 WHERE id = $2 AND login_nonce = $3`
	res, err := r.db.GetDB().ExecContext(ctx, query, time.Now().UTC(), id, nonce)
	if err != nil {
		return err
	}
	return expectOne(res, ErrNonceMismatch)
}

// expectOne returns miss when a conditional statement touched no row
func expectOne(res sql.Result, miss error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return miss
	}
	return nil
}
