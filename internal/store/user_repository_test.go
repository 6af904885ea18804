package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/ninja813/NFT-marketplace/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserMapsUniqueViolation(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_username_key"})

	err := repo.Create(context.Background(), &models.User{
		Email:    "a@example.com",
		Username: "alice",
		Balance:  decimal.NewFromInt(250),
	})

	var dup *DuplicateError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "username", dup.Field)
	assert.Equal(t, "username already in use", dup.Error())
}

func TestAsDuplicatePassesOtherErrors(t *testing.T) {
	other := &pq.Error{Code: "23503", Constraint: "nfts_owner_id_fkey"}
	assert.Same(t, other, asDuplicate(other, "users"))

	plain := errors.New("connection reset")
	assert.Equal(t, plain, asDuplicate(plain, "users"))
}

func TestConsumeLoginNonceMismatch(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET login_nonce = NULL`)).
		WithArgs(sqlmock.AnyArg(), "u-1", "stale").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.ConsumeLoginNonce(context.Background(), "u-1", "stale")
	assert.ErrorIs(t, err, ErrNonceMismatch)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProfileUnknownUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	bio := "hello"
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE users SET bio = COALESCE($1, bio)`)).
		WithArgs("hello", nil, sqlmock.AnyArg(), "missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	user, err := repo.UpdateProfile(context.Background(), "missing", models.ProfileUpdate{Bio: &bio})
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestTransactionCountSince(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTransactionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM transactions WHERE type = $1 AND created_at >= $2`)).
		WithArgs("sale", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := repo.CountSince(context.Background(), models.TransactionSale, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
