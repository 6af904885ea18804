package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/ninja813/NFT-marketplace/internal/models"
)

// TransactionRepository reads the append-only transaction log.
// Entries are written by NFTRepository inside the unit that causes them.
type TransactionRepository struct {
	db *Database
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(db *Database) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// ListByNFT returns the log for an NFT, newest first. limit <= 0 means unbounded.
func (r *TransactionRepository) ListByNFT(ctx context.Context, nftID string, limit int) ([]models.Transaction, error) {
	txs := []models.Transaction{}
	query := `SELECT id, type, nft_id, from_user_id, to_user_id, price, created_at
			  FROM transactions
			  WHERE nft_id = $1
			  ORDER BY created_at DESC, seq DESC`
	args := []interface{}{nftID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	if err := r.db.GetDB().SelectContext(ctx, &txs, query, args...); err != nil {
		return nil, err
	}

	return txs, nil
}

// CountSince counts log entries of a type created at or after since
func (r *TransactionRepository) CountSince(ctx context.Context, typ models.TransactionType, since time.Time) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM transactions WHERE type = $1 AND created_at >= $2`
	if err := r.db.GetDB().GetContext(ctx, &n, query, typ, since); err != nil {
		return 0, err
	}
	return n, nil
}

func appendTransaction(ctx context.Context, tx *sqlx.Tx, t *models.Transaction) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	t.CreatedAt = time.Now().UTC()

	query := `INSERT INTO transactions (id, type, nft_id, from_user_id, to_user_id, price, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := tx.ExecContext(ctx, query, t.ID, t.Type, t.NFTID, t.FromUserID, t.ToUserID, t.Price, t.CreatedAt)
	return err
}
