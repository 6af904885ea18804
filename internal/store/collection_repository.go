package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ninja813/NFT-marketplace/internal/models"
)

const collectionColumns = `id, name, description, creator_id, category, banner_seed, created_at, updated_at`

// CollectionRepository handles database operations related to collections
type CollectionRepository struct {
	db *Database
}

// NewCollectionRepository creates a new CollectionRepository
func NewCollectionRepository(db *Database) *CollectionRepository {
	return &CollectionRepository{db: db}
}

// GetByID retrieves a collection by ID
func (r *CollectionRepository) GetByID(ctx context.Context, id string) (*models.Collection, error) {
	col := &models.Collection{}
	query := `SELECT ` + collectionColumns + ` FROM collections WHERE id = $1`

	err := r.db.GetDB().GetContext(ctx, col, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return col, nil
}

// Create creates a new collection
func (r *CollectionRepository) Create(ctx context.Context, col *models.Collection) error {
	if col.ID == "" {
		col.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	col.CreatedAt = now
	col.UpdatedAt = now

	query := `INSERT INTO collections (id, name, description, creator_id, category, banner_seed, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.GetDB().ExecContext(ctx, query,
		col.ID, col.Name, col.Description, col.CreatorID, col.Category, col.BannerSeed,
		col.CreatedAt, col.UpdatedAt)
	return err
}

// List retrieves collections based on filter parameters, newest first
func (r *CollectionRepository) List(ctx context.Context, params models.CollectionParams) ([]models.Collection, int, error) {
	cols := []models.Collection{}

	var where []string
	var args []interface{}
	if params.Search != "" {
		where = append(where, `to_tsvector('simple', name || ' ' || coalesce(description, '')) @@ plainto_tsquery('simple', ?)`)
		args = append(args, params.Search)
	}
	if params.Category != "" {
		where = append(where, `category = ?`)
		args = append(args, params.Category)
	}

	baseQuery := ` FROM collections`
	if len(where) > 0 {
		baseQuery += ` WHERE ` + strings.Join(where, ` AND `)
	}

	db := r.db.GetDB()

	var total int
	if err := db.GetContext(ctx, &total, db.Rebind(`SELECT COUNT(*)`+baseQuery), args...); err != nil {
		return nil, 0, err
	}

	selectQuery := `SELECT ` + collectionColumns + baseQuery + ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, params.Limit, (params.Page-1)*params.Limit)
	if err := db.SelectContext(ctx, &cols, db.Rebind(selectQuery), args...); err != nil {
		return nil, 0, err
	}

	return cols, total, nil
}
