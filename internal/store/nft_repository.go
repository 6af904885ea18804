package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/ninja813/NFT-marketplace/internal/models"
	"github.com/shopspring/decimal"
)

const nftSelect = `SELECT n.id, n.name, n.description, n.image_url, n.image_seed, n.creator_id,
	n.owner_id, n.collection_id, n.attributes, n.price, n.on_sale, n.created_at, n.updated_at,
	cu.username AS creator_name, ou.username AS owner_name, c.name AS collection_name`

const nftFrom = ` FROM nfts n
	LEFT JOIN users cu ON cu.id = n.creator_id
	LEFT JOIN users ou ON ou.id = n.owner_id
	LEFT JOIN collections c ON c.id = n.collection_id`

var nftOrder = map[models.CatalogSort]string{
	models.SortNewest:    ` ORDER BY n.created_at DESC, n.id`,
	models.SortPriceAsc:  ` ORDER BY n.price ASC NULLS LAST, n.created_at DESC`,
	models.SortPriceDesc: ` ORDER BY n.price DESC NULLS LAST, n.created_at DESC`,
}

// NFTRepository handles database operations related to NFTs
type NFTRepository struct {
	db *Database
}

// NewNFTRepository creates a new NFTRepository
func NewNFTRepository(db *Database) *NFTRepository {
	return &NFTRepository{
		db: db,
	}
}

// GetByID retrieves an NFT by ID
func (r *NFTRepository) GetByID(ctx context.Context, id string) (*models.NFT, error) {
	nft := &models.NFT{}
	query := nftSelect + nftFrom + ` WHERE n.id = $1`

	err := r.db.GetDB().GetContext(ctx, nft, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return nft, nil
}

// Query retrieves a page of NFTs matching q along with the total match count.
// q must already be normalized.
func (r *NFTRepository) Query(ctx context.Context, q models.NFTQuery) ([]models.NFT, int, error) {
	nfts := []models.NFT{}
	where, args, err := nftFilter(q)
	if err != nil {
		return nil, 0, err
	}

	db := r.db.GetDB()

	var total int
	countQuery := `SELECT COUNT(*) FROM nfts n` + where
	if err := db.GetContext(ctx, &total, db.Rebind(countQuery), args...); err != nil {
		return nil, 0, err
	}

	order, ok := nftOrder[q.Sort]
	if !ok {
		order = nftOrder[models.SortNewest]
	}
	selectQuery := nftSelect + nftFrom + where + order + ` LIMIT ? OFFSET ?`
	args = append(args, q.Limit, q.Offset())
	if err := db.SelectContext(ctx, &nfts, db.Rebind(selectQuery), args...); err != nil {
		return nil, 0, err
	}

	return nfts, total, nil
}

// nftFilter renders the WHERE clause for a catalog query with ? placeholders
func nftFilter(q models.NFTQuery) (string, []interface{}, error) {
	var clauses []string
	var args []interface{}

	if q.Search != "" {
		clauses = append(clauses, `to_tsvector('simple', n.name || ' ' || coalesce(n.description, '')) @@ plainto_tsquery('simple', ?)`)
		args = append(args, q.Search)
	}
	if q.OnSale != nil {
		clauses = append(clauses, `n.on_sale = ?`)
		args = append(args, *q.OnSale)
	}
	if q.MinPrice != nil {
		clauses = append(clauses, `n.price >= ?`)
		args = append(args, *q.MinPrice)
	}
	if q.MaxPrice != nil {
		clauses = append(clauses, `n.price <= ?`)
		args = append(args, *q.MaxPrice)
	}
	if q.Category != "" {
		clauses = append(clauses, `n.collection_id IN (SELECT id FROM collections WHERE category = ?)`)
		args = append(args, q.Category)
	}
	if q.Rarity != "" {
		containment, err := json.Marshal([]map[string]string{{"rarity": q.Rarity}})
		if err != nil {
			return "", nil, err
		}
		clauses = append(clauses, `n.attributes @> ?::jsonb`)
		args = append(args, string(containment))
	}
	if q.OwnerID != "" {
		clauses = append(clauses, `n.owner_id = ?`)
		args = append(args, q.OwnerID)
	}
	if q.CollectionID != "" {
		clauses = append(clauses, `n.collection_id = ?`)
		args = append(args, q.CollectionID)
	}

	if len(clauses) == 0 {
		return "", args, nil
	}
	return ` WHERE ` + strings.Join(clauses, ` AND `), args, nil
}

// Mint inserts a new NFT and its mint transaction as one unit
func (r *NFTRepository) Mint(ctx context.Context, nft *models.NFT) (*models.Transaction, error) {
	if nft.ID == "" {
		nft.ID = uuid.New().String()
	}
	if nft.Attributes == nil {
		nft.Attributes = models.Attributes{}
	}
	now := time.Now().UTC()
	nft.CreatedAt = now
	nft.UpdatedAt = now

	record := &models.Transaction{
		Type:     models.TransactionMint,
		NFTID:    nft.ID,
		ToUserID: &nft.CreatorID,
	}

	err := r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		query := `INSERT INTO nfts (id, name, description, image_url, image_seed, creator_id, owner_id,
				  collection_id, attributes, price, on_sale, created_at, updated_at)
				  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

		_, err := tx.ExecContext(ctx, query,
			nft.ID, nft.Name, nft.Description, nft.ImageURL, nft.ImageSeed, nft.CreatorID,
			nft.OwnerID, nft.CollectionID, nft.Attributes, nft.Price, nft.OnSale,
			nft.CreatedAt, nft.UpdatedAt)
		if err != nil {
			return err
		}

		return appendTransaction(ctx, tx, record)
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

// ListForSale sets the price and on-sale flag if ownerID still owns the NFT,
// and records the list transaction in the same unit
func (r *NFTRepository) ListForSale(ctx context.Context, nftID, ownerID string, price decimal.Decimal) (*models.NFT, error) {
	err := r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		query := `UPDATE nfts SET price = $1, on_sale = true, updated_at = $2
				  WHERE id = $3 AND owner_id = $4`
		res, err := tx.ExecContext(ctx, query, price, time.Now().UTC(), nftID, ownerID)
		if err != nil {
			return err
		}
		if err := expectOne(res, ErrNotOwner); err != nil {
			return err
		}

		return appendTransaction(ctx, tx, &models.Transaction{
			Type:       models.TransactionList,
			NFTID:      nftID,
			FromUserID: &ownerID,
			Price:      &price,
		})
	})
	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, nftID)
}

// ExecuteSale transfers the NFT and moves funds as one unit. The NFT row is
// claimed first with a conditional update so concurrent buyers serialize on it;
// the loser matches no row and gets ErrSaleConflict. Balance rows are then
// locked in id order.
func (r *NFTRepository) ExecuteSale(ctx context.Context, sale models.Sale) (*models.Transaction, error) {
	record := &models.Transaction{
		Type:       models.TransactionSale,
		NFTID:      sale.NFTID,
		FromUserID: &sale.SellerID,
		ToUserID:   &sale.BuyerID,
		Price:      &sale.Price,
	}

	err := r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		now := time.Now().UTC()

		claim := `UPDATE nfts SET owner_id = $1, on_sale = false, updated_at = $2
				  WHERE id = $3 AND on_sale AND owner_id = $4 AND price = $5`
		res, err := tx.ExecContext(ctx, claim, sale.BuyerID, now, sale.NFTID, sale.SellerID, sale.Price)
		if err != nil {
			return err
		}
		if err := expectOne(res, ErrSaleConflict); err != nil {
			return err
		}

		debit := func() error {
			res, err := tx.ExecContext(ctx,
				`UPDATE users SET balance = balance - $1, updated_at = $2 WHERE id = $3 AND balance >= $1`,
				sale.Price, now, sale.BuyerID)
			if err != nil {
				return err
			}
			return expectOne(res, ErrInsufficientBalance)
		}
		credit := func() error {
			res, err := tx.ExecContext(ctx,
				`UPDATE users SET balance = balance + $1, updated_at = $2 WHERE id = $3`,
				sale.Price, now, sale.SellerID)
			if err != nil {
				return err
			}
			return expectOne(res, ErrUserMissing)
		}

		steps := []func() error{debit, credit}
		if sale.SellerID < sale.BuyerID {
			steps = []func() error{credit, debit}
		}
		for _, step := range steps {
			if err := step(); err != nil {
				return err
			}
		}

		return appendTransaction(ctx, tx, record)
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}
