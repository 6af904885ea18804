package services

import (
	"context"
	"time"

	"github.com/ninja813/NFT-marketplace/internal/models"
	"github.com/ninja813/NFT-marketplace/internal/store"
	"github.com/shopspring/decimal"
)

// UserStore persists accounts and ledger balances
type UserStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByWalletAddress(ctx context.Context, address string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, id string, upd models.ProfileUpdate) (*models.User, error)
	SetLoginNonce(ctx context.Context, id, nonce string) error
	ConsumeLoginNonce(ctx context.Context, id, nonce string) error
}

// CollectionStore persists collections
type CollectionStore interface {
	GetByID(ctx context.Context, id string) (*models.Collection, error)
	Create(ctx context.Context, col *models.Collection) error
	List(ctx context.Context, params models.CollectionParams) ([]models.Collection, int, error)
}

// NFTStore persists the catalog and applies mint, list and sale as single units
type NFTStore interface {
	GetByID(ctx context.Context, id string) (*models.NFT, error)
	Query(ctx context.Context, q models.NFTQuery) ([]models.NFT, int, error)
	Mint(ctx context.Context, nft *models.NFT) (*models.Transaction, error)
	ListForSale(ctx context.Context, nftID, ownerID string, price decimal.Decimal) (*models.NFT, error)
	ExecuteSale(ctx context.Context, sale models.Sale) (*models.Transaction, error)
}

// TransactionStore reads the transaction log
type TransactionStore interface {
	ListByNFT(ctx context.Context, nftID string, limit int) ([]models.Transaction, error)
	CountSince(ctx context.Context, typ models.TransactionType, since time.Time) (int, error)
}

// Broadcaster pushes realtime events to connected clients
type Broadcaster interface {
	Broadcast(event string, payload any)
}

// Stores bundles the repositories a process runs against
type Stores struct {
	Users        UserStore
	Collections  CollectionStore
	NFTs         NFTStore
	Transactions TransactionStore
}

// PostgresStores wires the sqlx repositories
func PostgresStores(db *store.Database) Stores {
	return Stores{
		Users:        store.NewUserRepository(db),
		Collections:  store.NewCollectionRepository(db),
		NFTs:         store.NewNFTRepository(db),
		Transactions: store.NewTransactionRepository(db),
	}
}

// MemoryStores wires the in-memory backend
func MemoryStores(m *store.Memory) Stores {
	return Stores{
		Users:        m.Users(),
		Collections:  m.Collections(),
		NFTs:         m.NFTs(),
		Transactions: m.Transactions(),
	}
}

type nopBroadcaster struct{}

func (nopBroadcaster) Broadcast(string, any) {}
