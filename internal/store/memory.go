package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ninja813/NFT-marketplace/internal/models"
	"github.com/shopspring/decimal"
)

// Memory is a process-local backend with the same contracts as the Postgres
// repositories. A single mutex guards every table, so each operation is one
// indivisible unit. Records are copied on the way in and out.
type Memory struct {
	mu sync.Mutex

	users       map[string]*models.User
	collections map[string]*models.Collection
	colOrder    []string
	nfts        map[string]*models.NFT
	nftOrder    []string
	txs         []models.Transaction
}

// NewMemory creates an empty in-memory backend
func NewMemory() *Memory {
	return &Memory{
		users:       make(map[string]*models.User),
		collections: make(map[string]*models.Collection),
		nfts:        make(map[string]*models.NFT),
	}
}

// Users returns the user repository view
func (m *Memory) Users() *MemoryUsers { return &MemoryUsers{m: m} }

// Collections returns the collection repository view
func (m *Memory) Collections() *MemoryCollections { return &MemoryCollections{m: m} }

// NFTs returns the NFT repository view
func (m *Memory) NFTs() *MemoryNFTs { return &MemoryNFTs{m: m} }

// Transactions returns the transaction log view
func (m *Memory) Transactions() *MemoryTransactions { return &MemoryTransactions{m: m} }

// Truncate empties every table
func (m *Memory) Truncate(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = make(map[string]*models.User)
	m.collections = make(map[string]*models.Collection)
	m.colOrder = nil
	m.nfts = make(map[string]*models.NFT)
	m.nftOrder = nil
	m.txs = nil
	return nil
}

func copyUser(u *models.User) *models.User {
	c := *u
	return &c
}

func copyNFT(n *models.NFT) *models.NFT {
	c := *n
	c.Attributes = append(models.Attributes{}, n.Attributes...)
	if n.Price != nil {
		p := *n.Price
		c.Price = &p
	}
	return &c
}

func (m *Memory) appendTx(t *models.Transaction) {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	t.CreatedAt = time.Now().UTC()
	m.txs = append(m.txs, *t)
}

// decorate fills the joined display names the SQL read path provides
func (m *Memory) decorate(n *models.NFT) *models.NFT {
	c := copyNFT(n)
	if u, ok := m.users[n.CreatorID]; ok {
		name := u.Username
		c.CreatorName = &name
	}
	if u, ok := m.users[n.OwnerID]; ok {
		name := u.Username
		c.OwnerName = &name
	}
	if n.CollectionID != nil {
		if col, ok := m.collections[*n.CollectionID]; ok {
			name := col.Name
			c.CollectionName = &name
		}
	}
	return c
}

// MemoryUsers implements the user repository contract over Memory
type MemoryUsers struct {
	m *Memory
}

// GetByID retrieves a user by ID
func (r *MemoryUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if u, ok := r.m.users[id]; ok {
		return copyUser(u), nil
	}
	return nil, nil
}

// GetByEmail retrieves a user by email address
func (r *MemoryUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email == email })
}

// GetByUsername retrieves a user by username
func (r *MemoryUsers) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Username == username })
}

// GetByWalletAddress retrieves a user by wallet address
func (r *MemoryUsers) GetByWalletAddress(ctx context.Context, address string) (*models.User, error) {
	return r.find(func(u *models.User) bool {
		return u.WalletAddress != nil && *u.WalletAddress == address
	})
}

func (r *MemoryUsers) find(match func(*models.User) bool) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if match(u) {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

// duplicateField reports the first unique column of u already taken by another user
func (m *Memory) duplicateField(u *models.User) string {
	for _, other := range m.users {
		if other.ID == u.ID {
			continue
		}
		switch {
		case other.Email == u.Email:
			return "email"
		case other.Username == u.Username:
			return "username"
		case u.WalletAddress != nil && other.WalletAddress != nil && *u.WalletAddress == *other.WalletAddress:
			return "wallet_address"
		}
	}
	return ""
}

// Create creates a new user
func (r *MemoryUsers) Create(ctx context.Context, user *models.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if field := r.m.duplicateField(user); field != "" {
		return &DuplicateError{Field: field}
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.m.users[user.ID] = copyUser(user)
	return nil
}

// UpdateProfile applies the non-nil fields of upd and returns the updated user
func (r *MemoryUsers) UpdateProfile(ctx context.Context, id string, upd models.ProfileUpdate) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	u, ok := r.m.users[id]
	if !ok {
		return nil, nil
	}
	next := copyUser(u)
	if upd.Bio != nil {
		next.Bio = upd.Bio
	}
	if upd.Username != nil {
		next.Username = *upd.Username
	}
	if field := r.m.duplicateField(next); field != "" {
		return nil, &DuplicateError{Field: field}
	}
	next.UpdatedAt = time.Now().UTC()
	r.m.users[id] = next
	return copyUser(next), nil
}

// SetLoginNonce stores a fresh single-use wallet login nonce
func (r *MemoryUsers) SetLoginNonce(ctx context.Context, id, nonce string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	u, ok := r.m.users[id]
	if !ok {
		return ErrUserMissing
	}
	u.LoginNonce = &nonce
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// ConsumeLoginNonce clears the nonce only if it still equals nonce
func (r *MemoryUsers) ConsumeLoginNonce(ctx context.Context, id, nonce string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	u, ok := r.m.users[id]
	if !ok || u.LoginNonce == nil || *u.LoginNonce != nonce {
		return ErrNonceMismatch
	}
	u.LoginNonce = nil
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// MemoryCollections implements the collection repository contract over Memory
type MemoryCollections struct {
	m *Memory
}

// GetByID retrieves a collection by ID
func (r *MemoryCollections) GetByID(ctx context.Context, id string) (*models.Collection, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if c, ok := r.m.collections[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

// Create creates a new collection
func (r *MemoryCollections) Create(ctx context.Context, col *models.Collection) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if col.ID == "" {
		col.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	col.CreatedAt = now
	col.UpdatedAt = now
	cp := *col
	r.m.collections[col.ID] = &cp
	r.m.colOrder = append(r.m.colOrder, col.ID)
	return nil
}

// List retrieves collections based on filter parameters, newest first
func (r *MemoryCollections) List(ctx context.Context, params models.CollectionParams) ([]models.Collection, int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	var matched []models.Collection
	for i := len(r.m.colOrder) - 1; i >= 0; i-- {
		c := r.m.collections[r.m.colOrder[i]]
		if params.Category != "" && (c.Category == nil || *c.Category != params.Category) {
			continue
		}
		text := c.Name
		if c.Description != nil {
			text += " " + *c.Description
		}
		if models.MatchesWords(text, params.Search) {
			matched = append(matched, *c)
		}
	}

	return paginate(matched, params.Page, params.Limit), len(matched), nil
}

func paginate[T any](items []T, page, limit int) []T {
	start := (page - 1) * limit
	if start < 0 {
		start = 0
	}
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// MemoryNFTs implements the NFT repository contract over Memory
type MemoryNFTs struct {
	m *Memory
}

// GetByID retrieves an NFT by ID
func (r *MemoryNFTs) GetByID(ctx context.Context, id string) (*models.NFT, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if n, ok := r.m.nfts[id]; ok {
		return r.m.decorate(n), nil
	}
	return nil, nil
}

// Query retrieves a page of NFTs matching q along with the total match count
func (r *MemoryNFTs) Query(ctx context.Context, q models.NFTQuery) ([]models.NFT, int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	categoryOf := func(collectionID string) string {
		if c, ok := r.m.collections[collectionID]; ok && c.Category != nil {
			return *c.Category
		}
		return ""
	}

	// newest first is the base order; price sorts are stable on top of it
	var matched []models.NFT
	for i := len(r.m.nftOrder) - 1; i >= 0; i-- {
		n := r.m.nfts[r.m.nftOrder[i]]
		if q.Matches(n, categoryOf) {
			matched = append(matched, *r.m.decorate(n))
		}
	}

	switch q.Sort {
	case models.SortPriceAsc:
		sort.SliceStable(matched, func(i, j int) bool {
			return priceLess(matched[i].Price, matched[j].Price, false)
		})
	case models.SortPriceDesc:
		sort.SliceStable(matched, func(i, j int) bool {
			return priceLess(matched[i].Price, matched[j].Price, true)
		})
	}

	return paginate(matched, q.Page, q.Limit), len(matched), nil
}

// priceLess orders prices with nil last in both directions
func priceLess(a, b *decimal.Decimal, desc bool) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	case desc:
		return a.GreaterThan(*b)
	default:
		return a.LessThan(*b)
	}
}

// Mint inserts a new NFT and its mint transaction as one unit
func (r *MemoryNFTs) Mint(ctx context.Context, nft *models.NFT) (*models.Transaction, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if nft.ID == "" {
		nft.ID = uuid.New().String()
	}
	if nft.Attributes == nil {
		nft.Attributes = models.Attributes{}
	}
	now := time.Now().UTC()
	nft.CreatedAt = now
	nft.UpdatedAt = now

	r.m.nfts[nft.ID] = copyNFT(nft)
	r.m.nftOrder = append(r.m.nftOrder, nft.ID)

	creator := nft.CreatorID
	record := &models.Transaction{
		Type:     models.TransactionMint,
		NFTID:    nft.ID,
		ToUserID: &creator,
	}
	r.m.appendTx(record)
	return record, nil
}

// ListForSale sets the price and on-sale flag if ownerID still owns the NFT
func (r *MemoryNFTs) ListForSale(ctx context.Context, nftID, ownerID string, price decimal.Decimal) (*models.NFT, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	n, ok := r.m.nfts[nftID]
	if !ok || n.OwnerID != ownerID {
		return nil, ErrNotOwner
	}
	p := price
	n.Price = &p
	n.OnSale = true
	n.UpdatedAt = time.Now().UTC()

	owner := ownerID
	listed := price
	r.m.appendTx(&models.Transaction{
		Type:       models.TransactionList,
		NFTID:      nftID,
		FromUserID: &owner,
		Price:      &listed,
	})
	return r.m.decorate(n), nil
}

// ExecuteSale transfers the NFT and moves funds as one unit
func (r *MemoryNFTs) ExecuteSale(ctx context.Context, sale models.Sale) (*models.Transaction, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	n, ok := r.m.nfts[sale.NFTID]
	if !ok || !n.OnSale || n.OwnerID != sale.SellerID || n.Price == nil || !n.Price.Equal(sale.Price) {
		return nil, ErrSaleConflict
	}
	buyer, ok := r.m.users[sale.BuyerID]
	if !ok || buyer.Balance.LessThan(sale.Price) {
		return nil, ErrInsufficientBalance
	}
	seller, ok := r.m.users[sale.SellerID]
	if !ok {
		return nil, ErrUserMissing
	}

	now := time.Now().UTC()
	buyer.Balance = buyer.Balance.Sub(sale.Price)
	buyer.UpdatedAt = now
	seller.Balance = seller.Balance.Add(sale.Price)
	seller.UpdatedAt = now
	n.OwnerID = sale.BuyerID
	n.OnSale = false
	n.UpdatedAt = now

	from, to, price := sale.SellerID, sale.BuyerID, sale.Price
	record := &models.Transaction{
		Type:       models.TransactionSale,
		NFTID:      sale.NFTID,
		FromUserID: &from,
		ToUserID:   &to,
		Price:      &price,
	}
	r.m.appendTx(record)
	return record, nil
}

// MemoryTransactions implements the transaction log contract over Memory
type MemoryTransactions struct {
	m *Memory
}

// ListByNFT returns the log for an NFT, newest first. limit <= 0 means unbounded.
func (r *MemoryTransactions) ListByNFT(ctx context.Context, nftID string, limit int) ([]models.Transaction, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	txs := []models.Transaction{}
	for i := len(r.m.txs) - 1; i >= 0; i-- {
		if r.m.txs[i].NFTID != nftID {
			continue
		}
		txs = append(txs, r.m.txs[i])
		if limit > 0 && len(txs) == limit {
			break
		}
	}
	return txs, nil
}

// CountSince counts log entries of a type created at or after since
func (r *MemoryTransactions) CountSince(ctx context.Context, typ models.TransactionType, since time.Time) (int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	n := 0
	for _, t := range r.m.txs {
		if t.Type == typ && !t.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}
