package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Attribute is a single trait of an NFT
type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
	Rarity    string `json:"rarity,omitempty"`
}

// Attributes is stored as a JSON array column
type Attributes []Attribute

// Value implements driver.Valuer
func (a Attributes) Value() (driver.Value, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner
func (a *Attributes) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*a = Attributes{}
		return nil
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return fmt.Errorf("attributes: unsupported scan type %T", src)
	}
}

// HasRarity reports whether any attribute carries the given rarity
func (a Attributes) HasRarity(rarity string) bool {
	for _, attr := range a {
		if attr.Rarity == rarity {
			return true
		}
	}
	return false
}

// NFT represents a digital asset in the catalog.
// OnSale implies Price is set and positive.
type NFT struct {
	ID           string           `json:"id" db:"id"`
	Name         string           `json:"name" db:"name"`
	Description  *string          `json:"description,omitempty" db:"description"`
	ImageURL     *string          `json:"imageUrl,omitempty" db:"image_url"`
	ImageSeed    *string          `json:"imageSeed,omitempty" db:"image_seed"`
	CreatorID    string           `json:"creatorId" db:"creator_id"`
	OwnerID      string           `json:"ownerId" db:"owner_id"`
	CollectionID *string          `json:"collectionId,omitempty" db:"collection_id"`
	Attributes   Attributes       `json:"attributes" db:"attributes"`
	Price        *decimal.Decimal `json:"price,omitempty" db:"price"`
	OnSale       bool             `json:"onSale" db:"on_sale"`
	CreatedAt    time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time        `json:"updatedAt" db:"updated_at"`

	// Populated on read paths only
	CreatorName    *string `json:"creatorName,omitempty" db:"creator_name"`
	OwnerName      *string `json:"ownerName,omitempty" db:"owner_name"`
	CollectionName *string `json:"collectionName,omitempty" db:"collection_name"`
}

// Purchasable reports whether buy logic may act on the listing
func (n *NFT) Purchasable() bool {
	return n.OnSale && n.Price != nil && n.Price.IsPositive()
}

// MintRequest represents a request to mint a new NFT
type MintRequest struct {
	Name         string           `json:"name"`
	Description  *string          `json:"description,omitempty"`
	CollectionID *string          `json:"collectionId,omitempty"`
	Price        *decimal.Decimal `json:"price,omitempty"`
	Attributes   []Attribute      `json:"attributes,omitempty"`
	ImageSeed    *string          `json:"imageSeed,omitempty"`
	ImageURL     *string          `json:"imageUrl,omitempty"`
}

// ListRequest represents a request to put an NFT up for sale
type ListRequest struct {
	Price *decimal.Decimal `json:"price"`
}

// Sale describes an ownership transfer applied as one unit
type Sale struct {
	NFTID    string
	SellerID string
	BuyerID  string
	Price    decimal.Decimal
}

// NFTDetail is the NFT page payload
type NFTDetail struct {
	NFT     *NFT          `json:"nft"`
	History []Transaction `json:"history"`
}

// NFTListResponse represents a page of catalog results
type NFTListResponse struct {
	Items []NFT `json:"items"`
	Total int   `json:"total"`
	Page  int   `json:"page"`
	Pages int   `json:"pages"`
}
