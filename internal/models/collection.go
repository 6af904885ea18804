package models

import "time"

// Collection groups NFTs under a creator and category
type Collection struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	CreatorID   string    `json:"creatorId" db:"creator_id"`
	Category    *string   `json:"category,omitempty" db:"category"`
	BannerSeed  *string   `json:"bannerSeed,omitempty" db:"banner_seed"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// CreateCollectionRequest represents a request to create a collection
type CreateCollectionRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	BannerSeed  *string `json:"bannerSeed,omitempty"`
}

// CollectionParams represents the parameters for filtering collections
type CollectionParams struct {
	Search   string `json:"q"`
	Category string `json:"category"`
	Page     int    `json:"page"`
	Limit    int    `json:"limit"`
}

// CollectionDetail is the collection page payload
type CollectionDetail struct {
	Collection *Collection `json:"collection"`
	Creator    *PublicUser `json:"creator"`
	NFTs       []NFT       `json:"nfts"`
}

// CollectionListResponse represents a page of collections
type CollectionListResponse struct {
	Items []Collection `json:"items"`
	Total int          `json:"total"`
	Page  int          `json:"page"`
	Pages int          `json:"pages"`
}
