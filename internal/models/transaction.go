package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the kind of event recorded in the transaction log
type TransactionType string

const (
	TransactionMint TransactionType = "mint"
	TransactionList TransactionType = "list"
	TransactionSale TransactionType = "sale"
)

// Transaction is an immutable entry of the transaction log
type Transaction struct {
	ID         string           `json:"id" db:"id"`
	Type       TransactionType  `json:"type" db:"type"`
	NFTID      string           `json:"nftId" db:"nft_id"`
	FromUserID *string          `json:"from,omitempty" db:"from_user_id"`
	ToUserID   *string          `json:"to,omitempty" db:"to_user_id"`
	Price      *decimal.Decimal `json:"price,omitempty" db:"price"`
	CreatedAt  time.Time        `json:"createdAt" db:"created_at"`
}

// MarketStats is the payload of the live sales ticker
type MarketStats struct {
	T             time.Time `json:"t"`
	SalesLastHour int       `json:"salesLastHour"`
}

// SaleEvent is pushed to realtime subscribers after a completed sale
type SaleEvent struct {
	NFTID string          `json:"nftId"`
	From  string          `json:"from"`
	To    string          `json:"to"`
	Price decimal.Decimal `json:"price"`
	At    time.Time       `json:"at"`
}
