// Package store persists buyer/seller profiles and matches.
package store

import (
	"context"

	"github.com/sells-group/dealmatch/internal/model"
)

// MatchFilter specifies criteria for listing matches.
type MatchFilter struct {
	Status   model.MatchStatus `json:"status,omitempty"`
	BuyerID  string            `json:"buyer_id,omitempty"`
	SellerID string            `json:"seller_id,omitempty"`
	Limit    int               `json:"limit,omitempty"`
	Offset   int               `json:"offset,omitempty"`
}

// Store defines the persistence interface for profiles and matches.
type Store interface {
	// Buyers
	CreateBuyer(ctx context.Context, buyer *model.BuyerProfile) error
	GetBuyer(ctx context.Context, id string) (*model.BuyerProfile, error)
	ListBuyers(ctx context.Context) ([]model.BuyerProfile, error)
	UpdateBuyer(ctx context.Context, buyer *model.BuyerProfile) error

	// Sellers
	CreateSeller(ctx context.Context, seller *model.SellerProfile) error
	GetSeller(ctx context.Context, id string) (*model.SellerProfile, error)
	ListSellers(ctx context.Context) ([]model.SellerProfile, error)
	UpdateSeller(ctx context.Context, seller *model.SellerProfile) error

	// Matches
	CreateMatch(ctx context.Context, match *model.Match) error
	GetMatch(ctx context.Context, id string) (*model.Match, error)
	ListMatches(ctx context.Context, filter MatchFilter) ([]model.Match, error)
	UpdateMatchStatus(ctx context.Context, id string, status model.MatchStatus) error
	UpdateMatchStep(ctx context.Context, id string, step int) error
	AppendMessage(ctx context.Context, matchID string, msg model.Message) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
