// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"trademind/internal/errors"
	"trademind/internal/models"
)

// DefaultTradeLimit caps how many trades GetTrades returns when the filter
// does not set a limit. Analytics over longer histories only see the most
// recent entries.
const DefaultTradeLimit = 200

// ErrDataNotFound is returned when a requested row does not exist.
var ErrDataNotFound = errors.ErrDataNotFound

// ErrTradeConflict is returned when a saved trade id is owned by another user.
var ErrTradeConflict = errors.ErrTradeConflict

// DataStore defines the interface for data persistence.
type DataStore interface {
	// Trades
	SaveTrade(ctx context.Context, trade *models.Trade) error
	SaveTrades(ctx context.Context, trades []models.Trade) error
	GetTrade(ctx context.Context, userID, id string) (*models.Trade, error)
	GetTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error)
	DeleteTrade(ctx context.Context, userID, id string) error

	// Profiles
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	SaveProfile(ctx context.Context, user *models.User) error

	// Lifecycle
	Close() error
}

// TradeFilter represents filters for querying trades.
type TradeFilter struct {
	UserID string
	Symbol string
	Status models.TradeStatus
	// Limit <= 0 means DefaultTradeLimit.
	Limit int
}

func (f TradeFilter) limit() int {
	if f.Limit <= 0 {
		return DefaultTradeLimit
	}
	return f.Limit
}
