// Package journal implements the trade lifecycle on top of the store.
package journal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"trademind/internal/analytics"
	"trademind/internal/errors"
	"trademind/internal/logging"
	"trademind/internal/models"
	"trademind/internal/store"
)

// OtherSymbol selects the custom symbol field on a new trade.
const OtherSymbol = "OTHER"

// NewTrade is the input for recording a trade.
type NewTrade struct {
	Symbol        string
	CustomSymbol  string
	Type          models.TradeType
	Side          models.TradeSide
	EntryPrice    float64
	ExitPrice     *float64
	Quantity      float64
	EntryDate     time.Time
	ExitDate      *time.Time
	Fees          float64
	Notes         string
	OptionDetails *models.OptionDetails
	Tags          []string
	Emotions      []string
	Mistakes      []string
	Strategies    []string
}

// TradeEdit carries the fields to change on an existing trade. Nil fields
// are left untouched.
type TradeEdit struct {
	Symbol        *string
	Type          *models.TradeType
	Side          *models.TradeSide
	EntryPrice    *float64
	ExitPrice     *float64
	Quantity      *float64
	EntryDate     *time.Time
	ExitDate      *time.Time
	Fees          *float64
	Notes         *string
	OptionDetails *models.OptionDetails
	Emotions      []string
	Mistakes      []string
	Strategies    []string
	// Reopen clears the exit and moves the trade back to OPEN.
	Reopen bool
}

// Service records and edits trades for a single user.
type Service struct {
	store  store.DataStore
	userID string
	limit  int
	logger zerolog.Logger
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithFetchLimit sets how many trades List returns by default.
func WithFetchLimit(n int) Option {
	return func(s *Service) { s.limit = n }
}

// NewService creates a journal service for userID.
func NewService(ds store.DataStore, userID string, opts ...Option) *Service {
	s := &Service{
		store:  ds,
		userID: userID,
		limit:  store.DefaultTradeLimit,
		logger: zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.WithUser(s.logger, userID)
	return s
}

// UserID returns the journal owner.
func (s *Service) UserID() string {
	return s.userID
}

// Add validates and stores a new trade. The trade is CLOSED when an exit
// price is given, and its exit date defaults to now.
func (s *Service) Add(ctx context.Context, in NewTrade) (*models.Trade, error) {
	symbol := in.Symbol
	if strings.EqualFold(trimSpace(symbol), OtherSymbol) {
		symbol = in.CustomSymbol
	}

	t := &models.Trade{
		ID:            uuid.NewString(),
		UserID:        s.userID,
		Symbol:        NormalizeSymbol(symbol),
		Type:          in.Type,
		Side:          in.Side,
		EntryPrice:    in.EntryPrice,
		Quantity:      in.Quantity,
		EntryDate:     in.EntryDate,
		Fees:          in.Fees,
		Status:        models.StatusOpen,
		Tags:          NormalizeTags(in.Tags),
		Notes:         trimSpace(in.Notes),
		OptionDetails: in.OptionDetails,
		Emotions:      NormalizeTags(in.Emotions),
		Mistakes:      NormalizeTags(in.Mistakes),
		Strategies:    NormalizeTags(in.Strategies),
	}
	if t.Type == "" {
		t.Type = models.TradeTypeStock
	}
	if t.Side == "" {
		t.Side = models.SideLong
	}
	if t.EntryDate.IsZero() {
		t.EntryDate = s.now()
	}
	if t.Type != models.TradeTypeOption {
		t.OptionDetails = nil
	}
	if in.ExitPrice != nil {
		t.Status = models.StatusClosed
		t.ExitPrice = models.Float(*in.ExitPrice)
		t.ExitDate = in.ExitDate
		if t.ExitDate == nil {
			t.ExitDate = models.Time(s.now())
		}
	}

	if err := ValidateTrade(t); err != nil {
		return nil, err
	}
	if err := s.store.SaveTrade(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to save trade: %w", err)
	}

	logging.LogTradeSaved(s.logger, t.ID, t.Symbol, string(t.Side), string(t.Status))
	return t, nil
}

// Close moves an OPEN trade to CLOSED at exitPrice. A nil exitDate means now.
func (s *Service) Close(ctx context.Context, id string, exitPrice float64, exitDate *time.Time) (*models.Trade, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.IsClosed() {
		return nil, errors.NewTradeError(id, "close", "trade is not open", errors.ErrTradeClosed)
	}

	t.Status = models.StatusClosed
	t.ExitPrice = models.Float(exitPrice)
	if exitDate != nil {
		t.ExitDate = models.Time(*exitDate)
	} else {
		t.ExitDate = models.Time(s.now())
	}

	if err := ValidateTrade(t); err != nil {
		return nil, err
	}
	if err := s.store.SaveTrade(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to close trade: %w", err)
	}

	logging.LogTradeClosed(s.logger, t.ID, t.Symbol, exitPrice, analytics.NetPnL(*t))
	return t, nil
}

// Update applies edit to the trade with the given id.
func (s *Service) Update(ctx context.Context, id string, edit TradeEdit) (*models.Trade, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if edit.Symbol != nil {
		t.Symbol = NormalizeSymbol(*edit.Symbol)
	}
	if edit.Type != nil {
		t.Type = *edit.Type
	}
	if edit.Side != nil {
		t.Side = *edit.Side
	}
	if edit.EntryPrice != nil {
		t.EntryPrice = *edit.EntryPrice
	}
	if edit.Quantity != nil {
		t.Quantity = *edit.Quantity
	}
	if edit.EntryDate != nil {
		t.EntryDate = *edit.EntryDate
	}
	if edit.Fees != nil {
		t.Fees = *edit.Fees
	}
	if edit.Notes != nil {
		t.Notes = trimSpace(*edit.Notes)
	}
	if edit.OptionDetails != nil {
		t.OptionDetails = edit.OptionDetails
	}
	if edit.Emotions != nil {
		t.Emotions = NormalizeTags(edit.Emotions)
	}
	if edit.Mistakes != nil {
		t.Mistakes = NormalizeTags(edit.Mistakes)
	}
	if edit.Strategies != nil {
		t.Strategies = NormalizeTags(edit.Strategies)
	}

	switch {
	case edit.Reopen:
		t.Status = models.StatusOpen
		t.ExitPrice = nil
		t.ExitDate = nil
	case edit.ExitPrice != nil:
		t.Status = models.StatusClosed
		t.ExitPrice = models.Float(*edit.ExitPrice)
		if edit.ExitDate != nil {
			t.ExitDate = models.Time(*edit.ExitDate)
		} else if t.ExitDate == nil {
			t.ExitDate = models.Time(s.now())
		}
	case edit.ExitDate != nil:
		t.ExitDate = models.Time(*edit.ExitDate)
	}
	if t.Type != models.TradeTypeOption {
		t.OptionDetails = nil
	}

	if err := ValidateTrade(t); err != nil {
		return nil, err
	}
	if err := s.store.SaveTrade(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to update trade: %w", err)
	}

	logging.LogTradeSaved(s.logger, t.ID, t.Symbol, string(t.Side), string(t.Status))
	return t, nil
}

// Delete removes a trade.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteTrade(ctx, s.userID, id); err != nil {
		return fmt.Errorf("failed to delete trade %s: %w", id, err)
	}
	logging.LogTradeDeleted(s.logger, id)
	return nil
}

// Get returns a single trade.
func (s *Service) Get(ctx context.Context, id string) (*models.Trade, error) {
	t, err := s.store.GetTrade(ctx, s.userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get trade %s: %w", id, err)
	}
	return t, nil
}

// ListOptions narrows List.
type ListOptions struct {
	Symbol string
	Status models.TradeStatus
	Limit  int
}

// List returns the user's trades, newest entry first.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]models.Trade, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = s.limit
	}
	trades, err := s.store.GetTrades(ctx, store.TradeFilter{
		UserID: s.userID,
		Symbol: NormalizeSymbol(opts.Symbol),
		Status: opts.Status,
		Limit:  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}
	return trades, nil
}

// Import stores already-built trades in one batch, assigning the journal
// owner. A supplied id is kept only when it names one of the owner's trades;
// any other trade gets a fresh id. Each trade is validated first.
func (s *Service) Import(ctx context.Context, trades []models.Trade) error {
	for i := range trades {
		t := &trades[i]
		if t.ID != "" {
			_, err := s.store.GetTrade(ctx, s.userID, t.ID)
			switch {
			case errors.Is(err, errors.ErrDataNotFound):
				t.ID = ""
			case err != nil:
				return fmt.Errorf("trade %d: %w", i+1, err)
			}
		}
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		t.UserID = s.userID
		t.Symbol = NormalizeSymbol(t.Symbol)
		if err := ValidateTrade(t); err != nil {
			return fmt.Errorf("trade %d: %w", i+1, err)
		}
	}
	if err := s.store.SaveTrades(ctx, trades); err != nil {
		return fmt.Errorf("failed to import trades: %w", err)
	}
	s.logger.Info().Int("count", len(trades)).Msg("Trades imported")
	return nil
}
