// Package store provides data persistence implementations.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/multierr"

	"trademind/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Journaled trades; list columns hold JSON arrays
	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		symbol TEXT NOT NULL,
		type TEXT NOT NULL,
		side TEXT NOT NULL,
		entry_price REAL NOT NULL,
		exit_price REAL,
		quantity REAL NOT NULL,
		entry_date DATETIME NOT NULL,
		exit_date DATETIME,
		fees REAL NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		tags TEXT NOT NULL DEFAULT '[]',
		notes TEXT NOT NULL DEFAULT '',
		option_details TEXT,
		ai_review TEXT,
		attachments TEXT NOT NULL DEFAULT '[]',
		emotions TEXT NOT NULL DEFAULT '[]',
		mistakes TEXT NOT NULL DEFAULT '[]',
		strategies TEXT NOT NULL DEFAULT '[]',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_trades_user_entry ON trades(user_id, entry_date DESC);
	CREATE INDEX IF NOT EXISTS idx_trades_symbol ON trades(user_id, symbol);

	-- Trader profiles
	CREATE TABLE IF NOT EXISTS profiles (
		id TEXT PRIMARY KEY,
		display_id TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL DEFAULT '',
		mobile TEXT NOT NULL DEFAULT '',
		is_paid INTEGER NOT NULL DEFAULT 0,
		role TEXT NOT NULL,
		status TEXT NOT NULL,
		joined_at DATETIME NOT NULL,
		own_referral_code TEXT NOT NULL DEFAULT '',
		selected_plan TEXT NOT NULL DEFAULT '',
		updated_at DATETIME NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// ============================================================================
// Trades Methods
// ============================================================================

const tradeColumns = `id, user_id, symbol, type, side, entry_price, exit_price, quantity, entry_date, exit_date, fees, status, tags, notes, option_details, ai_review, attachments, emotions, mistakes, strategies`

// SaveTrade inserts a trade or replaces the stored trade with the same id.
func (s *SQLiteStore) SaveTrade(ctx context.Context, trade *models.Trade) error {
	if err := saveTrade(ctx, s.db, trade); err != nil {
		return fmt.Errorf("failed to save trade: %w", err)
	}
	return nil
}

// SaveTrades stores a batch of trades in one transaction.
func (s *SQLiteStore) SaveTrades(ctx context.Context, trades []models.Trade) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, tx.Rollback())
		}
	}()

	for i := range trades {
		if err = saveTrade(ctx, tx, &trades[i]); err != nil {
			return fmt.Errorf("failed to save trade %s: %w", trades[i].ID, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit trades: %w", err)
	}
	return nil
}

func saveTrade(ctx context.Context, db execer, t *models.Trade) error {
	var exitDate interface{}
	if t.ExitDate != nil {
		exitDate = t.ExitDate.UTC()
	}
	var exitPrice interface{}
	if t.ExitPrice != nil {
		exitPrice = *t.ExitPrice
	}

	res, err := db.ExecContext(ctx, `
		INSERT INTO trades (`+tradeColumns+`, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			symbol = excluded.symbol,
			type = excluded.type,
			side = excluded.side,
			entry_price = excluded.entry_price,
			exit_price = excluded.exit_price,
			quantity = excluded.quantity,
			entry_date = excluded.entry_date,
			exit_date = excluded.exit_date,
			fees = excluded.fees,
			status = excluded.status,
			tags = excluded.tags,
			notes = excluded.notes,
			option_details = excluded.option_details,
			ai_review = excluded.ai_review,
			attachments = excluded.attachments,
			emotions = excluded.emotions,
			mistakes = excluded.mistakes,
			strategies = excluded.strategies,
			updated_at = excluded.updated_at
		WHERE trades.user_id = excluded.user_id
	`,
		t.ID, t.UserID, t.Symbol, string(t.Type), string(t.Side),
		t.EntryPrice, exitPrice, t.Quantity, t.EntryDate.UTC(), exitDate,
		t.Fees, string(t.Status), jsonList(t.Tags), t.Notes,
		jsonObject(t.OptionDetails), jsonObject(t.AIReview), jsonList(t.Attachments),
		jsonList(t.Emotions), jsonList(t.Mistakes), jsonList(t.Strategies),
		time.Now().UTC(),
	)
	if err != nil {
		return err
	}
	// An upsert skipped by the ownership check changes no row.
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("trade %s: %w", t.ID, ErrTradeConflict)
	}
	return nil
}

// GetTrade returns one trade of a user.
func (s *SQLiteStore) GetTrade(ctx context.Context, userID, id string) (*models.Trade, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+tradeColumns+" FROM trades WHERE id = ? AND user_id = ?", id, userID)
	t, err := scanTrade(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("trade %s: %w", id, ErrDataNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trade: %w", err)
	}
	return t, nil
}

// GetTrades retrieves trades newest entry first, capped at the filter limit.
func (s *SQLiteStore) GetTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error) {
	query := "SELECT " + tradeColumns + " FROM trades WHERE 1=1"
	args := []interface{}{}

	if filter.UserID != "" {
		query += " AND user_id = ?"
		args = append(args, filter.UserID)
	}
	if filter.Symbol != "" {
		query += " AND symbol = ?"
		args = append(args, filter.Symbol)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, string(filter.Status))
	}

	query += " ORDER BY entry_date DESC, id LIMIT ?"
	args = append(args, filter.limit())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	trades := []models.Trade{}
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		trades = append(trades, *t)
	}

	return trades, rows.Err()
}

// DeleteTrade removes a trade of a user.
func (s *SQLiteStore) DeleteTrade(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM trades WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete trade: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete trade: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("trade %s: %w", id, ErrDataNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTrade(row scanner) (*models.Trade, error) {
	var (
		t                              models.Trade
		typ, side, status              string
		exitPrice                      sql.NullFloat64
		exitDate                       sql.NullTime
		tags, attachments              string
		emotions, mistakes, strategies string
		optionDetails, aiReview        sql.NullString
	)

	err := row.Scan(&t.ID, &t.UserID, &t.Symbol, &typ, &side, &t.EntryPrice, &exitPrice, &t.Quantity,
		&t.EntryDate, &exitDate, &t.Fees, &status, &tags, &t.Notes, &optionDetails, &aiReview,
		&attachments, &emotions, &mistakes, &strategies)
	if err != nil {
		return nil, err
	}

	t.Type = models.TradeType(typ)
	t.Side = models.TradeSide(side)
	t.Status = models.TradeStatus(status)
	if exitPrice.Valid {
		t.ExitPrice = models.Float(exitPrice.Float64)
	}
	if exitDate.Valid {
		t.ExitDate = models.Time(exitDate.Time)
	}

	if err := decodeJSON(tags, &t.Tags); err != nil {
		return nil, err
	}
	if err := decodeJSON(attachments, &t.Attachments); err != nil {
		return nil, err
	}
	if err := decodeJSON(emotions, &t.Emotions); err != nil {
		return nil, err
	}
	if err := decodeJSON(mistakes, &t.Mistakes); err != nil {
		return nil, err
	}
	if err := decodeJSON(strategies, &t.Strategies); err != nil {
		return nil, err
	}
	if optionDetails.Valid {
		t.OptionDetails = &models.OptionDetails{}
		if err := decodeJSON(optionDetails.String, t.OptionDetails); err != nil {
			return nil, err
		}
	}
	if aiReview.Valid {
		t.AIReview = &models.AIReview{}
		if err := decodeJSON(aiReview.String, t.AIReview); err != nil {
			return nil, err
		}
	}
	return &t, nil
}

// ============================================================================
// Profile Methods
// ============================================================================

// GetProfile returns the stored profile of a user.
func (s *SQLiteStore) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	var (
		u                  models.User
		role, status, plan string
		isPaid             int
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, display_id, email, name, mobile, is_paid, role, status, joined_at, own_referral_code, selected_plan, updated_at
		FROM profiles WHERE id = ?
	`, userID).Scan(&u.ID, &u.DisplayID, &u.Email, &u.Name, &u.Mobile, &isPaid, &role, &status,
		&u.JoinedAt, &u.OwnReferralCode, &plan, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("profile %s: %w", userID, ErrDataNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	u.IsPaid = isPaid == 1
	u.Role = models.UserRole(role)
	u.Status = models.UserStatus(status)
	u.SelectedPlan = models.PlanType(plan)
	return &u, nil
}

// SaveProfile inserts or replaces a profile.
func (s *SQLiteStore) SaveProfile(ctx context.Context, u *models.User) error {
	isPaid := 0
	if u.IsPaid {
		isPaid = 1
	}
	updated := u.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO profiles (id, display_id, email, name, mobile, is_paid, role, status, joined_at, own_referral_code, selected_plan, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, u.ID, u.DisplayID, u.Email, u.Name, u.Mobile, isPaid, string(u.Role), string(u.Status),
		u.JoinedAt.UTC(), u.OwnReferralCode, string(u.SelectedPlan), updated.UTC())
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// ============================================================================
// JSON column helpers
// ============================================================================

// jsonList encodes a slice column; nil is stored as an empty array.
func jsonList(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil || string(b) == "null" {
		return "[]"
	}
	return string(b)
}

// jsonObject encodes an optional object column; nil pointers become NULL.
func jsonObject(v interface{}) interface{} {
	switch o := v.(type) {
	case *models.OptionDetails:
		if o == nil {
			return nil
		}
	case *models.AIReview:
		if o == nil {
			return nil
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return string(b)
}

func decodeJSON(s string, target interface{}) error {
	if s == "" || s == "[]" {
		return nil
	}
	if err := json.Unmarshal([]byte(s), target); err != nil {
		return fmt.Errorf("failed to decode column: %w", err)
	}
	return nil
}
