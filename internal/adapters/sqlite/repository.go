package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tradecraft/internal/domain"
	"tradecraft/internal/ports"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

// Repository implements ports.TradeRepository using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/journal.db" // Default path
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// WAL for concurrent readers; foreign keys must be enabled per
	// connection for the cascade deletes to work.
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		err = fmt.Errorf("%w: failed to open database at '%s': %v", ports.ErrDBConnection, dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("%w: failed to ping database at '%s': %v", ports.ErrDBConnection, dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// SQLite handles concurrency internally; the Go driver benefits from a
	// single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	repo := &Repository{db: db, logger: cfg.Logger}

	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "SQLite database ready", map[string]interface{}{"path": dbPath})

	return repo, nil
}

// initializeSchema creates tables if they don't exist.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		symbol TEXT NOT NULL,
		asset_type TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		journal_entry TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS legs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		trade_id TEXT NOT NULL REFERENCES trades(id) ON DELETE CASCADE,
		action TEXT NOT NULL,
		executed_at TIMESTAMP NOT NULL,
		quantity REAL NOT NULL,
		price REAL NOT NULL,
		fee REAL NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS trade_tags (
		trade_id TEXT NOT NULL REFERENCES trades(id) ON DELETE CASCADE,
		tag TEXT NOT NULL,
		PRIMARY KEY (trade_id, tag)
	);

	CREATE INDEX IF NOT EXISTS idx_trades_user ON trades (user_id);
	CREATE INDEX IF NOT EXISTS idx_legs_trade_time ON legs (trade_id, executed_at);
	`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// Create saves a new trade with its legs and tags and returns its ID.
func (r *Repository) Create(ctx context.Context, trade *domain.Trade) (string, error) {
	if trade.ID == "" {
		trade.ID = uuid.NewString()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	const insertTrade = `
	INSERT INTO trades (id, user_id, symbol, asset_type, created_at, journal_entry)
	VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, insertTrade,
		trade.ID, trade.UserID, trade.Symbol, trade.AssetType, trade.CreatedAt, trade.JournalEntry); err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return "", fmt.Errorf("trade %s: %w", trade.ID, ports.ErrDuplicateEntry)
		}
		return "", fmt.Errorf("failed to insert trade for symbol %s: %w", trade.Symbol, err)
	}

	for i := range trade.Legs {
		id, err := insertLeg(ctx, tx, trade.ID, &trade.Legs[i])
		if err != nil {
			return "", err
		}
		trade.Legs[i].ID = id
		trade.Legs[i].TradeID = trade.ID
	}

	if err := insertTags(ctx, tx, trade.ID, trade.Tags); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit trade %s: %w", trade.ID, err)
	}
	r.logger.Debug(ctx, "Trade created", map[string]interface{}{"tradeID": trade.ID, "symbol": trade.Symbol, "legs": len(trade.Legs)})
	return trade.ID, nil
}

// Update modifies a trade's journal entry and tags.
func (r *Repository) Update(ctx context.Context, trade *domain.Trade) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	const query = `UPDATE trades SET journal_entry = ? WHERE id = ? AND user_id = ?`
	result, err := tx.ExecContext(ctx, query, trade.JournalEntry, trade.ID, trade.UserID)
	if err != nil {
		return fmt.Errorf("%w: trade %s: %v", ports.ErrUpdateFailed, trade.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected for trade %s: %v", ports.ErrUpdateFailed, trade.ID, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("trade %s not found for update: %w", trade.ID, ports.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM trade_tags WHERE trade_id = ?`, trade.ID); err != nil {
		return fmt.Errorf("%w: clearing tags for trade %s: %v", ports.ErrUpdateFailed, trade.ID, err)
	}
	if err := insertTags(ctx, tx, trade.ID, trade.Tags); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit update of trade %s: %w", trade.ID, err)
	}
	r.logger.Debug(ctx, "Trade updated", map[string]interface{}{"tradeID": trade.ID})
	return nil
}

// Delete removes a trade; legs and tags cascade.
func (r *Repository) Delete(ctx context.Context, userID, tradeID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM trades WHERE id = ? AND user_id = ?`, tradeID, userID)
	if err != nil {
		return fmt.Errorf("%w: trade %s: %v", ports.ErrDeleteFailed, tradeID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected for trade %s: %v", ports.ErrDeleteFailed, tradeID, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("trade %s not found for delete: %w", tradeID, ports.ErrNotFound)
	}
	r.logger.Debug(ctx, "Trade deleted", map[string]interface{}{"tradeID": tradeID})
	return nil
}

// FindByID retrieves one trade scoped to its owner. Returns nil, nil if not found.
func (r *Repository) FindByID(ctx context.Context, userID, tradeID string) (*domain.Trade, error) {
	const query = `
	SELECT id, user_id, symbol, asset_type, created_at, journal_entry
	FROM trades WHERE id = ? AND user_id = ?`

	trade, err := scanTrade(r.db.QueryRowContext(ctx, query, tradeID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Debug(ctx, "Trade not found by ID", map[string]interface{}{"tradeID": tradeID})
			return nil, nil // Not an error, just not found
		}
		return nil, fmt.Errorf("%w: trade by ID %s: %v", ports.ErrQueryFailed, tradeID, err)
	}
	if err := r.loadLegsAndTags(ctx, map[string]*domain.Trade{trade.ID: trade}); err != nil {
		return nil, err
	}
	return trade, nil
}

// FindByUser retrieves all trades for a user, optionally restricted to a
// half-open entry-time window, ordered by entry-leg time ascending.
func (r *Repository) FindByUser(ctx context.Context, userID string, q ports.TradeQuery) ([]*domain.Trade, error) {
	query := `
	SELECT t.id, t.user_id, t.symbol, t.asset_type, t.created_at, t.journal_entry
	FROM trades t
	JOIN legs l ON l.trade_id = t.id
	WHERE t.user_id = ?
	GROUP BY t.id`
	args := []interface{}{userID}

	var having []string
	if q.Since != nil {
		having = append(having, "MIN(l.executed_at) >= ?")
		args = append(args, *q.Since)
	}
	if q.Until != nil {
		having = append(having, "MIN(l.executed_at) < ?")
		args = append(args, *q.Until)
	}
	if len(having) > 0 {
		query += " HAVING " + strings.Join(having, " AND ")
	}
	query += " ORDER BY MIN(l.executed_at) ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: trades for user %s: %v", ports.ErrQueryFailed, userID, err)
	}
	defer rows.Close()

	var trades []*domain.Trade
	byID := make(map[string]*domain.Trade)
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning trade during FindByUser: %v", ports.ErrQueryFailed, err)
		}
		trades = append(trades, trade)
		byID[trade.ID] = trade
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating trade rows: %v", ports.ErrQueryFailed, err)
	}
	if len(trades) == 0 {
		return trades, nil
	}
	if err := r.loadLegsAndTags(ctx, byID); err != nil {
		return nil, err
	}
	return trades, nil
}

// AppendLeg adds a leg to an existing trade and returns its assigned ID.
func (r *Repository) AppendLeg(ctx context.Context, userID, tradeID string, leg *domain.Leg) (int64, error) {
	var owner string
	err := r.db.QueryRowContext(ctx, `SELECT user_id FROM trades WHERE id = ?`, tradeID).Scan(&owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("trade %s: %w", tradeID, ports.ErrNotFound)
		}
		return 0, fmt.Errorf("%w: looking up trade %s: %v", ports.ErrQueryFailed, tradeID, err)
	}
	if owner != userID {
		return 0, fmt.Errorf("trade %s: %w", tradeID, ports.ErrPermissionDenied)
	}

	id, err := insertLeg(ctx, r.db, tradeID, leg)
	if err != nil {
		return 0, err
	}
	leg.ID = id
	leg.TradeID = tradeID
	r.logger.Debug(ctx, "Leg appended", map[string]interface{}{"tradeID": tradeID, "legID": id})
	return id, nil
}

// loadLegsAndTags fills the legs and tags of the given trades in two
// queries instead of one per trade.
func (r *Repository) loadLegsAndTags(ctx context.Context, byID map[string]*domain.Trade) error {
	ids := make([]interface{}, 0, len(byID))
	placeholders := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
		placeholders = append(placeholders, "?")
	}
	in := "(" + strings.Join(placeholders, ",") + ")"

	legQuery := `
	SELECT id, trade_id, action, executed_at, quantity, price, fee
	FROM legs WHERE trade_id IN ` + in + ` ORDER BY executed_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, legQuery, ids...)
	if err != nil {
		return fmt.Errorf("%w: legs: %v", ports.ErrQueryFailed, err)
	}
	defer rows.Close()
	for rows.Next() {
		var leg domain.Leg
		var action string
		if err := rows.Scan(&leg.ID, &leg.TradeID, &action, &leg.Time, &leg.Quantity, &leg.Price, &leg.Fee); err != nil {
			return fmt.Errorf("%w: scanning leg: %v", ports.ErrQueryFailed, err)
		}
		leg.Action = domain.LegAction(action)
		if trade := byID[leg.TradeID]; trade != nil {
			trade.Legs = append(trade.Legs, leg)
		}
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("%w: iterating leg rows: %v", ports.ErrQueryFailed, err)
	}

	tagQuery := `SELECT trade_id, tag FROM trade_tags WHERE trade_id IN ` + in + ` ORDER BY tag ASC`
	tagRows, err := r.db.QueryContext(ctx, tagQuery, ids...)
	if err != nil {
		return fmt.Errorf("%w: tags: %v", ports.ErrQueryFailed, err)
	}
	defer tagRows.Close()
	for tagRows.Next() {
		var tradeID, tag string
		if err := tagRows.Scan(&tradeID, &tag); err != nil {
			return fmt.Errorf("%w: scanning tag: %v", ports.ErrQueryFailed, err)
		}
		if trade := byID[tradeID]; trade != nil {
			trade.Tags = append(trade.Tags, tag)
		}
	}
	if err = tagRows.Err(); err != nil {
		return fmt.Errorf("%w: iterating tag rows: %v", ports.ErrQueryFailed, err)
	}
	return nil
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func insertLeg(ctx context.Context, db execer, tradeID string, leg *domain.Leg) (int64, error) {
	const query = `
	INSERT INTO legs (trade_id, action, executed_at, quantity, price, fee)
	VALUES (?, ?, ?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query, tradeID, leg.Action, leg.Time, leg.Quantity, leg.Price, leg.Fee)
	if err != nil {
		return 0, fmt.Errorf("failed to insert leg for trade %s: %w", tradeID, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for leg of trade %s: %w", tradeID, err)
	}
	return id, nil
}

func insertTags(ctx context.Context, db execer, tradeID string, tags []string) error {
	for _, tag := range tags {
		if _, err := db.ExecContext(ctx, `INSERT OR IGNORE INTO trade_tags (trade_id, tag) VALUES (?, ?)`, tradeID, tag); err != nil {
			return fmt.Errorf("failed to insert tag %q for trade %s: %w", tag, tradeID, err)
		}
	}
	return nil
}

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanTrade scans a row into a domain.Trade struct (legs and tags loaded separately).
func scanTrade(s scanner) (*domain.Trade, error) {
	t := &domain.Trade{}
	var assetType string
	err := s.Scan(&t.ID, &t.UserID, &t.Symbol, &assetType, &t.CreatedAt, &t.JournalEntry)
	if err != nil {
		return nil, err // Handle sql.ErrNoRows in the caller
	}
	t.AssetType = domain.AssetType(assetType)
	return t, nil
}
