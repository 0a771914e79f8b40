package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/me/bizdir/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and returns a Store.
// Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	// Every connection to ":memory:" is a separate database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	// Web requests of different visitors write concurrently.
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma busy_timeout: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "store"),
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate creates all required tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	return migrate(ctx, s.db)
}

// --- Cookies ---

// SaveCookies replaces the stored cookies of owner. An empty list removes
// them all, which is what a logout leaves behind.
func (s *SQLiteStore) SaveCookies(ctx context.Context, owner string, cookies []*http.Cookie) error {
	s.logger.Debug("sql", "op", "replace", "table", "cookies", "owner", owner, "count", len(cookies))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cookies WHERE owner = ?`, owner); err != nil {
		return fmt.Errorf("clear cookies: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, c := range cookies {
		if c == nil || c.Name == "" {
			continue
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO cookies (owner, name, value, updated_at) VALUES (?, ?, ?, ?)
			 ON CONFLICT(owner, name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			owner, c.Name, c.Value, now,
		)
		if err != nil {
			return fmt.Errorf("insert cookie %s: %w", c.Name, err)
		}
	}
	return tx.Commit()
}

// LoadCookies returns the stored cookies of owner, ordered by name.
func (s *SQLiteStore) LoadCookies(ctx context.Context, owner string) ([]*http.Cookie, error) {
	s.logger.Debug("sql", "op", "select", "table", "cookies", "owner", owner)

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, value FROM cookies WHERE owner = ? ORDER BY name`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cookies []*http.Cookie
	for rows.Next() {
		var c http.Cookie
		if err := rows.Scan(&c.Name, &c.Value); err != nil {
			return nil, err
		}
		cookies = append(cookies, &c)
	}
	return cookies, rows.Err()
}

// DeleteCookies removes all cookies of owner.
func (s *SQLiteStore) DeleteCookies(ctx context.Context, owner string) error {
	s.logger.Debug("sql", "op", "delete", "table", "cookies", "owner", owner)

	_, err := s.db.ExecContext(ctx, `DELETE FROM cookies WHERE owner = ?`, owner)
	return err
}

// --- Search snapshots ---

// SaveSnapshot overwrites the snapshot of owner.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, owner string, snap model.SearchSnapshot) error {
	s.logger.Debug("sql", "op", "upsert", "table", "search_snapshots", "owner", owner, "results", len(snap.Results))

	results := snap.Results
	if results == nil {
		results = []model.Business{}
	}
	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO search_snapshots (owner, results, searched, location, type, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(owner) DO UPDATE SET results = excluded.results, searched = excluded.searched,
		   location = excluded.location, type = excluded.type, updated_at = excluded.updated_at`,
		owner, string(resultsJSON), boolToInt(snap.Searched), snap.Location, snap.Type,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	return err
}

// LoadSnapshot returns the snapshot of owner, or nil if there is none.
func (s *SQLiteStore) LoadSnapshot(ctx context.Context, owner string) (*model.SearchSnapshot, error) {
	s.logger.Debug("sql", "op", "select", "table", "search_snapshots", "owner", owner)

	var snap model.SearchSnapshot
	var resultsJSON string
	var searched int
	err := s.db.QueryRowContext(ctx,
		`SELECT results, searched, location, type FROM search_snapshots WHERE owner = ?`, owner,
	).Scan(&resultsJSON, &searched, &snap.Location, &snap.Type)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(resultsJSON), &snap.Results); err != nil {
		return nil, fmt.Errorf("unmarshal results: %w", err)
	}
	snap.Searched = searched != 0
	return &snap, nil
}

// ClearSnapshot removes the snapshot of owner.
func (s *SQLiteStore) ClearSnapshot(ctx context.Context, owner string) error {
	s.logger.Debug("sql", "op", "delete", "table", "search_snapshots", "owner", owner)

	_, err := s.db.ExecContext(ctx, `DELETE FROM search_snapshots WHERE owner = ?`, owner)
	return err
}

// --- Visitors ---

// CreateVisitor registers a new visitor with a fresh ID.
func (s *SQLiteStore) CreateVisitor(ctx context.Context) (*model.Visitor, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	v := &model.Visitor{
		ID:        "vis_" + uuid.New().String(),
		CreatedAt: now,
		LastSeen:  now,
	}
	s.logger.Debug("sql", "op", "insert", "table", "visitors", "id", v.ID)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO visitors (id, created_at, last_seen) VALUES (?, ?, ?)`,
		v.ID, v.CreatedAt.Format(time.RFC3339Nano), v.LastSeen.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// GetVisitor returns the visitor with id, or nil if unknown.
func (s *SQLiteStore) GetVisitor(ctx context.Context, id string) (*model.Visitor, error) {
	s.logger.Debug("sql", "op", "select", "table", "visitors", "id", id)

	var v model.Visitor
	var createdAt, lastSeen string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, last_seen FROM visitors WHERE id = ?`, id,
	).Scan(&v.ID, &createdAt, &lastSeen)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	v.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	v.LastSeen, _ = time.Parse(time.RFC3339Nano, lastSeen)
	return &v, nil
}

// TouchVisitor records that the visitor was just seen.
func (s *SQLiteStore) TouchVisitor(ctx context.Context, id string) error {
	s.logger.Debug("sql", "op", "update", "table", "visitors", "id", id)

	result, err := s.db.ExecContext(ctx,
		`UPDATE visitors SET last_seen = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("visitor %s not found", id)
	}
	return nil
}

// DeleteExpiredVisitors removes visitors idle for longer than ttl together
// with their cookies and snapshots. It returns the number of visitors removed.
func (s *SQLiteStore) DeleteExpiredVisitors(ctx context.Context, ttl time.Duration) (int64, error) {
	s.logger.Debug("sql", "op", "delete_expired", "table", "visitors")

	cutoff := time.Now().UTC().Add(-ttl).Format(time.RFC3339Nano)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"cookies", "search_snapshots"} {
		_, err := tx.ExecContext(ctx,
			`DELETE FROM `+table+` WHERE owner IN (SELECT id FROM visitors WHERE last_seen < ?)`, cutoff)
		if err != nil {
			return 0, fmt.Errorf("delete %s: %w", table, err)
		}
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM visitors WHERE last_seen < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete visitors: %w", err)
	}
	n, _ := result.RowsAffected()
	return n, tx.Commit()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
