// Package audit records risk-classification events for operational review.
// Only the label and a hash of the conversation key are stored: the audit
// trail never contains message content, and conversation history itself is
// never persisted.
package audit

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Event is one recorded classification.
type Event struct {
	ID               string
	ConversationHash string
	Label            string
	CreatedAt        time.Time
}

type Store struct {
	db *sql.DB
}

// NewStore creates/opens the audit database at path.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create audit db dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}
	// Single writer; one shared connection avoids SQLite lock contention.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &Store{db: db}
	if err := store.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) init() error {
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA synchronous=NORMAL;`,
		`PRAGMA busy_timeout=5000;`,
		`CREATE TABLE IF NOT EXISTS risk_events (
			id TEXT PRIMARY KEY,
			conversation_hash TEXT NOT NULL,
			label TEXT NOT NULL,
			created_at_ms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS risk_events_created_idx ON risk_events(created_at_ms);`,
		`CREATE INDEX IF NOT EXISTS risk_events_conversation_idx ON risk_events(conversation_hash, created_at_ms DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("init audit db: %w", err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// hashConversation derives a stable, non-reversible bucket key.
func hashConversation(conversationKey string) string {
	sum := sha256.Sum256([]byte(conversationKey))
	return hex.EncodeToString(sum[:])[:16]
}

// Record stores one classification event.
func (s *Store) Record(ctx context.Context, conversationKey, label string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO risk_events (id, conversation_hash, label, created_at_ms) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), hashConversation(conversationKey), label, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("record audit event: %w", err)
	}
	return nil
}

// EventsSince returns events recorded at or after the cutoff, oldest first.
func (s *Store) EventsSince(ctx context.Context, cutoff time.Time) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, conversation_hash, label, created_at_ms FROM risk_events
		 WHERE created_at_ms >= ? ORDER BY created_at_ms ASC`,
		cutoff.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		var createdMs int64
		if err := rows.Scan(&ev.ID, &ev.ConversationHash, &ev.Label, &createdMs); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		ev.CreatedAt = time.UnixMilli(createdMs)
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Sweep deletes events older than the retention window and returns how
// many were removed.
func (s *Store) Sweep(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention).UnixMilli()
	res, err := s.db.ExecContext(ctx, `DELETE FROM risk_events WHERE created_at_ms < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("sweep audit events: %w", err)
	}
	return res.RowsAffected()
}
