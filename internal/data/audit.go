package data

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/DevRickLin/channel-summariser/internal/biz/domain"
	"github.com/DevRickLin/channel-summariser/internal/biz/repo"

	_ "modernc.org/sqlite"
)

// auditRepo implements the Audit repository
type auditRepo struct {
	db *sql.DB
}

// NewAuditRepo creates a new Audit repository
func NewAuditRepo(dbPath string) (repo.AuditRepo, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Create table
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS invocations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			platform TEXT NOT NULL,
			channel_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			requested INTEGER NOT NULL,
			effective INTEGER NOT NULL,
			user_messages INTEGER NOT NULL DEFAULT 0,
			bot_messages INTEGER NOT NULL DEFAULT 0,
			outcome TEXT NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			delivery TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			shared_at INTEGER NOT NULL DEFAULT 0
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	// Create index
	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_invocations_created_at ON invocations(created_at)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return &auditRepo{db: db}, nil
}

// Record stores an invocation
func (r *auditRepo) Record(ctx context.Context, inv *domain.Invocation) (int64, error) {
	createdAt := inv.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO invocations (platform, channel_id, user_id, requested, effective,
			user_messages, bot_messages, outcome, error, delivery, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		inv.Platform,
		inv.ChannelID,
		inv.UserID,
		inv.Requested,
		inv.Effective,
		inv.UserMessages,
		inv.BotMessages,
		string(inv.Outcome),
		inv.Error,
		string(inv.Delivery),
		createdAt.UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to record invocation: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get invocation id: %w", err)
	}
	return id, nil
}

// MarkShared stamps shared_at on an invocation
func (r *auditRepo) MarkShared(ctx context.Context, id int64, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE invocations SET shared_at = ? WHERE id = ?
	`, at.UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("failed to mark shared: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("invocation %d not found", id)
	}
	return nil
}

// ListRecent lists the most recent invocations, newest first
func (r *auditRepo) ListRecent(ctx context.Context, limit int) ([]*domain.Invocation, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, platform, channel_id, user_id, requested, effective,
			user_messages, bot_messages, outcome, error, delivery, created_at, shared_at
		FROM invocations
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list invocations: %w", err)
	}
	defer rows.Close()

	var result []*domain.Invocation
	for rows.Next() {
		var inv domain.Invocation
		var outcome, delivery string
		var createdAt, sharedAt int64
		if err := rows.Scan(&inv.ID, &inv.Platform, &inv.ChannelID, &inv.UserID,
			&inv.Requested, &inv.Effective, &inv.UserMessages, &inv.BotMessages,
			&outcome, &inv.Error, &delivery, &createdAt, &sharedAt); err != nil {
			return nil, fmt.Errorf("failed to scan invocation: %w", err)
		}
		inv.Outcome = domain.Outcome(outcome)
		inv.Delivery = domain.DeliveryMode(delivery)
		inv.CreatedAt = time.UnixMilli(createdAt)
		if sharedAt > 0 {
			inv.SharedAt = time.UnixMilli(sharedAt)
		}
		result = append(result, &inv)
	}
	return result, rows.Err()
}

// Close closes the database connection
func (r *auditRepo) Close() error {
	return r.db.Close()
}
