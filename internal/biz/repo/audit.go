package repo

import (
	"context"
	"time"

	"github.com/DevRickLin/channel-summariser/internal/biz/domain"
)

// AuditRepo is the invocation log interface
// Responsible for invocation metadata persistence (SQLite)
type AuditRepo interface {
	// Record stores an invocation and returns its ID
	Record(ctx context.Context, inv *domain.Invocation) (int64, error)

	// MarkShared stamps the time a private summary was shared
	MarkShared(ctx context.Context, id int64, at time.Time) error

	// ListRecent lists the most recent invocations, newest first
	ListRecent(ctx context.Context, limit int) ([]*domain.Invocation, error)

	Close() error
}
