package data

import (
	"fmt"
	"strings"

	"github.com/DevRickLin/channel-summariser/internal/biz/repo"
)

// AuditDisabled turns the audit log off when used as the database path
const AuditDisabled = "off"

// Repositories contains all repositories
type Repositories struct {
	Channel    repo.ChannelRepo
	Summarizer repo.SummarizerRepo
	Audit      repo.AuditRepo // nil when auditing is off
}

// NewRepositories assembles the repositories for one platform
func NewRepositories(channel repo.ChannelRepo, summarizer repo.SummarizerRepo, auditDBPath string) (*Repositories, error) {
	repos := &Repositories{
		Channel:    channel,
		Summarizer: summarizer,
	}

	if auditDBPath != "" && !strings.EqualFold(auditDBPath, AuditDisabled) {
		auditRepo, err := NewAuditRepo(auditDBPath)
		if err != nil {
			return nil, fmt.Errorf("open audit log: %w", err)
		}
		repos.Audit = auditRepo
	}

	return repos, nil
}

// Close releases repository resources
func (r *Repositories) Close() error {
	if r.Audit != nil {
		return r.Audit.Close()
	}
	return nil
}
