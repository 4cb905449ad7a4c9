package repo

import (
	"context"

	"github.com/DevRickLin/channel-summariser/internal/biz/domain"
)

// ChannelRepo is the chat platform's channel interface
// Responsible for reading history and posting public messages
type ChannelRepo interface {
	// FetchRecentMessages returns up to limit most-recent messages, newest first
	// Fetches in real-time from the platform API, does not rely on local storage
	FetchRecentMessages(ctx context.Context, channelID string, limit int) ([]domain.Message, error)

	// SendPublic posts a reply to the channel, visible to everyone
	SendPublic(ctx context.Context, channelID string, reply *domain.Reply) error
}
