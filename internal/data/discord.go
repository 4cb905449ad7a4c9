package data

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/DevRickLin/channel-summariser/internal/biz/domain"
	"github.com/DevRickLin/channel-summariser/internal/biz/repo"
)

// Discord limits
const (
	discordHistoryMax   = 100
	discordEmbedDescMax = 4096
	discordContentMax   = 2000
)

// ShareCustomIDPrefix prefixes the custom id of every share button
const ShareCustomIDPrefix = "summarise:share:"

// discordRepo implements the channel repository for Discord text channels
type discordRepo struct {
	session *discordgo.Session
}

// NewDiscordRepo creates a new Discord repository
func NewDiscordRepo(session *discordgo.Session) repo.ChannelRepo {
	return &discordRepo{session: session}
}

// FetchRecentMessages gets channel history, newest first
func (r *discordRepo) FetchRecentMessages(ctx context.Context, channelID string, limit int) ([]domain.Message, error) {
	if limit > discordHistoryMax {
		limit = discordHistoryMax
	}
	msgs, err := r.session.ChannelMessages(channelID, limit, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("get channel messages: %w", err)
	}
	fmt.Printf("[Discord] Retrieved %d messages from channel %s\n", len(msgs), channelID)
	return ConvertDiscordMessages(msgs), nil
}

// SendPublic posts a reply to the channel
func (r *discordRepo) SendPublic(ctx context.Context, channelID string, reply *domain.Reply) error {
	_, err := r.session.ChannelMessageSendComplex(channelID, DiscordMessageSend(reply), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("send channel message: %w", err)
	}
	return nil
}

// ConvertDiscordMessages converts API messages into domain messages, keeping order.
// Bot accounts and webhooks count as automated authors.
func ConvertDiscordMessages(msgs []*discordgo.Message) []domain.Message {
	result := make([]domain.Message, 0, len(msgs))
	for _, m := range msgs {
		msg := domain.Message{
			ID:         m.ID,
			ChannelID:  m.ChannelID,
			Content:    m.Content,
			CreateTime: m.Timestamp,
			IsBot:      m.WebhookID != "",
		}
		if m.Author != nil {
			msg.AuthorID = m.Author.ID
			msg.AuthorName = DiscordUserName(m.Member, m.Author)
			msg.IsBot = msg.IsBot || m.Author.Bot
		}
		result = append(result, msg)
	}
	return result
}

// DiscordUserName picks the name shown in the client: nickname, global name, then username
func DiscordUserName(member *discordgo.Member, user *discordgo.User) string {
	if member != nil && member.Nick != "" {
		return member.Nick
	}
	if user == nil {
		return ""
	}
	if user.GlobalName != "" {
		return user.GlobalName
	}
	return user.Username
}

// DiscordEmbed renders a summary as an embed
func DiscordEmbed(s *domain.Summary) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       s.Title,
		Description: truncateRunes(s.Body, discordEmbedDescMax),
		Color:       s.Color,
	}
	if s.Footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: s.Footer}
	}
	return embed
}

// DiscordComponents renders a share button as a single action row
func DiscordComponents(b *domain.ShareButton) []discordgo.MessageComponent {
	if b == nil {
		return []discordgo.MessageComponent{}
	}
	button := discordgo.Button{
		Label:    b.Label,
		Style:    discordgo.SuccessButton,
		CustomID: ShareCustomIDPrefix + b.ID,
		Disabled: b.Disabled,
	}
	if b.Emoji != "" {
		button.Emoji = &discordgo.ComponentEmoji{Name: b.Emoji}
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{button}},
	}
}

// DiscordMessageSend renders a reply for a channel post
func DiscordMessageSend(reply *domain.Reply) *discordgo.MessageSend {
	if reply.IsText() {
		return &discordgo.MessageSend{Content: truncateRunes(reply.Content, discordContentMax)}
	}
	return &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{DiscordEmbed(reply.Summary)},
		Components: DiscordComponents(reply.Share),
	}
}

// ParseShareCustomID extracts the share control id from a button custom id
func ParseShareCustomID(customID string) (string, bool) {
	if !strings.HasPrefix(customID, ShareCustomIDPrefix) {
		return "", false
	}
	id := strings.TrimPrefix(customID, ShareCustomIDPrefix)
	return id, id != ""
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
