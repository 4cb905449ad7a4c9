package data

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/DevRickLin/channel-summariser/internal/biz/domain"
	"github.com/DevRickLin/channel-summariser/internal/biz/repo"
	"github.com/DevRickLin/channel-summariser/internal/infra/feishu"
)

// FeishuShareAction is the button value that activates a share control
const FeishuShareAction = "share"

// FeishuCommand is the text command that starts a summary
const FeishuCommand = "/summarise"

// feishuRepo implements the channel repository for Feishu group chats
type feishuRepo struct {
	client *feishu.Client
}

// NewFeishuRepo creates a new Feishu repository
func NewFeishuRepo(client *feishu.Client) repo.ChannelRepo {
	return &feishuRepo{client: client}
}

// FetchRecentMessages gets chat history, newest first.
// The triggering command is itself the newest message, so one extra is read.
func (r *feishuRepo) FetchRecentMessages(ctx context.Context, chatID string, limit int) ([]domain.Message, error) {
	msgs, err := r.client.GetChatHistory(ctx, chatID, limit+1)
	if err != nil {
		return nil, err
	}

	// Get member list for resolving sender names
	memberMap := make(map[string]string)
	members, err := r.client.GetChatMembers(ctx, chatID)
	if err != nil {
		fmt.Printf("[Feishu] Warning: failed to resolve member names: %v\n", err)
	}
	for _, m := range members {
		memberMap[m.MemberID] = m.Name
	}

	result := ConvertFeishuHistory(chatID, msgs, memberMap)
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// SendPublic posts a reply to the chat
func (r *feishuRepo) SendPublic(ctx context.Context, chatID string, reply *domain.Reply) error {
	if reply.IsText() {
		return r.client.SendText(ctx, chatID, reply.Content)
	}
	card, err := BuildFeishuCard(reply)
	if err != nil {
		return err
	}
	_, err = r.client.SendCard(ctx, chatID, card)
	return err
}

// ConvertFeishuHistory converts list API messages into domain messages, keeping order.
// Deleted messages and summarise commands are dropped; app senders are marked as bots.
func ConvertFeishuHistory(chatID string, msgs []*feishu.HistoryMessage, memberMap map[string]string) []domain.Message {
	var result []domain.Message
	for _, m := range msgs {
		if m.Deleted {
			continue
		}
		if _, ok := ParseFeishuCommand(m.Content); ok {
			continue
		}

		var createTime time.Time
		if m.CreateTime != "" {
			// Feishu timestamp is millisecond string
			if ms, err := strconv.ParseInt(m.CreateTime, 10, 64); err == nil {
				createTime = time.UnixMilli(ms)
			}
		}

		senderID := ""
		senderName := ""
		if m.Sender != nil {
			senderID = m.Sender.SenderID
			senderName = memberMap[senderID]
		}
		if senderName == "" {
			senderName = senderID
		}

		result = append(result, domain.Message{
			ID:         m.MsgID,
			ChannelID:  chatID,
			Content:    m.Content,
			AuthorID:   senderID,
			AuthorName: senderName,
			IsBot:      m.Sender.IsBot(),
			CreateTime: createTime,
		})
	}
	return result
}

// ParseFeishuCommand recognises "/summarise [N]", optionally after @mentions.
// A missing or non-numeric N yields a nil count.
func ParseFeishuCommand(text string) (*int, bool) {
	fields := strings.Fields(text)
	for len(fields) > 0 && strings.HasPrefix(fields[0], "@") {
		fields = fields[1:]
	}
	if len(fields) == 0 || !strings.EqualFold(fields[0], FeishuCommand) {
		return nil, false
	}
	if len(fields) < 2 {
		return nil, true
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, true
	}
	return &n, true
}

// BuildFeishuCard renders a summary reply as an interactive message card
func BuildFeishuCard(reply *domain.Reply) (string, error) {
	if reply.Summary == nil {
		return "", fmt.Errorf("reply has no summary")
	}
	s := reply.Summary

	elements := []map[string]interface{}{
		{"tag": "markdown", "content": s.Body},
	}
	if s.Footer != "" {
		elements = append(elements, map[string]interface{}{
			"tag": "note",
			"elements": []map[string]interface{}{
				{"tag": "plain_text", "content": s.Footer},
			},
		})
	}
	if b := reply.Share; b != nil {
		label := b.Label
		if b.Emoji != "" {
			label = b.Emoji + " " + label
		}
		elements = append(elements, map[string]interface{}{
			"tag": "action",
			"actions": []map[string]interface{}{
				{
					"tag":      "button",
					"text":     map[string]string{"tag": "plain_text", "content": label},
					"type":     "primary",
					"disabled": b.Disabled,
					"value":    map[string]string{"action": FeishuShareAction, "share_id": b.ID},
				},
			},
		})
	}

	card := map[string]interface{}{
		"config": map[string]interface{}{
			"wide_screen_mode": true,
			"update_multi":     true,
		},
		"header": map[string]interface{}{
			"title":    map[string]string{"tag": "plain_text", "content": s.Title},
			"template": cardTemplate(s.Color),
		},
		"elements": elements,
	}

	out, err := json.Marshal(card)
	if err != nil {
		return "", fmt.Errorf("marshal card: %w", err)
	}
	return string(out), nil
}

// cardTemplate maps an accent color onto the nearest card header template
func cardTemplate(color int) string {
	if color == domain.SummaryColor {
		return "green"
	}
	return "blue"
}
