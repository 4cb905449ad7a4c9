package feishu

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	"github.com/larksuite/oapi-sdk-go/v3/event/dispatcher"
	"github.com/larksuite/oapi-sdk-go/v3/event/dispatcher/callback"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	larkws "github.com/larksuite/oapi-sdk-go/v3/ws"
)

// historyPageSize is the largest page the message list API accepts
const historyPageSize = 50

// Message represents a received Feishu message
type Message struct {
	ChatID     string
	MsgID      string
	MsgType    string            // text, post
	ChatType   string            // p2p (private), group
	Content    string            // Text content (extracted from all message types)
	Sender     *Sender           // Message sender info
	MentionMap map[string]string // Map from mention key (@_user_1) to real name
	CreateTime int64             // Message creation time (milliseconds Unix timestamp from Feishu)
}

// Sender represents the message sender
type Sender struct {
	SenderID   string // open_id for users, app id for bots
	SenderType string // user, app
	TenantKey  string
}

// IsBot reports whether the sender is an application rather than a person
func (s *Sender) IsBot() bool {
	return s != nil && (s.SenderType == "app" || s.SenderType == "bot")
}

// ChatMember represents a member in a chat
type ChatMember struct {
	MemberID   string `json:"member_id"`
	MemberType string `json:"member_type"`
	Name       string `json:"name"`
}

// HistoryMessage represents a message from chat history
type HistoryMessage struct {
	MsgID      string `json:"message_id"`
	MsgType    string `json:"msg_type"`
	Content    string `json:"content"`
	CreateTime string `json:"create_time"`
	Deleted    bool   `json:"deleted"`
	Sender     *Sender
}

// CardAction is a button click on an interactive card
type CardAction struct {
	OperatorID string            // open_id of the clicking user
	MessageID  string            // Card message the button belongs to
	ChatID     string            // Chat the card lives in
	Value      map[string]string // Button value payload
}

// MessageHandler is the callback for received messages
type MessageHandler func(msg *Message)

// CardActionHandler is the callback for card button clicks
type CardActionHandler func(action *CardAction)

// Client is the Feishu API client
type Client struct {
	appID        string
	appSecret    string
	larkCli      *lark.Client
	wsCli        *larkws.Client
	onMessage    MessageHandler
	onCardAction CardActionHandler
	ctx          context.Context
	cancel       context.CancelFunc
	botOpenID    string
}

// NewClient creates a new Feishu client
func NewClient(appID, appSecret string) *Client {
	return &Client{
		appID:     appID,
		appSecret: appSecret,
		larkCli:   lark.NewClient(appID, appSecret),
	}
}

// OnMessage sets the message handler
func (c *Client) OnMessage(handler MessageHandler) {
	c.onMessage = handler
}

// OnCardAction sets the card action handler
func (c *Client) OnCardAction(handler CardActionHandler) {
	c.onCardAction = handler
}

// Start connects to Feishu via WebSocket and starts listening for events
func (c *Client) Start(ctx context.Context) error {
	c.ctx, c.cancel = context.WithCancel(ctx)

	// Fetch bot's own identity at startup
	if err := c.fetchBotInfo(); err != nil {
		fmt.Printf("[Feishu] Warning: failed to fetch bot info: %v\n", err)
	}

	// Register event handlers
	// Note: Must return quickly so SDK can send ACK, otherwise Feishu will retry due to timeout
	eventHandler := dispatcher.NewEventDispatcher("", "").
		OnP2MessageReceiveV1(func(ctx context.Context, event *larkim.P2MessageReceiveV1) error {
			// Process message asynchronously, return immediately to let SDK send ACK
			go c.handleMessage(event)
			return nil
		}).
		OnP2CardActionTrigger(func(ctx context.Context, event *callback.CardActionTriggerEvent) (*callback.CardActionTriggerResponse, error) {
			action, err := parseCardAction(event)
			if err != nil {
				fmt.Printf("[Feishu] Failed to parse card action: %v\n", err)
				return nil, nil
			}
			if c.onCardAction != nil {
				go c.onCardAction(action)
			}
			return nil, nil
		})

	// Create WebSocket client
	c.wsCli = larkws.NewClient(c.appID, c.appSecret,
		larkws.WithEventHandler(eventHandler),
		larkws.WithLogLevel(larkcore.LogLevelInfo),
	)

	fmt.Println("[Feishu] Starting WebSocket connection...")

	// Start WebSocket (blocking)
	return c.wsCli.Start(c.ctx)
}

// fetchBotInfo fetches the bot's own open_id and name
func (c *Client) fetchBotInfo() error {
	// 1. First get tenant_access_token
	tokenReq := fmt.Sprintf(`{"app_id":"%s","app_secret":"%s"}`, c.appID, c.appSecret)
	tokenResp, err := http.Post(
		"https://open.feishu.cn/open-apis/auth/v3/tenant_access_token/internal",
		"application/json",
		strings.NewReader(tokenReq),
	)
	if err != nil {
		return fmt.Errorf("get token: %w", err)
	}
	defer tokenResp.Body.Close()

	var tokenResult struct {
		Code              int    `json:"code"`
		TenantAccessToken string `json:"tenant_access_token"`
	}
	if err := json.NewDecoder(tokenResp.Body).Decode(&tokenResult); err != nil {
		return fmt.Errorf("decode token: %w", err)
	}

	// 2. Get bot info
	req, _ := http.NewRequest("GET", "https://open.feishu.cn/open-apis/bot/v3/info", nil)
	req.Header.Set("Authorization", "Bearer "+tokenResult.TenantAccessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("get bot info: %w", err)
	}
	defer resp.Body.Close()

	var botResult struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
		Bot  struct {
			OpenID  string `json:"open_id"`
			AppName string `json:"app_name"`
		} `json:"bot"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&botResult); err != nil {
		return fmt.Errorf("decode bot info: %w", err)
	}

	if botResult.Code != 0 {
		return fmt.Errorf("API error: %s", botResult.Msg)
	}

	c.botOpenID = botResult.Bot.OpenID
	fmt.Printf("[Feishu] Connected as %s (open_id=%s)\n", botResult.Bot.AppName, c.botOpenID)
	return nil
}

// Stop disconnects from Feishu
func (c *Client) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
}

// handleMessage processes incoming Feishu messages
func (c *Client) handleMessage(event *larkim.P2MessageReceiveV1) {
	rawMsg := event.Event.Message
	if rawMsg == nil || rawMsg.ChatId == nil || rawMsg.MessageId == nil || rawMsg.MessageType == nil {
		return
	}

	// Filter out messages sent by bots to prevent loops
	if event.Event.Sender != nil && event.Event.Sender.SenderType != nil {
		if *event.Event.Sender.SenderType == "app" {
			return
		}
	}

	msg := &Message{
		ChatID:  *rawMsg.ChatId,
		MsgID:   *rawMsg.MessageId,
		MsgType: *rawMsg.MessageType,
	}

	// Parse create time (milliseconds Unix timestamp)
	if rawMsg.CreateTime != nil {
		if ts, err := strconv.ParseInt(*rawMsg.CreateTime, 10, 64); err == nil {
			msg.CreateTime = ts
		}
	}

	if rawMsg.ChatType != nil {
		msg.ChatType = *rawMsg.ChatType
	}

	// Parse sender info
	if event.Event.Sender != nil {
		msg.Sender = &Sender{}
		if event.Event.Sender.SenderId != nil && event.Event.Sender.SenderId.OpenId != nil {
			msg.Sender.SenderID = *event.Event.Sender.SenderId.OpenId
		}
		if event.Event.Sender.SenderType != nil {
			msg.Sender.SenderType = *event.Event.Sender.SenderType
		}
		if event.Event.Sender.TenantKey != nil {
			msg.Sender.TenantKey = *event.Event.Sender.TenantKey
		}
	}

	// Build a map from mention key (@_user_1) to real name
	msg.MentionMap = make(map[string]string)
	for _, mention := range rawMsg.Mentions {
		if mention.Key != nil && mention.Name != nil {
			msg.MentionMap[*mention.Key] = *mention.Name
		}
	}

	if rawMsg.Content == nil {
		return
	}
	switch msg.MsgType {
	case "text":
		msg.Content = ParseTextContent(*rawMsg.Content, msg.MentionMap)
	case "post":
		msg.Content = ParsePostContent(*rawMsg.Content, msg.MentionMap)
	default:
		// Commands only arrive as text or rich text
		return
	}

	fmt.Printf("[Feishu] Received %s from %s chat %s: %s\n", msg.MsgType, msg.ChatType, msg.ChatID, truncate(msg.Content, 50))

	if c.onMessage != nil {
		c.onMessage(msg)
	}
}

// parseCardAction extracts the fields the bot needs from a card callback.
// The payload is re-read as JSON so only stable wire names are relied on.
func parseCardAction(event *callback.CardActionTriggerEvent) (*CardAction, error) {
	if event == nil || event.Event == nil {
		return nil, fmt.Errorf("empty card action event")
	}
	raw, err := json.Marshal(event.Event)
	if err != nil {
		return nil, fmt.Errorf("marshal card action: %w", err)
	}
	return ParseCardActionJSON(raw)
}

// ParseCardActionJSON decodes the body of a card.action.trigger event
func ParseCardActionJSON(raw []byte) (*CardAction, error) {
	var payload struct {
		Operator struct {
			OpenID string `json:"open_id"`
		} `json:"operator"`
		Action struct {
			Value map[string]interface{} `json:"value"`
		} `json:"action"`
		Context struct {
			OpenMessageID string `json:"open_message_id"`
			OpenChatID    string `json:"open_chat_id"`
		} `json:"context"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode card action: %w", err)
	}
	if payload.Operator.OpenID == "" {
		return nil, fmt.Errorf("card action without operator")
	}

	value := make(map[string]string, len(payload.Action.Value))
	for k, v := range payload.Action.Value {
		value[k] = fmt.Sprint(v)
	}

	return &CardAction{
		OperatorID: payload.Operator.OpenID,
		MessageID:  payload.Context.OpenMessageID,
		ChatID:     payload.Context.OpenChatID,
		Value:      value,
	}, nil
}

// ParseTextContent extracts text from a text message
// It also replaces mention placeholders (@_user_1) with real names
func ParseTextContent(content string, mentionMap map[string]string) string {
	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return ""
	}
	return replaceMentions(parsed.Text, mentionMap)
}

// ParsePostContent extracts text from a rich text message
// It also replaces mention placeholders (@_user_1) with real names
func ParsePostContent(content string, mentionMap map[string]string) string {
	var parsed struct {
		Title   string `json:"title"`
		Content [][]struct {
			Tag    string `json:"tag"`
			Text   string `json:"text,omitempty"`
			UserID string `json:"user_id,omitempty"` // for "at" tags
		} `json:"content"`
	}

	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return ""
	}

	var textParts []string
	if parsed.Title != "" {
		textParts = append(textParts, parsed.Title)
	}

	for _, line := range parsed.Content {
		var lineParts []string
		for _, elem := range line {
			switch elem.Tag {
			case "text", "a":
				if elem.Text != "" {
					lineParts = append(lineParts, elem.Text)
				}
			case "at":
				if elem.UserID != "" {
					if name, ok := mentionMap[elem.UserID]; ok {
						lineParts = append(lineParts, "@"+name)
					} else {
						lineParts = append(lineParts, "@"+elem.UserID)
					}
				}
			}
		}
		if len(lineParts) > 0 {
			textParts = append(textParts, strings.Join(lineParts, ""))
		}
	}

	return replaceMentions(strings.Join(textParts, "\n"), mentionMap)
}

// replaceMentions replaces mention placeholders (@_user_1, @_user_2, etc.) with real names
func replaceMentions(text string, mentionMap map[string]string) string {
	for key, name := range mentionMap {
		text = strings.ReplaceAll(text, key, "@"+name)
	}
	return text
}

// GetChatHistory retrieves up to limit recent messages from a chat, newest first.
// Pages through the list API since a single page holds at most 50 messages.
func (c *Client) GetChatHistory(ctx context.Context, chatID string, limit int) ([]*HistoryMessage, error) {
	if limit <= 0 {
		return nil, nil
	}

	var messages []*HistoryMessage
	var pageToken string

	for len(messages) < limit {
		pageSize := limit - len(messages)
		if pageSize > historyPageSize {
			pageSize = historyPageSize
		}

		// ByCreateTimeDesc returns the latest messages first
		reqBuilder := larkim.NewListMessageReqBuilder().
			ContainerIdType("chat").
			ContainerId(chatID).
			SortType("ByCreateTimeDesc").
			PageSize(pageSize)
		if pageToken != "" {
			reqBuilder = reqBuilder.PageToken(pageToken)
		}

		resp, err := c.larkCli.Im.Message.List(ctx, reqBuilder.Build())
		if err != nil {
			return nil, fmt.Errorf("get chat history failed: %w", err)
		}
		if !resp.Success() {
			return nil, fmt.Errorf("get chat history error: %s", resp.Msg)
		}

		for _, item := range resp.Data.Items {
			messages = append(messages, convertHistoryItem(item))
		}

		if resp.Data.HasMore == nil || !*resp.Data.HasMore || resp.Data.PageToken == nil || *resp.Data.PageToken == "" {
			break
		}
		pageToken = *resp.Data.PageToken
	}

	if len(messages) > limit {
		messages = messages[:limit]
	}

	fmt.Printf("[Feishu] Retrieved %d messages from chat %s\n", len(messages), chatID)
	return messages, nil
}

func convertHistoryItem(item *larkim.Message) *HistoryMessage {
	msg := &HistoryMessage{}
	if item.MessageId != nil {
		msg.MsgID = *item.MessageId
	}
	if item.MsgType != nil {
		msg.MsgType = *item.MsgType
	}
	if item.CreateTime != nil {
		msg.CreateTime = *item.CreateTime
	}
	if item.Deleted != nil {
		msg.Deleted = *item.Deleted
	}

	// Build mention map to replace @_user_N placeholders with real names
	mentionMap := make(map[string]string)
	for _, mention := range item.Mentions {
		if mention.Key != nil && mention.Name != nil {
			mentionMap[*mention.Key] = *mention.Name
		}
	}

	if item.Body != nil && item.Body.Content != nil {
		rawContent := *item.Body.Content
		switch msg.MsgType {
		case "text":
			msg.Content = ParseTextContent(rawContent, mentionMap)
		case "post":
			msg.Content = ParsePostContent(rawContent, mentionMap)
		default:
			msg.Content = rawContent
		}
	}

	if item.Sender != nil {
		msg.Sender = &Sender{}
		if item.Sender.Id != nil {
			msg.Sender.SenderID = *item.Sender.Id
		}
		if item.Sender.SenderType != nil {
			msg.Sender.SenderType = *item.Sender.SenderType
		}
		if item.Sender.TenantKey != nil {
			msg.Sender.TenantKey = *item.Sender.TenantKey
		}
	}
	return msg
}

// GetChatMembers retrieves members of a chat (group)
// Uses pagination to get all members
func (c *Client) GetChatMembers(ctx context.Context, chatID string) ([]*ChatMember, error) {
	var members []*ChatMember
	var pageToken string

	for {
		reqBuilder := larkim.NewGetChatMembersReqBuilder().
			MemberIdType("open_id").
			ChatId(chatID).
			PageSize(100)

		if pageToken != "" {
			reqBuilder = reqBuilder.PageToken(pageToken)
		}

		resp, err := c.larkCli.Im.ChatMembers.Get(ctx, reqBuilder.Build())
		if err != nil {
			return nil, fmt.Errorf("get chat members failed: %w", err)
		}
		if !resp.Success() {
			return nil, fmt.Errorf("get chat members error: %s", resp.Msg)
		}

		for _, item := range resp.Data.Items {
			member := &ChatMember{}
			if item.MemberId != nil {
				member.MemberID = *item.MemberId
			}
			if item.MemberIdType != nil {
				member.MemberType = *item.MemberIdType
			}
			if item.Name != nil {
				member.Name = *item.Name
			}
			members = append(members, member)
		}

		if resp.Data.PageToken == nil || *resp.Data.PageToken == "" {
			break
		}
		pageToken = *resp.Data.PageToken
	}

	fmt.Printf("[Feishu] Retrieved %d members from chat %s\n", len(members), chatID)
	return members, nil
}

// GetChatName retrieves a chat's display name
func (c *Client) GetChatName(ctx context.Context, chatID string) (string, error) {
	req := larkim.NewGetChatReqBuilder().
		ChatId(chatID).
		Build()

	resp, err := c.larkCli.Im.Chat.Get(ctx, req)
	if err != nil {
		return "", fmt.Errorf("get chat info failed: %w", err)
	}
	if !resp.Success() {
		return "", fmt.Errorf("get chat info error: %s", resp.Msg)
	}
	if resp.Data.Name == nil {
		return "", nil
	}
	return *resp.Data.Name, nil
}

// SendText sends a text message to a chat
func (c *Client) SendText(ctx context.Context, chatID, text string) error {
	content := map[string]string{"text": text}
	contentJSON, _ := json.Marshal(content)

	_, err := c.create(ctx, larkim.ReceiveIdTypeChatId, chatID, larkim.MsgTypeText, string(contentJSON))
	if err != nil {
		return fmt.Errorf("send message failed: %w", err)
	}

	fmt.Printf("[Feishu] Message sent to %s\n", chatID)
	return nil
}

// SendTextToUser sends a direct text message to a user by open_id
func (c *Client) SendTextToUser(ctx context.Context, openID, text string) error {
	content := map[string]string{"text": text}
	contentJSON, _ := json.Marshal(content)

	_, err := c.create(ctx, "open_id", openID, larkim.MsgTypeText, string(contentJSON))
	if err != nil {
		return fmt.Errorf("send direct message failed: %w", err)
	}
	return nil
}

// SendCard sends an interactive card to a chat and returns its message id
func (c *Client) SendCard(ctx context.Context, chatID, card string) (string, error) {
	msgID, err := c.create(ctx, larkim.ReceiveIdTypeChatId, chatID, "interactive", card)
	if err != nil {
		return "", fmt.Errorf("send card failed: %w", err)
	}
	fmt.Printf("[Feishu] Card sent to %s\n", chatID)
	return msgID, nil
}

// SendCardToUser sends an interactive card to a user by open_id and returns its message id
func (c *Client) SendCardToUser(ctx context.Context, openID, card string) (string, error) {
	msgID, err := c.create(ctx, "open_id", openID, "interactive", card)
	if err != nil {
		return "", fmt.Errorf("send direct card failed: %w", err)
	}
	fmt.Printf("[Feishu] Card sent to user %s\n", openID)
	return msgID, nil
}

// PatchCard replaces the content of a previously sent card
func (c *Client) PatchCard(ctx context.Context, messageID, card string) error {
	req := larkim.NewPatchMessageReqBuilder().
		MessageId(messageID).
		Body(larkim.NewPatchMessageReqBodyBuilder().
			Content(card).
			Build()).
		Build()

	resp, err := c.larkCli.Im.Message.Patch(ctx, req)
	if err != nil {
		return fmt.Errorf("patch card failed: %w", err)
	}
	if !resp.Success() {
		return fmt.Errorf("patch card error: %s", resp.Msg)
	}
	return nil
}

func (c *Client) create(ctx context.Context, receiveIDType, receiveID, msgType, content string) (string, error) {
	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType(receiveIDType).
		Body(larkim.NewCreateMessageReqBodyBuilder().
			ReceiveId(receiveID).
			MsgType(msgType).
			Content(content).
			Build()).
		Build()

	resp, err := c.larkCli.Im.Message.Create(ctx, req)
	if err != nil {
		return "", err
	}
	if !resp.Success() {
		return "", fmt.Errorf("%s", resp.Msg)
	}
	if resp.Data != nil && resp.Data.MessageId != nil {
		return *resp.Data.MessageId, nil
	}
	return "", nil
}

// Helper functions

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
