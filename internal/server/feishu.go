package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/DevRickLin/channel-summariser/internal/biz/domain"
	"github.com/DevRickLin/channel-summariser/internal/data"
	"github.com/DevRickLin/channel-summariser/internal/infra/feishu"
	"github.com/DevRickLin/channel-summariser/internal/service"
)

// FeishuServer handles Feishu message and card events
type FeishuServer struct {
	feishuClient *feishu.Client
	svc          *service.SummariseService

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Message deduplication cache
	seenMsgsMu sync.RWMutex
	seenMsgs   map[string]time.Time // msgID -> timestamp
}

// NewFeishuServer creates a new Feishu server
func NewFeishuServer(feishuClient *feishu.Client, svc *service.SummariseService) *FeishuServer {
	return &FeishuServer{
		feishuClient: feishuClient,
		svc:          svc,
		seenMsgs:     make(map[string]time.Time),
	}
}

// Start starts the server; blocks while the WebSocket is connected
func (s *FeishuServer) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.feishuClient.OnMessage(s.handleMessage)
	s.feishuClient.OnCardAction(s.handleCardAction)
	return s.feishuClient.Start(s.ctx)
}

// Stop stops the server and waits for in-flight invocations
func (s *FeishuServer) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.feishuClient.Stop()
	s.wg.Wait()
}

// handleMessage handles Feishu messages; it already runs off the event goroutine
func (s *FeishuServer) handleMessage(msg *feishu.Message) {
	count, ok := data.ParseFeishuCommand(msg.Content)
	if !ok {
		return
	}

	// Message deduplication: Feishu redelivers events it considers unacknowledged
	if s.isMessageSeen(msg.MsgID) {
		fmt.Printf("[Server] Duplicate message ignored: %s\n", msg.MsgID)
		return
	}
	s.markMessageSeen(msg.MsgID)

	senderID := ""
	if msg.Sender != nil {
		senderID = msg.Sender.SenderID
	}

	s.run(func(ctx context.Context) error {
		in := &feishuCommandInteraction{
			client: s.feishuClient,
			user:   domain.Identity{ID: senderID, Name: s.memberName(ctx, msg.ChatID, senderID)},
			chat:   domain.Identity{ID: msg.ChatID, Name: s.chatName(ctx, msg.ChatID)},
		}
		return s.svc.HandleSummarise(ctx, in, count)
	})
}

// handleCardAction handles card button clicks
func (s *FeishuServer) handleCardAction(action *feishu.CardAction) {
	if action.Value["action"] != data.FeishuShareAction {
		return
	}
	shareID := action.Value["share_id"]

	s.run(func(ctx context.Context) error {
		in := &feishuCardInteraction{
			client:    s.feishuClient,
			user:      domain.Identity{ID: action.OperatorID},
			chat:      domain.Identity{ID: action.ChatID},
			messageID: action.MessageID,
		}
		return s.svc.HandleShare(ctx, in, shareID)
	})
}

func (s *FeishuServer) run(fn func(ctx context.Context) error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(s.ctx, invocationTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			fmt.Printf("[Server] Handle event error: %v\n", err)
		}
	}()
}

func (s *FeishuServer) memberName(ctx context.Context, chatID, userID string) string {
	members, err := s.feishuClient.GetChatMembers(ctx, chatID)
	if err != nil {
		return ""
	}
	for _, m := range members {
		if m.MemberID == userID {
			return m.Name
		}
	}
	return ""
}

func (s *FeishuServer) chatName(ctx context.Context, chatID string) string {
	name, _ := s.feishuClient.GetChatName(ctx, chatID)
	return name
}

// isMessageSeen checks if a message has been processed
func (s *FeishuServer) isMessageSeen(msgID string) bool {
	s.seenMsgsMu.RLock()
	defer s.seenMsgsMu.RUnlock()
	_, exists := s.seenMsgs[msgID]
	return exists
}

// markMessageSeen marks a message as processed
func (s *FeishuServer) markMessageSeen(msgID string) {
	s.seenMsgsMu.Lock()
	defer s.seenMsgsMu.Unlock()
	s.seenMsgs[msgID] = time.Now()

	// Clean up records older than 5 minutes
	cutoff := time.Now().Add(-5 * time.Minute)
	for id, ts := range s.seenMsgs {
		if ts.Before(cutoff) {
			delete(s.seenMsgs, id)
		}
	}
}

// feishuCommandInteraction adapts a /summarise message to service.Interaction.
// Private replies go to the requester's direct chat with the bot.
type feishuCommandInteraction struct {
	client *feishu.Client
	user   domain.Identity
	chat   domain.Identity

	mu        sync.Mutex
	messageID string // Card sent for this invocation, target of Edit
}

func (f *feishuCommandInteraction) User() domain.Identity    { return f.user }
func (f *feishuCommandInteraction) Channel() domain.Identity { return f.chat }

// Defer is a no-op: the event was acknowledged when the handler returned
func (f *feishuCommandInteraction) Defer(ctx context.Context, private bool) error {
	return nil
}

func (f *feishuCommandInteraction) SendPrivate(ctx context.Context, reply *domain.Reply) error {
	if reply.IsText() {
		return f.client.SendTextToUser(ctx, f.user.ID, reply.Content)
	}
	card, err := data.BuildFeishuCard(reply)
	if err != nil {
		return err
	}
	msgID, err := f.client.SendCardToUser(ctx, f.user.ID, card)
	if err != nil {
		return err
	}
	f.remember(msgID)
	return nil
}

func (f *feishuCommandInteraction) SendPublic(ctx context.Context, reply *domain.Reply) error {
	if reply.IsText() {
		return f.client.SendText(ctx, f.chat.ID, reply.Content)
	}
	card, err := data.BuildFeishuCard(reply)
	if err != nil {
		return err
	}
	msgID, err := f.client.SendCard(ctx, f.chat.ID, card)
	if err != nil {
		return err
	}
	f.remember(msgID)
	return nil
}

func (f *feishuCommandInteraction) Edit(ctx context.Context, reply *domain.Reply) error {
	f.mu.Lock()
	msgID := f.messageID
	f.mu.Unlock()
	if msgID == "" {
		return fmt.Errorf("no card to edit")
	}
	return patchCard(ctx, f.client, msgID, reply)
}

func (f *feishuCommandInteraction) remember(msgID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messageID = msgID
}

// feishuCardInteraction adapts a card button click to service.Interaction
type feishuCardInteraction struct {
	client    *feishu.Client
	user      domain.Identity
	chat      domain.Identity
	messageID string
}

func (f *feishuCardInteraction) User() domain.Identity    { return f.user }
func (f *feishuCardInteraction) Channel() domain.Identity { return f.chat }

func (f *feishuCardInteraction) Defer(ctx context.Context, private bool) error {
	return nil
}

func (f *feishuCardInteraction) SendPrivate(ctx context.Context, reply *domain.Reply) error {
	if reply.IsText() {
		return f.client.SendTextToUser(ctx, f.user.ID, reply.Content)
	}
	card, err := data.BuildFeishuCard(reply)
	if err != nil {
		return err
	}
	_, err = f.client.SendCardToUser(ctx, f.user.ID, card)
	return err
}

func (f *feishuCardInteraction) SendPublic(ctx context.Context, reply *domain.Reply) error {
	if reply.IsText() {
		return f.client.SendText(ctx, f.chat.ID, reply.Content)
	}
	card, err := data.BuildFeishuCard(reply)
	if err != nil {
		return err
	}
	_, err = f.client.SendCard(ctx, f.chat.ID, card)
	return err
}

func (f *feishuCardInteraction) Edit(ctx context.Context, reply *domain.Reply) error {
	return patchCard(ctx, f.client, f.messageID, reply)
}

func patchCard(ctx context.Context, client *feishu.Client, msgID string, reply *domain.Reply) error {
	if reply.IsText() {
		return fmt.Errorf("cannot replace a card with text")
	}
	card, err := data.BuildFeishuCard(reply)
	if err != nil {
		return err
	}
	return client.PatchCard(ctx, msgID, card)
}
