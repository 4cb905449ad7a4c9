package mcp

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/DevRickLin/channel-summariser/internal/biz/domain"
	"github.com/DevRickLin/channel-summariser/internal/biz/repo"
	"github.com/DevRickLin/channel-summariser/internal/biz/usecase"
)

const defaultRecentLimit = 20

// Server exposes summarisation to MCP clients over stdio.
// Nothing is ever posted to the channel from here.
type Server struct {
	server      *mcp.Server
	summariseUC *usecase.SummariseUsecase
	auditRepo   repo.AuditRepo // nil disables recent_invocations
	platform    string
}

// NewServer creates a new MCP server and registers its tools
func NewServer(summariseUC *usecase.SummariseUsecase, auditRepo repo.AuditRepo, platform, version string) *Server {
	s := &Server{
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "channel-summariser",
			Version: version,
		}, nil),
		summariseUC: summariseUC,
		auditRepo:   auditRepo,
		platform:    platform,
	}
	s.registerTools()
	return s
}

// Run serves newline-delimited JSON-RPC on in/out until the client
// disconnects or ctx is done
func (s *Server) Run(ctx context.Context, in io.ReadCloser, out io.WriteCloser) error {
	return s.server.Run(ctx, &mcp.IOTransport{Reader: in, Writer: out})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "summarise_channel",
		Description: "Summarise the most recent messages of a chat channel. Bot messages are skipped. Returns the summary without posting it.",
	}, s.handleSummariseChannel)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "recent_invocations",
		Description: "List recent summarise invocations from the audit log (metadata only, never summary text).",
	}, s.handleRecentInvocations)
}

// SummariseChannelInput is the input for summarise_channel
type SummariseChannelInput struct {
	ChannelID string `json:"channel_id" jsonschema:"The channel to summarise"`
	Messages  *int   `json:"messages,omitempty" jsonschema:"Number of recent messages to read (1-100, default 10)"`
}

// SummariseChannelOutput is the output for summarise_channel
type SummariseChannelOutput struct {
	Title        string `json:"title,omitempty"`
	Summary      string `json:"summary,omitempty"`
	Footer       string `json:"footer,omitempty"`
	MessageCount int    `json:"message_count"`
	BotCount     int    `json:"bot_count"`
	Notice       string `json:"notice,omitempty"`
	Error        string `json:"error,omitempty"`
}

func (s *Server) handleSummariseChannel(ctx context.Context, req *mcp.CallToolRequest, input SummariseChannelInput) (*mcp.CallToolResult, SummariseChannelOutput, error) {
	if input.ChannelID == "" {
		return nil, SummariseChannelOutput{Error: "channel_id is required"}, nil
	}

	invReq := domain.NewInvocationRequest(input.Messages, domain.Identity{ID: "mcp"}, domain.Identity{ID: input.ChannelID})

	inv := &domain.Invocation{
		Platform:  s.platform,
		ChannelID: input.ChannelID,
		UserID:    "mcp",
		Requested: invReq.RequestedCount,
		Effective: invReq.EffectiveCount(),
		Delivery:  domain.DeliveryPrivate,
		CreatedAt: time.Now(),
	}

	result, err := s.summariseUC.Summarise(ctx, invReq, "")
	if err != nil {
		inv.Outcome = domain.OutcomeError
		inv.Error = err.Error()
		s.record(ctx, inv)
		return nil, SummariseChannelOutput{Error: err.Error()}, nil
	}

	inv.Outcome = result.Outcome
	inv.UserMessages = result.Transcript.Len()
	inv.BotMessages = result.Transcript.BotCount
	s.record(ctx, inv)

	out := SummariseChannelOutput{
		MessageCount: result.Transcript.Len(),
		BotCount:     result.Transcript.BotCount,
		Notice:       result.Notice,
	}
	if result.Summary != nil {
		out.Title = result.Summary.Title
		out.Summary = result.Summary.Body
		out.Footer = result.Summary.Footer
	}
	return nil, out, nil
}

// RecentInvocationsInput is the input for recent_invocations
type RecentInvocationsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum number of invocations to return (default 20)"`
}

// InvocationInfo is one audit row
type InvocationInfo struct {
	ID           int64  `json:"id"`
	Platform     string `json:"platform"`
	ChannelID    string `json:"channel_id"`
	UserID       string `json:"user_id"`
	Requested    int    `json:"requested"`
	Effective    int    `json:"effective"`
	UserMessages int    `json:"user_messages"`
	BotMessages  int    `json:"bot_messages"`
	Outcome      string `json:"outcome"`
	Error        string `json:"error,omitempty"`
	Delivery     string `json:"delivery"`
	CreatedAt    string `json:"created_at"`
	SharedAt     string `json:"shared_at,omitempty"`
}

// RecentInvocationsOutput is the output for recent_invocations
type RecentInvocationsOutput struct {
	Invocations []InvocationInfo `json:"invocations"`
	Error       string           `json:"error,omitempty"`
}

func (s *Server) handleRecentInvocations(ctx context.Context, req *mcp.CallToolRequest, input RecentInvocationsInput) (*mcp.CallToolResult, RecentInvocationsOutput, error) {
	if s.auditRepo == nil {
		return nil, RecentInvocationsOutput{Error: "audit log disabled"}, nil
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	invs, err := s.auditRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, RecentInvocationsOutput{Error: err.Error()}, nil
	}

	out := RecentInvocationsOutput{Invocations: make([]InvocationInfo, 0, len(invs))}
	for _, inv := range invs {
		info := InvocationInfo{
			ID:           inv.ID,
			Platform:     inv.Platform,
			ChannelID:    inv.ChannelID,
			UserID:       inv.UserID,
			Requested:    inv.Requested,
			Effective:    inv.Effective,
			UserMessages: inv.UserMessages,
			BotMessages:  inv.BotMessages,
			Outcome:      string(inv.Outcome),
			Error:        inv.Error,
			Delivery:     string(inv.Delivery),
			CreatedAt:    inv.CreatedAt.Format(time.RFC3339),
		}
		if inv.IsShared() {
			info.SharedAt = inv.SharedAt.Format(time.RFC3339)
		}
		out.Invocations = append(out.Invocations, info)
	}
	return nil, out, nil
}

func (s *Server) record(ctx context.Context, inv *domain.Invocation) {
	if s.auditRepo == nil {
		return
	}
	if _, err := s.auditRepo.Record(ctx, inv); err != nil {
		// stdout carries the protocol; warnings go to stderr
		fmt.Fprintf(os.Stderr, "[MCP] Warning: failed to record invocation: %v\n", err)
	}
}
