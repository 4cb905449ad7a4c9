package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/DevRickLin/channel-summariser/internal/biz/domain"
)

type mockChannelRepo struct {
	history   []domain.Message
	err       error
	lastLimit int
	published []*domain.Reply
}

func (m *mockChannelRepo) FetchRecentMessages(ctx context.Context, channelID string, limit int) ([]domain.Message, error) {
	m.lastLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	if limit > len(m.history) {
		limit = len(m.history)
	}
	return m.history[:limit], nil
}

func (m *mockChannelRepo) SendPublic(ctx context.Context, channelID string, reply *domain.Reply) error {
	m.published = append(m.published, reply)
	return nil
}

type mockSummarizer struct {
	response string
	err      error
	calls    int
	prompt   string
}

func (m *mockSummarizer) Summarize(ctx context.Context, prompt string) (string, error) {
	m.calls++
	m.prompt = prompt
	return m.response, m.err
}

func (m *mockSummarizer) Name() string {
	return "Google Gemini"
}

// newestFirst builds n messages user<n-1>..user0, newest first
func newestFirst(n int, isBot func(i int) bool) []domain.Message {
	var msgs []domain.Message
	for i := n - 1; i >= 0; i-- {
		msgs = append(msgs, domain.Message{
			ID:         fmt.Sprint(i),
			AuthorName: fmt.Sprintf("user%d", i),
			Content:    fmt.Sprintf("message %d", i),
			IsBot:      isBot(i),
		})
	}
	return msgs
}

func request(count int) *domain.InvocationRequest {
	return domain.NewInvocationRequest(&count,
		domain.Identity{ID: "u1", Name: "Alice"},
		domain.Identity{ID: "c1", Name: "general"})
}

func TestSummarise_NoMessages(t *testing.T) {
	channel := &mockChannelRepo{}
	summarizer := &mockSummarizer{response: "unused"}
	uc := NewSummariseUsecase(channel, summarizer, DefaultPromptConfig)

	result, err := uc.Summarise(context.Background(), request(10), "Alice")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if result.Outcome != domain.OutcomeNoMessages {
		t.Errorf("Expected outcome %s, got %s", domain.OutcomeNoMessages, result.Outcome)
	}
	if result.Notice != "No messages found in this channel." {
		t.Errorf("Unexpected notice: %q", result.Notice)
	}
	if summarizer.calls != 0 {
		t.Errorf("Expected no summarizer call, got %d", summarizer.calls)
	}
}

func TestSummarise_BotsOnly(t *testing.T) {
	channel := &mockChannelRepo{history: newestFirst(3, func(int) bool { return true })}
	summarizer := &mockSummarizer{response: "unused"}
	uc := NewSummariseUsecase(channel, summarizer, DefaultPromptConfig)

	result, err := uc.Summarise(context.Background(), request(10), "Alice")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if result.Outcome != domain.OutcomeBotsOnly {
		t.Errorf("Expected outcome %s, got %s", domain.OutcomeBotsOnly, result.Outcome)
	}
	want := "No user messages found to summarise. Found 3 bot messages."
	if result.Notice != want {
		t.Errorf("Expected %q, got %q", want, result.Notice)
	}
	if summarizer.calls != 0 {
		t.Errorf("Expected no summarizer call, got %d", summarizer.calls)
	}
}

func TestSummarise_MixedMessages(t *testing.T) {
	// 7 user + 3 bot messages
	channel := &mockChannelRepo{history: newestFirst(10, func(i int) bool { return i == 2 || i == 5 || i == 8 })}
	summarizer := &mockSummarizer{response: "They talked about the release."}
	uc := NewSummariseUsecase(channel, summarizer, DefaultPromptConfig)

	result, err := uc.Summarise(context.Background(), request(10), "Alice")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if result.Outcome != domain.OutcomeSummary {
		t.Fatalf("Expected outcome %s, got %s", domain.OutcomeSummary, result.Outcome)
	}
	if result.Transcript.Len() != 7 {
		t.Errorf("Expected 7 transcript lines, got %d", result.Transcript.Len())
	}
	if result.Summary.Title != "📝 Chat Summary (7 messages)" {
		t.Errorf("Unexpected title: %q", result.Summary.Title)
	}
	if result.Summary.Body != "They talked about the release." {
		t.Errorf("Unexpected body: %q", result.Summary.Body)
	}
	if result.Summary.Footer != "Powered by Google Gemini • Summarised by Alice" {
		t.Errorf("Unexpected footer: %q", result.Summary.Footer)
	}
	if result.Summary.Color != domain.SummaryColor {
		t.Errorf("Expected color %#x, got %#x", domain.SummaryColor, result.Summary.Color)
	}
	if summarizer.calls != 1 {
		t.Errorf("Expected 1 summarizer call, got %d", summarizer.calls)
	}
}

func TestSummarise_PromptIsChronological(t *testing.T) {
	channel := &mockChannelRepo{history: []domain.Message{
		{AuthorName: "C", Content: "3"},
		{AuthorName: "B", Content: "2"},
		{AuthorName: "A", Content: "1"},
	}}
	summarizer := &mockSummarizer{response: "ok"}
	uc := NewSummariseUsecase(channel, summarizer, DefaultPromptConfig)

	if _, err := uc.Summarise(context.Background(), request(10), ""); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !strings.Contains(summarizer.prompt, "A: 1\nB: 2\nC: 3") {
		t.Errorf("Expected chronological transcript in prompt, got:\n%s", summarizer.prompt)
	}
	if !strings.Contains(summarizer.prompt, "main topics discussed, key points made, and any important decisions or conclusions") {
		t.Error("Expected prompt to ask for topics, key points and decisions")
	}
}

func TestSummarise_ClampsLimit(t *testing.T) {
	tests := []struct {
		requested int
		want      int
	}{
		{requested: 0, want: 1},
		{requested: -5, want: 1},
		{requested: 500, want: 100},
		{requested: 42, want: 42},
	}

	for _, tt := range tests {
		channel := &mockChannelRepo{}
		uc := NewSummariseUsecase(channel, &mockSummarizer{}, DefaultPromptConfig)

		result, err := uc.Summarise(context.Background(), request(tt.requested), "")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if channel.lastLimit != tt.want {
			t.Errorf("Requested %d: expected fetch limit %d, got %d", tt.requested, tt.want, channel.lastLimit)
		}
		if result.Effective != tt.want {
			t.Errorf("Requested %d: expected effective %d, got %d", tt.requested, tt.want, result.Effective)
		}
	}
}

func TestSummarise_PublicFooter(t *testing.T) {
	channel := &mockChannelRepo{history: newestFirst(2, func(int) bool { return false })}
	uc := NewSummariseUsecase(channel, &mockSummarizer{response: "ok"}, DefaultPromptConfig)

	result, err := uc.Summarise(context.Background(), request(10), "")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Summary.Footer != "Powered by Google Gemini" {
		t.Errorf("Unexpected footer: %q", result.Summary.Footer)
	}
}

func TestSummarise_FetchError(t *testing.T) {
	channel := &mockChannelRepo{err: errors.New("missing access")}
	summarizer := &mockSummarizer{}
	uc := NewSummariseUsecase(channel, summarizer, DefaultPromptConfig)

	_, err := uc.Summarise(context.Background(), request(10), "")
	if err == nil || !strings.Contains(err.Error(), "missing access") {
		t.Fatalf("Expected wrapped fetch error, got %v", err)
	}
	if summarizer.calls != 0 {
		t.Error("Expected no summarizer call after fetch error")
	}
}

func TestSummarise_SummarizerError(t *testing.T) {
	channel := &mockChannelRepo{history: newestFirst(2, func(int) bool { return false })}
	upstream := errors.New("deadline exceeded")
	uc := NewSummariseUsecase(channel, &mockSummarizer{err: upstream}, DefaultPromptConfig)

	_, err := uc.Summarise(context.Background(), request(10), "")
	if !errors.Is(err, upstream) {
		t.Fatalf("Expected upstream error to be wrapped, got %v", err)
	}
}

func TestSummarise_EmptyResponseIsFailure(t *testing.T) {
	for _, resp := range []string{"", "   \n\t"} {
		channel := &mockChannelRepo{history: newestFirst(2, func(int) bool { return false })}
		uc := NewSummariseUsecase(channel, &mockSummarizer{response: resp}, DefaultPromptConfig)

		_, err := uc.Summarise(context.Background(), request(10), "")
		if !errors.Is(err, ErrEmptySummary) {
			t.Errorf("Response %q: expected ErrEmptySummary, got %v", resp, err)
		}
	}
}
