package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/DevRickLin/channel-summariser/internal/biz/domain"
	"github.com/DevRickLin/channel-summariser/internal/biz/repo"
)

// ErrEmptySummary is returned when the summarizer answers with no usable text
var ErrEmptySummary = errors.New("summarizer returned an empty response")

// SummariseUsecase handles message collection, filtering and summarisation
type SummariseUsecase struct {
	channelRepo repo.ChannelRepo
	summarizer  repo.SummarizerRepo
	promptCfg   PromptConfig
}

// NewSummariseUsecase creates a new summarise usecase
func NewSummariseUsecase(
	channelRepo repo.ChannelRepo,
	summarizer repo.SummarizerRepo,
	promptCfg PromptConfig,
) *SummariseUsecase {
	return &SummariseUsecase{
		channelRepo: channelRepo,
		summarizer:  summarizer,
		promptCfg:   promptCfg,
	}
}

// SummariseResult represents the result of one invocation
type SummariseResult struct {
	Outcome    domain.Outcome
	Effective  int
	Transcript domain.Transcript
	Notice     string          // Set for no_messages and bots_only
	Summary    *domain.Summary // Set for summary
}

// Summarise runs the collection policy and, when there is something to
// summarise, calls the summarizer. attributeTo names the requester in the
// footer; leave it empty for the public footer.
func (uc *SummariseUsecase) Summarise(ctx context.Context, req *domain.InvocationRequest, attributeTo string) (*SummariseResult, error) {
	limit := req.EffectiveCount()

	// 1. Fetch newest-first history
	msgs, err := uc.channelRepo.FetchRecentMessages(ctx, req.Channel.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	if len(msgs) > limit {
		msgs = msgs[:limit]
	}

	// 2. Filter and reorder
	transcript := domain.BuildTranscript(msgs)
	result := &SummariseResult{
		Effective:  limit,
		Transcript: transcript,
	}

	// 3. Empty-state outcomes, no summarizer call
	if transcript.Total() == 0 {
		result.Outcome = domain.OutcomeNoMessages
		result.Notice = uc.promptCfg.NoMessages
		return result, nil
	}
	if transcript.IsEmpty() {
		result.Outcome = domain.OutcomeBotsOnly
		result.Notice = uc.promptCfg.FormatBotsOnly(transcript.BotCount)
		return result, nil
	}

	// 4. Summarise
	prompt := uc.promptCfg.BuildPrompt(transcript)
	fmt.Printf("[SummariseUC] Prompt built (%d chars) from %d user messages, %d bot messages skipped\n",
		len(prompt), transcript.Len(), transcript.BotCount)

	text, err := uc.summarizer.Summarize(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptySummary
	}

	result.Outcome = domain.OutcomeSummary
	result.Summary = &domain.Summary{
		Title:  uc.promptCfg.FormatTitle(transcript.Len()),
		Body:   text,
		Footer: uc.promptCfg.FormatFooter(uc.summarizer.Name(), attributeTo),
		Color:  domain.SummaryColor,
	}
	return result, nil
}
