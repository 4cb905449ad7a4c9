package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DevRickLin/channel-summariser/internal/biz/domain"
	"github.com/DevRickLin/channel-summariser/internal/biz/repo"
	"github.com/DevRickLin/channel-summariser/internal/biz/usecase"
)

// SummariseService orchestrates invocations and share activations for one platform
type SummariseService struct {
	summariseUC *usecase.SummariseUsecase
	shareUC     *usecase.ShareUsecase
	channelRepo repo.ChannelRepo
	auditRepo   repo.AuditRepo // nil disables auditing
	msgs        Messages
	platform    string
	mode        domain.DeliveryMode
}

// NewSummariseService creates a new summarise service
func NewSummariseService(
	summariseUC *usecase.SummariseUsecase,
	shareUC *usecase.ShareUsecase,
	channelRepo repo.ChannelRepo,
	auditRepo repo.AuditRepo,
	msgs Messages,
	platform string,
	mode domain.DeliveryMode,
) *SummariseService {
	if mode == "" {
		mode = domain.DeliveryPrivate
	}
	return &SummariseService{
		summariseUC: summariseUC,
		shareUC:     shareUC,
		channelRepo: channelRepo,
		auditRepo:   auditRepo,
		msgs:        msgs,
		platform:    platform,
		mode:        mode,
	}
}

// HandleSummarise runs one summarise invocation end to end.
// count is nil when the user omitted the parameter.
// Every failure is reported to the user; the returned error is for logging only.
func (s *SummariseService) HandleSummarise(ctx context.Context, in Interaction, count *int) error {
	private := s.mode == domain.DeliveryPrivate
	user := in.User()
	channel := in.Channel()

	// Phase 1: acknowledge inside the platform window
	if err := in.Defer(ctx, private); err != nil {
		return fmt.Errorf("defer interaction: %w", err)
	}

	req := domain.NewInvocationRequest(count, user, channel)
	fmt.Printf("[Summarise] %s requested %d messages in %s (effective %d, %s)\n",
		user.FormatDisplay(), req.RequestedCount, channel.FormatDisplay(), req.EffectiveCount(), s.mode)

	attributeTo := ""
	if private {
		attributeTo = user.DisplayName()
	}

	inv := &domain.Invocation{
		Platform:  s.platform,
		ChannelID: channel.ID,
		UserID:    user.ID,
		Requested: req.RequestedCount,
		Effective: req.EffectiveCount(),
		Delivery:  s.mode,
		CreatedAt: time.Now(),
	}

	// Phase 2: the actual work
	result, err := s.summariseUC.Summarise(ctx, req, attributeTo)
	if err != nil {
		fmt.Printf("[Summarise] Invocation failed: %v\n", err)
		inv.Outcome = domain.OutcomeError
		inv.Error = err.Error()
		s.record(ctx, inv)
		if sendErr := s.send(ctx, in, domain.TextReply(s.msgs.FormatError(err))); sendErr != nil {
			return fmt.Errorf("report failure: %w", sendErr)
		}
		return err
	}

	inv.Outcome = result.Outcome
	inv.UserMessages = result.Transcript.Len()
	inv.BotMessages = result.Transcript.BotCount

	if result.Summary == nil {
		s.record(ctx, inv)
		return s.send(ctx, in, domain.TextReply(result.Notice))
	}

	auditID := s.record(ctx, inv)

	if !private {
		return s.send(ctx, in, domain.SummaryReply(result.Summary, nil))
	}

	control := s.shareUC.Arm(*result.Summary, user.ID, channel.ID, auditID, func() {
		s.onShareExpired(in, *result.Summary)
	})
	reply := domain.SummaryReply(result.Summary, s.shareButton(control.ID, false))
	if err := in.SendPrivate(ctx, reply); err != nil {
		return fmt.Errorf("send private summary: %w", err)
	}
	fmt.Printf("[Summarise] Private summary delivered to %s, share control %s armed for %v\n",
		user.DisplayName(), control.ID, s.shareUC.Timeout())
	return nil
}

// HandleShare activates a share control on behalf of the clicking user
func (s *SummariseService) HandleShare(ctx context.Context, in Interaction, shareID string) error {
	user := in.User()

	// Acknowledge the click; the outcome follows through SendPrivate/Edit
	if err := in.Defer(ctx, true); err != nil {
		return fmt.Errorf("defer share: %w", err)
	}

	control, err := s.shareUC.Claim(shareID, user.ID)
	if err != nil {
		fmt.Printf("[Share] Rejected %s for %s: %v\n", shareID, user.DisplayName(), err)
		return in.SendPrivate(ctx, domain.TextReply(s.claimNotice(err)))
	}

	summary := control.Summary
	if err := s.channelRepo.SendPublic(ctx, control.ChannelID, domain.SummaryReply(&summary, nil)); err != nil {
		fmt.Printf("[Share] Publish failed for %s: %v\n", shareID, err)
		s.shareUC.Release(shareID)
		return in.SendPrivate(ctx, domain.TextReply(s.msgs.FormatShareFailed(err)))
	}

	if err := s.shareUC.Complete(shareID); err != nil {
		fmt.Printf("[Share] Warning: complete %s: %v\n", shareID, err)
	}
	if s.auditRepo != nil && control.AuditID > 0 {
		if err := s.auditRepo.MarkShared(ctx, control.AuditID, time.Now()); err != nil {
			fmt.Printf("[Audit] Warning: mark shared %d: %v\n", control.AuditID, err)
		}
	}

	fmt.Printf("[Share] %s shared summary %s to channel %s\n", user.DisplayName(), shareID, control.ChannelID)

	confirm := &domain.Summary{
		Title: s.msgs.SharedTitle,
		Body:  s.msgs.SharedBody,
		Color: domain.SummaryColor,
	}
	return in.Edit(ctx, domain.SummaryReply(confirm, s.shareButton(shareID, true)))
}

// send delivers a reply according to the delivery mode
func (s *SummariseService) send(ctx context.Context, in Interaction, reply *domain.Reply) error {
	if s.mode == domain.DeliveryPublic {
		return in.SendPublic(ctx, reply)
	}
	return in.SendPrivate(ctx, reply)
}

func (s *SummariseService) shareButton(id string, disabled bool) *domain.ShareButton {
	return &domain.ShareButton{
		ID:       id,
		Label:    s.msgs.ShareLabel,
		Emoji:    s.msgs.ShareEmoji,
		Disabled: disabled,
	}
}

func (s *SummariseService) claimNotice(err error) string {
	switch {
	case errors.Is(err, usecase.ErrShareUsed):
		return s.msgs.AlreadyShared
	case errors.Is(err, usecase.ErrShareBusy):
		return s.msgs.ShareBusy
	case errors.Is(err, usecase.ErrShareNotOwner):
		return s.msgs.ShareNotOwner
	default:
		// Unknown controls are ones that expired and were forgotten, or
		// belong to a previous process
		return s.msgs.ShareExpired
	}
}

// onShareExpired disables the button on the private summary
func (s *SummariseService) onShareExpired(in Interaction, summary domain.Summary) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := in.Edit(ctx, domain.SummaryReply(&summary, s.shareButton("expired", true))); err != nil {
		fmt.Printf("[Share] Warning: failed to disable expired control: %v\n", err)
		return
	}
	fmt.Printf("[Share] Control for %s expired\n", in.User().DisplayName())
}

// record writes the audit row and returns its id (0 when auditing is off or failed)
func (s *SummariseService) record(ctx context.Context, inv *domain.Invocation) int64 {
	if s.auditRepo == nil {
		return 0
	}
	id, err := s.auditRepo.Record(ctx, inv)
	if err != nil {
		fmt.Printf("[Audit] Warning: failed to record invocation: %v\n", err)
		return 0
	}
	inv.ID = id
	return id
}
