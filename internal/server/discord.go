package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/DevRickLin/channel-summariser/internal/biz/domain"
	"github.com/DevRickLin/channel-summariser/internal/data"
	"github.com/DevRickLin/channel-summariser/internal/infra/discord"
	"github.com/DevRickLin/channel-summariser/internal/service"
)

// invocationTimeout bounds one summarise or share run
const invocationTimeout = 3 * time.Minute

// DiscordServer dispatches Discord interactions to the summarise service
type DiscordServer struct {
	client *discord.Client
	svc    *service.SummariseService

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDiscordServer creates a new Discord server
func NewDiscordServer(client *discord.Client, svc *service.SummariseService) *DiscordServer {
	return &DiscordServer{
		client: client,
		svc:    svc,
	}
}

// Start connects to Discord and begins handling interactions
func (s *DiscordServer) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.client.OnInteraction(s.handleInteraction)
	return s.client.Open()
}

// Stop disconnects and waits for in-flight invocations
func (s *DiscordServer) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	if err := s.client.Close(); err != nil {
		fmt.Printf("[Discord] Close error: %v\n", err)
	}
	s.wg.Wait()
}

// handleInteraction routes one interaction; each runs in its own goroutine
func (s *DiscordServer) handleInteraction(ds *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		cmd := i.ApplicationCommandData()
		if cmd.Name != discord.CommandName {
			return
		}
		count := commandCount(cmd)
		s.dispatch(func(ctx context.Context) error {
			return s.svc.HandleSummarise(ctx, newCommandInteraction(ds, i.Interaction), count)
		})

	case discordgo.InteractionMessageComponent:
		shareID, ok := data.ParseShareCustomID(i.MessageComponentData().CustomID)
		if !ok {
			return
		}
		s.dispatch(func(ctx context.Context) error {
			return s.svc.HandleShare(ctx, newComponentInteraction(ds, i.Interaction), shareID)
		})
	}
}

func (s *DiscordServer) dispatch(fn func(ctx context.Context) error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(s.ctx, invocationTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			fmt.Printf("[Discord] Interaction error: %v\n", err)
		}
	}()
}

// commandCount reads the optional messages option; nil when omitted
func commandCount(cmd discordgo.ApplicationCommandInteractionData) *int {
	for _, opt := range cmd.Options {
		if opt.Name == discord.MessagesOption && opt.Type == discordgo.ApplicationCommandOptionInteger {
			n := int(opt.IntValue())
			return &n
		}
	}
	return nil
}

// interactionUser returns the invoking user; Member is set in guilds, User in DMs
func interactionUser(i *discordgo.Interaction) domain.Identity {
	if i.Member != nil && i.Member.User != nil {
		return domain.Identity{ID: i.Member.User.ID, Name: data.DiscordUserName(i.Member, i.Member.User)}
	}
	if i.User != nil {
		return domain.Identity{ID: i.User.ID, Name: data.DiscordUserName(nil, i.User)}
	}
	return domain.Identity{}
}

func interactionChannel(ds *discordgo.Session, i *discordgo.Interaction) domain.Identity {
	ch := domain.Identity{ID: i.ChannelID}
	if ds.State != nil {
		if c, err := ds.State.Channel(i.ChannelID); err == nil {
			ch.Name = c.Name
		}
	}
	return ch
}

// commandInteraction adapts a slash command to service.Interaction
type commandInteraction struct {
	session     *discordgo.Session
	interaction *discordgo.Interaction

	mu           sync.Mutex
	private      bool // Visibility of the deferred response
	originalUsed bool // Deferred response already filled
}

func newCommandInteraction(ds *discordgo.Session, i *discordgo.Interaction) *commandInteraction {
	return &commandInteraction{session: ds, interaction: i}
}

func (c *commandInteraction) User() domain.Identity { return interactionUser(c.interaction) }

func (c *commandInteraction) Channel() domain.Identity {
	return interactionChannel(c.session, c.interaction)
}

// Defer shows the "thinking" state within the three second window
func (c *commandInteraction) Defer(ctx context.Context, private bool) error {
	c.mu.Lock()
	c.private = private
	c.mu.Unlock()

	resp := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}
	if private {
		resp.Data = &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral}
	}
	return c.session.InteractionRespond(c.interaction, resp, discordgo.WithContext(ctx))
}

// SendPrivate fills the deferred response when it is private, else adds an ephemeral followup
func (c *commandInteraction) SendPrivate(ctx context.Context, reply *domain.Reply) error {
	if c.claimOriginal(true) {
		return c.editOriginal(ctx, reply)
	}
	_, err := c.session.FollowupMessageCreate(c.interaction, true, followupParams(reply, true), discordgo.WithContext(ctx))
	return err
}

// SendPublic fills the deferred response when it is public, else posts to the channel
func (c *commandInteraction) SendPublic(ctx context.Context, reply *domain.Reply) error {
	if c.claimOriginal(false) {
		return c.editOriginal(ctx, reply)
	}
	_, err := c.session.ChannelMessageSendComplex(c.interaction.ChannelID, data.DiscordMessageSend(reply), discordgo.WithContext(ctx))
	return err
}

// Edit replaces the deferred response
func (c *commandInteraction) Edit(ctx context.Context, reply *domain.Reply) error {
	return c.editOriginal(ctx, reply)
}

func (c *commandInteraction) claimOriginal(private bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.originalUsed || c.private != private {
		return false
	}
	c.originalUsed = true
	return true
}

func (c *commandInteraction) editOriginal(ctx context.Context, reply *domain.Reply) error {
	_, err := c.session.InteractionResponseEdit(c.interaction, webhookEdit(reply), discordgo.WithContext(ctx))
	return err
}

// componentInteraction adapts a share button click to service.Interaction
type componentInteraction struct {
	session     *discordgo.Session
	interaction *discordgo.Interaction
}

func newComponentInteraction(ds *discordgo.Session, i *discordgo.Interaction) *componentInteraction {
	return &componentInteraction{session: ds, interaction: i}
}

func (c *componentInteraction) User() domain.Identity { return interactionUser(c.interaction) }

func (c *componentInteraction) Channel() domain.Identity {
	return interactionChannel(c.session, c.interaction)
}

// Defer acknowledges the click without changing the message yet
func (c *componentInteraction) Defer(ctx context.Context, private bool) error {
	return c.session.InteractionRespond(c.interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	}, discordgo.WithContext(ctx))
}

func (c *componentInteraction) SendPrivate(ctx context.Context, reply *domain.Reply) error {
	_, err := c.session.FollowupMessageCreate(c.interaction, true, followupParams(reply, true), discordgo.WithContext(ctx))
	return err
}

func (c *componentInteraction) SendPublic(ctx context.Context, reply *domain.Reply) error {
	_, err := c.session.ChannelMessageSendComplex(c.interaction.ChannelID, data.DiscordMessageSend(reply), discordgo.WithContext(ctx))
	return err
}

// Edit replaces the message carrying the clicked button
func (c *componentInteraction) Edit(ctx context.Context, reply *domain.Reply) error {
	_, err := c.session.InteractionResponseEdit(c.interaction, webhookEdit(reply), discordgo.WithContext(ctx))
	return err
}

// webhookEdit renders a reply as a full replacement of a message
func webhookEdit(reply *domain.Reply) *discordgo.WebhookEdit {
	send := data.DiscordMessageSend(reply)
	content := send.Content
	embeds := send.Embeds
	if embeds == nil {
		embeds = []*discordgo.MessageEmbed{}
	}
	components := send.Components
	if components == nil {
		components = []discordgo.MessageComponent{}
	}
	return &discordgo.WebhookEdit{
		Content:    &content,
		Embeds:     &embeds,
		Components: &components,
	}
}

func followupParams(reply *domain.Reply, private bool) *discordgo.WebhookParams {
	send := data.DiscordMessageSend(reply)
	params := &discordgo.WebhookParams{
		Content:    send.Content,
		Embeds:     send.Embeds,
		Components: send.Components,
	}
	if private {
		params.Flags = discordgo.MessageFlagsEphemeral
	}
	return params
}
