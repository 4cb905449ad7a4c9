package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// CommandName is the slash command the bot registers
const CommandName = "summarise"

// MessagesOption is the optional integer parameter of the command
const MessagesOption = "messages"

// InteractionHandler is the callback for interactions
type InteractionHandler func(s *discordgo.Session, i *discordgo.InteractionCreate)

// Client is the Discord gateway and REST client
type Client struct {
	session       *discordgo.Session
	guildID       string // Empty registers the command globally
	onInteraction InteractionHandler
}

// NewClient creates a new Discord client with a bot token
func NewClient(token, guildID string) (*Client, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}

	// Message content is needed to read channel history
	session.Identify.Intents = discordgo.IntentGuilds |
		discordgo.IntentGuildMessages |
		discordgo.IntentMessageContent

	return &Client{
		session: session,
		guildID: guildID,
	}, nil
}

// Session returns the underlying session for REST calls
func (c *Client) Session() *discordgo.Session {
	return c.session
}

// OnInteraction sets the interaction handler
func (c *Client) OnInteraction(handler InteractionHandler) {
	c.onInteraction = handler
}

// Open connects to the gateway and syncs the slash command
func (c *Client) Open() error {
	c.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		fmt.Printf("[Discord] Connected as %s\n", r.User.String())
	})
	c.session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if c.onInteraction != nil {
			c.onInteraction(s, i)
		}
	})

	fmt.Println("[Discord] Opening gateway connection...")
	if err := c.session.Open(); err != nil {
		return fmt.Errorf("open gateway: %w", err)
	}

	if err := c.registerCommands(); err != nil {
		c.session.Close()
		return err
	}
	return nil
}

// registerCommands overwrites the bot's commands with the summarise command
func (c *Client) registerCommands() error {
	if c.session.State == nil || c.session.State.User == nil {
		return fmt.Errorf("register commands: bot user unknown")
	}

	cmds, err := c.session.ApplicationCommandBulkOverwrite(c.session.State.User.ID, c.guildID, Commands())
	if err != nil {
		return fmt.Errorf("register commands: %w", err)
	}

	scope := "globally"
	if c.guildID != "" {
		scope = "in guild " + c.guildID
	}
	fmt.Printf("[Discord] Synced %d command(s) %s\n", len(cmds), scope)
	return nil
}

// Commands returns the application commands the bot exposes
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        CommandName,
			Description: "Summarise recent messages in this channel",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        MessagesOption,
					Description: "Number of messages to summarise (1-100, default 10)",
					Required:    false,
				},
			},
		},
	}
}

// Close disconnects from the gateway
func (c *Client) Close() error {
	return c.session.Close()
}
