package discord

import (
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

// Intents needed to see reactions and read the content of reacted-to messages,
// in guild channels and in direct messages with the bot.
const Intents = discordgo.IntentGuilds |
	discordgo.IntentGuildMessages |
	discordgo.IntentGuildMessageReactions |
	discordgo.IntentDirectMessages |
	discordgo.IntentDirectMessageReactions |
	discordgo.IntentMessageContent

// Gateway owns the discordgo session and routes its events to a Handler.
type Gateway struct {
	session *discordgo.Session
	logger  *slog.Logger
}

// NewGateway creates a session for the bot token and registers handler on it. It does not connect.
func NewGateway(token string, handler *Handler, logger *slog.Logger) (*Gateway, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	s.Identify.Intents = Intents

	s.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		logger.Info("discord bot ready", "user", r.User.String(), "guilds", len(r.Guilds))
	})
	s.AddHandler(func(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
		handler.HandleReactionAdd(s, selfID(s), r.MessageReaction, r.Member)
	})
	s.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		handler.HandleMessageCreate(s, m.Message)
	})

	return &Gateway{session: s, logger: logger}, nil
}

// Open connects to the gateway. Reconnects are handled by discordgo.
func (g *Gateway) Open() error {
	if err := g.session.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}
	return nil
}

// Close disconnects from the gateway.
func (g *Gateway) Close() error {
	return g.session.Close()
}

func selfID(s *discordgo.Session) string {
	if s.State == nil || s.State.User == nil {
		return ""
	}
	return s.State.User.ID
}
