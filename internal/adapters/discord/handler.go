package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"eventrsvp/internal/domain"
)

// API is the subset of *discordgo.Session the handlers call.
type API interface {
	ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	User(userID string, options ...discordgo.RequestOption) (*discordgo.User, error)
	ChannelMessageSendReply(channelID string, content string, reference *discordgo.MessageReference, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Handler is the dispatch-loop error boundary: it turns gateway events into
// reconciler calls and never lets a failure escape to the session.
type Handler struct {
	logger        *slog.Logger
	reconciler    domain.Reconciler
	recorder      domain.ReconcileRecorder
	timeout       time.Duration
	commandPrefix string
}

// NewHandler bounds each reaction or command by timeout and matches commands against commandPrefix.
func NewHandler(logger *slog.Logger, reconciler domain.Reconciler, recorder domain.ReconcileRecorder, timeout time.Duration, commandPrefix string) *Handler {
	return &Handler{
		logger:        logger,
		reconciler:    reconciler,
		recorder:      recorder,
		timeout:       timeout,
		commandPrefix: commandPrefix,
	}
}

// HandleReactionAdd reconciles one added reaction. selfID is the bot's own user id.
func (h *Handler) HandleReactionAdd(api API, selfID string, r *discordgo.MessageReaction, member *discordgo.Member) {
	start := time.Now()
	outcome := domain.OutcomeFailed
	defer func() {
		if p := recover(); p != nil {
			outcome = domain.OutcomeFailed
			h.logger.Error("panic while reconciling reaction",
				"panic", p,
				"message_id", r.MessageID,
				"user_id", r.UserID,
			)
		}
		h.recorder.Record(outcome, time.Since(start).Seconds())
	}()

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	ev, err := h.reactionEvent(ctx, api, selfID, r, member)
	if err != nil {
		h.logger.ErrorContext(ctx, "fetch reaction context failed",
			"err", err,
			"channel_id", r.ChannelID,
			"message_id", r.MessageID,
			"user_id", r.UserID,
		)
		return
	}

	result, err := h.reconciler.Reconcile(ctx, ev)
	if result != nil {
		outcome = result.Outcome
	}
	if err != nil {
		kind := "transient"
		if errors.Is(err, domain.ErrRSVPConstraint) {
			kind = "constraint"
		}
		h.logger.ErrorContext(ctx, "reconcile reaction failed",
			"kind", kind,
			"err", err,
			"message_id", r.MessageID,
			"user_id", r.UserID,
			"emoji", r.Emoji.Name,
		)
		return
	}
	h.logger.DebugContext(ctx, "reaction reconciled",
		"outcome", outcome,
		"message_id", r.MessageID,
		"user_id", r.UserID,
	)
}

// reactionEvent gathers what the gateway payload lacks. The bot flag is resolved
// first so bot reactions never cost a message fetch.
func (h *Handler) reactionEvent(ctx context.Context, api API, selfID string, r *discordgo.MessageReaction, member *discordgo.Member) (*domain.ReactionEvent, error) {
	ev := &domain.ReactionEvent{
		ReactorID: r.UserID,
		Symbol:    r.Emoji.Name,
		ChannelID: r.ChannelID,
		MessageID: r.MessageID,
	}

	switch {
	case r.UserID == selfID:
		ev.ReactorIsBot = true
	case member != nil && member.User != nil:
		ev.ReactorIsBot = member.User.Bot
		ev.ReactorName = member.User.Username
	default:
		user, err := api.User(r.UserID, discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("get user: %w", err)
		}
		ev.ReactorIsBot = user.Bot
		ev.ReactorName = user.Username
	}
	if ev.ReactorIsBot {
		return ev, nil
	}

	msg, err := api.ChannelMessage(r.ChannelID, r.MessageID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("get message: %w", err)
	}
	ev.MessageText = msg.Content
	return ev, nil
}

// HandleMessageCreate answers the ping command.
func (h *Handler) HandleMessageCreate(api API, m *discordgo.Message) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if strings.TrimSpace(m.Content) != h.commandPrefix+"ping" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()
	if _, err := api.ChannelMessageSendReply(m.ChannelID, "Pong!", m.Reference(), discordgo.WithContext(ctx)); err != nil {
		h.logger.ErrorContext(ctx, "reply to ping failed", "err", err, "channel_id", m.ChannelID)
	}
}
