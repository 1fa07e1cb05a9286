package discord

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventrsvp/internal/domain"
)

type fakeAPI struct {
	messages   map[string]*discordgo.Message
	users      map[string]*discordgo.User
	messageErr error
	userErr    error
	replies    []string
	fetches    int
}

func (f *fakeAPI) ChannelMessage(channelID, messageID string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.fetches++
	if f.messageErr != nil {
		return nil, f.messageErr
	}
	m, ok := f.messages[messageID]
	if !ok {
		return nil, errors.New("HTTP 404 Not Found")
	}
	return m, nil
}

func (f *fakeAPI) User(userID string, _ ...discordgo.RequestOption) (*discordgo.User, error) {
	if f.userErr != nil {
		return nil, f.userErr
	}
	u, ok := f.users[userID]
	if !ok {
		return nil, errors.New("HTTP 404 Not Found")
	}
	return u, nil
}

func (f *fakeAPI) ChannelMessageSendReply(channelID string, content string, _ *discordgo.MessageReference, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.replies = append(f.replies, content)
	return &discordgo.Message{ChannelID: channelID, Content: content}, nil
}

type fakeReconciler struct {
	events []*domain.ReactionEvent
	result *domain.ReconcileResult
	err    error
	panic  bool
}

func (f *fakeReconciler) Reconcile(ctx context.Context, ev *domain.ReactionEvent) (*domain.ReconcileResult, error) {
	if f.panic {
		panic("boom")
	}
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("missing deadline")
	}
	f.events = append(f.events, ev)
	return f.result, f.err
}

type fakeRecorder struct {
	mu       sync.Mutex
	outcomes []domain.ReconcileOutcome
}

func (f *fakeRecorder) Record(outcome domain.ReconcileOutcome, _ float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outcomes = append(f.outcomes, outcome)
}

type capturingHandler struct {
	records []slog.Record
}

func (h *capturingHandler) Enabled(_ context.Context, _ slog.Level) bool { return true }

func (h *capturingHandler) Handle(_ context.Context, r slog.Record) error {
	h.records = append(h.records, r.Clone())
	return nil
}

func (h *capturingHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }

func (h *capturingHandler) WithGroup(_ string) slog.Handler { return h }

func reaction(userID, emoji string) *discordgo.MessageReaction {
	return &discordgo.MessageReaction{
		UserID:    userID,
		MessageID: "m1",
		ChannelID: "c1",
		GuildID:   "g1",
		Emoji:     discordgo.Emoji{Name: emoji},
	}
}

func newAPI() *fakeAPI {
	return &fakeAPI{
		messages: map[string]*discordgo.Message{"m1": {ID: "m1", ChannelID: "c1", Content: "RSVP event_id:12345"}},
		users: map[string]*discordgo.User{
			"u1":   {ID: "u1", Username: "alice"},
			"bot2": {ID: "bot2", Username: "otherbot", Bot: true},
		},
	}
}

func TestHandler_HandleReactionAdd(t *testing.T) {
	applied := &domain.ReconcileResult{Outcome: domain.OutcomeApplied, EventID: "12345", MemberID: "7", Status: domain.RSVPGoing}

	tests := []struct {
		name        string
		userID      string
		member      *discordgo.Member
		wantEvent   *domain.ReactionEvent
		wantFetches int
	}{
		{
			name:   "member payload supplies bot flag and name",
			userID: "u1",
			member: &discordgo.Member{User: &discordgo.User{ID: "u1", Username: "alice"}},
			wantEvent: &domain.ReactionEvent{
				MessageText: "RSVP event_id:12345", ReactorID: "u1", ReactorName: "alice",
				Symbol: "✅", ChannelID: "c1", MessageID: "m1",
			},
			wantFetches: 1,
		},
		{
			name:   "user is looked up without member payload",
			userID: "u1",
			wantEvent: &domain.ReactionEvent{
				MessageText: "RSVP event_id:12345", ReactorID: "u1", ReactorName: "alice",
				Symbol: "✅", ChannelID: "c1", MessageID: "m1",
			},
			wantFetches: 1,
		},
		{
			name:   "other bot skips message fetch",
			userID: "bot2",
			wantEvent: &domain.ReactionEvent{
				ReactorID: "bot2", ReactorName: "otherbot", ReactorIsBot: true,
				Symbol: "✅", ChannelID: "c1", MessageID: "m1",
			},
		},
		{
			name:   "own reactions are bot reactions",
			userID: "self",
			wantEvent: &domain.ReactionEvent{
				ReactorID: "self", ReactorIsBot: true,
				Symbol: "✅", ChannelID: "c1", MessageID: "m1",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newAPI()
			rec := &fakeReconciler{result: applied}
			recorder := &fakeRecorder{}
			h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), rec, recorder, time.Second, "!")

			h.HandleReactionAdd(api, "self", reaction(tt.userID, "✅"), tt.member)

			require.Len(t, rec.events, 1)
			assert.Equal(t, tt.wantEvent, rec.events[0])
			assert.Equal(t, tt.wantFetches, api.fetches)
			assert.Equal(t, []domain.ReconcileOutcome{domain.OutcomeApplied}, recorder.outcomes)
		})
	}
}

func TestHandler_HandleReactionAdd_Failures(t *testing.T) {
	tests := []struct {
		name      string
		api       func() *fakeAPI
		rec       *fakeReconciler
		wantKind  string
		wantCalls int
	}{
		{
			name: "message fetch error",
			api: func() *fakeAPI {
				a := newAPI()
				a.messageErr = errors.New("HTTP 503")
				return a
			},
			rec: &fakeReconciler{},
		},
		{
			name: "user lookup error",
			api: func() *fakeAPI {
				a := newAPI()
				a.userErr = errors.New("HTTP 503")
				return a
			},
			rec: &fakeReconciler{},
		},
		{
			name: "constraint error",
			api:  newAPI,
			rec: &fakeReconciler{
				result: &domain.ReconcileResult{Outcome: domain.OutcomeFailed},
				err:    fmt.Errorf("upsert rsvp: %w", domain.ErrRSVPConstraint),
			},
			wantKind:  "constraint",
			wantCalls: 1,
		},
		{
			name: "transient error",
			api:  newAPI,
			rec: &fakeReconciler{
				result: &domain.ReconcileResult{Outcome: domain.OutcomeFailed},
				err:    fmt.Errorf("resolve member: %w", context.DeadlineExceeded),
			},
			wantKind:  "transient",
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs capturingHandler
			recorder := &fakeRecorder{}
			h := NewHandler(slog.New(&logs), tt.rec, recorder, time.Second, "!")

			require.NotPanics(t, func() {
				h.HandleReactionAdd(tt.api(), "self", reaction("u1", "✅"), nil)
			})

			assert.Len(t, tt.rec.events, tt.wantCalls)
			assert.Equal(t, []domain.ReconcileOutcome{domain.OutcomeFailed}, recorder.outcomes)
			require.NotEmpty(t, logs.records)
			last := logs.records[len(logs.records)-1]
			assert.Equal(t, slog.LevelError, last.Level)
			if tt.wantKind != "" {
				var kind string
				last.Attrs(func(a slog.Attr) bool {
					if a.Key == "kind" {
						kind = a.Value.String()
					}
					return true
				})
				assert.Equal(t, tt.wantKind, kind)
			}
		})
	}
}

func TestHandler_HandleReactionAdd_RecoversPanic(t *testing.T) {
	var logs capturingHandler
	recorder := &fakeRecorder{}
	h := NewHandler(slog.New(&logs), &fakeReconciler{panic: true}, recorder, time.Second, "!")

	require.NotPanics(t, func() {
		h.HandleReactionAdd(newAPI(), "self", reaction("u1", "✅"), nil)
	})
	assert.Equal(t, []domain.ReconcileOutcome{domain.OutcomeFailed}, recorder.outcomes)
	require.Len(t, logs.records, 1)
	assert.Equal(t, "panic while reconciling reaction", logs.records[0].Message)
}

func TestHandler_HandleMessageCreate(t *testing.T) {
	tests := []struct {
		name      string
		msg       *discordgo.Message
		wantReply bool
	}{
		{"ping", &discordgo.Message{ID: "1", ChannelID: "c1", Content: "!ping", Author: &discordgo.User{ID: "u1"}}, true},
		{"ping with spaces", &discordgo.Message{ID: "1", ChannelID: "c1", Content: "  !ping ", Author: &discordgo.User{ID: "u1"}}, true},
		{"bot author", &discordgo.Message{ID: "1", ChannelID: "c1", Content: "!ping", Author: &discordgo.User{ID: "b", Bot: true}}, false},
		{"other text", &discordgo.Message{ID: "1", ChannelID: "c1", Content: "ping", Author: &discordgo.User{ID: "u1"}}, false},
		{"no author", &discordgo.Message{ID: "1", ChannelID: "c1", Content: "!ping"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newAPI()
			h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), &fakeReconciler{}, &fakeRecorder{}, time.Second, "!")
			h.HandleMessageCreate(api, tt.msg)
			if tt.wantReply {
				assert.Equal(t, []string{"Pong!"}, api.replies)
			} else {
				assert.Empty(t, api.replies)
			}
		})
	}
}
