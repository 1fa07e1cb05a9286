package services

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"eventrsvp/internal/domain"
)

type mockMemberRepository struct {
	ids   map[string]domain.MemberID
	err   error
	calls int
	mu    sync.Mutex
}

func (m *mockMemberRepository) GetIDByDiscordID(ctx context.Context, discordID string) (domain.MemberID, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	id, ok := m.ids[discordID]
	if !ok {
		return "", domain.ErrMemberNotFound
	}
	return id, nil
}

type mockEventRepository struct {
	events map[domain.EventID]*domain.Event
	err    error
}

func newMockEventRepository(ids ...domain.EventID) *mockEventRepository {
	m := &mockEventRepository{events: map[domain.EventID]*domain.Event{}}
	for _, id := range ids {
		m.events[id] = &domain.Event{ID: id, Title: "event " + string(id)}
	}
	return m
}

func (m *mockEventRepository) GetByID(ctx context.Context, id domain.EventID) (*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	e, ok := m.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	return e, nil
}

// mockRSVPRepository keeps one row per (event, member), like the table's primary key.
type mockRSVPRepository struct {
	mu      sync.Mutex
	rows    map[string]*domain.RSVP
	upserts []*domain.RSVP
	err     error
}

func newMockRSVPRepository() *mockRSVPRepository {
	return &mockRSVPRepository{rows: map[string]*domain.RSVP{}}
}

func rsvpKey(eventID domain.EventID, memberID domain.MemberID) string {
	return string(eventID) + ":" + string(memberID)
}

func (m *mockRSVPRepository) Upsert(ctx context.Context, rsvp *domain.RSVP) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts = append(m.upserts, rsvp)
	if m.err != nil {
		return m.err
	}
	cp := *rsvp
	m.rows[rsvpKey(rsvp.EventID, rsvp.MemberID)] = &cp
	return nil
}

func (m *mockRSVPRepository) GetByEventAndMember(ctx context.Context, eventID domain.EventID, memberID domain.MemberID) (*domain.RSVP, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	row, ok := m.rows[rsvpKey(eventID, memberID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return row, nil
}

func (m *mockRSVPRepository) ListByEventID(ctx context.Context, eventID domain.EventID, filter domain.RSVPFilter, params domain.PaginationParams) ([]*domain.RSVP, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, 0, m.err
	}
	var out []*domain.RSVP
	for _, row := range m.rows {
		if row.EventID != eventID {
			continue
		}
		if filter.Status != "" && row.Status != filter.Status {
			continue
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MemberID < out[j].MemberID })
	total := len(out)
	start := params.Offset()
	if start > total {
		start = total
	}
	end := start + params.PageSize
	if end > total {
		end = total
	}
	return out[start:end], total, nil
}

func (m *mockRSVPRepository) Delete(ctx context.Context, eventID domain.EventID, memberID domain.MemberID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	key := rsvpKey(eventID, memberID)
	if _, ok := m.rows[key]; !ok {
		return domain.ErrNotFound
	}
	delete(m.rows, key)
	return nil
}

// capturingHandler records every log record for assertions.
type capturingHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *capturingHandler) Enabled(_ context.Context, _ slog.Level) bool { return true }

func (h *capturingHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r.Clone())
	return nil
}

func (h *capturingHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }

func (h *capturingHandler) WithGroup(_ string) slog.Handler { return h }
