package session

import (
	"context"
	"fmt"

	"github.com/growwise/growwise-client/internal/backend"
	"github.com/growwise/growwise-client/internal/config"
	"github.com/growwise/growwise-client/internal/domain"
)

// LoadThreads installs sessions describing backend threads.
//
// In merge mode threads whose id is not yet known are prepended and
// existing sessions are left alone. In replace mode the threads become the
// session list; cached messages and agent of sessions that survive are kept.
func (s *Store) LoadThreads(threads []domain.ChatSession) {
	s.loadThreads(threads, s.generation())
}

// loadThreads applies threads unless a logout happened after epoch gen.
// It reports false when the threads were discarded for that reason.
func (s *Store) loadThreads(threads []domain.ChatSession, gen uint64) bool {
	threads = dedupSessions(threads)
	mode := s.opts.ThreadSync
	stale := false

	s.update(func(st domain.AppState) (domain.AppState, bool) {
		if s.epoch != gen {
			stale = true
			return st, false
		}
		if mode == config.ThreadSyncReplace {
			return replaceThreads(st, threads), true
		}
		return mergeThreads(st, threads)
	})
	if stale {
		return false
	}

	if mode == config.ThreadSyncReplace {
		snap := s.Snapshot()
		s.tasks.retain(func(id string) bool { return snap.Index(id) >= 0 })
	}
	return true
}

func mergeThreads(st domain.AppState, threads []domain.ChatSession) (domain.AppState, bool) {
	fresh := make([]domain.ChatSession, 0, len(threads))
	for _, t := range threads {
		if st.Index(t.ID) < 0 {
			fresh = append(fresh, t)
		}
	}
	if len(fresh) == 0 {
		return st, false
	}
	out := st.Clone()
	out.Sessions = append(fresh, out.Sessions...)
	return out, true
}

func replaceThreads(st domain.AppState, threads []domain.ChatSession) domain.AppState {
	out := st.Clone()
	sessions := make([]domain.ChatSession, len(threads))
	for i, t := range threads {
		if cached, ok := st.Session(t.ID); ok {
			t.Messages = cached.Messages
			t.Revision = cached.Revision
			if cached.AgentID != "" {
				t.AgentID = cached.AgentID
			}
		}
		sessions[i] = t
	}
	out.Sessions = sessions
	if out.ActiveSessionID != nil && out.Index(*out.ActiveSessionID) < 0 {
		out.ActiveSessionID = nil
	}
	return out
}

func dedupSessions(in []domain.ChatSession) []domain.ChatSession {
	seen := make(map[string]bool, len(in))
	out := make([]domain.ChatSession, 0, len(in))
	for _, c := range in {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		if c.Messages == nil {
			c.Messages = []domain.Message{}
		}
		out = append(out, c)
	}
	return out
}

// SyncThreads lists the user's threads on the backend and loads them. On
// failure local state is left untouched, as it is when a logout happens
// while the list is in flight.
func (s *Store) SyncThreads(ctx context.Context) error {
	gen := s.generation()
	threads, err := s.api.ListThreads(ctx)
	if err != nil {
		s.log.Error("Failed to list threads", "error", err)
		return fmt.Errorf("list threads: %w", err)
	}
	if !s.loadThreads(ThreadSessions(threads, s.opts.DefaultAgentID), gen) {
		s.log.Info("Signed out while syncing threads, discarding", "count", len(threads))
		return nil
	}
	s.log.Info("Threads synced", "count", len(threads), "mode", s.opts.ThreadSync)
	return nil
}

// ThreadSessions converts backend threads into message-less sessions.
func ThreadSessions(threads []backend.Thread, agentID string) []domain.ChatSession {
	out := make([]domain.ChatSession, 0, len(threads))
	for _, t := range threads {
		title := t.Title
		if title == "" {
			title = domain.DefaultSessionTitle
		}
		out = append(out, domain.ChatSession{
			ID:        t.ID,
			Title:     title,
			AgentID:   agentID,
			Messages:  []domain.Message{},
			CreatedAt: t.CreatedAt.UnixMilli(),
		})
	}
	return out
}
