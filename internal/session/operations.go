package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/containerd/errdefs"
	"github.com/lithammer/shortuuid/v4"

	"github.com/growwise/growwise-client/internal/domain"
)

// localIDPrefix keeps local ids from ever looking like thread UUIDs.
const localIDPrefix = "local-"

func newLocalID() string {
	return localIDPrefix + shortuuid.New()
}

// RegisterUser replaces the current user.
func (s *Store) RegisterUser(u domain.User) {
	s.update(func(st domain.AppState) (domain.AppState, bool) {
		out := st.Clone()
		out.User = &u
		return out, true
	})
}

// CreateLocalSession inserts an empty local session first in the list and
// makes it active. It never contacts the backend.
func (s *Store) CreateLocalSession(agentID string) domain.ChatSession {
	sess := domain.ChatSession{
		ID:        newLocalID(),
		Title:     domain.DefaultSessionTitle,
		AgentID:   agentID,
		Messages:  []domain.Message{},
		CreatedAt: s.now().UnixMilli(),
	}
	s.update(func(st domain.AppState) (domain.AppState, bool) {
		return st.WithFront(sess).WithActive(sess.ID), true
	})
	return sess
}

// CreateSessionFromThread opens a session for an existing server thread,
// seeded with the thread's messages, and makes it active. If the messages
// cannot be fetched the session is created empty. A logout during the fetch
// discards the session.
func (s *Store) CreateSessionFromThread(ctx context.Context, threadID, title, agentID string) domain.ChatSession {
	gen := s.generation()
	msgs := []domain.Message{}
	detail, err := s.api.GetThread(ctx, threadID)
	if err != nil {
		s.log.Error("Failed to fetch thread messages", "thread_id", threadID, "error", err)
	} else {
		msgs = s.convertMessages(threadID, detail.Messages)
		if title == "" {
			title = detail.Thread.Title
		}
	}
	if title == "" {
		title = domain.DefaultSessionTitle
	}

	sess := domain.ChatSession{
		ID:        threadID,
		Title:     title,
		AgentID:   agentID,
		Messages:  msgs,
		CreatedAt: s.now().UnixMilli(),
	}
	s.tasks.cancel(threadID)
	_, ok := s.update(func(st domain.AppState) (domain.AppState, bool) {
		if s.epoch != gen {
			return st, false
		}
		return st.WithFront(sess).WithActive(sess.ID), true
	})
	if !ok {
		s.log.Info("Signed out while opening thread, discarding session", "thread_id", threadID)
	}
	return sess
}

// DeleteSession removes a session. Thread-backed sessions are deleted on the
// backend first on a best-effort basis; local removal always happens.
// It reports whether the session existed locally.
func (s *Store) DeleteSession(ctx context.Context, id string) bool {
	s.tasks.cancel(id)

	if domain.IsThreadID(id) {
		err := s.api.DeleteThread(ctx, id)
		switch {
		case err == nil:
		case errdefs.IsNotFound(err):
			s.log.Info("Thread already absent on backend", "thread_id", id)
		default:
			s.log.Error("Failed to delete thread on backend", "thread_id", id, "error", err)
		}
	}

	_, removed := s.update(func(st domain.AppState) (domain.AppState, bool) {
		if st.Index(id) < 0 {
			return st, false
		}
		return st.Without(id), true
	})
	return removed
}

// RenameSession changes a session title locally. Blank titles are ignored.
func (s *Store) RenameSession(id, title string) bool {
	title = strings.TrimSpace(title)
	if title == "" {
		return false
	}
	_, ok := s.update(func(st domain.AppState) (domain.AppState, bool) {
		return st.WithSession(id, func(c domain.ChatSession) domain.ChatSession {
			c.Title = title
			c.Revision++
			return c
		})
	})
	return ok
}

// SelectSession makes id active immediately. For thread-backed sessions the
// authoritative title and messages are fetched in the background.
func (s *Store) SelectSession(id string) bool {
	_, ok := s.update(func(st domain.AppState) (domain.AppState, bool) {
		if st.Index(id) < 0 {
			return st, false
		}
		return st.WithActive(id), true
	})
	if ok && domain.IsThreadID(id) {
		s.scheduleRefresh(id, 0, true)
	}
	return ok
}

// AddMessage appends a message to a session immediately. An agent message on
// a thread-backed session schedules reconciliation with the server copy.
func (s *Store) AddMessage(id string, role domain.Role, content string) (domain.Message, error) {
	if !role.Valid() {
		return domain.Message{}, fmt.Errorf("%w: %w: %q", errdefs.ErrInvalidArgument, domain.ErrUnknownRole, role)
	}
	msg, err := s.appendMessage(id, role, content)
	if err != nil {
		return domain.Message{}, err
	}
	if role == domain.RoleAgent && domain.IsThreadID(id) {
		s.scheduleRefresh(id, s.opts.ReconcileDelay, false)
	}
	return msg, nil
}

// ReconcilePending reports whether a refresh is scheduled or in flight for id.
func (s *Store) ReconcilePending(id string) bool {
	return s.tasks.pending(id)
}
