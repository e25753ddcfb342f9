package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/containerd/errdefs"
	"github.com/lithammer/shortuuid/v4"

	"github.com/growwise/growwise-client/internal/backend"
	"github.com/growwise/growwise-client/internal/domain"
)

// FallbackReply is appended as the agent's answer when the chat call fails.
const FallbackReply = "I'm having trouble thinking right now. Please try again later."

// SendResult describes a completed chat round-trip.
type SendResult struct {
	// SessionID is the id the conversation continues under. It differs from
	// the requested id when a local session was promoted to a thread.
	SessionID string         `json:"sessionId"`
	Reply     domain.Message `json:"reply"`
	Promoted  bool           `json:"promoted"`
}

// Send appends content as a user message, asks the backend for a reply and
// appends the reply as an agent message. A local session is re-keyed to the
// thread the backend creates for it.
//
// When the backend call fails FallbackReply is appended instead and the
// error is returned alongside the result.
func (s *Store) Send(ctx context.Context, id, content string) (SendResult, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return SendResult{}, fmt.Errorf("%w: message is empty", errdefs.ErrInvalidArgument)
	}
	threaded := domain.IsThreadID(id)
	if !threaded && !s.opts.PromoteLocal {
		if _, ok := s.Snapshot().Session(id); ok {
			return SendResult{}, fmt.Errorf("%w: %w: %s", errdefs.ErrFailedPrecondition, ErrLocalSession, id)
		}
	}

	if _, err := s.AddMessage(id, domain.RoleUser, content); err != nil {
		return SendResult{}, err
	}

	req := backend.ChatRequest{Message: content}
	if threaded {
		req.ThreadID = &id
	}
	resp, err := s.api.Chat(ctx, req)
	if err != nil {
		if isCancelled(err) {
			s.log.Info("Chat request cancelled", "session_id", id)
			return SendResult{SessionID: id}, err
		}
		s.log.Error("Chat request failed", "session_id", id, "error", err)
		// The fallback is local only; a refresh would drop it again.
		reply, addErr := s.appendMessage(id, domain.RoleAgent, FallbackReply)
		if addErr != nil {
			return SendResult{SessionID: id}, fmt.Errorf("chat: %w", err)
		}
		return SendResult{SessionID: id, Reply: reply}, fmt.Errorf("chat: %w", err)
	}

	res := SendResult{SessionID: id}
	if !threaded && resp.ThreadID != "" && domain.IsThreadID(resp.ThreadID) {
		if s.promote(id, resp.ThreadID, resp.Title) {
			res.SessionID = resp.ThreadID
			res.Promoted = true
			s.log.Info("Promoted local session to thread", "session_id", id, "thread_id", resp.ThreadID)
		}
	}

	reply, err := s.AddMessage(res.SessionID, domain.RoleAgent, resp.Response)
	if err != nil {
		return res, err
	}
	res.Reply = reply
	return res, nil
}

// appendMessage appends without scheduling reconciliation.
func (s *Store) appendMessage(id string, role domain.Role, content string) (domain.Message, error) {
	msg := domain.Message{
		ID:        shortuuid.New(),
		Role:      role,
		Content:   content,
		Timestamp: s.now().UnixMilli(),
	}
	_, ok := s.update(func(st domain.AppState) (domain.AppState, bool) {
		return st.WithSession(id, func(c domain.ChatSession) domain.ChatSession {
			return c.WithMessage(msg)
		})
	})
	if !ok {
		return domain.Message{}, fmt.Errorf("%w: %w: %s", errdefs.ErrNotFound, ErrSessionNotFound, id)
	}
	return msg, nil
}

// promote re-keys session oldID to threadID in place. The active id follows
// the session and any other session already holding threadID is dropped.
func (s *Store) promote(oldID, threadID, title string) bool {
	s.tasks.cancel(oldID)
	_, ok := s.update(func(st domain.AppState) (domain.AppState, bool) {
		if st.Index(oldID) < 0 {
			return st, false
		}
		out := st.Clone()
		sessions := make([]domain.ChatSession, 0, len(out.Sessions))
		for _, c := range out.Sessions {
			switch c.ID {
			case threadID:
				continue
			case oldID:
				c.ID = threadID
				if title = strings.TrimSpace(title); title != "" {
					c.Title = title
				}
				c.Revision++
			}
			sessions = append(sessions, c)
		}
		out.Sessions = sessions
		if st.IsActive(oldID) || st.IsActive(threadID) {
			out.ActiveSessionID = &threadID
		}
		return out, true
	})
	return ok
}
