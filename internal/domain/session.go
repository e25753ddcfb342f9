package domain

import "github.com/google/uuid"

// DefaultSessionTitle is the title given to newly created local sessions.
const DefaultSessionTitle = "New Conversation"

// ChatSession is a client-side conversation. It is either local-only or
// backed by a server thread, in which case ID is the thread UUID.
type ChatSession struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	AgentID  string    `json:"agentId"`
	Messages []Message `json:"messages"`
	// CreatedAt is milliseconds since the Unix epoch.
	CreatedAt int64 `json:"createdAt"`
	// Revision increases on every local mutation of the session.
	Revision uint64 `json:"revision"`
}

// IsThreadID reports whether id has the shape of a server thread UUID.
func IsThreadID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// ThreadBacked reports whether the session mirrors a server thread.
func (s ChatSession) ThreadBacked() bool {
	return IsThreadID(s.ID)
}

// WithMessage returns a copy of s with m appended.
func (s ChatSession) WithMessage(m Message) ChatSession {
	msgs := make([]Message, len(s.Messages), len(s.Messages)+1)
	copy(msgs, s.Messages)
	s.Messages = append(msgs, m)
	s.Revision++
	return s
}

// WithMessages returns a copy of s whose messages are replaced by msgs.
func (s ChatSession) WithMessages(msgs []Message) ChatSession {
	out := make([]Message, len(msgs))
	copy(out, msgs)
	s.Messages = out
	s.Revision++
	return s
}

// AppState is the complete client state. Values are treated as immutable:
// every With* method returns a new state and leaves the receiver untouched.
type AppState struct {
	User            *User         `json:"user"`
	Sessions        []ChatSession `json:"sessions"`
	ActiveSessionID *string       `json:"activeSessionId"`
}

// Clone returns a shallow copy of st with its own sessions slice.
func (st AppState) Clone() AppState {
	out := AppState{User: st.User, ActiveSessionID: st.ActiveSessionID}
	out.Sessions = make([]ChatSession, len(st.Sessions))
	copy(out.Sessions, st.Sessions)
	if st.User != nil {
		u := *st.User
		out.User = &u
	}
	return out
}

// Index returns the position of session id, or -1.
func (st AppState) Index(id string) int {
	for i := range st.Sessions {
		if st.Sessions[i].ID == id {
			return i
		}
	}
	return -1
}

// Session returns the session with the given id.
func (st AppState) Session(id string) (ChatSession, bool) {
	if i := st.Index(id); i >= 0 {
		return st.Sessions[i], true
	}
	return ChatSession{}, false
}

// Active returns the active session, if any.
func (st AppState) Active() (ChatSession, bool) {
	if st.ActiveSessionID == nil {
		return ChatSession{}, false
	}
	return st.Session(*st.ActiveSessionID)
}

// IsActive reports whether id is the active session.
func (st AppState) IsActive(id string) bool {
	return st.ActiveSessionID != nil && *st.ActiveSessionID == id
}

// WithActive returns a copy of st with id marked active. An empty id clears it.
func (st AppState) WithActive(id string) AppState {
	out := st.Clone()
	if id == "" {
		out.ActiveSessionID = nil
		return out
	}
	out.ActiveSessionID = &id
	return out
}

// WithFront returns a copy of st with s inserted first. A session with the
// same id is removed so ids stay unique.
func (st AppState) WithFront(s ChatSession) AppState {
	out := st.Clone()
	sessions := make([]ChatSession, 0, len(out.Sessions)+1)
	sessions = append(sessions, s)
	for _, existing := range out.Sessions {
		if existing.ID != s.ID {
			sessions = append(sessions, existing)
		}
	}
	out.Sessions = sessions
	return out
}

// Without returns a copy of st with session id removed. When id was active,
// the first remaining session becomes active, or none.
func (st AppState) Without(id string) AppState {
	out := st.Clone()
	sessions := make([]ChatSession, 0, len(out.Sessions))
	for _, s := range out.Sessions {
		if s.ID != id {
			sessions = append(sessions, s)
		}
	}
	out.Sessions = sessions
	if st.IsActive(id) {
		out.ActiveSessionID = nil
		if len(sessions) > 0 {
			next := sessions[0].ID
			out.ActiveSessionID = &next
		}
	}
	return out
}

// WithSession returns a copy of st where session id is replaced by fn(session).
// The second result is false when no such session exists.
func (st AppState) WithSession(id string, fn func(ChatSession) ChatSession) (AppState, bool) {
	i := st.Index(id)
	if i < 0 {
		return st, false
	}
	out := st.Clone()
	out.Sessions[i] = fn(out.Sessions[i])
	return out, true
}

// UserOnly returns a copy of st stripped of sessions.
func (st AppState) UserOnly() AppState {
	return AppState{User: st.Clone().User, Sessions: []ChatSession{}}
}

