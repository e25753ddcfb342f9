package domain

import (
	"errors"
	"testing"
	"time"
)

func TestParseBackendRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
	}{
		{"human", RoleUser},
		{"user", RoleUser},
		{"ai", RoleAgent},
		{"assistant", RoleAgent},
		{" AI ", RoleAgent},
	}
	for _, tt := range tests {
		got, err := ParseBackendRole(tt.in)
		if err != nil {
			t.Fatalf("ParseBackendRole(%q) returned error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseBackendRole(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if _, err := ParseBackendRole("tool"); !errors.Is(err, ErrUnknownRole) {
		t.Errorf("expected ErrUnknownRole for tool, got %v", err)
	}
}

func TestIsThreadID(t *testing.T) {
	if !IsThreadID("6f1c1c52-58d4-4f43-9b8f-3f0f6c1d2e8a") {
		t.Error("expected canonical UUID to be a thread id")
	}
	for _, id := range []string{"", "t1", "local-9xkQ2", "{6f1c1c52-58d4-4f43-9b8f-3f0f6c1d2e8a}"} {
		if IsThreadID(id) {
			t.Errorf("expected %q not to be a thread id", id)
		}
	}
}

func TestAppStateWithoutActive(t *testing.T) {
	st := AppState{}.
		WithFront(ChatSession{ID: "a"}).
		WithFront(ChatSession{ID: "b"}).
		WithActive("b")

	st = st.Without("b")
	if len(st.Sessions) != 1 || st.ActiveSessionID == nil || *st.ActiveSessionID != "a" {
		t.Fatalf("expected a to become active, got %+v", st)
	}

	st = st.Without("a")
	if len(st.Sessions) != 0 || st.ActiveSessionID != nil {
		t.Fatalf("expected empty state with no active session, got %+v", st)
	}
}

func TestAppStateWithFrontDedups(t *testing.T) {
	st := AppState{}.
		WithFront(ChatSession{ID: "a", Title: "old"}).
		WithFront(ChatSession{ID: "b"}).
		WithFront(ChatSession{ID: "a", Title: "new"})

	if len(st.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(st.Sessions))
	}
	if st.Sessions[0].ID != "a" || st.Sessions[0].Title != "new" {
		t.Fatalf("expected refreshed a first, got %+v", st.Sessions[0])
	}
}

func TestWithMessageDoesNotAlias(t *testing.T) {
	base := ChatSession{ID: "s", Messages: make([]Message, 0, 4)}
	a := base.WithMessage(Message{ID: "1"})
	b := base.WithMessage(Message{ID: "2"})

	if a.Messages[0].ID != "1" || b.Messages[0].ID != "2" {
		t.Fatalf("appends leaked between copies: %v %v", a.Messages, b.Messages)
	}
	if a.Revision != 1 || len(base.Messages) != 0 {
		t.Fatalf("unexpected revision or base mutation: %d %d", a.Revision, len(base.Messages))
	}
}

func TestSyntheticTimestamps(t *testing.T) {
	now := time.UnixMilli(10_000)
	got := SyntheticTimestamps(now, 3)
	want := []int64{8_000, 9_000, 10_000}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("SyntheticTimestamps = %v, want %v", got, want)
		}
	}
}

func TestUserFromEmail(t *testing.T) {
	u := UserFromEmail("ada@example.com")
	if u.Name != "ada" || !u.IsRegistered || u.Profession != ProfessionOther {
		t.Fatalf("unexpected user: %+v", u)
	}
}
