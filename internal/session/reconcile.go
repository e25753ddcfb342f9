package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/growwise/growwise-client/internal/backend"
	"github.com/growwise/growwise-client/internal/domain"
)

// reconciler runs at most one task per session id. Scheduling a task for an
// id cancels the one already pending or in flight for it.
type reconciler struct {
	mu     sync.Mutex
	tasks  map[string]*task
	seq    uint64
	closed bool
	wg     sync.WaitGroup
}

type task struct {
	seq    uint64
	cancel context.CancelFunc
}

func newReconciler() *reconciler {
	return &reconciler{tasks: make(map[string]*task)}
}

// schedule runs fn after delay unless superseded or cancelled first.
func (r *reconciler) schedule(parent context.Context, id string, delay time.Duration, fn func(ctx context.Context)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	if prev, ok := r.tasks[id]; ok {
		prev.cancel()
	}
	r.seq++
	ctx, cancel := context.WithCancel(parent)
	t := &task{seq: r.seq, cancel: cancel}
	r.tasks[id] = t

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer r.finish(id, t)

		if delay > 0 {
			timer := time.NewTimer(delay)
			defer timer.Stop()
			select {
			case <-timer.C:
			case <-ctx.Done():
				return
			}
		}
		if ctx.Err() != nil {
			return
		}
		fn(ctx)
	}()
}

func (r *reconciler) finish(id string, t *task) {
	t.cancel()
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.tasks[id]; ok && cur.seq == t.seq {
		delete(r.tasks, id)
	}
}

// cancel stops the task for id, if any.
func (r *reconciler) cancel(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tasks[id]; ok {
		t.cancel()
		delete(r.tasks, id)
	}
}

// cancelAll stops every task without waiting.
func (r *reconciler) cancelAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, t := range r.tasks {
		t.cancel()
		delete(r.tasks, id)
	}
}

// retain cancels the tasks whose id keep rejects.
func (r *reconciler) retain(keep func(id string) bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, t := range r.tasks {
		if !keep(id) {
			t.cancel()
			delete(r.tasks, id)
		}
	}
}

// pending reports whether a task is scheduled or running for id.
func (r *reconciler) pending(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.tasks[id]
	return ok
}

func (r *reconciler) close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.cancelAll()
	r.wg.Wait()
}

// scheduleRefresh replaces the cached copy of thread id with the server's
// after delay. withTitle also overwrites the session title.
func (s *Store) scheduleRefresh(id string, delay time.Duration, withTitle bool) {
	s.tasks.schedule(s.ctx, id, delay, func(ctx context.Context) {
		s.refresh(ctx, id, withTitle)
	})
}

// refresh fetches thread id and installs its messages, unless the session
// changed locally while the fetch was in flight.
func (s *Store) refresh(ctx context.Context, id string, withTitle bool) {
	s.mu.Lock()
	sess, ok := s.state.Session(id)
	s.mu.Unlock()
	if !ok {
		return
	}
	rev := sess.Revision

	detail, err := s.api.GetThread(ctx, id)
	if ctx.Err() != nil {
		s.log.Debug("Thread refresh superseded", "thread_id", id)
		return
	}
	if err != nil {
		s.log.Warn("Failed to refresh thread, keeping cached messages", "thread_id", id, "error", err)
		return
	}
	msgs := s.convertMessages(id, detail.Messages)

	s.update(func(st domain.AppState) (domain.AppState, bool) {
		cur, ok := st.Session(id)
		if !ok {
			return st, false
		}
		if cur.Revision != rev {
			s.log.Debug("Discarding stale thread refresh", "thread_id", id, "fetched_revision", rev, "current_revision", cur.Revision)
			return st, false
		}
		return st.WithSession(id, func(c domain.ChatSession) domain.ChatSession {
			c = c.WithMessages(msgs)
			if withTitle && detail.Thread.Title != "" {
				c.Title = detail.Thread.Title
			}
			return c
		})
	})
}

// convertMessages maps backend messages to domain messages. Timestamps are
// synthetic; messages with an unknown role are dropped.
func (s *Store) convertMessages(threadID string, in []backend.ThreadMessage) []domain.Message {
	type decoded struct {
		role    domain.Role
		content string
	}
	valid := make([]decoded, 0, len(in))
	for i, m := range in {
		role, err := domain.ParseBackendRole(m.Role)
		if err != nil {
			s.log.Warn("Dropping thread message", "thread_id", threadID, "index", i, "error", err)
			continue
		}
		valid = append(valid, decoded{role: role, content: m.Content})
	}

	stamps := domain.SyntheticTimestamps(s.now(), len(valid))
	out := make([]domain.Message, len(valid))
	for i, m := range valid {
		out[i] = domain.Message{
			ID:        fmt.Sprintf("%s-%d", threadID, i),
			Role:      m.role,
			Content:   m.content,
			Timestamp: stamps[i],
			Synthetic: true,
		}
	}
	return out
}

func isCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
