// Package session implements the client-side session store: the single
// source of truth for the signed-in user and the conversation list, kept in
// sync with backend threads and persisted after every change.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/growwise/growwise-client/internal/backend"
	"github.com/growwise/growwise-client/internal/config"
	"github.com/growwise/growwise-client/internal/domain"
	"github.com/growwise/growwise-client/internal/store"
)

var (
	// ErrSessionNotFound is returned for operations on an unknown session id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrLocalSession is returned by Send when a local-only session cannot
	// be promoted to a server thread.
	ErrLocalSession = errors.New("session is local-only")
)

// Backend is the subset of the backend API the store depends on.
type Backend interface {
	Login(ctx context.Context, req backend.LoginRequest) (*backend.AuthResponse, error)
	Register(ctx context.Context, req backend.RegisterRequest) (*backend.AuthResponse, error)
	ListThreads(ctx context.Context) ([]backend.Thread, error)
	GetThread(ctx context.Context, id string) (*backend.ThreadDetail, error)
	DeleteThread(ctx context.Context, id string) error
	Chat(ctx context.Context, req backend.ChatRequest) (*backend.ChatResponse, error)
}

var _ Backend = (*backend.Client)(nil)

// Options configures a Store.
type Options struct {
	PersistMode    config.PersistMode
	ThreadSync     config.ThreadSyncMode
	ReconcileDelay time.Duration
	PromoteLocal   bool
	DefaultAgentID string
	Logger         *slog.Logger
	Now            func() time.Time
}

// OptionsFromConfig builds store options from application configuration.
func OptionsFromConfig(cfg config.SessionConfig, logger *slog.Logger) Options {
	return Options{
		PersistMode:    cfg.PersistMode,
		ThreadSync:     cfg.ThreadSync,
		ReconcileDelay: cfg.ReconcileDelay,
		PromoteLocal:   cfg.PromoteLocal,
		DefaultAgentID: cfg.DefaultAgentID,
		Logger:         logger,
	}
}

func (o *Options) setDefaults() {
	if o.PersistMode == "" {
		o.PersistMode = config.PersistFull
	}
	if o.ThreadSync == "" {
		o.ThreadSync = config.ThreadSyncMerge
	}
	if o.DefaultAgentID == "" {
		o.DefaultAgentID = domain.DefaultAgentID
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Store owns the AppState. Mutations are serialized and each one installs a
// new immutable snapshot, persists it and notifies subscribers in order.
type Store struct {
	mu    sync.Mutex
	state domain.AppState
	// epoch counts logouts. Work started before a logout must not write
	// into the state that follows it.
	epoch uint64

	notifyMu sync.Mutex
	subsMu   sync.RWMutex
	subs     map[int]func(domain.AppState)
	nextSub  int

	repo  store.Repository
	api   Backend
	opts  Options
	log   *slog.Logger
	tasks *reconciler

	// ctx bounds background work; cancelled by Close.
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a store and loads its initial state from repo. A missing or
// unreadable snapshot yields an empty state.
func New(ctx context.Context, repo store.Repository, api Backend, opts Options) *Store {
	opts.setDefaults()
	bg, cancel := context.WithCancel(context.Background())
	s := &Store{
		state:  emptyState(),
		subs:   make(map[int]func(domain.AppState)),
		repo:   repo,
		api:    api,
		opts:   opts,
		log:    opts.Logger,
		tasks:  newReconciler(),
		ctx:    bg,
		cancel: cancel,
	}
	s.load(ctx)
	return s
}

func emptyState() domain.AppState {
	return domain.AppState{Sessions: []domain.ChatSession{}}
}

func (s *Store) load(ctx context.Context) {
	saved, err := s.repo.LoadState(ctx)
	if err != nil {
		s.log.Error("Failed to load stored state, starting empty", "error", err)
		return
	}
	if saved == nil {
		return
	}
	if s.opts.PersistMode == config.PersistUser {
		s.state = saved.UserOnly()
		return
	}
	st := saved.Clone()
	if st.ActiveSessionID != nil && st.Index(*st.ActiveSessionID) < 0 {
		st.ActiveSessionID = nil
	}
	s.state = st
}

func (s *Store) persist(st domain.AppState) {
	if s.opts.PersistMode == config.PersistUser {
		st = st.UserOnly()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.repo.SaveState(ctx, st); err != nil {
		s.log.Error("Failed to persist state", "error", err)
	}
}

// update applies fn to the current state. When fn reports a change, the
// new state is installed, persisted and published.
func (s *Store) update(fn func(domain.AppState) (domain.AppState, bool)) (domain.AppState, bool) {
	s.mu.Lock()
	next, changed := fn(s.state)
	if !changed {
		cur := s.state
		s.mu.Unlock()
		return cur, false
	}
	s.state = next
	s.persist(next)
	// Take notifyMu before releasing mu so subscribers see commit order.
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()
	s.publish(next)
	return next, true
}

func (s *Store) publish(st domain.AppState) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, fn := range s.subs {
		fn(st)
	}
}

// Subscribe registers fn to receive every new snapshot, in commit order.
// fn runs synchronously and must neither block nor call mutating Store
// methods. Snapshots must not be mutated. The returned function removes the
// subscription.
func (s *Store) Subscribe(fn func(domain.AppState)) func() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		delete(s.subs, id)
	}
}

// Snapshot returns the current state.
func (s *Store) Snapshot() domain.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Close cancels pending reconciliations and background fetches and waits
// for them to finish.
func (s *Store) Close() {
	s.cancel()
	s.tasks.close()
}

// generation returns the current logout epoch.
func (s *Store) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

func (s *Store) now() time.Time {
	return s.opts.Now()
}
