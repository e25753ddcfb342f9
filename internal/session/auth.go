package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/containerd/errdefs"

	"github.com/growwise/growwise-client/internal/backend"
	"github.com/growwise/growwise-client/internal/domain"
)

// Registration holds the fields collected by the sign-up form.
type Registration struct {
	Email        string
	Password     string
	Name         string
	ProfessionID *int
	Profession   domain.Profession
}

// Login authenticates against the backend, stores the credentials and
// registers the resulting user.
func (s *Store) Login(ctx context.Context, email, password string) (domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return domain.User{}, fmt.Errorf("%w: email and password are required", errdefs.ErrInvalidArgument)
	}

	resp, err := s.api.Login(ctx, backend.LoginRequest{Email: email, Password: password})
	if err != nil {
		return domain.User{}, fmt.Errorf("login: %w", err)
	}
	return s.signIn(ctx, resp, email, "", domain.ProfessionOther)
}

// Register creates an account and signs in with it.
func (s *Store) Register(ctx context.Context, r Registration) (domain.User, error) {
	r.Email = strings.TrimSpace(r.Email)
	r.Name = strings.TrimSpace(r.Name)
	if r.Email == "" || r.Password == "" || r.Name == "" {
		return domain.User{}, fmt.Errorf("%w: name, email and password are required", errdefs.ErrInvalidArgument)
	}

	resp, err := s.api.Register(ctx, backend.RegisterRequest{
		Email:        r.Email,
		Password:     r.Password,
		Name:         r.Name,
		ProfessionID: r.ProfessionID,
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("register: %w", err)
	}
	prof := r.Profession
	if prof == "" {
		prof = domain.ProfessionOther
	}
	return s.signIn(ctx, resp, r.Email, r.Name, prof)
}

func (s *Store) signIn(ctx context.Context, resp *backend.AuthResponse, email, name string, prof domain.Profession) (domain.User, error) {
	if resp.Email != "" {
		email = resp.Email
	}
	if err := s.repo.SaveCredentials(ctx, resp.AccessToken, email); err != nil {
		return domain.User{}, fmt.Errorf("save credentials: %w", err)
	}

	u := domain.UserFromEmail(email)
	switch {
	case resp.Name != "":
		u.Name = resp.Name
	case name != "":
		u.Name = name
	}
	u.Profession = prof
	s.RegisterUser(*u)
	s.log.Info("Signed in", "email", email)
	return *u, nil
}

// RestoreSession derives the user from stored credentials when no user was
// loaded from the snapshot. An expired JWT is discarded instead. It reports
// whether a user is signed in.
func (s *Store) RestoreSession(ctx context.Context) bool {
	if s.Snapshot().User != nil {
		return true
	}
	token, err := s.repo.AccessToken(ctx)
	if err != nil {
		s.log.Error("Failed to read stored credentials", "error", err)
		return false
	}
	if token == "" {
		return false
	}
	if backend.TokenExpired(token, s.now()) {
		s.log.Info("Stored access token expired, signing out")
		if err := s.repo.ClearCredentials(ctx); err != nil {
			s.log.Error("Failed to clear credentials", "error", err)
		}
		return false
	}
	email, err := s.repo.UserEmail(ctx)
	if err != nil || email == "" {
		s.log.Warn("Stored token has no email, ignoring", "error", err)
		return false
	}
	s.RegisterUser(*domain.UserFromEmail(email))
	s.log.Info("Restored session from stored credentials", "email", email)
	return true
}

// Logout clears the user, every session and all persisted storage.
func (s *Store) Logout(ctx context.Context) {
	s.tasks.cancelAll()
	s.update(func(domain.AppState) (domain.AppState, bool) {
		s.epoch++
		return emptyState(), true
	})
	if err := s.repo.ClearState(ctx); err != nil {
		s.log.Error("Failed to clear stored state", "error", err)
	}
	if err := s.repo.ClearCredentials(ctx); err != nil {
		s.log.Error("Failed to clear credentials", "error", err)
	}
}
