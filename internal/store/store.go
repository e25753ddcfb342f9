// Package store provides durable client-side storage for the GrowWise client.
package store

import (
	"context"
	"errors"

	"github.com/growwise/growwise-client/internal/domain"
)

// Keys under which values are kept. Each key holds one value that is fully
// overwritten on every save.
const (
	StateKey       = "growwise_state"
	AccessTokenKey = "access_token"
	UserEmailKey   = "user_email"
)

// ErrCorruptState is returned when a stored snapshot cannot be decoded.
var ErrCorruptState = errors.New("stored state is corrupt")

// Repository defines the interface for persisting client state and credentials.
type Repository interface {
	// LoadState returns the stored snapshot, or nil when nothing is stored.
	LoadState(ctx context.Context) (*domain.AppState, error)

	// SaveState overwrites the stored snapshot.
	SaveState(ctx context.Context, st domain.AppState) error

	// ClearState removes the stored snapshot.
	ClearState(ctx context.Context) error

	// SaveCredentials stores the backend access token and the user's email.
	SaveCredentials(ctx context.Context, accessToken, email string) error

	// AccessToken returns the stored access token, or "" when signed out.
	AccessToken(ctx context.Context) (string, error)

	// UserEmail returns the stored email, or "".
	UserEmail(ctx context.Context) (string, error)

	// ClearCredentials invalidates any stored credentials.
	ClearCredentials(ctx context.Context) error

	// Ping verifies storage is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying storage.
	Close() error
}
