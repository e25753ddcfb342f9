package backend

import (
	"context"
	"net/http"
)

// LoginRequest is the body of POST /api/login/.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /api/register/.
type RegisterRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	Name         string `json:"name"`
	ProfessionID *int   `json:"profession_id,omitempty"`
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	Message     string `json:"message"`
	Email       string `json:"email"`
	Name        string `json:"name,omitempty"`
	IsSuperuser bool   `json:"is_superuser"`
	AccessToken string `json:"access_token"`
}

// Login authenticates with email and password.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/login/", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/register/", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
