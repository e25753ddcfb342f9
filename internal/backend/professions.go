package backend

import (
	"context"
	"net/http"
)

// Profession is an entry of the backend's profession catalog.
type Profession struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// ListProfessions returns the profession catalog. It needs no credentials.
func (c *Client) ListProfessions(ctx context.Context) ([]Profession, error) {
	var out []Profession
	if err := c.do(ctx, http.MethodGet, "/api/employees/professions/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
