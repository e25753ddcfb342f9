package backend

import (
	"context"
	"net/http"
	"strconv"
)

// Certification is a certificate link the signed-in employee has recorded.
type Certification struct {
	ID            int    `json:"id"`
	EmployeeEmail string `json:"employee_email,omitempty"`
	Link          string `json:"link"`
	CreatedAt     string `json:"created_at,omitempty"`
	UpdatedAt     string `json:"updated_at,omitempty"`
}

type certificationBody struct {
	Link string `json:"link"`
}

func certificationPath(id int) string {
	return "/api/employees/certifications/" + strconv.Itoa(id) + "/"
}

// ListCertifications returns the signed-in employee's certifications,
// newest first.
func (c *Client) ListCertifications(ctx context.Context) ([]Certification, error) {
	var out []Certification
	if err := c.do(ctx, http.MethodGet, "/api/employees/certifications/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateCertification records a new certificate link.
func (c *Client) CreateCertification(ctx context.Context, link string) (*Certification, error) {
	var out Certification
	if err := c.do(ctx, http.MethodPost, "/api/employees/certifications/", certificationBody{Link: link}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCertification replaces the link of certification id.
func (c *Client) UpdateCertification(ctx context.Context, id int, link string) (*Certification, error) {
	var out Certification
	if err := c.do(ctx, http.MethodPut, certificationPath(id), certificationBody{Link: link}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteCertification removes certification id.
func (c *Client) DeleteCertification(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, certificationPath(id), nil, nil)
}
