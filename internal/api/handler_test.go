package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/containerd/errdefs"
)

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]string{"foo": "bar"}

	JSON(w, http.StatusOK, data)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected JSON content type, got %q", ct)
	}

	var got map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if got["foo"] != "bar" {
		t.Errorf("Expected foo=bar, got %v", got["foo"])
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("x: %w", errdefs.ErrInvalidArgument), http.StatusBadRequest},
		{fmt.Errorf("x: %w", errdefs.ErrUnauthenticated), http.StatusUnauthorized},
		{fmt.Errorf("x: %w", errdefs.ErrPermissionDenied), http.StatusForbidden},
		{fmt.Errorf("x: %w", errdefs.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("x: %w", errdefs.ErrFailedPrecondition), http.StatusConflict},
		{fmt.Errorf("x: %w", errdefs.ErrResourceExhausted), http.StatusTooManyRequests},
		{fmt.Errorf("x: %w", errdefs.ErrUnavailable), http.StatusBadGateway},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestDecodeRejectsMalformedBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{nope"))
	var v map[string]string
	if err := decode(req, &v); !errdefs.IsInvalidArgument(err) {
		t.Fatalf("expected invalid argument, got %v", err)
	}

	empty := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	if err := decode(empty, &v); err != nil {
		t.Fatalf("empty body should be accepted, got %v", err)
	}
}
