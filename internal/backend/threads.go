package backend

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// Thread is a server-side conversation record.
type Thread struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// ThreadMessage is one message of a thread as the backend reports it.
// Role uses the backend vocabulary (human, ai, assistant, user).
type ThreadMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ThreadDetail is a thread together with its message history.
type ThreadDetail struct {
	Thread   Thread          `json:"thread"`
	Messages []ThreadMessage `json:"messages"`
}

// ChatRequest is the body of POST /api/chatbot/chat/. A nil ThreadID asks
// the backend to start a new thread.
type ChatRequest struct {
	Message  string  `json:"message"`
	ThreadID *string `json:"thread_id,omitempty"`
}

// ChatResponse carries the AI reply and the thread it was appended to.
type ChatResponse struct {
	Response string `json:"response"`
	ThreadID string `json:"thread_id"`
	Title    string `json:"title"`
}

func threadPath(id string) string {
	return "/api/chatbot/threads/" + url.PathEscape(id) + "/"
}

// ListThreads returns the signed-in user's threads.
func (c *Client) ListThreads(ctx context.Context) ([]Thread, error) {
	var out []Thread
	if err := c.do(ctx, http.MethodGet, "/api/chatbot/threads/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateThread creates an empty thread.
func (c *Client) CreateThread(ctx context.Context, title string) (*Thread, error) {
	var out Thread
	body := map[string]string{"title": title}
	if err := c.do(ctx, http.MethodPost, "/api/chatbot/threads/", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteThread deletes a thread.
func (c *Client) DeleteThread(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, threadPath(id), nil, nil)
}

// GetThread returns a thread with its messages.
func (c *Client) GetThread(ctx context.Context, id string) (*ThreadDetail, error) {
	var out ThreadDetail
	if err := c.do(ctx, http.MethodGet, threadPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Chat sends a user message and returns the AI reply.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	var out ChatResponse
	if err := c.do(ctx, http.MethodPost, "/api/chatbot/chat/", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
