package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/containerd/errdefs"
	"github.com/go-chi/chi/v5"

	"github.com/growwise/growwise-client/internal/domain"
	"github.com/growwise/growwise-client/internal/session"
)

// SessionHandler exposes session store operations to the view layer.
type SessionHandler struct {
	*Handler
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(base *Handler) *SessionHandler {
	return &SessionHandler{Handler: base}
}

// RegisterRoutes registers session, auth and thread routes.
func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Get("/api/state", h.GetState)
		r.Get("/api/agents", h.ListAgents)

		r.Post("/api/auth/login", h.Login)
		r.Post("/api/auth/register", h.Register)
		r.Post("/api/auth/logout", h.Logout)

		r.Post("/api/sessions", h.CreateSession)
		r.Post("/api/sessions/from-thread", h.CreateFromThread)
		r.Patch("/api/sessions/{id}", h.RenameSession)
		r.Delete("/api/sessions/{id}", h.DeleteSession)
		r.Post("/api/sessions/{id}/select", h.SelectSession)
		r.Post("/api/sessions/{id}/messages", h.AddMessage)
		r.Post("/api/sessions/{id}/send", h.Send)

		r.Post("/api/threads/sync", h.SyncThreads)
	})
}

// GetState returns the current AppState snapshot.
func (h *SessionHandler) GetState(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, h.sessions.Snapshot())
}

// ListAgents returns the built-in agent catalog.
func (h *SessionHandler) ListAgents(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, domain.Agents)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login signs in against the backend.
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	user, err := h.sessions.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		slog.Warn("Login failed", "email", req.Email, "error", err)
		WriteError(w, err)
		return
	}
	JSON(w, http.StatusOK, user)
}

type registerRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	Name         string `json:"name"`
	ProfessionID *int   `json:"profession_id"`
	Profession   string `json:"profession"`
}

// Register creates an account and signs in.
func (h *SessionHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	user, err := h.sessions.Register(r.Context(), session.Registration{
		Email:        req.Email,
		Password:     req.Password,
		Name:         req.Name,
		ProfessionID: req.ProfessionID,
		Profession:   domain.Profession(req.Profession),
	})
	if err != nil {
		slog.Warn("Registration failed", "email", req.Email, "error", err)
		WriteError(w, err)
		return
	}
	JSON(w, http.StatusCreated, user)
}

// Logout clears the user, all sessions and stored credentials.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Logout(r.Context())
	JSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

type createSessionRequest struct {
	AgentID string `json:"agentId"`
}

func resolveAgent(id string) (string, error) {
	if id == "" {
		return domain.DefaultAgentID, nil
	}
	if _, ok := domain.LookupAgent(id); !ok {
		return "", fmt.Errorf("%w: unknown agent %q", errdefs.ErrInvalidArgument, id)
	}
	return id, nil
}

// CreateSession starts a local-only session.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	agentID, err := resolveAgent(req.AgentID)
	if err != nil {
		WriteError(w, err)
		return
	}
	JSON(w, http.StatusCreated, h.sessions.CreateLocalSession(agentID))
}

type fromThreadRequest struct {
	ThreadID string `json:"threadId"`
	Title    string `json:"title"`
	AgentID  string `json:"agentId"`
}

// CreateFromThread opens a session for an existing server thread.
func (h *SessionHandler) CreateFromThread(w http.ResponseWriter, r *http.Request) {
	var req fromThreadRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if !domain.IsThreadID(req.ThreadID) {
		Error(w, http.StatusBadRequest, "threadId must be a thread UUID")
		return
	}
	agentID, err := resolveAgent(req.AgentID)
	if err != nil {
		WriteError(w, err)
		return
	}
	JSON(w, http.StatusCreated, h.sessions.CreateSessionFromThread(r.Context(), req.ThreadID, req.Title, agentID))
}

type renameRequest struct {
	Title string `json:"title"`
}

// RenameSession changes a session title.
func (h *SessionHandler) RenameSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req renameRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		Error(w, http.StatusBadRequest, "title is required")
		return
	}
	if !h.sessions.RenameSession(id, req.Title) {
		Error(w, http.StatusNotFound, "session not found")
		return
	}
	sess, _ := h.sessions.Snapshot().Session(id)
	JSON(w, http.StatusOK, sess)
}

// DeleteSession removes a session, deleting its thread on the backend.
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.sessions.DeleteSession(r.Context(), id) {
		Error(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SelectSession marks a session active.
func (h *SessionHandler) SelectSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.sessions.SelectSession(id) {
		Error(w, http.StatusNotFound, "session not found")
		return
	}
	JSON(w, http.StatusOK, map[string]string{"activeSessionId": id})
}

type addMessageRequest struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AddMessage appends a message to a session.
func (h *SessionHandler) AddMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req addMessageRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	msg, err := h.sessions.AddMessage(id, role, req.Content)
	if err != nil {
		WriteError(w, err)
		return
	}
	JSON(w, http.StatusCreated, msg)
}

type sendRequest struct {
	Content string `json:"content"`
}

// Send runs a chat round-trip for a session.
func (h *SessionHandler) Send(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req sendRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	res, err := h.sessions.Send(r.Context(), id, req.Content)
	if err != nil {
		WriteError(w, err)
		return
	}
	JSON(w, http.StatusOK, res)
}

// SyncThreads loads the user's threads from the backend.
func (h *SessionHandler) SyncThreads(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.SyncThreads(r.Context()); err != nil {
		WriteError(w, err)
		return
	}
	JSON(w, http.StatusOK, h.sessions.Snapshot())
}
