// Package api exposes HTTP handlers for the activities service.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"example.com/extracurricular/internal/domain"
)

// StaticEntryPage is where GET / redirects the browser.
const StaticEntryPage = "/static/index.html"

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service *domain.Service
	logger  *slog.Logger
}

// NewHandler builds a Handler. A nil logger falls back to slog.Default().
func NewHandler(service *domain.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes wires endpoints to the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", root)
	r.Get("/healthz", healthz)
	r.Get("/activities", h.listActivities)
	r.Post("/activities/{activityName}/signup", h.signup)
	r.Delete("/activities/{activityName}/unregister", h.unregister)
}

func root(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, StaticEntryPage, http.StatusTemporaryRedirect)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	activities, err := h.service.ListActivities(r.Context())
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	resp := make(map[string]ActivityView, len(activities))
	for _, activity := range activities {
		resp[activity.Name] = toActivityView(activity)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	name := activityName(r)
	email, ok := participantEmail(w, r)
	if !ok {
		return
	}

	if err := h.service.Signup(r.Context(), name, email); err != nil {
		switch {
		case errors.Is(err, domain.ErrActivityNotFound):
			writeError(w, http.StatusNotFound, "Activity not found")
		case errors.Is(err, domain.ErrAlreadyRegistered):
			writeError(w, http.StatusBadRequest, "Already signed up for this activity")
		case errors.Is(err, domain.ErrWriteFailed):
			h.logger.ErrorContext(r.Context(), "signup write had no effect", "activity", name)
			writeError(w, http.StatusInternalServerError, "Failed to sign up for activity")
		default:
			h.internalError(w, r, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: fmt.Sprintf("Signed up %s for %s", email, name)})
}

func (h *Handler) unregister(w http.ResponseWriter, r *http.Request) {
	name := activityName(r)
	email, ok := participantEmail(w, r)
	if !ok {
		return
	}

	if err := h.service.Unregister(r.Context(), name, email); err != nil {
		switch {
		case errors.Is(err, domain.ErrActivityNotFound):
			writeError(w, http.StatusNotFound, "Activity not found")
		case errors.Is(err, domain.ErrNotRegistered):
			writeError(w, http.StatusBadRequest, "Participant not found in this activity")
		case errors.Is(err, domain.ErrWriteFailed):
			h.logger.ErrorContext(r.Context(), "unregister write had no effect", "activity", name)
			writeError(w, http.StatusInternalServerError, "Failed to unregister from activity")
		default:
			h.internalError(w, r, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: fmt.Sprintf("Removed %s from %s", email, name)})
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.ErrorContext(r.Context(), "request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

// activityName returns the decoded {activityName} path segment.
func activityName(r *http.Request) string {
	raw := chi.URLParam(r, "activityName")
	if r.URL.RawPath == "" {
		return raw
	}
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

// participantEmail reads the email query parameter, falling back to a JSON
// body of the form {"email": "..."}. The value is used exactly as sent; an
// empty string is a valid email. It writes a 422 and reports false only when
// neither the query nor the body carries the field.
func participantEmail(w http.ResponseWriter, r *http.Request) (string, bool) {
	query := r.URL.Query()
	if query.Has("email") {
		return query.Get("email"), true
	}
	if r.Body != nil && r.ContentLength != 0 {
		var req EmailRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "unable to parse body")
			return "", false
		}
		if req.Email != nil {
			return *req.Email, true
		}
	}
	writeError(w, http.StatusUnprocessableEntity, "email query parameter is required")
	return "", false
}

// EmailRequest is the optional JSON body for signup and unregister.
type EmailRequest struct {
	Email *string `json:"email"`
}

// MessageResponse confirms a roster change.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse carries a human readable failure reason.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// ActivityView is the wire shape of one activity, keyed by name in the list response.
type ActivityView struct {
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

func toActivityView(a domain.Activity) ActivityView {
	participants := a.Participants
	if participants == nil {
		participants = []string{}
	}
	return ActivityView{
		Description:     a.Description,
		Schedule:        a.Schedule,
		MaxParticipants: a.MaxParticipants,
		Participants:    participants,
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, ErrorResponse{Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
