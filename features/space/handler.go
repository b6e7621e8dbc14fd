package space

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"klarity/internal/middleware"
	"klarity/internal/retrieval"
	"klarity/internal/vector"
)

// Responder answers chat and search queries over a space's indexed chunks.
type Responder interface {
	Answer(ctx context.Context, spaceID string, topic retrieval.SpaceTopic, query string) (string, error)
	Search(ctx context.Context, spaceID, query string) ([]vector.Match, error)
}

type Handler struct {
	service   *Service
	responder Responder
}

func NewHandler(service *Service, responder Responder) *Handler {
	return &Handler{service: service, responder: responder}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}

	if req.Name == "" {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "Name is required", http.StatusBadRequest)
		return
	}

	sp := &Space{
		UserID:      middleware.GetUserID(r.Context()),
		Name:        req.Name,
		Description: req.Description,
	}
	if err := h.service.Create(r.Context(), sp); err != nil {
		slog.Error("failed to create space", "error", err)
		h.writeError(r.Context(), w, "INTERNAL_ERROR", "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	h.encode(w, map[string]interface{}{"data": sp})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	spaces, err := h.service.List(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.writeError(r.Context(), w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}

	if spaces == nil {
		spaces = []Space{}
	}

	w.Header().Set("Content-Type", "application/json")
	h.encode(w, map[string]interface{}{
		"data": spaces,
		"meta": map[string]int{"count": len(spaces)},
	})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}

	sp, err := h.service.Update(r.Context(), r.PathValue("id"), middleware.GetUserID(r.Context()), req.Name, req.Description)
	if err != nil {
		h.writeOwnershipError(r.Context(), w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	h.encode(w, map[string]interface{}{"data": sp})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.service.Delete(r.Context(), id, middleware.GetUserID(r.Context())); err != nil {
		h.writeOwnershipError(r.Context(), w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	h.encode(w, map[string]interface{}{"id": id})
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}

	if req.Query == "" {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "Query is required", http.StatusBadRequest)
		return
	}

	sp, err := h.service.GetOwned(r.Context(), r.PathValue("id"), middleware.GetUserID(r.Context()))
	if err != nil {
		// Missing and cross-user spaces look the same here.
		h.writeError(r.Context(), w, "NOT_FOUND", "Space not found or user not authorized", http.StatusNotFound)
		return
	}

	answer, err := h.responder.Answer(r.Context(), sp.ID, retrieval.SpaceTopic{Name: sp.Name, Description: sp.Description}, req.Query)
	if err != nil {
		slog.Error("chat failed", "error", err, "space_id", sp.ID)
		h.writeError(r.Context(), w, "INTERNAL_ERROR", "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	h.encode(w, map[string]string{"answer": answer})
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}

	if req.Query == "" {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "Query is required", http.StatusBadRequest)
		return
	}

	sp, err := h.service.GetOwned(r.Context(), r.PathValue("id"), middleware.GetUserID(r.Context()))
	if err != nil {
		h.writeError(r.Context(), w, "NOT_FOUND", "Space not found or user not authorized", http.StatusNotFound)
		return
	}

	matches, err := h.responder.Search(r.Context(), sp.ID, req.Query)
	if err != nil {
		slog.Error("search failed", "error", err, "space_id", sp.ID)
		h.writeError(r.Context(), w, "INTERNAL_ERROR", "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if matches == nil {
		matches = []vector.Match{}
	}

	w.Header().Set("Content-Type", "application/json")
	h.encode(w, map[string]interface{}{
		"data": matches,
		"meta": map[string]int{"count": len(matches)},
	})
}

func (h *Handler) writeOwnershipError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		h.writeError(ctx, w, "NOT_FOUND", "Space not found", http.StatusNotFound)
	case errors.Is(err, ErrNotOwner):
		h.writeError(ctx, w, "FORBIDDEN", "User not authorized", http.StatusUnauthorized)
	default:
		h.writeError(ctx, w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) encode(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
		"correlationId": middleware.GetCorrelationID(ctx),
	}

	h.encode(w, resp)
}
