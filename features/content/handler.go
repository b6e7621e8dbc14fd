package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"klarity/features/space"
	"klarity/internal/middleware"
)

type Handler struct {
	service       *Service
	uploadDir     string
	maxUploadSize int64
}

func NewHandler(service *Service, uploadDir string, maxUploadSizeMB int64) *Handler {
	return &Handler{
		service:       service,
		uploadDir:     uploadDir,
		maxUploadSize: maxUploadSizeMB << 20,
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL     string   `json:"url"`
		SpaceID string   `json:"spaceId"`
		Tags    []string `json:"tags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}

	if req.URL == "" || req.SpaceID == "" {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "URL and spaceId are required", http.StatusBadRequest)
		return
	}

	c, err := h.service.Create(r.Context(), middleware.GetUserID(r.Context()), req.SpaceID, req.URL, req.Tags)
	if err != nil {
		h.writeSpaceError(r.Context(), w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	h.encode(w, map[string]interface{}{"data": c})
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "File too large", http.StatusBadRequest)
		return
	}

	spaceID := r.FormValue("spaceId")
	if spaceID == "" {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "spaceId is required", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "Unable to retrieve file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if filepath.Ext(header.Filename) != ".pdf" {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "Only PDF uploads are supported", http.StatusBadRequest)
		return
	}

	if err := os.MkdirAll(h.uploadDir, 0o750); err != nil {
		slog.Error("failed to create upload directory", "error", err, "path", h.uploadDir)
		h.writeError(r.Context(), w, "INTERNAL_ERROR", "Failed to store upload", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("%s_%s", uuid.New().String(), filepath.Base(header.Filename))
	path := filepath.Clean(filepath.Join(h.uploadDir, filename))

	dst, err := os.Create(path) // #nosec G304 -- path is UUID-based, not raw user input
	if err != nil {
		slog.Error("failed to create upload file", "error", err)
		h.writeError(r.Context(), w, "INTERNAL_ERROR", "Failed to store upload", http.StatusInternalServerError)
		return
	}

	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		h.writeError(r.Context(), w, "INTERNAL_ERROR", "Failed to write upload", http.StatusInternalServerError)
		return
	}
	if err := dst.Close(); err != nil {
		h.writeError(r.Context(), w, "INTERNAL_ERROR", "Failed to write upload", http.StatusInternalServerError)
		return
	}

	c, err := h.service.Upload(r.Context(), middleware.GetUserID(r.Context()), spaceID, header.Filename, path)
	if err != nil {
		if removeErr := os.Remove(path); removeErr != nil {
			slog.Warn("failed to clean up upload", "error", removeErr, "path", path)
		}
		h.writeSpaceError(r.Context(), w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	h.encode(w, map[string]interface{}{"data": c})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	contents, err := h.service.ListByUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.writeError(r.Context(), w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeList(w, contents)
}

// ListBySpace serves GET /spaces/{id}/content.
func (h *Handler) ListBySpace(w http.ResponseWriter, r *http.Request) {
	contents, err := h.service.ListBySpace(r.Context(), r.PathValue("id"), middleware.GetUserID(r.Context()))
	if err != nil {
		h.writeSpaceError(r.Context(), w, err)
		return
	}

	h.writeList(w, contents)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	err := h.service.Delete(r.Context(), id, middleware.GetUserID(r.Context()))
	switch {
	case errors.Is(err, ErrNotFound):
		h.writeError(r.Context(), w, "NOT_FOUND", "Content not found", http.StatusNotFound)
		return
	case errors.Is(err, ErrNotOwner):
		h.writeError(r.Context(), w, "FORBIDDEN", "Not authorized", http.StatusUnauthorized)
		return
	case err != nil:
		h.writeError(r.Context(), w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	h.encode(w, map[string]string{"id": id})
}

func (h *Handler) writeList(w http.ResponseWriter, contents []Content) {
	if contents == nil {
		contents = []Content{}
	}

	w.Header().Set("Content-Type", "application/json")
	h.encode(w, map[string]interface{}{
		"data": contents,
		"meta": map[string]int{"count": len(contents)},
	})
}

// writeSpaceError maps space-ownership failures for content routes: a space
// that is missing or owned by someone else reads as not found.
func (h *Handler) writeSpaceError(ctx context.Context, w http.ResponseWriter, err error) {
	if errors.Is(err, space.ErrNotFound) || errors.Is(err, space.ErrNotOwner) {
		h.writeError(ctx, w, "NOT_FOUND", "Space not found or user not authorized", http.StatusNotFound)
		return
	}
	slog.Error("content operation failed", "error", err)
	h.writeError(ctx, w, "INTERNAL_ERROR", "Internal Server Error", http.StatusInternalServerError)
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
