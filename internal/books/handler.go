// internal/books/handler.go
package books

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"bookvault/internal/validate"
)

// Handler exposes the books service over HTTP.
type Handler struct {
	service Service
}

// NewHandler creates a new books handler.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// HandleList returns one page of the catalogue. The page number comes from
// the "page" query parameter and defaults to 1.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			page = parsed
		}
	}

	result, err := h.service.List(r.Context(), page)
	if err != nil {
		writeBookError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleGet returns a single book.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(w, r)
	if !ok {
		return
	}

	book, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeBookError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": book})
}

// HandleCreate persists a new book from the validated request body.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}

	book, err := h.service.Create(r.Context(), in)
	if err != nil {
		writeBookError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"data": book})
}

// HandleUpdate merges the provided fields onto an existing book.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(w, r)
	if !ok {
		return
	}

	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}

	book, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		writeBookError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": book})
}

// HandleDelete removes a book.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeBookError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// bookID parses the {id} URL parameter. An unparsable identifier cannot match
// any record, so it reports not found rather than bad request.
func bookID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "not found"})
		return uuid.Nil, false
	}
	return id, true
}

func writeBookError(w http.ResponseWriter, err error) {
	var violations validate.Violations
	switch {
	case errors.As(err, &violations):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"message": "the given data was invalid",
			"errors":  violations,
		})
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "not found"})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
