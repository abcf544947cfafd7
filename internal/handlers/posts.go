package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jeremyjsx/quickfacts/internal/posts"
)

const maxPostBody = 1 << 20

type PostsHandler struct {
	svc    *posts.Service
	logger *slog.Logger
	errs   errorWriter
}

func NewPostsHandler(svc *posts.Service, logger *slog.Logger, debug bool) *PostsHandler {
	return &PostsHandler{
		svc:    svc,
		logger: logger,
		errs:   errorWriter{logger: logger, debug: debug},
	}
}

type PostRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	ImageURL    *string `json:"imageUrl"`
	Category    *string `json:"category"`
	ScheduledAt *string `json:"scheduledAt"`
}

func (req PostRequest) input() posts.Input {
	return posts.Input{
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Category:    req.Category,
		ScheduledAt: req.ScheduledAt,
	}
}

func decodePostRequest(w http.ResponseWriter, r *http.Request) (PostRequest, bool) {
	var req PostRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPostBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return req, false
	}
	return req, true
}

func (h *PostsHandler) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodePostRequest(w, r)
		if !ok {
			return
		}

		post, err := h.svc.CreatePost(r.Context(), req.input())
		if err != nil {
			h.errs.write(w, r, "create post", err)
			return
		}

		writeJSON(w, http.StatusCreated, toPostResponse(post))
	}
}

func (h *PostsHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		params := posts.ListParams{Category: strings.TrimSpace(q.Get("category"))}

		if raw := q.Get("status"); raw != "" {
			status, ok := posts.ParseStatus(raw)
			if !ok {
				writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid status",
					map[string]string{"status": "must be scheduled or published"})
				return
			}
			params.Status = &status
		}

		list, err := h.svc.ListPosts(r.Context(), params)
		if err != nil {
			h.errs.write(w, r, "list posts", err)
			return
		}

		writeJSON(w, http.StatusOK, toPostResponses(list))
	}
}

func (h *PostsHandler) ListByCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category := strings.TrimSpace(r.PathValue("category"))
		if category == "" {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "category is required", nil)
			return
		}

		list, err := h.svc.ListByCategory(r.Context(), category)
		if err != nil {
			h.errs.write(w, r, "list posts by category", err)
			return
		}

		writeJSON(w, http.StatusOK, toPostResponses(list))
	}
}

func (h *PostsHandler) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}

		post, err := h.svc.GetPost(r.Context(), id)
		if err != nil {
			h.errs.write(w, r, "get post", err)
			return
		}

		writeJSON(w, http.StatusOK, toPostResponse(post))
	}
}

func (h *PostsHandler) Update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		req, ok := decodePostRequest(w, r)
		if !ok {
			return
		}

		post, err := h.svc.UpdatePost(r.Context(), id, req.input())
		if err != nil {
			h.errs.write(w, r, "update post", err)
			return
		}

		writeJSON(w, http.StatusOK, toPostResponse(post))
	}
}

// Delete answers 204 whether or not the post existed.
func (h *PostsHandler) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		if err := h.svc.DeletePost(r.Context(), id); err != nil {
			h.errs.write(w, r, "delete post", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *PostsHandler) Categories() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cats, err := h.svc.Categories(r.Context())
		if err != nil {
			h.errs.write(w, r, "list categories", err)
			return
		}
		writeJSON(w, http.StatusOK, cats)
	}
}

// parseID writes a 404 for ids that cannot exist in the store.
func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "post not found", nil)
		return uuid.Nil, false
	}
	return id, true
}
