// internal/inspirations/handlers.go
package inspirations

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/oluseyi-dev/inspira-backend/internal/common/apperrors"
	"github.com/oluseyi-dev/inspira-backend/internal/common/utils"
	"github.com/oluseyi-dev/inspira-backend/internal/identity"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /inspirations
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor := identity.FromContext(r.Context())
	page, limit := getPagination(r, 20)

	var userID int64
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			utils.ErrorResponse(w, "invalid user_id", http.StatusBadRequest)
			return
		}
		userID = parsed
	}

	feed, err := h.service.List(r.Context(), actor, userID, r.URL.Query().Get("tag"), page, limit)
	if err != nil {
		utils.ErrorResponse(w, apperrors.Message(err), apperrors.Status(err))
		return
	}

	utils.SuccessResponse(w, feed, http.StatusOK)
}

// Create handles POST /inspirations, accepting JSON or multipart with
// up to nine image files
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor := identity.FromContext(r.Context())

	var req CreateRequest
	var uploaded []string

	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.ErrorResponse(w, "invalid request body", http.StatusBadRequest)
			return
		}
	} else {
		if err := r.ParseMultipartForm(64 << 20); err != nil && err != http.ErrNotMultipart {
			utils.ErrorResponse(w, "failed to parse form", http.StatusBadRequest)
			return
		}

		req.Content = r.FormValue("content")
		req.Location = r.FormValue("location")
		if raw := r.FormValue("is_public"); raw != "" {
			isPublic := raw == "true" || raw == "1"
			req.IsPublic = &isPublic
		}
		if raw := r.FormValue("tags"); raw != "" {
			// Malformed tag payloads degrade to no tags, same as reads
			var tags []string
			if err := json.Unmarshal([]byte(raw), &tags); err == nil {
				req.Tags = tags
			}
		}

		if r.MultipartForm != nil && r.MultipartForm.File != nil {
			files := r.MultipartForm.File["images"]
			if len(files) > h.service.maxImages {
				utils.ErrorResponse(w,
					fmt.Sprintf("at most %d images allowed per post", h.service.maxImages),
					http.StatusBadRequest)
				return
			}
			for _, fileHeader := range files {
				file, err := fileHeader.Open()
				if err != nil {
					h.discardUploads(uploaded)
					utils.ErrorResponse(w, "failed to read uploaded file", http.StatusBadRequest)
					return
				}

				path, err := h.service.uploads.UploadFile(file, fileHeader)
				file.Close()
				if err != nil {
					h.discardUploads(uploaded)
					utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
					return
				}
				uploaded = append(uploaded, path)
			}
			req.Images = append(req.Images, uploaded...)
		}
	}

	post, err := h.service.Create(r.Context(), actor, &req)
	if err != nil {
		// Don't leave files behind for a post that was never created
		h.discardUploads(uploaded)
		utils.ErrorResponse(w, apperrors.Message(err), apperrors.Status(err))
		return
	}

	utils.SuccessResponse(w, post, http.StatusCreated)
}

// Get handles GET /inspirations/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	actor := identity.FromContext(r.Context())

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	post, err := h.service.Get(r.Context(), actor, id)
	if err != nil {
		utils.ErrorResponse(w, apperrors.Message(err), apperrors.Status(err))
		return
	}

	utils.SuccessResponse(w, post, http.StatusOK)
}

// ToggleLike handles POST /inspirations/{id}/like
func (h *Handler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	actor := identity.FromContext(r.Context())

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	result, err := h.service.ToggleLike(r.Context(), actor, id)
	if err != nil {
		utils.ErrorResponse(w, apperrors.Message(err), apperrors.Status(err))
		return
	}

	utils.SuccessResponse(w, result, http.StatusOK)
}

// Reshare handles POST /inspirations/{id}/share
func (h *Handler) Reshare(w http.ResponseWriter, r *http.Request) {
	actor := identity.FromContext(r.Context())

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	// The quote body is optional; an empty body reshares without one
	var req ShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.ErrorResponse(w, "invalid request body", http.StatusBadRequest)
		return
	}

	post, err := h.service.Reshare(r.Context(), actor, id, &req)
	if err != nil {
		utils.ErrorResponse(w, apperrors.Message(err), apperrors.Status(err))
		return
	}

	utils.SuccessResponse(w, post, http.StatusCreated)
}

// ListShares handles GET /inspirations/{id}/shares
func (h *Handler) ListShares(w http.ResponseWriter, r *http.Request) {
	actor := identity.FromContext(r.Context())

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	page, limit := getPagination(r, 20)

	shares, err := h.service.ListShares(r.Context(), actor, id, page, limit)
	if err != nil {
		utils.ErrorResponse(w, apperrors.Message(err), apperrors.Status(err))
		return
	}

	utils.SuccessResponse(w, shares, http.StatusOK)
}

// Delete handles DELETE /inspirations/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actor := identity.FromContext(r.Context())

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), actor, id); err != nil {
		utils.ErrorResponse(w, apperrors.Message(err), apperrors.Status(err))
		return
	}

	utils.MessageResponse(w, "inspiration deleted", http.StatusOK)
}

func (h *Handler) discardUploads(paths []string) {
	for _, p := range paths {
		if err := h.service.uploads.DeleteFile(p); err != nil {
			log.Printf("failed to remove orphaned upload %s: %v", p, err)
		}
	}
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		utils.ErrorResponse(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func getPagination(r *http.Request, defaultLimit int) (int, int) {
	page := 1
	limit := defaultLimit

	if p := r.URL.Query().Get("page"); p != "" {
		if val, err := strconv.Atoi(p); err == nil && val > 0 {
			page = val
		}
	}

	if l := r.URL.Query().Get("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil && val > 0 && val <= 100 {
			limit = val
		}
	}

	return page, limit
}
