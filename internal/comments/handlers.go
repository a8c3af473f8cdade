// internal/comments/handlers.go
package comments

import (
	"encoding/json"
	"net/http"
	"strconv"

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

// List handles GET /inspiration-comments/{inspirationId}
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor := identity.FromContext(r.Context())

	inspirationID, ok := pathID(w, r, "inspirationId")
	if !ok {
		return
	}

	page, limit := getPagination(r, 20)

	result, err := h.service.ListTop(r.Context(), actor, inspirationID, r.URL.Query().Get("sort"), page, limit)
	if err != nil {
		utils.ErrorResponse(w, apperrors.Message(err), apperrors.Status(err))
		return
	}

	utils.SuccessResponse(w, result, http.StatusOK)
}

// ListReplies handles GET /inspiration-comments/{commentId}/replies
func (h *Handler) ListReplies(w http.ResponseWriter, r *http.Request) {
	actor := identity.FromContext(r.Context())

	commentID, ok := pathID(w, r, "commentId")
	if !ok {
		return
	}

	page, limit := getPagination(r, 20)

	result, err := h.service.ListReplies(r.Context(), actor, commentID, page, limit)
	if err != nil {
		utils.ErrorResponse(w, apperrors.Message(err), apperrors.Status(err))
		return
	}

	utils.SuccessResponse(w, result, http.StatusOK)
}

// Create handles POST /inspiration-comments
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor := identity.FromContext(r.Context())

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "invalid request body", http.StatusBadRequest)
		return
	}

	comment, err := h.service.Create(r.Context(), actor, &req)
	if err != nil {
		utils.ErrorResponse(w, apperrors.Message(err), apperrors.Status(err))
		return
	}

	utils.SuccessResponse(w, comment, http.StatusCreated)
}

// Edit handles PUT /inspiration-comments/{id}
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	actor := identity.FromContext(r.Context())

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req EditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "invalid request body", http.StatusBadRequest)
		return
	}

	comment, err := h.service.Edit(r.Context(), actor, id, &req)
	if err != nil {
		utils.ErrorResponse(w, apperrors.Message(err), apperrors.Status(err))
		return
	}

	utils.SuccessResponse(w, comment, http.StatusOK)
}

// Delete handles DELETE /inspiration-comments/{id}
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

	utils.MessageResponse(w, "comment deleted", http.StatusOK)
}

// ToggleLike handles POST /inspiration-comments/{id}/like
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
