package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/breakline/surfspots/internal/repository"
	"github.com/breakline/surfspots/internal/service"
)

// CommentHandler manages the comment endpoints.
type CommentHandler struct {
	comments *service.CommentService
	users    repository.UserRepository
	logger   *slog.Logger
}

// NewCommentHandler creates a CommentHandler.
func NewCommentHandler(comments *service.CommentService, users repository.UserRepository, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{
		comments: comments,
		users:    users,
		logger:   logger,
	}
}

// createCommentRequest is the POST /api/comments payload. A top-level
// comment carries spotId and rating; a reply carries parentId (its spot is
// inherited from the parent and any rating is discarded).
type createCommentRequest struct {
	SpotID   string `json:"spotId"`
	ParentID string `json:"parentId"`
	Text     string `json:"text"`
	Rating   *int   `json:"rating"`
}

// updateCommentRequest is the PUT /api/comments/{id} payload. Only the text
// can change after creation.
type updateCommentRequest struct {
	Text string `json:"text"`
}

// HandleList returns every comment with its author populated.
//
// HTTP: GET /api/comments (public)
func (h *CommentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	comments, err := h.comments.ListAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

// HandleCreate creates a comment or reply authored by the signed-in user.
//
// HTTP: POST /api/comments (session required)
func (h *CommentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r, h.users)
	if err != nil {
		writeError(w, err)
		return
	}

	var req createCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid comment JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body"})
		return
	}

	comment, err := h.comments.Create(r.Context(), actor, req.SpotID, req.ParentID, req.Text, req.Rating)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}

// HandleGet returns a single comment.
//
// HTTP: GET /api/comments/{id} (session required)
func (h *CommentHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	comment, err := h.comments.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

// HandleUpdate changes a comment's text. Author or admin only.
//
// HTTP: PUT /api/comments/{id} (session required)
func (h *CommentHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r, h.users)
	if err != nil {
		writeError(w, err)
		return
	}

	var req updateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid comment JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body"})
		return
	}

	comment, err := h.comments.Update(r.Context(), actor, r.PathValue("id"), req.Text)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, comment)
}

// HandleDelete removes a comment (and, for a top-level comment, its
// replies). Author or admin only.
//
// HTTP: DELETE /api/comments/{id} (session required)
func (h *CommentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r, h.users)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.comments.Delete(r.Context(), actor, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "comment deleted successfully"})
}
