package handler

import (
	"net/http"

	"github.com/plumekit/plume/internal/api"
	"github.com/plumekit/plume/internal/ctxkeys"
	"github.com/plumekit/plume/internal/service"
)

type CommentHandler struct {
	commentService *service.CommentService
}

func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

type commentRequest struct {
	Content  string  `json:"content"`
	ParentID *string `json:"parent_id"`
}

func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	err := api.Decode(r, &req)
	if err != nil {
		api.Error(w, err)
		return
	}

	user := ctxkeys.User(r.Context())
	comment, err := h.commentService.Create(r.PathValue("id"), user.ID, req.ParentID, req.Content)
	if err != nil {
		api.Error(w, err)
		return
	}

	api.JSON(w, http.StatusCreated, comment)
}

func (h *CommentHandler) ListByPost(w http.ResponseWriter, r *http.Request) {
	comments, err := h.commentService.ByPost(r.PathValue("id"))
	if err != nil {
		api.Error(w, err)
		return
	}

	api.JSON(w, http.StatusOK, comments)
}

func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	err := h.commentService.Delete(user.ID, r.PathValue("id"))
	if err != nil {
		api.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
