package handler

import (
	"net/http"
	"strconv"

	"github.com/plumekit/plume/internal/api"
	"github.com/plumekit/plume/internal/ctxkeys"
	"github.com/plumekit/plume/internal/model"
	"github.com/plumekit/plume/internal/repository"
	"github.com/plumekit/plume/internal/service"
)

type PostHandler struct {
	postService *service.PostService
}

func NewPostHandler(postService *service.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.PostInput
	err := api.Decode(r, &in)
	if err != nil {
		api.Error(w, err)
		return
	}

	user := ctxkeys.User(r.Context())
	post, err := h.postService.Create(user.ID, in)
	if err != nil {
		api.Error(w, err)
		return
	}

	api.JSON(w, http.StatusCreated, post)
}

func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.PostFilter{
		Status:   q.Get("status"),
		Tag:      q.Get("tag"),
		Category: q.Get("category"),
		Author:   q.Get("author"),
		Featured: q.Get("featured") == "true",
		Search:   q.Get("q"),
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(q.Get("offset")); err == nil {
		filter.Offset = offset
	}

	// Unauthenticated listing only sees published posts.
	if filter.Status == "" || ctxkeys.User(r.Context()) == nil {
		filter.Status = model.PostStatusPublished
	}

	posts, err := h.postService.List(filter)
	if err != nil {
		api.Error(w, err)
		return
	}

	api.JSON(w, http.StatusOK, posts)
}

func (h *PostHandler) Show(w http.ResponseWriter, r *http.Request) {
	post, err := h.postService.ByID(r.PathValue("id"), true)
	if err != nil {
		api.Error(w, err)
		return
	}

	api.JSON(w, http.StatusOK, post)
}

func (h *PostHandler) ShowBySlug(w http.ResponseWriter, r *http.Request) {
	post, err := h.postService.BySlug(r.PathValue("slug"), true)
	if err != nil {
		api.Error(w, err)
		return
	}

	api.JSON(w, http.StatusOK, post)
}

func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in service.PostInput
	err := api.Decode(r, &in)
	if err != nil {
		api.Error(w, err)
		return
	}

	user := ctxkeys.User(r.Context())
	post, err := h.postService.Update(user.ID, r.PathValue("id"), in)
	if err != nil {
		api.Error(w, err)
		return
	}

	api.JSON(w, http.StatusOK, post)
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	err := h.postService.Delete(user.ID, r.PathValue("id"))
	if err != nil {
		api.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ToggleLike flips the caller's like and reports the resulting state.
func (h *PostHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	liked, err := h.postService.ToggleLike(r.PathValue("id"), user.ID)
	if err != nil {
		api.Error(w, err)
		return
	}

	api.JSON(w, http.StatusOK, map[string]bool{"liked": liked})
}

func (h *PostHandler) Stats(w http.ResponseWriter, r *http.Request) {
	post, err := h.postService.Stats(r.PathValue("id"))
	if err != nil {
		api.Error(w, err)
		return
	}

	api.JSON(w, http.StatusOK, map[string]int{
		"view_count":    post.ViewCount,
		"like_count":    post.LikeCount,
		"comment_count": post.CommentCount,
	})
}
