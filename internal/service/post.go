package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/plumekit/plume/internal/apperr"
	"github.com/plumekit/plume/internal/model"
	"github.com/plumekit/plume/internal/repository"
	"github.com/plumekit/plume/internal/slug"
)

// PostInput carries post fields for create and update. Pointer fields are
// optional on update; Create applies defaults for absent values.
type PostInput struct {
	Title         *string  `json:"title"`
	Excerpt       *string  `json:"excerpt"`
	Status        *string  `json:"status"`
	CategorySlug  *string  `json:"category"`
	Tags          []string `json:"tags"`
	IsFeatured    *bool    `json:"is_featured"`
	AllowComments *bool    `json:"allow_comments"`
}

type PostService struct {
	postRepo     repository.PostRepository
	categoryRepo repository.CategoryRepository
	tagRepo      repository.TagRepository
	userRepo     repository.UserRepository
	likeRepo     repository.LikeRepository
	feathers     *FeatherService
}

func NewPostService(
	postRepo repository.PostRepository,
	categoryRepo repository.CategoryRepository,
	tagRepo repository.TagRepository,
	userRepo repository.UserRepository,
	likeRepo repository.LikeRepository,
	feathers *FeatherService,
) *PostService {
	return &PostService{
		postRepo:     postRepo,
		categoryRepo: categoryRepo,
		tagRepo:      tagRepo,
		userRepo:     userRepo,
		likeRepo:     likeRepo,
		feathers:     feathers,
	}
}

func (s *PostService) Create(authorID string, in PostInput) (*model.Post, error) {
	if in.Title == nil || *in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", apperr.ErrValidation)
	}

	status := model.PostStatusDraft
	if in.Status != nil {
		status = *in.Status
	}
	if status != model.PostStatusDraft && status != model.PostStatusPublished {
		return nil, fmt.Errorf("%w: status must be draft or published", apperr.ErrValidation)
	}

	now := time.Now()
	post := &model.Post{
		ID:            uuid.New().String(),
		AuthorID:      authorID,
		Title:         *in.Title,
		Slug:          s.uniqueSlug(*in.Title),
		Status:        status,
		AllowComments: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if in.Excerpt != nil {
		post.Excerpt = *in.Excerpt
	}
	if in.IsFeatured != nil {
		post.IsFeatured = *in.IsFeatured
	}
	if in.AllowComments != nil {
		post.AllowComments = *in.AllowComments
	}
	if status == model.PostStatusPublished {
		post.PublishedAt = &now
	}

	err := s.applyCategory(post, in.CategorySlug)
	if err != nil {
		return nil, err
	}

	err = s.postRepo.Create(post)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	err = s.applyTags(post, in.Tags)
	if err != nil {
		return nil, err
	}

	return s.hydrate(post, false)
}

// ByID returns the post with author, tags and feather resolved. When
// countView is set the view counter is incremented first, so the returned
// post reflects the read being served.
func (s *PostService) ByID(id string, countView bool) (*model.Post, error) {
	post, err := s.postRepo.ByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, fmt.Errorf("%w: post %s", apperr.ErrNotFound, id)
		}
		return nil, err
	}

	return s.hydrate(post, countView)
}

func (s *PostService) BySlug(postSlug string, countView bool) (*model.Post, error) {
	post, err := s.postRepo.BySlug(postSlug)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, fmt.Errorf("%w: post %s", apperr.ErrNotFound, postSlug)
		}
		return nil, err
	}

	return s.hydrate(post, countView)
}

func (s *PostService) List(filter repository.PostFilter) ([]*model.Post, error) {
	posts, err := s.postRepo.List(filter)
	if err != nil {
		return nil, err
	}

	for _, post := range posts {
		author, err := s.userRepo.ByID(post.AuthorID)
		if err == nil {
			post.Author = author
		}
		tags, err := s.postRepo.Tags(post.ID)
		if err == nil {
			post.Tags = tags
		}
	}

	return posts, nil
}

// Published lists published posts, newest first.
func (s *PostService) Published() ([]*model.Post, error) {
	return s.List(repository.PostFilter{Status: model.PostStatusPublished})
}

func (s *PostService) Update(authorID, id string, in PostInput) (*model.Post, error) {
	post, err := s.postRepo.ByIDAndAuthor(id, authorID)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, fmt.Errorf("%w: post %s", apperr.ErrNotFound, id)
		}
		return nil, err
	}

	if in.Title != nil && *in.Title != "" && *in.Title != post.Title {
		post.Title = *in.Title
		post.Slug = s.uniqueSlug(*in.Title)
	}
	if in.Excerpt != nil {
		post.Excerpt = *in.Excerpt
	}
	if in.IsFeatured != nil {
		post.IsFeatured = *in.IsFeatured
	}
	if in.AllowComments != nil {
		post.AllowComments = *in.AllowComments
	}
	if in.Status != nil {
		switch *in.Status {
		case model.PostStatusDraft, model.PostStatusPublished:
		default:
			return nil, fmt.Errorf("%w: status must be draft or published", apperr.ErrValidation)
		}
		if *in.Status == model.PostStatusPublished && post.Status == model.PostStatusDraft {
			now := time.Now()
			post.PublishedAt = &now
		}
		post.Status = *in.Status
	}
	if in.CategorySlug != nil {
		err = s.applyCategory(post, in.CategorySlug)
		if err != nil {
			return nil, err
		}
	}

	err = s.postRepo.Update(post)
	if err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	if in.Tags != nil {
		err = s.applyTags(post, in.Tags)
		if err != nil {
			return nil, err
		}
	}

	return s.hydrate(post, false)
}

// Delete removes the post; the feather, comments, likes and rights rows go
// with it via ON DELETE CASCADE.
func (s *PostService) Delete(authorID, id string) error {
	_, err := s.postRepo.ByIDAndAuthor(id, authorID)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return fmt.Errorf("%w: post %s", apperr.ErrNotFound, id)
		}
		return err
	}

	return s.postRepo.Delete(id)
}

// ToggleLike flips the caller's like on the post and returns the new state.
// The unique (post_id, user_id) pair absorbs concurrent toggles.
func (s *PostService) ToggleLike(postID, userID string) (bool, error) {
	_, err := s.postRepo.ByID(postID)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return false, fmt.Errorf("%w: post %s", apperr.ErrNotFound, postID)
		}
		return false, err
	}

	liked := false
	_, err = s.likeRepo.ByPostAndUser(postID, userID)
	switch {
	case err == nil:
		err = s.likeRepo.Delete(postID, userID)
		if err != nil && !errors.Is(err, repository.ErrLikeNotFound) {
			return false, err
		}
	case errors.Is(err, repository.ErrLikeNotFound):
		err = s.likeRepo.Create(&model.Like{
			ID:        uuid.New().String(),
			PostID:    postID,
			UserID:    userID,
			CreatedAt: time.Now(),
		})
		if err != nil && !errors.Is(err, apperr.ErrConflict) {
			return false, err
		}
		liked = err == nil
	default:
		return false, err
	}

	count, err := s.likeRepo.CountByPost(postID)
	if err != nil {
		return liked, err
	}

	return liked, s.postRepo.SetLikeCount(postID, count)
}

// Stats returns the post's counters.
func (s *PostService) Stats(postID string) (*model.Post, error) {
	post, err := s.postRepo.ByID(postID)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, fmt.Errorf("%w: post %s", apperr.ErrNotFound, postID)
		}
		return nil, err
	}
	return post, nil
}

func (s *PostService) applyCategory(post *model.Post, categorySlug *string) error {
	if categorySlug == nil || *categorySlug == "" {
		post.CategoryID = nil
		return nil
	}

	category, err := s.categoryRepo.BySlug(*categorySlug)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return fmt.Errorf("%w: unknown category %q", apperr.ErrValidation, *categorySlug)
		}
		return err
	}

	post.CategoryID = &category.ID
	return nil
}

// applyTags resolves tag names to rows, creating missing tags on the fly.
func (s *PostService) applyTags(post *model.Post, names []string) error {
	if names == nil {
		return nil
	}

	var tagIDs []string
	for _, name := range names {
		tagSlug := slug.Make(name)
		if tagSlug == "" {
			continue
		}

		tag, err := s.tagRepo.BySlug(tagSlug)
		if errors.Is(err, repository.ErrTagNotFound) {
			tag = &model.Tag{
				ID:        uuid.New().String(),
				Name:      name,
				Slug:      tagSlug,
				CreatedAt: time.Now(),
			}
			err = s.tagRepo.Create(tag)
			if errors.Is(err, apperr.ErrConflict) {
				// Concurrent create of the same tag; re-read the winner.
				tag, err = s.tagRepo.BySlug(tagSlug)
			}
		}
		if err != nil {
			return err
		}

		tagIDs = append(tagIDs, tag.ID)
	}

	return s.postRepo.SetTags(post.ID, tagIDs)
}

// uniqueSlug appends a short id when the natural slug is taken.
func (s *PostService) uniqueSlug(title string) string {
	base := slug.Make(title)
	if base == "" {
		base = "post"
	}

	_, err := s.postRepo.BySlug(base)
	if errors.Is(err, repository.ErrPostNotFound) {
		return base
	}

	return base + "-" + uuid.New().String()[:8]
}

func (s *PostService) hydrate(post *model.Post, countView bool) (*model.Post, error) {
	if countView {
		err := s.postRepo.IncrementViewCount(post.ID)
		if err == nil {
			post.ViewCount++
		}
	}

	author, err := s.userRepo.ByID(post.AuthorID)
	if err == nil {
		post.Author = author
	}

	tags, err := s.postRepo.Tags(post.ID)
	if err == nil {
		post.Tags = tags
	}

	feather, err := s.feathers.ByPostID(post.ID)
	if err == nil {
		post.Feather = feather
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	return post, nil
}
