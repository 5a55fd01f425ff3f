package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/plumekit/plume/internal/apperr"
	"github.com/plumekit/plume/internal/model"
	"github.com/plumekit/plume/internal/repository"
)

const maxCommentLength = 5000

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	userRepo    repository.UserRepository
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		userRepo:    userRepo,
	}
}

// Create adds a comment to a post. parentID, when set, must reference a
// comment on the same post; replies to replies are allowed but stay one
// thread deep in the listing.
func (s *CommentService) Create(postID, authorID string, parentID *string, content string) (*model.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: comment content is required", apperr.ErrValidation)
	}
	if len(content) > maxCommentLength {
		return nil, fmt.Errorf("%w: comment exceeds %d characters", apperr.ErrValidation, maxCommentLength)
	}

	post, err := s.postRepo.ByID(postID)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, fmt.Errorf("%w: post %s", apperr.ErrNotFound, postID)
		}
		return nil, err
	}
	if !post.AllowComments {
		return nil, fmt.Errorf("%w: comments are disabled on this post", apperr.ErrValidation)
	}

	if parentID != nil {
		parent, err := s.commentRepo.ByID(*parentID)
		if err != nil {
			if errors.Is(err, repository.ErrCommentNotFound) {
				return nil, fmt.Errorf("%w: unknown parent comment", apperr.ErrValidation)
			}
			return nil, err
		}
		if parent.PostID != postID {
			return nil, fmt.Errorf("%w: parent comment belongs to another post", apperr.ErrValidation)
		}
	}

	comment := &model.Comment{
		ID:        uuid.New().String(),
		PostID:    postID,
		AuthorID:  authorID,
		ParentID:  parentID,
		Content:   content,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	err = s.commentRepo.Create(comment)
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	err = s.syncCount(postID)
	if err != nil {
		return nil, err
	}

	s.attachAuthor(comment)
	return comment, nil
}

// ByPost returns the post's top-level comments with their replies nested.
func (s *CommentService) ByPost(postID string) ([]*model.Comment, error) {
	_, err := s.postRepo.ByID(postID)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, fmt.Errorf("%w: post %s", apperr.ErrNotFound, postID)
		}
		return nil, err
	}

	comments, err := s.commentRepo.TopLevelByPost(postID)
	if err != nil {
		return nil, err
	}

	for _, comment := range comments {
		s.attachAuthor(comment)

		replies, err := s.commentRepo.Replies(comment.ID)
		if err != nil {
			return nil, err
		}
		for _, reply := range replies {
			s.attachAuthor(reply)
		}
		comment.Replies = replies
	}

	return comments, nil
}

// Delete removes the author's own comment; replies cascade with it.
func (s *CommentService) Delete(authorID, id string) error {
	comment, err := s.commentRepo.ByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			return fmt.Errorf("%w: comment %s", apperr.ErrNotFound, id)
		}
		return err
	}
	if comment.AuthorID != authorID {
		return fmt.Errorf("%w: comment %s", apperr.ErrNotFound, id)
	}

	err = s.commentRepo.Delete(id)
	if err != nil {
		return err
	}

	return s.syncCount(comment.PostID)
}

func (s *CommentService) syncCount(postID string) error {
	count, err := s.commentRepo.CountByPost(postID)
	if err != nil {
		return err
	}
	return s.postRepo.SetCommentCount(postID, count)
}

func (s *CommentService) attachAuthor(comment *model.Comment) {
	author, err := s.userRepo.ByID(comment.AuthorID)
	if err == nil {
		comment.Author = author
	}
}
