package service

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/plumekit/plume/internal/apperr"
	"github.com/plumekit/plume/internal/model"
	"github.com/plumekit/plume/internal/repository"
	"github.com/plumekit/plume/internal/validation"
)

// WebMentionInput is the payload of an incoming webmention.
type WebMentionInput struct {
	Source      string `json:"source"`
	Target      string `json:"target"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	AuthorName  string `json:"author_name"`
	AuthorURL   string `json:"author_url"`
	AuthorPhoto string `json:"author_photo"`
}

// PostRightsInput carries copyright metadata for a post.
type PostRightsInput struct {
	Copyright   string `json:"copyright"`
	License     string `json:"license"`
	Attribution string `json:"attribution"`
	UsageTerms  string `json:"usage_terms"`
}

// SiteModuleService covers the site-level modules: the module and theme
// catalogs, incoming webmentions and per-post rights.
type SiteModuleService struct {
	repo     repository.SiteModuleRepository
	postRepo repository.PostRepository
	siteURL  string
}

func NewSiteModuleService(repo repository.SiteModuleRepository, postRepo repository.PostRepository, siteURL string) *SiteModuleService {
	return &SiteModuleService{repo: repo, postRepo: postRepo, siteURL: strings.TrimRight(siteURL, "/")}
}

func (s *SiteModuleService) Modules() ([]*model.Module, error) {
	return s.repo.Modules()
}

func (s *SiteModuleService) Themes() ([]*model.Theme, error) {
	return s.repo.Themes()
}

// ReceiveWebMention validates and stores an incoming mention. The target must
// be a URL on this site; when it resolves to a post the mention is linked to
// it. Duplicate (source, target) pairs are rejected.
func (s *SiteModuleService) ReceiveWebMention(in WebMentionInput) (*model.WebMention, error) {
	err := validation.ValidateURL(in.Source)
	if err != nil {
		return nil, fmt.Errorf("%w: source: %v", apperr.ErrValidation, err)
	}
	err = validation.ValidateURL(in.Target)
	if err != nil {
		return nil, fmt.Errorf("%w: target: %v", apperr.ErrValidation, err)
	}
	if in.Source == in.Target {
		return nil, fmt.Errorf("%w: source and target must differ", apperr.ErrValidation)
	}
	if s.siteURL != "" && !strings.HasPrefix(in.Target, s.siteURL) {
		return nil, fmt.Errorf("%w: target is not on this site", apperr.ErrValidation)
	}

	mention := &model.WebMention{
		ID:          uuid.New().String(),
		Source:      in.Source,
		Target:      in.Target,
		PostID:      s.resolveTargetPost(in.Target),
		Title:       in.Title,
		Content:     in.Content,
		AuthorName:  in.AuthorName,
		AuthorURL:   in.AuthorURL,
		AuthorPhoto: in.AuthorPhoto,
		CreatedAt:   time.Now(),
	}

	err = s.repo.CreateWebMention(mention)
	if errors.Is(err, apperr.ErrConflict) {
		return nil, fmt.Errorf("%w: mention from %s already recorded", apperr.ErrConflict, in.Source)
	}
	if err != nil {
		return nil, err
	}

	return mention, nil
}

func (s *SiteModuleService) ApprovedWebMentions() ([]*model.WebMention, error) {
	return s.repo.ApprovedWebMentions()
}

// SetPostRights attaches rights metadata to the caller's own post. One rights
// row per post.
func (s *SiteModuleService) SetPostRights(authorID, postID string, in PostRightsInput) (*model.PostRights, error) {
	_, err := s.postRepo.ByIDAndAuthor(postID, authorID)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, fmt.Errorf("%w: post %s", apperr.ErrNotFound, postID)
		}
		return nil, err
	}

	now := time.Now()
	rights := &model.PostRights{
		ID:          uuid.New().String(),
		PostID:      postID,
		Copyright:   in.Copyright,
		License:     in.License,
		Attribution: in.Attribution,
		UsageTerms:  in.UsageTerms,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.repo.CreatePostRights(rights)
	if errors.Is(err, apperr.ErrConflict) {
		return nil, fmt.Errorf("%w: post %s already has rights metadata", apperr.ErrConflict, postID)
	}
	if err != nil {
		return nil, err
	}

	return rights, nil
}

func (s *SiteModuleService) PostRights(postID string) (*model.PostRights, error) {
	rights, err := s.repo.RightsByPost(postID)
	if errors.Is(err, repository.ErrRightsNotFound) {
		return nil, fmt.Errorf("%w: no rights for post %s", apperr.ErrNotFound, postID)
	}
	return rights, err
}

// resolveTargetPost maps a target like /posts/<slug> to a post id, best effort.
func (s *SiteModuleService) resolveTargetPost(target string) *string {
	u, err := url.Parse(target)
	if err != nil {
		return nil
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) != 2 || parts[0] != "posts" {
		return nil
	}

	post, err := s.postRepo.BySlug(parts[1])
	if err != nil {
		return nil
	}

	return &post.ID
}
