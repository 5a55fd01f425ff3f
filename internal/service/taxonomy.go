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
	"github.com/plumekit/plume/internal/slug"
)

type TaxonomyService struct {
	categoryRepo repository.CategoryRepository
	tagRepo      repository.TagRepository
}

func NewTaxonomyService(categoryRepo repository.CategoryRepository, tagRepo repository.TagRepository) *TaxonomyService {
	return &TaxonomyService{categoryRepo: categoryRepo, tagRepo: tagRepo}
}

func (s *TaxonomyService) CreateCategory(name, description, color string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", apperr.ErrValidation)
	}

	category := &model.Category{
		ID:          uuid.New().String(),
		Name:        name,
		Slug:        slug.Make(name),
		Description: description,
		Color:       color,
		CreatedAt:   time.Now(),
	}

	err := s.categoryRepo.Create(category)
	if errors.Is(err, apperr.ErrConflict) {
		return nil, fmt.Errorf("%w: category %q already exists", apperr.ErrConflict, category.Slug)
	}
	if err != nil {
		return nil, err
	}

	return category, nil
}

func (s *TaxonomyService) Categories() ([]*model.Category, error) {
	return s.categoryRepo.List()
}

func (s *TaxonomyService) CategoryBySlug(categorySlug string) (*model.Category, error) {
	category, err := s.categoryRepo.BySlug(categorySlug)
	if errors.Is(err, repository.ErrCategoryNotFound) {
		return nil, fmt.Errorf("%w: category %s", apperr.ErrNotFound, categorySlug)
	}
	return category, err
}

func (s *TaxonomyService) Tags() ([]*model.Tag, error) {
	return s.tagRepo.List()
}
