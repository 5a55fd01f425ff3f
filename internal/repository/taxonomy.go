package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/plumekit/plume/internal/apperr"
	"github.com/plumekit/plume/internal/model"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrTagNotFound      = errors.New("tag not found")
)

type CategoryRepository interface {
	Create(category *model.Category) error
	BySlug(slug string) (*model.Category, error)
	List() ([]*model.Category, error)
}

type categoryRepository struct {
	db *sqlx.DB
}

func NewCategoryRepository(db *sqlx.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(category *model.Category) error {
	query := `INSERT INTO categories (id, name, slug, description, color, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(query,
		category.ID,
		category.Name,
		category.Slug,
		category.Description,
		category.Color,
		category.CreatedAt,
	)
	if isUniqueViolation(err) {
		return apperr.ErrConflict
	}

	return err
}

func (r *categoryRepository) BySlug(slug string) (*model.Category, error) {
	category := &model.Category{}
	query := `SELECT * FROM categories WHERE slug = $1`

	err := r.db.Get(category, query, slug)
	if err == sql.ErrNoRows {
		return nil, ErrCategoryNotFound
	}

	return category, err
}

func (r *categoryRepository) List() ([]*model.Category, error) {
	var categories []*model.Category
	err := r.db.Select(&categories, `SELECT * FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return categories, nil
}

type TagRepository interface {
	Create(tag *model.Tag) error
	BySlug(slug string) (*model.Tag, error)
	List() ([]*model.Tag, error)
}

type tagRepository struct {
	db *sqlx.DB
}

func NewTagRepository(db *sqlx.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) Create(tag *model.Tag) error {
	query := `INSERT INTO tags (id, name, slug, created_at) VALUES ($1, $2, $3, $4)`

	_, err := r.db.Exec(query, tag.ID, tag.Name, tag.Slug, tag.CreatedAt)
	if isUniqueViolation(err) {
		return apperr.ErrConflict
	}

	return err
}

func (r *tagRepository) BySlug(slug string) (*model.Tag, error) {
	tag := &model.Tag{}
	query := `SELECT * FROM tags WHERE slug = $1`

	err := r.db.Get(tag, query, slug)
	if err == sql.ErrNoRows {
		return nil, ErrTagNotFound
	}

	return tag, err
}

func (r *tagRepository) List() ([]*model.Tag, error) {
	var tags []*model.Tag
	err := r.db.Select(&tags, `SELECT * FROM tags ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return tags, nil
}
