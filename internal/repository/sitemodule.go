package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/plumekit/plume/internal/apperr"
	"github.com/plumekit/plume/internal/model"
)

var ErrRightsNotFound = errors.New("post rights not found")

type SiteModuleRepository interface {
	Modules() ([]*model.Module, error)
	Themes() ([]*model.Theme, error)
	CreateWebMention(mention *model.WebMention) error
	ApprovedWebMentions() ([]*model.WebMention, error)
	CreatePostRights(rights *model.PostRights) error
	RightsByPost(postID string) (*model.PostRights, error)
}

type siteModuleRepository struct {
	db *sqlx.DB
}

func NewSiteModuleRepository(db *sqlx.DB) SiteModuleRepository {
	return &siteModuleRepository{db: db}
}

func (r *siteModuleRepository) Modules() ([]*model.Module, error) {
	var modules []*model.Module
	err := r.db.Select(&modules, `SELECT * FROM modules ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return modules, nil
}

func (r *siteModuleRepository) Themes() ([]*model.Theme, error) {
	var themes []*model.Theme
	err := r.db.Select(&themes, `SELECT * FROM themes WHERE is_active = TRUE ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return themes, nil
}

func (r *siteModuleRepository) CreateWebMention(mention *model.WebMention) error {
	query := `INSERT INTO webmentions (id, source, target, post_id, title, content, author_name, author_url, author_photo, is_approved, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.Exec(query,
		mention.ID,
		mention.Source,
		mention.Target,
		mention.PostID,
		mention.Title,
		mention.Content,
		mention.AuthorName,
		mention.AuthorURL,
		mention.AuthorPhoto,
		mention.IsApproved,
		mention.CreatedAt,
	)
	if isUniqueViolation(err) {
		return apperr.ErrConflict
	}

	return err
}

func (r *siteModuleRepository) ApprovedWebMentions() ([]*model.WebMention, error) {
	var mentions []*model.WebMention
	query := `SELECT * FROM webmentions WHERE is_approved = TRUE ORDER BY created_at DESC`

	err := r.db.Select(&mentions, query)
	if err != nil {
		return nil, err
	}

	return mentions, nil
}

func (r *siteModuleRepository) CreatePostRights(rights *model.PostRights) error {
	query := `INSERT INTO post_rights (id, post_id, copyright, license, attribution, usage_terms, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(query,
		rights.ID,
		rights.PostID,
		rights.Copyright,
		rights.License,
		rights.Attribution,
		rights.UsageTerms,
		rights.CreatedAt,
		rights.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return apperr.ErrConflict
	}

	return err
}

func (r *siteModuleRepository) RightsByPost(postID string) (*model.PostRights, error) {
	rights := &model.PostRights{}
	query := `SELECT * FROM post_rights WHERE post_id = $1`

	err := r.db.Get(rights, query, postID)
	if err == sql.ErrNoRows {
		return nil, ErrRightsNotFound
	}

	return rights, err
}
