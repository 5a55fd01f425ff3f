package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/plumekit/plume/internal/apperr"
	"github.com/plumekit/plume/internal/model"
)

var ErrFeatherNotFound = errors.New("feather not found")

type FeatherRepository interface {
	Create(feather *model.Feather) error
	ByID(id string) (*model.Feather, error)
	ByPostID(postID string) (*model.Feather, error)
	UpdatePayload(id string, payload []byte) error
	Delete(id string) error
	SetFiles(featherID string, fileIDs []string) error
	Files(featherID string) ([]*model.UploadedFile, error)
	Types() ([]*model.FeatherType, error)
}

type featherRepository struct {
	db *sqlx.DB
}

func NewFeatherRepository(db *sqlx.DB) FeatherRepository {
	return &featherRepository{db: db}
}

// Create inserts the post's single feather row. The UNIQUE(post_id) index is
// the serialization point for concurrent creates; the loser gets ErrConflict.
func (r *featherRepository) Create(feather *model.Feather) error {
	query := `INSERT INTO feathers (id, post_id, kind, payload, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(query,
		feather.ID,
		feather.PostID,
		feather.Kind,
		string(feather.Payload),
		feather.CreatedAt,
		feather.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return apperr.ErrConflict
	}

	return err
}

func (r *featherRepository) ByID(id string) (*model.Feather, error) {
	feather := &model.Feather{}
	query := `SELECT * FROM feathers WHERE id = $1`

	err := r.db.Get(feather, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrFeatherNotFound
	}

	return feather, err
}

func (r *featherRepository) ByPostID(postID string) (*model.Feather, error) {
	feather := &model.Feather{}
	query := `SELECT * FROM feathers WHERE post_id = $1`

	err := r.db.Get(feather, query, postID)
	if err == sql.ErrNoRows {
		return nil, ErrFeatherNotFound
	}

	return feather, err
}

func (r *featherRepository) UpdatePayload(id string, payload []byte) error {
	query := `UPDATE feathers SET payload = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Exec(query, string(payload), time.Now(), id)
	if err != nil {
		return err
	}

	return rowsAffectedOr(result, ErrFeatherNotFound)
}

func (r *featherRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM feathers WHERE id = $1`, id)
	if err != nil {
		return err
	}

	return rowsAffectedOr(result, ErrFeatherNotFound)
}

// SetFiles replaces the uploader feather's file set. Membership is shared: the
// same file may be attached to any number of feathers.
func (r *featherRepository) SetFiles(featherID string, fileIDs []string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`DELETE FROM feather_files WHERE feather_id = $1`, featherID)
	if err != nil {
		return err
	}

	for _, fileID := range fileIDs {
		_, err = tx.Exec(`INSERT INTO feather_files (feather_id, file_id) VALUES ($1, $2)`, featherID, fileID)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *featherRepository) Files(featherID string) ([]*model.UploadedFile, error) {
	var files []*model.UploadedFile
	query := `SELECT f.* FROM uploaded_files f
	          JOIN feather_files ff ON ff.file_id = f.id
	          WHERE ff.feather_id = $1
	          ORDER BY f.created_at DESC`

	err := r.db.Select(&files, query, featherID)
	if err != nil {
		return nil, err
	}

	return files, nil
}

func (r *featherRepository) Types() ([]*model.FeatherType, error) {
	var types []*model.FeatherType
	err := r.db.Select(&types, `SELECT * FROM feather_types WHERE is_active = TRUE ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return types, nil
}
