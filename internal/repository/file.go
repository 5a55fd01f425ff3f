package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/plumekit/plume/internal/model"
)

var ErrFileNotFound = errors.New("file not found")

type FileRepository interface {
	Create(file *model.UploadedFile) error
	ByID(id string) (*model.UploadedFile, error)
	ByIDs(ids []string) ([]*model.UploadedFile, error)
	ByUploader(uploaderID string) ([]*model.UploadedFile, error)
	Delete(id string) error
}

type fileRepository struct {
	db *sqlx.DB
}

func NewFileRepository(db *sqlx.DB) FileRepository {
	return &fileRepository{db: db}
}

func (r *fileRepository) Create(file *model.UploadedFile) error {
	query := `INSERT INTO uploaded_files (id, uploader_id, filename, original_name, mime_type, size, storage_path, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(query,
		file.ID,
		file.UploaderID,
		file.Filename,
		file.OriginalName,
		file.MimeType,
		file.Size,
		file.StoragePath,
		file.CreatedAt,
	)

	return err
}

func (r *fileRepository) ByID(id string) (*model.UploadedFile, error) {
	file := &model.UploadedFile{}
	query := `SELECT * FROM uploaded_files WHERE id = $1`

	err := r.db.Get(file, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrFileNotFound
	}

	return file, err
}

func (r *fileRepository) ByIDs(ids []string) ([]*model.UploadedFile, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM uploaded_files WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}

	var files []*model.UploadedFile
	err = r.db.Select(&files, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}

	return files, nil
}

func (r *fileRepository) ByUploader(uploaderID string) ([]*model.UploadedFile, error) {
	var files []*model.UploadedFile
	query := `SELECT * FROM uploaded_files WHERE uploader_id = $1 ORDER BY created_at DESC`

	err := r.db.Select(&files, query, uploaderID)
	if err != nil {
		return nil, err
	}

	return files, nil
}

func (r *fileRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM uploaded_files WHERE id = $1`, id)
	if err != nil {
		return err
	}

	return rowsAffectedOr(result, ErrFileNotFound)
}
