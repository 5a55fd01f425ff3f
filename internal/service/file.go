package service

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/plumekit/plume/internal/apperr"
	"github.com/plumekit/plume/internal/model"
	"github.com/plumekit/plume/internal/repository"
	"github.com/plumekit/plume/internal/storage"
)

// FileService stores uploaded blobs and their metadata rows. Files are shared
// resources: uploader feathers reference them, and deleting a feather never
// deletes the files it referenced.
type FileService struct {
	fileRepo repository.FileRepository
	storage  storage.Storage
}

func NewFileService(fileRepo repository.FileRepository, storage storage.Storage) *FileService {
	return &FileService{
		fileRepo: fileRepo,
		storage:  storage,
	}
}

// Upload saves the blob and records its metadata. Validation of type and size
// happens in the handler before the bytes are read.
func (s *FileService) Upload(uploaderID string, file multipart.File, header *multipart.FileHeader) (*model.UploadedFile, error) {
	ext := filepath.Ext(header.Filename)
	filename := uuid.New().String() + ext
	storagePath := filepath.Join("uploads", filename)

	err := s.storage.Save(storagePath, file)
	if err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	fileModel := &model.UploadedFile{
		ID:           uuid.New().String(),
		UploaderID:   uploaderID,
		Filename:     filename,
		OriginalName: header.Filename,
		MimeType:     header.Header.Get("Content-Type"),
		Size:         header.Size,
		StoragePath:  storagePath,
		CreatedAt:    time.Now(),
	}

	err = s.fileRepo.Create(fileModel)
	if err != nil {
		// Orphaned blob cleanup is best effort.
		delErr := s.storage.Delete(storagePath)
		if delErr != nil {
			slog.Error("failed to delete file from storage during cleanup", "error", delErr, "path", storagePath)
		}
		return nil, fmt.Errorf("failed to create file record: %w", err)
	}

	fileModel.URL = s.URL(fileModel)
	return fileModel, nil
}

func (s *FileService) ByID(id string) (*model.UploadedFile, error) {
	file, err := s.fileRepo.ByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrFileNotFound) {
			return nil, fmt.Errorf("%w: file %s", apperr.ErrNotFound, id)
		}
		return nil, err
	}

	file.URL = s.URL(file)
	return file, nil
}

func (s *FileService) ByUploader(uploaderID string) ([]*model.UploadedFile, error) {
	files, err := s.fileRepo.ByUploader(uploaderID)
	if err != nil {
		return nil, err
	}

	for _, file := range files {
		file.URL = s.URL(file)
	}
	return files, nil
}

// URL returns a presigned URL when the backing store supports it, falling
// back to the store's direct URL.
func (s *FileService) URL(file *model.UploadedFile) string {
	if file == nil {
		return ""
	}

	s3Storage, ok := s.storage.(*storage.S3Storage)
	if ok {
		url, err := s3Storage.PresignedURL(file.StoragePath, s3Storage.PresignExpiry())
		if err == nil {
			return url
		}
	}

	return s.storage.URL(file.StoragePath)
}

// Delete removes the metadata row and, best effort, the blob.
func (s *FileService) Delete(id string) error {
	file, err := s.fileRepo.ByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrFileNotFound) {
			return fmt.Errorf("%w: file %s", apperr.ErrNotFound, id)
		}
		return err
	}

	delErr := s.storage.Delete(file.StoragePath)
	if delErr != nil {
		slog.Error("failed to delete file from storage", "error", delErr, "path", file.StoragePath)
	}

	return s.fileRepo.Delete(id)
}
