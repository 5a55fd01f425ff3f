package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/plumekit/plume/internal/apperr"
	"github.com/plumekit/plume/internal/markdown"
	"github.com/plumekit/plume/internal/model"
	"github.com/plumekit/plume/internal/repository"
	"github.com/plumekit/plume/internal/validation"
)

// FeatherService manages the single typed content block attached to a post.
// Payloads are validated per kind; the data layer enforces one feather per
// post via the unique post_id index.
type FeatherService struct {
	featherRepo repository.FeatherRepository
	postRepo    repository.PostRepository
	fileRepo    repository.FileRepository
	fileService *FileService
	md          *markdown.Parser
}

func NewFeatherService(
	featherRepo repository.FeatherRepository,
	postRepo repository.PostRepository,
	fileRepo repository.FileRepository,
	fileService *FileService,
) *FeatherService {
	return &FeatherService{
		featherRepo: featherRepo,
		postRepo:    postRepo,
		fileRepo:    fileRepo,
		fileService: fileService,
		md:          markdown.NewParser(),
	}
}

func (s *FeatherService) Types() ([]*model.FeatherType, error) {
	return s.featherRepo.Types()
}

// Create attaches a feather of the given kind to the caller's post. The post
// must exist and belong to authorID; a post that already has a feather (of
// any kind) rejects the insert with ErrConflict.
func (s *FeatherService) Create(authorID, postID, kind string, input json.RawMessage) (*model.Feather, error) {
	if !model.ValidFeatherKind(kind) {
		return nil, fmt.Errorf("%w: unknown feather kind %q", apperr.ErrValidation, kind)
	}

	_, err := s.postRepo.ByIDAndAuthor(postID, authorID)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, fmt.Errorf("%w: post %s", apperr.ErrNotFound, postID)
		}
		return nil, err
	}

	payload, fileIDs, err := s.buildPayload(kind, nil, input)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	feather := &model.Feather{
		ID:        uuid.New().String(),
		PostID:    postID,
		Kind:      kind,
		Payload:   payload,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.featherRepo.Create(feather)
	if err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return nil, fmt.Errorf("%w: post %s already has a feather", apperr.ErrConflict, postID)
		}
		return nil, fmt.Errorf("failed to create feather: %w", err)
	}

	if kind == model.FeatherUploader {
		err = s.featherRepo.SetFiles(feather.ID, fileIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to attach files: %w", err)
		}
	}

	return s.hydrate(feather)
}

func (s *FeatherService) ByID(id string) (*model.Feather, error) {
	feather, err := s.featherRepo.ByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrFeatherNotFound) {
			return nil, fmt.Errorf("%w: feather %s", apperr.ErrNotFound, id)
		}
		return nil, err
	}

	return s.hydrate(feather)
}

func (s *FeatherService) ByPostID(postID string) (*model.Feather, error) {
	feather, err := s.featherRepo.ByPostID(postID)
	if err != nil {
		if errors.Is(err, repository.ErrFeatherNotFound) {
			return nil, fmt.Errorf("%w: no feather for post %s", apperr.ErrNotFound, postID)
		}
		return nil, err
	}

	return s.hydrate(feather)
}

// Update merges the provided fields into the existing payload. Fields absent
// from input keep their stored values. Only the post's author may update.
func (s *FeatherService) Update(authorID, id string, input json.RawMessage) (*model.Feather, error) {
	feather, err := s.ownedByID(authorID, id)
	if err != nil {
		return nil, err
	}

	payload, fileIDs, err := s.buildPayload(feather.Kind, feather.Payload, input)
	if err != nil {
		return nil, err
	}

	err = s.featherRepo.UpdatePayload(id, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to update feather: %w", err)
	}
	feather.Payload = payload

	if feather.Kind == model.FeatherUploader && fileIDs != nil {
		err = s.featherRepo.SetFiles(id, fileIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to attach files: %w", err)
		}
	}

	return s.hydrate(feather)
}

// Delete removes the feather only; the owning post stays. Only the post's
// author may delete.
func (s *FeatherService) Delete(authorID, id string) error {
	_, err := s.ownedByID(authorID, id)
	if err != nil {
		return err
	}

	err = s.featherRepo.Delete(id)
	if errors.Is(err, repository.ErrFeatherNotFound) {
		return fmt.Errorf("%w: feather %s", apperr.ErrNotFound, id)
	}
	return err
}

// ownedByID loads a feather and checks the caller owns its post. Feathers on
// other authors' posts read as not found.
func (s *FeatherService) ownedByID(authorID, id string) (*model.Feather, error) {
	feather, err := s.featherRepo.ByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrFeatherNotFound) {
			return nil, fmt.Errorf("%w: feather %s", apperr.ErrNotFound, id)
		}
		return nil, err
	}

	_, err = s.postRepo.ByIDAndAuthor(feather.PostID, authorID)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, fmt.Errorf("%w: feather %s", apperr.ErrNotFound, id)
		}
		return nil, err
	}

	return feather, nil
}

// Per-kind inputs use pointer fields so updates can distinguish "absent" from
// "set to zero value".

type textInput struct {
	Content *string `json:"content"`
	Format  *string `json:"format"`
}

type photoInput struct {
	FileID  *string `json:"file_id"`
	Caption *string `json:"caption"`
	AltText *string `json:"alt_text"`
	Width   *int    `json:"width"`
	Height  *int    `json:"height"`
}

type quoteInput struct {
	Quote  *string `json:"quote"`
	Author *string `json:"author"`
	Source *string `json:"source"`
}

type linkInput struct {
	URL         *string `json:"url"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Thumbnail   *string `json:"thumbnail"`
}

type videoInput struct {
	FileID          *string `json:"file_id"`
	VideoURL        *string `json:"video_url"`
	Thumbnail       *string `json:"thumbnail"`
	Caption         *string `json:"caption"`
	DurationSeconds *int    `json:"duration_seconds"`
}

type audioInput struct {
	FileID          *string `json:"file_id"`
	Title           *string `json:"title"`
	Artist          *string `json:"artist"`
	DurationSeconds *int    `json:"duration_seconds"`
}

type uploaderInput struct {
	Description *string  `json:"description"`
	FileIDs     []string `json:"file_ids"`
}

// buildPayload validates input for the kind and merges it over current (nil
// for creates). The returned file IDs are only meaningful for uploader
// feathers, where nil means "file set untouched".
func (s *FeatherService) buildPayload(kind string, current, input json.RawMessage) ([]byte, []string, error) {
	var (
		merged   any
		fileIDs  []string
		buildErr error
	)

	switch kind {
	case model.FeatherText:
		merged, buildErr = s.buildText(current, input)
	case model.FeatherPhoto:
		merged, buildErr = s.buildPhoto(current, input)
	case model.FeatherQuote:
		merged, buildErr = s.buildQuote(current, input)
	case model.FeatherLink:
		merged, buildErr = s.buildLink(current, input)
	case model.FeatherVideo:
		merged, buildErr = s.buildVideo(current, input)
	case model.FeatherAudio:
		merged, buildErr = s.buildAudio(current, input)
	case model.FeatherUploader:
		merged, fileIDs, buildErr = s.buildUploader(current, input)
	}
	if buildErr != nil {
		return nil, nil, buildErr
	}

	payload, err := json.Marshal(merged)
	if err != nil {
		return nil, nil, err
	}

	return payload, fileIDs, nil
}

func decodeInput(raw json.RawMessage, into any) error {
	err := json.Unmarshal(raw, into)
	if err != nil {
		return fmt.Errorf("%w: malformed payload: %v", apperr.ErrValidation, err)
	}
	return nil
}

func decodeCurrent(raw json.RawMessage, into any) {
	if raw != nil {
		// Stored payloads were validated on the way in.
		_ = json.Unmarshal(raw, into)
	}
}

func (s *FeatherService) buildText(current, input json.RawMessage) (*model.TextPayload, error) {
	p := &model.TextPayload{Format: model.TextFormatMarkdown}
	decodeCurrent(current, p)

	var in textInput
	err := decodeInput(input, &in)
	if err != nil {
		return nil, err
	}

	if in.Content != nil {
		p.Content = *in.Content
	}
	if in.Format != nil {
		p.Format = *in.Format
	}

	if p.Content == "" {
		return nil, fmt.Errorf("%w: content is required", apperr.ErrValidation)
	}
	switch p.Format {
	case model.TextFormatPlain, model.TextFormatMarkdown, model.TextFormatHTML:
	default:
		return nil, fmt.Errorf("%w: format must be plain, markdown or html", apperr.ErrValidation)
	}

	return p, nil
}

func (s *FeatherService) buildPhoto(current, input json.RawMessage) (*model.PhotoPayload, error) {
	p := &model.PhotoPayload{}
	decodeCurrent(current, p)

	var in photoInput
	err := decodeInput(input, &in)
	if err != nil {
		return nil, err
	}

	if in.FileID != nil {
		p.FileID = *in.FileID
	}
	if in.Caption != nil {
		p.Caption = *in.Caption
	}
	if in.AltText != nil {
		p.AltText = *in.AltText
	}
	if in.Width != nil {
		p.Width = in.Width
	}
	if in.Height != nil {
		p.Height = in.Height
	}

	if p.FileID == "" {
		return nil, fmt.Errorf("%w: file_id is required", apperr.ErrValidation)
	}
	err = s.requireFiles(p.FileID)
	if err != nil {
		return nil, err
	}
	if p.Width != nil && *p.Width <= 0 {
		return nil, fmt.Errorf("%w: width must be positive", apperr.ErrValidation)
	}
	if p.Height != nil && *p.Height <= 0 {
		return nil, fmt.Errorf("%w: height must be positive", apperr.ErrValidation)
	}

	return p, nil
}

func (s *FeatherService) buildQuote(current, input json.RawMessage) (*model.QuotePayload, error) {
	p := &model.QuotePayload{}
	decodeCurrent(current, p)

	var in quoteInput
	err := decodeInput(input, &in)
	if err != nil {
		return nil, err
	}

	if in.Quote != nil {
		p.Quote = *in.Quote
	}
	if in.Author != nil {
		p.Author = *in.Author
	}
	if in.Source != nil {
		p.Source = *in.Source
	}

	if p.Quote == "" {
		return nil, fmt.Errorf("%w: quote is required", apperr.ErrValidation)
	}

	return p, nil
}

func (s *FeatherService) buildLink(current, input json.RawMessage) (*model.LinkPayload, error) {
	p := &model.LinkPayload{}
	decodeCurrent(current, p)

	var in linkInput
	err := decodeInput(input, &in)
	if err != nil {
		return nil, err
	}

	if in.URL != nil {
		p.URL = *in.URL
	}
	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Thumbnail != nil {
		p.Thumbnail = *in.Thumbnail
	}

	err = validation.ValidateURL(p.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	if p.Thumbnail != "" {
		err = validation.ValidateURL(p.Thumbnail)
		if err != nil {
			return nil, fmt.Errorf("%w: thumbnail: %v", apperr.ErrValidation, err)
		}
	}

	return p, nil
}

func (s *FeatherService) buildVideo(current, input json.RawMessage) (*model.VideoPayload, error) {
	p := &model.VideoPayload{}
	decodeCurrent(current, p)

	var in videoInput
	err := decodeInput(input, &in)
	if err != nil {
		return nil, err
	}

	if in.FileID != nil {
		p.FileID = *in.FileID
	}
	if in.VideoURL != nil {
		p.VideoURL = *in.VideoURL
	}
	if in.Thumbnail != nil {
		p.Thumbnail = *in.Thumbnail
	}
	if in.Caption != nil {
		p.Caption = *in.Caption
	}
	if in.DurationSeconds != nil {
		p.DurationSeconds = in.DurationSeconds
	}

	if p.FileID == "" && p.VideoURL == "" {
		return nil, fmt.Errorf("%w: either file_id or video_url is required", apperr.ErrValidation)
	}
	if p.FileID != "" {
		err = s.requireFiles(p.FileID)
		if err != nil {
			return nil, err
		}
	}
	if p.VideoURL != "" {
		err = validation.ValidateURL(p.VideoURL)
		if err != nil {
			return nil, fmt.Errorf("%w: video_url: %v", apperr.ErrValidation, err)
		}
	}
	if p.DurationSeconds != nil && *p.DurationSeconds < 0 {
		return nil, fmt.Errorf("%w: duration_seconds must not be negative", apperr.ErrValidation)
	}

	return p, nil
}

func (s *FeatherService) buildAudio(current, input json.RawMessage) (*model.AudioPayload, error) {
	p := &model.AudioPayload{}
	decodeCurrent(current, p)

	var in audioInput
	err := decodeInput(input, &in)
	if err != nil {
		return nil, err
	}

	if in.FileID != nil {
		p.FileID = *in.FileID
	}
	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Artist != nil {
		p.Artist = *in.Artist
	}
	if in.DurationSeconds != nil {
		p.DurationSeconds = in.DurationSeconds
	}

	if p.FileID == "" {
		return nil, fmt.Errorf("%w: file_id is required", apperr.ErrValidation)
	}
	err = s.requireFiles(p.FileID)
	if err != nil {
		return nil, err
	}
	if p.DurationSeconds != nil && *p.DurationSeconds < 0 {
		return nil, fmt.Errorf("%w: duration_seconds must not be negative", apperr.ErrValidation)
	}

	return p, nil
}

func (s *FeatherService) buildUploader(current, input json.RawMessage) (*model.UploaderPayload, []string, error) {
	p := &model.UploaderPayload{}
	decodeCurrent(current, p)

	var in uploaderInput
	err := decodeInput(input, &in)
	if err != nil {
		return nil, nil, err
	}

	if in.Description != nil {
		p.Description = *in.Description
	}

	// Creates must bring files; updates may omit file_ids to keep the set.
	if current == nil && len(in.FileIDs) == 0 {
		return nil, nil, fmt.Errorf("%w: file_ids is required", apperr.ErrValidation)
	}
	if in.FileIDs != nil {
		err = s.requireFiles(in.FileIDs...)
		if err != nil {
			return nil, nil, err
		}
	}

	return p, in.FileIDs, nil
}

func (s *FeatherService) requireFiles(ids ...string) error {
	for _, id := range ids {
		_, err := s.fileRepo.ByID(id)
		if errors.Is(err, repository.ErrFileNotFound) {
			return fmt.Errorf("%w: unknown file %s", apperr.ErrValidation, id)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// hydrate fills the computed fields: resolved files with URLs, and rendered
// HTML for markdown text feathers.
func (s *FeatherService) hydrate(feather *model.Feather) (*model.Feather, error) {
	switch feather.Kind {
	case model.FeatherText:
		var p model.TextPayload
		decodeCurrent(feather.Payload, &p)
		if p.Format == model.TextFormatMarkdown {
			feather.HTMLContent = s.md.RenderString(p.Content)
		}

	case model.FeatherPhoto:
		var p model.PhotoPayload
		decodeCurrent(feather.Payload, &p)
		return feather, s.attachFiles(feather, p.FileID)

	case model.FeatherVideo:
		var p model.VideoPayload
		decodeCurrent(feather.Payload, &p)
		if p.FileID != "" {
			return feather, s.attachFiles(feather, p.FileID)
		}

	case model.FeatherAudio:
		var p model.AudioPayload
		decodeCurrent(feather.Payload, &p)
		return feather, s.attachFiles(feather, p.FileID)

	case model.FeatherUploader:
		files, err := s.featherRepo.Files(feather.ID)
		if err != nil {
			return nil, err
		}
		for _, file := range files {
			file.URL = s.fileService.URL(file)
		}
		feather.Files = files
	}

	return feather, nil
}

func (s *FeatherService) attachFiles(feather *model.Feather, ids ...string) error {
	files, err := s.fileRepo.ByIDs(ids)
	if err != nil {
		return err
	}
	for _, file := range files {
		file.URL = s.fileService.URL(file)
	}
	feather.Files = files
	return nil
}
