package handler

import (
	"errors"
	"net/http"

	"github.com/plumekit/plume/internal/api"
	"github.com/plumekit/plume/internal/apperr"
	"github.com/plumekit/plume/internal/ctxkeys"
	"github.com/plumekit/plume/internal/service"
	"github.com/plumekit/plume/internal/validation"
)

// maxUploadSize bounds uploaded media files.
const maxUploadSize = 50 << 20 // 50 MB

type UploadHandler struct {
	fileService *service.FileService
}

func NewUploadHandler(fileService *service.FileService) *UploadHandler {
	return &UploadHandler{fileService: fileService}
}

// Upload accepts a multipart file and stores it in the blob store. The
// returned file id is what feather payloads reference.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	err := r.ParseMultipartForm(maxUploadSize)
	if err != nil {
		api.Error(w, errors.Join(apperr.ErrValidation, err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		api.Error(w, errors.Join(apperr.ErrValidation, err))
		return
	}
	defer file.Close()

	err = validation.ValidateFile(header,
		validation.ImageConstraints,
		validation.AudioConstraints,
		validation.VideoConstraints,
		validation.DocumentConstraints,
	)
	if err != nil {
		api.Error(w, errors.Join(apperr.ErrValidation, err))
		return
	}

	user := ctxkeys.User(r.Context())
	uploaded, err := h.fileService.Upload(user.ID, file, header)
	if err != nil {
		api.Error(w, err)
		return
	}

	api.JSON(w, http.StatusCreated, uploaded)
}

// List returns the caller's uploaded files.
func (h *UploadHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	files, err := h.fileService.ByUploader(user.ID)
	if err != nil {
		api.Error(w, err)
		return
	}

	api.JSON(w, http.StatusOK, files)
}

func (h *UploadHandler) Show(w http.ResponseWriter, r *http.Request) {
	file, err := h.fileService.ByID(r.PathValue("id"))
	if err != nil {
		api.Error(w, err)
		return
	}

	api.JSON(w, http.StatusOK, file)
}
