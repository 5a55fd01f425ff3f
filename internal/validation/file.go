package validation

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

// FileConstraints defines validation rules for file uploads
type FileConstraints struct {
	AllowedMimeTypes  map[string]bool
	AllowedExtensions map[string]bool
	MaxSize           int64
}

var (
	// ImageConstraints covers photo feather uploads
	ImageConstraints = FileConstraints{
		AllowedMimeTypes: map[string]bool{
			"image/jpeg": true,
			"image/png":  true,
			"image/gif":  true,
			"image/webp": true,
		},
		AllowedExtensions: map[string]bool{
			".jpg":  true,
			".jpeg": true,
			".png":  true,
			".gif":  true,
			".webp": true,
		},
		MaxSize: 10 << 20, // 10MB
	}

	// AudioConstraints covers audio feather uploads
	AudioConstraints = FileConstraints{
		AllowedMimeTypes: map[string]bool{
			"audio/mpeg": true,
			"audio/wave": true,
			"audio/ogg":  true,
			"audio/aiff": true,
		},
		AllowedExtensions: map[string]bool{
			".mp3": true,
			".wav": true,
			".ogg": true,
			".aif": true,
		},
		MaxSize: 50 << 20, // 50MB
	}

	// VideoConstraints covers video feather uploads
	VideoConstraints = FileConstraints{
		AllowedMimeTypes: map[string]bool{
			"video/mp4":  true,
			"video/webm": true,
			"video/avi":  true,
		},
		AllowedExtensions: map[string]bool{
			".mp4":  true,
			".webm": true,
			".avi":  true,
			".mov":  true,
		},
		MaxSize: 50 << 20, // 50MB
	}

	// DocumentConstraints covers uploader feather attachments
	DocumentConstraints = FileConstraints{
		AllowedMimeTypes: map[string]bool{
			"application/pdf":           true,
			"application/zip":           true,
			"text/plain; charset=utf-8": true,
		},
		AllowedExtensions: map[string]bool{
			".pdf": true,
			".zip": true,
			".txt": true,
			".md":  true,
		},
		MaxSize: 20 << 20, // 20MB
	}
)

// ValidateFile validates a file upload against one or more constraint sets.
// With multiple constraints the file must match at least one.
func ValidateFile(header *multipart.FileHeader, constraints ...FileConstraints) error {
	if len(constraints) == 0 {
		return fmt.Errorf("no file constraints provided")
	}

	var lastErr error
	for _, constraint := range constraints {
		err := validateAgainstConstraint(header, constraint)
		if err == nil {
			return nil
		}
		lastErr = err
	}

	return lastErr
}

// validateAgainstConstraint validates a file against a single constraint set
func validateAgainstConstraint(header *multipart.FileHeader, constraints FileConstraints) error {
	// Check file size first (before reading content)
	if header.Size > constraints.MaxSize {
		maxMB := constraints.MaxSize / (1 << 20)
		return fmt.Errorf("file too large: maximum size is %d MB", maxMB)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !constraints.AllowedExtensions[ext] {
		return fmt.Errorf("invalid file extension: %s", ext)
	}

	// Open file to read magic numbers
	file, err := header.Open()
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// http.DetectContentType reads max 512 bytes to determine MIME type
	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read file: %w", err)
	}

	// Reset file pointer to beginning for later use
	seeker, ok := file.(io.Seeker)
	if ok {
		_, err = seeker.Seek(0, 0)
		if err != nil {
			return fmt.Errorf("failed to reset file pointer: %w", err)
		}
	}

	// The detected type cannot be faked by changing the Content-Type header.
	// Media containers Go cannot sniff come back as octet-stream and pass on
	// the extension check alone.
	detectedType := http.DetectContentType(buffer[:n])
	if detectedType == "application/octet-stream" {
		return nil
	}
	if !constraints.AllowedMimeTypes[detectedType] {
		return fmt.Errorf("invalid file type (detected: %s)", detectedType)
	}

	return nil
}
