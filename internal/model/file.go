package model

import (
	"encoding/json"
	"fmt"
	"time"
)

type UploadedFile struct {
	ID           string    `db:"id" json:"id"`
	UploaderID   string    `db:"uploader_id" json:"uploader_id"`
	Filename     string    `db:"filename" json:"filename"`
	OriginalName string    `db:"original_name" json:"original_name"`
	MimeType     string    `db:"mime_type" json:"mime_type"`
	Size         int64     `db:"size" json:"size"`
	StoragePath  string    `db:"storage_path" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"uploaded_at"`

	// Computed, not in database
	URL string `db:"-" json:"url,omitempty"`
}

// MarshalJSON adds the derived human-readable size next to the raw byte
// count, so clients never reimplement the formatting.
func (f *UploadedFile) MarshalJSON() ([]byte, error) {
	type uploadedFile UploadedFile
	return json.Marshal(struct {
		*uploadedFile
		HumanSize string `json:"human_size"`
	}{(*uploadedFile)(f), f.HumanSize()})
}

// HumanSize renders the byte size with the first unit that keeps the value
// under 1024, one decimal place. Sizes of a terabyte and up stay in TB.
func (f *UploadedFile) HumanSize() string {
	return HumanSize(f.Size)
}

func HumanSize(size int64) string {
	value := float64(size)
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if value < 1024.0 {
			return fmt.Sprintf("%.1f %s", value, unit)
		}
		value /= 1024.0
	}
	return fmt.Sprintf("%.1f TB", value)
}
