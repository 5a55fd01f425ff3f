package model

import (
	"encoding/json"
	"time"
)

// Feather kinds. A post carries at most one feather, of exactly one kind.
const (
	FeatherText     = "text"
	FeatherPhoto    = "photo"
	FeatherQuote    = "quote"
	FeatherLink     = "link"
	FeatherVideo    = "video"
	FeatherAudio    = "audio"
	FeatherUploader = "uploader"
)

// FeatherKinds is the closed set of supported kinds, in catalog order.
var FeatherKinds = []string{
	FeatherText,
	FeatherPhoto,
	FeatherQuote,
	FeatherLink,
	FeatherVideo,
	FeatherAudio,
	FeatherUploader,
}

func ValidFeatherKind(kind string) bool {
	for _, k := range FeatherKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Feather is the single content variant attached to a post. The kind
// discriminant selects which payload shape the JSON payload column holds.
// UNIQUE(post_id) in the schema guarantees one feather per post.
type Feather struct {
	ID        string          `db:"id" json:"id"`
	PostID    string          `db:"post_id" json:"post_id"`
	Kind      string          `db:"kind" json:"kind"`
	Payload   json.RawMessage `db:"payload" json:"payload"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`

	// Computed, not in database
	Files       []*UploadedFile `db:"-" json:"files,omitempty"`
	HTMLContent string          `db:"-" json:"html_content,omitempty"`
}

type TextPayload struct {
	Content string `json:"content"`
	Format  string `json:"format"` // plain, markdown or html
}

const (
	TextFormatPlain    = "plain"
	TextFormatMarkdown = "markdown"
	TextFormatHTML     = "html"
)

type PhotoPayload struct {
	FileID  string `json:"file_id"`
	Caption string `json:"caption,omitempty"`
	AltText string `json:"alt_text,omitempty"`
	Width   *int   `json:"width,omitempty"`
	Height  *int   `json:"height,omitempty"`
}

type QuotePayload struct {
	Quote  string `json:"quote"`
	Author string `json:"author,omitempty"`
	Source string `json:"source,omitempty"`
}

type LinkPayload struct {
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Thumbnail   string `json:"thumbnail,omitempty"`
}

type VideoPayload struct {
	FileID          string `json:"file_id,omitempty"`
	VideoURL        string `json:"video_url,omitempty"`
	Thumbnail       string `json:"thumbnail,omitempty"`
	Caption         string `json:"caption,omitempty"`
	DurationSeconds *int   `json:"duration_seconds,omitempty"`
}

type AudioPayload struct {
	FileID          string `json:"file_id"`
	Title           string `json:"title,omitempty"`
	Artist          string `json:"artist,omitempty"`
	DurationSeconds *int   `json:"duration_seconds,omitempty"`
}

type UploaderPayload struct {
	Description string `json:"description,omitempty"`
}

// FeatherType is a catalog row describing an available kind to clients. It is
// informational only; nothing ties it to the feathers table.
type FeatherType struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Slug        string    `db:"slug" json:"slug"`
	Description string    `db:"description" json:"description"`
	Icon        string    `db:"icon" json:"icon"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
