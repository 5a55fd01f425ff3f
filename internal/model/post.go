package model

import (
	"time"
)

const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
)

type Post struct {
	ID            string     `db:"id" json:"id"`
	AuthorID      string     `db:"author_id" json:"author_id"`
	CategoryID    *string    `db:"category_id" json:"category_id,omitempty"`
	Title         string     `db:"title" json:"title"`
	Slug          string     `db:"slug" json:"slug"`
	Excerpt       string     `db:"excerpt" json:"excerpt"`
	Status        string     `db:"status" json:"status"`
	IsFeatured    bool       `db:"is_featured" json:"is_featured"`
	AllowComments bool       `db:"allow_comments" json:"allow_comments"`
	ViewCount     int        `db:"view_count" json:"view_count"`
	LikeCount     int        `db:"like_count" json:"like_count"`
	CommentCount  int        `db:"comment_count" json:"comment_count"`
	PublishedAt   *time.Time `db:"published_at" json:"published_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`

	// Computed, not in database
	Author  *User    `db:"-" json:"author,omitempty"`
	Tags    []*Tag   `db:"-" json:"tags,omitempty"`
	Feather *Feather `db:"-" json:"feather,omitempty"`
}

type Category struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Slug        string    `db:"slug" json:"slug"`
	Description string    `db:"description" json:"description"`
	Color       string    `db:"color" json:"color"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type Tag struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Slug      string    `db:"slug" json:"slug"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Comment struct {
	ID        string    `db:"id" json:"id"`
	PostID    string    `db:"post_id" json:"post_id"`
	AuthorID  string    `db:"author_id" json:"author_id"`
	ParentID  *string   `db:"parent_id" json:"parent_id,omitempty"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	// Computed, not in database
	Author  *User      `db:"-" json:"author,omitempty"`
	Replies []*Comment `db:"-" json:"replies"`
}

type Like struct {
	ID        string    `db:"id" json:"id"`
	PostID    string    `db:"post_id" json:"post_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
