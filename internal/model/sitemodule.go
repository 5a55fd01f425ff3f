package model

import (
	"time"
)

// Module is a catalog row for an installable site module (cacher, sitemap,
// mentionable, maptcha, ...).
type Module struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Slug        string    `db:"slug" json:"slug"`
	Description string    `db:"description" json:"description"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	IsInstalled bool      `db:"is_installed" json:"is_installed"`
	Version     string    `db:"version" json:"version"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type Theme struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Slug        string    `db:"slug" json:"slug"`
	Description string    `db:"description" json:"description"`
	Author      string    `db:"author" json:"author"`
	Version     string    `db:"version" json:"version"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	IsDefault   bool      `db:"is_default" json:"is_default"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// WebMention records an incoming mention of one of our URLs by an external
// source. The (source, target) pair is unique.
type WebMention struct {
	ID          string    `db:"id" json:"id"`
	Source      string    `db:"source" json:"source"`
	Target      string    `db:"target" json:"target"`
	PostID      *string   `db:"post_id" json:"post_id,omitempty"`
	Title       string    `db:"title" json:"title"`
	Content     string    `db:"content" json:"content"`
	AuthorName  string    `db:"author_name" json:"author_name"`
	AuthorURL   string    `db:"author_url" json:"author_url"`
	AuthorPhoto string    `db:"author_photo" json:"author_photo"`
	IsApproved  bool      `db:"is_approved" json:"is_approved"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// PostRights holds copyright and attribution metadata, one-to-one with a post.
type PostRights struct {
	ID          string    `db:"id" json:"id"`
	PostID      string    `db:"post_id" json:"post_id"`
	Copyright   string    `db:"copyright" json:"copyright"`
	License     string    `db:"license" json:"license"`
	Attribution string    `db:"attribution" json:"attribution"`
	UsageTerms  string    `db:"usage_terms" json:"usage_terms"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
