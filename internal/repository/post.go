package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/plumekit/plume/internal/apperr"
	"github.com/plumekit/plume/internal/model"
)

var ErrPostNotFound = errors.New("post not found")

// PostFilter narrows the post list. Zero values mean "no filter".
type PostFilter struct {
	Status   string
	Tag      string // tag slug
	Category string // category slug
	Author   string // username
	Featured bool
	Search   string
	Limit    int
	Offset   int
}

type PostRepository interface {
	Create(post *model.Post) error
	ByID(id string) (*model.Post, error)
	ByIDAndAuthor(id, authorID string) (*model.Post, error)
	BySlug(slug string) (*model.Post, error)
	List(filter PostFilter) ([]*model.Post, error)
	Update(post *model.Post) error
	Delete(id string) error
	IncrementViewCount(id string) error
	SetLikeCount(id string, count int) error
	SetCommentCount(id string, count int) error
	SetTags(postID string, tagIDs []string) error
	Tags(postID string) ([]*model.Tag, error)
}

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(post *model.Post) error {
	query := `INSERT INTO posts (id, author_id, category_id, title, slug, excerpt, status, is_featured, allow_comments,
	                             view_count, like_count, comment_count, published_at, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.db.Exec(query,
		post.ID,
		post.AuthorID,
		post.CategoryID,
		post.Title,
		post.Slug,
		post.Excerpt,
		post.Status,
		post.IsFeatured,
		post.AllowComments,
		post.ViewCount,
		post.LikeCount,
		post.CommentCount,
		post.PublishedAt,
		post.CreatedAt,
		post.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return apperr.ErrConflict
	}

	return err
}

func (r *postRepository) ByID(id string) (*model.Post, error) {
	post := &model.Post{}
	query := `SELECT * FROM posts WHERE id = $1`

	err := r.db.Get(post, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrPostNotFound
	}

	return post, err
}

func (r *postRepository) ByIDAndAuthor(id, authorID string) (*model.Post, error) {
	post := &model.Post{}
	query := `SELECT * FROM posts WHERE id = $1 AND author_id = $2`

	err := r.db.Get(post, query, id, authorID)
	if err == sql.ErrNoRows {
		return nil, ErrPostNotFound
	}

	return post, err
}

func (r *postRepository) BySlug(slug string) (*model.Post, error) {
	post := &model.Post{}
	query := `SELECT * FROM posts WHERE slug = $1`

	err := r.db.Get(post, query, slug)
	if err == sql.ErrNoRows {
		return nil, ErrPostNotFound
	}

	return post, err
}

func (r *postRepository) List(filter PostFilter) ([]*model.Post, error) {
	query := `SELECT DISTINCT p.* FROM posts p`
	var where []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Tag != "" {
		query += ` JOIN post_tags pt ON pt.post_id = p.id JOIN tags t ON t.id = pt.tag_id`
		where = append(where, "t.slug = "+arg(filter.Tag))
	}
	if filter.Category != "" {
		query += ` JOIN categories c ON c.id = p.category_id`
		where = append(where, "c.slug = "+arg(filter.Category))
	}
	if filter.Author != "" {
		query += ` JOIN users u ON u.id = p.author_id`
		where = append(where, "u.username = "+arg(filter.Author))
	}
	if filter.Status != "" {
		where = append(where, "p.status = "+arg(filter.Status))
	}
	if filter.Featured {
		where = append(where, "p.is_featured = TRUE")
	}
	if filter.Search != "" {
		pattern := arg("%" + filter.Search + "%")
		where = append(where, "(p.title LIKE "+pattern+" OR p.excerpt LIKE "+pattern+")")
	}

	for i, clause := range where {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}

	query += " ORDER BY p.created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET " + arg(filter.Offset)
		}
	}

	var posts []*model.Post
	err := r.db.Select(&posts, query, args...)
	if err != nil {
		return nil, err
	}

	return posts, nil
}

func (r *postRepository) Update(post *model.Post) error {
	query := `UPDATE posts
	          SET category_id = $1, title = $2, slug = $3, excerpt = $4, status = $5, is_featured = $6,
	              allow_comments = $7, published_at = $8, updated_at = $9
	          WHERE id = $10`

	result, err := r.db.Exec(query,
		post.CategoryID,
		post.Title,
		post.Slug,
		post.Excerpt,
		post.Status,
		post.IsFeatured,
		post.AllowComments,
		post.PublishedAt,
		time.Now(),
		post.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.ErrConflict
		}
		return err
	}

	return rowsAffectedOr(result, ErrPostNotFound)
}

func (r *postRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}

	return rowsAffectedOr(result, ErrPostNotFound)
}

func (r *postRepository) IncrementViewCount(id string) error {
	_, err := r.db.Exec(`UPDATE posts SET view_count = view_count + 1 WHERE id = $1`, id)
	return err
}

func (r *postRepository) SetLikeCount(id string, count int) error {
	_, err := r.db.Exec(`UPDATE posts SET like_count = $1 WHERE id = $2`, count, id)
	return err
}

func (r *postRepository) SetCommentCount(id string, count int) error {
	_, err := r.db.Exec(`UPDATE posts SET comment_count = $1 WHERE id = $2`, count, id)
	return err
}

func (r *postRepository) SetTags(postID string, tagIDs []string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`DELETE FROM post_tags WHERE post_id = $1`, postID)
	if err != nil {
		return err
	}

	for _, tagID := range tagIDs {
		_, err = tx.Exec(`INSERT INTO post_tags (post_id, tag_id) VALUES ($1, $2)`, postID, tagID)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *postRepository) Tags(postID string) ([]*model.Tag, error) {
	var tags []*model.Tag
	query := `SELECT t.* FROM tags t JOIN post_tags pt ON pt.tag_id = t.id WHERE pt.post_id = $1 ORDER BY t.name`

	err := r.db.Select(&tags, query, postID)
	if err != nil {
		return nil, err
	}

	return tags, nil
}

// rowsAffectedOr returns notFound when the statement matched no rows.
func rowsAffectedOr(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
