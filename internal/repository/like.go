package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/plumekit/plume/internal/apperr"
	"github.com/plumekit/plume/internal/model"
)

var ErrLikeNotFound = errors.New("like not found")

type LikeRepository interface {
	Create(like *model.Like) error
	ByPostAndUser(postID, userID string) (*model.Like, error)
	Delete(postID, userID string) error
	CountByPost(postID string) (int, error)
}

type likeRepository struct {
	db *sqlx.DB
}

func NewLikeRepository(db *sqlx.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) Create(like *model.Like) error {
	query := `INSERT INTO likes (id, post_id, user_id, created_at) VALUES ($1, $2, $3, $4)`

	_, err := r.db.Exec(query, like.ID, like.PostID, like.UserID, like.CreatedAt)
	if isUniqueViolation(err) {
		return apperr.ErrConflict
	}

	return err
}

func (r *likeRepository) ByPostAndUser(postID, userID string) (*model.Like, error) {
	like := &model.Like{}
	query := `SELECT * FROM likes WHERE post_id = $1 AND user_id = $2`

	err := r.db.Get(like, query, postID, userID)
	if err == sql.ErrNoRows {
		return nil, ErrLikeNotFound
	}

	return like, err
}

func (r *likeRepository) Delete(postID, userID string) error {
	result, err := r.db.Exec(`DELETE FROM likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return err
	}

	return rowsAffectedOr(result, ErrLikeNotFound)
}

func (r *likeRepository) CountByPost(postID string) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM likes WHERE post_id = $1`, postID).Scan(&count)
	return count, err
}
