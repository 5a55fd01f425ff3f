package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/plumekit/plume/internal/model"
)

var ErrChallengeNotFound = errors.New("challenge not found")

type MAPTCHARepository interface {
	Create(challenge *model.MAPTCHAChallenge) error
	ByID(id string) (*model.MAPTCHAChallenge, error)
	Consume(id string) (bool, error)
}

type maptchaRepository struct {
	db *sqlx.DB
}

func NewMAPTCHARepository(db *sqlx.DB) MAPTCHARepository {
	return &maptchaRepository{db: db}
}

func (r *maptchaRepository) Create(challenge *model.MAPTCHAChallenge) error {
	query := `INSERT INTO maptcha_challenges (id, question, answer, used, expires_at, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(query,
		challenge.ID,
		challenge.Question,
		challenge.Answer,
		challenge.Used,
		challenge.ExpiresAt,
		challenge.CreatedAt,
	)

	return err
}

func (r *maptchaRepository) ByID(id string) (*model.MAPTCHAChallenge, error) {
	challenge := &model.MAPTCHAChallenge{}
	query := `SELECT * FROM maptcha_challenges WHERE id = $1`

	err := r.db.Get(challenge, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrChallengeNotFound
	}

	return challenge, err
}

// Consume flips used from false to true. The conditional update is the
// serialization point: of two concurrent verifies, exactly one sees a row
// flip and gets true; the other gets false.
func (r *maptchaRepository) Consume(id string) (bool, error) {
	result, err := r.db.Exec(`UPDATE maptcha_challenges SET used = TRUE WHERE id = $1 AND used = FALSE`, id)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows == 1, nil
}
