package service

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/plumekit/plume/internal/apperr"
	"github.com/plumekit/plume/internal/model"
	"github.com/plumekit/plume/internal/repository"
)

// MAPTCHAExpiry is the validity window of a generated challenge.
const MAPTCHAExpiry = 10 * time.Minute

// MAPTCHAService generates and verifies one-shot arithmetic challenges.
type MAPTCHAService struct {
	repo repository.MAPTCHARepository
	rand *rand.Rand
	now  func() time.Time
}

func NewMAPTCHAService(repo repository.MAPTCHARepository) *MAPTCHAService {
	return &MAPTCHAService{
		repo: repo,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
		now:  time.Now,
	}
}

type maptchaOp struct {
	symbol string
	apply  func(a, b int) int
}

var maptchaOps = []maptchaOp{
	{"+", func(a, b int) int { return a + b }},
	{"-", func(a, b int) int { return a - b }},
	{"*", func(a, b int) int { return a * b }},
}

// Generate builds a random challenge with operands in [1,20]. Subtraction
// operands are swapped so the answer is never negative. The answer stays
// server-side.
func (s *MAPTCHAService) Generate() (*model.MAPTCHAChallenge, error) {
	op := maptchaOps[s.rand.Intn(len(maptchaOps))]
	a := s.rand.Intn(20) + 1
	b := s.rand.Intn(20) + 1

	if op.symbol == "-" && b > a {
		a, b = b, a
	}

	now := s.now()
	challenge := &model.MAPTCHAChallenge{
		ID:        uuid.New().String(),
		Question:  fmt.Sprintf("%d %s %d = ?", a, op.symbol, b),
		Answer:    op.apply(a, b),
		Used:      false,
		ExpiresAt: now.Add(MAPTCHAExpiry),
		CreatedAt: now,
	}

	err := s.repo.Create(challenge)
	if err != nil {
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}

	return challenge, nil
}

// Verify consumes the challenge and reports whether answer matches. The
// challenge is consumed on the first verify regardless of correctness; a
// wrong answer does not grant a retry. Expired challenges are left untouched.
func (s *MAPTCHAService) Verify(id string, answer int) (bool, error) {
	challenge, err := s.repo.ByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrChallengeNotFound) {
			return false, fmt.Errorf("%w: invalid challenge", apperr.ErrValidation)
		}
		return false, err
	}

	if challenge.Expired(s.now()) {
		return false, fmt.Errorf("%w: challenge expired", apperr.ErrExpired)
	}

	consumed, err := s.repo.Consume(id)
	if err != nil {
		return false, err
	}
	if !consumed {
		return false, fmt.Errorf("%w: challenge already used", apperr.ErrAlreadyUsed)
	}

	return answer == challenge.Answer, nil
}
