package model

import (
	"time"
)

// MAPTCHAChallenge is a one-shot arithmetic human-verification challenge. The
// answer never leaves the server; Used flips exactly once via a compare-and-set
// update regardless of whether the submitted answer was correct.
type MAPTCHAChallenge struct {
	ID        string    `db:"id" json:"id"`
	Question  string    `db:"question" json:"question"`
	Answer    int       `db:"answer" json:"-"`
	Used      bool      `db:"used" json:"used"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func (c *MAPTCHAChallenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
