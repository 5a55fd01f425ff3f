package validation

import (
	"errors"
	"net/mail"
)

// ValidateEmail checks shape and length. net/mail implements RFC 5322
// address parsing, which beats any regex we would maintain ourselves.
func ValidateEmail(email string) error {
	if email == "" {
		return errors.New("email address is required")
	}

	// RFC 5321 caps a deliverable address at 254 octets.
	if len(email) > 254 {
		return errors.New("email address is too long (max 254 characters)")
	}

	_, err := mail.ParseAddress(email)
	if err != nil {
		return errors.New("invalid email address format")
	}

	return nil
}
