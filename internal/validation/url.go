package validation

import (
	"errors"
	"net/url"
)

// ValidateURL checks that raw is a well-formed absolute http(s) URL
func ValidateURL(raw string) error {
	if raw == "" {
		return errors.New("url is required")
	}

	if len(raw) > 2048 {
		return errors.New("url is too long (max 2048 characters)")
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return errors.New("invalid url format")
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errors.New("url must use http or https")
	}

	if parsed.Host == "" {
		return errors.New("url must include a host")
	}

	return nil
}
