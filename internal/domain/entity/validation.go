package entity

import (
	"fmt"
	"net/url"
	"slices"
)

// maxURLLength bounds configured URLs.
const maxURLLength = 2048

// ValidateURL checks that rawURL is a well-formed absolute URL whose scheme is
// one of schemes. field names the configuration key in the returned error.
// An empty URL is reported as missing; callers decide whether that is allowed.
func ValidateURL(field, rawURL string, schemes ...string) error {
	if rawURL == "" {
		return &ValidationError{Field: field, Message: "URL is required"}
	}

	if len(rawURL) > maxURLLength {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("url must not exceed %d characters", maxURLLength),
		}
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return &ValidationError{Field: field, Message: "URL cannot be parsed: " + err.Error()}
	}

	if !slices.Contains(schemes, parsedURL.Scheme) {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("URL scheme must be one of %v, got %q", schemes, parsedURL.Scheme),
		}
	}

	if parsedURL.Host == "" {
		return &ValidationError{Field: field, Message: "URL must have a valid host"}
	}

	return nil
}
