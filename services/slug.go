package services

import (
	"crypto/rand"
	"fmt"
)

const (
	// SlugLength is the number of characters in a public survey slug
	SlugLength = 10
	// slugAlphabet matches the URL-safe nanoid default alphabet
	slugAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
)

// GenerateSlug mints a short random URL identifier for a survey
// instance. At 10 characters over a 64-symbol alphabet the collision
// probability is negligible, so there is no retry loop; the unique
// index on url_slug turns the astronomically unlikely collision into a
// store error instead of a routing ambiguity.
func GenerateSlug() (string, error) {
	bytes := make([]byte, SlugLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate slug: %w", err)
	}

	slug := make([]byte, SlugLength)
	for i, b := range bytes {
		slug[i] = slugAlphabet[int(b)%len(slugAlphabet)]
	}
	return string(slug), nil
}
