package uuid

import (
	googleuuid "github.com/google/uuid"
)

// New returns a time-ordered UUIDv7 string, suitable for primary keys
// because consecutive IDs sort by creation time.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		// Entropy failure: fall back to a random v4.
		return googleuuid.New().String()
	}
	return id.String()
}

// Parse validates and normalises a UUID string.
func Parse(s string) (string, error) {
	parsed, err := googleuuid.Parse(s)
	if err != nil {
		return "", err
	}
	return parsed.String(), nil
}

// IsValid checks if a string is a valid UUID
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}
