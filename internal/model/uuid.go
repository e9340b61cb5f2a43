package model

import "github.com/google/uuid"

// NewID creates a new random identifier for bookmarks and folders.
func NewID() string {
	return uuid.New().String()
}

// StringPtr returns a pointer to a copy of s.
func StringPtr(s string) *string {
	return &s
}
