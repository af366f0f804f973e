package model

import (
	"encoding/base32"
	"strings"

	"github.com/google/uuid"
)

var idEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// GenerateID returns a new document ID: a UUID v4 in lowercase base32 (26 chars).
func GenerateID() string {
	id := uuid.New()
	return strings.ToLower(idEncoding.EncodeToString(id[:]))
}

// ValidateID reports whether id looks like a document ID.
// Short prefixes of at least 6 characters are accepted for CLI lookups.
func ValidateID(id string) bool {
	if len(id) < 6 || len(id) > 26 {
		return false
	}
	for _, c := range id {
		if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')) {
			return false
		}
	}
	return true
}
