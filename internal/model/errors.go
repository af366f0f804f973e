package model

import "errors"

var (
	// ErrNotFound indicates a document was not found.
	ErrNotFound = errors.New("document not found")

	// ErrInvalidURL indicates an invalid URL was provided.
	ErrInvalidURL = errors.New("invalid URL")

	// ErrInvalidID indicates a malformed document ID.
	ErrInvalidID = errors.New("invalid ID format")

	// ErrAmbiguousID indicates an ID prefix matching several documents.
	ErrAmbiguousID = errors.New("ambiguous ID prefix")

	// ErrEmptyQuery indicates a search or question with no text.
	ErrEmptyQuery = errors.New("empty query")
)
