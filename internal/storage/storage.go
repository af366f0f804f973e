package storage

import (
	"context"

	"github.com/bunchhieng/docsearch/internal/model"
	"github.com/bunchhieng/docsearch/internal/objstore"
)

// Storage defines the interface for the document corpus.
type Storage interface {
	// Add creates a document or updates the one with the same URL.
	Add(ctx context.Context, doc *model.Document) (*model.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, id string) (*model.Document, error)

	// List retrieves documents with optional filters, newest first.
	List(ctx context.Context, opts ListOptions) ([]*model.Document, error)

	// Delete removes a document by ID.
	Delete(ctx context.Context, id string) error

	// Export returns all documents.
	Export(ctx context.Context) ([]*model.Document, error)

	// Import upserts documents by URL.
	Import(ctx context.Context, docs []*model.Document) error

	// Search performs a ranked full-text search.
	Search(ctx context.Context, query string) ([]*model.Document, error)

	// KV returns a key/value backend scoped to namespace.
	KV(namespace string) objstore.Backend

	// Close closes the storage connection.
	Close() error
}

// ListOptions specifies filtering options for List.
type ListOptions struct {
	Tag   string
	Limit int
}
