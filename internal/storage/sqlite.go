package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bunchhieng/docsearch/internal/model"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SearchLimit caps the number of hits returned by Search.
const SearchLimit = 20

const documentColumns = "id, url, title, content, tags, created_at"

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sqlx.DB
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	inMemory := dbPath == ":memory:"
	if !inMemory {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	var dsn string
	if inMemory {
		dsn = dbPath + "?_pragma=journal_mode(DELETE)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)"
	} else {
		dsn = dbPath + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)"
	}

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if inMemory {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(context.Background(), db.DB); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

type documentRow struct {
	ID        string `db:"id"`
	URL       string `db:"url"`
	Title     string `db:"title"`
	Content   string `db:"content"`
	Tags      string `db:"tags"`
	CreatedAt string `db:"created_at"`
}

func (r *documentRow) toDocument() *model.Document {
	return &model.Document{
		ID:        r.ID,
		URL:       r.URL,
		Title:     r.Title,
		Content:   r.Content,
		Tags:      r.Tags,
		CreatedAt: parseSQLiteTime(r.CreatedAt),
	}
}

func rowsToDocuments(rows []documentRow) []*model.Document {
	docs := make([]*model.Document, len(rows))
	for i := range rows {
		docs[i] = rows[i].toDocument()
	}
	return docs
}

func (s *SQLiteStorage) getByURL(ctx context.Context, url string) (*model.Document, error) {
	var row documentRow
	err := s.db.GetContext(ctx, &row,
		"SELECT "+documentColumns+" FROM documents WHERE url = ?", url)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document by url: %w", err)
	}
	return row.toDocument(), nil
}

// Add creates a new document or updates an existing one with the same URL.
// Non-empty title and content replace the stored ones; tags are merged.
func (s *SQLiteStorage) Add(ctx context.Context, doc *model.Document) (*model.Document, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.getByURL(ctx, doc.URL)
	switch {
	case err == nil:
		if doc.Title != "" {
			existing.Title = doc.Title
		}
		if doc.Content != "" {
			existing.Content = doc.Content
		}
		existing.MergeTags(doc)

		_, err = s.db.ExecContext(ctx,
			"UPDATE documents SET title = ?, content = ?, tags = ? WHERE id = ?",
			existing.Title, existing.Content, existing.Tags, existing.ID)
		if err != nil {
			return nil, fmt.Errorf("update document: %w", err)
		}
		return s.Get(ctx, existing.ID)

	case !errors.Is(err, model.ErrNotFound):
		return nil, fmt.Errorf("check existing document: %w", err)
	}

	created := *doc
	created.ID = model.GenerateID()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}
	created.CreatedAt = created.CreatedAt.Truncate(time.Second)

	if err := s.insert(ctx, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *SQLiteStorage) insert(ctx context.Context, doc *model.Document) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO documents ("+documentColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		doc.ID, doc.URL, doc.Title, doc.Content, doc.Tags, doc.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert document %s: %w", doc.URL, err)
	}
	return nil
}

// Get retrieves a document by ID or by a unique ID prefix.
func (s *SQLiteStorage) Get(ctx context.Context, id string) (*model.Document, error) {
	if !model.ValidateID(id) {
		return nil, model.ErrInvalidID
	}
	var rows []documentRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT "+documentColumns+" FROM documents WHERE id LIKE ? ORDER BY id LIMIT 2",
		strings.ToLower(id)+"%")
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	switch len(rows) {
	case 0:
		return nil, model.ErrNotFound
	case 1:
		return rows[0].toDocument(), nil
	}
	return nil, fmt.Errorf("%w: %s", model.ErrAmbiguousID, id)
}

// List retrieves documents with optional filters.
func (s *SQLiteStorage) List(ctx context.Context, opts ListOptions) ([]*model.Document, error) {
	query := "SELECT " + documentColumns + " FROM documents WHERE 1=1"
	args := []interface{}{}

	if opts.Tag != "" {
		query += " AND (',' || tags || ',') LIKE ?"
		args = append(args, "%,"+opts.Tag+",%")
	}

	query += " ORDER BY created_at DESC, rowid DESC"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	var rows []documentRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return rowsToDocuments(rows), nil
}

// Delete removes a document by ID or by a unique ID prefix.
func (s *SQLiteStorage) Delete(ctx context.Context, id string) error {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", doc.ID)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return checkRowsAffected(result)
}

func checkRowsAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

// Export returns all documents for export.
func (s *SQLiteStorage) Export(ctx context.Context) ([]*model.Document, error) {
	return s.List(ctx, ListOptions{})
}

// Import upserts documents by URL inside a single transaction. Stored
// titles and content win over imported ones; tags are merged.
func (s *SQLiteStorage) Import(ctx context.Context, docs []*model.Document) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	for _, doc := range docs {
		if err := doc.Validate(); err != nil {
			return fmt.Errorf("import %q: %w", doc.URL, err)
		}

		var row documentRow
		err := tx.GetContext(ctx, &row,
			"SELECT "+documentColumns+" FROM documents WHERE url = ?", doc.URL)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			id := strings.ToLower(doc.ID)
			if !model.ValidateID(id) {
				id = model.GenerateID()
			}
			createdAt := doc.CreatedAt
			if createdAt.IsZero() {
				createdAt = time.Now().UTC()
			}
			_, err = tx.ExecContext(ctx,
				"INSERT INTO documents ("+documentColumns+") VALUES (?, ?, ?, ?, ?, ?)",
				id, doc.URL, doc.Title, doc.Content, doc.Tags, createdAt.Format(time.RFC3339))
			if err != nil {
				return fmt.Errorf("insert document %s: %w", doc.URL, err)
			}

		case err != nil:
			return fmt.Errorf("check existing document %s: %w", doc.URL, err)

		default:
			existing := row.toDocument()
			if existing.Title == "" {
				existing.Title = doc.Title
			}
			if existing.Content == "" {
				existing.Content = doc.Content
			}
			existing.MergeTags(doc)

			_, err = tx.ExecContext(ctx,
				"UPDATE documents SET title = ?, content = ?, tags = ? WHERE id = ?",
				existing.Title, existing.Content, existing.Tags, existing.ID)
			if err != nil {
				return fmt.Errorf("merge document %s: %w", doc.URL, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}

// Search performs a prefix full-text search across title, content, tags
// and URL, ranked by bm25.
func (s *SQLiteStorage) Search(ctx context.Context, query string) ([]*model.Document, error) {
	match := ftsQuery(query)
	if match == "" {
		return []*model.Document{}, nil
	}

	var rows []documentRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT d.id, d.url, d.title, d.content, d.tags, d.created_at
		FROM documents d
		INNER JOIN documents_fts ON d.rowid = documents_fts.rowid
		WHERE documents_fts MATCH ?
		ORDER BY bm25(documents_fts)
		LIMIT ?
	`, match, SearchLimit)
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}
	return rowsToDocuments(rows), nil
}

// ftsQuery turns free text into an FTS5 expression: every term quoted and
// prefix-matched, all terms required.
func ftsQuery(q string) string {
	fields := strings.Fields(q)
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ReplaceAll(f, `"`, `""`)
		terms = append(terms, `"`+f+`"*`)
	}
	return strings.Join(terms, " ")
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func parseSQLiteTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t
	}
	return time.Time{}
}
