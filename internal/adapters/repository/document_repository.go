package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ntask/core/internal/domain/entities"
	"github.com/ntask/core/internal/ports"
)

// DocumentRepositoryImpl implements the DocumentRepository interface on
// Postgres. Search uses full-text ranking over the parsed text.
type DocumentRepositoryImpl struct {
	db *sqlx.DB
}

// NewDocumentRepository creates a new document repository.
func NewDocumentRepository(db *sqlx.DB) ports.DocumentRepository {
	return &DocumentRepositoryImpl{db: db}
}

func (r *DocumentRepositoryImpl) Create(ctx context.Context, doc *entities.Document) error {
	query := `
		INSERT INTO documents (id, file_name, file_path, parsed_text, parsed_metadata, access_level, allowed_departments)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		doc.ID, doc.FileName, doc.FilePath, doc.ParsedText, doc.ParsedMetadata,
		doc.AccessLevel, pq.Array(doc.AllowedDepartments),
	).Scan(&doc.CreatedAt, &doc.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}

	return nil
}

func (r *DocumentRepositoryImpl) GetByID(ctx context.Context, id string) (*entities.Document, error) {
	query := `
		SELECT id, file_name, file_path, parsed_text, parsed_metadata, access_level,
			allowed_departments, created_at, updated_at
		FROM documents
		WHERE id = $1`

	var doc entities.Document
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&doc.ID, &doc.FileName, &doc.FilePath, &doc.ParsedText, &doc.ParsedMetadata,
		&doc.AccessLevel, pq.Array(&doc.AllowedDepartments), &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("get document by id: %w", err)
	}

	return &doc, nil
}

// Search ranks documents against the keyword with ts_rank. When a
// department is given, only public documents and documents allowing that
// department are visible.
func (r *DocumentRepositoryImpl) Search(ctx context.Context, filter ports.DocumentSearchFilter) ([]entities.SearchResult, error) {
	query := `
		SELECT id, file_name, file_path, parsed_text, parsed_metadata, access_level,
			allowed_departments, created_at, updated_at,
			ts_rank(to_tsvector('english', coalesce(parsed_text, '')), plainto_tsquery('english', $1)) AS relevance
		FROM documents
		WHERE to_tsvector('english', coalesce(parsed_text, '')) @@ plainto_tsquery('english', $1)`

	args := []interface{}{filter.Keyword}
	idx := 2

	if filter.Department != nil {
		query += fmt.Sprintf(" AND (access_level = 'public' OR $%d = ANY(allowed_departments))", idx)
		args = append(args, *filter.Department)
		idx++
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	query += fmt.Sprintf(" ORDER BY relevance DESC LIMIT $%d", idx)
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}
	defer rows.Close()

	var results []entities.SearchResult
	for rows.Next() {
		var res entities.SearchResult
		doc := &res.Document
		if err := rows.Scan(
			&doc.ID, &doc.FileName, &doc.FilePath, &doc.ParsedText, &doc.ParsedMetadata,
			&doc.AccessLevel, pq.Array(&doc.AllowedDepartments), &doc.CreatedAt, &doc.UpdatedAt,
			&res.Relevance,
		); err != nil {
			return nil, fmt.Errorf("scan search result: %w", err)
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}

	return results, nil
}

func (r *DocumentRepositoryImpl) Update(ctx context.Context, doc *entities.Document) error {
	query := `
		UPDATE documents
		SET file_name = $2, file_path = $3, parsed_text = $4, parsed_metadata = $5,
			access_level = $6, allowed_departments = $7, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		doc.ID, doc.FileName, doc.FilePath, doc.ParsedText, doc.ParsedMetadata,
		doc.AccessLevel, pq.Array(doc.AllowedDepartments),
	).Scan(&doc.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entities.ErrDocumentNotFound
		}
		return fmt.Errorf("update document: %w", err)
	}

	return nil
}
