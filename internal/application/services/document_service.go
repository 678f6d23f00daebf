package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/ntask/core/internal/domain/entities"
	"github.com/ntask/core/internal/infrastructure/logger"
	"github.com/ntask/core/internal/ports"
)

// DocumentService indexes uploaded files: parse through the external
// collaborator, persist, then announce. The parser and the store are
// required collaborators; the webhook is not.
type DocumentService struct {
	documents ports.DocumentRepository
	parser    ports.DocumentParser
	notifier  ports.Notifier
	logger    *logger.Logger
}

// NewDocumentService creates a new document service.
func NewDocumentService(documents ports.DocumentRepository, parser ports.DocumentParser, notifier ports.Notifier, logger *logger.Logger) *DocumentService {
	return &DocumentService{documents: documents, parser: parser, notifier: notifier, logger: logger}
}

// Index parses and stores an uploaded document. Parser absence or failure
// surfaces to the caller; the document_indexed webhook is fire-and-forget.
func (s *DocumentService) Index(ctx context.Context, in ports.IndexDocumentInput) (*ports.IndexDocumentResult, error) {
	if s.parser == nil {
		return nil, entities.ErrParserUnavailable
	}
	if in.AccessLevel == "" {
		in.AccessLevel = entities.AccessPublic
	}

	parsed, err := s.parser.Parse(ctx, in.FileName, in.Contents)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	meta, err := json.Marshal(parsed.Metadata)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}

	doc := &entities.Document{
		ID:                 uuid.NewString(),
		FileName:           in.FileName,
		FilePath:           in.FilePath,
		ParsedMetadata:     meta,
		AccessLevel:        in.AccessLevel,
		AllowedDepartments: in.AllowedDepartments,
	}
	if parsed.FullText != "" {
		text := parsed.FullText
		doc.ParsedText = &text
	}

	if err := s.documents.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("store document: %w", err)
	}

	s.notifier.Notify(ctx, ports.EventDocumentIndexed, map[string]any{
		"documentId":       doc.ID,
		"fileName":         doc.FileName,
		"filePath":         doc.FilePath,
		"accessLevel":      doc.AccessLevel,
		"parsedTextLength": len(parsed.FullText),
	})

	s.logger.Info("Document indexed", "document_id", doc.ID, "file_name", doc.FileName)
	return &ports.IndexDocumentResult{
		Document:         doc,
		ParsedTextLength: len(parsed.FullText),
		Metadata:         parsed.Metadata,
	}, nil
}
