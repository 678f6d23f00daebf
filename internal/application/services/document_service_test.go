package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/ntask/core/internal/domain/entities"
	"github.com/ntask/core/internal/infrastructure/logger"
	"github.com/ntask/core/internal/ports"
)

// fakeParser returns a canned parse result or error.
type fakeParser struct {
	result *ports.ParseResult
	err    error
}

func (p *fakeParser) Parse(ctx context.Context, fileName string, contents []byte) (*ports.ParseResult, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.result, nil
}

func TestIndexDocument(t *testing.T) {
	repo := &fakeDocumentRepo{}
	notifier := &recordingNotifier{}
	parser := &fakeParser{result: &ports.ParseResult{
		FullText: "quarterly revenue grew",
		Metadata: entities.ParseMetadata{
			Pages:  3,
			Tables: []entities.TableMeta{{Page: 2, Rows: 4, Cols: 5}},
		},
	}}
	svc := NewDocumentService(repo, parser, notifier, logger.NewNop())

	result, err := svc.Index(context.Background(), ports.IndexDocumentInput{
		FileName: "q3.pdf",
		FilePath: "/finance/q3.pdf",
		Contents: []byte("%PDF-"),
	})
	if err != nil {
		t.Fatalf("Index() error: %v", err)
	}

	doc := result.Document
	if doc.AccessLevel != entities.AccessPublic {
		t.Errorf("access level = %s, want default public", doc.AccessLevel)
	}
	if doc.ParsedText == nil || *doc.ParsedText != "quarterly revenue grew" {
		t.Errorf("parsed text = %v, want the flattened full text", doc.ParsedText)
	}
	if result.ParsedTextLength != len("quarterly revenue grew") {
		t.Errorf("parsed text length = %d, want %d", result.ParsedTextLength, len("quarterly revenue grew"))
	}

	var meta entities.ParseMetadata
	if err := json.Unmarshal(doc.ParsedMetadata, &meta); err != nil {
		t.Fatalf("metadata not valid JSON: %v", err)
	}
	if meta.Pages != 3 || len(meta.Tables) != 1 || meta.Tables[0].Rows != 4 {
		t.Errorf("metadata = %+v, want 3 pages with one 4x5 table", meta)
	}

	if len(repo.docs) != 1 {
		t.Errorf("documents persisted = %d, want 1", len(repo.docs))
	}
	if len(notifier.events) != 1 || notifier.events[0] != ports.EventDocumentIndexed {
		t.Errorf("webhook events = %v, want [document_indexed]", notifier.events)
	}
}

func TestIndexDocumentEmptyText(t *testing.T) {
	repo := &fakeDocumentRepo{}
	parser := &fakeParser{result: &ports.ParseResult{Metadata: entities.ParseMetadata{Pages: 1}}}
	svc := NewDocumentService(repo, parser, &recordingNotifier{}, logger.NewNop())

	result, err := svc.Index(context.Background(), ports.IndexDocumentInput{
		FileName: "scan.pdf",
		FilePath: "/scans/scan.pdf",
	})
	if err != nil {
		t.Fatalf("Index() error: %v", err)
	}
	if result.Document.ParsedText != nil {
		t.Errorf("parsed text = %v, want nil for an empty parse", result.Document.ParsedText)
	}
}

func TestIndexDocumentNoParser(t *testing.T) {
	svc := NewDocumentService(&fakeDocumentRepo{}, nil, &recordingNotifier{}, logger.NewNop())

	if _, err := svc.Index(context.Background(), ports.IndexDocumentInput{FileName: "x.pdf"}); err != entities.ErrParserUnavailable {
		t.Fatalf("Index() error = %v, want ErrParserUnavailable", err)
	}
}

func TestIndexDocumentParseFailure(t *testing.T) {
	parseErr := errors.New("upstream 502")
	repo := &fakeDocumentRepo{}
	notifier := &recordingNotifier{}
	svc := NewDocumentService(repo, &fakeParser{err: parseErr}, notifier, logger.NewNop())

	if _, err := svc.Index(context.Background(), ports.IndexDocumentInput{FileName: "x.pdf"}); !errors.Is(err, parseErr) {
		t.Fatalf("Index() error = %v, want wrapped parse error", err)
	}
	if len(repo.docs) != 0 {
		t.Error("document persisted despite parse failure")
	}
	if len(notifier.events) != 0 {
		t.Error("webhook fired despite parse failure")
	}
}
