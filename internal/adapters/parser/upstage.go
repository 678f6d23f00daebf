package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"
	"time"

	"github.com/ntask/core/internal/domain/entities"
	"github.com/ntask/core/internal/infrastructure/config"
	"github.com/ntask/core/internal/infrastructure/logger"
	"github.com/ntask/core/internal/ports"
)

const defaultEndpoint = "https://api.upstage.ai/v1/document-ai/document-parse"

// UpstageClient calls the Upstage document-parse API and flattens its
// response into full text plus page/table metadata.
type UpstageClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
	logger   *logger.Logger
}

// apiResponse mirrors the fields of the parse API we consume.
type apiResponse struct {
	Content struct {
		Pages []struct {
			Text string `json:"text"`
		} `json:"pages"`
		Tables []struct {
			Page int `json:"page"`
			Data struct {
				Rows int `json:"rows"`
				Cols int `json:"cols"`
			} `json:"data"`
		} `json:"tables"`
	} `json:"content"`
}

// New creates an Upstage client, or nil when no API key is configured.
func New(cfg config.ParserConfig, log *logger.Logger) *UpstageClient {
	if cfg.APIKey == "" {
		log.Warn("Parser API key not configured, document indexing disabled")
		return nil
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &UpstageClient{
		endpoint: endpoint,
		apiKey:   cfg.APIKey,
		client:   &http.Client{Timeout: timeout},
		logger:   log,
	}
}

// Parse uploads the file and returns the flattened parse result: page
// texts joined into one full text, plus page and table structure.
func (c *UpstageClient) Parse(ctx context.Context, fileName string, contents []byte) (*ports.ParseResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="document"; filename=%q`, fileName))
	header.Set("Content-Type", MimeType(fileName))
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}
	if _, err := part.Write(contents); err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call parser: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("parser returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode parser response: %w", err)
	}

	return flatten(&parsed), nil
}

func flatten(parsed *apiResponse) *ports.ParseResult {
	var text strings.Builder
	for _, page := range parsed.Content.Pages {
		text.WriteString(page.Text)
		text.WriteString("\n")
	}

	tables := make([]entities.TableMeta, 0, len(parsed.Content.Tables))
	for _, t := range parsed.Content.Tables {
		tables = append(tables, entities.TableMeta{
			Page: t.Page,
			Rows: t.Data.Rows,
			Cols: t.Data.Cols,
		})
	}

	return &ports.ParseResult{
		FullText: strings.TrimSpace(text.String()),
		Metadata: entities.ParseMetadata{
			Pages:  len(parsed.Content.Pages),
			Tables: tables,
		},
	}
}

// MimeType maps a file extension to its upload content type.
func MimeType(fileName string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".doc":
		return "application/msword"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".xls":
		return "application/vnd.ms-excel"
	case ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
