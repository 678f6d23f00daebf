package ports

import (
	"context"

	"github.com/ntask/core/internal/domain/entities"
)

// Webhook event names delivered to the automation endpoint.
const (
	EventTaskCompleted   = "task_completed"
	EventDocumentIndexed = "document_indexed"
	EventRequestCreated  = "request_created"
	EventRequestApproved = "request_approved"
	EventRequestRejected = "request_rejected"
)

// Notifier delivers best-effort webhook events to an external automation
// system. Implementations capture delivery errors internally; Notify never
// fails the calling operation.
type Notifier interface {
	Notify(ctx context.Context, event string, data any)
}

// Mailer sends templated HTML email. Errors are returned so callers can
// log them, but callers never let a send failure roll back committed state.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// DocumentParser converts an uploaded file into full text plus page/table
// structure via an external parsing service.
type DocumentParser interface {
	Parse(ctx context.Context, fileName string, contents []byte) (*ParseResult, error)
}

// ParseResult is the flattened output of a document parse.
type ParseResult struct {
	FullText string
	Metadata entities.ParseMetadata
}

// Request/response types for the application services.

type CreateTaskRequest struct {
	BoardID      string
	Title        string
	Description  string
	Assignee     string
	ParentTaskID string
	RelationType entities.RelationType
	Actor        string
}

type UpdateTaskRequest struct {
	Title        *string
	Description  *string
	Assignee     *string
	ParentTaskID *string
	RelationType *entities.RelationType
	Actor        string
}

type SubmitRequestInput struct {
	RequesterEmail      string
	RequesterDepartment *string
	Keyword             string
	ApproverEmail       string
	Urgency             entities.Urgency
}

// SubmitRequestResult reports the outcome of a submission. Created is false
// when no documents matched; in that case Request is nil and no record was
// persisted.
type SubmitRequestResult struct {
	Created    bool
	Request    *entities.DocumentRequest
	MatchCount int
}

type ApproveRequestInput struct {
	RequestID   string
	DocumentID  string
	SharingLink string
}

type RejectRequestInput struct {
	RequestID string
	Reason    string
}

type IndexDocumentInput struct {
	FileName           string
	FilePath           string
	Contents           []byte
	AccessLevel        entities.AccessLevel
	AllowedDepartments []string
}

type IndexDocumentResult struct {
	Document         *entities.Document
	ParsedTextLength int
	Metadata         entities.ParseMetadata
}

// TaskCompletedPayload is the webhook body emitted when a task reaches DONE.
type TaskCompletedPayload struct {
	TaskID         string            `json:"taskId"`
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	Status         entities.TaskStatus `json:"status"`
	Assignee       string            `json:"assignee,omitempty"`
	Actor          string            `json:"actor,omitempty"`
	FinishedAt     string            `json:"finishedAt"`
	Logs           []WebhookLog      `json:"logs"`
	SubTaskIDs     []string          `json:"subTaskIds"`
	RelatedTaskIDs []string          `json:"relatedTaskIds"`
	App            string            `json:"app"`
}

type WebhookLog struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Author    string `json:"author,omitempty"`
	CreatedAt string `json:"createdAt"`
}
