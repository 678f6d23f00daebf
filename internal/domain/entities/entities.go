package entities

import (
	"errors"
	"time"
)

// Common errors
var (
	ErrBoardNotFound    = errors.New("board not found")
	ErrTaskNotFound     = errors.New("task not found")
	ErrRelationNotFound = errors.New("relation not found")
	ErrTaskExists       = errors.New("task already exists")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrInvalidRelation  = errors.New("invalid relation type")

	ErrRequestNotFound       = errors.New("request not found")
	ErrDocumentNotFound      = errors.New("document not found")
	ErrRequestProcessed      = errors.New("request has already been processed")
	ErrMissingApprovalFields = errors.New("document_id and sharing_link are required for approval")
	ErrInvalidAction         = errors.New("action must be \"approve\" or \"reject\"")
	ErrParserUnavailable     = errors.New("document parser not configured")
)

// Enums and types
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
)

type RelationType string

const (
	RelationSubtask    RelationType = "SUBTASK"
	RelationRelated    RelationType = "RELATED"
	RelationCrossDept  RelationType = "CROSS_DEPT"
	RelationCrossBoard RelationType = "CROSS_BOARD"
)

type NotificationType string

const (
	NotificationTask            NotificationType = "task"
	NotificationDocumentRequest NotificationType = "document_request"
)

// Board is a named workspace grouping a set of tasks.
type Board struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Task is a unit of work on a board. IDs are caller-visible strings
// in the "SCRUM-2" style rather than numeric keys.
type Task struct {
	ID          string     `json:"id"`
	BoardID     string     `json:"board_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	Assignee    string     `json:"assignee,omitempty"`
	IsImportant bool       `json:"is_important,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Relation is a directed, typed edge between two tasks. Board ids are
// populated only when the edge crosses board boundaries.
type Relation struct {
	ID          string       `json:"id"`
	FromTaskID  string       `json:"from_task_id"`
	ToTaskID    string       `json:"to_task_id"`
	Type        RelationType `json:"type"`
	FromBoardID string       `json:"from_board_id,omitempty"`
	ToBoardID   string       `json:"to_board_id,omitempty"`
}

// TaskLog is an append-only work log entry on a task, newest first.
type TaskLog struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	Text      string    `json:"text"`
	Author    string    `json:"author,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Notification is addressed to an assignee name, not a real identity.
// A document_request notification carries a denormalized snapshot of the
// request, never a live reference.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	TaskID    string           `json:"task_id,omitempty"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	Request   *DocumentRequest `json:"document_request,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// Position is a manually dragged node position that overrides the
// computed layout.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Crosses reports whether the relation spans two boards.
func (r *Relation) Crosses() bool {
	return r.FromBoardID != "" && r.ToBoardID != "" && r.FromBoardID != r.ToBoardID
}

// Touches reports whether the relation has the task as source or target.
func (r *Relation) Touches(taskID string) bool {
	return r.FromTaskID == taskID || r.ToTaskID == taskID
}

func (ts TaskStatus) IsValid() bool {
	switch ts {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	default:
		return false
	}
}

func (rt RelationType) IsValid() bool {
	switch rt {
	case RelationSubtask, RelationRelated, RelationCrossDept, RelationCrossBoard:
		return true
	default:
		return false
	}
}
