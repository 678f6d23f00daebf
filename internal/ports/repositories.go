package ports

import (
	"context"

	"github.com/ntask/core/internal/domain/entities"
)

// DocumentRepository defines the interface for document persistence.
type DocumentRepository interface {
	Create(ctx context.Context, doc *entities.Document) error
	GetByID(ctx context.Context, id string) (*entities.Document, error)
	Search(ctx context.Context, filter DocumentSearchFilter) ([]entities.SearchResult, error)
	Update(ctx context.Context, doc *entities.Document) error
}

// DocumentRequestRepository defines the interface for request persistence.
// Transition performs the pending -> terminal state change conditionally:
// it must return entities.ErrRequestProcessed when the row is no longer
// pending at write time.
type DocumentRequestRepository interface {
	Create(ctx context.Context, req *entities.DocumentRequest) error
	GetByID(ctx context.Context, id string) (*entities.DocumentRequest, error)
	Transition(ctx context.Context, t RequestTransition) (*entities.DocumentRequest, error)
	ListByApprover(ctx context.Context, approverEmail string, status *entities.RequestStatus) ([]*entities.DocumentRequest, error)
	ListByRequester(ctx context.Context, requesterEmail string) ([]*entities.DocumentRequest, error)
}

// DocumentSearchFilter scopes a full-text document search.
type DocumentSearchFilter struct {
	Keyword    string
	Department *string
	Limit      int
}

// RequestTransition carries a single pending -> terminal state change.
type RequestTransition struct {
	RequestID          string
	Status             entities.RequestStatus
	ApprovedDocumentID *string
	RejectionReason    *string
	SharingLink        *string
}
