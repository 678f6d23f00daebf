package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ntask/core/internal/domain/entities"
	"github.com/ntask/core/internal/ports"
)

// RequestRepositoryImpl implements the DocumentRequestRepository interface
// on Postgres.
type RequestRepositoryImpl struct {
	db *sqlx.DB
}

// NewRequestRepository creates a new document request repository.
func NewRequestRepository(db *sqlx.DB) ports.DocumentRequestRepository {
	return &RequestRepositoryImpl{db: db}
}

func (r *RequestRepositoryImpl) Create(ctx context.Context, req *entities.DocumentRequest) error {
	query := `
		INSERT INTO document_requests (id, requester_email, requester_department, keyword, approver_email, urgency, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending')
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		req.ID, req.RequesterEmail, req.RequesterDepartment, req.Keyword,
		req.ApproverEmail, req.Urgency,
	).Scan(&req.CreatedAt, &req.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Status = entities.RequestPending
	return nil
}

func (r *RequestRepositoryImpl) GetByID(ctx context.Context, id string) (*entities.DocumentRequest, error) {
	query := `
		SELECT id, requester_email, requester_department, keyword, approver_email, status,
			approved_document_id, rejection_reason, sharing_link, urgency, created_at, updated_at
		FROM document_requests
		WHERE id = $1`

	var req entities.DocumentRequest
	err := r.db.GetContext(ctx, &req, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrRequestNotFound
		}
		return nil, fmt.Errorf("get request by id: %w", err)
	}

	return &req, nil
}

// Transition applies a pending -> terminal state change conditionally. The
// WHERE clause gates on status = 'pending' so a request can leave pending
// exactly once even across processes; a second writer gets
// ErrRequestProcessed (or ErrRequestNotFound for an unknown id).
func (r *RequestRepositoryImpl) Transition(ctx context.Context, t ports.RequestTransition) (*entities.DocumentRequest, error) {
	query := `
		UPDATE document_requests
		SET status = $2,
			approved_document_id = $3,
			rejection_reason = $4,
			sharing_link = $5,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND status = 'pending'
		RETURNING id, requester_email, requester_department, keyword, approver_email, status,
			approved_document_id, rejection_reason, sharing_link, urgency, created_at, updated_at`

	var req entities.DocumentRequest
	err := r.db.QueryRowxContext(ctx, query,
		t.RequestID, t.Status, t.ApprovedDocumentID, t.RejectionReason, t.SharingLink,
	).StructScan(&req)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Unchanged row: either the id is unknown or another writer
			// already moved it out of pending.
			if _, getErr := r.GetByID(ctx, t.RequestID); getErr != nil {
				return nil, getErr
			}
			return nil, entities.ErrRequestProcessed
		}
		return nil, fmt.Errorf("transition request: %w", err)
	}

	return &req, nil
}

func (r *RequestRepositoryImpl) ListByApprover(ctx context.Context, approverEmail string, status *entities.RequestStatus) ([]*entities.DocumentRequest, error) {
	query := `
		SELECT id, requester_email, requester_department, keyword, approver_email, status,
			approved_document_id, rejection_reason, sharing_link, urgency, created_at, updated_at
		FROM document_requests
		WHERE approver_email = $1`

	args := []interface{}{approverEmail}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`

	var requests []*entities.DocumentRequest
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, fmt.Errorf("list requests by approver: %w", err)
	}

	return requests, nil
}

func (r *RequestRepositoryImpl) ListByRequester(ctx context.Context, requesterEmail string) ([]*entities.DocumentRequest, error) {
	query := `
		SELECT id, requester_email, requester_department, keyword, approver_email, status,
			approved_document_id, rejection_reason, sharing_link, urgency, created_at, updated_at
		FROM document_requests
		WHERE requester_email = $1
		ORDER BY created_at DESC`

	var requests []*entities.DocumentRequest
	if err := r.db.SelectContext(ctx, &requests, query, requesterEmail); err != nil {
		return nil, fmt.Errorf("list requests by requester: %w", err)
	}

	return requests, nil
}
