package services

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/google/uuid"

	"github.com/ntask/core/internal/adapters/email"
	"github.com/ntask/core/internal/domain/entities"
	"github.com/ntask/core/internal/infrastructure/logger"
	"github.com/ntask/core/internal/ports"
)

const (
	defaultSearchLimit  = 10
	defaultRejectReason = "No reason provided"
)

// RequestService drives the document-request state machine:
// pending -> approved | rejected, both terminal. Each transition commits
// before any email or webhook is attempted; those side effects are
// best-effort and never roll the transition back.
type RequestService struct {
	requests  ports.DocumentRequestRepository
	documents ports.DocumentRepository
	mailer    ports.Mailer
	notifier  ports.Notifier
	baseURL   string
	logger    *logger.Logger

	// transitions on the same request id are serialized so two concurrent
	// approve/reject calls cannot both pass the pending check.
	locks sync.Map
}

// NewRequestService creates a new request service. baseURL is the public
// address embedded in the approver's approve/reject links.
func NewRequestService(requests ports.DocumentRequestRepository, documents ports.DocumentRepository, mailer ports.Mailer, notifier ports.Notifier, baseURL string, logger *logger.Logger) *RequestService {
	return &RequestService{
		requests:  requests,
		documents: documents,
		mailer:    mailer,
		notifier:  notifier,
		baseURL:   baseURL,
		logger:    logger,
	}
}

// Submit searches documents for the keyword before creating anything.
// Zero matches: the requester is emailed a not-found notice, no request row
// is created, and the result reports Created=false. One or more matches:
// a pending request is created, the approver is emailed the candidate list
// with approve/reject links, and a request_created webhook fires.
func (s *RequestService) Submit(ctx context.Context, in ports.SubmitRequestInput) (*ports.SubmitRequestResult, error) {
	if in.Urgency == "" {
		in.Urgency = entities.UrgencyNormal
	}

	matches, err := s.documents.Search(ctx, ports.DocumentSearchFilter{
		Keyword:    in.Keyword,
		Department: in.RequesterDepartment,
		Limit:      defaultSearchLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}

	if len(matches) == 0 {
		s.sendMail(ctx, in.RequesterEmail, "No Documents Found",
			email.DocumentNotFound(in.Keyword))
		return &ports.SubmitRequestResult{Created: false}, nil
	}

	req := &entities.DocumentRequest{
		ID:                  "req-" + uuid.NewString(),
		RequesterEmail:      in.RequesterEmail,
		RequesterDepartment: in.RequesterDepartment,
		Keyword:             in.Keyword,
		ApproverEmail:       in.ApproverEmail,
		Status:              entities.RequestPending,
		Urgency:             in.Urgency,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	candidates := make([]email.Candidate, 0, len(matches))
	for _, m := range matches {
		candidates = append(candidates, email.Candidate{
			ID:       m.Document.ID,
			FileName: m.Document.FileName,
			FilePath: m.Document.FilePath,
		})
	}
	s.sendMail(ctx, in.ApproverEmail, "Document Request Notification",
		email.ApprovalNeeded(in.RequesterEmail, in.Keyword, req.ID, candidates,
			s.actionURL(req.ID, "approve"), s.actionURL(req.ID, "reject")))

	s.notifier.Notify(ctx, ports.EventRequestCreated, map[string]any{
		"requestId":      req.ID,
		"requesterEmail": req.RequesterEmail,
		"approverEmail":  req.ApproverEmail,
		"keyword":        req.Keyword,
		"matchCount":     len(matches),
	})

	s.logger.Info("Document request created", "request_id", req.ID, "matches", len(matches))
	return &ports.SubmitRequestResult{Created: true, Request: req, MatchCount: len(matches)}, nil
}

// Resolve handles the approver's email link: it validates the request is
// still pending and returns the form URL the caller should redirect to.
func (s *RequestService) Resolve(ctx context.Context, requestID, action string) (string, error) {
	if action != "approve" && action != "reject" {
		return "", entities.ErrInvalidAction
	}
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return "", err
	}
	if !req.IsPending() {
		return "", entities.ErrRequestProcessed
	}
	form := "approve-form"
	if action == "reject" {
		form = "reject-form"
	}
	return fmt.Sprintf("%s/%s?request_id=%s", s.baseURL, form, url.QueryEscape(requestID)), nil
}

// Approve moves a pending request to approved with the chosen document and
// sharing link, then emails the requester and fires the webhook.
func (s *RequestService) Approve(ctx context.Context, in ports.ApproveRequestInput) (*entities.DocumentRequest, error) {
	if in.DocumentID == "" || in.SharingLink == "" {
		return nil, entities.ErrMissingApprovalFields
	}

	unlock := s.lock(in.RequestID)
	defer unlock()

	req, err := s.requests.GetByID(ctx, in.RequestID)
	if err != nil {
		return nil, err
	}
	if !req.IsPending() {
		return nil, entities.ErrRequestProcessed
	}

	updated, err := s.requests.Transition(ctx, ports.RequestTransition{
		RequestID:          in.RequestID,
		Status:             entities.RequestApproved,
		ApprovedDocumentID: &in.DocumentID,
		SharingLink:        &in.SharingLink,
	})
	if err != nil {
		return nil, fmt.Errorf("approve request: %w", err)
	}

	docName := in.DocumentID
	if doc, err := s.documents.GetByID(ctx, in.DocumentID); err == nil {
		docName = doc.FileName
	}
	s.sendMail(ctx, req.RequesterEmail, "Document Request Approved",
		email.ApprovalConfirmed(req.Keyword, docName, in.SharingLink))

	s.notifier.Notify(ctx, ports.EventRequestApproved, map[string]any{
		"requestId":      in.RequestID,
		"requesterEmail": req.RequesterEmail,
		"documentId":     in.DocumentID,
		"sharingLink":    in.SharingLink,
	})

	s.logger.Info("Document request approved", "request_id", in.RequestID, "document_id", in.DocumentID)
	return updated, nil
}

// Reject moves a pending request to rejected, defaulting the reason when
// none is given, then emails the requester and fires the webhook.
func (s *RequestService) Reject(ctx context.Context, in ports.RejectRequestInput) (*entities.DocumentRequest, error) {
	reason := in.Reason
	if reason == "" {
		reason = defaultRejectReason
	}

	unlock := s.lock(in.RequestID)
	defer unlock()

	req, err := s.requests.GetByID(ctx, in.RequestID)
	if err != nil {
		return nil, err
	}
	if !req.IsPending() {
		return nil, entities.ErrRequestProcessed
	}

	updated, err := s.requests.Transition(ctx, ports.RequestTransition{
		RequestID:       in.RequestID,
		Status:          entities.RequestRejected,
		RejectionReason: &reason,
	})
	if err != nil {
		return nil, fmt.Errorf("reject request: %w", err)
	}

	s.sendMail(ctx, req.RequesterEmail, "Document Request Rejected",
		email.Rejection(req.Keyword, reason))

	s.notifier.Notify(ctx, ports.EventRequestRejected, map[string]any{
		"requestId":       in.RequestID,
		"requesterEmail":  req.RequesterEmail,
		"rejectionReason": reason,
	})

	s.logger.Info("Document request rejected", "request_id", in.RequestID)
	return updated, nil
}

// ListByApprover returns the requests routed to an approver, optionally
// filtered by status.
func (s *RequestService) ListByApprover(ctx context.Context, approverEmail string, status *entities.RequestStatus) ([]*entities.DocumentRequest, error) {
	return s.requests.ListByApprover(ctx, approverEmail, status)
}

// ListByRequester returns the requests submitted by a requester.
func (s *RequestService) ListByRequester(ctx context.Context, requesterEmail string) ([]*entities.DocumentRequest, error) {
	return s.requests.ListByRequester(ctx, requesterEmail)
}

// lock serializes transitions per request id.
func (s *RequestService) lock(requestID string) func() {
	v, _ := s.locks.LoadOrStore(requestID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// sendMail is best-effort: failures are logged and swallowed.
func (s *RequestService) sendMail(ctx context.Context, to, subject, body string) {
	if s.mailer == nil {
		s.logger.Warn("Mailer not configured, dropping email", "to", to, "subject", subject)
		return
	}
	if err := s.mailer.Send(ctx, to, subject, body); err != nil {
		s.logger.Error("Failed to send email", "to", to, "subject", subject, "error", err)
	}
}

func (s *RequestService) actionURL(requestID, action string) string {
	return fmt.Sprintf("%s/documents/approve?request_id=%s&action=%s", s.baseURL, url.QueryEscape(requestID), action)
}
