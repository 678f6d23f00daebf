package services

import (
	"context"
	"strings"
	"testing"

	"github.com/ntask/core/internal/domain/entities"
	"github.com/ntask/core/internal/infrastructure/logger"
	"github.com/ntask/core/internal/ports"
)

// fakeRequestRepo is an in-memory DocumentRequestRepository.
type fakeRequestRepo struct {
	requests map[string]*entities.DocumentRequest
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: make(map[string]*entities.DocumentRequest)}
}

func (r *fakeRequestRepo) Create(ctx context.Context, req *entities.DocumentRequest) error {
	cp := *req
	r.requests[req.ID] = &cp
	return nil
}

func (r *fakeRequestRepo) GetByID(ctx context.Context, id string) (*entities.DocumentRequest, error) {
	req, ok := r.requests[id]
	if !ok {
		return nil, entities.ErrRequestNotFound
	}
	cp := *req
	return &cp, nil
}

func (r *fakeRequestRepo) Transition(ctx context.Context, t ports.RequestTransition) (*entities.DocumentRequest, error) {
	req, ok := r.requests[t.RequestID]
	if !ok {
		return nil, entities.ErrRequestNotFound
	}
	if req.Status != entities.RequestPending {
		return nil, entities.ErrRequestProcessed
	}
	req.Status = t.Status
	req.ApprovedDocumentID = t.ApprovedDocumentID
	req.RejectionReason = t.RejectionReason
	req.SharingLink = t.SharingLink
	cp := *req
	return &cp, nil
}

func (r *fakeRequestRepo) ListByApprover(ctx context.Context, approverEmail string, status *entities.RequestStatus) ([]*entities.DocumentRequest, error) {
	var out []*entities.DocumentRequest
	for _, req := range r.requests {
		if req.ApproverEmail != approverEmail {
			continue
		}
		if status != nil && req.Status != *status {
			continue
		}
		cp := *req
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeRequestRepo) ListByRequester(ctx context.Context, requesterEmail string) ([]*entities.DocumentRequest, error) {
	var out []*entities.DocumentRequest
	for _, req := range r.requests {
		if req.RequesterEmail == requesterEmail {
			cp := *req
			out = append(out, &cp)
		}
	}
	return out, nil
}

// fakeDocumentRepo serves canned search results.
type fakeDocumentRepo struct {
	results []entities.SearchResult
	docs    map[string]*entities.Document
}

func (r *fakeDocumentRepo) Create(ctx context.Context, doc *entities.Document) error {
	if r.docs == nil {
		r.docs = make(map[string]*entities.Document)
	}
	r.docs[doc.ID] = doc
	return nil
}

func (r *fakeDocumentRepo) GetByID(ctx context.Context, id string) (*entities.Document, error) {
	if doc, ok := r.docs[id]; ok {
		return doc, nil
	}
	return nil, entities.ErrDocumentNotFound
}

func (r *fakeDocumentRepo) Search(ctx context.Context, filter ports.DocumentSearchFilter) ([]entities.SearchResult, error) {
	return r.results, nil
}

func (r *fakeDocumentRepo) Update(ctx context.Context, doc *entities.Document) error {
	return nil
}

// recordingMailer captures outbound mail.
type recordingMailer struct {
	to       []string
	subjects []string
	bodies   []string
}

func (m *recordingMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	m.to = append(m.to, to)
	m.subjects = append(m.subjects, subject)
	m.bodies = append(m.bodies, htmlBody)
	return nil
}

func matchedDoc(id, name string) entities.SearchResult {
	return entities.SearchResult{
		Document:  entities.Document{ID: id, FileName: name, FilePath: "/docs/" + name},
		Relevance: 0.42,
	}
}

func newRequestFixture(results []entities.SearchResult) (*RequestService, *fakeRequestRepo, *fakeDocumentRepo, *recordingMailer, *recordingNotifier) {
	requests := newFakeRequestRepo()
	documents := &fakeDocumentRepo{results: results}
	mailer := &recordingMailer{}
	notifier := &recordingNotifier{}
	svc := NewRequestService(requests, documents, mailer, notifier, "http://localhost:8080", logger.NewNop())
	return svc, requests, documents, mailer, notifier
}

func TestSubmitNoMatches(t *testing.T) {
	svc, requests, _, mailer, notifier := newRequestFixture(nil)

	result, err := svc.Submit(context.Background(), ports.SubmitRequestInput{
		RequesterEmail: "alice@example.com",
		ApproverEmail:  "bob@example.com",
		Keyword:        "nonexistent",
	})
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}

	if result.Created {
		t.Error("result.Created = true, want false when nothing matched")
	}
	if len(requests.requests) != 0 {
		t.Errorf("requests persisted = %d, want 0", len(requests.requests))
	}
	if len(mailer.to) != 1 || mailer.to[0] != "alice@example.com" {
		t.Fatalf("mail recipients = %v, want the requester only", mailer.to)
	}
	if !strings.Contains(mailer.bodies[0], "nonexistent") {
		t.Error("not-found email does not mention the keyword")
	}
	if len(notifier.events) != 0 {
		t.Errorf("webhook events = %v, want none", notifier.events)
	}
}

func TestSubmitWithMatches(t *testing.T) {
	svc, requests, _, mailer, notifier := newRequestFixture([]entities.SearchResult{
		matchedDoc("doc-1", "report.pdf"),
		matchedDoc("doc-2", "summary.docx"),
	})

	result, err := svc.Submit(context.Background(), ports.SubmitRequestInput{
		RequesterEmail: "alice@example.com",
		ApproverEmail:  "bob@example.com",
		Keyword:        "report",
	})
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}

	if !result.Created || result.MatchCount != 2 {
		t.Fatalf("result = created %v matches %d, want created with 2 matches", result.Created, result.MatchCount)
	}
	if !strings.HasPrefix(result.Request.ID, "req-") {
		t.Errorf("request id = %q, want req- prefix", result.Request.ID)
	}
	if result.Request.Status != entities.RequestPending {
		t.Errorf("status = %s, want pending", result.Request.Status)
	}
	if result.Request.Urgency != entities.UrgencyNormal {
		t.Errorf("urgency = %s, want default normal", result.Request.Urgency)
	}
	if len(requests.requests) != 1 {
		t.Errorf("requests persisted = %d, want 1", len(requests.requests))
	}

	if len(mailer.to) != 1 || mailer.to[0] != "bob@example.com" {
		t.Fatalf("mail recipients = %v, want the approver", mailer.to)
	}
	body := mailer.bodies[0]
	for _, want := range []string{"report.pdf", "summary.docx", result.Request.ID, "action=approve", "action=reject"} {
		if !strings.Contains(body, want) {
			t.Errorf("approval email missing %q", want)
		}
	}

	if len(notifier.events) != 1 || notifier.events[0] != ports.EventRequestCreated {
		t.Errorf("webhook events = %v, want [request_created]", notifier.events)
	}
}

func TestResolve(t *testing.T) {
	svc, requests, _, _, _ := newRequestFixture(nil)
	requests.requests["req-1"] = &entities.DocumentRequest{ID: "req-1", Status: entities.RequestPending}
	requests.requests["req-2"] = &entities.DocumentRequest{ID: "req-2", Status: entities.RequestApproved}

	tests := []struct {
		name      string
		requestID string
		action    string
		wantErr   error
		wantPath  string
	}{
		{"approve pending", "req-1", "approve", nil, "/approve-form?request_id=req-1"},
		{"reject pending", "req-1", "reject", nil, "/reject-form?request_id=req-1"},
		{"invalid action", "req-1", "delete", entities.ErrInvalidAction, ""},
		{"already processed", "req-2", "approve", entities.ErrRequestProcessed, ""},
		{"unknown request", "req-9", "approve", entities.ErrRequestNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, err := svc.Resolve(context.Background(), tt.requestID, tt.action)
			if err != tt.wantErr {
				t.Fatalf("Resolve() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && !strings.HasSuffix(target, tt.wantPath) {
				t.Errorf("Resolve() = %q, want suffix %q", target, tt.wantPath)
			}
		})
	}
}

func TestApprove(t *testing.T) {
	svc, requests, documents, mailer, notifier := newRequestFixture(nil)
	documents.docs = map[string]*entities.Document{
		"doc-1": {ID: "doc-1", FileName: "report.pdf"},
	}
	requests.requests["req-1"] = &entities.DocumentRequest{
		ID:             "req-1",
		RequesterEmail: "alice@example.com",
		Keyword:        "report",
		Status:         entities.RequestPending,
	}

	updated, err := svc.Approve(context.Background(), ports.ApproveRequestInput{
		RequestID:   "req-1",
		DocumentID:  "doc-1",
		SharingLink: "https://drive.example.com/doc-1",
	})
	if err != nil {
		t.Fatalf("Approve() error: %v", err)
	}

	if updated.Status != entities.RequestApproved {
		t.Errorf("status = %s, want approved", updated.Status)
	}
	if updated.ApprovedDocumentID == nil || *updated.ApprovedDocumentID != "doc-1" {
		t.Errorf("approved document = %v, want doc-1", updated.ApprovedDocumentID)
	}

	if len(mailer.to) != 1 || mailer.to[0] != "alice@example.com" {
		t.Fatalf("mail recipients = %v, want the requester", mailer.to)
	}
	if !strings.Contains(mailer.bodies[0], "report.pdf") {
		t.Error("confirmation email missing the document file name")
	}
	if len(notifier.events) != 1 || notifier.events[0] != ports.EventRequestApproved {
		t.Errorf("webhook events = %v, want [request_approved]", notifier.events)
	}

	// Second decision on the same request must fail without side effects.
	if _, err := svc.Approve(context.Background(), ports.ApproveRequestInput{
		RequestID:   "req-1",
		DocumentID:  "doc-1",
		SharingLink: "https://drive.example.com/doc-1",
	}); err != entities.ErrRequestProcessed {
		t.Fatalf("second Approve() error = %v, want ErrRequestProcessed", err)
	}
	if len(mailer.to) != 1 {
		t.Errorf("mail sends after rejected double-approve = %d, want 1", len(mailer.to))
	}
}

func TestApproveMissingFields(t *testing.T) {
	svc, requests, _, _, _ := newRequestFixture(nil)
	requests.requests["req-1"] = &entities.DocumentRequest{ID: "req-1", Status: entities.RequestPending}

	tests := []struct {
		name string
		in   ports.ApproveRequestInput
	}{
		{"no document", ports.ApproveRequestInput{RequestID: "req-1", SharingLink: "https://x"}},
		{"no link", ports.ApproveRequestInput{RequestID: "req-1", DocumentID: "doc-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Approve(context.Background(), tt.in); err != entities.ErrMissingApprovalFields {
				t.Fatalf("Approve() error = %v, want ErrMissingApprovalFields", err)
			}
		})
	}

	if requests.requests["req-1"].Status != entities.RequestPending {
		t.Error("request mutated by a rejected approval")
	}
}

func TestRejectDefaultsReason(t *testing.T) {
	svc, requests, _, mailer, notifier := newRequestFixture(nil)
	requests.requests["req-1"] = &entities.DocumentRequest{
		ID:             "req-1",
		RequesterEmail: "alice@example.com",
		Keyword:        "report",
		Status:         entities.RequestPending,
	}

	updated, err := svc.Reject(context.Background(), ports.RejectRequestInput{RequestID: "req-1"})
	if err != nil {
		t.Fatalf("Reject() error: %v", err)
	}

	if updated.Status != entities.RequestRejected {
		t.Errorf("status = %s, want rejected", updated.Status)
	}
	if updated.RejectionReason == nil || *updated.RejectionReason != "No reason provided" {
		t.Errorf("reason = %v, want default", updated.RejectionReason)
	}
	if !strings.Contains(mailer.bodies[0], "No reason provided") {
		t.Error("rejection email missing the defaulted reason")
	}
	if len(notifier.events) != 1 || notifier.events[0] != ports.EventRequestRejected {
		t.Errorf("webhook events = %v, want [request_rejected]", notifier.events)
	}
}

func TestRejectAfterApproveFails(t *testing.T) {
	svc, requests, _, _, _ := newRequestFixture(nil)
	requests.requests["req-1"] = &entities.DocumentRequest{ID: "req-1", Status: entities.RequestApproved}

	if _, err := svc.Reject(context.Background(), ports.RejectRequestInput{RequestID: "req-1", Reason: "late"}); err != entities.ErrRequestProcessed {
		t.Fatalf("Reject() error = %v, want ErrRequestProcessed", err)
	}
}

func TestSubmitWithoutMailer(t *testing.T) {
	requests := newFakeRequestRepo()
	documents := &fakeDocumentRepo{results: []entities.SearchResult{matchedDoc("doc-1", "report.pdf")}}
	notifier := &recordingNotifier{}
	svc := NewRequestService(requests, documents, nil, notifier, "http://localhost:8080", logger.NewNop())

	result, err := svc.Submit(context.Background(), ports.SubmitRequestInput{
		RequesterEmail: "alice@example.com",
		ApproverEmail:  "bob@example.com",
		Keyword:        "report",
	})
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}
	if !result.Created {
		t.Error("request not created when mailer is absent")
	}
}
