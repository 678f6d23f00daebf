package http

import (
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ntask/core/internal/application/services"
	"github.com/ntask/core/internal/domain/entities"
	"github.com/ntask/core/internal/infrastructure/logger"
	"github.com/ntask/core/internal/ports"
)

// DocumentHandler handles document indexing and the request workflow
type DocumentHandler struct {
	requestService  *services.RequestService
	documentService *services.DocumentService
	logger          *logger.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(requestService *services.RequestService, documentService *services.DocumentService, logger *logger.Logger) *DocumentHandler {
	return &DocumentHandler{
		requestService:  requestService,
		documentService: documentService,
		logger:          logger,
	}
}

// SubmitRequestRequest is the document request submission payload
type SubmitRequestRequest struct {
	RequesterEmail      string  `json:"requester_email" validate:"required,email"`
	RequesterDepartment *string `json:"requester_department"`
	Keyword             string  `json:"keyword" validate:"required,min=1"`
	ApproverEmail       string  `json:"approver_email" validate:"required,email"`
	Urgency             string  `json:"urgency" validate:"omitempty,oneof=low normal high"`
}

// SubmitRequestResponse reports the submission outcome
type SubmitRequestResponse struct {
	Success    bool                      `json:"success"`
	Message    string                    `json:"message"`
	Request    *entities.DocumentRequest `json:"request,omitempty"`
	MatchCount int                       `json:"match_count,omitempty"`
}

// DecideRequestRequest is the approve/reject payload
type DecideRequestRequest struct {
	RequestID   string `json:"request_id" validate:"required"`
	Action      string `json:"action" validate:"required"`
	DocumentID  string `json:"document_id"`
	SharingLink string `json:"sharing_link"`
	Reason      string `json:"reason"`
}

// SubmitRequest handles a new document request
func (h *DocumentHandler) SubmitRequest(c echo.Context) error {
	var req SubmitRequestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.requestService.Submit(c.Request().Context(), ports.SubmitRequestInput{
		RequesterEmail:      req.RequesterEmail,
		RequesterDepartment: req.RequesterDepartment,
		Keyword:             req.Keyword,
		ApproverEmail:       req.ApproverEmail,
		Urgency:             entities.Urgency(req.Urgency),
	})
	if err != nil {
		h.logger.Error("Submit request failed", "error", err)
		return httpError(err)
	}

	if !result.Created {
		return c.JSON(http.StatusOK, SubmitRequestResponse{
			Success: false,
			Message: "No documents matched the keyword; the requester has been notified",
		})
	}

	return c.JSON(http.StatusOK, SubmitRequestResponse{
		Success:    true,
		Message:    "Request created and sent for approval",
		Request:    result.Request,
		MatchCount: result.MatchCount,
	})
}

// ResolveRequest handles the approver's email link: it validates the
// request is still pending and redirects to the matching decision form.
func (h *DocumentHandler) ResolveRequest(c echo.Context) error {
	requestID := c.QueryParam("request_id")
	action := c.QueryParam("action")
	if requestID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "request_id query parameter is required")
	}

	target, err := h.requestService.Resolve(c.Request().Context(), requestID, action)
	if err != nil {
		return httpError(err)
	}

	return c.Redirect(http.StatusFound, target)
}

// DecideRequest handles the approver's decision
func (h *DocumentHandler) DecideRequest(c echo.Context) error {
	var req DecideRequestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var (
		updated *entities.DocumentRequest
		err     error
	)
	switch req.Action {
	case "approve":
		updated, err = h.requestService.Approve(c.Request().Context(), ports.ApproveRequestInput{
			RequestID:   req.RequestID,
			DocumentID:  req.DocumentID,
			SharingLink: req.SharingLink,
		})
	case "reject":
		updated, err = h.requestService.Reject(c.Request().Context(), ports.RejectRequestInput{
			RequestID: req.RequestID,
			Reason:    req.Reason,
		})
	default:
		return httpError(entities.ErrInvalidAction)
	}

	if err != nil {
		h.logger.Error("Request decision failed", "error", err, "request_id", req.RequestID, "action", req.Action)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, updated)
}

// ListRequests handles listing requests by approver or requester
func (h *DocumentHandler) ListRequests(c echo.Context) error {
	approver := c.QueryParam("approver")
	requester := c.QueryParam("requester")

	switch {
	case approver != "":
		var status *entities.RequestStatus
		if s := c.QueryParam("status"); s != "" {
			rs := entities.RequestStatus(s)
			if !rs.IsValid() {
				return echo.NewHTTPError(http.StatusBadRequest, "Invalid status filter")
			}
			status = &rs
		}
		requests, err := h.requestService.ListByApprover(c.Request().Context(), approver, status)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, requests)
	case requester != "":
		requests, err := h.requestService.ListByRequester(c.Request().Context(), requester)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, requests)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "approver or requester query parameter is required")
	}
}

// IndexDocument handles a multipart document upload: the file is parsed
// through the external service, persisted, then announced.
func (h *DocumentHandler) IndexDocument(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}

	filePath := c.FormValue("filePath")
	if filePath == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "filePath is required")
	}

	fileName := c.FormValue("fileName")
	if fileName == "" {
		fileName = fileHeader.Filename
	}

	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "could not read uploaded file")
	}
	defer src.Close()

	contents, err := io.ReadAll(src)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "could not read uploaded file")
	}

	var departments []string
	if raw := c.FormValue("allowedDepartments"); raw != "" {
		for _, d := range strings.Split(raw, ",") {
			if d = strings.TrimSpace(d); d != "" {
				departments = append(departments, d)
			}
		}
	}

	result, err := h.documentService.Index(c.Request().Context(), ports.IndexDocumentInput{
		FileName:           fileName,
		FilePath:           filePath,
		Contents:           contents,
		AccessLevel:        entities.AccessLevel(c.FormValue("accessLevel")),
		AllowedDepartments: departments,
	})
	if err != nil {
		h.logger.Error("Index document failed", "error", err, "file_name", fileName)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, result)
}
