package entities

import (
	"encoding/json"
	"time"
)

type AccessLevel string

const (
	AccessPublic     AccessLevel = "public"
	AccessDepartment AccessLevel = "department"
	AccessRestricted AccessLevel = "restricted"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyNormal Urgency = "normal"
	UrgencyHigh   Urgency = "high"
)

// Document is an indexed file with its parsed full text and structural
// metadata from the external parser.
type Document struct {
	ID                 string       `json:"id" db:"id"`
	FileName           string       `json:"file_name" db:"file_name"`
	FilePath           string       `json:"file_path" db:"file_path"`
	ParsedText         *string      `json:"parsed_text" db:"parsed_text"`
	ParsedMetadata     json.RawMessage `json:"parsed_metadata" db:"parsed_metadata"`
	AccessLevel        AccessLevel  `json:"access_level" db:"access_level"`
	AllowedDepartments []string     `json:"allowed_departments" db:"allowed_departments"`
	CreatedAt          time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at" db:"updated_at"`
}

// ParseMetadata describes the page and table structure the parser
// extracted from a document.
type ParseMetadata struct {
	Pages  int         `json:"pages"`
	Tables []TableMeta `json:"tables,omitempty"`
}

type TableMeta struct {
	Page int `json:"page"`
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// DocumentRequest is a question routed to an approver who can supply a
// document in response. Lifecycle: pending, then exactly one of approved
// or rejected; once non-pending it is immutable.
type DocumentRequest struct {
	ID                  string        `json:"id" db:"id"`
	RequesterEmail      string        `json:"requester_email" db:"requester_email"`
	RequesterDepartment *string       `json:"requester_department" db:"requester_department"`
	Keyword             string        `json:"keyword" db:"keyword"`
	ApproverEmail       string        `json:"approver_email" db:"approver_email"`
	Status              RequestStatus `json:"status" db:"status"`
	ApprovedDocumentID  *string       `json:"approved_document_id" db:"approved_document_id"`
	RejectionReason     *string       `json:"rejection_reason" db:"rejection_reason"`
	SharingLink         *string       `json:"sharing_link" db:"sharing_link"`
	Urgency             Urgency       `json:"urgency" db:"urgency"`
	CreatedAt           time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at" db:"updated_at"`
}

// SearchResult pairs a matched document with its full-text relevance score.
type SearchResult struct {
	Document  Document `json:"document"`
	Relevance float64  `json:"relevance_score"`
}

// IsPending reports whether the request can still transition.
func (dr *DocumentRequest) IsPending() bool {
	return dr.Status == RequestPending
}

func (al AccessLevel) IsValid() bool {
	switch al {
	case AccessPublic, AccessDepartment, AccessRestricted:
		return true
	default:
		return false
	}
}

func (rs RequestStatus) IsValid() bool {
	switch rs {
	case RequestPending, RequestApproved, RequestRejected:
		return true
	default:
		return false
	}
}

func (u Urgency) IsValid() bool {
	switch u {
	case UrgencyLow, UrgencyNormal, UrgencyHigh:
		return true
	default:
		return false
	}
}
