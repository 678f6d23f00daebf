package email

import (
	"html/template"
	"strings"
)

// Candidate is a matched document listed in the approval email.
type Candidate struct {
	ID       string
	FileName string
	FilePath string
}

var approvalNeededTmpl = template.Must(template.New("approval_needed").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 20px; border-radius: 8px 8px 0 0;">
      <h2 style="margin: 0;">Document Request Notification</h2>
    </div>
    <div style="background: #f9fafb; padding: 30px; border: 1px solid #e5e7eb;">
      <p>A document request has been submitted and requires your approval.</p>
      <div style="background: white; padding: 15px; border-left: 4px solid #3b82f6; margin: 20px 0;">
        <p><strong>Requester:</strong> {{.RequesterEmail}}</p>
        <p><strong>Search Keyword:</strong> &quot;{{.Keyword}}&quot;</p>
        <p><strong>Request ID:</strong> {{.RequestID}}</p>
      </div>
      <div style="background: white; padding: 15px; border-radius: 6px; margin: 20px 0;">
        <h3 style="margin-top: 0; color: #1f2937;">Matching Documents:</h3>
        <ul style="padding-left: 20px;">
          {{range $i, $d := .Documents}}<li><strong>{{$d.FileName}}</strong><br/><small style="color: #666;">Path: {{$d.FilePath}}</small></li>
          {{end}}
        </ul>
      </div>
      <div style="text-align: center; margin: 30px 0;">
        <a href="{{.ApproveURL}}" style="display: inline-block; padding: 12px 24px; margin: 10px 5px; text-decoration: none; border-radius: 6px; font-weight: 600; background: #10b981; color: white;">Approve Request</a>
        <a href="{{.RejectURL}}" style="display: inline-block; padding: 12px 24px; margin: 10px 5px; text-decoration: none; border-radius: 6px; font-weight: 600; background: #ef4444; color: white;">Reject Request</a>
      </div>
      <div style="text-align: center; color: #6b7280; font-size: 12px; margin-top: 20px;">
        <p>This is an automated notification from the Document Request System.</p>
        <p>If you did not expect this email, please contact your system administrator.</p>
      </div>
    </div>
  </div>
</body>
</html>`))

var approvalConfirmedTmpl = template.Must(template.New("approval_confirmed").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="background: linear-gradient(135deg, #10b981 0%, #059669 100%); color: white; padding: 20px; border-radius: 8px 8px 0 0;">
      <h2 style="margin: 0;">Document Request Approved</h2>
    </div>
    <div style="background: #f9fafb; padding: 30px; border: 1px solid #e5e7eb;">
      <p>Good news! Your document request has been approved.</p>
      <div style="background: white; padding: 15px; border-left: 4px solid #10b981; margin: 20px 0;">
        <p><strong>Search Keyword:</strong> &quot;{{.Keyword}}&quot;</p>
        <p><strong>Document:</strong> {{.DocumentName}}</p>
      </div>
      <div style="text-align: center; margin: 30px 0;">
        <a href="{{.SharingLink}}" style="display: inline-block; padding: 12px 24px; margin: 10px 0; text-decoration: none; border-radius: 6px; font-weight: 600; background: #3b82f6; color: white;">Access Document</a>
      </div>
      <div style="text-align: center; color: #6b7280; font-size: 12px; margin-top: 20px;">
        <p>This link may expire based on your organization's security policies.</p>
        <p>Document Request Automation System</p>
      </div>
    </div>
  </div>
</body>
</html>`))

var rejectionTmpl = template.Must(template.New("rejection").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="background: linear-gradient(135deg, #ef4444 0%, #dc2626 100%); color: white; padding: 20px; border-radius: 8px 8px 0 0;">
      <h2 style="margin: 0;">Document Request Rejected</h2>
    </div>
    <div style="background: #f9fafb; padding: 30px; border: 1px solid #e5e7eb;">
      <p>Your document request has been reviewed and rejected.</p>
      <div style="background: white; padding: 15px; border-left: 4px solid #ef4444; margin: 20px 0;">
        <p><strong>Search Keyword:</strong> &quot;{{.Keyword}}&quot;</p>
        <p><strong>Reason:</strong> {{.Reason}}</p>
      </div>
      <p>If you believe this is an error or need further clarification, please contact the approver directly.</p>
      <div style="text-align: center; color: #6b7280; font-size: 12px; margin-top: 20px;">
        <p>Document Request Automation System</p>
      </div>
    </div>
  </div>
</body>
</html>`))

var notFoundTmpl = template.Must(template.New("not_found").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="background: linear-gradient(135deg, #f59e0b 0%, #d97706 100%); color: white; padding: 20px; border-radius: 8px 8px 0 0;">
      <h2 style="margin: 0;">No Documents Found</h2>
    </div>
    <div style="background: #f9fafb; padding: 30px; border: 1px solid #e5e7eb;">
      <p>We were unable to find any documents matching your search criteria.</p>
      <div style="background: white; padding: 15px; border-left: 4px solid #f59e0b; margin: 20px 0;">
        <p><strong>Search Keyword:</strong> &quot;{{.Keyword}}&quot;</p>
      </div>
      <p>Please try the following:</p>
      <ul>
        <li>Check your search keyword for typos</li>
        <li>Use more general search terms</li>
        <li>Contact the document owner directly</li>
      </ul>
      <div style="text-align: center; color: #6b7280; font-size: 12px; margin-top: 20px;">
        <p>Document Request Automation System</p>
      </div>
    </div>
  </div>
</body>
</html>`))

// ApprovalNeeded renders the email asking an approver to act on a request,
// listing the candidate documents with approve/reject links.
func ApprovalNeeded(requesterEmail, keyword, requestID string, documents []Candidate, approveURL, rejectURL string) string {
	return render(approvalNeededTmpl, map[string]any{
		"RequesterEmail": requesterEmail,
		"Keyword":        keyword,
		"RequestID":      requestID,
		"Documents":      documents,
		"ApproveURL":     template.URL(approveURL),
		"RejectURL":      template.URL(rejectURL),
	})
}

// ApprovalConfirmed renders the approval confirmation for the requester.
func ApprovalConfirmed(keyword, documentName, sharingLink string) string {
	return render(approvalConfirmedTmpl, map[string]any{
		"Keyword":      keyword,
		"DocumentName": documentName,
		"SharingLink":  template.URL(sharingLink),
	})
}

// Rejection renders the rejection notice for the requester.
func Rejection(keyword, reason string) string {
	return render(rejectionTmpl, map[string]any{
		"Keyword": keyword,
		"Reason":  reason,
	})
}

// DocumentNotFound renders the zero-matches notice for the requester.
func DocumentNotFound(keyword string) string {
	return render(notFoundTmpl, map[string]any{
		"Keyword": keyword,
	})
}

func render(t *template.Template, data any) string {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return ""
	}
	return b.String()
}
