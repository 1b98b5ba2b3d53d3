package models

import (
	"context"
	"time"
)

const (
	AuditActionLogin             = "LOGIN"
	AuditActionLoginFailed       = "LOGIN_FAILED"
	AuditActionSuggestionCreate  = "SUGGESTION_CREATE"
	AuditActionSuggestionApprove = "SUGGESTION_APPROVE"
	AuditActionSuggestionReject  = "SUGGESTION_REJECT"
	AuditActionSuggestionDelete  = "SUGGESTION_DELETE"
)

const (
	AuditResourceAuth       = "auth"
	AuditResourceSuggestion = "gyeokguk_suggestion"
)

// AuditLog is one row of the audit_logs table. OldValues and NewValues hold
// JSON snapshots of the resource around the change.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// RequestOrigin identifies the client behind a mutation.
type RequestOrigin struct {
	IPAddress string
	UserAgent string
}

type requestOriginKey struct{}

// WithRequestOrigin attaches origin to ctx.
func WithRequestOrigin(ctx context.Context, origin RequestOrigin) context.Context {
	return context.WithValue(ctx, requestOriginKey{}, origin)
}

// OriginFromContext returns the origin stored by WithRequestOrigin. Work that
// did not start from an HTTP request is attributed to "system".
func OriginFromContext(ctx context.Context) RequestOrigin {
	if ctx != nil {
		if origin, ok := ctx.Value(requestOriginKey{}).(RequestOrigin); ok && origin.IPAddress != "" {
			return origin
		}
	}
	return RequestOrigin{IPAddress: "system", UserAgent: "saju-admin-api"}
}
