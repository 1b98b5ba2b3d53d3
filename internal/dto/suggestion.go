package dto

import "github.com/noah-isme/saju-admin-api/internal/models"

// StatusAll is the list filter value meaning "any status".
const StatusAll = "all"

// SuggestionQuery mirrors the supported listing query string.
type SuggestionQuery struct {
	Page           int    `form:"page"`
	PerPage        int    `form:"per_page"`
	Status         string `form:"status"`
	SuggestionType string `form:"suggestion_type"`
	GyeokgukName   string `form:"gyeokguk_name"`
}

// SuggestionListResponse is the list envelope.
type SuggestionListResponse struct {
	Success     bool                `json:"success"`
	Suggestions []models.Suggestion `json:"suggestions"`
	Pagination  models.Pagination   `json:"pagination"`
	Error       string              `json:"error,omitempty"`
}

// SuggestionResponse wraps a single record.
type SuggestionResponse struct {
	Success    bool               `json:"success"`
	Suggestion *models.Suggestion `json:"suggestion,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// MutationResponse is returned by approve, reject and delete.
type MutationResponse struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message,omitempty"`
	Suggestion *models.Suggestion `json:"suggestion,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// ApproveSuggestionRequest carries the admin's final judgment. SuggestedRoles is
// omitted entirely when no licensed slot has a value.
type ApproveSuggestionRequest struct {
	SuggestedResult string            `json:"suggested_result" validate:"required,oneof=성 패 성중유패 패중유성 성패공존"`
	SuggestedReason string            `json:"suggested_reason" validate:"max=4000"`
	SuggestedRoles  *models.RoleSlots `json:"suggested_roles,omitempty"`
}

// RejectSuggestionRequest carries the mandatory rejection rationale.
type RejectSuggestionRequest struct {
	Reason string `json:"reason" validate:"required,max=2000"`
}

// CreateSuggestionRequest proposes a correction for review.
type CreateSuggestionRequest struct {
	SuggestionType  models.SuggestionType `json:"suggestion_type" validate:"required,oneof=decade_sky decade_earth year_sky year_earth"`
	GyeokgukName    string                `json:"gyeokguk_name" validate:"required,max=100"`
	TargetChar      string                `json:"target_char" validate:"required,max=10"`
	Code            string                `json:"code" validate:"max=32"`
	OriginalResult  string                `json:"original_result"`
	OriginalReason  string                `json:"original_reason"`
	OriginalRoles   models.RoleSlots      `json:"original_roles"`
	SuggestedResult string                `json:"suggested_result" validate:"required,oneof=성 패 성중유패 패중유성 성패공존"`
	SuggestedReason string                `json:"suggested_reason" validate:"max=4000"`
	SuggestedRoles  models.RoleSlots      `json:"suggested_roles"`
	SampleOrderID   *string               `json:"sample_order,omitempty"`
}

// ExportFormat selects the export renderer.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)
