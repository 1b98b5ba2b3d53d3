package models

import (
	"time"

	"github.com/noah-isme/saju-admin-api/internal/gyeokguk"
)

// SuggestionType names the axis of the classification being corrected.
type SuggestionType string

const (
	SuggestionTypeDecadeSky   SuggestionType = "decade_sky"
	SuggestionTypeDecadeEarth SuggestionType = "decade_earth"
	SuggestionTypeYearSky     SuggestionType = "year_sky"
	SuggestionTypeYearEarth   SuggestionType = "year_earth"
)

// Valid reports whether t is one of the supported axes.
func (t SuggestionType) Valid() bool {
	switch t {
	case SuggestionTypeDecadeSky, SuggestionTypeDecadeEarth, SuggestionTypeYearSky, SuggestionTypeYearEarth:
		return true
	}
	return false
}

// SuggestionStatus captures the review lifecycle. Approved and rejected are terminal.
type SuggestionStatus string

const (
	SuggestionStatusPending  SuggestionStatus = "pending"
	SuggestionStatusApproved SuggestionStatus = "approved"
	SuggestionStatusRejected SuggestionStatus = "rejected"
)

// Suggestion is a proposed correction to an auto-generated gyeokguk judgment.
type Suggestion struct {
	ID              string           `db:"id" json:"id"`
	SuggestionType  SuggestionType   `db:"suggestion_type" json:"suggestion_type"`
	GyeokgukName    string           `db:"gyeokguk_name" json:"gyeokguk_name"`
	TargetChar      string           `db:"target_char" json:"target_char"`
	Code            string           `db:"code" json:"code"`
	OriginalResult  string           `db:"original_result" json:"original_result"`
	OriginalReason  string           `db:"original_reason" json:"original_reason"`
	OriginalRoles   RoleSlots        `db:"original_roles" json:"original_roles"`
	SuggestedResult string           `db:"suggested_result" json:"suggested_result"`
	SuggestedReason string           `db:"suggested_reason" json:"suggested_reason"`
	SuggestedRoles  RoleSlots        `db:"suggested_roles" json:"suggested_roles"`
	Status          SuggestionStatus `db:"status" json:"status"`
	RejectionReason *string          `db:"rejection_reason" json:"rejection_reason,omitempty"`
	SuggestedBy     string           `db:"suggested_by" json:"suggested_by"`
	ReviewedBy      *string          `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time       `db:"reviewed_at" json:"reviewed_at,omitempty"`
	SampleOrderID   *string          `db:"sample_order_id" json:"sample_order,omitempty"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
}

// IsPending reports whether the suggestion can still be approved or rejected.
func (s *Suggestion) IsPending() bool {
	return s != nil && s.Status == SuggestionStatusPending
}

// RoleCount is the number of role slots licensed by the suggestion's code.
func (s *Suggestion) RoleCount() int {
	if s == nil {
		return 0
	}
	return gyeokguk.RoleCount(s.Code)
}

// SuggestionFilter constrains listing queries.
type SuggestionFilter struct {
	Status       SuggestionStatus
	Type         SuggestionType
	GyeokgukName string
	Page         int
	PerPage      int
}

// Offset converts the page cursor into a row offset.
func (f SuggestionFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.PerPage
}

// Pagination is returned alongside list responses.
type Pagination struct {
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
	TotalPages  int `json:"total_pages"`
	TotalCount  int `json:"total_count"`
}

// NewPagination computes the page count for total rows of perPage size.
func NewPagination(page, perPage, total int) Pagination {
	pages := 0
	if perPage > 0 && total > 0 {
		pages = (total + perPage - 1) / perPage
	}
	return Pagination{CurrentPage: page, PerPage: perPage, TotalPages: pages, TotalCount: total}
}
