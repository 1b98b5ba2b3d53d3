package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/saju-admin-api/internal/models"
)

const suggestionColumns = `id, suggestion_type, gyeokguk_name, target_char, code,
       original_result, original_reason, original_roles,
       suggested_result, suggested_reason, suggested_roles,
       status, rejection_reason, suggested_by, reviewed_by, reviewed_at, sample_order_id, created_at`

// SuggestionRepository persists gyeokguk correction suggestions.
type SuggestionRepository struct {
	db *sqlx.DB
}

// NewSuggestionRepository constructs the repository.
func NewSuggestionRepository(db *sqlx.DB) *SuggestionRepository {
	return &SuggestionRepository{db: db}
}

// Create inserts a new suggestion row.
func (r *SuggestionRepository) Create(ctx context.Context, suggestion *models.Suggestion) error {
	if suggestion.ID == "" {
		suggestion.ID = uuid.NewString()
	}
	if suggestion.Status == "" {
		suggestion.Status = models.SuggestionStatusPending
	}
	if suggestion.CreatedAt.IsZero() {
		suggestion.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO gyeokguk_suggestions
	(id, suggestion_type, gyeokguk_name, target_char, code, original_result, original_reason, original_roles,
	 suggested_result, suggested_reason, suggested_roles, status, rejection_reason, suggested_by, reviewed_by,
	 reviewed_at, sample_order_id, created_at)
	VALUES (:id, :suggestion_type, :gyeokguk_name, :target_char, :code, :original_result, :original_reason, :original_roles,
	 :suggested_result, :suggested_reason, :suggested_roles, :status, :rejection_reason, :suggested_by, :reviewed_by,
	 :reviewed_at, :sample_order_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, suggestion); err != nil {
		return fmt.Errorf("create suggestion: %w", err)
	}
	return nil
}

// GetByID fetches a suggestion by identifier.
func (r *SuggestionRepository) GetByID(ctx context.Context, id string) (*models.Suggestion, error) {
	query := `SELECT ` + suggestionColumns + ` FROM gyeokguk_suggestions WHERE id = $1`
	var suggestion models.Suggestion
	if err := r.db.GetContext(ctx, &suggestion, query, id); err != nil {
		return nil, err
	}
	return &suggestion, nil
}

// ListPage returns one page of suggestions (newest first) plus the total number of
// rows matching the filter. Count and page queries run concurrently.
func (r *SuggestionRepository) ListPage(ctx context.Context, filter models.SuggestionFilter) ([]models.Suggestion, int, error) {
	where, args := buildSuggestionWhere(filter)

	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	filter.PerPage = perPage

	countQuery := `SELECT COUNT(*) FROM gyeokguk_suggestions` + where
	pageQuery := `SELECT ` + suggestionColumns + ` FROM gyeokguk_suggestions` + where +
		fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d", perPage, filter.Offset())

	var (
		total       int
		suggestions []models.Suggestion
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := r.db.GetContext(gctx, &total, countQuery, args...); err != nil {
			return fmt.Errorf("count suggestions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := r.db.SelectContext(gctx, &suggestions, pageQuery, args...); err != nil {
			return fmt.Errorf("list suggestions: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	if suggestions == nil {
		suggestions = []models.Suggestion{}
	}
	return suggestions, total, nil
}

func buildSuggestionWhere(filter models.SuggestionFilter) (string, []interface{}) {
	args := make([]interface{}, 0, 3)
	conditions := make([]string, 0, 3)
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		conditions = append(conditions, fmt.Sprintf("suggestion_type = $%d", len(args)))
	}
	if name := strings.TrimSpace(filter.GyeokgukName); name != "" {
		args = append(args, "%"+escapeLike(name)+"%")
		conditions = append(conditions, fmt.Sprintf("gyeokguk_name ILIKE $%d", len(args)))
	}
	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}

// ApproveSuggestionParams groups the columns written on approval.
type ApproveSuggestionParams struct {
	ID              string
	SuggestedResult string
	SuggestedReason string
	SuggestedRoles  models.RoleSlots
	ReviewedBy      string
	ReviewedAt      time.Time
}

// Approve moves a pending suggestion to approved, overwriting the proposal with
// the reviewer's edits. Returns sql.ErrNoRows when the row is missing or no
// longer pending.
func (r *SuggestionRepository) Approve(ctx context.Context, params ApproveSuggestionParams) error {
	const query = `UPDATE gyeokguk_suggestions
	SET status = :status, suggested_result = :suggested_result, suggested_reason = :suggested_reason,
	    suggested_roles = :suggested_roles, reviewed_by = :reviewed_by, reviewed_at = :reviewed_at
	WHERE id = :id AND status = :pending`
	return r.execReview(ctx, "approve suggestion", query, map[string]interface{}{
		"id":               params.ID,
		"status":           models.SuggestionStatusApproved,
		"suggested_result": params.SuggestedResult,
		"suggested_reason": params.SuggestedReason,
		"suggested_roles":  params.SuggestedRoles,
		"reviewed_by":      params.ReviewedBy,
		"reviewed_at":      params.ReviewedAt,
		"pending":          models.SuggestionStatusPending,
	})
}

// RejectSuggestionParams groups the columns written on rejection.
type RejectSuggestionParams struct {
	ID         string
	Reason     string
	ReviewedBy string
	ReviewedAt time.Time
}

// Reject moves a pending suggestion to rejected.
func (r *SuggestionRepository) Reject(ctx context.Context, params RejectSuggestionParams) error {
	const query = `UPDATE gyeokguk_suggestions
	SET status = :status, rejection_reason = :rejection_reason, reviewed_by = :reviewed_by, reviewed_at = :reviewed_at
	WHERE id = :id AND status = :pending`
	return r.execReview(ctx, "reject suggestion", query, map[string]interface{}{
		"id":               params.ID,
		"status":           models.SuggestionStatusRejected,
		"rejection_reason": params.Reason,
		"reviewed_by":      params.ReviewedBy,
		"reviewed_at":      params.ReviewedAt,
		"pending":          models.SuggestionStatusPending,
	})
}

func (r *SuggestionRepository) execReview(ctx context.Context, op, query string, args map[string]interface{}) error {
	result, err := r.db.NamedExecContext(ctx, query, args)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check %s rows: %w", op, err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a suggestion in any state.
func (r *SuggestionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM gyeokguk_suggestions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete suggestion: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check delete suggestion rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
