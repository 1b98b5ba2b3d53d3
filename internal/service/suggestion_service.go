package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/saju-admin-api/internal/dto"
	"github.com/noah-isme/saju-admin-api/internal/gyeokguk"
	"github.com/noah-isme/saju-admin-api/internal/models"
	"github.com/noah-isme/saju-admin-api/internal/repository"
	appErrors "github.com/noah-isme/saju-admin-api/pkg/errors"
)

const (
	defaultSuggestionPageSize = 20
	maxSuggestionPageSize     = 100
	suggestionListCachePrefix = "suggestions:list:"
)

var errAlreadyReviewed = appErrors.Clone(appErrors.ErrConflict, "suggestion already reviewed")

type suggestionStore interface {
	Create(ctx context.Context, suggestion *models.Suggestion) error
	GetByID(ctx context.Context, id string) (*models.Suggestion, error)
	ListPage(ctx context.Context, filter models.SuggestionFilter) ([]models.Suggestion, int, error)
	Approve(ctx context.Context, params repository.ApproveSuggestionParams) error
	Reject(ctx context.Context, params repository.RejectSuggestionParams) error
	Delete(ctx context.Context, id string) error
}

type auditRecorder interface {
	Record(ctx context.Context, log *models.AuditLog)
}

// SuggestionPage is one page of the moderation queue.
type SuggestionPage struct {
	Suggestions []models.Suggestion `json:"suggestions"`
	Pagination  models.Pagination   `json:"pagination"`
}

// SuggestionService owns the suggestion review lifecycle.
type SuggestionService struct {
	repo      suggestionStore
	validator *validator.Validate
	cache     *CacheService
	metrics   *MetricsService
	audit     auditRecorder
	logger    *zap.Logger
	pageSize  int
	cacheTTL  time.Duration
	now       func() time.Time
}

// SuggestionServiceOption configures the service.
type SuggestionServiceOption func(*SuggestionService)

// WithSuggestionCache enables list caching.
func WithSuggestionCache(cache *CacheService, ttl time.Duration) SuggestionServiceOption {
	return func(s *SuggestionService) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

// WithSuggestionMetrics records lifecycle transitions.
func WithSuggestionMetrics(metrics *MetricsService) SuggestionServiceOption {
	return func(s *SuggestionService) {
		s.metrics = metrics
	}
}

// WithSuggestionAudit records audit rows for every mutation.
func WithSuggestionAudit(audit auditRecorder) SuggestionServiceOption {
	return func(s *SuggestionService) {
		if audit != nil {
			s.audit = audit
		}
	}
}

// WithSuggestionPageSize overrides the default page size.
func WithSuggestionPageSize(size int) SuggestionServiceOption {
	return func(s *SuggestionService) {
		if size > 0 && size <= maxSuggestionPageSize {
			s.pageSize = size
		}
	}
}

// NewSuggestionService constructs the service.
func NewSuggestionService(repo suggestionStore, validate *validator.Validate, logger *zap.Logger, opts ...SuggestionServiceOption) *SuggestionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &SuggestionService{
		repo:      repo,
		validator: validate,
		logger:    logger,
		pageSize:  defaultSuggestionPageSize,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// List returns one page of suggestions. A page past the end is clamped to the
// last page so callers reloading after a delete never land on an empty page.
func (s *SuggestionService) List(ctx context.Context, query dto.SuggestionQuery) (*SuggestionPage, error) {
	filter, err := s.buildFilter(query)
	if err != nil {
		return nil, err
	}

	return readThrough(ctx, s.cache, listCacheKey(filter), s.cacheTTL, func(ctx context.Context) (*SuggestionPage, error) {
		return s.loadPage(ctx, filter)
	})
}

func (s *SuggestionService) loadPage(ctx context.Context, filter models.SuggestionFilter) (*SuggestionPage, error) {
	items, total, err := s.listPage(ctx, filter)
	if err != nil {
		return nil, err
	}
	pagination := models.NewPagination(filter.Page, filter.PerPage, total)
	if last := max(pagination.TotalPages, 1); filter.Page > last {
		filter.Page = last
		if items, total, err = s.listPage(ctx, filter); err != nil {
			return nil, err
		}
		pagination = models.NewPagination(filter.Page, filter.PerPage, total)
	}
	return &SuggestionPage{Suggestions: items, Pagination: pagination}, nil
}

func (s *SuggestionService) listPage(ctx context.Context, filter models.SuggestionFilter) ([]models.Suggestion, int, error) {
	start := time.Now()
	items, total, err := s.repo.ListPage(ctx, filter)
	s.metrics.ObserveDBQuery("suggestions_list", time.Since(start))
	if err != nil {
		return nil, 0, appErrors.ErrInternal.Wrap(err, "failed to list suggestions")
	}
	return items, total, nil
}

func (s *SuggestionService) buildFilter(query dto.SuggestionQuery) (models.SuggestionFilter, error) {
	filter := models.SuggestionFilter{
		Page:         query.Page,
		PerPage:      query.PerPage,
		GyeokgukName: strings.TrimSpace(query.GyeokgukName),
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = s.pageSize
	}
	if filter.PerPage > maxSuggestionPageSize {
		filter.PerPage = maxSuggestionPageSize
	}

	switch status := models.SuggestionStatus(strings.ToLower(strings.TrimSpace(query.Status))); status {
	case "", dto.StatusAll:
	case models.SuggestionStatusPending, models.SuggestionStatusApproved, models.SuggestionStatusRejected:
		filter.Status = status
	default:
		return filter, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported status filter: %s", query.Status))
	}

	if raw := strings.TrimSpace(query.SuggestionType); raw != "" && raw != dto.StatusAll {
		suggestionType := models.SuggestionType(raw)
		if !suggestionType.Valid() {
			return filter, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported suggestion type: %s", raw))
		}
		filter.Type = suggestionType
	}
	return filter, nil
}

func listCacheKey(filter models.SuggestionFilter) string {
	return fmt.Sprintf("%s%s:%s:%s:%d:%d", suggestionListCachePrefix,
		filter.Status, filter.Type, strings.ToLower(filter.GyeokgukName), filter.Page, filter.PerPage)
}

// Get returns a single suggestion.
func (s *SuggestionService) Get(ctx context.Context, id string) (*models.Suggestion, error) {
	suggestion, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "suggestion not found")
		}
		return nil, appErrors.ErrInternal.Wrap(err, "failed to load suggestion")
	}
	return suggestion, nil
}

// Create stores a new pending suggestion. Proposed roles beyond the code's
// licensed slot count are dropped.
func (s *SuggestionService) Create(ctx context.Context, req dto.CreateSuggestionRequest, actor *models.JWTClaims) (*models.Suggestion, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.ErrValidation.Wrap(err, "invalid suggestion payload")
	}
	count := gyeokguk.RoleCount(req.Code)
	suggestion := &models.Suggestion{
		SuggestionType:  req.SuggestionType,
		GyeokgukName:    strings.TrimSpace(req.GyeokgukName),
		TargetChar:      strings.TrimSpace(req.TargetChar),
		Code:            req.Code,
		OriginalResult:  req.OriginalResult,
		OriginalReason:  req.OriginalReason,
		OriginalRoles:   req.OriginalRoles,
		SuggestedResult: req.SuggestedResult,
		SuggestedReason: strings.TrimSpace(req.SuggestedReason),
		SuggestedRoles:  req.SuggestedRoles.Truncate(count),
		SuggestedBy:     actor.DisplayName(),
		SampleOrderID:   req.SampleOrderID,
	}
	if err := s.repo.Create(ctx, suggestion); err != nil {
		return nil, appErrors.ErrInternal.Wrap(err, "failed to create suggestion")
	}
	s.afterMutation(ctx, actor, models.AuditActionSuggestionCreate, suggestion, nil)
	return suggestion, nil
}

// Approve finalises a pending suggestion with the reviewer's edits.
func (s *SuggestionService) Approve(ctx context.Context, id string, req dto.ApproveSuggestionRequest, actor *models.JWTClaims) (*models.Suggestion, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.ErrValidation.Wrap(err, "invalid approval payload")
	}
	suggestion, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !suggestion.IsPending() {
		return nil, errAlreadyReviewed
	}
	before := *suggestion

	var roles models.RoleSlots
	if req.SuggestedRoles != nil {
		roles = req.SuggestedRoles.Truncate(suggestion.RoleCount())
	}
	now := s.now()
	reviewer := actor.DisplayName()
	params := repository.ApproveSuggestionParams{
		ID:              suggestion.ID,
		SuggestedResult: req.SuggestedResult,
		SuggestedReason: strings.TrimSpace(req.SuggestedReason),
		SuggestedRoles:  roles,
		ReviewedBy:      reviewer,
		ReviewedAt:      now,
	}
	if err := s.repo.Approve(ctx, params); err != nil {
		return nil, s.reviewError(err, "failed to approve suggestion")
	}

	suggestion.Status = models.SuggestionStatusApproved
	suggestion.SuggestedResult = params.SuggestedResult
	suggestion.SuggestedReason = params.SuggestedReason
	suggestion.SuggestedRoles = roles
	suggestion.ReviewedBy = &reviewer
	suggestion.ReviewedAt = &now
	s.afterMutation(ctx, actor, models.AuditActionSuggestionApprove, suggestion, &before)
	return suggestion, nil
}

// Reject closes a pending suggestion with a mandatory reason.
func (s *SuggestionService) Reject(ctx context.Context, id string, req dto.RejectSuggestionRequest, actor *models.JWTClaims) (*models.Suggestion, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	req.Reason = strings.TrimSpace(req.Reason)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.ErrValidation.Wrap(err, "rejection reason is required")
	}
	suggestion, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !suggestion.IsPending() {
		return nil, errAlreadyReviewed
	}
	before := *suggestion

	now := s.now()
	reviewer := actor.DisplayName()
	if err := s.repo.Reject(ctx, repository.RejectSuggestionParams{
		ID:         suggestion.ID,
		Reason:     req.Reason,
		ReviewedBy: reviewer,
		ReviewedAt: now,
	}); err != nil {
		return nil, s.reviewError(err, "failed to reject suggestion")
	}

	suggestion.Status = models.SuggestionStatusRejected
	suggestion.RejectionReason = &req.Reason
	suggestion.ReviewedBy = &reviewer
	suggestion.ReviewedAt = &now
	s.afterMutation(ctx, actor, models.AuditActionSuggestionReject, suggestion, &before)
	return suggestion, nil
}

// Delete removes a suggestion in any state.
func (s *SuggestionService) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	suggestion, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "suggestion not found")
		}
		return appErrors.ErrInternal.Wrap(err, "failed to delete suggestion")
	}
	s.afterMutation(ctx, actor, models.AuditActionSuggestionDelete, nil, suggestion)
	return nil
}

// ExportRows returns every suggestion matching the query, ignoring paging.
func (s *SuggestionService) ExportRows(ctx context.Context, query dto.SuggestionQuery) ([]models.Suggestion, error) {
	filter, err := s.buildFilter(query)
	if err != nil {
		return nil, err
	}
	filter.PerPage = maxSuggestionPageSize
	var rows []models.Suggestion
	for page := 1; ; page++ {
		filter.Page = page
		items, total, err := s.listPage(ctx, filter)
		if err != nil {
			return nil, err
		}
		rows = append(rows, items...)
		if len(items) == 0 || len(rows) >= total {
			break
		}
	}
	return rows, nil
}

// reviewError maps a failed guarded update. A missing row at this point means
// another reviewer got there first.
func (s *SuggestionService) reviewError(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return errAlreadyReviewed
	}
	return appErrors.ErrInternal.Wrap(err, message)
}

func (s *SuggestionService) afterMutation(ctx context.Context, actor *models.JWTClaims, action string, after, before *models.Suggestion) {
	s.cache.Invalidate(ctx, suggestionListCachePrefix+"*")

	subject := after
	if subject == nil {
		subject = before
	}
	s.metrics.RecordTransition(action, subject.SuggestionType)

	if s.audit == nil {
		return
	}
	userID := actor.UserID
	resourceID := subject.ID
	origin := models.OriginFromContext(ctx)
	s.audit.Record(ctx, &models.AuditLog{
		UserID:     &userID,
		Action:     action,
		Resource:   models.AuditResourceSuggestion,
		ResourceID: &resourceID,
		OldValues:  marshalAuditValue(before),
		NewValues:  marshalAuditValue(after),
		IPAddress:  origin.IPAddress,
		UserAgent:  origin.UserAgent,
	})
}

func marshalAuditValue(s *models.Suggestion) []byte {
	if s == nil {
		return nil
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return nil
	}
	return raw
}

func requireAdmin(actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if !actor.Role.IsAdmin() {
		return appErrors.ErrForbidden
	}
	return nil
}
