package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/saju-admin-api/internal/dto"
	"github.com/noah-isme/saju-admin-api/internal/models"
	"github.com/noah-isme/saju-admin-api/internal/service"
	appErrors "github.com/noah-isme/saju-admin-api/pkg/errors"
	"github.com/noah-isme/saju-admin-api/pkg/response"
)

type suggestionService interface {
	List(ctx context.Context, query dto.SuggestionQuery) (*service.SuggestionPage, error)
	Get(ctx context.Context, id string) (*models.Suggestion, error)
	Create(ctx context.Context, req dto.CreateSuggestionRequest, actor *models.JWTClaims) (*models.Suggestion, error)
	Approve(ctx context.Context, id string, req dto.ApproveSuggestionRequest, actor *models.JWTClaims) (*models.Suggestion, error)
	Reject(ctx context.Context, id string, req dto.RejectSuggestionRequest, actor *models.JWTClaims) (*models.Suggestion, error)
	Delete(ctx context.Context, id string, actor *models.JWTClaims) error
}

type suggestionExporter interface {
	Render(ctx context.Context, query dto.SuggestionQuery, format dto.ExportFormat) (*service.ExportResult, error)
}

// SuggestionHandler exposes the gyeokguk suggestion moderation endpoints.
type SuggestionHandler struct {
	service  suggestionService
	exporter suggestionExporter
}

// NewSuggestionHandler constructs the handler. exporter may be nil.
func NewSuggestionHandler(service suggestionService, exporter suggestionExporter) *SuggestionHandler {
	return &SuggestionHandler{service: service, exporter: exporter}
}

// List godoc
// @Summary List gyeokguk suggestions
// @Tags Suggestions
// @Produce json
// @Param page query int false "Page (1-based)"
// @Param per_page query int false "Page size (max 100)"
// @Param status query string false "pending, approved, rejected or all"
// @Param suggestion_type query string false "decade_sky, decade_earth, year_sky or year_earth"
// @Param gyeokguk_name query string false "Case-insensitive name fragment"
// @Success 200 {object} dto.SuggestionListResponse
// @Failure 400 {object} response.Envelope
// @Router /suggestions [get]
func (h *SuggestionHandler) List(c *gin.Context) {
	var query dto.SuggestionQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query parameters"))
		return
	}
	page, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.SuggestionListResponse{
		Success:     true,
		Suggestions: page.Suggestions,
		Pagination:  page.Pagination,
	})
}

// Get godoc
// @Summary Get a suggestion
// @Tags Suggestions
// @Produce json
// @Param id path string true "Suggestion ID"
// @Success 200 {object} dto.SuggestionResponse
// @Failure 404 {object} response.Envelope
// @Router /suggestions/{id} [get]
func (h *SuggestionHandler) Get(c *gin.Context) {
	id, err := suggestionID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	suggestion, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.SuggestionResponse{Success: true, Suggestion: suggestion})
}

// Create godoc
// @Summary Propose a correction
// @Tags Suggestions
// @Accept json
// @Produce json
// @Param payload body dto.CreateSuggestionRequest true "Suggestion payload"
// @Success 201 {object} dto.SuggestionResponse
// @Failure 400 {object} response.Envelope
// @Router /suggestions [post]
func (h *SuggestionHandler) Create(c *gin.Context) {
	var req dto.CreateSuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid suggestion payload"))
		return
	}
	suggestion, err := h.service.Create(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, dto.SuggestionResponse{Success: true, Suggestion: suggestion})
}

// Approve godoc
// @Summary Approve a pending suggestion
// @Tags Suggestions
// @Accept json
// @Produce json
// @Param id path string true "Suggestion ID"
// @Param payload body dto.ApproveSuggestionRequest true "Final judgment"
// @Success 200 {object} dto.MutationResponse
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /suggestions/{id}/approve [post]
func (h *SuggestionHandler) Approve(c *gin.Context) {
	id, err := suggestionID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.ApproveSuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid approval payload"))
		return
	}
	suggestion, err := h.service.Approve(c.Request.Context(), id, req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.MutationResponse{Success: true, Message: "suggestion approved", Suggestion: suggestion})
}

// Reject godoc
// @Summary Reject a pending suggestion
// @Tags Suggestions
// @Accept json
// @Produce json
// @Param id path string true "Suggestion ID"
// @Param payload body dto.RejectSuggestionRequest true "Rejection reason"
// @Success 200 {object} dto.MutationResponse
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /suggestions/{id}/reject [post]
func (h *SuggestionHandler) Reject(c *gin.Context) {
	id, err := suggestionID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.RejectSuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid rejection payload"))
		return
	}
	suggestion, err := h.service.Reject(c.Request.Context(), id, req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.MutationResponse{Success: true, Message: "suggestion rejected", Suggestion: suggestion})
}

// Delete godoc
// @Summary Delete a suggestion in any state
// @Tags Suggestions
// @Produce json
// @Param id path string true "Suggestion ID"
// @Success 200 {object} dto.MutationResponse
// @Failure 404 {object} response.Envelope
// @Router /suggestions/{id} [delete]
func (h *SuggestionHandler) Delete(c *gin.Context) {
	id, err := suggestionID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id, claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.MutationResponse{Success: true, Message: "suggestion deleted"})
}

// Export godoc
// @Summary Export the filtered suggestion ledger
// @Tags Suggestions
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Param status query string false "Status filter"
// @Param suggestion_type query string false "Type filter"
// @Param gyeokguk_name query string false "Name filter"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /suggestions/export [get]
func (h *SuggestionHandler) Export(c *gin.Context) {
	if h.exporter == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "export not configured"))
		return
	}
	var query dto.SuggestionQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query parameters"))
		return
	}
	format := dto.ExportFormat(strings.ToLower(strings.TrimSpace(c.Query("format"))))
	result, err := h.exporter.Render(c.Request.Context(), query, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}
