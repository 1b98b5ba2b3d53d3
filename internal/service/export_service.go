package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/saju-admin-api/internal/dto"
	"github.com/noah-isme/saju-admin-api/internal/gyeokguk"
	"github.com/noah-isme/saju-admin-api/internal/models"
	appErrors "github.com/noah-isme/saju-admin-api/pkg/errors"
	"github.com/noah-isme/saju-admin-api/pkg/export"
)

type suggestionRowSource interface {
	ExportRows(ctx context.Context, query dto.SuggestionQuery) ([]models.Suggestion, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportResult is a rendered export ready to be streamed.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
	Rows        int
}

// ExportService renders the filtered suggestion ledger as CSV or PDF.
type ExportService struct {
	source suggestionRowSource
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(source suggestionRowSource, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter(true)
	}
	if pdf == nil {
		pdf = export.NewPDFExporter("")
	}
	return &ExportService{
		source: source,
		csv:    csv,
		pdf:    pdf,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

var suggestionExportHeaders = []string{
	"ID", "Type", "Gyeokguk", "Target", "Code", "Status",
	"Original Result", "Suggested Result", "Suggested Roles", "Suggested By",
	"Reviewed By", "Reviewed At", "Rejection Reason", "Created At",
}

var suggestionExportWeights = []float64{3, 2, 2, 1, 1, 1.5, 1.5, 1.5, 3, 2, 2, 2.5, 3, 2.5}

// Render exports every suggestion matching query in the requested format.
func (s *ExportService) Render(ctx context.Context, query dto.SuggestionQuery, format dto.ExportFormat) (*ExportResult, error) {
	if format == "" {
		format = dto.ExportFormatCSV
	}
	if format != dto.ExportFormatCSV && format != dto.ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format: %s", format))
	}
	rows, err := s.source.ExportRows(ctx, query)
	if err != nil {
		return nil, err
	}
	dataset := buildSuggestionDataset(rows)
	generatedAt := s.now()

	var payload []byte
	contentType := "text/csv; charset=utf-8"
	switch format {
	case dto.ExportFormatPDF:
		contentType = "application/pdf"
		payload, err = s.pdf.Render(dataset, fmt.Sprintf("Gyeokguk suggestions %s", generatedAt.Format("2006-01-02")))
	default:
		payload, err = s.csv.Render(dataset)
	}
	if err != nil {
		return nil, appErrors.ErrInternal.Wrap(err, "failed to render export")
	}
	s.logger.Info("suggestion export rendered", zap.String("format", string(format)), zap.Int("rows", len(rows)))

	return &ExportResult{
		Filename:    fmt.Sprintf("gyeokguk_suggestions_%s.%s", generatedAt.Format("20060102_150405"), format),
		ContentType: contentType,
		Payload:     payload,
		Rows:        len(rows),
	}, nil
}

func buildSuggestionDataset(rows []models.Suggestion) export.Dataset {
	data := make([][]string, 0, len(rows))
	for _, row := range rows {
		data = append(data, []string{
			row.ID,
			string(row.SuggestionType),
			row.GyeokgukName,
			row.TargetChar,
			row.Code,
			string(row.Status),
			row.OriginalResult,
			row.SuggestedResult,
			formatRoleSlots(row.SuggestedRoles),
			row.SuggestedBy,
			deref(row.ReviewedBy),
			formatExportTime(row.ReviewedAt),
			deref(row.RejectionReason),
			row.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return export.Dataset{Headers: suggestionExportHeaders, Rows: data, Weights: suggestionExportWeights}
}

// formatRoleSlots writes filled slots as "1차=정관; 3차=인성".
func formatRoleSlots(roles models.RoleSlots) string {
	out := ""
	for i, value := range roles.Values {
		if value == "" {
			continue
		}
		if out != "" {
			out += "; "
		}
		out += gyeokguk.SlotLabel(i) + "=" + value
	}
	return out
}

func formatExportTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
