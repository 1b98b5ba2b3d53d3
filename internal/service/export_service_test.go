package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/saju-admin-api/internal/dto"
	"github.com/noah-isme/saju-admin-api/internal/models"
	appErrors "github.com/noah-isme/saju-admin-api/pkg/errors"
	"github.com/noah-isme/saju-admin-api/pkg/export"
)

type rowSourceStub struct {
	rows  []models.Suggestion
	query dto.SuggestionQuery
}

func (r *rowSourceStub) ExportRows(ctx context.Context, query dto.SuggestionQuery) ([]models.Suggestion, error) {
	r.query = query
	return r.rows, nil
}

func exportFixture() []models.Suggestion {
	reviewer := "Admin Park"
	reviewedAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	return []models.Suggestion{{
		ID:              "s-1",
		SuggestionType:  models.SuggestionTypeYearSky,
		GyeokgukName:    "정관격",
		Code:            "합AB합CD",
		Status:          models.SuggestionStatusApproved,
		SuggestedResult: "성",
		SuggestedRoles:  models.NewRoleSlots("정관", "", "인성"),
		ReviewedBy:      &reviewer,
		ReviewedAt:      &reviewedAt,
		CreatedAt:       reviewedAt.Add(-time.Hour),
	}}
}

func TestExportServiceRenderCSV(t *testing.T) {
	source := &rowSourceStub{rows: exportFixture()}
	svc := NewExportService(source, export.NewCSVExporter(false), nil, zap.NewNop())

	result, err := svc.Render(context.Background(), dto.SuggestionQuery{Status: "approved"}, "")
	require.NoError(t, err)
	require.Equal(t, "approved", source.query.Status)
	require.Equal(t, 1, result.Rows)
	require.Contains(t, result.Filename, ".csv")

	records, err := csv.NewReader(bytes.NewReader(result.Payload)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, suggestionExportHeaders, records[0])
	require.Equal(t, "1차=정관; 3차=인성", records[1][8])
	require.Equal(t, "2026-03-02T09:00:00Z", records[1][11])
}

func TestExportServiceRenderPDF(t *testing.T) {
	svc := NewExportService(&rowSourceStub{rows: exportFixture()}, nil, nil, nil)

	result, err := svc.Render(context.Background(), dto.SuggestionQuery{}, dto.ExportFormatPDF)
	require.NoError(t, err)
	require.Equal(t, "application/pdf", result.ContentType)
	require.True(t, bytes.HasPrefix(result.Payload, []byte("%PDF")))
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	svc := NewExportService(&rowSourceStub{}, nil, nil, nil)
	_, err := svc.Render(context.Background(), dto.SuggestionQuery{}, "xlsx")
	require.True(t, appErrors.Is(err, appErrors.ErrValidation))
}
