package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/saju-admin-api/internal/models"
)

var suggestionRowColumns = []string{
	"id", "suggestion_type", "gyeokguk_name", "target_char", "code",
	"original_result", "original_reason", "original_roles",
	"suggested_result", "suggested_reason", "suggested_roles",
	"status", "rejection_reason", "suggested_by", "reviewed_by", "reviewed_at", "sample_order_id", "created_at",
}

func newSuggestionRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSuggestionRepositoryCreateAndGet(t *testing.T) {
	db, mock, cleanup := newSuggestionRepoMock(t)
	defer cleanup()

	repo := NewSuggestionRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO gyeokguk_suggestions")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	suggestion := &models.Suggestion{
		SuggestionType:  models.SuggestionTypeYearSky,
		GyeokgukName:    "정관격",
		TargetChar:      "甲",
		Code:            "甲乙",
		SuggestedResult: "성",
		SuggestedRoles:  models.NewRoleSlots("상신"),
		SuggestedBy:     "manager kim",
	}
	require.NoError(t, repo.Create(context.Background(), suggestion))
	require.NotEmpty(t, suggestion.ID)
	require.Equal(t, models.SuggestionStatusPending, suggestion.Status)

	rows := sqlmock.NewRows(suggestionRowColumns).
		AddRow(suggestion.ID, "year_sky", "정관격", "甲", "甲乙", "패", "old", `["x","y"]`,
			"성", "new", `{"first":"상신"}`, "pending", nil, "manager kim", nil, nil, nil, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, suggestion_type")).
		WithArgs(suggestion.ID).
		WillReturnRows(rows)

	found, err := repo.GetByID(context.Background(), suggestion.ID)
	require.NoError(t, err)
	require.Equal(t, suggestion.ID, found.ID)
	require.Equal(t, models.RoleShapeList, found.OriginalRoles.Shape)
	require.Equal(t, "상신", found.SuggestedRoles.Values[0])
	require.Nil(t, found.ReviewedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSuggestionRepositoryListPageFilters(t *testing.T) {
	db, mock, cleanup := newSuggestionRepoMock(t)
	defer cleanup()
	mock.MatchExpectationsInOrder(false)

	repo := NewSuggestionRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM gyeokguk_suggestions WHERE status = $1 AND suggestion_type = $2 AND gyeokguk_name ILIKE $3")).
		WithArgs("pending", "decade_earth", `%정관\_격%`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(41))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC, id DESC LIMIT 20 OFFSET 20")).
		WithArgs("pending", "decade_earth", `%정관\_격%`).
		WillReturnRows(sqlmock.NewRows(suggestionRowColumns).
			AddRow("s-1", "decade_earth", "정관_격", "子", "子丑", "성", "", nil, "패", "", nil, "pending", nil, "lee", nil, nil, nil, time.Now()))

	list, total, err := repo.ListPage(context.Background(), models.SuggestionFilter{
		Status:       models.SuggestionStatusPending,
		Type:         models.SuggestionTypeDecadeEarth,
		GyeokgukName: " 정관_격 ",
		Page:         2,
		PerPage:      20,
	})
	require.NoError(t, err)
	require.Equal(t, 41, total)
	require.Len(t, list, 1)
	require.True(t, list[0].OriginalRoles.IsEmpty())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSuggestionRepositoryListPageEmpty(t *testing.T) {
	db, mock, cleanup := newSuggestionRepoMock(t)
	defer cleanup()
	mock.MatchExpectationsInOrder(false)

	repo := NewSuggestionRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM gyeokguk_suggestions")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta("LIMIT 20 OFFSET 0")).
		WillReturnRows(sqlmock.NewRows(suggestionRowColumns))

	list, total, err := repo.ListPage(context.Background(), models.SuggestionFilter{Page: 1})
	require.NoError(t, err)
	require.Zero(t, total)
	require.NotNil(t, list)
	require.Empty(t, list)
}

func TestSuggestionRepositoryApproveGuardsPending(t *testing.T) {
	db, mock, cleanup := newSuggestionRepoMock(t)
	defer cleanup()

	repo := NewSuggestionRepository(db)
	params := ApproveSuggestionParams{
		ID:              "s-1",
		SuggestedResult: "성",
		SuggestedRoles:  models.NewRoleSlots("a"),
		ReviewedBy:      "admin",
		ReviewedAt:      time.Now(),
	}
	mock.ExpectExec(regexp.QuoteMeta("UPDATE gyeokguk_suggestions")).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Approve(context.Background(), params))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE gyeokguk_suggestions")).WillReturnResult(sqlmock.NewResult(0, 0))
	require.ErrorIs(t, repo.Approve(context.Background(), params), sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSuggestionRepositoryRejectAndDelete(t *testing.T) {
	db, mock, cleanup := newSuggestionRepoMock(t)
	defer cleanup()

	repo := NewSuggestionRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("rejection_reason = ?")).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Reject(context.Background(), RejectSuggestionParams{
		ID: "s-1", Reason: "근거 부족", ReviewedBy: "admin", ReviewedAt: time.Now(),
	}))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM gyeokguk_suggestions WHERE id = $1")).
		WithArgs("s-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), "s-1"))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM gyeokguk_suggestions")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.ErrorIs(t, repo.Delete(context.Background(), "missing"), sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
