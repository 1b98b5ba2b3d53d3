package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/saju-admin-api/internal/models"
	appErrors "github.com/noah-isme/saju-admin-api/pkg/errors"
)

type mockAuthRepo struct {
	user             *models.User
	findErr          error
	lastLoginUpdated bool
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if m.user == nil {
		return nil, sql.ErrNoRows
	}
	return m.user, nil
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.user == nil || m.user.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.user, nil
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func newTestAuthService(t *testing.T, role models.UserRole, active bool) (*AuthService, *mockAuthRepo, *auditRecorderStub) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &mockAuthRepo{user: &models.User{
		ID:           "user-1",
		Email:        "admin@saju.test",
		PasswordHash: string(hash),
		FullName:     "Admin Park",
		Role:         role,
		Active:       active,
	}}
	audit := &auditRecorderStub{}
	svc := NewAuthService(repo, audit, nil, zap.NewNop(), AuthConfig{
		AccessTokenSecret: "test-secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "saju-admin",
	})
	return svc, repo, audit
}

func TestAuthServiceLoginIssuesValidToken(t *testing.T) {
	svc, repo, audit := newTestAuthService(t, models.RoleAdmin, true)

	ctx := models.WithRequestOrigin(context.Background(), models.RequestOrigin{IPAddress: "192.0.2.10", UserAgent: "test"})
	resp, err := svc.Login(ctx, models.LoginRequest{Email: " admin@saju.test ", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, models.RoleAdmin, resp.User.Role)
	assert.True(t, repo.lastLoginUpdated)
	assert.Equal(t, "Bearer", resp.TokenType)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionLogin, audit.logs[0].Action)
	assert.Equal(t, "192.0.2.10", audit.logs[0].IPAddress)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "Admin Park", claims.DisplayName())
	assert.True(t, claims.Role.IsAdmin())
}

func TestAuthServiceLoginFailures(t *testing.T) {
	svc, repo, audit := newTestAuthService(t, models.RoleManager, true)
	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@saju.test", Password: "wrong"})
	require.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))
	assert.False(t, repo.lastLoginUpdated)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionLoginFailed, audit.logs[0].Action)
	require.NotNil(t, audit.logs[0].UserID)
	assert.Contains(t, string(audit.logs[0].NewValues), appErrors.CodeInvalidCredentials)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "not-an-email", Password: "secret123"})
	require.True(t, appErrors.Is(err, appErrors.ErrValidation))
	assert.Len(t, audit.logs, 1)

	repo.user = nil
	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "ghost@saju.test", Password: "secret123"})
	require.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))
	require.Len(t, audit.logs, 2)
	assert.Nil(t, audit.logs[1].UserID)

	inactive, _, _ := newTestAuthService(t, models.RoleManager, false)
	_, err = inactive.Login(context.Background(), models.LoginRequest{Email: "admin@saju.test", Password: "secret123"})
	require.True(t, appErrors.Is(err, appErrors.ErrInactiveAccount))
}

func TestAuthServiceValidateTokenRejectsExpiredAndForeign(t *testing.T) {
	svc, _, _ := newTestAuthService(t, models.RoleAdmin, true)
	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@saju.test", Password: "secret123"})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().UTC().Add(2 * time.Hour) }
	_, err = svc.ValidateToken(resp.AccessToken)
	require.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))

	other := NewAuthService(&mockAuthRepo{}, nil, nil, nil, AuthConfig{AccessTokenSecret: "other"})
	_, err = other.ValidateToken(resp.AccessToken)
	require.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}

func TestAuthServiceMe(t *testing.T) {
	svc, _, _ := newTestAuthService(t, models.RoleManager, true)

	info, err := svc.Me(context.Background(), &models.JWTClaims{UserID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, "admin@saju.test", info.Email)

	_, err = svc.Me(context.Background(), &models.JWTClaims{UserID: "ghost"})
	require.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))

	_, err = svc.Me(context.Background(), nil)
	require.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}
