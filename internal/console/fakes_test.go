package console

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/saju-admin-api/internal/dto"
	"github.com/noah-isme/saju-admin-api/internal/models"
)

type gateStub struct {
	authenticated bool
	admin         bool
	token         string
}

func (g gateStub) IsAuthenticated() bool { return g.authenticated }
func (g gateStub) IsAdmin() bool         { return g.authenticated && g.admin }
func (g gateStub) Token() string         { return g.token }

var (
	adminGate   = gateStub{authenticated: true, admin: true, token: "admin-token"}
	managerGate = gateStub{authenticated: true, token: "manager-token"}
)

type approveCall struct {
	id      string
	payload dto.ApproveSuggestionRequest
}

type mutatorStub struct {
	mu       sync.Mutex
	approves []approveCall
	rejects  map[string]string
	deletes  []string
	err      error
	block    chan struct{}
	entered  chan struct{}
}

func newMutatorStub() *mutatorStub {
	return &mutatorStub{rejects: make(map[string]string)}
}

func (m *mutatorStub) wait() {
	if m.entered != nil {
		m.entered <- struct{}{}
	}
	if m.block != nil {
		<-m.block
	}
}

func (m *mutatorStub) Approve(_ context.Context, id string, payload dto.ApproveSuggestionRequest) error {
	m.wait()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.approves = append(m.approves, approveCall{id: id, payload: payload})
	return m.err
}

func (m *mutatorStub) Reject(_ context.Context, id, reason string) error {
	m.wait()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejects[id] = reason
	return m.err
}

func (m *mutatorStub) Delete(_ context.Context, id string) error {
	m.wait()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes = append(m.deletes, id)
	return m.err
}

type reloaderStub struct {
	mu    sync.Mutex
	page  int
	loads []int
}

func (r *reloaderStub) CurrentPage() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.page
}

func (r *reloaderStub) Load(_ context.Context, page int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loads = append(r.loads, page)
	return nil
}

type alertRecorder struct {
	mu       sync.Mutex
	messages []string
}

func (a *alertRecorder) Alert(message string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.messages = append(a.messages, message)
}

func (a *alertRecorder) last() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.messages) == 0 {
		return ""
	}
	return a.messages[len(a.messages)-1]
}

func pendingSuggestion(id, code string) models.Suggestion {
	return models.Suggestion{
		ID:              id,
		SuggestionType:  models.SuggestionTypeDecadeSky,
		GyeokgukName:    "정관격",
		Code:            code,
		OriginalResult:  "패",
		SuggestedResult: "성",
		SuggestedReason: "월령 득기",
		Status:          models.SuggestionStatusPending,
		SuggestedBy:     "Kim Manager",
		CreatedAt:       time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func signToken(t *testing.T, role models.UserRole, expiresAt time.Time) string {
	t.Helper()
	claims := models.JWTClaims{
		UserID:   "user-1",
		Role:     role,
		Email:    "admin@example.com",
		FullName: "Lee Admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(expiresAt.Add(-time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("console-secret"))
	require.NoError(t, err)
	return signed
}
