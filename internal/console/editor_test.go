package console

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/saju-admin-api/internal/models"
	appErrors "github.com/noah-isme/saju-admin-api/pkg/errors"
)

func newEditorDeps(gate Gate, page int) (Deps, *mutatorStub, *reloaderStub, *alertRecorder) {
	client := newMutatorStub()
	list := &reloaderStub{page: page}
	alerts := &alertRecorder{}
	return Deps{Gate: gate, Client: client, List: list, InFlight: NewInFlight(), Notifier: alerts}, client, list, alerts
}

func TestBuildApprovalPayloadLicensesSlotsByCode(t *testing.T) {
	payload := BuildApprovalPayload("甲乙", "성", "", [4]string{"정관", "인성", "식신", ""})
	require.NotNil(t, payload.SuggestedRoles)
	require.Equal(t, [4]string{"정관"}, payload.SuggestedRoles.Values)

	payload = BuildApprovalPayload("甲乙", "성", "", [4]string{"", "인성"})
	require.Nil(t, payload.SuggestedRoles)

	payload = BuildApprovalPayload("甲합乙丙", " 패 ", "r", [4]string{"a", "b"})
	require.Equal(t, "패", payload.SuggestedResult)
	require.Equal(t, [4]string{"a", "b"}, payload.SuggestedRoles.Values)
}

func TestApprovalEditorSeedsLicensedSlotsOnly(t *testing.T) {
	deps, _, _, _ := newEditorDeps(adminGate, 1)
	editor := NewApprovalEditor(deps)

	first := pendingSuggestion("s-1", "甲乙丙丁")
	first.SuggestedRoles = models.NewRoleSlots("정관", "인성")
	require.NoError(t, editor.Open(first))
	inputs := editor.RoleInputs()
	require.Len(t, inputs, 2)
	require.Equal(t, RoleInput{Key: "first", Label: "1차", Value: "정관"}, inputs[0])
	require.NoError(t, editor.SetRole(1, "식신"))

	second := pendingSuggestion("s-2", "甲乙")
	require.NoError(t, editor.Open(second))
	inputs = editor.RoleInputs()
	require.Len(t, inputs, 1)
	require.Equal(t, "1차", inputs[0].Label)
	require.Empty(t, inputs[0].Value)

	err := editor.SetRole(1, "stale")
	require.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestApprovalEditorRefusesNonAdminAndDecided(t *testing.T) {
	deps, _, _, alerts := newEditorDeps(managerGate, 1)
	editor := NewApprovalEditor(deps)

	err := editor.Open(pendingSuggestion("s-1", "甲乙"))
	require.True(t, appErrors.Is(err, appErrors.ErrForbidden))
	require.Equal(t, "admin role required", alerts.last())
	require.False(t, editor.IsOpen())

	deps, _, _, _ = newEditorDeps(adminGate, 1)
	editor = NewApprovalEditor(deps)
	decided := pendingSuggestion("s-1", "甲乙")
	decided.Status = models.SuggestionStatusRejected
	require.True(t, appErrors.Is(editor.Open(decided), appErrors.ErrConflict))
}

func TestApprovalEditorSubmitOmitsEmptyRolesAndReloadsCapturedPage(t *testing.T) {
	deps, client, list, alerts := newEditorDeps(adminGate, 3)
	editor := NewApprovalEditor(deps)

	require.NoError(t, editor.Open(pendingSuggestion("s-1", "甲乙")))
	require.True(t, editor.CanSubmit())
	require.NoError(t, editor.Submit(context.Background()))

	require.Len(t, client.approves, 1)
	call := client.approves[0]
	require.Equal(t, "s-1", call.id)
	require.Equal(t, "성", call.payload.SuggestedResult)
	require.Nil(t, call.payload.SuggestedRoles)
	require.Equal(t, []int{3}, list.loads)
	require.Equal(t, "suggestion approved", alerts.last())
	require.False(t, editor.IsOpen())
}

func TestApprovalEditorValidatesResultWithoutRequest(t *testing.T) {
	deps, client, _, _ := newEditorDeps(adminGate, 1)
	editor := NewApprovalEditor(deps)
	require.NoError(t, editor.Open(pendingSuggestion("s-1", "甲乙")))

	require.NoError(t, editor.SetResult(""))
	require.False(t, editor.CanSubmit())
	require.True(t, appErrors.Is(editor.Submit(context.Background()), appErrors.ErrValidation))

	require.NoError(t, editor.SetResult("maybe"))
	require.True(t, appErrors.Is(editor.Submit(context.Background()), appErrors.ErrValidation))
	require.Empty(t, client.approves)
	require.True(t, editor.IsOpen())
}

func TestApprovalEditorKeepsSessionOnFailure(t *testing.T) {
	deps, client, list, alerts := newEditorDeps(adminGate, 2)
	client.err = appErrors.Clone(appErrors.ErrServerReported, "suggestion already reviewed")
	editor := NewApprovalEditor(deps)

	require.NoError(t, editor.Open(pendingSuggestion("s-1", "甲乙")))
	require.NoError(t, editor.SetReason("edited"))
	err := editor.Submit(context.Background())
	require.True(t, appErrors.Is(err, appErrors.ErrServerReported))

	require.True(t, editor.IsOpen())
	require.ErrorIs(t, err, editor.LastError())
	require.Equal(t, "suggestion already reviewed", alerts.last())
	require.True(t, Alerted(err))
	require.False(t, Alerted(editor.LastError()))
	require.Empty(t, list.loads)
}

func TestApprovalEditorRefusesDuplicateSubmit(t *testing.T) {
	deps, client, _, _ := newEditorDeps(adminGate, 1)
	client.block = make(chan struct{})
	client.entered = make(chan struct{}, 1)
	editor := NewApprovalEditor(deps)
	require.NoError(t, editor.Open(pendingSuggestion("s-1", "甲乙")))

	done := make(chan error, 1)
	go func() { done <- editor.Submit(context.Background()) }()
	select {
	case <-client.entered:
	case <-time.After(time.Second):
		t.Fatal("approve request not issued")
	}

	require.False(t, editor.CanSubmit())
	err := editor.Submit(context.Background())
	require.True(t, appErrors.Is(err, appErrors.ErrActionInProgress))

	close(client.block)
	require.NoError(t, <-done)
	require.Len(t, client.approves, 1)
}

func TestRejectionEditorRequiresReason(t *testing.T) {
	deps, client, list, alerts := newEditorDeps(adminGate, 4)
	editor := NewRejectionEditor(deps)
	require.NoError(t, editor.Open(pendingSuggestion("s-1", "甲乙")))

	require.NoError(t, editor.SetReason("   "))
	err := editor.Submit(context.Background())
	require.True(t, appErrors.Is(err, appErrors.ErrValidation))
	require.Equal(t, "rejection reason is required", alerts.last())
	require.Empty(t, client.rejects)

	require.NoError(t, editor.SetReason("  근거 부족  "))
	require.NoError(t, editor.Submit(context.Background()))
	require.Equal(t, "근거 부족", client.rejects["s-1"])
	require.Equal(t, []int{4}, list.loads)
	require.False(t, editor.IsOpen())
	require.Empty(t, editor.Reason())
}

func TestRejectionEditorRetainsReasonOnFailure(t *testing.T) {
	deps, client, _, _ := newEditorDeps(adminGate, 1)
	client.err = appErrors.Clone(appErrors.ErrConnectivity, "connection failed")
	editor := NewRejectionEditor(deps)
	require.NoError(t, editor.Open(pendingSuggestion("s-1", "甲乙")))
	require.NoError(t, editor.SetReason("duplicate"))

	err := editor.Submit(context.Background())
	require.True(t, appErrors.Is(err, appErrors.ErrConnectivity))
	require.True(t, editor.IsOpen())
	require.Equal(t, "duplicate", editor.Reason())
	require.ErrorIs(t, err, editor.LastError())
}

func TestRejectionEditorClosedSubmit(t *testing.T) {
	deps, _, _, _ := newEditorDeps(adminGate, 1)
	editor := NewRejectionEditor(deps)
	require.Error(t, editor.Submit(context.Background()))
	require.Error(t, editor.SetReason("x"))
}
