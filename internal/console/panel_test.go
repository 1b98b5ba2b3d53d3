package console

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/saju-admin-api/internal/models"
)

func TestRenderRolesShapes(t *testing.T) {
	require.Equal(t, RolePlaceholder, RenderRoles(models.RoleSlots{}))
	require.Equal(t, "정관, 인성", RenderRoles(models.RoleSlots{Values: [4]string{"정관", "인성"}, Shape: models.RoleShapeList}))
	require.Equal(t, "1차: 정관 / 3차: 인성", RenderRoles(models.RoleSlots{Values: [4]string{"정관", "", "인성"}, Shape: models.RoleShapeSlots}))
}

func TestRenderRolesShowsLegacyOverflow(t *testing.T) {
	roles := models.RoleSlots{
		Values:   [4]string{"정관", "인성", "식신", "재성"},
		Overflow: []string{"", "비견"},
		Shape:    models.RoleShapeList,
	}
	require.Equal(t, "정관, 인성, 식신, 재성, 비견", RenderRoles(roles))
}

func TestPanelToggleIsLocal(t *testing.T) {
	p := NewPanel(adminGate)

	require.True(t, p.Toggle("s-1"))
	require.True(t, p.IsExpanded("s-1"))
	require.False(t, p.IsExpanded("s-2"))
	require.False(t, p.Toggle("s-1"))
	require.False(t, p.IsExpanded("s-1"))

	p.Toggle("s-1")
	p.Toggle("s-2")
	p.CollapseAll()
	require.False(t, p.IsExpanded("s-1"))
	require.False(t, p.IsExpanded("s-2"))
}

func TestPanelActionsFollowRoleAndStatus(t *testing.T) {
	pending := pendingSuggestion("s-1", "甲乙")
	approved := pendingSuggestion("s-2", "甲乙")
	approved.Status = models.SuggestionStatusApproved

	admin := NewPanel(adminGate)
	require.Equal(t, Actions{Approve: true, Reject: true, Delete: true}, admin.Actions(pending))
	require.Equal(t, Actions{Delete: true}, admin.Actions(approved))

	manager := NewPanel(managerGate)
	require.Equal(t, Actions{}, manager.Actions(pending))

	anonymous := NewPanel(nil)
	require.Equal(t, Actions{}, anonymous.Actions(pending))
}

func TestCompareRows(t *testing.T) {
	s := pendingSuggestion("s-1", "甲乙")
	s.OriginalRoles = models.NewRoleSlots("편관")

	rows := Compare(s)
	require.Len(t, rows, 3)
	require.Equal(t, ComparisonRow{Label: "result", Original: "패", Suggested: "성"}, rows[0])
	require.Equal(t, RolePlaceholder, rows[1].Original)
	require.Equal(t, "1차: 편관", rows[2].Original)
	require.Equal(t, RolePlaceholder, rows[2].Suggested)
}
