package console

import (
	"strings"
	"sync"

	"github.com/noah-isme/saju-admin-api/internal/gyeokguk"
	"github.com/noah-isme/saju-admin-api/internal/models"
)

// RolePlaceholder is shown when a judgment carries no roles.
const RolePlaceholder = "-"

// RenderRoles formats roles for display. Legacy lists stay a flat
// comma-separated list; slot mappings are labelled by ordinal.
func RenderRoles(roles models.RoleSlots) string {
	if roles.IsEmpty() {
		return RolePlaceholder
	}
	parts := make([]string, 0, gyeokguk.MaxRoleSlots)
	for i, value := range roles.Values {
		if value == "" {
			continue
		}
		if roles.Shape == models.RoleShapeList {
			parts = append(parts, value)
			continue
		}
		parts = append(parts, gyeokguk.SlotLabel(i)+": "+value)
	}
	if roles.Shape == models.RoleShapeList {
		for _, value := range roles.Overflow {
			if value != "" {
				parts = append(parts, value)
			}
		}
		return strings.Join(parts, ", ")
	}
	return strings.Join(parts, " / ")
}

// Actions lists the controls a caller may use on one suggestion.
type Actions struct {
	Approve bool
	Reject  bool
	Delete  bool
}

// ComparisonRow is one line of the original vs. suggested view.
type ComparisonRow struct {
	Label     string
	Original  string
	Suggested string
}

// Panel holds expand/collapse state for the review list. Expansion is local
// only and never reaches the server.
type Panel struct {
	gate Gate

	mu       sync.Mutex
	expanded map[string]bool
}

// NewPanel returns a panel with everything collapsed.
func NewPanel(gate Gate) *Panel {
	return &Panel{gate: gate, expanded: make(map[string]bool)}
}

// Toggle flips the expansion of id and returns the new state.
func (p *Panel) Toggle(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.expanded[id] {
		delete(p.expanded, id)
		return false
	}
	p.expanded[id] = true
	return true
}

// IsExpanded reports whether id is expanded.
func (p *Panel) IsExpanded(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.expanded[id]
}

// CollapseAll resets every item.
func (p *Panel) CollapseAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.expanded = make(map[string]bool)
}

// Actions reports which controls to show. Approve and reject need a pending
// suggestion; delete needs only the admin role.
func (p *Panel) Actions(s models.Suggestion) Actions {
	admin := p.gate != nil && p.gate.IsAdmin()
	return Actions{
		Approve: admin && s.IsPending(),
		Reject:  admin && s.IsPending(),
		Delete:  admin,
	}
}

// Compare builds the original vs. suggested rows for s.
func Compare(s models.Suggestion) []ComparisonRow {
	return []ComparisonRow{
		{Label: "result", Original: orPlaceholder(s.OriginalResult), Suggested: orPlaceholder(s.SuggestedResult)},
		{Label: "reason", Original: orPlaceholder(s.OriginalReason), Suggested: orPlaceholder(s.SuggestedReason)},
		{Label: "roles", Original: RenderRoles(s.OriginalRoles), Suggested: RenderRoles(s.SuggestedRoles)},
	}
}

func orPlaceholder(value string) string {
	if strings.TrimSpace(value) == "" {
		return RolePlaceholder
	}
	return value
}
