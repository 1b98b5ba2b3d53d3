package console

import (
	"context"
	"errors"
	"fmt"
)

// ErrCancelled is returned when the user declines a confirmation.
var ErrCancelled = errors.New("cancelled")

// Confirmer asks the user a yes/no question and blocks until answered.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmerFunc adapts a function to Confirmer.
type ConfirmerFunc func(prompt string) bool

// Confirm implements Confirmer.
func (f ConfirmerFunc) Confirm(prompt string) bool { return f(prompt) }

// DeleteAction removes a suggestion after explicit confirmation.
type DeleteAction struct {
	deps    Deps
	confirm Confirmer
}

// NewDeleteAction constructs the action.
func NewDeleteAction(deps Deps, confirm Confirmer) *DeleteAction {
	return &DeleteAction{deps: deps.withDefaults(), confirm: confirm}
}

// Run deletes id in any state. The list reloads the same page number
// afterwards; the API clamps it if that page no longer exists.
func (a *DeleteAction) Run(ctx context.Context, id string) error {
	if a.deps.Gate == nil || !a.deps.Gate.IsAdmin() {
		return a.deps.fail(errAdminRequired)
	}
	if a.confirm == nil || !a.confirm.Confirm(fmt.Sprintf("Delete suggestion %s? This cannot be undone.", id)) {
		return ErrCancelled
	}

	release, err := a.deps.InFlight.Acquire(id, ActionDelete)
	if err != nil {
		return err
	}
	defer release()

	page := 1
	if a.deps.List != nil {
		page = a.deps.List.CurrentPage()
	}
	if err := a.deps.Client.Delete(ctx, id); err != nil {
		return a.deps.fail(err)
	}
	a.deps.Notifier.Alert("suggestion deleted")
	a.deps.reloadAfter(ctx, page)
	return nil
}
