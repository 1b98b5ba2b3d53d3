package console

import (
	"fmt"
	"sync"

	appErrors "github.com/noah-isme/saju-admin-api/pkg/errors"
)

// Action names a mutating operation on a single suggestion.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionDelete  Action = "delete"
)

// InFlight allows at most one mutating request per suggestion. Different
// suggestions never block each other.
type InFlight struct {
	mu  sync.Mutex
	ops map[string]Action
}

// NewInFlight returns an empty tracker.
func NewInFlight() *InFlight {
	return &InFlight{ops: make(map[string]Action)}
}

// Acquire claims suggestion id for action. It fails while any action on id is
// outstanding. The returned release func is safe to call more than once.
func (f *InFlight) Acquire(id string, action Action) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if running, busy := f.ops[id]; busy {
		msg := fmt.Sprintf("%s already in progress for %s", running, id)
		if running != action {
			msg = fmt.Sprintf("cannot %s %s while %s is in progress", action, id, running)
		}
		return nil, appErrors.Clone(appErrors.ErrActionInProgress, msg)
	}
	f.ops[id] = action

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.ops, id)
			f.mu.Unlock()
		})
	}, nil
}

// Busy reports the action outstanding on id, if any.
func (f *InFlight) Busy(id string) (Action, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	action, busy := f.ops[id]
	return action, busy
}

// Len is the number of suggestions with a request outstanding.
func (f *InFlight) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ops)
}
