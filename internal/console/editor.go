package console

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/saju-admin-api/internal/dto"
	"github.com/noah-isme/saju-admin-api/internal/gyeokguk"
	"github.com/noah-isme/saju-admin-api/internal/models"
	appErrors "github.com/noah-isme/saju-admin-api/pkg/errors"
)

// Mutator issues state transitions against the API.
type Mutator interface {
	Approve(ctx context.Context, id string, payload dto.ApproveSuggestionRequest) error
	Reject(ctx context.Context, id, reason string) error
	Delete(ctx context.Context, id string) error
}

// Notifier shows a blocking alert for an action outcome.
type Notifier interface {
	Alert(message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string)

// Alert implements Notifier.
func (f NotifierFunc) Alert(message string) { f(message) }

type pageReloader interface {
	CurrentPage() int
	Load(ctx context.Context, page int) error
}

// Deps are the collaborators shared by the editors and the delete action.
type Deps struct {
	Gate     Gate
	Client   Mutator
	List     pageReloader
	InFlight *InFlight
	Notifier Notifier
	Logger   *zap.Logger
}

func (d Deps) withDefaults() Deps {
	if d.InFlight == nil {
		d.InFlight = NewInFlight()
	}
	if d.Notifier == nil {
		d.Notifier = NotifierFunc(func(string) {})
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return d
}

var (
	errAdminRequired  = appErrors.Clone(appErrors.ErrForbidden, "admin role required")
	errAlreadyDecided = appErrors.Clone(appErrors.ErrConflict, "suggestion already reviewed")
	errEditorClosed   = appErrors.Clone(appErrors.ErrValidation, "editor is not open")
)

// alertedError marks an error the user has already been shown.
type alertedError struct{ err error }

func (e *alertedError) Error() string { return e.err.Error() }
func (e *alertedError) Unwrap() error { return e.err }

// Alerted reports whether err was already delivered through the Notifier, so
// callers can avoid reporting it a second time.
func Alerted(err error) bool {
	var a *alertedError
	return errors.As(err, &a)
}

// fail alerts the user and returns err marked as alerted.
func (d Deps) fail(err error) error {
	d.Notifier.Alert(appErrors.FromError(err).Message)
	return &alertedError{err: err}
}

// reloadAfter refreshes page once a mutation has been confirmed. A superseded
// reload is not an error for the mutation.
func (d Deps) reloadAfter(ctx context.Context, page int) {
	if d.List == nil {
		return
	}
	if err := d.List.Load(ctx, page); err != nil && !errors.Is(err, ErrSuperseded) {
		d.Logger.Warn("reload after mutation failed", zap.Int("page", page), zap.Error(err))
	}
}

// RoleInput is one editable role slot.
type RoleInput struct {
	Key   string
	Label string
	Value string
}

type approvalSession struct {
	suggestion models.Suggestion
	count      int
	result     string
	reason     string
	roles      [gyeokguk.MaxRoleSlots]string
	lastErr    error
}

// ApprovalEditor is the edit session an admin fills in before approving.
type ApprovalEditor struct {
	deps Deps

	mu      sync.Mutex
	session *approvalSession
}

// NewApprovalEditor constructs the editor.
func NewApprovalEditor(deps Deps) *ApprovalEditor {
	return &ApprovalEditor{deps: deps.withDefaults()}
}

// Open seeds a session from s. Only the role slots licensed by s.Code are
// seeded; everything from an earlier session is discarded.
func (e *ApprovalEditor) Open(s models.Suggestion) error {
	if e.deps.Gate == nil || !e.deps.Gate.IsAdmin() {
		return e.deps.fail(errAdminRequired)
	}
	if !s.IsPending() {
		return e.deps.fail(errAlreadyDecided)
	}
	session := &approvalSession{
		suggestion: s,
		count:      gyeokguk.RoleCount(s.Code),
		result:     s.SuggestedResult,
		reason:     s.SuggestedReason,
	}
	for i := 0; i < session.count; i++ {
		session.roles[i] = s.SuggestedRoles.Values[i]
	}
	e.mu.Lock()
	e.session = session
	e.mu.Unlock()
	return nil
}

// IsOpen reports whether a session is active.
func (e *ApprovalEditor) IsOpen() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session != nil
}

// Close discards the session.
func (e *ApprovalEditor) Close() {
	e.mu.Lock()
	e.session = nil
	e.mu.Unlock()
}

// SetResult sets the outcome.
func (e *ApprovalEditor) SetResult(result string) error {
	return e.edit(func(s *approvalSession) error {
		s.result = strings.TrimSpace(result)
		return nil
	})
}

// SetReason sets the rationale.
func (e *ApprovalEditor) SetReason(reason string) error {
	return e.edit(func(s *approvalSession) error {
		s.reason = reason
		return nil
	})
}

// SetRole sets the slot at index i (0-based). Slots beyond the code's role
// count are not editable.
func (e *ApprovalEditor) SetRole(i int, value string) error {
	return e.edit(func(s *approvalSession) error {
		if i < 0 || i >= s.count {
			return appErrors.Clone(appErrors.ErrValidation, "role slot not available for this code")
		}
		s.roles[i] = strings.TrimSpace(value)
		return nil
	})
}

func (e *ApprovalEditor) edit(fn func(*approvalSession) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return errEditorClosed
	}
	return fn(e.session)
}

// RoleInputs lists the editable slots, labelled 1차 upwards.
func (e *ApprovalEditor) RoleInputs() []RoleInput {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return nil
	}
	inputs := make([]RoleInput, 0, e.session.count)
	for i := 0; i < e.session.count; i++ {
		inputs = append(inputs, RoleInput{
			Key:   gyeokguk.SlotKeys[i],
			Label: gyeokguk.SlotLabel(i),
			Value: e.session.roles[i],
		})
	}
	return inputs
}

// LastError is the failure from the most recent submit, if any.
func (e *ApprovalEditor) LastError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return nil
	}
	return e.session.lastErr
}

// CanSubmit is false while no result is chosen or any mutation of this
// suggestion is already outstanding.
func (e *ApprovalEditor) CanSubmit() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil || e.session.result == "" {
		return false
	}
	_, busy := e.deps.InFlight.Busy(e.session.suggestion.ID)
	return !busy
}

// Submit approves the suggestion. On success the editor closes and the list
// reloads the page that was current when Submit was called; on failure the
// session stays open with its edits.
func (e *ApprovalEditor) Submit(ctx context.Context) error {
	e.mu.Lock()
	session := e.session
	if session == nil {
		e.mu.Unlock()
		return errEditorClosed
	}
	id := session.suggestion.ID
	payload := BuildApprovalPayload(session.suggestion.Code, session.result, session.reason, session.roles)
	e.mu.Unlock()

	if e.deps.Gate == nil || !e.deps.Gate.IsAdmin() {
		return e.deps.fail(errAdminRequired)
	}
	if payload.SuggestedResult == "" {
		return e.deps.fail(appErrors.Clone(appErrors.ErrValidation, "result is required"))
	}
	if !gyeokguk.ValidOutcome(payload.SuggestedResult) {
		return e.deps.fail(appErrors.Clone(appErrors.ErrValidation, "result must be one of "+strings.Join(outcomeStrings(), ", ")))
	}

	release, err := e.deps.InFlight.Acquire(id, ActionApprove)
	if err != nil {
		return err
	}
	defer release()

	page := 1
	if e.deps.List != nil {
		page = e.deps.List.CurrentPage()
	}
	if err := e.deps.Client.Approve(ctx, id, payload); err != nil {
		e.mu.Lock()
		if e.session == session {
			session.lastErr = err
		}
		e.mu.Unlock()
		return e.deps.fail(err)
	}

	e.mu.Lock()
	if e.session == session {
		e.session = nil
	}
	e.mu.Unlock()
	e.deps.Notifier.Alert("suggestion approved")
	e.deps.reloadAfter(ctx, page)
	return nil
}

// BuildApprovalPayload assembles the approve request. Only slots licensed by
// code are kept and suggested_roles is omitted when none has a value.
func BuildApprovalPayload(code, result, reason string, roles [gyeokguk.MaxRoleSlots]string) dto.ApproveSuggestionRequest {
	payload := dto.ApproveSuggestionRequest{
		SuggestedResult: strings.TrimSpace(result),
		SuggestedReason: reason,
	}
	licensed := models.RoleSlots{Values: roles}.Truncate(gyeokguk.RoleCount(code))
	if !licensed.IsEmpty() {
		payload.SuggestedRoles = &licensed
	}
	return payload
}

func outcomeStrings() []string {
	out := make([]string, 0, len(gyeokguk.Outcomes))
	for _, o := range gyeokguk.Outcomes {
		out = append(out, string(o))
	}
	return out
}

// RejectionEditor captures the mandatory rationale before rejecting.
type RejectionEditor struct {
	deps Deps

	mu         sync.Mutex
	suggestion *models.Suggestion
	reason     string
	lastErr    error
}

// NewRejectionEditor constructs the editor.
func NewRejectionEditor(deps Deps) *RejectionEditor {
	return &RejectionEditor{deps: deps.withDefaults()}
}

// Open starts a session with an empty rationale.
func (e *RejectionEditor) Open(s models.Suggestion) error {
	if e.deps.Gate == nil || !e.deps.Gate.IsAdmin() {
		return e.deps.fail(errAdminRequired)
	}
	if !s.IsPending() {
		return e.deps.fail(errAlreadyDecided)
	}
	e.mu.Lock()
	e.suggestion = &s
	e.reason = ""
	e.lastErr = nil
	e.mu.Unlock()
	return nil
}

// IsOpen reports whether a session is active.
func (e *RejectionEditor) IsOpen() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.suggestion != nil
}

// Close discards the session.
func (e *RejectionEditor) Close() {
	e.mu.Lock()
	e.suggestion = nil
	e.reason = ""
	e.mu.Unlock()
}

// SetReason replaces the typed rationale.
func (e *RejectionEditor) SetReason(reason string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.suggestion == nil {
		return errEditorClosed
	}
	e.reason = reason
	return nil
}

// Reason is the rationale as typed.
func (e *RejectionEditor) Reason() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reason
}

// LastError is the failure from the most recent submit, if any.
func (e *RejectionEditor) LastError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// Submit rejects the suggestion. A blank rationale is refused without a request.
func (e *RejectionEditor) Submit(ctx context.Context) error {
	e.mu.Lock()
	target := e.suggestion
	reason := strings.TrimSpace(e.reason)
	e.mu.Unlock()
	if target == nil {
		return errEditorClosed
	}
	if e.deps.Gate == nil || !e.deps.Gate.IsAdmin() {
		return e.deps.fail(errAdminRequired)
	}
	if reason == "" {
		return e.deps.fail(appErrors.Clone(appErrors.ErrValidation, "rejection reason is required"))
	}

	release, err := e.deps.InFlight.Acquire(target.ID, ActionReject)
	if err != nil {
		return err
	}
	defer release()

	page := 1
	if e.deps.List != nil {
		page = e.deps.List.CurrentPage()
	}
	if err := e.deps.Client.Reject(ctx, target.ID, reason); err != nil {
		e.mu.Lock()
		if e.suggestion == target {
			e.lastErr = err
		}
		e.mu.Unlock()
		return e.deps.fail(err)
	}

	e.mu.Lock()
	if e.suggestion == target {
		e.suggestion = nil
		e.reason = ""
		e.lastErr = nil
	}
	e.mu.Unlock()
	e.deps.Notifier.Alert("suggestion rejected")
	e.deps.reloadAfter(ctx, page)
	return nil
}
