package scope

import (
	"errors"
	"fmt"
	"runtime/debug"

	verrors "github.com/vango-dev/vtree/internal/errors"
)

var (
	// ErrDeadScope is returned when an operation names a scope that has
	// been unmounted (or never existed).
	ErrDeadScope = errors.New("scope: not alive")

	// ErrHookMismatch is matched by errors.Is for every hook order or type
	// violation.
	ErrHookMismatch = errors.New("scope: hook order changed")

	// ErrOutsideRender is matched by errors.Is when a hook is called on a
	// Ctx whose render has returned.
	ErrOutsideRender = errors.New("scope: hook used outside render")
)

// HookError describes a hook misuse detected during render.
type HookError struct {
	Scope     ID
	Component string
	Slot      int
	Want      HookKind // HookNone when the slot did not exist
	Got       HookKind // HookNone when the hook was missing
	Detail    string
}

func (e *HookError) Error() string {
	switch {
	case e.Want == HookNone:
		return fmt.Sprintf("scope %s (%s): extra %s hook at slot %d", e.Scope, e.Component, e.Got, e.Slot)
	case e.Got == HookNone:
		return fmt.Sprintf("scope %s (%s): expected %d hooks, got %d", e.Scope, e.Component, e.Slot+1, e.Slot)
	case e.Detail != "":
		return fmt.Sprintf("scope %s (%s): slot %d: %s", e.Scope, e.Component, e.Slot, e.Detail)
	default:
		return fmt.Sprintf("scope %s (%s): slot %d: expected %s hook, got %s", e.Scope, e.Component, e.Slot, e.Want, e.Got)
	}
}

// Is reports ErrHookMismatch.
func (e *HookError) Is(target error) bool {
	return target == ErrHookMismatch
}

// RenderError wraps a panic or error raised by a component's render function.
type RenderError struct {
	Scope     ID
	Component string
	Value     any
	Stack     []byte
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("scope %s (%s): render panicked: %v", e.Scope, e.Component, e.Value)
}

// Unwrap returns the panic value when it was an error.
func (e *RenderError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// recoverRender turns a recovered panic value into a catalogue error.
func recoverRender(s *Scope, r any) error {
	if he, ok := r.(*HookError); ok {
		return verrors.New("E002").
			WithScope(s.describe()).
			WithSlot(he.Slot).
			Wrap(he)
	}
	if oe, ok := r.(*outsideRenderError); ok {
		return verrors.New("E003").WithScope(s.describe()).Wrap(oe)
	}
	return verrors.New("E001").
		WithScope(s.describe()).
		Wrap(&RenderError{Scope: s.id, Component: s.Name(), Value: r, Stack: debug.Stack()})
}

type outsideRenderError struct {
	hook HookKind
}

func (e *outsideRenderError) Error() string {
	return fmt.Sprintf("%s hook called outside render", e.hook)
}

func (e *outsideRenderError) Is(target error) bool {
	return target == ErrOutsideRender
}

func deadScope(id ID) error {
	return verrors.New("E004").WithScope(id.String()).Wrap(ErrDeadScope)
}
