package entities

import (
	"fmt"
	"strings"
	"time"
)

// DuplicateNameError is returned when a name is registered twice
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("selector %q is already registered", e.Name)
}

// UnknownSelectorError is returned when a name is not in the registry
type UnknownSelectorError struct {
	Name string
}

func (e *UnknownSelectorError) Error() string {
	return fmt.Sprintf("unknown selector %q", e.Name)
}

// InvalidSelectorError is returned when an entry fails validation
type InvalidSelectorError struct {
	Entry  SelectorEntry
	Reason string
	Err    error
}

func (e *InvalidSelectorError) Error() string {
	msg := fmt.Sprintf("invalid selector %q (%s %q): %s", e.Entry.Name, e.Entry.Kind, e.Entry.Locator, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InvalidSelectorError) Unwrap() error { return e.Err }

// MalformedRegistryError is returned when a snapshot cannot be loaded.
// Problems lists every schema violation found, not only the first.
type MalformedRegistryError struct {
	Path     string
	Problems []string
	Err      error
}

func (e *MalformedRegistryError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "malformed selector registry %s", e.Path)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if len(e.Problems) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Problems, "; "))
	}
	return b.String()
}

func (e *MalformedRegistryError) Unwrap() error { return e.Err }

// ElementNotReadyError is returned when an element does not reach the
// required state within the bounded wait
type ElementNotReadyError struct {
	Name    string
	Locator string
	Waited  time.Duration
	Err     error
}

func (e *ElementNotReadyError) Error() string {
	msg := fmt.Sprintf("element %q (%s) not ready after %s", e.Name, e.Locator, e.Waited)
	if e.Waited == 0 {
		msg = fmt.Sprintf("element %q (%s) is not visible", e.Name, e.Locator)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ElementNotReadyError) Unwrap() error { return e.Err }

// NavigationError is returned when a page fails to load or answers with an
// error status
type NavigationError struct {
	URL    string
	Status int
	Err    error
}

func (e *NavigationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("navigation to %s failed: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("navigation to %s failed: status %d", e.URL, e.Status)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// UnsafeActionError is returned when the action guard refuses an action
type UnsafeActionError struct {
	Action Action
	Reason string
}

func (e *UnsafeActionError) Error() string {
	return fmt.Sprintf("refusing to %s %q: %s", e.Action.Primitive, e.Action.Entry.Name, e.Reason)
}
