package toast

import (
	"errors"
	"fmt"
)

// Sentinel errors for runtime operations.
var (
	ErrNotFound       = errors.New("toast: resource not found")
	ErrReleased       = errors.New("toast: isolated root released")
	ErrDetached       = errors.New("toast: element detached")
	ErrInvalidTagName = errors.New("toast: invalid custom element name")
)

// ResourceFetchError reports a template or stylesheet that could not be
// loaded. Status is zero when the fetch failed before a response arrived.
type ResourceFetchError struct {
	Path   string
	Status int
	Cause  error
}

func (e *ResourceFetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("toast: fetch %q: %v", e.Path, e.Cause)
	}
	return fmt.Sprintf("toast: fetch %q: response status %d", e.Path, e.Status)
}

func (e *ResourceFetchError) Unwrap() error {
	return e.Cause
}

// Is reports a 404 response as ErrNotFound.
func (e *ResourceFetchError) Is(target error) bool {
	return target == ErrNotFound && e.Status == 404
}

// DuplicateDefinitionError is returned when a tag name is defined twice.
type DuplicateDefinitionError struct {
	Tag string
}

func (e *DuplicateDefinitionError) Error() string {
	return fmt.Sprintf("toast: %q has already been defined", e.Tag)
}

// UndefinedTagError is returned when creating an instance of a tag that has
// no definition.
type UndefinedTagError struct {
	Tag string
}

func (e *UndefinedTagError) Error() string {
	return fmt.Sprintf("toast: %q is not defined", e.Tag)
}

// Is reports an undefined tag as ErrNotFound.
func (e *UndefinedTagError) Is(target error) bool {
	return target == ErrNotFound
}

// ScriptError wraps a failure raised while executing an embedded script.
type ScriptError struct {
	InstanceID string
	Type       string
	Cause      error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("toast: script (%s) in %s: %v", e.Type, e.InstanceID, e.Cause)
}

func (e *ScriptError) Unwrap() error {
	return e.Cause
}

// IsNotFound checks if err is a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsFetchError checks if err is, or wraps, a ResourceFetchError.
func IsFetchError(err error) bool {
	var fe *ResourceFetchError
	return errors.As(err, &fe)
}

// IsDuplicateDefinition checks if err is, or wraps, a DuplicateDefinitionError.
func IsDuplicateDefinition(err error) bool {
	var de *DuplicateDefinitionError
	return errors.As(err, &de)
}

// IsReleased checks if err reports access to a released root or detached element.
func IsReleased(err error) bool {
	return errors.Is(err, ErrReleased) || errors.Is(err, ErrDetached)
}
