package toast

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	errs := []error{
		ErrNotFound,
		ErrReleased,
		ErrDetached,
		ErrInvalidTagName,
	}

	for i, err1 := range errs {
		for j, err2 := range errs {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("Sentinel errors should be distinct: %v and %v", err1, err2)
			}
		}
	}
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		expect bool
	}{
		{"nil error", nil, false},
		{"ErrNotFound", ErrNotFound, true},
		{"wrapped ErrNotFound", fmt.Errorf("wrapped: %w", ErrNotFound), true},
		{"404 fetch", &ResourceFetchError{Path: "a.html", Status: 404}, true},
		{"500 fetch", &ResourceFetchError{Path: "a.html", Status: 500}, false},
		{"undefined tag", &UndefinedTagError{Tag: "x-nope"}, true},
		{"other error", errors.New("other error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsNotFound(tt.err)
			if result != tt.expect {
				t.Errorf("IsNotFound(%v) = %v, want %v", tt.err, result, tt.expect)
			}
		})
	}
}

func TestIsFetchError(t *testing.T) {
	fe := &ResourceFetchError{Path: "card.html", Status: 503}
	tests := []struct {
		name   string
		err    error
		expect bool
	}{
		{"nil error", nil, false},
		{"fetch error", fe, true},
		{"wrapped fetch error", fmt.Errorf("render: %w", fe), true},
		{"duplicate definition", &DuplicateDefinitionError{Tag: "x-a"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFetchError(tt.err); got != tt.expect {
				t.Errorf("IsFetchError(%v) = %v, want %v", tt.err, got, tt.expect)
			}
		})
	}
}

func TestIsReleased(t *testing.T) {
	if !IsReleased(ErrReleased) {
		t.Error("IsReleased(ErrReleased) = false")
	}
	if !IsReleased(fmt.Errorf("x: %w", ErrDetached)) {
		t.Error("IsReleased(wrapped ErrDetached) = false")
	}
	if IsReleased(ErrNotFound) {
		t.Error("IsReleased(ErrNotFound) = true")
	}
}

func TestResourceFetchError_Message(t *testing.T) {
	status := &ResourceFetchError{Path: "card/card.html", Status: 404}
	if !strings.Contains(status.Error(), "card/card.html") || !strings.Contains(status.Error(), "404") {
		t.Errorf("Error() = %q, want path and status", status.Error())
	}

	cause := &ResourceFetchError{Path: "card/card.css", Cause: context.DeadlineExceeded}
	if !errors.Is(cause, context.DeadlineExceeded) {
		t.Error("ResourceFetchError should unwrap to its cause")
	}
	if !strings.Contains(cause.Error(), "deadline") {
		t.Errorf("Error() = %q, want cause text", cause.Error())
	}
}

func TestScriptError_Unwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &ScriptError{InstanceID: "x-1", Type: DefaultScriptType, Cause: inner}
	if !errors.Is(err, inner) {
		t.Error("ScriptError should unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "x-1") {
		t.Errorf("Error() = %q, want instance id", err.Error())
	}
}

func TestIsDuplicateDefinition(t *testing.T) {
	err := fmt.Errorf("define: %w", &DuplicateDefinitionError{Tag: "x-card"})
	if !IsDuplicateDefinition(err) {
		t.Error("IsDuplicateDefinition(wrapped) = false")
	}
	if IsDuplicateDefinition(ErrInvalidTagName) {
		t.Error("IsDuplicateDefinition(ErrInvalidTagName) = true")
	}
}
