package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{InvalidArgument, "invalid-argument"},
		{NotFound, "not-found"},
		{Duplicate, "duplicate"},
		{TypeMismatch, "type-mismatch"},
		{Unresolvable, "unresolvable"},
		{AliasLoop, "alias-loop"},
		{InitLoop, "init-loop"},
		{DuplicateField, "duplicate-field"},
		{InitFailed, "init-failed"},
		{OpenFailed, "open-failed"},
		{CloseFailed, "close-failed"},
		{Again, "again"},
		{WouldBlock, "would-block"},
		{Timeout, "timeout"},
		{Transport, "transport"},
		{Kind(999), "unknown"},
	}

	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			if got := test.kind.String(); got != test.expected {
				t.Errorf("expected %s, got %s", test.expected, got)
			}
		})
	}
}

func TestNew(t *testing.T) {
	err := New(NotFound, "registry", "Lookup", "unknown protocol %q", "tcp")

	var ke *KindError
	if !errors.As(err, &ke) {
		t.Fatal("expected *KindError")
	}
	if ke.Kind != NotFound {
		t.Errorf("expected NotFound, got %v", ke.Kind)
	}
	if ke.Component != "registry" || ke.Operation != "Lookup" {
		t.Errorf("unexpected component/operation: %s/%s", ke.Component, ke.Operation)
	}
	expected := `registry.Lookup: unknown protocol "tcp"`
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
	if !errors.Is(err, ErrNotFound) {
		t.Error("expected errors.Is(err, ErrNotFound) to succeed")
	}
	if errors.Is(err, ErrDuplicate) {
		t.Error("did not expect errors.Is(err, ErrDuplicate) to succeed")
	}
}

func TestWrap(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if got := Wrap(Transport, "tcp", "connect", nil, "dial %s", "host:1"); got != nil {
			t.Errorf("expected nil, got %v", got)
		}
	})

	t.Run("wraps cause and preserves Unwrap", func(t *testing.T) {
		cause := fmt.Errorf("connection refused")
		err := Wrap(Transport, "tcp", "connect", cause, "dial %s", "host:1")

		expected := "tcp.connect: dial host:1: connection refused"
		if err.Error() != expected {
			t.Errorf("expected %q, got %q", expected, err.Error())
		}
		if !errors.Is(err, cause) {
			t.Error("expected wrapped error to unwrap to cause")
		}
		if !errors.Is(err, ErrTransport) {
			t.Error("expected errors.Is(err, ErrTransport) to succeed")
		}
	})
}

func TestKindOf(t *testing.T) {
	t.Run("kind error", func(t *testing.T) {
		err := New(AliasLoop, "registry", "resolve", "cycle detected")
		kind, ok := KindOf(err)
		if !ok || kind != AliasLoop {
			t.Errorf("expected AliasLoop, ok=true, got %v, ok=%v", kind, ok)
		}
	})

	t.Run("plain error", func(t *testing.T) {
		_, ok := KindOf(fmt.Errorf("plain"))
		if ok {
			t.Error("expected ok=false for a plain error")
		}
	})

	t.Run("wrapped kind error", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", New(Timeout, "eventloop", "Poll", "deadline exceeded"))
		kind, ok := KindOf(err)
		if !ok || kind != Timeout {
			t.Errorf("expected Timeout, ok=true, got %v, ok=%v", kind, ok)
		}
	})
}

func TestIsAgain(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"sentinel", ErrAgain, true},
		{"kind error", New(Again, "channel", "Post", "output buffer full"), true},
		{"wrapped kind error", fmt.Errorf("wrap: %w", New(Again, "channel", "Post", "full")), true},
		{"unrelated", New(NotFound, "registry", "Lookup", "x"), false},
		{"plain error", fmt.Errorf("boom"), false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := IsAgain(test.err); got != test.expected {
				t.Errorf("expected %v, got %v", test.expected, got)
			}
		})
	}
}

func BenchmarkWrap(b *testing.B) {
	cause := fmt.Errorf("base error")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Wrap(Transport, "component", "method", cause, "action")
	}
}

func BenchmarkIsAgain(b *testing.B) {
	err := New(Again, "channel", "Post", "full")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		IsAgain(err)
	}
}
