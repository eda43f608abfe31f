package optimistic

import (
	"context"
	"errors"
	"testing"
)

func stringMutation(value *string, emitted *[]string, commit func(ctx context.Context, next string) (string, bool, error)) Mutation[string] {
	return Mutation[string]{
		Get: func() string { return *value },
		Set: func(v string) {
			*value = v
			*emitted = append(*emitted, v)
		},
		Commit: commit,
	}
}

func TestMutationRollbackOnFailure(t *testing.T) {
	value := "Alice"
	var emitted []string

	m := stringMutation(&value, &emitted, func(ctx context.Context, next string) (string, bool, error) {
		return "", false, errors.New("gateway down")
	})

	if err := m.Run(context.Background(), "Bob"); err == nil {
		t.Fatal("Run returned nil, want error")
	}

	if value != "Alice" {
		t.Errorf("value = %q after rollback, want %q", value, "Alice")
	}
	// Optimistic apply then rollback: exactly two emissions.
	want := []string{"Bob", "Alice"}
	if len(emitted) != len(want) {
		t.Fatalf("emitted %v, want %v", emitted, want)
	}
	for i := range want {
		if emitted[i] != want[i] {
			t.Errorf("emitted[%d] = %q, want %q", i, emitted[i], want[i])
		}
	}
}

func TestMutationCanonicalSupersedes(t *testing.T) {
	value := "Alice"
	var emitted []string

	m := stringMutation(&value, &emitted, func(ctx context.Context, next string) (string, bool, error) {
		return "Bob2", true, nil
	})

	if err := m.Run(context.Background(), "Bob"); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if value != "Bob2" {
		t.Errorf("value = %q, want canonical %q", value, "Bob2")
	}
	want := []string{"Bob", "Bob2"}
	if len(emitted) != len(want) || emitted[0] != want[0] || emitted[1] != want[1] {
		t.Errorf("emitted %v, want %v", emitted, want)
	}
}

func TestMutationSuccessWithoutCanonical(t *testing.T) {
	value := "Alice"
	var emitted []string

	m := stringMutation(&value, &emitted, func(ctx context.Context, next string) (string, bool, error) {
		return "", false, nil
	})

	if err := m.Run(context.Background(), "Bob"); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if value != "Bob" {
		t.Errorf("value = %q, want %q", value, "Bob")
	}
	if len(emitted) != 1 || emitted[0] != "Bob" {
		t.Errorf("emitted %v, want [Bob]", emitted)
	}
}

func TestMutationSequentialRollbackRestoresOwnCapture(t *testing.T) {
	// A later call's rollback restores the value captured at that call's
	// start, not the original pre-session value.
	value := "Alice"
	var emitted []string

	ok := stringMutation(&value, &emitted, func(ctx context.Context, next string) (string, bool, error) {
		return "", false, nil
	})
	failing := stringMutation(&value, &emitted, func(ctx context.Context, next string) (string, bool, error) {
		return "", false, errors.New("nope")
	})

	if err := ok.Run(context.Background(), "Bob"); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if err := failing.Run(context.Background(), "Carol"); err == nil {
		t.Fatal("second Run returned nil, want error")
	}

	if value != "Bob" {
		t.Errorf("value = %q, want %q (previous successful write, not original)", value, "Bob")
	}
}
