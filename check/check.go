// Package check defines the invariants evaluated after each applied command
// and the failure taxonomy of the engine.
package check

import (
	"context"
	"fmt"
)

// A Postcondition is an invariant tying the system under test to the model.
// It is evaluated after every successfully applied command.
type Postcondition[M, S any] struct {
	// Name identifies the invariant in failure reports.
	Name string

	// Holds returns nil when the invariant holds for the pair.
	Holds func(ctx context.Context, model M, sut S) error
}

// PostconditionError reports that the observable state of the system under
// test diverged from the model after an applied command.
type PostconditionError struct {
	Name   string
	Detail string
}

func (e *PostconditionError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("postcondition %q violated", e.Name)
	}
	return fmt.Sprintf("postcondition %q violated: %s", e.Name, e.Detail)
}

// Violation builds a PostconditionError detail from the expected and actual
// values. The runner fills in the name of the violated postcondition.
func Violation(expected, actual any) *PostconditionError {
	return &PostconditionError{
		Detail: fmt.Sprintf("expected %v, got %v", expected, actual),
	}
}

// AdapterError wraps a fault raised by the system under test adapter itself,
// such as an action targeting a missing element or a failed settle wait. For
// shrinking purposes it is treated exactly like a postcondition violation:
// the sequence breaks the system either way.
type AdapterError struct {
	Err error
}

func (e *AdapterError) Error() string {
	return "adapter fault: " + e.Err.Error()
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}
