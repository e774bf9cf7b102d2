package command

import "context"

// A Command is a single unit of behavior that can be applied to an abstract
// model and to the real system under test.
//
// A command instance is immutable after construction and carries only the
// parameters needed to replay it. It holds no reference to the model or the
// system under test; those are passed in when the command is applied.
type Command[M, S any] interface {
	// Check reports whether the command is applicable to the current model
	// state. A command whose check fails is skipped without mutating the
	// model or the system under test.
	Check(model M) bool

	// Run applies the command to the model and to the system under test.
	// The model mutation is synchronous and in place. The mutation of the
	// system under test may suspend until its observable state has settled;
	// Run must not return before that point, since postconditions are
	// evaluated immediately afterwards.
	Run(ctx context.Context, model M, sut S) error

	// String renders the command with its parameters for failure reports.
	String() string
}

// Shrinker is implemented by commands whose parameters can be simplified.
type Shrinker[M, S any] interface {
	Command[M, S]

	// ShrinkParams returns strictly simpler variants of the command, most
	// aggressive first. Numeric parameters move toward zero and string
	// parameters toward the empty string.
	ShrinkParams() []Command[M, S]
}

// Describe renders a sequence of commands, in order.
func Describe[M, S any](seq []Command[M, S]) []string {
	out := make([]string, 0, len(seq))
	for _, cmd := range seq {
		out = append(out, cmd.String())
	}
	return out
}
