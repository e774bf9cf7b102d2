// Package runner executes one command sequence against a (model, SUT) pair.
package runner

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"statecheck/check"
	"statecheck/command"
)

// Status of a run.
type Status int

const (
	Init Status = iota
	Running
	Passed
	Failed
)

func (s Status) String() string {
	switch s {
	case Init:
		return "init"
	case Running:
		return "running"
	case Passed:
		return "passed"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Result of executing one command sequence.
type Result[M, S any] struct {
	Status Status

	// Applied is the prefix of commands that were actually applied, in
	// order. Commands skipped by their precondition are not included.
	Applied []command.Command[M, S]

	// Step is the index into the original sequence of the command whose
	// application failed. -1 when the run passed.
	Step int

	// Failing is the command whose application failed. nil when the run
	// passed.
	Failing command.Command[M, S]

	// Cause is the classified failure: a *check.PostconditionError, a
	// *check.AdapterError, or a context error when the run was aborted.
	Cause error
}

// Postcondition returns the name of the violated postcondition, or the empty
// string if the failure was not a postcondition violation.
func (r Result[M, S]) Postcondition() string {
	var pe *check.PostconditionError
	if errors.As(r.Cause, &pe) {
		return pe.Name
	}
	return ""
}

// Run executes seq in order against the pair.
//
// For each command the precondition is evaluated against the current model
// state. A command whose precondition fails is skipped without touching the
// model or the system under test and without evaluating postconditions.
// Applicable commands are applied and every postcondition is then checked;
// the model mutation, the real mutation and the postcondition checks form
// one step attributed to the command. The first failing step ends the run.
func Run[M, S any](ctx context.Context, seq []command.Command[M, S], model M, sut S, posts []check.Postcondition[M, S]) Result[M, S] {
	res := Result[M, S]{Status: Running, Step: -1}
	for i, cmd := range seq {
		if err := ctx.Err(); err != nil {
			res.Status = Failed
			res.Step = i
			res.Failing = cmd
			res.Cause = err
			return res
		}
		if !cmd.Check(model) {
			continue
		}
		if err := apply(ctx, cmd, model, sut, posts); err != nil {
			res.Status = Failed
			res.Step = i
			res.Failing = cmd
			res.Cause = err
			return res
		}
		res.Applied = append(res.Applied, cmd)
	}
	res.Status = Passed
	return res
}

// apply performs one step: the command itself, then every postcondition.
// Panics raised by the command or the adapter are recovered and reported as
// adapter faults.
func apply[M, S any](ctx context.Context, cmd command.Command[M, S], model M, sut S, posts []check.Postcondition[M, S]) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &check.AdapterError{Err: fmt.Errorf("panic: %v\n%s", p, debug.Stack())}
		}
	}()

	if err := cmd.Run(ctx, model, sut); err != nil {
		var pe *check.PostconditionError
		if errors.As(err, &pe) {
			return err
		}
		return &check.AdapterError{Err: err}
	}

	for _, p := range posts {
		if err := p.Holds(ctx, model, sut); err != nil {
			return &check.PostconditionError{Name: p.Name, Detail: detail(err)}
		}
	}
	return nil
}

func detail(err error) string {
	var pe *check.PostconditionError
	if errors.As(err, &pe) {
		return pe.Detail
	}
	return err.Error()
}
