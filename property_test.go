package statecheck_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"statecheck"
	"statecheck/examples/formlist"
	"statecheck/gen"
)

func TestPropertyPassesOnAFaithfulComponent(t *testing.T) {
	p := formlist.Property(0x5eed, 2,
		statecheck.Runs(30),
		statecheck.SequenceLength(25),
	)

	report := p.Run(context.Background())

	ok, desc := report.Response()
	require.True(t, ok, desc)
	require.True(t, report.Passed)
	require.Equal(t, 30, report.Runs)
	require.Equal(t, int64(0x5eed), report.Seed)
	require.Empty(t, report.Sequence)
	require.Contains(t, desc, "all 30 runs passed")
}

func TestPropertyFindsAndShrinksTheLegacyMoveBug(t *testing.T) {
	run := func() *statecheck.Report {
		p := statecheck.New(
			formlist.Harness(2, formlist.WithLegacyMoveOrder()),
			formlist.Commands(0x5eed, 2),
			formlist.Postconditions(),
			statecheck.Runs(200),
			statecheck.SequenceLength(30),
			statecheck.Concurrency(1),
		)
		return p.Run(context.Background())
	}

	report := run()

	ok, desc := report.Response()
	require.False(t, ok)
	require.False(t, report.Passed)
	require.NoError(t, report.Err)
	require.NotEmpty(t, report.Sequence, desc)
	// The bug only reorders values, so the count invariant cannot catch it.
	require.Equal(t, "observable values match model", report.Postcondition)
	require.Contains(t, strings.Join(report.Sequence, "\n"), "Move(")
	require.GreaterOrEqual(t, report.Step, 0)
	require.Less(t, report.Step, len(report.Sequence))

	// Replaying the same seed sequentially reproduces the same minimal
	// counterexample.
	again := run()
	require.Equal(t, report.Sequence, again.Sequence)
	require.Equal(t, report.Step, again.Step)
	require.Equal(t, report.Postcondition, again.Postcondition)
}

func TestPropertyTearsDownEveryPair(t *testing.T) {
	inits, teardowns := 0, 0
	base := formlist.Harness(2)
	h := statecheck.Harness[*formlist.Model, *formlist.Component]{
		Init: func() (*formlist.Model, *formlist.Component, error) {
			inits++
			return base.Init()
		},
		Teardown: func(c *formlist.Component) {
			teardowns++
			base.Teardown(c)
		},
	}
	p := statecheck.New(h, formlist.Commands(1, 2), formlist.Postconditions(),
		statecheck.Runs(10),
		statecheck.SequenceLength(5),
		statecheck.Concurrency(1),
	)

	report := p.Run(context.Background())

	require.True(t, report.Passed)
	require.Equal(t, 10, inits)
	require.Equal(t, inits, teardowns)
}

func TestPropertyReportsHarnessFailures(t *testing.T) {
	boom := errors.New("render failed")
	h := statecheck.Harness[*formlist.Model, *formlist.Component]{
		Init: func() (*formlist.Model, *formlist.Component, error) {
			return nil, nil, boom
		},
	}
	p := statecheck.New(h,
		gen.NewReplay([]formlist.Cmd{formlist.AddField()}),
		formlist.Postconditions(),
		statecheck.Runs(3),
		statecheck.Concurrency(1),
	)

	report := p.Run(context.Background())

	require.False(t, report.Passed)
	require.ErrorIs(t, report.Err, boom)
	ok, desc := report.Response()
	require.False(t, ok)
	require.Contains(t, desc, "simulation incomplete")
}

func TestPropertyStopsOnACancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := formlist.Property(7, 2, statecheck.Runs(5), statecheck.Concurrency(1))
	report := p.Run(ctx)

	require.False(t, report.Passed)
	require.ErrorIs(t, report.Err, context.Canceled)
	require.Empty(t, report.Sequence)
}

func TestReplayedCounterexampleStillFails(t *testing.T) {
	// The minimal counterexample for the legacy move bug: a value that can
	// be told apart, then a move toward the back.
	seq := []formlist.Cmd{
		formlist.ChangeValue(0, "apple"),
		formlist.Move(0, 1),
	}
	p := statecheck.New(
		formlist.Harness(2, formlist.WithLegacyMoveOrder()),
		gen.NewReplay(seq),
		formlist.Postconditions(),
		statecheck.Runs(1),
		statecheck.Concurrency(1),
	)

	report := p.Run(context.Background())

	require.False(t, report.Passed)
	require.Equal(t, "observable values match model", report.Postcondition)
	// The driver shrinks the replayed sequence further: the value only needs
	// to be distinguishable, so "apple" reduces to "a".
	require.Equal(t, []string{`ChangeValue(0, "a")`, "Move(0, 1)"}, report.Sequence)
	require.Equal(t, 1, report.Step)
}
