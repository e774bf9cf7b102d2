// Package statecheck is a model-based property-testing engine. It verifies
// that a stateful system behaves consistently with a simplified abstract
// model across randomly generated command sequences, and shrinks any failing
// sequence to a minimal reproduction.
package statecheck

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"statecheck/check"
	"statecheck/command"
	"statecheck/gen"
	"statecheck/runner"
	"statecheck/shrink"
)

// A Property binds a harness, a command generator and a set of
// postconditions into a runnable property.
type Property[M, S any] struct {
	harness Harness[M, S]
	gen     gen.Generator[M, S]
	posts   []check.Postcondition[M, S]

	runs         int
	seqLen       int
	concurrency  int
	shrinkRounds int
	logger       *slog.Logger
}

// New creates a Property. Use the Option values to override the defaults.
func New[M, S any](h Harness[M, S], g gen.Generator[M, S], posts []check.Postcondition[M, S], opts ...Option) *Property[M, S] {
	p := &Property[M, S]{
		harness: h,
		gen:     g,
		posts:   posts,

		runs:         100,
		seqLen:       50,
		concurrency:  runtime.GOMAXPROCS(0),
		shrinkRounds: 10,
		logger:       slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		switch t := opt.(type) {
		case runsOption:
			if t.n > 0 {
				p.runs = t.n
			}
		case sequenceLengthOption:
			if t.n > 0 {
				p.seqLen = t.n
			}
		case concurrencyOption:
			if t.n > 0 {
				p.concurrency = t.n
			}
		case shrinkRoundsOption:
			if t.n > 0 {
				p.shrinkRounds = t.n
			}
		case loggerOption:
			if t.logger != nil {
				p.logger = t.logger
			}
		}
	}
	return p
}

// The outcome of a single run, reported by a worker to the main loop.
type runOutcome[M, S any] struct {
	seq []command.Command[M, S]
	res runner.Result[M, S]
	err error
}

// Run executes the configured number of runs. Each run draws a fresh command
// sequence and a fresh (model, SUT) pair. The first failing run stops the
// scheduling of new runs and is shrunk to a minimal reproduction before the
// report is produced.
//
// Runs may execute concurrently; no state is shared between them. Shrinking
// is always sequential.
func (p *Property[M, S]) Run(ctx context.Context) *Report {
	report := &Report{SequenceLength: p.seqLen, Step: -1}
	if s, ok := p.gen.(interface{ Seed() int64 }); ok {
		report.Seed = s.Seed()
	}

	// Used to signal a worker to execute the next run.
	nextRun := make(chan bool)
	// Used by workers to report the outcome of each run to the main loop.
	status := make(chan runOutcome[M, S])
	// Used by workers to signal that they have stopped executing runs.
	closing := make(chan bool)

	workers := p.concurrency
	if workers > p.runs {
		workers = p.runs
	}
	if workers < 1 {
		workers = 1
	}

	ongoing := 0
	started := 0
	for ongoing < workers {
		ongoing++
		go p.work(ctx, nextRun, status, closing)
		started++
		nextRun <- true
		if started >= p.runs {
			break
		}
	}

	var failure *runOutcome[M, S]
	var runErr error
	completed := 0

	stopped := false
	stop := func() {
		if !stopped {
			stopped = true
			close(nextRun)
		}
	}

	// Loop until all workers have stopped executing runs.
	for ongoing > 0 {
		select {
		case out := <-status:
			completed++
			switch {
			case out.err != nil:
				if runErr == nil {
					runErr = out.err
				}
				stop()
			case out.res.Status == runner.Failed:
				if failure == nil {
					o := out
					failure = &o
				}
				stop()
			}
			if !stopped {
				if started < p.runs {
					nextRun <- true
					started++
				} else {
					stop()
				}
			}
		case <-closing:
			ongoing--
		}
	}
	stop()

	// All workers have completed and will not send again.
	close(closing)
	close(status)

	report.Runs = completed

	switch {
	case runErr != nil:
		report.Err = runErr
	case failure == nil:
		if err := ctx.Err(); err != nil {
			report.Err = err
			break
		}
		report.Passed = true
		p.logger.Debug("property passed", "runs", completed, "seed", report.Seed)
	case contextDone(failure.res.Cause):
		report.Err = failure.res.Cause
	default:
		p.logger.Debug("run failed",
			"step", failure.res.Step,
			"command", fmt.Sprint(failure.res.Failing),
			"cause", failure.res.Cause)
		min, res := p.shrinkFailure(ctx, failure.seq, failure.res)
		report.Sequence = command.Describe(min)
		report.Step = res.Step
		report.Postcondition = res.Postcondition()
		report.Cause = res.Cause
	}
	return report
}

// work executes runs until nextRun is closed, reporting each outcome on
// status and signalling on closing when done.
func (p *Property[M, S]) work(ctx context.Context, nextRun chan bool, status chan runOutcome[M, S], closing chan bool) {
	for range nextRun {
		seq := p.gen.Sequence(p.seqLen)
		res, err := p.runOnce(ctx, seq)
		status <- runOutcome[M, S]{seq: seq, res: res, err: err}
	}
	closing <- true
}

// runOnce builds a fresh pair, executes the sequence against it and always
// tears the pair down.
func (p *Property[M, S]) runOnce(ctx context.Context, seq []command.Command[M, S]) (runner.Result[M, S], error) {
	model, sut, err := p.harness.Init()
	if err != nil {
		return runner.Result[M, S]{}, fmt.Errorf("statecheck: init pair: %w", err)
	}
	defer func() {
		if p.harness.Teardown != nil {
			p.harness.Teardown(sut)
		}
	}()
	return runner.Run(ctx, seq, model, sut, p.posts), nil
}

// shrinkFailure minimizes a failing sequence and replays the minimum once
// more to attribute the failure. If the final replay no longer reproduces,
// the original failure is reported unchanged.
func (p *Property[M, S]) shrinkFailure(ctx context.Context, seq []command.Command[M, S], orig runner.Result[M, S]) ([]command.Command[M, S], runner.Result[M, S]) {
	attempts := 0
	stillFails := func(cand []command.Command[M, S]) bool {
		if ctx.Err() != nil {
			return false
		}
		attempts++
		res, err := p.runOnce(ctx, cand)
		if err != nil {
			return false
		}
		return res.Status == runner.Failed && !contextDone(res.Cause)
	}

	min := shrink.Minimize(seq, p.shrinkRounds, stillFails)
	res, err := p.runOnce(ctx, min)
	if err != nil || res.Status != runner.Failed {
		return seq, orig
	}
	p.logger.Info("shrunk failing sequence",
		"from", len(seq),
		"to", len(min),
		"attempts", attempts)
	return min, res
}

func contextDone(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
