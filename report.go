package statecheck

import (
	"bytes"
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// Report is the outcome of running a Property.
type Report struct {
	// Runs is the number of runs that completed, including the failing one.
	Runs int

	// Passed is true when every run completed without a failure.
	Passed bool

	// Seed reproduces the generated sequences when the generator exposes
	// one. Zero when the generator is not seeded (e.g. a replay).
	Seed int64

	// SequenceLength is the number of commands drawn per run.
	SequenceLength int

	// Sequence is the minimal failing command sequence, one rendered
	// command per element. Empty when the property passed.
	Sequence []string

	// Step is the index into the minimal sequence of the failing command.
	// -1 when the property passed.
	Step int

	// Postcondition names the violated postcondition. Empty when the
	// property passed or the failure was an adapter fault.
	Postcondition string

	// Cause is the classified failure of the minimal sequence.
	Cause error

	// Err is set when the engine could not complete the simulation, e.g.
	// the harness failed to build a pair or the context was cancelled. It
	// is not a counterexample.
	Err error
}

// Response returns the result of the property and a description of it.
//
// If the property failed the description contains the minimal failing
// command sequence and the violated postcondition.
func (r *Report) Response() (bool, string) {
	if r.Err != nil {
		return false, fmt.Sprintf("simulation incomplete after %d runs: %v", r.Runs, r.Err)
	}
	if r.Passed {
		return true, fmt.Sprintf("all %d runs passed (seed %d)", r.Runs, r.Seed)
	}

	var buffer bytes.Buffer
	wrt := tabwriter.NewWriter(&buffer, 4, 4, 0, ' ', 0)
	out := fmt.Sprintf("Failed after %d runs (seed %d): %v. Minimal sequence:\n", r.Runs, r.Seed, r.Cause)
	for i, cmd := range r.Sequence {
		marker := "  "
		if i == r.Step {
			marker = "->"
		}
		fmt.Fprintf(wrt, "%s %d\t%s\n", marker, i, cmd)
	}
	wrt.Flush()
	out += buffer.String()
	return false, out
}

// Trace is the reproduction trace of a report. Replaying the seed with the
// same generator configuration and sequence length reproduces the failure;
// the recorded commands allow replaying the minimal sequence directly.
type Trace struct {
	Seed           int64         `yaml:"seed"`
	Runs           int           `yaml:"runs"`
	SequenceLength int           `yaml:"sequence_length"`
	Failure        *FailureTrace `yaml:"failure,omitempty"`
}

// FailureTrace records the minimal counterexample of a failed report.
type FailureTrace struct {
	Step          int      `yaml:"step"`
	Postcondition string   `yaml:"postcondition,omitempty"`
	Commands      []string `yaml:"commands"`
}

// Trace builds the reproduction trace for the report.
func (r *Report) Trace() Trace {
	t := Trace{
		Seed:           r.Seed,
		Runs:           r.Runs,
		SequenceLength: r.SequenceLength,
	}
	if !r.Passed && r.Err == nil {
		t.Failure = &FailureTrace{
			Step:          r.Step,
			Postcondition: r.Postcondition,
			Commands:      r.Sequence,
		}
	}
	return t
}

// WriteTrace writes the reproduction trace to w as YAML.
func (r *Report) WriteTrace(w io.Writer) error {
	out, err := yaml.Marshal(r.Trace())
	if err != nil {
		return fmt.Errorf("statecheck: marshal trace: %w", err)
	}
	_, err = w.Write(out)
	return err
}
