package statecheck

import "log/slog"

// Option configures a Property.
type Option interface{}

type runsOption struct {
	n int
}

// Runs sets the number of property runs.
//
// Default value is 100.
func Runs(n int) Option {
	return runsOption{n: n}
}

type sequenceLengthOption struct {
	n int
}

// SequenceLength sets how many commands are drawn from the generator for
// each run.
//
// Default value is 50.
func SequenceLength(n int) Option {
	return sequenceLengthOption{n: n}
}

type concurrencyOption struct {
	n int
}

// Concurrency sets the maximum number of runs executed at the same time.
// Commands within a single run are always strictly sequential.
//
// Default value is runtime.GOMAXPROCS(0).
func Concurrency(n int) Option {
	return concurrencyOption{n: n}
}

type shrinkRoundsOption struct {
	n int
}

// MaxShrinkRounds bounds how many full reduction passes are attempted when
// shrinking a failing sequence.
//
// Default value is 10.
func MaxShrinkRounds(n int) Option {
	return shrinkRoundsOption{n: n}
}

type loggerOption struct {
	logger *slog.Logger
}

// WithLogger sets the logger used for run progress and shrink diagnostics.
//
// Default value discards all logs.
func WithLogger(logger *slog.Logger) Option {
	return loggerOption{logger: logger}
}
