// Package gen produces the command sequences executed by property runs.
package gen

import (
	"math/rand"
	"strings"
	"sync"

	"golang.org/x/exp/slices"

	"statecheck/command"
)

// A Generator produces command sequences for property runs.
type Generator[M, S any] interface {
	// Sequence returns the next sequence of n commands. For a seeded
	// generator the series of sequences is fully determined by the seed, so
	// a run can be reproduced by replaying from the same seed.
	Sequence(n int) []command.Command[M, S]
}

// Variant couples a relative weight with a sampling function for one command
// variant.
type Variant[M, S any] struct {
	Weight int
	Sample func(r *rand.Rand) command.Command[M, S]
}

// Weighted draws commands by first selecting a variant according to the
// configured weights and then sampling that variant's parameters.
//
// All randomness derives from the seed. Each sequence is drawn from a child
// source seeded by the generator, so sequences are independent draws but the
// whole series is reproducible.
type Weighted[M, S any] struct {
	mu sync.Mutex

	seed     int64
	rand     *rand.Rand
	variants []Variant[M, S]
	total    int
}

// NewWeighted creates a generator over the provided variants. Variants with
// a non-positive weight are never drawn.
func NewWeighted[M, S any](seed int64, variants ...Variant[M, S]) *Weighted[M, S] {
	total := 0
	for _, v := range variants {
		if v.Weight > 0 {
			total += v.Weight
		}
	}
	return &Weighted[M, S]{
		seed:     seed,
		rand:     rand.New(rand.NewSource(seed)),
		variants: slices.Clone(variants),
		total:    total,
	}
}

// Seed returns the seed the generator was created with.
func (w *Weighted[M, S]) Seed() int64 {
	return w.seed
}

// Sequence draws the next n commands. Safe for concurrent use.
func (w *Weighted[M, S]) Sequence(n int) []command.Command[M, S] {
	w.mu.Lock()
	r := rand.New(rand.NewSource(w.rand.Int63()))
	w.mu.Unlock()

	seq := make([]command.Command[M, S], 0, n)
	for i := 0; i < n; i++ {
		seq = append(seq, w.pick(r).Sample(r))
	}
	return seq
}

func (w *Weighted[M, S]) pick(r *rand.Rand) Variant[M, S] {
	t := r.Intn(w.total)
	for _, v := range w.variants {
		if v.Weight <= 0 {
			continue
		}
		t -= v.Weight
		if t < 0 {
			return v
		}
	}
	return w.variants[len(w.variants)-1]
}

// Replay yields a fixed recorded sequence on every call, ignoring the
// requested length. It is used to re-execute a reported counterexample
// against a fresh pair.
type Replay[M, S any] struct {
	seq []command.Command[M, S]
}

// NewReplay creates a generator that replays seq.
func NewReplay[M, S any](seq []command.Command[M, S]) *Replay[M, S] {
	return &Replay[M, S]{seq: slices.Clone(seq)}
}

func (p *Replay[M, S]) Sequence(int) []command.Command[M, S] {
	return slices.Clone(p.seq)
}

// IntN samples a natural number in [0, n). Returns 0 when n is not positive.
func IntN(r *rand.Rand, n int) int {
	if n <= 0 {
		return 0
	}
	return r.Intn(n)
}

// String samples a short lowercase string, possibly empty.
func String(r *rand.Rand) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz"
	n := r.Intn(8)
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteByte(alphabet[r.Intn(len(alphabet))])
	}
	return b.String()
}
