// Package shrink reduces a failing command sequence toward a minimal
// reproduction.
//
// The search is explicit and deterministic: truncate the sequence, then
// remove individual commands, then simplify individual command parameters.
// A candidate is accepted only if it still fails. Every reduction class is
// bounded, so the search terminates even when no reduction succeeds.
package shrink

import (
	"golang.org/x/exp/slices"

	"statecheck/command"
)

// paramSteps bounds how many accepted parameter simplifications are applied
// to a single command.
const paramSteps = 64

// Minimize returns a sub-sequence or simplification of seq that still fails
// according to stillFails. rounds bounds how many full reduction passes are
// attempted; the search also stops as soon as a pass makes no progress.
//
// stillFails must be deterministic for a fixed candidate: it is expected to
// execute the candidate against a fresh (model, SUT) pair each time.
func Minimize[M, S any](seq []command.Command[M, S], rounds int, stillFails func([]command.Command[M, S]) bool) []command.Command[M, S] {
	cur := slices.Clone(seq)
	for round := 0; round < rounds; round++ {
		progress := false

		var changed bool
		cur, changed = truncate(cur, stillFails)
		progress = progress || changed

		cur, changed = dropOne(cur, stillFails)
		progress = progress || changed

		cur, changed = shrinkParams(cur, stillFails)
		progress = progress || changed

		if !progress {
			break
		}
	}
	return cur
}

// truncate finds a shorter failing prefix, halving first and then stepping
// back one command at a time.
func truncate[M, S any](cur []command.Command[M, S], stillFails func([]command.Command[M, S]) bool) ([]command.Command[M, S], bool) {
	changed := false
	for len(cur) > 1 {
		if half := cur[:len(cur)/2]; stillFails(half) {
			cur = half
			changed = true
			continue
		}
		if tail := cur[:len(cur)-1]; stillFails(tail) {
			cur = tail
			changed = true
			continue
		}
		break
	}
	return cur, changed
}

// dropOne removes single commands, scanning front to back. After an accepted
// removal the scan continues at the same index, so runs of removable
// commands collapse in one pass.
func dropOne[M, S any](cur []command.Command[M, S], stillFails func([]command.Command[M, S]) bool) ([]command.Command[M, S], bool) {
	changed := false
	for i := 0; i < len(cur); {
		cand := slices.Delete(slices.Clone(cur), i, i+1)
		if stillFails(cand) {
			cur = cand
			changed = true
		} else {
			i++
		}
	}
	return cur, changed
}

// shrinkParams simplifies the parameters of individual commands using each
// command's own Shrinker, most aggressive candidate first.
func shrinkParams[M, S any](cur []command.Command[M, S], stillFails func([]command.Command[M, S]) bool) ([]command.Command[M, S], bool) {
	changed := false
	for i := 0; i < len(cur); i++ {
		s, ok := cur[i].(command.Shrinker[M, S])
		if !ok {
			continue
		}
		for step := 0; step < paramSteps; step++ {
			replaced := false
			for _, simpler := range s.ShrinkParams() {
				cand := slices.Clone(cur)
				cand[i] = simpler
				if stillFails(cand) {
					cur = cand
					changed = true
					replaced = true
					s, ok = simpler.(command.Shrinker[M, S])
					break
				}
			}
			if !replaced || !ok {
				break
			}
		}
	}
	return cur, changed
}

// Int returns simpler values for n, moving toward zero.
func Int(n int) []int {
	if n <= 0 {
		return nil
	}
	out := []int{0}
	if h := n / 2; h != 0 {
		out = append(out, h)
	}
	if n-1 != 0 && n-1 != n/2 {
		out = append(out, n-1)
	}
	return out
}

// String returns simpler values for s, moving toward the empty string.
func String(s string) []string {
	if s == "" {
		return nil
	}
	out := []string{""}
	if h := s[:len(s)/2]; h != "" {
		out = append(out, h)
	}
	if t := s[:len(s)-1]; t != "" && t != s[:len(s)/2] {
		out = append(out, t)
	}
	return out
}
