// Package beat segments a voice-aligned timeline into beats: maximal groups of
// notes closed by the first unit-aligned time at which every sounding voice
// finishes a note together.
package beat

import (
	"iter"
	"slices"

	"github.com/DougThompson1976/i-love-emily/pkg/note"
)

// Collect returns the beats of t in order. The sequence is finite and can be
// ranged over any number of times; each pass segments t afresh.
//
// t must be sorted by start time. Concatenating the yielded beats reproduces t
// exactly, note for note.
func Collect(t note.Timeline) iter.Seq[note.Timeline] {
	return func(yield func(note.Timeline) bool) {
		rest := t
		for len(rest) > 0 {
			cut := alignment(rest)
			if !yield(slices.Clip(rest[:cut])) {
				return
			}
			rest = rest[cut:]
		}
	}
}

// Split collects every beat of t into a slice.
func Split(t note.Timeline) []note.Timeline {
	return slices.Collect(Collect(t))
}

// alignment returns how many leading notes of rest form the next beat. It is
// always at least 1 and at most len(rest).
func alignment(rest note.Timeline) int {
	start := rest[0].Start
	var ends []int64
	for _, n := range rest {
		if e := n.End(); e > start && e%note.Unit == 0 && !slices.Contains(ends, e) {
			ends = append(ends, e)
		}
	}
	slices.Sort(ends)

	for _, e := range ends {
		if !aligned(rest, e) {
			continue
		}
		cut := 0
		for cut < len(rest) && rest[cut].Start < e {
			cut++
		}
		return cut
	}
	return len(rest)
}

// aligned reports whether every voice sounding before e ends a note exactly at
// e and no note crosses e. Voices that only enter at or after e are ignored.
// rest must be sorted by start time.
func aligned(rest note.Timeline, e int64) bool {
	var active, closed []int
	for _, n := range rest {
		if n.Start >= e {
			break
		}
		if n.End() > e {
			return false
		}
		if !slices.Contains(active, n.Voice) {
			active = append(active, n.Voice)
		}
		if n.End() == e && !slices.Contains(closed, n.Voice) {
			closed = append(closed, n.Voice)
		}
	}
	return len(active) == len(closed)
}
