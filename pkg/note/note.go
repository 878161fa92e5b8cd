// Package note defines the atomic musical event used throughout emily and the
// pure timeline arithmetic built on it: pitch-class sets, triad tests,
// transposition, voice filtering and time-window selection.
//
// Times are fixed-point integers: one beat (a quarter note in the corpus) is
// Unit = 1000 units, so an eighth note lasts 500 and a half note 2000.
package note

import (
	"cmp"
	"fmt"
	"slices"
)

// Unit is the number of time units in one beat.
const Unit int64 = 1000

// Rest is the sentinel "no pitch" value. Notes with this pitch are never
// transposed.
const Rest = 0

// Note is a single pitched event on one voice.
type Note struct {
	Pitch int   `yaml:"pitch" json:"pitch" msgpack:"p"` // semitone index, Rest for no pitch
	Start int64 `yaml:"start" json:"start" msgpack:"s"` // onset in units
	Dur   int64 `yaml:"dur" json:"dur" msgpack:"d"`     // duration in units
	Voice int   `yaml:"voice" json:"voice" msgpack:"v"` // 1 = soprano ... 4 = bass
}

// End returns the time at which the note stops sounding.
func (n Note) End() int64 { return n.Start + n.Dur }

func (n Note) String() string {
	return fmt.Sprintf("(%d,%d,%d,%d)", n.Pitch, n.Start, n.Dur, n.Voice)
}

// Timeline is an ordered sequence of notes. Most functions in this package
// expect it sorted by start time (see Sort) and return a new sorted Timeline
// without touching their input.
type Timeline []Note

// Clone returns a copy of t.
func (t Timeline) Clone() Timeline {
	if t == nil {
		return nil
	}
	return slices.Clone(t)
}

// Sort returns a copy of t ordered by start time, then voice. Notes that tie
// on both keep their relative order.
func Sort(t Timeline) Timeline {
	out := t.Clone()
	slices.SortStableFunc(out, func(a, b Note) int {
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.Voice, b.Voice)
	})
	return out
}

// Equal reports whether a and b hold the same notes in the same order.
func Equal(a, b Timeline) bool {
	return slices.Equal(a, b)
}

// Pitches returns the pitch of every note in order.
func Pitches(t Timeline) []int {
	ps := make([]int, len(t))
	for i, n := range t {
		ps[i] = n.Pitch
	}
	return ps
}

// ByVoice returns the notes sung by voice v.
func ByVoice(t Timeline, v int) Timeline {
	var out Timeline
	for _, n := range t {
		if n.Voice == v {
			out = append(out, n)
		}
	}
	return out
}

// Voices returns the distinct voice numbers present in t, ascending.
func Voices(t Timeline) []int {
	var vs []int
	for _, n := range t {
		if !slices.Contains(vs, n.Voice) {
			vs = append(vs, n.Voice)
		}
	}
	slices.Sort(vs)
	return vs
}

// Transpose returns t with every pitch moved by semitones. Rest notes keep
// their pitch.
func Transpose(t Timeline, semitones int) Timeline {
	out := t.Clone()
	for i := range out {
		if out[i].Pitch != Rest {
			out[i].Pitch += semitones
		}
	}
	return out
}

// Shift returns t with every start time moved by offset.
func Shift(t Timeline, offset int64) Timeline {
	out := t.Clone()
	for i := range out {
		out[i].Start += offset
	}
	return out
}

// Within returns the notes whose start lies in [from, to).
func Within(t Timeline, from, to int64) Timeline {
	var out Timeline
	for _, n := range t {
		if n.Start >= from && n.Start < to {
			out = append(out, n)
		}
	}
	return out
}

// Without returns the notes whose start lies outside [from, to).
func Without(t Timeline, from, to int64) Timeline {
	var out Timeline
	for _, n := range t {
		if n.Start < from || n.Start >= to {
			out = append(out, n)
		}
	}
	return out
}

// First returns the earliest start time in t, or 0 if t is empty.
func First(t Timeline) int64 {
	if len(t) == 0 {
		return 0
	}
	first := t[0].Start
	for _, n := range t[1:] {
		first = min(first, n.Start)
	}
	return first
}

// Last returns the latest end time in t, or 0 if t is empty.
func Last(t Timeline) int64 {
	if len(t) == 0 {
		return 0
	}
	last := t[0].End()
	for _, n := range t[1:] {
		last = max(last, n.End())
	}
	return last
}

// Normalize shifts t so that its earliest note starts at 0.
func Normalize(t Timeline) Timeline {
	return Shift(t, -First(t))
}

// Duration is the span from the earliest start to the latest end.
func Duration(t Timeline) int64 {
	if len(t) == 0 {
		return 0
	}
	return Last(t) - First(t)
}

// Onset returns the notes sharing the earliest start time, in timeline order.
func Onset(t Timeline) Timeline {
	if len(t) == 0 {
		return nil
	}
	first := First(t)
	var out Timeline
	for _, n := range t {
		if n.Start == first {
			out = append(out, n)
		}
	}
	return out
}

// Simultaneous reports whether every note in t starts at the same time.
func Simultaneous(t Timeline) bool {
	for _, n := range t {
		if n.Start != t[0].Start {
			return false
		}
	}
	return true
}
