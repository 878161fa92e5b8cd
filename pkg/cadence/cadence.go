// Package cadence finds long stretches of a piece without a clean chord and
// forces a cadence inside each of them.
package cadence

import (
	"math"
	"slices"

	"github.com/DougThompson1976/i-love-emily/pkg/beat"
	"github.com/DougThompson1976/i-love-emily/pkg/note"
)

// MaxGap is the longest stretch, in units, allowed between two clean chords
// before Resolve intervenes. Three 4/4 bars.
const MaxGap = 12 * note.Unit

// Phrase is a stretch between two consecutive clean points.
type Phrase struct {
	From int64 `json:"from" yaml:"from"`
	To   int64 `json:"to" yaml:"to"`
	// At is the onset of the chord turned into a cadence, valid when
	// Resolved is set.
	At       int64 `json:"at,omitempty" yaml:"at,omitempty"`
	Resolved bool  `json:"resolved" yaml:"resolved"`
}

// CleanPoints returns the onset times, ascending, at which every sounding
// voice starts a fresh note lasting one or two units.
func CleanPoints(t note.Timeline) []int64 {
	var points []int64
	for _, at := range onsets(t) {
		if clean(t, at) {
			points = append(points, at)
		}
	}
	return points
}

func onsets(t note.Timeline) []int64 {
	times := make([]int64, 0, len(t))
	for _, n := range t {
		times = append(times, n.Start)
	}
	slices.Sort(times)
	return slices.Compact(times)
}

func clean(t note.Timeline, at int64) bool {
	for _, n := range t {
		if n.Start > at {
			break
		}
		if n.End() <= at {
			continue
		}
		if n.Start != at || (n.Dur != note.Unit && n.Dur != 2*note.Unit) {
			return false
		}
	}
	return true
}

// Phrases returns the stretches between consecutive clean points that are
// longer than maxGap.
func Phrases(t note.Timeline, maxGap int64) []Phrase {
	points := CleanPoints(t)
	var out []Phrase
	for i := 1; i < len(points); i++ {
		if points[i]-points[i-1] > maxGap {
			out = append(out, Phrase{From: points[i-1], To: points[i]})
		}
	}
	return out
}

// Resolve turns one chord inside every over-long phrase into a cadence: the
// chord's onset notes are held for a full unit and everything else starting
// within that unit is dropped. The chosen chord is a four-note simultaneous
// triad nearest the middle of the phrase. Phrases with no such chord are
// returned unresolved. t must be sorted.
func Resolve(t note.Timeline) (note.Timeline, []Phrase) {
	phrases := Phrases(t, MaxGap)
	if len(phrases) == 0 {
		return t, nil
	}
	beats := beat.Split(t)
	out := t
	for i := range phrases {
		p := &phrases[i]
		chord, at, ok := pick(beats, p)
		if !ok {
			continue
		}
		out = note.Sort(append(note.Without(out, at, at+note.Unit), chord...))
		p.At, p.Resolved = at, true
	}
	return out, phrases
}

// pick finds the beat inside p best suited to carry a cadence and returns its
// onset chord lengthened to at least one unit.
func pick(beats []note.Timeline, p *Phrase) (note.Timeline, int64, bool) {
	mid := p.From + (p.To-p.From)/2
	var (
		best     note.Timeline
		bestAt   int64
		bestDist int64 = math.MaxInt64
	)
	for _, b := range beats {
		at := note.First(b)
		if at <= p.From || at >= p.To {
			continue
		}
		if !cadential(b, at) {
			continue
		}
		// Ascending beats; strict less keeps the earlier of two ties.
		if d := abs(at - mid); d < bestDist {
			best, bestAt, bestDist = b, at, d
		}
	}
	if best == nil {
		return nil, 0, false
	}
	chord := note.Onset(best)
	for i := range chord {
		chord[i].Dur = max(chord[i].Dur, note.Unit)
	}
	return chord, bestAt, true
}

func cadential(b note.Timeline, at int64) bool {
	if len(b) < 4 || !note.Simultaneous(b[:4]) || b[0].Start != at {
		return false
	}
	// A rest would read as pitch class 0.
	if slices.ContainsFunc(b[:4], func(n note.Note) bool { return n.Pitch == note.Rest }) {
		return false
	}
	if !note.PitchClasses(note.Pitches(b[:4])...).IsTriad() {
		return false
	}
	for _, n := range b {
		if n.End() > at+note.Unit {
			return false
		}
	}
	return true
}

func abs(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}
