// Package finish applies the last touches to a composed piece: a pickup for
// openings off the tonic, a transposition into singable range, and the
// repair of doubled-length chords.
package finish

import (
	"github.com/DougThompson1976/i-love-emily/pkg/beat"
	"github.com/DougThompson1976/i-love-emily/pkg/note"
)

// Range limits for NormalizeRange.
const (
	BassFloor      = 40
	SopranoCeiling = 83
)

// PickupDelay is how far FixOpening pushes a piece that does not open on
// the tonic.
const PickupDelay = 3 * note.Unit

// Report describes what Apply changed.
type Report struct {
	Pickup    bool `json:"pickup" yaml:"pickup"`
	Shift     int  `json:"shift" yaml:"shift"`
	Collapsed int  `json:"collapsed" yaml:"collapsed"`
}

// Apply runs FixOpening, NormalizeRange and CollapseFinalCadence in order.
func Apply(t note.Timeline) (note.Timeline, Report) {
	var r Report
	t, r.Pickup = FixOpening(t)
	t, r.Shift = NormalizeRange(t)
	t, r.Collapsed = CollapseFinalCadence(t)
	return t, r
}

// FixOpening treats a piece that does not open on a root-position C major or
// minor chord as starting with a pickup: it is re-zeroed and delayed by
// PickupDelay. Pitches are left alone. It reports whether it delayed t.
func FixOpening(t note.Timeline) (note.Timeline, bool) {
	if len(t) == 0 || onTonic(note.Onset(t)) {
		return t, false
	}
	return note.Shift(note.Normalize(t), PickupDelay), true
}

var (
	major = note.PitchClasses(0, 4, 7)
	minor = note.PitchClasses(0, 3, 7)
)

func onTonic(chord note.Timeline) bool {
	var pcs note.PitchClassSet
	lowest := 0
	for _, n := range chord {
		if n.Pitch == note.Rest {
			continue
		}
		pcs |= note.PitchClasses(n.Pitch)
		if lowest == 0 || n.Pitch < lowest {
			lowest = n.Pitch
		}
	}
	if lowest == 0 || note.PitchClass(lowest) != 0 {
		return false
	}
	return pcs == major || pcs == minor
}

// RangeShift returns the transposition that centres the extremes of t
// between BassFloor and SopranoCeiling. Rests are ignored.
func RangeShift(t note.Timeline) int {
	lo, hi := 0, 0
	for _, n := range t {
		if n.Pitch == note.Rest {
			continue
		}
		if lo == 0 || n.Pitch < lo {
			lo = n.Pitch
		}
		if hi == 0 || n.Pitch > hi {
			hi = n.Pitch
		}
	}
	if lo == 0 {
		return 0
	}
	return ((SopranoCeiling - hi) - (lo - BassFloor)) / 2
}

// NormalizeRange transposes t by RangeShift(t) and returns the shift, so
// the caller can undo it with note.Transpose(t, -shift).
func NormalizeRange(t note.Timeline) (note.Timeline, int) {
	shift := RangeShift(t)
	if shift == 0 {
		return t, 0
	}
	return note.Transpose(t, shift), shift
}

// CollapseFinalCadence halves every beat made of exactly four simultaneous
// two-unit notes and pulls everything after it in by one unit. It returns
// the number of beats collapsed. Running it again on its output changes
// nothing.
func CollapseFinalCadence(t note.Timeline) (note.Timeline, int) {
	var (
		out    note.Timeline
		offset int64
		n      int
	)
	for b := range beat.Collect(t) {
		if !doubled(b) {
			out = append(out, note.Shift(b, -offset)...)
			continue
		}
		for _, x := range b {
			x.Start -= offset
			x.Dur = note.Unit
			out = append(out, x)
		}
		offset += note.Unit
		n++
	}
	if n == 0 {
		return t, 0
	}
	return note.Sort(out), n
}

func doubled(b note.Timeline) bool {
	if len(b) != 4 || !note.Simultaneous(b) {
		return false
	}
	for _, n := range b {
		if n.Dur != 2*note.Unit {
			return false
		}
	}
	return true
}
