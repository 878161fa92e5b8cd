package beat

import (
	"github.com/DougThompson1976/i-love-emily/pkg/note"
)

// BreakIntoBeats quantizes t to unit-length notes. Each voice is processed on
// its own: a note longer than one unit is chopped into unit pieces, and any
// sub-unit remainder is carried into the voice's next note, which then starts
// earlier by that amount. A remainder that cannot be carried (the voice rests
// or ends) is kept as a short note, unless strict is set, in which case it is
// dropped so that every returned note lasts exactly one unit.
//
// The result is sorted by start time.
func BreakIntoBeats(t note.Timeline, strict bool) note.Timeline {
	var out note.Timeline
	for _, v := range note.Voices(t) {
		out = append(out, breakVoice(note.ByVoice(note.Sort(t), v), strict)...)
	}
	return note.Sort(out)
}

func breakVoice(notes note.Timeline, strict bool) note.Timeline {
	var out note.Timeline
	var carry int64
	for i, n := range notes {
		start, dur := n.Start-carry, n.Dur+carry
		carry = 0
		for dur >= note.Unit {
			out = append(out, note.Note{Pitch: n.Pitch, Start: start, Dur: note.Unit, Voice: n.Voice})
			start += note.Unit
			dur -= note.Unit
		}
		if dur == 0 {
			continue
		}
		if i+1 < len(notes) && notes[i+1].Start == n.End() {
			carry = dur
			continue
		}
		if !strict {
			out = append(out, note.Note{Pitch: n.Pitch, Start: start, Dur: dur, Voice: n.Voice})
		}
	}
	return out
}
