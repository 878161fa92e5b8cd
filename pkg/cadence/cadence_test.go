package cadence

import (
	"slices"
	"testing"

	"github.com/DougThompson1976/i-love-emily/pkg/note"
)

var tonic = []int{72, 67, 64, 48}

// chord appends a four-voice chord at at, all notes lasting dur.
func chord(t note.Timeline, pitches []int, at, dur int64) note.Timeline {
	for v, p := range pitches {
		t = append(t, note.Note{Pitch: p, Start: at, Dur: dur, Voice: v + 1})
	}
	return t
}

// busy builds a piece that is clean only at its first and last beat: every
// beat in between has an eighth-note pair in the top voice.
func busy(beats int, inner []int) note.Timeline {
	t := chord(nil, tonic, 0, note.Unit)
	for i := 1; i < beats; i++ {
		at := int64(i) * note.Unit
		t = append(t,
			note.Note{Pitch: inner[0], Start: at, Dur: 500, Voice: 1},
			note.Note{Pitch: inner[0] + 2, Start: at + 500, Dur: 500, Voice: 1},
		)
		for v, p := range inner[1:] {
			t = append(t, note.Note{Pitch: p, Start: at, Dur: note.Unit, Voice: v + 2})
		}
	}
	t = chord(t, tonic, int64(beats)*note.Unit, note.Unit)
	return note.Sort(t)
}

func TestCleanPoints(t *testing.T) {
	var piece note.Timeline
	piece = chord(piece, tonic, 0, note.Unit)
	piece = chord(piece, tonic, 1000, 2*note.Unit)
	piece = chord(piece, tonic, 3000, 3*note.Unit)
	piece = chord(piece, tonic, 6000, note.Unit)
	got := CleanPoints(note.Sort(piece))
	if want := []int64{0, 1000, 6000}; !slices.Equal(got, want) {
		t.Errorf("CleanPoints = %v, want %v", got, want)
	}

	got = CleanPoints(busy(4, tonic))
	if want := []int64{0, 4000}; !slices.Equal(got, want) {
		t.Errorf("CleanPoints(busy) = %v, want %v", got, want)
	}
}

func TestPhrases(t *testing.T) {
	if got := Phrases(busy(12, tonic), MaxGap); len(got) != 0 {
		t.Errorf("12-unit gap flagged: %v", got)
	}
	got := Phrases(busy(14, tonic), MaxGap)
	if len(got) != 1 || got[0].From != 0 || got[0].To != 14000 {
		t.Fatalf("Phrases = %+v", got)
	}
}

func TestResolve(t *testing.T) {
	in := busy(14, tonic)
	out, phrases := Resolve(in)
	if len(phrases) != 1 || !phrases[0].Resolved || phrases[0].At != 7000 {
		t.Fatalf("phrases = %+v", phrases)
	}
	cadence := note.Within(out, 7000, 8000)
	if len(cadence) != 4 || !note.Simultaneous(cadence) {
		t.Fatalf("cadence chord = %v", cadence)
	}
	for _, n := range cadence {
		if n.Dur != note.Unit {
			t.Errorf("cadence note %v not a full unit", n)
		}
	}
	if !slices.Contains(CleanPoints(out), 7000) {
		t.Error("resolved chord is not a clean point")
	}
	// Everything outside the resolved unit is untouched.
	if !note.Equal(note.Without(out, 7000, 8000), note.Without(in, 7000, 8000)) {
		t.Error("Resolve changed notes outside the cadence")
	}
	if len(in) != len(busy(14, tonic)) {
		t.Error("Resolve modified its input")
	}
}

func TestResolveTieTakesEarlier(t *testing.T) {
	_, phrases := Resolve(busy(13, tonic))
	if len(phrases) != 1 || phrases[0].At != 6000 {
		t.Fatalf("phrases = %+v", phrases)
	}
}

func TestResolveNoCandidate(t *testing.T) {
	cluster := []int{72, 71, 69, 48}
	in := busy(14, cluster)
	out, phrases := Resolve(in)
	if len(phrases) != 1 || phrases[0].Resolved {
		t.Fatalf("phrases = %+v", phrases)
	}
	if !note.Equal(out, in) {
		t.Error("unresolvable phrase changed the piece")
	}
}

func TestResolveNothingToDo(t *testing.T) {
	in := busy(3, tonic)
	out, phrases := Resolve(in)
	if phrases != nil || !note.Equal(out, in) {
		t.Errorf("Resolve = %v, %v", out, phrases)
	}
}

func TestCadentialIgnoresRests(t *testing.T) {
	// Without the rest check {Rest, A, E, A} would read as an A minor triad.
	withRest := chord(nil, []int{note.Rest, 69, 64, 57}, 0, note.Unit)
	if cadential(withRest, 0) {
		t.Error("chord with a rest accepted as a cadence")
	}
	if !cadential(chord(nil, []int{72, 69, 64, 57}, 0, note.Unit), 0) {
		t.Error("A minor triad rejected")
	}
}

func TestPickKeepsWholeOnset(t *testing.T) {
	// A fifth voice doubles the bass on the cadence beat.
	b := chord(nil, tonic, 1000, 500)
	b = append(b, note.Note{Pitch: 36, Start: 1000, Dur: 500, Voice: 5})
	beats := []note.Timeline{chord(nil, tonic, 0, note.Unit), b}
	got, at, ok := pick(beats, &Phrase{From: 0, To: 2000})
	if !ok || at != 1000 {
		t.Fatalf("pick = %v, %d, %v", got, at, ok)
	}
	if len(got) != 5 {
		t.Fatalf("chord = %v, want all 5 onset notes", got)
	}
	for _, n := range got {
		if n.Dur != note.Unit {
			t.Errorf("note %v not lengthened to a unit", n)
		}
	}
	if b[0].Dur != 500 {
		t.Error("pick modified the beat")
	}
}
