package beat

import (
	"math/rand/v2"
	"testing"

	"github.com/DougThompson1976/i-love-emily/pkg/note"
)

func TestCollectToyCorpus(t *testing.T) {
	in := note.Timeline{
		{Pitch: 60, Start: 0, Dur: 1000, Voice: 1},
		{Pitch: 64, Start: 0, Dur: 1000, Voice: 2},
		{Pitch: 62, Start: 1000, Dur: 1000, Voice: 1},
		{Pitch: 67, Start: 1000, Dur: 1000, Voice: 2},
	}
	beats := Split(in)
	if len(beats) != 2 {
		t.Fatalf("got %d beats, want 2: %v", len(beats), beats)
	}
	for i, b := range beats {
		if len(b) != 2 {
			t.Errorf("beat %d has %d notes, want 2", i, len(b))
		}
	}
	if ps := note.Pitches(note.Onset(beats[0])); ps[0] != 60 || ps[1] != 64 {
		t.Errorf("beat 1 onset = %v", ps)
	}
	if ps := note.Pitches(note.Onset(beats[1])); ps[0] != 62 || ps[1] != 67 {
		t.Errorf("beat 2 onset = %v", ps)
	}
}

func TestCollectWaitsForAllVoices(t *testing.T) {
	// Voice 1 moves in eighths over a held bass; the beat closes when both
	// voices meet on a unit boundary.
	in := note.Sort(note.Timeline{
		{Pitch: 72, Start: 0, Dur: 500, Voice: 1},
		{Pitch: 74, Start: 500, Dur: 500, Voice: 1},
		{Pitch: 76, Start: 1000, Dur: 1000, Voice: 1},
		{Pitch: 48, Start: 0, Dur: 2000, Voice: 4},
		{Pitch: 43, Start: 2000, Dur: 1000, Voice: 4},
		{Pitch: 71, Start: 2000, Dur: 1000, Voice: 1},
	})
	beats := Split(in)
	if len(beats) != 2 {
		t.Fatalf("got %d beats, want 2: %v", len(beats), beats)
	}
	if len(beats[0]) != 4 || note.Duration(beats[0]) != 2000 {
		t.Errorf("first beat = %v", beats[0])
	}
	if len(beats[1]) != 2 {
		t.Errorf("second beat = %v", beats[1])
	}
}

func TestCollectUnalignedTailAbsorbed(t *testing.T) {
	in := note.Timeline{
		{Pitch: 60, Start: 0, Dur: 1000, Voice: 1},
		{Pitch: 48, Start: 0, Dur: 1000, Voice: 4},
		{Pitch: 62, Start: 1000, Dur: 750, Voice: 1},
		{Pitch: 47, Start: 1000, Dur: 500, Voice: 4},
	}
	beats := Split(in)
	if len(beats) != 2 || len(beats[1]) != 2 {
		t.Fatalf("beats = %v", beats)
	}
}

func TestCollectLateEntryIsVacuouslyAligned(t *testing.T) {
	in := note.Sort(note.Timeline{
		{Pitch: 60, Start: 0, Dur: 1000, Voice: 1},
		{Pitch: 62, Start: 1000, Dur: 1000, Voice: 1},
		{Pitch: 48, Start: 1000, Dur: 1000, Voice: 4},
	})
	beats := Split(in)
	if len(beats) != 2 || len(beats[0]) != 1 {
		t.Fatalf("beats = %v", beats)
	}
}

func TestCollectRestartable(t *testing.T) {
	in := randomChorale(rand.New(rand.NewPCG(1, 2)), 24)
	seq := Collect(in)
	first, second := 0, 0
	for range seq {
		first++
	}
	for range seq {
		second++
	}
	if first == 0 || first != second {
		t.Fatalf("passes yielded %d and %d beats", first, second)
	}
}

func TestCollectCoverage(t *testing.T) {
	for seed := uint64(0); seed < 50; seed++ {
		in := randomChorale(rand.New(rand.NewPCG(seed, seed*7+1)), 16)
		var joined note.Timeline
		for b := range Collect(in) {
			if len(b) == 0 {
				t.Fatalf("seed %d: empty beat", seed)
			}
			joined = append(joined, b...)
		}
		if !note.Equal(joined, in) {
			t.Fatalf("seed %d: concatenated beats differ from input", seed)
		}
	}
}

func TestCollectEmpty(t *testing.T) {
	for range Collect(nil) {
		t.Fatal("empty timeline yielded a beat")
	}
}

func TestBreakIntoBeats(t *testing.T) {
	in := note.Timeline{
		{Pitch: 60, Start: 0, Dur: 2000, Voice: 1},
		{Pitch: 62, Start: 2000, Dur: 500, Voice: 1},
		{Pitch: 64, Start: 2500, Dur: 1500, Voice: 1},
		{Pitch: 65, Start: 4000, Dur: 1500, Voice: 1},
	}
	got := BreakIntoBeats(in, false)
	want := note.Timeline{
		{Pitch: 60, Start: 0, Dur: 1000, Voice: 1},
		{Pitch: 60, Start: 1000, Dur: 1000, Voice: 1},
		{Pitch: 64, Start: 2000, Dur: 1000, Voice: 1},
		{Pitch: 64, Start: 3000, Dur: 1000, Voice: 1},
		{Pitch: 65, Start: 4000, Dur: 1000, Voice: 1},
		{Pitch: 65, Start: 5000, Dur: 500, Voice: 1},
	}
	if !note.Equal(got, want) {
		t.Fatalf("BreakIntoBeats =\n%v\nwant\n%v", got, want)
	}

	strict := BreakIntoBeats(in, true)
	if !note.Equal(strict, want[:5]) {
		t.Fatalf("strict BreakIntoBeats = %v", strict)
	}
	for _, n := range strict {
		if n.Dur != note.Unit {
			t.Errorf("strict note %v is not one unit", n)
		}
	}
}

func TestBreakIntoBeatsRestNotCarried(t *testing.T) {
	in := note.Timeline{
		{Pitch: 60, Start: 0, Dur: 1500, Voice: 1},
		{Pitch: 62, Start: 2000, Dur: 1000, Voice: 1},
	}
	got := BreakIntoBeats(in, false)
	if len(got) != 3 || got[1].Dur != 500 || got[2].Start != 2000 {
		t.Fatalf("BreakIntoBeats = %v", got)
	}
}

// randomChorale builds a sorted four-voice timeline of n units where each
// voice moves in a random mix of eighths, quarters and halves.
func randomChorale(r *rand.Rand, n int64) note.Timeline {
	durs := []int64{500, 1000, 1000, 2000}
	var t note.Timeline
	for v := 1; v <= 4; v++ {
		var at int64
		for at < n*note.Unit {
			d := min(durs[r.IntN(len(durs))], n*note.Unit-at)
			t = append(t, note.Note{Pitch: 40 + 10*(4-v) + r.IntN(10), Start: at, Dur: d, Voice: v})
			at += d
		}
	}
	return note.Sort(t)
}
