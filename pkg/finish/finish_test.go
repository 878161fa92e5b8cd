package finish

import (
	"testing"

	"github.com/DougThompson1976/i-love-emily/pkg/note"
)

func chords(durs []int64, pitches ...[]int) note.Timeline {
	var (
		t  note.Timeline
		at int64
	)
	for i, c := range pitches {
		for v, p := range c {
			t = append(t, note.Note{Pitch: p, Start: at, Dur: durs[i], Voice: v + 1})
		}
		at += durs[i]
	}
	return t
}

var (
	cMajor    = []int{72, 67, 64, 48}
	cMinor    = []int{72, 67, 63, 48}
	gMajor    = []int{71, 67, 62, 55}
	firstInv  = []int{72, 67, 60, 52}
	quarters3 = []int64{1000, 1000, 1000}
)

func TestFixOpening(t *testing.T) {
	tests := []struct {
		name   string
		open   []int
		pickup bool
	}{
		{"major", cMajor, false},
		{"minor", cMinor, false},
		{"dominant", gMajor, true},
		{"inversion", firstInv, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := chords(quarters3, tt.open, gMajor, cMajor)
			out, pickup := FixOpening(in)
			if pickup != tt.pickup {
				t.Fatalf("pickup = %v, want %v", pickup, tt.pickup)
			}
			want := in
			if tt.pickup {
				want = note.Shift(in, PickupDelay)
			}
			if !note.Equal(out, want) {
				t.Errorf("FixOpening = %v", out)
			}
		})
	}
}

func TestFixOpeningRezeroes(t *testing.T) {
	in := note.Shift(chords(quarters3, gMajor, cMajor, gMajor), 500)
	out, _ := FixOpening(in)
	if note.First(out) != PickupDelay {
		t.Errorf("first onset = %d, want %d", note.First(out), PickupDelay)
	}
}

func TestRangeShift(t *testing.T) {
	tests := []struct {
		lo, hi int
		want   int
	}{
		{48, 72, 1},   // (11 - 8) / 2
		{40, 83, 0},   // already centred
		{60, 90, -13}, // (-7 - 20) / 2, truncated
		{30, 50, 21},  // (33 + 10) / 2
		{36, 84, 1},   // (-1 + 4) / 2
	}
	for _, tt := range tests {
		in := note.Timeline{
			{Pitch: tt.hi, Voice: 1, Dur: 1000},
			{Pitch: tt.lo, Voice: 4, Dur: 1000},
		}
		if got := RangeShift(in); got != tt.want {
			t.Errorf("RangeShift(%d..%d) = %d, want %d", tt.lo, tt.hi, got, tt.want)
		}
	}
	if got := RangeShift(note.Timeline{{Pitch: note.Rest, Dur: 1000}}); got != 0 {
		t.Errorf("RangeShift(rest) = %d", got)
	}
}

func TestNormalizeRangeInverse(t *testing.T) {
	in := chords(quarters3, []int{90, 80, 70, 60}, gMajor, cMajor)
	in = append(in, note.Note{Pitch: note.Rest, Start: 3000, Dur: 1000, Voice: 1})

	out, shift := NormalizeRange(in)
	if shift == 0 {
		t.Fatal("expected a transposition")
	}
	if out[len(out)-1].Pitch != note.Rest {
		t.Error("rest was transposed")
	}
	if back := note.Transpose(out, -shift); !note.Equal(back, in) {
		t.Errorf("inverse transposition = %v, want %v", back, in)
	}
}

func TestCollapseFinalCadence(t *testing.T) {
	in := chords([]int64{1000, 2000, 1000, 2000}, cMajor, cMajor, gMajor, cMajor)
	once, n := CollapseFinalCadence(in)
	if n != 2 {
		t.Fatalf("collapsed %d beats, want 2", n)
	}
	if end := note.Last(once); end != 4000 {
		t.Errorf("collapsed piece ends at %d, want 4000", end)
	}
	for _, x := range once {
		if x.Dur != note.Unit {
			t.Errorf("note %v not collapsed", x)
		}
	}
	if dom := note.Within(once, 2000, 3000); len(dom) != 4 || dom[0].Pitch != 71 {
		t.Errorf("dominant moved: %v", dom)
	}

	twice, n := CollapseFinalCadence(once)
	if n != 0 || !note.Equal(twice, once) {
		t.Errorf("second pass changed the piece: %v", twice)
	}
}

func TestCollapseIgnoresPartialChords(t *testing.T) {
	in := note.Timeline{
		{Pitch: 72, Start: 0, Dur: 2000, Voice: 1},
		{Pitch: 48, Start: 0, Dur: 2000, Voice: 4},
	}
	out, n := CollapseFinalCadence(in)
	if n != 0 || !note.Equal(out, in) {
		t.Errorf("two-voice half notes collapsed: %v", out)
	}
}

func TestApply(t *testing.T) {
	in := chords([]int64{1000, 1000, 2000}, gMajor, gMajor, cMajor)
	out, r := Apply(in)
	if !r.Pickup || r.Collapsed != 1 {
		t.Fatalf("report = %+v", r)
	}
	if note.First(out) != PickupDelay {
		t.Errorf("first onset = %d", note.First(out))
	}
	if got := out[0].Pitch; got != gMajor[0]+r.Shift {
		t.Errorf("top voice = %d, want %d", got, gMajor[0]+r.Shift)
	}
}
