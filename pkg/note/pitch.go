package note

import (
	"math/bits"
	"strconv"
	"strings"
)

// ReduceInterval folds an interval into [-12, 12], keeping its direction.
// Whole octaves stay at ±12 rather than collapsing to a unison.
func ReduceInterval(semitones int) int {
	for semitones > 12 {
		semitones -= 12
	}
	for semitones < -12 {
		semitones += 12
	}
	return semitones
}

// PitchClass returns p modulo 12 in [0, 12).
func PitchClass(p int) int {
	pc := p % 12
	if pc < 0 {
		pc += 12
	}
	return pc
}

// PitchClassSet is a set of pitch classes; bit i is set when class i is
// present.
type PitchClassSet uint16

// PitchClasses builds the set of pitch classes of the given pitches.
func PitchClasses(pitches ...int) PitchClassSet {
	var s PitchClassSet
	for _, p := range pitches {
		s |= 1 << PitchClass(p)
	}
	return s
}

// Contains reports whether pitch class pc is in s.
func (s PitchClassSet) Contains(pc int) bool {
	return s&(1<<PitchClass(pc)) != 0
}

// Len returns the number of pitch classes in s.
func (s PitchClassSet) Len() int {
	return bits.OnesCount16(uint16(s))
}

// Classes returns the members of s in ascending order.
func (s PitchClassSet) Classes() []int {
	var out []int
	for pc := 0; pc < 12; pc++ {
		if s.Contains(pc) {
			out = append(out, pc)
		}
	}
	return out
}

// SubsetOf reports whether every class in s is also in other.
func (s PitchClassSet) SubsetOf(other PitchClassSet) bool {
	return s&^other == 0
}

// Third-stack shapes accepted as triads, as (lower third, upper third).
var triadStacks = [][2]int{
	{3, 4}, // minor
	{4, 3}, // major
	{3, 3}, // diminished
	{4, 4}, // augmented
}

// IsTriad reports whether s holds exactly three classes that stack into a
// root-position minor, major, diminished or augmented triad in some rotation.
func (s PitchClassSet) IsTriad() bool {
	pcs := s.Classes()
	if len(pcs) != 3 {
		return false
	}
	for r := range pcs {
		root, third, fifth := pcs[r], pcs[(r+1)%3], pcs[(r+2)%3]
		lower := PitchClass(third - root)
		upper := PitchClass(fifth - third)
		for _, st := range triadStacks {
			if lower == st[0] && upper == st[1] {
				return true
			}
		}
	}
	return false
}

var pitchNames = [12]string{"C", "C#", "D", "Eb", "E", "F", "F#", "G", "Ab", "A", "Bb", "B"}

func (s PitchClassSet) String() string {
	names := make([]string, 0, s.Len())
	for _, pc := range s.Classes() {
		names = append(names, pitchNames[pc])
	}
	return "{" + strings.Join(names, ",") + "}"
}

// Name renders a pitch in scientific notation, e.g. 60 -> "C4".
func Name(p int) string {
	if p == Rest {
		return "rest"
	}
	return pitchNames[PitchClass(p)] + strconv.Itoa(p/12-1)
}
