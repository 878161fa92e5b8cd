package compose

import (
	"fmt"
	"slices"

	"github.com/DougThompson1976/i-love-emily/pkg/corpus"
	"github.com/DougThompson1976/i-love-emily/pkg/note"
)

// Chain is a sequence of beat identifiers produced by a Strategy.
type Chain struct {
	IDs   []string
	Minor bool
}

// Strategy builds one candidate chain of beats. Implementations must draw
// every random choice from src so a chain is reproducible from its seed.
type Strategy interface {
	Chain(db *corpus.Database, src Source) (Chain, error)
}

// openings are the pitch-class sets an opening chord may be drawn from.
var openings = []note.PitchClassSet{
	note.PitchClasses(0, 4, 8),
	note.PitchClasses(0, 4, 7),
	note.PitchClasses(0, 5, 8),
	note.PitchClasses(2, 7, 11),
}

var (
	minorTriad = note.PitchClasses(0, 3, 7)
	majorTonic = note.PitchClasses(60, 64, 67)
	minorTonic = note.PitchClasses(60, 63, 67)
)

// Stitcher chains beats by following the lexicon: a beat may follow another
// when its onset pitches equal the other's destination pitches exactly.
type Stitcher struct {
	// MinSteps is the number of steps to take before the chain may stop on
	// a tonic chord.
	MinSteps int

	// MaxLength abandons the chain once the beats taken so far span more
	// than this many units. Zero means no limit.
	MaxLength int64

	// NearDuplicate reports whether candidate merely continues current in
	// its source piece. Such candidates are skipped whenever there is more
	// than one option. Nil means NextInPiece.
	NearDuplicate func(current, candidate string) bool
}

// NextInPiece reports whether candidate is the beat right after current in
// the same piece.
func NextInPiece(current, candidate string) bool {
	cp, ci, ok := corpus.ParseBeatID(current)
	if !ok {
		return false
	}
	np, ni, ok := corpus.ParseBeatID(candidate)
	return ok && np == cp && ni == ci+1
}

// Chain picks an opening beat and follows continuations until the stop
// condition holds.
func (s *Stitcher) Chain(db *corpus.Database, src Source) (Chain, error) {
	starts := db.Starts()
	if len(starts) == 0 {
		return Chain{}, ErrNoOpening
	}
	first, err := db.Record(Choose(src, starts))
	if err != nil {
		return Chain{}, err
	}
	onset := note.Onset(first.Notes)
	if !goodOpening(onset) {
		return Chain{}, fmt.Errorf("%w: %s", ErrNoOpening, first.ID)
	}
	minor := note.PitchClasses(note.Pitches(onset)...).SubsetOf(minorTriad)
	tonic := majorTonic
	if minor {
		tonic = minorTonic
	}

	near := s.NearDuplicate
	if near == nil {
		near = NextInPiece
	}

	ids := []string{first.ID}
	cur := first
	top := voiceTime(cur.Notes, 1)
	span := note.Duration(cur.Notes)
	for step := 0; ; step++ {
		if cur.Final() {
			return Chain{}, fmt.Errorf("%w: %s ends its piece", ErrDeadEnd, cur.ID)
		}
		if step > s.MinSteps && top > note.Unit && endsOn(cur.Notes, tonic) {
			return Chain{IDs: ids, Minor: minor}, nil
		}
		if s.MaxLength > 0 && span > s.MaxLength {
			return Chain{}, fmt.Errorf("%w: chain passed %d units", ErrTooLong, s.MaxLength)
		}

		cands, ok := db.Lexicon().Lookup(cur.Dest)
		if !ok {
			return Chain{}, fmt.Errorf("%w: no beat starts with %v", ErrDeadEnd, cur.Dest)
		}
		next := cands[0]
		if len(cands) > 1 {
			pool := slices.DeleteFunc(slices.Clone(cands), func(id string) bool {
				return id == cur.ID || near(cur.ID, id)
			})
			if len(pool) == 0 {
				return Chain{}, fmt.Errorf("%w: every continuation of %s excluded", ErrDeadEnd, cur.ID)
			}
			next = Choose(src, pool)
		}

		if cur, err = db.Record(next); err != nil {
			return Chain{}, err
		}
		ids = append(ids, next)
		top += voiceTime(cur.Notes, 1)
		span += note.Duration(cur.Notes)
	}
}

// goodOpening reports whether an onset chord may open a piece: four short
// notes drawn from one of the opening pitch-class sets.
func goodOpening(onset note.Timeline) bool {
	if len(onset) != 4 {
		return false
	}
	for _, n := range onset {
		if n.Dur > note.Unit {
			return false
		}
	}
	pcs := note.PitchClasses(note.Pitches(onset)...)
	return slices.ContainsFunc(openings, pcs.SubsetOf)
}

// endsOn reports whether the last chord of a beat is a full four-voice
// chord on a unit boundary whose pitch classes lie within tonic.
func endsOn(notes note.Timeline, tonic note.PitchClassSet) bool {
	if len(notes) == 0 {
		return false
	}
	last := notes[len(notes)-1].Start
	for _, n := range notes {
		last = max(last, n.Start)
	}
	if (last-note.First(notes))%note.Unit != 0 {
		return false
	}
	var chord []int
	for _, n := range notes {
		if n.Start == last {
			chord = append(chord, n.Pitch)
		}
	}
	return len(chord) == 4 && note.PitchClasses(chord...).SubsetOf(tonic)
}

func voiceTime(notes note.Timeline, v int) int64 {
	var d int64
	for _, n := range note.ByVoice(notes, v) {
		d += n.Dur
	}
	return d
}
