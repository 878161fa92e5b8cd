package corpus

import (
	"log/slog"

	"github.com/DougThompson1976/i-love-emily/pkg/beat"
	"github.com/DougThompson1976/i-love-emily/pkg/note"
)

// chordPositions is the number of onset positions voice-leading observations
// are drawn from.
const chordPositions = 4

// Builder indexes pieces into a Database.
type Builder struct {
	// Logger receives skip notices. Nil means slog.Default().
	Logger *slog.Logger

	// Quantize chops every note into single-unit pieces before segmenting,
	// so each beat spans one unit. Strict drops the sub-unit tails that
	// quantizing would otherwise keep as short notes.
	Quantize bool
	Strict   bool
}

// Build indexes pieces with the default Builder.
func Build(pieces []Piece) *Database {
	return (&Builder{}).Build(pieces)
}

// Build indexes pieces in order. Pieces without notes are skipped. A beat
// whose identifier is already taken (two pieces with the same name) is
// skipped with a warning; records are never revised once inserted.
func (b *Builder) Build(pieces []Piece) *Database {
	log := b.logger()
	db := newDatabase()
	for _, p := range pieces {
		if len(p.Notes) == 0 {
			log.Debug("corpus: skipping empty piece", "piece", p.Name)
			continue
		}
		recs := b.records(p)
		added := 0
		for _, rec := range recs {
			if !db.insert(rec) {
				log.Warn("corpus: duplicate beat id, skipped", "id", rec.ID, "piece", p.Name)
				continue
			}
			added++
		}
		log.Debug("corpus: indexed piece", "piece", p.Name, "beats", added)
	}
	return db
}

func (b *Builder) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return slog.Default()
}

// records segments one piece and pairs every beat with its successor.
func (b *Builder) records(p Piece) []*BeatRecord {
	t := note.Normalize(note.Sort(p.Notes))
	if b.Quantize {
		t = beat.BreakIntoBeats(t, b.Strict)
	}
	beats := beat.Split(t)

	recs := make([]*BeatRecord, len(beats))
	for i, notes := range beats {
		start := note.Pitches(note.Onset(notes))
		var dest []int
		if i+1 < len(beats) {
			dest = note.Pitches(note.Onset(beats[i+1]))
		}
		recs[i] = &BeatRecord{
			ID:           BeatID(p.Name, i+1),
			Piece:        p.Name,
			Index:        i + 1,
			Notes:        notes,
			Start:        start,
			Dest:         dest,
			Observations: observe(p.Name, start, dest),
		}
	}
	return recs
}

// observe derives the voice-leading observations of one beat transition: for
// every pair of chord positions i < j among the first four present in both
// lists, the interval between them in the start chord and the motion of each.
func observe(piece string, start, dest []int) []Observation {
	n := min(len(start), len(dest), chordPositions)
	var obs []Observation
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			obs = append(obs, Observation{
				Piece:       piece,
				Upper:       i,
				Lower:       j,
				Interval:    note.ReduceInterval(start[j] - start[i]),
				UpperMotion: dest[i] - start[i],
				LowerMotion: dest[j] - start[j],
			})
		}
	}
	return obs
}
