// Package corpus turns a collection of source pieces into the beat database
// the composer draws from.
//
// Every piece is cut into beats (see package beat). Each beat becomes a
// BeatRecord named "<piece>-<n>" carrying its notes, the pitches sounding at
// its onset, and the onset pitches of the beat that follows it in the source.
// Beats are indexed in a Lexicon by their exact onset pitch list, so the
// successors of a beat are found by looking up its destination pitches.
//
// A Database is immutable once built and safe for concurrent readers.
package corpus

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/DougThompson1976/i-love-emily/pkg/note"
)

// Sentinel errors.
var (
	// ErrUnknownBeat is returned when an identifier is not in the database.
	ErrUnknownBeat = errors.New("corpus: unknown beat")

	// ErrNoDatabase is returned by Load when the store holds no database
	// under the given prefix.
	ErrNoDatabase = errors.New("corpus: no database")

	// ErrVersion is returned by Load when the stored format is not the one
	// this package writes.
	ErrVersion = errors.New("corpus: unsupported database version")
)

// Piece is one source work as handed over by the ingestion layer.
type Piece struct {
	Name  string
	Notes note.Timeline
}

// Observation records how two chord positions move from one beat to the
// next. Positions are 0-based indexes into the onset pitch lists, top voice
// first.
type Observation struct {
	Piece       string `msgpack:"piece" json:"piece" yaml:"piece"`
	Upper       int    `msgpack:"upper" json:"upper" yaml:"upper"`
	Lower       int    `msgpack:"lower" json:"lower" yaml:"lower"`
	Interval    int    `msgpack:"interval" json:"interval" yaml:"interval"` // lower minus upper, folded to [-12, 12]
	UpperMotion int    `msgpack:"upper_motion" json:"upper_motion" yaml:"upper_motion"`
	LowerMotion int    `msgpack:"lower_motion" json:"lower_motion" yaml:"lower_motion"`
}

// BeatRecord is everything the database knows about one beat.
type BeatRecord struct {
	ID           string        `msgpack:"id"`
	Piece        string        `msgpack:"piece"`
	Index        int           `msgpack:"index"` // 1-based position in the piece
	Notes        note.Timeline `msgpack:"notes"`
	Start        []int         `msgpack:"start"` // onset pitches of this beat
	Dest         []int         `msgpack:"dest"`  // onset pitches of the next beat; empty for the last
	Observations []Observation `msgpack:"observations"`
}

// Final reports whether the beat ends its source piece.
func (r *BeatRecord) Final() bool { return len(r.Dest) == 0 }

// Database is the indexed corpus.
type Database struct {
	ids     []string
	starts  []string
	obs     []Observation
	records map[string]*BeatRecord
	lexicon *Lexicon
}

func newDatabase() *Database {
	return &Database{
		records: make(map[string]*BeatRecord),
		lexicon: NewLexicon(),
	}
}

// insert adds rec unless its ID is taken. It reports whether rec was added.
func (db *Database) insert(rec *BeatRecord) bool {
	if _, dup := db.records[rec.ID]; dup {
		return false
	}
	db.records[rec.ID] = rec
	db.ids = append(db.ids, rec.ID)
	if rec.Index == 1 {
		db.starts = append(db.starts, rec.ID)
	}
	db.obs = append(db.obs, rec.Observations...)
	db.lexicon.Add(rec.Start, rec.ID)
	return true
}

// IDs returns every beat identifier in insertion order.
func (db *Database) IDs() []string { return db.ids }

// Starts returns the identifiers of beats that open a piece, in insertion
// order.
func (db *Database) Starts() []string { return db.starts }

// Observations returns the pooled voice-leading observations.
func (db *Database) Observations() []Observation { return db.obs }

// Lexicon returns the continuation index.
func (db *Database) Lexicon() *Lexicon { return db.lexicon }

// Len returns the number of beats.
func (db *Database) Len() int { return len(db.ids) }

// Record returns the record for id.
func (db *Database) Record(id string) (*BeatRecord, error) {
	rec, ok := db.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBeat, id)
	}
	return rec, nil
}

// BeatID formats the identifier of the index-th beat (1-based) of piece.
func BeatID(piece string, index int) string {
	return piece + "-" + strconv.Itoa(index)
}

// ParseBeatID splits an identifier produced by BeatID. It cuts at the last
// '-', so piece names may themselves contain dashes.
func ParseBeatID(id string) (piece string, index int, ok bool) {
	i := strings.LastIndexByte(id, '-')
	if i < 0 {
		return "", 0, false
	}
	n, err := strconv.Atoi(id[i+1:])
	if err != nil || n < 1 {
		return "", 0, false
	}
	return id[:i], n, true
}

// Stats summarizes a Database.
type Stats struct {
	Version      int `json:"version" yaml:"version"`
	Pieces       int `json:"pieces" yaml:"pieces"`
	Beats        int `json:"beats" yaml:"beats"`
	Openings     int `json:"openings" yaml:"openings"`
	Finals       int `json:"finals" yaml:"finals"`
	Chords       int `json:"chords" yaml:"chords"`
	Observations int `json:"observations" yaml:"observations"`
}

// Stats counts what db holds. Chords is the number of distinct starting
// chords in the lexicon.
func (db *Database) Stats() Stats {
	pieces := make(map[string]struct{})
	s := Stats{
		Version:      Version,
		Beats:        len(db.ids),
		Openings:     len(db.starts),
		Chords:       db.lexicon.Len(),
		Observations: len(db.obs),
	}
	for _, id := range db.ids {
		rec := db.records[id]
		pieces[rec.Piece] = struct{}{}
		if rec.Final() {
			s.Finals++
		}
	}
	s.Pieces = len(pieces)
	return s
}
