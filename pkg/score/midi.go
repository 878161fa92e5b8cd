package score

import (
	"cmp"
	"fmt"
	"io"
	"maps"
	"slices"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/DougThompson1976/i-love-emily/pkg/corpus"
	"github.com/DougThompson1976/i-love-emily/pkg/note"
)

// TicksPerQuarter is the resolution EncodeMIDI writes.
const TicksPerQuarter = 480

const velocity = 80

// Note edges this close to a unit boundary are moved onto it, so slightly
// early note-offs still close a beat.
const snapTolerance = note.Unit / 32

type heard struct {
	track, channel int
	key            uint8
	start, end     int64 // ticks
}

// DecodeMIDI reads a Standard MIDI File. Notes become voice channel+1,
// unless several tracks share a single channel, in which case voices follow
// the order of the tracks that hold notes. Silence inside a voice becomes
// note.Rest notes, as it would be written in a YAML or JSON score.
func DecodeMIDI(r io.Reader, name string) (corpus.Piece, error) {
	s, err := smf.ReadFrom(r)
	if err != nil {
		return corpus.Piece{}, fmt.Errorf("score: read midi %s: %w", name, err)
	}
	tpq := int64(TicksPerQuarter)
	if mt, ok := s.TimeFormat.(smf.MetricTicks); ok && mt > 0 {
		tpq = int64(mt)
	}

	var notes []heard
	for ti, track := range s.Tracks {
		var (
			tick int64
			open = make(map[[2]uint8][]int64)
		)
		for _, ev := range track {
			tick += int64(ev.Delta)
			var ch, key, vel uint8
			switch {
			case ev.Message.GetNoteOn(&ch, &key, &vel) && vel > 0:
				k := [2]uint8{ch, key}
				open[k] = append(open[k], tick)
			case ev.Message.GetNoteOn(&ch, &key, &vel), ev.Message.GetNoteOff(&ch, &key, &vel):
				k := [2]uint8{ch, key}
				if starts := open[k]; len(starts) > 0 {
					notes = append(notes, heard{ti, int(ch), key, starts[0], tick})
					open[k] = starts[1:]
				}
			}
		}
		// Notes still sounding at the end of the track stop there.
		keys := slices.SortedFunc(maps.Keys(open), func(a, b [2]uint8) int {
			return cmp.Or(cmp.Compare(a[0], b[0]), cmp.Compare(a[1], b[1]))
		})
		for _, k := range keys {
			for _, start := range open[k] {
				notes = append(notes, heard{ti, int(k[0]), k[1], start, tick})
			}
		}
	}

	tracks := distinct(notes, func(h heard) int { return h.track })
	byChannel := len(tracks) <= 1 || len(distinct(notes, func(h heard) int { return h.channel })) > 1

	var t note.Timeline
	for _, h := range notes {
		voice := h.channel + 1
		if !byChannel {
			voice = slices.Index(tracks, h.track) + 1
		}
		start := snap(h.start * note.Unit / tpq)
		dur := snap(h.end*note.Unit/tpq) - start
		if dur <= 0 {
			continue
		}
		t = append(t, note.Note{Pitch: int(h.key), Start: start, Dur: dur, Voice: voice})
	}
	return corpus.Piece{Name: name, Notes: fillRests(note.Sort(t))}, nil
}

func snap(u int64) int64 {
	r := (u + note.Unit/2) / note.Unit * note.Unit
	if d := u - r; d >= -snapTolerance && d <= snapTolerance {
		return r
	}
	return u
}

// fillRests adds a rest for every gap between a voice's first note and its
// last. t must be sorted.
func fillRests(t note.Timeline) note.Timeline {
	var rests note.Timeline
	for _, v := range note.Voices(t) {
		notes := note.ByVoice(t, v)
		end := notes[0].End()
		for _, n := range notes[1:] {
			if n.Start > end {
				rests = append(rests, note.Note{Pitch: note.Rest, Start: end, Dur: n.Start - end, Voice: v})
			}
			end = max(end, n.End())
		}
	}
	if len(rests) == 0 {
		return t
	}
	return note.Sort(append(t, rests...))
}

func distinct(notes []heard, f func(heard) int) []int {
	var out []int
	for _, h := range notes {
		out = append(out, f(h))
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// EncodeMIDI writes t as a format 1 Standard MIDI File: a conductor track
// with the meter and tempo, then one track per voice on channel voice-1.
// Rests are left out.
func EncodeMIDI(w io.Writer, t note.Timeline, bpm float64) error {
	if bpm <= 0 {
		bpm = 120
	}
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(TicksPerQuarter)

	var conductor smf.Track
	conductor.Add(0, smf.MetaMeter(4, 4))
	conductor.Add(0, smf.MetaTempo(bpm))
	conductor.Close(0)
	if err := s.Add(conductor); err != nil {
		return fmt.Errorf("score: midi conductor: %w", err)
	}

	for _, v := range note.Voices(t) {
		if v < 1 || v > 16 {
			return fmt.Errorf("score: voice %d has no midi channel", v)
		}
		track, err := voiceTrack(note.ByVoice(t, v), uint8(v-1))
		if err != nil {
			return err
		}
		if err := s.Add(track); err != nil {
			return fmt.Errorf("score: midi voice %d: %w", v, err)
		}
	}
	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("score: write midi: %w", err)
	}
	return nil
}

type event struct {
	tick uint32
	on   bool
	key  uint8
}

func voiceTrack(notes note.Timeline, ch uint8) (smf.Track, error) {
	var events []event
	for _, n := range notes {
		if n.Pitch == note.Rest {
			continue
		}
		if n.Pitch < 0 || n.Pitch > 127 || n.Start < 0 {
			return nil, fmt.Errorf("score: note %v cannot be written to midi", n)
		}
		events = append(events,
			event{toTicks(n.Start), true, uint8(n.Pitch)},
			event{toTicks(n.End()), false, uint8(n.Pitch)},
		)
	}
	// Offs before ons at the same tick so repeated notes re-strike.
	slices.SortStableFunc(events, func(a, b event) int {
		if c := cmp.Compare(a.tick, b.tick); c != 0 {
			return c
		}
		if a.on == b.on {
			return 0
		}
		if a.on {
			return 1
		}
		return -1
	})

	var (
		track smf.Track
		last  uint32
	)
	track.Add(0, smf.MetaTrackSequenceName(fmt.Sprintf("voice %d", ch+1)))
	for _, e := range events {
		msg := midi.NoteOff(ch, e.key)
		if e.on {
			msg = midi.NoteOn(ch, e.key, velocity)
		}
		track.Add(e.tick-last, msg)
		last = e.tick
	}
	track.Close(0)
	return track, nil
}

func toTicks(units int64) uint32 {
	return uint32(units * TicksPerQuarter / note.Unit)
}
