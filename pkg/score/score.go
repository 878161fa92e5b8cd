// Package score reads corpus files into pieces and writes composed pieces
// back out. Note lists are YAML or JSON documents of the form
//
//	name: bwv269
//	notes:
//	  - {pitch: 60, start: 0, dur: 1000, voice: 1}
//
// with times in note.Unit fractions of a beat. Standard MIDI Files are
// converted through their metric tick resolution, one voice per channel, or
// per track when every note shares a channel.
package score

import (
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/DougThompson1976/i-love-emily/pkg/corpus"
	"github.com/DougThompson1976/i-love-emily/pkg/note"
)

// ErrUnsupportedFormat is returned for file extensions this package does not
// handle.
var ErrUnsupportedFormat = errors.New("score: unsupported format")

// Format is a file format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatMIDI Format = "midi"
)

// FormatOf picks the format from a file name's extension.
func FormatOf(name string) (Format, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".mid", ".midi":
		return FormatMIDI, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// Stem returns the base name of p without its extension.
func Stem(p string) string {
	base := path.Base(p)
	return strings.TrimSuffix(base, path.Ext(base))
}

// Decode reads a piece in format f.
func Decode(r io.Reader, f Format, name string) (corpus.Piece, error) {
	switch f {
	case FormatYAML, FormatJSON:
		return DecodeYAML(r, name)
	case FormatMIDI:
		return DecodeMIDI(r, name)
	}
	return corpus.Piece{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
}

// Encode writes t in format f. bpm is used by MIDI only.
func Encode(w io.Writer, f Format, name string, t note.Timeline, bpm float64) error {
	switch f {
	case FormatYAML:
		return EncodeYAML(w, name, t)
	case FormatJSON:
		return EncodeJSON(w, name, t)
	case FormatMIDI:
		return EncodeMIDI(w, t, bpm)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
}
