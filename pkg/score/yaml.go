package score

import (
	"encoding/json"
	"fmt"
	"io"

	goyaml "github.com/goccy/go-yaml"
	"gopkg.in/yaml.v3"

	"github.com/DougThompson1976/i-love-emily/pkg/corpus"
	"github.com/DougThompson1976/i-love-emily/pkg/note"
)

type document struct {
	Name  string        `yaml:"name" json:"name"`
	Notes note.Timeline `yaml:"notes" json:"notes"`
}

// DecodeYAML reads a note-list document. JSON documents are accepted too.
// name overrides the document's own name unless it is empty.
func DecodeYAML(r io.Reader, name string) (corpus.Piece, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return corpus.Piece{}, fmt.Errorf("score: parse %s: %w", name, err)
	}
	if name == "" {
		name = doc.Name
	}
	for i, n := range doc.Notes {
		if n.Dur <= 0 || n.Start < 0 {
			return corpus.Piece{}, fmt.Errorf("score: %s: note %d %v has bad timing", name, i, n)
		}
	}
	return corpus.Piece{Name: name, Notes: note.Sort(doc.Notes)}, nil
}

// EncodeYAML writes t as a note-list document.
func EncodeYAML(w io.Writer, name string, t note.Timeline) error {
	data, err := goyaml.Marshal(document{Name: name, Notes: t})
	if err != nil {
		return fmt.Errorf("score: encode %s: %w", name, err)
	}
	_, err = w.Write(data)
	return err
}

// EncodeJSON writes t as a JSON note-list document.
func EncodeJSON(w io.Writer, name string, t note.Timeline) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(document{Name: name, Notes: t})
}
