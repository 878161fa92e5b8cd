package corpus

import (
	"slices"

	"github.com/DougThompson1976/i-love-emily/pkg/trie"
)

// Lexicon maps an exact, ordered onset pitch list to the beats that begin
// with it. Two beats connect only when the destination list of one equals the
// start list of the other element for element; the same pitches in another
// voice order are a different entry.
//
// Identifiers under a key keep the order they were added in, which makes
// random choices among them reproducible for a given seed.
type Lexicon struct {
	t *trie.Trie[int, []string]
}

// NewLexicon returns an empty lexicon.
func NewLexicon() *Lexicon {
	return &Lexicon{t: trie.New[int, []string]()}
}

// Add records that beat id starts with pitches. Adding the same pair twice
// is a no-op.
func (l *Lexicon) Add(pitches []int, id string) {
	_ = l.t.Set(pitches, func(ids *[]string, _ bool) error {
		if !slices.Contains(*ids, id) {
			*ids = append(*ids, id)
		}
		return nil
	})
}

// Lookup returns the beats starting with exactly pitches. The returned slice
// must not be modified.
func (l *Lexicon) Lookup(pitches []int) ([]string, bool) {
	ids, ok := l.t.GetValue(pitches)
	if !ok || len(ids) == 0 {
		return nil, false
	}
	return ids, true
}

// Len returns the number of distinct keys.
func (l *Lexicon) Len() int { return l.t.Len() }
