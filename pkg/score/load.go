package score

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/DougThompson1976/i-love-emily/pkg/corpus"
	"github.com/DougThompson1976/i-love-emily/pkg/storage"
)

// LoadCorpus decodes every supported file under dir, in path order. Each
// piece is named after its file's stem. Files of other types are skipped.
func LoadCorpus(ctx context.Context, fs storage.FileStore, dir string) ([]corpus.Piece, error) {
	paths, err := fs.List(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("score: list corpus: %w", err)
	}
	var pieces []corpus.Piece
	for _, p := range paths {
		f, err := FormatOf(p)
		if errors.Is(err, ErrUnsupportedFormat) {
			slog.Debug("score: skipping file", "path", p)
			continue
		}
		piece, err := loadOne(ctx, fs, p, f)
		if err != nil {
			return nil, err
		}
		pieces = append(pieces, piece)
	}
	return pieces, nil
}

func loadOne(ctx context.Context, fs storage.FileStore, p string, f Format) (corpus.Piece, error) {
	r, err := fs.Read(ctx, p)
	if err != nil {
		return corpus.Piece{}, fmt.Errorf("score: open %s: %w", p, err)
	}
	defer r.Close()
	return Decode(r, f, Stem(p))
}
