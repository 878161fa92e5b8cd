package compose

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/DougThompson1976/i-love-emily/pkg/cadence"
	"github.com/DougThompson1976/i-love-emily/pkg/corpus"
	"github.com/DougThompson1976/i-love-emily/pkg/finish"
	"github.com/DougThompson1976/i-love-emily/pkg/note"
)

// Options configures Generate.
type Options struct {
	Config   Config
	Strategy Strategy
	Logger   *slog.Logger
}

// Report summarizes one Generate run.
type Report struct {
	Run      string           `json:"run" yaml:"run"`
	Seed     uint64           `json:"seed" yaml:"seed"`
	Attempts int              `json:"attempts" yaml:"attempts"`
	Chain    []string         `json:"chain" yaml:"chain"`
	Minor    bool             `json:"minor" yaml:"minor"`
	Phrases  []cadence.Phrase `json:"phrases,omitempty" yaml:"phrases,omitempty"`
	Finish   finish.Report    `json:"finish" yaml:"finish"`
}

// Generate composes a finished piece from db. The notes depend only on seed,
// db and opts.Config; the same inputs always give the same piece.
func Generate(ctx context.Context, db *corpus.Database, seed uint64, opts Options) (note.Timeline, *Report, error) {
	run := uuid.NewString()
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("run", run, "seed", seed)

	eng := &Engine{Strategy: opts.Strategy, Config: opts.Config, Logger: log}
	res, err := eng.Compose(ctx, db, NewSource(seed))
	if err != nil {
		return nil, nil, err
	}

	t, phrases := cadence.Resolve(res.Notes)
	t, fin := finish.Apply(t)

	resolved := 0
	for _, p := range phrases {
		if p.Resolved {
			resolved++
		}
	}
	log.Info("compose: finished", "notes", len(t), "phrases", len(phrases), "resolved", resolved,
		"pickup", fin.Pickup, "shift", fin.Shift)

	return t, &Report{
		Run:      run,
		Seed:     seed,
		Attempts: res.Attempts,
		Chain:    res.Chain.IDs,
		Minor:    res.Chain.Minor,
		Phrases:  phrases,
		Finish:   fin,
	}, nil
}
