package compose

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/DougThompson1976/i-love-emily/pkg/beat"
	"github.com/DougThompson1976/i-love-emily/pkg/corpus"
	"github.com/DougThompson1976/i-love-emily/pkg/note"
)

// Rejection reasons. An attempt that fails with one of these is discarded
// and the engine starts over from a fresh opening.
var (
	ErrNoOpening       = errors.New("compose: no valid opening")
	ErrDeadEnd         = errors.New("compose: dead end")
	ErrTooShort        = errors.New("compose: piece too short")
	ErrTooLong         = errors.New("compose: piece too long")
	ErrNoCadenceWait   = errors.New("compose: no room for a cadence")
	ErrParallelOpening = errors.New("compose: parallel opening motion")

	// ErrAttemptsExhausted is matched by the *ExhaustedError Compose returns
	// when MaxAttempts attempts were all rejected.
	ErrAttemptsExhausted = errors.New("compose: attempts exhausted")
)

var reasons = []error{
	ErrNoOpening, ErrDeadEnd, ErrTooShort, ErrTooLong, ErrNoCadenceWait, ErrParallelOpening,
}

// ExhaustedError reports a composition that ran out of attempts.
type ExhaustedError struct {
	Attempts   int
	Rejections map[error]int // per reason
	Last       error
}

func (e *ExhaustedError) Error() string {
	var parts []string
	for _, r := range reasons {
		if n := e.Rejections[r]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", strings.TrimPrefix(r.Error(), "compose: "), n))
		}
	}
	return fmt.Sprintf("compose: attempts exhausted after %d attempts (%s): %v",
		e.Attempts, strings.Join(parts, ", "), e.Last)
}

func (e *ExhaustedError) Unwrap() []error {
	return []error{ErrAttemptsExhausted, e.Last}
}

// Config bounds a composition. Zero fields take the defaults.
type Config struct {
	MaxAttempts int   `yaml:"max_attempts,omitempty" json:"max_attempts,omitempty"`
	MinSteps    int   `yaml:"min_steps,omitempty" json:"min_steps,omitempty"`
	MinLength   int64 `yaml:"min_length,omitempty" json:"min_length,omitempty"`
	MaxLength   int64 `yaml:"max_length,omitempty" json:"max_length,omitempty"`
	CadenceWait int64 `yaml:"cadence_wait,omitempty" json:"cadence_wait,omitempty"`
}

// DefaultConfig returns the standard bounds.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 10000,
		MinSteps:    36,
		MinLength:   15 * note.Unit,
		MaxLength:   200 * note.Unit,
		CadenceWait: 4 * note.Unit,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = d.MaxAttempts
	}
	if c.MinSteps <= 0 {
		c.MinSteps = d.MinSteps
	}
	if c.MinLength <= 0 {
		c.MinLength = d.MinLength
	}
	if c.MaxLength <= 0 {
		c.MaxLength = d.MaxLength
	}
	if c.CadenceWait <= 0 {
		c.CadenceWait = d.CadenceWait
	}
	return c
}

// Result is an accepted composition.
type Result struct {
	Chain    Chain
	Notes    note.Timeline
	Attempts int
}

// Engine runs whole attempts until one passes validation.
type Engine struct {
	// Strategy builds each candidate chain. Nil means a Stitcher
	// configured from Config.
	Strategy Strategy
	Config   Config
	// Logger receives per-attempt diagnostics. Nil means slog.Default().
	Logger *slog.Logger
}

// Compose draws attempts from src until one is accepted. It stops early when
// ctx is done and fails with an *ExhaustedError after Config.MaxAttempts
// rejected attempts.
func (e *Engine) Compose(ctx context.Context, db *corpus.Database, src Source) (*Result, error) {
	cfg := e.Config.withDefaults()
	log := e.Logger
	if log == nil {
		log = slog.Default()
	}
	strategy := e.Strategy
	if strategy == nil {
		strategy = &Stitcher{MinSteps: cfg.MinSteps, MaxLength: cfg.MaxLength}
	}

	rejections := make(map[error]int)
	var last error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("compose: stopped after %d attempts: %w", attempt-1, err)
		}
		chain, err := strategy.Chain(db, src)
		var t note.Timeline
		if err == nil {
			t, err = Render(db, chain.IDs)
		}
		if err == nil {
			err = cfg.Validate(t)
		}
		if err == nil {
			log.Info("compose: accepted", "attempt", attempt, "beats", len(chain.IDs), "end", note.Last(t))
			return &Result{Chain: chain, Notes: t, Attempts: attempt}, nil
		}
		i := slices.IndexFunc(reasons, func(r error) bool { return errors.Is(err, r) })
		if i < 0 {
			return nil, err
		}
		rejections[reasons[i]]++
		last = err
		log.Debug("compose: attempt rejected", "attempt", attempt, "reason", err)
	}
	log.Warn("compose: attempts exhausted", "attempts", cfg.MaxAttempts, "last", last)
	return nil, &ExhaustedError{Attempts: cfg.MaxAttempts, Rejections: rejections, Last: last}
}

// Render concatenates the beats of chain, re-zeroing each one and placing it
// right after the beats before it.
func Render(db *corpus.Database, chain []string) (note.Timeline, error) {
	var (
		out note.Timeline
		at  int64
	)
	for _, id := range chain {
		rec, err := db.Record(id)
		if err != nil {
			return nil, err
		}
		out = append(out, note.Shift(note.Normalize(rec.Notes), at)...)
		at += note.Duration(rec.Notes)
	}
	return out, nil
}

// Validate applies the whole-piece checks to a rendered chain.
func (c Config) Validate(t note.Timeline) error {
	c = c.withDefaults()
	end := note.Last(t)
	switch {
	case end < c.MinLength:
		return fmt.Errorf("%w: ends at %d", ErrTooShort, end)
	case end > c.MaxLength:
		return fmt.Errorf("%w: ends at %d", ErrTooLong, end)
	case !waitsForCadence(t, c.CadenceWait):
		return ErrNoCadenceWait
	case parallelOpening(t):
		return ErrParallelOpening
	}
	return nil
}

// waitsForCadence reports whether some note is followed, at least wait units
// later, by the next note held longer than a unit.
func waitsForCadence(t note.Timeline, wait int64) bool {
	nextLong := int64(-1)
	for i := len(t) - 1; i >= 0; i-- {
		if nextLong >= 0 && nextLong-t[i].Start >= wait {
			return true
		}
		if t[i].Dur > note.Unit {
			nextLong = t[i].Start
		}
	}
	return false
}

// parallelOpening reports whether the first two beats are full four-note
// chords whose voices all move the same way. Unison counts as rising.
func parallelOpening(t note.Timeline) bool {
	var onsets []note.Timeline
	for b := range beat.Collect(t) {
		onsets = append(onsets, note.Onset(b))
		if len(onsets) == 2 {
			break
		}
	}
	if len(onsets) < 2 || len(onsets[0]) != 4 || len(onsets[1]) != 4 {
		return false
	}
	up, down := 0, 0
	for i := range 4 {
		if onsets[1][i].Pitch-onsets[0][i].Pitch >= 0 {
			up++
		} else {
			down++
		}
	}
	return up == 4 || down == 4
}
