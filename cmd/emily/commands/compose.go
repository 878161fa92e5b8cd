package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/DougThompson1976/i-love-emily/pkg/cli"
	"github.com/DougThompson1976/i-love-emily/pkg/compose"
	"github.com/DougThompson1976/i-love-emily/pkg/note"
	"github.com/DougThompson1976/i-love-emily/pkg/score"
)

var (
	composeDB          string
	composeSeed        uint64
	composeOut         string
	composeReport      string
	composeMaxAttempts int
	composeBPM         float64
	composeTimeout     time.Duration
)

var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "Compose a new piece",
	Long: `Compose a piece from the database built by 'emily build'.

The same seed and database always give the same piece. Without --seed a
seed is picked from the clock and printed so the piece can be reproduced.
Without --out the piece is written to stdout as YAML.

Examples:
  emily compose --seed 42 --out piece.mid
  emily compose --seed 42 --out piece.yaml --report report.json
  emily compose --max-attempts 50000 --timeout 30s`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		seed := composeSeed
		if !cmd.Flags().Changed("seed") {
			seed = uint64(time.Now().UnixNano())
		}
		format := score.FormatYAML
		if composeOut != "" {
			if format, err = score.FormatOf(composeOut); err != nil {
				return err
			}
		}
		ccfg := cfg.Compose
		if composeMaxAttempts > 0 {
			ccfg.MaxAttempts = composeMaxAttempts
		}

		ctx := cmd.Context()
		if composeTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, composeTimeout)
			defer cancel()
		}

		db, err := loadDatabase(ctx, firstOf(composeDB, cfg.DatabaseDir()))
		if err != nil {
			return err
		}
		began := time.Now()
		piece, report, err := compose.Generate(ctx, db, seed, compose.Options{Config: ccfg, Logger: slog.Default()})
		var exhausted *compose.ExhaustedError
		if errors.As(err, &exhausted) {
			return fmt.Errorf("no piece after %d attempts with seed %d; try another seed or a larger --max-attempts: %w",
				exhausted.Attempts, seed, err)
		}
		if err != nil {
			return err
		}

		bpm := firstPositive(composeBPM, cfg.Preview.BPM)
		name := "emily-" + strconv.FormatUint(seed, 10)
		var buf bytes.Buffer
		if err := score.Encode(&buf, format, name, piece, bpm); err != nil {
			return err
		}

		summary := cmd.OutOrStdout()
		if composeOut == "" {
			if _, err := cmd.OutOrStdout().Write(buf.Bytes()); err != nil {
				return err
			}
			summary = cmd.ErrOrStderr()
		} else if err := os.WriteFile(composeOut, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("write %s: %w", composeOut, err)
		}

		if composeReport != "" {
			rf := cli.FormatYAML
			if strings.HasSuffix(strings.ToLower(composeReport), ".json") {
				rf = cli.FormatJSON
			}
			if err := cli.Output(report, cli.OutputOptions{Format: rf, File: composeReport}); err != nil {
				return err
			}
		}

		fmt.Fprintln(summary, summaryPanel(report, piece, time.Since(began), composeOut).Render(cli.NewStyles(cli.DefaultTheme)))
		return nil
	},
}

func summaryPanel(r *compose.Report, piece note.Timeline, took time.Duration, out string) cli.Panel {
	mode := "major"
	if r.Minor {
		mode = "minor"
	}
	unresolved := 0
	for _, p := range r.Phrases {
		if !p.Resolved {
			unresolved++
		}
	}
	rows := []cli.Row{
		{Label: "seed", Value: strconv.FormatUint(r.Seed, 10)},
		{Label: "attempts", Value: strconv.Itoa(r.Attempts)},
		{Label: "beats", Value: strconv.Itoa(len(r.Chain))},
		{Label: "length", Value: cli.FormatBeats(note.Duration(piece)) + " beats"},
		{Label: "mode", Value: mode},
		{Label: "transposed", Value: strconv.Itoa(r.Finish.Shift)},
		{Label: "phrases", Value: fmt.Sprintf("%d long, %d unresolved", len(r.Phrases), unresolved), Warn: unresolved > 0},
	}
	if r.Finish.Pickup {
		rows = append(rows, cli.Row{Label: "pickup", Value: "added"})
	}
	footer := "took " + cli.FormatDuration(took) + ", run " + r.Run
	if out != "" {
		footer = "wrote " + out + ", " + footer
	}
	return cli.Panel{Title: "compose", Rows: rows, Footer: footer}
}

func firstPositive(vals ...float64) float64 {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return 0
}

func init() {
	composeCmd.Flags().StringVar(&composeDB, "db", "", "database directory (default from config)")
	composeCmd.Flags().Uint64Var(&composeSeed, "seed", 0, "random seed (default from the clock)")
	composeCmd.Flags().StringVarP(&composeOut, "out", "o", "", "output file: .mid, .yaml or .json (default YAML on stdout)")
	composeCmd.Flags().StringVar(&composeReport, "report", "", "write the run report to a .yaml or .json file")
	composeCmd.Flags().IntVar(&composeMaxAttempts, "max-attempts", 0, "attempt budget (default from config)")
	composeCmd.Flags().Float64Var(&composeBPM, "bpm", 0, "tempo written to MIDI output")
	composeCmd.Flags().DurationVar(&composeTimeout, "timeout", 0, "give up after this long")

	rootCmd.AddCommand(composeCmd)
}
