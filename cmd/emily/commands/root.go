package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/DougThompson1976/i-love-emily/cmd/emily/internal/config"
)

var (
	verbose bool

	globalConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "emily",
	Short: "Compose four-voice chorales from a corpus",
	Long: `emily - recombinant chorale composition.

A corpus of four-voice pieces (YAML, JSON or MIDI files, on disk or in S3)
is cut into beats and indexed by the chord each beat starts on. New pieces
are stitched together from beats whose chords connect, then checked,
cadenced and tidied.

Configuration is stored in the OS config directory:
  macOS:   ~/Library/Application Support/emily/
  Linux:   ~/.config/emily/
  Windows: %AppData%/emily/
or in $EMILY_CONFIG_DIR when set.

Examples:
  emily build --corpus ./chorales
  emily compose --seed 42 --out piece.mid
  emily render --in piece.yaml --out piece.wav`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// GetConfig returns the configuration, loading it on first use.
func GetConfig() (*config.Config, error) {
	if globalConfig == nil {
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("config not available: %w", err)
		}
		globalConfig = cfg
	}
	return globalConfig, nil
}
