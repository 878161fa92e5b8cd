package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/DougThompson1976/i-love-emily/pkg/audio/preview"
	"github.com/DougThompson1976/i-love-emily/pkg/cli"
	"github.com/DougThompson1976/i-love-emily/pkg/score"
)

var (
	renderIn         string
	renderOut        string
	renderBPM        float64
	renderSampleRate int
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a piece to a WAV preview",
	Long: `Render a YAML, JSON or MIDI piece to a 16-bit stereo WAV file with a
simple additive synth voice per part.

Examples:
  emily render --in piece.yaml --out piece.wav
  emily render --in piece.mid --out piece.wav --bpm 60`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if renderIn == "" || renderOut == "" {
			return errors.New("both --in and --out are required")
		}
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		format, err := score.FormatOf(renderIn)
		if err != nil {
			return err
		}
		in, err := os.Open(renderIn)
		if err != nil {
			return err
		}
		defer in.Close()
		piece, err := score.Decode(in, format, score.Stem(renderIn))
		if err != nil {
			return err
		}

		out, err := os.Create(renderOut)
		if err != nil {
			return err
		}
		opts := preview.Options{
			SampleRate: renderSampleRate,
			BPM:        firstPositive(renderBPM, cfg.Preview.BPM),
		}
		if opts.SampleRate <= 0 {
			opts.SampleRate = cfg.Preview.SampleRate
		}
		if err := preview.WriteWAV(out, piece.Notes, opts); err != nil {
			out.Close()
			return fmt.Errorf("render %s: %w", renderIn, err)
		}
		info, err := out.Stat()
		if err != nil {
			out.Close()
			return err
		}
		if err := out.Close(); err != nil {
			return err
		}
		cli.Success(cmd.OutOrStdout(), "wrote %s (%s)", renderOut, cli.FormatBytes(info.Size()))
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVarP(&renderIn, "in", "i", "", "piece to render (.yaml, .json, .mid)")
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "WAV file to write")
	renderCmd.Flags().Float64Var(&renderBPM, "bpm", 0, "tempo in beats per minute (default 80)")
	renderCmd.Flags().IntVar(&renderSampleRate, "sample-rate", 0, "sample rate in Hz (default 44100)")

	rootCmd.AddCommand(renderCmd)
}
