package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/DougThompson1976/i-love-emily/pkg/cli"
	"github.com/DougThompson1976/i-love-emily/pkg/corpus"
	"github.com/DougThompson1976/i-love-emily/pkg/score"
)

var (
	buildCorpus   string
	buildDB       string
	buildQuantize bool
	buildStrict   bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Ingest a corpus into a database",
	Long: `Read every .yaml, .yml, .json, .mid and .midi file under the corpus
location, cut the pieces into beats and save the index to the database.
An existing database in the same directory is replaced.

Examples:
  emily build --corpus ./chorales
  emily build --corpus s3://scores/bach --db ./bach.db --quantize`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		location := firstOf(buildCorpus, cfg.Corpus)
		if location == "" {
			return errors.New("no corpus location; pass --corpus or run 'emily config set corpus DIR'")
		}
		dir := firstOf(buildDB, cfg.DatabaseDir())

		ctx := cmd.Context()
		began := time.Now()
		fs, err := openCorpus(ctx, cfg, location)
		if err != nil {
			return err
		}
		pieces, err := score.LoadCorpus(ctx, fs, "")
		if err != nil {
			return err
		}
		if len(pieces) == 0 {
			return fmt.Errorf("no pieces found in %s", location)
		}

		b := &corpus.Builder{Logger: slog.Default(), Quantize: buildQuantize, Strict: buildStrict}
		db := b.Build(pieces)

		store, err := openStore(dir)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := corpus.Save(ctx, store, dbPrefix, db); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		cli.Success(out, "indexed %d pieces into %s", len(pieces), dir)
		fmt.Fprintln(out, cli.Panel{
			Title: "build",
			Rows: []cli.Row{
				{Label: "corpus", Value: location},
				{Label: "pieces", Value: strconv.Itoa(len(pieces))},
				{Label: "beats", Value: strconv.Itoa(db.Len())},
				{Label: "openings", Value: strconv.Itoa(len(db.Starts()))},
				{Label: "chords", Value: strconv.Itoa(db.Lexicon().Len())},
			},
			Footer: "took " + cli.FormatDuration(time.Since(began)),
		}.Render(cli.NewStyles(cli.DefaultTheme)))
		return nil
	},
}

func firstOf(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func init() {
	buildCmd.Flags().StringVar(&buildCorpus, "corpus", "", "corpus directory or s3://bucket/prefix")
	buildCmd.Flags().StringVar(&buildDB, "db", "", "database directory (default from config)")
	buildCmd.Flags().BoolVar(&buildQuantize, "quantize", false, "cut notes into single beats before segmenting")
	buildCmd.Flags().BoolVar(&buildStrict, "strict", false, "with --quantize, drop sub-beat tails")

	rootCmd.AddCommand(buildCmd)
}
