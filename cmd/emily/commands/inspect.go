package commands

import (
	"github.com/spf13/cobra"

	"github.com/DougThompson1976/i-love-emily/pkg/cli"
)

var (
	inspectDB     string
	inspectOutput string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show database statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		format, err := cli.ParseOutputFormat(inspectOutput)
		if err != nil {
			return err
		}
		db, err := loadDatabase(cmd.Context(), firstOf(inspectDB, cfg.DatabaseDir()))
		if err != nil {
			return err
		}
		return cli.Output(db.Stats(), cli.OutputOptions{Format: format, Writer: cmd.OutOrStdout()})
	},
}

func init() {
	inspectCmd.Flags().StringVar(&inspectDB, "db", "", "database directory (default from config)")
	inspectCmd.Flags().StringVarP(&inspectOutput, "output", "o", "yaml", "output format: yaml or json")

	rootCmd.AddCommand(inspectCmd)
}
