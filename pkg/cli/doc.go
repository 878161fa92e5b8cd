// Package cli holds the terminal helpers shared by the emily commands:
// structured output in YAML or JSON, human-readable sizes and durations,
// and the styled summary panel printed after a run.
//
//	cli.Output(stats, cli.OutputOptions{Format: cli.FormatJSON})
//
//	fmt.Println(cli.Panel{
//	    Title: "compose",
//	    Rows:  []cli.Row{{Label: "seed", Value: "42"}},
//	}.Render(cli.NewStyles(cli.DefaultTheme)))
package cli
