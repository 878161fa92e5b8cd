// Command emily composes four-voice chorales by recombining beats from a
// corpus of existing ones.
//
// Usage:
//
//	emily [flags] <command> [args]
//
// Commands:
//
//	build    - Ingest a corpus directory or S3 prefix into a database
//	compose  - Compose a new piece from a database
//	render   - Render a piece to a WAV preview
//	inspect  - Show database statistics
//	config   - Show or change configuration
//	version  - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/DougThompson1976/i-love-emily/cmd/emily/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
