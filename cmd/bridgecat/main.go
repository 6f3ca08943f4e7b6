// Command bridgecat loads a model catalog, validates it, and prints the
// discovery listing. It is the operator's pre-deploy check for catalog edits.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"modelbridge/internal/catalog"
	"modelbridge/internal/logging"
)

func main() {
	catalogPath := flag.String("catalog", "models.yaml", "Path to the model catalog file")
	quiet := flag.Bool("quiet", false, "Validate only, print nothing on success")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logging.Setup(os.Stderr, level, true)

	reg, err := catalog.Load(*catalogPath)
	if err != nil {
		slog.Error("catalog validation failed", "error", err)
		os.Exit(1)
	}

	if *quiet {
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tMODE\tMAX RESPONSE TOKENS")
	for _, m := range reg.List() {
		mode := "flattened"
		if m.StructuredMessages {
			mode = "structured"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\n", m.Name, mode, m.MaxResponseTokens)
	}
	if err := w.Flush(); err != nil {
		slog.Error("writing listing", "error", err)
		os.Exit(1)
	}
}
