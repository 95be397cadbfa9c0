// Package cli holds the coursetree command tree.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yungbote/coursetree/internal/app"
	"github.com/yungbote/coursetree/internal/config"
	"github.com/yungbote/coursetree/internal/modules/ingestion/pipeline"
	"github.com/yungbote/coursetree/internal/modules/ingestion/validation"
)

type rootOptions struct {
	configFile string
	logMode    string
}

// appFactory is swapped in tests.
var appFactory = app.New

func NewRootCmd() *cobra.Command {
	var opts rootOptions
	cmd := &cobra.Command{
		Use:           "coursetree",
		Short:         "Validate and ingest course document sets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Config file (YAML); env COURSETREE_* overrides")
	cmd.PersistentFlags().StringVar(&opts.logMode, "log-mode", "", "Log mode: development, production or test")

	cmd.AddCommand(newIngestCmd(&opts))
	cmd.AddCommand(newValidateCmd(&opts))
	return cmd
}

// Execute runs the command tree and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
	}
	return ExitCode(err)
}

func loadConfig(opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, withCode(exitError, err)
	}
	if opts.logMode != "" {
		cfg.Log.Mode = opts.logMode
	}
	return cfg, nil
}

func printReport(w io.Writer, rep *pipeline.Report) {
	if rep == nil {
		return
	}
	fmt.Fprintf(w, "course %q from %s\n", rep.Course, rep.Location)
	if rep.Rounds > 0 {
		fmt.Fprintf(w, "patched in %d round(s), %d edit(s)\n", rep.Rounds, len(rep.Applied))
	}
	for _, v := range rep.Violations {
		marker := " "
		if validation.Blocking(v, rep.Strict) {
			marker = "!"
		}
		fmt.Fprintf(w, "%s %s\n", marker, v)
	}
	for _, ch := range rep.Chapters {
		line := fmt.Sprintf("chapter %d %-13s %s", ch.Ix, ch.Status, ch.Title)
		if ch.Error != "" {
			line += ": " + ch.Error
		}
		fmt.Fprintln(w, line)
	}
	if rep.Halted {
		fmt.Fprintln(w, "course-level violations halted persistence")
	}
	fmt.Fprintf(w, "ok=%v\n", rep.OK)
}
