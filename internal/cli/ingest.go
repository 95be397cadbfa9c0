package cli

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yungbote/coursetree/internal/modules/ingestion/pipeline"
)

type ingestOptions struct {
	root       string
	creator    string
	category   string
	strict     bool
	dryRun     bool
	reportFile string
	workers    int
}

func newIngestCmd(root *rootOptions) *cobra.Command {
	var opts ingestOptions
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Validate, patch and persist a course document set",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, root, opts)
		},
	}
	cmd.Flags().StringVar(&opts.root, "root", "", "Document set location: directory, file://, gs:// or s3:// (required)")
	cmd.Flags().StringVar(&opts.creator, "creator", "", "Creator UUID (required unless --dry-run)")
	cmd.Flags().StringVar(&opts.category, "category", "", "Category UUID (required unless --dry-run)")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Treat warnings as blocking")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Validate and patch only; write nothing")
	cmd.Flags().StringVar(&opts.reportFile, "report", "", "Write the JSON report to this file")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Concurrent chapter writers (overrides ingest.workers)")
	_ = cmd.MarkFlagRequired("root")
	return cmd
}

func runIngest(cmd *cobra.Command, root *rootOptions, opts ingestOptions) error {
	req := pipeline.Request{Location: strings.TrimSpace(opts.root), DryRun: opts.dryRun}
	if !opts.dryRun {
		var err error
		if req.CreatorID, err = parseID("creator", opts.creator); err != nil {
			return err
		}
		if req.CategoryID, err = parseID("category", opts.category); err != nil {
			return err
		}
	}

	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	req.Strict = opts.strict || cfg.Ingest.Strict
	if opts.workers > 0 {
		cfg.Ingest.Workers = opts.workers
	}

	a, err := appFactory(cmd.Context(), cfg, !opts.dryRun)
	if err != nil {
		return withCode(exitError, err)
	}
	defer a.Close()

	rep, runErr := a.Services.Runner.Run(cmd.Context(), req)
	printReport(cmd.OutOrStdout(), rep)
	if opts.reportFile != "" && rep != nil {
		if err := rep.WriteFile(opts.reportFile); err != nil {
			a.Log.Warn("report write failed", "path", opts.reportFile, "error", err)
		}
	}

	code := runExitCode(rep, runErr)
	switch {
	case code == exitOK:
		return nil
	case runErr != nil:
		return withCode(code, runErr)
	case code == exitStorage:
		return withCode(code, fmt.Errorf("chapter write failed"))
	default:
		return withCode(code, fmt.Errorf("%d blocking violation(s)", len(rep.Blocking())))
	}
}

func parseID(name, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, withCode(exitError, fmt.Errorf("invalid --%s %q", name, raw))
	}
	return id, nil
}
