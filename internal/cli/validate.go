package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

type validateOptions struct {
	root       string
	strict     bool
	reportFile string
}

func newValidateCmd(root *rootOptions) *cobra.Command {
	var opts validateOptions
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate and patch a course document set without storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, root, ingestOptions{
				root:       strings.TrimSpace(opts.root),
				strict:     opts.strict,
				dryRun:     true,
				reportFile: opts.reportFile,
			})
		},
	}
	cmd.Flags().StringVar(&opts.root, "root", "", "Document set location (required)")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Treat warnings as blocking")
	cmd.Flags().StringVar(&opts.reportFile, "report", "", "Write the JSON report to this file")
	_ = cmd.MarkFlagRequired("root")
	return cmd
}
