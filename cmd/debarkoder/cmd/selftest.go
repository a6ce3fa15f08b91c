package cmd

import (
	"fmt"

	"github.com/MeKo-Tech/debarkoder/internal/selftest"
	"github.com/spf13/cobra"
)

func newSelftestCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "selftest",
		Aliases: []string{"test"},
		Short:   "Run the embedded decoder checks",
		Long: `Run the embedded decoder checks and report each as passed or failed.

The checks cover run-length encoding, bar classification, deinterleaving,
table lookup and full decodes of rendered barcodes. This is the same
check set the root command runs when called without arguments.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSelftest(cmd)
		},
	}
}

func runSelftest(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, "Running embedded decoder checks...")
	_, _ = fmt.Fprintln(out)

	rep := selftest.Run(cmd.Context(), out)
	_, _ = fmt.Fprintln(out)
	if !rep.OK() {
		return fmt.Errorf("%d of %d checks failed", len(rep.Failed), rep.Passed+len(rep.Failed))
	}
	_, _ = fmt.Fprintf(out, "🎉 All %d checks passed.\n", rep.Passed)
	return nil
}
