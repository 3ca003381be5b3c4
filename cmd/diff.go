package cmd

import (
	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cmmoran/hdrport/pkg/action/diff"
)

func init() {
	rootCmd.AddCommand(NewDiffCommand())
}

func NewDiffCommand() *cobra.Command {
	// diffCmd represents the hdrport diff command
	var diffCmd = &cobra.Command{
		Use:   "diff",
		Short: "compare an output with a fresh conversion",
		Long:  "Convert a header in memory and show how the existing output differs, or list manifest entries whose header changed (--stale)",
		Example: `  hdrport diff -m class -H include/Location.h -o src/Location.ts
  hdrport diff --manifest port.yaml --stale`,
		RunE: func(c *cobra.Command, args []string) error {
			opts, err := loadOptions(c)
			if err != nil {
				return err
			}

			if stale, _ := c.Flags().GetBool("stale"); stale {
				if opts.Manifest == "" {
					return errors.New("--stale needs --manifest")
				}
				entries, err := diff.Stale(opts.Manifest)
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					color.New(color.FgGreen).Fprintln(c.OutOrStdout(), "every recorded header is up to date")
					return nil
				}
				for _, e := range entries {
					color.New(color.FgYellow).Fprintf(c.OutOrStdout(), "stale: %s -> %s\n", e.Header, e.Output)
				}
				return nil
			}

			d, err := diff.Regenerate(opts)
			if err != nil {
				reportError(c, err)
				return err
			}
			if d == "" {
				color.New(color.FgGreen).Fprintf(c.OutOrStdout(), "%s is up to date\n", opts.Output)
				return nil
			}
			_, err = c.OutOrStdout().Write([]byte(d))
			return err
		},
	}
	addPorterFlags(diffCmd, "mode", "strict", "header", "output", "manifest", "namespace-macro", "api-macro", "type-map")
	diffCmd.Flags().Bool("stale", false, "list manifest entries whose header changed since conversion")

	return diffCmd
}
