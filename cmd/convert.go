package cmd

import (
	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cmmoran/hdrport/pkg/action/convert"
	"github.com/cmmoran/hdrport/pkg/porter"
)

func init() {
	rootCmd.AddCommand(NewConvertCommand())
}

func NewConvertCommand() *cobra.Command {
	// convertCmd represents the hdrport convert command
	var convertCmd = &cobra.Command{
		Use:   "convert",
		Short: "convert headers",
		Long:  "Convert one header (--header/--output) or a directory of headers (--input-directory) to TypeScript",
		Example: `  hdrport convert -H include/types.h -o src/types.ts
  hdrport convert -m class -H include/Location.h -o src/Location.ts --strict
  hdrport convert -m class -i lib -O src --manifest port.yaml`,
		RunE: func(c *cobra.Command, args []string) error {
			opts, err := loadOptions(c)
			if err != nil {
				return err
			}
			conversions, err := convert.Generate(c.Context(), opts)
			if err != nil {
				reportError(c, err)
				return err
			}
			for _, cv := range conversions {
				color.New(color.FgGreen).Fprintf(c.OutOrStdout(), "%s -> %s", cv.Header, cv.Output)
				color.New(color.FgCyan).Fprintf(c.OutOrStdout(), " (%d translated, %d passthrough)\n", cv.Translated, cv.Passthrough)
			}
			return nil
		},
	}
	addPorterFlags(convertCmd, "mode", "strict", "header", "output", "input-directory", "output-directory", "manifest", "jobs", "namespace-macro", "api-macro", "type-map")

	return convertCmd
}

// reportError prints the hints carried by err, such as the strict-mode hint
// of an unknown pattern.
func reportError(c *cobra.Command, err error) {
	if !porter.IsUnknownPattern(err) {
		return
	}
	for _, hint := range errors.GetAllHints(err) {
		color.New(color.FgYellow).Fprintf(c.ErrOrStderr(), "hint: %s\n", hint)
	}
}
