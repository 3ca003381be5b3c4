package cmd

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cmmoran/hdrport/pkg/action/watch"
)

func init() {
	rootCmd.AddCommand(NewWatchCommand())
}

func NewWatchCommand() *cobra.Command {
	// watchCmd represents the hdrport watch command
	var watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "convert headers again whenever they change",
		Example: `  hdrport watch -m class -H include/Location.h -o src/Location.ts
  hdrport watch -m class -i lib -O src`,
		RunE: func(c *cobra.Command, args []string) error {
			opts, err := loadOptions(c)
			if err != nil {
				return err
			}
			debounce, _ := c.Flags().GetDuration("debounce")
			w, err := watch.New(opts, debounce)
			if err != nil {
				return err
			}

			go func() {
				for ev := range w.Events() {
					if ev.Err != nil {
						color.New(color.FgRed).Fprintf(c.ErrOrStderr(), "%s: %v\n", ev.Header, ev.Err)
						reportError(c, ev.Err)
						continue
					}
					color.New(color.FgGreen).Fprintf(c.OutOrStdout(), "%s -> %s", ev.Conversion.Header, ev.Conversion.Output)
					color.New(color.FgCyan).Fprintf(c.OutOrStdout(), " (%d translated, %d passthrough)\n", ev.Conversion.Translated, ev.Conversion.Passthrough)
				}
			}()
			return w.Run(c.Context())
		},
	}
	addPorterFlags(watchCmd, "mode", "strict", "header", "output", "input-directory", "output-directory", "namespace-macro", "api-macro", "type-map")
	watchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "quiet period before a changed header is converted")

	return watchCmd
}
