package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jinzhu/inflection"
	"github.com/spf13/cobra"

	"github.com/cmmoran/hdrport/pkg/porter"
)

func init() {
	rootCmd.AddCommand(NewAnalyzeCommand())
}

func NewAnalyzeCommand() *cobra.Command {
	// analyzeCmd represents the hdrport analyze command
	var analyzeCmd = &cobra.Command{
		Use:   "analyze",
		Short: "summarize a directory of headers",
		Long:  "Convert every header of a directory in memory and report the classes, aliases and unresolved types each one declares",
		Example: `  hdrport analyze -i lib
  hdrport analyze -i lib --unknown`,
		RunE: func(c *cobra.Command, args []string) error {
			opts, err := loadOptions(c)
			if err != nil {
				return err
			}
			if opts.InDir == "" {
				return errors.New("analyze needs an input directory")
			}
			p, err := porter.NewWithOpts(opts)
			if err != nil {
				return err
			}
			reg, err := p.Analyze(p.Opts.InDir)
			if err != nil {
				return err
			}

			showUnknown, _ := c.Flags().GetBool("unknown")
			renderRegistry(c, reg, showUnknown)
			return nil
		},
	}
	addPorterFlags(analyzeCmd, "input-directory", "namespace-macro", "api-macro", "type-map")
	analyzeCmd.Flags().Bool("unknown", false, "list the unresolved type names of each header")

	return analyzeCmd
}

func renderRegistry(c *cobra.Command, reg *porter.Registry, showUnknown bool) {
	t := table.NewWriter()
	t.SetOutputMirror(c.OutOrStdout())
	t.SetStyle(table.StyleLight)

	header := table.Row{"Header", "Classes", "Aliases", "Translated", "Passthrough", "Unknown"}
	if showUnknown {
		header = append(header, "Unresolved")
	}
	t.AppendHeader(header)

	var classes, aliases, translated, passthrough, unknown int
	for _, h := range reg.Headers {
		row := table.Row{filepath.Base(h.Path), len(h.Classes), len(h.Aliases), h.Translated, h.Passthrough, len(h.Unknown)}
		if showUnknown {
			row = append(row, strings.Join(h.Unknown, ", "))
		}
		t.AppendRow(row)
		classes += len(h.Classes)
		aliases += len(h.Aliases)
		translated += h.Translated
		passthrough += h.Passthrough
		unknown += len(h.Unknown)
	}

	footer := table.Row{fmt.Sprintf("%d %s", len(reg.Headers), plural("header", len(reg.Headers))), classes, aliases, translated, passthrough, unknown}
	if showUnknown {
		footer = append(footer, "")
	}
	t.AppendFooter(footer)
	t.Render()

	if unknown == 0 {
		color.New(color.FgGreen).Fprintln(c.OutOrStdout(), "every referenced type is declared or mapped")
	} else {
		color.New(color.FgYellow).Fprintf(c.OutOrStdout(), "%d unresolved %s\n", unknown, plural("type", unknown))
	}
}

func plural(word string, n int) string {
	if n == 1 {
		return word
	}
	return inflection.Plural(word)
}
