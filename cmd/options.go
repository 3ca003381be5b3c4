package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cmmoran/hdrport/pkg/porter"
)

// flagKeys maps porter config keys onto the flag names that override them.
var flagKeys = map[string]string{
	"mode":            "mode",
	"strict":          "strict",
	"header":          "header",
	"output":          "output",
	"in_dir":          "input-directory",
	"out_dir":         "output-directory",
	"manifest":        "manifest",
	"jobs":            "jobs",
	"namespace_macro": "namespace-macro",
	"api_macros":      "api-macro",
	"type_map":        "type-map",
}

// addPorterFlags registers the conversion flags a command accepts. Only the
// flags named in which are added.
func addPorterFlags(c *cobra.Command, which ...string) {
	defaults := porter.NewOptions()
	fs := c.Flags()
	for _, name := range which {
		switch name {
		case "mode":
			fs.StringP("mode", "m", string(defaults.Mode), "conversion mode: simple (typedefs and constants) or class (class bodies)")
		case "strict":
			fs.Bool("strict", false, "fail on the first unrecognized line instead of keeping it as a comment")
		case "header":
			fs.StringP("header", "H", "", "C++ header to convert")
		case "output":
			fs.StringP("output", "o", "", "TypeScript file to write")
		case "input-directory":
			fs.StringP("input-directory", "i", "", "directory of headers (its include/ subdirectory is used when present)")
		case "output-directory":
			fs.StringP("output-directory", "O", "ts", "directory to write converted files")
		case "manifest":
			fs.String("manifest", "", "yaml manifest recording each conversion")
		case "jobs":
			fs.IntP("jobs", "j", defaults.Jobs, "headers converted in parallel")
		case "namespace-macro":
			fs.String("namespace-macro", defaults.NamespaceMacro, "macro whose #ifdef wraps the namespace")
		case "api-macro":
			fs.StringSlice("api-macro", defaults.APIMacros, "export macros stripped from class declarations")
		case "type-map":
			fs.StringSlice("type-map", nil, "extra type mappings as cpp=ts, ex: Unsigned8=number")
		}
	}
}

// loadOptions merges, lowest priority first, the porter defaults, the
// "porter" section of the config and the flags set on the command line.
func loadOptions(c *cobra.Command) (*porter.Options, error) {
	for key, flag := range flagKeys {
		if f := c.Flags().Lookup(flag); f != nil {
			if err := viper.BindPFlag("porter."+key, f); err != nil {
				return nil, err
			}
		}
	}

	// Unmarshal goes through AllSettings, which also sees the bound flags;
	// UnmarshalKey would only see the config file.
	cfg := struct {
		Porter *porter.Options `mapstructure:"porter"`
	}{Porter: porter.NewOptions()}
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return cfg.Porter, nil
}
