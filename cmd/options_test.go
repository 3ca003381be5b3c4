package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/cmmoran/hdrport/pkg/porter"
)

func testCommand() *cobra.Command {
	c := &cobra.Command{Use: "test"}
	addPorterFlags(c, "mode", "strict", "header", "output", "jobs", "type-map")
	return c
}

func TestLoadOptions_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	opts, err := loadOptions(testCommand())
	require.NoError(t, err)
	require.Equal(t, porter.ModeSimple, opts.Mode)
	require.Equal(t, 4, opts.Jobs)
	require.Equal(t, []string{"SP_API", "OPENJADE_API"}, opts.APIMacros)
}

func TestLoadOptions_ConfigThenFlags(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	config := filepath.Join(t.TempDir(), "hdrport.yaml")
	require.NoError(t, os.WriteFile(config, []byte(`porter:
  mode: class
  jobs: 8
  type_map:
    - Unsigned8=number
`), 0o644))
	viper.SetConfigFile(config)
	require.NoError(t, viper.ReadInConfig())

	c := testCommand()
	require.NoError(t, c.Flags().Set("jobs", "2"))
	require.NoError(t, c.Flags().Set("strict", "true"))

	opts, err := loadOptions(c)
	require.NoError(t, err)
	require.Equal(t, porter.ModeClass, opts.Mode)
	require.Equal(t, 2, opts.Jobs)
	require.True(t, opts.Strict)
	require.Equal(t, []string{"Unsigned8=number"}, opts.TypeMap)
}

func TestParseLevel(t *testing.T) {
	require.EqualValues(t, -8, parseLevel("trace"))
	require.EqualValues(t, 4, parseLevel("warn"))
	require.Panics(t, func() { parseLevel("loud") })
}
