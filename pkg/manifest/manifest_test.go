package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Missing(t *testing.T) {
	m, err := Load(filepath.Join(t.TempDir(), "port.yaml"))
	require.NoError(t, err)
	require.Empty(t, m.Conversions)
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "port.yaml")
	require.NoError(t, os.WriteFile(path, []byte("conversions: {"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestManifest_RecordAndSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "port.yaml")

	m := &Manifest{}
	m.Record(Conversion{Header: "include/Vector.h", Output: "ts/Vector.ts", Mode: "class", Digest: "aa"})
	m.Record(Conversion{Header: "include/Types.h", Output: "ts/Types.ts", Mode: "simple", Digest: "bb"})
	m.Record(Conversion{Header: "include/Vector.h", Output: "ts/Vector.ts", Mode: "class", Digest: "cc", Translated: 3})

	require.Len(t, m.Conversions, 2)
	require.Equal(t, "ts/Types.ts", m.Conversions[0].Output)
	require.Equal(t, "cc", m.Conversions[1].Digest)

	require.NoError(t, m.Save(path))
	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, m, loaded)

	c, ok := loaded.Find("ts/Vector.ts")
	require.True(t, ok)
	require.Equal(t, 3, c.Translated)
	_, ok = loaded.Find("ts/Missing.ts")
	require.False(t, ok)
}
