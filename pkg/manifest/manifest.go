package manifest

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Conversion is one header → TypeScript run recorded in the manifest.
type Conversion struct {
	Header      string `yaml:"header" json:"header"`
	Output      string `yaml:"output" json:"output"`
	Mode        string `yaml:"mode" json:"mode"`
	Digest      string `yaml:"digest" json:"digest"` // sha256 of the header text
	Translated  int    `yaml:"translated" json:"translated"`
	Passthrough int    `yaml:"passthrough" json:"passthrough"`
	Suppressed  int    `yaml:"suppressed" json:"suppressed"`
}

// Manifest tracks which headers have been ported and how.
type Manifest struct {
	Conversions []Conversion `yaml:"conversions" json:"conversions"`
}

// Load reads a manifest from the provided path. If the file does not exist,
// an empty manifest is returned.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Manifest{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read manifest")
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, "unmarshal manifest")
	}

	return &m, nil
}

// Save writes the manifest to the provided path, creating parent directories as needed.
func (m *Manifest) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create manifest directory")
	}

	data, err := yaml.Marshal(m)
	if err != nil {
		return errors.Wrap(err, "marshal manifest")
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "write manifest")
	}

	return nil
}

// Record adds a conversion, replacing an earlier entry for the same output.
// Entries stay sorted by output path so the file diffs cleanly.
func (m *Manifest) Record(c Conversion) {
	defer func() {
		sort.Slice(m.Conversions, func(i, j int) bool {
			return m.Conversions[i].Output < m.Conversions[j].Output
		})
	}()

	for i := range m.Conversions {
		if m.Conversions[i].Output == c.Output {
			m.Conversions[i] = c
			return
		}
	}

	m.Conversions = append(m.Conversions, c)
}

// Find returns the entry recorded for an output file, if present.
func (m *Manifest) Find(output string) (Conversion, bool) {
	for _, c := range m.Conversions {
		if c.Output == output {
			return c, true
		}
	}
	return Conversion{}, false
}
