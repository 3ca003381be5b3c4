package diff

import (
	"crypto/sha256"
	"encoding/hex"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"

	"github.com/cmmoran/hdrport/pkg/manifest"
	"github.com/cmmoran/hdrport/pkg/porter"
)

// Regenerate converts opts.Header in memory and returns a diff from the
// existing opts.Output to the fresh conversion. An empty diff means the
// output is exactly what the porter produces today; anything else is manual
// work or a porter change.
func Regenerate(opts *porter.Options) (string, error) {
	p, err := porter.NewWithOpts(opts)
	if err != nil {
		return "", err
	}
	if p.Opts.Header == "" {
		return "", errors.New("diff needs a header and an output")
	}

	header, err := os.ReadFile(p.Opts.Header)
	if err != nil {
		return "", errors.Wrapf(err, "read header %s", p.Opts.Header)
	}
	res, err := p.Convert(p.Opts.Mode, p.Opts.Header, string(header))
	if err != nil {
		return "", err
	}

	existing, err := os.ReadFile(p.Opts.Output)
	if err != nil {
		return "", errors.Wrapf(err, "read output %s", p.Opts.Output)
	}

	return cmp.Diff(string(existing), porter.Render(res.Lines)), nil
}

// Stale lists manifest entries whose header changed since it was converted.
// Headers that can no longer be read are reported as stale too.
func Stale(manifestPath string) ([]manifest.Conversion, error) {
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, err
	}

	var stale []manifest.Conversion
	for _, c := range m.Conversions {
		data, err := os.ReadFile(c.Header)
		if err != nil {
			stale = append(stale, c)
			continue
		}
		sum := sha256.Sum256(data)
		if hex.EncodeToString(sum[:]) != c.Digest {
			stale = append(stale, c)
		}
	}
	return stale, nil
}
