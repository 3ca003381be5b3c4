package convert

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/jinzhu/inflection"
	"golang.org/x/sync/errgroup"

	"github.com/cmmoran/hdrport/internal/model"
	"github.com/cmmoran/hdrport/pkg/manifest"
	"github.com/cmmoran/hdrport/pkg/porter"
)

// Generate converts the header named in opts, or every header of opts.InDir,
// and records the runs in the manifest when one is configured.
func Generate(ctx context.Context, opts *porter.Options) ([]manifest.Conversion, error) {
	p, err := porter.NewWithOpts(opts)
	if err != nil {
		return nil, err
	}

	var conversions []manifest.Conversion
	switch {
	case p.Opts.Header != "":
		c, err := File(p, p.Opts.Header, p.Opts.Output)
		if err != nil {
			return nil, err
		}
		conversions = []manifest.Conversion{c}
	case p.Opts.InDir != "":
		if conversions, err = Dir(ctx, p); err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("nothing to convert: set a header and output, or an input directory")
	}

	slog.Info("conversion finished", "count", len(conversions), "unit", noun("header", len(conversions)))

	if p.Opts.Manifest == "" {
		return conversions, nil
	}
	m, err := manifest.Load(p.Opts.Manifest)
	if err != nil {
		return nil, err
	}
	for _, c := range conversions {
		m.Record(c)
	}
	if err := m.Save(p.Opts.Manifest); err != nil {
		return nil, err
	}
	return conversions, nil
}

// Dir converts every header of p.Opts.InDir into p.Opts.OutDir, running up
// to p.Opts.Jobs conversions at once. Results keep the header order.
func Dir(ctx context.Context, p *porter.Porter) ([]manifest.Conversion, error) {
	headers, err := porter.FindHeaders(p.Opts.InDir)
	if err != nil {
		return nil, err
	}

	out := make([]manifest.Conversion, len(headers))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Opts.Jobs)
	for i, h := range headers {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c, err := File(p, h, OutputPath(p.Opts.OutDir, h))
			if err != nil {
				return err
			}
			out[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// OutputPath maps include/Foo.h onto outDir/Foo.ts.
func OutputPath(outDir, header string) string {
	base := filepath.Base(header)
	return filepath.Join(outDir, strings.TrimSuffix(base, filepath.Ext(base))+".ts")
}

// File converts one header and writes the result. Nothing is written when
// the conversion fails.
func File(p *porter.Porter, header, output string) (manifest.Conversion, error) {
	data, err := os.ReadFile(header)
	if err != nil {
		return manifest.Conversion{}, errors.Wrapf(err, "read header %s", header)
	}

	slog.Debug("converting header", "header", header, "mode", p.Opts.Mode)
	res, err := p.Convert(p.Opts.Mode, header, string(data))
	if err != nil {
		return manifest.Conversion{}, err
	}

	if err := WriteFile(output, porter.Render(res.Lines)); err != nil {
		return manifest.Conversion{}, err
	}
	slog.Info("wrote output", "header", header, "output", output,
		"translated", res.Count(model.LineTranslated), "passthrough", res.Count(model.LinePassthrough))

	sum := sha256.Sum256(data)
	return manifest.Conversion{
		Header:      header,
		Output:      output,
		Mode:        string(p.Opts.Mode),
		Digest:      hex.EncodeToString(sum[:]),
		Translated:  res.Count(model.LineTranslated),
		Passthrough: res.Count(model.LinePassthrough),
		Suppressed:  len(res.Suppressed),
	}, nil
}

// WriteFile replaces path with text through a temporary file in the same
// directory, so readers never see a partial file.
func WriteFile(path, text string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create output directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, ".hdrport-*.ts")
	if err != nil {
		return errors.Wrap(err, "create temp output")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.WriteString(text); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "close %s", path)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return errors.Wrapf(err, "chmod %s", path)
	}
	return errors.Wrapf(os.Rename(tmp.Name(), path), "rename onto %s", path)
}

func noun(word string, n int) string {
	if n == 1 {
		return word
	}
	return inflection.Plural(word)
}
