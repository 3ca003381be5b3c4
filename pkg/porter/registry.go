package porter

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/cmmoran/hdrport/internal/model"
)

// HeaderInfo is what analyze learned about one header.
type HeaderInfo struct {
	Path        string
	Classes     []string
	Aliases     []string
	Translated  int
	Passthrough int
	Unknown     []string // referenced types declared in no scanned header
}

// Registry records the classes and aliases declared across a directory of
// headers.
type Registry struct {
	Headers []*HeaderInfo

	declared map[string]string // type name → declaring header
}

func NewRegistry() *Registry {
	return &Registry{declared: make(map[string]string)}
}

// HeaderDir returns dir/include when it exists, dir otherwise.
func HeaderDir(dir string) string {
	include := filepath.Join(dir, "include")
	if info, err := os.Stat(include); err == nil && info.IsDir() {
		return include
	}
	return dir
}

// FindHeaders lists the *.h files directly inside the header directory of
// dir, sorted.
func FindHeaders(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(HeaderDir(dir), "*.h"))
	if err != nil {
		return nil, errors.Wrapf(err, "glob headers in %s", dir)
	}
	sort.Strings(files)
	return files, nil
}

// Analyze converts every header of dir in class mode and registers what it
// declares. Unknown types are resolved against the whole directory.
func (p *Porter) Analyze(dir string) (*Registry, error) {
	files, err := FindHeaders(dir)
	if err != nil {
		return nil, err
	}

	r := NewRegistry()
	results := make([]*model.Result, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, errors.Wrapf(err, "read header %s", f)
		}
		res, err := p.ConvertClass(f, string(data))
		if err != nil {
			return nil, err
		}
		r.Add(res)
		results = append(results, res)
	}

	for i, res := range results {
		r.Headers[i].Unknown = r.unknownTypes(p.mapper, res)
	}
	return r, nil
}

// Add registers the declarations of one converted file.
func (r *Registry) Add(res *model.Result) *HeaderInfo {
	info := &HeaderInfo{
		Path:        res.File,
		Aliases:     append([]string(nil), res.Aliases...),
		Translated:  res.Count(model.LineTranslated),
		Passthrough: res.Count(model.LinePassthrough),
	}
	for _, c := range res.Classes {
		info.Classes = append(info.Classes, c.Name)
		r.declare(c.Name, res.File)
	}
	for _, a := range res.Aliases {
		r.declare(a, res.File)
	}
	r.Headers = append(r.Headers, info)
	return info
}

// Lookup returns the header declaring name.
func (r *Registry) Lookup(name string) (string, bool) {
	h, ok := r.declared[name]
	return h, ok
}

func (r *Registry) declare(name, file string) {
	if _, ok := r.declared[name]; !ok {
		r.declared[name] = file
	}
}

func (r *Registry) unknownTypes(mapper *TypeMapper, res *model.Result) []string {
	seen := map[string]bool{}
	check := func(raw string, typeParams map[string]bool) {
		for _, leaf := range mapper.Unknown(raw) {
			base := leaf
			if i := strings.LastIndex(leaf, "::"); i >= 0 {
				base = leaf[i+2:]
			}
			if typeParams[base] {
				continue
			}
			if _, ok := r.Lookup(base); ok {
				continue
			}
			seen[leaf] = true
		}
	}

	for _, c := range res.Classes {
		typeParams := map[string]bool{}
		for _, tp := range c.TypeParams {
			typeParams[tp] = true
		}
		for _, m := range c.Members {
			check(m.RawType, typeParams)
			for _, prm := range m.Params {
				check(prm.RawType, typeParams)
			}
		}
	}

	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
