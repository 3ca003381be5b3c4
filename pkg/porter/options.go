package porter

import (
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// Mode selects the top-level classification policy of a pass.
type Mode string

const (
	// ModeSimple translates typedefs and constants; everything else becomes
	// a TODO comment.
	ModeSimple Mode = "simple"
	// ModeClass additionally translates class and struct bodies.
	ModeClass Mode = "class"
)

// ParseMode accepts "simple" and "class" in any case.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeSimple, "":
		return ModeSimple, nil
	case ModeClass:
		return ModeClass, nil
	}
	return "", errors.Newf("unknown mode %q (want simple or class)", s)
}

// Options control a conversion run.
//
// Mode           – simple or class translation.
// Strict         – fail on the first unrecognized line instead of passing it through.
// Header         – single header to convert.
// Output         – destination for Header.
// InDir          – directory of headers for a batch run (include/ is preferred when present).
// OutDir         – destination directory for a batch run.
// Manifest       – yaml file recording each conversion; empty disables it.
// Jobs           – parallel conversions in a batch run.
// NamespaceMacro – macro whose #ifdef wraps the namespace declaration.
// APIMacros      – export macros stripped from class heads, ex: SP_API.
// TypeMap        – extra primitive mappings as "cpp=ts", ex: Unsigned8=number. A list
//                  rather than a map because config keys lose their case.
type Options struct {
	Mode           Mode              `json:"mode,omitempty" yaml:"mode,omitempty" toml:"mode,omitempty" mapstructure:"mode,omitempty"`
	Strict         bool              `json:"strict,omitempty" yaml:"strict,omitempty" toml:"strict,omitempty" mapstructure:"strict,omitempty"`
	Header         string            `json:"header,omitempty" yaml:"header,omitempty" toml:"header,omitempty" mapstructure:"header,omitempty"`
	Output         string            `json:"output,omitempty" yaml:"output,omitempty" toml:"output,omitempty" mapstructure:"output,omitempty"`
	InDir          string            `json:"in_dir,omitempty" yaml:"in_dir,omitempty" toml:"in_dir,omitempty" mapstructure:"in_dir,omitempty"`
	OutDir         string            `json:"out_dir,omitempty" yaml:"out_dir,omitempty" toml:"out_dir,omitempty" mapstructure:"out_dir,omitempty"`
	Manifest       string            `json:"manifest,omitempty" yaml:"manifest,omitempty" toml:"manifest,omitempty" mapstructure:"manifest,omitempty"`
	Jobs           int               `json:"jobs,omitempty" yaml:"jobs,omitempty" toml:"jobs,omitempty" mapstructure:"jobs,omitempty"`
	NamespaceMacro string            `json:"namespace_macro,omitempty" yaml:"namespace_macro,omitempty" toml:"namespace_macro,omitempty" mapstructure:"namespace_macro,omitempty"`
	APIMacros      []string          `json:"api_macros,omitempty" yaml:"api_macros,omitempty" toml:"api_macros,omitempty" mapstructure:"api_macros,omitempty"`
	TypeMap        []string          `json:"type_map,omitempty" yaml:"type_map,omitempty" toml:"type_map,omitempty" mapstructure:"type_map,omitempty"`
}

func NewOptions() *Options {
	return &Options{
		Mode:           ModeSimple,
		Jobs:           4,
		NamespaceMacro: "SP_NAMESPACE",
		APIMacros:      []string{"SP_API", "OPENJADE_API"},
	}
}

// Normalize fills defaults and checks that a single-file run names both ends.
func (o *Options) Normalize() error {
	mode, err := ParseMode(string(o.Mode))
	if err != nil {
		return err
	}
	o.Mode = mode
	if o.Jobs <= 0 {
		o.Jobs = 4
	}
	if o.NamespaceMacro == "" {
		o.NamespaceMacro = "SP_NAMESPACE"
	}
	if len(o.APIMacros) == 0 {
		o.APIMacros = []string{"SP_API", "OPENJADE_API"}
	}
	if (o.Header == "") != (o.Output == "") {
		return errors.New("header and output must be given together")
	}
	if _, err := o.TypeMapping(); err != nil {
		return err
	}
	if o.Header == "" && o.InDir != "" && o.OutDir == "" {
		o.OutDir = "ts"
	}
	for _, p := range []*string{&o.InDir, &o.OutDir} {
		if strings.Contains(*p, ".") {
			*p, _ = filepath.Abs(*p)
		}
	}
	return nil
}

// functional option pattern ---------------------------------------------------

type Option func(*Options)

func WithMode(m Mode) Option             { return func(o *Options) { o.Mode = m } }
func WithStrict() Option                 { return func(o *Options) { o.Strict = true } }
func WithHeader(h, out string) Option    { return func(o *Options) { o.Header, o.Output = h, out } }
func WithInDir(d string) Option          { return func(o *Options) { o.InDir = d } }
func WithOutDir(d string) Option         { return func(o *Options) { o.OutDir = d } }
func WithManifest(p string) Option       { return func(o *Options) { o.Manifest = p } }
func WithJobs(n int) Option              { return func(o *Options) { o.Jobs = n } }
func WithNamespaceMacro(m string) Option { return func(o *Options) { o.NamespaceMacro = m } }
func WithAPIMacros(names ...string) Option {
	return func(o *Options) {
		for _, n := range names {
			o.APIMacros = append(o.APIMacros, strings.TrimSpace(n))
		}
	}
}
func WithTypeMapping(cppType, tsType string) Option {
	return func(o *Options) { o.TypeMap = append(o.TypeMap, cppType+"="+tsType) }
}

// TypeMapping parses TypeMap into a lookup table.
func (o *Options) TypeMapping() (map[string]string, error) {
	m := make(map[string]string, len(o.TypeMap))
	for _, entry := range o.TypeMap {
		cpp, ts, ok := strings.Cut(entry, "=")
		if !ok || strings.TrimSpace(cpp) == "" || strings.TrimSpace(ts) == "" {
			return nil, errors.Newf("bad type mapping %q (want cpp=ts)", entry)
		}
		m[strings.TrimSpace(cpp)] = strings.TrimSpace(ts)
	}
	return m, nil
}
