package porter

import (
	"path/filepath"
	"strings"

	"github.com/cmmoran/hdrport/internal/model"
)

// Porter converts header text. It holds configuration only; every call to
// Convert builds its own scanner, so a Porter may be shared between
// goroutines.
type Porter struct {
	Opts   Options
	mapper *TypeMapper
	cls    *classifier
}

// New builds a Porter from functional options.
func New(opts ...Option) (*Porter, error) {
	o := NewOptions()
	for _, fn := range opts {
		fn(o)
	}
	return NewWithOpts(o)
}

func NewWithOpts(opts *Options) (*Porter, error) {
	if err := opts.Normalize(); err != nil {
		return nil, err
	}
	extra, err := opts.TypeMapping()
	if err != nil {
		return nil, err
	}
	mapper := NewTypeMapper(extra)
	return &Porter{
		Opts:   *opts,
		mapper: mapper,
		cls:    newClassifier(mapper, opts.APIMacros),
	}, nil
}

// Mapper exposes the type mapper the Porter was configured with.
func (p *Porter) Mapper() *TypeMapper {
	return p.mapper
}

// Convert runs one pass over text. name is the header's file name; its base
// name identifies the include guard.
func (p *Porter) Convert(mode Mode, name, text string) (*model.Result, error) {
	s := &scanner{
		p:       p,
		mode:    mode,
		file:    name,
		guard:   strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)) + "_INCLUDED",
		aliases: map[string]bool{},
		out:     &Emitter{},
		res:     &model.Result{File: name},
	}
	if err := s.run(text); err != nil {
		return nil, err
	}
	return s.res, nil
}

// ConvertSimple translates file-scope typedefs and constants only.
func (p *Porter) ConvertSimple(name, text string) (*model.Result, error) {
	return p.Convert(ModeSimple, name, text)
}

// ConvertClass also translates class and struct bodies.
func (p *Porter) ConvertClass(name, text string) (*model.Result, error) {
	return p.Convert(ModeClass, name, text)
}

type scanner struct {
	p       *Porter
	mode    Mode
	file    string
	guard   string
	state   model.ScanState
	aliases map[string]bool
	out     *Emitter
	res     *model.Result
	lineNo  int
}

func (s *scanner) run(text string) error {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	for i, raw := range lines {
		s.lineNo = i + 1
		next := ""
		if i+1 < len(lines) {
			next = lines[i+1]
		}
		if err := s.step(strings.TrimRight(raw, " \t"), next); err != nil {
			return err
		}
	}

	s.res.Lines = s.out.Lines()
	return nil
}

func (s *scanner) step(raw, next string) error {
	stripped := strings.TrimSpace(raw)

	if s.state.InBlockComment {
		if strings.Contains(stripped, "*/") {
			s.state.InBlockComment = false
		}
		s.preserve(raw, stripped)
		return nil
	}

	switch {
	case stripped == "":
		s.emit(model.LinePreserved, "", false)
		return nil
	case strings.HasPrefix(stripped, "//"):
		s.preserve(raw, stripped)
		return nil
	case strings.HasPrefix(stripped, "/*"):
		s.state.InBlockComment = !strings.Contains(stripped[2:], "*/")
		s.preserve(raw, stripped)
		return nil
	}

	code, comment := splitComment(stripped)
	if strings.HasPrefix(comment, "/*") && !strings.Contains(comment[2:], "*/") {
		defer func() { s.state.InBlockComment = true }()
	}

	if strings.HasPrefix(code, "#") {
		return s.directive(code, stripped)
	}
	if s.state.InClass {
		return s.classLine(code, comment, stripped)
	}
	return s.outsideLine(code, comment, stripped, next)
}

func (s *scanner) outsideLine(code, comment, stripped, next string) error {
	if reNamespace.MatchString(code) {
		s.state.NamespaceDepth++
		s.suppress()
		return nil
	}
	if code == "}" && s.state.InNamespace() && s.state.ScopeDepth == 0 {
		s.state.NamespaceDepth--
		s.suppress()
		return nil
	}

	if s.mode == ModeClass {
		if m := reTemplate.FindStringSubmatch(code); m != nil && m[2] == "" {
			nextCode, _ := splitComment(strings.TrimSpace(next))
			if _, ok := s.p.cls.classHead(nextCode); ok {
				params := m[1]
				s.state.PendingTemplate = &params
				s.suppress()
				return nil
			}
		}
		if decl, ok := s.p.cls.classHead(code); ok {
			s.openClass(decl, comment)
			return nil
		}
	}
	s.state.PendingTemplate = nil

	prefix := "// TODO: "
	if s.mode == ModeClass {
		prefix = "// "
	}
	d := s.p.cls.outside(code, stripped, s.aliases, prefix)
	if d.kind == model.LineTranslated && strings.HasPrefix(d.text, "export type ") {
		s.res.Aliases = append(s.res.Aliases, aliasName(d.text))
	}
	s.state.ScopeDepth = max(0, s.state.ScopeDepth+countBraces(code))
	return s.apply(d, comment, stripped)
}

func (s *scanner) openClass(decl *model.ClassDecl, comment string) {
	if s.state.PendingTemplate != nil && len(decl.TypeParams) == 0 {
		decl.TypeParams = templateParams(*s.state.PendingTemplate)
	}
	s.state.PendingTemplate = nil
	decl.Line = s.lineNo

	s.state.InClass = true
	s.state.Depth = 1
	s.state.Class = decl
	s.state.InFieldBlock = false
	s.state.Visibility = model.VisibilityPrivate
	if decl.Keyword == "struct" {
		s.state.Visibility = model.VisibilityPublic
	}
	s.res.Classes = append(s.res.Classes, decl)

	head := "export class " + decl.Name
	if len(decl.TypeParams) > 0 {
		head += "<" + strings.Join(decl.TypeParams, ", ") + ">"
	}
	if len(decl.Bases) > 0 {
		head += " extends " + decl.Bases[0]
	}
	head += " {"
	if len(decl.Bases) > 1 {
		head += "  // also derives from " + strings.Join(decl.Bases[1:], ", ")
	}
	if comment != "" {
		head += "  " + comment
	}
	s.emit(model.LineTranslated, head, false)
}

func (s *scanner) classLine(code, comment, stripped string) error {
	before := s.state.Depth
	s.state.Depth += countBraces(code)

	if s.state.Depth <= 0 {
		s.out.Discard()
		s.state = model.ScanState{
			NamespaceDepth: s.state.NamespaceDepth,
			ScopeDepth:     s.state.ScopeDepth,
			Conditionals:   s.state.Conditionals,
		}
		closing := "}"
		if i := strings.LastIndexByte(code, '}'); i >= 0 {
			if rest := strings.TrimSpace(code[i+1:]); rest != "" && rest != ";" {
				closing += "  // " + rest
			}
		}
		if comment != "" {
			closing += "  " + comment
		}
		s.emit(model.LineTranslated, closing, false)
		return nil
	}

	// Lines inside a multi-line method body are carried as opaque text.
	if before > 1 {
		s.emit(model.LinePassthrough, "  // "+stripped, false)
		return nil
	}

	d := s.p.cls.classBody(&s.state, code, stripped)
	if d.member != nil {
		d.member.Line = s.lineNo
		s.state.Class.Members = append(s.state.Class.Members, d.member)
	}
	return s.apply(d, comment, stripped)
}

// apply emits a classifier decision, or fails in strict mode when no shape
// matched.
func (s *scanner) apply(d decision, comment, stripped string) error {
	if d.unknown != "" && s.p.Opts.Strict {
		return unknownPattern(s.file, s.lineNo, d.unknown, stripped)
	}

	text := d.text
	if d.kind == model.LineTranslated && comment != "" {
		text += "  " + comment
	}
	isField := d.member != nil && d.member.Kind == model.MemberField
	s.emit(d.kind, text, isField)
	if d.separate {
		s.out.Separate()
	}
	return nil
}

func (s *scanner) directive(code, stripped string) error {
	m := reDirective.FindStringSubmatch(code)
	if m == nil {
		return s.fallback(stripped, "preprocessor directive")
	}
	name, arg := m[1], strings.TrimSpace(m[2])
	indent := ""
	if s.state.InClass {
		indent = "  "
	}

	switch name {
	case "include":
		return s.include(code, stripped, indent)
	case "ifndef":
		if s.isGuard(arg) {
			s.state.PushConditional(model.Conditional{Directive: code, Suppressed: true})
			s.suppress()
			return nil
		}
		s.state.PushConditional(model.Conditional{Directive: code})
	case "ifdef":
		if arg == s.p.Opts.NamespaceMacro {
			s.state.PushConditional(model.Conditional{Directive: code, Suppressed: true})
			s.suppress()
			return nil
		}
		s.state.PushConditional(model.Conditional{Directive: code})
	case "if":
		s.state.PushConditional(model.Conditional{Directive: code})
	case "elif", "else":
	case "endif":
		if c, ok := s.state.PopConditional(); ok && c.Suppressed {
			s.suppress()
			return nil
		}
	case "define":
		if f := strings.Fields(arg); len(f) > 0 && s.isGuard(f[0]) {
			s.suppress()
			return nil
		}
		return s.fallback(stripped, "preprocessor directive")
	case "pragma":
		if arg == "once" {
			s.suppress()
			return nil
		}
		return s.fallback(stripped, "preprocessor directive")
	default:
		return s.fallback(stripped, "preprocessor directive")
	}

	s.emit(model.LinePassthrough, indent+"// "+stripped, false)
	return nil
}

func (s *scanner) include(code, stripped, indent string) error {
	m := reInclude.FindStringSubmatch(code)
	if m == nil {
		return s.fallback(stripped, "include")
	}
	if m[1] == "<" || s.state.InClass || systemHeaders[m[2]] {
		s.emit(model.LinePassthrough, indent+"// "+stripped, false)
		return nil
	}
	module := strings.TrimSuffix(m[2], filepath.Ext(m[2]))
	s.emit(model.LineTranslated, "// import from './"+module+"';  // TODO: specify imports", false)
	return nil
}

var systemHeaders = map[string]bool{
	"limits.h": true, "stddef.h": true, "string.h": true, "stdio.h": true, "stdlib.h": true,
}

func (s *scanner) fallback(stripped, pattern string) error {
	d := passthrough("// TODO: " + stripped)
	switch {
	case s.state.InClass:
		d.text = "  // " + stripped
	case s.mode == ModeClass:
		d.text = "// " + stripped
	}
	d.unknown = pattern
	return s.apply(d, "", stripped)
}

func (s *scanner) isGuard(id string) bool {
	return id == s.guard || strings.HasSuffix(id, "_INCLUDED")
}

func (s *scanner) preserve(raw, stripped string) {
	if !s.state.InClass {
		s.emit(model.LinePreserved, raw, false)
		return
	}
	if strings.HasPrefix(stripped, "*") {
		s.emit(model.LinePreserved, "   "+stripped, false)
		return
	}
	s.emit(model.LinePreserved, "  "+stripped, false)
}

func (s *scanner) emit(kind model.LineKind, text string, isField bool) {
	if s.state.InClass {
		if s.state.InFieldBlock && !isField && text != "" {
			s.out.Separate()
			s.state.InFieldBlock = false
		}
		if isField {
			s.state.InFieldBlock = true
		}
	}
	s.out.Emit(model.Line{Kind: kind, Text: text, Source: s.lineNo})
}

func (s *scanner) suppress() {
	s.res.Suppressed = append(s.res.Suppressed, s.lineNo)
}

// splitComment separates a trailing // or /* comment from code, ignoring
// comment markers inside string and character literals.
func splitComment(line string) (code, comment string) {
	var quote byte
	for i := 0; i < len(line)-1; i++ {
		ch := line[i]
		switch {
		case quote != 0:
			if ch == '\\' {
				i++
			} else if ch == quote {
				quote = 0
			}
		case ch == '"' || ch == '\'':
			quote = ch
		case ch == '/' && (line[i+1] == '/' || line[i+1] == '*'):
			return strings.TrimSpace(line[:i]), line[i:]
		}
	}
	return line, ""
}

// countBraces returns the net brace change of a code fragment, skipping
// string and character literals.
func countBraces(code string) int {
	var (
		n     int
		quote byte
	)
	for i := 0; i < len(code); i++ {
		ch := code[i]
		switch {
		case quote != 0:
			if ch == '\\' {
				i++
			} else if ch == quote {
				quote = 0
			}
		case ch == '"' || ch == '\'':
			quote = ch
		case ch == '{':
			n++
		case ch == '}':
			n--
		}
	}
	return n
}

func aliasName(exportLine string) string {
	rest := strings.TrimPrefix(exportLine, "export type ")
	if i := strings.Index(rest, " "); i >= 0 {
		return rest[:i]
	}
	return rest
}
