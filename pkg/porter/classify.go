package porter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cmmoran/hdrport/internal/model"
)

var (
	reTypedef   = regexp.MustCompile(`^typedef\s+(.+?[\s*&])(\w+)\s*;$`)
	reConst     = regexp.MustCompile(`^(static\s+)?const\s+([^=()]+?[\s*&])(\w+)\s*=\s*(.+?)\s*;$`)
	reField     = regexp.MustCompile(`^(static\s+)?(?:mutable\s+)?([^()=;{}]+?[\s*&])(\w+_)\s*;$`)
	reMethod    = regexp.MustCompile(`^([^()]*?[\s*&])?(~?\w+)\s*\(([^)]*)\)\s*(const)?\s*(?:override\s*)?(?:=\s*(0|default|delete)\s*)?(?::\s*[^{;]*)?(\{.*\}|\{|;)$`)
	reOperator  = regexp.MustCompile(`\boperator\s*(\(\)|\[\]|[^\w\s(]+|\w[\w\s:<>*&]*?)\s*\(.*(?:\}|\{|;)$`)
	reTemplate  = regexp.MustCompile(`^template\s*<(.*)>\s*(.*)$`)
	reClassHead = regexp.MustCompile(`^(class|struct)\s+(\w+)(?:\s*:\s*(.+?))?\s*\{$`)
	reNamespace = regexp.MustCompile(`^namespace(?:\s+\w+)?\s*\{$`)
	reInclude   = regexp.MustCompile(`^#\s*include\s+([<"])(.+?)[>"]`)
	reDirective = regexp.MustCompile(`^#\s*(\w+)\s*(.*)$`)
	reParamName = regexp.MustCompile(`^(\w+)(\[\w*\])?$`)
)

// operatorMethods names a method for each overloadable operator. Operator
// lines are always passed through; the name is only offered as a hint.
var operatorMethods = map[string]string{
	"operator==": "equals",
	"operator!=": "notEquals",
	"operator<":  "lessThan",
	"operator>":  "greaterThan",
	"operator<=": "lessOrEqual",
	"operator>=": "greaterOrEqual",
	"operator[]": "get",
	"operator()": "invoke",
	"operator*":  "deref",
	"operator++": "next",
	"operator+=": "append",
	"operator=":  "",
}

// OperatorMethod returns the method name suggested for an operator
// ("operator==" gives "equals"). ok is false for operators without one.
func OperatorMethod(op string) (string, bool) {
	name, ok := operatorMethods[strings.ReplaceAll(op, " ", "")]
	return name, ok && name != ""
}

// reservedNames may not be declared as constants in TypeScript.
var reservedNames = map[string]bool{"true": true, "false": true}

// decision is what the classifier chose for one line.
type decision struct {
	kind     model.LineKind
	text     string
	member   *model.Member
	separate bool   // ask the emitter for a blank line after this one
	unknown  string // set when no shape matched
}

func translated(text string) decision  { return decision{kind: model.LineTranslated, text: text} }
func passthrough(text string) decision { return decision{kind: model.LinePassthrough, text: text} }

type classifier struct {
	mapper    *TypeMapper
	apiMacros map[string]bool
}

func newClassifier(mapper *TypeMapper, apiMacros []string) *classifier {
	c := &classifier{mapper: mapper, apiMacros: map[string]bool{}}
	for _, m := range apiMacros {
		c.apiMacros[m] = true
	}
	return c
}

// outside classifies a line at file scope: type aliases and constants are
// translated, anything else falls back to a comment with fallbackPrefix.
func (c *classifier) outside(code, stripped string, aliases map[string]bool, fallbackPrefix string) decision {
	if m := reTypedef.FindStringSubmatch(code); m != nil {
		name := m[2]
		if aliases[name] {
			return passthrough("// " + stripped + "  // Duplicate, skipped")
		}
		aliases[name] = true
		return translated(fmt.Sprintf("export type %s = %s;", name, c.mapper.Map(m[1])))
	}

	if m := reConst.FindStringSubmatch(code); m != nil {
		ts, name, value := c.mapper.Map(m[2]), m[3], m[4]
		if reservedNames[name] {
			return passthrough(fmt.Sprintf("// export const %s: %s = %s;  // Reserved word", name, ts, value))
		}
		return translated(fmt.Sprintf("export const %s: %s = %s;", name, ts, value))
	}

	d := passthrough(fallbackPrefix + stripped)
	d.unknown = "declaration"
	return d
}

// classBody classifies a line at depth one of a class body.
func (c *classifier) classBody(st *model.ScanState, code, stripped string) decision {
	if vis, ok := model.ParseVisibility(code); ok {
		st.Visibility = vis
		return translated("  // " + code)
	}

	// TypeScript classes cannot hold type aliases.
	if reTypedef.MatchString(code) {
		return passthrough("  // " + stripped)
	}

	vis := st.Visibility
	if m := reConst.FindStringSubmatch(code); m != nil {
		mem := &model.Member{
			Kind: model.MemberConstant, Name: m[3], RawType: strings.TrimSpace(m[2]),
			Type: c.mapper.Map(m[2]), Value: m[4], Visibility: vis, Static: true,
		}
		d := translated(fmt.Sprintf("  %sstatic readonly %s: %s = %s;", vis.Modifier(), mem.Name, mem.Type, mem.Value))
		d.member = mem
		return d
	}

	// "int a_, b_;" declares two fields; it is left for manual work.
	if m := reField.FindStringSubmatch(code); m != nil && !isStatementWord(m[2]) && len(splitTopLevel(m[2], ',')) == 1 {
		mem := &model.Member{
			Kind: model.MemberField, Name: m[3], RawType: strings.TrimSpace(m[2]),
			Type: c.mapper.Map(m[2]), Visibility: vis, Static: m[1] != "",
		}
		d := translated(fmt.Sprintf("  %s%s%s: %s;", vis.Modifier(), staticPrefix(mem.Static), mem.Name, mem.Type))
		d.member = mem
		return d
	}

	if d, ok := c.method(st, code, stripped); ok {
		return d
	}

	d := passthrough("  // " + stripped)
	d.unknown = "class member"
	return d
}

// method handles destructors, constructors, operators and regular methods.
func (c *classifier) method(st *model.ScanState, code, stripped string) (decision, bool) {
	if m := reOperator.FindStringSubmatch(code); m != nil {
		d := passthrough("  // " + stripped)
		if name, ok := OperatorMethod("operator" + m[1]); ok {
			d.text += "  // -> " + name
		}
		return d, true
	}

	m := reMethod.FindStringSubmatch(code)
	if m == nil {
		return decision{}, false
	}
	prefix, name, rawParams, special, body := m[1], m[2], m[3], m[5], m[6]
	hasBody := body != ";"

	if strings.HasPrefix(name, "~") || special == "delete" {
		return passthrough("  // " + stripped), true
	}

	ret, static, friend := c.returnType(prefix)
	if friend {
		return passthrough("  // " + stripped), true
	}

	vis := st.Visibility
	if st.Class != nil && name == st.Class.BaseName() && ret == "" {
		if hasBody {
			return passthrough("  // " + stripped), true
		}
		params := c.params(rawParams)
		d := translated(fmt.Sprintf("  %sconstructor(%s) { }", vis.Modifier(), joinParams(params)))
		d.member = &model.Member{Kind: model.MemberConstructor, Name: name, Visibility: vis, Params: params}
		d.separate = true
		return d, true
	}

	if ret == "" {
		// Macro invocations look like bodiless calls; they are not methods.
		return decision{}, false
	}
	if hasBody {
		return passthrough("  // " + stripped), true
	}

	params := c.params(rawParams)
	ts := c.mapper.Map(ret)
	stub := "{ throw new Error('Not implemented'); }"
	if ts == "void" {
		stub = "{ }"
	}
	d := translated(fmt.Sprintf("  %s%s%s(%s): %s %s", vis.Modifier(), staticPrefix(static), name, joinParams(params), ts, stub))
	d.member = &model.Member{
		Kind: model.MemberMethod, Name: name, RawType: ret, Type: ts,
		Visibility: vis, Static: static, Params: params,
	}
	d.separate = true
	return d, true
}

// returnType strips storage and export specifiers from a method prefix.
func (c *classifier) returnType(prefix string) (ret string, static, friend bool) {
	var kept []string
	for _, f := range strings.Fields(prefix) {
		switch {
		case f == "static":
			static = true
		case f == "friend":
			friend = true
		case f == "virtual", f == "inline", f == "explicit", f == "constexpr", c.apiMacros[f]:
		default:
			kept = append(kept, f)
		}
	}
	return strings.TrimSpace(strings.Join(kept, " ")), static, friend
}

// params splits a parameter list on top-level commas and reduces each entry
// to a name and a mapped type.
func (c *classifier) params(raw string) []model.Param {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "void" {
		return nil
	}

	var out []model.Param
	for i, p := range splitTopLevel(raw, ',') {
		p = strings.TrimSpace(p)
		if eq := topLevelIndex(p, '='); eq >= 0 {
			p = strings.TrimSpace(p[:eq])
		}
		if p == "..." {
			out = append(out, model.Param{Name: "...args", Type: "any[]", RawType: p})
			continue
		}

		spaced := strings.NewReplacer("*", " * ", "&", " & ").Replace(p)
		fields := strings.Fields(spaced)
		last := fields[len(fields)-1]
		typeFields := 0
		for _, f := range fields[:len(fields)-1] {
			if f != "const" && f != "volatile" && f != "*" && f != "&" {
				typeFields++
			}
		}

		nm := reParamName.FindStringSubmatch(last)
		if nm == nil || typeFields == 0 || c.isTypeWord(nm[1]) {
			out = append(out, model.Param{Name: fmt.Sprintf("arg%d", i), Type: c.mapper.Map(p), RawType: p})
			continue
		}

		rawType := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(spaced), last))
		ts := c.mapper.Map(rawType)
		if nm[2] != "" {
			ts = arrayType(ts)
		}
		out = append(out, model.Param{Name: nm[1], Type: ts, RawType: rawType})
	}
	return out
}

func (c *classifier) isTypeWord(w string) bool {
	if _, ok := c.mapper.primitives[w]; ok {
		return true
	}
	switch w {
	case "const", "volatile", "unsigned", "signed", "long", "short":
		return true
	}
	return false
}

// classHead recognises a class or struct opening line, with or without a
// template<...> prefix on the same line.
func (c *classifier) classHead(code string) (*model.ClassDecl, bool) {
	var typeParams []string
	if m := reTemplate.FindStringSubmatch(code); m != nil {
		typeParams, code = templateParams(m[1]), m[2]
	}

	fields := strings.Fields(code)
	kept := fields[:0]
	for _, f := range fields {
		if !c.apiMacros[f] {
			kept = append(kept, f)
		}
	}
	m := reClassHead.FindStringSubmatch(strings.Join(kept, " "))
	if m == nil {
		return nil, false
	}

	decl := &model.ClassDecl{Keyword: m[1], Name: m[2], TypeParams: typeParams}
	if m[3] != "" {
		for _, base := range splitTopLevel(m[3], ',') {
			words := strings.Fields(base)
			for len(words) > 1 && isAccessWord(words[0]) {
				words = words[1:]
			}
			if len(words) > 0 {
				decl.Bases = append(decl.Bases, strings.Join(words, " "))
			}
		}
	}
	return decl, true
}

// templateParams turns "class K, typename V = int" into [K V].
func templateParams(list string) []string {
	var out []string
	for _, p := range splitTopLevel(list, ',') {
		if eq := topLevelIndex(p, '='); eq >= 0 {
			p = p[:eq]
		}
		if words := strings.Fields(p); len(words) > 0 {
			out = append(out, words[len(words)-1])
		}
	}
	return out
}

func joinParams(params []model.Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.Name + ": " + p.Type
	}
	return strings.Join(parts, ", ")
}

func staticPrefix(static bool) string {
	if static {
		return "static "
	}
	return ""
}

func isAccessWord(w string) bool {
	return w == "public" || w == "private" || w == "protected" || w == "virtual"
}

// isStatementWord rejects "return x_;" style statements that look like fields.
func isStatementWord(typ string) bool {
	switch strings.TrimSpace(typ) {
	case "return", "delete", "throw", "goto", "case", "using", "friend", "typedef":
		return true
	}
	return false
}

func topLevelIndex(s string, b byte) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(', '[', '{':
			depth++
		case '>', ')', ']', '}':
			if depth > 0 {
				depth--
			}
		case b:
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
