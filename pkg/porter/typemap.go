package porter

import (
	"sort"
	"strings"
)

// primitiveTypes maps C++ scalar types and the OpenSP scalar typedefs onto
// TypeScript. Every numeric or character type becomes number.
var primitiveTypes = map[string]string{
	"char":               "number",
	"signed char":        "number",
	"unsigned char":      "number",
	"wchar_t":            "number",
	"short":              "number",
	"short int":          "number",
	"unsigned short":     "number",
	"int":                "number",
	"unsigned int":       "number",
	"long":               "number",
	"long int":           "number",
	"unsigned long":      "number",
	"long long":          "number",
	"unsigned long long": "number",
	"unsigned":           "number",
	"signed":             "number",
	"size_t":             "number",
	"ssize_t":            "number",
	"int8_t":             "number",
	"int16_t":            "number",
	"int32_t":            "number",
	"int64_t":            "number",
	"uint8_t":            "number",
	"uint16_t":           "number",
	"uint32_t":           "number",
	"uint64_t":           "number",
	"float":              "number",
	"double":             "number",
	"long double":        "number",
	"Unsigned16":         "number",
	"Signed16":           "number",
	"Unsigned32":         "number",
	"Signed32":           "number",
	"Char":               "number", // 32-bit code point
	"WideChar":           "number",
	"UnivChar":           "number",
	"SyntaxChar":         "number",
	"Xchar":              "number",
	"Number":             "number",
	"Offset":             "number",
	"Index":              "number",
	"CharClassIndex":     "number",
	"Token":              "number",
	"EquivCode":          "number",
	"bool":               "boolean",
	"Boolean":            "boolean",
	"PackedBoolean":      "boolean",
	"void":               "void",
	"std::string":        "string",
	"std::wstring":       "string",
}

// targetTypes are already TypeScript; mapping them again is the identity.
var targetTypes = map[string]bool{
	"number":  true,
	"boolean": true,
	"string":  true,
	"void":    true,
	"null":    true,
	"any":     true,
	"unknown": true,
}

type wrapperRule struct {
	arity  int
	render func(args []string) string
}

func arrayOf(args []string) string    { return arrayType(args[0]) }
func nullableOf(args []string) string { return nullable(args[0]) }
func ownedBy(args []string) string    { return args[0] }
func mapOf(args []string) string      { return "Map<" + args[0] + ", " + args[1] + ">" }

// wrapperRules rewrite container and smart pointer templates. Arguments are
// resolved before a rule renders, so nested wrappers resolve fully.
var wrapperRules = map[string]wrapperRule{
	"Vector":             {1, arrayOf},
	"NCVector":           {1, arrayOf},
	"IList":              {1, arrayOf},
	"std::vector":        {1, arrayOf},
	"std::list":          {1, arrayOf},
	"std::deque":         {1, arrayOf},
	"IListIter":          {1, func(a []string) string { return "Iterator<" + a[0] + ">" }},
	"Ptr":                {1, nullableOf},
	"std::unique_ptr":    {1, nullableOf},
	"std::shared_ptr":    {1, nullableOf},
	"std::optional":      {1, nullableOf},
	"ConstPtr":           {1, func(a []string) string { return "Readonly<" + nullable(a[0]) + ">" }},
	"Owner":              {1, ownedBy},
	"CopyOwner":          {1, ownedBy},
	"HashTable":          {2, mapOf},
	"std::map":           {2, mapOf},
	"std::unordered_map": {2, mapOf},
	"HashTableIter": {2, func(a []string) string {
		return "IterableIterator<[" + a[0] + ", " + a[1] + "]>"
	}},
	"std::set":           {1, func(a []string) string { return "Set<" + a[0] + ">" }},
	"std::unordered_set": {1, func(a []string) string { return "Set<" + a[0] + ">" }},
	"std::pair":          {2, func(a []string) string { return "[" + a[0] + ", " + a[1] + "]" }},
}

// TypeMapper turns C++ type expressions into TypeScript type expressions.
// It is stateless after construction and safe for concurrent use.
type TypeMapper struct {
	primitives map[string]string
}

// NewTypeMapper returns a mapper over the built-in tables. Entries in extra
// are added to the primitive table and win over built-in entries.
func NewTypeMapper(extra map[string]string) *TypeMapper {
	prims := make(map[string]string, len(primitiveTypes)+len(extra))
	for k, v := range primitiveTypes {
		prims[k] = v
	}
	for k, v := range extra {
		prims[normalizeSpace(k)] = v
	}
	return &TypeMapper{primitives: prims}
}

// Map resolves a C++ type expression. It never fails: a name found in no
// table is returned unchanged.
func (m *TypeMapper) Map(cppType string) string {
	t, isPtr := stripQualifiers(cppType)
	if t == "" {
		return ""
	}

	if isPtr && t == "char" {
		return "string"
	}

	ts := m.resolve(t)
	if isPtr {
		ts = nullable(ts)
	}
	return ts
}

// Unknown lists the leaf type names of cppType that no table knows, sorted
// and without duplicates. The scanning loop never calls it; analyze uses it
// to report types that need a declaration elsewhere.
func (m *TypeMapper) Unknown(cppType string) []string {
	t, _ := stripQualifiers(cppType)
	seen := map[string]bool{}
	m.walkLeaves(t, func(leaf string) {
		if _, ok := m.primitives[leaf]; ok {
			return
		}
		if targetTypes[leaf] {
			return
		}
		seen[leaf] = true
	})
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (m *TypeMapper) resolve(t string) string {
	name, args, ok := splitGeneric(t)
	if !ok {
		if ts, found := m.primitives[t]; found {
			return ts
		}
		return t
	}

	resolved := make([]string, len(args))
	for i, a := range args {
		resolved[i] = m.Map(a)
	}
	if rule, found := wrapperRules[name]; found && rule.arity == len(resolved) {
		return rule.render(resolved)
	}
	return name + "<" + strings.Join(resolved, ", ") + ">"
}

func (m *TypeMapper) walkLeaves(t string, visit func(string)) {
	name, args, ok := splitGeneric(t)
	if !ok {
		if t != "" && !strings.ContainsAny(t, "|[]() ") || m.isMultiWordPrimitive(t) {
			visit(t)
		}
		return
	}
	if _, found := wrapperRules[name]; !found {
		visit(name)
	}
	for _, a := range args {
		inner, _ := stripQualifiers(a)
		m.walkLeaves(inner, visit)
	}
}

func (m *TypeMapper) isMultiWordPrimitive(t string) bool {
	_, ok := m.primitives[t]
	return ok
}

// stripQualifiers drops const/volatile, references and top-level pointer
// markers. isPtr reports whether a top-level '*' was present.
func stripQualifiers(t string) (string, bool) {
	var (
		b     strings.Builder
		depth int
		isPtr bool
	)
	for _, r := range t {
		switch r {
		case '<', '(', '[':
			depth++
		case '>', ')', ']':
			depth--
		case '&':
			continue
		case '*':
			if depth == 0 {
				isPtr = true
				b.WriteRune(' ')
				continue
			}
		}
		b.WriteRune(r)
	}

	fields := strings.Fields(b.String())
	kept := fields[:0]
	for _, f := range fields {
		switch f {
		case "const", "volatile", "struct", "class", "typename":
			continue
		}
		kept = append(kept, f)
	}
	return tidyBrackets(strings.Join(kept, " ")), isPtr
}

// splitGeneric splits "Name<A, B>" into its name and top-level arguments.
// ok is false unless the whole expression is a single template instance.
func splitGeneric(t string) (name string, args []string, ok bool) {
	open := strings.IndexByte(t, '<')
	if open <= 0 || !strings.HasSuffix(t, ">") {
		return "", nil, false
	}
	if closeAt := matchingClose(t, open); closeAt != len(t)-1 {
		return "", nil, false
	}
	name = strings.TrimSpace(t[:open])
	for _, a := range splitTopLevel(t[open+1:len(t)-1], ',') {
		if a = strings.TrimSpace(a); a != "" {
			args = append(args, a)
		}
	}
	return name, args, len(args) > 0
}

func matchingClose(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '<', '(', '[', '{':
			depth++
		case '>', ')', ']', '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTopLevel splits s on sep, ignoring separators nested in <>, (), []
// or {}.
func splitTopLevel(s string, sep byte) []string {
	var (
		parts []string
		depth int
		start int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(', '[', '{':
			depth++
		case '>', ')', ']', '}':
			if depth > 0 {
				depth--
			}
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

func nullable(t string) string {
	if strings.HasSuffix(t, "| null") {
		return t
	}
	return t + " | null"
}

func arrayType(elem string) string {
	if len(splitTopLevel(elem, '|')) > 1 {
		return "(" + elem + ")[]"
	}
	return elem + "[]"
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// tidyBrackets removes the padding C++ allows inside template brackets so
// "Vector< Foo >" and "Vector<Foo>" resolve the same.
func tidyBrackets(s string) string {
	r := strings.NewReplacer("< ", "<", " >", ">", " ,", ",")
	for {
		next := r.Replace(s)
		if next == s {
			return s
		}
		s = next
	}
}
