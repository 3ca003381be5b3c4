package model

type MemberKind int

const (
	MemberInvalid     MemberKind = iota
	MemberField                  // name_: T
	MemberConstant               // static readonly name: T = v
	MemberMethod                 // name(params): R
	MemberConstructor            // constructor(params)
)

type Param struct {
	Name    string // TypeScript parameter name, synthesized when the source omits it
	Type    string // mapped TypeScript type
	RawType string
}

type Member struct {
	Kind       MemberKind
	Name       string
	Type       string // field type or method return type, already mapped
	RawType    string // the C++ spelling of Type
	Value      string // constant initializer
	Visibility Visibility
	Static     bool
	Params     []Param
	Line       int
}

type ClassDecl struct {
	Name       string   // "Vector", "Location"
	Keyword    string   // "class" or "struct"
	Bases      []string // access specifiers stripped; only Bases[0] is emitted
	TypeParams []string // from a preceding template<...> line
	Members    []*Member
	Line       int
}

// BaseName is the class name without any generic suffix; constructors are
// recognised by it.
func (c *ClassDecl) BaseName() string {
	for i, r := range c.Name {
		if r == '<' {
			return c.Name[:i]
		}
	}
	return c.Name
}

type LineKind int

const (
	LineInvalid     LineKind = iota
	LineTranslated           // a TypeScript declaration
	LinePreserved            // comment or blank line carried over as is
	LinePassthrough          // the source line wrapped in a comment for manual work
	LineSynthetic            // layout blank lines inserted by the emitter
)

func (k LineKind) String() string {
	switch k {
	case LineTranslated:
		return "translated"
	case LinePreserved:
		return "preserved"
	case LinePassthrough:
		return "passthrough"
	case LineSynthetic:
		return "synthetic"
	default:
		return "invalid"
	}
}

type Line struct {
	Kind   LineKind
	Text   string
	Source int // 1-based input line, 0 for synthetic lines
}

// Result is the outcome of converting one file.
type Result struct {
	File       string
	Lines      []Line
	Suppressed []int // input lines consumed as structural markers
	Aliases    []string
	Classes    []*ClassDecl
}

// Count returns how many emitted lines have the given kind.
func (r *Result) Count(kind LineKind) int {
	n := 0
	for _, l := range r.Lines {
		if l.Kind == kind {
			n++
		}
	}
	return n
}
