package model

import "strings"

type Visibility int

const (
	VisibilityPrivate Visibility = iota
	VisibilityPublic
	VisibilityProtected
)

func (v Visibility) String() string {
	switch v {
	case VisibilityPublic:
		return "public"
	case VisibilityProtected:
		return "protected"
	default:
		return "private"
	}
}

// Modifier is the TypeScript access prefix, empty for public members.
func (v Visibility) Modifier() string {
	switch v {
	case VisibilityPublic:
		return ""
	case VisibilityProtected:
		return "protected "
	default:
		return "private "
	}
}

// ParseVisibility accepts "public:", "private:" and "protected:" markers,
// with or without blanks before the colon.
func ParseVisibility(marker string) (Visibility, bool) {
	switch strings.Join(strings.Fields(marker), "") {
	case "public:":
		return VisibilityPublic, true
	case "private:":
		return VisibilityPrivate, true
	case "protected:":
		return VisibilityProtected, true
	}
	return VisibilityPrivate, false
}

type Conditional struct {
	Directive  string
	Suppressed bool // header guard or namespace wrapper; its #endif is dropped too
}

// ScanState is the per-file bookkeeping of the scanner. It is created when a
// file starts and thrown away when it ends.
type ScanState struct {
	// Nesting --------------------------------------------------------------
	Visibility     Visibility
	Depth          int // brace depth inside the current class body
	InClass        bool
	NamespaceDepth int
	ScopeDepth     int // braces opened at file scope outside class bodies
	Conditionals   []Conditional
	InBlockComment bool

	// Pending --------------------------------------------------------------
	PendingTemplate *string // parameter list of a template<...> line
	Class           *ClassDecl

	// Layout ---------------------------------------------------------------
	InFieldBlock bool
}

func (s *ScanState) InNamespace() bool {
	return s.NamespaceDepth > 0
}

func (s *ScanState) PushConditional(c Conditional) {
	s.Conditionals = append(s.Conditionals, c)
}

// PopConditional removes the innermost conditional. ok is false when an
// #endif has no opening directive.
func (s *ScanState) PopConditional() (c Conditional, ok bool) {
	if len(s.Conditionals) == 0 {
		return Conditional{}, false
	}
	c = s.Conditionals[len(s.Conditionals)-1]
	s.Conditionals = s.Conditionals[:len(s.Conditionals)-1]
	return c, true
}
