package porter

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/cmmoran/hdrport/internal/model"
)

const typesHeader = `#ifndef Types_INCLUDED
#define Types_INCLUDED 1

#include <limits.h>
#include "Boolean.h"

#ifdef SP_NAMESPACE
namespace SP_NAMESPACE {
#endif

typedef unsigned Offset;
typedef unsigned Offset;
const int bufsize = 256;
const Boolean true = 1;
void doit(int x);

#ifdef SP_NAMESPACE
}
#endif

#endif /* not Types_INCLUDED */
`

const typesWant = `
// #include <limits.h>
// import from './Boolean';  // TODO: specify imports


export type Offset = number;
// typedef unsigned Offset;  // Duplicate, skipped
export const bufsize: number = 256;
// export const true: boolean = 1;  // Reserved word
// TODO: void doit(int x);


`

const locationHeader = `class SP_API Location : public Origin, private Other {
public:
  Location();
  Location(const Location &);
  ~Location();
  Boolean isValid() const;
  void clear();
  static const int maxDepth = 16;
  Index index() const { return index_; }
private:
  Ptr<Origin> origin_;
  Index index_;
  static Vector<Ptr<Origin> > cache_;
protected:
  void touch(const StringC &name, size_t n = 0);
  bool check() {
    if (x) {
      return true;
    }
    return false;
  }
};
`

const locationWant = `export class Location extends Origin {  // also derives from Other
  // public:
  constructor() { }

  constructor(arg0: Location) { }

  // ~Location();
  isValid(): boolean { throw new Error('Not implemented'); }

  clear(): void { }

  static readonly maxDepth: number = 16;
  // Index index() const { return index_; }
  // private:
  private origin_: Origin | null;
  private index_: number;
  private static cache_: (Origin | null)[];

  // protected:
  protected touch(name: StringC, n: number): void { }

  // bool check() {
  // if (x) {
  // return true;
  // }
  // return false;
  // }
}
`

const vectorHeader = `template<class T>
class Vector {
public:
  Vector();
  T &operator[](size_t i);
  size_t size() const;
private:
  T *ptr_;
};
`

const vectorWant = `export class Vector<T> {
  // public:
  constructor() { }

  // T &operator[](size_t i);  // -> get
  size(): number { throw new Error('Not implemented'); }

  // private:
  private ptr_: T | null;
}
`

func newTestPorter(t *testing.T, opts ...Option) *Porter {
	t.Helper()
	p, err := New(opts...)
	require.NoError(t, err)
	return p
}

func TestPorter_Convert(ttt *testing.T) {
	tests := []struct {
		name           string
		mode           Mode
		file           string
		in             string
		want           string
		wantSuppressed []int
	}{
		{
			name:           "simple mode types header",
			mode:           ModeSimple,
			file:           "include/Types.h",
			in:             typesHeader,
			want:           typesWant,
			wantSuppressed: []int{1, 2, 7, 8, 9, 17, 18, 19, 21},
		},
		{
			name: "class mode class body",
			mode: ModeClass,
			file: "include/Location.h",
			in:   locationHeader,
			want: locationWant,
		},
		{
			name:           "class mode template class",
			mode:           ModeClass,
			file:           "include/Vector.h",
			in:             vectorHeader,
			want:           vectorWant,
			wantSuppressed: []int{1},
		},
		{
			name: "trailing comments are kept",
			mode: ModeSimple,
			file: "Foo.h",
			in:   "typedef int Foo; // the foo\nconst int n = 2; /* two */\n",
			want: "export type Foo = number;  // the foo\nexport const n: number = 2;  /* two */\n",
		},
		{
			name: "class mode keeps file scope declarations",
			mode: ModeClass,
			file: "Foo.h",
			in:   "typedef int Foo;\nvoid doit(int x);\ntemplate<class T>\nvoid f(T);\n",
			want: "export type Foo = number;\n// void doit(int x);\n// template<class T>\n// void f(T);\n",
		},
		{
			name: "struct members default to public",
			mode: ModeClass,
			file: "Pair.h",
			in:   "struct Pair {\n  int first_;\n  int second_;\n  void swap();\n};\n",
			want: "export class Pair {\n  first_: number;\n  second_: number;\n\n  swap(): void { }\n}\n",
		},
		{
			name: "block comments",
			mode: ModeClass,
			file: "Foo.h",
			in:   "/*\n Copyright\n*/\nclass Foo {\n  /* a\n   * b\n   */\n  int n_;\n};\n",
			want: "/*\n Copyright\n*/\nexport class Foo {\n  /* a\n   * b\n   */\n  private n_: number;\n}\n",
		},
		{
			name: "conditionals are kept as comments",
			mode: ModeSimple,
			file: "Foo.h",
			in:   "#ifdef SP_MULTI_BYTE\ntypedef unsigned Char;\n#else\ntypedef unsigned char Char;\n#endif\n",
			want: "// #ifdef SP_MULTI_BYTE\nexport type Char = number;\n// #else\n// typedef unsigned char Char;  // Duplicate, skipped\n// #endif\n",
		},
		{
			name:           "pragma once",
			mode:           ModeSimple,
			file:           "Foo.h",
			in:             "#pragma once\ntypedef int Foo;\n",
			want:           "export type Foo = number;\n",
			wantSuppressed: []int{1},
		},
		{
			name: "declarator after class close",
			mode: ModeClass,
			file: "Foo.h",
			in:   "struct Foo {\n  int a_;\n} foo; // the one\n",
			want: "export class Foo {\n  a_: number;\n}  // foo;  // the one\n",
		},
		{
			name: "visibility marker with blank before colon",
			mode: ModeClass,
			file: "Foo.h",
			in:   "class Foo {\npublic :\n  int x_;\n};\n",
			want: "export class Foo {\n  // public :\n  x_: number;\n}\n",
		},
		{
			name: "two fields on one line are kept for manual work",
			mode: ModeClass,
			file: "Foo.h",
			in:   "class Foo {\n  int a_, b_;\n};\n",
			want: "export class Foo {\n  // int a_, b_;\n}\n",
		},
		{
			name:           "struct closing brace inside namespace",
			mode:           ModeSimple,
			file:           "Foo.h",
			in:             "namespace Sp {\nstruct Foo {\n};\n}\n",
			want:           "// TODO: struct Foo {\n// TODO: };\n",
			wantSuppressed: []int{1, 4},
		},
	}
	for _, tt := range tests {
		ttt.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := newTestPorter(t)
			res, err := p.Convert(tt.mode, tt.file, tt.in)
			require.NoError(t, err)

			got := Render(res.Lines)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Logf("diff: %s", diff)
			}
			require.Equal(t, tt.want, got)
			require.Equal(t, tt.wantSuppressed, res.Suppressed)
		})
	}
}

// Every input line is emitted once or suppressed once.
func TestPorter_LineAccounting(ttt *testing.T) {
	for name, in := range map[string]string{
		"Types.h":    typesHeader,
		"Location.h": locationHeader,
		"Vector.h":   vectorHeader,
	} {
		for _, mode := range []Mode{ModeSimple, ModeClass} {
			ttt.Run(name+"/"+string(mode), func(t *testing.T) {
				p := newTestPorter(t)
				res, err := p.Convert(mode, name, in)
				require.NoError(t, err)

				seen := map[int]int{}
				for _, l := range res.Lines {
					if l.Kind == model.LineSynthetic {
						require.Zero(t, l.Source)
						continue
					}
					seen[l.Source]++
				}
				for _, n := range res.Suppressed {
					seen[n]++
				}

				total := strings.Count(in, "\n")
				require.Len(t, seen, total)
				for n := 1; n <= total; n++ {
					require.Equalf(t, 1, seen[n], "line %d", n)
				}
			})
		}
	}
}

func TestPorter_Declarations(t *testing.T) {
	p := newTestPorter(t)
	res, err := p.ConvertClass("include/Location.h", locationHeader)
	require.NoError(t, err)

	require.Len(t, res.Classes, 1)
	loc := res.Classes[0]
	require.Equal(t, "Location", loc.Name)
	require.Equal(t, []string{"Origin", "Other"}, loc.Bases)
	require.Equal(t, 1, loc.Line)

	var kinds []model.MemberKind
	for _, m := range loc.Members {
		kinds = append(kinds, m.Kind)
	}
	require.Equal(t, []model.MemberKind{
		model.MemberConstructor, model.MemberConstructor, model.MemberMethod, model.MemberMethod,
		model.MemberConstant, model.MemberField, model.MemberField, model.MemberField, model.MemberMethod,
	}, kinds)
	require.Equal(t, 11, loc.Members[5].Line)
	require.Equal(t, model.VisibilityProtected, loc.Members[8].Visibility)

	res, err = p.ConvertSimple("include/Types.h", typesHeader)
	require.NoError(t, err)
	require.Equal(t, []string{"Offset"}, res.Aliases)
	require.Empty(t, res.Classes)
}

func TestPorter_Strict(ttt *testing.T) {
	tests := []struct {
		name     string
		mode     Mode
		in       string
		wantLine int
		pattern  string
	}{
		{name: "function at file scope", mode: ModeSimple, in: "typedef int Foo;\nvoid doit(int x);\n", wantLine: 2, pattern: "declaration"},
		{name: "unknown member", mode: ModeClass, in: "class Foo {\n  DECLARE(Foo);\n};\n", wantLine: 2, pattern: "class member"},
		{name: "unknown directive", mode: ModeSimple, in: "#define MAX 4\n", wantLine: 1, pattern: "preprocessor directive"},
	}
	for _, tt := range tests {
		ttt.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := newTestPorter(t, WithStrict())
			_, err := p.Convert(tt.mode, "Foo.h", tt.in)
			require.Error(t, err)
			require.True(t, IsUnknownPattern(err))

			var upe *UnknownPatternError
			require.ErrorAs(t, err, &upe)
			require.Equal(t, "Foo.h", upe.File)
			require.Equal(t, tt.wantLine, upe.Line)
			require.Equal(t, tt.pattern, upe.Pattern)
		})
	}
}

func TestPorter_LenientKeepsUnknownLines(t *testing.T) {
	p := newTestPorter(t)
	res, err := p.ConvertSimple("Foo.h", "#define MAX 4\n")
	require.NoError(t, err)
	require.Equal(t, "// TODO: #define MAX 4\n", Render(res.Lines))
	require.Equal(t, 1, res.Count(model.LinePassthrough))
}

func TestPorter_NamespaceMacro(t *testing.T) {
	in := "#ifdef OPENJADE_NAMESPACE\nnamespace OPENJADE_NAMESPACE {\n#endif\ntypedef int Foo;\n#ifdef OPENJADE_NAMESPACE\n}\n#endif\n"

	p := newTestPorter(t, WithNamespaceMacro("OPENJADE_NAMESPACE"))
	res, err := p.ConvertSimple("Foo.h", in)
	require.NoError(t, err)
	require.Equal(t, "export type Foo = number;\n", Render(res.Lines))
	require.Equal(t, []int{1, 2, 3, 5, 6, 7}, res.Suppressed)

	// Under the default macro the wrapper conditionals stay visible.
	res, err = newTestPorter(t).ConvertSimple("Foo.h", in)
	require.NoError(t, err)
	require.Equal(t, "// #ifdef OPENJADE_NAMESPACE\n// #endif\nexport type Foo = number;\n// #ifdef OPENJADE_NAMESPACE\n// #endif\n", Render(res.Lines))
}

func TestPorter_TypeMapping(t *testing.T) {
	p := newTestPorter(t, WithTypeMapping("Unsigned8", "number"))
	res, err := p.ConvertSimple("Foo.h", "typedef Unsigned8 Byte;\n")
	require.NoError(t, err)
	require.Equal(t, "export type Byte = number;\n", Render(res.Lines))
}

func TestSplitComment(ttt *testing.T) {
	tests := []struct {
		in, code, comment string
	}{
		{in: "int n_; // count", code: "int n_;", comment: "// count"},
		{in: "int n_; /* count */", code: "int n_;", comment: "/* count */"},
		{in: `const char *s = "a//b";`, code: `const char *s = "a//b";`},
		{in: `const char c = '/'; // slash`, code: `const char c = '/';`, comment: "// slash"},
	}
	for _, tt := range tests {
		ttt.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			code, comment := splitComment(tt.in)
			require.Equal(t, tt.code, code)
			require.Equal(t, tt.comment, comment)
		})
	}
}

func TestCountBraces(t *testing.T) {
	require.Equal(t, 1, countBraces("bool check() {"))
	require.Equal(t, 0, countBraces("Index index() const { return index_; }"))
	require.Equal(t, -1, countBraces("};"))
	require.Equal(t, 0, countBraces(`const char *s = "{";`))
}
