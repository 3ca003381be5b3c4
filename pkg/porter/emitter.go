package porter

import (
	"strings"

	"github.com/cmmoran/hdrport/internal/model"
)

// Emitter collects output lines in source order. The only layout it adds is a
// single blank line where Separate asked for one.
type Emitter struct {
	lines   []model.Line
	pending bool
}

func (e *Emitter) Emit(l model.Line) {
	if e.pending && !isBlank(l) && !e.lastIsBlank() && len(e.lines) > 0 {
		e.lines = append(e.lines, model.Line{Kind: model.LineSynthetic})
	}
	e.pending = false
	e.lines = append(e.lines, l)
}

// Separate requests one blank line before the next non-blank line. A blank
// line already in the output, or arriving next, satisfies the request.
func (e *Emitter) Separate() {
	e.pending = true
}

// Discard drops an outstanding Separate request.
func (e *Emitter) Discard() {
	e.pending = false
}

func (e *Emitter) Lines() []model.Line {
	return e.lines
}

// Render joins the lines and ends the text with a newline.
func (e *Emitter) Render() string {
	return Render(e.lines)
}

// Render joins lines with '\n' and appends a trailing newline.
func Render(lines []model.Line) string {
	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(l.Text)
	}
	b.WriteByte('\n')
	return b.String()
}

func (e *Emitter) lastIsBlank() bool {
	return len(e.lines) > 0 && isBlank(e.lines[len(e.lines)-1])
}

func isBlank(l model.Line) bool {
	return strings.TrimSpace(l.Text) == ""
}
