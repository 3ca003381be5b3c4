package porter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cmmoran/hdrport/internal/model"
)

func line(text string) model.Line {
	return model.Line{Kind: model.LineTranslated, Text: text, Source: 1}
}

func TestEmitter_Separate(ttt *testing.T) {
	tests := []struct {
		name string
		run  func(e *Emitter)
		want string
	}{
		{
			name: "inserts one blank",
			run: func(e *Emitter) {
				e.Emit(line("a"))
				e.Separate()
				e.Emit(line("b"))
			},
			want: "a\n\nb\n",
		},
		{
			name: "blank already present",
			run: func(e *Emitter) {
				e.Emit(line("a"))
				e.Separate()
				e.Emit(line(""))
				e.Emit(line("b"))
			},
			want: "a\n\nb\n",
		},
		{
			name: "repeated requests collapse",
			run: func(e *Emitter) {
				e.Emit(line("a"))
				e.Separate()
				e.Separate()
				e.Emit(line("b"))
			},
			want: "a\n\nb\n",
		},
		{
			name: "discarded",
			run: func(e *Emitter) {
				e.Emit(line("a"))
				e.Separate()
				e.Discard()
				e.Emit(line("}"))
			},
			want: "a\n}\n",
		},
		{
			name: "nothing before",
			run: func(e *Emitter) {
				e.Separate()
				e.Emit(line("a"))
			},
			want: "a\n",
		},
	}
	for _, tt := range tests {
		ttt.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := &Emitter{}
			tt.run(e)
			require.Equal(t, tt.want, e.Render())
		})
	}
}

func TestEmitter_SyntheticLines(t *testing.T) {
	e := &Emitter{}
	e.Emit(line("a"))
	e.Separate()
	e.Emit(line("b"))

	lines := e.Lines()
	require.Len(t, lines, 3)
	require.Equal(t, model.LineSynthetic, lines[1].Kind)
	require.Zero(t, lines[1].Source)
}
