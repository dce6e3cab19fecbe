package projector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/tagcmd/internal/grammar"
	"github.com/ginjaninja78/tagcmd/internal/types"
)

func TestProject(t *testing.T) {
	tests := []struct {
		name string
		doc  types.Document
		want []types.Command
	}{
		{
			name: "empty",
			doc:  nil,
			want: nil,
		},
		{
			name: "self closing",
			doc:  types.Document{types.SelfClosing("ls")},
			want: []types.Command{{Program: "ls"}},
		},
		{
			name: "children become args",
			doc: types.Document{
				types.Container("git", types.SelfClosing("commit"), types.SelfClosing("amend")),
			},
			want: []types.Command{{Program: "git", Args: []string{"commit", "amend"}}},
		},
		{
			name: "grandchildren are dropped",
			doc: types.Document{
				types.Container("a", types.Container("b", types.SelfClosing("c"))),
			},
			want: []types.Command{{Program: "a", Args: []string{"b"}}},
		},
		{
			name: "order preserved",
			doc: types.Document{
				types.SelfClosing("one"),
				types.Container("two"),
				types.SelfClosing("three"),
			},
			want: []types.Command{{Program: "one"}, {Program: "two"}, {Program: "three"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Project(tt.doc))
		})
	}
}

func TestProject_EndToEnd(t *testing.T) {
	doc, err := grammar.ParseDocument("<vim/> <text.txt> </text.txt>")
	require.NoError(t, err)

	commands := Project(doc)
	assert.Equal(t, []types.Command{{Program: "vim"}, {Program: "text.txt"}}, commands)

	for _, cmd := range commands {
		assert.Empty(t, cmd.Args)
	}
}

func TestProject_Deterministic(t *testing.T) {
	doc, err := grammar.ParseDocument("<x> <y/> <z/> </x> <w/>")
	require.NoError(t, err)
	assert.Equal(t, Project(doc), Project(doc))
}

func TestProjectLine(t *testing.T) {
	doc, err := grammar.ParseDocument("<vim/> <text.txt/>")
	require.NoError(t, err)

	commands := ProjectLine(doc)
	require.Len(t, commands, 1)
	assert.Equal(t, "vim", commands[0].Program)
	assert.Equal(t, []string{"text.txt"}, commands[0].Args)
	assert.Equal(t, "vim text.txt", commands[0].String())

	assert.Nil(t, ProjectLine(nil))
}

func TestProjectMode(t *testing.T) {
	doc := types.Document{types.SelfClosing("a"), types.SelfClosing("b")}
	assert.Len(t, ProjectMode(doc, ModeElement), 2)
	assert.Len(t, ProjectMode(doc, ModeLine), 1)
	assert.Len(t, ProjectMode(doc, Mode("bogus")), 2)
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "", want: ModeElement},
		{in: "element", want: ModeElement},
		{in: " LINE ", want: ModeLine},
		{in: "tree", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
