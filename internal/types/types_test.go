package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocument_Walk(t *testing.T) {
	doc := Document{
		Container("git", SelfClosing("commit"), Container("remote", SelfClosing("add"))),
		SelfClosing("ls"),
	}

	var visits []Visit
	complete := doc.Walk(func(v Visit) bool {
		visits = append(visits, v)
		return true
	})

	assert.True(t, complete)
	if assert.Len(t, visits, 5) {
		assert.Equal(t, "git", visits[0].Path)
		assert.Equal(t, 1, visits[0].Depth)
		assert.Equal(t, "git/commit", visits[1].Path)
		assert.Equal(t, "git/remote/add", visits[3].Path)
		assert.Equal(t, 3, visits[3].Depth)
		assert.Equal(t, 1, visits[3].Index)
		assert.Equal(t, "ls", visits[4].Path)
		assert.Equal(t, 2, visits[4].Index)
	}
}

func TestDocument_WalkStops(t *testing.T) {
	doc := Document{Container("a", SelfClosing("b"), SelfClosing("c")), SelfClosing("d")}

	var seen []string
	complete := doc.Walk(func(v Visit) bool {
		seen = append(seen, v.Element.Name)
		return v.Element.Name != "b"
	})

	assert.False(t, complete)
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestElement_Depth(t *testing.T) {
	assert.Equal(t, 1, SelfClosing("a").Depth())
	assert.Equal(t, 3, Container("a", Container("b", SelfClosing("c"))).Depth())
}

func TestCommand_JSONArgsNeverNull(t *testing.T) {
	data, err := Command{Program: "ls"}.MarshalJSON()
	assert.NoError(t, err)
	assert.JSONEq(t, `{"program":"ls","args":[]}`, string(data))
}
