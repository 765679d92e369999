package idalign

import (
	"errors"
	"testing"

	"github.com/abhisek/coursesync/internal/content"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type node struct {
	id       string
	children []*node
}

func elements(ns []*node) []Element {
	out := make([]Element, len(ns))
	for i, n := range ns {
		n := n
		out[i] = Element{ID: n.id, Assign: func(id string) { n.id = id }, Children: elements(n.children)}
	}
	return out
}

func remote(ids ...string) []Element {
	out := make([]Element, len(ids))
	for i, id := range ids {
		out[i] = Element{ID: id}
	}
	return out
}

func TestAlignPositional(t *testing.T) {
	local := []*node{{id: "A"}, {id: "B"}, {id: "C"}}
	els := elements(local)

	m, err := Align(els, remote("9", "10", "11"))
	require.NoError(t, err)
	assert.Equal(t, Mapping{"A": "9", "B": "10", "C": "11"}, m)
	assert.Equal(t, "9", local[0].id)
	assert.Equal(t, "10", local[1].id)
	assert.Equal(t, "11", local[2].id)
	assert.True(t, Changed(m, els))
}

func TestAlignCountMismatchAssignsNothing(t *testing.T) {
	local := []*node{{id: "A"}, {id: "B"}, {id: "C"}}

	m, err := Align(elements(local), remote("9", "10"))
	require.Error(t, err)
	assert.Nil(t, m)
	assert.True(t, errors.Is(err, content.ErrConflict))

	var cm *CountMismatchError
	require.True(t, errors.As(err, &cm))
	assert.Equal(t, 3, cm.Local)
	assert.Equal(t, 2, cm.Remote)
	assert.Equal(t, "A", local[0].id)
}

func TestAlignNestedMismatchAssignsNothing(t *testing.T) {
	local := []*node{
		{id: "c1", children: []*node{{id: "r1"}, {id: "r2"}}},
		{id: "c2", children: []*node{{id: "r3"}}},
	}
	rem := []Element{
		{ID: "10", Children: remote("11", "12")},
		{ID: "20", Children: remote("21", "22")},
	}

	_, err := Align(elements(local), rem)
	var cm *CountMismatchError
	require.True(t, errors.As(err, &cm))
	assert.Equal(t, "elements[1].children", cm.Path)
	assert.Equal(t, "c1", local[0].id)
	assert.Equal(t, "r1", local[0].children[0].id)
}

func TestAlignNewElements(t *testing.T) {
	local := []*node{{children: []*node{{}, {}}}}
	els := elements(local)
	rem := []Element{{ID: "5", Children: remote("6", "7")}}

	m, err := Align(els, rem)
	require.NoError(t, err)
	assert.Empty(t, m)
	assert.True(t, Changed(m, els))
	assert.Equal(t, "5", local[0].id)
	assert.Equal(t, "7", local[0].children[1].id)
}

func TestAlignUnchanged(t *testing.T) {
	local := []*node{{id: "1"}, {id: "2"}}
	els := elements(local)
	m, err := Align(els, remote("1", "2"))
	require.NoError(t, err)
	assert.False(t, Changed(m, els))
}
