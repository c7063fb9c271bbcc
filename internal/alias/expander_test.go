package alias

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpander_Expand_Match(t *testing.T) {
	e := NewExpander([]Alias{
		{Name: "g", Expansion: "get pods"},
		{Name: "d", Expansion: "describe"},
	}, nil)

	exp := e.Expand("g -o wide", "")
	require.NotNil(t, exp.Alias, "alias g should expand")
	assert.Equal(t, "get pods", exp.Alias.Expansion)
	assert.Equal(t, " -o wide", exp.Rest, "rest should start at the first whitespace")
}

func TestExpander_Expand_NoMatch(t *testing.T) {
	e := NewExpander([]Alias{{Name: "g", Expansion: "get pods"}}, nil)

	exp := e.Expand("logs -f", "")
	assert.Nil(t, exp.Alias, "unknown word should not expand")
	assert.Equal(t, "logs -f", exp.Rest, "rest should be the original line unchanged")
}

func TestExpander_Expand_LoopGuard(t *testing.T) {
	e := NewExpander([]Alias{{Name: "pods", Expansion: "pods -o wide"}}, nil)

	// First step expands
	exp := e.Expand("pods", "")
	require.NotNil(t, exp.Alias)
	assert.Equal(t, "pods -o wide", exp.Alias.Expansion)

	// Feeding the result back with the word that produced it does not expand
	exp = e.Expand("pods -o wide", "pods")
	assert.Nil(t, exp.Alias, "guard should stop a word from re-expanding itself")
	assert.Equal(t, "pods -o wide", exp.Rest)
}

func TestExpander_Expand_EndOfLine(t *testing.T) {
	e := NewExpander([]Alias{{Name: "g", Expansion: "get pods"}}, nil)

	exp := e.Expand("g", "")
	require.NotNil(t, exp.Alias)
	assert.Equal(t, "", exp.Rest, "rest should be empty when the word is the whole line")
}

// fixedPoint applies Expand the way the command loop does, until no
// expansion happens.
func fixedPoint(e *Expander, line string) string {
	prev := ""
	for {
		exp := e.Expand(line, prev)
		if exp.Alias == nil {
			return line
		}
		line = exp.Alias.Expansion + exp.Rest
		prev = strings.SplitN(exp.Alias.Expansion, " ", 2)[0]
	}
}

func TestExpander_FixedPointTerminates(t *testing.T) {
	e := NewExpander([]Alias{
		{Name: "g", Expansion: "gp"},
		{Name: "gp", Expansion: "get pods"},
		{Name: "get", Expansion: "get"},
	}, nil)

	assert.Equal(t, "get pods -o wide", fixedPoint(e, "g -o wide"))
	assert.Equal(t, "get pods", fixedPoint(e, "gp"))
	// Self-mapping alias terminates via the guard
	assert.Equal(t, "get x", fixedPoint(e, "get x"))
}

func TestExpander_Add_Upsert(t *testing.T) {
	var saved []Alias
	e := NewExpander(nil, func(aliases []Alias) error {
		saved = aliases
		return nil
	})

	require.NoError(t, e.Add("g", "get"))
	require.NoError(t, e.Add("g", "get pods"))

	list := e.List()
	require.Len(t, list, 1, "second Add with the same name should replace")
	assert.Equal(t, "get pods", list[0].Expansion)
	assert.Equal(t, list, saved, "persist should see the final set")
}

func TestExpander_Remove(t *testing.T) {
	calls := 0
	e := NewExpander([]Alias{{Name: "g", Expansion: "get pods"}}, func([]Alias) error {
		calls++
		return nil
	})

	ok, err := e.Remove("g")
	require.NoError(t, err)
	assert.True(t, ok, "existing alias should be removed")
	assert.Equal(t, 1, calls, "removal should persist")

	ok, err = e.Remove("g")
	require.NoError(t, err)
	assert.False(t, ok, "second removal should report nothing to remove")
	assert.Equal(t, 1, calls, "no-op removal should not persist")
}

func TestExpander_Add_PersistFailure(t *testing.T) {
	e := NewExpander(nil, func([]Alias) error {
		return errors.New("disk full")
	})

	err := e.Add("g", "get pods")
	assert.Error(t, err, "persist failure should surface to the caller")
	assert.Len(t, e.List(), 1, "alias stays in memory even when persisting failed")
}

func TestExpander_InsertionOrder(t *testing.T) {
	e := NewExpander(nil, nil)
	require.NoError(t, e.Add("c", "three"))
	require.NoError(t, e.Add("a", "one"))
	require.NoError(t, e.Add("b", "two"))

	list := e.List()
	require.Len(t, list, 3)
	assert.Equal(t, "c", list[0].Name)
	assert.Equal(t, "a", list[1].Name)
	assert.Equal(t, "b", list[2].Name)
}
