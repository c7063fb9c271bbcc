// Package alias implements user-defined command shorthand. An alias maps a
// single token to an expansion string; expansion happens before command
// parsing, one level per call, with a guard that stops a word from
// immediately re-expanding itself.
package alias

import (
	"strings"
	"unicode"
)

// Alias maps a single token to its expansion.
type Alias struct {
	Name      string `yaml:"name"`
	Expansion string `yaml:"expansion"`
}

// PersistFunc is called with the full alias set after every mutation.
type PersistFunc func(aliases []Alias) error

// Expander holds the alias set in insertion order and expands input lines.
// At most one alias exists per name.
type Expander struct {
	aliases []Alias
	persist PersistFunc
}

// NewExpander creates an Expander over the given aliases. persist may be nil,
// in which case mutations are kept in memory only.
func NewExpander(aliases []Alias, persist PersistFunc) *Expander {
	return &Expander{
		aliases: append([]Alias(nil), aliases...),
		persist: persist,
	}
}

// Expansion is the result of a single expansion step. Alias is nil when the
// line's first word matched nothing (or the loop guard fired), in which case
// Rest is the original line unchanged. On a match, Rest is the remainder of
// the line starting at the first whitespace character.
type Expansion struct {
	Alias *Alias
	Rest  string
}

// Expand tries to expand the first whitespace-delimited word of line.
//
// prevWord carries the word produced by the previous expansion step; if it
// equals the current word, no expansion happens. This lets an alias map a
// word to itself as an escape idiom without looping forever. Callers apply
// Expand repeatedly, feeding each result back in with the newly expanded
// word, until no expansion occurs. Cycles longer than one step (a→b→a) are
// not detected; this matches the behavior operators rely on.
func (e *Expander) Expand(line, prevWord string) Expansion {
	pos := strings.IndexFunc(line, unicode.IsSpace)
	if pos == -1 {
		pos = len(line)
	}
	word := line[:pos]

	if prevWord == "" || prevWord != word {
		for i := range e.aliases {
			if e.aliases[i].Name == word {
				return Expansion{
					Alias: &e.aliases[i],
					Rest:  line[pos:],
				}
			}
		}
	}

	return Expansion{Rest: line}
}

// Add inserts or replaces the alias with the given name, then persists the
// set. Replacing moves the alias to the end of the display order.
func (e *Expander) Add(name, expansion string) error {
	e.removeByName(name)
	e.aliases = append(e.aliases, Alias{Name: name, Expansion: expansion})
	return e.save()
}

// Remove deletes the alias with the given name. It returns true if an alias
// existed and was removed (and persisted), false otherwise.
func (e *Expander) Remove(name string) (bool, error) {
	if !e.removeByName(name) {
		return false, nil
	}
	return true, e.save()
}

// List returns the aliases in insertion order.
func (e *Expander) List() []Alias {
	return append([]Alias(nil), e.aliases...)
}

// Replace swaps in a new alias set without persisting. Used when the config
// file changes on disk and the session reloads it.
func (e *Expander) Replace(aliases []Alias) {
	e.aliases = append([]Alias(nil), aliases...)
}

func (e *Expander) removeByName(name string) bool {
	for i := range e.aliases {
		if e.aliases[i].Name == name {
			e.aliases = append(e.aliases[:i], e.aliases[i+1:]...)
			return true
		}
	}
	return false
}

func (e *Expander) save() error {
	if e.persist == nil {
		return nil
	}
	return e.persist(e.List())
}
