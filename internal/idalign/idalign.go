// Package idalign copies remote-assigned identifiers onto locally authored
// sub-elements by list position.
package idalign

import (
	"fmt"

	"github.com/abhisek/coursesync/internal/content"
)

// Element is one node of a structure whose identifiers are aligned. Assign
// stores a new identifier on the local value the element stands for.
type Element struct {
	ID       string
	Assign   func(id string)
	Children []Element
}

// Mapping records old identifier to new identifier for every local element
// that already had one.
type Mapping map[string]string

// CountMismatchError reports lists of different lengths at Path.
type CountMismatchError struct {
	Path   string
	Local  int
	Remote int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("%s: %d local elements but remote returned %d", e.Path, e.Local, e.Remote)
}

func (e *CountMismatchError) Is(target error) bool { return target == content.ErrConflict }

// Align walks local and remote positionally and assigns each remote
// identifier to the local element at the same position. Counts are checked
// at every level before anything is assigned.
func Align(local, remote []Element) (Mapping, error) {
	if err := check("elements", local, remote); err != nil {
		return nil, err
	}
	m := Mapping{}
	assign(local, remote, m)
	return m, nil
}

func check(path string, local, remote []Element) error {
	if len(local) != len(remote) {
		return &CountMismatchError{Path: path, Local: len(local), Remote: len(remote)}
	}
	for i := range local {
		child := fmt.Sprintf("%s[%d]", path, i)
		if err := check(child+".children", local[i].Children, remote[i].Children); err != nil {
			return err
		}
	}
	return nil
}

func assign(local, remote []Element, m Mapping) {
	for i := range local {
		l, r := local[i], remote[i]
		if l.ID != "" {
			m[l.ID] = r.ID
		}
		if l.Assign != nil {
			l.Assign(r.ID)
		}
		assign(l.Children, r.Children, m)
	}
}

// Changed reports whether any mapping moves an identifier or local elements
// lacked identifiers before alignment.
func Changed(m Mapping, local []Element) bool {
	for old, id := range m {
		if old != id {
			return true
		}
	}
	return countMissing(local) > 0
}

func countMissing(els []Element) int {
	n := 0
	for _, e := range els {
		if e.ID == "" {
			n++
		}
		n += countMissing(e.Children)
	}
	return n
}
