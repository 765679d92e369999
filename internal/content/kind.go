// Package content defines the syncable content model shared by the codec
// adapters, the reconciliation engine and the remote client.
package content

import (
	"fmt"
	"strings"
)

// Kind is a syncable content category.
type Kind int

const (
	KindPage Kind = iota + 1
	KindQuiz
	KindDiscussion
	KindAssignment
	KindRubric
	KindModule
)

var kindNames = map[Kind][2]string{
	KindPage:       {"page", "pages"},
	KindQuiz:       {"quiz", "quizzes"},
	KindDiscussion: {"discussion", "discussions"},
	KindAssignment: {"assignment", "assignments"},
	KindRubric:     {"rubric", "rubrics"},
	KindModule:     {"module", "modules"},
}

// AllKinds returns every kind in sync order. Assignments precede rubrics so
// rubric associations resolve, and modules come last since they reference
// the others.
func AllKinds() []Kind {
	return []Kind{KindPage, KindQuiz, KindDiscussion, KindAssignment, KindRubric, KindModule}
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n[0]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Dir returns the default subdirectory holding files of this kind.
func (k Kind) Dir() string {
	if n, ok := kindNames[k]; ok {
		return n[1]
	}
	return ""
}

// ParseKind accepts a singular or plural kind name.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, n := range kindNames {
		if s == n[0] || s == n[1] {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown content kind %q", s)
}
