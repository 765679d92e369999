// Package quiz reads and writes the quiz question markup and maps questions
// to and from the remote question payload.
package quiz

import (
	"fmt"

	"github.com/abhisek/coursesync/internal/frontmatter"
)

// Type is a question variant.
type Type int

const (
	MultipleChoice Type = iota + 1
	MultipleAnswer
	TrueFalse
	ShortAnswer
	Essay
	FillInBlank
	Matching
	Numerical
)

var types = []struct {
	t      Type
	code   string
	remote string
}{
	{MultipleChoice, "MC", "multiple_choice_question"},
	{MultipleAnswer, "MA", "multiple_answers_question"},
	{TrueFalse, "TF", "true_false_question"},
	{ShortAnswer, "SA", "short_answer_question"},
	{Essay, "ESS", "essay_question"},
	{FillInBlank, "FIB", "fill_in_multiple_blanks_question"},
	{Matching, "MAT", "matching_question"},
	{Numerical, "NUM", "numerical_question"},
}

// Code returns the markup type code, e.g. "MC".
func (t Type) Code() string {
	for _, e := range types {
		if e.t == t {
			return e.code
		}
	}
	return "?"
}

// RemoteName returns the platform's question_type value.
func (t Type) RemoteName() string {
	for _, e := range types {
		if e.t == t {
			return e.remote
		}
	}
	return ""
}

func (t Type) String() string { return t.Code() }

// ParseCode maps a markup type code to its Type.
func ParseCode(code string) (Type, error) {
	for _, e := range types {
		if e.code == code {
			return e.t, nil
		}
	}
	return 0, fmt.Errorf("unknown question type code %q", code)
}

// TypeFromRemote maps a platform question_type to its Type.
func TypeFromRemote(name string) (Type, bool) {
	for _, e := range types {
		if e.remote == name {
			return e.t, true
		}
	}
	return 0, false
}

// Question is one of the eight question variants.
type Question interface {
	Type() Type
	Base() *Common
}

// Common holds the fields every variant carries. Empty feedback strings
// mean no feedback.
type Common struct {
	Number            int
	Text              string
	Points            float64
	CorrectFeedback   string
	IncorrectFeedback string
	NeutralFeedback   string
	RemoteID          int64
}

// Base returns the shared fields.
func (c *Common) Base() *Common { return c }

// Choice is a lettered option of a choice question.
type Choice struct {
	Letter  string
	Text    string
	Correct bool
}

// Pair is one left = right line of a matching question.
type Pair struct {
	Letter string
	Left   string
	Right  string
}

type MultipleChoiceQ struct {
	Common
	Choices []Choice
}

type MultipleAnswerQ struct {
	Common
	Choices []Choice
}

type TrueFalseQ struct {
	Common
	Choices []Choice
}

type ShortAnswerQ struct {
	Common
	Accepted []string
}

type EssayQ struct {
	Common
}

type FillInBlankQ struct {
	Common
	Accepted []string
}

type MatchingQ struct {
	Common
	Pairs []Pair
}

// NumericalQ accepts numeric values. Margin, when set, overrides the
// tolerance of every value.
type NumericalQ struct {
	Common
	Values []string
	Margin *float64
}

func (*MultipleChoiceQ) Type() Type { return MultipleChoice }
func (*MultipleAnswerQ) Type() Type { return MultipleAnswer }
func (*TrueFalseQ) Type() Type      { return TrueFalse }
func (*ShortAnswerQ) Type() Type    { return ShortAnswer }
func (*EssayQ) Type() Type          { return Essay }
func (*FillInBlankQ) Type() Type    { return FillInBlank }
func (*MatchingQ) Type() Type       { return Matching }
func (*NumericalQ) Type() Type      { return Numerical }

// Answer is a variant-independent view of one answer line.
type Answer struct {
	Letter      string
	Text        string
	Correct     bool
	MatchTarget string
}

// Answers returns the answers of q in order. Letters missing on choice and
// matching answers are derived from position.
func Answers(q Question) []Answer {
	var out []Answer
	switch x := q.(type) {
	case *MultipleChoiceQ:
		out = choiceAnswers(x.Choices)
	case *MultipleAnswerQ:
		out = choiceAnswers(x.Choices)
	case *TrueFalseQ:
		out = choiceAnswers(x.Choices)
	case *ShortAnswerQ:
		out = acceptedAnswers(x.Accepted)
	case *FillInBlankQ:
		out = acceptedAnswers(x.Accepted)
	case *NumericalQ:
		out = acceptedAnswers(x.Values)
	case *MatchingQ:
		for i, p := range x.Pairs {
			out = append(out, Answer{Letter: letterOr(p.Letter, i), Text: p.Left, Correct: true, MatchTarget: p.Right})
		}
	}
	return out
}

func choiceAnswers(cs []Choice) []Answer {
	out := make([]Answer, 0, len(cs))
	for i, c := range cs {
		out = append(out, Answer{Letter: letterOr(c.Letter, i), Text: c.Text, Correct: c.Correct})
	}
	return out
}

func acceptedAnswers(vals []string) []Answer {
	out := make([]Answer, 0, len(vals))
	for _, v := range vals {
		out = append(out, Answer{Text: v, Correct: true})
	}
	return out
}

func letterOr(l string, i int) string {
	if l != "" {
		return l
	}
	return string(rune('a' + i%26))
}

// New returns an empty question of type t.
func New(t Type, c Common) Question {
	switch t {
	case MultipleAnswer:
		return &MultipleAnswerQ{Common: c}
	case TrueFalse:
		return &TrueFalseQ{Common: c}
	case ShortAnswer:
		return &ShortAnswerQ{Common: c}
	case Essay:
		return &EssayQ{Common: c}
	case FillInBlank:
		return &FillInBlankQ{Common: c}
	case Matching:
		return &MatchingQ{Common: c}
	case Numerical:
		return &NumericalQ{Common: c}
	}
	return &MultipleChoiceQ{Common: c}
}

// Quiz is a parsed quiz document.
type Quiz struct {
	Meta         *frontmatter.Header
	Title        string
	Instructions string
	Questions    []Question
}
