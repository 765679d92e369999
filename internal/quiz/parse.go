package quiz

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/abhisek/coursesync/internal/frontmatter"
)

// SyntaxError reports a question block that cannot be read.
type SyntaxError struct {
	Question int
	Msg      string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("quiz: question %d: %s", e.Question, e.Msg)
}

var (
	headingPattern = regexp.MustCompile(
		`(?m)^#{2,4}[ \t]+(\d+)\.[ \t]*` + // number
			`(?:\[([A-Z]{2,3})\][ \t]*)?` + // optional type code
			`(.+?)` + // question text
			`(?:\((\d+(?:\.\d+)?)[ \t]*pts?\))?` + // optional points
			`[ \t]*\r?$`)
	titlePattern        = regexp.MustCompile(`(?m)^#[ \t]+(.+?)[ \t]*$`)
	letteredPattern     = regexp.MustCompile(`(?i)^(\*)?([a-z])\.\s*(.+)$`)
	unletteredPattern   = regexp.MustCompile(`^\*\s*(.+)$`)
	matchingPattern     = regexp.MustCompile(`(?i)^([a-z])\.\s*(.+?)\s*=\s*(.+)$`)
	marginPattern       = regexp.MustCompile(`(?i)^margin:\s*(\d+(?:\.\d+)?)$`)
	instructionsHeading = "## Instructions"
	questionsHeading    = "## Questions"
)

// Parse reads a quiz document: header, optional title and instructions,
// then numbered question blocks.
func Parse(text string) (*Quiz, error) {
	doc, err := frontmatter.Parse(text)
	if err != nil {
		return nil, err
	}
	return ParseBody(doc.Header, doc.Body)
}

// ParseBody reads the body of a quiz document whose header has already
// been decoded.
func ParseBody(meta *frontmatter.Header, body string) (*Quiz, error) {
	qs, err := ParseQuestions(body)
	if err != nil {
		return nil, err
	}
	q := &Quiz{
		Meta:         meta,
		Instructions: instructions(body),
		Questions:    qs,
	}
	if m := titlePattern.FindStringSubmatch(body); m != nil {
		q.Title = strings.TrimRight(m[1], "\r")
	}
	return q, nil
}

// instructions returns the text under the instructions heading, up to the
// first separator, questions heading, or question.
func instructions(body string) string {
	var out []string
	in := false
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if !in {
			in = trimmed == instructionsHeading
			continue
		}
		if trimmed == "---" || trimmed == questionsHeading || headingPattern.MatchString(trimmed) {
			break
		}
		out = append(out, strings.TrimRight(line, "\r"))
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// ParseQuestions scans body for question blocks. Each block runs from its
// heading to the next heading or the end of body.
func ParseQuestions(body string) ([]Question, error) {
	matches := headingPattern.FindAllStringSubmatchIndex(body, -1)
	out := make([]Question, 0, len(matches))
	for i, m := range matches {
		end := len(body)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		number, _ := strconv.Atoi(body[m[2]:m[3]])

		t := MultipleChoice
		if m[4] >= 0 {
			var err error
			t, err = ParseCode(body[m[4]:m[5]])
			if err != nil {
				return nil, &SyntaxError{Question: number, Msg: err.Error()}
			}
		}
		points := 1.0
		if m[8] >= 0 {
			points, _ = strconv.ParseFloat(body[m[8]:m[9]], 64)
		}
		c := Common{
			Number: number,
			Text:   strings.TrimSpace(body[m[6]:m[7]]),
			Points: points,
		}
		q := New(t, c)
		if err := parseBlock(q, body[m[1]:end]); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}

// parseBlock reads answer, margin and feedback lines into q.
func parseBlock(q Question, block string) error {
	base := q.Base()
	for _, raw := range strings.Split(block, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || line == "---" {
			continue
		}

		if strings.HasPrefix(line, ">") {
			routeFeedback(base, strings.TrimSpace(line[1:]))
			continue
		}

		switch x := q.(type) {
		case *NumericalQ:
			if m := marginPattern.FindStringSubmatch(line); m != nil {
				v, _ := strconv.ParseFloat(m[1], 64)
				x.Margin = &v
				continue
			}
			if v, ok := acceptedValue(line); ok {
				x.Values = append(x.Values, v)
			}
		case *ShortAnswerQ:
			if v, ok := acceptedValue(line); ok {
				x.Accepted = append(x.Accepted, v)
			}
		case *FillInBlankQ:
			if v, ok := acceptedValue(line); ok {
				x.Accepted = append(x.Accepted, v)
			}
		case *MatchingQ:
			if m := matchingPattern.FindStringSubmatch(line); m != nil {
				x.Pairs = append(x.Pairs, Pair{
					Letter: strings.ToLower(m[1]),
					Left:   strings.TrimSpace(m[2]),
					Right:  strings.TrimSpace(m[3]),
				})
				continue
			}
			if letteredPattern.MatchString(line) {
				return &SyntaxError{Question: base.Number, Msg: fmt.Sprintf("matching line %q has no '=' target", line)}
			}
		case *MultipleChoiceQ:
			if c, ok := choice(line); ok {
				x.Choices = append(x.Choices, c)
			}
		case *MultipleAnswerQ:
			if c, ok := choice(line); ok {
				x.Choices = append(x.Choices, c)
			}
		case *TrueFalseQ:
			if c, ok := choice(line); ok {
				x.Choices = append(x.Choices, c)
			}
		}
	}
	return nil
}

func routeFeedback(c *Common, text string) {
	lower := strings.ToLower(text)
	switch {
	case strings.HasPrefix(lower, "correct:"):
		c.CorrectFeedback = strings.TrimSpace(text[len("correct:"):])
	case strings.HasPrefix(lower, "incorrect:"):
		c.IncorrectFeedback = strings.TrimSpace(text[len("incorrect:"):])
	case c.NeutralFeedback == "":
		c.NeutralFeedback = text
	default:
		c.NeutralFeedback += " " + text
	}
}

func choice(line string) (Choice, bool) {
	m := letteredPattern.FindStringSubmatch(line)
	if m == nil {
		return Choice{}, false
	}
	return Choice{
		Letter:  strings.ToLower(m[2]),
		Text:    strings.TrimSpace(m[3]),
		Correct: m[1] == "*",
	}, true
}

// acceptedValue reads a bare "*value" line. Everything after the star is
// the value, so "*e. coli" reads as "e. coli".
func acceptedValue(line string) (string, bool) {
	m := unletteredPattern.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}
