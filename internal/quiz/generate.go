package quiz

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abhisek/coursesync/internal/frontmatter"
)

// Generate renders q as a quiz document. The title comes from the header's
// title key, falling back to q.Title.
func Generate(q *Quiz) (string, error) {
	meta := q.Meta
	if meta == nil {
		meta = frontmatter.NewHeader()
	}
	return frontmatter.Render(meta, GenerateBody(q))
}

// GenerateBody renders the document body without the header.
func GenerateBody(q *Quiz) string {
	title := q.Title
	if q.Meta != nil && q.Meta.String("title") != "" {
		title = q.Meta.String("title")
	}
	if title == "" {
		title = "Quiz"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", oneLine(title))
	if q.Instructions != "" {
		fmt.Fprintf(&b, "%s\n\n%s\n\n---\n\n", instructionsHeading, strings.TrimSpace(q.Instructions))
	}
	b.WriteString(questionsHeading + "\n\n")
	for i, question := range q.Questions {
		writeQuestion(&b, question, i+1)
		b.WriteString("\n---\n\n")
	}
	return b.String()
}

func writeQuestion(b *strings.Builder, q Question, pos int) {
	c := q.Base()
	n := c.Number
	if n == 0 {
		n = pos
	}
	fmt.Fprintf(b, "### %d. [%s] %s %s\n\n", n, q.Type().Code(), oneLine(c.Text), pointsLabel(c.Points))

	var lines []string
	switch x := q.(type) {
	case *MatchingQ:
		for _, a := range Answers(x) {
			lines = append(lines, fmt.Sprintf("%s. %s = %s", a.Letter, oneLine(a.Text), oneLine(a.MatchTarget)))
		}
	case *ShortAnswerQ, *FillInBlankQ:
		for _, a := range Answers(x) {
			lines = append(lines, "*"+oneLine(a.Text))
		}
	case *NumericalQ:
		for _, a := range Answers(x) {
			lines = append(lines, "*"+oneLine(a.Text))
		}
		if x.Margin != nil {
			lines = append(lines, "margin: "+strconv.FormatFloat(*x.Margin, 'f', -1, 64))
		}
	case *EssayQ:
	default:
		for _, a := range Answers(x) {
			prefix := ""
			if a.Correct {
				prefix = "*"
			}
			lines = append(lines, fmt.Sprintf("%s%s. %s", prefix, a.Letter, oneLine(a.Text)))
		}
	}
	for _, l := range lines {
		b.WriteString(l + "\n")
	}

	var fb []string
	if c.CorrectFeedback != "" {
		fb = append(fb, "> Correct: "+oneLine(c.CorrectFeedback))
	}
	if c.IncorrectFeedback != "" {
		fb = append(fb, "> Incorrect: "+oneLine(c.IncorrectFeedback))
	}
	if c.NeutralFeedback != "" {
		fb = append(fb, "> "+oneLine(c.NeutralFeedback))
	}
	if len(fb) > 0 {
		if len(lines) > 0 {
			b.WriteString("\n")
		}
		b.WriteString(strings.Join(fb, "\n") + "\n")
	}
}

func pointsLabel(p float64) string {
	if p == 1 {
		return "(1 pt)"
	}
	return "(" + strconv.FormatFloat(p, 'f', -1, 64) + " pts)"
}

// oneLine folds line breaks so a value stays on its markup line.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
