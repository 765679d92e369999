package quiz

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/abhisek/coursesync/internal/content"
	"github.com/abhisek/coursesync/internal/ctxlog"
)

var (
	injectedTagPattern = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>|<script[^>]*/>|<link[^>]*/?>`)
	inlineMarkup       = regexp.MustCompile("\\*|`")
)

// ToRemote builds the platform question payload for q. Question text is
// converted to rich text; answer text only when it carries inline markup.
func ToRemote(ctx context.Context, q Question, conv content.Converter) (content.Fields, error) {
	c := q.Base()
	text, err := conv.ToRich(ctx, c.Text)
	if err != nil {
		return nil, fmt.Errorf("convert question %d: %w", c.Number, err)
	}

	var answers []map[string]any
	switch x := q.(type) {
	case *MatchingQ:
		for _, p := range x.Pairs {
			left, err := richIfMarked(ctx, conv, p.Left)
			if err != nil {
				return nil, err
			}
			right, err := richIfMarked(ctx, conv, p.Right)
			if err != nil {
				return nil, err
			}
			answers = append(answers, map[string]any{
				"answer_match_left":  left,
				"answer_match_right": right,
			})
		}
	case *ShortAnswerQ, *FillInBlankQ:
		for _, a := range Answers(x) {
			answers = append(answers, map[string]any{
				"answer_text":   a.Text,
				"answer_weight": 100,
			})
		}
	case *NumericalQ:
		for _, v := range x.Values {
			n, err := ParseNumeric(v)
			if err != nil {
				ctxlog.FromContext(ctx).Warn("numerical answer falls back to exact zero",
					"question", c.Number, "value", v, "error", err)
				n = Numeric{Kind: ExactAnswer}
			}
			margin := n.Margin
			if x.Margin != nil {
				margin = *x.Margin
			}
			answers = append(answers, map[string]any{
				"numerical_answer_type": n.Kind.String(),
				"answer_exact":          n.Exact,
				"answer_error_margin":   margin,
			})
		}
	case *EssayQ:
	default:
		for _, a := range Answers(x) {
			t, err := richIfMarked(ctx, conv, a.Text)
			if err != nil {
				return nil, err
			}
			weight := 0
			if a.Correct {
				weight = 100
			}
			answers = append(answers, map[string]any{
				"answer_text":   t,
				"answer_weight": weight,
			})
		}
	}

	f := content.Fields{
		"question_name":   fmt.Sprintf("Question %d", c.Number),
		"question_text":   text,
		"question_type":   q.Type().RemoteName(),
		"points_possible": c.Points,
		"answers":         answers,
	}
	if c.CorrectFeedback != "" {
		f["correct_comments"] = c.CorrectFeedback
	}
	if c.IncorrectFeedback != "" {
		f["incorrect_comments"] = c.IncorrectFeedback
	}
	if c.NeutralFeedback != "" {
		f["neutral_comments"] = c.NeutralFeedback
	}
	return f, nil
}

func richIfMarked(ctx context.Context, conv content.Converter, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" || !inlineMarkup.MatchString(s) {
		return s, nil
	}
	return conv.ToRich(ctx, s)
}

// FromRemote converts platform question payloads into questions numbered
// by position. Unknown question types read as multiple choice.
func FromRemote(ctx context.Context, remote []content.Fields, conv content.Converter) ([]Question, error) {
	out := make([]Question, 0, len(remote))
	for i, rq := range remote {
		t, ok := TypeFromRemote(rq.String("question_type"))
		if !ok {
			t = MultipleChoice
		}
		text, err := cleanText(ctx, conv, rq.String("question_text"))
		if err != nil {
			return nil, fmt.Errorf("convert question %d: %w", i+1, err)
		}
		points, ok := rq.Float("points_possible")
		if !ok {
			points = 1
		}
		id, _ := rq.Int("id")
		c := Common{
			Number:            i + 1,
			Text:              text,
			Points:            points,
			CorrectFeedback:   rq.String("correct_comments"),
			IncorrectFeedback: rq.String("incorrect_comments"),
			NeutralFeedback:   rq.String("neutral_comments"),
			RemoteID:          id,
		}
		q := New(t, c)
		if err := fillAnswers(ctx, q, rq.Maps("answers"), conv); err != nil {
			return nil, fmt.Errorf("convert question %d answers: %w", i+1, err)
		}
		out = append(out, q)
	}
	return out, nil
}

func fillAnswers(ctx context.Context, q Question, answers []content.Fields, conv content.Converter) error {
	switch x := q.(type) {
	case *MatchingQ:
		for i, a := range answers {
			left, err := cleanText(ctx, conv, a.String("left", "answer_match_left"))
			if err != nil {
				return err
			}
			right, err := cleanText(ctx, conv, a.String("right", "answer_match_right"))
			if err != nil {
				return err
			}
			x.Pairs = append(x.Pairs, Pair{Letter: letterOr("", i), Left: left, Right: right})
		}
	case *NumericalQ:
		for _, a := range answers {
			start, hasStart := a.Float("start", "answer_range_start")
			end, hasEnd := a.Float("end", "answer_range_end")
			if hasStart && hasEnd && start >= 0 {
				x.Values = append(x.Values, formatNumber(start)+"-"+formatNumber(end))
				continue
			}
			exact, _ := a.Float("exact", "answer_exact")
			x.Values = append(x.Values, formatNumber(exact))
			if m, ok := a.Float("margin", "answer_error_margin"); ok && m > 0 && x.Margin == nil {
				x.Margin = &m
			}
		}
	case *ShortAnswerQ:
		x.Accepted = plainAnswers(answers)
	case *FillInBlankQ:
		x.Accepted = plainAnswers(answers)
	case *EssayQ:
	default:
		var choices []Choice
		for i, a := range answers {
			text, err := cleanText(ctx, conv, a.String("text", "answer_text", "html"))
			if err != nil {
				return err
			}
			w, _ := a.Float("weight", "answer_weight")
			choices = append(choices, Choice{Letter: letterOr("", i), Text: text, Correct: w > 0})
		}
		switch y := q.(type) {
		case *MultipleChoiceQ:
			y.Choices = choices
		case *MultipleAnswerQ:
			y.Choices = choices
		case *TrueFalseQ:
			y.Choices = choices
		}
	}
	return nil
}

func plainAnswers(answers []content.Fields) []string {
	var out []string
	for _, a := range answers {
		if t := strings.TrimSpace(a.String("text", "answer_text")); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// cleanText strips platform-injected script and link tags, converts the
// rest to portable markup and folds it onto one line.
func cleanText(ctx context.Context, conv content.Converter, html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", nil
	}
	cleaned := injectedTagPattern.ReplaceAllString(html, "")
	md, err := conv.ToPortable(ctx, cleaned)
	if err != nil {
		return "", err
	}
	md = strings.ReplaceAll(md, "&nbsp;", " ")
	return oneLine(md), nil
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
