package kinds

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhisek/coursesync/internal/content"
	"github.com/abhisek/coursesync/internal/quiz"
)

var quizSettings = []string{
	"quiz_type", "time_limit", "allowed_attempts", "shuffle_answers",
	"show_correct_answers", "due_at", "lock_at", "unlock_at",
}

// Quiz is the adapter for quizzes. The body carries the question markup.
type Quiz struct {
	opts Options
}

var _ content.Adapter = (*Quiz)(nil)

// NewQuiz returns the quiz adapter.
func NewQuiz(opts Options) *Quiz { return &Quiz{opts: opts} }

func (q *Quiz) Kind() content.Kind  { return content.KindQuiz }
func (q *Quiz) Ext() string         { return ".quiz.md" }
func (q *Quiz) SlugAddressed() bool { return false }

// Decode reads the file and checks that its questions parse. A title in
// the body is used when the header has none.
func (q *Quiz) Decode(path string, data []byte) (*content.Item, error) {
	it, err := decode(content.KindQuiz, q.Ext(), path, data)
	if err != nil {
		return nil, err
	}
	parsed, err := quiz.ParseBody(it.Meta, it.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", content.ErrValidation, err)
	}
	if it.Meta.String(content.KeyTitle) == "" && parsed.Title != "" {
		it.Title = parsed.Title
	}
	return it, nil
}

func (q *Quiz) Encode(it *content.Item) ([]byte, error) {
	return encode(it, true)
}

func (q *Quiz) FromRemote(ctx context.Context, r *content.Remote) (*content.Item, error) {
	conv := q.opts.converter()
	it := remoteItem(content.KindQuiz, r, true)
	q.opts.copyToHeader(it.Meta, r.Fields, quizSettings...)

	instructions, err := conv.ToPortable(ctx, r.Fields.String("description"))
	if err != nil {
		return nil, fmt.Errorf("convert instructions: %w", err)
	}
	questions, err := quiz.FromRemote(ctx, r.Fields.Maps("questions"), conv)
	if err != nil {
		return nil, err
	}
	it.Body = quiz.GenerateBody(&quiz.Quiz{
		Meta:         it.Meta,
		Title:        r.Title,
		Instructions: strings.TrimSpace(instructions),
		Questions:    questions,
	})
	return it, nil
}

// ToRemote builds the quiz settings and its full question list. Remote
// question sets are replaced wholesale on update.
func (q *Quiz) ToRemote(ctx context.Context, it *content.Item) (content.Fields, error) {
	conv := q.opts.converter()
	parsed, err := quiz.ParseBody(it.Meta, it.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", content.ErrValidation, err)
	}
	description, err := conv.ToRich(ctx, parsed.Instructions)
	if err != nil {
		return nil, fmt.Errorf("convert instructions: %w", err)
	}

	questions := make([]content.Fields, 0, len(parsed.Questions))
	for _, question := range parsed.Questions {
		f, err := quiz.ToRemote(ctx, question, conv)
		if err != nil {
			return nil, err
		}
		questions = append(questions, f)
	}

	f := content.Fields{
		"title":              it.Title,
		"description":        description,
		content.KeyPublished: it.Published,
		"questions":          questions,
	}
	if it.Meta != nil {
		q.opts.copyToFields(f, it.Meta, quizSettings...)
	}
	return f, nil
}
