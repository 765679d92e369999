package schema

import "github.com/abhisek/coursesync/internal/content"

var (
	nullableString  = map[string]any{"type": []any{"string", "null"}}
	nullableInteger = map[string]any{"type": []any{"integer", "null"}}
	nullableNumber  = map[string]any{"type": []any{"number", "null"}}
	nullableBool    = map[string]any{"type": []any{"boolean", "null"}}
	identifier      = map[string]any{"type": []any{"integer", "string", "null"}}
)

func object(props map[string]any, required ...string) map[string]any {
	base := map[string]any{
		"title":     nullableString,
		"remote_id": identifier,
		"published": nullableBool,
	}
	for k, v := range props {
		base[k] = v
	}
	def := map[string]any{
		"type":       "object",
		"properties": base,
	}
	if len(required) > 0 {
		req := make([]any, len(required))
		for i, r := range required {
			req[i] = r
		}
		def["required"] = req
	}
	return def
}

func enum(values ...any) map[string]any {
	return map[string]any{"enum": append(values, nil)}
}

// Page is the header schema for pages.
var Page = &Schema{
	Name: "page",
	Definition: object(map[string]any{
		"front_page": nullableBool,
		"updated_at": nullableString,
	}),
}

// Quiz is the header schema for quizzes.
var Quiz = &Schema{
	Name: "quiz",
	Definition: object(map[string]any{
		"quiz_type":        enum("practice_quiz", "assignment", "graded_survey", "survey"),
		"time_limit":       nullableInteger,
		"allowed_attempts": nullableInteger,
		"shuffle_answers":  nullableBool,
		"points_possible":  nullableNumber,
		"due_at":           nullableString,
		"lock_at":          nullableString,
		"unlock_at":        nullableString,
	}),
}

// Discussion is the header schema for discussion topics.
var Discussion = &Schema{
	Name: "discussion",
	Definition: object(map[string]any{
		"pinned":               nullableBool,
		"locked":               nullableBool,
		"require_initial_post": nullableBool,
		"discussion_type":      enum("side_comment", "threaded", "not_threaded"),
		"delayed_post_at":      nullableString,
	}, "title"),
}

// Assignment is the header schema for assignments.
var Assignment = &Schema{
	Name: "assignment",
	Definition: object(map[string]any{
		"points_possible":  nullableNumber,
		"grading_type":     enum("points", "percent", "letter_grade", "gpa_scale", "pass_fail", "not_graded"),
		"submission_types": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"due_at":           nullableString,
		"lock_at":          nullableString,
		"unlock_at":        nullableString,
	}, "title"),
}

// Rubric is the header schema for rubrics. Ratings refer to their criterion
// by 1-based position.
var Rubric = &Schema{
	Name: "rubric",
	Definition: object(map[string]any{
		"assignment_id":                identifier,
		"free_form_criterion_comments": nullableBool,
		"criteria": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id":               identifier,
					"description":      map[string]any{"type": "string"},
					"long_description": nullableString,
					"points":           map[string]any{"type": "number"},
				},
				"required": []any{"description", "points"},
			},
		},
		"ratings": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"criterion":        map[string]any{"type": "integer", "minimum": 1},
					"id":               identifier,
					"description":      map[string]any{"type": "string"},
					"long_description": nullableString,
					"points":           map[string]any{"type": "number"},
				},
				"required": []any{"criterion", "description", "points"},
			},
		},
	}, "title", "criteria"),
}

// Module is the header schema for modules.
var Module = &Schema{
	Name: "module",
	Definition: object(map[string]any{
		"position":  nullableInteger,
		"unlock_at": nullableString,
		"items": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id":           identifier,
					"type":         map[string]any{"enum": []any{"Page", "Assignment", "Quiz", "Discussion", "SubHeader", "ExternalUrl", "File"}},
					"title":        map[string]any{"type": "string"},
					"indent":       map[string]any{"type": []any{"integer", "null"}, "minimum": 0, "maximum": 5},
					"page_url":     nullableString,
					"content_id":   identifier,
					"external_url": nullableString,
				},
				"required": []any{"type", "title"},
			},
		},
	}, "title"),
}

// For returns the header schema for kind.
func For(kind content.Kind) *Schema {
	switch kind {
	case content.KindPage:
		return Page
	case content.KindQuiz:
		return Quiz
	case content.KindDiscussion:
		return Discussion
	case content.KindAssignment:
		return Assignment
	case content.KindRubric:
		return Rubric
	case content.KindModule:
		return Module
	}
	return nil
}
