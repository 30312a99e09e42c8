package questiongen

import "github.com/abhisek/quizrace/internal/llm"

// BatchSchema is the shape the strict parse step accepts.
var BatchSchema = &llm.Schema{
	Name: "question-batch",
	Definition: map[string]any{
		"type":     "object",
		"required": []any{"questions"},
		"properties": map[string]any{
			"questions": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type":     "object",
					"required": []any{"question", "options", "correctAnswer"},
					"properties": map[string]any{
						"question": map[string]any{"type": "string", "minLength": 1},
						"options": map[string]any{
							"type":     "array",
							"minItems": 4,
							"maxItems": 4,
							"items":    map[string]any{"type": "string"},
						},
						"correctAnswer": map[string]any{"type": "string", "minLength": 1},
					},
				},
			},
		},
	},
}
