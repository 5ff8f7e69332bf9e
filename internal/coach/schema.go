package coach

import "github.com/abhisek/rxdrill/internal/llm"

// NoteSchema is the structured shape of a remediation note.
var NoteSchema = &llm.Schema{
	Name:        "drug-note",
	Description: "A short remediation note for a drug the learner answered wrongly",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"headline": map[string]any{
				"type":        "string",
				"description": "One line naming the key fact (5-12 words)",
			},
			"explanation": map[string]any{
				"type":        "string",
				"description": "2-4 sentences that separate this drug from the ones it is confused with",
			},
			"mnemonic": map[string]any{
				"type":        "string",
				"description": "A short memory hook, or empty if none fits",
			},
			"check": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"prompt": map[string]any{"type": "string"},
					"answer": map[string]any{"type": "string"},
				},
				"required":             []any{"prompt", "answer"},
				"additionalProperties": false,
			},
		},
		"required":             []any{"headline", "explanation", "mnemonic", "check"},
		"additionalProperties": false,
	},
}

// DigestSchema is the structured shape of a mistake-queue digest.
var DigestSchema = &llm.Schema{
	Name:        "mistake-digest",
	Description: "Summary of the patterns in a learner's recent mistakes",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary": map[string]any{
				"type":        "string",
				"description": "2-3 sentence summary of the error patterns",
			},
			"focus": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "1-3 drugs or classes to review next",
			},
		},
		"required":             []any{"summary", "focus"},
		"additionalProperties": false,
	},
}
