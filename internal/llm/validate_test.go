package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func drugNoteSchema() *Schema {
	return &Schema{
		Name:        "test-drug-note",
		Description: "A short drug note",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"drug":  map[string]any{"type": "string"},
				"doses": map[string]any{"type": "integer", "minimum": 0},
				"route": map[string]any{"type": "string", "enum": []any{"oral", "iv", "im"}},
				"pearls": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
			},
			"required": []any{"drug", "doses"},
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"drug":"lisinopril","doses":1,"route":"oral"}`, false},
		{"optional omitted", `{"drug":"warfarin","doses":1}`, false},
		{"array of strings", `{"drug":"omeprazole","doses":1,"pearls":["take before meals"]}`, false},
		{"missing required", `{"drug":"atenolol"}`, true},
		{"wrong type", `{"drug":"atenolol","doses":"one"}`, true},
		{"bad enum", `{"drug":"heparin","doses":2,"route":"nasal"}`, true},
		{"bad array item", `{"drug":"sertraline","doses":1,"pearls":[1,2]}`, true},
		{"malformed", `{"drug":`, true},
		{"empty", ``, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(drugNoteSchema(), json.RawMessage(tt.raw))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var inv *ErrInvalidResponse
			assert.ErrorAs(t, err, &inv)
		})
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	assert.NoError(t, validateResponse(nil, json.RawMessage(`not json`)))
}
