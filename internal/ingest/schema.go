package ingest

// BuildEnvelopeSchema returns the input envelope JSON-Schema (draft 2020-12
// subset) as a generic map. Used locally to reject malformed batches before
// any per-message work starts.
func BuildEnvelopeSchema() map[string]any {
	message := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":      map[string]any{"type": "integer"},
			"date":    map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
			"payload": map[string]any{"type": "string"},
		},
		"required": []string{"id", "payload"},
	}
	messages := map[string]any{
		"type":  "array",
		"items": message,
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"messages": messages,
			"reports":  messages,
		},
		"anyOf": []any{
			map[string]any{"required": []string{"messages"}},
			map[string]any{"required": []string{"reports"}},
		},
	}
}
