// Package ingest decodes and validates the input message envelope.
package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/mkuznetsov-agro/agroreport/internal/common"
	"github.com/mkuznetsov-agro/agroreport/internal/entity"
)

// Load reads and decodes an input envelope file. Structural problems are
// fatal for the whole run (BatchLevelError), never per-message.
func Load(path string, logger *slog.Logger) (entity.Batch, error) {
	if logger == nil {
		logger = slog.Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return entity.Batch{}, common.NewAppError("INPUT_READ", fmt.Sprintf("read input file %s", path), err)
	}
	batch, err := Decode(data)
	if err != nil {
		return entity.Batch{}, err
	}
	logger.Info("ingest.loaded", "path", path, "messages", len(batch.Messages))
	return batch, nil
}

// Decode parses the envelope and validates it against the schema. A legacy
// envelope keyed "reports" is accepted as a message source too.
func Decode(data []byte) (entity.Batch, error) {
	if err := validateAgainstSchema(BuildEnvelopeSchema(), data); err != nil {
		return entity.Batch{}, common.NewAppError("BATCH_INVALID", "input envelope does not match schema", err)
	}

	var envelope struct {
		Messages []entity.Message `json:"messages"`
		Reports  []entity.Message `json:"reports"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return entity.Batch{}, common.NewAppError("BATCH_INVALID", "decode input envelope", err)
	}

	msgs := envelope.Messages
	if len(msgs) == 0 {
		msgs = envelope.Reports
	}

	seen := make(map[int]bool, len(msgs))
	for _, m := range msgs {
		if seen[m.ID] {
			return entity.Batch{}, common.NewAppError("BATCH_INVALID", fmt.Sprintf("duplicate message id %d", m.ID), common.ErrInvalidInput)
		}
		seen[m.ID] = true
	}
	return entity.Batch{Messages: msgs}, nil
}

// validateAgainstSchema validates data against a generic schema map.
func validateAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("envelope.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("envelope.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
