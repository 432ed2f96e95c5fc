// Package export renders the output batch for downstream consumers.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mkuznetsov-agro/agroreport/internal/entity"
)

// EncodeJSON writes the output envelope to w. HTML escaping is off so the
// Cyrillic payloads stay readable in the file.
func EncodeJSON(w io.Writer, out entity.OutputBatch) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// WriteJSON writes the output envelope to a file.
func WriteJSON(path string, out entity.OutputBatch) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()
	if err := EncodeJSON(f, out); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
