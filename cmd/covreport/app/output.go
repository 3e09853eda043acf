package app

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

type outputFormat string

const (
	formatMarkdown outputFormat = "markdown"
	formatJSON     outputFormat = "json"
	formatYAML     outputFormat = "yaml"
)

// parseOutputFormat accepts json and yaml, plus markdown when it is the
// command's native format.
func parseOutputFormat(s string, native outputFormat) (outputFormat, error) {
	switch f := outputFormat(s); f {
	case formatJSON, formatYAML, native:
		return f, nil
	}
	return "", fmt.Errorf("unsupported output format %q", s)
}

func writeOutput(w io.Writer, format outputFormat, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode JSON output: %w", err)
		}
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode YAML output: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
	return nil
}
