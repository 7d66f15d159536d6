package util

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Encode writes v to w as JSON or YAML. For the text format, text is called
// instead.
func Encode(w io.Writer, format string, v interface{},
	text func(w io.Writer) error) error {

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		return text(w)
	}
	return fmt.Errorf("unknown output format '%s'", format)
}
