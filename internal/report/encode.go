package report

import (
	"encoding/json"
	"io"
	"slices"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/koustreak/dbsnap/internal/errs"
)

// Output formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Formats lists the supported output formats.
func Formats() []string { return []string{FormatYAML, FormatJSON} }

// ParseFormat normalizes a user-supplied format name ("yml" is accepted).
func ParseFormat(s string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(s))
	if f == "yml" {
		f = FormatYAML
	}
	if !slices.Contains(Formats(), f) {
		return "", errs.New(errs.ErrKindInvalidInput, "unsupported format "+s+" (want yaml or json)")
	}
	return f, nil
}

// Encode writes v to w in format.
func Encode(w io.Writer, v any, format string) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return errs.Wrap(errs.ErrKindInvalidData, "encode yaml", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return errs.Wrap(errs.ErrKindInvalidData, "encode json", err)
		}
		return nil
	}
	return errs.New(errs.ErrKindInvalidInput, "unsupported format "+format)
}

// ContentType returns the MIME type of format.
func ContentType(format string) string {
	if format == FormatJSON {
		return "application/json"
	}
	return "application/yaml"
}
