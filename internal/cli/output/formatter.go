// Package output renders command results for the cognito-srp CLI.
package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

// Format represents an output format.
type Format string

const (
	// FormatYAML represents YAML output format.
	FormatYAML Format = "yaml"
	// FormatJSON represents JSON output format.
	FormatJSON Format = "json"
	// FormatEnv renders flat string maps as shell export statements.
	FormatEnv Format = "env"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// FormatData formats data according to the specified format.
func FormatData(data any, format Format) (string, error) {
	switch format {
	case FormatYAML:
		return formatYAML(data)
	case FormatJSON:
		return formatJSON(data)
	case FormatEnv:
		return formatEnv(data)
	default:
		return "", fmt.Errorf("unsupported output format: %s", format)
	}
}

// Write formats data and writes it to w.
func Write(w io.Writer, data any, format Format) error {
	out, err := FormatData(data, format)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

func formatYAML(data any) (string, error) {
	bytes, err := yaml.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to format as YAML: %w", err)
	}
	return string(bytes), nil
}

func formatJSON(data any) (string, error) {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to format as JSON: %w", err)
	}
	return string(bytes) + "\n", nil
}

func formatEnv(data any) (string, error) {
	values, ok := data.(map[string]string)
	if !ok {
		return "", fmt.Errorf("env output needs a flat string map, got %T", data)
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "export %s='%s'\n", k, strings.ReplaceAll(values[k], "'", `'\''`))
	}
	return b.String(), nil
}

// ParseFormat parses a format string into a Format value.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	case "env":
		return FormatEnv, nil
	default:
		return "", fmt.Errorf("invalid output format '%s': must be 'yaml', 'json' or 'env'", s)
	}
}
