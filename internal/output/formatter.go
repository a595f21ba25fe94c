// Package output renders the result of a provisioning run in various
// formats (text, table, YAML, JSON).
package output

import (
	"fmt"

	"github.com/jbweber/spinup/api/v1alpha1"
)

// Format represents an output format type.
type Format string

const (
	// FormatText is the human-readable summary block.
	FormatText Format = "text"
	// FormatTable is a single-row table.
	FormatTable Format = "table"
	// FormatYAML is the summary record as YAML.
	FormatYAML Format = "yaml"
	// FormatJSON is the summary record as JSON for machine consumption.
	FormatJSON Format = "json"
)

// Formatter formats a provisioned instance for output.
type Formatter interface {
	// FormatInstance formats the final state of a run.
	FormatInstance(inst *v1alpha1.Instance) (string, error)
}

// Options contains options for formatting output.
type Options struct {
	// Format specifies the output format.
	Format Format
}

// NewFormatter creates a new Formatter based on the specified format.
// An empty format selects FormatText.
func NewFormatter(opts Options) (Formatter, error) {
	switch opts.Format {
	case FormatText, "":
		return &TextFormatter{}, nil
	case FormatTable:
		return &TableFormatter{}, nil
	case FormatYAML:
		return &YAMLFormatter{}, nil
	case FormatJSON:
		return &JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (supported: text, table, yaml, json)", opts.Format)
	}
}

// ValidateFormat checks if a format string is valid.
func ValidateFormat(format string) error {
	switch Format(format) {
	case FormatText, FormatTable, FormatYAML, FormatJSON:
		return nil
	default:
		return fmt.Errorf("invalid format: %s (valid formats: text, table, yaml, json)", format)
	}
}
