package output

import (
	"encoding/json"
	"fmt"

	"github.com/jbweber/spinup/api/v1alpha1"
)

// JSONFormatter formats the run summary as JSON.
type JSONFormatter struct{}

// FormatInstance formats the summary of inst as an indented JSON object.
func (f *JSONFormatter) FormatInstance(inst *v1alpha1.Instance) (string, error) {
	if inst == nil {
		return "", fmt.Errorf("instance cannot be nil")
	}

	data, err := json.MarshalIndent(inst.Summary(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal summary to JSON: %w", err)
	}

	return string(data) + "\n", nil
}
