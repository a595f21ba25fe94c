package output

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/jbweber/spinup/api/v1alpha1"
)

// YAMLFormatter formats the run summary as YAML.
type YAMLFormatter struct{}

// FormatInstance formats the summary of inst as a YAML document.
func (f *YAMLFormatter) FormatInstance(inst *v1alpha1.Instance) (string, error) {
	if inst == nil {
		return "", fmt.Errorf("instance cannot be nil")
	}

	data, err := yaml.Marshal(inst.Summary())
	if err != nil {
		return "", fmt.Errorf("failed to marshal summary to YAML: %w", err)
	}

	return string(data), nil
}
