package output

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"github.com/jbweber/spinup/api/v1alpha1"
)

// PendingAddress is shown when the control plane has not reported an address.
const PendingAddress = "<pending>"

// TextFormatter prints the summary block shown at the end of a run.
type TextFormatter struct{}

// FormatInstance formats the run summary as aligned key/value lines.
func (f *TextFormatter) FormatInstance(inst *v1alpha1.Instance) (string, error) {
	if inst == nil {
		return "", fmt.Errorf("instance cannot be nil")
	}
	s := inst.Summary()

	ip := s.IPv4
	if ip == "" {
		ip = PendingAddress
	}

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "Instance %s is ready\n", s.Name)

	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "  Name:\t%s\n", s.Name)
	_, _ = fmt.Fprintf(w, "  Image:\t%s\n", s.ImageVersion)
	_, _ = fmt.Fprintf(w, "  IPv4:\t%s\n", ip)
	_, _ = fmt.Fprintf(w, "  SSH:\t%s\n", s.SSHHint)
	if inst.Spec.Mount != nil {
		_, _ = fmt.Fprintf(w, "  Mount:\t%s -> %s\n", inst.Spec.Mount.HostPath, inst.Spec.Mount.GuestPath)
	}
	_, _ = fmt.Fprintf(w, "  Config:\t%s\n", s.ConfigPath)
	if s.RunID != "" {
		_, _ = fmt.Fprintf(w, "  Run ID:\t%s\n", s.RunID)
	}
	_ = w.Flush()

	return buf.String(), nil
}
