package output

import (
	"bytes"
	"fmt"
	"text/tabwriter"
	"time"

	units "github.com/docker/go-units"

	"github.com/jbweber/spinup/api/v1alpha1"
)

// TableFormatter formats an instance as a human-readable table row.
type TableFormatter struct{}

// FormatInstance formats a single Instance as a table.
func (f *TableFormatter) FormatInstance(inst *v1alpha1.Instance) (string, error) {
	if inst == nil {
		return "", fmt.Errorf("instance cannot be nil")
	}

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintln(w, "NAME\tPHASE\tIPV4\tIMAGE\tCPUS\tMEMORY\tDISK\tAGE")

	phase := string(inst.Status.Phase)
	if phase == "" {
		phase = "-"
	}
	ip := inst.Status.IPv4
	if ip == "" {
		ip = "-"
	}

	age := "-"
	if !inst.CreationTimestamp.IsZero() {
		age = formatAge(time.Since(inst.CreationTimestamp))
	}

	_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
		inst.Name, phase, ip, inst.Spec.ImageVersion, inst.Spec.CPUs,
		formatSize(inst.Spec.Memory), formatSize(inst.Spec.Disk), age)

	_ = w.Flush()
	return buf.String(), nil
}

// formatSize renders a size token in binary units, e.g. "4G" -> "4GiB".
// Tokens that do not parse are shown as given.
func formatSize(token string) string {
	if token == "" {
		return "-"
	}
	n, err := units.RAMInBytes(token)
	if err != nil {
		return token
	}
	return units.BytesSize(float64(n))
}

// formatAge formats a duration as a human-readable age string.
// Examples: "5s", "2m", "3h", "4d"
func formatAge(d time.Duration) string {
	if d < 0 {
		return "unknown"
	}

	seconds := int(d.Seconds())
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}

	minutes := seconds / 60
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}

	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%dh", hours)
	}

	return fmt.Sprintf("%dd", hours/24)
}
