package cloudinit

import (
	"fmt"
	"path/filepath"
	"sort"
)

// DiscoverPatterns match configuration documents that follow the
// cloud-init-<role> naming convention.
var DiscoverPatterns = []string{"cloud-init-*.yaml", "cloud-init-*.yml"}

// Discover lists the configuration documents in dir, sorted by name.
func Discover(dir string) ([]string, error) {
	var found []string
	for _, pattern := range DiscoverPatterns {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", pattern, err)
		}
		for _, m := range matches {
			found = append(found, filepath.Base(m))
		}
	}
	sort.Strings(found)
	return found, nil
}
