package multipass

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// InstanceInfo is the subset of instance metadata spinup reads.
type InstanceInfo struct {
	Name         string
	State        string
	IPv4         []string
	Release      string
	Mounts       []Mount
}

// Mount is a host directory bound into an instance.
type Mount struct {
	HostPath     string
	InstancePath string
}

// PrimaryIPv4 returns the first reported address, or "" if none.
func (i *InstanceInfo) PrimaryIPv4() string {
	if len(i.IPv4) == 0 {
		return ""
	}
	return i.IPv4[0]
}

// HasMount reports whether instancePath is mounted from hostPath.
func (i *InstanceInfo) HasMount(hostPath, instancePath string) bool {
	for _, m := range i.Mounts {
		if m.InstancePath == instancePath && m.HostPath == hostPath {
			return true
		}
	}
	return false
}

// instanceEntry mirrors one element of the per-instance sequence in
// multipass yaml output.
type instanceEntry struct {
	State   string                `yaml:"state"`
	IPv4    []string              `yaml:"ipv4"`
	Release string                `yaml:"release"`
	Mounts  map[string]mountEntry `yaml:"mounts"`
}

type mountEntry struct {
	SourcePath string `yaml:"source_path"`
}

// errorsKey holds per-instance errors in info output, as an empty list or a
// list of nulls. It is never an instance.
const errorsKey = "errors"

// parseInstances decodes info or list output. Both map instance names to a
// one-element sequence. The errors key and keys holding anything else are
// skipped.
func parseInstances(data []byte) ([]InstanceInfo, error) {
	var doc map[string]yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}

	names := make([]string, 0, len(doc))
	for name := range doc {
		if name == errorsKey {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var infos []InstanceInfo
	for _, name := range names {
		node := doc[name]
		if node.Kind != yaml.SequenceNode || len(node.Content) == 0 {
			continue
		}

		var entries []instanceEntry
		if err := node.Decode(&entries); err != nil {
			return nil, fmt.Errorf("instance %s: %w", name, err)
		}
		e := entries[0]

		info := InstanceInfo{
			Name:    name,
			State:   e.State,
			IPv4:    e.IPv4,
			Release: e.Release,
		}

		guestPaths := make([]string, 0, len(e.Mounts))
		for p := range e.Mounts {
			guestPaths = append(guestPaths, p)
		}
		sort.Strings(guestPaths)
		for _, p := range guestPaths {
			info.Mounts = append(info.Mounts, Mount{HostPath: e.Mounts[p].SourcePath, InstancePath: p})
		}

		infos = append(infos, info)
	}

	return infos, nil
}
