// Package request turns command-line arguments into a validated
// provisioning request.
//
// The accepted surface is
//
//	[vm-name] <config-file> [--mount <host>:<guest>] [image] [cpus] [memory] [disk]
//
// The name and config file are told apart in two passes. The first pass
// separates flags from positional tokens. The second looks at the first
// two positional tokens and takes the last one naming an existing regular
// file as the configuration document; a token before it is the name.
// Whatever follows fills the resource profile by position.
package request

import (
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	units "github.com/docker/go-units"

	"github.com/jbweber/spinup/api/v1alpha1"
	"github.com/jbweber/spinup/internal/apperrors"
	"github.com/jbweber/spinup/internal/naming"
)

const mountFlag = "--mount"

// maxResourceArgs is the number of positional tokens after the config file:
// image, cpus, memory, disk.
const maxResourceArgs = 4

// Defaults supplies values for resource arguments that were not given.
type Defaults struct {
	ImageVersion string
	CPUs         int
	Memory       string
	Disk         string
}

// BuiltinDefaults returns the defaults used when no settings override them.
func BuiltinDefaults() Defaults {
	return Defaults{
		ImageVersion: "24.04",
		CPUs:         2,
		Memory:       "4G",
		Disk:         "20G",
	}
}

// Request is a resolved provisioning request. It is never modified after
// Resolve returns.
type Request struct {
	// Name is the control-plane instance name.
	Name string

	// NameGenerated is true when Name was synthesized from the config path.
	NameGenerated bool

	// Spec is the desired instance.
	Spec v1alpha1.InstanceSpec
}

// statFunc matches os.Stat.
type statFunc func(name string) (fs.FileInfo, error)

// generateFunc matches naming.Generate.
type generateFunc func(configPath string) (string, error)

// Resolve validates args and merges them with defaults.
//
// No control-plane call is made. The mount host directory is not checked
// here; that happens after the instance is ready.
func Resolve(args []string, defaults Defaults) (*Request, error) {
	return resolveWithDeps(args, defaults, os.Stat, naming.Generate)
}

func resolveWithDeps(args []string, defaults Defaults, stat statFunc, generate generateFunc) (*Request, error) {
	if len(args) == 0 {
		return nil, apperrors.Usage(apperrors.ErrMissingArgument, "a configuration file is required")
	}

	// Pass one: flags out, positional tokens kept in order.
	positional, mount, err := splitArgs(args)
	if err != nil {
		return nil, err
	}
	if len(positional) == 0 {
		return nil, apperrors.Usage(apperrors.ErrMissingArgument, "a configuration file is required")
	}

	// Pass two: classify name and config file.
	configIdx, err := locateConfig(positional, stat)
	if err != nil {
		return nil, err
	}

	var name string
	if configIdx == 1 {
		name = positional[0]
	}

	spec, err := resourceSpec(positional[configIdx+1:], defaults)
	if err != nil {
		return nil, err
	}
	spec.ConfigPath = positional[configIdx]
	spec.Mount = mount

	req := &Request{Name: name, Spec: spec}
	if name == "" {
		generated, err := generate(spec.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("failed to generate instance name: %w", err)
		}
		req.Name = generated
		req.NameGenerated = true
	}

	return req, nil
}

// splitArgs separates the --mount flag from positional tokens.
func splitArgs(args []string) ([]string, *v1alpha1.MountSpec, error) {
	var positional []string
	var mount *v1alpha1.MountSpec

	for i := 0; i < len(args); i++ {
		tok := args[i]
		if !strings.HasPrefix(tok, "--") {
			positional = append(positional, tok)
			continue
		}

		var value string
		switch {
		case tok == mountFlag:
			if i+1 >= len(args) || strings.HasPrefix(args[i+1], "--") {
				return nil, nil, apperrors.Usage(apperrors.ErrBadMountSpec, "%s requires a <host-dir>:<guest-dir> value", mountFlag)
			}
			i++
			value = args[i]
		case strings.HasPrefix(tok, mountFlag+"="):
			value = strings.TrimPrefix(tok, mountFlag+"=")
		default:
			return nil, nil, apperrors.Usage(apperrors.ErrUnknownFlag, "unknown flag %q", tok)
		}

		if mount != nil {
			return nil, nil, apperrors.Usage(apperrors.ErrBadMountSpec, "%s may be given only once", mountFlag)
		}
		m, err := ParseMount(value)
		if err != nil {
			return nil, nil, err
		}
		mount = m
	}

	return positional, mount, nil
}

// ParseMount parses a host:guest pair. The split is at the first colon and
// both sides must be non-empty.
func ParseMount(value string) (*v1alpha1.MountSpec, error) {
	host, guest, ok := strings.Cut(value, ":")
	if !ok || host == "" || guest == "" {
		return nil, apperrors.Usage(apperrors.ErrBadMountSpec, "%s requires <host-dir>:<guest-dir>, got %q", mountFlag, value)
	}
	return &v1alpha1.MountSpec{HostPath: host, GuestPath: guest}, nil
}

// locateConfig returns the index of the configuration document among the
// first two positional tokens.
func locateConfig(positional []string, stat statFunc) (int, error) {
	candidates := positional
	if len(candidates) > 2 {
		candidates = candidates[:2]
	}

	found := -1
	var lastErr error
	for i, tok := range candidates {
		info, err := stat(tok)
		if err != nil {
			lastErr = err
			continue
		}
		if info.Mode().IsRegular() {
			found = i
		} else {
			lastErr = fmt.Errorf("%s is not a regular file", tok)
		}
	}
	if found >= 0 {
		return found, nil
	}

	// Nothing exists. Pick the token the user most likely meant as the
	// config so the error names it.
	guess := len(candidates) - 1
	for i := len(candidates) - 1; i >= 0; i-- {
		if naming.HasConfigExtension(candidates[i]) {
			guess = i
			break
		}
	}
	if lastErr == nil {
		lastErr = fs.ErrNotExist
	}
	return -1, apperrors.ConfigNotFound(candidates[guess], lastErr)
}

// resourceSpec fills image, cpus, memory and disk by position.
func resourceSpec(rest []string, defaults Defaults) (v1alpha1.InstanceSpec, error) {
	spec := v1alpha1.InstanceSpec{
		ImageVersion: defaults.ImageVersion,
		CPUs:         defaults.CPUs,
		Memory:       defaults.Memory,
		Disk:         defaults.Disk,
	}

	if len(rest) > maxResourceArgs {
		return spec, apperrors.Usage(apperrors.ErrTooManyArguments,
			"expected at most %d arguments after the config file, got %d: %s",
			maxResourceArgs, len(rest), strings.Join(rest, " "))
	}

	if len(rest) > 0 {
		spec.ImageVersion = rest[0]
	}
	if len(rest) > 1 {
		cpus, err := strconv.Atoi(rest[1])
		if err != nil || cpus < 1 {
			return spec, apperrors.Usage(apperrors.ErrInvalidResource, "cpus must be a positive integer, got %q", rest[1])
		}
		spec.CPUs = cpus
	}
	if len(rest) > 2 {
		if err := ValidateSize(rest[2]); err != nil {
			return spec, apperrors.Usage(apperrors.ErrInvalidResource, "memory %v", err)
		}
		spec.Memory = rest[2]
	}
	if len(rest) > 3 {
		if err := ValidateSize(rest[3]); err != nil {
			return spec, apperrors.Usage(apperrors.ErrInvalidResource, "disk %v", err)
		}
		spec.Disk = rest[3]
	}

	return spec, nil
}

// ValidateSize checks that token is a positive size such as 512M or 20G.
func ValidateSize(token string) error {
	n, err := units.RAMInBytes(token)
	if err != nil {
		return fmt.Errorf("must be a size like 4G or 512M, got %q", token)
	}
	if n <= 0 {
		return fmt.Errorf("must be greater than zero, got %q", token)
	}
	return nil
}
