package v1alpha1

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// GroupName is the API group for spinup resources.
	GroupName = "spinup.cofront.xyz"

	// Version is the API version.
	Version = "v1alpha1"

	// InstanceKind is the kind string for Instance resources.
	InstanceKind = "Instance"

	// DefaultSSHUser is the login user of stock Ubuntu cloud images.
	DefaultSSHUser = "ubuntu"
)

// NewInstance creates an Instance in the Requested phase with a fresh run UID.
func NewInstance(name string, spec InstanceSpec) *Instance {
	return &Instance{
		TypeMeta: TypeMeta{
			APIVersion: GroupName + "/" + Version,
			Kind:       InstanceKind,
		},
		ObjectMeta: ObjectMeta{
			Name:              name,
			UID:               uuid.New().String(),
			CreationTimestamp: time.Now(),
		},
		Spec: spec,
		Status: InstanceStatus{
			Phase: PhaseRequested,
		},
	}
}

// SetPhase sets the phase in status.
func (i *Instance) SetPhase(phase Phase) {
	i.Status.Phase = phase
}

// GetPhase returns the current phase.
func (i *Instance) GetPhase() Phase {
	return i.Status.Phase
}

// Running reports whether the control plane says the instance is running.
func (i *Instance) Running() bool {
	return strings.EqualFold(i.Status.State, "Running")
}

// SSHHint returns a command the user can run to reach the instance.
// Without an address it falls back to the control plane's own shell.
func (i *Instance) SSHHint() string {
	if i.Status.IPv4 == "" {
		return fmt.Sprintf("multipass shell %s", i.Name)
	}
	user := i.Status.SSHUser
	if user == "" {
		user = DefaultSSHUser
	}
	return fmt.Sprintf("ssh %s@%s", user, i.Status.IPv4)
}

// Summary flattens the instance into the record printed after a run.
func (i *Instance) Summary() Summary {
	return Summary{
		Name:         i.Name,
		ImageVersion: i.Spec.ImageVersion,
		IPv4:         i.Status.IPv4,
		SSHHint:      i.SSHHint(),
		Mount:        i.Spec.Mount.String(),
		ConfigPath:   i.Spec.ConfigPath,
		RunID:        i.UID,
	}
}
