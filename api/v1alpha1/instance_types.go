package v1alpha1

// Instance is a Multipass virtual machine provisioned by spinup.
//
// Spec is the resolved provisioning request and never changes after the
// instance is created. Status is filled in as each stage of the run
// completes; IPv4 in particular stays empty until the info query succeeds.
type Instance struct {
	TypeMeta `json:",inline" yaml:",inline"`

	ObjectMeta `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	// Spec is the resolved provisioning request.
	Spec InstanceSpec `json:"spec" yaml:"spec"`

	// Status is the state observed from the control plane during this run.
	// +optional
	Status InstanceStatus `json:"status,omitempty" yaml:"status,omitempty"`
}

// InstanceSpec defines the desired instance.
type InstanceSpec struct {
	// ImageVersion is the base image passed to launch (e.g. "24.04").
	ImageVersion string `json:"imageVersion" yaml:"imageVersion"`

	// CPUs is the number of virtual CPUs.
	CPUs int `json:"cpus" yaml:"cpus"`

	// Memory is the memory size token as given to the control plane (e.g. "4G").
	Memory string `json:"memory" yaml:"memory"`

	// Disk is the disk size token as given to the control plane (e.g. "20G").
	Disk string `json:"disk" yaml:"disk"`

	// ConfigPath is the cloud-init document handed to launch.
	ConfigPath string `json:"configPath" yaml:"configPath"`

	// Mount is an optional host directory bound into the guest once ready.
	// +optional
	Mount *MountSpec `json:"mount,omitempty" yaml:"mount,omitempty"`
}

// MountSpec binds a host directory to a guest path.
type MountSpec struct {
	HostPath  string `json:"hostPath" yaml:"hostPath"`
	GuestPath string `json:"guestPath" yaml:"guestPath"`
}

// String returns the mount in host:guest form.
func (m *MountSpec) String() string {
	if m == nil {
		return ""
	}
	return m.HostPath + ":" + m.GuestPath
}

// InstanceStatus is the observed state of an Instance.
type InstanceStatus struct {
	// Phase is the position of the run in the provisioning state machine.
	// +optional
	Phase Phase `json:"phase,omitempty" yaml:"phase,omitempty"`

	// Conditions record the outcome of each provisioning stage.
	// +optional
	Conditions []Condition `json:"conditions,omitempty" yaml:"conditions,omitempty"`

	// State is the instance state as reported by the control plane (e.g. "Running").
	// +optional
	State string `json:"state,omitempty" yaml:"state,omitempty"`

	// IPv4 is the first address reported by the control plane, if any.
	// +optional
	IPv4 string `json:"ipv4,omitempty" yaml:"ipv4,omitempty"`

	// Release is the guest OS release reported by the control plane.
	// +optional
	Release string `json:"release,omitempty" yaml:"release,omitempty"`

	// MountSource is the absolute host path handed to the mount call.
	// +optional
	MountSource string `json:"mountSource,omitempty" yaml:"mountSource,omitempty"`

	// SSHUser is the login user used for the SSH hint.
	// +optional
	SSHUser string `json:"sshUser,omitempty" yaml:"sshUser,omitempty"`
}

// Phase is the lifecycle phase of a provisioning run.
type Phase string

const (
	// PhaseRequested means the request is resolved and nothing has been sent yet.
	PhaseRequested Phase = "Requested"

	// PhaseLaunching means the launch call is in flight.
	PhaseLaunching Phase = "Launching"

	// PhaseLaunched means the control plane created and booted the instance.
	PhaseLaunched Phase = "Launched"

	// PhaseWaitingForInit means the run is blocked on cloud-init in the guest.
	PhaseWaitingForInit Phase = "WaitingForInit"

	// PhaseReady means cloud-init reported success.
	PhaseReady Phase = "Ready"

	// PhaseFailed means launch or initialization failed. There is no way back.
	PhaseFailed Phase = "Failed"
)

// Standard condition types for Instance resources.
const (
	// ConditionLaunched indicates the launch call succeeded.
	ConditionLaunched = "Launched"

	// ConditionCloudInitDone indicates cloud-init reached a successful terminal status.
	ConditionCloudInitDone = "CloudInitDone"

	// ConditionMountAttached indicates the requested host directory is mounted.
	ConditionMountAttached = "MountAttached"

	// ConditionAddressAssigned indicates the control plane reported an IPv4 address.
	ConditionAddressAssigned = "AddressAssigned"
)

// Summary is the flat record printed at the end of a successful run.
type Summary struct {
	Name         string `json:"name" yaml:"name"`
	ImageVersion string `json:"imageVersion" yaml:"imageVersion"`
	IPv4         string `json:"ipv4" yaml:"ipv4"`
	SSHHint      string `json:"sshHint" yaml:"sshHint"`
	Mount        string `json:"mount,omitempty" yaml:"mount,omitempty"`
	ConfigPath   string `json:"configPath" yaml:"configPath"`
	RunID        string `json:"runID,omitempty" yaml:"runID,omitempty"`
}
