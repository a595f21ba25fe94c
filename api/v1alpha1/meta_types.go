// Package v1alpha1 contains API types for spinup.cofront.xyz/v1alpha1
//
// The types follow Kubernetes API conventions (TypeMeta, ObjectMeta, Spec,
// Status) so that a provisioned instance prints as a familiar resource in
// yaml and json output. Nothing here is persisted: the control plane owns
// all durable state and these values live only for a single run.
package v1alpha1

import "time"

// TypeMeta describes an individual object's type and API version.
type TypeMeta struct {
	// Kind is the resource kind in CamelCase.
	// +optional
	Kind string `json:"kind,omitempty" yaml:"kind,omitempty"`

	// APIVersion is the versioned schema of this representation of an object.
	// +optional
	APIVersion string `json:"apiVersion,omitempty" yaml:"apiVersion,omitempty"`
}

// ObjectMeta is the metadata carried by every resource.
type ObjectMeta struct {
	// Name is the control-plane instance name.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// UID identifies a single provisioning run. Two runs that resolve to the
	// same instance name still get distinct UIDs.
	// +optional
	UID string `json:"uid,omitempty" yaml:"uid,omitempty"`

	// CreationTimestamp is when the run started.
	// +optional
	CreationTimestamp time.Time `json:"creationTimestamp,omitempty" yaml:"creationTimestamp,omitempty"`
}

// Condition contains details for one aspect of the instance's state.
type Condition struct {
	// Type of condition in CamelCase.
	Type string `json:"type" yaml:"type"`

	// Status of the condition, one of True, False, Unknown.
	Status ConditionStatus `json:"status" yaml:"status"`

	// LastTransitionTime is the last time the condition changed status.
	// +optional
	LastTransitionTime time.Time `json:"lastTransitionTime,omitempty" yaml:"lastTransitionTime,omitempty"`

	// Reason is a CamelCase identifier for the last transition.
	// +optional
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`

	// Message is a human-readable description of the transition.
	// +optional
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// ConditionStatus represents the status of a condition.
type ConditionStatus string

const (
	// ConditionTrue means a resource is in the condition.
	ConditionTrue ConditionStatus = "True"
	// ConditionFalse means a resource is not in the condition.
	ConditionFalse ConditionStatus = "False"
	// ConditionUnknown means the condition status is currently unknown.
	ConditionUnknown ConditionStatus = "Unknown"
)
