// Package status manages Instance status fields: the provisioning phase
// state machine and the per-stage conditions.
package status

import (
	"time"

	"github.com/jbweber/spinup/api/v1alpha1"
)

// SetCondition adds or updates a condition in the instance status.
// If a condition with the same type already exists, it updates it.
// The LastTransitionTime is only updated if the status changes.
func SetCondition(inst *v1alpha1.Instance, condType string, status v1alpha1.ConditionStatus, reason, message string) {
	now := time.Now()

	for i := range inst.Status.Conditions {
		if inst.Status.Conditions[i].Type == condType {
			existing := &inst.Status.Conditions[i]
			if existing.Status != status {
				existing.LastTransitionTime = now
			}
			existing.Status = status
			existing.Reason = reason
			existing.Message = message
			return
		}
	}

	inst.Status.Conditions = append(inst.Status.Conditions, v1alpha1.Condition{
		Type:               condType,
		Status:             status,
		LastTransitionTime: now,
		Reason:             reason,
		Message:            message,
	})
}

// GetCondition returns a condition by type, or nil if not found.
func GetCondition(inst *v1alpha1.Instance, condType string) *v1alpha1.Condition {
	for i := range inst.Status.Conditions {
		if inst.Status.Conditions[i].Type == condType {
			return &inst.Status.Conditions[i]
		}
	}
	return nil
}

// IsConditionTrue returns true if the condition exists and has status True.
func IsConditionTrue(inst *v1alpha1.Instance, condType string) bool {
	cond := GetCondition(inst, condType)
	return cond != nil && cond.Status == v1alpha1.ConditionTrue
}

// IsConditionFalse returns true if the condition exists and has status False.
func IsConditionFalse(inst *v1alpha1.Instance, condType string) bool {
	cond := GetCondition(inst, condType)
	return cond != nil && cond.Status == v1alpha1.ConditionFalse
}

// MarkMountAttached marks the mount condition as True.
func MarkMountAttached(inst *v1alpha1.Instance) {
	SetCondition(inst, v1alpha1.ConditionMountAttached, v1alpha1.ConditionTrue, "Mounted", inst.Spec.Mount.String())
}

// MarkMountFailed marks the mount condition as False. The phase is not
// changed: a failed mount leaves a ready, running instance.
func MarkMountFailed(inst *v1alpha1.Instance, reason string, err error) {
	SetCondition(inst, v1alpha1.ConditionMountAttached, v1alpha1.ConditionFalse, reason, err.Error())
}

// MarkAddressAssigned records the reported address.
func MarkAddressAssigned(inst *v1alpha1.Instance, ip string) {
	inst.Status.IPv4 = ip
	SetCondition(inst, v1alpha1.ConditionAddressAssigned, v1alpha1.ConditionTrue, "AddressReported", ip)
}

// MarkAddressPending records that no address has been reported yet.
func MarkAddressPending(inst *v1alpha1.Instance) {
	inst.Status.IPv4 = ""
	SetCondition(inst, v1alpha1.ConditionAddressAssigned, v1alpha1.ConditionFalse, "NoAddress", "control plane reported no IPv4 address")
}
