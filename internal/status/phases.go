package status

import (
	"fmt"

	"github.com/jbweber/spinup/api/v1alpha1"
)

// transition moves inst from one of the allowed phases to next. The phase is
// left untouched when the current phase is not allowed.
func transition(inst *v1alpha1.Instance, next v1alpha1.Phase, allowed ...v1alpha1.Phase) error {
	phase := inst.GetPhase()
	for _, p := range allowed {
		if phase == p {
			inst.SetPhase(next)
			return nil
		}
	}
	return fmt.Errorf("cannot transition to %s from phase %s", next, phase)
}

// TransitionToLaunching marks the launch call as in flight.
func TransitionToLaunching(inst *v1alpha1.Instance) error {
	if err := transition(inst, v1alpha1.PhaseLaunching, v1alpha1.PhaseRequested); err != nil {
		return err
	}
	SetCondition(inst, v1alpha1.ConditionLaunched, v1alpha1.ConditionUnknown, "Launching", "Launch in progress")
	return nil
}

// TransitionToLaunched records a successful launch.
func TransitionToLaunched(inst *v1alpha1.Instance) error {
	if err := transition(inst, v1alpha1.PhaseLaunched, v1alpha1.PhaseLaunching); err != nil {
		return err
	}
	SetCondition(inst, v1alpha1.ConditionLaunched, v1alpha1.ConditionTrue, "Launched", "Instance created and started")
	return nil
}

// TransitionToWaitingForInit marks the run as blocked on cloud-init.
func TransitionToWaitingForInit(inst *v1alpha1.Instance) error {
	if err := transition(inst, v1alpha1.PhaseWaitingForInit, v1alpha1.PhaseLaunched); err != nil {
		return err
	}
	SetCondition(inst, v1alpha1.ConditionCloudInitDone, v1alpha1.ConditionUnknown, "Waiting", "Waiting for cloud-init to finish")
	return nil
}

// TransitionToReady records that cloud-init finished successfully.
func TransitionToReady(inst *v1alpha1.Instance) error {
	if err := transition(inst, v1alpha1.PhaseReady, v1alpha1.PhaseWaitingForInit); err != nil {
		return err
	}
	SetCondition(inst, v1alpha1.ConditionCloudInitDone, v1alpha1.ConditionTrue, "CloudInitDone", "cloud-init reported done")
	return nil
}

// TransitionToFailed marks the run as failed. Only the in-flight phases
// can fail; the condition for the stage that was running is set to False.
func TransitionToFailed(inst *v1alpha1.Instance, reason, message string) error {
	phase := inst.GetPhase()
	if err := transition(inst, v1alpha1.PhaseFailed, v1alpha1.PhaseLaunching, v1alpha1.PhaseWaitingForInit); err != nil {
		return err
	}

	switch phase {
	case v1alpha1.PhaseLaunching:
		SetCondition(inst, v1alpha1.ConditionLaunched, v1alpha1.ConditionFalse, reason, message)
	case v1alpha1.PhaseWaitingForInit:
		SetCondition(inst, v1alpha1.ConditionCloudInitDone, v1alpha1.ConditionFalse, reason, message)
	}
	return nil
}

// MayBeOrphaned reports whether an interrupted run in this phase can have
// left an instance behind in the control plane.
func MayBeOrphaned(phase v1alpha1.Phase) bool {
	return phase != v1alpha1.PhaseRequested
}
