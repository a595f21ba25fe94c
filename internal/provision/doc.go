// Package provision drives a single provisioning run against the control
// plane.
//
// A run is a fixed sequence of blocking calls:
//
//  1. Pre-flight: control plane version, optional name conflict check
//  2. Launch the instance with the cloud-init document
//  3. Wait for cloud-init to reach a terminal status
//  4. Attach the host directory mount, if one was requested
//  5. Query instance info and build the summary
//
// Each step starts only after the previous one returned. The first failure
// ends the run.
//
// Error Handling:
//
// Nothing is rolled back. An instance that launched stays in the control
// plane whatever happens afterwards, and the returned Instance records how
// far the run got (Status.Phase plus one condition per stage). Errors are
// *apperrors.Error values: ControlPlaneError for any failed call and
// HostPathNotFound when the mount source is missing. The mount source is
// checked only once the instance is Ready, so a bad path never prevents
// the launch.
//
// Context Support:
//
// Every call receives the run's context. Cancelling it kills the command
// in flight; the instance may then be left half provisioned.
package provision
