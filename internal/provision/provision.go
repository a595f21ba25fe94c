package provision

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jbweber/spinup/api/v1alpha1"
	"github.com/jbweber/spinup/internal/apperrors"
	"github.com/jbweber/spinup/internal/cloudinit"
	"github.com/jbweber/spinup/internal/logger"
	"github.com/jbweber/spinup/internal/multipass"
	"github.com/jbweber/spinup/internal/request"
	"github.com/jbweber/spinup/internal/status"
)

// Options tune a run.
type Options struct {
	// LaunchTimeout is passed to multipass launch. Zero uses one hour.
	LaunchTimeout time.Duration

	// InitTimeout bounds the wait for cloud-init. Zero uses thirty minutes.
	InitTimeout time.Duration

	// CheckNameConflict fails the run before launch when the name is taken.
	CheckNameConflict bool
}

const (
	defaultLaunchTimeout = time.Hour
	defaultInitTimeout   = 30 * time.Minute
)

// Provisioner runs the provisioning sequence for one request.
type Provisioner struct {
	cp      controlPlane
	fs      hostFS
	inspect configInspector
	opts    Options
}

// New returns a Provisioner that drives the given multipass client.
func New(client *multipass.Client, opts Options) *Provisioner {
	return newWithDeps(client, osFS{}, cloudinit.Inspect, opts)
}

// newWithDeps creates a Provisioner with injected dependencies.
// This allows for testing by accepting interfaces instead of concrete types.
func newWithDeps(cp controlPlane, fsys hostFS, inspect configInspector, opts Options) *Provisioner {
	if opts.LaunchTimeout <= 0 {
		opts.LaunchTimeout = defaultLaunchTimeout
	}
	if opts.InitTimeout <= 0 {
		opts.InitTimeout = defaultInitTimeout
	}
	return &Provisioner{cp: cp, fs: fsys, inspect: inspect, opts: opts}
}

// Run provisions the instance described by req.
//
// The returned Instance is never nil. On error it reflects the stage the run
// stopped at, so callers can tell whether an instance was left behind.
func (p *Provisioner) Run(ctx context.Context, req *request.Request) (*v1alpha1.Instance, error) {
	inst := v1alpha1.NewInstance(req.Name, req.Spec)
	log := logger.GetDefault().WithInstance(inst.Name, inst.UID)

	if err := p.Preflight(ctx, inst); err != nil {
		return inst, err
	}
	if err := p.Sequence(ctx, inst); err != nil {
		return inst, err
	}
	if err := p.AttachMount(ctx, inst); err != nil {
		return inst, err
	}
	if _, err := p.Report(ctx, inst); err != nil {
		return inst, err
	}

	log.WithField("elapsed", time.Since(inst.CreationTimestamp).Round(time.Second).String()).
		Infof("Instance '%s' provisioned successfully!", inst.Name)
	return inst, nil
}

// Preflight checks the control plane before anything is created. The
// cloud-init document is inspected for the login user; problems there are
// logged and never fail the run.
func (p *Provisioner) Preflight(ctx context.Context, inst *v1alpha1.Instance) error {
	log := logger.GetDefault().WithInstance(inst.Name, inst.UID)

	version, err := p.cp.Version(ctx)
	if err != nil {
		return apperrors.ControlPlane(err, "preflight", "multipass is not available")
	}
	log.Debugf("Using %s", version)

	inst.Status.SSHUser = v1alpha1.DefaultSSHUser
	if doc, err := p.inspect(inst.Spec.ConfigPath); err != nil {
		log.Warnf("Could not inspect %s: %v", inst.Spec.ConfigPath, err)
	} else {
		for _, w := range doc.Warnings {
			log.Warnf("%s: %s", inst.Spec.ConfigPath, w)
		}
		inst.Status.SSHUser = doc.SSHUser()
	}

	if !p.opts.CheckNameConflict {
		log.Debugf("Skipping name conflict check")
		return nil
	}

	log.Infof("Checking if instance '%s' already exists...", inst.Name)
	exists, err := p.cp.Exists(ctx, inst.Name)
	if err != nil {
		return apperrors.ControlPlane(err, "preflight", "failed to list instances")
	}
	if exists {
		return apperrors.New(apperrors.KindControlPlane, "preflight",
			fmt.Sprintf("instance '%s' already exists", inst.Name))
	}
	return nil
}

// Sequence launches the instance and waits for cloud-init. On success the
// instance is Ready; on failure it is Failed and nothing is torn down.
func (p *Provisioner) Sequence(ctx context.Context, inst *v1alpha1.Instance) error {
	log := logger.GetDefault().WithInstance(inst.Name, inst.UID)
	spec := inst.Spec

	if err := status.TransitionToLaunching(inst); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"image":  spec.ImageVersion,
		"cpus":   spec.CPUs,
		"memory": spec.Memory,
		"disk":   spec.Disk,
	}).Infof("Launching instance '%s' from %s...", inst.Name, spec.ConfigPath)

	err := p.cp.Launch(ctx, multipass.LaunchOptions{
		Name:          inst.Name,
		Image:         spec.ImageVersion,
		CPUs:          spec.CPUs,
		Memory:        spec.Memory,
		Disk:          spec.Disk,
		CloudInitFile: spec.ConfigPath,
		Timeout:       p.opts.LaunchTimeout,
	})
	if err != nil {
		_ = status.TransitionToFailed(inst, "LaunchFailed", err.Error())
		return apperrors.ControlPlane(err, "launch", fmt.Sprintf("failed to launch instance '%s'", inst.Name))
	}
	if err := status.TransitionToLaunched(inst); err != nil {
		return err
	}

	if err := status.TransitionToWaitingForInit(inst); err != nil {
		return err
	}
	log.Infof("Waiting for cloud-init to finish (up to %s)...", p.opts.InitTimeout)

	if err := p.cp.WaitForCloudInit(ctx, inst.Name, p.opts.InitTimeout); err != nil {
		_ = status.TransitionToFailed(inst, "CloudInitFailed", err.Error())
		return apperrors.ControlPlane(err, "wait for cloud-init", fmt.Sprintf("cloud-init did not complete on '%s'", inst.Name))
	}
	return status.TransitionToReady(inst)
}

// AttachMount binds the requested host directory into a Ready instance.
// Without a mount request it returns immediately and makes no call.
func (p *Provisioner) AttachMount(ctx context.Context, inst *v1alpha1.Instance) error {
	mount := inst.Spec.Mount
	if mount == nil {
		return nil
	}
	if inst.GetPhase() != v1alpha1.PhaseReady {
		return fmt.Errorf("cannot attach mount in phase %s", inst.GetPhase())
	}
	log := logger.GetDefault().WithInstance(inst.Name, inst.UID)

	hostPath, err := p.fs.Abs(mount.HostPath)
	if err != nil {
		status.MarkMountFailed(inst, "HostPathNotFound", err)
		return apperrors.HostPathNotFound(mount.HostPath, err)
	}
	info, err := p.fs.Stat(hostPath)
	if err == nil && !info.IsDir() {
		err = fmt.Errorf("%s is not a directory: %w", hostPath, fs.ErrInvalid)
	}
	if err != nil {
		status.MarkMountFailed(inst, "HostPathNotFound", err)
		return apperrors.HostPathNotFound(mount.HostPath, err)
	}

	inst.Status.MountSource = hostPath
	log.Infof("Mounting %s at %s...", hostPath, mount.GuestPath)
	if err := p.cp.Mount(ctx, hostPath, inst.Name, mount.GuestPath); err != nil {
		status.MarkMountFailed(inst, "MountFailed", err)
		return apperrors.ControlPlane(err, "attach mount", fmt.Sprintf("failed to mount %s", mount))
	}

	status.MarkMountAttached(inst)
	return nil
}

// Report queries the control plane for the instance's address and state
// and returns the summary. A missing address is not an error, and neither
// is an attached mount the control plane does not list; that only turns
// MountAttached False.
func (p *Provisioner) Report(ctx context.Context, inst *v1alpha1.Instance) (v1alpha1.Summary, error) {
	log := logger.GetDefault().WithInstance(inst.Name, inst.UID)

	log.Infof("Querying instance info...")
	info, err := p.cp.Info(ctx, inst.Name)
	if err != nil {
		var notFound *multipass.NotFoundError
		if errors.As(err, &notFound) {
			return v1alpha1.Summary{}, apperrors.ControlPlane(err, "info", fmt.Sprintf("instance '%s' disappeared", inst.Name))
		}
		return v1alpha1.Summary{}, apperrors.ControlPlane(err, "info", fmt.Sprintf("failed to query instance '%s'", inst.Name))
	}

	inst.Status.State = info.State
	inst.Status.Release = info.Release

	if ip := info.PrimaryIPv4(); ip != "" {
		status.MarkAddressAssigned(inst, ip)
	} else {
		log.Warnf("Instance '%s' has no IPv4 address yet", inst.Name)
		status.MarkAddressPending(inst)
	}

	if status.IsConditionTrue(inst, v1alpha1.ConditionMountAttached) &&
		!info.HasMount(inst.Status.MountSource, inst.Spec.Mount.GuestPath) {
		log.Warnf("Mount %s is not listed by the control plane", inst.Spec.Mount)
		status.MarkMountFailed(inst, "MountNotListed",
			fmt.Errorf("%s is not mounted at %s", inst.Status.MountSource, inst.Spec.Mount.GuestPath))
	}

	if !inst.Running() {
		log.Warnf("Instance '%s' reports state %q", inst.Name, info.State)
	}

	return inst.Summary(), nil
}
