package multipass

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jbweber/spinup/internal/logger"
)

const (
	// DefaultBinary is looked up on PATH when no binary is configured.
	DefaultBinary = "multipass"

	// LaunchGrace is added to the launch timeout for the local deadline so
	// that multipass reports its own timeout before the process is killed.
	LaunchGrace = time.Minute
)

// Client issues multipass commands.
type Client struct {
	binary string
	runner Runner
	log    *logrus.Entry
}

// New returns a Client for the given binary. An empty binary uses
// DefaultBinary and a nil runner uses ExecRunner.
func New(binary string, runner Runner) *Client {
	if binary == "" {
		binary = DefaultBinary
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Client{
		binary: binary,
		runner: runner,
		log:    logger.WithComponent("multipass"),
	}
}

// Binary returns the configured multipass binary.
func (c *Client) Binary() string {
	return c.binary
}

// LaunchOptions controls instance creation.
type LaunchOptions struct {
	Name          string
	Image         string
	CPUs          int
	Memory        string
	Disk          string
	CloudInitFile string

	// Timeout is passed to multipass as --timeout. Zero leaves the
	// multipass default in place and sets no local deadline.
	Timeout time.Duration
}

// Args returns the launch command line for the options.
func (o LaunchOptions) Args() []string {
	args := []string{"launch"}
	if o.Image != "" {
		args = append(args, o.Image)
	}
	args = append(args, "--name", o.Name)
	if o.CPUs > 0 {
		args = append(args, "--cpus", strconv.Itoa(o.CPUs))
	}
	if o.Memory != "" {
		args = append(args, "--memory", o.Memory)
	}
	if o.Disk != "" {
		args = append(args, "--disk", o.Disk)
	}
	if o.CloudInitFile != "" {
		args = append(args, "--cloud-init", o.CloudInitFile)
	}
	if o.Timeout > 0 {
		args = append(args, "--timeout", strconv.Itoa(int(o.Timeout/time.Second)))
	}
	return args
}

// Launch creates and boots an instance. It returns once multipass reports
// the instance started, which happens before cloud-init has finished.
func (c *Client) Launch(ctx context.Context, opts LaunchOptions) error {
	if opts.Name == "" {
		return fmt.Errorf("launch requires an instance name")
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout+LaunchGrace)
		defer cancel()
	}

	_, err := c.run(ctx, opts.Args()...)
	return err
}

// WaitForCloudInit blocks until cloud-init in the instance reaches a
// terminal status. Any status other than done is an error. A positive
// timeout bounds the wait.
func (c *Client) WaitForCloudInit(ctx context.Context, name string, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	_, err := c.run(ctx, "exec", name, "--", "cloud-init", "status", "--wait")
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("cloud-init did not finish within %s: %w", timeout, err)
	}
	return err
}

// Mount binds hostPath into the instance at guestPath.
func (c *Client) Mount(ctx context.Context, hostPath, name, guestPath string) error {
	_, err := c.run(ctx, "mount", hostPath, name+":"+guestPath)
	return err
}

// Info returns the control plane's view of a single instance.
func (c *Client) Info(ctx context.Context, name string) (*InstanceInfo, error) {
	res, err := c.run(ctx, "info", name, "--format", "yaml")
	if err != nil {
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) && strings.Contains(cmdErr.Stderr, "does not exist") {
			return nil, &NotFoundError{Name: name}
		}
		return nil, err
	}

	infos, err := parseInstances(res.Stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to parse info for %s: %w", name, err)
	}
	for i := range infos {
		if infos[i].Name == name {
			return &infos[i], nil
		}
	}
	return nil, &NotFoundError{Name: name}
}

// List returns every instance known to the control plane.
func (c *Client) List(ctx context.Context) ([]InstanceInfo, error) {
	res, err := c.run(ctx, "list", "--format", "yaml")
	if err != nil {
		return nil, err
	}

	infos, err := parseInstances(res.Stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to parse instance list: %w", err)
	}
	return infos, nil
}

// Exists reports whether an instance with the given name is known.
func (c *Client) Exists(ctx context.Context, name string) (bool, error) {
	infos, err := c.List(ctx)
	if err != nil {
		return false, err
	}
	for _, info := range infos {
		if info.Name == name {
			return true, nil
		}
	}
	return false, nil
}

// Version returns the first line of multipass version output.
func (c *Client) Version(ctx context.Context) (string, error) {
	res, err := c.run(ctx, "version")
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(res.Stdout)), "\n")
	return strings.TrimSpace(line), nil
}

// run executes one multipass command. Any failure, including context
// cancellation, comes back as a *CommandError.
func (c *Client) run(ctx context.Context, args ...string) (Result, error) {
	c.log.Debugf("running %s %s", c.binary, strings.Join(args, " "))
	start := time.Now()

	res, err := c.runner.Run(ctx, c.binary, args...)
	c.log.WithFields(logrus.Fields{
		"command":  args[0],
		"exitCode": res.ExitCode,
		"elapsed":  time.Since(start).Round(time.Millisecond).String(),
	}).Debug("command finished")

	if err == nil && res.ExitCode != 0 {
		err = fmt.Errorf("exit status %d", res.ExitCode)
	}
	if err != nil {
		exitCode := res.ExitCode
		if exitCode == 0 {
			exitCode = -1
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %w", ctxErr, err)
		}
		return res, &CommandError{
			Args:     args,
			ExitCode: exitCode,
			Stderr:   strings.TrimSpace(string(res.Stderr)),
			Err:      err,
		}
	}
	return res, nil
}
