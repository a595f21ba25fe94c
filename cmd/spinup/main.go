package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jbweber/spinup/internal/apperrors"
	"github.com/jbweber/spinup/internal/config"
	"github.com/jbweber/spinup/internal/logger"
	"github.com/jbweber/spinup/internal/multipass"
	"github.com/jbweber/spinup/internal/output"
	"github.com/jbweber/spinup/internal/provision"
	"github.com/jbweber/spinup/internal/request"
	"github.com/jbweber/spinup/internal/status"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, newApp(), os.Args[1:])
	stop()
	os.Exit(code)
}

// app holds the process-level dependencies of one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer
	lookup config.LookupFunc

	// runner executes multipass. Nil uses os/exec.
	runner multipass.Runner

	// defaults are shown in the usage text. They start as the built-in
	// values and are replaced once settings are loaded.
	defaults request.Defaults
}

func newApp() *app {
	return &app{
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		lookup:   os.LookupEnv,
		defaults: request.BuiltinDefaults(),
	}
}

// execute runs the root command and returns the process exit code.
func execute(ctx context.Context, a *app, args []string) int {
	cmd := a.rootCmd()
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		a.handleError(err)
		return 1
	}
	return 0
}

func (a *app) rootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "spinup [vm-name] <config-file> [--mount <host-dir>:<guest-dir>] [image-version] [cpus] [memory] [disk]",
		Short: "Spinup - provision Multipass VMs from cloud-init",
		Long: `Spinup launches a Multipass instance from a cloud-init document, waits
for cloud-init to finish, optionally mounts a host directory and prints
how to reach the instance.`,
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		Args:    cobra.ArbitraryArgs,

		// Positional arguments are interpreted by the request resolver,
		// which also owns the single --mount flag.
		DisableFlagParsing: true,
		SilenceErrors:      true,
		SilenceUsage:       true,

		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), args)
		},
	}
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 1 {
		switch args[0] {
		case "-h", "--help":
			return a.writeUsage(a.stdout)
		case "--version":
			_, err := fmt.Fprintf(a.stdout, "spinup %s (commit: %s)\n", version, commit)
			return err
		}
	}

	if err := config.LoadDotEnv(config.DotEnvFile); err != nil {
		return err
	}
	settings, err := config.Load(config.DefaultPath(a.lookup), a.lookup)
	if err != nil {
		return err
	}
	a.defaults = settings.ResolverDefaults()

	if err := logger.Init(settings.LogLevel, settings.LogFormat, a.stderr); err != nil {
		return err
	}
	log := logger.WithComponent("cli")

	formatter, err := output.NewFormatter(output.Options{Format: output.Format(settings.Output)})
	if err != nil {
		return err
	}

	req, err := request.Resolve(args, a.defaults)
	if err != nil {
		return err
	}
	if req.NameGenerated {
		log.Infof("No instance name given, using '%s'", req.Name)
	}

	client := multipass.New(settings.MultipassPath, a.runner)
	p := provision.New(client, provision.Options{
		LaunchTimeout:     settings.LaunchTimeout,
		InitTimeout:       settings.InitTimeout,
		CheckNameConflict: settings.ConflictCheckEnabled(),
	})

	inst, err := p.Run(ctx, req)
	if err != nil {
		if status.MayBeOrphaned(inst.GetPhase()) {
			if ctx.Err() != nil {
				log.Warnf("Interrupted in phase %s; instance '%s' may be orphaned", inst.GetPhase(), inst.Name)
			}
			log.Warnf("Instance '%s' was not cleaned up. Remove it with: %s delete --purge %s",
				inst.Name, client.Binary(), inst.Name)
		}
		return err
	}

	out, err := formatter.FormatInstance(inst)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	_, err = fmt.Fprint(a.stdout, out)
	return err
}

// handleError reports a failed run on stderr. Usage text follows every
// error except control-plane failures.
func (a *app) handleError(err error) {
	logger.WithFields(logger.Fields{"kind": apperrors.KindOf(err)}).Debugf("run failed: %v", err)

	_, _ = fmt.Fprintf(a.stderr, "Error: %v\n", err)
	if apperrors.ShowsUsage(err) {
		_, _ = fmt.Fprintln(a.stderr)
		_ = a.writeUsage(a.stderr)
	}
}
