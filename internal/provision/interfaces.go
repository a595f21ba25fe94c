package provision

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/jbweber/spinup/internal/cloudinit"
	"github.com/jbweber/spinup/internal/multipass"
)

// controlPlane defines the multipass operations needed for a run.
//
// In production, this is satisfied by *multipass.Client.
// In tests, this is satisfied by mock implementations.
type controlPlane interface {
	// Version reports the control plane version
	Version(ctx context.Context) (string, error)

	// Exists checks whether an instance name is taken
	Exists(ctx context.Context, name string) (bool, error)

	// Launch creates and starts an instance
	Launch(ctx context.Context, opts multipass.LaunchOptions) error

	// WaitForCloudInit blocks until cloud-init finishes in the instance
	WaitForCloudInit(ctx context.Context, name string, timeout time.Duration) error

	// Mount binds a host directory into the instance
	Mount(ctx context.Context, hostPath, name, guestPath string) error

	// Info queries instance state and addresses
	Info(ctx context.Context, name string) (*multipass.InstanceInfo, error)
}

// hostFS defines the host filesystem operations needed for mounts.
//
// In production, this is satisfied by osFS.
// In tests, this is satisfied by mock implementations.
type hostFS interface {
	// Stat returns file info for a path
	Stat(name string) (fs.FileInfo, error)

	// Abs returns an absolute form of a path
	Abs(path string) (string, error)
}

// configInspector reads the cloud-init document for reporting purposes.
type configInspector func(path string) (*cloudinit.Document, error)

// osFS implements hostFS on the real filesystem.
type osFS struct{}

func (osFS) Stat(name string) (fs.FileInfo, error) { return os.Stat(name) }

func (osFS) Abs(path string) (string, error) { return filepath.Abs(path) }
