package provision

import (
	"context"
	"fmt"
	"io/fs"
	"sync"
	"time"

	"github.com/jbweber/spinup/internal/cloudinit"
	"github.com/jbweber/spinup/internal/multipass"
)

// mockControlPlane is a mock implementation of the controlPlane interface for testing.
type mockControlPlane struct {
	mu sync.Mutex

	// Configurable behavior
	versionFunc          func(ctx context.Context) (string, error)
	existsFunc           func(ctx context.Context, name string) (bool, error)
	launchFunc           func(ctx context.Context, opts multipass.LaunchOptions) error
	waitForCloudInitFunc func(ctx context.Context, name string, timeout time.Duration) error
	mountFunc            func(ctx context.Context, hostPath, name, guestPath string) error
	infoFunc             func(ctx context.Context, name string) (*multipass.InstanceInfo, error)

	// Call tracking, in order across all methods
	calls []string

	launchCalls []multipass.LaunchOptions
	waitTimeout []time.Duration
}

// newMockControlPlane creates a mock where every call succeeds and the
// instance reports a single address.
func newMockControlPlane() *mockControlPlane {
	m := &mockControlPlane{}

	m.versionFunc = func(ctx context.Context) (string, error) {
		return "multipass   1.14.1", nil
	}

	// Default: no instance with the name exists yet
	m.existsFunc = func(ctx context.Context, name string) (bool, error) {
		return false, nil
	}

	m.launchFunc = func(ctx context.Context, opts multipass.LaunchOptions) error {
		return nil
	}

	m.waitForCloudInitFunc = func(ctx context.Context, name string, timeout time.Duration) error {
		return nil
	}

	m.mountFunc = func(ctx context.Context, hostPath, name, guestPath string) error {
		return nil
	}

	m.infoFunc = func(ctx context.Context, name string) (*multipass.InstanceInfo, error) {
		return &multipass.InstanceInfo{
			Name:    name,
			State:   "Running",
			IPv4:    []string{"10.114.85.23"},
			Release: "Ubuntu 24.04.1 LTS",
		}, nil
	}

	return m
}

func (m *mockControlPlane) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

func (m *mockControlPlane) Version(ctx context.Context) (string, error) {
	m.record("version")
	return m.versionFunc(ctx)
}

func (m *mockControlPlane) Exists(ctx context.Context, name string) (bool, error) {
	m.record("exists " + name)
	return m.existsFunc(ctx, name)
}

func (m *mockControlPlane) Launch(ctx context.Context, opts multipass.LaunchOptions) error {
	m.record("launch " + opts.Name)
	m.mu.Lock()
	m.launchCalls = append(m.launchCalls, opts)
	m.mu.Unlock()
	return m.launchFunc(ctx, opts)
}

func (m *mockControlPlane) WaitForCloudInit(ctx context.Context, name string, timeout time.Duration) error {
	m.record("wait " + name)
	m.mu.Lock()
	m.waitTimeout = append(m.waitTimeout, timeout)
	m.mu.Unlock()
	return m.waitForCloudInitFunc(ctx, name, timeout)
}

func (m *mockControlPlane) Mount(ctx context.Context, hostPath, name, guestPath string) error {
	m.record(fmt.Sprintf("mount %s %s:%s", hostPath, name, guestPath))
	return m.mountFunc(ctx, hostPath, name, guestPath)
}

func (m *mockControlPlane) Info(ctx context.Context, name string) (*multipass.InstanceInfo, error) {
	m.record("info " + name)
	return m.infoFunc(ctx, name)
}

// mockFS is a mock implementation of the hostFS interface for testing.
type mockFS struct {
	// dirs and files that exist, keyed by absolute path
	dirs  map[string]bool
	files map[string]bool

	statCalls []string
}

func newMockFS(dirs ...string) *mockFS {
	m := &mockFS{dirs: map[string]bool{}, files: map[string]bool{}}
	for _, d := range dirs {
		m.dirs[d] = true
	}
	return m
}

func (m *mockFS) Stat(name string) (fs.FileInfo, error) {
	m.statCalls = append(m.statCalls, name)
	switch {
	case m.dirs[name]:
		return fakeInfo{dir: true}, nil
	case m.files[name]:
		return fakeInfo{}, nil
	default:
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
	}
}

// Abs resolves relative paths against /work.
func (m *mockFS) Abs(path string) (string, error) {
	if len(path) > 0 && path[0] == '/' {
		return path, nil
	}
	if len(path) > 1 && path[:2] == "./" {
		path = path[2:]
	}
	return "/work/" + path, nil
}

type fakeInfo struct {
	fs.FileInfo
	dir bool
}

func (f fakeInfo) IsDir() bool { return f.dir }

// staticInspector returns an inspector that always yields doc and err.
func staticInspector(doc *cloudinit.Document, err error) configInspector {
	return func(string) (*cloudinit.Document, error) {
		return doc, err
	}
}
