package request

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbweber/spinup/internal/apperrors"
)

// workdir creates the named files in a temp dir and makes it the working directory.
func workdir(t *testing.T, files ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("#cloud-config\n"), 0o644))
	}
	prevDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prevDir) })
	return dir
}

func TestResolve_ScenarioA_ConfigOnly(t *testing.T) {
	workdir(t, "cloud-init-web.yaml")

	req, err := Resolve([]string{"cloud-init-web.yaml"}, BuiltinDefaults())
	require.NoError(t, err)

	assert.Regexp(t, `^web-[a-z0-9]{6}$`, req.Name)
	assert.True(t, req.NameGenerated)
	assert.Equal(t, "24.04", req.Spec.ImageVersion)
	assert.Equal(t, 2, req.Spec.CPUs)
	assert.Equal(t, "4G", req.Spec.Memory)
	assert.Equal(t, "20G", req.Spec.Disk)
	assert.Equal(t, "cloud-init-web.yaml", req.Spec.ConfigPath)
	assert.Nil(t, req.Spec.Mount)
}

func TestResolve_ScenarioB_FullProfile(t *testing.T) {
	workdir(t, "cloud-init-api.yaml")

	req, err := Resolve([]string{"api", "cloud-init-api.yaml", "22.04", "4", "8G", "30G"}, BuiltinDefaults())
	require.NoError(t, err)

	assert.Equal(t, "api", req.Name)
	assert.False(t, req.NameGenerated)
	assert.Equal(t, "22.04", req.Spec.ImageVersion)
	assert.Equal(t, 4, req.Spec.CPUs)
	assert.Equal(t, "8G", req.Spec.Memory)
	assert.Equal(t, "30G", req.Spec.Disk)
	assert.Equal(t, "cloud-init-api.yaml", req.Spec.ConfigPath)
}

func TestResolve_ScenarioC_Mount(t *testing.T) {
	workdir(t, "cloud-init-web.yaml")

	// ./code does not exist; the resolver must not care.
	req, err := Resolve([]string{"web-prod", "cloud-init-web.yaml", "--mount", "./code:/home/ubuntu/app"}, BuiltinDefaults())
	require.NoError(t, err)

	assert.Equal(t, "web-prod", req.Name)
	require.NotNil(t, req.Spec.Mount)
	assert.Equal(t, "./code", req.Spec.Mount.HostPath)
	assert.Equal(t, "/home/ubuntu/app", req.Spec.Mount.GuestPath)
}

func TestResolve_ScenarioD_NoArgs(t *testing.T) {
	req, err := Resolve(nil, BuiltinDefaults())
	require.Error(t, err)
	assert.Nil(t, req)
	assert.Equal(t, apperrors.KindUsage, apperrors.KindOf(err))
	assert.ErrorIs(t, err, apperrors.ErrMissingArgument)
}

func TestResolve_SuppliedNameKeptExactly(t *testing.T) {
	workdir(t, "cloud-init-web.yaml")

	for _, name := range []string{"web", "Web_Prod", "x-1"} {
		req, err := Resolve([]string{name, "cloud-init-web.yaml"}, BuiltinDefaults())
		require.NoError(t, err)
		assert.Equal(t, name, req.Name)
	}
}

func TestResolve_TwoRunsGiveDistinctNames(t *testing.T) {
	workdir(t, "cloud-init-web.yaml")

	first, err := Resolve([]string{"cloud-init-web.yaml"}, BuiltinDefaults())
	require.NoError(t, err)
	second, err := Resolve([]string{"cloud-init-web.yaml"}, BuiltinDefaults())
	require.NoError(t, err)

	assert.NotEqual(t, first.Name, second.Name)
	assert.Equal(t, first.Spec, second.Spec)
}

func TestResolve_Classification(t *testing.T) {
	tests := []struct {
		name       string
		files      []string
		args       []string
		wantName   string
		wantConfig string
		wantImage  string
	}{
		{
			name:       "config then image",
			files:      []string{"cloud-init-web.yaml"},
			args:       []string{"cloud-init-web.yaml", "22.04"},
			wantConfig: "cloud-init-web.yaml",
			wantImage:  "22.04",
		},
		{
			name:       "name then config",
			files:      []string{"cloud-init-web.yaml"},
			args:       []string{"box", "cloud-init-web.yaml"},
			wantName:   "box",
			wantConfig: "cloud-init-web.yaml",
			wantImage:  "24.04",
		},
		{
			name:       "both exist, last wins",
			files:      []string{"a.yaml", "b.yaml"},
			args:       []string{"a.yaml", "b.yaml", "20.04"},
			wantName:   "a.yaml",
			wantConfig: "b.yaml",
			wantImage:  "20.04",
		},
		{
			name:       "config without yaml extension",
			files:      []string{"user-data"},
			args:       []string{"user-data"},
			wantConfig: "user-data",
			wantImage:  "24.04",
		},
		{
			name:       "mount flag between tokens",
			files:      []string{"cloud-init-db.yml"},
			args:       []string{"db", "--mount=/srv:/data", "cloud-init-db.yml", "22.04"},
			wantName:   "db",
			wantConfig: "cloud-init-db.yml",
			wantImage:  "22.04",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			workdir(t, tt.files...)

			req, err := Resolve(tt.args, BuiltinDefaults())
			require.NoError(t, err)

			if tt.wantName != "" {
				assert.Equal(t, tt.wantName, req.Name)
				assert.False(t, req.NameGenerated)
			} else {
				assert.True(t, req.NameGenerated)
			}
			assert.Equal(t, tt.wantConfig, req.Spec.ConfigPath)
			assert.Equal(t, tt.wantImage, req.Spec.ImageVersion)
		})
	}
}

func TestResolve_ConfigNotFound(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantPath string
	}{
		{"single token", []string{"missing.yaml"}, "missing.yaml"},
		{"name and missing config", []string{"web", "cloud-init-web.yaml"}, "cloud-init-web.yaml"},
		{"yaml token first", []string{"cloud-init-web.yaml", "22.04"}, "cloud-init-web.yaml"},
		{"no extension anywhere", []string{"web", "conf"}, "conf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			workdir(t)

			_, err := Resolve(tt.args, BuiltinDefaults())
			require.Error(t, err)
			assert.Equal(t, apperrors.KindConfigNotFound, apperrors.KindOf(err))
			assert.Contains(t, err.Error(), tt.wantPath)
		})
	}
}

func TestResolve_DirectoryIsNotConfig(t *testing.T) {
	dir := workdir(t)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "conf.yaml"), 0o755))

	_, err := Resolve([]string{"conf.yaml"}, BuiltinDefaults())
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConfigNotFound, apperrors.KindOf(err))
}

func TestResolve_UsageErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"unknown flag", []string{"cloud-init-web.yaml", "--verbose"}, apperrors.ErrUnknownFlag},
		{"unknown flag with value", []string{"--name=web", "cloud-init-web.yaml"}, apperrors.ErrUnknownFlag},
		{"mount without value", []string{"cloud-init-web.yaml", "--mount"}, apperrors.ErrBadMountSpec},
		{"mount followed by flag", []string{"cloud-init-web.yaml", "--mount", "--other"}, apperrors.ErrBadMountSpec},
		{"mount without colon", []string{"cloud-init-web.yaml", "--mount", "./code"}, apperrors.ErrBadMountSpec},
		{"mount empty guest", []string{"cloud-init-web.yaml", "--mount", "./code:"}, apperrors.ErrBadMountSpec},
		{"mount empty host", []string{"cloud-init-web.yaml", "--mount=:/app"}, apperrors.ErrBadMountSpec},
		{"mount twice", []string{"cloud-init-web.yaml", "--mount", "a:/a", "--mount", "b:/b"}, apperrors.ErrBadMountSpec},
		{"only a flag", []string{"--mount", "a:/a"}, apperrors.ErrMissingArgument},
		{"too many args", []string{"cloud-init-web.yaml", "22.04", "2", "4G", "20G", "extra"}, apperrors.ErrTooManyArguments},
		{"cpus not a number", []string{"cloud-init-web.yaml", "22.04", "two"}, apperrors.ErrInvalidResource},
		{"cpus zero", []string{"cloud-init-web.yaml", "22.04", "0"}, apperrors.ErrInvalidResource},
		{"bad memory", []string{"cloud-init-web.yaml", "22.04", "2", "lots"}, apperrors.ErrInvalidResource},
		{"bad disk", []string{"cloud-init-web.yaml", "22.04", "2", "4G", "-1G"}, apperrors.ErrInvalidResource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			workdir(t, "cloud-init-web.yaml")

			req, err := Resolve(tt.args, BuiltinDefaults())
			require.Error(t, err)
			assert.Nil(t, req)
			assert.Equal(t, apperrors.KindUsage, apperrors.KindOf(err))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestResolve_CustomDefaults(t *testing.T) {
	workdir(t, "cloud-init-web.yaml")

	defaults := Defaults{ImageVersion: "jammy", CPUs: 8, Memory: "16G", Disk: "100G"}
	req, err := Resolve([]string{"cloud-init-web.yaml", "noble"}, defaults)
	require.NoError(t, err)

	assert.Equal(t, "noble", req.Spec.ImageVersion)
	assert.Equal(t, 8, req.Spec.CPUs)
	assert.Equal(t, "16G", req.Spec.Memory)
	assert.Equal(t, "100G", req.Spec.Disk)
}

func TestResolveWithDeps_GeneratorFailure(t *testing.T) {
	stat := func(string) (fs.FileInfo, error) { return regularFile{}, nil }
	generate := func(string) (string, error) { return "", errors.New("entropy exhausted") }

	_, err := resolveWithDeps([]string{"cloud-init-web.yaml"}, BuiltinDefaults(), stat, generate)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entropy exhausted")
}

func TestResolveWithDeps_GeneratorNotCalledForSuppliedName(t *testing.T) {
	stat := func(name string) (fs.FileInfo, error) {
		if name == "cloud-init-web.yaml" {
			return regularFile{}, nil
		}
		return nil, fs.ErrNotExist
	}
	called := false
	generate := func(string) (string, error) {
		called = true
		return "unused", nil
	}

	req, err := resolveWithDeps([]string{"web", "cloud-init-web.yaml"}, BuiltinDefaults(), stat, generate)
	require.NoError(t, err)
	assert.Equal(t, "web", req.Name)
	assert.False(t, called)
}

func TestParseMount(t *testing.T) {
	m, err := ParseMount("C:/src:/app")
	require.NoError(t, err)
	assert.Equal(t, "C", m.HostPath)
	assert.Equal(t, "/src:/app", m.GuestPath)

	m, err = ParseMount("./code:/home/ubuntu/app")
	require.NoError(t, err)
	assert.Equal(t, "./code:/home/ubuntu/app", m.String())
}

func TestValidateSize(t *testing.T) {
	for _, ok := range []string{"4G", "512M", "20GB", "1.5G", "2GiB"} {
		assert.NoError(t, ValidateSize(ok), ok)
	}
	for _, bad := range []string{"", "G", "four", "0", "-2G"} {
		assert.Error(t, ValidateSize(bad), bad)
	}
}

func TestBuiltinDefaults(t *testing.T) {
	d := BuiltinDefaults()
	assert.Equal(t, "24.04", d.ImageVersion)
	assert.Equal(t, 2, d.CPUs)
	assert.Equal(t, "4G", d.Memory)
	assert.Equal(t, "20G", d.Disk)
	assert.True(t, regexp.MustCompile(`^\d+G$`).MatchString(d.Disk))
}

type regularFile struct{ fs.FileInfo }

func (regularFile) Mode() fs.FileMode { return 0o644 }
