package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/jbweber/spinup/internal/cloudinit"
)

// writeUsage prints the usage text, including the configuration documents
// found in the working directory.
func (a *app) writeUsage(w io.Writer) error {
	d := a.defaults

	var b strings.Builder
	b.WriteString(`Usage:
  spinup [vm-name] <config-file> [--mount <host-dir>:<guest-dir>] [image-version] [cpus] [memory] [disk]

Launch a Multipass instance from a cloud-init document and wait until
cloud-init has finished.

Arguments:
  vm-name        instance name (default: derived from the config file name)
  config-file    cloud-init document passed to multipass launch
`)
	fmt.Fprintf(&b, "  image-version  image to launch (default: %s)\n", d.ImageVersion)
	fmt.Fprintf(&b, "  cpus           number of CPUs (default: %d)\n", d.CPUs)
	fmt.Fprintf(&b, "  memory         memory size (default: %s)\n", d.Memory)
	fmt.Fprintf(&b, "  disk           disk size (default: %s)\n", d.Disk)
	b.WriteString(`
Flags:
  --mount <host-dir>:<guest-dir>   mount a host directory once the instance is ready
  -h, --help                       show this help
  --version                        print the version

Examples:
  spinup cloud-init-web.yaml
  spinup web cloud-init-web.yaml 24.04 4 8G 40G
  spinup dev cloud-init-dev.yaml --mount ./src:/home/ubuntu/src
`)

	docs, err := cloudinit.Discover(".")
	if err == nil && len(docs) > 0 {
		b.WriteString("\nConfiguration documents in this directory:\n")
		for _, doc := range docs {
			fmt.Fprintf(&b, "  %s\n", doc)
		}
	}

	_, err = io.WriteString(w, b.String())
	return err
}
