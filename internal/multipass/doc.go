// Package multipass is a client for the multipass command-line tool.
//
// Every operation shells out to the multipass binary through a Runner and
// blocks until the command exits. Nothing is retried and nothing is cached:
// the multipass daemon is the only source of truth for instance state.
//
// Operations:
//
//	client := multipass.New("multipass", nil)
//
//	err := client.Launch(ctx, multipass.LaunchOptions{
//	    Name:          "web-k3x9q2",
//	    Image:         "24.04",
//	    CPUs:          2,
//	    Memory:        "4G",
//	    Disk:          "20G",
//	    CloudInitFile: "cloud-init-web.yaml",
//	    Timeout:       time.Hour,
//	})
//
//	err = client.WaitForCloudInit(ctx, "web-k3x9q2", 30*time.Minute)
//	err = client.Mount(ctx, "/home/me/code", "web-k3x9q2", "/home/ubuntu/app")
//	info, err := client.Info(ctx, "web-k3x9q2")
//
// Structured output (info, list) is requested with --format yaml and decoded
// with gopkg.in/yaml.v3.
//
// Consumer-Side Interfaces:
//
// This package does not define an interface for Client. Consumers
// (internal/provision) declare the subset they call, and tests substitute
// a fake Runner rather than a fake binary.
package multipass
