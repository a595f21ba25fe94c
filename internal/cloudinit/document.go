// Package cloudinit reads the cloud-config documents handed to the control
// plane at launch.
//
// The document itself is opaque to provisioning: multipass passes it to the
// guest unchanged. This package only inspects it for details worth reporting
// (the login user for the SSH hint, malformed authorized keys) and finds
// candidate documents for the usage text. Nothing here can fail a run.
//
// See https://cloudinit.readthedocs.io/en/latest/explanation/format.html#cloud-config-data
package cloudinit

import (
	"bytes"
	"fmt"
	"os"

	"golang.org/x/crypto/ssh"
	"gopkg.in/yaml.v3"
)

// Header is the first line cloud-init requires of a cloud-config document.
const Header = "#cloud-config"

// DefaultUser is the distribution's default login user on Ubuntu images.
const DefaultUser = "ubuntu"

// UserData is the subset of cloud-config that spinup reads.
type UserData struct {
	Hostname          string      `yaml:"hostname"`
	FQDN              string      `yaml:"fqdn"`
	SSHAuthorizedKeys []string    `yaml:"ssh_authorized_keys"`
	Users             []yaml.Node `yaml:"users"`
}

// User is one named entry of the users list.
type User struct {
	Name              string   `yaml:"name"`
	SSHAuthorizedKeys []string `yaml:"ssh_authorized_keys"`
}

// Document is the result of inspecting a cloud-config file.
type Document struct {
	Path string

	// HasHeader is false when the first line is not #cloud-config. Such a
	// document is ignored by cloud-init in the guest.
	HasHeader bool

	Hostname string

	// Users are the named users. The "default" entry is not included;
	// IncludesDefault records it instead.
	Users           []User
	IncludesDefault bool

	// Warnings are problems that do not stop provisioning.
	Warnings []string
}

// Inspect reads and parses the document at path.
func Inspect(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	doc.Path = path
	return doc, nil
}

// Parse inspects cloud-config content.
func Parse(data []byte) (*Document, error) {
	doc := &Document{}

	firstLine, _, _ := bytes.Cut(data, []byte("\n"))
	doc.HasHeader = string(bytes.TrimSpace(firstLine)) == Header
	if !doc.HasHeader {
		doc.Warnings = append(doc.Warnings, fmt.Sprintf("first line is not %q; cloud-init will ignore this document", Header))
	}

	var ud UserData
	if err := yaml.Unmarshal(data, &ud); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}

	doc.Hostname = ud.Hostname
	if doc.Hostname == "" && ud.FQDN != "" {
		doc.Hostname = ud.FQDN
	}

	// Top-level keys belong to the default user.
	doc.Warnings = append(doc.Warnings, checkKeys("ssh_authorized_keys", ud.SSHAuthorizedKeys)...)

	for i := range ud.Users {
		node := &ud.Users[i]
		switch node.Kind {
		case yaml.ScalarNode:
			if node.Value == "default" {
				doc.IncludesDefault = true
			} else {
				doc.Users = append(doc.Users, User{Name: node.Value})
			}
		case yaml.MappingNode:
			var u User
			if err := node.Decode(&u); err != nil {
				doc.Warnings = append(doc.Warnings, fmt.Sprintf("users[%d]: %v", i, err))
				continue
			}
			if u.Name == "" {
				doc.Warnings = append(doc.Warnings, fmt.Sprintf("users[%d] has no name", i))
				continue
			}
			doc.Users = append(doc.Users, u)
			doc.Warnings = append(doc.Warnings, checkKeys(fmt.Sprintf("users[%d].ssh_authorized_keys", i), u.SSHAuthorizedKeys)...)
		default:
			doc.Warnings = append(doc.Warnings, fmt.Sprintf("users[%d] is neither a name nor a mapping", i))
		}
	}

	return doc, nil
}

// checkKeys validates authorized keys using golang.org/x/crypto/ssh.
func checkKeys(field string, keys []string) []string {
	var warnings []string
	for i, key := range keys {
		if _, _, _, _, err := ssh.ParseAuthorizedKey([]byte(key)); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s[%d] is not a valid SSH public key: %v", field, i, err))
		}
	}
	return warnings
}

// SSHUser returns the user to suggest for SSH. A document that declares
// users without "default" replaces the default user, so the first named
// user with authorized keys wins, then the first named user. Otherwise the
// image default applies.
func (d *Document) SSHUser() string {
	if d == nil {
		return DefaultUser
	}
	for _, u := range d.Users {
		if len(u.SSHAuthorizedKeys) > 0 {
			return u.Name
		}
	}
	if !d.IncludesDefault && len(d.Users) > 0 {
		return d.Users[0].Name
	}
	return DefaultUser
}
