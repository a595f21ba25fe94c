// Package naming derives control-plane instance names from configuration
// document paths.
//
// Configuration documents follow the cloud-init-<role>.yaml convention. When
// no name is given, the role becomes the name prefix and a random suffix is
// appended: cloud-init-web.yaml -> web-k3x9q2.
package naming

import (
	"crypto/rand"
	"fmt"
	"path/filepath"
	"strings"
)

const (
	// ConfigMarker is the naming convention marker for configuration documents.
	ConfigMarker = "cloud-init"

	// FallbackPrefix is used when no prefix can be derived from the path.
	FallbackPrefix = "vm"

	// SuffixLength is the number of random characters in a generated name.
	SuffixLength = 6

	suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// ConfigExtensions are the file extensions recognized as configuration documents.
var ConfigExtensions = []string{".yaml", ".yml"}

// HasConfigExtension reports whether path ends in a recognized extension.
func HasConfigExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range ConfigExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// PrefixFromConfigPath extracts the name prefix from a configuration path.
//
// Examples:
//
//	cloud-init-web.yaml     -> web
//	conf/cloud-init-db.yml  -> db
//	dev.yaml                -> dev
//	cloud-init.yaml         -> vm
func PrefixFromConfigPath(path string) string {
	base := filepath.Base(path)
	if HasConfigExtension(base) {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	base = strings.TrimPrefix(base, ConfigMarker+"-")

	prefix := sanitize(base)
	if prefix == "" || prefix == ConfigMarker {
		return FallbackPrefix
	}
	return prefix
}

// sanitize lowercases s and keeps only characters valid in an instance
// name. Runs of other characters collapse to a single hyphen.
func sanitize(s string) string {
	var b strings.Builder
	lastHyphen := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen && b.Len() > 0 {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	out := strings.Trim(b.String(), "-")
	// Instance names must start with a letter.
	if out != "" && (out[0] < 'a' || out[0] > 'z') {
		out = FallbackPrefix + "-" + out
	}
	return out
}

// RandomSuffix returns SuffixLength characters drawn from [a-z0-9].
func RandomSuffix() (string, error) {
	buf := make([]byte, SuffixLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	for i, v := range buf {
		// 252 is the largest multiple of 36 below 256; redraw above it.
		for v >= 252 {
			var one [1]byte
			if _, err := rand.Read(one[:]); err != nil {
				return "", fmt.Errorf("failed to read random bytes: %w", err)
			}
			v = one[0]
		}
		buf[i] = suffixAlphabet[int(v)%len(suffixAlphabet)]
	}
	return string(buf), nil
}

// Generate returns {prefix}-{suffix} for the given configuration path.
func Generate(configPath string) (string, error) {
	suffix, err := RandomSuffix()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s", PrefixFromConfigPath(configPath), suffix), nil
}
