package sshclient

import (
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/kbukum/remotekit/errors"
)

// HostKeyPolicy controls how ssh and scp treat unknown host keys.
type HostKeyPolicy int

const (
	// HostKeyLenient accepts any host key and records none. This is the
	// default and is unsafe on untrusted networks.
	HostKeyLenient HostKeyPolicy = iota
	// HostKeyStrict refuses hosts that are not already known.
	HostKeyStrict
)

// String returns the policy name.
func (p HostKeyPolicy) String() string {
	if p == HostKeyStrict {
		return "strict"
	}
	return "lenient"
}

// ParseHostKeyPolicy maps "strict" and "lenient" (or "") to a policy.
func ParseHostKeyPolicy(s string) (HostKeyPolicy, error) {
	switch s {
	case "", "lenient":
		return HostKeyLenient, nil
	case "strict":
		return HostKeyStrict, nil
	default:
		return HostKeyLenient, errors.InvalidInput("host_key_policy", "unknown host key policy "+s)
	}
}

// options returns the -o flags for the policy.
func (p HostKeyPolicy) options(knownHostsFile string) []string {
	if p == HostKeyStrict {
		opts := []string{"-o", "StrictHostKeyChecking=yes"}
		if knownHostsFile != "" {
			opts = append(opts, "-o", "UserKnownHostsFile="+knownHostsFile)
		}
		return opts
	}
	return []string{"-o", "StrictHostKeyChecking=no", "-o", "UserKnownHostsFile=/dev/null"}
}

// checkKnownHosts parses path so a broken file is reported before ssh runs.
func checkKnownHosts(path string) error {
	if _, err := knownhosts.New(path); err != nil {
		return errors.InvalidInput("known_hosts", "unable to parse known hosts file "+path).WithCause(err)
	}
	return nil
}
