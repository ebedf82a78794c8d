// Package sshclient drives the system ssh and scp binaries.
//
// An Adapter accumulates command-line options (multiplexing, host key policy,
// connect timeout, identities, jump hosts, extra -o options) and spawns ssh or
// scp through a process.Runner for each call.
//
//	a, err := sshclient.New(sshclient.WithHost("10.0.0.5"))
//	a.AddIdentityFile("~/.ssh/deploy")
//	res, err := a.RunCommand(ctx, sshclient.CommandRequest{Command: []string{"uname", "-a"}})
//
// Extra options can be read from YAML with a ConfigLoader.
package sshclient
