package httpclient

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/kbukum/remotekit/validation"
)

// FormatResolveEntry renders host, port and ip as "host:port:ip".
func FormatResolveEntry(host string, port int, ip string) string {
	return fmt.Sprintf("%s:%d:%s", host, port, ip)
}

// parseResolveEntries maps "host:port" dial addresses to "ip:port".
func parseResolveEntries(entries []string) (map[string]string, error) {
	pins := make(map[string]string, len(entries))
	for _, entry := range entries {
		if !validation.IsResolveEntry(entry) {
			return nil, NewValidationError(fmt.Sprintf("invalid resolve entry %q: want host:port:ip", entry))
		}
		host, rest, _ := strings.Cut(entry, ":")
		port, ip, _ := strings.Cut(rest, ":")
		ip = strings.TrimSuffix(strings.TrimPrefix(ip, "["), "]")
		pins[net.JoinHostPort(host, port)] = net.JoinHostPort(ip, port)
	}
	return pins, nil
}

type dialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// pinnedDialer dials the pinned address for addr when there is one.
func pinnedDialer(dial dialFunc, pins map[string]string) dialFunc {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		if pinned, ok := pins[addr]; ok {
			addr = pinned
		}
		return dial(ctx, network, addr)
	}
}
