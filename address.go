package kafka

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// parseBrokerAddr splits a "host:port" string into its parts.
func parseBrokerAddr(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, fmt.Errorf("kafka: malformed broker address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("kafka: malformed broker port in %q: %w", addr, err)
	}
	return host, port, nil
}

// splitHostList breaks a comma-separated list of broker addresses into its
// entries, trimming surrounding whitespace and dropping blanks.
func splitHostList(hosts string) []string {
	var out []string
	for _, h := range strings.Split(hosts, ",") {
		if h = strings.TrimSpace(h); h != "" {
			out = append(out, h)
		}
	}
	return out
}
