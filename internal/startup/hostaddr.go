package startup

import (
	"errors"
	"fmt"
	"net"
	"os"
)

// ErrNoHostAddress is returned when the host name resolves to no address.
var ErrNoHostAddress = errors.New("no address found for host")

// HostResolver returns the address other machines use to reach this host.
type HostResolver func() (string, error)

var (
	hostname   = os.Hostname
	lookupHost = net.LookupHost
)

// LocalHostAddress resolves the machine's host name and returns its first
// IPv4 address, or the first address of any family when no IPv4 one exists.
func LocalHostAddress() (string, error) {
	name, err := hostname()
	if err != nil {
		return "", fmt.Errorf("read host name: %w", err)
	}

	addrs, err := lookupHost(name)
	if err != nil {
		return "", fmt.Errorf("lookup %s: %w", name, err)
	}

	for _, addr := range addrs {
		if ip := net.ParseIP(addr); ip != nil && ip.To4() != nil {
			return addr, nil
		}
	}
	if len(addrs) > 0 {
		return addrs[0], nil
	}

	return "", fmt.Errorf("lookup %s: %w", name, ErrNoHostAddress)
}
