// Package hostinfo exposes the host name and IP address of the running
// process. Both are resolved once, on first use, and never change afterwards.
package hostinfo

import (
	"net"
	"os"
	"sync"
)

// Info is a resolved host name and IP. Empty fields mean the value could not
// be resolved.
type Info struct {
	Host string
	IP   string
}

var (
	once   sync.Once
	cached Info

	// swapped in tests
	hostnameFunc  = os.Hostname
	interfaceAddr = net.InterfaceAddrs
)

// Get returns the process-wide host info.
func Get() Info {
	once.Do(func() {
		cached = resolve(hostnameFunc, interfaceAddr)
	})
	return cached
}

// Host returns the host name, or "" when it cannot be resolved.
func Host() string { return Get().Host }

// IP returns the first non-loopback address of the host, or "".
func IP() string { return Get().IP }

func resolve(hostname func() (string, error), addrs func() ([]net.Addr, error)) Info {
	var info Info
	if h, err := hostname(); err == nil {
		info.Host = h
	}

	list, err := addrs()
	if err != nil {
		return info
	}

	var fallback string
	for _, addr := range list {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() || ipNet.IP.IsLinkLocalUnicast() {
			continue
		}
		// prefer IPv4, keep the first IPv6 in case nothing else shows up
		if ip4 := ipNet.IP.To4(); ip4 != nil {
			info.IP = ip4.String()
			return info
		}
		if fallback == "" {
			fallback = ipNet.IP.String()
		}
	}
	info.IP = fallback
	return info
}
