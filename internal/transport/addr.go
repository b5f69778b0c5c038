package transport

import (
	"errors"
	"net"
	"strings"
)

// ErrNoAddress means no usable non-loopback IPv4 address exists yet.
var ErrNoAddress = errors.New("transport: no usable local address")

// virtual bridge/container interfaces are not LAN-reachable peers.
func skipInterface(name string) bool {
	return strings.HasPrefix(name, "br-") ||
		strings.HasPrefix(name, "veth") ||
		strings.HasPrefix(name, "docker")
}

// LocalIP returns the first up, non-loopback IPv4 address.
func LocalIP() (net.IP, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		if skipInterface(iface.Name) {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok || ipnet.IP.IsLoopback() {
				continue
			}
			if ipv4 := ipnet.IP.To4(); ipv4 != nil {
				return ipv4, nil
			}
		}
	}
	return nil, ErrNoAddress
}

// BroadcastAddrs enumerates the subnet-directed broadcast address of every
// up, broadcast-capable IPv4 interface, with the limited broadcast address
// as a fallback. Announcements go to each of them.
func BroadcastAddrs() []net.IP {
	var out []net.IP
	seen := make(map[string]bool)

	ifaces, err := net.Interfaces()
	if err != nil {
		return []net.IP{net.IPv4bcast}
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagBroadcast == 0 {
			continue
		}
		if skipInterface(iface.Name) {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok || ipnet.IP.IsLoopback() {
				continue
			}
			ipv4 := ipnet.IP.To4()
			mask := ipnet.Mask
			if ipv4 == nil || len(mask) != 4 {
				continue
			}
			bcast := make(net.IP, 4)
			for i := 0; i < 4; i++ {
				bcast[i] = ipv4[i] | ^mask[i]
			}
			if !seen[bcast.String()] {
				seen[bcast.String()] = true
				out = append(out, bcast)
			}
		}
	}
	if !seen[net.IPv4bcast.String()] {
		out = append(out, net.IPv4bcast)
	}
	return out
}
