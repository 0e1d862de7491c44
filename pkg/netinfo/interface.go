// Package netinfo resolves the local network interface a scan runs on and
// derives subnet facts (broadcast address, local address) from its CIDR.
package netinfo

import (
	"fmt"
	"net"
	"strings"

	gopsutilnet "github.com/shirou/gopsutil/v3/net"

	"lanscout/pkg/types"
)

// Interface describes the scan interface: its name and the IPv4 CIDR bound
// to it (e.g. "192.168.1.5/24").
type Interface struct {
	Name         string
	CIDR         string
	HardwareAddr string
}

// Validate checks that the descriptor is usable for an IPv4 scan.
func (i *Interface) Validate() error {
	if i == nil {
		return &types.ConfigurationError{Reason: "network interface is required"}
	}
	if i.Name == "" {
		return &types.ConfigurationError{Reason: "interface name is empty"}
	}
	ip, _, err := net.ParseCIDR(i.CIDR)
	if err != nil {
		return &types.ConfigurationError{Reason: fmt.Sprintf("interface %s has invalid CIDR %q", i.Name, i.CIDR)}
	}
	if ip.To4() == nil {
		return &types.ConfigurationError{Reason: fmt.Sprintf("interface %s CIDR %q is not IPv4", i.Name, i.CIDR)}
	}
	return nil
}

// Addr returns the interface's own IPv4 address.
func (i *Interface) Addr() (net.IP, error) {
	ip, _, err := net.ParseCIDR(i.CIDR)
	if err != nil {
		return nil, err
	}
	return ip.To4(), nil
}

// Network returns the subnet the interface belongs to.
func (i *Interface) Network() (*net.IPNet, error) {
	_, network, err := net.ParseCIDR(i.CIDR)
	if err != nil {
		return nil, err
	}
	return network, nil
}

// BroadcastAddr derives the directed broadcast address of the interface's
// subnet by filling the host bits of the network address.
func (i *Interface) BroadcastAddr() (net.IP, error) {
	network, err := i.Network()
	if err != nil {
		return nil, err
	}
	ip4 := network.IP.To4()
	if ip4 == nil {
		return nil, fmt.Errorf("network %s is not IPv4", network)
	}
	mask := network.Mask
	if len(mask) == net.IPv6len {
		mask = mask[12:]
	}
	broadcast := make(net.IP, len(ip4))
	copy(broadcast, ip4)
	for b := range broadcast {
		broadcast[b] |= ^mask[b]
	}
	return broadcast, nil
}

// ByName resolves the named interface and its first IPv4 address.
func ByName(name string) (*Interface, error) {
	stats, err := gopsutilnet.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("failed to list interfaces: %w", err)
	}
	for _, stat := range stats {
		if stat.Name != name {
			continue
		}
		if cidr := firstIPv4CIDR(stat); cidr != "" {
			return &Interface{Name: stat.Name, CIDR: cidr, HardwareAddr: stat.HardwareAddr}, nil
		}
		return nil, &types.ConfigurationError{Reason: fmt.Sprintf("interface %s has no IPv4 address", name)}
	}
	return nil, &types.ConfigurationError{Reason: fmt.Sprintf("interface %s not found", name)}
}

// Default picks the first up, non-loopback interface carrying a private
// IPv4 address. It is used when no interface is given on the command line.
func Default() (*Interface, error) {
	stats, err := gopsutilnet.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("failed to list interfaces: %w", err)
	}
	for _, stat := range stats {
		if hasFlag(stat.Flags, "loopback") || !hasFlag(stat.Flags, "up") {
			continue
		}
		cidr := firstIPv4CIDR(stat)
		if cidr == "" {
			continue
		}
		ip, _, err := net.ParseCIDR(cidr)
		if err != nil || !ip.IsPrivate() {
			continue
		}
		return &Interface{Name: stat.Name, CIDR: cidr, HardwareAddr: stat.HardwareAddr}, nil
	}
	return nil, &types.ConfigurationError{Reason: "no up interface with a private IPv4 address found"}
}

func firstIPv4CIDR(stat gopsutilnet.InterfaceStat) string {
	for _, addr := range stat.Addrs {
		ip, _, err := net.ParseCIDR(addr.Addr)
		if err != nil {
			continue
		}
		if ip.To4() != nil {
			return addr.Addr
		}
	}
	return ""
}

func hasFlag(flags []string, want string) bool {
	for _, f := range flags {
		if strings.EqualFold(f, want) {
			return true
		}
	}
	return false
}
