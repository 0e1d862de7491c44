//go:build !windows

package netinfo

import (
	"golang.org/x/sys/unix"

	"lanscout/pkg/types"
)

// CheckPrivileges verifies the process can open the raw ICMP socket the
// liveness session needs. On unix that means an effective uid of 0.
func CheckPrivileges() error {
	if unix.Geteuid() != 0 {
		return &types.PrivilegeError{Reason: "raw ICMP sockets require root, re-run with sudo"}
	}
	return nil
}
