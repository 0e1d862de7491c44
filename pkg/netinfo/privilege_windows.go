//go:build windows

package netinfo

// CheckPrivileges is a no-op on windows: raw socket rights cannot be probed
// up front, the ICMP listen call reports the failure instead.
func CheckPrivileges() error {
	return nil
}
