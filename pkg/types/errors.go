package types

import "fmt"

// ConfigurationError indicates missing or malformed scan input. It is
// returned before any probing starts.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s", e.Reason)
}

// PrivilegeError indicates the process lacks the rights required for
// link-layer discovery and raw ICMP sockets.
type PrivilegeError struct {
	Reason string
}

func (e *PrivilegeError) Error() string {
	return fmt.Sprintf("insufficient privileges: %s", e.Reason)
}

// DiscoveryError indicates the discovery mechanism failed to start or
// terminated abnormally. It aborts the whole run with no inventory.
type DiscoveryError struct {
	Err error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discovery failed: %v", e.Err)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}
