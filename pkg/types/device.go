package types

// Device is one resolved entry of a scan inventory. Addr is the unique key
// within a run. HardwareAddr is empty only for the scanning host itself,
// which never appears in its own neighbour table. Hostname is empty when
// reverse lookup failed or was not available.
type Device struct {
	Addr         string `json:"addr"`
	HardwareAddr string `json:"hardware_addr,omitempty"`
	Hostname     string `json:"hostname,omitempty"`
	Reachable    bool   `json:"reachable"`
}

// PendingProbe is a discovered host queued for a liveness probe but not yet
// dispatched.
type PendingProbe struct {
	Addr         string
	HardwareAddr string
}
