package scan

import (
	"lanscout/pkg/probe"
	"lanscout/pkg/types"
)

// EventKind enumerates the events a scan run emits.
type EventKind int

const (
	// EventDiscoveryResponse carries a partial device (address and link
	// address) for each host the discovery pass reports.
	EventDiscoveryResponse EventKind = iota
	// EventDiscoveryComplete carries the discovery pass summary.
	EventDiscoveryComplete
	// EventProbeReachable fires for each address whose liveness probe
	// answered.
	EventProbeReachable
	// EventDeviceResolved carries a fully resolved device, reachable or
	// not.
	EventDeviceResolved
	// EventScanComplete carries the run summary. Emitted exactly once per
	// successful run, right before EventInventory.
	EventScanComplete
	// EventInventory carries the final ordered inventory. Emitted exactly
	// once per successful run.
	EventInventory
)

func (k EventKind) String() string {
	switch k {
	case EventDiscoveryResponse:
		return "discovery-response"
	case EventDiscoveryComplete:
		return "discovery-complete"
	case EventProbeReachable:
		return "probe-reachable"
	case EventDeviceResolved:
		return "device-resolved"
	case EventScanComplete:
		return "scan-complete"
	case EventInventory:
		return "inventory"
	}
	return "unknown"
}

// Event is one scan notification. The populated fields depend on Kind.
type Event struct {
	Kind    EventKind
	Addr    string
	Device  *types.Device
	Report  *probe.Report
	Devices []types.Device
}

// EventFunc receives scan events. It is called from the run's event loop
// and must not block.
type EventFunc func(Event)
