// Package probe defines the event contract shared by every discovery
// mechanism: zero or more Response events, one per target, followed by
// exactly one Complete event carrying a summary report (or one Error event
// if the mechanism died mid-run). Consumers must tolerate duplicate
// Response payloads for the same logical target.
package probe

import "time"

// Kind enumerates the event kinds of the protocol.
type Kind int

const (
	// KindResponse carries one discovered target.
	KindResponse Kind = iota
	// KindComplete carries the summary report and terminates the stream.
	KindComplete
	// KindError terminates the stream abnormally. No further events follow.
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindResponse:
		return "response"
	case KindComplete:
		return "complete"
	case KindError:
		return "error"
	}
	return "unknown"
}

// Response is the payload of a KindResponse event.
type Response struct {
	Addr         string `json:"addr"`
	HardwareAddr string `json:"hardware_addr,omitempty"`
	// RTT is set by mechanisms that measure it, zero otherwise.
	RTT time.Duration `json:"-"`
}

// Event is a single protocol event. Exactly one of Response, Report or Err
// is set, matching Kind.
type Event struct {
	Kind     Kind
	Response *Response
	Report   *Report
	Err      error
}

// Report summarizes one finished pass.
type Report struct {
	Targets   []string `json:"targets"`
	Count     int      `json:"count"`
	ElapsedMs int64    `json:"elapsed_ms"`
	AverageMs int64    `json:"average_ms"`
}

// NewSweepReport builds the summary for an open-ended discovery pass, where
// the target list is not known up front: count is the number of targets
// actually found.
func NewSweepReport(found []string, elapsed time.Duration) *Report {
	return newReport(found, elapsed)
}

// NewTargetReport builds the summary for a closed target-list pass, where
// every target was attempted: count is the number of targets attempted,
// whether or not they answered.
func NewTargetReport(attempted []string, elapsed time.Duration) *Report {
	return newReport(attempted, elapsed)
}

func newReport(targets []string, elapsed time.Duration) *Report {
	r := &Report{
		Targets:   targets,
		Count:     len(targets),
		ElapsedMs: elapsed.Milliseconds(),
	}
	if r.Count > 0 {
		r.AverageMs = r.ElapsedMs / int64(r.Count)
	}
	return r
}
