// Package scan coordinates the hybrid scan: one broadcast ARP discovery
// pass feeding a rate-limited liveness-probing pass, with results
// deduplicated and correlated into a deterministic device inventory.
//
// A run is single-threaded: one event loop consumes discovery events, probe
// results and pacing timers, so the orchestration state needs no locks.
// Liveness probes execute in their own goroutines and post results back to
// the loop.
package scan

import (
	"context"
	"net"
	"sort"
	"time"

	"github.com/projectdiscovery/gologger"
	"github.com/rs/xid"

	"lanscout/pkg/netinfo"
	"lanscout/pkg/probe"
	"lanscout/pkg/types"
)

// DefaultTimeout is the per-probe timeout when none is configured.
const DefaultTimeout = 3 * time.Second

// DiscoveryMechanism is the broadcast discovery pass. Start fails
// synchronously when the mechanism cannot begin; afterwards the stream
// terminates with exactly one Complete or Error event.
type DiscoveryMechanism interface {
	Subscribe() *probe.Subscription
	Start(ctx context.Context, iface *netinfo.Interface, broadcast net.IP, timeout time.Duration) error
}

// ProbeSession is the shared per-run liveness session. Probe never fails:
// silence resolves to false. Close is the run's terminal act; reuse after
// Close is undefined.
type ProbeSession interface {
	Probe(ctx context.Context, addr string, timeout time.Duration) (alive bool, rtt time.Duration)
	Close() error
}

// SessionFactory acquires the probing session for one run.
type SessionFactory func() (ProbeSession, error)

// HostnameResolver resolves an optional hostname. Failures degrade to an
// empty string inside the implementation.
type HostnameResolver interface {
	Resolve(ctx context.Context, addr string) string
}

// Config configures one scan run.
type Config struct {
	// Interface is the scan interface, required.
	Interface *netinfo.Interface
	// Timeout bounds each individual probe and the discovery pass.
	// Defaults to DefaultTimeout.
	Timeout time.Duration
	// Interval is the minimum spacing between probe dispatches. Zero means
	// unlimited concurrency; when positive, at most one probe is in flight
	// at a time.
	Interval time.Duration
	// OnEvent, when set, receives the run's events.
	OnEvent EventFunc
}

// Orchestrator runs hybrid scans over a fixed set of collaborators. The
// collaborators are shared across runs; all per-run state lives in the run.
type Orchestrator struct {
	discovery DiscoveryMechanism
	sessions  SessionFactory
	resolver  HostnameResolver
}

// New returns an Orchestrator over the given collaborators.
func New(discovery DiscoveryMechanism, sessions SessionFactory, resolver HostnameResolver) *Orchestrator {
	return &Orchestrator{
		discovery: discovery,
		sessions:  sessions,
		resolver:  resolver,
	}
}

// Run performs one hybrid scan and returns the ordered inventory once it
// has been emitted. ConfigurationError and DiscoveryError abort the run
// before any inventory is produced; per-device enrichment failures never
// abort it.
func (o *Orchestrator) Run(ctx context.Context, cfg Config) ([]types.Device, error) {
	if err := cfg.Interface.Validate(); err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	broadcast, err := cfg.Interface.BroadcastAddr()
	if err != nil {
		return nil, &types.ConfigurationError{Reason: err.Error()}
	}

	session, err := o.sessions()
	if err != nil {
		return nil, err
	}

	// Run-owned subscription, released on every exit path below.
	sub := o.discovery.Subscribe()

	if err := o.discovery.Start(ctx, cfg.Interface, broadcast, cfg.Timeout); err != nil {
		sub.Close()
		_ = session.Close()
		return nil, &types.DiscoveryError{Err: err}
	}

	r := &run{
		id:        xid.New().String(),
		cfg:       cfg,
		session:   session,
		sub:       sub,
		resolver:  o.resolver,
		results:   make(chan probeResult),
		inFlight:  make(map[string]struct{}),
		queued:    make(map[string]struct{}),
		completed: make(map[string]types.Device),
		knownHW:   make(map[string]string),
		start:     time.Now(),
	}
	gologger.Verbose().Msgf("[%s] scanning %s on %s (timeout %s, interval %s)",
		r.id, cfg.Interface.CIDR, cfg.Interface.Name, cfg.Timeout, cfg.Interval)
	return r.loop(ctx)
}

// probeResult is one finished liveness probe, posted back to the loop.
type probeResult struct {
	addr  string
	alive bool
	rtt   time.Duration
}

// run holds the orchestration state of one scan. Only the loop goroutine
// touches it.
type run struct {
	id       string
	cfg      Config
	session  ProbeSession
	sub      *probe.Subscription
	resolver HostnameResolver

	ctx     context.Context
	results chan probeResult

	pending       []types.PendingProbe
	queued        map[string]struct{}
	inFlight      map[string]struct{}
	completed     map[string]types.Device
	knownHW       map[string]string
	discoveryDone bool
	lastDispatch  time.Time
	pacing        *time.Timer

	start time.Time
}

func (r *run) loop(ctx context.Context) ([]types.Device, error) {
	defer r.sub.Close()
	defer func() { _ = r.session.Close() }()

	// Run-scoped context so probe goroutines unblock once the loop exits,
	// whatever the exit path.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	r.ctx = ctx

	// Stopped timer, armed only when a dispatch is deferred for pacing.
	r.pacing = time.NewTimer(time.Hour)
	if !r.pacing.Stop() {
		<-r.pacing.C
	}
	defer r.pacing.Stop()

	for {
		select {
		case ev := <-r.sub.C:
			switch ev.Kind {
			case probe.KindResponse:
				// Stragglers after the completion event are still admitted;
				// finalization waits for them like any other probe.
				r.emit(Event{Kind: EventDiscoveryResponse, Device: &types.Device{
					Addr:         ev.Response.Addr,
					HardwareAddr: ev.Response.HardwareAddr,
				}})
				r.schedule(ev.Response.Addr, ev.Response.HardwareAddr)
			case probe.KindComplete:
				gologger.Verbose().Msgf("[%s] discovery finished: %d hosts in %dms",
					r.id, ev.Report.Count, ev.Report.ElapsedMs)
				r.discoveryDone = true
				r.emit(Event{Kind: EventDiscoveryComplete, Report: ev.Report})
				if devices, done := r.maybeFinalize(); done {
					return devices, nil
				}
			case probe.KindError:
				return nil, &types.DiscoveryError{Err: ev.Err}
			}

		case res := <-r.results:
			r.onResult(res)
			if devices, done := r.maybeFinalize(); done {
				return devices, nil
			}

		case <-r.pacing.C:
			r.dispatch()

		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// schedule admits one discovered host. Rediscoveries only refresh the known
// link address: an address that is queued, in flight or completed is never
// probed twice within a run.
func (r *run) schedule(addr, hardwareAddr string) {
	r.knownHW[addr] = hardwareAddr

	if _, ok := r.queued[addr]; ok {
		return
	}
	if _, ok := r.inFlight[addr]; ok {
		return
	}
	if _, ok := r.completed[addr]; ok {
		return
	}

	r.queued[addr] = struct{}{}
	r.pending = append(r.pending, types.PendingProbe{Addr: addr, HardwareAddr: hardwareAddr})
	r.dispatch()
}

// dispatch drains the pending queue under the pacing policy: unlimited
// concurrency when Interval is zero, strict single-in-flight with minimum
// spacing otherwise.
func (r *run) dispatch() {
	for len(r.pending) > 0 {
		if r.cfg.Interval > 0 {
			if len(r.inFlight) > 0 {
				return
			}
			if !r.lastDispatch.IsZero() {
				if wait := r.cfg.Interval - time.Since(r.lastDispatch); wait > 0 {
					r.pacing.Reset(wait)
					return
				}
			}
		}

		p := r.pending[0]
		r.pending = r.pending[1:]
		delete(r.queued, p.Addr)
		r.inFlight[p.Addr] = struct{}{}
		r.lastDispatch = time.Now()

		go func(p types.PendingProbe) {
			alive, rtt := r.session.Probe(r.ctx, p.Addr, r.cfg.Timeout)
			select {
			case r.results <- probeResult{addr: p.Addr, alive: alive, rtt: rtt}:
			case <-r.ctx.Done():
			}
		}(p)
	}
}

func (r *run) onResult(res probeResult) {
	delete(r.inFlight, res.addr)

	// Enrichment failures degrade to an empty hostname inside the
	// resolver, they never abort the run.
	hostname := r.resolver.Resolve(r.ctx, res.addr)

	device := types.Device{
		Addr:         res.addr,
		HardwareAddr: r.knownHW[res.addr],
		Hostname:     hostname,
		Reachable:    res.alive,
	}
	r.completed[res.addr] = device

	r.emit(Event{Kind: EventDeviceResolved, Device: &device})
	if res.alive {
		gologger.Verbose().Msgf("[%s] %s alive (rtt %s)", r.id, res.addr, res.rtt)
		r.emit(Event{Kind: EventProbeReachable, Addr: res.addr})
	}

	r.dispatch()
}

// maybeFinalize emits the inventory once the discovery phase is done and
// no probes remain queued or in flight.
func (r *run) maybeFinalize() ([]types.Device, bool) {
	if !r.discoveryDone || len(r.inFlight) > 0 || len(r.pending) > 0 {
		return nil, false
	}

	devices := make([]types.Device, 0, len(r.completed))
	for _, d := range r.completed {
		devices = append(devices, d)
	}
	sort.Slice(devices, func(i, j int) bool {
		return lessAddr(devices[i].Addr, devices[j].Addr)
	})

	probed := make([]string, 0, len(devices))
	for _, d := range devices {
		probed = append(probed, d.Addr)
	}

	report := probe.NewTargetReport(probed, time.Since(r.start))
	gologger.Verbose().Msgf("[%s] scan finished: %d devices in %dms", r.id, report.Count, report.ElapsedMs)
	r.emit(Event{Kind: EventScanComplete, Report: report})
	r.emit(Event{Kind: EventInventory, Devices: devices})
	return devices, true
}

func (r *run) emit(ev Event) {
	if r.cfg.OnEvent != nil {
		r.cfg.OnEvent(ev)
	}
}
