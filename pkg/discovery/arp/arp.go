package arp

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/mapcidr"
	mapsutil "github.com/projectdiscovery/utils/maps"
	syncutil "github.com/projectdiscovery/utils/sync"

	"lanscout/pkg/netinfo"
	"lanscout/pkg/probe"
)

const (
	// triggerParallelism bounds concurrent UDP dials during the sweep.
	triggerParallelism = 5
	// triggerSpacing is the delay between successive trigger dials.
	triggerSpacing = 10 * time.Millisecond
	// dialTimeout is the per-target UDP dial timeout. The dial is expected
	// to fail, it only exists to make the OS issue the ARP request.
	dialTimeout = 50 * time.Millisecond
	// pollInterval is how often the neighbour table is re-read for new
	// entries while the sweep runs.
	pollInterval = 500 * time.Millisecond
	// settleWait gives the OS time to finish outstanding ARP resolution
	// after the last trigger was sent.
	settleWait = 2 * time.Second
)

// Entry is one neighbour-table row.
type Entry struct {
	IP  net.IP
	MAC net.HardwareAddr
}

// Mechanism performs one broadcast-style ARP discovery pass over a subnet
// and publishes a Response event per host found, followed by one Complete
// event. It triggers resolution by dialing UDP to every usable address in
// the subnet and watches the OS neighbour table for new entries, so no raw
// frames are constructed.
type Mechanism struct {
	events  *probe.Broadcaster
	running atomic.Bool
}

// NewMechanism returns an idle Mechanism.
func NewMechanism() *Mechanism {
	return &Mechanism{events: probe.NewBroadcaster()}
}

// Subscribe registers a run-owned subscription on the mechanism's event
// stream. The caller must Close it on every exit path.
func (m *Mechanism) Subscribe() *probe.Subscription {
	return m.events.Subscribe()
}

// Subscribers reports the number of active subscriptions.
func (m *Mechanism) Subscribers() int {
	return m.events.Subscribers()
}

// Start begins one discovery pass. It fails synchronously when the
// interface is unusable or the neighbour table cannot be read; after a nil
// return the pass runs in the background and terminates the event stream
// with exactly one Complete (or Error) event. timeout bounds the whole
// pass.
func (m *Mechanism) Start(ctx context.Context, iface *netinfo.Interface, broadcast net.IP, timeout time.Duration) error {
	if !m.running.CompareAndSwap(false, true) {
		return fmt.Errorf("discovery pass already running")
	}

	network, err := iface.Network()
	if err != nil {
		m.running.Store(false)
		return fmt.Errorf("interface %s has no usable network: %w", iface.Name, err)
	}
	selfIP, err := iface.Addr()
	if err != nil {
		m.running.Store(false)
		return fmt.Errorf("interface %s has no usable address: %w", iface.Name, err)
	}

	// Fail fast if the neighbour table is unreadable on this system.
	initial, err := readNeighbourTable()
	if err != nil {
		m.running.Store(false)
		return fmt.Errorf("failed to read neighbour table: %w", err)
	}

	go m.run(ctx, network, selfIP, broadcast, timeout, initial)
	return nil
}

func (m *Mechanism) run(ctx context.Context, network *net.IPNet, selfIP, broadcast net.IP, timeout time.Duration, initial []Entry) {
	defer m.running.Store(false)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	seen := mapsutil.NewSyncLockMap[string, struct{}]()
	var mu sync.Mutex // guards found, emit runs from the poller too
	var found []string

	emit := func(e Entry) {
		if !network.Contains(e.IP) || e.IP.Equal(broadcast) {
			return
		}
		key := e.IP.String()
		mu.Lock()
		defer mu.Unlock()
		if seen.Has(key) {
			return
		}
		_ = seen.Set(key, struct{}{})
		found = append(found, key)
		m.events.PublishResponse(probe.Response{Addr: key, HardwareAddr: e.MAC.String()})
	}

	// The scanning host never shows up in its own neighbour table, report
	// it first with an empty hardware address.
	selfKey := selfIP.String()
	_ = seen.Set(selfKey, struct{}{})
	found = append(found, selfKey)
	m.events.PublishResponse(probe.Response{Addr: selfKey})

	for _, e := range initial {
		emit(e)
	}

	// Watch the neighbour table while triggers are in flight.
	pollDone := make(chan struct{})
	pollStop := make(chan struct{})
	go func() {
		defer close(pollDone)
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-pollStop:
				return
			case <-ticker.C:
				entries, err := readNeighbourTable()
				if err != nil {
					gologger.Debug().Msgf("neighbour table poll failed: %v", err)
					continue
				}
				for _, e := range entries {
					emit(e)
				}
			}
		}
	}()

	if err := m.trigger(ctx, network, selfIP, broadcast); err != nil {
		close(pollStop)
		<-pollDone
		m.events.PublishError(err)
		return
	}

	// Let outstanding ARP resolution land before the final read.
	select {
	case <-ctx.Done():
	case <-time.After(settleWait):
	}
	close(pollStop)
	<-pollDone

	if entries, err := readNeighbourTable(); err == nil {
		for _, e := range entries {
			emit(e)
		}
	}

	m.events.PublishComplete(probe.NewSweepReport(found, time.Since(start)))
}

// trigger dials UDP to every usable address of the subnet so the OS issues
// the ARP requests. Dials are paced and bounded, the connections themselves
// are throwaway.
func (m *Mechanism) trigger(ctx context.Context, network *net.IPNet, selfIP, broadcast net.IP) error {
	ips, err := mapcidr.IPAddresses(network.String())
	if err != nil {
		return fmt.Errorf("failed to expand CIDR %s: %w", network, err)
	}

	awg, err := syncutil.New(syncutil.WithSize(triggerParallelism))
	if err != nil {
		return fmt.Errorf("failed to create adaptive waitgroup: %w", err)
	}

	for _, ipStr := range ips {
		select {
		case <-ctx.Done():
			goto done
		default:
		}

		ip := net.ParseIP(ipStr)
		if ip == nil {
			continue
		}
		if ip.Equal(network.IP) || ip.Equal(broadcast) || ip.Equal(selfIP) {
			continue
		}

		awg.Add()
		go func(targetIP net.IP) {
			defer awg.Done()
			conn, err := net.DialTimeout("udp", net.JoinHostPort(targetIP.String(), "12345"), dialTimeout)
			if err != nil {
				return
			}
			_ = conn.Close()
		}(ip)

		time.Sleep(triggerSpacing)
	}

done:
	awg.Wait()
	return nil
}
