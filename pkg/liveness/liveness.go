// Package liveness implements the per-host reachability check. One Session
// wraps a single shared ICMP socket reused across all probes of a scan run;
// the session is owned by that run and Close is its terminal act.
package liveness

import (
	"context"
	"errors"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	mapsutil "github.com/projectdiscovery/utils/maps"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"

	"lanscout/pkg/types"
)

// readInterval is the socket read deadline of the receiver loop. Short so
// Close is picked up promptly.
const readInterval = 500 * time.Millisecond

// echoPayload travels in every echo request.
var echoPayload = []byte("HELLO-R-U-THERE")

// pendingProbe tracks one sent echo request waiting for its reply.
type pendingProbe struct {
	ip    net.IP
	start time.Time
	reply chan time.Duration
}

// Session is a shared ICMP echo session. Safe for concurrent Probe calls;
// replies are matched to probes by sequence number on a single receiver
// goroutine. Using a Session after Close is undefined.
type Session struct {
	conn     net.PacketConn
	pending  *mapsutil.SyncLockMap[int, *pendingProbe]
	seq      atomic.Uint32
	closed   chan struct{}
	recvDone chan struct{}
	once     sync.Once
}

// NewSession opens the shared ICMP socket and starts the receiver.
func NewSession() (*Session, error) {
	conn, err := icmp.ListenPacket("ip4:icmp", "0.0.0.0")
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			return nil, &types.PrivilegeError{Reason: "raw ICMP socket not permitted"}
		}
		return nil, err
	}

	s := &Session{
		conn:     conn,
		pending:  mapsutil.NewSyncLockMap[int, *pendingProbe](),
		closed:   make(chan struct{}),
		recvDone: make(chan struct{}),
	}
	go s.receive()
	return s, nil
}

// Probe sends one echo request to addr and waits up to timeout for the
// reply. It never fails: malformed addresses, send errors and silence all
// resolve to false. The returned duration is the measured RTT when alive.
func (s *Session) Probe(ctx context.Context, addr string, timeout time.Duration) (bool, time.Duration) {
	ip := net.ParseIP(addr)
	if ip == nil || ip.To4() == nil {
		return false, 0
	}

	// Sequence numbers are 16-bit on the wire.
	seq := int(s.seq.Add(1) & 0xffff)
	p := &pendingProbe{
		ip:    ip,
		start: time.Now(),
		reply: make(chan time.Duration, 1),
	}
	_ = s.pending.Set(seq, p)
	defer s.pending.Delete(seq)

	if err := s.send(ip, seq); err != nil {
		return false, 0
	}

	select {
	case rtt := <-p.reply:
		return true, rtt
	case <-time.After(timeout):
		return false, 0
	case <-ctx.Done():
		return false, 0
	case <-s.closed:
		return false, 0
	}
}

// Close tears the session down and waits for the receiver to exit. It is
// idempotent; outstanding probes resolve to false.
func (s *Session) Close() error {
	s.once.Do(func() {
		close(s.closed)
		_ = s.conn.Close()
		<-s.recvDone
	})
	return nil
}

func (s *Session) send(ip net.IP, seq int) error {
	msg := &icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{
			ID:   os.Getpid() & 0xffff,
			Seq:  seq,
			Data: echoPayload,
		},
	}

	msgBytes, err := msg.Marshal(nil)
	if err != nil {
		return err
	}

	_, err = s.conn.WriteTo(msgBytes, &net.IPAddr{IP: ip})
	return err
}

// receive matches echo replies to pending probes until the session closes.
func (s *Session) receive() {
	defer close(s.recvDone)

	expectedID := os.Getpid() & 0xffff
	protocol := ipv4.ICMPTypeEchoReply.Protocol()
	reply := make([]byte, 1500)

	for {
		select {
		case <-s.closed:
			return
		default:
		}

		if err := s.conn.SetReadDeadline(time.Now().Add(readInterval)); err != nil {
			return
		}

		n, peer, err := s.conn.ReadFrom(reply)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			// Timeout, keep listening.
			continue
		}

		rm, err := icmp.ParseMessage(protocol, reply[:n])
		if err != nil {
			continue
		}
		if rm.Type != ipv4.ICMPTypeEchoReply {
			continue
		}

		echo, ok := rm.Body.(*icmp.Echo)
		if !ok || echo.ID != expectedID {
			continue
		}

		p, exists := s.pending.Get(echo.Seq)
		if !exists {
			continue
		}
		if peerAddr, ok := peer.(*net.IPAddr); !ok || !peerAddr.IP.Equal(p.ip) {
			continue
		}

		select {
		case p.reply <- time.Since(p.start):
		default:
		}
		s.pending.Delete(echo.Seq)
	}
}
