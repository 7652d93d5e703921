// Package beacon implements LAN peer discovery over a fixed IPv4 multicast
// group, per SPEC_FULL.md §4.3. A single DiscoveryMessage is broadcast on a
// timer and arriving datagrams are decoded and handed to the caller; nothing
// here knows about peers, registration, or transport.
package beacon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"

	"golang.org/x/net/ipv4"

	"github.com/mojtab23/mojika/internal/logger"
	"github.com/mojtab23/mojika/internal/wire"
)

var debug = logger.Debug("beacon")

const (
	// Group is the fixed multicast group every mojika process joins.
	Group = "224.0.1.1"
	// Port is the fixed UDP port bound for discovery traffic.
	Port = 10020

	// BeaconInterval is how often the local DiscoveryMessage is re-announced.
	BeaconInterval = 2 * time.Second

	// ReceiveBufferLen bounds a single inbound datagram.
	ReceiveBufferLen = 1024
)

var groupAddr = &net.UDPAddr{IP: net.ParseIP(Group), Port: Port}

// Event is one decoded datagram along with the address it arrived from.
type Event struct {
	Message wire.DiscoveryMessage
	Addr    *net.UDPAddr
}

// DiscoveryError wraps a failure in the discovery socket. Per §7 these are
// logged and retried by the caller's supervision, never panics.
type DiscoveryError struct {
	Op  string
	Err error
}

func (e *DiscoveryError) Error() string { return fmt.Sprintf("beacon: %s: %v", e.Op, e.Err) }
func (e *DiscoveryError) Unwrap() error { return e.Err }

// Discovery owns the single UDP socket used both to announce this peer and
// to receive announcements from others, per the fixed wire constants.
type Discovery struct {
	conn  *net.UDPConn
	pconn *ipv4.PacketConn
	self  wire.DiscoveryMessage

	outbox chan Event
}

// New opens and configures the discovery socket: SO_REUSEADDR, non-blocking,
// bound to 0.0.0.0:10020, joined to the fixed group on every interface (so a
// beacon arriving on any physical NIC is delivered, not just loopback), with
// multicast loopback enabled so peers on the same host see each other too.
func New(self wire.DiscoveryMessage) (*Discovery, error) {
	lc := net.ListenConfig{
		Control: func(_, _ string, c syscall.RawConn) error {
			var ctrlErr error
			err := c.Control(func(fd uintptr) {
				ctrlErr = syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_REUSEADDR, 1)
			})
			if err != nil {
				return err
			}
			return ctrlErr
		},
	}

	pc, err := lc.ListenPacket(context.Background(), "udp4", fmt.Sprintf("0.0.0.0:%d", Port))
	if err != nil {
		return nil, &DiscoveryError{Op: "listen", Err: err}
	}
	conn := pc.(*net.UDPConn)

	pconn := ipv4.NewPacketConn(conn)
	if err := pconn.SetMulticastLoopback(true); err != nil {
		conn.Close()
		return nil, &DiscoveryError{Op: "set loopback", Err: err}
	}

	if err := joinAllInterfaces(pconn); err != nil {
		conn.Close()
		return nil, err
	}

	return &Discovery{
		conn:   conn,
		pconn:  pconn,
		self:   self,
		outbox: make(chan Event, 16),
	}, nil
}

// joinAllInterfaces joins groupAddr on every system interface, the same
// best-effort fan-out lib/beacon's Multicast.Multicast uses for its IPv6
// listener: a join that fails on one interface (down, no multicast support)
// is logged and skipped, but at least one success is required. A join that
// succeeds on loopback alone is accepted; such a socket then only sees
// beacons sent from this host.
func joinAllInterfaces(pconn *ipv4.PacketConn) error {
	ifaces, err := net.Interfaces()
	if err != nil {
		return &DiscoveryError{Op: "interface lookup", Err: err}
	}

	var joined int
	for i := range ifaces {
		ifi := &ifaces[i]
		if err := pconn.JoinGroup(ifi, groupAddr); err != nil {
			logger.L.Debugln("beacon: join group on", ifi.Name, "failed:", err)
			continue
		}
		logger.L.Debugln("beacon: joined group on", ifi.Name)
		joined++
	}
	if joined == 0 {
		return &DiscoveryError{Op: "join group", Err: errors.New("no interface could join the multicast group")}
	}
	return nil
}

// Close releases the underlying socket.
func (d *Discovery) Close() error {
	return d.conn.Close()
}

// Events returns the channel that decoded, non-self datagrams are not
// filtered on -- callers (internal/orchestrator) apply self/dedup logic.
func (d *Discovery) Events() <-chan Event {
	return d.outbox
}

// Serve runs the send and receive loops until ctx is cancelled, satisfying
// github.com/thejerf/suture/v4's Service interface so the orchestrator can
// supervise it alongside the other long-lived components.
func (d *Discovery) Serve(ctx context.Context) error {
	errs := make(chan error, 2)
	go func() { errs <- d.sendLoop(ctx) }()
	go func() { errs <- d.recvLoop(ctx) }()

	select {
	case <-ctx.Done():
		d.conn.Close()
		<-errs
		<-errs
		return ctx.Err()
	case err := <-errs:
		d.conn.Close()
		<-errs
		return err
	}
}

func (d *Discovery) sendLoop(ctx context.Context) error {
	ticker := time.NewTicker(BeaconInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := d.sendSignal(); err != nil {
				if debug {
					logger.L.Debugln("beacon: send failed:", err)
				}
				logger.L.Warnf("beacon: send signal: %v", err)
			}
		}
	}
}

func (d *Discovery) sendSignal() error {
	payload, err := wire.EncodeDiscoveryMessage(d.self)
	if err != nil {
		return &DiscoveryError{Op: "encode", Err: err}
	}
	if _, err := d.conn.WriteToUDP(payload, groupAddr); err != nil {
		return &DiscoveryError{Op: "write", Err: err}
	}
	if debug {
		logger.L.Debugf("beacon: sent %d bytes as %s", len(payload), d.self.ID)
	}
	return nil
}

func (d *Discovery) recvLoop(ctx context.Context) error {
	buf := make([]byte, ReceiveBufferLen)
	for {
		n, _, addr, err := d.pconn.ReadFrom(buf)
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			return &DiscoveryError{Op: "read", Err: err}
		}

		msg, err := wire.DecodeDiscoveryMessage(buf[:n])
		if err != nil {
			// Malformed datagrams are skipped, not fatal (§4.3/§7).
			if debug {
				logger.L.Debugln("beacon: skipping malformed datagram from", addr, err)
			}
			continue
		}

		udpAddr, _ := addr.(*net.UDPAddr)
		event := Event{Message: msg, Addr: udpAddr}
		select {
		case d.outbox <- event:
		case <-ctx.Done():
			return nil
		default:
			logger.L.Warnln("beacon: dropping event, outbox full")
		}
	}
}
