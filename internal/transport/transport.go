// Package transport implements the encrypted QUIC request/response
// transport, per SPEC_FULL.md §4.5. A Responder accepts connections and
// hands each framed Request to a Handler; a Requester dials a remote peer,
// sends one framed Request, and waits for the framed Response. Every stream
// carries exactly one request/response pair, mirroring the original's
// open_bi/accept_bi shape.
package transport

import (
	"context"
	"fmt"
	"net"

	"github.com/quic-go/quic-go"

	"github.com/mojtab23/mojika/internal/logger"
	"github.com/mojtab23/mojika/internal/wire"
)

var debug = logger.Debug("transport")

// TransportError wraps a failure at one stage of a request/response
// exchange. Per §7 these are returned to the caller, never panics.
type TransportError struct {
	Stage string // "connect", "send", "recv", "decode"
	Err   error
}

func (e *TransportError) Error() string { return fmt.Sprintf("transport %s: %v", e.Stage, e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// Handler processes one decoded Request and produces the Response to send
// back. internal/dispatch supplies the concrete implementation.
type Handler interface {
	Handle(req wire.Request) wire.Response
}

// Responder accepts QUIC connections on a fixed local port and serves one
// request per bidirectional stream.
type Responder struct {
	listener *quic.Listener
	handler  Handler
}

// NewResponder generates a fresh self-signed certificate and starts
// listening on 0.0.0.0:port.
func NewResponder(port uint16, handler Handler) (*Responder, error) {
	tlsConf, err := serverTLSConfig()
	if err != nil {
		return nil, &TransportError{Stage: "connect", Err: err}
	}

	ln, err := quic.ListenAddr(fmt.Sprintf("0.0.0.0:%d", port), tlsConf, nil)
	if err != nil {
		return nil, &TransportError{Stage: "connect", Err: err}
	}

	return &Responder{listener: ln, handler: handler}, nil
}

// Addr returns the bound local address.
func (r *Responder) Addr() net.Addr {
	return r.listener.Addr()
}

// Serve accepts connections until ctx is cancelled, satisfying
// github.com/thejerf/suture/v4's Service interface.
func (r *Responder) Serve(ctx context.Context) error {
	defer r.listener.Close()
	for {
		conn, err := r.listener.Accept(ctx)
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			return &TransportError{Stage: "connect", Err: err}
		}
		if debug {
			logger.L.Debugln("transport: accepted connection from", conn.RemoteAddr())
		}
		go r.serveConn(ctx, conn)
	}
}

func (r *Responder) serveConn(ctx context.Context, conn quic.Connection) {
	for {
		stream, err := conn.AcceptStream(ctx)
		if err != nil {
			return
		}
		go r.serveStream(stream)
	}
}

func (r *Responder) serveStream(stream quic.Stream) {
	defer stream.Close()

	typ, payload, err := wire.ReadFrame(stream)
	if err != nil {
		logger.L.Warnf("transport: read request frame: %v", err)
		return
	}
	if typ != wire.FrameRequest {
		logger.L.Warnf("transport: expected %s frame, got %s", wire.FrameRequest, typ)
		return
	}

	req, err := wire.DecodeRequest(payload)
	if err != nil {
		logger.L.Warnf("transport: decode request: %v", err)
		return
	}

	resp := r.handler.Handle(req)

	respPayload, err := wire.EncodeResponse(resp)
	if err != nil {
		logger.L.Warnf("transport: encode response: %v", err)
		return
	}
	if err := wire.WriteFrame(stream, wire.FrameResponse, respPayload); err != nil {
		logger.L.Warnf("transport: write response frame: %v", err)
	}
}

// Requester dials remote peers and performs one request/response exchange
// per call, reusing a single UDP socket bound at construction time as its
// source port rather than letting each dial pick a fresh ephemeral one.
// Each call opens a fresh QUIC connection over that socket, since peers are
// contacted infrequently and a pooled-connection cache would add lifecycle
// complexity the spec doesn't ask for.
type Requester struct {
	transport *quic.Transport
}

// NewRequester binds a UDP socket on 0.0.0.0:port and returns a Requester
// that dials every peer through it, so the process exposes one stable
// source port for all outbound requests.
func NewRequester(port uint16) (*Requester, error) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4zero, Port: int(port)})
	if err != nil {
		return nil, &TransportError{Stage: "connect", Err: err}
	}
	return &Requester{transport: &quic.Transport{Conn: conn}}, nil
}

// Request connects to remoteAddr, sends req over a fresh bidirectional
// stream, and returns the decoded Response.
func (q *Requester) Request(ctx context.Context, remoteAddr *net.UDPAddr, req wire.Request) (wire.Response, error) {
	if debug {
		logger.L.Debugln("transport: connecting to", remoteAddr)
	}

	conn, err := q.transport.Dial(ctx, remoteAddr, clientTLSConfig(), nil)
	if err != nil {
		return wire.Response{}, &TransportError{Stage: "connect", Err: err}
	}
	defer conn.CloseWithError(0, "")

	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		return wire.Response{}, &TransportError{Stage: "connect", Err: err}
	}

	payload, err := wire.EncodeRequest(req)
	if err != nil {
		return wire.Response{}, &TransportError{Stage: "send", Err: err}
	}
	if err := wire.WriteFrame(stream, wire.FrameRequest, payload); err != nil {
		return wire.Response{}, &TransportError{Stage: "send", Err: err}
	}
	if err := stream.Close(); err != nil {
		return wire.Response{}, &TransportError{Stage: "send", Err: err}
	}

	typ, respPayload, err := wire.ReadFrame(stream)
	if err != nil {
		return wire.Response{}, &TransportError{Stage: "recv", Err: err}
	}
	if typ != wire.FrameResponse {
		return wire.Response{}, &TransportError{Stage: "recv", Err: fmt.Errorf("expected %s frame, got %s", wire.FrameResponse, typ)}
	}

	resp, err := wire.DecodeResponse(respPayload)
	if err != nil {
		return wire.Response{}, &TransportError{Stage: "decode", Err: err}
	}
	if debug {
		logger.L.Debugln("transport: got response", resp.Kind)
	}
	return resp, nil
}
