package transport

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/mojtab23/mojika/internal/wire"
)

type echoHandler struct{}

func (echoHandler) Handle(req wire.Request) wire.Response {
	switch req.Kind {
	case wire.RequestChat:
		return wire.NewOkResponse(req.PeerID, req.Secret)
	default:
		return wire.NewErrResponse(req.PeerID, req.Secret, "unhandled")
	}
}

func TestRequestResponseRoundTrip(t *testing.T) {
	responder, err := NewResponder(0, echoHandler{})
	if err != nil {
		t.Fatalf("NewResponder: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- responder.Serve(ctx) }()

	addr := responder.Addr().(*net.UDPAddr)
	loopback := &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: addr.Port}

	req := wire.NewChatRequest("peer-a", "secret", "hello")

	reqCtx, reqCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer reqCancel()

	requester, err := NewRequester(0)
	if err != nil {
		t.Fatalf("NewRequester: %v", err)
	}
	resp, err := requester.Request(reqCtx, loopback, req)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if resp.Kind != wire.ResponseOk {
		t.Fatalf("expected Ok response, got %+v", resp)
	}

	cancel()
	<-done
}
