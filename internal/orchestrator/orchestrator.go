// Package orchestrator wires together discovery, the peer registry,
// transport, the file transfer engine, and the dispatcher, per
// SPEC_FULL.md §4.8. It owns process startup (ephemeral port probing, self
// identity, download directory) and the long-lived service loops,
// supervised with github.com/thejerf/suture/v4. Shutdown is ctx
// cancellation of the supervisor; the file transfer worker is not
// cancelled by it: Run closes the engine's job queue on return, and a job
// already in progress, and any still queued, keep sending chunks for as
// long as the process lives.
package orchestrator

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/thejerf/suture/v4"

	"github.com/mojtab23/mojika/internal/beacon"
	"github.com/mojtab23/mojika/internal/dispatch"
	"github.com/mojtab23/mojika/internal/filetransfer"
	"github.com/mojtab23/mojika/internal/logger"
	"github.com/mojtab23/mojika/internal/peer"
	"github.com/mojtab23/mojika/internal/transport"
	"github.com/mojtab23/mojika/internal/wire"
)

var debug = logger.Debug("orchestrator")

const selfName = "Buddy"

// Orchestrator is the assembled, running mojika node.
type Orchestrator struct {
	self        peer.Peer
	registry    *peer.Registry
	discovery   *beacon.Discovery
	requester   *transport.Requester
	responder   *transport.Responder
	transfer    *filetransfer.Engine
	dispatcher  *dispatch.Dispatcher
	downloadDir string

	sup *suture.Supervisor
}

// New probes two ephemeral ports — one is the Responder listen port, one
// is the Requester source port — builds the self Peer, and wires every
// component. It does not yet start any service loop; call Run for that.
func New() (*Orchestrator, error) {
	serverPort, err := anOpenPort()
	if err != nil {
		return nil, fmt.Errorf("probe server port: %w", err)
	}
	requesterPort, err := anOpenPort()
	if err != nil {
		return nil, fmt.Errorf("probe requester port: %w", err)
	}

	self := peer.New(uuid.NewString(), selfName, uuid.NewString(),
		&net.UDPAddr{IP: net.ParseIP("0.0.0.0"), Port: int(serverPort)})

	registry := peer.NewRegistry(self)

	downloadDir, err := mojikaDir()
	if err != nil {
		return nil, fmt.Errorf("resolve download dir: %w", err)
	}

	requester, err := transport.NewRequester(requesterPort)
	if err != nil {
		return nil, fmt.Errorf("start requester: %w", err)
	}

	transfer, err := filetransfer.New(downloadDir, &chunkSender{requester, registry, self}, func(peerID, fileID string, p filetransfer.Progress) {
		registry.UpdateFileProgress(peerID, fileID, peer.Progress{BytesTransferred: p.Transferred, TotalBytes: p.Total})
	})
	if err != nil {
		return nil, fmt.Errorf("init file transfer: %w", err)
	}

	dispatcher := dispatch.New(registry, transfer)

	responder, err := transport.NewResponder(serverPort, dispatcher)
	if err != nil {
		return nil, fmt.Errorf("start responder: %w", err)
	}

	disc, err := beacon.New(wire.DiscoveryMessage{
		ID:          self.ID,
		Name:        self.Name,
		ServicePort: serverPort,
	})
	if err != nil {
		return nil, fmt.Errorf("start discovery: %w", err)
	}

	sup := suture.New("mojika", suture.Spec{
		EventHook: func(ev suture.Event) {
			if debug {
				logger.L.Debugln("orchestrator:", ev.String())
			}
		},
	})

	o := &Orchestrator{
		self:        self,
		registry:    registry,
		discovery:   disc,
		requester:   requester,
		responder:   responder,
		transfer:    transfer,
		dispatcher:  dispatcher,
		downloadDir: downloadDir,
		sup:         sup,
	}

	sup.Add(disc)
	sup.Add(responder)
	sup.Add(runnerService(transfer.Run))
	sup.Add(o.discoveryWatcher())

	return o, nil
}

// Self returns the local identity.
func (o *Orchestrator) Self() peer.Peer { return o.self }

// DownloadDir returns the directory completed transfers are written to.
func (o *Orchestrator) DownloadDir() string { return o.downloadDir }

// Registry exposes the peer registry for pkg/mojika's Handle.
func (o *Orchestrator) Registry() *peer.Registry { return o.registry }

// Run blocks serving every supervised component until ctx is cancelled.
func (o *Orchestrator) Run(ctx context.Context) error {
	err := o.sup.Serve(ctx)
	o.transfer.Close()
	return err
}

// ConnectToPeer fires a best-effort Connect request at a known peer,
// mirroring the original's fire-and-forget connect_to_peer. Errors are
// logged, not returned, since nothing downstream awaits this handshake.
func (o *Orchestrator) ConnectToPeer(peerID string) {
	p, ok := o.registry.FindByID(peerID)
	if !ok {
		logger.L.Warnf("orchestrator: no peer found with id %s", peerID)
		return
	}
	go func() {
		req := wire.NewConnectRequest(o.self.ID, o.self.Secret)
		if _, err := o.requester.Request(context.Background(), p.Address, req); err != nil {
			logger.L.Warnf("orchestrator: connect to %s: %v", peerID, err)
		}
	}()
}

// SendChat delivers a chat message to peerID, recording it locally first.
func (o *Orchestrator) SendChat(peerID, senderID, text string) {
	p, ok := o.registry.FindByID(peerID)
	if !ok {
		logger.L.Warnf("orchestrator: no peer found with id %s", peerID)
		return
	}
	o.registry.AddChat(peerID, senderID, text)
	go func() {
		req := wire.NewChatRequest(o.self.ID, o.self.Secret, text)
		if _, err := o.requester.Request(context.Background(), p.Address, req); err != nil {
			logger.L.Warnf("orchestrator: send chat to %s: %v", peerID, err)
		}
	}()
}

// SendFile begins sending path to peerID: it stats the file, asks the
// recipient to create it, records a chat entry, and enqueues the transfer
// job, per §4.7's "send flow initiated externally".
func (o *Orchestrator) SendFile(peerID, senderID, path string) error {
	p, ok := o.registry.FindByID(peerID)
	if !ok {
		return fmt.Errorf("no peer found with id %s", peerID)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	filename := filepath.Base(path)
	fileLength := uint64(info.Size())

	req := wire.NewFileRequest(o.self.ID, o.self.Secret, wire.FileRequest{
		Kind:       wire.FileRequestCreateFile,
		CreateFile: wire.CreateFile{Filename: filename, FileLength: fileLength},
	})

	resp, err := o.requester.Request(context.Background(), p.Address, req)
	if err != nil {
		return fmt.Errorf("request create file: %w", err)
	}
	if resp.Kind == wire.ResponseErr {
		return fmt.Errorf("peer refused create file: %s", resp.Err)
	}
	if resp.Kind != wire.ResponseFile || resp.File.Kind != wire.FileResponseFileCreated {
		return fmt.Errorf("unexpected response to create file: %+v", resp)
	}
	fileID := resp.File.FileCreatedID

	o.registry.AddFile(peerID, senderID, fileID, filename, fileLength)
	o.transfer.Enqueue(filetransfer.TransferCommand{
		FileID:        fileID,
		FilePath:      path,
		PeerID:        peerID,
		ContentOffset: 0,
	})
	return nil
}

// discoveryWatcher adapts beacon.Discovery's event channel into peer
// registration plus a fire-and-forget Connect, matching the original's
// handle_new_message.
func (o *Orchestrator) discoveryWatcher() suture.Service {
	return discoveryWatcherService{o}
}

type discoveryWatcherService struct{ o *Orchestrator }

func (s discoveryWatcherService) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-s.o.discovery.Events():
			s.o.handleDiscovery(ev)
		}
	}
}

func (o *Orchestrator) handleDiscovery(ev beacon.Event) {
	if ev.Addr == nil || ev.Message.ID == o.self.ID {
		return
	}
	if _, known := o.registry.FindByID(ev.Message.ID); known {
		return
	}

	addr := &net.UDPAddr{IP: ev.Addr.IP, Port: int(ev.Message.ServicePort)}
	newPeer := peer.New(ev.Message.ID, ev.Message.Name, "", addr)
	if o.registry.Register(newPeer) {
		if debug {
			logger.L.Debugln("orchestrator: registered peer", newPeer)
		}
		o.ConnectToPeer(newPeer.ID)
	}
}

// anOpenPort binds an ephemeral UDP socket on loopback and reads back the
// port the kernel assigned, the Go equivalent of binding UdpSocket
// 127.0.0.1:0 and reading local_addr().port().
func anOpenPort() (uint16, error) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 0})
	if err != nil {
		return 0, err
	}
	defer conn.Close()
	return uint16(conn.LocalAddr().(*net.UDPAddr).Port), nil
}

// mojikaDir resolves ~/Downloads/mojika (creating it if missing). It falls
// back to the user's home directory if a dedicated Downloads directory
// can't be located, since not every OS/account exposes one.
func mojikaDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	downloads := filepath.Join(home, "Downloads")
	if info, err := os.Stat(downloads); err != nil || !info.IsDir() {
		downloads = home
	}
	dir := filepath.Join(downloads, "mojika")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// chunkSender adapts internal/transport.Requester + internal/peer.Registry
// into the filetransfer.Sender interface.
type chunkSender struct {
	requester *transport.Requester
	registry  *peer.Registry
	self      peer.Peer
}

func (s *chunkSender) SendChunk(peerID string, chunk wire.FileChunk) (wire.Response, error) {
	p, ok := s.registry.FindByID(peerID)
	if !ok {
		return wire.Response{}, fmt.Errorf("no peer found with id %s", peerID)
	}
	req := wire.NewFileRequest(s.self.ID, s.self.Secret, wire.FileRequest{Kind: wire.FileRequestFileChunk, Chunk: chunk})
	return s.requester.Request(context.Background(), p.Address, req)
}

// runnerService adapts a plain func() into suture/v4's Service interface
// for components (like filetransfer.Engine.Run) that have no ctx-aware
// Serve method of their own.
type runnerService func()

func (r runnerService) Serve(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r()
		close(done)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}
