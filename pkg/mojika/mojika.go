// Package mojika is the external handle embedders (a GUI, a CLI) drive the
// core through, per SPEC_FULL.md §6. It is a thin wrapper over
// internal/orchestrator: Start spawns every service loop non-blockingly,
// and the remaining methods delegate straight through.
package mojika

import (
	"context"

	"github.com/mojtab23/mojika/internal/orchestrator"
	"github.com/mojtab23/mojika/internal/peer"
)

// Handle is the embedder-facing surface of a running mojika node.
type Handle struct {
	orch *orchestrator.Orchestrator
}

// New builds a Handle, probing ports and wiring every component, but
// starts nothing yet. Call Start to spawn the service loops.
func New() (*Handle, error) {
	orch, err := orchestrator.New()
	if err != nil {
		return nil, err
	}
	return &Handle{orch: orch}, nil
}

// Start spawns every supervised service loop in the background and
// returns immediately. The returned error channel receives the single
// terminal error from orchestrator.Run once ctx is cancelled or a
// supervised service fails unrecoverably.
func (h *Handle) Start(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- h.orch.Run(ctx)
	}()
	return done
}

// WatchPeers returns a snapshot subscription of the known peer set,
// refreshed on every registration or chat/file mutation.
func (h *Handle) WatchPeers() <-chan map[string]peer.Peer {
	return h.orch.Registry().Watch()
}

// ConnectToPeer fires a best-effort Connect request at a known peer.
func (h *Handle) ConnectToPeer(peerID string) {
	h.orch.ConnectToPeer(peerID)
}

// SendChat records a chat message locally and delivers it to peerID.
func (h *Handle) SendChat(peerID, senderID, text string) {
	h.orch.SendChat(peerID, senderID, text)
}

// SendFile begins sending the file at path to peerID.
func (h *Handle) SendFile(peerID, senderID, path string) error {
	return h.orch.SendFile(peerID, senderID, path)
}

// SelfPeer returns the local node's own identity.
func (h *Handle) SelfPeer() peer.Peer {
	return h.orch.Self()
}

// DownloadDir returns the directory completed transfers are written to.
func (h *Handle) DownloadDir() string {
	return h.orch.DownloadDir()
}
