// Package dispatch routes a decoded wire.Request to the Registry and
// FileTransfer engine, and builds the wire.Response to send back, per
// SPEC_FULL.md §4.6. It implements internal/transport.Handler.
package dispatch

import (
	"github.com/mojtab23/mojika/internal/filetransfer"
	"github.com/mojtab23/mojika/internal/peer"
	"github.com/mojtab23/mojika/internal/wire"
)

// Dispatcher routes requests arriving over the transport to the local
// Registry and FileTransfer engine.
type Dispatcher struct {
	registry *peer.Registry
	transfer *filetransfer.Engine
}

// New builds a Dispatcher over the given registry and transfer engine.
func New(registry *peer.Registry, transfer *filetransfer.Engine) *Dispatcher {
	return &Dispatcher{registry: registry, transfer: transfer}
}

// Handle implements internal/transport.Handler. It never panics on a
// malformed or unexpected request variant.
func (d *Dispatcher) Handle(req wire.Request) wire.Response {
	switch req.Kind {
	case wire.RequestConnect:
		return wire.NewOkResponse(req.PeerID, req.Secret)

	case wire.RequestChat:
		d.registry.AddChat(req.PeerID, req.PeerID, req.Chat)
		return wire.NewOkResponse(req.PeerID, req.Secret)

	case wire.RequestFile:
		return d.handleFile(req)

	default:
		return wire.NewErrResponse(req.PeerID, req.Secret, "Unhandled request body!")
	}
}

func (d *Dispatcher) handleFile(req wire.Request) wire.Response {
	switch req.File.Kind {
	case wire.FileRequestCreateFile:
		fileID, err := d.transfer.CreateFile(req.File.CreateFile.Filename, req.File.CreateFile.FileLength)
		if err != nil {
			return wire.NewErrResponse(req.PeerID, req.Secret, err.Error())
		}
		d.registry.AddFile(req.PeerID, req.PeerID, fileID, req.File.CreateFile.Filename, req.File.CreateFile.FileLength)
		return wire.NewFileCreatedResponse(req.PeerID, req.Secret, fileID)

	case wire.FileRequestFileChunk:
		if err := d.transfer.WriteChunk(req.File.Chunk); err != nil {
			return wire.NewErrResponse(req.PeerID, req.Secret, err.Error())
		}
		return wire.NewOkResponse(req.PeerID, req.Secret)

	default:
		// FileCreated is a response-only concept delivered to the requester
		// directly, not a request body this side ever handles.
		return wire.NewErrResponse(req.PeerID, req.Secret, "Unhandled request body!")
	}
}
