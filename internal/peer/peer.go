// Package peer holds the in-memory set of known peers and their chat logs,
// per SPEC_FULL.md §4.4. A Registry is seeded with the local self Peer,
// accepts first-wins registrations, and republishes a full snapshot on a
// watch channel after every mutation, mirroring the original's
// `watch::channel`-based Peers.
package peer

import (
	"net"

	"github.com/google/uuid"

	"github.com/mojtab23/mojika/internal/logger"
	"github.com/mojtab23/mojika/internal/syncutil"
)

var debug = logger.Debug("peer")

// ContentKind discriminates a chat Message's payload.
type ContentKind int

const (
	ContentText ContentKind = iota
	ContentFile
)

// Progress is a supplemented, structured replacement for the original's
// free-form progress string (SPEC_FULL.md §9 SUPPLEMENTED FEATURES #2).
type Progress struct {
	BytesTransferred uint64
	TotalBytes       uint64
}

// Message is one chat-log entry, either plain text or a file transfer
// announcement/progress update.
type Message struct {
	ID     string
	Sender string
	Kind   ContentKind

	Text string // valid when Kind == ContentText

	FileID   string // valid when Kind == ContentFile
	Filename string
	Progress Progress
}

// NewTextMessage builds a text chat entry with a fresh id.
func NewTextMessage(sender, text string) Message {
	return Message{ID: uuid.NewString(), Sender: sender, Kind: ContentText, Text: text}
}

// NewFileMessage builds a file chat entry announcing a transfer in progress.
func NewFileMessage(sender, fileID, filename string, progress Progress) Message {
	return Message{
		ID: uuid.NewString(), Sender: sender, Kind: ContentFile,
		FileID: fileID, Filename: filename, Progress: progress,
	}
}

// Chat is the ordered log of messages exchanged with one peer.
type Chat struct {
	Messages []Message
}

// Peer is one known remote participant.
type Peer struct {
	ID      string
	Name    string
	Secret  string
	Address *net.UDPAddr
	Chat    Chat
}

// New constructs a Peer with an empty chat log.
func New(id, name, secret string, addr *net.UDPAddr) Peer {
	return Peer{ID: id, Name: name, Secret: secret, Address: addr}
}

// String renders a short human-readable label, matching the original's
// `name (first 4 chars of id)` Display impl.
func (p Peer) String() string {
	short := p.ID
	if len(short) > 4 {
		short = short[:4]
	}
	return p.Name + " (" + short + ")"
}

// Registry tracks the self peer and every remote peer discovered or
// registered so far, publishing a snapshot of the full set after each
// mutation.
type Registry struct {
	mu   syncutil.RWMutex
	self Peer
	byID map[string]Peer

	watch chan map[string]Peer
}

// NewRegistry seeds a Registry with the local self Peer.
func NewRegistry(self Peer) *Registry {
	r := &Registry{
		self:  self,
		byID:  make(map[string]Peer, 10),
		watch: make(chan map[string]Peer, 1),
	}
	r.publish()
	return r
}

// Self returns the local identity.
func (r *Registry) Self() Peer {
	return r.self
}

// Register inserts peer if it isn't the self peer and isn't already known.
// First registration wins; a later announcement for the same id is ignored.
// Reports whether the peer was newly inserted.
func (r *Registry) Register(p Peer) bool {
	if p.ID == r.self.ID {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[p.ID]; exists {
		return false
	}
	r.byID[p.ID] = p
	r.publishLocked()
	if debug {
		logger.L.Debugln("peer: registered", p)
	}
	return true
}

// FindByID returns the peer with the given id, if known.
func (r *Registry) FindByID(id string) (Peer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	return p, ok
}

// FindAddress is a convenience for transport callers that only need where
// to dial.
func (r *Registry) FindAddress(id string) (*net.UDPAddr, bool) {
	p, ok := r.FindByID(id)
	if !ok {
		return nil, false
	}
	return p.Address, true
}

// AddChat appends a text message to peer's chat log. A no-op if the peer
// is unknown.
func (r *Registry) AddChat(peerID, senderID, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[peerID]
	if !ok {
		return
	}
	p.Chat.Messages = append(p.Chat.Messages, NewTextMessage(senderID, text))
	r.byID[peerID] = p
	r.publishLocked()
}

// AddFile appends a file-transfer announcement to peer's chat log under
// fileID (the transfer engine's own id, so later progress updates and chat
// entries correlate). A no-op if the peer is unknown.
func (r *Registry) AddFile(peerID, senderID, fileID, filename string, total uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[peerID]
	if !ok {
		return
	}
	msg := NewFileMessage(senderID, fileID, filename, Progress{TotalBytes: total})
	p.Chat.Messages = append(p.Chat.Messages, msg)
	r.byID[peerID] = p
	r.publishLocked()
}

// UpdateFileProgress overwrites the progress of the file message identified
// by fileID within peer's chat log, if both are found.
func (r *Registry) UpdateFileProgress(peerID, fileID string, progress Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[peerID]
	if !ok {
		return
	}
	// Copy before modifying: earlier snapshots share the old backing array.
	msgs := make([]Message, len(p.Chat.Messages))
	copy(msgs, p.Chat.Messages)
	for i := range msgs {
		m := &msgs[i]
		if m.Kind == ContentFile && m.FileID == fileID {
			m.Progress = progress
			break
		}
	}
	p.Chat.Messages = msgs
	r.byID[peerID] = p
	r.publishLocked()
}

// Watch returns a channel on which the full snapshot of known peers is
// republished after every mutation. The channel holds at most one unread
// snapshot, and each publish replaces any snapshot not yet received, so slow
// readers only ever see the most recent state, never a backlog. Once a
// reader has taken the snapshot, the channel stays empty until the next
// mutation.
//
// This is the single shared channel, not a fresh subscription per call:
// concurrent callers race to drain the same buffered snapshot, unlike a
// true watch/broadcast primitive where every receiver independently sees
// the current value. Fine for today's single-consumer use in
// pkg/mojika.Handle.WatchPeers; a second concurrent subscriber would need
// Watch to fan out to a per-caller channel instead.
func (r *Registry) Watch() <-chan map[string]Peer {
	return r.watch
}

func (r *Registry) publish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.publishLocked()
}

func (r *Registry) publishLocked() {
	snapshot := make(map[string]Peer, len(r.byID))
	for k, v := range r.byID {
		snapshot[k] = v
	}
	select {
	case <-r.watch:
	default:
	}
	r.watch <- snapshot
}
