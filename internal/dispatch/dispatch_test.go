package dispatch

import (
	"net"
	"testing"

	"github.com/mojtab23/mojika/internal/filetransfer"
	"github.com/mojtab23/mojika/internal/peer"
	"github.com/mojtab23/mojika/internal/wire"
)

type noopSender struct{}

func (noopSender) SendChunk(string, wire.FileChunk) (wire.Response, error) {
	return wire.NewOkResponse("", ""), nil
}

func newDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	registry := peer.NewRegistry(peer.New("self-1", "Me", "secret", &net.UDPAddr{}))
	registry.Register(peer.New("p1", "Alice", "", &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 5000}))

	engine, err := filetransfer.New(t.TempDir(), noopSender{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return New(registry, engine)
}

func TestDispatchConnect(t *testing.T) {
	d := newDispatcher(t)
	resp := d.Handle(wire.NewConnectRequest("p1", "s"))
	if resp.Kind != wire.ResponseOk {
		t.Fatalf("expected Ok, got %+v", resp)
	}
}

func TestDispatchChatAppendsToRegistry(t *testing.T) {
	d := newDispatcher(t)
	resp := d.Handle(wire.NewChatRequest("p1", "s", "hello"))
	if resp.Kind != wire.ResponseOk {
		t.Fatalf("expected Ok, got %+v", resp)
	}
	got, _ := d.registry.FindByID("p1")
	if len(got.Chat.Messages) != 1 || got.Chat.Messages[0].Text != "hello" {
		t.Fatalf("chat not recorded: %+v", got.Chat.Messages)
	}
}

func TestDispatchCreateFileThenChunk(t *testing.T) {
	d := newDispatcher(t)

	createResp := d.Handle(wire.NewFileRequest("p1", "s", wire.FileRequest{
		Kind:       wire.FileRequestCreateFile,
		CreateFile: wire.CreateFile{Filename: "note.txt", FileLength: 5},
	}))
	if createResp.Kind != wire.ResponseFile || createResp.File.Kind != wire.FileResponseFileCreated {
		t.Fatalf("expected FileCreated, got %+v", createResp)
	}
	fileID := createResp.File.FileCreatedID

	chunkResp := d.Handle(wire.NewFileRequest("p1", "s", wire.FileRequest{
		Kind:  wire.FileRequestFileChunk,
		Chunk: wire.FileChunk{FileID: fileID, ContentOffset: 0, Content: []byte("hello")},
	}))
	if chunkResp.Kind != wire.ResponseOk {
		t.Fatalf("expected Ok, got %+v", chunkResp)
	}
}

func TestDispatchUnhandledVariant(t *testing.T) {
	d := newDispatcher(t)
	resp := d.Handle(wire.NewFileRequest("p1", "s", wire.FileRequest{Kind: wire.FileRequestFileCreated, FileCreatedID: "x"}))
	if resp.Kind != wire.ResponseErr {
		t.Fatalf("expected Err, got %+v", resp)
	}
}
