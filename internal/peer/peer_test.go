package peer

import (
	"net"
	"testing"
)

func addr(port int) *net.UDPAddr {
	return &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: port}
}

func TestRegisterIgnoresSelf(t *testing.T) {
	self := New("self-1", "Me", "s3cr3t", addr(4000))
	r := NewRegistry(self)

	if r.Register(New("self-1", "Me", "s3cr3t", addr(4000))) {
		t.Fatal("expected self-registration to be rejected")
	}
	if _, ok := r.FindByID("self-1"); ok {
		t.Fatal("self peer should not appear in the registry map")
	}
}

func TestRegisterFirstWins(t *testing.T) {
	self := New("self-1", "Me", "", addr(4000))
	r := NewRegistry(self)

	first := New("p1", "Alice", "", addr(5000))
	second := New("p1", "Alice2", "", addr(6000))

	if !r.Register(first) {
		t.Fatal("expected first registration to succeed")
	}
	if r.Register(second) {
		t.Fatal("expected second registration for the same id to be rejected")
	}

	got, ok := r.FindByID("p1")
	if !ok {
		t.Fatal("expected p1 to be registered")
	}
	if got.Name != "Alice" {
		t.Fatalf("first-wins violated: got name %q", got.Name)
	}
}

func TestWatchPublishesSnapshotOnMutation(t *testing.T) {
	self := New("self-1", "Me", "", addr(4000))
	r := NewRegistry(self)

	<-r.Watch() // drain initial empty snapshot

	r.Register(New("p1", "Alice", "", addr(5000)))
	snap := <-r.Watch()
	if _, ok := snap["p1"]; !ok {
		t.Fatal("expected snapshot to contain newly registered peer")
	}

	r.AddChat("p1", "self-1", "hi")
	snap2 := <-r.Watch()
	if len(snap2["p1"].Chat.Messages) != 1 {
		t.Fatalf("expected one chat message, got %d", len(snap2["p1"].Chat.Messages))
	}
}

func TestAddChatUnknownPeerIsNoop(t *testing.T) {
	self := New("self-1", "Me", "", addr(4000))
	r := NewRegistry(self)
	r.AddChat("ghost", "self-1", "hello?")
	if _, ok := r.FindByID("ghost"); ok {
		t.Fatal("unknown peer should not be created by AddChat")
	}
}

func TestAddFileAndUpdateProgress(t *testing.T) {
	self := New("self-1", "Me", "", addr(4000))
	r := NewRegistry(self)
	r.Register(New("p1", "Alice", "", addr(5000)))

	const fileID = "file-42"
	r.AddFile("p1", "self-1", fileID, "report.pdf", 1000)

	r.UpdateFileProgress("p1", fileID, Progress{BytesTransferred: 500, TotalBytes: 1000})
	got, _ := r.FindByID("p1")
	var found bool
	for _, m := range got.Chat.Messages {
		if m.Kind == ContentFile && m.FileID == fileID {
			found = true
			if m.Progress.BytesTransferred != 500 {
				t.Fatalf("progress not updated: %+v", m.Progress)
			}
		}
	}
	if !found {
		t.Fatal("file message not found after update")
	}
}
