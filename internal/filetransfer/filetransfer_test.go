package filetransfer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mojtab23/mojika/internal/wire"
)

type noopSender struct{}

func (noopSender) SendChunk(string, wire.FileChunk) (wire.Response, error) {
	return wire.NewOkResponse("", ""), nil
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(t.TempDir(), noopSender{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestCreateFileThenWriteChunksToCompletion(t *testing.T) {
	e := newTestEngine(t)

	content := []byte("hello, mojika!")
	fileID, err := e.CreateFile("greeting.txt", uint64(len(content)))
	if err != nil {
		t.Fatalf("CreateFile: %v", err)
	}

	if _, err := os.Stat(infoPath(e.Dir(), fileID)); err != nil {
		t.Fatalf("expected sidecar to exist: %v", err)
	}
	if _, err := os.Stat(artifactPath(e.Dir(), fileID)); err != nil {
		t.Fatalf("expected artifact to exist: %v", err)
	}

	if err := e.WriteChunk(wire.FileChunk{FileID: fileID, ContentOffset: 0, Content: content}); err != nil {
		t.Fatalf("WriteChunk: %v", err)
	}

	if _, err := os.Stat(infoPath(e.Dir(), fileID)); !os.IsNotExist(err) {
		t.Fatalf("expected sidecar to be removed after finalize, got err=%v", err)
	}
	finalPath := filepath.Join(e.Dir(), "greeting.txt")
	got, err := os.ReadFile(finalPath)
	if err != nil {
		t.Fatalf("expected final file: %v", err)
	}
	if string(got) != string(content) {
		t.Fatalf("final content mismatch: %q != %q", got, content)
	}
}

func TestWriteChunkRejectsOutOfOrderOffset(t *testing.T) {
	e := newTestEngine(t)
	fileID, err := e.CreateFile("f.bin", 20)
	if err != nil {
		t.Fatal(err)
	}

	err = e.WriteChunk(wire.FileChunk{FileID: fileID, ContentOffset: 10, Content: make([]byte, 10)})
	if err == nil {
		t.Fatal("expected offset mismatch error")
	}
}

func TestWriteChunkMultiplePieces(t *testing.T) {
	e := newTestEngine(t)
	a, b := []byte("0123456789"), []byte("abcdefghij")
	fileID, err := e.CreateFile("two-part.bin", uint64(len(a)+len(b)))
	if err != nil {
		t.Fatal(err)
	}

	if err := e.WriteChunk(wire.FileChunk{FileID: fileID, ContentOffset: 0, Content: a}); err != nil {
		t.Fatalf("first chunk: %v", err)
	}
	if err := e.WriteChunk(wire.FileChunk{FileID: fileID, ContentOffset: uint64(len(a)), Content: b}); err != nil {
		t.Fatalf("second chunk: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(e.Dir(), "two-part.bin"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "0123456789abcdefghij" {
		t.Fatalf("unexpected content: %q", got)
	}
}

func TestCreateFileRefusesExistingFinalName(t *testing.T) {
	e := newTestEngine(t)
	if err := os.WriteFile(filepath.Join(e.Dir(), "taken.txt"), []byte("existing"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := e.CreateFile("taken.txt", 5); err == nil {
		t.Fatal("expected CreateFile to refuse a final name that already exists")
	}

	entries, err := os.ReadDir(e.Dir())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected no sidecar/artifact to be created, got entries: %v", entries)
	}
}

func TestFinalizeRefusesExistingFinalFile(t *testing.T) {
	e := newTestEngine(t)

	// Exercises finalize's own defensive check directly, for the case where
	// the final name appears after CreateFile's up-front check passed (a
	// concurrent writer, say) rather than before it.
	fileID, err := e.CreateFile("taken.txt", 5)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(e.Dir(), "taken.txt"), []byte("existing"), 0o644); err != nil {
		t.Fatal(err)
	}

	err = e.WriteChunk(wire.FileChunk{FileID: fileID, ContentOffset: 0, Content: []byte("hello")})
	if err == nil {
		t.Fatal("expected finalize to refuse overwriting an existing final file")
	}
}
