package wire

import (
	"bytes"
	"testing"
)

func TestDiscoveryMessageRoundTrip(t *testing.T) {
	in := DiscoveryMessage{ID: "abc-123", Name: "Buddy", ServicePort: 5001}
	bs, err := EncodeDiscoveryMessage(in)
	if err != nil {
		t.Fatal(err)
	}
	if len(bs) > DiscoveryWireMaxLen {
		t.Fatalf("encoded message too large: %d", len(bs))
	}
	out, err := DecodeDiscoveryMessage(bs)
	if err != nil {
		t.Fatal(err)
	}
	if out != in {
		t.Fatalf("round trip mismatch: %+v != %+v", out, in)
	}
}

func TestRequestRoundTrip(t *testing.T) {
	cases := []Request{
		NewConnectRequest("peer-1", "secret-1"),
		NewChatRequest("peer-1", "secret-1", "hello there"),
		NewFileRequest("peer-1", "secret-1", FileRequest{
			Kind:       FileRequestCreateFile,
			CreateFile: CreateFile{Filename: "note.txt", FileLength: 150000},
		}),
		NewFileRequest("peer-1", "secret-1", FileRequest{
			Kind:          FileRequestFileCreated,
			FileCreatedID: "file-42",
		}),
		NewFileRequest("peer-1", "secret-1", FileRequest{
			Kind: FileRequestFileChunk,
			Chunk: FileChunk{
				FileID:        "file-42",
				ContentOffset: 200000,
				Content:       []byte("some file bytes"),
			},
		}),
	}

	for i, in := range cases {
		bs, err := EncodeRequest(in)
		if err != nil {
			t.Fatalf("case %d: encode: %v", i, err)
		}
		out, err := DecodeRequest(bs)
		if err != nil {
			t.Fatalf("case %d: decode: %v", i, err)
		}
		if out.PeerID != in.PeerID || out.Secret != in.Secret || out.Kind != in.Kind {
			t.Fatalf("case %d: envelope mismatch: %+v != %+v", i, out, in)
		}
		if out.Kind == RequestFile {
			if out.File.Kind != in.File.Kind {
				t.Fatalf("case %d: file kind mismatch", i)
			}
			switch out.File.Kind {
			case FileRequestCreateFile:
				if out.File.CreateFile != in.File.CreateFile {
					t.Fatalf("case %d: CreateFile mismatch", i)
				}
			case FileRequestFileCreated:
				if out.File.FileCreatedID != in.File.FileCreatedID {
					t.Fatalf("case %d: FileCreatedID mismatch", i)
				}
			case FileRequestFileChunk:
				if out.File.Chunk.FileID != in.File.Chunk.FileID ||
					out.File.Chunk.ContentOffset != in.File.Chunk.ContentOffset ||
					!bytes.Equal(out.File.Chunk.Content, in.File.Chunk.Content) {
					t.Fatalf("case %d: FileChunk mismatch: %+v != %+v", i, out.File.Chunk, in.File.Chunk)
				}
			}
		}
	}
}

func TestResponseRoundTrip(t *testing.T) {
	cases := []Response{
		NewOkResponse("peer-1", "secret-1"),
		NewErrResponse("peer-1", "secret-1", "offset mismatch"),
		NewFileCreatedResponse("peer-1", "secret-1", "file-42"),
	}
	for i, in := range cases {
		bs, err := EncodeResponse(in)
		if err != nil {
			t.Fatalf("case %d: encode: %v", i, err)
		}
		out, err := DecodeResponse(bs)
		if err != nil {
			t.Fatalf("case %d: decode: %v", i, err)
		}
		if out != in {
			t.Fatalf("case %d: round trip mismatch: %+v != %+v", i, out, in)
		}
	}
}

func TestInfoFileRoundTrip(t *testing.T) {
	in := InfoFile{ID: "file-1", Filename: "note.txt", ContentOffset: 100, FileLength: 500}
	bs, err := EncodeInfoFile(in)
	if err != nil {
		t.Fatal(err)
	}
	out, err := DecodeInfoFile(bs)
	if err != nil {
		t.Fatal(err)
	}
	if out != in {
		t.Fatalf("round trip mismatch: %+v != %+v", out, in)
	}
	if out.Done() {
		t.Fatal("expected incomplete transfer")
	}
	out.ContentOffset = out.FileLength
	if !out.Done() {
		t.Fatal("expected complete transfer")
	}
}

func TestDecodeRequestUnknownKind(t *testing.T) {
	req := NewConnectRequest("p", "s")
	bs, err := EncodeRequest(req)
	if err != nil {
		t.Fatal(err)
	}
	// Corrupt the kind discriminator: the final 4-byte word of a Connect
	// request (offset 16 here, after two xdr strings padded to 8 bytes each).
	bs[len(bs)-1] = 0xff
	if _, err := DecodeRequest(bs); err == nil {
		t.Fatal("expected decode error on corrupted kind")
	}
}
