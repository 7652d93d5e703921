package wire

import (
	"bytes"
	"fmt"

	"github.com/calmh/xdr"
)

// CodecErrorKind distinguishes encode from decode failures, per SPEC_FULL.md
// §7 (CodecError{kind: Encode|Decode, detail}).
type CodecErrorKind int

const (
	CodecEncode CodecErrorKind = iota
	CodecDecode
)

func (k CodecErrorKind) String() string {
	if k == CodecEncode {
		return "encode"
	}
	return "decode"
}

// CodecError is returned by every Encode*/Decode* function below. It is
// never fatal to a caller's loop (§7).
type CodecError struct {
	Kind   CodecErrorKind
	Detail string
	Err    error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("codec %s: %s: %v", e.Kind, e.Detail, e.Err)
}

func (e *CodecError) Unwrap() error { return e.Err }

func encErr(detail string, err error) error {
	return &CodecError{Kind: CodecEncode, Detail: detail, Err: err}
}

func decErr(detail string, err error) error {
	return &CodecError{Kind: CodecDecode, Detail: detail, Err: err}
}

// DiscoveryWireMaxLen is the largest an encoded DiscoveryMessage may be
// (§6 fixed constants).
const DiscoveryWireMaxLen = 1024

// EncodeDiscoveryMessage serializes m to the compact binary encoding.
func EncodeDiscoveryMessage(m DiscoveryMessage) ([]byte, error) {
	var buf bytes.Buffer
	w := xdr.NewWriter(&buf)
	w.WriteString(m.ID)
	w.WriteString(m.Name)
	w.WriteUint32(uint32(m.ServicePort))
	if err := w.Error(); err != nil {
		return nil, encErr("discovery message", err)
	}
	if buf.Len() > DiscoveryWireMaxLen {
		return nil, encErr("discovery message", fmt.Errorf("%d bytes exceeds %d byte limit", buf.Len(), DiscoveryWireMaxLen))
	}
	return buf.Bytes(), nil
}

// DecodeDiscoveryMessage parses bs into a DiscoveryMessage.
func DecodeDiscoveryMessage(bs []byte) (DiscoveryMessage, error) {
	r := xdr.NewReader(bytes.NewReader(bs))
	var m DiscoveryMessage
	m.ID = r.ReadString()
	m.Name = r.ReadString()
	m.ServicePort = uint16(r.ReadUint32())
	if err := r.Error(); err != nil {
		return DiscoveryMessage{}, decErr("discovery message", err)
	}
	return m, nil
}

// EncodeRequest serializes a Request envelope.
func EncodeRequest(req Request) ([]byte, error) {
	var buf bytes.Buffer
	w := xdr.NewWriter(&buf)
	w.WriteString(req.PeerID)
	w.WriteString(req.Secret)
	w.WriteUint32(uint32(req.Kind))
	switch req.Kind {
	case RequestConnect:
	case RequestChat:
		w.WriteString(req.Chat)
	case RequestFile:
		encodeFileRequest(w, req.File)
	case RequestOk:
	case RequestErr:
		w.WriteString(req.Err)
	}
	if err := w.Error(); err != nil {
		return nil, encErr("request", err)
	}
	return buf.Bytes(), nil
}

func encodeFileRequest(w *xdr.Writer, fr FileRequest) {
	w.WriteUint32(uint32(fr.Kind))
	switch fr.Kind {
	case FileRequestCreateFile:
		w.WriteString(fr.CreateFile.Filename)
		w.WriteUint64(fr.CreateFile.FileLength)
	case FileRequestFileCreated:
		w.WriteString(fr.FileCreatedID)
	case FileRequestFileChunk:
		w.WriteString(fr.Chunk.FileID)
		w.WriteUint64(fr.Chunk.ContentOffset)
		w.WriteBytes(fr.Chunk.Content)
	}
}

// DecodeRequest parses bs into a Request envelope.
func DecodeRequest(bs []byte) (Request, error) {
	r := xdr.NewReader(bytes.NewReader(bs))
	var req Request
	req.PeerID = r.ReadString()
	req.Secret = r.ReadString()
	req.Kind = RequestKind(r.ReadUint32())
	switch req.Kind {
	case RequestConnect:
	case RequestChat:
		req.Chat = r.ReadString()
	case RequestFile:
		fr, err := decodeFileRequest(r)
		if err != nil {
			return Request{}, err
		}
		req.File = fr
	case RequestOk:
	case RequestErr:
		req.Err = r.ReadString()
	default:
		return Request{}, decErr("request", fmt.Errorf("unknown request kind %d", req.Kind))
	}
	if err := r.Error(); err != nil {
		return Request{}, decErr("request", err)
	}
	return req, nil
}

func decodeFileRequest(r *xdr.Reader) (FileRequest, error) {
	var fr FileRequest
	fr.Kind = FileRequestKind(r.ReadUint32())
	switch fr.Kind {
	case FileRequestCreateFile:
		fr.CreateFile.Filename = r.ReadString()
		fr.CreateFile.FileLength = r.ReadUint64()
	case FileRequestFileCreated:
		fr.FileCreatedID = r.ReadString()
	case FileRequestFileChunk:
		fr.Chunk.FileID = r.ReadString()
		fr.Chunk.ContentOffset = r.ReadUint64()
		fr.Chunk.Content = r.ReadBytes()
	default:
		return FileRequest{}, decErr("file request", fmt.Errorf("unknown file request kind %d", fr.Kind))
	}
	if err := r.Error(); err != nil {
		return FileRequest{}, decErr("file request", err)
	}
	return fr, nil
}

// EncodeResponse serializes a Response envelope.
func EncodeResponse(resp Response) ([]byte, error) {
	var buf bytes.Buffer
	w := xdr.NewWriter(&buf)
	w.WriteString(resp.PeerID)
	w.WriteString(resp.Secret)
	w.WriteUint32(uint32(resp.Kind))
	switch resp.Kind {
	case ResponseFile:
		w.WriteUint32(uint32(resp.File.Kind))
		w.WriteString(resp.File.FileCreatedID)
	case ResponseOk:
	case ResponseErr:
		w.WriteString(resp.Err)
	}
	if err := w.Error(); err != nil {
		return nil, encErr("response", err)
	}
	return buf.Bytes(), nil
}

// DecodeResponse parses bs into a Response envelope.
func DecodeResponse(bs []byte) (Response, error) {
	r := xdr.NewReader(bytes.NewReader(bs))
	var resp Response
	resp.PeerID = r.ReadString()
	resp.Secret = r.ReadString()
	resp.Kind = ResponseKind(r.ReadUint32())
	switch resp.Kind {
	case ResponseFile:
		resp.File.Kind = FileResponseKind(r.ReadUint32())
		resp.File.FileCreatedID = r.ReadString()
	case ResponseOk:
	case ResponseErr:
		resp.Err = r.ReadString()
	default:
		return Response{}, decErr("response", fmt.Errorf("unknown response kind %d", resp.Kind))
	}
	if err := r.Error(); err != nil {
		return Response{}, decErr("response", err)
	}
	return resp, nil
}

// EncodeInfoFile serializes the download sidecar.
func EncodeInfoFile(f InfoFile) ([]byte, error) {
	var buf bytes.Buffer
	w := xdr.NewWriter(&buf)
	w.WriteString(f.ID)
	w.WriteString(f.Filename)
	w.WriteUint64(f.ContentOffset)
	w.WriteUint64(f.FileLength)
	if err := w.Error(); err != nil {
		return nil, encErr("info file", err)
	}
	return buf.Bytes(), nil
}

// DecodeInfoFile parses bs into an InfoFile sidecar.
func DecodeInfoFile(bs []byte) (InfoFile, error) {
	r := xdr.NewReader(bytes.NewReader(bs))
	var f InfoFile
	f.ID = r.ReadString()
	f.Filename = r.ReadString()
	f.ContentOffset = r.ReadUint64()
	f.FileLength = r.ReadUint64()
	if err := r.Error(); err != nil {
		return InfoFile{}, decErr("info file", err)
	}
	return f, nil
}
