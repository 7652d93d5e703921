// Package wire defines the on-the-wire envelope types (DiscoveryMessage,
// Request, Response, InfoFile) and their codec (C1) and framing (C2), per
// SPEC_FULL.md §4.1-4.2. Tagged variants are modeled as a Kind discriminator
// plus the fields valid for that kind, encoded with github.com/calmh/xdr --
// the same technique the teacher's internal/protocol/header.go uses to pack
// a tagged header onto an xdr-style writer.
package wire

// DiscoveryMessage is the beacon payload announced to the multicast group.
type DiscoveryMessage struct {
	ID          string
	Name        string
	ServicePort uint16
}

// RequestKind discriminates the Request.Body tagged variant.
type RequestKind uint32

const (
	RequestConnect RequestKind = iota
	RequestChat
	RequestFile
	RequestOk
	RequestErr
)

// Request is the envelope carried by the requester over a QUIC stream.
type Request struct {
	PeerID string
	Secret string
	Kind   RequestKind

	Chat string      // valid when Kind == RequestChat
	File FileRequest // valid when Kind == RequestFile
	Err  string       // valid when Kind == RequestErr
}

func NewConnectRequest(peerID, secret string) Request {
	return Request{PeerID: peerID, Secret: secret, Kind: RequestConnect}
}

func NewChatRequest(peerID, secret, text string) Request {
	return Request{PeerID: peerID, Secret: secret, Kind: RequestChat, Chat: text}
}

func NewFileRequest(peerID, secret string, fr FileRequest) Request {
	return Request{PeerID: peerID, Secret: secret, Kind: RequestFile, File: fr}
}

// FileRequestKind discriminates the FileRequest tagged variant.
type FileRequestKind uint32

const (
	FileRequestCreateFile FileRequestKind = iota
	FileRequestFileCreated
	FileRequestFileChunk
)

type FileRequest struct {
	Kind FileRequestKind

	CreateFile    CreateFile // valid when Kind == FileRequestCreateFile
	FileCreatedID string     // valid when Kind == FileRequestFileCreated
	Chunk         FileChunk  // valid when Kind == FileRequestFileChunk
}

type CreateFile struct {
	Filename   string
	FileLength uint64
}

type FileChunk struct {
	FileID        string
	ContentOffset uint64
	Content       []byte
}

// ResponseKind discriminates the Response.Body tagged variant.
type ResponseKind uint32

const (
	ResponseFile ResponseKind = iota
	ResponseOk
	ResponseErr
)

// Response mirrors Request's envelope shape with a narrower body.
type Response struct {
	PeerID string
	Secret string
	Kind   ResponseKind

	File FileResponse // valid when Kind == ResponseFile
	Err  string       // valid when Kind == ResponseErr
}

func NewOkResponse(peerID, secret string) Response {
	return Response{PeerID: peerID, Secret: secret, Kind: ResponseOk}
}

func NewErrResponse(peerID, secret, detail string) Response {
	return Response{PeerID: peerID, Secret: secret, Kind: ResponseErr, Err: detail}
}

func NewFileCreatedResponse(peerID, secret, fileID string) Response {
	return Response{
		PeerID: peerID, Secret: secret, Kind: ResponseFile,
		File: FileResponse{Kind: FileResponseFileCreated, FileCreatedID: fileID},
	}
}

type FileResponseKind uint32

const (
	FileResponseFileCreated FileResponseKind = iota
)

type FileResponse struct {
	Kind          FileResponseKind
	FileCreatedID string
}

// InfoFile is the sidecar persisted next to an in-flight download as
// <file_id>.info.mojika.
type InfoFile struct {
	ID            string
	Filename      string
	ContentOffset uint64
	FileLength    uint64
}

// Done reports whether the download described by this sidecar is complete.
func (f InfoFile) Done() bool {
	return f.ContentOffset == f.FileLength
}
