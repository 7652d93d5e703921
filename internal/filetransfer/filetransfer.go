// Package filetransfer implements the chunked, resumable file transfer
// engine, per SPEC_FULL.md §4.7. The receive side persists an InfoFile
// sidecar (<file_id>.info.mojika) alongside an in-flight artifact
// (<file_id>.mojika), enforcing strictly in-order chunk writes; the send
// side drains a bounded job queue, reading BUFFER_LEN-sized chunks from
// disk and handing them to a Sender for delivery.
package filetransfer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/mojtab23/mojika/internal/logger"
	"github.com/mojtab23/mojika/internal/wire"
)

var debug = logger.Debug("filetransfer")

// BufferLen is the chunk size the send side reads from the source file and
// sends per FileChunk request, per the fixed wire constant BUFFER_LEN. The
// receive side writes whatever length each chunk carries.
const BufferLen = 200_000

// jobQueueCapacity bounds the send-side job channel (§5: "bounded channel
// capacity ≥ 100"). A full queue is not reported to the caller: Enqueue
// drops the job and logs a warning.
const jobQueueCapacity = 100

// TransferError wraps a failure in the receive or send path. Per §7 these
// are returned to the caller (a dispatch Err response, or a logged-and-
// dropped send job), never a panic.
type TransferError struct {
	Op  string
	Err error
}

func (e *TransferError) Error() string { return fmt.Sprintf("filetransfer %s: %v", e.Op, e.Err) }
func (e *TransferError) Unwrap() error { return e.Err }

func infoPath(dir, fileID string) string { return filepath.Join(dir, fileID+".info.mojika") }
func artifactPath(dir, fileID string) string { return filepath.Join(dir, fileID+".mojika") }

// TransferCommand is one unit of send-side work: deliver file_path's bytes
// starting at content_offset to peer_id as file_id.
type TransferCommand struct {
	FileID        string
	FilePath      string
	PeerID        string
	ContentOffset uint64
}

// Progress is a point-in-time snapshot of a transfer's byte count, handed
// to a ProgressFunc after each chunk is sent.
type Progress struct {
	Transferred uint64
	Total       uint64
}

// ProgressFunc is notified as a send job advances, so the chat log can
// show live progress; internal/orchestrator wires this to
// Registry.UpdateFileProgress.
type ProgressFunc func(peerID, fileID string, progress Progress)

// Sender delivers one FileChunk request to a peer and returns the decoded
// response. internal/transport's Requester, adapted by the orchestrator,
// satisfies this.
type Sender interface {
	SendChunk(peerID string, chunk wire.FileChunk) (wire.Response, error)
}

// Engine owns the download directory and the send-side job queue.
type Engine struct {
	dir        string
	jobs       chan TransferCommand
	sender     Sender
	onProgress ProgressFunc
}

// New creates the download directory if missing and returns an Engine.
// The caller must start Run in a goroutine (or supervise it) to drain
// enqueued send jobs. onProgress may be nil if progress updates aren't
// needed.
func New(dir string, sender Sender, onProgress ProgressFunc) (*Engine, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &TransferError{Op: "mkdir", Err: err}
	}
	if onProgress == nil {
		onProgress = func(string, string, Progress) {}
	}
	return &Engine{
		dir:        dir,
		jobs:       make(chan TransferCommand, jobQueueCapacity),
		sender:     sender,
		onProgress: onProgress,
	}, nil
}

// Dir returns the download directory.
func (e *Engine) Dir() string { return e.dir }

// CreateFile begins a new receive-side transfer: it persists the InfoFile
// sidecar and an empty in-flight artifact, returning the generated file id.
// Per the resolved collision question, it refuses up front if the final
// name is already taken, rather than discovering that only after the whole
// file has been chunked and transmitted.
func (e *Engine) CreateFile(filename string, fileLength uint64) (string, error) {
	if _, err := os.Stat(filepath.Join(e.dir, filename)); err == nil {
		return "", &TransferError{Op: "create_file", Err: fmt.Errorf("final file already exists")}
	}

	fileID := uuid.NewString()

	if _, err := os.Stat(infoPath(e.dir, fileID)); err == nil {
		return "", &TransferError{Op: "create_file", Err: fmt.Errorf("existing info file")}
	}

	info := wire.InfoFile{ID: fileID, Filename: filename, ContentOffset: 0, FileLength: fileLength}
	if err := e.writeInfo(info); err != nil {
		return "", &TransferError{Op: "create_file", Err: err}
	}

	artifact := artifactPath(e.dir, fileID)
	if _, err := os.Stat(artifact); err == nil {
		return "", &TransferError{Op: "create_file", Err: fmt.Errorf("existing artifact")}
	}
	f, err := os.OpenFile(artifact, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", &TransferError{Op: "create_file", Err: err}
	}
	f.Close()

	if debug {
		logger.L.Debugf("filetransfer: created %s (%s, %d bytes)", fileID, filename, fileLength)
	}
	return fileID, nil
}

// WriteChunk accepts one in-order chunk, persisting it to the in-flight
// artifact and advancing the sidecar. On the final chunk it renames the
// artifact to its final filename and removes the sidecar.
func (e *Engine) WriteChunk(chunk wire.FileChunk) error {
	info, err := e.readInfo(chunk.FileID)
	if err != nil {
		return &TransferError{Op: "write_file_chunk", Err: err}
	}

	if chunk.ContentOffset != info.ContentOffset {
		return &TransferError{Op: "write_file_chunk", Err: fmt.Errorf("offset mismatch")}
	}

	artifact := artifactPath(e.dir, chunk.FileID)
	f, err := os.OpenFile(artifact, os.O_WRONLY, 0o644)
	if err != nil {
		return &TransferError{Op: "write_file_chunk", Err: err}
	}

	n, err := f.WriteAt(chunk.Content, int64(chunk.ContentOffset))
	if err != nil {
		f.Close()
		return &TransferError{Op: "write_file_chunk", Err: err}
	}
	if n != len(chunk.Content) {
		f.Close()
		return &TransferError{Op: "write_file_chunk", Err: fmt.Errorf("short write: %d of %d bytes", n, len(chunk.Content))}
	}

	info.ContentOffset += uint64(n)

	if info.Done() {
		if err := finalize(f, info, artifact, e.dir); err != nil {
			return &TransferError{Op: "write_file_chunk", Err: err}
		}
		if debug {
			logger.L.Debugf("filetransfer: completed %s", chunk.FileID)
		}
		return nil
	}

	if err := f.Close(); err != nil {
		return &TransferError{Op: "write_file_chunk", Err: err}
	}
	if err := e.writeInfo(info); err != nil {
		return &TransferError{Op: "write_file_chunk", Err: err}
	}
	return nil
}

// finalize verifies the artifact's size, fsyncs it, renames it to its
// final filename, then removes the sidecar. Rename happens before the
// sidecar is deleted: per §4.7 if the process dies in between, the final
// file is already in place and only a stale sidecar remains, which is
// safe to ignore on the next startup.
func finalize(f *os.File, info wire.InfoFile, artifact, dir string) error {
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return err
	}
	if uint64(fi.Size()) != info.FileLength {
		f.Close()
		return fmt.Errorf("artifact size %d does not match expected length %d", fi.Size(), info.FileLength)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	final := filepath.Join(dir, info.Filename)
	if _, err := os.Stat(final); err == nil {
		return fmt.Errorf("final file already exists")
	}
	if err := os.Rename(artifact, final); err != nil {
		return err
	}
	return os.Remove(infoPath(dir, info.ID))
}

func (e *Engine) writeInfo(info wire.InfoFile) error {
	bs, err := wire.EncodeInfoFile(info)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(infoPath(e.dir, info.ID), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(bs); err != nil {
		return err
	}
	return f.Sync()
}

func (e *Engine) readInfo(fileID string) (wire.InfoFile, error) {
	bs, err := os.ReadFile(infoPath(e.dir, fileID))
	if err != nil {
		return wire.InfoFile{}, err
	}
	return wire.DecodeInfoFile(bs)
}

// Enqueue schedules a send job. Per §5 the queue has bounded capacity; a
// full queue drops the job with a warning rather than blocking the caller
// indefinitely.
func (e *Engine) Enqueue(cmd TransferCommand) {
	select {
	case e.jobs <- cmd:
	default:
		logger.L.Warnf("filetransfer: job queue full, dropping transfer for %s", cmd.FileID)
	}
}

// Run drains the job queue until jobs is closed (via Close), sending
// chunks for each job in turn. A single worker matches §4.7's "a single
// worker drains the channel".
func (e *Engine) Run() {
	for cmd := range e.jobs {
		e.runJob(cmd)
	}
}

// Close stops accepting new jobs and lets Run drain the remainder.
func (e *Engine) Close() {
	close(e.jobs)
}

func (e *Engine) runJob(cmd TransferCommand) {
	f, err := os.Open(cmd.FilePath)
	if err != nil {
		logger.L.Warnf("filetransfer: open %s: %v", cmd.FilePath, err)
		return
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		logger.L.Warnf("filetransfer: stat %s: %v", cmd.FilePath, err)
		return
	}
	total := uint64(fi.Size())

	offset := cmd.ContentOffset
	if _, err := f.Seek(int64(offset), io.SeekStart); err != nil {
		logger.L.Warnf("filetransfer: seek %s: %v", cmd.FilePath, err)
		return
	}

	buf := make([]byte, BufferLen)
	for {
		n, err := f.Read(buf)
		if n == 0 {
			if err != nil && err != io.EOF {
				logger.L.Warnf("filetransfer: read %s: %v", cmd.FilePath, err)
			}
			return
		}

		content := make([]byte, n)
		copy(content, buf[:n])

		chunk := wire.FileChunk{FileID: cmd.FileID, ContentOffset: offset, Content: content}
		resp, err := e.sender.SendChunk(cmd.PeerID, chunk)
		if err != nil {
			logger.L.Warnf("filetransfer: send chunk to %s: %v", cmd.PeerID, err)
			return
		}
		if resp.Kind == wire.ResponseErr {
			logger.L.Warnf("filetransfer: peer %s rejected chunk: %s", cmd.PeerID, resp.Err)
			return
		}

		offset += uint64(n)
		e.onProgress(cmd.PeerID, cmd.FileID, Progress{Transferred: offset, Total: total})
		if debug {
			logger.L.Debugf("filetransfer: sent %d/%d bytes of %s to %s", offset, total, cmd.FileID, cmd.PeerID)
		}

		if err == io.EOF {
			return
		}
	}
}
