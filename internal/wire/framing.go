package wire

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mojtab23/mojika/internal/logger"
)

var debug = logger.Debug("wire")

// HeaderMaxLen is the largest an ASCII frame header line may be, per
// SPEC_FULL.md §4.2/§6. The reader caps its buffer at this size.
const HeaderMaxLen = 2048

// FrameType names the two payload kinds carried by the transport.
type FrameType string

const (
	FrameRequest  FrameType = "Request"
	FrameResponse FrameType = "Response"
)

// FramingError is returned by ReadFrame on a malformed header. Per §7, this
// is fatal to the connection carrying it, not to the process.
type FramingError struct {
	Detail string
	Err    error
}

func (e *FramingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("framing: %s: %v", e.Detail, e.Err)
	}
	return "framing: " + e.Detail
}

func (e *FramingError) Unwrap() error { return e.Err }

// WriteFrame writes the header line "type_name=<t>,len=<n>\n" followed by
// the payload bytes, per §4.2.
func WriteFrame(w io.Writer, t FrameType, payload []byte) error {
	header := fmt.Sprintf("type_name=%s,len=%d\n", t, len(payload))
	if len(header) > HeaderMaxLen {
		return &FramingError{Detail: "header exceeds max length"}
	}
	if _, err := io.WriteString(w, header); err != nil {
		return &FramingError{Detail: "write header", Err: err}
	}
	if _, err := w.Write(payload); err != nil {
		return &FramingError{Detail: "write payload", Err: err}
	}
	return nil
}

// ReadFrame reads one framed message: a header line up to HeaderMaxLen
// bytes, then exactly len bytes of payload. Stream EOF before any header
// bytes are read is returned as io.EOF so callers can distinguish a clean
// stream close from a truncated frame.
func ReadFrame(r io.Reader) (FrameType, []byte, error) {
	br := bufio.NewReaderSize(r, HeaderMaxLen)

	header, err := readHeaderLine(br)
	if err != nil {
		return "", nil, err
	}

	t, n, err := parseHeader(header)
	if err != nil {
		return "", nil, err
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(br, payload); err != nil {
		return "", nil, &FramingError{Detail: "read payload", Err: err}
	}
	if debug {
		logger.L.Debugf("wire: read frame type=%s len=%d", t, n)
	}
	return t, payload, nil
}

// readHeaderLine reads one byte at a time up to '\n', so a peer that never
// sends a newline is capped at HeaderMaxLen bytes read, not merely
// rejected after bufio.Reader has already buffered an unbounded amount
// chasing one.
func readHeaderLine(br *bufio.Reader) (string, error) {
	var line []byte
	for {
		b, err := br.ReadByte()
		if err != nil {
			if err == io.EOF && len(line) == 0 {
				return "", io.EOF
			}
			return "", &FramingError{Detail: "read header", Err: err}
		}
		line = append(line, b)
		if b == '\n' {
			return string(line), nil
		}
		if len(line) > HeaderMaxLen {
			return "", &FramingError{Detail: "header exceeds max length"}
		}
	}
}

func parseHeader(line string) (FrameType, int, error) {
	var typeName string
	var length = -1

	for _, part := range strings.Split(strings.TrimSpace(line), ",") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return "", 0, &FramingError{Detail: fmt.Sprintf("malformed header field %q", part)}
		}
		key, value := kv[0], kv[1]
		switch key {
		case "type_name":
			typeName = value
		case "len":
			n, err := strconv.Atoi(value)
			if err != nil {
				return "", 0, &FramingError{Detail: "invalid len", Err: err}
			}
			length = n
		default:
			logger.L.Warnln("wire: ignoring unknown header key:", key)
		}
	}

	if typeName == "" {
		return "", 0, &FramingError{Detail: "header missing type_name"}
	}
	if length < 0 {
		return "", 0, &FramingError{Detail: "header missing len"}
	}
	return FrameType(typeName), length, nil
}
