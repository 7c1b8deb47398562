package compress

import (
	"bytes"
	"io"

	xerial "github.com/eapache/go-xerial-snappy"
	"github.com/golang/snappy"
)

// Framing is an enumeration type used to enable or disable xerial framing of
// snappy messages.
type Framing int

const (
	Framed Framing = iota
	Unframed
)

// SnappyCompressor implements the Codec interface for snappy compression.
//
// Kafka historically shipped snappy payloads in the xerial streaming format
// rather than raw snappy blocks; readers accept both, writers default to the
// framed format.
type SnappyCompressor struct {
	// An optional framing to apply to snappy compression.
	//
	// Default to Framed.
	Framing Framing
}

// Code implements the Codec interface.
func (c *SnappyCompressor) Code() int8 { return int8(Snappy) }

// Name implements the Codec interface.
func (c *SnappyCompressor) Name() string { return "snappy" }

// NewReader implements the Codec interface.
func (c *SnappyCompressor) NewReader(r io.Reader) io.ReadCloser {
	compressed, err := io.ReadAll(r)
	if err != nil {
		return &errorReader{err: err}
	}
	// xerial.Decode falls back to raw snappy when the stream carries no
	// xerial magic header.
	raw, err := xerial.Decode(compressed)
	if err != nil {
		return &errorReader{err: err}
	}
	return io.NopCloser(bytes.NewReader(raw))
}

// NewWriter implements the Codec interface.
func (c *SnappyCompressor) NewWriter(w io.Writer) io.WriteCloser {
	return &snappyWriter{w: w, framed: c.Framing == Framed}
}

// snappyWriter buffers the full payload because both snappy formats encode
// whole blocks, not streams.
type snappyWriter struct {
	w      io.Writer
	buf    bytes.Buffer
	framed bool
}

func (w *snappyWriter) Write(b []byte) (int, error) {
	return w.buf.Write(b)
}

func (w *snappyWriter) Close() error {
	var compressed []byte
	if w.framed {
		compressed = xerial.EncodeStream(nil, w.buf.Bytes())
	} else {
		compressed = snappy.Encode(nil, w.buf.Bytes())
	}
	_, err := w.w.Write(compressed)
	return err
}
