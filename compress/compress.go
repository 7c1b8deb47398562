// Package compress provides the compression codecs used by kafka message
// sets. Codecs are identified on the wire by the lower bits of a message's
// attribute byte.
package compress

import "io"

// Compression represents the compression applied to a record set.
type Compression int8

const (
	None   Compression = 0
	Gzip   Compression = 1
	Snappy Compression = 2
	Lz4    Compression = 3
	Zstd   Compression = 4
)

// Codec returns the codec for the compression, or nil when the value does
// not name a supported codec.
func (c Compression) Codec() Codec {
	if i := int(c); i > 0 && i < len(Codecs) {
		return Codecs[i]
	}
	return nil
}

func (c Compression) String() string {
	if codec := c.Codec(); codec != nil {
		return codec.Name()
	}
	return "uncompressed"
}

// Codec represents a compression codec to encode and decode the messages.
//
// A Codec must be safe for concurrent access by multiple go routines.
type Codec interface {
	// Code returns the compression codec code.
	Code() int8

	// Human-readable name for the codec.
	Name() string

	// Constructs a new reader which decompresses data from r.
	NewReader(r io.Reader) io.ReadCloser

	// Constructs a new writer which writes compressed data to w.
	NewWriter(w io.Writer) io.WriteCloser
}

var (
	// The global gzip codec installed on the Codecs table.
	GzipCodec GzipCompressor

	// The global snappy codec installed on the Codecs table.
	SnappyCodec SnappyCompressor

	// The global lz4 codec installed on the Codecs table.
	Lz4Codec Lz4Compressor

	// The global zstd codec installed on the Codecs table.
	ZstdCodec ZstdCompressor

	// The global table of compression codecs supported by the kafka protocol.
	Codecs = [...]Codec{
		None:   nil,
		Gzip:   &GzipCodec,
		Snappy: &SnappyCodec,
		Lz4:    &Lz4Codec,
		Zstd:   &ZstdCodec,
	}
)

// errorReader is returned by codecs whose reader construction failed; every
// read reports the construction error.
type errorReader struct{ err error }

func (r *errorReader) Read([]byte) (int, error) { return 0, r.err }

func (r *errorReader) Close() error { return r.err }
