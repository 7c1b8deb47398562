package compress

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

// ZstdCompressor implements the Codec interface for zstd compression.
type ZstdCompressor struct {
	// The compression level configured on writers created by the codec.
	//
	// Default to 3.
	Level int
}

// Code implements the Codec interface.
func (c *ZstdCompressor) Code() int8 { return int8(Zstd) }

// Name implements the Codec interface.
func (c *ZstdCompressor) Name() string { return "zstd" }

// NewReader implements the Codec interface.
func (c *ZstdCompressor) NewReader(r io.Reader) io.ReadCloser {
	z, err := zstd.NewReader(r)
	if err != nil {
		return &errorReader{err: err}
	}
	return z.IOReadCloser()
}

// NewWriter implements the Codec interface.
func (c *ZstdCompressor) NewWriter(w io.Writer) io.WriteCloser {
	z, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(c.level())))
	if err != nil {
		return &errorWriter{err: err}
	}
	return z
}

func (c *ZstdCompressor) level() int {
	if c.Level != 0 {
		return c.Level
	}
	return 3
}
