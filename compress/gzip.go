package compress

import (
	"io"
	"sync"

	"github.com/klauspost/compress/gzip"
)

// GzipCompressor implements the Codec interface for gzip compression.
type GzipCompressor struct {
	// The compression level to configure on writers created by this codec.
	//
	// Default to gzip.DefaultCompression.
	Level int

	writerPool sync.Pool // *gzip.Writer
}

// Code implements the Codec interface.
func (c *GzipCompressor) Code() int8 { return int8(Gzip) }

// Name implements the Codec interface.
func (c *GzipCompressor) Name() string { return "gzip" }

// NewReader implements the Codec interface.
func (c *GzipCompressor) NewReader(r io.Reader) io.ReadCloser {
	z, err := gzip.NewReader(r)
	if err != nil {
		return &errorReader{err: err}
	}
	return z
}

// NewWriter implements the Codec interface.
func (c *GzipCompressor) NewWriter(w io.Writer) io.WriteCloser {
	if z, _ := c.writerPool.Get().(*gzip.Writer); z != nil {
		z.Reset(w)
		return &gzipWriter{codec: c, Writer: z}
	}
	z, err := gzip.NewWriterLevel(w, c.level())
	if err != nil {
		return &errorWriter{err: err}
	}
	return &gzipWriter{codec: c, Writer: z}
}

func (c *GzipCompressor) level() int {
	if c.Level != 0 {
		return c.Level
	}
	return gzip.DefaultCompression
}

type gzipWriter struct {
	codec *GzipCompressor
	*gzip.Writer
}

func (w *gzipWriter) Close() error {
	if w.Writer == nil {
		return nil
	}
	err := w.Writer.Close()
	w.Writer.Reset(io.Discard)
	w.codec.writerPool.Put(w.Writer)
	w.Writer = nil
	return err
}

type errorWriter struct{ err error }

func (w *errorWriter) Write([]byte) (int, error) { return 0, w.err }

func (w *errorWriter) Close() error { return w.err }
