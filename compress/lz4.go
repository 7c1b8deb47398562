package compress

import (
	"io"
	"sync"

	"github.com/pierrec/lz4"
)

// Lz4Compressor implements the Codec interface for lz4 compression.
type Lz4Compressor struct{}

// Code implements the Codec interface.
func (c *Lz4Compressor) Code() int8 { return int8(Lz4) }

// Name implements the Codec interface.
func (c *Lz4Compressor) Name() string { return "lz4" }

// NewReader implements the Codec interface.
func (c *Lz4Compressor) NewReader(r io.Reader) io.ReadCloser {
	z, _ := lz4ReaderPool.Get().(*lz4.Reader)
	if z != nil {
		z.Reset(r)
	} else {
		z = lz4.NewReader(r)
	}
	return &lz4Reader{Reader: z}
}

// NewWriter implements the Codec interface.
func (c *Lz4Compressor) NewWriter(w io.Writer) io.WriteCloser {
	z, _ := lz4WriterPool.Get().(*lz4.Writer)
	if z != nil {
		z.Reset(w)
	} else {
		z = lz4.NewWriter(w)
	}
	return &lz4Writer{Writer: z}
}

type lz4Reader struct{ *lz4.Reader }

func (r *lz4Reader) Close() error {
	if z := r.Reader; z != nil {
		r.Reader = nil
		z.Reset(nil)
		lz4ReaderPool.Put(z)
	}
	return nil
}

type lz4Writer struct{ *lz4.Writer }

func (w *lz4Writer) Close() (err error) {
	if z := w.Writer; z != nil {
		w.Writer = nil
		err = z.Close()
		z.Reset(nil)
		lz4WriterPool.Put(z)
	}
	return
}

var lz4ReaderPool = sync.Pool{}

var lz4WriterPool = sync.Pool{}
