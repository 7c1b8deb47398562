package kafka

import (
	"encoding/binary"
	"errors"
	"io"
)

var errShortRead = errors.New("kafka: not enough bytes available to load the response")

// readBuffer implements the decoding of the low level types of the kafka
// protocol, consuming at most remain bytes from an underlying io.Reader.
//
// The first read error is retained and turns all subsequent reads into
// no-ops returning zero values, so decoders can be written as plain
// sequences of reads with a single error check at the end.
type readBuffer struct {
	r      io.Reader
	remain int
	err    error
}

func (rb *readBuffer) setErr(err error) {
	if rb.err == nil {
		rb.err = err
	}
}

func (rb *readBuffer) readFull(b []byte) {
	if rb.err != nil {
		return
	}
	if len(b) > rb.remain {
		rb.err = errShortRead
		return
	}
	n, err := io.ReadFull(rb.r, b)
	rb.remain -= n
	if err != nil {
		rb.err = err
	}
}

func (rb *readBuffer) readInt8() int8 {
	var b [1]byte
	rb.readFull(b[:])
	return int8(b[0])
}

func (rb *readBuffer) readInt16() int16 {
	var b [2]byte
	rb.readFull(b[:])
	return int16(binary.BigEndian.Uint16(b[:]))
}

func (rb *readBuffer) readInt32() int32 {
	var b [4]byte
	rb.readFull(b[:])
	return int32(binary.BigEndian.Uint32(b[:]))
}

func (rb *readBuffer) readInt64() int64 {
	var b [8]byte
	rb.readFull(b[:])
	return int64(binary.BigEndian.Uint64(b[:]))
}

func (rb *readBuffer) readString() string {
	n := rb.readInt16()
	if rb.err != nil || n < 0 {
		return ""
	}
	b := make([]byte, int(n))
	rb.readFull(b)
	if rb.err != nil {
		return ""
	}
	return string(b)
}

// readBytes reads a length-prefixed byte sequence, mapping the null length
// (-1) to a nil slice.
func (rb *readBuffer) readBytes() []byte {
	n := rb.readInt32()
	if rb.err != nil || n < 0 {
		return nil
	}
	b := make([]byte, int(n))
	rb.readFull(b)
	if rb.err != nil {
		return nil
	}
	return b
}

func (rb *readBuffer) readInt32Array() []int32 {
	n := rb.readInt32()
	if rb.err != nil || n < 0 {
		return nil
	}
	a := make([]int32, 0, int(n))
	for i := int32(0); i < n && rb.err == nil; i++ {
		a = append(a, rb.readInt32())
	}
	return a
}

// readArray reads the count prefix of a protocol array and invokes f once
// per element.
func (rb *readBuffer) readArray(f func()) {
	n := rb.readInt32()
	for i := int32(0); i < n && rb.err == nil; i++ {
		f()
	}
}

// discard drops whatever is left of the payload, used when a decoder does
// not care about trailing fields.
func (rb *readBuffer) discard() {
	if rb.err != nil || rb.remain == 0 {
		return
	}
	n, err := io.CopyN(io.Discard, rb.r, int64(rb.remain))
	rb.remain -= int(n)
	if err != nil {
		rb.err = err
	}
}
