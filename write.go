package kafka

import (
	"encoding/binary"
	"io"
)

// writeBuffer implements the encoding of the low level types of the kafka
// protocol, writing big-endian values to an underlying io.Writer.
//
// The first write error is retained and turns all subsequent writes into
// no-ops, so sequences of writes only need a single error check at the end.
type writeBuffer struct {
	w   io.Writer
	err error
	b   [8]byte
}

func (wb *writeBuffer) write(b []byte) {
	if wb.err == nil {
		_, wb.err = wb.w.Write(b)
	}
}

func (wb *writeBuffer) writeInt8(i int8) {
	wb.b[0] = byte(i)
	wb.write(wb.b[:1])
}

func (wb *writeBuffer) writeInt16(i int16) {
	binary.BigEndian.PutUint16(wb.b[:2], uint16(i))
	wb.write(wb.b[:2])
}

func (wb *writeBuffer) writeInt32(i int32) {
	binary.BigEndian.PutUint32(wb.b[:4], uint32(i))
	wb.write(wb.b[:4])
}

func (wb *writeBuffer) writeInt64(i int64) {
	binary.BigEndian.PutUint64(wb.b[:8], uint64(i))
	wb.write(wb.b[:8])
}

func (wb *writeBuffer) writeString(s string) {
	wb.writeInt16(int16(len(s)))
	if wb.err == nil {
		_, wb.err = io.WriteString(wb.w, s)
	}
}

// writeBytes writes a length-prefixed byte sequence, encoding nil as the
// null length (-1).
func (wb *writeBuffer) writeBytes(b []byte) {
	if b == nil {
		wb.writeInt32(-1)
		return
	}
	wb.writeInt32(int32(len(b)))
	wb.write(b)
}

func (wb *writeBuffer) writeInt32Array(a []int32) {
	wb.writeInt32(int32(len(a)))
	for _, i := range a {
		wb.writeInt32(i)
	}
}

func (wb *writeBuffer) writeStringArray(a []string) {
	wb.writeInt32(int32(len(a)))
	for _, s := range a {
		wb.writeString(s)
	}
}

func (wb *writeBuffer) writeArray(n int, f func(int)) {
	wb.writeInt32(int32(n))
	for i := 0; i < n; i++ {
		f(i)
	}
}
