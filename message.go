package kafka

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/harborstream/kafka/compress"
)

const compressionCodecMask = 0x07

// Message is a data record of a kafka topic partition.
type Message struct {
	// Offset of the message in its partition. Assigned by the broker on
	// produce, populated from the message set on fetch.
	Offset int64

	// Time at which the message was produced, truncated to milliseconds on
	// the wire.
	Time time.Time

	Key   []byte
	Value []byte
}

// marshal encodes the message in the v1 format: crc, magic byte, attributes,
// timestamp, key and value. The CRC covers everything after itself.
func (m Message) marshal(attributes int8) []byte {
	body := &bytes.Buffer{}
	wb := &writeBuffer{w: body}
	wb.writeInt8(1) // magic
	wb.writeInt8(attributes)
	wb.writeInt64(timestampMillis(m.Time))
	wb.writeBytes(m.Key)
	wb.writeBytes(m.Value)

	out := make([]byte, 4, 4+body.Len())
	binary.BigEndian.PutUint32(out, uint32(crcOf(body.Bytes())))
	return append(out, body.Bytes()...)
}

// unmarshalMessage decodes one v0 or v1 message, verifying the CRC, and
// returns the decoded message along with its attribute byte.
func unmarshalMessage(b []byte) (Message, int8, error) {
	var m Message
	if len(b) < 6 {
		return m, 0, errShortRead
	}
	if int32(binary.BigEndian.Uint32(b[:4])) != crcOf(b[4:]) {
		return m, 0, errCorruptedMessage
	}

	rb := &readBuffer{r: bytes.NewReader(b[4:]), remain: len(b) - 4}
	magic := rb.readInt8()
	attributes := rb.readInt8()
	if magic >= 1 {
		if ts := rb.readInt64(); ts > 0 {
			m.Time = time.UnixMilli(ts)
		}
	}
	m.Key = rb.readBytes()
	m.Value = rb.readBytes()
	return m, attributes, rb.err
}

// encodeMessageSet encodes messages in the v1 message set format. When a
// compression codec is given the whole set is compressed and wrapped into a
// single enclosing message carrying the codec in its attributes.
func encodeMessageSet(msgs []Message, codec compress.Codec) ([]byte, error) {
	raw := &bytes.Buffer{}
	wb := &writeBuffer{w: raw}
	for i, m := range msgs {
		b := m.marshal(0)
		wb.writeInt64(int64(i))
		wb.writeInt32(int32(len(b)))
		wb.write(b)
	}
	if wb.err != nil {
		return nil, wb.err
	}
	if codec == nil {
		return raw.Bytes(), nil
	}

	compressed := &bytes.Buffer{}
	w := codec.NewWriter(compressed)
	if _, err := w.Write(raw.Bytes()); err != nil {
		w.Close()
		return nil, fmt.Errorf("kafka: compressing message set with %s: %w", codec.Name(), err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("kafka: compressing message set with %s: %w", codec.Name(), err)
	}

	wrapper := Message{Value: compressed.Bytes()}
	b := wrapper.marshal(codec.Code())
	out := &bytes.Buffer{}
	owb := &writeBuffer{w: out}
	owb.writeInt64(0)
	owb.writeInt32(int32(len(b)))
	owb.write(b)
	return out.Bytes(), owb.err
}

// decodeMessageSet decodes a v0/v1 message set, transparently unwrapping
// compressed sets. A truncated trailing message is dropped rather than
// reported as an error because fetch responses cut message sets at the
// requested byte limit.
func decodeMessageSet(data []byte) ([]Message, error) {
	var msgs []Message

	for len(data) >= 12 {
		offset := int64(binary.BigEndian.Uint64(data[:8]))
		size := int(int32(binary.BigEndian.Uint32(data[8:12])))
		if size < 0 || size > len(data)-12 {
			break // truncated tail
		}

		m, attributes, err := unmarshalMessage(data[12 : 12+size])
		if err != nil {
			return nil, err
		}

		if codec := attributes & compressionCodecMask; codec != 0 {
			inner, err := decompressMessageSet(compress.Compression(codec), m.Value)
			if err != nil {
				return nil, err
			}
			msgs = append(msgs, inner...)
		} else {
			m.Offset = offset
			msgs = append(msgs, m)
		}

		data = data[12+size:]
	}

	return msgs, nil
}

func decompressMessageSet(c compress.Compression, value []byte) ([]Message, error) {
	codec := c.Codec()
	if codec == nil {
		return nil, fmt.Errorf("kafka: unsupported compression codec %d in fetched message", int8(c))
	}
	r := codec.NewReader(bytes.NewReader(value))
	decompressed, err := io.ReadAll(r)
	r.Close()
	if err != nil {
		return nil, fmt.Errorf("kafka: decompressing %s message set: %w", codec.Name(), err)
	}
	return decodeMessageSet(decompressed)
}

func timestampMillis(t time.Time) int64 {
	if t.IsZero() {
		return time.Now().UnixMilli()
	}
	return t.UnixMilli()
}
