package kafka

import (
	"bytes"
	"io"
)

type apiKey int16

const (
	produceRequest          apiKey = 0
	fetchRequest            apiKey = 1
	offsetRequest           apiKey = 2
	metadataRequest         apiKey = 3
	offsetCommitRequest     apiKey = 8
	offsetFetchRequest      apiKey = 9
	groupCoordinatorRequest apiKey = 10
)

type apiVersion int16

const (
	v0 apiVersion = 0
	v1 apiVersion = 1
)

// Request is the interface implemented by the value objects sent from
// clients to kafka brokers. Implementations live in this package; the
// interface is exported so request handlers can be faked in programs that
// embed this client.
type Request interface {
	apiKey() apiKey
	apiVersion() apiVersion
	size() int32
	writeTo(wb *writeBuffer)
}

// Response is the interface implemented by the value objects decoded from
// broker response payloads.
type Response interface {
	readFrom(rb *readBuffer)
}

type requestHeader struct {
	ApiKey        int16
	ApiVersion    int16
	CorrelationID int32
	ClientID      string
}

func (h requestHeader) size() int32 {
	return 2 + 2 + 4 + sizeofString(h.ClientID)
}

func (h requestHeader) writeTo(wb *writeBuffer) {
	wb.writeInt16(h.ApiKey)
	wb.writeInt16(h.ApiVersion)
	wb.writeInt32(h.CorrelationID)
	wb.writeString(h.ClientID)
}

// writeRequest frames a request and writes it to w in a single call so that
// concurrent writers never interleave partial frames.
func writeRequest(w io.Writer, correlationID int32, clientID string, req Request) error {
	hdr := requestHeader{
		ApiKey:        int16(req.apiKey()),
		ApiVersion:    int16(req.apiVersion()),
		CorrelationID: correlationID,
		ClientID:      clientID,
	}

	size := hdr.size() + req.size()
	buf := bytes.NewBuffer(make([]byte, 0, 4+size))
	wb := &writeBuffer{w: buf}
	wb.writeInt32(size)
	hdr.writeTo(wb)
	req.writeTo(wb)
	if wb.err != nil {
		return wb.err
	}

	_, err := w.Write(buf.Bytes())
	return err
}
