package kafka

import (
	"encoding/binary"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

// readClientFrame consumes one request frame from the server side of the
// pipe and returns its correlation id, discarding the request body.
func readClientFrame(r io.Reader) (int32, error) {
	var head [12]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return 0, err
	}
	size := int(binary.BigEndian.Uint32(head[:4]))
	corr := int32(binary.BigEndian.Uint32(head[8:12]))
	rest := make([]byte, size-8)
	_, err := io.ReadFull(r, rest)
	return corr, err
}

func writeServerFrame(w io.Writer, corr int32, payload []byte) error {
	buf := make([]byte, 8+len(payload))
	binary.BigEndian.PutUint32(buf[:4], uint32(4+len(payload)))
	binary.BigEndian.PutUint32(buf[4:8], uint32(corr))
	copy(buf[8:], payload)
	_, err := w.Write(buf)
	return err
}

func TestConnHandlerCorrelatesOutOfOrderResponses(t *testing.T) {
	client, server := net.Pipe()
	h := newConnHandler(client, "test-client", nopLogger{})
	defer h.Close()

	first := encodePayload(t, groupCoordinatorResponseV0{
		Coordinator: brokerMetadataV0{NodeID: 1, Host: "b1", Port: 9092},
	})
	second := encodePayload(t, groupCoordinatorResponseV0{
		Coordinator: brokerMetadataV0{NodeID: 2, Host: "b2", Port: 9092},
	})

	serverErr := make(chan error, 1)
	go func() {
		c1, err := readClientFrame(server)
		if err == nil {
			var c2 int32
			if c2, err = readClientFrame(server); err == nil {
				// Answer the second request before the first.
				if err = writeServerFrame(server, c2, second); err == nil {
					err = writeServerFrame(server, c1, first)
				}
			}
		}
		serverErr <- err
	}()

	f1 := h.Request(groupCoordinatorRequestV0{GroupID: "g1"})
	f2 := h.Request(groupCoordinatorRequestV0{GroupID: "g2"})

	res1 := &groupCoordinatorResponseV0{}
	require.NoError(t, f1.Get(res1))
	require.Equal(t, int32(1), res1.Coordinator.NodeID)

	res2 := &groupCoordinatorResponseV0{}
	require.NoError(t, f2.Get(res2))
	require.Equal(t, int32(2), res2.Coordinator.NodeID)

	require.NoError(t, <-serverErr)
}

func TestConnHandlerCloseRejectsInflight(t *testing.T) {
	client, server := net.Pipe()
	h := newConnHandler(client, "test-client", nopLogger{})

	read := make(chan error, 1)
	go func() {
		_, err := readClientFrame(server)
		read <- err
	}()

	f := h.Request(groupCoordinatorRequestV0{GroupID: "g"})
	require.NoError(t, <-read)

	require.NoError(t, h.Close())
	require.ErrorIs(t, f.Get(&groupCoordinatorResponseV0{}), errHandlerClosed)
}

func TestConnHandlerRejectsAfterClose(t *testing.T) {
	client, _ := net.Pipe()
	h := newConnHandler(client, "test-client", nopLogger{})
	require.NoError(t, h.Close())

	f := h.Request(groupCoordinatorRequestV0{GroupID: "g"})
	require.ErrorIs(t, f.Get(&groupCoordinatorResponseV0{}), errHandlerClosed)
	require.ErrorIs(t, h.RequestNoResponse(groupCoordinatorRequestV0{GroupID: "g"}), errHandlerClosed)
}

func TestConnHandlerTearsDownOnUnknownCorrelationID(t *testing.T) {
	client, server := net.Pipe()
	h := newConnHandler(client, "test-client", nopLogger{})

	go func() {
		corr, err := readClientFrame(server)
		if err == nil {
			writeServerFrame(server, corr+1000, []byte{})
		}
	}()

	f := h.Request(groupCoordinatorRequestV0{GroupID: "g"})
	require.Error(t, f.Get(&groupCoordinatorResponseV0{}),
		"a response nobody asked for poisons the stream")
}

func TestConnHandlerRequestNoResponse(t *testing.T) {
	client, server := net.Pipe()
	h := newConnHandler(client, "test-client", nopLogger{})
	defer h.Close()

	read := make(chan int32, 1)
	go func() {
		corr, _ := readClientFrame(server)
		read <- corr
	}()

	require.NoError(t, h.RequestNoResponse(groupCoordinatorRequestV0{GroupID: "g"}))
	require.Equal(t, int32(1), <-read)
}

func TestWriteRequestFraming(t *testing.T) {
	buf, _ := newWriteFixture()
	req := groupCoordinatorRequestV0{GroupID: "readers"}
	require.NoError(t, writeRequest(buf, 42, "cli", req))

	b := buf.Bytes()
	size := int32(binary.BigEndian.Uint32(b[:4]))
	require.Equal(t, len(b)-4, int(size), "frame size excludes the size field itself")
	require.Equal(t, int16(groupCoordinatorRequest), int16(binary.BigEndian.Uint16(b[4:6])))
	require.Equal(t, int16(v0), int16(binary.BigEndian.Uint16(b[6:8])))
	require.Equal(t, int32(42), int32(binary.BigEndian.Uint32(b[8:12])))
	require.Equal(t, int16(3), int16(binary.BigEndian.Uint16(b[12:14])))
	require.Equal(t, "cli", string(b[14:17]))
	require.Equal(t, "readers", string(b[19:]))
}