package kafka

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"
)

// RequestHandler multiplexes concurrent requests over a single broker
// connection. Request returns immediately with a Future that resolves when
// the response with the matching correlation id arrives.
//
// Implementations must be safe for concurrent use: correlating a response to
// its originating call is entirely the handler's job, so brokers never
// assume exclusive access to their request path.
type RequestHandler interface {
	// Request submits a request expecting a response.
	Request(req Request) *Future

	// RequestNoResponse submits a request for which the broker sends no
	// response, e.g. a produce request with no required acks.
	RequestNoResponse(req Request) error

	// Close tears the connection down, rejecting all in-flight futures.
	Close() error
}

// Future is the handle returned for an in-flight request.
type Future struct {
	resolved chan struct{}
	once     sync.Once
	payload  []byte
	err      error
}

func newFuture() *Future {
	return &Future{resolved: make(chan struct{})}
}

func (f *Future) resolve(payload []byte) {
	f.once.Do(func() {
		f.payload = payload
		close(f.resolved)
	})
}

func (f *Future) reject(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.resolved)
	})
}

// Get blocks until the response arrives, then decodes it into res. It
// returns the submission or transport error if the request failed, or a
// decode error if the payload was malformed.
func (f *Future) Get(res Response) error {
	<-f.resolved
	if f.err != nil {
		return f.err
	}
	rb := &readBuffer{r: bytes.NewReader(f.payload), remain: len(f.payload)}
	res.readFrom(rb)
	if rb.err != nil {
		return fmt.Errorf("kafka: decoding %T response: %w", res, rb.err)
	}
	return nil
}

// connHandler is the RequestHandler implementation bound to one network
// connection. A single reader goroutine resolves futures by correlation id;
// writes are serialized on the mutex and each request is framed in a single
// Write call so frames never interleave.
type connHandler struct {
	conn     net.Conn
	clientID string
	logger   Logger

	mutex    sync.Mutex
	idgen    int32
	inflight map[int32]*Future
	closed   bool
}

func newConnHandler(conn net.Conn, clientID string, logger Logger) *connHandler {
	h := &connHandler{
		conn:     conn,
		clientID: clientID,
		logger:   logger,
		inflight: make(map[int32]*Future),
	}
	go h.readLoop()
	return h
}

func (h *connHandler) Request(req Request) *Future {
	f := newFuture()

	h.mutex.Lock()
	if h.closed {
		h.mutex.Unlock()
		f.reject(errHandlerClosed)
		return f
	}
	h.idgen++
	id := h.idgen
	h.inflight[id] = f
	err := writeRequest(h.conn, id, h.clientID, req)
	if err != nil {
		delete(h.inflight, id)
	}
	h.mutex.Unlock()

	if err != nil {
		f.reject(err)
	}
	return f
}

func (h *connHandler) RequestNoResponse(req Request) error {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if h.closed {
		return errHandlerClosed
	}
	h.idgen++
	return writeRequest(h.conn, h.idgen, h.clientID, req)
}

func (h *connHandler) Close() error {
	h.teardown(errHandlerClosed)
	return nil
}

func (h *connHandler) readLoop() {
	r := bufio.NewReader(h.conn)
	for {
		var head [8]byte // frame size and correlation id
		if _, err := io.ReadFull(r, head[:]); err != nil {
			h.teardown(err)
			return
		}
		size := int(int32(binary.BigEndian.Uint32(head[:4]))) - 4
		id := int32(binary.BigEndian.Uint32(head[4:]))
		if size < 0 {
			h.teardown(fmt.Errorf("kafka: response with negative frame size for correlation id %d", id))
			return
		}

		payload := make([]byte, size)
		if _, err := io.ReadFull(r, payload); err != nil {
			h.teardown(err)
			return
		}

		h.mutex.Lock()
		f, ok := h.inflight[id]
		delete(h.inflight, id)
		h.mutex.Unlock()

		if !ok {
			// The server answered a request we never sent, or answered one
			// twice. The stream cannot be trusted anymore.
			h.teardown(fmt.Errorf("kafka: received response for unknown correlation id %d", id))
			return
		}
		f.resolve(payload)
	}
}

// teardown closes the connection and rejects everything in flight; the first
// caller wins, later calls are no-ops.
func (h *connHandler) teardown(err error) {
	h.mutex.Lock()
	if h.closed {
		h.mutex.Unlock()
		return
	}
	h.closed = true
	inflight := h.inflight
	h.inflight = nil
	h.mutex.Unlock()

	h.conn.Close()
	for _, f := range inflight {
		f.reject(err)
	}
	if len(inflight) > 0 {
		h.logger.Printf("kafka: connection to %s lost with %d requests in flight: %v",
			h.conn.RemoteAddr(), len(inflight), err)
	}
}
