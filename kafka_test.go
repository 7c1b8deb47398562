package kafka

import (
	"bytes"
	"fmt"
	"net"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// wireEncoder is satisfied by every wire type that can serialize itself,
// which is what the fixtures below rely on to build response payloads.
type wireEncoder interface {
	size() int32
	writeTo(wb *writeBuffer)
}

func newWriteFixture() (*bytes.Buffer, *writeBuffer) {
	buf := &bytes.Buffer{}
	return buf, &writeBuffer{w: buf}
}

func encodePayload(t *testing.T, e wireEncoder) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	wb := &writeBuffer{w: buf}
	e.writeTo(wb)
	require.NoError(t, wb.err)
	require.Equal(t, int(e.size()), buf.Len())
	return buf.Bytes()
}

// fakeHandler is a scripted RequestHandler. Each call to Request is recorded
// and answered by the respond function; a nil respond rejects everything.
type fakeHandler struct {
	mutex      sync.Mutex
	requests   []Request
	norespons  []Request
	respond    func(req Request) ([]byte, error)
	closed     bool
	closeCount int
}

func (h *fakeHandler) Request(req Request) *Future {
	h.mutex.Lock()
	h.requests = append(h.requests, req)
	respond := h.respond
	h.mutex.Unlock()

	f := newFuture()
	if respond == nil {
		f.reject(errHandlerClosed)
		return f
	}
	payload, err := respond(req)
	if err != nil {
		f.reject(err)
	} else {
		f.resolve(payload)
	}
	return f
}

func (h *fakeHandler) RequestNoResponse(req Request) error {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.norespons = append(h.norespons, req)
	return nil
}

func (h *fakeHandler) Close() error {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.closed = true
	h.closeCount++
	return nil
}

func (h *fakeHandler) requestCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.requests)
}

func (h *fakeHandler) isClosed() bool {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return h.closed
}

// respondWith scripts a fixed successful payload for every request.
func respondWith(payload []byte) func(Request) ([]byte, error) {
	return func(Request) ([]byte, error) { return payload, nil }
}

// sleepRecorder captures backoff delays instead of sleeping.
type sleepRecorder struct {
	slept []time.Duration
}

func (s *sleepRecorder) sleep(d time.Duration) {
	s.slept = append(s.slept, d)
}

// brokerScript is the behavior of one fake broker address. Every connection
// made to the address gets its own handler, but the requests and the respond
// function are shared so tests observe the address as a whole.
type brokerScript struct {
	mutex    sync.Mutex
	respond  func(Request) ([]byte, error)
	requests []Request
	handlers []*fakeHandler
}

func (s *brokerScript) setRespond(f func(Request) ([]byte, error)) {
	s.mutex.Lock()
	s.respond = f
	s.mutex.Unlock()
}

func (s *brokerScript) call(req Request) ([]byte, error) {
	s.mutex.Lock()
	s.requests = append(s.requests, req)
	respond := s.respond
	s.mutex.Unlock()
	if respond == nil {
		return nil, errHandlerClosed
	}
	return respond(req)
}

func (s *brokerScript) requestCount() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.requests)
}

func (s *brokerScript) requestAt(i int) Request {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.requests[i]
}

func (s *brokerScript) handlerAt(i int) *fakeHandler {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.handlers[i]
}

// fakeNetwork routes broker connects to scripted addresses, standing in for
// the TCP dialer in cluster tests.
type fakeNetwork struct {
	mutex   sync.Mutex
	scripts map[string]*brokerScript
	dialed  []string
}

func newFakeNetwork() *fakeNetwork {
	return &fakeNetwork{scripts: make(map[string]*brokerScript)}
}

func (n *fakeNetwork) addBroker(addr string, respond func(Request) ([]byte, error)) *brokerScript {
	s := &brokerScript{respond: respond}
	n.mutex.Lock()
	n.scripts[addr] = s
	n.mutex.Unlock()
	return s
}

func (n *fakeNetwork) script(addr string) *brokerScript {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	return n.scripts[addr]
}

func (n *fakeNetwork) connect(host string, port int, config BrokerConfig) (RequestHandler, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	n.mutex.Lock()
	defer n.mutex.Unlock()
	n.dialed = append(n.dialed, addr)
	s, ok := n.scripts[addr]
	if !ok {
		return nil, fmt.Errorf("no route to %s", addr)
	}
	h := &fakeHandler{respond: s.call}
	s.mutex.Lock()
	s.handlers = append(s.handlers, h)
	s.mutex.Unlock()
	return h, nil
}

func (n *fakeNetwork) dialedAddrs() []string {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	out := make([]string, len(n.dialed))
	copy(out, n.dialed)
	return out
}

// metadataPayload encodes a metadata response describing the given brokers
// and one topic layout per entry of topics: topic name to partition id to
// leader id. Every partition reports its leader as sole replica in sync.
func metadataPayload(t *testing.T, brokers map[int32]string, topics map[string]map[int32]int32) []byte {
	t.Helper()

	res := metadataResponseV0{}
	for _, id := range sortedKeys(brokers) {
		host, portStr, err := net.SplitHostPort(brokers[id])
		require.NoError(t, err)
		port, err := strconv.Atoi(portStr)
		require.NoError(t, err)
		res.Brokers = append(res.Brokers, brokerMetadataV0{
			NodeID: id,
			Host:   host,
			Port:   int32(port),
		})
	}
	for name, parts := range topics {
		topic := topicMetadataV0{TopicName: name}
		for _, pid := range sortedKeys(parts) {
			leader := parts[pid]
			topic.Partitions = append(topic.Partitions, partitionMetadataV0{
				PartitionID: pid,
				Leader:      leader,
				Replicas:    []int32{leader},
				Isr:         []int32{leader},
			})
		}
		res.Topics = append(res.Topics, topic)
	}
	return encodePayload(t, res)
}

func sortedKeys[V any](m map[int32]V) []int32 {
	ids := make([]int32, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
