package kafka

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync/atomic"
	"time"
)

// connectFunc opens the connection to a broker and returns the started
// request handler bound to it. The default implementation dials TCP; tests
// substitute scripted handlers.
type connectFunc func(host string, port int, config BrokerConfig) (RequestHandler, error)

// BrokerConfig carries the collaborators a Broker needs to establish and use
// its connection. The zero value is usable.
type BrokerConfig struct {
	// Dialer used to open the connection, DefaultDialer when nil.
	Dialer *Dialer

	// ConnectTimeout bounds the initial connect only; it does not apply to
	// requests issued later.
	//
	// Default to 5s.
	ConnectTimeout time.Duration

	// Logger receives informational messages. No logging happens when nil.
	Logger Logger

	connect connectFunc
	sleep   func(time.Duration)
}

func (c BrokerConfig) dialer() *Dialer {
	if c.Dialer != nil {
		return c.Dialer
	}
	return DefaultDialer
}

func (c BrokerConfig) connectTimeout() time.Duration {
	if c.ConnectTimeout > 0 {
		return c.ConnectTimeout
	}
	return 5 * time.Second
}

func (c BrokerConfig) logger() Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return nopLogger{}
}

func (c BrokerConfig) connector() connectFunc {
	if c.connect != nil {
		return c.connect
	}
	return dialBroker
}

func dialBroker(host string, port int, config BrokerConfig) (RequestHandler, error) {
	ctx, cancel := context.WithTimeout(context.Background(), config.connectTimeout())
	defer cancel()

	d := config.dialer()
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return nil, fmt.Errorf("kafka: connecting to broker at %s:%d: %w", host, port, err)
	}
	return newConnHandler(conn, d.ClientID, config.logger()), nil
}

// Broker owns the single connection to one node of the cluster and exposes
// the typed protocol operations built on it. Identity is immutable after
// construction; a broker that exists is a broker that connected.
//
// All operations are safe to call concurrently because request/response
// correlation is delegated entirely to the RequestHandler.
type Broker struct {
	id     int32
	host   string
	port   int
	config BrokerConfig

	handler   RequestHandler
	connected atomic.Bool
}

// NewBroker connects to the node at host:port and returns a usable Broker,
// or an error if the connection could not be established. There is no such
// thing as a disconnected Broker: construction either fully succeeds or
// yields nothing.
func NewBroker(id int32, host string, port int, config BrokerConfig) (*Broker, error) {
	b := &Broker{
		id:     id,
		host:   host,
		port:   port,
		config: config,
	}
	if err := b.connect(); err != nil {
		return nil, err
	}
	return b, nil
}

// NewBrokerFromMetadata connects to the node described by a metadata
// snapshot.
func NewBrokerFromMetadata(md BrokerMetadata, config BrokerConfig) (*Broker, error) {
	return NewBroker(md.ID, md.Host, md.Port, config)
}

func (b *Broker) connect() error {
	handler, err := b.config.connector()(b.host, b.port, b.config)
	if err != nil {
		return err
	}
	b.handler = handler
	b.connected.Store(true)
	return nil
}

// ID returns the broker's id within the cluster, -1 for bootstrap brokers.
func (b *Broker) ID() int32 { return b.id }

// Host returns the host the broker is reached at.
func (b *Broker) Host() string { return b.host }

// Port returns the port the broker is reached at.
func (b *Broker) Port() int { return b.port }

// Connected reports whether the broker's connection is believed usable.
func (b *Broker) Connected() bool { return b.connected.Load() }

// Handler returns the request handler bound to this broker's connection.
func (b *Broker) Handler() RequestHandler { return b.handler }

// Close tears down the broker's connection. The broker must not be used
// afterwards.
func (b *Broker) Close() error {
	b.connected.Store(false)
	return b.handler.Close()
}

func (b *Broker) String() string {
	return fmt.Sprintf("broker %d (%s:%d)", b.id, b.host, b.port)
}

// FetchMessages fetches messages from a set of partitions, blocking until
// the broker answers or the connection fails.
//
// TODO: forward maxWait and minBytes; the wire request still carries the
// fixed values the original client sent (10s wait, 1 byte minimum).
func (b *Broker) FetchMessages(partitions []PartitionFetchRequest, maxWait time.Duration, minBytes int32) (*FetchResponse, error) {
	req := makeFetchRequest(partitions, 10000, 1)
	res := &FetchResponse{}
	if err := b.handler.Request(req).Get(res); err != nil {
		return nil, err
	}
	return res, nil
}

// ProduceMessages publishes the request's message sets. When RequiredAcks is
// zero the request is submitted without awaiting a response and errors are
// undetectable by design; otherwise the call blocks for the acknowledgement
// and returns the first protocol error encoded in it.
func (b *Broker) ProduceMessages(req *ProduceRequest) error {
	wire, err := req.wire()
	if err != nil {
		return err
	}

	if req.RequiredAcks == 0 {
		return b.handler.RequestNoResponse(wire)
	}

	res := &ProduceResponse{}
	if err := b.handler.Request(wire).Get(res); err != nil {
		return err
	}
	for i := range res.Topics {
		for j := range res.Topics[i].Partitions {
			if code := res.Topics[i].Partitions[j].ErrorCode; code != 0 {
				return Error(code)
			}
		}
	}
	return nil
}

// RequestOffsets requests offset information for a set of partitions.
func (b *Broker) RequestOffsets(partitions []PartitionOffsetRequest) (*OffsetResponse, error) {
	res := &OffsetResponse{}
	if err := b.handler.Request(makeOffsetRequest(partitions)).Get(res); err != nil {
		return nil, err
	}
	return res, nil
}

// RequestMetadata requests the broker/topic topology. An empty topic list
// requests all topics.
func (b *Broker) RequestMetadata(topics ...string) (*ClusterMetadata, error) {
	res := &metadataResponseV0{}
	if err := b.handler.Request(topicMetadataRequestV0(topics)).Get(res); err != nil {
		return nil, err
	}
	return res.snapshot(), nil
}

// CommitConsumerGroupOffsets persists the group's position on the given
// partitions, stamping each entry with the current time and an empty
// metadata string. Failed attempts are retried with quadratic backoff up to
// retries times.
//
// Exhausting every attempt is logged, not returned: this call never reports
// failure to its caller. Programs that need certainty must fetch the
// offsets back and compare.
func (b *Broker) CommitConsumerGroupOffsets(group string, partitions []PartitionOffset, retries int) {
	now := time.Now().Unix()
	entries := make([]PartitionOffsetCommitRequest, 0, len(partitions))
	for _, p := range partitions {
		entries = append(entries, PartitionOffsetCommitRequest{
			Topic:     p.Topic,
			Partition: p.Partition,
			Offset:    p.Offset,
			Timestamp: now,
		})
	}
	req := makeOffsetCommitRequest(group, entries)

	offsetCommitPolicy(retries).run(b.config.sleep, func(attempt int) error {
		res := &OffsetCommitResponse{}
		if err := b.handler.Request(req).Get(res); err != nil {
			b.config.logger().Printf("kafka: offset commit for group %q on %v failed: %v", group, b, err)
			return err
		}
		for i := range res.Topics {
			for j := range res.Topics[i].Partitions {
				if err := res.Topics[i].Partitions[j].Err(); err != nil {
					b.config.logger().Printf("kafka: offset commit for group %q on %v failed: %v", group, b, err)
					return err
				}
			}
		}
		return nil
	})
}

// FetchConsumerGroupOffsets retrieves the offsets committed for the group on
// the given partitions, retrying with the same backoff schedule as the
// commit path. It returns nil, with no error, when every attempt failed:
// exhaustion is signaled by the absence of a result.
func (b *Broker) FetchConsumerGroupOffsets(group string, partitions []PartitionOffsetFetchRequest, retries int) *OffsetFetchResponse {
	req := makeOffsetFetchRequest(group, partitions)

	var out *OffsetFetchResponse
	offsetCommitPolicy(retries).run(b.config.sleep, func(attempt int) error {
		res := &OffsetFetchResponse{}
		if err := b.handler.Request(req).Get(res); err != nil {
			b.config.logger().Printf("kafka: offset fetch for group %q on %v failed: %v", group, b, err)
			return err
		}
		out = res
		return nil
	})
	return out
}
