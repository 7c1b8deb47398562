package kafka

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// ClusterConfig carries the collaborators shared by every broker a Cluster
// manages. The zero value is usable.
type ClusterConfig struct {
	// Dialer used to open broker connections, DefaultDialer when nil.
	Dialer *Dialer

	// ConnectTimeout bounds each broker connect, 5s when zero.
	ConnectTimeout time.Duration

	// Logger receives informational messages. No logging happens when nil.
	Logger Logger

	connect connectFunc
	sleep   func(time.Duration)
}

func (c ClusterConfig) logger() Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return nopLogger{}
}

func (c ClusterConfig) brokerConfig() BrokerConfig {
	return BrokerConfig{
		Dialer:         c.Dialer,
		ConnectTimeout: c.ConnectTimeout,
		Logger:         c.Logger,
		connect:        c.connect,
		sleep:          c.sleep,
	}
}

// Cluster maintains a live map of the brokers and topics of a kafka cluster,
// refreshed from metadata requests. Broker and Topic instances are kept
// stable across refreshes so long as the cluster still reports them
// unchanged; callers may hold on to them between updates.
type Cluster struct {
	config ClusterConfig
	seeds  []string

	mutex   sync.Mutex
	brokers map[int32]*Broker
	topics  map[string]*Topic
}

// NewCluster connects to the cluster reachable through the comma-separated
// list of seed addresses and performs an initial metadata refresh. It
// returns an error if no seed yields metadata or the initial topology
// cannot be connected to.
func NewCluster(hosts string, config ClusterConfig) (*Cluster, error) {
	seeds := splitHostList(hosts)
	if len(seeds) == 0 {
		return nil, fmt.Errorf("kafka: no broker addresses in %q", hosts)
	}

	c := &Cluster{
		config:  config,
		seeds:   seeds,
		brokers: make(map[int32]*Broker),
		topics:  make(map[string]*Topic),
	}
	if err := c.Update(); err != nil {
		return nil, err
	}
	return c, nil
}

// Update refreshes the cluster's view of its topology: it requests metadata,
// then reconciles the broker map and the topic map against the answer.
// Concurrent updates are serialized.
func (c *Cluster) Update() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	md, err := c.getMetadata()
	if err != nil {
		return err
	}
	if err := c.updateBrokers(md); err != nil {
		return err
	}
	c.updateTopics(md)
	return nil
}

// getMetadata obtains a metadata snapshot from the first broker that
// answers. Known brokers are tried in id order; before any are known the
// seed addresses are tried in the order given, over short-lived bootstrap
// connections that are closed once used.
func (c *Cluster) getMetadata() (*ClusterMetadata, error) {
	if len(c.brokers) > 0 {
		for _, id := range sortedBrokerIDs(c.brokers) {
			b := c.brokers[id]
			md, err := b.RequestMetadata()
			if err != nil {
				c.config.logger().Printf("kafka: metadata request to %v failed: %v", b, err)
				continue
			}
			return md, nil
		}
		return nil, ErrMetadataUnavailable
	}

	for _, seed := range c.seeds {
		host, port, err := parseBrokerAddr(seed)
		if err != nil {
			return nil, err
		}
		b, err := NewBroker(-1, host, port, c.config.brokerConfig())
		if err != nil {
			c.config.logger().Printf("kafka: bootstrap connect to %s failed: %v", seed, err)
			continue
		}
		md, err := b.RequestMetadata()
		b.Close()
		if err != nil {
			c.config.logger().Printf("kafka: bootstrap metadata request to %s failed: %v", seed, err)
			continue
		}
		return md, nil
	}
	return nil, ErrMetadataUnavailable
}

// updateBrokers reconciles the broker map against a metadata snapshot.
// Brokers no longer reported are closed and dropped; newly reported ones
// are connected; a broker reported at a different address than the
// connection we hold is an error the caller must see.
func (c *Cluster) updateBrokers(md *ClusterMetadata) error {
	for id, b := range c.brokers {
		if _, ok := md.Brokers[id]; !ok {
			c.config.logger().Printf("kafka: %v no longer reported by the cluster, dropping it", b)
			b.Close()
			delete(c.brokers, id)
		}
	}

	for id, m := range md.Brokers {
		b, ok := c.brokers[id]
		if !ok {
			nb, err := NewBrokerFromMetadata(m, c.config.brokerConfig())
			if err != nil {
				return err
			}
			c.brokers[id] = nb
			continue
		}
		if b.Host() != m.Host || b.Port() != m.Port {
			return &BrokerAddressChangedError{
				ID:      id,
				Host:    b.Host(),
				Port:    b.Port(),
				NewHost: m.Host,
				NewPort: m.Port,
			}
		}
	}
	return nil
}

// updateTopics reconciles the topic map against a metadata snapshot,
// updating surviving topics in place so held references stay valid.
func (c *Cluster) updateTopics(md *ClusterMetadata) {
	for name := range c.topics {
		if _, ok := md.Topics[name]; !ok {
			delete(c.topics, name)
		}
	}

	for name, m := range md.Topics {
		t, ok := c.topics[name]
		if !ok {
			c.topics[name] = newTopic(c.brokers, m)
			continue
		}
		t.update(c.brokers, m)
	}
}

// DiscoverOffsetManager locates the broker acting as offset manager
// (group coordinator) for a consumer group. Lookup failures are retried
// three times with growing delays before the last error is returned.
func (c *Cluster) DiscoverOffsetManager(group string) (*Broker, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if len(c.brokers) == 0 {
		return nil, ErrMetadataUnavailable
	}
	b := c.brokers[sortedBrokerIDs(c.brokers)[0]]

	var coordinator brokerMetadataV0
	err := coordinatorLookupPolicy().run(c.config.sleep, func(attempt int) error {
		res := &groupCoordinatorResponseV0{}
		if err := b.Handler().Request(groupCoordinatorRequestV0{GroupID: group}).Get(res); err != nil {
			c.config.logger().Printf("kafka: coordinator lookup for group %q failed: %v", group, err)
			return err
		}
		if res.ErrorCode != 0 {
			err := Error(res.ErrorCode)
			c.config.logger().Printf("kafka: coordinator lookup for group %q failed: %v", group, err)
			return err
		}
		coordinator = res.Coordinator
		return nil
	})
	if err != nil {
		return nil, err
	}

	mgr, ok := c.brokers[coordinator.NodeID]
	if !ok {
		return nil, &CoordinatorUnknownError{Group: group, CoordinatorID: coordinator.NodeID}
	}
	return mgr, nil
}

// Brokers returns a snapshot of the broker map.
func (c *Cluster) Brokers() map[int32]*Broker {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	out := make(map[int32]*Broker, len(c.brokers))
	for id, b := range c.brokers {
		out[id] = b
	}
	return out
}

// Topics returns a snapshot of the topic map.
func (c *Cluster) Topics() map[string]*Topic {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	out := make(map[string]*Topic, len(c.topics))
	for name, t := range c.topics {
		out[name] = t
	}
	return out
}

// Close tears down every broker connection held by the cluster.
func (c *Cluster) Close() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	var first error
	for id, b := range c.brokers {
		if err := b.Close(); err != nil && first == nil {
			first = err
		}
		delete(c.brokers, id)
	}
	return first
}

func sortedBrokerIDs(brokers map[int32]*Broker) []int32 {
	ids := make([]int32, 0, len(brokers))
	for id := range brokers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
