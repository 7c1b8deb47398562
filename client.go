package kafka

// Client is a convenience facade over a Cluster for programs that only need
// topology access and group coordination.
type Client struct {
	cluster *Cluster
}

// NewClient connects to the cluster reachable through the comma-separated
// list of seed addresses.
func NewClient(hosts string, config ClusterConfig) (*Client, error) {
	cluster, err := NewCluster(hosts, config)
	if err != nil {
		return nil, err
	}
	return &Client{cluster: cluster}, nil
}

// Cluster exposes the underlying cluster.
func (c *Client) Cluster() *Cluster { return c.cluster }

// Brokers returns a snapshot of the broker map.
func (c *Client) Brokers() map[int32]*Broker { return c.cluster.Brokers() }

// Topics returns a snapshot of the topic map.
func (c *Client) Topics() map[string]*Topic { return c.cluster.Topics() }

// Update refreshes the topology from the cluster's metadata.
func (c *Client) Update() error { return c.cluster.Update() }

// CoordinatorFor locates the broker managing offsets for a consumer group.
func (c *Client) CoordinatorFor(group string) (*Broker, error) {
	return c.cluster.DiscoverOffsetManager(group)
}

// Close tears down every connection held by the client.
func (c *Client) Close() error { return c.cluster.Close() }
