package kafka

// BrokerMetadata is an immutable snapshot of one broker entry in a metadata
// response. The id -1 is reserved for bootstrap brokers built from seed
// addresses before the real topology is known.
type BrokerMetadata struct {
	ID   int32
	Host string
	Port int
}

// PartitionMetadata carries the partition detail of a metadata response:
// the leader, replica set and in-sync set are broker ids to be resolved
// against the live broker map.
type PartitionMetadata struct {
	ID       int32
	Leader   int32
	Replicas []int32
	ISR      []int32
	Err      error
}

// TopicMetadata is the snapshot of one topic in a metadata response.
type TopicMetadata struct {
	Name       string
	Partitions map[int32]PartitionMetadata
	Err        error
}

// ClusterMetadata is the decoded result of a metadata request, keyed the way
// the Cluster reconciles it: brokers by id, topics by name.
type ClusterMetadata struct {
	Brokers map[int32]BrokerMetadata
	Topics  map[string]TopicMetadata
}

type topicMetadataRequestV0 []string

func (r topicMetadataRequestV0) apiKey() apiKey         { return metadataRequest }
func (r topicMetadataRequestV0) apiVersion() apiVersion { return v0 }

func (r topicMetadataRequestV0) size() int32 {
	return sizeofStringArray([]string(r))
}

func (r topicMetadataRequestV0) writeTo(wb *writeBuffer) {
	wb.writeStringArray([]string(r))
}

type metadataResponseV0 struct {
	Brokers []brokerMetadataV0
	Topics  []topicMetadataV0
}

func (r metadataResponseV0) size() int32 {
	return sizeofArray(len(r.Brokers), func(i int) int32 { return r.Brokers[i].size() }) +
		sizeofArray(len(r.Topics), func(i int) int32 { return r.Topics[i].size() })
}

func (r metadataResponseV0) writeTo(wb *writeBuffer) {
	wb.writeArray(len(r.Brokers), func(i int) { r.Brokers[i].writeTo(wb) })
	wb.writeArray(len(r.Topics), func(i int) { r.Topics[i].writeTo(wb) })
}

func (r *metadataResponseV0) readFrom(rb *readBuffer) {
	rb.readArray(func() {
		var b brokerMetadataV0
		b.readFrom(rb)
		r.Brokers = append(r.Brokers, b)
	})
	rb.readArray(func() {
		var t topicMetadataV0
		t.readFrom(rb)
		r.Topics = append(r.Topics, t)
	})
}

// snapshot converts the wire representation into the map-keyed form consumed
// by topology reconciliation.
func (r *metadataResponseV0) snapshot() *ClusterMetadata {
	md := &ClusterMetadata{
		Brokers: make(map[int32]BrokerMetadata, len(r.Brokers)),
		Topics:  make(map[string]TopicMetadata, len(r.Topics)),
	}

	for _, b := range r.Brokers {
		md.Brokers[b.NodeID] = BrokerMetadata{
			ID:   b.NodeID,
			Host: b.Host,
			Port: int(b.Port),
		}
	}

	for _, t := range r.Topics {
		topic := TopicMetadata{
			Name:       t.TopicName,
			Partitions: make(map[int32]PartitionMetadata, len(t.Partitions)),
		}
		if t.TopicErrorCode != 0 {
			topic.Err = Error(t.TopicErrorCode)
		}
		for _, p := range t.Partitions {
			pm := PartitionMetadata{
				ID:       p.PartitionID,
				Leader:   p.Leader,
				Replicas: p.Replicas,
				ISR:      p.Isr,
			}
			if p.PartitionErrorCode != 0 {
				pm.Err = Error(p.PartitionErrorCode)
			}
			topic.Partitions[p.PartitionID] = pm
		}
		md.Topics[t.TopicName] = topic
	}

	return md
}

type brokerMetadataV0 struct {
	NodeID int32
	Host   string
	Port   int32
}

func (b brokerMetadataV0) size() int32 {
	return 4 + 4 + sizeofString(b.Host)
}

func (b brokerMetadataV0) writeTo(wb *writeBuffer) {
	wb.writeInt32(b.NodeID)
	wb.writeString(b.Host)
	wb.writeInt32(b.Port)
}

func (b *brokerMetadataV0) readFrom(rb *readBuffer) {
	b.NodeID = rb.readInt32()
	b.Host = rb.readString()
	b.Port = rb.readInt32()
}

type topicMetadataV0 struct {
	TopicErrorCode int16
	TopicName      string
	Partitions     []partitionMetadataV0
}

func (t topicMetadataV0) size() int32 {
	return 2 + sizeofString(t.TopicName) +
		sizeofArray(len(t.Partitions), func(i int) int32 { return t.Partitions[i].size() })
}

func (t topicMetadataV0) writeTo(wb *writeBuffer) {
	wb.writeInt16(t.TopicErrorCode)
	wb.writeString(t.TopicName)
	wb.writeArray(len(t.Partitions), func(i int) { t.Partitions[i].writeTo(wb) })
}

func (t *topicMetadataV0) readFrom(rb *readBuffer) {
	t.TopicErrorCode = rb.readInt16()
	t.TopicName = rb.readString()
	rb.readArray(func() {
		var p partitionMetadataV0
		p.readFrom(rb)
		t.Partitions = append(t.Partitions, p)
	})
}

type partitionMetadataV0 struct {
	PartitionErrorCode int16
	PartitionID        int32
	Leader             int32
	Replicas           []int32
	Isr                []int32
}

func (p partitionMetadataV0) size() int32 {
	return 2 + 4 + 4 + sizeofInt32Array(p.Replicas) + sizeofInt32Array(p.Isr)
}

func (p partitionMetadataV0) writeTo(wb *writeBuffer) {
	wb.writeInt16(p.PartitionErrorCode)
	wb.writeInt32(p.PartitionID)
	wb.writeInt32(p.Leader)
	wb.writeInt32Array(p.Replicas)
	wb.writeInt32Array(p.Isr)
}

func (p *partitionMetadataV0) readFrom(rb *readBuffer) {
	p.PartitionErrorCode = rb.readInt16()
	p.PartitionID = rb.readInt32()
	p.Leader = rb.readInt32()
	p.Replicas = rb.readInt32Array()
	p.Isr = rb.readInt32Array()
}
