package kafka

import "sync"

// Topic tracks the partition layout of one topic across metadata refreshes.
// Partition instances are updated in place so references held by callers
// keep pointing at live state.
type Topic struct {
	name string

	mutex      sync.Mutex
	partitions map[int32]*Partition
}

func newTopic(brokers map[int32]*Broker, md TopicMetadata) *Topic {
	t := &Topic{
		name:       md.Name,
		partitions: make(map[int32]*Partition, len(md.Partitions)),
	}
	t.update(brokers, md)
	return t
}

// update reconciles the partition map against a metadata snapshot, resolving
// broker ids to the live brokers the cluster holds.
func (t *Topic) update(brokers map[int32]*Broker, md TopicMetadata) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	for id := range t.partitions {
		if _, ok := md.Partitions[id]; !ok {
			delete(t.partitions, id)
		}
	}
	for id, pm := range md.Partitions {
		p, ok := t.partitions[id]
		if !ok {
			p = &Partition{topic: t.name, id: id}
			t.partitions[id] = p
		}
		p.update(brokers, pm)
	}
}

// Name returns the topic's name.
func (t *Topic) Name() string { return t.name }

// Partitions returns a snapshot of the partition map.
func (t *Topic) Partitions() map[int32]*Partition {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	out := make(map[int32]*Partition, len(t.partitions))
	for id, p := range t.partitions {
		out[id] = p
	}
	return out
}

// LatestOffsets returns the next offset to be written on each partition of
// the topic, querying each partition leader with the requests batched per
// broker.
func (t *Topic) LatestOffsets() (map[int32]int64, error) {
	return t.offsets(LastOffset)
}

// EarliestOffsets returns the first available offset on each partition of
// the topic, querying each partition leader with the requests batched per
// broker.
func (t *Topic) EarliestOffsets() (map[int32]int64, error) {
	return t.offsets(FirstOffset)
}

func (t *Topic) offsets(time int64) (map[int32]int64, error) {
	byLeader := make(map[*Broker][]PartitionOffsetRequest)
	for id, p := range t.Partitions() {
		leader := p.Leader()
		if leader == nil {
			return nil, LeaderNotAvailable
		}
		byLeader[leader] = append(byLeader[leader], PartitionOffsetRequest{
			Topic:     t.name,
			Partition: id,
			Time:      time,
		})
	}

	out := make(map[int32]int64)
	for leader, partitions := range byLeader {
		res, err := leader.RequestOffsets(partitions)
		if err != nil {
			return nil, err
		}
		for i := range res.Topics {
			for _, p := range res.Topics[i].Partitions {
				if err := p.Err(); err != nil {
					return nil, err
				}
				if len(p.Offsets) > 0 {
					out[p.Partition] = p.Offsets[0]
				}
			}
		}
	}
	return out, nil
}
