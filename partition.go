package kafka

import (
	"fmt"
	"sync"
)

// Partition tracks the replica assignment of one partition. The leader,
// replica and in-sync sets point at the live Broker instances held by the
// cluster and are swapped atomically on metadata refresh.
type Partition struct {
	topic string
	id    int32

	mutex    sync.Mutex
	leader   *Broker
	replicas []*Broker
	isr      []*Broker
}

// update resolves the broker ids of a metadata snapshot against the live
// broker map. Ids with no live broker are skipped, which can transiently
// leave the partition leaderless until the next refresh.
func (p *Partition) update(brokers map[int32]*Broker, md PartitionMetadata) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.leader = brokers[md.Leader]
	p.replicas = resolveBrokers(brokers, md.Replicas)
	p.isr = resolveBrokers(brokers, md.ISR)
}

func resolveBrokers(brokers map[int32]*Broker, ids []int32) []*Broker {
	out := make([]*Broker, 0, len(ids))
	for _, id := range ids {
		if b, ok := brokers[id]; ok {
			out = append(out, b)
		}
	}
	return out
}

// Topic returns the name of the topic the partition belongs to.
func (p *Partition) Topic() string { return p.topic }

// ID returns the partition's id within its topic.
func (p *Partition) ID() int32 { return p.id }

// Leader returns the broker currently leading the partition, nil if the
// last metadata refresh reported a leader the cluster holds no connection
// to.
func (p *Partition) Leader() *Broker {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.leader
}

// Replicas returns the brokers holding a replica of the partition.
func (p *Partition) Replicas() []*Broker {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	out := make([]*Broker, len(p.replicas))
	copy(out, p.replicas)
	return out
}

// ISR returns the brokers whose replica is in sync with the leader.
func (p *Partition) ISR() []*Broker {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	out := make([]*Broker, len(p.isr))
	copy(out, p.isr)
	return out
}

// LatestOffset returns the next offset to be written to the partition.
func (p *Partition) LatestOffset() (int64, error) {
	return p.offset(LastOffset)
}

// EarliestOffset returns the first offset still available.
func (p *Partition) EarliestOffset() (int64, error) {
	return p.offset(FirstOffset)
}

func (p *Partition) offset(time int64) (int64, error) {
	leader := p.Leader()
	if leader == nil {
		return 0, LeaderNotAvailable
	}
	res, err := leader.RequestOffsets([]PartitionOffsetRequest{{
		Topic:     p.topic,
		Partition: p.id,
		Time:      time,
	}})
	if err != nil {
		return 0, err
	}
	for i := range res.Topics {
		for _, part := range res.Topics[i].Partitions {
			if part.Partition != p.id {
				continue
			}
			if err := part.Err(); err != nil {
				return 0, err
			}
			if len(part.Offsets) == 0 {
				return 0, fmt.Errorf("kafka: empty offset list for %s/%d", p.topic, p.id)
			}
			return part.Offsets[0], nil
		}
	}
	return 0, fmt.Errorf("kafka: no offset entry for %s/%d in response", p.topic, p.id)
}
