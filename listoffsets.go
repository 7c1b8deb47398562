package kafka

const (
	// FirstOffset is the special timestamp requesting the earliest offset
	// still available on a partition.
	FirstOffset int64 = -2

	// LastOffset is the special timestamp requesting the offset that will
	// be assigned to the next produced message.
	LastOffset int64 = -1
)

// PartitionOffsetRequest asks a partition leader for the offsets logged
// before a point in time. The special values FirstOffset and LastOffset
// request the log boundaries.
type PartitionOffsetRequest struct {
	Topic     string
	Partition int32
	Time      int64

	// Maximum number of offsets returned, 1 by default.
	MaxOffsets int32
}

type offsetRequestV0 struct {
	ReplicaID int32
	Topics    []offsetRequestTopicV0
}

type offsetRequestTopicV0 struct {
	TopicName  string
	Partitions []offsetRequestPartitionV0
}

type offsetRequestPartitionV0 struct {
	Partition  int32
	Time       int64
	MaxOffsets int32
}

func (r offsetRequestV0) apiKey() apiKey         { return offsetRequest }
func (r offsetRequestV0) apiVersion() apiVersion { return v0 }

func (r offsetRequestV0) size() int32 {
	return 4 + sizeofArray(len(r.Topics), func(i int) int32 {
		t := &r.Topics[i]
		return sizeofString(t.TopicName) + sizeofArray(len(t.Partitions), func(int) int32 { return 4 + 8 + 4 })
	})
}

func (r offsetRequestV0) writeTo(wb *writeBuffer) {
	wb.writeInt32(r.ReplicaID)
	wb.writeArray(len(r.Topics), func(i int) {
		t := &r.Topics[i]
		wb.writeString(t.TopicName)
		wb.writeArray(len(t.Partitions), func(j int) {
			p := &t.Partitions[j]
			wb.writeInt32(p.Partition)
			wb.writeInt64(p.Time)
			wb.writeInt32(p.MaxOffsets)
		})
	})
}

func makeOffsetRequest(partitions []PartitionOffsetRequest) offsetRequestV0 {
	req := offsetRequestV0{ReplicaID: -1}
	index := make(map[string]int)
	for _, p := range partitions {
		maxOffsets := p.MaxOffsets
		if maxOffsets <= 0 {
			maxOffsets = 1
		}
		i, ok := index[p.Topic]
		if !ok {
			i = len(req.Topics)
			index[p.Topic] = i
			req.Topics = append(req.Topics, offsetRequestTopicV0{TopicName: p.Topic})
		}
		req.Topics[i].Partitions = append(req.Topics[i].Partitions, offsetRequestPartitionV0{
			Partition:  p.Partition,
			Time:       p.Time,
			MaxOffsets: maxOffsets,
		})
	}
	return req
}

// OffsetResponse carries the offsets returned for each requested partition.
type OffsetResponse struct {
	Topics []OffsetResponseTopic
}

type OffsetResponseTopic struct {
	Topic      string
	Partitions []OffsetResponsePartition
}

type OffsetResponsePartition struct {
	Partition int32
	ErrorCode int16
	Offsets   []int64
}

// Err returns the partition error code as an error, or nil.
func (p *OffsetResponsePartition) Err() error {
	if p.ErrorCode != 0 {
		return Error(p.ErrorCode)
	}
	return nil
}

func (r *OffsetResponse) readFrom(rb *readBuffer) {
	rb.readArray(func() {
		t := OffsetResponseTopic{Topic: rb.readString()}
		rb.readArray(func() {
			p := OffsetResponsePartition{
				Partition: rb.readInt32(),
				ErrorCode: rb.readInt16(),
			}
			rb.readArray(func() {
				p.Offsets = append(p.Offsets, rb.readInt64())
			})
			t.Partitions = append(t.Partitions, p)
		})
		r.Topics = append(r.Topics, t)
	})
}

func (r OffsetResponse) size() int32 {
	return sizeofArray(len(r.Topics), func(i int) int32 {
		t := &r.Topics[i]
		return sizeofString(t.Topic) + sizeofArray(len(t.Partitions), func(j int) int32 {
			return 4 + 2 + 4 + 8*int32(len(t.Partitions[j].Offsets))
		})
	})
}

func (r OffsetResponse) writeTo(wb *writeBuffer) {
	wb.writeArray(len(r.Topics), func(i int) {
		t := &r.Topics[i]
		wb.writeString(t.Topic)
		wb.writeArray(len(t.Partitions), func(j int) {
			p := &t.Partitions[j]
			wb.writeInt32(p.Partition)
			wb.writeInt16(p.ErrorCode)
			wb.writeArray(len(p.Offsets), func(k int) { wb.writeInt64(p.Offsets[k]) })
		})
	})
}
