package kafka

// PartitionOffset names a partition and the offset a consumer group has
// processed through, used as input to the group offset commit and fetch
// operations.
type PartitionOffset struct {
	Topic     string
	Partition int32
	Offset    int64
}

// PartitionOffsetCommitRequest is one entry of a group offset commit: the
// offset to persist for a partition, the commit timestamp, and an optional
// metadata string stored alongside the offset.
type PartitionOffsetCommitRequest struct {
	Topic     string
	Partition int32
	Offset    int64
	Timestamp int64
	Metadata  string
}

type offsetCommitRequestV1 struct {
	GroupID      string
	GenerationID int32
	ConsumerID   string
	Topics       []offsetCommitRequestTopicV1
}

type offsetCommitRequestTopicV1 struct {
	TopicName  string
	Partitions []offsetCommitRequestPartitionV1
}

type offsetCommitRequestPartitionV1 struct {
	Partition int32
	Offset    int64
	Timestamp int64
	Metadata  string
}

func (r offsetCommitRequestV1) apiKey() apiKey         { return offsetCommitRequest }
func (r offsetCommitRequestV1) apiVersion() apiVersion { return v1 }

func (r offsetCommitRequestV1) size() int32 {
	return sizeofString(r.GroupID) + 4 + sizeofString(r.ConsumerID) +
		sizeofArray(len(r.Topics), func(i int) int32 {
			t := &r.Topics[i]
			return sizeofString(t.TopicName) + sizeofArray(len(t.Partitions), func(j int) int32 {
				return 4 + 8 + 8 + sizeofString(t.Partitions[j].Metadata)
			})
		})
}

func (r offsetCommitRequestV1) writeTo(wb *writeBuffer) {
	wb.writeString(r.GroupID)
	wb.writeInt32(r.GenerationID)
	wb.writeString(r.ConsumerID)
	wb.writeArray(len(r.Topics), func(i int) {
		t := &r.Topics[i]
		wb.writeString(t.TopicName)
		wb.writeArray(len(t.Partitions), func(j int) {
			p := &t.Partitions[j]
			wb.writeInt32(p.Partition)
			wb.writeInt64(p.Offset)
			wb.writeInt64(p.Timestamp)
			wb.writeString(p.Metadata)
		})
	})
}

// makeOffsetCommitRequest groups the flat commit entries by topic. The
// generation id and consumer id fields carry the values used before group
// membership management existed: -1 and the empty string.
func makeOffsetCommitRequest(group string, entries []PartitionOffsetCommitRequest) offsetCommitRequestV1 {
	req := offsetCommitRequestV1{
		GroupID:      group,
		GenerationID: -1,
	}
	index := make(map[string]int)
	for _, e := range entries {
		i, ok := index[e.Topic]
		if !ok {
			i = len(req.Topics)
			index[e.Topic] = i
			req.Topics = append(req.Topics, offsetCommitRequestTopicV1{TopicName: e.Topic})
		}
		req.Topics[i].Partitions = append(req.Topics[i].Partitions, offsetCommitRequestPartitionV1{
			Partition: e.Partition,
			Offset:    e.Offset,
			Timestamp: e.Timestamp,
			Metadata:  e.Metadata,
		})
	}
	return req
}

// OffsetCommitResponse carries the per-partition outcome of a group offset
// commit.
type OffsetCommitResponse struct {
	Topics []OffsetCommitResponseTopic
}

type OffsetCommitResponseTopic struct {
	Topic      string
	Partitions []OffsetCommitResponsePartition
}

type OffsetCommitResponsePartition struct {
	Partition int32
	ErrorCode int16
}

// Err returns the partition error code as an error, or nil.
func (p *OffsetCommitResponsePartition) Err() error {
	if p.ErrorCode != 0 {
		return Error(p.ErrorCode)
	}
	return nil
}

func (r *OffsetCommitResponse) readFrom(rb *readBuffer) {
	rb.readArray(func() {
		t := OffsetCommitResponseTopic{Topic: rb.readString()}
		rb.readArray(func() {
			t.Partitions = append(t.Partitions, OffsetCommitResponsePartition{
				Partition: rb.readInt32(),
				ErrorCode: rb.readInt16(),
			})
		})
		r.Topics = append(r.Topics, t)
	})
}

func (r OffsetCommitResponse) size() int32 {
	return sizeofArray(len(r.Topics), func(i int) int32 {
		t := &r.Topics[i]
		return sizeofString(t.Topic) + sizeofArray(len(t.Partitions), func(int) int32 { return 4 + 2 })
	})
}

func (r OffsetCommitResponse) writeTo(wb *writeBuffer) {
	wb.writeArray(len(r.Topics), func(i int) {
		t := &r.Topics[i]
		wb.writeString(t.Topic)
		wb.writeArray(len(t.Partitions), func(j int) {
			p := &t.Partitions[j]
			wb.writeInt32(p.Partition)
			wb.writeInt16(p.ErrorCode)
		})
	})
}
