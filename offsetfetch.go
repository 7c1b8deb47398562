package kafka

// PartitionOffsetFetchRequest names one partition whose committed group
// offset should be fetched.
type PartitionOffsetFetchRequest struct {
	Topic     string
	Partition int32
}

type offsetFetchRequestV1 struct {
	GroupID string
	Topics  []offsetFetchRequestTopicV1
}

type offsetFetchRequestTopicV1 struct {
	TopicName  string
	Partitions []int32
}

func (r offsetFetchRequestV1) apiKey() apiKey         { return offsetFetchRequest }
func (r offsetFetchRequestV1) apiVersion() apiVersion { return v1 }

func (r offsetFetchRequestV1) size() int32 {
	return sizeofString(r.GroupID) + sizeofArray(len(r.Topics), func(i int) int32 {
		t := &r.Topics[i]
		return sizeofString(t.TopicName) + sizeofInt32Array(t.Partitions)
	})
}

func (r offsetFetchRequestV1) writeTo(wb *writeBuffer) {
	wb.writeString(r.GroupID)
	wb.writeArray(len(r.Topics), func(i int) {
		t := &r.Topics[i]
		wb.writeString(t.TopicName)
		wb.writeInt32Array(t.Partitions)
	})
}

func makeOffsetFetchRequest(group string, partitions []PartitionOffsetFetchRequest) offsetFetchRequestV1 {
	req := offsetFetchRequestV1{GroupID: group}
	index := make(map[string]int)
	for _, p := range partitions {
		i, ok := index[p.Topic]
		if !ok {
			i = len(req.Topics)
			index[p.Topic] = i
			req.Topics = append(req.Topics, offsetFetchRequestTopicV1{TopicName: p.Topic})
		}
		req.Topics[i].Partitions = append(req.Topics[i].Partitions, p.Partition)
	}
	return req
}

// OffsetFetchResponse carries the committed offset and metadata stored for
// each requested partition of a consumer group.
type OffsetFetchResponse struct {
	Topics []OffsetFetchResponseTopic
}

type OffsetFetchResponseTopic struct {
	Topic      string
	Partitions []OffsetFetchResponsePartition
}

type OffsetFetchResponsePartition struct {
	Partition int32

	// Offset is -1 when no offset was committed for the partition.
	Offset    int64
	Metadata  string
	ErrorCode int16
}

// Err returns the partition error code as an error, or nil.
func (p *OffsetFetchResponsePartition) Err() error {
	if p.ErrorCode != 0 {
		return Error(p.ErrorCode)
	}
	return nil
}

func (r *OffsetFetchResponse) readFrom(rb *readBuffer) {
	rb.readArray(func() {
		t := OffsetFetchResponseTopic{Topic: rb.readString()}
		rb.readArray(func() {
			t.Partitions = append(t.Partitions, OffsetFetchResponsePartition{
				Partition: rb.readInt32(),
				Offset:    rb.readInt64(),
				Metadata:  rb.readString(),
				ErrorCode: rb.readInt16(),
			})
		})
		r.Topics = append(r.Topics, t)
	})
}

func (r OffsetFetchResponse) size() int32 {
	return sizeofArray(len(r.Topics), func(i int) int32 {
		t := &r.Topics[i]
		return sizeofString(t.Topic) + sizeofArray(len(t.Partitions), func(j int) int32 {
			return 4 + 8 + sizeofString(t.Partitions[j].Metadata) + 2
		})
	})
}

func (r OffsetFetchResponse) writeTo(wb *writeBuffer) {
	wb.writeArray(len(r.Topics), func(i int) {
		t := &r.Topics[i]
		wb.writeString(t.Topic)
		wb.writeArray(len(t.Partitions), func(j int) {
			p := &t.Partitions[j]
			wb.writeInt32(p.Partition)
			wb.writeInt64(p.Offset)
			wb.writeString(p.Metadata)
			wb.writeInt16(p.ErrorCode)
		})
	})
}
