package kafka

// PartitionFetchRequest names one partition to fetch messages from and the
// offset to start at.
type PartitionFetchRequest struct {
	Topic     string
	Partition int32

	// Offset of the first message to fetch.
	Offset int64

	// Maximum amount of message set bytes the broker may return for this
	// partition.
	MaxBytes int32
}

type fetchRequestV0 struct {
	ReplicaID   int32
	MaxWaitTime int32
	MinBytes    int32
	Topics      []fetchRequestTopicV0
}

type fetchRequestTopicV0 struct {
	TopicName  string
	Partitions []fetchRequestPartitionV0
}

type fetchRequestPartitionV0 struct {
	Partition   int32
	FetchOffset int64
	MaxBytes    int32
}

func (r fetchRequestV0) apiKey() apiKey         { return fetchRequest }
func (r fetchRequestV0) apiVersion() apiVersion { return v0 }

func (r fetchRequestV0) size() int32 {
	return 4 + 4 + 4 + sizeofArray(len(r.Topics), func(i int) int32 {
		t := &r.Topics[i]
		return sizeofString(t.TopicName) + sizeofArray(len(t.Partitions), func(int) int32 { return 4 + 8 + 4 })
	})
}

func (r fetchRequestV0) writeTo(wb *writeBuffer) {
	wb.writeInt32(r.ReplicaID)
	wb.writeInt32(r.MaxWaitTime)
	wb.writeInt32(r.MinBytes)
	wb.writeArray(len(r.Topics), func(i int) {
		t := &r.Topics[i]
		wb.writeString(t.TopicName)
		wb.writeArray(len(t.Partitions), func(j int) {
			p := &t.Partitions[j]
			wb.writeInt32(p.Partition)
			wb.writeInt64(p.FetchOffset)
			wb.writeInt32(p.MaxBytes)
		})
	})
}

// makeFetchRequest groups the flat per-partition requests by topic,
// preserving the order in which topics first appear.
func makeFetchRequest(partitions []PartitionFetchRequest, maxWaitTime, minBytes int32) fetchRequestV0 {
	req := fetchRequestV0{
		ReplicaID:   -1,
		MaxWaitTime: maxWaitTime,
		MinBytes:    minBytes,
	}
	index := make(map[string]int)
	for _, p := range partitions {
		maxBytes := p.MaxBytes
		if maxBytes <= 0 {
			maxBytes = defaultFetchMaxBytes
		}
		i, ok := index[p.Topic]
		if !ok {
			i = len(req.Topics)
			index[p.Topic] = i
			req.Topics = append(req.Topics, fetchRequestTopicV0{TopicName: p.Topic})
		}
		req.Topics[i].Partitions = append(req.Topics[i].Partitions, fetchRequestPartitionV0{
			Partition:   p.Partition,
			FetchOffset: p.Offset,
			MaxBytes:    maxBytes,
		})
	}
	return req
}

const defaultFetchMaxBytes = 1024 * 1024

// FetchResponse carries the messages returned for each requested partition.
type FetchResponse struct {
	Topics []FetchResponseTopic
}

type FetchResponseTopic struct {
	Topic      string
	Partitions []FetchResponsePartition
}

type FetchResponsePartition struct {
	Partition     int32
	ErrorCode     int16
	HighWatermark int64
	Messages      []Message
}

// Err returns the partition error code as an error, or nil.
func (p *FetchResponsePartition) Err() error {
	if p.ErrorCode != 0 {
		return Error(p.ErrorCode)
	}
	return nil
}

func (r *FetchResponse) readFrom(rb *readBuffer) {
	rb.readArray(func() {
		t := FetchResponseTopic{Topic: rb.readString()}
		rb.readArray(func() {
			p := FetchResponsePartition{
				Partition:     rb.readInt32(),
				ErrorCode:     rb.readInt16(),
				HighWatermark: rb.readInt64(),
			}
			size := rb.readInt32()
			if rb.err == nil && size > 0 {
				set := make([]byte, int(size))
				rb.readFull(set)
				if rb.err == nil {
					msgs, err := decodeMessageSet(set)
					if err != nil {
						rb.setErr(err)
						return
					}
					p.Messages = msgs
				}
			}
			t.Partitions = append(t.Partitions, p)
		})
		r.Topics = append(r.Topics, t)
	})
}

func (r FetchResponse) size() int32 {
	return sizeofArray(len(r.Topics), func(i int) int32 {
		t := &r.Topics[i]
		return sizeofString(t.Topic) + sizeofArray(len(t.Partitions), func(j int) int32 {
			set, _ := encodeMessageSet(t.Partitions[j].Messages, nil)
			return 4 + 2 + 8 + 4 + int32(len(set))
		})
	})
}

func (r FetchResponse) writeTo(wb *writeBuffer) {
	wb.writeArray(len(r.Topics), func(i int) {
		t := &r.Topics[i]
		wb.writeString(t.Topic)
		wb.writeArray(len(t.Partitions), func(j int) {
			p := &t.Partitions[j]
			set, err := encodeMessageSet(p.Messages, nil)
			if err != nil && wb.err == nil {
				wb.err = err
			}
			wb.writeInt32(p.Partition)
			wb.writeInt16(p.ErrorCode)
			wb.writeInt64(p.HighWatermark)
			wb.writeBytes(set)
		})
	})
}
