package kafka

import "time"

// ProduceRequest publishes message sets to a set of partitions.
type ProduceRequest struct {
	// RequiredAcks configures how many replica acknowledgements the broker
	// waits for before answering. Zero means fire-and-forget: no response
	// is read and errors are undetectable.
	RequiredAcks int16

	// AckTimeout bounds how long the broker may wait for the required
	// acknowledgements. Default to 10s.
	AckTimeout time.Duration

	// Compression applied to the message sets, None by default.
	Compression Compression

	Topics []ProduceRequestTopic
}

type ProduceRequestTopic struct {
	Topic      string
	Partitions []ProduceRequestPartition
}

type ProduceRequestPartition struct {
	Partition int32
	Messages  []Message
}

// wire encodes the message sets eagerly, applying compression, so that the
// request value written to the connection has a fixed size.
func (r *ProduceRequest) wire() (produceRequestV0, error) {
	timeout := r.AckTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	req := produceRequestV0{
		RequiredAcks: r.RequiredAcks,
		Timeout:      int32(timeout / time.Millisecond),
	}
	codec := r.Compression.Codec()

	for _, t := range r.Topics {
		wt := produceRequestTopicV0{TopicName: t.Topic}
		for _, p := range t.Partitions {
			set, err := encodeMessageSet(p.Messages, codec)
			if err != nil {
				return produceRequestV0{}, err
			}
			wt.Partitions = append(wt.Partitions, produceRequestPartitionV0{
				Partition:  p.Partition,
				MessageSet: set,
			})
		}
		req.Topics = append(req.Topics, wt)
	}
	return req, nil
}

type produceRequestV0 struct {
	RequiredAcks int16
	Timeout      int32
	Topics       []produceRequestTopicV0
}

type produceRequestTopicV0 struct {
	TopicName  string
	Partitions []produceRequestPartitionV0
}

type produceRequestPartitionV0 struct {
	Partition  int32
	MessageSet []byte
}

func (r produceRequestV0) apiKey() apiKey         { return produceRequest }
func (r produceRequestV0) apiVersion() apiVersion { return v0 }

func (r produceRequestV0) size() int32 {
	return 2 + 4 + sizeofArray(len(r.Topics), func(i int) int32 {
		t := &r.Topics[i]
		return sizeofString(t.TopicName) + sizeofArray(len(t.Partitions), func(j int) int32 {
			return 4 + sizeofBytes(t.Partitions[j].MessageSet)
		})
	})
}

func (r produceRequestV0) writeTo(wb *writeBuffer) {
	wb.writeInt16(r.RequiredAcks)
	wb.writeInt32(r.Timeout)
	wb.writeArray(len(r.Topics), func(i int) {
		t := &r.Topics[i]
		wb.writeString(t.TopicName)
		wb.writeArray(len(t.Partitions), func(j int) {
			p := &t.Partitions[j]
			wb.writeInt32(p.Partition)
			wb.writeInt32(int32(len(p.MessageSet)))
			wb.write(p.MessageSet)
		})
	})
}

// ProduceResponse carries the per-partition outcome of a produce request.
type ProduceResponse struct {
	Topics []ProduceResponseTopic
}

type ProduceResponseTopic struct {
	Topic      string
	Partitions []ProduceResponsePartition
}

type ProduceResponsePartition struct {
	Partition int32
	ErrorCode int16
	Offset    int64
}

func (r *ProduceResponse) readFrom(rb *readBuffer) {
	rb.readArray(func() {
		t := ProduceResponseTopic{Topic: rb.readString()}
		rb.readArray(func() {
			t.Partitions = append(t.Partitions, ProduceResponsePartition{
				Partition: rb.readInt32(),
				ErrorCode: rb.readInt16(),
				Offset:    rb.readInt64(),
			})
		})
		r.Topics = append(r.Topics, t)
	})
}

func (r ProduceResponse) size() int32 {
	return sizeofArray(len(r.Topics), func(i int) int32 {
		t := &r.Topics[i]
		return sizeofString(t.Topic) + sizeofArray(len(t.Partitions), func(int) int32 { return 4 + 2 + 8 })
	})
}

func (r ProduceResponse) writeTo(wb *writeBuffer) {
	wb.writeArray(len(r.Topics), func(i int) {
		t := &r.Topics[i]
		wb.writeString(t.Topic)
		wb.writeArray(len(t.Partitions), func(j int) {
			p := &t.Partitions[j]
			wb.writeInt32(p.Partition)
			wb.writeInt16(p.ErrorCode)
			wb.writeInt64(p.Offset)
		})
	})
}
