package kafka

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestBroker(t *testing.T, h *fakeHandler, rec *sleepRecorder) *Broker {
	t.Helper()
	config := BrokerConfig{
		connect: func(string, int, BrokerConfig) (RequestHandler, error) { return h, nil },
	}
	if rec != nil {
		config.sleep = rec.sleep
	}
	b, err := NewBroker(0, "10.0.0.1", 9092, config)
	require.NoError(t, err)
	return b
}

func TestNewBrokerConnectsSynchronously(t *testing.T) {
	dialed := 0
	h := &fakeHandler{}
	config := BrokerConfig{
		connect: func(host string, port int, _ BrokerConfig) (RequestHandler, error) {
			dialed++
			require.Equal(t, "10.0.0.1", host)
			require.Equal(t, 9092, port)
			return h, nil
		},
	}

	b, err := NewBroker(3, "10.0.0.1", 9092, config)
	require.NoError(t, err)
	require.Equal(t, 1, dialed, "construction opens the connection")
	require.True(t, b.Connected())
	require.Equal(t, int32(3), b.ID())

	require.NoError(t, b.Close())
	require.False(t, b.Connected())
	require.True(t, h.isClosed())
}

func TestNewBrokerConnectFailure(t *testing.T) {
	config := BrokerConfig{
		connect: func(string, int, BrokerConfig) (RequestHandler, error) {
			return nil, errors.New("connection refused")
		},
	}

	b, err := NewBroker(0, "10.0.0.1", 9092, config)
	require.Error(t, err)
	require.Nil(t, b, "a broker that failed to connect must not exist")
}

func TestFetchMessagesSendsFixedWaitAndMinBytes(t *testing.T) {
	h := &fakeHandler{respond: respondWith(encodePayload(t, FetchResponse{
		Topics: []FetchResponseTopic{{
			Topic: "events",
			Partitions: []FetchResponsePartition{{
				Partition:     0,
				HighWatermark: 42,
			}},
		}},
	}))}
	b := newTestBroker(t, h, nil)

	res, err := b.FetchMessages([]PartitionFetchRequest{
		{Topic: "events", Partition: 0, Offset: 12},
	}, 30*time.Second, 1024)
	require.NoError(t, err)
	require.Equal(t, int64(42), res.Topics[0].Partitions[0].HighWatermark)

	require.Len(t, h.requests, 1)
	req := h.requests[0].(fetchRequestV0)
	require.Equal(t, int32(10000), req.MaxWaitTime)
	require.Equal(t, int32(1), req.MinBytes)
	require.Equal(t, int32(-1), req.ReplicaID)
	require.Equal(t, int64(12), req.Topics[0].Partitions[0].FetchOffset)
}

func TestProduceMessagesNoAcksSkipsResponse(t *testing.T) {
	h := &fakeHandler{}
	b := newTestBroker(t, h, nil)

	err := b.ProduceMessages(&ProduceRequest{
		RequiredAcks: 0,
		Topics: []ProduceRequestTopic{{
			Topic: "events",
			Partitions: []ProduceRequestPartition{{
				Partition: 0,
				Messages:  []Message{{Value: []byte("hello")}},
			}},
		}},
	})
	require.NoError(t, err)
	require.Len(t, h.norespons, 1, "acks=0 must not await a response")
	require.Empty(t, h.requests)
}

func TestProduceMessagesSurfacesPartitionError(t *testing.T) {
	h := &fakeHandler{respond: respondWith(encodePayload(t, ProduceResponse{
		Topics: []ProduceResponseTopic{{
			Topic: "events",
			Partitions: []ProduceResponsePartition{{
				Partition: 0,
				ErrorCode: int16(NotLeaderForPartition),
			}},
		}},
	}))}
	b := newTestBroker(t, h, nil)

	err := b.ProduceMessages(&ProduceRequest{
		RequiredAcks: 1,
		Topics: []ProduceRequestTopic{{
			Topic: "events",
			Partitions: []ProduceRequestPartition{{
				Partition: 0,
				Messages:  []Message{{Value: []byte("hello")}},
			}},
		}},
	})
	require.Equal(t, NotLeaderForPartition, err)
}

func TestRequestOffsets(t *testing.T) {
	h := &fakeHandler{respond: respondWith(encodePayload(t, OffsetResponse{
		Topics: []OffsetResponseTopic{{
			Topic: "events",
			Partitions: []OffsetResponsePartition{{
				Partition: 0,
				Offsets:   []int64{73},
			}},
		}},
	}))}
	b := newTestBroker(t, h, nil)

	res, err := b.RequestOffsets([]PartitionOffsetRequest{
		{Topic: "events", Partition: 0, Time: LastOffset},
	})
	require.NoError(t, err)
	require.Equal(t, []int64{73}, res.Topics[0].Partitions[0].Offsets)

	req := h.requests[0].(offsetRequestV0)
	require.Equal(t, LastOffset, req.Topics[0].Partitions[0].Time)
	require.Equal(t, int32(1), req.Topics[0].Partitions[0].MaxOffsets)
}

func TestCommitConsumerGroupOffsetsRetriesThenSucceeds(t *testing.T) {
	attempts := 0
	okPayload := encodePayload(t, OffsetCommitResponse{
		Topics: []OffsetCommitResponseTopic{{
			Topic:      "events",
			Partitions: []OffsetCommitResponsePartition{{Partition: 0}},
		}},
	})
	failPayload := encodePayload(t, OffsetCommitResponse{
		Topics: []OffsetCommitResponseTopic{{
			Topic: "events",
			Partitions: []OffsetCommitResponsePartition{{
				Partition: 0,
				ErrorCode: int16(GroupLoadInProgress),
			}},
		}},
	})
	h := &fakeHandler{respond: func(Request) ([]byte, error) {
		attempts++
		if attempts < 3 {
			return failPayload, nil
		}
		return okPayload, nil
	}}
	rec := &sleepRecorder{}
	b := newTestBroker(t, h, rec)

	before := time.Now().Unix()
	b.CommitConsumerGroupOffsets("readers", []PartitionOffset{
		{Topic: "events", Partition: 0, Offset: 100},
	}, 3)

	require.Equal(t, 3, attempts)
	require.Equal(t, []time.Duration{1 * time.Second, 4 * time.Second}, rec.slept)

	req := h.requests[0].(offsetCommitRequestV1)
	require.Equal(t, "readers", req.GroupID)
	require.Equal(t, int32(-1), req.GenerationID)
	require.Equal(t, "", req.ConsumerID)
	require.Equal(t, int64(100), req.Topics[0].Partitions[0].Offset)
	require.Equal(t, "", req.Topics[0].Partitions[0].Metadata)
	require.GreaterOrEqual(t, req.Topics[0].Partitions[0].Timestamp, before)
}

func TestCommitConsumerGroupOffsetsExhaustionIsSilent(t *testing.T) {
	h := &fakeHandler{respond: func(Request) ([]byte, error) {
		return nil, errors.New("broken pipe")
	}}
	rec := &sleepRecorder{}
	b := newTestBroker(t, h, rec)

	b.CommitConsumerGroupOffsets("readers", []PartitionOffset{
		{Topic: "events", Partition: 0, Offset: 100},
	}, 3)

	require.Equal(t, 3, h.requestCount())
	require.Equal(t, []time.Duration{1 * time.Second, 4 * time.Second}, rec.slept,
		"no sleep after the final attempt")
}

func TestFetchConsumerGroupOffsets(t *testing.T) {
	h := &fakeHandler{respond: respondWith(encodePayload(t, OffsetFetchResponse{
		Topics: []OffsetFetchResponseTopic{{
			Topic: "events",
			Partitions: []OffsetFetchResponsePartition{{
				Partition: 0,
				Offset:    100,
			}},
		}},
	}))}
	b := newTestBroker(t, h, nil)

	res := b.FetchConsumerGroupOffsets("readers", []PartitionOffsetFetchRequest{
		{Topic: "events", Partition: 0},
	}, 3)
	require.NotNil(t, res)
	require.Equal(t, int64(100), res.Topics[0].Partitions[0].Offset)

	req := h.requests[0].(offsetFetchRequestV1)
	require.Equal(t, "readers", req.GroupID)
}

func TestFetchConsumerGroupOffsetsExhaustionReturnsNil(t *testing.T) {
	h := &fakeHandler{respond: func(Request) ([]byte, error) {
		return nil, errors.New("broken pipe")
	}}
	rec := &sleepRecorder{}
	b := newTestBroker(t, h, rec)

	res := b.FetchConsumerGroupOffsets("readers", []PartitionOffsetFetchRequest{
		{Topic: "events", Partition: 0},
	}, 3)
	require.Nil(t, res, "exhaustion yields no result, not an error")
	require.Equal(t, 3, h.requestCount())
}

func TestRequestMetadata(t *testing.T) {
	h := &fakeHandler{respond: respondWith(metadataPayload(t,
		map[int32]string{0: "10.0.0.1:9092", 1: "10.0.0.2:9092"},
		map[string]map[int32]int32{"events": {0: 0, 1: 1}},
	))}
	b := newTestBroker(t, h, nil)

	md, err := b.RequestMetadata("events")
	require.NoError(t, err)
	require.Len(t, md.Brokers, 2)
	require.Equal(t, "10.0.0.2", md.Brokers[1].Host)
	require.Equal(t, int32(1), md.Topics["events"].Partitions[1].Leader)

	req := h.requests[0].(topicMetadataRequestV0)
	require.Equal(t, []string{"events"}, []string(req))
}
