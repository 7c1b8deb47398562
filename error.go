package kafka

import (
	"errors"
	"fmt"
)

// Error represents the error codes returned by kafka brokers inside response
// payloads.
//
// Programs may use the standard errors.Is function to test errors returned by
// this package against these constants.
type Error int16

const (
	Unknown                      Error = -1
	OffsetOutOfRange             Error = 1
	InvalidMessage               Error = 2
	UnknownTopicOrPartition      Error = 3
	InvalidMessageSize           Error = 4
	LeaderNotAvailable           Error = 5
	NotLeaderForPartition        Error = 6
	RequestTimedOut              Error = 7
	BrokerNotAvailable           Error = 8
	ReplicaNotAvailable          Error = 9
	MessageSizeTooLarge          Error = 10
	StaleControllerEpoch         Error = 11
	OffsetMetadataTooLarge       Error = 12
	NetworkException             Error = 13
	GroupLoadInProgress          Error = 14
	GroupCoordinatorNotAvailable Error = 15
	NotCoordinatorForGroup       Error = 16
)

func (e Error) Error() string {
	return fmt.Sprintf("[%d] %s: %s", int16(e), e.Title(), e.Description())
}

// Temporary reports whether operations that failed with this error may
// succeed when retried.
func (e Error) Temporary() bool {
	switch e {
	case LeaderNotAvailable,
		BrokerNotAvailable,
		ReplicaNotAvailable,
		RequestTimedOut,
		NetworkException,
		GroupLoadInProgress,
		GroupCoordinatorNotAvailable,
		NotCoordinatorForGroup:
		return true
	default:
		return false
	}
}

// Title returns a human readable title for the error.
func (e Error) Title() string {
	switch e {
	case Unknown:
		return "Unknown"
	case OffsetOutOfRange:
		return "Offset Out Of Range"
	case InvalidMessage:
		return "Invalid Message"
	case UnknownTopicOrPartition:
		return "Unknown Topic Or Partition"
	case InvalidMessageSize:
		return "Invalid Message Size"
	case LeaderNotAvailable:
		return "Leader Not Available"
	case NotLeaderForPartition:
		return "Not Leader For Partition"
	case RequestTimedOut:
		return "Request Timed Out"
	case BrokerNotAvailable:
		return "Broker Not Available"
	case ReplicaNotAvailable:
		return "Replica Not Available"
	case MessageSizeTooLarge:
		return "Message Size Too Large"
	case StaleControllerEpoch:
		return "Stale Controller Epoch"
	case OffsetMetadataTooLarge:
		return "Offset Metadata Too Large"
	case NetworkException:
		return "Network Exception"
	case GroupLoadInProgress:
		return "Group Load In Progress"
	case GroupCoordinatorNotAvailable:
		return "Group Coordinator Not Available"
	case NotCoordinatorForGroup:
		return "Not Coordinator For Group"
	}
	return ""
}

// Description returns a human readable description of cause of the error.
func (e Error) Description() string {
	switch e {
	case Unknown:
		return "an unexpected server error occurred"
	case OffsetOutOfRange:
		return "the requested offset is outside the range of offsets maintained by the server for the given topic/partition"
	case InvalidMessage:
		return "the message contents does not match its CRC"
	case UnknownTopicOrPartition:
		return "the request is for a topic or partition that does not exist on this broker"
	case InvalidMessageSize:
		return "the message has a negative size"
	case LeaderNotAvailable:
		return "the cluster is in the middle of a leadership election and there is currently no leader for this partition"
	case NotLeaderForPartition:
		return "the client attempted to send messages to a replica that is not the leader for the partition"
	case RequestTimedOut:
		return "the request exceeded the user-specified time limit"
	case BrokerNotAvailable:
		return "the broker is not available"
	case ReplicaNotAvailable:
		return "a replica is expected on this broker, but is not"
	case MessageSizeTooLarge:
		return "the server has a configurable maximum message size to avoid unbounded memory allocation and the client attempted to produce a message larger than this maximum"
	case StaleControllerEpoch:
		return "the broker received an out of date controller epoch"
	case OffsetMetadataTooLarge:
		return "the metadata string passed with an offset commit was too large"
	case NetworkException:
		return "the server disconnected before a response was received"
	case GroupLoadInProgress:
		return "the coordinator is still loading offsets for the group"
	case GroupCoordinatorNotAvailable:
		return "the group coordinator is not available"
	case NotCoordinatorForGroup:
		return "the broker is not the coordinator for this group"
	}
	return ""
}

// ErrMetadataUnavailable is returned by Cluster.Update when neither a known
// broker nor any of the seed addresses answered a metadata request. There is
// no cluster state to reconcile against when this happens.
var ErrMetadataUnavailable = errors.New("kafka: no broker or seed address answered the metadata request")

// errHandlerClosed rejects requests submitted to a request handler after its
// connection was torn down.
var errHandlerClosed = errors.New("kafka: request handler closed")

// errCorruptedMessage reports a message whose payload does not match its CRC.
var errCorruptedMessage = errors.New("kafka: corrupted message: crc mismatch")

// BrokerAddressChangedError is returned by Cluster.Update when fresh metadata
// reports a known broker id at a different host or port. Brokers are not
// expected to move; the entry is left unmodified and the reconciliation
// aborts.
type BrokerAddressChangedError struct {
	ID      int32
	Host    string
	Port    int
	NewHost string
	NewPort int
}

func (e *BrokerAddressChangedError) Error() string {
	return fmt.Sprintf("kafka: broker %d changed address from %s:%d to %s:%d",
		e.ID, e.Host, e.Port, e.NewHost, e.NewPort)
}

// CoordinatorUnknownError is returned by Cluster.DiscoverOffsetManager when
// the coordinator id reported by the cluster is not present in the local
// broker map, which means the local topology view is stale.
type CoordinatorUnknownError struct {
	Group         string
	CoordinatorID int32
}

func (e *CoordinatorUnknownError) Error() string {
	return fmt.Sprintf("kafka: coordinator broker %d for group %q not found in the local broker map",
		e.CoordinatorID, e.Group)
}
