package kafka

// groupCoordinatorRequestV0 asks any broker which node owns the committed
// offsets of a consumer group.
type groupCoordinatorRequestV0 struct {
	GroupID string
}

func (r groupCoordinatorRequestV0) apiKey() apiKey         { return groupCoordinatorRequest }
func (r groupCoordinatorRequestV0) apiVersion() apiVersion { return v0 }

func (r groupCoordinatorRequestV0) size() int32 {
	return sizeofString(r.GroupID)
}

func (r groupCoordinatorRequestV0) writeTo(wb *writeBuffer) {
	wb.writeString(r.GroupID)
}

type groupCoordinatorResponseV0 struct {
	ErrorCode   int16
	Coordinator brokerMetadataV0
}

func (r *groupCoordinatorResponseV0) readFrom(rb *readBuffer) {
	r.ErrorCode = rb.readInt16()
	r.Coordinator.readFrom(rb)
}

func (r groupCoordinatorResponseV0) size() int32 {
	return 2 + r.Coordinator.size()
}

func (r groupCoordinatorResponseV0) writeTo(wb *writeBuffer) {
	wb.writeInt16(r.ErrorCode)
	r.Coordinator.writeTo(wb)
}
