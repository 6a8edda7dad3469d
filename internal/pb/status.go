package pb

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ConflictStatus builds a FAILED_PRECONDITION/ABORTED status carrying the
// latest EventBook as a detail, so a caller can rebuild its command against
// current state without a second round trip. latest is wrapped through
// protoadapt.MessageV2Of since EventBook only implements the legacy
// Reset/String/ProtoMessage trio, not the modern proto.Message interface
// status.WithDetails expects.
func ConflictStatus(code codes.Code, message string, latest *EventBook) (*status.Status, error) {
	st := status.New(code, message)
	if latest == nil {
		return st, nil
	}
	return st.WithDetails(ProtoMessageOf(latest))
}
