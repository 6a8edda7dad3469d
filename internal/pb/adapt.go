package pb

import (
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/protoadapt"
)

// ProtoMessageOf bridges a legacy Reset/String/ProtoMessage type (every
// message in this package) to the modern proto.Message interface that
// proto.Marshal, status.WithDetails, and anypb.New all expect.
func ProtoMessageOf(m protoadapt.MessageV1) proto.Message {
	return protoadapt.MessageV2Of(m)
}
