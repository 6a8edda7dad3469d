// Package errs defines the coordination core's server-side error type: a
// gRPC status code, a message, and (for sequence conflicts) the latest
// EventBook so a caller can rebuild without a second round trip. It mirrors
// client/go's ClientError, turned around to the server side of the same
// conversation.
package errs

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/angzarr-io/angzarr/internal/pb"
)

// CoordinatorError is returned by every coordinator operation that can fail
// in a way a caller needs to distinguish (conflict vs. rejection vs. not
// found vs. internal).
type CoordinatorError struct {
	Code    codes.Code
	Message string
	Cause   error
	// Latest is attached to conflict errors so the caller can retry without
	// an extra GetEventBook round trip.
	Latest *pb.EventBook
}

func (e *CoordinatorError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *CoordinatorError) Unwrap() error { return e.Cause }

// GRPCStatus lets status.FromError and grpc's interceptors extract the code
// and details directly from a CoordinatorError.
func (e *CoordinatorError) GRPCStatus() *status.Status {
	st, err := pb.ConflictStatus(e.Code, e.Message, e.Latest)
	if err != nil {
		return status.New(e.Code, e.Message)
	}
	return st
}

// Conflict builds a FAILED_PRECONDITION error carrying the latest EventBook,
// used by MERGE_COMMUTATIVE after retries are exhausted (§7).
func Conflict(domain string, latest *pb.EventBook) *CoordinatorError {
	return &CoordinatorError{
		Code:    codes.FailedPrecondition,
		Message: fmt.Sprintf("sequence conflict appending to domain %q", domain),
		Latest:  latest,
	}
}

// Aborted builds an ABORTED error for MERGE_STRICT's fail-fast behavior.
func Aborted(domain string) *CoordinatorError {
	return &CoordinatorError{Code: codes.Aborted, Message: fmt.Sprintf("concurrent write to domain %q aborted", domain)}
}

// NotFound builds a NOT_FOUND error for an unknown aggregate root.
func NotFound(domain, rootHex string) *CoordinatorError {
	return &CoordinatorError{Code: codes.NotFound, Message: fmt.Sprintf("%s/%s not found", domain, rootHex)}
}

// InvalidArgument builds an INVALID_ARGUMENT error for malformed requests.
func InvalidArgument(msg string) *CoordinatorError {
	return &CoordinatorError{Code: codes.InvalidArgument, Message: msg}
}

// ResourceExhausted builds a RESOURCE_EXHAUSTED error for cascade-depth
// overruns (§5).
func ResourceExhausted(msg string) *CoordinatorError {
	return &CoordinatorError{Code: codes.ResourceExhausted, Message: msg}
}

// Unavailable wraps a downstream transport/driver failure.
func Unavailable(msg string, cause error) *CoordinatorError {
	return &CoordinatorError{Code: codes.Unavailable, Message: msg, Cause: cause}
}

// Internal wraps an unexpected internal failure.
func Internal(msg string, cause error) *CoordinatorError {
	return &CoordinatorError{Code: codes.Internal, Message: msg, Cause: cause}
}

// DeadlineExceeded builds a DEADLINE_EXCEEDED error for SyncMode CASCADE/
// SIMPLE timeouts (§5).
func DeadlineExceeded(msg string) *CoordinatorError {
	return &CoordinatorError{Code: codes.DeadlineExceeded, Message: msg}
}

// Is lets errors.Is match on code alone, so callers can write
// errors.Is(err, errs.Conflict("", nil)) style checks against a sentinel
// built with the same code.
func (e *CoordinatorError) Is(target error) bool {
	var t *CoordinatorError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// CodeOf extracts the gRPC code from any error, defaulting to Unknown.
func CodeOf(err error) codes.Code {
	var ce *CoordinatorError
	if errors.As(err, &ce) {
		return ce.Code
	}
	if s, ok := status.FromError(err); ok {
		return s.Code()
	}
	return codes.Unknown
}
