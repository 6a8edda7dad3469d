package errs

import (
	"errors"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/angzarr-io/angzarr/internal/pb"
)

func TestConflict_setsCodeAndLatest(t *testing.T) {
	latest := &pb.EventBook{Cover: &pb.Cover{Domain: "orders"}}
	err := Conflict("orders", latest)
	if err.Code != codes.FailedPrecondition {
		t.Errorf("expected FailedPrecondition, got %v", err.Code)
	}
	if err.Latest != latest {
		t.Error("expected Latest to be the passed EventBook")
	}
}

func TestAborted_setsCode(t *testing.T) {
	err := Aborted("orders")
	if err.Code != codes.Aborted {
		t.Errorf("expected Aborted, got %v", err.Code)
	}
}

func TestNotFound_setsCodeAndMessage(t *testing.T) {
	err := NotFound("orders", "deadbeef")
	if err.Code != codes.NotFound {
		t.Errorf("expected NotFound, got %v", err.Code)
	}
	if err.Message != "orders/deadbeef not found" {
		t.Errorf("unexpected message %q", err.Message)
	}
}

func TestError_withCause_includesCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Unavailable("store unreachable", cause)
	want := "store unreachable: dial tcp: connection refused"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}

func TestError_withoutCause_isJustMessage(t *testing.T) {
	err := InvalidArgument("missing domain")
	if err.Error() != "missing domain" {
		t.Errorf("expected 'missing domain', got %q", err.Error())
	}
}

func TestUnwrap_returnsCause(t *testing.T) {
	cause := errors.New("boom")
	err := Internal("internal failure", cause)
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to unwrap to cause")
	}
}

func TestIs_matchesOnCodeAlone(t *testing.T) {
	a := NotFound("orders", "root1")
	b := NotFound("customers", "root2")
	if !errors.Is(a, b) {
		t.Error("expected two NotFound errors to match via errors.Is")
	}

	c := InvalidArgument("bad input")
	if errors.Is(a, c) {
		t.Error("expected NotFound and InvalidArgument not to match")
	}
}

func TestGRPCStatus_withoutLatest_roundTrips(t *testing.T) {
	err := DeadlineExceeded("cascade sync timed out")
	st, ok := status.FromError(err)
	if !ok {
		t.Fatal("expected a gRPC status error")
	}
	if st.Code() != codes.DeadlineExceeded {
		t.Errorf("expected DeadlineExceeded, got %v", st.Code())
	}
	if st.Message() != "cascade sync timed out" {
		t.Errorf("unexpected message %q", st.Message())
	}
}

func TestGRPCStatus_withLatest_attachesDetail(t *testing.T) {
	latest := &pb.EventBook{Cover: &pb.Cover{Domain: "orders"}}
	err := Conflict("orders", latest)
	st, ok := status.FromError(err)
	if !ok {
		t.Fatal("expected a gRPC status error")
	}
	if len(st.Details()) != 1 {
		t.Fatalf("expected 1 detail, got %d", len(st.Details()))
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"coordinator error", ResourceExhausted("too deep"), codes.ResourceExhausted},
		{"plain grpc status error", status.Error(codes.Unavailable, "down"), codes.Unavailable},
		{"unrelated error", errors.New("huh"), codes.Unknown},
	}
	for _, tt := range tests {
		if got := CodeOf(tt.err); got != tt.want {
			t.Errorf("%s: CodeOf() = %v, want %v", tt.name, got, tt.want)
		}
	}
}
