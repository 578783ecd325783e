package helpers

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"twsclient/src/logger"
)

func TestErrorKinds(t *testing.T) {
	err := ProtocolTooOld("snapshot market data", 35, 20)
	if !errors.Is(err, ErrProtocolTooOld) {
		t.Fatalf("%v is not ErrProtocolTooOld", err)
	}
	if errors.Is(err, ErrNotConnected) {
		t.Fatal("kinds must not overlap")
	}

	wrapped := fmt.Errorf("place order: %w", NotConnected("placeOrder"))
	if !errors.Is(wrapped, ErrNotConnected) {
		t.Fatal("kind lost through wrapping")
	}

	io := errors.New("broken pipe")
	d := Disconnected(io)
	if !errors.Is(d, ErrDisconnected) || !errors.Is(d, io) {
		t.Fatal("Disconnected must match its kind and its cause")
	}
}

func TestPeerError(t *testing.T) {
	pe := &PeerError{RequestID: 7, Code: 200, Message: "No security definition has been found"}
	if pe.Fatal() {
		t.Error("200 is not fatal")
	}
	if !errors.Is(pe, ErrPeerReported) {
		t.Error("PeerError should match ErrPeerReported")
	}
	var target *PeerError
	if !errors.As(fmt.Errorf("x: %w", pe), &target) || target.Code != 200 {
		t.Error("errors.As failed")
	}
	for _, code := range []int{502, 504, 1100, 1300} {
		if !IsFatalPeerCode(code) {
			t.Errorf("%d should be fatal", code)
		}
	}
}

func TestExecuteWithRetry(t *testing.T) {
	h := NewErrorHandler(logger.NewNopLogger("test"))
	h.MaxTries = 3

	calls := 0
	err := h.ExecuteWithRetry(context.Background(), "connect", func() error {
		calls++
		if calls < 2 {
			return errors.New("refused")
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Fatalf("err=%v calls=%d", err, calls)
	}

	calls = 0
	err = h.ExecuteWithRetry(context.Background(), "connect", func() error {
		calls++
		return ProtocolTooOld("handshake", 10, 1)
	})
	if !errors.Is(err, ErrProtocolTooOld) || calls != 1 {
		t.Fatalf("permanent error retried: err=%v calls=%d", err, calls)
	}
	if h.ErrorCount() != 1 {
		t.Errorf("error count = %d", h.ErrorCount())
	}
}

func TestExecuteWithRetryHonoursContext(t *testing.T) {
	h := NewErrorHandler(logger.NewNopLogger("test"))
	h.MaxTries = 0
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := h.ExecuteWithRetry(ctx, "connect", func() error { return errors.New("refused") })
	if err == nil {
		t.Fatal("expected an error once the context expired")
	}
}
