package helpers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"

	"twsclient/src/logger"
	"twsclient/src/symbols"
)

// -----------------------------------------------------------------------------
// Error kinds
// -----------------------------------------------------------------------------

var (
	ErrNotConnected        = errors.New("not connected")
	ErrProtocolTooOld      = errors.New("protocol too old")
	ErrDisconnected        = errors.New("disconnected")
	ErrUnknownSubscription = errors.New("unknown subscription")
	ErrPeerReported        = errors.New("peer reported error")

	// Codec and table defects live with the symbol tables.
	ErrUnknownSymbol         = symbols.ErrUnknownSymbol
	ErrIncompleteSymbolTable = symbols.ErrIncompleteSymbolTable
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

// ClientError carries one of the kinds above plus context. errors.Is matches
// both the kind and anything in the cause chain.
type ClientError struct {
	Kind    error
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	msg := e.Message
	if msg == "" && e.Kind != nil {
		msg = e.Kind.Error()
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

func (e *ClientError) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

// -----------------------------------------------------------------------------

func NotConnected(operation string) error {
	return &ClientError{Kind: ErrNotConnected, Message: fmt.Sprintf("%s: not connected", operation)}
}

// -----------------------------------------------------------------------------

// ProtocolTooOld reports a feature that needs a newer server than the one
// negotiated.
func ProtocolTooOld(feature string, required, negotiated int) error {
	return &ClientError{
		Kind:    ErrProtocolTooOld,
		Message: fmt.Sprintf("%s requires server version %d, negotiated %d", feature, required, negotiated),
	}
}

// -----------------------------------------------------------------------------

func Disconnected(cause error) error {
	return &ClientError{Kind: ErrDisconnected, Message: "connection closed", Cause: cause}
}

// -----------------------------------------------------------------------------

func UnknownSubscription(requestID int) error {
	return &ClientError{Kind: ErrUnknownSubscription, Message: fmt.Sprintf("no subscription for request id %d", requestID)}
}

// -----------------------------------------------------------------------------
// Peer errors
// -----------------------------------------------------------------------------

// Codes after which the session cannot continue.
var fatalPeerCodes = map[int]bool{
	502:  true, // could not connect
	504:  true, // not connected
	1100: true, // connectivity lost
	1300: true, // socket port reset
}

// PeerError is an ERR_MSG received from the peer. RequestID is -1 when the
// message is not tied to a request.
type PeerError struct {
	RequestID int
	Code      int
	Message   string
}

func (e *PeerError) Error() string {
	if e.RequestID >= 0 {
		return fmt.Sprintf("peer error %d (request %d): %s", e.Code, e.RequestID, e.Message)
	}
	return fmt.Sprintf("peer error %d: %s", e.Code, e.Message)
}

func (e *PeerError) Is(target error) bool {
	return target == ErrPeerReported
}

// Fatal reports whether the code forces a disconnect.
func (e *PeerError) Fatal() bool {
	return IsFatalPeerCode(e.Code)
}

func IsFatalPeerCode(code int) bool {
	return fatalPeerCodes[code]
}

// -----------------------------------------------------------------------------
// Error Handler
// -----------------------------------------------------------------------------

type ErrorHandler struct {
	Logger                 *logger.Logger
	MaxTries               uint
	MaxElapsed             time.Duration
	MaxErrorsBeforeRestart int

	mu         sync.Mutex
	errorCount int
}

func NewErrorHandler(log *logger.Logger) *ErrorHandler {
	if log == nil {
		log = logger.NewLogger(nil, "ErrorHandler")
	}
	return &ErrorHandler{
		Logger:                 log,
		MaxTries:               5,
		MaxElapsed:             2 * time.Minute,
		MaxErrorsBeforeRestart: 10,
	}
}

// -----------------------------------------------------------------------------

func (e *ErrorHandler) ErrorCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.errorCount
}

// -----------------------------------------------------------------------------

func (e *ErrorHandler) ResetErrorCount() {
	e.mu.Lock()
	e.errorCount = 0
	e.mu.Unlock()
}

// -----------------------------------------------------------------------------

// ShouldRestart reports whether enough errors piled up to justify tearing the
// session down and starting over.
func (e *ErrorHandler) ShouldRestart() bool {
	return e.ErrorCount() >= e.MaxErrorsBeforeRestart
}

// -----------------------------------------------------------------------------

// ExecuteWithRetry runs fn with exponential backoff. Errors that retrying
// cannot fix (protocol too old, bad symbol tables, cancelled context) stop
// the loop immediately.
func (e *ErrorHandler) ExecuteWithRetry(ctx context.Context, operation string, fn func() error) error {
	op := func() (struct{}, error) {
		err := fn()
		if err == nil {
			return struct{}{}, nil
		}
		if errors.Is(err, ErrProtocolTooOld) || errors.Is(err, ErrIncompleteSymbolTable) ||
			errors.Is(err, context.Canceled) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}

	notify := func(err error, next time.Duration) {
		e.Logger.Warning("%s failed: %v. Retrying in %v", operation, err, next)
	}

	_, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(e.MaxTries),
		backoff.WithMaxElapsedTime(e.MaxElapsed),
		backoff.WithNotify(notify),
	)
	if err != nil {
		e.mu.Lock()
		e.errorCount++
		e.mu.Unlock()
		e.Logger.Error("%s failed: %v", operation, err)
		return err
	}

	e.mu.Lock()
	if e.errorCount > 0 {
		e.errorCount--
	}
	e.mu.Unlock()
	return nil
}

// -----------------------------------------------------------------------------

func (e *ErrorHandler) Handle(err error, context string) {
	if err != nil {
		e.mu.Lock()
		e.errorCount++
		e.mu.Unlock()
		e.Logger.Error("Error in %s: %v", context, err)
	}
}
