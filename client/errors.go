package client

import (
	"errors"
	"fmt"

	"github.com/irrkit/go-irrd/wire"
)

// Sentinel errors for pipeline operations.
var (
	// ErrDequeue indicates a response was requested but no query is
	// outstanding.
	ErrDequeue = errors.New("irrd: no outstanding query to pop")

	// ErrEmptyResponse indicates a response expected to carry data
	// contained no items.
	ErrEmptyResponse = errors.New("irrd: expected response data, got none")

	// ErrBufferFull indicates a single response item did not fit in the
	// pipeline's read buffer.
	ErrBufferFull = errors.New("irrd: response item exceeds pipeline buffer capacity")

	// ErrClosed indicates an operation on a closed connection.
	ErrClosed = errors.New("irrd: connection is closed")
)

// ServerError is a D/E/F error reply from the server. It is scoped to a
// single query: the pipeline remains usable and subsequent pops proceed
// with the next response.
type ServerError struct {
	// Query is the query the server rejected.
	Query Query
	// Code is the response status code (D, E or F).
	Code wire.Code
	// Message is the server-supplied text of an F reply.
	Message string
}

// Error implements the error interface.
func (e *ServerError) Error() string {
	switch e.Code {
	case wire.CodeKeyNotFound:
		return fmt.Sprintf("irrd: %s: key not found", e.Query)
	case wire.CodeKeyNotUnique:
		return fmt.Sprintf("irrd: %s: key not unique", e.Query)
	default:
		return fmt.Sprintf("irrd: %s: invalid query: %s", e.Query, e.Message)
	}
}

// IsKeyNotFound reports whether the server answered D (the key queried
// for does not exist).
func (e *ServerError) IsKeyNotFound() bool {
	return e.Code == wire.CodeKeyNotFound
}

// IsKeyNotUnique reports whether the server answered E (multiple copies
// of the key exist in one database).
func (e *ServerError) IsKeyNotUnique() bool {
	return e.Code == wire.CodeKeyNotUnique
}

// PreambleError is a malformed response status preamble. The byte stream
// can no longer be trusted to be response-aligned, so it is fatal to the
// pipeline.
type PreambleError struct {
	Err error
}

// Error implements the error interface.
func (e *PreambleError) Error() string {
	return fmt.Sprintf("irrd: malformed response preamble: %v", e.Err)
}

// Unwrap returns the underlying parse error.
func (e *PreambleError) Unwrap() error {
	return e.Err
}

// UnexpectedDataError reports a data-carrying preamble for a query that
// declared no data. The client's view of the protocol has diverged from
// the server's, so it is fatal to the pipeline.
type UnexpectedDataError struct {
	Query  Query
	Length int
}

// Error implements the error interface.
func (e *UnexpectedDataError) Error() string {
	return fmt.Sprintf("irrd: %s: unexpected %d byte response payload", e.Query, e.Length)
}

// ItemError reports a response item that framed correctly on the wire but
// whose content could not be parsed into the requested type. The framed
// bytes have already been consumed, so iteration over the remaining items
// can continue.
type ItemError struct {
	Query Query
	Err   error
}

// Error implements the error interface.
func (e *ItemError) Error() string {
	return fmt.Sprintf("irrd: %s: bad response item: %v", e.Query, e.Err)
}

// Unwrap returns the underlying parse error.
func (e *ItemError) Unwrap() error {
	return e.Err
}

// DataUnderrunError reports an end-of-response marker that arrived before
// the declared payload length was consumed.
type DataUnderrunError struct {
	Seen   int
	Expect int
}

// Error implements the error interface.
func (e *DataUnderrunError) Error() string {
	return fmt.Sprintf("irrd: response ended after %d of %d declared payload bytes", e.Seen, e.Expect)
}

// DataOverrunError reports more payload bytes consumed than the preamble
// declared, without an end-of-response marker.
type DataOverrunError struct {
	Seen   int
	Expect int
}

// Error implements the error interface.
func (e *DataOverrunError) Error() string {
	return fmt.Sprintf("irrd: consumed %d payload bytes of %d declared without end-of-response", e.Seen, e.Expect)
}

// continuable reports whether err is scoped to a single query, item or
// response, leaving the pipeline aligned and usable for further reads.
func continuable(err error) bool {
	var (
		serverErr *ServerError
		itemErr   *ItemError
		underrun  *DataUnderrunError
		overrun   *DataOverrunError
	)
	return errors.As(err, &serverErr) ||
		errors.As(err, &itemErr) ||
		errors.As(err, &underrun) ||
		errors.As(err, &overrun)
}
