package client

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/irrkit/go-irrd/internal/ring"
	"github.com/irrkit/go-irrd/metrics"
	"github.com/irrkit/go-irrd/wire"
)

// ParseFunc converts the decoded text of one response item into T.
type ParseFunc[T any] func(string) (T, error)

// ParseString is the identity ParseFunc, for callers that want raw
// response items.
func ParseString(s string) (string, error) {
	return s, nil
}

// Pipeline executes a sequence of queries on a Connection using
// pipelining: queries are written back-to-back without waiting for
// individual responses, and responses are read back in transmit order.
//
// Create one with Connection.Pipeline. A Pipeline must not be shared
// between goroutines, and only one Pipeline should use a Connection at
// any one time.
type Pipeline struct {
	conn   *Connection
	buf    *ring.Buffer
	queue  sendQueue
	logger *slog.Logger

	// current is the live response reader, if any. Pop drains it before
	// parsing the next preamble, so the buffer is always aligned on a
	// response boundary when a new reader is constructed.
	current interface{ Close() error }
}

func newPipeline(conn *Connection, capacity int) *Pipeline {
	return &Pipeline{
		conn:   conn,
		buf:    ring.New(capacity),
		queue:  newSendQueue(conn.config.MaxInFlight, conn.config.MinBatch),
		logger: conn.logger.With("component", "pipeline"),
	}
}

// Push adds a query to be executed in order on this pipeline. It may
// block while a batch of queued queries is flushed to the socket.
func (p *Pipeline) Push(query Query) error {
	p.logger.Debug("pushing query", "query", query)
	p.queue.push(query)
	return p.flush()
}

// Extend pushes each query in order, best-effort: enqueue errors are
// logged and the remaining queries are still pushed.
func (p *Pipeline) Extend(queries ...Query) {
	for _, query := range queries {
		if err := p.Push(query); err != nil {
			p.logger.Error("error enqueueing query", "query", query, "err", err)
		}
	}
}

func (p *Pipeline) flush() error {
	sent, err := p.queue.flush(func(query Query) error {
		metrics.ObserveQuerySent(query.verb())
		return p.conn.send(query.Cmd())
	})
	metrics.ObserveFlush(sent)
	if err != nil {
		return err
	}
	if sent > 0 {
		p.logger.Debug("flushed query batch", "sent", sent)
	}
	return nil
}

// fetch refills the read buffer from the socket.
func (p *Pipeline) fetch() error {
	p.buf.Shift()
	space := p.buf.Space()
	if len(space) == 0 {
		return ErrBufferFull
	}
	n, err := p.conn.read(space)
	if n > 0 {
		p.buf.Fill(n)
	}
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return fmt.Errorf("read response data: %w", err)
	}
	p.logger.Debug("fetched response bytes", "n", n)
	return nil
}

// Pop returns a reader for the response to the oldest outstanding query,
// or nil when no queries are outstanding.
//
// Pop blocks until the response preamble has been read. A server-side
// error reply (key not found, key not unique, invalid query) is returned
// as a *ServerError carrying the originating query; the pipeline remains
// usable and the next Pop proceeds with the following response. Items of
// the returned Response are parsed into T during iteration.
func Pop[T any](p *Pipeline, parse ParseFunc[T]) (*Response[T], error) {
	if err := p.flush(); err != nil {
		return nil, err
	}
	// The previous reader must finish before the next preamble can be
	// located. Draining here is what keeps the buffer aligned when a
	// caller abandons a response early.
	if p.current != nil {
		if err := p.current.Close(); err != nil && !continuable(err) {
			return nil, err
		}
	}
	query, ok := p.queue.pop()
	if !ok {
		return nil, nil
	}
	p.logger.Debug("popped query response", "query", query)

	var status wire.Status
	for {
		consumed, parsed, err := wire.ParseStatus(p.buf.Data())
		if err == nil {
			p.buf.Consume(consumed)
			status = parsed
			break
		}
		if errors.Is(err, wire.ErrIncomplete) {
			if ferr := p.fetch(); ferr != nil {
				return nil, ferr
			}
			continue
		}
		return nil, &PreambleError{Err: err}
	}
	metrics.ObserveResponse(string(status.Code))

	if !status.OK() {
		return nil, &ServerError{Query: query, Code: status.Code, Message: status.Message}
	}
	expect := 0
	if status.Code == wire.CodeData {
		expect = status.Length
	}
	switch {
	case query.ExpectsData():
		if expect == 0 {
			p.logger.Warn("unexpected zero length response", "query", query)
		}
	case expect != 0:
		return nil, &UnexpectedDataError{Query: query, Length: expect}
	}
	response := &Response[T]{query: query, pipeline: p, parse: parse, expect: expect}
	p.current = response
	return response, nil
}

// Responses flattens all outstanding responses into a single lazy stream
// of response items, parsed into T. See ResponseStream.
func Responses[T any](p *Pipeline, parse ParseFunc[T]) *ResponseStream[T] {
	return &ResponseStream[T]{pipeline: p, parse: parse}
}

// Clear consumes and discards any unread responses so the pipeline can
// be reused for a new sequence of queries.
//
// Responses are transmitted serially and matched to queries by order
// alone, so unconsumed responses must be read off the wire before new
// queries can be matched correctly. Item- and query-scoped errors
// encountered while draining are logged and swallowed; a fatal error
// abandons the drain.
func (p *Pipeline) Clear() {
	stream := Responses(p, ParseString)
	for {
		item, err := stream.Next()
		switch {
		case err == nil:
			p.logger.Debug("discarding unread response item", "item", item.Content())
		case errors.Is(err, io.EOF):
			return
		case continuable(err):
			p.logger.Warn("error while draining pipeline", "err", err)
		default:
			p.logger.Warn("abandoning pipeline drain", "err", err)
			return
		}
	}
}

// FromInitial creates a pipeline seeded with a single bootstrapping
// query. As each item of the initial response arrives, expand is invoked
// with it and any queries expand returns are pushed onto the same
// pipeline, keeping the wire busy during fan-out expansion (for example,
// as-set expansion into per-ASN route queries).
//
// expand is also invoked for item-scoped errors, with a zero item and
// the error; it may return further queries or nil. Fatal errors abort
// and are returned.
func FromInitial[T any](conn *Connection, initial Query, parse ParseFunc[T], expand func(ResponseItem[T], error) []Query) (*Pipeline, error) {
	p := conn.Pipeline()
	if err := p.Push(initial); err != nil {
		return nil, err
	}
	response, err := Pop(p, parse)
	if err != nil {
		return nil, err
	}
	if response == nil {
		return nil, ErrDequeue
	}
	for {
		item, err := response.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil && !continuable(err) {
			return nil, err
		}
		for _, query := range expand(item, err) {
			if perr := p.Push(query); perr != nil {
				p.logger.Error("error enqueueing query", "query", query, "err", perr)
				return nil, perr
			}
		}
		if err != nil && response.finished {
			break
		}
	}
	return p, nil
}
