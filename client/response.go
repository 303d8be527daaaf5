package client

import (
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/irrkit/go-irrd/metrics"
	"github.com/irrkit/go-irrd/wire"
)

// ResponseItem is an individual data element of a query response,
// parsed into T and carrying the query it answers.
type ResponseItem[T any] struct {
	content T
	query   Query
}

// Content returns the parsed content of the item.
func (i ResponseItem[T]) Content() T {
	return i.content
}

// Query returns the query this item was provided in response to.
func (i ResponseItem[T]) Query() Query {
	return i.query
}

// Response reads the items of a single query response. It is a one-shot,
// fused reader: Next returns items in payload order and io.EOF once the
// end-of-response marker has been consumed, after which further calls
// keep returning io.EOF.
//
// Constructed by Pop. A Response borrows its Pipeline's read buffer;
// finish or Close it before popping the next response.
type Response[T any] struct {
	query    Query
	pipeline *Pipeline
	parse    ParseFunc[T]
	expect   int
	seen     int
	finished bool
}

// Query returns the query this is a response to.
func (r *Response[T]) Query() Query {
	return r.query
}

func (r *Response[T]) finish() {
	r.finished = true
	if r.pipeline.current == any(r) {
		r.pipeline.current = nil
	}
}

// Next returns the next item of the response. It returns io.EOF when the
// response is exhausted. An *ItemError reports content that framed
// correctly but failed to parse; the bad item has been consumed and
// iteration can continue.
func (r *Response[T]) Next() (ResponseItem[T], error) {
	var zero ResponseItem[T]
	if r.finished {
		return zero, io.EOF
	}
	if !r.query.ExpectsData() || r.expect == 0 {
		// No payload follows the preamble, not even an EOR marker.
		r.finish()
		return zero, io.EOF
	}
	for {
		data := r.pipeline.buf.Data()
		if consumed, err := wire.EndOfResponse(data); err == nil {
			r.pipeline.buf.Consume(consumed)
			r.finish()
			if r.seen+1 != r.expect {
				return zero, &DataUnderrunError{Seen: r.seen, Expect: r.expect}
			}
			return zero, io.EOF
		}
		if r.seen > r.expect {
			r.finish()
			return zero, &DataOverrunError{Seen: r.seen, Expect: r.expect}
		}
		consumed, raw, err := r.query.parseItem(data)
		switch {
		case err == nil:
			r.pipeline.buf.Consume(consumed)
			r.seen += consumed
			item, perr := r.decode(raw)
			if perr != nil {
				metrics.ObserveItemError()
				return zero, perr
			}
			metrics.ObserveItem(consumed)
			return item, nil
		case errors.Is(err, wire.ErrIncomplete), errors.Is(err, wire.ErrParse):
			// Likely a frame cut short at the buffer boundary; refill
			// and retry.
			if ferr := r.pipeline.fetch(); ferr != nil {
				return zero, ferr
			}
		default:
			return zero, err
		}
	}
}

// decode converts the framed bytes of one item into a typed
// ResponseItem. The bytes have already been consumed from the buffer, so
// a decode failure is scoped to this item.
func (r *Response[T]) decode(raw []byte) (ResponseItem[T], error) {
	if !utf8.Valid(raw) {
		return ResponseItem[T]{}, &ItemError{Query: r.query, Err: fmt.Errorf("response item is not valid UTF-8")}
	}
	content, err := r.parse(string(raw))
	if err != nil {
		return ResponseItem[T]{}, &ItemError{Query: r.query, Err: err}
	}
	return ResponseItem[T]{content: content, query: r.query}, nil
}

// Collect reads all remaining items. It fails fast on the first error.
func (r *Response[T]) Collect() ([]ResponseItem[T], error) {
	var items []ResponseItem[T]
	for {
		item, err := r.Next()
		if errors.Is(err, io.EOF) {
			return items, nil
		}
		if err != nil {
			return items, err
		}
		items = append(items, item)
	}
}

// Close drains any unread items and the trailing end-of-response marker,
// leaving the read buffer aligned on the next response's preamble.
// Item-scoped errors are logged and swallowed; a fatal error stops the
// drain and is returned.
func (r *Response[T]) Close() error {
	for {
		item, err := r.Next()
		switch {
		case err == nil:
			r.pipeline.logger.Debug("discarding unread response item", "item", item.Content())
		case errors.Is(err, io.EOF):
			return nil
		case continuable(err):
			r.pipeline.logger.Warn("error while draining response", "err", err)
			if r.finished {
				return err
			}
		default:
			r.pipeline.logger.Warn("abandoning response drain", "err", err)
			r.finish()
			return err
		}
	}
}

// ResponseStream iterates over the items of every outstanding response
// on a pipeline, in query order. Constructed by Responses.
//
// Next drives the current response to completion before popping the
// next, advancing silently through responses that carry no data.
// Query-scoped errors (server error replies, bad items, length
// mismatches) are returned inline and the stream remains usable; fatal
// errors poison the underlying pipeline and recur on subsequent calls.
// The stream is fused: after it first returns io.EOF, it keeps
// returning io.EOF.
type ResponseStream[T any] struct {
	pipeline *Pipeline
	parse    ParseFunc[T]
	current  *Response[T]
	done     bool
}

// Next returns the next response item across all outstanding responses,
// or io.EOF when every outstanding query has been answered and read.
func (s *ResponseStream[T]) Next() (ResponseItem[T], error) {
	var zero ResponseItem[T]
	if s.done {
		return zero, io.EOF
	}
	for {
		if s.current != nil {
			item, err := s.current.Next()
			switch {
			case err == nil:
				return item, nil
			case errors.Is(err, io.EOF):
				s.current = nil
			default:
				if s.current.finished {
					s.current = nil
				}
				return zero, err
			}
			continue
		}
		response, err := Pop(s.pipeline, s.parse)
		if err != nil {
			return zero, err
		}
		if response == nil {
			s.done = true
			return zero, io.EOF
		}
		s.current = response
	}
}

// Collect reads all remaining items of all outstanding responses,
// failing fast on the first error.
func (s *ResponseStream[T]) Collect() ([]ResponseItem[T], error) {
	var items []ResponseItem[T]
	for {
		item, err := s.Next()
		if errors.Is(err, io.EOF) {
			return items, nil
		}
		if err != nil {
			return items, err
		}
		items = append(items, item)
	}
}
