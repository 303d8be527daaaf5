// Package client implements the pipelined IRRd query engine: a
// connection-bound state machine that serialises queries onto a single
// long-lived TCP stream in "multiple command mode", reads framed
// responses back out of a circular buffer, and matches each response to
// its originating query in FIFO order.
//
// The entry point is New followed by Connect, which yields a Connection.
// Simple lookups can use the Connection convenience methods (Version,
// ASSetMembers, IPv4Routes, ...). Bulk work goes through a Pipeline,
// which keeps the transmit stream busy while earlier responses are still
// being read:
//
//	pipeline := conn.Pipeline()
//	defer pipeline.Clear()
//	pipeline.Push(client.Ipv4Routes("AS65000"))
//	pipeline.Push(client.Ipv6Routes("AS65000"))
//	stream := client.Responses(pipeline, client.ParseString)
//	for {
//	    item, err := stream.Next()
//	    if errors.Is(err, io.EOF) {
//	        break
//	    }
//	    ...
//	}
//
// Response items are parsed lazily during iteration. The item type is a
// late-bound type parameter of Pop, Responses and FromInitial, bound
// through a ParseFunc; the framing of each item on the wire is fixed by
// the query variant, not by the item type.
package client
