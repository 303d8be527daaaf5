// Package irrd provides a pipelined client for the IRRd whois-style query
// protocol spoken on TCP port 43 by Internet Routing Registry daemons.
//
// The client speaks IRRd "multiple command mode": queries are serialised
// back-to-back onto a single long-lived TCP stream and responses are
// matched to queries in strict FIFO order, so follow-up queries can be
// written while an earlier response is still streaming.
//
// # Architecture
//
// The library is organized into layers:
//
//	┌─────────────────────────────────────────────────────────┐
//	│  client/       Connection, Pipeline, typed Responses    │
//	├─────────────────────────────────────────────────────────┤
//	│  wire/         Incremental response framing parsers     │
//	├─────────────────────────────────────────────────────────┤
//	│  internal/ring Circular read buffer                     │
//	└─────────────────────────────────────────────────────────┘
//
// The rpsl package provides typed RPSL names (aut-num, as-set, route-set)
// that response items can be parsed into directly. The metrics and cache
// packages add optional Prometheus instrumentation and a Redis-backed
// response cache.
//
// # Quick Start
//
//	irr, err := client.New("whois.radb.net:43", client.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	conn, err := irr.Connect(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conn.Close()
//
//	version, err := conn.Version()
package irrd
