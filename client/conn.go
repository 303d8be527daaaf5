package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"
)

// IrrClient configures connections to an IRRd server. Construct with
// New, then call Connect.
type IrrClient struct {
	addr   string
	config Config
}

// New creates a client for the IRRd server at addr (host:port; IRRd
// conventionally listens on port 43).
func New(addr string, cfg Config) (*IrrClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &IrrClient{addr: addr, config: cfg}, nil
}

// Connect opens a TCP connection to the server, negotiates multiple
// command mode, and identifies the client.
func (c *IrrClient) Connect(ctx context.Context) (*Connection, error) {
	logger := c.config.Logger
	if logger == nil {
		logger = envLogger()
	}
	logger = nopIfNil(logger).With("component", "connection", "conn_id", uuid.New())

	logger.Info("connecting", "addr", c.addr)
	dialer := net.Dialer{Timeout: c.config.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", c.addr, err)
	}
	// Disable Nagle's algorithm: queries are small writes and must not be
	// coalesced while a response is pending.
	if tcp, ok := conn.(*net.TCPConn); ok {
		if err := tcp.SetNoDelay(true); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("disable nagle: %w", err)
		}
	}

	connection := &Connection{
		conn:   conn,
		config: c.config,
		logger: logger,
	}
	if err := connection.handshake(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	logger.Info("connected", "addr", c.addr)
	return connection, nil
}

// A Connection owns the TCP stream to an IRRd server. At most one
// Pipeline should use a Connection at any one time, so that responses
// are matched to queries in transmit order.
type Connection struct {
	conn   net.Conn
	config Config
	logger *slog.Logger
	closed bool
}

// handshake places the server in multiple command mode and runs the
// startup queries through a small internal pipeline.
func (c *Connection) handshake() error {
	c.logger.Debug("requesting multiple command mode")
	if err := c.send("!!\n"); err != nil {
		return fmt.Errorf("enter multiple command mode: %w", err)
	}

	init := c.PipelineWithCapacity(64)
	defer init.Clear()
	if err := init.Push(SetClientID(c.config.ClientID)); err != nil {
		return err
	}
	if c.config.ServerTimeout > 0 {
		if err := init.Push(SetTimeout(c.config.ServerTimeout)); err != nil {
			return err
		}
	}
	return nil
}

// Pipeline creates a query pipeline with the configured read buffer
// capacity.
func (c *Connection) Pipeline() *Pipeline {
	return c.PipelineWithCapacity(c.config.Capacity)
}

// PipelineWithCapacity creates a query pipeline with a non-default read
// buffer size. A single response item must fit in the buffer.
func (c *Connection) PipelineWithCapacity(capacity int) *Pipeline {
	return newPipeline(c, capacity)
}

// Version returns the server's version identification string.
func (c *Connection) Version() (string, error) {
	pipeline := c.Pipeline()
	defer pipeline.Clear()
	if err := pipeline.Push(Version()); err != nil {
		return "", err
	}
	response, err := Pop(pipeline, ParseString)
	if err != nil {
		return "", err
	}
	if response == nil {
		return "", ErrDequeue
	}
	item, err := response.Next()
	if errors.Is(err, io.EOF) {
		return "", ErrEmptyResponse
	}
	if err != nil {
		return "", err
	}
	return item.Content(), nil
}

// ASSetMembers expands an as-set one level.
func (c *Connection) ASSetMembers(name string) ([]ResponseItem[string], error) {
	return c.collect(AsSetMembers(name))
}

// IPv4Routes lists the IPv4 prefixes originated by an autonomous system.
func (c *Connection) IPv4Routes(autnum string) ([]ResponseItem[string], error) {
	return c.collect(Ipv4Routes(autnum))
}

// IPv6Routes lists the IPv6 prefixes originated by an autonomous system.
func (c *Connection) IPv6Routes(autnum string) ([]ResponseItem[string], error) {
	return c.collect(Ipv6Routes(autnum))
}

// Sources lists the sources currently selected on this connection.
func (c *Connection) Sources() ([]ResponseItem[string], error) {
	return c.collect(GetSources())
}

func (c *Connection) collect(query Query) ([]ResponseItem[string], error) {
	pipeline := c.Pipeline()
	defer pipeline.Clear()
	if err := pipeline.Push(query); err != nil {
		return nil, err
	}
	response, err := Pop(pipeline, ParseString)
	if err != nil {
		return nil, err
	}
	if response == nil {
		return nil, ErrDequeue
	}
	return response.Collect()
}

// FromQueries creates a pipeline pre-loaded with the given queries,
// best-effort: enqueue errors are logged and the remaining queries are
// still pushed.
func (c *Connection) FromQueries(queries ...Query) *Pipeline {
	pipeline := c.Pipeline()
	pipeline.Extend(queries...)
	return pipeline
}

// FromInitial creates a pipeline seeded with a single bootstrapping
// query; see the package-level FromInitial function.
func (c *Connection) FromInitial(initial Query, expand func(ResponseItem[string], error) []Query) (*Pipeline, error) {
	return FromInitial(c, initial, ParseString, expand)
}

// send writes one complete command and is used for every query flush.
func (c *Connection) send(cmd string) error {
	if c.closed {
		return ErrClosed
	}
	c.logger.Debug("sending query", "cmd", cmd)
	if c.config.Timeout > 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(c.config.Timeout))
	}
	if _, err := io.WriteString(c.conn, cmd); err != nil {
		return fmt.Errorf("send query: %w", err)
	}
	return nil
}

// read fills p with up to len(p) response bytes.
func (c *Connection) read(p []byte) (int, error) {
	if c.closed {
		return 0, ErrClosed
	}
	if c.config.Timeout > 0 {
		_ = c.conn.SetReadDeadline(time.Now().Add(c.config.Timeout))
	}
	return c.conn.Read(p)
}

// Close sends the quit command and closes the socket. Both steps are
// best-effort: failures are logged, and only a failure to close the
// socket is returned.
func (c *Connection) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.logger.Info("closing connection")
	if _, err := io.WriteString(c.conn, "!q\n"); err != nil {
		c.logger.Warn("failed to send quit command", "err", err)
	}
	if err := c.conn.Close(); err != nil {
		c.logger.Warn("failed to close connection", "err", err)
		return err
	}
	return nil
}
