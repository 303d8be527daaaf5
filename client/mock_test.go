package client

import (
	"bytes"
	"net"
	"strings"
	"sync"
	"testing"
	"time"
)

// scriptedServer plays the role of an IRRd server over one half of a
// net.Pipe. It records every byte the client sends and plays back a
// fixed response script as the client reads.
type scriptedServer struct {
	conn net.Conn

	mu       sync.Mutex
	received bytes.Buffer
}

// commands returns the newline-terminated commands received so far.
func (s *scriptedServer) commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw := strings.TrimSuffix(s.received.String(), "\n")
	if raw == "" {
		return nil
	}
	cmds := strings.Split(raw, "\n")
	for i := range cmds {
		cmds[i] += "\n"
	}
	return cmds
}

// waitCommands polls until the client has sent at least n commands and
// returns them. The recording goroutine runs concurrently with the
// client's writes, so assertions on sent commands go through here.
func (s *scriptedServer) waitCommands(t *testing.T, n int) []string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		cmds := s.commands()
		if len(cmds) >= n {
			return cmds
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d commands, got %v", n, cmds)
		}
		time.Sleep(time.Millisecond)
	}
}

// testConnection returns a Connection wired to a scripted server,
// bypassing the dial and startup handshake.
func testConnection(t *testing.T, script string) (*Connection, *scriptedServer) {
	t.Helper()
	clientSide, serverSide := net.Pipe()
	server := &scriptedServer{conn: serverSide}

	// Reader: accumulate whatever the client writes so sends never block.
	go func() {
		buf := make([]byte, 4096)
		for {
			n, err := serverSide.Read(buf)
			if n > 0 {
				server.mu.Lock()
				server.received.Write(buf[:n])
				server.mu.Unlock()
			}
			if err != nil {
				return
			}
		}
	}()
	// Writer: play back the response script as the client reads.
	go func() {
		_, _ = serverSide.Write([]byte(script))
	}()
	t.Cleanup(func() {
		_ = clientSide.Close()
		_ = serverSide.Close()
	})

	cfg := DefaultConfig()
	cfg.Timeout = 2 * time.Second
	return &Connection{
		conn:   clientSide,
		config: cfg,
		logger: nopIfNil(nil),
	}, server
}
