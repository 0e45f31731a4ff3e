package main

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"testing"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestStartDaemonTagsEachLineWithOneComponent(t *testing.T) {
	env := setupCLITestEnv(t)
	var out lockedBuffer
	logger := slog.New(slog.NewJSONHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug}))

	d, closeDaemon, err := startDaemon(context.Background(), env.cfg, logger)
	if err != nil {
		t.Fatalf("startDaemon: %v", err)
	}
	defer closeDaemon()

	resp, err := http.Post("http://"+d.Addr()+"/refresh", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /refresh: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}

	var sawAPI, sawDaemon bool
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		if n := strings.Count(line, `"component":`); n > 1 {
			t.Fatalf("log line carries %d component attrs: %s", n, line)
		}
		sawAPI = sawAPI || strings.Contains(line, `"component":"api-server"`)
		sawDaemon = sawDaemon || strings.Contains(line, `"component":"daemon"`)
	}
	if !sawAPI || !sawDaemon {
		t.Fatalf("expected api-server and daemon lines, got:\n%s", out.String())
	}
}
