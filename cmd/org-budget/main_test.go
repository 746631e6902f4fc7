package main

import (
	"fmt"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritzau/org-budget/pkg/config"
)

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func TestServeWatcherFailureStartsNothing(t *testing.T) {
	port := freePort(t)
	cfg := &config.Config{
		Input:   filepath.Join(t.TempDir(), "missing", "org.tsv"),
		WebMode: true,
		Watch:   true,
		Port:    port,
		Format:  "text",
	}

	done := make(chan error, 1)
	go func() { done <- serve(cfg, nil) }()

	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve kept running after the watcher failed")
	}

	l, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	require.NoError(t, err, "port should still be free")
	assert.NoError(t, l.Close())
}
