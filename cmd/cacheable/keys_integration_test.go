//go:build integration

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/goliatone/go-cacheable/cache"
)

func startRedis(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	return endpoint
}

func TestKeyCommands_Integration_Redis(t *testing.T) {
	addr := startRedis(t)
	ctx := context.Background()

	cfg := cache.DefaultConfig()
	cfg.Driver = cache.DriverRedis
	cfg.Redis.Addr = addr
	f, err := cache.NewFromConfig(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close(ctx) })

	_, err = f.Set(ctx, "greeting", map[string]any{"text": "hello"}, cache.Forever())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "cacheable.yaml")
	body := fmt.Sprintf("cacheable:\n  driver: redis\n  redis:\n    addr: %s\n", addr)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	out, err := execute(t, "--config", path, "get", "greeting")
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"hello"}`, out)

	out, err = execute(t, "--config", path, "forget", "greeting", "missing")
	require.NoError(t, err)
	assert.Equal(t, "greeting\ttrue\nmissing\tfalse\n", out)

	_, err = execute(t, "--config", path, "get", "greeting")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not cached")
}
