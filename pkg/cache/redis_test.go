package cache

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sportsgrades-api/pkg/config"
)

func TestClientOptions(t *testing.T) {
	opts := clientOptions(config.RedisConfig{
		Host:        "cache.internal",
		Port:        6380,
		DB:          2,
		PoolSize:    20,
		DialTimeout: time.Second,
		ReadTimeout: 250 * time.Millisecond,
	})

	assert.Equal(t, "cache.internal:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 20, opts.PoolSize)
	assert.Equal(t, time.Second, opts.DialTimeout)
	assert.Equal(t, 250*time.Millisecond, opts.ReadTimeout)
	assert.Equal(t, 250*time.Millisecond, opts.WriteTimeout)
	assert.Equal(t, -1, opts.MaxRetries)
}

func TestClientOptionsKeepsLibraryDefaults(t *testing.T) {
	opts := clientOptions(config.RedisConfig{Host: "localhost", Port: 6379})

	assert.Zero(t, opts.PoolSize)
	assert.Zero(t, opts.DialTimeout)
	assert.Zero(t, opts.ReadTimeout)
}

func TestNewRedisUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	start := time.Now()
	client, err := NewRedis(config.RedisConfig{Host: "127.0.0.1", Port: port, PingTimeout: 500 * time.Millisecond})
	require.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "ping redis 127.0.0.1:")
	assert.Less(t, time.Since(start), 2*time.Second)
}
