package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/universidad-api/pkg/config"
)

func TestNewRedisFailsFastWhenUnreachable(t *testing.T) {
	start := time.Now()
	client, err := NewRedis(config.RedisConfig{Host: "127.0.0.1", Port: 1, PingTimeout: 300 * time.Millisecond})
	require.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "ping redis 127.0.0.1:1")
	assert.Less(t, time.Since(start), 5*time.Second)
}
