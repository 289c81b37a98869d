package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectRejectsMalformedURL(t *testing.T) {
	_, err := Connect(context.Background(), "postgres://%zz", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse database url")
}

func TestConnectFailsFastWhenUnreachable(t *testing.T) {
	start := time.Now()
	_, err := Connect(context.Background(), "postgres://vidtube@127.0.0.1:1/vidtube?sslmode=disable", Options{
		MaxConns:       2,
		ConnectTimeout: 500 * time.Millisecond,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping database")
	assert.Less(t, time.Since(start), 5*time.Second)
}
