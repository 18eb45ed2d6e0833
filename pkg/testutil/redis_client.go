package testutil

import (
	"context"
	"time"
)

type MockRedisClient struct {
	SetNXFunc func(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
}

func (m *MockRedisClient) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	if m.SetNXFunc != nil {
		return m.SetNXFunc(ctx, key, value, ttl)
	}

	return true, nil
}
