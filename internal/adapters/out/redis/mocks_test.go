package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) SetNX(ctx context.Context, key string, value any, expiration time.Duration) *goredis.BoolCmd {
	args := m.Called(ctx, key, value, expiration)
	return args.Get(0).(*goredis.BoolCmd)
}

func (m *MockStore) Eval(ctx context.Context, script string, keys []string, args ...any) *goredis.Cmd {
	called := m.Called(ctx, script, keys, args)
	return called.Get(0).(*goredis.Cmd)
}

func (m *MockStore) XAdd(ctx context.Context, a *goredis.XAddArgs) *goredis.StringCmd {
	args := m.Called(ctx, a)
	return args.Get(0).(*goredis.StringCmd)
}
