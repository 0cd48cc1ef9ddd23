package bus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayaseru/shiori/internal/apperr"
	"github.com/ayaseru/shiori/internal/cache"
)

type testCmd struct{ fail bool }

func (testCmd) CommandName() string          { return "test.cmd" }
func (testCmd) InvalidatePrefixes() []string { return []string{"t:"} }

type testQuery struct{ id int }

func (testQuery) QueryName() string  { return "test.query" }
func (q testQuery) CacheKey() string { return "t:query" }
func (q testQuery) Validate() error {
	if q.id == 0 {
		return apperr.Validation("id", "required")
	}
	return nil
}

type plainQuery struct{}

func (plainQuery) QueryName() string { return "test.plain" }

func TestCommandDispatch(t *testing.T) {
	b := NewCommandBus(nil)
	calls := 0
	require.NoError(t, b.Register("test.cmd", func(ctx context.Context, msg any) (any, error) {
		calls++
		return "done", nil
	}))

	out, err := b.Dispatch(context.Background(), testCmd{})
	require.NoError(t, err)
	assert.Equal(t, "done", out)
	assert.Equal(t, 1, calls)
}

func TestDispatchUnknownName(t *testing.T) {
	b := NewCommandBus(nil)
	_, err := b.Dispatch(context.Background(), testCmd{})
	assert.ErrorIs(t, err, ErrNoHandler)

	qb := NewQueryBus(nil, time.Minute)
	_, err = qb.Dispatch(context.Background(), plainQuery{})
	assert.ErrorIs(t, err, ErrNoHandler)
}

func TestRegisterTwice(t *testing.T) {
	b := NewCommandBus(nil)
	h := func(ctx context.Context, msg any) (any, error) { return nil, nil }
	require.NoError(t, b.Register("test.cmd", h))
	assert.ErrorIs(t, b.Register("test.cmd", h), ErrHandlerRegistered)
}

func TestCommandInvalidatesPrefixes(t *testing.T) {
	lru := cache.NewLRU(8)
	lru.Set("t:query", "stale", time.Minute)
	lru.Set("other:query", "kept", time.Minute)

	b := NewCommandBus(lru)
	require.NoError(t, b.Register("test.cmd", func(ctx context.Context, msg any) (any, error) {
		if msg.(testCmd).fail {
			return nil, errors.New("boom")
		}
		return nil, nil
	}))

	// A failed command leaves the cache alone.
	_, err := b.Dispatch(context.Background(), testCmd{fail: true})
	require.Error(t, err)
	_, ok := lru.Get("t:query")
	assert.True(t, ok)

	_, err = b.Dispatch(context.Background(), testCmd{})
	require.NoError(t, err)
	_, ok = lru.Get("t:query")
	assert.False(t, ok, "prefix purged after success")
	_, ok = lru.Get("other:query")
	assert.True(t, ok)
}

func TestQueryCaching(t *testing.T) {
	lru := cache.NewLRU(8)
	b := NewQueryBus(lru, time.Minute)
	calls := 0
	require.NoError(t, b.Register("test.query", func(ctx context.Context, msg any) (any, error) {
		calls++
		return "result", nil
	}))

	out, err := b.Dispatch(context.Background(), testQuery{id: 1})
	require.NoError(t, err)
	assert.Equal(t, "result", out)

	out, err = b.Dispatch(context.Background(), testQuery{id: 1})
	require.NoError(t, err)
	assert.Equal(t, "result", out)
	assert.Equal(t, 1, calls, "second dispatch served from cache")
}

func TestQueryErrorNotCached(t *testing.T) {
	lru := cache.NewLRU(8)
	b := NewQueryBus(lru, time.Minute)
	calls := 0
	require.NoError(t, b.Register("test.query", func(ctx context.Context, msg any) (any, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("boom")
		}
		return "result", nil
	}))

	_, err := b.Dispatch(context.Background(), testQuery{id: 1})
	require.Error(t, err)

	out, err := b.Dispatch(context.Background(), testQuery{id: 1})
	require.NoError(t, err)
	assert.Equal(t, "result", out)
	assert.Equal(t, 2, calls)
}

func TestQueryBusWithoutCache(t *testing.T) {
	b := NewQueryBus(nil, 0)
	calls := 0
	require.NoError(t, b.Register("test.query", func(ctx context.Context, msg any) (any, error) {
		calls++
		return "result", nil
	}))

	for i := 0; i < 2; i++ {
		_, err := b.Dispatch(context.Background(), testQuery{id: 1})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, calls)
}

func TestMiddlewareOrderAndValidation(t *testing.T) {
	var order []string
	outer := func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, msg any) (any, error) {
			order = append(order, "outer")
			return next(ctx, msg)
		}
	}
	inner := func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, msg any) (any, error) {
			order = append(order, "inner")
			return next(ctx, msg)
		}
	}

	b := NewQueryBus(nil, 0, outer, Validation(), inner)
	require.NoError(t, b.Register("test.query", func(ctx context.Context, msg any) (any, error) {
		order = append(order, "handler")
		return nil, nil
	}))

	_, err := b.Dispatch(context.Background(), testQuery{id: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)

	// Validation rejects before the handler runs.
	order = nil
	_, err = b.Dispatch(context.Background(), testQuery{})
	var ve *apperr.ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.NotContains(t, order, "handler")
}
