// Package bus implements the application's command and query buses.  Both
// are dispatch tables keyed by message name with a shared middleware chain;
// the query bus additionally serves cached results for queries that opt in
// via CacheKey.  Handlers are registered once at startup, before any
// dispatching, so the tables need no locking afterwards.
package bus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ayaseru/shiori/internal/cache"
)

// ErrNoHandler is returned by Dispatch when no handler is registered for the
// message name.
var ErrNoHandler = errors.New("no handler registered")

// ErrHandlerRegistered is returned by Register when a handler already exists
// for the message name.
var ErrHandlerRegistered = errors.New("handler already registered")

// Command is a request to change state.  CommandName identifies the handler.
type Command interface {
	CommandName() string
}

// Query is a request to read state.  QueryName identifies the handler.
type Query interface {
	QueryName() string
}

// Validator is implemented by commands and queries that check their own
// input.  The validation middleware rejects messages before the handler runs.
type Validator interface {
	Validate() error
}

// Cacheable is implemented by queries whose results may be cached.  CacheKey
// must be stable for equal inputs; keys are namespaced by domain prefix
// (e.g. "shows:list:WATCHING") so commands can invalidate whole domains.
type Cacheable interface {
	CacheKey() string
}

// Invalidator is implemented by commands that stale cached query results.
// After the command succeeds every returned prefix is purged from the cache.
type Invalidator interface {
	InvalidatePrefixes() []string
}

// HandlerFunc executes one command or query.  Commands that produce no
// result return a nil value.
type HandlerFunc func(ctx context.Context, msg any) (any, error)

// MiddlewareFunc wraps a HandlerFunc, mirroring how echo middleware wraps
// handlers.  The first middleware passed to a bus runs outermost.
type MiddlewareFunc func(next HandlerFunc) HandlerFunc

// chain applies middleware around h, first element outermost.
func chain(h HandlerFunc, mw []MiddlewareFunc) HandlerFunc {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}

// CommandBus routes commands to their registered handler through the
// middleware chain and invalidates cached queries after successful mutations.
type CommandBus struct {
	handlers map[string]HandlerFunc
	mw       []MiddlewareFunc
	cache    *cache.LRU // may be nil; only used for invalidation
}

// NewCommandBus builds a CommandBus.  The cache may be nil when query
// caching is disabled; mw runs outermost-first for every dispatch.
func NewCommandBus(c *cache.LRU, mw ...MiddlewareFunc) *CommandBus {
	return &CommandBus{handlers: make(map[string]HandlerFunc), mw: mw, cache: c}
}

// Register binds a handler to a command name.  Registering the same name
// twice is a programming error and is rejected.
func (b *CommandBus) Register(name string, h HandlerFunc) error {
	if _, ok := b.handlers[name]; ok {
		return fmt.Errorf("%w: %s", ErrHandlerRegistered, name)
	}
	b.handlers[name] = h
	return nil
}

// Dispatch runs the handler for cmd through the middleware chain.  On
// success, cached query domains named by the command's InvalidatePrefixes
// are purged.
func (b *CommandBus) Dispatch(ctx context.Context, cmd Command) (any, error) {
	h, ok := b.handlers[cmd.CommandName()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoHandler, cmd.CommandName())
	}
	out, err := chain(h, b.mw)(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if b.cache != nil {
		if inv, ok := cmd.(Invalidator); ok {
			for _, p := range inv.InvalidatePrefixes() {
				b.cache.DeletePrefix(p)
			}
		}
	}
	return out, nil
}

// QueryBus routes queries to their registered handler through the middleware
// chain, serving cacheable queries from the LRU when a fresh entry exists.
type QueryBus struct {
	handlers map[string]HandlerFunc
	mw       []MiddlewareFunc
	cache    *cache.LRU    // may be nil to disable caching
	ttl      time.Duration // lifetime for cached results
}

// NewQueryBus builds a QueryBus.  Cached results live for ttl; a nil cache
// or non-positive ttl disables caching entirely.
func NewQueryBus(c *cache.LRU, ttl time.Duration, mw ...MiddlewareFunc) *QueryBus {
	return &QueryBus{handlers: make(map[string]HandlerFunc), mw: mw, cache: c, ttl: ttl}
}

// Register binds a handler to a query name.
func (b *QueryBus) Register(name string, h HandlerFunc) error {
	if _, ok := b.handlers[name]; ok {
		return fmt.Errorf("%w: %s", ErrHandlerRegistered, name)
	}
	b.handlers[name] = h
	return nil
}

// Dispatch runs the handler for q, consulting the cache first when q is
// Cacheable.  Results are stored only on success.
func (b *QueryBus) Dispatch(ctx context.Context, q Query) (any, error) {
	h, ok := b.handlers[q.QueryName()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoHandler, q.QueryName())
	}
	key := ""
	if b.cache != nil && b.ttl > 0 {
		if ck, ok := q.(Cacheable); ok {
			key = ck.CacheKey()
			if v, hit := b.cache.Get(key); hit {
				return v, nil
			}
		}
	}
	out, err := chain(h, b.mw)(ctx, q)
	if err != nil {
		return nil, err
	}
	if key != "" {
		b.cache.Set(key, out, b.ttl)
	}
	return out, nil
}
