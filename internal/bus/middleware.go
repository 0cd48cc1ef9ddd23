package bus

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ayaseru/shiori/internal/apperr"
)

// named is satisfied by both Command and Query; used by middleware to label
// log lines without knowing which bus it runs on.
func msgName(msg any) string {
	switch m := msg.(type) {
	case Command:
		return m.CommandName()
	case Query:
		return m.QueryName()
	default:
		return "unknown"
	}
}

// Logging returns a middleware that records every dispatch with its duration
// and outcome.  A nil logger yields a pass-through middleware.
func Logging(log *zap.Logger) MiddlewareFunc {
	if log == nil {
		return func(next HandlerFunc) HandlerFunc { return next }
	}
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, msg any) (any, error) {
			start := time.Now()
			out, err := next(ctx, msg)
			if err != nil {
				log.Warn("dispatch failed",
					zap.String("message", msgName(msg)),
					zap.Duration("took", time.Since(start)),
					zap.Error(err))
				return nil, err
			}
			log.Debug("dispatched",
				zap.String("message", msgName(msg)),
				zap.Duration("took", time.Since(start)))
			return out, nil
		}
	}
}

// Validation returns a middleware that rejects messages implementing
// Validator whose Validate fails.  Non-apperr validation errors are wrapped
// into a ValidationError so handlers upstream can map them uniformly.
func Validation() MiddlewareFunc {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, msg any) (any, error) {
			if v, ok := msg.(Validator); ok {
				if err := v.Validate(); err != nil {
					if _, ok := err.(*apperr.ValidationError); ok {
						return nil, err
					}
					return nil, apperr.Validation("", err.Error())
				}
			}
			return next(ctx, msg)
		}
	}
}
