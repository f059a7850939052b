package telegram

import (
	"context"

	tele "gopkg.in/telebot.v4"
)

const ctxStoreKey = "__ctx"

// StoreContext attaches a request context to the telebot context so handlers
// further down the chain can recover rid and update metadata.
func StoreContext(c tele.Context, ctx context.Context) {
	if c == nil || ctx == nil {
		return
	}
	c.Set(ctxStoreKey, ctx)
}

// Ctx returns the request context stored by the logging middleware, or a fresh
// background context when none was attached (unit tests, synthetic events).
func Ctx(c tele.Context) context.Context {
	if c != nil {
		if ctx, ok := c.Get(ctxStoreKey).(context.Context); ok && ctx != nil {
			return ctx
		}
	}
	return context.Background()
}
