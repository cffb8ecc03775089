// Package requestctx carries the per-request correlation id through
// context so handlers and middleware can stamp it on responses and logs.
package requestctx

import "context"

type ctxKey int

const idKey ctxKey = iota

func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, idKey, id)
}

// ID returns the request's correlation id, "" when none was attached.
func ID(ctx context.Context) string {
	id, _ := ctx.Value(idKey).(string)
	return id
}
