// Package reqctx carries per-request metadata and the resolved caller
// account through context, so services never touch transport types.
package reqctx

import (
	"context"
	"time"

	"github.com/bajehapp/bajeh_backend/internal/identity"
)

// ctxKey is a private type for context keys to prevent collisions.
type ctxKey int

const (
	keyRequestMeta ctxKey = iota
	keyCaller
)

// RequestMeta holds per-request metadata set by HTTP middleware.
type RequestMeta struct {
	// RequestID is a unique identifier for this request (UUID v4 string).
	RequestID string

	// ClientIP may come from X-Forwarded-For or the direct connection.
	ClientIP string

	UserAgent   string
	RequestedAt time.Time
}

// WithRequestMeta stores RequestMeta in the context.
func WithRequestMeta(ctx context.Context, meta *RequestMeta) context.Context {
	return context.WithValue(ctx, keyRequestMeta, meta)
}

// RequestMetaFromContext retrieves RequestMeta from the context.
func RequestMetaFromContext(ctx context.Context) (*RequestMeta, bool) {
	meta, ok := ctx.Value(keyRequestMeta).(*RequestMeta)
	return meta, ok
}

// WithCaller stores the resolved caller account in the context.
func WithCaller(ctx context.Context, a identity.Account) context.Context {
	return context.WithValue(ctx, keyCaller, a)
}

// CallerFromContext retrieves the caller account set by the auth middleware.
func CallerFromContext(ctx context.Context) (identity.Account, bool) {
	a, ok := ctx.Value(keyCaller).(identity.Account)
	return a, ok
}

// MustCaller retrieves the caller account and panics when the auth
// middleware did not run. Handlers behind auth use this.
func MustCaller(ctx context.Context) identity.Account {
	a, ok := CallerFromContext(ctx)
	if !ok {
		panic("reqctx: caller not found in context")
	}
	return a
}
