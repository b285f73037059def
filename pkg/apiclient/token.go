package apiclient

import "context"

const (
	// HeaderAuthToken carries the bearer token or the anonymous sentinel.
	HeaderAuthToken = "X-Auth-Token"
	// AnonymousToken is sent when a request has no token.
	AnonymousToken = "anonymous"
)

// TokenSource provides the token of the ambient session.
// The auth guard implements it.
type TokenSource interface {
	Token() string
}

// TokenSourceFunc adapts a function to TokenSource.
type TokenSourceFunc func() string

func (f TokenSourceFunc) Token() string {
	return f()
}

type tokenSourceKey struct{}

// ContextWithTokenSource attaches the session of a server rendered request to ctx.
func ContextWithTokenSource(ctx context.Context, src TokenSource) context.Context {
	return context.WithValue(ctx, tokenSourceKey{}, src)
}

// TokenSourceFromContext returns the token source attached with ContextWithTokenSource.
func TokenSourceFromContext(ctx context.Context) (TokenSource, bool) {
	src, ok := ctx.Value(tokenSourceKey{}).(TokenSource)
	return src, ok && src != nil
}
