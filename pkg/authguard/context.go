package authguard

import "context"

type guardContextKey struct{}

// WithGuard stores the guard in the context.
func WithGuard(ctx context.Context, g *Guard) context.Context {
	return context.WithValue(ctx, guardContextKey{}, g)
}

// FromContext retrieves the guard from the context.
func FromContext(ctx context.Context) (*Guard, bool) {
	g, ok := ctx.Value(guardContextKey{}).(*Guard)
	return g, ok && g != nil
}

// MustFromContext retrieves the guard from the context or panics.
func MustFromContext(ctx context.Context) *Guard {
	g, ok := FromContext(ctx)
	if !ok {
		panic("authguard: guard not found in context")
	}
	return g
}
