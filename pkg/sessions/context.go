package sessions

import "context"

type contextKey string

// PrincipalKey is the context key under which the resolved Principal travels
const PrincipalKey contextKey = "sessionPrincipal"

// WithPrincipal returns a context carrying the resolved principal
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}

// PrincipalFromContext extracts the principal resolved for this request
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(PrincipalKey).(*Principal)
	if !ok || p == nil {
		return nil, false
	}
	return p, true
}
