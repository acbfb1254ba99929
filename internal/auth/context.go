package auth

import "context"

type ctxKey struct{}

// WithClaims returns a copy of ctx carrying the verified token claims.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// ClaimsFrom returns the claims attached by the auth gate, if any.
func ClaimsFrom(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(ctxKey{}).(*Claims)
	return c, ok && c != nil
}

// EmailFrom returns the verified caller email, or "" outside the auth gate.
func EmailFrom(ctx context.Context) string {
	if c, ok := ClaimsFrom(ctx); ok {
		return c.Email
	}
	return ""
}
