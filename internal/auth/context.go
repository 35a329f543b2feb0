package auth

import "context"

type contextKey string

const claimsContextKey contextKey = "session_claims"

// ContextWithClaims stores verified session claims on ctx.
func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ClaimsFromContext returns the session claims, or nil for anonymous requests.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, ok := ctx.Value(claimsContextKey).(*Claims)
	if !ok {
		return nil
	}
	return claims
}

// NameFromContext returns the signed-in user's name, or "".
func NameFromContext(ctx context.Context) string {
	if c := ClaimsFromContext(ctx); c != nil {
		return c.Name
	}
	return ""
}
