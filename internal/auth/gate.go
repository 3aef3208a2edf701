package auth

import (
	"context"
	"net/http"
	"strings"
)

// Result is the per-request authentication outcome. It is computed once by
// the Gate middleware and never mutated afterwards.
type Result struct {
	Authenticated bool
	UserID        string
}

type contextKey string

const resultKey = contextKey("authResult")

// ResultFromContext returns the Result the Gate attached to the request.
// A request that never passed through the Gate is anonymous.
func ResultFromContext(ctx context.Context) Result {
	if res, ok := ctx.Value(resultKey).(Result); ok {
		return res
	}
	return Result{}
}

// ContextWithResult attaches a Result to ctx. Exposed for tests.
func ContextWithResult(ctx context.Context, res Result) context.Context {
	return context.WithValue(ctx, resultKey, res)
}

// Gate creates a middleware that annotates every request with a Result. It
// never rejects: a missing, malformed, or undecodable bearer token yields an
// anonymous Result, and each operation decides whether that is acceptable.
func Gate(codec *TokenCodec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			result := Result{}

			authHeader := r.Header.Get("Authorization")
			if authHeader != "" {
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
					if claims, err := codec.Decode(parts[1]); err == nil {
						result = Result{Authenticated: true, UserID: claims.UserID}
					}
				}
			}

			ctx := ContextWithResult(r.Context(), result)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
