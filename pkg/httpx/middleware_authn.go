package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/upbanklab/upgate/pkg/jwtx"
	"github.com/upbanklab/upgate/pkg/slogx"
)

// AuthnMiddleware verifies the identity token carried in the Authorization
// header and injects the caller's identity into the request context.
//
// Clients send the raw identity token as the header value; a "Bearer " prefix
// is also accepted for tooling that insists on it.
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			raw = strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))
			if raw == "" {
				writeAuthError(w, "missing identity token")
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				log.Warn("identity token verification failed", "err", err)
				writeAuthError(w, "token verification failed")
				return
			}

			ctx = contextWithAuth(ctx, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func contextWithAuth(ctx context.Context, c *jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyEmail, c.Email)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return ctx
}

// writeAuthError emits a 401 in the same errors-array envelope the query
// endpoint uses, so clients parse all failures uniformly.
func writeAuthError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteJSON(w, http.StatusUnauthorized, map[string]any{
		"errors": []map[string]string{
			{"message": desc, "errorType": "Unauthorized"},
		},
	})
}
