package api

import (
	"context"
	"net/http"
)

// identityContextKey is the context key holding the caller identity
type identityContextKey struct{}

// IdentityHeader carries the caller identity set by the external auth layer
const IdentityHeader = "X-Identity"

// IdentityMiddleware extracts the caller identity from the request and
// stores it on the context. Authentication itself happens upstream; this
// service only requires that an identity is present on state-changing and
// personalized routes.
func IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := r.Header.Get(IdentityHeader)
		if identity == "" {
			writeError(w, http.StatusUnauthorized, "missing "+IdentityHeader+" header")
			return
		}

		ctx := context.WithValue(r.Context(), identityContextKey{}, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CallerIdentity returns the identity stored by IdentityMiddleware
func CallerIdentity(r *http.Request) string {
	identity, _ := r.Context().Value(identityContextKey{}).(string)
	return identity
}
