package identity

import (
	"context"
	"net/http"
	"strings"

	"github.com/XandyNerd/BuscarLead/core"
)

const DefaultOwnerHeader = "X-User-ID"

// Resolver extracts the authenticated owner of an inbound request.
type Resolver interface {
	ResolveOwner(r *http.Request) (string, error)
}

type ResolverFunc func(r *http.Request) (string, error)

func (f ResolverFunc) ResolveOwner(r *http.Request) (string, error) {
	return f(r)
}

// HeaderResolver trusts a header set by the authenticating proxy in front
// of the service. It must not be exposed without such a proxy.
type HeaderResolver struct {
	Header string
}

func NewHeaderResolver(header string) HeaderResolver {
	header = strings.TrimSpace(header)
	if header == "" {
		header = DefaultOwnerHeader
	}
	return HeaderResolver{Header: header}
}

func (h HeaderResolver) ResolveOwner(r *http.Request) (string, error) {
	if r == nil {
		return "", core.NewUnauthorizedError("identity: request is required")
	}
	header := h.Header
	if header == "" {
		header = DefaultOwnerHeader
	}
	owner := strings.TrimSpace(r.Header.Get(header))
	if owner == "" {
		return "", core.NewUnauthorizedError("identity: unauthorized")
	}
	return owner, nil
}

type ownerContextKey struct{}

func WithOwner(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerContextKey{}, ownerID)
}

func OwnerFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	owner, ok := ctx.Value(ownerContextKey{}).(string)
	return owner, ok && owner != ""
}

// Middleware resolves the owner once per request and hands the failure to
// onError instead of calling next.
func Middleware(resolver Resolver, onError func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if resolver == nil {
				onError(w, r, core.NewUnauthorizedError("identity: resolver is not configured"))
				return
			}
			owner, err := resolver.ResolveOwner(r)
			if err != nil {
				onError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithOwner(r.Context(), owner)))
		})
	}
}
