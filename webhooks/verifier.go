package webhooks

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/XandyNerd/BuscarLead/core"
)

const DefaultSecretHeader = "x-webhook-secret"

type Verifier interface {
	Verify(ctx context.Context, headers http.Header) error
}

// SharedSecretVerifier compares a request header against a configured
// secret. An empty configured secret rejects every request.
type SharedSecretVerifier struct {
	Header string
	Secret string
}

func NewSharedSecretVerifier(header string, secret string) SharedSecretVerifier {
	header = strings.TrimSpace(header)
	if header == "" {
		header = DefaultSecretHeader
	}
	return SharedSecretVerifier{Header: header, Secret: secret}
}

func (v SharedSecretVerifier) Verify(_ context.Context, headers http.Header) error {
	if v.Secret == "" {
		return core.NewUnauthorizedError("webhooks: secret is not configured")
	}
	header := v.Header
	if header == "" {
		header = DefaultSecretHeader
	}
	provided := headers.Get(header)
	if provided == "" {
		return core.NewUnauthorizedError("webhooks: secret header is missing")
	}
	if subtle.ConstantTimeCompare([]byte(provided), []byte(v.Secret)) != 1 {
		return core.NewUnauthorizedError("webhooks: secret mismatch")
	}
	return nil
}
