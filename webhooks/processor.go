package webhooks

import (
	"context"
	"fmt"
	"net/http"

	"github.com/XandyNerd/BuscarLead/core"
)

type IngestHandler interface {
	Ingest(ctx context.Context, req core.IngestRequest) (core.IngestResult, error)
}

type IngestHandlerFunc func(ctx context.Context, req core.IngestRequest) (core.IngestResult, error)

func (f IngestHandlerFunc) Ingest(ctx context.Context, req core.IngestRequest) (core.IngestResult, error) {
	return f(ctx, req)
}

// Processor authenticates a delivery before its body is even parsed.
type Processor struct {
	Verifier Verifier
	Handler  IngestHandler
}

func NewProcessor(verifier Verifier, handler IngestHandler) *Processor {
	return &Processor{Verifier: verifier, Handler: handler}
}

func (p *Processor) Process(ctx context.Context, headers http.Header, body []byte) (core.IngestResult, error) {
	if p == nil || p.Handler == nil || p.Verifier == nil {
		return core.IngestResult{}, core.MapError(fmt.Errorf("webhooks: processor requires verifier and handler"))
	}
	if err := p.Verifier.Verify(ctx, headers); err != nil {
		return core.IngestResult{}, err
	}
	req, err := DecodeIngestPayload(body)
	if err != nil {
		return core.IngestResult{}, err
	}
	return p.Handler.Ingest(ctx, req)
}
