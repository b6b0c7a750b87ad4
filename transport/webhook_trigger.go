package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/XandyNerd/BuscarLead/core"
	goerrors "github.com/goliatone/go-errors"
)

// WebhookTrigger starts the scraping workflow by POSTing the search to a
// workflow webhook. Any non-2xx answer is a failed dispatch.
type WebhookTrigger struct {
	adapter *RESTAdapter
	url     string
	headers map[string]string
}

type WebhookTriggerOption func(*WebhookTrigger)

// WithTriggerHeader adds a static header to every trigger request, e.g. a
// token the workflow expects.
func WithTriggerHeader(key string, value string) WebhookTriggerOption {
	return func(t *WebhookTrigger) {
		key = strings.TrimSpace(key)
		if key == "" {
			return
		}
		t.headers[key] = value
	}
}

func NewWebhookTrigger(url string, adapter *RESTAdapter, opts ...WebhookTriggerOption) *WebhookTrigger {
	if adapter == nil {
		adapter = NewRESTAdapter(nil)
	}
	trigger := &WebhookTrigger{
		adapter: adapter,
		url:     strings.TrimSpace(url),
		headers: map[string]string{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(trigger)
		}
	}
	return trigger
}

func (t *WebhookTrigger) Trigger(ctx context.Context, req core.TriggerRequest) error {
	if t == nil || t.adapter == nil {
		return failure(nil, goerrors.CategoryInternal, "transport: webhook trigger is not configured", nil)
	}
	if t.url == "" {
		return failure(
			nil,
			goerrors.CategoryBadInput,
			"transport: trigger url is required",
			map[string]any{"search_id": req.SearchID},
		)
	}
	body, err := json.Marshal(req)
	if err != nil {
		return failure(
			err,
			goerrors.CategoryInternal,
			"transport: encode trigger payload",
			map[string]any{"search_id": req.SearchID},
		)
	}

	headers := map[string]string{"Content-Type": "application/json"}
	for key, value := range t.headers {
		headers[key] = value
	}
	res, err := t.adapter.Do(ctx, Request{
		Method:  http.MethodPost,
		URL:     t.url,
		Headers: headers,
		Body:    body,
	})
	if err != nil {
		return err
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return failure(
			nil,
			goerrors.CategoryExternal,
			fmt.Sprintf("transport: trigger responded with status %d", res.StatusCode),
			map[string]any{"search_id": req.SearchID, "status_code": res.StatusCode},
		)
	}
	return nil
}

var _ core.ScrapeTrigger = (*WebhookTrigger)(nil)
