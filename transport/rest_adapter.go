package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

const defaultRESTClientTimeout = 30 * time.Second
const defaultRESTResponseBodyLimit int64 = 1 << 20

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Request struct {
	Method               string
	URL                  string
	Headers              map[string]string
	Body                 []byte
	Timeout              time.Duration
	MaxResponseBodyBytes int64
}

type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	Duration   time.Duration
}

// RESTAdapter performs one outbound HTTP call with bounded response reads.
// Timeouts come from the request context, Request.Timeout, or the client.
type RESTAdapter struct {
	Client               HTTPDoer
	DefaultHeaders       map[string]string
	MaxResponseBodyBytes int64
}

func NewRESTAdapter(client HTTPDoer) *RESTAdapter {
	if client == nil {
		client = &http.Client{Timeout: defaultRESTClientTimeout}
	}
	return &RESTAdapter{
		Client:               client,
		DefaultHeaders:       map[string]string{},
		MaxResponseBodyBytes: defaultRESTResponseBodyLimit,
	}
}

func (a *RESTAdapter) Do(ctx context.Context, req Request) (Response, error) {
	if a == nil || a.Client == nil {
		return Response{}, failure(
			nil,
			goerrors.CategoryInternal,
			"transport: rest adapter requires an http client",
			nil,
		)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	method := strings.TrimSpace(strings.ToUpper(req.Method))
	if method == "" {
		method = http.MethodGet
	}
	target, err := parseTargetURL(req.URL)
	if err != nil {
		return Response{}, err
	}

	requestCtx := ctx
	cancel := func() {}
	if req.Timeout > 0 {
		requestCtx, cancel = context.WithTimeout(ctx, req.Timeout)
	}
	defer cancel()

	httpReq, err := http.NewRequestWithContext(requestCtx, method, target, bytes.NewReader(req.Body))
	if err != nil {
		return Response{}, failure(
			err,
			goerrors.CategoryBadInput,
			"transport: create http request",
			map[string]any{"method": method, "url": target},
		)
	}
	applyHeaders(httpReq.Header, a.DefaultHeaders)
	applyHeaders(httpReq.Header, req.Headers)

	startedAt := time.Now()
	httpRes, err := a.Client.Do(httpReq)
	if err != nil {
		return Response{}, failure(
			err,
			goerrors.CategoryExternal,
			"transport: execute http request",
			map[string]any{"method": method, "url": target},
		)
	}
	defer httpRes.Body.Close()

	limit := req.MaxResponseBodyBytes
	if limit <= 0 {
		limit = a.MaxResponseBodyBytes
	}
	if limit <= 0 {
		limit = defaultRESTResponseBodyLimit
	}
	body, err := io.ReadAll(io.LimitReader(httpRes.Body, limit+1))
	if err != nil {
		return Response{}, failure(
			err,
			goerrors.CategoryExternal,
			"transport: read response body",
			map[string]any{"status_code": httpRes.StatusCode},
		)
	}
	if int64(len(body)) > limit {
		return Response{}, failure(
			nil,
			goerrors.CategoryExternal,
			fmt.Sprintf("transport: response body exceeds limit of %d bytes", limit),
			map[string]any{"status_code": httpRes.StatusCode},
		)
	}

	headers := make(map[string]string, len(httpRes.Header))
	for key, values := range httpRes.Header {
		headers[key] = strings.Join(values, ",")
	}
	return Response{
		StatusCode: httpRes.StatusCode,
		Headers:    headers,
		Body:       body,
		Duration:   time.Since(startedAt),
	}, nil
}

func parseTargetURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", failure(nil, goerrors.CategoryBadInput, "transport: request url is required", nil)
	}
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		if err == nil {
			err = fmt.Errorf("url must be absolute")
		}
		return "", failure(
			err,
			goerrors.CategoryBadInput,
			"transport: invalid request url",
			map[string]any{"url": trimmed},
		)
	}
	return parsed.String(), nil
}

func applyHeaders(target http.Header, headers map[string]string) {
	for key, value := range headers {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		target.Set(key, strings.TrimSpace(value))
	}
}
