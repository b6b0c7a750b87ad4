package core

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
)

type CallbackURLResolverFunc func(ctx context.Context, req CallbackURLResolveRequest) (string, error)

func (fn CallbackURLResolverFunc) ResolveCallbackURL(ctx context.Context, req CallbackURLResolveRequest) (string, error) {
	if fn == nil {
		return "", nil
	}
	url, err := fn(ctx, req)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(url), nil
}

// ConfigCallbackURLResolver builds the ingestion callback address from the
// configured public base url, or from the inbound request base url when none
// is configured. Loopback hosts of a request-derived url are rewritten so a
// containerized workflow can reach the service.
type ConfigCallbackURLResolver struct {
	cfg TriggerConfig
}

func NewConfigCallbackURLResolver(cfg TriggerConfig) *ConfigCallbackURLResolver {
	return &ConfigCallbackURLResolver{cfg: cfg}
}

func (r *ConfigCallbackURLResolver) ResolveCallbackURL(_ context.Context, req CallbackURLResolveRequest) (string, error) {
	if r == nil {
		return "", fmt.Errorf("core: callback url resolver is not configured")
	}
	base := strings.TrimSpace(r.cfg.PublicBaseURL)
	fromRequest := base == ""
	if fromRequest {
		base = strings.TrimSpace(req.RequestBaseURL)
	}
	if base == "" {
		return "", fmt.Errorf("core: callback base url is required")
	}
	parsed, err := url.Parse(base)
	if err != nil || parsed.Host == "" {
		return "", fmt.Errorf("core: invalid callback base url %q", base)
	}

	rewrite := strings.TrimSpace(r.cfg.LocalhostRewrite)
	if fromRequest && rewrite != "" && isLoopbackHost(parsed.Hostname()) {
		if port := parsed.Port(); port != "" {
			parsed.Host = net.JoinHostPort(rewrite, port)
		} else {
			parsed.Host = rewrite
		}
	}

	path := strings.TrimSpace(r.cfg.CallbackPath)
	if path == "" {
		path = DefaultCallbackPath
	}
	parsed.Path = strings.TrimSuffix(parsed.Path, "/") + path
	parsed.RawQuery = ""
	parsed.Fragment = ""
	return parsed.String(), nil
}

func isLoopbackHost(host string) bool {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
