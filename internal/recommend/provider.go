package recommend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/justsurfingit/job-board/internal/apierr"
)

// Provider produces recommendations for one request.
type Provider interface {
	Name() string
	Recommend(ctx context.Context, req Request) (*Response, error)
}

const maxResponseBytes = 4 << 20

// HTTPProvider posts the request to the external recommendation service.
type HTTPProvider struct {
	URL    string
	Client *http.Client
}

func NewHTTPProvider(url string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		URL: url,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (p *HTTPProvider) Name() string { return "ai-service" }

func (p *HTTPProvider) Recommend(ctx context.Context, req Request) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, apierr.Internal("encode recommendation request", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.URL, bytes.NewReader(body))
	if err != nil {
		return nil, apierr.Internal("build recommendation request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := p.Client.Do(httpReq)
	if err != nil {
		return nil, apierr.UpstreamUnavailable("recommendation service unreachable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, apierr.UpstreamUnavailable("recommendation service response unreadable", err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusServiceUnavailable:
		return nil, apierr.UpstreamUnavailable(fmt.Sprintf("recommendation service unavailable (status %d)", resp.StatusCode), nil)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, apierr.UpstreamUnavailable(fmt.Sprintf("recommendation service failed (status %d)", resp.StatusCode), nil)
	}

	out, err := DecodeResponse(raw)
	if err != nil {
		return nil, apierr.UpstreamUnavailable("recommendation service returned an invalid body", err)
	}
	if !out.Success {
		msg := out.Message
		if msg == "" {
			msg = "recommendation service reported failure"
		}
		return nil, apierr.UpstreamUnavailable(msg, nil)
	}
	return out, nil
}

// Recommender is the in-process matcher used when the external service fails.
type Recommender interface {
	RecommendFor(ctx context.Context, req Request) (*Response, error)
}

// LocalProvider adapts a Recommender to Provider.
type LocalProvider struct {
	Recommender Recommender
}

func (p LocalProvider) Name() string { return "legacy" }

func (p LocalProvider) Recommend(ctx context.Context, req Request) (*Response, error) {
	return p.Recommender.RecommendFor(ctx, req)
}
