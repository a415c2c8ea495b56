// Package catalog consumes the upstream product API and turns its records
// into identity-mapped domain.Product values for the cart and wishlist.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/marketplace-state/internal/domain"
)

var (
	// ErrProductNotFound is returned when the upstream API (or the local
	// cache) has no product with the requested id.
	ErrProductNotFound = errors.New("product not found")

	// ErrUpstream wraps unexpected upstream status codes.
	ErrUpstream = errors.New("catalog upstream error")
)

// maxBody caps how much of an upstream response is read.
const maxBody = 8 << 20

// Client talks to the upstream product API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient returns a client for baseURL with a per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// do is the single helper used for every upstream request.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog unavailable: %w", err)
	}
	return resp, nil
}

// FetchAllProducts returns every product record. The upstream may answer
// with a bare array or with {"products": [...]}.
func (c *Client) FetchAllProducts(ctx context.Context) ([]domain.ServerProduct, error) {
	ctx, span := otel.Tracer("catalog/Client").Start(ctx, "FetchAllProducts")
	defer span.End()

	raw, err := c.get(ctx, span, "/products")
	if err != nil {
		return nil, err
	}

	var list []domain.ServerProduct
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "{") {
		var wrapped struct {
			Products []domain.ServerProduct `json:"products"`
		}
		err = json.Unmarshal(raw, &wrapped)
		list = wrapped.Products
	} else {
		err = json.Unmarshal(raw, &list)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode")
		return nil, fmt.Errorf("decode products: %w", err)
	}
	if list == nil {
		list = []domain.ServerProduct{}
	}
	span.SetAttributes(attribute.Int("catalog.products", len(list)))
	return list, nil
}

// FetchProduct returns one product record by its server id.
func (c *Client) FetchProduct(ctx context.Context, id string) (*domain.ServerProduct, error) {
	ctx, span := otel.Tracer("catalog/Client").Start(ctx, "FetchProduct",
		trace.WithAttributes(attribute.String("product.server_id", id)),
	)
	defer span.End()

	raw, err := c.get(ctx, span, "/products/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	var p domain.ServerProduct
	if err := json.Unmarshal(raw, &p); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("decode product %s: %w", id, err)
	}
	return &p, nil
}

// RecordVisit tells the upstream that a product page was viewed.
func (c *Client) RecordVisit(ctx context.Context, id string) error {
	ctx, span := otel.Tracer("catalog/Client").Start(ctx, "RecordVisit",
		trace.WithAttributes(attribute.String("product.server_id", id)),
	)
	defer span.End()

	resp, err := c.do(ctx, http.MethodPost, "/products/"+url.PathEscape(id)+"/visit", nil)
	if err != nil {
		span.RecordError(err)
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))

	return statusErr(span, resp.StatusCode, "record visit "+id)
}

func (c *Client) get(ctx context.Context, span trace.Span, path string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if err := statusErr(span, resp.StatusCode, "GET "+path); err != nil {
		return nil, err
	}
	return body, nil
}

func statusErr(span trace.Span, status int, what string) error {
	span.SetAttributes(attribute.Int("http.status_code", status))
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusNotFound:
		return fmt.Errorf("%s: %w", what, ErrProductNotFound)
	default:
		span.SetStatus(codes.Error, http.StatusText(status))
		return fmt.Errorf("%s: %w: status %d", what, ErrUpstream, status)
	}
}
