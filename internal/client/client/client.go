package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/chippom/ChipsGIFs/internal/netx"
)

type Client interface {
	Ping(ctx context.Context) error
	Count(ctx context.Context, gifName string) (int64, error)
	Bump(ctx context.Context, gifName string) (int64, error)
	Fetch(ctx context.Context, gifName string, w io.Writer) (int64, error)
}

type HTTPClient struct {
	baseURL string
	http    *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) endpoint(path string, q url.Values) string {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
	}
	if err := netx.DoJSON(ctx, c.http, http.MethodGet, c.endpoint("/healthz", nil), nil, &out); err != nil {
		return mapError(err)
	}
	if out.Status != "ok" {
		return fmt.Errorf("%w: status %q", ErrUnavailable, out.Status)
	}
	return nil
}

func (c *HTTPClient) Count(ctx context.Context, gifName string) (int64, error) {
	var out struct {
		Count int64 `json:"count"`
	}
	err := netx.DoJSON(ctx, c.http, http.MethodGet,
		c.endpoint("/api/count", url.Values{"gif_name": {gifName}}), nil, &out)
	if err != nil {
		return 0, mapError(err)
	}
	return out.Count, nil
}

func (c *HTTPClient) Bump(ctx context.Context, gifName string) (int64, error) {
	in := struct {
		GifName string `json:"gif_name"`
	}{gifName}
	var out struct {
		Message string `json:"message"`
		Count   int64  `json:"count"`
	}
	if err := netx.DoJSON(ctx, c.http, http.MethodPost, c.endpoint("/api/update", nil), in, &out); err != nil {
		return 0, mapError(err)
	}
	return out.Count, nil
}

// Fetch downloads gifName through /api/deliver into w and returns the
// number of bytes written.
func (c *HTTPClient) Fetch(ctx context.Context, gifName string, w io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.endpoint("/api/deliver", url.Values{"gif_name": {gifName}}), nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		return 0, mapError(&netx.StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))})
	}

	return io.Copy(w, resp.Body)
}

func mapError(err error) error {
	var se *netx.StatusError
	if !errors.As(err, &se) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	switch {
	case se.Code == http.StatusNotFound:
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case se.Code == http.StatusBadRequest:
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	case se.Code >= 500:
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}
