// Package geoip resolves IP addresses with the ipinfo.io JSON API.
package geoip

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/chippom/ChipsGIFs/internal/netx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Result is what the provider knows about an address. Any part may be empty.
type Result struct {
	City    string `json:"city"`
	Region  string `json:"region"`
	Country string `json:"country"`
}

// ErrNoToken is returned when no API token is configured.
var ErrNoToken = errors.New("geoip: no api token")

// IPInfoClient calls GET {base}/{ip}/json once per lookup. The token goes in
// the Authorization header so it never shows up in URL errors.
type IPInfoClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewIPInfoClient builds a client whose requests time out after timeout.
func NewIPInfoClient(baseURL, token string, timeout time.Duration) *IPInfoClient {
	return &IPInfoClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether a token is configured.
func (c *IPInfoClient) Enabled() bool {
	return c.token != ""
}

func (c *IPInfoClient) Lookup(ctx context.Context, ip string) (Result, error) {
	ctx, span := otel.Tracer("chipsgifs/geoip").Start(ctx, "ipinfo.lookup")
	defer span.End()
	span.SetAttributes(attribute.String("net.peer.ip", ip))

	if !c.Enabled() {
		return Result{}, ErrNoToken
	}

	u := c.baseURL + "/" + url.PathEscape(ip) + "/json"

	var res Result
	err := netx.DoJSON(ctx, c.http, http.MethodGet, u, nil, &res,
		netx.WithHeader("Authorization", "Bearer "+c.token))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
		return Result{}, err
	}
	return res, nil
}

// Compose joins the non-empty parts with ", ", or returns fallback.
func (r Result) Compose(fallback string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{r.City, r.Region, r.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return fallback
	}
	return strings.Join(parts, ", ")
}
