// Package indexnow pings an IndexNow endpoint so search engines recrawl
// the gallery pages.
package indexnow

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"
)

var ErrNoKey = errors.New("indexnow key not configured")

// maxInFlight bounds concurrent submissions to one endpoint.
const maxInFlight = 4

// Result is the outcome for one URL. Err is set when the request could not
// be made at all.
type Result struct {
	URL    string `json:"url"`
	Status int    `json:"status,omitempty"`
	OK     bool   `json:"ok"`
	Err    string `json:"error,omitempty"`
}

type Submitter struct {
	endpoint string
	key      string
	http     *http.Client
}

func NewSubmitter(endpoint, key string, timeout time.Duration) *Submitter {
	return &Submitter{endpoint: endpoint, key: key, http: &http.Client{Timeout: timeout}}
}

// Submit sends one GET per URL and reports every outcome in input order.
// Individual failures do not stop the others.
func (s *Submitter) Submit(ctx context.Context, urls []string) ([]Result, error) {
	if s.key == "" {
		return nil, ErrNoKey
	}

	results := make([]Result, len(urls))

	var g errgroup.Group
	g.SetLimit(maxInFlight)
	for i, u := range urls {
		g.Go(func() error {
			results[i] = s.submit(ctx, u)
			return nil
		})
	}
	_ = g.Wait()

	return results, nil
}

func (s *Submitter) submit(ctx context.Context, pageURL string) Result {
	res := Result{URL: pageURL}

	q := url.Values{"url": {pageURL}, "key": {s.key}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		res.Err = err.Error()
		return res
	}

	resp, err := s.http.Do(req)
	if err != nil {
		res.Err = err.Error()
		return res
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	res.Status = resp.StatusCode
	res.OK = resp.StatusCode >= 200 && resp.StatusCode < 300
	return res
}
