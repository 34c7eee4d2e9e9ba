package objects

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/chippom/ChipsGIFs/internal/common"
	"github.com/chippom/ChipsGIFs/internal/server/models"
)

// HTTPSource fetches {baseURL}/{name} from a public mirror. The request
// is bounded by the caller's context.
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

func NewHTTPSource(baseURL string, client *http.Client) *HTTPSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (h *HTTPSource) Name() string {
	return models.MethodRemote
}

func (h *HTTPSource) Open(ctx context.Context, name string) (*Object, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+"/"+url.PathEscape(name), nil)
	if err != nil {
		return nil, err
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		drain(resp.Body)
		return nil, common.ErrorNotFound
	case resp.StatusCode != http.StatusOK:
		drain(resp.Body)
		return nil, fmt.Errorf("remote status %d", resp.StatusCode)
	}

	return &Object{
		Body:        resp.Body,
		ContentType: common.DefaultContentType,
		Size:        resp.ContentLength,
		Source:      h.Name(),
	}, nil
}

func drain(rc io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 4<<10))
	_ = rc.Close()
}
