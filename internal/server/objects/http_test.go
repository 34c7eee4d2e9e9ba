package objects

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chippom/ChipsGIFs/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPSource(t *testing.T) {
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		switch r.URL.Path {
		case "/gifs/Chip Wave.gif":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = io.WriteString(w, "GIF89a")
		case "/gifs/broken.gif":
			w.WriteHeader(http.StatusBadGateway)
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	src := NewHTTPSource(ts.URL+"/gifs/", ts.Client())
	assert.Equal(t, "remote", src.Name())

	obj, err := src.Open(context.Background(), "Chip Wave.gif")
	require.NoError(t, err)
	b, _ := io.ReadAll(obj.Body)
	_ = obj.Body.Close()
	assert.Equal(t, "GIF89a", string(b))
	assert.Equal(t, "image/gif", obj.ContentType)
	assert.Equal(t, "/gifs/Chip%20Wave.gif", gotPath)

	_, err = src.Open(context.Background(), "missing.gif")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = src.Open(context.Background(), "broken.gif")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrorNotFound)
}
