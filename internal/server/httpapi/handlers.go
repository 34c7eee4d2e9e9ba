package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/chippom/ChipsGIFs/internal/common"
	"github.com/chippom/ChipsGIFs/internal/logging"
	"github.com/chippom/ChipsGIFs/internal/netx"
	"github.com/chippom/ChipsGIFs/internal/server/objects"
	"github.com/chippom/ChipsGIFs/internal/server/services"
)

// MaxBodyBytes caps JSON request bodies.
const MaxBodyBytes = 64 << 10

type Counter interface {
	Increment(ctx context.Context, gifName string) (int64, error)
	Count(ctx context.Context, gifName string) (int64, error)
}

type Recorder interface {
	Record(ctx context.Context, v services.Visit) error
}

type Deliverer interface {
	Deliver(ctx context.Context, d services.Download) (*objects.Object, error)
}

type Handlers struct {
	counter  Counter
	visits   Recorder
	delivery Deliverer
	log      logging.Logger
}

func NewHandlers(c Counter, v Recorder, d Deliverer, log logging.Logger) *Handlers {
	return &Handlers{counter: c, visits: v, delivery: d, log: log.With("module", "http")}
}

// Deliver streams a GIF as an attachment.
func (h *Handlers) Deliver(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name := q.Get("gif_name")
	if name == "" {
		name = q.Get("gifname")
	}

	obj, err := h.delivery.Deliver(r.Context(), services.Download{
		GifName:   name,
		IP:        netx.ClientIP(r),
		UserAgent: r.UserAgent(),
		Referer:   r.Referer(),
		HeadOnly:  r.Method == http.MethodHead,
	})
	switch {
	case errors.Is(err, common.ErrorMissingGifName), errors.Is(err, common.ErrorInvalidGifName):
		writeError(w, http.StatusBadRequest, msgMissingOrInvalid)
		return
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, msgGifNotFound)
		return
	case err != nil:
		h.log.Error(r.Context(), "deliver failed", "gif_name", name, "err", err)
		writeError(w, http.StatusInternalServerError, msgServerError)
		return
	}
	defer obj.Body.Close()

	hdr := w.Header()
	hdr.Set("Content-Type", obj.ContentType)
	hdr.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	hdr.Set("Cache-Control", "public, max-age=31536000")
	if obj.Size >= 0 {
		hdr.Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}

	if _, err := io.Copy(w, obj.Body); err != nil {
		h.log.Warn(r.Context(), "deliver stream interrupted", "gif_name", name, "err", err)
	}
}

// Count reports the stored count. Backend failures read as zero so the
// gallery keeps rendering.
func (h *Handlers) Count(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("gif_name")

	n, err := h.counter.Count(r.Context(), name)
	switch {
	case errors.Is(err, common.ErrorMissingGifName):
		writeError(w, http.StatusBadRequest, msgMissingParam)
		return
	case errors.Is(err, common.ErrorInvalidGifName):
		writeError(w, http.StatusBadRequest, msgInvalidParam)
		return
	case err != nil:
		h.log.Warn(r.Context(), "count unavailable, reporting zero", "gif_name", name, "err", err)
		n = 0
	}

	writeJSON(w, http.StatusOK, countResponse{Count: n})
}

type logRequest struct {
	VisitorID     string `json:"visitor_id"`
	Page          string `json:"page"`
	Referrer      string `json:"referrer"`
	UserAgent     string `json:"userAgent"`
	GifName       string `json:"gif_name"`
	ExcludeTester bool   `json:"excludeTester"`
}

// Log records a gallery visit. Write failures are not reported to the
// caller.
func (h *Handlers) Log(w http.ResponseWriter, r *http.Request) {
	var req logRequest
	if !h.decode(w, r, &req) {
		return
	}

	ua := req.UserAgent
	if ua == "" {
		ua = r.UserAgent()
	}

	err := h.visits.Record(r.Context(), services.Visit{
		VisitorID:     req.VisitorID,
		Page:          req.Page,
		Referrer:      req.Referrer,
		UserAgent:     ua,
		GifName:       req.GifName,
		ExcludeTester: req.ExcludeTester,
		IP:            netx.ClientIP(r),
	})
	if errors.Is(err, common.ErrorInvalidGifName) {
		writeError(w, http.StatusBadRequest, msgInvalidField)
		return
	}
	if err != nil {
		h.log.Debug(r.Context(), "visit recorded with failures", "err", err)
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: msgLogRecorded})
}

type updateRequest struct {
	GifName string `json:"gif_name"`
}

// Update increments the download counter.
func (h *Handlers) Update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if !h.decode(w, r, &req) {
		return
	}

	n, err := h.counter.Increment(r.Context(), req.GifName)
	switch {
	case errors.Is(err, common.ErrorMissingGifName):
		writeError(w, http.StatusBadRequest, msgMissingField)
		return
	case errors.Is(err, common.ErrorInvalidGifName):
		writeError(w, http.StatusBadRequest, msgInvalidField)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: msgCountUpdated, Count: &n})
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decode reads a JSON body of any declared content type, so
// navigator.sendBeacon's text/plain payloads are accepted. The body must
// be a JSON object.
func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	var raw json.RawMessage
	err := json.NewDecoder(r.Body).Decode(&raw)
	if err == nil {
		if len(raw) == 0 || raw[0] != '{' {
			writeError(w, http.StatusBadRequest, msgInvalidJSON)
			return false
		}
		err = json.Unmarshal(raw, v)
	}
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
		return false
	}
	writeError(w, http.StatusBadRequest, msgInvalidJSON)
	return false
}
