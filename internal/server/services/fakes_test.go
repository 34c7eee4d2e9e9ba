package services

import (
	"context"
	"errors"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/chippom/ChipsGIFs/internal/common"
	"github.com/chippom/ChipsGIFs/internal/server/geoip"
	"github.com/chippom/ChipsGIFs/internal/server/models"
	"github.com/chippom/ChipsGIFs/internal/server/objects"
	"github.com/chippom/ChipsGIFs/internal/settle"
)

var errBoom = errors.New("boom")

func fixedClock(t time.Time) Clock {
	loc, _ := time.LoadLocation("America/New_York")
	return Clock{Now: func() time.Time { return t }, Loc: loc}
}

type fakeCounters struct {
	mu     sync.Mutex
	counts map[string]int64
	incErr error
	getErr error
}

func newFakeCounters() *fakeCounters {
	return &fakeCounters{counts: map[string]int64{}}
}

func (f *fakeCounters) Increment(_ context.Context, gif string, _ time.Time, _ string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.incErr != nil {
		return 0, f.incErr
	}
	f.counts[gif]++
	return f.counts[gif], nil
}

func (f *fakeCounters) Get(_ context.Context, gif string) (*models.DownloadCounter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	n, ok := f.counts[gif]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &models.DownloadCounter{GifName: gif, Count: n}, nil
}

type fakeCache struct {
	mu        sync.Mutex
	entries   map[string]models.GeoCacheEntry
	getErr    error
	upsertErr error
	upserts   int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]models.GeoCacheEntry{}}
}

func (f *fakeCache) Get(_ context.Context, ip string) (*models.GeoCacheEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	e, ok := f.entries[ip]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &e, nil
}

func (f *fakeCache) Upsert(_ context.Context, e *models.GeoCacheEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.entries[e.IP] = *e
	return nil
}

type fakeLookuper struct {
	mu      sync.Mutex
	enabled bool
	result  geoip.Result
	err     error
	calls   int
}

func (f *fakeLookuper) Enabled() bool { return f.enabled }

func (f *fakeLookuper) Lookup(_ context.Context, _ string) (geoip.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.result, f.err
}

type fakeVisits struct {
	mu        sync.Mutex
	logs      []models.VisitorLog
	downloads []models.DownloadEvent
	summaries []models.DownloadSummary

	logErr      error
	downloadErr error
	summaryErr  error
}

func (f *fakeVisits) InsertVisitorLog(_ context.Context, v *models.VisitorLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.logErr != nil {
		return f.logErr
	}
	f.logs = append(f.logs, *v)
	return nil
}

func (f *fakeVisits) InsertDownload(_ context.Context, d *models.DownloadEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.downloadErr != nil {
		return f.downloadErr
	}
	f.downloads = append(f.downloads, *d)
	return nil
}

func (f *fakeVisits) InsertSummary(_ context.Context, s *models.DownloadSummary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.summaryErr != nil {
		return f.summaryErr
	}
	f.summaries = append(f.summaries, *s)
	return nil
}

type staticResolver struct {
	loc   models.Location
	calls int
	mu    sync.Mutex
}

func (r *staticResolver) Resolve(_ context.Context, _ string) models.Location {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.loc
}

type panicResolver struct{}

func (panicResolver) Resolve(context.Context, string) models.Location {
	panic("resolver exploded")
}

type fakeOpener struct {
	obj *objects.Object
	err error
}

func (f fakeOpener) Open(_ context.Context, _ string) (*objects.Object, error) {
	return f.obj, f.err
}

// syncBackground runs tasks inline so tests can assert on their effects.
type syncBackground struct {
	outcomes []settle.Outcome
	closed   bool
}

func (b *syncBackground) Go(ctx context.Context, tasks ...settle.Task) bool {
	if b.closed {
		return false
	}
	b.outcomes = append(b.outcomes, settle.All(ctx, tasks...)...)
	return true
}
