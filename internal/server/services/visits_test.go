package services

import (
	"context"
	"testing"
	"time"

	"github.com/chippom/ChipsGIFs/internal/common"
	"github.com/chippom/ChipsGIFs/internal/logging"
	"github.com/chippom/ChipsGIFs/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var boston = models.Location{City: "Boston", Country: "US", Display: "Boston, US", Source: models.SourceAPI}

func TestVisitService_Record_AllRows(t *testing.T) {
	repo := &fakeVisits{}
	geo := &staticResolver{loc: boston}
	at := time.Date(2025, 1, 15, 20, 30, 0, 0, time.UTC)
	svc := NewVisitService(repo, geo, fixedClock(at), logging.Nop())

	err := svc.Record(context.Background(), Visit{
		VisitorID: "v-1",
		Page:      "/gallery",
		Referrer:  "https://example.com/",
		UserAgent: "Mozilla/5.0",
		GifName:   "cat.gif",
		IP:        "8.8.8.8",
	})
	require.NoError(t, err)

	require.Len(t, repo.logs, 1)
	l := repo.logs[0]
	assert.Equal(t, "v-1", l.VisitorID)
	assert.Equal(t, "/gallery", l.Page)
	assert.Equal(t, "Boston, US", l.Location)
	assert.Equal(t, "US", l.Country)
	assert.Equal(t, at, l.CreatedAt)
	assert.Equal(t, "1/15/2025, 3:30:00 PM", l.EasternTime)

	require.Len(t, repo.downloads, 1)
	assert.Equal(t, models.MethodBeacon, repo.downloads[0].Method)
	require.Len(t, repo.summaries, 1)
	assert.Equal(t, "https://example.com/", repo.summaries[0].Referrer)
}

func TestVisitService_Record_Fallbacks(t *testing.T) {
	repo := &fakeVisits{}
	svc := NewVisitService(repo, &staticResolver{loc: boston}, NewClock(time.UTC), logging.Nop())

	require.NoError(t, svc.Record(context.Background(), Visit{IP: "8.8.8.8"}))

	require.Len(t, repo.logs, 1)
	assert.Equal(t, "unknown", repo.logs[0].Page)
	assert.Equal(t, "none", repo.logs[0].Referrer)
	assert.Empty(t, repo.downloads, "no gif, no download row")
	assert.Empty(t, repo.summaries)

	repo = &fakeVisits{}
	svc = NewVisitService(repo, &staticResolver{loc: boston}, NewClock(time.UTC), logging.Nop())
	require.NoError(t, svc.Record(context.Background(), Visit{Referrer: "https://r.example/", GifName: "a.gif"}))

	assert.Equal(t, "https://r.example/", repo.logs[0].Page, "page falls back to referrer")
	assert.Empty(t, repo.downloads, "no visitor, no download row")
	assert.Len(t, repo.summaries, 1)
}

func TestVisitService_Record_ExcludeTester(t *testing.T) {
	repo := &fakeVisits{}
	geo := &staticResolver{loc: boston}
	svc := NewVisitService(repo, geo, NewClock(time.UTC), logging.Nop())

	require.NoError(t, svc.Record(context.Background(), Visit{VisitorID: "me", GifName: "a.gif", ExcludeTester: true}))
	assert.Empty(t, repo.logs)
	assert.Empty(t, repo.downloads)
	assert.Empty(t, repo.summaries)
	assert.Zero(t, geo.calls)
}

func TestVisitService_Record_ExcludeTesterSkipsValidation(t *testing.T) {
	repo := &fakeVisits{}
	svc := NewVisitService(repo, &staticResolver{loc: boston}, NewClock(time.UTC), logging.Nop())

	require.NoError(t, svc.Record(context.Background(), Visit{GifName: "a/b.gif", ExcludeTester: true}))
	assert.Empty(t, repo.logs)
}

func TestVisitService_Record_InvalidGifName(t *testing.T) {
	repo := &fakeVisits{}
	svc := NewVisitService(repo, &staticResolver{loc: boston}, NewClock(time.UTC), logging.Nop())

	err := svc.Record(context.Background(), Visit{VisitorID: "v", GifName: "../../x"})
	assert.ErrorIs(t, err, common.ErrorInvalidGifName)
	assert.Empty(t, repo.logs)
}

func TestVisitService_Record_WriteFailuresAreIsolated(t *testing.T) {
	repo := &fakeVisits{logErr: errBoom}
	svc := NewVisitService(repo, &staticResolver{loc: boston}, NewClock(time.UTC), logging.Nop())

	err := svc.Record(context.Background(), Visit{VisitorID: "v", GifName: "a.gif"})
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)
	assert.NotErrorIs(t, err, common.ErrorInvalidGifName)

	assert.Len(t, repo.downloads, 1, "sibling writes still land")
	assert.Len(t, repo.summaries, 1)
}
