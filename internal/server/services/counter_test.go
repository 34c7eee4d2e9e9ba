package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chippom/ChipsGIFs/internal/common"
	"github.com/chippom/ChipsGIFs/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterService_Increment(t *testing.T) {
	repo := newFakeCounters()
	svc := NewCounterService(repo, fixedClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)), logging.Nop())
	ctx := context.Background()

	n, err := svc.Increment(ctx, "cat.gif")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = svc.Increment(ctx, "cat.gif")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = svc.Increment(ctx, "dog.gif")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "counters are independent")
}

func TestCounterService_Increment_Validation(t *testing.T) {
	repo := newFakeCounters()
	svc := NewCounterService(repo, NewClock(time.UTC), logging.Nop())

	_, err := svc.Increment(context.Background(), "")
	assert.ErrorIs(t, err, common.ErrorMissingGifName)

	_, err = svc.Increment(context.Background(), "../etc/passwd")
	assert.ErrorIs(t, err, common.ErrorInvalidGifName)

	assert.Empty(t, repo.counts, "nothing written for rejected names")
}

func TestCounterService_Increment_StoreFailure(t *testing.T) {
	repo := newFakeCounters()
	repo.incErr = errBoom
	svc := NewCounterService(repo, NewClock(time.UTC), logging.Nop())

	_, err := svc.Increment(context.Background(), "cat.gif")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrorInternal)
	assert.ErrorIs(t, err, errBoom)
}

func TestCounterService_Count(t *testing.T) {
	repo := newFakeCounters()
	repo.counts["cat.gif"] = 41
	svc := NewCounterService(repo, NewClock(time.UTC), logging.Nop())
	ctx := context.Background()

	n, err := svc.Count(ctx, "cat.gif")
	require.NoError(t, err)
	assert.Equal(t, int64(41), n)

	n, err = svc.Count(ctx, "never-seen.gif")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	_, err = svc.Count(ctx, "")
	assert.ErrorIs(t, err, common.ErrorMissingGifName)

	repo.getErr = errBoom
	_, err = svc.Count(ctx, "cat.gif")
	assert.True(t, errors.Is(err, common.ErrorUpstream))
}
