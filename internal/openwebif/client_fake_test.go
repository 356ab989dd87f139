// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package openwebif_test

import (
	"context"
	"testing"
	"time"

	"github.com/ManuGH/e2remote/internal/openwebif"
	"github.com/ManuGH/e2remote/internal/openwebif/fake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeClient(t *testing.T) (*fake.Receiver, *openwebif.Client) {
	t.Helper()
	rx := fake.New()
	t.Cleanup(rx.Close)
	c := openwebif.New(rx.URL, openwebif.Options{
		Backoff:          time.Millisecond,
		MaxBackoff:       time.Millisecond,
		RateLimit:        1000,
		BreakerThreshold: -1,
	})
	return rx, c
}

func TestBouquetsSkipMarkers(t *testing.T) {
	_, c := newFakeClient(t)

	tv, err := c.Bouquets(context.Background(), openwebif.KindTV)
	require.NoError(t, err)
	assert.Equal(t, []openwebif.Bouquet{
		{Ref: fake.FavouritesRef, Name: "Favourites (TV)"},
		{Ref: fake.HDRef, Name: "HD Channels"},
	}, tv)

	radio, err := c.Bouquets(context.Background(), openwebif.ParseKind("Radio"))
	require.NoError(t, err)
	require.Len(t, radio, 1)
	assert.Equal(t, "Radio", radio[0].Name)
}

func TestServicesKeepBouquetPositions(t *testing.T) {
	_, c := newFakeClient(t)

	svcs, err := c.Services(context.Background(), fake.FavouritesRef)
	require.NoError(t, err)
	require.Len(t, svcs, 3)
	assert.Equal(t, fake.ARDRef, svcs[0].Ref)
	assert.Equal(t, 1, svcs[0].Pos)
	assert.Equal(t, fake.ZDFRef, svcs[1].Ref)
	assert.Equal(t, 2, svcs[1].Pos)
}

func TestEPGWindowAndNowNext(t *testing.T) {
	rx, c := newFakeClient(t)
	now := time.Unix(1_700_000_500, 0)
	rx.SetNow(now)
	rx.AddEvent(fake.ARDRef, fake.Event{ID: 1, Title: "Tagesschau", Begin: 1_700_000_000, Duration: 900})
	rx.AddEvent(fake.ARDRef, fake.Event{ID: 2, Title: "Tatort", Short: "Krimi", Begin: 1_700_000_900, Duration: 5400})
	rx.AddEvent(fake.ARDRef, fake.Event{ID: 3, Title: "Tagesthemen", Begin: 1_700_006_300, Duration: 1800})

	events, err := c.EPGService(context.Background(), fake.ARDRef, time.Unix(1_700_000_900, 0), time.Unix(1_700_006_000, 0))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Tatort", events[0].Title)
	assert.Equal(t, int64(1_700_006_300), events[0].End())
	assert.Equal(t, "Das Erste HD", events[0].ServiceName)

	nownext, err := c.EPGNowNext(context.Background(), fake.HDRef)
	require.NoError(t, err)
	require.Len(t, nownext, 4)
	assert.Equal(t, "Tagesschau", nownext[0].Title)
	assert.Equal(t, "Tatort", nownext[1].Title)
	assert.False(t, nownext[2].Valid(), "arte has no EPG")
	assert.Equal(t, fake.ArteRef, nownext[2].ServiceRef)
}

func TestEPGSearch(t *testing.T) {
	rx, c := newFakeClient(t)
	rx.AddEvent(fake.ARDRef, fake.Event{ID: 2, Title: "Tatort", Short: "Krimi", Begin: 1_700_000_900, Duration: 5400})
	rx.AddEvent(fake.ZDFRef, fake.Event{ID: 9, Title: "Der Alte", Short: "Krimi", Begin: 1_700_000_900, Duration: 3600})

	titles, err := c.EPGSearch(context.Background(), "krimi", false)
	require.NoError(t, err)
	assert.Empty(t, titles)

	full, err := c.EPGSearch(context.Background(), "krimi", true)
	require.NoError(t, err)
	assert.Len(t, full, 2)
}

func TestTimerLifecycle(t *testing.T) {
	rx, c := newFakeClient(t)
	ctx := context.Background()

	spec := openwebif.TimerSpec{ServiceRef: fake.ARDRef, Name: "Tatort", Begin: 1000, End: 2000}
	require.NoError(t, c.AddTimer(ctx, spec))

	err := c.AddTimer(ctx, openwebif.TimerSpec{ServiceRef: fake.ZDFRef, Name: "Overlap", Begin: 1500, End: 2500})
	assert.True(t, openwebif.IsTimerConflict(err))
	assert.Equal(t, []string{"Tatort"}, openwebif.ConflictingTimers(err))

	key := openwebif.TimerKey{ServiceRef: fake.ARDRef, Begin: 1000, End: 2000}
	spec.End = 2400
	spec.Name = "Tatort (long)"
	require.NoError(t, c.ChangeTimer(ctx, key, spec))

	timers, err := c.Timers(ctx)
	require.NoError(t, err)
	require.Len(t, timers, 1)
	assert.Equal(t, "Tatort (long)", timers[0].Name)
	assert.Equal(t, int64(2400), timers[0].End)

	disabled, err := c.ToggleTimer(ctx, timers[0].Key())
	require.NoError(t, err)
	assert.True(t, disabled)

	require.NoError(t, c.DeleteTimer(ctx, timers[0].Key()))
	assert.Empty(t, rx.Timers())

	err = c.DeleteTimer(ctx, timers[0].Key())
	assert.True(t, openwebif.IsTimerNotFound(err))
}

func TestMoviesAndDelete(t *testing.T) {
	rx, c := newFakeClient(t)
	rx.AddMovie(fake.Movie{ServiceRef: "1:0:0:0:0:0:0:0:0:0:/media/hdd/movie/a.ts", Title: "A", Size: 1 << 30, RecordingTime: 1_700_000_000})

	list, err := c.Movies(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, list.Movies, 1)
	assert.Equal(t, int64(1<<30), list.Movies[0].SizeBytes())
	assert.Equal(t, int64(1_700_000_000), list.Movies[0].Begin.Int64())
	assert.Len(t, list.Bookmarks, 2)

	require.NoError(t, c.DeleteMovie(context.Background(), list.Movies[0].ServiceRef))
	assert.Error(t, c.DeleteMovie(context.Background(), list.Movies[0].ServiceRef))
}

func TestDeviceControls(t *testing.T) {
	rx, c := newFakeClient(t)
	ctx := context.Background()

	info, err := c.About(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Receiver 4K", info.Model)
	assert.Len(t, info.Tuners, 2)

	require.NoError(t, c.Zap(ctx, fake.ZDFRef))
	assert.Equal(t, fake.ZDFRef, rx.CurrentService())

	status, err := c.StatusInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ZDF HD", status.ServiceName)

	require.NoError(t, c.RemoteControl(ctx, 352, false))
	assert.Equal(t, []int{352}, rx.Keys())

	standby, err := c.PowerState(ctx, openwebif.PowerStandby)
	require.NoError(t, err)
	assert.True(t, standby)

	require.NoError(t, c.Message(ctx, "Hello", openwebif.MessageInfo, 5))
	assert.Equal(t, []string{"Hello"}, rx.Messages())
}

func TestBasicAuthAgainstFake(t *testing.T) {
	rx, c := newFakeClient(t)
	rx.RequireAuth("root", "pw")

	_, err := c.About(context.Background())
	assert.ErrorIs(t, err, openwebif.ErrForbidden)

	authed := openwebif.New(rx.URL, openwebif.Options{Username: "root", Password: "pw", BreakerThreshold: -1})
	_, err = authed.About(context.Background())
	assert.NoError(t, err)
}
