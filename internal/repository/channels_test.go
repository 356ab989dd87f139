// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/ManuGH/e2remote/internal/filter"
	"github.com/ManuGH/e2remote/internal/openwebif"
	"github.com/ManuGH/e2remote/internal/openwebif/fake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBouquets(t *testing.T) {
	env := newTestEnv(t)
	repo := NewChannels(env.provider)

	tv, err := repo.Bouquets(context.Background(), openwebif.KindTV)
	require.NoError(t, err)
	require.Len(t, tv, 2)
	assert.Equal(t, fake.FavouritesRef, tv[0].Ref)
	assert.Equal(t, fake.HDRef, tv[1].Ref)

	radio, err := repo.Bouquets(context.Background(), openwebif.KindRadio)
	require.NoError(t, err)
	require.Len(t, radio, 1)
	assert.Equal(t, "Radio", radio[0].Name)
}

func TestChannelsCarryURLs(t *testing.T) {
	env := newTestEnv(t)
	host, _ := env.receiver.HostPort()

	channels, err := NewChannels(env.provider).Channels(context.Background(), fake.FavouritesRef)
	require.NoError(t, err)
	require.Len(t, channels, 3)

	ard := channels[0]
	assert.Equal(t, "Das Erste HD", ard.Name)
	assert.Equal(t, 1, ard.Number)
	assert.Equal(t, "http://"+host+":8001/"+fake.ARDRef, ard.StreamURL)
	assert.Equal(t, env.receiver.URL+"/picon/1_0_19_283D_3FB_1_C00000_0_0_0.png", ard.PiconURL)
	assert.Equal(t, "ZDF HD", channels[1].Name)
	assert.Equal(t, "arte HD", channels[2].Name)
}

func TestWithNowNext(t *testing.T) {
	env := newTestEnv(t)
	start := testNow.Add(-15 * time.Minute)
	env.addEvent(fake.ARDRef, 1, "Tagesschau", start, 30*time.Minute)
	env.addEvent(fake.ARDRef, 2, "Tatort", start.Add(30*time.Minute), 90*time.Minute)
	env.addEvent(fake.ArteRef, 3, "Doku", start, time.Hour)

	channels, err := NewChannels(env.provider).WithNowNext(context.Background(), fake.FavouritesRef)
	require.NoError(t, err)
	require.Len(t, channels, 3)

	require.NotNil(t, channels[0].Now)
	require.NotNil(t, channels[0].Next)
	assert.Equal(t, "Tagesschau", channels[0].Now.Title)
	assert.Equal(t, "Tatort", channels[0].Next.Title)

	assert.Nil(t, channels[1].Now, "placeholders are dropped")
	assert.Nil(t, channels[1].Next)

	require.NotNil(t, channels[2].Now)
	assert.Equal(t, "Doku", channels[2].Now.Title)
	assert.Nil(t, channels[2].Next)

	got := filter.Filter(channels, "tatort", Channel.SearchFields)
	assert.Empty(t, got, "only the title airing now is searchable")
	got = filter.Filter(channels, "tages", Channel.SearchFields)
	require.Len(t, got, 1)
	assert.Equal(t, fake.ARDRef, got[0].Ref)
}

func TestWithNowNextSurvivesEPGFailure(t *testing.T) {
	env := newTestEnv(t)
	env.receiver.SetFailures("/api/epgnownext", 10)

	channels, err := NewChannels(env.provider).WithNowNext(context.Background(), fake.FavouritesRef)
	require.NoError(t, err)
	assert.Len(t, channels, 3)
}

func TestWithNowNextPropagatesServiceFailure(t *testing.T) {
	env := newTestEnv(t)
	env.receiver.SetFailures("/api/getservices", 10)

	_, err := NewChannels(env.provider).WithNowNext(context.Background(), fake.FavouritesRef)
	assert.ErrorIs(t, err, openwebif.ErrUpstreamError)
}

func TestSplitNowNext(t *testing.T) {
	events := []openwebif.Event{
		{ServiceRef: "a", Title: "A1", Begin: 10},
		{ServiceRef: "a", Title: "A2", Begin: 20},
		{ServiceRef: "b"},
		{ServiceRef: "b", Title: "B2", Begin: 20},
		{ServiceRef: "a", Title: "A3", Begin: 30},
	}
	got := splitNowNext(events)
	assert.Equal(t, "A1", got["a"][0].Title)
	assert.Equal(t, "A2", got["a"][1].Title)
	assert.Nil(t, got["b"][0])
	assert.Equal(t, "B2", got["b"][1].Title)
}
