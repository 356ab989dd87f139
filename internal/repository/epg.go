// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package repository

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/ManuGH/e2remote/internal/openwebif"
	"github.com/ManuGH/e2remote/internal/timeutil"
	"golang.org/x/sync/errgroup"
)

// ServiceSchedule is one row of a bouquet EPG grid.
type ServiceSchedule struct {
	Channel Channel           `json:"channel"`
	Events  []openwebif.Event `json:"events"`
}

// EPG reads programme guide data.
type EPG struct {
	provider *Provider
	clock    Clock
}

// NewEPG creates an EPG repository.
func NewEPG(p *Provider, clock Clock) *EPG {
	if clock == nil {
		clock = RealClock{}
	}
	return &EPG{provider: p, clock: clock}
}

// ForService returns the events of one service overlapping day, ordered by
// start time.
func (r *EPG) ForService(ctx context.Context, serviceRef string, day time.Time) ([]openwebif.Event, error) {
	ctx, c, err := r.provider.withClient(ctx)
	if err != nil {
		return nil, err
	}
	from, to := timeutil.DayWindow(day)
	events, err := c.EPGService(ctx, serviceRef, from, to)
	if err != nil {
		return nil, err
	}
	return inWindow(events, from, to), nil
}

// Now returns the events currently airing in a bouquet.
func (r *EPG) Now(ctx context.Context, bouquetRef string) ([]openwebif.Event, error) {
	ctx, c, err := r.provider.withClient(ctx)
	if err != nil {
		return nil, err
	}
	events, err := c.EPGNow(ctx, bouquetRef)
	if err != nil {
		return nil, err
	}
	out := make([]openwebif.Event, 0, len(events))
	for _, ev := range events {
		if ev.Valid() {
			out = append(out, ev)
		}
	}
	return out, nil
}

// Search runs a receiver-side full text search. Past events are dropped and
// the rest ordered by start time.
func (r *EPG) Search(ctx context.Context, query string) ([]openwebif.Event, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []openwebif.Event{}, nil
	}
	ctx, c, err := r.provider.withClient(ctx)
	if err != nil {
		return nil, err
	}
	events, err := c.EPGSearch(ctx, query, true)
	if err != nil {
		return nil, err
	}
	now := r.clock.Now().Unix()
	out := make([]openwebif.Event, 0, len(events))
	for _, ev := range events {
		if ev.Valid() && ev.End() > now {
			out = append(out, ev)
		}
	}
	sortEvents(out)
	return out, nil
}

// Multi returns the day's schedule of every channel in a bouquet, in bouquet
// order. Channels without events are included with an empty list.
func (r *EPG) Multi(ctx context.Context, bouquetRef string, day time.Time) ([]ServiceSchedule, error) {
	ctx, c, err := r.provider.withClient(ctx)
	if err != nil {
		return nil, err
	}
	from, to := timeutil.DayWindow(day)

	var (
		services []openwebif.Service
		events   []openwebif.Event
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		services, err = c.Services(gctx, bouquetRef)
		return err
	})
	g.Go(func() error {
		var err error
		events, err = c.EPGBouquet(gctx, bouquetRef, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byRef := make(map[string][]openwebif.Event)
	for _, ev := range inWindow(events, from, to) {
		byRef[ev.ServiceRef] = append(byRef[ev.ServiceRef], ev)
	}
	out := make([]ServiceSchedule, 0, len(services))
	for _, ch := range toChannels(c, services) {
		evs := byRef[ch.Ref]
		if evs == nil {
			evs = []openwebif.Event{}
		}
		out = append(out, ServiceSchedule{Channel: ch, Events: evs})
	}
	return out, nil
}

func inWindow(events []openwebif.Event, from, to time.Time) []openwebif.Event {
	lo, hi := from.Unix(), to.Unix()
	out := make([]openwebif.Event, 0, len(events))
	for _, ev := range events {
		if ev.Valid() && ev.End() > lo && ev.Begin < hi {
			out = append(out, ev)
		}
	}
	sortEvents(out)
	return out
}

func sortEvents(events []openwebif.Event) {
	slices.SortStableFunc(events, func(a, b openwebif.Event) int {
		switch {
		case a.Begin < b.Begin:
			return -1
		case a.Begin > b.Begin:
			return 1
		}
		return strings.Compare(a.ServiceRef, b.ServiceRef)
	})
}
