// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package repository

import (
	"context"

	"github.com/ManuGH/e2remote/internal/filter"
	xglog "github.com/ManuGH/e2remote/internal/log"
	"github.com/ManuGH/e2remote/internal/metrics"
	"github.com/ManuGH/e2remote/internal/openwebif"
	"golang.org/x/sync/errgroup"
)

// Channel is a playable service with presentation URLs.
type Channel struct {
	Ref       string           `json:"ref"`
	Name      string           `json:"name"`
	Number    int              `json:"number"`
	PiconURL  string           `json:"picon_url"`
	StreamURL string           `json:"stream_url"`
	Now       *openwebif.Event `json:"now,omitempty"`
	Next      *openwebif.Event `json:"next,omitempty"`
}

// SearchFields ranks a channel by its name and the title airing now.
func (c Channel) SearchFields() []filter.Field {
	title := ""
	if c.Now != nil {
		title = c.Now.Title
	}
	return filter.ChannelFields(c.Name, title)
}

// Channels reads bouquets and their services.
type Channels struct {
	provider *Provider
}

// NewChannels creates a channel repository.
func NewChannels(p *Provider) *Channels {
	return &Channels{provider: p}
}

// Bouquets lists the TV or radio bouquets.
func (r *Channels) Bouquets(ctx context.Context, kind openwebif.Kind) ([]openwebif.Bouquet, error) {
	ctx, c, err := r.provider.withClient(ctx)
	if err != nil {
		return nil, err
	}
	bouquets, err := c.Bouquets(ctx, kind)
	if err != nil {
		return nil, err
	}
	metrics.SetBouquetsLoaded(string(kind), len(bouquets))
	return bouquets, nil
}

// Channels lists the services of a bouquet with picon and stream URLs.
func (r *Channels) Channels(ctx context.Context, bouquetRef string) ([]Channel, error) {
	ctx, c, err := r.provider.withClient(ctx)
	if err != nil {
		return nil, err
	}
	services, err := c.Services(ctx, bouquetRef)
	if err != nil {
		return nil, err
	}
	metrics.AddServicesLoaded(len(services))
	return toChannels(c, services), nil
}

func toChannels(c *openwebif.Client, services []openwebif.Service) []Channel {
	out := make([]Channel, 0, len(services))
	for _, s := range services {
		out = append(out, Channel{
			Ref:       s.Ref,
			Name:      s.Name,
			Number:    s.Pos,
			PiconURL:  c.PiconURL(s.Ref),
			StreamURL: c.StreamURL(s.Ref),
		})
	}
	return out
}

// WithNowNext lists a bouquet's channels with their current and next event.
// The service list and the now/next EPG are fetched in parallel.
func (r *Channels) WithNowNext(ctx context.Context, bouquetRef string) ([]Channel, error) {
	ctx, c, err := r.provider.withClient(ctx)
	if err != nil {
		return nil, err
	}

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
		events, err = c.EPGNowNext(gctx, bouquetRef)
		if err != nil && !openwebif.IsNetworkError(err) {
			// Channel lists stay usable without EPG.
			logger := xglog.WithComponentFromContext(ctx, "repository")
			logger.Warn().Err(err).
				Str(xglog.FieldEvent, "repository.nownext_failed").
				Str(xglog.FieldBouquetRef, bouquetRef).
				Msg("now/next unavailable")
			events, err = nil, nil
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	metrics.AddServicesLoaded(len(services))
	channels := toChannels(c, services)
	nowNext := splitNowNext(events)
	for i := range channels {
		if nn, ok := nowNext[channels[i].Ref]; ok {
			channels[i].Now, channels[i].Next = nn[0], nn[1]
		}
	}
	return channels, nil
}

// splitNowNext groups a now/next listing by service. Per service the first
// entry is the current event and the second the next one; placeholders for
// services without EPG are dropped.
func splitNowNext(events []openwebif.Event) map[string][2]*openwebif.Event {
	out := make(map[string][2]*openwebif.Event)
	seen := make(map[string]int)
	for i := range events {
		ev := events[i]
		idx := seen[ev.ServiceRef]
		seen[ev.ServiceRef] = idx + 1
		if idx > 1 || !ev.Valid() {
			continue
		}
		pair := out[ev.ServiceRef]
		pair[idx] = &ev
		out[ev.ServiceRef] = pair
	}
	return out
}
