// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package openwebif

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Event is one EPG entry.
type Event struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	ShortDesc   string `json:"short_desc,omitempty"`
	LongDesc    string `json:"long_desc,omitempty"`
	Begin       int64  `json:"begin"`    // unix seconds
	Duration    int64  `json:"duration"` // seconds
	ServiceRef  string `json:"service_ref"`
	ServiceName string `json:"service_name,omitempty"`
	Now         int64  `json:"-"`
}

// End returns the unix end time of the event.
func (e Event) End() int64 { return e.Begin + e.Duration }

// Valid reports whether the receiver sent a real event rather than a placeholder.
func (e Event) Valid() bool { return e.Begin > 0 && e.Title != "" }

type eventDTO struct {
	ID          IntString `json:"id"`
	Title       string    `json:"title"`
	ShortDesc   string    `json:"shortdesc"`
	LongDesc    string    `json:"longdesc"`
	Begin       IntString `json:"begin_timestamp"`
	Duration    IntString `json:"duration_sec"`
	ServiceRef  string    `json:"sref"`
	ServiceName string    `json:"sname"`
	Now         IntString `json:"now_timestamp"`
}

type eventsResponse struct {
	Result bool       `json:"result"`
	Events []eventDTO `json:"events"`
}

func (r eventsResponse) toEvents() []Event {
	out := make([]Event, 0, len(r.Events))
	for _, e := range r.Events {
		out = append(out, Event{
			ID:          e.ID.Int64(),
			Title:       strings.TrimSpace(e.Title),
			ShortDesc:   strings.TrimSpace(e.ShortDesc),
			LongDesc:    strings.TrimSpace(e.LongDesc),
			Begin:       e.Begin.Int64(),
			Duration:    e.Duration.Int64(),
			ServiceRef:  e.ServiceRef,
			ServiceName: e.ServiceName,
			Now:         e.Now.Int64(),
		})
	}
	return out
}

func (c *Client) events(ctx context.Context, operation, path string, params url.Values) ([]Event, error) {
	var resp eventsResponse
	if err := c.getJSON(ctx, operation, path, params, &resp); err != nil {
		return nil, err
	}
	return resp.toEvents(), nil
}

// EPGNowNext returns the current and following event for every service of a
// bouquet, in bouquet order (now, next, now, next, ...).
func (c *Client) EPGNowNext(ctx context.Context, bouquetRef string) ([]Event, error) {
	params := url.Values{}
	params.Set("bRef", bouquetRef)
	return c.events(ctx, "epgnownext", "/api/epgnownext", params)
}

// EPGNow returns the current event for every service of a bouquet.
func (c *Client) EPGNow(ctx context.Context, bouquetRef string) ([]Event, error) {
	params := url.Values{}
	params.Set("bRef", bouquetRef)
	return c.events(ctx, "epgnow", "/api/epgnow", params)
}

// EPGService returns the schedule of one service. Zero times leave the window
// to the receiver.
func (c *Client) EPGService(ctx context.Context, serviceRef string, from, to time.Time) ([]Event, error) {
	params := url.Values{}
	params.Set("sRef", serviceRef)
	if !from.IsZero() {
		params.Set("time", strconv.FormatInt(from.Unix(), 10))
	}
	if !to.IsZero() {
		params.Set("endTime", strconv.FormatInt(to.Unix(), 10))
	}
	return c.events(ctx, "epgservice", "/api/epgservice", params)
}

// EPGBouquet returns the schedule of every service of a bouquet in a window.
func (c *Client) EPGBouquet(ctx context.Context, bouquetRef string, from, to time.Time) ([]Event, error) {
	params := url.Values{}
	params.Set("bRef", bouquetRef)
	if !from.IsZero() {
		params.Set("time", strconv.FormatInt(from.Unix(), 10))
	}
	if !to.IsZero() {
		params.Set("endTime", strconv.FormatInt(to.Unix(), 10))
	}
	return c.events(ctx, "epgmulti", "/api/epgmulti", params)
}

// EPGSearch runs a receiver-side title search. With full set the
// descriptions are searched too.
func (c *Client) EPGSearch(ctx context.Context, query string, full bool) ([]Event, error) {
	params := url.Values{}
	params.Set("search", query)
	if full {
		params.Set("full", "1")
	}
	return c.events(ctx, "epgsearch", "/api/epgsearch", params)
}
