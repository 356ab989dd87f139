// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package repository

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/ManuGH/e2remote/internal/filter"
	"github.com/ManuGH/e2remote/internal/openwebif"
)

// Recording is a movie file on the receiver.
type Recording struct {
	ServiceRef  string `json:"service_ref"`
	Title       string `json:"title"`
	ServiceName string `json:"service_name"`
	Description string `json:"description,omitempty"`
	Extended    string `json:"extended,omitempty"`
	Begin       int64  `json:"begin"`
	Length      string `json:"length"`
	Size        int64  `json:"size"`
	Filename    string `json:"filename"`
	Tags        string `json:"tags,omitempty"`
	StreamURL   string `json:"stream_url"`
}

// SearchFields ranks a recording for filtering.
func (m Recording) SearchFields() []filter.Field {
	return filter.MovieFields(openwebif.Movie{
		Title:               m.Title,
		Description:         m.Description,
		ExtendedDescription: m.Extended,
		Filename:            m.Filename,
	})
}

// MovieListing is the content of one recording directory.
type MovieListing struct {
	Directory  string                    `json:"directory"`
	Locations  []openwebif.MovieLocation `json:"locations"`
	Recordings []Recording               `json:"recordings"`
}

// Movies manages recordings.
type Movies struct {
	provider *Provider
}

// NewMovies creates a recording repository.
func NewMovies(p *Provider) *Movies {
	return &Movies{provider: p}
}

// List returns the recordings of dir, newest first. An empty dir uses the
// receiver's default location.
func (r *Movies) List(ctx context.Context, dir string) (*MovieListing, error) {
	ctx, c, err := r.provider.withClient(ctx)
	if err != nil {
		return nil, err
	}
	list, err := c.Movies(ctx, strings.TrimSpace(dir))
	if err != nil {
		return nil, err
	}

	out := &MovieListing{
		Directory:  list.Directory,
		Locations:  []openwebif.MovieLocation(list.Bookmarks),
		Recordings: make([]Recording, 0, len(list.Movies)),
	}
	if out.Locations == nil {
		out.Locations = []openwebif.MovieLocation{}
	}
	for _, m := range list.Movies {
		out.Recordings = append(out.Recordings, Recording{
			ServiceRef:  m.ServiceRef,
			Title:       strings.TrimSpace(m.Title),
			ServiceName: m.ServiceName,
			Description: strings.TrimSpace(m.Description),
			Extended:    strings.TrimSpace(m.ExtendedDescription),
			Begin:       m.Begin.Int64(),
			Length:      m.Length,
			Size:        m.SizeBytes(),
			Filename:    m.Filename,
			Tags:        m.Tags,
			StreamURL:   c.FileStreamURL(m.Filename),
		})
	}
	slices.SortStableFunc(out.Recordings, func(a, b Recording) int {
		switch {
		case a.Begin > b.Begin:
			return -1
		case a.Begin < b.Begin:
			return 1
		}
		return strings.Compare(a.Title, b.Title)
	})
	return out, nil
}

// Delete removes a recording by its service reference.
func (r *Movies) Delete(ctx context.Context, serviceRef string) error {
	if strings.TrimSpace(serviceRef) == "" {
		return fmt.Errorf("%w: recording reference is required", ErrInvalidArgument)
	}
	ctx, c, err := r.provider.withClient(ctx)
	if err != nil {
		return err
	}
	return c.DeleteMovie(ctx, serviceRef)
}

// StreamURL returns the playback URL of a recording file.
func (r *Movies) StreamURL(ctx context.Context, filename string) (string, error) {
	c, _, err := r.provider.Client(ctx)
	if err != nil {
		return "", err
	}
	return c.FileStreamURL(filename), nil
}
