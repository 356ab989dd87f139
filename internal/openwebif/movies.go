// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package openwebif

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	xglog "github.com/ManuGH/e2remote/internal/log"
)

// Movie represents a recording in the movie list
type Movie struct {
	ServiceRef          string     `json:"serviceref"`
	Title               string     `json:"eventname"`
	ServiceName         string     `json:"servicename"`
	Description         string     `json:"description"`
	ExtendedDescription string     `json:"descriptionExtended"`
	Length              string     `json:"length"` // "90:12" style string
	Filesize            FlexString `json:"filesize"`
	Filename            string     `json:"filename"`
	FullName            string     `json:"fullname"`
	Tags                string     `json:"tags"`
	Begin               IntString  `json:"recordingtime"`
	LastSeen            IntString  `json:"lastseen"`
}

// SizeBytes returns the file size, or 0 when the receiver did not report one.
func (m Movie) SizeBytes() int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(m.Filesize.String()), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// MovieList represents the response from /api/movielist
type MovieList struct {
	Movies    []Movie      `json:"movies"`
	Bookmarks BookmarkList `json:"bookmarks"`
	Directory string       `json:"directory"`
	Result    bool         `json:"result"`
}

// Movies retrieves the recordings of a directory. An empty dirname uses the
// receiver's default movie location.
func (c *Client) Movies(ctx context.Context, dirname string) (*MovieList, error) {
	var params url.Values
	if dirname != "" {
		params = url.Values{}
		params.Set("dirname", dirname)
	}

	var list MovieList
	if err := c.getJSON(ctx, "movielist", "/api/movielist", params, &list); err != nil {
		return nil, err
	}

	if !list.Result {
		// Empty directories may report result=false; the list is still usable.
		logger := xglog.WithComponentFromContext(ctx, "openwebif")
		logger.Warn().Str("dirname", dirname).Msg("movielist result=false")
	}
	if list.Movies == nil {
		list.Movies = []Movie{}
	}
	return &list, nil
}

// DeleteMovie deletes a recording by its service reference.
func (c *Client) DeleteMovie(ctx context.Context, sRef string) error {
	params := url.Values{}
	params.Set("sRef", sRef)

	var resp Response
	if err := c.command(ctx, "moviedelete", "/api/moviedelete", params, &resp); err != nil {
		return err
	}
	if !resp.Result {
		return resultError("moviedelete", resp.Message)
	}
	return nil
}
