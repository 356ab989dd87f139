// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package openwebif

import (
	"net"
	"net/url"
	"strconv"
	"strings"
)

// StreamURL returns a URL a media player can open for a live service.
// With StreamPort set it points at the receiver's direct streaming port,
// otherwise at /web/stream.m3u.
func (c *Client) StreamURL(sRef string) string {
	u, err := url.Parse(c.base)
	if err != nil {
		return ""
	}
	if c.StreamPort > 0 {
		u.Host = net.JoinHostPort(u.Hostname(), strconv.Itoa(c.StreamPort))
		u.Path = "/" + strings.TrimSuffix(sRef, ":") + ":"
		u.RawQuery = ""
		return u.String()
	}
	u.Path = "/web/stream.m3u"
	q := url.Values{}
	q.Set("ref", sRef)
	u.RawQuery = q.Encode()
	return u.String()
}

// FileStreamURL returns the URL that streams a recording file.
func (c *Client) FileStreamURL(filename string) string {
	u, err := url.Parse(c.base)
	if err != nil {
		return ""
	}
	u.Path = "/file"
	q := url.Values{}
	q.Set("file", filename)
	u.RawQuery = q.Encode()
	return u.String()
}

// PiconName converts a service reference to the picon file name convention:
// ':' becomes '_' and the trailing separator is dropped.
func PiconName(sRef string) string {
	ref := strings.TrimSpace(sRef)
	// Stream services carry the URL after the tenth field; picons use the first ten.
	if parts := strings.Split(ref, ":"); len(parts) > 10 {
		ref = strings.Join(parts[:10], ":")
	}
	ref = strings.ReplaceAll(ref, ":", "_")
	return strings.TrimRight(ref, "_")
}

// PiconURL returns the receiver URL of a service's picon.
func (c *Client) PiconURL(sRef string) string {
	if strings.TrimSpace(sRef) == "" {
		return ""
	}
	u, err := url.Parse(c.base)
	if err != nil {
		return ""
	}
	u.Path = "/picon/" + PiconName(sRef) + ".png"
	u.RawQuery = ""
	return u.String()
}
