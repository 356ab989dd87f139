// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package openwebif

import (
	"context"
	"net/url"
	"strings"
)

// Kind selects between the TV and radio bouquet trees.
type Kind string

const (
	KindTV    Kind = "tv"
	KindRadio Kind = "radio"
)

// Root bouquet references of the two service trees.
const (
	RootTV    = `1:7:1:0:0:0:0:0:0:0:FROM BOUQUET "bouquets.tv" ORDER BY bouquet`
	RootRadio = `1:7:2:0:0:0:0:0:0:0:FROM BOUQUET "bouquets.radio" ORDER BY bouquet`
)

// ParseKind maps user input to a Kind, defaulting to TV.
func ParseKind(s string) Kind {
	if strings.EqualFold(strings.TrimSpace(s), string(KindRadio)) {
		return KindRadio
	}
	return KindTV
}

// Root returns the root bouquet reference for the kind.
func (k Kind) Root() string {
	if k == KindRadio {
		return RootRadio
	}
	return RootTV
}

// Bouquet is a user-defined channel list.
type Bouquet struct {
	Ref  string `json:"ref"`
	Name string `json:"name"`
}

// Service is a channel inside a bouquet.
type Service struct {
	Ref     string `json:"ref"`
	Name    string `json:"name"`
	Pos     int    `json:"pos"`
	Program int64  `json:"program,omitempty"`
}

// IsMarker reports whether ref is a bouquet separator rather than a playable service.
func IsMarker(ref string) bool {
	return strings.HasPrefix(ref, "1:64:") || strings.HasPrefix(ref, "1:320:")
}

type servicesResponse struct {
	Result   bool `json:"result"`
	Services []struct {
		ServiceRef  string    `json:"servicereference"`
		ServiceName string    `json:"servicename"`
		Pos         IntString `json:"pos"`
		Program     IntString `json:"program"`
	} `json:"services"`
}

// Bouquets lists the bouquets of the TV or radio tree.
func (c *Client) Bouquets(ctx context.Context, kind Kind) ([]Bouquet, error) {
	params := url.Values{}
	params.Set("sRef", kind.Root())

	var resp servicesResponse
	if err := c.getJSON(ctx, "bouquets", "/api/getservices", params, &resp); err != nil {
		return nil, err
	}

	out := make([]Bouquet, 0, len(resp.Services))
	for _, s := range resp.Services {
		if s.ServiceRef == "" || IsMarker(s.ServiceRef) {
			continue
		}
		out = append(out, Bouquet{Ref: s.ServiceRef, Name: s.ServiceName})
	}
	return out, nil
}

// Services lists the playable services of a bouquet. Markers are dropped.
func (c *Client) Services(ctx context.Context, bouquetRef string) ([]Service, error) {
	params := url.Values{}
	params.Set("sRef", bouquetRef)

	var resp servicesResponse
	if err := c.getJSON(ctx, "services", "/api/getservices", params, &resp); err != nil {
		return nil, err
	}

	out := make([]Service, 0, len(resp.Services))
	for i, s := range resp.Services {
		if s.ServiceRef == "" || IsMarker(s.ServiceRef) {
			continue
		}
		pos := int(s.Pos)
		if pos == 0 {
			pos = i + 1
		}
		out = append(out, Service{
			Ref:     s.ServiceRef,
			Name:    s.ServiceName,
			Pos:     pos,
			Program: s.Program.Int64(),
		})
	}
	return out, nil
}

// Zap switches the receiver to the given service.
func (c *Client) Zap(ctx context.Context, sRef string) error {
	params := url.Values{}
	// OpenWebIF requires "sRef"; "ref" yields a "parameter missing" error.
	params.Set("sRef", sRef)

	var res Response
	if err := c.command(ctx, "zap", "/api/zap", params, &res); err != nil {
		return err
	}
	if !res.Result {
		return resultError("zap", res.Message)
	}
	return nil
}
