// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package netutil holds listener helpers for the HTTP surface.
package netutil

import (
	"context"
	"fmt"
	"net"

	xnetutil "golang.org/x/net/netutil"
)

// Listen opens a TCP listener on addr. A positive maxConns caps the number of
// simultaneously accepted connections; further clients wait in the backlog.
func Listen(ctx context.Context, addr string, maxConns int) (net.Listener, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	if maxConns > 0 {
		ln = xnetutil.LimitListener(ln, maxConns)
	}
	return ln, nil
}
