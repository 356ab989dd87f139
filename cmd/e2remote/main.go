// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Command e2remote controls Enigma2 receivers through their OpenWebIF API.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ManuGH/e2remote/internal/openwebif"
	"github.com/ManuGH/e2remote/internal/repository"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

// Exit codes beyond the generic failure.
const (
	exitFailure   = 1
	exitNoDevice  = 3
	exitNoNetwork = 4
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := newApp(stdout, stderr)
	defer a.close()

	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(stderr, "error:", describe(err))
		return exitCode(err)
	}
	return 0
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, repository.ErrNoDevice):
		return exitNoDevice
	case openwebif.IsNetworkError(err):
		return exitNoNetwork
	}
	return exitFailure
}

// describe turns the common failure classes into actionable messages.
func describe(err error) string {
	switch {
	case errors.Is(err, repository.ErrNoDevice):
		return "no receiver selected; add one with `e2remote device add <name> <host>`"
	case openwebif.IsNetworkError(err):
		return "receiver unreachable: " + err.Error()
	}
	return err.Error()
}
