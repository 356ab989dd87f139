// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ManuGH/e2remote/internal/openwebif"
	"github.com/ManuGH/e2remote/internal/repository"
	"github.com/ManuGH/e2remote/internal/store"
	"github.com/ManuGH/e2remote/internal/timeutil"
	"github.com/ManuGH/e2remote/internal/viewmodel"
	"github.com/spf13/cobra"
)

func newBouquetCmd(a *app, kind openwebif.Kind) *cobra.Command {
	var (
		query    string
		interval time.Duration
		times    int
	)
	scope := store.ScopeTV
	if kind == openwebif.KindRadio {
		scope = store.ScopeRadio
	}
	cmd := &cobra.Command{
		Use:   string(kind) + " [bouquet]",
		Short: fmt.Sprintf("List %s bouquets or the channels of one bouquet", kind),
		Long: fmt.Sprintf("Without arguments lists the %s bouquets. With a bouquet (name, number or reference) "+
			"lists its channels with the programme airing now and next.", kind),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, provider, err := a.open(ctx)
			if err != nil {
				return err
			}
			channels := repository.NewChannels(provider)

			if len(args) == 0 && query == "" {
				bs, err := load(ctx, string(kind)+"_bouquets", string(kind), func(ctx context.Context, _ string) ([]openwebif.Bouquet, error) {
					return channels.Bouquets(ctx, kind)
				})
				if err != nil {
					return err
				}
				return a.emit(bs.Data, func() string { return bouquetTable(bs.Data) })
			}

			ref := ""
			if len(args) == 1 {
				ref = args[0]
			}
			bouquet, err := resolveBouquet(ctx, channels, kind, ref)
			if err != nil {
				return err
			}

			search := viewmodel.NewSearch(scope, st, repository.Channel.SearchFields)
			if err := search.Submit(ctx, query); err != nil {
				return err
			}
			settings := a.settings(ctx)
			now := a.clock.Now()
			show := func(s viewmodel.State[[]repository.Channel]) error {
				if s.Err != nil && s.Data == nil {
					return s.Err
				}
				list := viewmodel.View(s, search)
				return a.emit(list, func() string { return channelTable(settings, bouquet.Name, list, now) })
			}

			if interval > 0 {
				return watch(ctx, string(kind)+"_channels", bouquet.Ref, interval, times, channels.WithNowNext, func(s viewmodel.State[[]repository.Channel]) error {
					now = a.clock.Now()
					return show(s)
				})
			}
			s, err := load(ctx, string(kind)+"_channels", bouquet.Ref, channels.WithNowNext)
			if err != nil {
				return err
			}
			return show(s)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&query, "search", "s", "", "filter channels by name or current programme")
	f.DurationVar(&interval, "watch", 0, "refresh the list at this interval until interrupted")
	f.IntVar(&times, "times", 0, "with --watch, stop after this many refreshes")
	return cmd
}

// resolveBouquet accepts a bouquet reference, its 1-based position or its
// name (case-insensitive). An empty ref selects the first bouquet.
func resolveBouquet(ctx context.Context, channels *repository.Channels, kind openwebif.Kind, ref string) (openwebif.Bouquet, error) {
	if strings.Contains(ref, "FROM BOUQUET") {
		return openwebif.Bouquet{Ref: ref, Name: ref}, nil
	}
	bouquets, err := channels.Bouquets(ctx, kind)
	if err != nil {
		return openwebif.Bouquet{}, err
	}
	if len(bouquets) == 0 {
		return openwebif.Bouquet{}, fmt.Errorf("receiver has no %s bouquets", kind)
	}
	if ref == "" {
		return bouquets[0], nil
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(bouquets) {
		return bouquets[n-1], nil
	}
	for _, b := range bouquets {
		if strings.EqualFold(b.Name, ref) || b.Ref == ref {
			return b, nil
		}
	}
	return openwebif.Bouquet{}, fmt.Errorf("%w: no %s bouquet %q", repository.ErrInvalidArgument, kind, ref)
}

func bouquetTable(bouquets []openwebif.Bouquet) string {
	rows := make([][]string, 0, len(bouquets))
	for i, b := range bouquets {
		rows = append(rows, []string{strconv.Itoa(i + 1), b.Name, b.Ref})
	}
	return renderTable([]string{"#", "BOUQUET", "REF"}, rows)
}

func channelTable(s repository.Settings, title string, list []repository.Channel, now time.Time) string {
	rows := make([][]string, 0, len(list))
	for _, c := range list {
		var nowCol, nextCol string
		if c.Now != nil && c.Now.Title != "" {
			begin := timeutil.FromUnix(c.Now.Begin)
			dur := time.Duration(c.Now.Duration) * time.Second
			nowCol = fmt.Sprintf("%s %s (%d%%)", timeutil.FormatClock(begin, s.Clock24h), c.Now.Title, timeutil.Progress(begin, dur, now))
		}
		if c.Next != nil && c.Next.Title != "" {
			nextCol = timeutil.FormatClock(timeutil.FromUnix(c.Next.Begin), s.Clock24h) + " " + c.Next.Title
		}
		rows = append(rows, []string{strconv.Itoa(c.Number), c.Name, nowCol, nextCol, c.Ref})
	}
	if len(rows) == 0 {
		return title + ": no matching channels"
	}
	return title + "\n" + renderTable([]string{"#", "CHANNEL", "NOW", "NEXT", "REF"}, rows)
}
