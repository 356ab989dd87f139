// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/ManuGH/e2remote/internal/filter"
	"github.com/ManuGH/e2remote/internal/openwebif"
	"github.com/ManuGH/e2remote/internal/repository"
	"github.com/ManuGH/e2remote/internal/store"
	"github.com/ManuGH/e2remote/internal/timeutil"
	"github.com/ManuGH/e2remote/internal/viewmodel"
	"github.com/spf13/cobra"
)

func newEPGCmd(a *app) *cobra.Command {
	var (
		day   string
		query string
	)
	cmd := &cobra.Command{
		Use:   "epg <service-ref>",
		Short: "Show the programme guide of a channel",
		Long:  "Show one day of a channel's programme guide. --day accepts today, tomorrow, +N or YYYY-MM-DD.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, provider, err := a.open(ctx)
			if err != nil {
				return err
			}
			d, err := timeutil.ParseDay(day, a.clock.Now())
			if err != nil {
				return fmt.Errorf("%w: %w", repository.ErrInvalidArgument, err)
			}
			epg := repository.NewEPG(provider, a.clock)
			s, err := load(ctx, "epg_service", args[0], func(ctx context.Context, ref string) ([]openwebif.Event, error) {
				return epg.ForService(ctx, ref, d)
			})
			if err != nil {
				return err
			}
			search := viewmodel.NewSearch(store.ScopeEPG, st, filter.EventFields)
			if err := search.Submit(ctx, query); err != nil {
				return err
			}
			events := viewmodel.View(s, search)
			settings := a.settings(ctx)
			return a.emit(events, func() string {
				title := timeutil.RelativeDay(d, a.clock.Now())
				return eventTable(settings, title, events, false)
			})
		},
	}
	cmd.Flags().StringVar(&day, "day", "today", "day to show")
	cmd.Flags().StringVarP(&query, "search", "s", "", "filter the day's events")
	cmd.AddCommand(newEPGSearchCmd(a), newEPGNowCmd(a))
	return cmd
}

func newEPGSearchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query...>",
		Short: "Search upcoming programmes on all channels",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, provider, err := a.open(ctx)
			if err != nil {
				return err
			}
			q := strings.Join(args, " ")
			if err := st.AddSearch(ctx, store.ScopeEPG, q); err != nil {
				return err
			}
			epg := repository.NewEPG(provider, a.clock)
			s, err := load(ctx, "epg_search", q, epg.Search)
			if err != nil {
				return err
			}
			settings := a.settings(ctx)
			return a.emit(s.Data, func() string { return eventTable(settings, "Results for "+q, s.Data, true) })
		},
	}
}

func newEPGNowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "now [bouquet]",
		Short: "Show what is airing now in a TV bouquet",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, provider, err := a.open(ctx)
			if err != nil {
				return err
			}
			ref := ""
			if len(args) == 1 {
				ref = args[0]
			}
			bouquet, err := resolveBouquet(ctx, repository.NewChannels(provider), openwebif.KindTV, ref)
			if err != nil {
				return err
			}
			epg := repository.NewEPG(provider, a.clock)
			s, err := load(ctx, "epg_now", bouquet.Ref, epg.Now)
			if err != nil {
				return err
			}
			settings := a.settings(ctx)
			return a.emit(s.Data, func() string { return eventTable(settings, bouquet.Name, s.Data, true) })
		},
	}
}

func eventTable(s repository.Settings, title string, events []openwebif.Event, withService bool) string {
	if len(events) == 0 {
		return title + ": no events"
	}
	headers := []string{"TIME", "DURATION", "TITLE", "ID"}
	if withService {
		headers = []string{"DATE", "TIME", "CHANNEL", "TITLE", "ID"}
	}
	rows := make([][]string, 0, len(events))
	for _, e := range events {
		name := e.Title
		if e.ShortDesc != "" {
			name += " - " + e.ShortDesc
		}
		id := fmt.Sprint(e.ID)
		if withService {
			rows = append(rows, []string{
				timeutil.FormatDate(timeutil.FromUnix(e.Begin), s.DateOrder),
				clockRange(s, e.Begin, e.End()),
				e.ServiceName, name, id,
			})
			continue
		}
		rows = append(rows, []string{clockRange(s, e.Begin, e.End()), minutes(e.Duration), name, id})
	}
	return title + "\n" + renderTable(headers, rows)
}
