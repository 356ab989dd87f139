// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/ManuGH/e2remote/internal/openwebif"
	"github.com/ManuGH/e2remote/internal/repository"
	"github.com/ManuGH/e2remote/internal/store"
	"github.com/ManuGH/e2remote/internal/timeutil"
	"github.com/ManuGH/e2remote/internal/viewmodel"
	"github.com/spf13/cobra"
)

func newTimersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "timers",
		Aliases: []string{"timer"},
		Short:   "Manage recording timers",
	}
	cmd.AddCommand(newTimersListCmd(a), newTimersAddCmd(a), newTimersDeleteCmd(a), newTimersToggleCmd(a))
	return cmd
}

func newTimersListCmd(a *app) *cobra.Command {
	var state, query string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List timers",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if state != "all" && !slices.Contains(repository.TimerStates(), state) {
				return fmt.Errorf("%w: unknown timer state %q (want all or one of %s)",
					repository.ErrInvalidArgument, state, strings.Join(repository.TimerStates(), ", "))
			}
			st, provider, err := a.open(ctx)
			if err != nil {
				return err
			}
			timers := repository.NewTimers(provider, a.clock)
			s, err := load(ctx, "timers", state, func(ctx context.Context, state string) ([]repository.Timer, error) {
				return timers.List(ctx, repository.TimersQuery{State: state})
			})
			if err != nil {
				return err
			}
			search := viewmodel.NewSearch(store.ScopeTimers, st, repository.Timer.SearchFields)
			if err := search.Submit(ctx, query); err != nil {
				return err
			}
			list := viewmodel.View(s, search)
			settings := a.settings(ctx)
			return a.emit(list, func() string { return timerTable(settings, list) })
		},
	}
	cmd.Flags().StringVar(&state, "state", "all", "only timers in this state: "+strings.Join(repository.TimerStates(), ", "))
	cmd.Flags().StringVarP(&query, "search", "s", "", "filter timers by name or channel")
	return cmd
}

func timerTable(s repository.Settings, timers []repository.Timer) string {
	if len(timers) == 0 {
		return "No timers."
	}
	rows := make([][]string, 0, len(timers))
	for _, t := range timers {
		rows = append(rows, []string{
			timeutil.FormatDate(timeutil.FromUnix(t.Begin), s.DateOrder),
			clockRange(s, t.Begin, t.End),
			t.ServiceName, t.Name, t.State, t.ID,
		})
	}
	return renderTable([]string{"DATE", "TIME", "CHANNEL", "NAME", "STATE", "ID"}, rows)
}

// parseWhen reads "HH:MM" (today) or "<day> HH:MM" where day is anything
// timeutil.ParseDay accepts.
func parseWhen(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	dayPart, clockPart := "today", s
	if i := strings.LastIndex(s, " "); i >= 0 {
		dayPart, clockPart = s[:i], s[i+1:]
	}
	day, err := timeutil.ParseDay(dayPart, now)
	if err != nil {
		return time.Time{}, err
	}
	hh, mm, err := timeutil.ParseClock(clockPart)
	if err != nil {
		return time.Time{}, err
	}
	return timeutil.Combine(day, hh, mm), nil
}

func newTimersAddCmd(a *app) *cobra.Command {
	var (
		ref, name, desc, begin, end, after, dir string
		duration                                time.Duration
		eventID                                 int64
		disabled, justPlay, alwaysZap           bool
		repeated                                int
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a timer for an EPG event or a time range",
		Example: `  e2remote timers add --ref 1:0:19:283D:3FB:1:C00000:0:0:0: --event-id 4711
  e2remote timers add --ref 1:0:19:283D:3FB:1:C00000:0:0:0: --name Tatort --begin "tomorrow 20:15" --duration 90m`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			st, provider, err := a.open(ctx)
			if err != nil {
				return err
			}
			afterEvent, err := resolveAfterEvent(ctx, st, after)
			if err != nil {
				return err
			}
			timers := repository.NewTimers(provider, a.clock)

			if eventID > 0 {
				opts := openwebif.EventTimerOptions{JustPlay: justPlay, AlwaysZap: alwaysZap, AfterEvent: afterEvent, DirName: dir}
				if err := timers.AddForEvent(ctx, ref, eventID, opts); err != nil {
					return err
				}
				a.printf("Timer added for event %d\n", eventID)
				return nil
			}

			now := a.clock.Now()
			d := repository.TimerDraft{
				ServiceRef:  ref,
				Name:        name,
				Description: desc,
				Disabled:    disabled,
				JustPlay:    justPlay,
				AlwaysZap:   alwaysZap,
				AfterEvent:  afterEvent,
				Repeated:    repeated,
				DirName:     dir,
			}
			if begin != "" {
				if d.Begin, err = parseWhen(begin, now); err != nil {
					return fmt.Errorf("%w: --begin: %w", repository.ErrInvalidTimer, err)
				}
			}
			switch {
			case end != "":
				base := d.Begin
				if base.IsZero() {
					base = now
				}
				if d.End, err = parseWhen(end, base); err != nil {
					return fmt.Errorf("%w: --end: %w", repository.ErrInvalidTimer, err)
				}
				if !d.Begin.IsZero() && !d.End.After(d.Begin) {
					// An end clock before the start means the timer runs past midnight.
					d.End = d.End.AddDate(0, 0, 1)
				}
			case duration > 0 && !d.Begin.IsZero():
				d.End = d.Begin.Add(duration)
			}
			if err := timers.Add(ctx, d); err != nil {
				return err
			}
			spec := d.Spec()
			a.printf("Timer added: %s id=%s\n", spec.Name,
				repository.MakeTimerID(openwebif.TimerKey{ServiceRef: spec.ServiceRef, Begin: spec.Begin, End: spec.End}))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&ref, "ref", "", "service reference of the channel")
	f.Int64Var(&eventID, "event-id", 0, "EPG event to record; the receiver fills in name and times")
	f.StringVar(&name, "name", "", "timer name")
	f.StringVar(&desc, "description", "", "timer description")
	f.StringVar(&begin, "begin", "", `start as "HH:MM" or "<day> HH:MM"`)
	f.StringVar(&end, "end", "", `end as "HH:MM" or "<day> HH:MM"`)
	f.DurationVar(&duration, "duration", 0, "length, used when --end is not given")
	f.StringVar(&after, "after-event", "", "nothing, standby, deepstandby or auto (default from preferences)")
	f.BoolVar(&disabled, "disabled", false, "create the timer disabled")
	f.BoolVar(&justPlay, "zap", false, "zap to the channel instead of recording")
	f.BoolVar(&alwaysZap, "always-zap", false, "zap and record")
	f.IntVar(&repeated, "repeat", 0, "weekday bitmask, Monday = 1 ... Sunday = 64")
	f.StringVar(&dir, "dir", "", "recording directory on the receiver")
	_ = cmd.MarkFlagRequired("ref")
	return cmd
}

func resolveAfterEvent(ctx context.Context, st *store.Store, s string) (openwebif.AfterEvent, error) {
	if s != "" {
		ae, ok := openwebif.ParseAfterEvent(s)
		if !ok {
			return 0, fmt.Errorf("%w: unknown after-event action %q", repository.ErrInvalidArgument, s)
		}
		return ae, nil
	}
	settings, err := repository.LoadSettings(ctx, st)
	if err != nil {
		return 0, err
	}
	return settings.DefaultAfterEvent, nil
}

func newTimersDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a timer",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := repository.ParseTimerID(args[0])
			if err != nil {
				return err
			}
			_, provider, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			if err := repository.NewTimers(provider, a.clock).Delete(cmd.Context(), key); err != nil {
				return err
			}
			a.printf("Timer deleted\n")
			return nil
		},
	}
}

func newTimersToggleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Enable or disable a timer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := repository.ParseTimerID(args[0])
			if err != nil {
				return err
			}
			_, provider, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			disabled, err := repository.NewTimers(provider, a.clock).Toggle(cmd.Context(), key)
			if err != nil {
				return err
			}
			if disabled {
				a.printf("Timer disabled\n")
			} else {
				a.printf("Timer enabled\n")
			}
			return nil
		},
	}
}
