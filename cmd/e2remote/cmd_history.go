// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"fmt"
	"strings"

	"github.com/ManuGH/e2remote/internal/repository"
	"github.com/ManuGH/e2remote/internal/store"
	"github.com/spf13/cobra"
)

func newHistoryCmd(a *app) *cobra.Command {
	var (
		clearAll bool
		remove string
	)
	cmd := &cobra.Command{
		Use:   "history [scope]",
		Short: "Show or clear search histories",
		Long:  "Show the recent searches of a screen (tv, radio, epg, movies, timers) or of all screens.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, _, err := a.open(ctx)
			if err != nil {
				return err
			}
			scopes := store.Scopes()
			if len(args) == 1 {
				sc, err := store.ParseScope(args[0])
				if err != nil {
					return err
				}
				scopes = []store.Scope{sc}
			} else if remove != "" {
				return fmt.Errorf("%w: --remove needs a scope", repository.ErrInvalidArgument)
			}

			if clearAll {
				for _, sc := range scopes {
					if err := st.ClearSearchHistory(ctx, sc); err != nil {
						return err
					}
				}
				a.printf("Cleared search history\n")
				return nil
			}
			if remove != "" {
				return st.RemoveSearch(ctx, scopes[0], remove)
			}

			out := make(map[store.Scope][]string, len(scopes))
			for _, sc := range scopes {
				h, err := st.SearchHistory(ctx, sc)
				if err != nil {
					return err
				}
				if h == nil {
					h = []string{}
				}
				out[sc] = h
			}
			return a.emit(out, func() string {
				rows := make([][]string, 0, len(scopes))
				for _, sc := range scopes {
					rows = append(rows, []string{string(sc), strings.Join(out[sc], ", ")})
				}
				return renderTable([]string{"SCOPE", "RECENT SEARCHES"}, rows)
			})
		},
	}
	cmd.Flags().BoolVar(&clearAll, "clear", false, "clear the history instead of showing it")
	cmd.Flags().StringVar(&remove, "remove", "", "remove one query from the scope's history")
	return cmd
}
