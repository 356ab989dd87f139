// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"fmt"

	"github.com/ManuGH/e2remote/internal/repository"
	"github.com/ManuGH/e2remote/internal/store"
	"github.com/ManuGH/e2remote/internal/viewmodel"
	"github.com/spf13/cobra"
)

func newMoviesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "movies",
		Aliases: []string{"recordings"},
		Short:   "Browse and manage recordings",
	}
	cmd.AddCommand(newMoviesListCmd(a),
		&cobra.Command{
			Use:     "delete <service-ref>",
			Aliases: []string{"rm"},
			Short:   "Delete a recording",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				_, provider, err := a.open(cmd.Context())
				if err != nil {
					return err
				}
				if err := repository.NewMovies(provider).Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				a.printf("Recording deleted\n")
				return nil
			},
		},
		&cobra.Command{
			Use:   "url <filename>",
			Short: "Print the playback URL of a recording",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				_, provider, err := a.open(cmd.Context())
				if err != nil {
					return err
				}
				u, err := repository.NewMovies(provider).StreamURL(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				a.printf("%s\n", u)
				return nil
			},
		},
	)
	return cmd
}

func newMoviesListCmd(a *app) *cobra.Command {
	var dir, query string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List recordings, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			st, provider, err := a.open(ctx)
			if err != nil {
				return err
			}
			movies := repository.NewMovies(provider)
			s, err := load(ctx, "movies", dir, func(ctx context.Context, dir string) ([]repository.Recording, error) {
				listing, err := movies.List(ctx, dir)
				if err != nil {
					return nil, err
				}
				return listing.Recordings, nil
			})
			if err != nil {
				return err
			}
			search := viewmodel.NewSearch(store.ScopeMovies, st, repository.Recording.SearchFields)
			if err := search.Submit(ctx, query); err != nil {
				return err
			}
			list := viewmodel.View(s, search)
			settings := a.settings(ctx)
			return a.emit(list, func() string {
				if len(list) == 0 {
					return "No recordings."
				}
				rows := make([][]string, 0, len(list))
				for _, m := range list {
					rows = append(rows, []string{dateTime(settings, m.Begin), m.ServiceName, m.Title, m.Length, fmt.Sprintf("%.1f GB", float64(m.Size)/1e9), m.Filename})
				}
				return renderTable([]string{"RECORDED", "CHANNEL", "TITLE", "LENGTH", "SIZE", "FILE"}, rows)
			})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directory on the receiver (default: the receiver's movie folder)")
	cmd.Flags().StringVarP(&query, "search", "s", "", "filter recordings by title, channel or description")
	return cmd
}
