// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"slices"

	"github.com/ManuGH/e2remote/internal/repository"
	"github.com/ManuGH/e2remote/internal/store"
	"github.com/spf13/cobra"
)

func newPrefsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "prefs",
		Aliases: []string{"settings"},
		Short:   "Read and change preferences",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List all preferences with their effective values",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				st, _, err := a.open(cmd.Context())
				if err != nil {
					return err
				}
				prefs, err := st.Preferences(cmd.Context())
				if err != nil {
					return err
				}
				return a.emit(prefs, func() string {
					keys := make([]string, 0, len(prefs))
					for k := range prefs {
						keys = append(keys, k)
					}
					slices.Sort(keys)
					rows := make([][]string, 0, len(keys))
					for _, k := range keys {
						rows = append(rows, []string{k, prefs[k], store.DefaultPreferences[k]})
					}
					return renderTable([]string{"KEY", "VALUE", "DEFAULT"}, rows)
				})
			},
		},
		&cobra.Command{
			Use:   "get <key>",
			Short: "Print one preference",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				st, _, err := a.open(cmd.Context())
				if err != nil {
					return err
				}
				v, err := st.GetPreference(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				a.printf("%s\n", v)
				return nil
			},
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Change a preference",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				st, _, err := a.open(cmd.Context())
				if err != nil {
					return err
				}
				v, err := repository.NormalizePreference(args[0], args[1])
				if err != nil {
					return err
				}
				if err := st.SetPreference(cmd.Context(), args[0], v); err != nil {
					return err
				}
				a.printf("%s = %s\n", args[0], v)
				return nil
			},
		},
		&cobra.Command{
			Use:   "reset <key>",
			Short: "Restore a preference's default",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				st, _, err := a.open(cmd.Context())
				if err != nil {
					return err
				}
				return st.DeletePreference(cmd.Context(), args[0])
			},
		},
	)
	return cmd
}
