// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"strings"

	"github.com/ManuGH/e2remote/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			info := map[string]string{"version": version, "commit": commit, "date": buildDate}
			return a.emit(info, func() string {
				return "e2remote " + version + " (" + commit + ", " + buildDate + ")"
			})
		},
	}
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and create the configuration file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the effective configuration to a file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := a.defaultConfigPath()
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.Save(path, a.cfg, force); err != nil {
				return err
			}
			a.printf("Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if a.jsonOut {
				return a.emit(a.cfg, nil)
			}
			b, err := yaml.Marshal(a.cfg)
			if err != nil {
				return err
			}
			a.printf("%s", b)
			return nil
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}

func newDBCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database maintenance",
	}
	var full bool
	check := &cobra.Command{
		Use:   "check",
		Short: "Run the SQLite integrity check",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, _, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			problems, err := st.Check(cmd.Context(), full)
			if err != nil {
				return err
			}
			if problems == nil {
				problems = []string{}
			}
			return a.emit(problems, func() string {
				if len(problems) == 0 {
					return "ok"
				}
				return strings.Join(problems, "\n")
			})
		},
	}
	check.Flags().BoolVar(&full, "full", false, "run integrity_check instead of quick_check")
	cmd.AddCommand(check)
	return cmd
}
