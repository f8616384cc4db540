package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tscribe/internal/provider"
)

func newKeysCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage provider API keys stored by the backend",
	}
	cmd.AddCommand(newKeysListCommand(ctx))
	cmd.AddCommand(newKeysSetCommand(ctx))
	cmd.AddCommand(newKeysDeleteCommand(ctx))
	return cmd
}

func newKeysListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show which providers have a key configured",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(c context.Context, s *session) error {
				status, err := s.workspace.Caches().Settings.APIKeys(c)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, status)
				}
				rows := make([][]string, 0, len(provider.All()))
				for _, p := range provider.All() {
					rows = append(rows, []string{p.String(), p.Label(), yesNo(status[p]), p.EnvVar()})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Provider", "Name", "Configured", "Env"}, rows, nil))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newKeysSetCommand(ctx *commandContext) *cobra.Command {
	var fromStdin bool
	cmd := &cobra.Command{
		Use:   "set <provider> [key]",
		Short: "Save an API key for a provider",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := provider.Parse(args[0])
			if err != nil {
				return err
			}
			var key string
			if len(args) == 2 {
				key = args[1]
			}
			if fromStdin {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read key from stdin: %w", err)
				}
				key = strings.TrimSpace(line)
			}
			return ctx.withSession(cmd, func(c context.Context, s *session) error {
				_, err := s.workspace.SaveAPIKey(c, p, key)
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "Read the key from stdin")
	return cmd
}

func newKeysDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <provider>",
		Short: "Remove a provider's API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := provider.Parse(args[0])
			if err != nil {
				return err
			}
			return ctx.withSession(cmd, func(c context.Context, s *session) error {
				_, err := s.workspace.DeleteAPIKey(c, p)
				return err
			})
		},
	}
}

func newModelsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List models and manage the default model",
	}
	cmd.AddCommand(newModelsListCommand(ctx))
	cmd.AddCommand(newModelsDefaultCommand(ctx))
	return cmd
}

func newModelsListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List models with key status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(c context.Context, s *session) error {
				choices, err := s.workspace.ModelChoices(c)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, choices)
				}
				rows := make([][]string, 0, len(choices))
				for _, m := range choices {
					marker := ""
					if m.Default {
						marker = "*"
					}
					rows = append(rows, []string{marker, m.Value, m.Label, m.Provider.Label(), yesNo(m.Available), yesNo(m.HasKey)})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"", "Model", "Label", "Provider", "Available", "Key"},
					rows, nil,
				))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newModelsDefaultCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "default [model]",
		Short: "Show or set the default model",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(c context.Context, s *session) error {
				if len(args) == 1 {
					_, err := s.workspace.SaveDefaultModel(c, args[0])
					return err
				}
				def, err := s.workspace.Caches().Settings.DefaultModel(c)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), orDash(def.Model))
				return nil
			})
		},
	}
}
