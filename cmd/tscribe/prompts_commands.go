package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"tscribe/internal/api"
)

func newPromptsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompts",
		Short: "Manage saved prompt templates",
	}
	cmd.AddCommand(newPromptsListCommand(ctx))
	cmd.AddCommand(newPromptsShowCommand(ctx))
	cmd.AddCommand(newPromptsSaveCommand(ctx))
	cmd.AddCommand(newPromptsDeleteCommand(ctx))
	return cmd
}

func newPromptsListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved prompts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(c context.Context, s *session) error {
				prompts, err := s.workspace.Caches().Prompts.List(c)
				if err != nil {
					return err
				}
				if jsonOutput {
					if prompts == nil {
						prompts = []api.Prompt{}
					}
					return writeJSON(cmd, prompts)
				}
				out := cmd.OutOrStdout()
				if len(prompts) == 0 {
					fmt.Fprintln(out, "No saved prompts")
					return nil
				}
				rows := make([][]string, 0, len(prompts))
				for _, p := range prompts {
					rows = append(rows, []string{p.ID, orDash(p.Name), orDash(p.Date)})
				}
				fmt.Fprintln(out, renderTable([]string{"ID", "Name", "Date"}, rows, nil))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newPromptsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a prompt template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(c context.Context, s *session) error {
				detail, err := s.workspace.Caches().Prompts.Get(c, args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd, detail)
			})
		},
	}
}

func newPromptsSaveCommand(ctx *commandContext) *cobra.Command {
	var (
		name      string
		fromDraft bool
		prompt    promptFlags
	)
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save a prompt template",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(c context.Context, s *session) error {
				var (
					res api.SavePromptResult
					err error
				)
				if fromDraft {
					res, err = s.workspace.SubmitPrompt(c)
				} else {
					res, err = s.workspace.SavePrompt(c, api.SavePromptInput{PromptName: name, PromptData: prompt.data()})
				}
				if err != nil {
					return err
				}
				if res.PromptID != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\n", res.PromptID)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Prompt name")
	cmd.Flags().BoolVar(&fromDraft, "from-draft", false, "Save the prompt draft instead of flags")
	prompt.bind(cmd)
	return cmd
}

func newPromptsDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a prompt template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(c context.Context, s *session) error {
				_, err := s.workspace.DeletePrompt(c, args[0])
				return err
			})
		},
	}
}
