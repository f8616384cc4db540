package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tscribe/internal/drafts"
)

var draftForms = []drafts.Form{drafts.FormProcess, drafts.FormPrompt, drafts.FormAPIKey, drafts.FormDefaultModel}

func parseForm(value string) (drafts.Form, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, f := range draftForms {
		if string(f) == value {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown form %q (expected one of process, prompt, apikey, defaultmodel)", value)
}

func newDraftsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drafts",
		Short: "Edit form drafts kept between runs",
	}
	cmd.AddCommand(newDraftsListCommand(ctx))
	cmd.AddCommand(newDraftsSetCommand(ctx))
	cmd.AddCommand(newDraftsClearCommand(ctx))
	cmd.AddCommand(newDraftsSubmitCommand(ctx))
	return cmd
}

func newDraftsListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show saved drafts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(c context.Context, s *session) error {
				saved, err := s.workspace.Drafts(c)
				if err != nil {
					return err
				}
				all := make([]drafts.Draft, 0, len(saved))
				for _, d := range saved {
					if !d.Empty() {
						all = append(all, d)
					}
				}
				if jsonOutput {
					return writeJSON(cmd, all)
				}
				out := cmd.OutOrStdout()
				if len(all) == 0 {
					fmt.Fprintln(out, "No drafts")
					return nil
				}
				var rows [][]string
				for _, d := range all {
					fields := make([]string, 0, len(d.Fields))
					for name := range d.Fields {
						fields = append(fields, name)
					}
					sort.Strings(fields)
					for _, name := range fields {
						rows = append(rows, []string{string(d.Form), name, displayField(name, d.Fields[name]), d.UpdatedAt.Local().Format(time.DateTime)})
					}
				}
				fmt.Fprintln(out, renderTable([]string{"Form", "Field", "Value", "Updated"}, rows, nil))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

// displayField masks secrets.
func displayField(name, value string) string {
	if name == "key" && len(value) > 4 {
		return strings.Repeat("*", len(value)-4) + value[len(value)-4:]
	}
	return value
}

func newDraftsSetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set <form> <field> <value>",
		Short: "Set one field of a form draft",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := parseForm(args[0])
			if err != nil {
				return err
			}
			return ctx.withSession(cmd, func(c context.Context, s *session) error {
				return s.workspace.SetField(c, form, args[1], args[2])
			})
		},
	}
}

func newDraftsClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear [form]",
		Short: "Discard one draft, or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			forms := draftForms
			if len(args) == 1 {
				form, err := parseForm(args[0])
				if err != nil {
					return err
				}
				forms = []drafts.Form{form}
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.Drafts.Enabled && strings.TrimSpace(cfg.Drafts.Path) != "" {
				reset, err := drafts.Repair(cfg.Drafts.Path)
				if err != nil {
					return err
				}
				if reset {
					fmt.Fprintf(cmd.ErrOrStderr(), "Recreated drafts database %s (schema changed)\n", cfg.Drafts.Path)
				}
			}
			return ctx.withSession(cmd, func(c context.Context, s *session) error {
				for _, form := range forms {
					if err := s.workspace.ClearDraft(c, form); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newDraftsSubmitCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "submit <form>",
		Short: "Submit a form draft to the backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := parseForm(args[0])
			if err != nil {
				return err
			}
			return ctx.withSession(cmd, func(c context.Context, s *session) error {
				switch form {
				case drafts.FormProcess:
					res, err := s.workspace.SubmitProcess(c)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", orDash(res.ID), statusLabel(res.Status))
					return nil
				case drafts.FormPrompt:
					_, err := s.workspace.SubmitPrompt(c)
					return err
				case drafts.FormAPIKey:
					_, err := s.workspace.SubmitAPIKey(c)
					return err
				default:
					_, err := s.workspace.SubmitDefaultModel(c)
					return err
				}
			})
		},
	}
}
