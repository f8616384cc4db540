package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newProjectsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Browse, download, and delete processed projects",
	}
	cmd.AddCommand(newProjectsListCommand(ctx))
	cmd.AddCommand(newProjectsShowCommand(ctx))
	cmd.AddCommand(newProjectsDownloadCommand(ctx))
	cmd.AddCommand(newProjectsDeleteCommand(ctx))
	return cmd
}

func newProjectsListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(c context.Context, s *session) error {
				view, err := s.workspace.Projects(c)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, view.Projects)
				}
				out := cmd.OutOrStdout()
				if view.Empty {
					fmt.Fprintln(out, "No projects yet. Process a video with `tscribe transcripts process`.")
					return nil
				}
				rows := make([][]string, 0, len(view.Projects))
				for _, p := range view.Projects {
					rows = append(rows, []string{
						p.ID,
						orDash(p.Name),
						orDash(p.Date),
						yesNo(p.HasTranscript),
						strconv.Itoa(len(p.AudioFiles)),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Name", "Date", "Transcript", "Audio"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
				))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newProjectsShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a project and its transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(c context.Context, s *session) error {
				s.workspace.SelectProject(args[0])
				detail, ok, err := s.workspace.Detail(c)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("project %s not found", args[0])
				}
				if jsonOutput {
					return writeJSON(cmd, detail)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Project:    %s (%s)\n", orDash(detail.Project.Name), detail.Project.ID)
				fmt.Fprintf(out, "Date:       %s\n", orDash(detail.Project.Date))
				if detail.Project.URL != "" {
					fmt.Fprintf(out, "Source:     %s\n", detail.Project.URL)
				}
				if len(detail.Project.AudioFiles) > 0 {
					fmt.Fprintf(out, "Audio:      %s\n", strings.Join(detail.Project.AudioFiles, ", "))
				}
				if detail.Transcript != nil {
					fmt.Fprintln(out)
					fmt.Fprintln(out, detail.Transcript.Text)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newProjectsDownloadCommand(ctx *commandContext) *cobra.Command {
	var audioFile string
	cmd := &cobra.Command{
		Use:   "download <id>",
		Short: "Download a project's transcript or one of its audio files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(c context.Context, s *session) error {
				var (
					path  string
					bytes int64
				)
				if audioFile != "" {
					res, err := s.downloader.Audio(c, args[0], audioFile)
					if err != nil {
						return err
					}
					path, bytes = res.Path, res.Bytes
				} else {
					res, err := s.downloader.Transcript(c, args[0])
					if err != nil {
						return err
					}
					path, bytes = res.Path, res.Bytes
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes)\n", path, bytes)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&audioFile, "audio", "", "Audio file name to download instead of the transcript")
	return cmd
}

func newProjectsDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(c context.Context, s *session) error {
				_, err := s.workspace.DeleteProject(c, args[0])
				return err
			})
		},
	}
}
