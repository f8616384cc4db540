package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"tscribe/internal/api"
)

func newTranscriptsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transcripts",
		Short: "Submit videos and list processed transcripts",
	}
	cmd.AddCommand(newTranscriptsListCommand(ctx))
	cmd.AddCommand(newTranscriptsProcessCommand(ctx))
	return cmd
}

func newTranscriptsListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transcripts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(c context.Context, s *session) error {
				transcripts, err := s.workspace.Caches().Transcripts.List(c)
				if err != nil {
					return err
				}
				if jsonOutput {
					if transcripts == nil {
						transcripts = []api.Transcript{}
					}
					return writeJSON(cmd, transcripts)
				}
				out := cmd.OutOrStdout()
				if len(transcripts) == 0 {
					fmt.Fprintln(out, "No transcripts")
					return nil
				}
				rows := make([][]string, 0, len(transcripts))
				for _, t := range transcripts {
					rows = append(rows, []string{
						t.ID,
						orDash(t.Title),
						statusLabel(t.Status),
						statusLabel(t.AudioStatus),
						orDash(t.CreatedAt),
					})
				}
				fmt.Fprintln(out, renderTable([]string{"ID", "Title", "Status", "Audio", "Created"}, rows, nil))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newTranscriptsProcessCommand(ctx *commandContext) *cobra.Command {
	var (
		title     string
		duration  int
		model     string
		fromDraft bool
		prompt    promptFlags
	)
	cmd := &cobra.Command{
		Use:   "process [url]",
		Short: "Submit a video for transcript processing",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(c context.Context, s *session) error {
				var (
					res api.ProcessResult
					err error
				)
				switch {
				case fromDraft:
					res, err = s.workspace.SubmitProcess(c)
				default:
					in := api.ProcessInput{Title: title, Duration: duration, PromptData: prompt.data(), Model: model}
					if len(args) == 1 {
						in.URL = args[0]
					}
					if model != "" {
						res, err = s.workspace.ProcessTranscriptWithModel(c, in)
					} else {
						res, err = s.workspace.ProcessTranscript(c, in)
					}
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", orDash(res.ID), statusLabel(res.Status))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Project title")
	cmd.Flags().IntVar(&duration, "duration", 0, "Target narration length in minutes")
	cmd.Flags().StringVar(&model, "model", "", "Model to use instead of the default")
	cmd.Flags().BoolVar(&fromDraft, "from-draft", false, "Submit the process draft instead of flags")
	prompt.bind(cmd)
	return cmd
}

func newAudioCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audio",
		Short: "Audio generation",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "generate <transcript-id>",
		Short: "Request narration audio for a transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(c context.Context, s *session) error {
				res, err := s.workspace.GenerateAudio(c, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", statusLabel(res.Status), orDash(res.URL))
				return nil
			})
		},
	})
	return cmd
}
