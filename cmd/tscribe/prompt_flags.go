package main

import (
	"github.com/spf13/cobra"

	"tscribe/internal/api"
)

type promptFlags struct {
	role         string
	structure    string
	tone         string
	retention    string
	instructions string
}

func (p *promptFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.role, "role", "", "Narrator role")
	cmd.Flags().StringVar(&p.structure, "structure", "", "Script structure")
	cmd.Flags().StringVar(&p.tone, "tone", "", "Tone and style")
	cmd.Flags().StringVar(&p.retention, "retention", "", "Retention and flow guidance")
	cmd.Flags().StringVar(&p.instructions, "instructions", "", "Additional instructions")
}

func (p *promptFlags) data() api.PromptData {
	return api.PromptData{
		YourRole:               p.role,
		ScriptStructure:        p.structure,
		ToneAndStyle:           p.tone,
		RetentionAndFlow:       p.retention,
		AdditionalInstructions: p.instructions,
	}
}
