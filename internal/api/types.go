package api

import "tscribe/internal/provider"

// PromptData holds the structured prompt fields used for processing.
type PromptData struct {
	YourRole               string `json:"yourRole"`
	ScriptStructure        string `json:"scriptStructure"`
	ToneAndStyle           string `json:"toneAndStyle"`
	RetentionAndFlow       string `json:"retentionAndFlow"`
	AdditionalInstructions string `json:"additionalInstructions"`
}

// ProcessInput is the body of a transcript processing request.
type ProcessInput struct {
	URL        string     `json:"url"`
	Title      string     `json:"title,omitempty"`
	PromptData PromptData `json:"promptData"`
	// Duration is the target narration length in minutes.
	Duration int    `json:"duration,omitempty"`
	Model    string `json:"model,omitempty"`
}

// ProcessResult acknowledges a processing submission.
type ProcessResult struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type Transcript struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	CreatedAt   string `json:"createdAt"`
	Status      string `json:"status"`
	AudioStatus string `json:"audioStatus,omitempty"`
	AudioURL    string `json:"audioUrl,omitempty"`
}

type AudioResult struct {
	TranscriptID string `json:"transcriptId"`
	Status       string `json:"status"`
	URL          string `json:"url"`
	Message      string `json:"message"`
}

type SavePromptInput struct {
	PromptName string     `json:"promptName"`
	PromptData PromptData `json:"promptData"`
}

type SavePromptResult struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	PromptID   string `json:"promptId"`
	PromptName string `json:"promptName"`
}

// Prompt is a saved prompt template summary.
type Prompt struct {
	ID       string `json:"unique_id"`
	Name     string `json:"prompt_name"`
	Date     string `json:"date"`
	Filename string `json:"filename"`
}

type PromptDetail struct {
	PromptData PromptData     `json:"promptData"`
	MetaData   map[string]any `json:"metaData,omitempty"`
}

type Project struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Date          string   `json:"date"`
	HasTranscript bool     `json:"hasTranscript"`
	AudioFiles    []string `json:"audioFiles"`
	URL           string   `json:"url"`
}

type ProjectTranscript struct {
	ProjectID string `json:"projectId"`
	Text      string `json:"text"`
}

// Ack is the generic {success, message} acknowledgement.
type Ack struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// APIKeyStatus reports which providers have a key configured.
type APIKeyStatus map[provider.Provider]bool

type SaveAPIKeyInput struct {
	Provider provider.Provider `json:"provider"`
	Key      string            `json:"key"`
}

type DefaultModel struct {
	Model string `json:"model"`
}

type ModelOption struct {
	Value     string            `json:"value"`
	Label     string            `json:"label"`
	Provider  provider.Provider `json:"provider"`
	Available bool              `json:"available"`
}

type PingResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
