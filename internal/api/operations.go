package api

import "tscribe/internal/provider"

// Transcripts

// ProcessTranscript submits a video for processing with the backend's default model.
func ProcessTranscript(in ProcessInput) Request {
	in.Model = ""
	req := post("transcripts.process", "/transcripts/process", in)
	req.Deadline = DeadlineProcessing
	return req
}

// ProcessTranscriptWithModel pins processing to in.Model.
func ProcessTranscriptWithModel(in ProcessInput) Request {
	req := post("transcripts.process_model", "/transcripts/process/model", in)
	req.Deadline = DeadlineProcessing
	return req
}

// ListTranscripts returns every processed transcript.
func ListTranscripts() Request {
	return get("transcripts.list", "/transcripts")
}

// Audio

// GenerateAudio asks the backend to voice an existing transcript.
func GenerateAudio(transcriptID string) Request {
	req := post("audio.generate", "/audio/generate/"+segment(transcriptID), nil)
	req.Deadline = DeadlineProcessing
	return req
}

// Prompts

// SavePrompt stores a named prompt template.
func SavePrompt(in SavePromptInput) Request {
	return post("prompts.save", "/prompts/save", in)
}

// ListPrompts returns the saved prompt summaries.
func ListPrompts() Request {
	return get("prompts.list", "/prompts")
}

// GetPrompt returns one prompt with its data.
func GetPrompt(id string) Request {
	return get("prompts.get", "/prompts/"+segment(id))
}

// DeletePrompt removes a saved prompt.
func DeletePrompt(id string) Request {
	return del("prompts.delete", "/prompts/"+segment(id))
}

// Projects

// ListProjects returns the project folders known to the backend.
func ListProjects() Request {
	return get("projects.list", "/projects")
}

// GetProjectTranscript returns the transcript text of a project.
func GetProjectTranscript(id string) Request {
	return get("projects.transcript", "/projects/"+segment(id)+"/transcript")
}

// ProjectTranscriptDownload streams the transcript file of a project.
func ProjectTranscriptDownload(id string) Request {
	req := get("projects.transcript_download", "/projects/"+segment(id)+"/transcript/download")
	req.Download = true
	req.Deadline = DeadlineNone
	return req
}

// ProjectAudioDownload streams one audio file of a project.
func ProjectAudioDownload(id, filename string) Request {
	req := get("projects.audio_download", "/projects/"+segment(id)+"/audio/"+segment(filename))
	req.Download = true
	req.Deadline = DeadlineNone
	return req
}

// DeleteProject removes a project folder and everything in it.
func DeleteProject(id string) Request {
	return del("projects.delete", "/projects/"+segment(id))
}

// Config

// ListAPIKeys reports which providers have a key configured.
func ListAPIKeys() Request {
	return get("config.apikeys", "/config/apikeys")
}

// SaveAPIKey stores a provider key on the backend.
func SaveAPIKey(in SaveAPIKeyInput) Request {
	return post("config.apikeys.save", "/config/apikeys", in)
}

// DeleteAPIKey removes the key for p.
func DeleteAPIKey(p provider.Provider) Request {
	return del("config.apikeys.delete", "/config/apikeys/"+segment(p.String()))
}

// GetDefaultModel returns the model used when none is pinned.
func GetDefaultModel() Request {
	return get("config.defaultmodel", "/config/defaultmodel")
}

// SaveDefaultModel replaces the default model.
func SaveDefaultModel(model string) Request {
	return post("config.defaultmodel.save", "/config/defaultmodel", DefaultModel{Model: model})
}

// ListModels returns the model catalogue with availability.
func ListModels() Request {
	return get("config.models", "/config/models")
}

// Ping checks that the backend is reachable.
func Ping() Request {
	return get("ping", "/test")
}
