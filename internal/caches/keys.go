package caches

import "tscribe/internal/querycache"

var (
	TranscriptsKey     = querycache.NewKey("transcripts")
	ProjectsKey        = querycache.NewKey("projects")
	PromptsKey         = querycache.NewKey("prompts")
	APIKeysKey         = querycache.NewKey("apiKeys")
	AvailableModelsKey = querycache.NewKey("availableModels")
	DefaultModelKey    = querycache.NewKey("defaultModel")
)

// PromptKey identifies one prompt template.
func PromptKey(id string) querycache.Key {
	return querycache.NewKey("prompts", id)
}

// ProjectTranscriptKey identifies a project's transcript text.
func ProjectTranscriptKey(id string) querycache.Key {
	return querycache.NewKey("projects", id, "transcript")
}

// Mutation names, used in logs and as keys of Invalidations.
const (
	MutationProcess          = "transcripts.process"
	MutationProcessWithModel = "transcripts.process_model"
	MutationGenerateAudio    = "audio.generate"
	MutationSavePrompt       = "prompts.save"
	MutationDeletePrompt     = "prompts.delete"
	MutationDeleteProject    = "projects.delete"
	MutationSaveAPIKey       = "config.apikeys.save"
	MutationDeleteAPIKey     = "config.apikeys.delete"
	MutationSaveDefaultModel = "config.defaultmodel.save"
)

// Invalidations maps each mutation to the keys its success invalidates. The
// argument is the mutation's target id where it has one.
var Invalidations = map[string]func(id string) []querycache.Key{
	MutationProcess:          func(string) []querycache.Key { return []querycache.Key{TranscriptsKey} },
	MutationProcessWithModel: func(string) []querycache.Key { return []querycache.Key{TranscriptsKey} },
	// Audio status is a column of the transcripts list.
	MutationGenerateAudio: func(string) []querycache.Key { return []querycache.Key{TranscriptsKey} },
	MutationSavePrompt:    func(string) []querycache.Key { return []querycache.Key{PromptsKey} },
	MutationDeletePrompt: func(id string) []querycache.Key {
		return []querycache.Key{PromptsKey, PromptKey(id)}
	},
	MutationDeleteProject: func(id string) []querycache.Key {
		return []querycache.Key{ProjectsKey, ProjectTranscriptKey(id)}
	},
	MutationSaveAPIKey:       func(string) []querycache.Key { return []querycache.Key{APIKeysKey, AvailableModelsKey} },
	MutationDeleteAPIKey:     func(string) []querycache.Key { return []querycache.Key{APIKeysKey, AvailableModelsKey} },
	MutationSaveDefaultModel: func(string) []querycache.Key { return []querycache.Key{DefaultModelKey} },
}

func invalidates[In, Out any](name string, id func(In) string) func(In, Out) []querycache.Key {
	return func(in In, _ Out) []querycache.Key {
		target := ""
		if id != nil {
			target = id(in)
		}
		return Invalidations[name](target)
	}
}
