package workspace

import (
	"context"
	"sort"

	"tscribe/internal/api"
	"tscribe/internal/provider"
)

// ProjectsView is the project list as shown to the user. Empty is set for a
// successful load that returned no projects.
type ProjectsView struct {
	Projects []api.Project
	Empty    bool
}

// Projects returns the project list view.
func (w *Workspace) Projects(ctx context.Context) (ProjectsView, error) {
	projects, err := w.caches.Projects.List(ctx)
	if err != nil {
		return ProjectsView{}, err
	}
	if projects == nil {
		projects = []api.Project{}
	}
	return ProjectsView{Projects: projects, Empty: len(projects) == 0}, nil
}

// ProjectDetail is the selected project with its transcript, when it has one.
type ProjectDetail struct {
	Project    api.Project
	Transcript *api.ProjectTranscript
}

// Detail loads the selected project. ok is false when nothing is selected or
// the selection no longer exists; a vanished selection is cleared.
func (w *Workspace) Detail(ctx context.Context) (ProjectDetail, bool, error) {
	id := w.SelectedProject()
	if id == "" {
		return ProjectDetail{}, false, nil
	}
	projects, err := w.caches.Projects.List(ctx)
	if err != nil {
		return ProjectDetail{}, false, err
	}
	for _, project := range projects {
		if project.ID != id {
			continue
		}
		detail := ProjectDetail{Project: project}
		if project.HasTranscript {
			transcript, err := w.caches.Projects.Transcript(ctx, id)
			if err != nil {
				return ProjectDetail{}, false, err
			}
			detail.Transcript = &transcript
		}
		return detail, true, nil
	}
	w.clearSelectionIf(id)
	return ProjectDetail{}, false, nil
}

// ModelChoice is one selectable model with its key status.
type ModelChoice struct {
	Value     string
	Label     string
	Provider  provider.Provider
	Available bool
	HasKey    bool
	Default   bool
}

// ModelChoices joins the available models with the API key status and the
// default model, ordered by provider then label.
func (w *Workspace) ModelChoices(ctx context.Context) ([]ModelChoice, error) {
	settings := w.caches.Settings
	models, err := settings.Models(ctx)
	if err != nil {
		return nil, err
	}
	keys, err := settings.APIKeys(ctx)
	if err != nil {
		return nil, err
	}
	def, err := settings.DefaultModel(ctx)
	if err != nil {
		return nil, err
	}

	choices := make([]ModelChoice, 0, len(models))
	for _, m := range models {
		choices = append(choices, ModelChoice{
			Value:     m.Value,
			Label:     m.Label,
			Provider:  m.Provider,
			Available: m.Available,
			HasKey:    keys[m.Provider],
			Default:   m.Value == def.Model,
		})
	}
	sort.SliceStable(choices, func(i, j int) bool {
		if choices[i].Provider != choices[j].Provider {
			return choices[i].Provider < choices[j].Provider
		}
		return choices[i].Label < choices[j].Label
	})
	return choices, nil
}
