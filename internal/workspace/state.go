package workspace

// Dialog identifies a modal the user can open.
type Dialog int

const (
	DialogProcess Dialog = iota + 1
	DialogSavePrompt
	DialogAPIKey
	DialogDefaultModel
	DialogDeleteProject
	DialogDeletePrompt
)

func (d Dialog) String() string {
	switch d {
	case DialogProcess:
		return "process"
	case DialogSavePrompt:
		return "save_prompt"
	case DialogAPIKey:
		return "api_key"
	case DialogDefaultModel:
		return "default_model"
	case DialogDeleteProject:
		return "delete_project"
	case DialogDeletePrompt:
		return "delete_prompt"
	default:
		return "none"
	}
}

// SelectProject makes id the project shown in the detail view.
func (w *Workspace) SelectProject(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.selected = id
}

// SelectedProject returns the selected project id, empty when none.
func (w *Workspace) SelectedProject() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selected
}

// ClearSelection forgets the selected project.
func (w *Workspace) ClearSelection() {
	w.SelectProject("")
}

// clearSelectionIf clears the selection only when it still points at id.
func (w *Workspace) clearSelectionIf(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.selected == id {
		w.selected = ""
	}
}

// Open marks dialog d as open.
func (w *Workspace) Open(d Dialog) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.dialogs[d] = true
}

// Close marks dialog d as closed.
func (w *Workspace) Close(d Dialog) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.dialogs, d)
}

// IsOpen reports whether dialog d is open.
func (w *Workspace) IsOpen(d Dialog) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dialogs[d]
}
