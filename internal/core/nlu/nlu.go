// Package nlu resolves (project, language) pairs to trained model ids
package nlu

// Project is a project and its ordered model ids
type Project struct {
	ID     string
	Models []string
}

// Model is a trained NLU model and its declared language
type Model struct {
	ID       string
	Language string
}

// Index maps projectID -> language -> modelID; languages match exactly
// it is immutable once built and safe for concurrent readers
type Index struct {
	byProject map[string]map[string]string
}

// Build indexes every project, including ones without models
// model ids listed by a project but missing from models are skipped;
// the first listed model wins when two share a language
func Build(projects []Project, models []Model) *Index {
	langOf := make(map[string]string, len(models))
	for _, m := range models {
		if _, dup := langOf[m.ID]; !dup {
			langOf[m.ID] = m.Language
		}
	}
	ix := &Index{byProject: make(map[string]map[string]string, len(projects))}
	for _, p := range projects {
		langs, ok := ix.byProject[p.ID]
		if !ok {
			langs = map[string]string{}
			ix.byProject[p.ID] = langs
		}
		for _, id := range p.Models {
			lang, ok := langOf[id]
			if !ok {
				continue
			}
			if _, taken := langs[lang]; !taken {
				langs[lang] = id
			}
		}
	}
	return ix
}

// Known reports whether the project exists
func (ix *Index) Known(projectID string) bool {
	if ix == nil {
		return false
	}
	_, ok := ix.byProject[projectID]
	return ok
}

// Resolve returns the model for projectID trained on lang
func (ix *Index) Resolve(projectID, lang string) (string, bool) {
	if ix == nil {
		return "", false
	}
	langs, ok := ix.byProject[projectID]
	if !ok {
		return "", false
	}
	id, ok := langs[lang]
	return id, ok
}

// Len is the number of indexed projects
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.byProject)
}
