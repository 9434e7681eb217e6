package output

import (
	"cmp"
	"fmt"
	"path/filepath"
	"slices"

	sigsyaml "sigs.k8s.io/yaml"
)

// Artifact is one produced file as recorded in a build report.
type Artifact struct {
	Target string `json:"target"`
	Name   string `json:"name"`
	Path   string `json:"path"`
	Size   int64  `json:"size"`
	Digest string `json:"digest"`
}

// Report lists every artifact of a run with its digest so that two builds can
// be compared without diffing file contents.
type Report struct {
	Tool      string     `json:"tool"`
	Version   string     `json:"version,omitempty"`
	Artifacts []Artifact `json:"artifacts"`
}

// Add records a written file. The path is stored relative to root with
// forward slashes.
func (r *Report) Add(root, target, name string, st Stat) {
	rel, err := filepath.Rel(root, st.Path)
	if err != nil {
		rel = st.Path
	}

	r.Artifacts = append(r.Artifacts, Artifact{
		Target: target,
		Name:   name,
		Path:   filepath.ToSlash(rel),
		Size:   st.Size,
		Digest: st.Digest,
	})
}

// Marshal renders the report as YAML with artifacts ordered by path.
func (r *Report) Marshal() ([]byte, error) {
	sorted := *r
	sorted.Artifacts = slices.Clone(r.Artifacts)
	slices.SortFunc(sorted.Artifacts, func(a, b Artifact) int {
		return cmp.Compare(a.Path, b.Path)
	})

	data, err := sigsyaml.Marshal(sorted)
	if err != nil {
		return nil, fmt.Errorf("serializing report: %w", err)
	}

	return data, nil
}
