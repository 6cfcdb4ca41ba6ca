package syncer

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/reggie-db/reggie-build/internal/manifest"
	"github.com/reggie-db/reggie-build/internal/workspace"
	"github.com/rs/zerolog/log"
)

// Result records the outcome of persisting one project.
type Result struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Changed bool   `json:"changed"`
}

// PersistOptions controls the persistence pass.
type PersistOptions struct {
	// OutputDir, when set, receives the manifests at their root-relative
	// paths instead of overwriting the workspace files.
	OutputDir string
	// Formatter is run over each encoded manifest before comparing.
	Formatter manifest.Formatter
}

// Persist writes every project of tree whose encoded manifest differs from
// the file on disk and reports what happened to each.
func Persist(ctx context.Context, tree *workspace.Tree, opts PersistOptions) ([]Result, error) {
	projects := tree.Projects()
	results := make([]Result, 0, len(projects))
	for _, p := range projects {
		dest := p.Path
		if opts.OutputDir != "" {
			rel, err := filepath.Rel(tree.Dir(), p.Path)
			if err != nil {
				return results, fmt.Errorf("persisting %s: %w", p.Name(), err)
			}
			dest = filepath.Join(opts.OutputDir, rel)
		}
		changed, err := p.Persist(ctx, manifest.PersistOptions{Destination: dest, Formatter: opts.Formatter})
		if err != nil {
			return results, fmt.Errorf("persisting %s (%s): %w", p.Name(), dest, err)
		}
		if changed {
			log.Info().Str("project", p.Name()).Str("path", dest).Msg("Project updated")
		}
		results = append(results, Result{Name: p.Name(), Path: dest, Changed: changed})
	}
	return results, nil
}
