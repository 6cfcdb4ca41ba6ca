package syncer

import (
	"context"
	"fmt"
	"os"

	"github.com/reggie-db/reggie-build/internal/manifest"
	"github.com/reggie-db/reggie-build/internal/workspace"
	"github.com/rs/zerolog/log"
)

// ProjectFormatter formats the sources of one project directory.
type ProjectFormatter interface {
	FormatProject(ctx context.Context, dir string) error
}

// Options selects which operations Run performs.
type Options struct {
	// Names restricts mutation to these projects; empty means all.
	Names []string

	Version         bool
	VersionString   string
	FallbackVersion string
	Revisions       RevisionSource
	StrictVersion   bool

	BuildSystem  bool
	ToolSettings bool
	Dependencies bool
	MemberPaths  bool

	ProjectFormatter  ProjectFormatter
	ManifestFormatter manifest.Formatter
	OutputDir         string
}

// DefaultOptions enables every manifest operation. Formatters stay unset.
func DefaultOptions() Options {
	return Options{
		Version:      true,
		BuildSystem:  true,
		ToolSettings: true,
		Dependencies: true,
		MemberPaths:  true,
	}
}

// Report summarizes a run.
type Report struct {
	Version string   `json:"version,omitempty"`
	Results []Result `json:"results"`
}

// Changed returns the results of projects that were written.
func (r *Report) Changed() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Changed {
			out = append(out, res)
		}
	}
	return out
}

// Run executes the enabled operations in order (version, build-system,
// tool settings, dependencies, member paths, project formatting) and then
// persists the root and the selected members.
func Run(ctx context.Context, full *workspace.Tree, opts Options) (*Report, error) {
	if err := full.RequireFull(); err != nil {
		return nil, err
	}
	view, err := full.Filter(opts.Names)
	if err != nil {
		return nil, err
	}
	log.Debug().Strs("projects", names(view.Projects())).Msg("Syncing projects")

	report := &Report{}
	if opts.Version {
		v, err := ResolveVersion(opts.VersionString, opts.FallbackVersion, opts.Revisions, opts.StrictVersion)
		if err != nil {
			return nil, err
		}
		report.Version = v
		Version(view.Projects(), v)
	}
	if opts.BuildSystem {
		BuildSystem(view)
	}
	if opts.ToolSettings {
		ToolSettings(view)
	}
	if opts.Dependencies {
		if err := Dependencies(full, view); err != nil {
			return nil, err
		}
	}
	if opts.MemberPaths {
		if err := MemberPaths(full); err != nil {
			return nil, err
		}
	}
	if opts.ProjectFormatter != nil {
		for _, p := range view.Projects() {
			if _, err := os.Stat(p.Dir()); err != nil {
				continue
			}
			if err := opts.ProjectFormatter.FormatProject(ctx, p.Dir()); err != nil {
				return nil, fmt.Errorf("formatting %s: %w", p.Name(), err)
			}
		}
	}

	report.Results, err = Persist(ctx, view, PersistOptions{OutputDir: opts.OutputDir, Formatter: opts.ManifestFormatter})
	if err != nil {
		return report, err
	}
	return report, nil
}

// ResolveVersion returns explicit when set, otherwise the version derived
// from src. When derivation fails fallback is used (DefaultVersion when
// empty), unless strict is set, in which case the error is returned.
func ResolveVersion(explicit, fallback string, src RevisionSource, strict bool) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if fallback == "" {
		fallback = DefaultVersion
	}
	if src == nil {
		if strict {
			return "", fmt.Errorf("%w: no revision source", ErrVersionDerivation)
		}
		return fallback, nil
	}
	v, err := DeriveVersion(src)
	if err != nil {
		if strict {
			return "", err
		}
		log.Warn().Err(err).Str("version", fallback).Msg("Falling back to default version")
		return fallback, nil
	}
	return v, nil
}

func names(nodes []*manifest.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name()
	}
	return out
}
