package syncer

import (
	"errors"
	"fmt"

	"github.com/reggie-db/reggie-build/internal/manifest"
	"github.com/rs/zerolog/log"
)

// DefaultVersion is applied when no version is given and none can be derived.
const DefaultVersion = "0.0.1"

// ErrVersionDerivation is returned when the version cannot be derived from git.
var ErrVersionDerivation = errors.New("deriving version from git")

// RevisionSource answers the git queries used to derive a version.
type RevisionSource interface {
	IsDirty() (bool, error)
	ShortRevision(ref string) (string, error)
}

// DeriveVersion returns "0.0.1+g<hash>". The hash is taken from HEAD when
// the working tree is dirty and from HEAD~1 when it is clean.
func DeriveVersion(src RevisionSource) (string, error) {
	dirty, err := src.IsDirty()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrVersionDerivation, err)
	}
	ref := "HEAD~1"
	if dirty {
		ref = "HEAD"
	}
	rev, err := src.ShortRevision(ref)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrVersionDerivation, err)
	}
	log.Debug().Bool("dirty", dirty).Str("ref", ref).Str("rev", rev).Msg("Derived revision")
	return DefaultVersion + "+g" + rev, nil
}

// Version writes version into project.version of every project that has a
// project table. Projects already at version are left alone. Returns the
// number of projects updated.
func Version(projects []*manifest.Node, version string) int {
	target := manifest.String(version)
	updated := 0
	for _, p := range projects {
		project, ok := p.Data.Table("project")
		if !ok {
			continue
		}
		current, _ := project.Get("version")
		if current != nil && target.Equal(current) {
			continue
		}
		project.Set("version", target)
		updated++
		log.Debug().
			Str("project", p.Name()).
			Str("version", version).
			Interface("previous", scalarValue(current)).
			Msg("Updated version")
	}
	return updated
}

func scalarValue(v manifest.Value) any {
	if s, ok := v.(manifest.Scalar); ok {
		return s.Interface()
	}
	return nil
}
