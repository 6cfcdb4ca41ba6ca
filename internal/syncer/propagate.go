package syncer

import (
	"github.com/reggie-db/reggie-build/internal/manifest"
	"github.com/reggie-db/reggie-build/internal/workspace"
	"github.com/rs/zerolog/log"
)

const (
	buildSystemKey   = "build-system"
	memberProjectKey = "member-project"
)

// BuildSystem copies the root's build-system table into every member of
// tree, replacing whatever the member had. Reports false when the root has
// no build-system table to propagate.
func BuildSystem(tree *workspace.Tree) bool {
	src, ok := tree.Root().Data.Table(buildSystemKey)
	if !ok || src.Len() == 0 {
		log.Warn().Str("project", tree.Name()).Msg("No build-system table found in root project")
		return false
	}
	for _, m := range tree.Members() {
		m.Data.Set(buildSystemKey, src.Clone())
		log.Debug().Str("project", m.Name()).Msg("Propagated build-system")
	}
	return true
}

// ToolSettings merges the root's tool.member-project table into the top
// level of every member of tree. Member keys outside the propagated shape
// are kept. Reports false when there is nothing to merge.
func ToolSettings(tree *workspace.Tree) bool {
	v, ok := tree.Root().Lookup("tool", memberProjectKey)
	src, isTable := v.(*manifest.Table)
	if !ok || !isTable || src.Len() == 0 {
		log.Info().Str("project", tree.Name()).Msg("No tool.member-project table found in root project")
		return false
	}
	for _, m := range tree.Members() {
		manifest.Merge(m.Data, src)
		log.Debug().Str("project", m.Name()).Strs("keys", src.Keys()).Msg("Merged member-project settings")
	}
	return true
}
