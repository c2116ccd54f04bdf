package merge

import (
	"fmt"

	"github.com/ravensync/vaultkeep/internal/vault"
)

// Merger reconciles a read-only source tree into a read-write target
// tree. Construct with New (whole-database scope) or NewGroup
// (subtree scope, still consulting the whole target tree for UUID
// lookups), then call Merge.
type Merger struct {
	sourceRoot *vault.Group
	targetRoot *vault.Group
	sourceDB   *vault.Database
	targetDB   *vault.Database

	forcedMode    vault.MergeMode
	forcedModeSet bool

	// Warnings accumulates one message per invariant violation or
	// conflicting-edit situation the merge encountered. Nothing in
	// this package ever aborts a merge because of what lands here.
	Warnings []string

	changes ChangeList
}

// New returns a Merger scoped to the whole of source and target. It
// asserts both are non-nil; the assertion panics rather than returning
// an error, matching Merger::Merger's Q_ASSERT in the original.
func New(source, target *vault.Database) *Merger {
	if source == nil {
		panic(&vault.NilDatabaseError{Which: "source"})
	}
	if target == nil {
		panic(&vault.NilDatabaseError{Which: "target"})
	}
	return &Merger{
		sourceRoot: source.RootGroup,
		targetRoot: target.RootGroup,
		sourceDB:   source,
		targetDB:   target,
	}
}

// NewGroup returns a Merger restricted to walking sourceGroup into
// targetGroup, while still resolving UUID lookups against the whole
// database each group belongs to. It asserts both groups are non-nil
// and belong to distinct databases.
func NewGroup(sourceGroup, targetGroup *vault.Group) *Merger {
	if sourceGroup == nil {
		panic(&vault.NilDatabaseError{Which: "source"})
	}
	if targetGroup == nil {
		panic(&vault.NilDatabaseError{Which: "target"})
	}
	sourceDB := sourceGroup.Database()
	targetDB := targetGroup.Database()
	if sourceDB != nil && sourceDB == targetDB {
		panic(&vault.CrossDatabaseError{DatabaseRoot: targetDB.RootGroup.UUID})
	}
	return &Merger{
		sourceRoot: sourceGroup,
		targetRoot: targetGroup,
		sourceDB:   sourceDB,
		targetDB:   targetDB,
	}
}

// SetForcedMergeMode overrides the per-group merge mode used to decide
// whether deletions apply, for every group touched by this Merger.
func (m *Merger) SetForcedMergeMode(mode vault.MergeMode) {
	m.forcedMode = mode
	m.forcedModeSet = true
}

// ResetForcedMergeMode clears any override set by SetForcedMergeMode,
// reverting to each group's own configured mode.
func (m *Merger) ResetForcedMergeMode() {
	m.forcedModeSet = false
	m.forcedMode = vault.MergeModeDefault
}

// effectiveMode resolves the mode that governs deletion propagation:
// a forced override, else the group's own mode, else Synchronize (an
// unconfigured group inherits the database's default policy of
// reconciling both sides, tombstones included).
func (m *Merger) effectiveMode(g *vault.Group) vault.MergeMode {
	if m.forcedModeSet {
		return m.forcedMode
	}
	if g != nil && g.MergeMode != vault.MergeModeDefault {
		return g.MergeMode
	}
	return vault.MergeModeSynchronize
}

func (m *Merger) warnf(format string, args ...any) {
	m.Warnings = append(m.Warnings, fmt.Sprintf(format, args...))
}

func (m *Merger) record(c Change) {
	m.changes = append(m.changes, c)
}

func (m *Merger) historyMaxItems() int {
	if m.targetDB != nil && m.targetDB.MetadataBlock != nil {
		return m.targetDB.MetadataBlock.HistoryMaxItems
	}
	return vault.DefaultHistoryMaxItems
}

func (m *Merger) findTargetEntry(id vault.UUID) *vault.Entry {
	if m.targetDB != nil {
		return m.targetDB.FindEntryByUUID(id)
	}
	return m.targetRoot.FindEntryByUUID(id)
}

func (m *Merger) findTargetGroup(id vault.UUID) *vault.Group {
	if m.targetDB != nil {
		return m.targetDB.FindGroupByUUID(id)
	}
	return m.targetRoot.FindGroupByUUID(id)
}

// Merge runs the tree, deletion and metadata phases in that order and
// returns the accumulated change list. If any change was recorded, the
// target database is marked modified.
func (m *Merger) Merge() ChangeList {
	m.changes = nil
	m.mergeGroup(m.sourceRoot, m.targetRoot)
	m.mergeDeletions()
	m.mergeMetadata()
	if len(m.changes) > 0 && m.targetDB != nil {
		m.targetDB.MarkAsModified()
	}
	return m.changes
}
