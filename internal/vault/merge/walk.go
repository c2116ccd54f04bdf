package merge

import "github.com/ravensync/vaultkeep/internal/vault"

// mergeGroup walks sourceGroup, inserting missing entries/groups into
// targetGroup, relocating moved items, invoking the conflict resolvers,
// and recursing into child groups. Entries are always processed before
// child groups at a given level, and recursion follows source order.
func (m *Merger) mergeGroup(sourceGroup, targetGroup *vault.Group) {
	for _, sourceEntry := range sourceGroup.Entries {
		targetEntry := m.findTargetEntry(sourceEntry.UUID)
		if targetEntry == nil {
			clone := sourceEntry.Clone(vault.CloneIncludeHistory)
			targetGroup.AddEntryLink(clone)
			m.record(changeForEntry(Added, clone, "Creating missing"))
			continue
		}

		if vault.NormalizedBefore(targetEntry.TimeInfo.LocationChanged, sourceEntry.TimeInfo.LocationChanged) &&
			targetEntry.Group() != targetGroup {
			moveEntry(targetEntry, targetGroup)
			targetEntry.TimeInfo.LocationChanged = sourceEntry.TimeInfo.LocationChanged
			m.record(changeForEntry(Moved, targetEntry, "Relocating"))
		}

		m.resolveEntryConflict(sourceEntry, targetEntry)
	}

	for _, sourceChild := range sourceGroup.Children {
		targetChild := m.findTargetGroup(sourceChild.UUID)
		if targetChild == nil {
			clone := sourceChild.Clone(vault.CloneNoFlags, vault.CloneNoGroupFlags)
			clone.TimeInfo.LocationChanged = sourceChild.TimeInfo.LocationChanged
			targetGroup.AddChildLink(clone)
			m.record(changeForGroup(Added, clone, "Creating missing"))
			m.mergeGroup(sourceChild, clone)
			continue
		}

		if vault.NormalizedBefore(targetChild.TimeInfo.LocationChanged, sourceChild.TimeInfo.LocationChanged) &&
			targetChild.Parent() != targetGroup {
			moveGroup(targetChild, targetGroup)
			targetChild.TimeInfo.LocationChanged = sourceChild.TimeInfo.LocationChanged
			m.record(changeForGroup(Moved, targetChild, "Relocating"))
		}

		m.resolveGroupConflict(sourceChild, targetChild)
		m.mergeGroup(sourceChild, targetChild)
	}
}
