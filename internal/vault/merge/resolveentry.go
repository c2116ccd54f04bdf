package merge

import "github.com/ravensync/vaultkeep/internal/vault"

// resolveEntryConflict decides which side's current revision of an
// entry that exists on both sides wins. When source is strictly newer
// it replaces the target's current revision (folding the target's old
// revision into history); otherwise the target's current revision is
// kept and the source's revision is folded into history instead.
func (m *Merger) resolveEntryConflict(sourceEntry, targetEntry *vault.Entry) {
	srcMod := vault.Normalize(sourceEntry.TimeInfo.LastModified)
	tgtMod := vault.Normalize(targetEntry.TimeInfo.LastModified)
	maxItems := m.historyMaxItems()

	if srcMod.After(tgtMod) {
		clone := sourceEntry.Clone(vault.CloneIncludeHistory)
		m.mergeHistory(targetEntry, clone, maxItems)

		oldParent := targetEntry.Group()
		eraseEntry(targetEntry)
		moveEntry(clone, oldParent)

		m.record(changeForEntry(Modified, clone, "Synchronizing from newer source"))
		return
	}

	if m.mergeHistory(sourceEntry, targetEntry, maxItems) {
		m.record(changeForEntry(Modified, targetEntry, "Synchronizing from older source"))
	}
}
