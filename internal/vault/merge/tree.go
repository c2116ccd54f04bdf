package merge

import "github.com/ravensync/vaultkeep/internal/vault"

// moveEntry reparents entry under newParent, suspending auto-timestamp
// bookkeeping on the entry, its current parent and newParent for the
// duration of the move so that the caller's own LocationChanged stamp
// (copied from the source side) is not overwritten. No-op if entry is
// already a child of newParent.
func moveEntry(entry *vault.Entry, newParent *vault.Group) {
	oldParent := entry.Group()
	if oldParent == newParent {
		return
	}

	restoreOld := suspendTimeinfo(oldParent)
	restoreNew := suspendTimeinfo(newParent)
	restoreEntry := entry.SetUpdateTimeinfo(false)

	if oldParent != nil {
		oldParent.RemoveEntryLink(entry)
	}
	newParent.AddEntryLink(entry)

	entry.SetUpdateTimeinfo(restoreEntry)
	restoreNew()
	restoreOld()
}

// moveGroup reparents group under newParent with the same bookkeeping
// suspension as moveEntry.
func moveGroup(group *vault.Group, newParent *vault.Group) {
	oldParent := group.Parent()
	if oldParent == newParent {
		return
	}

	restoreOld := suspendTimeinfo(oldParent)
	restoreNew := suspendTimeinfo(newParent)
	restoreGroup := group.SetUpdateTimeinfo(false)

	if oldParent != nil {
		oldParent.RemoveChildLink(group)
	}
	newParent.AddChildLink(group)

	group.SetUpdateTimeinfo(restoreGroup)
	restoreNew()
	restoreOld()
}

// suspendTimeinfo disables auto-timestamping on g (if non-nil) and
// returns a closure that restores the prior setting.
func suspendTimeinfo(g *vault.Group) func() {
	if g == nil {
		return func() {}
	}
	previous := g.SetUpdateTimeinfo(false)
	return func() { g.SetUpdateTimeinfo(previous) }
}

// eraseEntry removes entry from its parent and from the database it
// belongs to without letting the tree auto-append a fresh tombstone: the
// deletion log is snapshotted before the removal and restored
// afterwards, mirroring KeePassXC's Merger::eraseEntry.
func eraseEntry(entry *vault.Entry) {
	db := entry.Database()
	var snapshot []vault.DeletedObject
	if db != nil {
		snapshot = db.DeletedObjects()
	}

	parent := entry.Group()
	restore := suspendTimeinfo(parent)
	if parent != nil {
		parent.RemoveEntryLink(entry)
	}
	restore()

	if db != nil {
		db.SetDeletedObjects(snapshot)
	}
}

// eraseGroup removes group from its parent and from the database it
// belongs to, with the same tombstone suppression as eraseEntry.
func eraseGroup(group *vault.Group) {
	db := group.Database()
	var snapshot []vault.DeletedObject
	if db != nil {
		snapshot = db.DeletedObjects()
	}

	parent := group.Parent()
	restore := suspendTimeinfo(parent)
	if parent != nil {
		parent.RemoveChildLink(group)
	}
	restore()

	if db != nil {
		db.SetDeletedObjects(snapshot)
	}
}
