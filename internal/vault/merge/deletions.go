package merge

import (
	"time"

	"github.com/ravensync/vaultkeep/internal/vault"
)

// mergeDeletions unions target's and source's tombstones, keeping the
// earliest deletion time per UUID, then resolves each tombstone against
// whatever is currently live in the target: entries first, then groups
// in leaf-first order. It runs only under Synchronize mode; any other
// mode leaves the target's deletion log untouched.
func (m *Merger) mergeDeletions() {
	if m.targetDB == nil {
		return
	}
	if m.effectiveMode(m.targetRoot) != vault.MergeModeSynchronize {
		return
	}

	merged := map[vault.UUID]vault.DeletedObject{}
	var order []vault.UUID

	add := func(obj vault.DeletedObject) {
		if existing, ok := merged[obj.UUID]; ok {
			if obj.DeletionTime.Before(existing.DeletionTime) {
				merged[obj.UUID] = obj
			}
			return
		}
		merged[obj.UUID] = obj
		order = append(order, obj.UUID)
	}

	for _, obj := range m.targetDB.DeletedObjects() {
		add(obj)
	}
	if m.sourceDB != nil {
		for _, obj := range m.sourceDB.DeletedObjects() {
			add(obj)
		}
	}

	var entryQueue, groupQueue, neither []vault.UUID
	for _, id := range order {
		switch {
		case m.targetDB.FindEntryByUUID(id) != nil:
			entryQueue = append(entryQueue, id)
		case m.targetDB.FindGroupByUUID(id) != nil:
			groupQueue = append(groupQueue, id)
		default:
			neither = append(neither, id)
		}
	}

	var result []vault.DeletedObject
	for _, id := range neither {
		result = append(result, merged[id])
	}

	for _, id := range entryQueue {
		tomb := merged[id]
		entry := m.targetDB.FindEntryByUUID(id)
		if entry == nil {
			continue
		}
		if vault.NormalizedAfter(entry.TimeInfo.LastModified, tomb.DeletionTime) {
			// Edited after the remote delete: the entry survives and
			// the tombstone is dropped.
			continue
		}

		hadParent := entry.Group() != nil
		eraseEntry(entry)
		result = append(result, tomb)
		if hadParent {
			m.record(changeForEntry(Deleted, entry, "Deleting child"))
		} else {
			m.record(changeForEntry(Deleted, entry, "Deleting orphan"))
		}
	}

	for len(groupQueue) > 0 {
		id := groupQueue[0]
		groupQueue = groupQueue[1:]

		group := m.targetDB.FindGroupByUUID(id)
		if group == nil {
			continue
		}
		if queueHoldsChildOf(groupQueue, group) {
			groupQueue = append(groupQueue, id)
			continue
		}

		tomb := merged[id]
		if vault.NormalizedAfter(group.TimeInfo.LastModified, tomb.DeletionTime) ||
			len(group.Entries) > 0 || len(group.Children) > 0 {
			// Either re-edited after the delete, or it still holds
			// live content the entry pass left behind.
			continue
		}

		hadParent := group.Parent() != nil
		eraseGroup(group)
		result = append(result, tomb)
		if hadParent {
			m.record(changeForGroup(Deleted, group, "Deleting child"))
		} else {
			m.record(changeForGroup(Deleted, group, "Deleting orphan"))
		}
	}

	changed := !deletedObjectsEqual(m.targetDB.DeletedObjects(), result)
	m.targetDB.SetDeletedObjects(result)
	if changed {
		m.record(changeNote("Changed deleted objects"))
	}
}

// queueHoldsChildOf reports whether any of group's direct child groups
// still has its UUID present in queue.
func queueHoldsChildOf(queue []vault.UUID, group *vault.Group) bool {
	if len(group.Children) == 0 {
		return false
	}
	children := make(map[vault.UUID]bool, len(group.Children))
	for _, c := range group.Children {
		children[c.UUID] = true
	}
	for _, id := range queue {
		if children[id] {
			return true
		}
	}
	return false
}

func deletedObjectsEqual(a, b []vault.DeletedObject) bool {
	if len(a) != len(b) {
		return false
	}
	am := make(map[vault.UUID]time.Time, len(a))
	for _, o := range a {
		am[o.UUID] = o.DeletionTime
	}
	for _, o := range b {
		t, ok := am[o.UUID]
		if !ok || !t.Equal(o.DeletionTime) {
			return false
		}
	}
	return true
}
