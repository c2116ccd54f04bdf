package merge

import "github.com/ravensync/vaultkeep/internal/vault"

// resolveGroupConflict copies source's mutable properties onto target
// when source is strictly newer. It never touches Children, Entries or
// location: those are the recursive tree merger's and the tree mover's
// responsibility respectively.
func (m *Merger) resolveGroupConflict(sourceGroup, targetGroup *vault.Group) {
	srcMod := vault.Normalize(sourceGroup.TimeInfo.LastModified)
	tgtMod := vault.Normalize(targetGroup.TimeInfo.LastModified)
	if !srcMod.After(tgtMod) {
		return
	}

	targetGroup.Name = sourceGroup.Name
	targetGroup.Notes = sourceGroup.Notes
	if sourceGroup.IconUUID != vault.NilUUID {
		targetGroup.IconUUID = sourceGroup.IconUUID
	} else {
		targetGroup.IconUUID = vault.NilUUID
		targetGroup.IconID = sourceGroup.IconID
	}
	targetGroup.TimeInfo.ExpiryEnabled = sourceGroup.TimeInfo.ExpiryEnabled
	targetGroup.TimeInfo.ExpiryTime = sourceGroup.TimeInfo.ExpiryTime
	targetGroup.TimeInfo.LastModified = sourceGroup.TimeInfo.LastModified

	m.record(changeForGroup(Modified, targetGroup, "Overwriting group properties"))
}
