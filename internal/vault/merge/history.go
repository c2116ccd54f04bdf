package merge

import (
	"fmt"
	"sort"
	"time"

	"github.com/ravensync/vaultkeep/internal/vault"
)

// mergeHistory unions sourceEntry's and targetEntry's history chains,
// keyed by normalized modification time, applies the newer-side
// preference rule, folds in the current revision of whichever side
// loses the top-level conflict, truncates to maxItems and installs the
// result on targetEntry. It reports whether targetEntry's history
// actually changed, and leaves targetEntry's own TimeInfo untouched.
func (m *Merger) mergeHistory(sourceEntry, targetEntry *vault.Entry, maxItems int) bool {
	targetMod := vault.Normalize(targetEntry.TimeInfo.LastModified)
	sourceMod := vault.Normalize(sourceEntry.TimeInfo.LastModified)
	preferLocal := targetMod.After(sourceMod)
	preferRemote := targetMod.Before(sourceMod)

	merged := map[time.Time]*vault.Entry{}
	var order []time.Time

	for _, item := range targetEntry.HistoryItems() {
		key := vault.Normalize(item.TimeInfo.LastModified)
		existing, ok := merged[key]
		if ok && !existing.Equal(item, vault.IgnoreMilliseconds) {
			m.warnf("inconsistent history entry of %s[%s] at %s contains conflicting changes - conflict resolution may lose data",
				sourceEntry.Title, sourceEntry.UUID, key.Format("2006-01-02 15-04-05"))
		}
		if !ok {
			merged[key] = item.Clone(vault.CloneNoFlags)
			order = append(order, key)
		}
	}

	for _, item := range sourceEntry.HistoryItems() {
		key := vault.Normalize(item.TimeInfo.LastModified)
		if existing, ok := merged[key]; ok && !existing.Equal(item, vault.IgnoreMilliseconds) {
			m.warnf("history entry of %s[%s] at %s contains conflicting changes - conflict resolution may lose data",
				sourceEntry.Title, sourceEntry.UUID, key.Format("2006-01-02 15-04-05"))
		}
		if preferRemote {
			if _, ok := merged[key]; ok {
				delete(merged, key)
				order = removeTime(order, key)
			}
		}
		if _, ok := merged[key]; !ok {
			merged[key] = item.Clone(vault.CloneNoFlags)
			order = append(order, key)
		}
	}

	if targetMod.Equal(sourceMod) &&
		!targetEntry.Equal(sourceEntry, vault.IgnoreMilliseconds|vault.IgnoreHistory|vault.IgnoreLocation) {
		m.warnf("entry of %s[%s] contains conflicting changes - conflict resolution may lose data",
			sourceEntry.Title, sourceEntry.UUID)
	}

	// Fold in the current revision of the losing side. There is
	// deliberately no branch for targetMod == sourceMod: on a tie the
	// losing side's current revision is simply dropped.
	if targetMod.Before(sourceMod) {
		if preferLocal {
			if _, ok := merged[targetMod]; ok {
				delete(merged, targetMod)
				order = removeTime(order, targetMod)
			}
		}
		if _, ok := merged[targetMod]; !ok {
			merged[targetMod] = targetEntry.Clone(vault.CloneNoFlags)
			order = append(order, targetMod)
		}
	} else if targetMod.After(sourceMod) {
		if preferRemote {
			if _, ok := merged[sourceMod]; ok {
				delete(merged, sourceMod)
				order = removeTime(order, sourceMod)
			}
		}
		if _, ok := merged[sourceMod]; !ok {
			merged[sourceMod] = sourceEntry.Clone(vault.CloneNoFlags)
			order = append(order, sourceMod)
		}
	}

	sort.Slice(order, func(i, j int) bool { return order[i].Before(order[j]) })
	newChain := make([]*vault.Entry, len(order))
	for i, key := range order {
		newChain[i] = merged[key]
	}

	if lastNEqual(targetEntry.HistoryItems(), newChain, maxItems) {
		return false
	}

	preservedTimeInfo := targetEntry.TimeInfo
	restore := targetEntry.SetUpdateTimeinfo(false)

	targetEntry.RemoveHistoryItems(targetEntry.HistoryItems())
	for _, item := range newChain {
		targetEntry.AddHistoryItem(item)
	}
	targetEntry.TruncateHistory(maxItems)

	targetEntry.SetUpdateTimeinfo(restore)
	if !targetEntry.TimeInfo.Equal(preservedTimeInfo, vault.CompareExact) {
		panic(fmt.Sprintf("mergeHistory perturbed TimeInfo of entry %s", targetEntry.UUID))
	}

	return true
}

// lastNEqual reports whether the last n items of old and new are
// pairwise equal (ignoring sub-second differences): a clean
// length-then-tail comparison. Identical chains report unchanged.
func lastNEqual(old, new []*vault.Entry, n int) bool {
	if len(old) != len(new) {
		return false
	}
	start := 0
	if n > 0 && len(old) > n {
		start = len(old) - n
	}
	for i := start; i < len(old); i++ {
		if !old[i].Equal(new[i], vault.IgnoreMilliseconds) {
			return false
		}
	}
	return true
}

func removeTime(order []time.Time, key time.Time) []time.Time {
	for i, t := range order {
		if t.Equal(key) {
			return append(order[:i], order[i+1:]...)
		}
	}
	return order
}
