package merge

import "fmt"

// mergeMetadata unions custom icons and merges the custom-data
// dictionary newest-wins-at-the-whole-dictionary level.
func (m *Merger) mergeMetadata() {
	if m.sourceDB == nil || m.targetDB == nil {
		return
	}
	m.mergeCustomIcons()
	m.mergeCustomData()
}

// mergeCustomIcons inserts every source icon the target lacks, in
// source's insertion order. Icons are never removed: they may still be
// referenced by a group or entry elsewhere in the target.
func (m *Merger) mergeCustomIcons() {
	sourceMeta := m.sourceDB.Metadata()
	targetMeta := m.targetDB.Metadata()

	for _, id := range sourceMeta.CustomIconsOrder() {
		if targetMeta.HasCustomIcon(id) {
			continue
		}
		targetMeta.AddCustomIcon(id, sourceMeta.CustomIcon(id))
		m.record(changeNote(fmt.Sprintf("Adding missing icon %s", id)))
	}
}

// mergeCustomData applies source's custom-data dictionary onto target's
// wholesale when source's LastModified is strictly newer. Keys present
// in target but absent from source are removed unless target has
// marked them protected; keys present in source with a different value
// are set. LastModified itself is never touched directly, only through
// CustomData.Set/Remove's own bookkeeping.
func (m *Merger) mergeCustomData() {
	sourceData := m.sourceDB.Metadata().CustomData
	targetData := m.targetDB.Metadata().CustomData

	if !sourceData.LastModified().After(targetData.LastModified()) {
		return
	}

	for _, key := range targetData.Keys() {
		if sourceData.Contains(key) || targetData.IsProtected(key) {
			continue
		}
		targetData.Remove(key)
		m.record(changeNote(fmt.Sprintf("Removing custom data %s", key)))
	}

	for _, key := range sourceData.Keys() {
		value := sourceData.Value(key)
		if targetData.Contains(key) && targetData.Value(key) == value {
			continue
		}
		targetData.Set(key, value)
		m.record(changeNote(fmt.Sprintf("Setting custom data %s", key)))
	}
}
