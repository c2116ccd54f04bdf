package vksnap

import (
	"encoding/base64"

	"github.com/ravensync/vaultkeep/internal/vault"
)

func encodeIcon(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// Build walks db and produces a Snapshot of its current state. The
// result carries no SnapshotRev or GeneratedAt; callers that want those
// stamped should use Export, which calls Build internally.
func Build(db *vault.Database) *Snapshot {
	s := &Snapshot{
		Meta: Meta{
			SchemaVersion:   SchemaVersion,
			HistoryMaxItems: db.Metadata().HistoryMaxItems,
		},
		Groups:  map[string]Group{},
		Entries: map[string]Entry{},
	}
	if db.RootGroup != nil {
		s.Meta.RootGroupUUID = db.RootGroup.UUID.String()
		walkGroup(db.RootGroup, s)
	}

	for _, id := range db.Metadata().CustomIconsOrder() {
		s.Icons = append(s.Icons, IconEntry{
			UUID: id.String(),
			Data: encodeIcon(db.Metadata().CustomIcon(id)),
		})
	}

	cd := db.Metadata().CustomData
	for _, key := range cd.Keys() {
		s.CustomData = append(s.CustomData, CustomDataEntry{
			Key:       key,
			Value:     cd.Value(key),
			Protected: cd.IsProtected(key),
		})
	}
	if lm := cd.LastModified(); !lm.IsZero() {
		s.Meta.CustomDataModified = FormatTimestamp(lm)
	}

	for _, obj := range db.DeletedObjects() {
		s.Deletions = append(s.Deletions, Deletion{
			UUID:         obj.UUID.String(),
			DeletionTime: FormatTimestamp(obj.DeletionTime),
		})
	}

	return s
}

func walkGroup(g *vault.Group, s *Snapshot) {
	sg := Group{
		Name:            g.Name,
		Notes:           g.Notes,
		IconID:          g.IconID,
		LastAccessed:    FormatTimestamp(g.TimeInfo.LastAccessed),
		Created:         FormatTimestamp(g.TimeInfo.Created),
		LastModified:    FormatTimestamp(g.TimeInfo.LastModified),
		LocationChanged: FormatTimestamp(g.TimeInfo.LocationChanged),
		ExpiryEnabled:   g.TimeInfo.ExpiryEnabled,
	}
	if g.IconUUID != vault.NilUUID {
		sg.IconUUID = g.IconUUID.String()
	}
	if g.MergeMode != vault.MergeModeDefault {
		sg.MergeMode = g.MergeMode.String()
	}
	if g.Parent() != nil {
		sg.ParentUUID = g.Parent().UUID.String()
	}
	if g.TimeInfo.ExpiryEnabled {
		sg.ExpiryTime = FormatTimestamp(g.TimeInfo.ExpiryTime)
	}
	s.Groups[g.UUID.String()] = sg

	for _, e := range g.Entries {
		s.Entries[e.UUID.String()] = buildEntry(e, g.UUID.String())
	}
	for _, c := range g.Children {
		walkGroup(c, s)
	}
}

func buildEntry(e *vault.Entry, groupUUID string) Entry {
	se := Entry{
		Title:           e.Title,
		GroupUUID:       groupUUID,
		Fields:          cloneFields(e.Fields),
		Created:         FormatTimestamp(e.TimeInfo.Created),
		LastModified:    FormatTimestamp(e.TimeInfo.LastModified),
		LastAccessed:    FormatTimestamp(e.TimeInfo.LastAccessed),
		LocationChanged: FormatTimestamp(e.TimeInfo.LocationChanged),
		ExpiryEnabled:   e.TimeInfo.ExpiryEnabled,
	}
	if e.TimeInfo.ExpiryEnabled {
		se.ExpiryTime = FormatTimestamp(e.TimeInfo.ExpiryTime)
	}
	for _, h := range e.HistoryItems() {
		se.History = append(se.History, buildHistoryItem(h))
	}
	return se
}

func buildHistoryItem(e *vault.Entry) HistoryItem {
	hi := HistoryItem{
		Title:           e.Title,
		Fields:          cloneFields(e.Fields),
		Created:         FormatTimestamp(e.TimeInfo.Created),
		LastModified:    FormatTimestamp(e.TimeInfo.LastModified),
		LastAccessed:    FormatTimestamp(e.TimeInfo.LastAccessed),
		LocationChanged: FormatTimestamp(e.TimeInfo.LocationChanged),
		ExpiryEnabled:   e.TimeInfo.ExpiryEnabled,
	}
	if e.TimeInfo.ExpiryEnabled {
		hi.ExpiryTime = FormatTimestamp(e.TimeInfo.ExpiryTime)
	}
	return hi
}

func cloneFields(fields map[string]string) map[string]string {
	if len(fields) == 0 {
		return nil
	}
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
