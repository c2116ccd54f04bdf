package vksnap

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// CanonicalJSON renders s with a fixed key order (top-level sections in
// a fixed sequence; group and entry UUID keys and the fields of meta,
// groups and entries sorted), no insignificant whitespace and no HTML escaping, so that two
// snapshots of identical state produce byte-identical output.
func CanonicalJSON(s *Snapshot) ([]byte, error) {
	ordered := buildOrderedSnapshot(s)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(ordered); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	out := buf.Bytes()
	if len(out) > 0 && out[len(out)-1] == '\n' {
		out = out[:len(out)-1]
	}
	return out, nil
}

// ComputeSnapshotRev returns "sha256:<hex>" of data.
func ComputeSnapshotRev(data []byte) string {
	sum := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(sum[:])
}

// PrettyJSON renders s indented, for human inspection; not
// byte-deterministic across Go versions.
func PrettyJSON(s *Snapshot) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

type orderedMap []keyValue

type keyValue struct {
	Key   string
	Value interface{}
}

func (om orderedMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, kv := range om {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(kv.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		valJSON, err := json.Marshal(kv.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(valJSON)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func buildOrderedSnapshot(s *Snapshot) orderedMap {
	out := make(orderedMap, 0, 6)
	out = append(out, keyValue{"meta", buildOrderedMeta(&s.Meta)})
	if len(s.Groups) > 0 {
		out = append(out, keyValue{"groups", buildOrderedGroups(s.Groups)})
	}
	if len(s.Entries) > 0 {
		out = append(out, keyValue{"entries", buildOrderedEntries(s.Entries)})
	}
	if len(s.Icons) > 0 {
		out = append(out, keyValue{"custom_icons", s.Icons})
	}
	if len(s.CustomData) > 0 {
		out = append(out, keyValue{"custom_data", s.CustomData})
	}
	if len(s.Deletions) > 0 {
		sorted := append([]Deletion(nil), s.Deletions...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].UUID < sorted[j].UUID })
		out = append(out, keyValue{"deletions", sorted})
	}
	return out
}

func buildOrderedMeta(m *Meta) orderedMap {
	out := make(orderedMap, 0, 6)
	if m.CustomDataModified != "" {
		out = append(out, keyValue{"custom_data_modified_at", m.CustomDataModified})
	}
	if m.GeneratedAt != "" {
		out = append(out, keyValue{"generated_at", m.GeneratedAt})
	}
	out = append(out, keyValue{"history_max_items", m.HistoryMaxItems})
	out = append(out, keyValue{"root_group_uuid", m.RootGroupUUID})
	out = append(out, keyValue{"schema_version", m.SchemaVersion})
	if m.SnapshotRev != "" {
		out = append(out, keyValue{"snapshot_rev", m.SnapshotRev})
	}
	return out
}

func buildOrderedGroups(groups map[string]Group) orderedMap {
	uuids := make([]string, 0, len(groups))
	for id := range groups {
		uuids = append(uuids, id)
	}
	sort.Strings(uuids)

	out := make(orderedMap, 0, len(groups))
	for _, id := range uuids {
		out = append(out, keyValue{id, buildOrderedGroup(groups[id])})
	}
	return out
}

func buildOrderedGroup(g Group) orderedMap {
	out := make(orderedMap, 0, 12)
	out = append(out, keyValue{"created_at", g.Created})
	if g.ExpiryEnabled {
		out = append(out, keyValue{"expiry_enabled", g.ExpiryEnabled})
		out = append(out, keyValue{"expiry_time", g.ExpiryTime})
	}
	if g.IconID != 0 {
		out = append(out, keyValue{"icon_id", g.IconID})
	}
	if g.IconUUID != "" {
		out = append(out, keyValue{"icon_uuid", g.IconUUID})
	}
	out = append(out, keyValue{"last_accessed_at", g.LastAccessed})
	out = append(out, keyValue{"last_modified_at", g.LastModified})
	out = append(out, keyValue{"location_changed_at", g.LocationChanged})
	if g.MergeMode != "" {
		out = append(out, keyValue{"merge_mode", g.MergeMode})
	}
	out = append(out, keyValue{"name", g.Name})
	if g.Notes != "" {
		out = append(out, keyValue{"notes", g.Notes})
	}
	if g.ParentUUID != "" {
		out = append(out, keyValue{"parent_uuid", g.ParentUUID})
	}
	return out
}

func buildOrderedEntries(entries map[string]Entry) orderedMap {
	uuids := make([]string, 0, len(entries))
	for id := range entries {
		uuids = append(uuids, id)
	}
	sort.Strings(uuids)

	out := make(orderedMap, 0, len(entries))
	for _, id := range uuids {
		out = append(out, keyValue{id, buildOrderedEntry(entries[id])})
	}
	return out
}

func buildOrderedEntry(e Entry) orderedMap {
	out := make(orderedMap, 0, 10)
	out = append(out, keyValue{"created_at", e.Created})
	if e.ExpiryEnabled {
		out = append(out, keyValue{"expiry_enabled", e.ExpiryEnabled})
		out = append(out, keyValue{"expiry_time", e.ExpiryTime})
	}
	if len(e.Fields) > 0 {
		out = append(out, keyValue{"fields", e.Fields})
	}
	out = append(out, keyValue{"group_uuid", e.GroupUUID})
	if len(e.History) > 0 {
		out = append(out, keyValue{"history", e.History})
	}
	out = append(out, keyValue{"last_accessed_at", e.LastAccessed})
	out = append(out, keyValue{"last_modified_at", e.LastModified})
	out = append(out, keyValue{"location_changed_at", e.LocationChanged})
	out = append(out, keyValue{"title", e.Title})
	return out
}
