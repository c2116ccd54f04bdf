// Package vksnap provides canonical JSON snapshots of a vault.Database.
//
// Snapshots are deterministic JSON renderings of the whole tree, meant
// for diffing two revisions (see the vkeep "diff" command) or for
// storing a vault next to source control. They use second-precision
// timestamps, matching the on-disk granularity the normalizer assumes.
package vksnap

import "time"

// Snapshot is the complete canonical state of a vault.Database.
type Snapshot struct {
	Meta       Meta              `json:"meta"`
	Groups     map[string]Group  `json:"groups,omitempty"`
	Entries    map[string]Entry  `json:"entries,omitempty"`
	Icons      []IconEntry       `json:"custom_icons,omitempty"`
	CustomData []CustomDataEntry `json:"custom_data,omitempty"`
	Deletions  []Deletion        `json:"deletions,omitempty"`
}

// Meta carries snapshot-wide metadata.
type Meta struct {
	SchemaVersion      int    `json:"schema_version"`
	GeneratedAt        string `json:"generated_at,omitempty"`
	SnapshotRev        string `json:"snapshot_rev,omitempty"`
	RootGroupUUID      string `json:"root_group_uuid"`
	HistoryMaxItems    int    `json:"history_max_items"`
	CustomDataModified string `json:"custom_data_modified_at,omitempty"`
}

// Group is one folder node. Keys under "groups" are UUIDs; ParentUUID
// is empty for the root.
type Group struct {
	Name            string `json:"name"`
	Notes           string `json:"notes,omitempty"`
	ParentUUID      string `json:"parent_uuid,omitempty"`
	IconID          int    `json:"icon_id,omitempty"`
	IconUUID        string `json:"icon_uuid,omitempty"`
	MergeMode       string `json:"merge_mode,omitempty"`
	Created         string `json:"created_at"`
	LastModified    string `json:"last_modified_at"`
	LastAccessed    string `json:"last_accessed_at"`
	LocationChanged string `json:"location_changed_at"`
	ExpiryEnabled   bool   `json:"expiry_enabled,omitempty"`
	ExpiryTime      string `json:"expiry_time,omitempty"`
}

// Entry is one secret record. Keys under "entries" are UUIDs.
type Entry struct {
	Title           string            `json:"title"`
	GroupUUID       string            `json:"group_uuid"`
	Fields          map[string]string `json:"fields,omitempty"`
	History         []HistoryItem     `json:"history,omitempty"`
	Created         string            `json:"created_at"`
	LastModified    string            `json:"last_modified_at"`
	LastAccessed    string            `json:"last_accessed_at"`
	LocationChanged string            `json:"location_changed_at"`
	ExpiryEnabled   bool              `json:"expiry_enabled,omitempty"`
	ExpiryTime      string            `json:"expiry_time,omitempty"`
}

// HistoryItem is one archived revision inside Entry.History, ordered
// oldest first.
type HistoryItem struct {
	Title           string            `json:"title"`
	Fields          map[string]string `json:"fields,omitempty"`
	Created         string            `json:"created_at"`
	LastModified    string            `json:"last_modified_at"`
	LastAccessed    string            `json:"last_accessed_at"`
	LocationChanged string            `json:"location_changed_at"`
	ExpiryEnabled   bool              `json:"expiry_enabled,omitempty"`
	ExpiryTime      string            `json:"expiry_time,omitempty"`
}

// IconEntry is one custom icon, in Metadata's insertion order.
type IconEntry struct {
	UUID string `json:"uuid"`
	Data string `json:"data"` // base64
}

// CustomDataEntry is one key/value pair from Metadata.CustomData, in
// insertion order. LastModifiedKey itself is never stored here; it is
// carried separately and restored without re-touching the store.
type CustomDataEntry struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	Protected bool   `json:"protected,omitempty"`
}

// Deletion is one tombstone.
type Deletion struct {
	UUID         string `json:"uuid"`
	DeletionTime string `json:"deletion_time"`
}

// SchemaVersion is the current snapshot format version.
const SchemaVersion = 1

// FormatTimestamp renders t at second precision, matching the
// normalizer's on-disk granularity.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format("2006-01-02T15:04:05Z")
}

// ParseTimestamp parses a timestamp written by FormatTimestamp. An
// empty string parses to the zero time.
func ParseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02T15:04:05Z", s)
}
