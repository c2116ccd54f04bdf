package vkdb

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ravensync/vaultkeep/internal/vault"
)

// Save replaces the entire vault stored in conn with db's current
// state. It runs inside a single transaction: either the whole tree is
// rewritten or nothing changes.
func Save(conn *DB, db *vault.Database) error {
	tx, err := conn.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := truncateAll(tx); err != nil {
		return err
	}

	if db.RootGroup != nil {
		order := 0
		if err := saveGroup(tx, db.RootGroup, &order); err != nil {
			return err
		}
	}

	if err := saveMeta(tx, db); err != nil {
		return err
	}

	if err := saveCustomIcons(tx, db); err != nil {
		return err
	}

	if err := saveCustomData(tx, db); err != nil {
		return err
	}

	if err := saveDeletedObjects(tx, db); err != nil {
		return err
	}

	return tx.Commit()
}

func truncateAll(tx *sql.Tx) error {
	tables := []string{
		"entry_history", "entries", "groups",
		"custom_icons", "custom_data", "deleted_objects", "vault_meta",
	}
	for _, t := range tables {
		if _, err := tx.Exec("DELETE FROM " + t); err != nil {
			return fmt.Errorf("truncate %s: %w", t, err)
		}
	}
	return nil
}

func saveGroup(tx *sql.Tx, g *vault.Group, order *int) error {
	var parentUUID any
	if g.Parent() != nil {
		parentUUID = g.Parent().UUID.String()
	}
	var iconUUID any
	if g.IconUUID != vault.NilUUID {
		iconUUID = g.IconUUID.String()
	}
	var expiryTime any
	if g.TimeInfo.ExpiryEnabled {
		expiryTime = formatTimestamp(g.TimeInfo.ExpiryTime)
	}

	_, err := tx.Exec(`
		INSERT INTO groups (
			uuid, parent_uuid, sort_order, name, notes, icon_id, icon_uuid, merge_mode,
			created_at, last_modified_at, last_accessed_at, location_changed_at,
			expiry_enabled, expiry_time
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		g.UUID.String(), parentUUID, *order, g.Name, g.Notes, g.IconID, iconUUID, int(g.MergeMode),
		formatTimestamp(g.TimeInfo.Created), formatTimestamp(g.TimeInfo.LastModified),
		formatTimestamp(g.TimeInfo.LastAccessed), formatTimestamp(g.TimeInfo.LocationChanged),
		boolToInt(g.TimeInfo.ExpiryEnabled), expiryTime,
	)
	if err != nil {
		return fmt.Errorf("insert group %s: %w", g.UUID, err)
	}
	*order++

	entryOrder := 0
	for _, e := range g.Entries {
		if err := saveEntry(tx, g.UUID, e, &entryOrder); err != nil {
			return err
		}
	}
	for _, c := range g.Children {
		if err := saveGroup(tx, c, order); err != nil {
			return err
		}
	}
	return nil
}

func saveEntry(tx *sql.Tx, groupUUID vault.UUID, e *vault.Entry, order *int) error {
	fieldsJSON, err := json.Marshal(e.Fields)
	if err != nil {
		return fmt.Errorf("marshal fields for entry %s: %w", e.UUID, err)
	}

	var expiryTime any
	if e.TimeInfo.ExpiryEnabled {
		expiryTime = formatTimestamp(e.TimeInfo.ExpiryTime)
	}

	_, err = tx.Exec(`
		INSERT INTO entries (
			uuid, group_uuid, sort_order, title, fields,
			created_at, last_modified_at, last_accessed_at, location_changed_at,
			expiry_enabled, expiry_time
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.UUID.String(), groupUUID.String(), *order, e.Title, string(fieldsJSON),
		formatTimestamp(e.TimeInfo.Created), formatTimestamp(e.TimeInfo.LastModified),
		formatTimestamp(e.TimeInfo.LastAccessed), formatTimestamp(e.TimeInfo.LocationChanged),
		boolToInt(e.TimeInfo.ExpiryEnabled), expiryTime,
	)
	if err != nil {
		return fmt.Errorf("insert entry %s: %w", e.UUID, err)
	}
	*order++

	for seq, h := range e.HistoryItems() {
		if err := saveHistoryItem(tx, e.UUID, seq, h); err != nil {
			return err
		}
	}
	return nil
}

func saveHistoryItem(tx *sql.Tx, entryUUID vault.UUID, seq int, h *vault.Entry) error {
	fieldsJSON, err := json.Marshal(h.Fields)
	if err != nil {
		return fmt.Errorf("marshal fields for history item of %s: %w", entryUUID, err)
	}

	var expiryTime any
	if h.TimeInfo.ExpiryEnabled {
		expiryTime = formatTimestamp(h.TimeInfo.ExpiryTime)
	}

	_, err = tx.Exec(`
		INSERT INTO entry_history (
			entry_uuid, seq, title, fields,
			created_at, last_modified_at, last_accessed_at, location_changed_at,
			expiry_enabled, expiry_time
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		entryUUID.String(), seq, h.Title, string(fieldsJSON),
		formatTimestamp(h.TimeInfo.Created), formatTimestamp(h.TimeInfo.LastModified),
		formatTimestamp(h.TimeInfo.LastAccessed), formatTimestamp(h.TimeInfo.LocationChanged),
		boolToInt(h.TimeInfo.ExpiryEnabled), expiryTime,
	)
	if err != nil {
		return fmt.Errorf("insert history item %d of %s: %w", seq, entryUUID, err)
	}
	return nil
}

func saveMeta(tx *sql.Tx, db *vault.Database) error {
	meta := map[string]string{
		"root_group_uuid":   rootUUID(db),
		"history_max_items": fmt.Sprintf("%d", db.Metadata().HistoryMaxItems),
	}
	if lm := db.Metadata().CustomData.LastModified(); !lm.IsZero() {
		meta["custom_data_modified_at"] = formatTimestamp(lm)
	}
	for k, v := range meta {
		if _, err := tx.Exec("INSERT INTO vault_meta (key, value) VALUES (?, ?)", k, v); err != nil {
			return fmt.Errorf("insert vault_meta %s: %w", k, err)
		}
	}
	return nil
}

func rootUUID(db *vault.Database) string {
	if db.RootGroup == nil {
		return ""
	}
	return db.RootGroup.UUID.String()
}

func saveCustomIcons(tx *sql.Tx, db *vault.Database) error {
	for i, id := range db.Metadata().CustomIconsOrder() {
		_, err := tx.Exec("INSERT INTO custom_icons (uuid, sort_order, data) VALUES (?, ?, ?)",
			id.String(), i, db.Metadata().CustomIcon(id))
		if err != nil {
			return fmt.Errorf("insert custom icon %s: %w", id, err)
		}
	}
	return nil
}

func saveCustomData(tx *sql.Tx, db *vault.Database) error {
	cd := db.Metadata().CustomData
	for i, key := range cd.Keys() {
		_, err := tx.Exec("INSERT INTO custom_data (key, sort_order, value, protected) VALUES (?, ?, ?, ?)",
			key, i, cd.Value(key), boolToInt(cd.IsProtected(key)))
		if err != nil {
			return fmt.Errorf("insert custom data %s: %w", key, err)
		}
	}
	return nil
}

func saveDeletedObjects(tx *sql.Tx, db *vault.Database) error {
	for _, obj := range db.DeletedObjects() {
		_, err := tx.Exec("INSERT INTO deleted_objects (uuid, deletion_time) VALUES (?, ?)",
			obj.UUID.String(), formatTimestamp(obj.DeletionTime))
		if err != nil {
			return fmt.Errorf("insert deleted object %s: %w", obj.UUID, err)
		}
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
