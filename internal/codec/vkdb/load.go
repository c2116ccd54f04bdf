package vkdb

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/ravensync/vaultkeep/internal/vault"
)

// Load reads the whole vault stored in conn and rebuilds a
// *vault.Database from it.
func Load(conn *DB) (*vault.Database, error) {
	groups, err := loadGroups(conn)
	if err != nil {
		return nil, err
	}

	var root *vault.Group
	for _, row := range groups {
		if row.parentUUID == "" {
			root = row.group
			continue
		}
		parent, ok := groupByID(groups, row.parentUUID)
		if !ok {
			return nil, fmt.Errorf("group %s references unknown parent %s", row.group.UUID, row.parentUUID)
		}
		parent.AddChildLink(row.group)
	}
	if root == nil {
		root = vault.NewGroup()
	}
	db := vault.NewDatabaseWithRoot(root)

	if err := loadEntries(conn, groups); err != nil {
		return nil, err
	}

	if err := loadCustomIcons(conn, db); err != nil {
		return nil, err
	}
	if err := loadCustomData(conn, db); err != nil {
		return nil, err
	}
	if err := loadMeta(conn, db); err != nil {
		return nil, err
	}
	if err := loadDeletedObjects(conn, db); err != nil {
		return nil, err
	}

	return db, nil
}

type groupRow struct {
	group      *vault.Group
	parentUUID string
}

func groupByID(rows []groupRow, id string) (*vault.Group, bool) {
	for _, r := range rows {
		if r.group.UUID.String() == id {
			return r.group, true
		}
	}
	return nil, false
}

func loadGroups(conn *DB) ([]groupRow, error) {
	rows, err := conn.Query(`
		SELECT uuid, parent_uuid, name, notes, icon_id, icon_uuid, merge_mode,
		       created_at, last_modified_at, last_accessed_at, location_changed_at,
		       expiry_enabled, expiry_time
		FROM groups
		ORDER BY sort_order
	`)
	if err != nil {
		return nil, fmt.Errorf("query groups: %w", err)
	}
	defer rows.Close()

	var out []groupRow
	for rows.Next() {
		var id, name, notes string
		var parentUUID, iconUUID sql.NullString
		var iconID, mergeMode int
		var created, lastModified, lastAccessed, locationChanged string
		var expiryEnabled int
		var expiryTime sql.NullString

		if err := rows.Scan(&id, &parentUUID, &name, &notes, &iconID, &iconUUID, &mergeMode,
			&created, &lastModified, &lastAccessed, &locationChanged, &expiryEnabled, &expiryTime); err != nil {
			return nil, fmt.Errorf("scan group row: %w", err)
		}

		gid, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", id, err)
		}

		g := vault.NewGroup()
		g.SetUpdateTimeinfo(false)
		g.UUID = gid
		g.Name = name
		g.Notes = notes
		g.IconID = iconID
		g.MergeMode = vault.MergeMode(mergeMode)
		if iconUUID.Valid && iconUUID.String != "" {
			iid, err := uuid.Parse(iconUUID.String)
			if err != nil {
				return nil, fmt.Errorf("group %s icon_uuid: %w", id, err)
			}
			g.IconUUID = iid
		}

		ti, err := fillTimeInfo(created, lastModified, lastAccessed, locationChanged, expiryEnabled != 0, expiryTime.String)
		if err != nil {
			return nil, fmt.Errorf("group %s: %w", id, err)
		}
		g.TimeInfo = ti
		g.SetUpdateTimeinfo(true)

		out = append(out, groupRow{group: g, parentUUID: parentUUID.String})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate groups: %w", err)
	}
	return out, nil
}

func loadEntries(conn *DB, groups []groupRow) error {
	rows, err := conn.Query(`
		SELECT uuid, group_uuid, title, fields,
		       created_at, last_modified_at, last_accessed_at, location_changed_at,
		       expiry_enabled, expiry_time
		FROM entries
		ORDER BY sort_order
	`)
	if err != nil {
		return fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var loaded []*vault.Entry
	var owners []*vault.Group
	for rows.Next() {
		var id, groupUUID, title, fieldsJSON string
		var created, lastModified, lastAccessed, locationChanged string
		var expiryEnabled int
		var expiryTime sql.NullString

		if err := rows.Scan(&id, &groupUUID, &title, &fieldsJSON,
			&created, &lastModified, &lastAccessed, &locationChanged, &expiryEnabled, &expiryTime); err != nil {
			return fmt.Errorf("scan entry row: %w", err)
		}

		g, ok := groupByID(groups, groupUUID)
		if !ok {
			return fmt.Errorf("entry %s references unknown group %s", id, groupUUID)
		}

		e, err := newEntry(id, title, fieldsJSON, created, lastModified, lastAccessed, locationChanged, expiryEnabled, expiryTime.String)
		if err != nil {
			return err
		}

		loaded = append(loaded, e)
		owners = append(owners, g)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()

	// History is queried only after the entries result set is closed, so
	// no second connection is needed while rows are still open.
	for i, e := range loaded {
		if err := loadHistory(conn, e); err != nil {
			return err
		}

		g := owners[i]
		g.SetUpdateTimeinfo(false)
		g.AddEntryLink(e)
		g.SetUpdateTimeinfo(true)
	}
	return nil
}

func newEntry(id, title, fieldsJSON, created, lastModified, lastAccessed, locationChanged string, expiryEnabled int, expiryTime string) (*vault.Entry, error) {
	eid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("entry %q: %w", id, err)
	}

	var fields map[string]string
	if err := json.Unmarshal([]byte(fieldsJSON), &fields); err != nil {
		return nil, fmt.Errorf("entry %s fields: %w", id, err)
	}

	e := vault.NewEntry()
	e.SetUpdateTimeinfo(false)
	e.UUID = eid
	e.Title = title
	e.Fields = fields

	ti, err := fillTimeInfo(created, lastModified, lastAccessed, locationChanged, expiryEnabled != 0, expiryTime)
	if err != nil {
		return nil, fmt.Errorf("entry %s: %w", id, err)
	}
	e.TimeInfo = ti
	e.SetUpdateTimeinfo(true)
	return e, nil
}

func loadHistory(conn *DB, e *vault.Entry) error {
	rows, err := conn.Query(`
		SELECT title, fields, created_at, last_modified_at, last_accessed_at, location_changed_at,
		       expiry_enabled, expiry_time
		FROM entry_history
		WHERE entry_uuid = ?
		ORDER BY seq
	`, e.UUID.String())
	if err != nil {
		return fmt.Errorf("query history for entry %s: %w", e.UUID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var title, fieldsJSON string
		var created, lastModified, lastAccessed, locationChanged string
		var expiryEnabled int
		var expiryTime sql.NullString

		if err := rows.Scan(&title, &fieldsJSON, &created, &lastModified, &lastAccessed, &locationChanged, &expiryEnabled, &expiryTime); err != nil {
			return fmt.Errorf("scan history row for entry %s: %w", e.UUID, err)
		}

		var fields map[string]string
		if err := json.Unmarshal([]byte(fieldsJSON), &fields); err != nil {
			return fmt.Errorf("history fields for entry %s: %w", e.UUID, err)
		}

		item := vault.NewEntry()
		item.SetUpdateTimeinfo(false)
		item.Title = title
		item.Fields = fields
		ti, err := fillTimeInfo(created, lastModified, lastAccessed, locationChanged, expiryEnabled != 0, expiryTime.String)
		if err != nil {
			return fmt.Errorf("history item for entry %s: %w", e.UUID, err)
		}
		item.TimeInfo = ti

		e.AddHistoryItem(item)
	}
	return rows.Err()
}

func loadMeta(conn *DB, db *vault.Database) error {
	rows, err := conn.Query("SELECT key, value FROM vault_meta")
	if err != nil {
		return fmt.Errorf("query vault_meta: %w", err)
	}
	defer rows.Close()

	meta := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return fmt.Errorf("scan vault_meta row: %w", err)
		}
		meta[k] = v
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate vault_meta: %w", err)
	}

	db.MetadataBlock.HistoryMaxItems = vault.DefaultHistoryMaxItems
	if v, ok := meta["history_max_items"]; ok {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil && n > 0 {
			db.MetadataBlock.HistoryMaxItems = n
		}
	}
	if v, ok := meta["custom_data_modified_at"]; ok && v != "" {
		t, err := parseTimestamp(v)
		if err != nil {
			return fmt.Errorf("custom_data_modified_at: %w", err)
		}
		db.MetadataBlock.CustomData.RestoreLastModified(t)
	}
	return nil
}

func loadCustomIcons(conn *DB, db *vault.Database) error {
	rows, err := conn.Query("SELECT uuid, data FROM custom_icons ORDER BY sort_order")
	if err != nil {
		return fmt.Errorf("query custom_icons: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var data []byte
		if err := rows.Scan(&id, &data); err != nil {
			return fmt.Errorf("scan custom_icons row: %w", err)
		}
		iid, err := uuid.Parse(id)
		if err != nil {
			return fmt.Errorf("custom icon %q: %w", id, err)
		}
		db.MetadataBlock.AddCustomIcon(iid, data)
	}
	return rows.Err()
}

func loadCustomData(conn *DB, db *vault.Database) error {
	rows, err := conn.Query("SELECT key, value, protected FROM custom_data ORDER BY sort_order")
	if err != nil {
		return fmt.Errorf("query custom_data: %w", err)
	}
	defer rows.Close()

	// RestoreLastModified in loadMeta runs after this, so Set()'s own
	// now-stamping here is harmless; it gets overwritten.
	for rows.Next() {
		var key, value string
		var protected int
		if err := rows.Scan(&key, &value, &protected); err != nil {
			return fmt.Errorf("scan custom_data row: %w", err)
		}
		db.MetadataBlock.CustomData.Set(key, value)
		db.MetadataBlock.CustomData.SetProtected(key, protected != 0)
	}
	return rows.Err()
}

func loadDeletedObjects(conn *DB, db *vault.Database) error {
	rows, err := conn.Query("SELECT uuid, deletion_time FROM deleted_objects")
	if err != nil {
		return fmt.Errorf("query deleted_objects: %w", err)
	}
	defer rows.Close()

	var objs []vault.DeletedObject
	for rows.Next() {
		var id, deletionTime string
		if err := rows.Scan(&id, &deletionTime); err != nil {
			return fmt.Errorf("scan deleted_objects row: %w", err)
		}
		did, err := uuid.Parse(id)
		if err != nil {
			return fmt.Errorf("deleted object %q: %w", id, err)
		}
		t, err := parseTimestamp(deletionTime)
		if err != nil {
			return fmt.Errorf("deleted object %s deletion_time: %w", id, err)
		}
		objs = append(objs, vault.DeletedObject{UUID: did, DeletionTime: t})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate deleted_objects: %w", err)
	}
	db.SetDeletedObjects(objs)
	return nil
}

func fillTimeInfo(created, modified, accessed, located string, expiryEnabled bool, expiry string) (vault.TimeInfo, error) {
	var ti vault.TimeInfo
	var err error
	if ti.Created, err = parseTimestamp(created); err != nil {
		return ti, err
	}
	if ti.LastModified, err = parseTimestamp(modified); err != nil {
		return ti, err
	}
	if ti.LastAccessed, err = parseTimestamp(accessed); err != nil {
		return ti, err
	}
	if ti.LocationChanged, err = parseTimestamp(located); err != nil {
		return ti, err
	}
	ti.ExpiryEnabled = expiryEnabled
	if expiryEnabled {
		if ti.ExpiryTime, err = parseTimestamp(expiry); err != nil {
			return ti, err
		}
	}
	return ti, nil
}
