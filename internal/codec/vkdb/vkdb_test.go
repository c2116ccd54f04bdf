package vkdb

import (
	"testing"
	"time"

	"github.com/ravensync/vaultkeep/internal/vault"
)

func at(seconds int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, seconds, 0, time.UTC)
}

func openTestDB(t *testing.T) *DB {
	t.Helper()
	conn, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if _, err := conn.Migrate(); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return conn
}

func sampleDatabase() *vault.Database {
	db := vault.NewDatabase()
	db.RootGroup.SetUpdateTimeinfo(false)
	db.RootGroup.Name = "Root"
	db.RootGroup.TimeInfo = vault.TimeInfo{Created: at(1), LastModified: at(1), LastAccessed: at(1), LocationChanged: at(1)}
	db.RootGroup.SetUpdateTimeinfo(true)

	folder := vault.NewGroup()
	folder.SetUpdateTimeinfo(false)
	folder.Name = "Folder"
	folder.TimeInfo = vault.TimeInfo{Created: at(2), LastModified: at(2), LastAccessed: at(2), LocationChanged: at(2)}
	folder.SetUpdateTimeinfo(true)
	db.RootGroup.AddChildLink(folder)

	e := vault.NewEntry()
	e.SetUpdateTimeinfo(false)
	e.Title = "Example"
	e.Fields = map[string]string{"Username": "alice", "Password": "secret"}
	e.TimeInfo = vault.TimeInfo{Created: at(3), LastModified: at(3), LastAccessed: at(3), LocationChanged: at(3)}
	old := vault.NewEntry()
	old.SetUpdateTimeinfo(false)
	old.Title = "Example (old)"
	old.Fields = map[string]string{"Username": "alice"}
	old.TimeInfo = vault.TimeInfo{Created: at(3), LastModified: at(2), LastAccessed: at(2), LocationChanged: at(2)}
	e.AddHistoryItem(old)
	e.SetUpdateTimeinfo(true)
	folder.AddEntryLink(e)

	db.MetadataBlock.AddCustomIcon(vault.NewUUID(), []byte{0xde, 0xad, 0xbe, 0xef})
	db.MetadataBlock.CustomData.Set("theme", "dark")
	db.MetadataBlock.CustomData.Set("secret-key", "shh")
	db.MetadataBlock.CustomData.SetProtected("secret-key", true)

	db.SetDeletedObjects([]vault.DeletedObject{{UUID: vault.NewUUID(), DeletionTime: at(9)}})

	return db
}

func TestMigrateIsIdempotent(t *testing.T) {
	conn := openTestDB(t)

	applied, err := conn.Migrate()
	if err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
	if len(applied) != 0 {
		t.Errorf("second Migrate() applied %v, want none", applied)
	}
}

func TestMigrationStatus(t *testing.T) {
	conn := openTestDB(t)

	applied, pending, err := conn.MigrationStatus()
	if err != nil {
		t.Fatalf("MigrationStatus() error = %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending = %v, want none after migrating", pending)
	}
	if len(applied) == 0 {
		t.Error("applied = [], want at least one migration recorded")
	}

	if err := conn.RequiresMigrationError(); err != nil {
		t.Errorf("RequiresMigrationError() = %v, want nil", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	conn := openTestDB(t)
	db := sampleDatabase()

	if err := Save(conn, db); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(conn)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if loaded.RootGroup.Name != "Root" {
		t.Errorf("RootGroup.Name = %q, want %q", loaded.RootGroup.Name, "Root")
	}
	if len(loaded.RootGroup.Children) != 1 || loaded.RootGroup.Children[0].Name != "Folder" {
		t.Fatalf("expected one child group named Folder, got %+v", loaded.RootGroup.Children)
	}

	folder := loaded.RootGroup.Children[0]
	if len(folder.Entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(folder.Entries))
	}

	entry := folder.Entries[0]
	if entry.Title != "Example" {
		t.Errorf("entry.Title = %q, want %q", entry.Title, "Example")
	}
	if entry.Fields["Username"] != "alice" || entry.Fields["Password"] != "secret" {
		t.Errorf("entry.Fields = %+v, unexpected", entry.Fields)
	}
	if len(entry.History) != 1 || entry.History[0].Title != "Example (old)" {
		t.Fatalf("expected one history item titled 'Example (old)', got %+v", entry.History)
	}
	if !vault.Normalize(entry.TimeInfo.LastModified).Equal(vault.Normalize(at(3))) {
		t.Errorf("entry.TimeInfo.LastModified = %v, want %v", entry.TimeInfo.LastModified, at(3))
	}

	if !loaded.MetadataBlock.CustomData.IsProtected("secret-key") {
		t.Error("secret-key lost its protected flag across round-trip")
	}
	if loaded.MetadataBlock.CustomData.Value("theme") != "dark" {
		t.Errorf("custom data theme = %q, want %q", loaded.MetadataBlock.CustomData.Value("theme"), "dark")
	}
	if len(loaded.MetadataBlock.CustomIconsOrder()) != 1 {
		t.Errorf("custom icon count = %d, want 1", len(loaded.MetadataBlock.CustomIconsOrder()))
	}
	if len(loaded.DeletedObjects()) != 1 {
		t.Errorf("deleted object count = %d, want 1", len(loaded.DeletedObjects()))
	}
}

func TestSaveOverwritesPreviousState(t *testing.T) {
	conn := openTestDB(t)

	if err := Save(conn, sampleDatabase()); err != nil {
		t.Fatalf("first Save() error = %v", err)
	}

	empty := vault.NewDatabase()
	empty.RootGroup.Name = "Fresh"
	if err := Save(conn, empty); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}

	loaded, err := Load(conn)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.RootGroup.Name != "Fresh" {
		t.Errorf("RootGroup.Name = %q, want %q", loaded.RootGroup.Name, "Fresh")
	}
	if len(loaded.RootGroup.Children) != 0 {
		t.Errorf("expected no leftover children from the first save, got %d", len(loaded.RootGroup.Children))
	}
}

func TestSaveRollsBackOnFailure(t *testing.T) {
	conn := openTestDB(t)
	if err := Save(conn, sampleDatabase()); err != nil {
		t.Fatalf("initial Save() error = %v", err)
	}

	// Two entries sharing a UUID violate entries.uuid's primary key,
	// exercising the rollback path.
	broken := vault.NewDatabase()
	broken.RootGroup.Name = "Broken"
	dup := vault.NewUUID()
	e1 := vault.NewEntry()
	e1.UUID = dup
	e1.Title = "A"
	broken.RootGroup.AddEntryLink(e1)
	child := vault.NewGroup()
	broken.RootGroup.AddChildLink(child)
	e2 := vault.NewEntry()
	e2.UUID = dup
	e2.Title = "B"
	child.AddEntryLink(e2)

	err := Save(conn, broken)
	if err == nil {
		t.Fatal("Save() with two entries sharing a UUID did not return an error")
	}

	loaded, loadErr := Load(conn)
	if loadErr != nil {
		t.Fatalf("Load() after failed Save() error = %v", loadErr)
	}
	if loaded.RootGroup.Name != "Root" {
		t.Errorf("RootGroup.Name = %q after failed save, want the pre-existing %q (rollback should have preserved it)", loaded.RootGroup.Name, "Root")
	}
}

func TestLoadRejectsUnknownParent(t *testing.T) {
	conn := openTestDB(t)

	// A dangling parent_uuid cannot occur through Save (the foreign key
	// would reject it); simulate a tampered file by disabling the
	// constraint just for this insert.
	if _, err := conn.Exec("PRAGMA foreign_keys = OFF"); err != nil {
		t.Fatalf("disable foreign_keys: %v", err)
	}
	_, err := conn.Exec(`
		INSERT INTO groups (uuid, parent_uuid, name, notes, icon_id, merge_mode,
			created_at, last_modified_at, last_accessed_at, location_changed_at, expiry_enabled)
		VALUES (?, ?, 'Orphan', '', 0, 0, ?, ?, ?, ?, 0)
	`, vault.NewUUID().String(), vault.NewUUID().String(), formatTimestamp(at(1)), formatTimestamp(at(1)), formatTimestamp(at(1)), formatTimestamp(at(1)))
	if err != nil {
		t.Fatalf("insert orphan group: %v", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("re-enable foreign_keys: %v", err)
	}

	if _, err := Load(conn); err == nil {
		t.Error("Load() with a dangling parent_uuid did not return an error")
	}
}
