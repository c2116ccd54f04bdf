package vksnap

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/ravensync/vaultkeep/internal/vault"
)

func at(seconds int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, seconds, 0, time.UTC)
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

func TestBuildLoadRoundTrip(t *testing.T) {
	db := sampleDatabase()

	snap := Build(db)
	loaded, err := Load(snap)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want, err := CanonicalJSON(snap)
	if err != nil {
		t.Fatalf("CanonicalJSON(snap) error = %v", err)
	}
	got, err := CanonicalJSON(Build(loaded))
	if err != nil {
		t.Fatalf("CanonicalJSON(Build(loaded)) error = %v", err)
	}
	if string(want) != string(got) {
		t.Errorf("round-trip mismatch:\nwant %s\ngot  %s", want, got)
	}
}

func TestCanonicalJSONDeterministic(t *testing.T) {
	db := sampleDatabase()
	snap := Build(db)

	a, err := CanonicalJSON(snap)
	if err != nil {
		t.Fatalf("CanonicalJSON() error = %v", err)
	}
	b, err := CanonicalJSON(snap)
	if err != nil {
		t.Fatalf("CanonicalJSON() error = %v", err)
	}
	if string(a) != string(b) {
		t.Error("CanonicalJSON() is not deterministic across repeated calls")
	}
}

func TestCanonicalJSONOrdersGroupsByUUID(t *testing.T) {
	db := vault.NewDatabase()
	db.RootGroup.Name = "Root"

	names := []string{"zed", "alpha", "mid"}
	for _, n := range names {
		g := vault.NewGroup()
		g.Name = n
		db.RootGroup.AddChildLink(g)
	}

	snap := Build(db)
	data, err := CanonicalJSON(snap)
	if err != nil {
		t.Fatalf("CanonicalJSON() error = %v", err)
	}

	var ids []string
	for id := range snap.Groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	// Find the byte offset of each group UUID key in the rendered JSON
	// and confirm they appear in ascending order.
	var offsets []int
	for _, id := range ids {
		// Match the group's own key ("<uuid>":{...}), not an occurrence
		// of the same UUID as some other group's parent_uuid value.
		idx := indexOf(string(data), `"`+id+`":{`)
		if idx < 0 {
			t.Fatalf("group %s not found as an object key in canonical output", id)
		}
		offsets = append(offsets, idx)
	}
	for i := 1; i < len(offsets); i++ {
		if offsets[i] < offsets[i-1] {
			t.Errorf("group keys not sorted: offsets=%v", offsets)
		}
	}
}

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}

func TestComputeSnapshotRevStable(t *testing.T) {
	data := []byte(`{"a":1}`)
	rev1 := ComputeSnapshotRev(data)
	rev2 := ComputeSnapshotRev(data)
	if rev1 != rev2 {
		t.Errorf("ComputeSnapshotRev() not stable: %s vs %s", rev1, rev2)
	}
	if rev1[:7] != "sha256:" {
		t.Errorf("ComputeSnapshotRev() = %s, want sha256: prefix", rev1)
	}
}

func TestExportImportFileRoundTrip(t *testing.T) {
	db := sampleDatabase()
	dir := t.TempDir()
	path := filepath.Join(dir, "vault.snapshot.json")

	result, err := Export(db, ExportOptions{OutputPath: path, Canonical: true})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if result.SnapshotRev == "" {
		t.Error("Export() result has empty SnapshotRev")
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("snapshot file not written: %v", err)
	}

	loaded, importResult, err := Import(path)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if importResult.EntryCount != len(Build(db).Entries) {
		t.Errorf("ImportResult.EntryCount = %d, want %d", importResult.EntryCount, len(Build(db).Entries))
	}

	verify, err := Verify(loaded, path)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !verify.Match {
		t.Errorf("Verify() reported mismatch: %s", verify.FirstMismatch)
	}
}

func TestVerifyDetectsDrift(t *testing.T) {
	db := sampleDatabase()
	dir := t.TempDir()
	path := filepath.Join(dir, "vault.snapshot.json")

	if _, err := Export(db, ExportOptions{OutputPath: path, Canonical: true}); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	db.RootGroup.Children[0].Name = "Renamed"

	verify, err := Verify(db, path)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if verify.Match {
		t.Error("Verify() reported a match after a field changed, want drift detected")
	}
}

func TestCustomDataProtectedKeySurvivesRoundTrip(t *testing.T) {
	db := sampleDatabase()
	snap := Build(db)

	loaded, err := Load(snap)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !loaded.MetadataBlock.CustomData.IsProtected("secret-key") {
		t.Error("protected custom data key lost its protected flag across round-trip")
	}
	if loaded.MetadataBlock.CustomData.Value("secret-key") != "shh" {
		t.Errorf("secret-key value = %q, want %q", loaded.MetadataBlock.CustomData.Value("secret-key"), "shh")
	}
}

func TestCustomDataLastModifiedSurvivesRoundTrip(t *testing.T) {
	db := sampleDatabase()
	want := db.MetadataBlock.CustomData.LastModified()

	snap := Build(db)
	loaded, err := Load(snap)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	got := loaded.MetadataBlock.CustomData.LastModified()
	if FormatTimestamp(got) != FormatTimestamp(want) {
		t.Errorf("CustomData.LastModified() = %v, want %v", got, want)
	}
}

func TestHistoryOrderPreserved(t *testing.T) {
	db := sampleDatabase()
	snap := Build(db)

	var entryID string
	for id, e := range snap.Entries {
		if e.Title == "Example" {
			entryID = id
		}
	}
	if entryID == "" {
		t.Fatal("expected entry not found in snapshot")
	}
	if len(snap.Entries[entryID].History) != 1 {
		t.Fatalf("history length = %d, want 1", len(snap.Entries[entryID].History))
	}
	if snap.Entries[entryID].History[0].Title != "Example (old)" {
		t.Errorf("history[0].Title = %q, want %q", snap.Entries[entryID].History[0].Title, "Example (old)")
	}
}

func TestLoadRejectsUnknownParent(t *testing.T) {
	snap := &Snapshot{
		Meta: Meta{SchemaVersion: SchemaVersion, RootGroupUUID: vault.NewUUID().String()},
		Groups: map[string]Group{
			vault.NewUUID().String(): {Name: "Orphan", ParentUUID: vault.NewUUID().String()},
		},
	}
	if _, err := Load(snap); err == nil {
		t.Error("Load() with a dangling parent reference did not return an error")
	}
}

func TestLoadSnapshotRejectsWrongSchemaVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte(`{"meta":{"schema_version":99,"root_group_uuid":"x","history_max_items":10}}`), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, _, err := LoadSnapshot(path); err == nil {
		t.Error("LoadSnapshot() with mismatched schema version did not return an error")
	}
}
