package merge

import (
	"testing"
	"time"

	"github.com/ravensync/vaultkeep/internal/vault"
)

func at(seconds int) time.Time {
	return time.Date(2026, 1, 1, 0, 0, seconds, 0, time.UTC)
}

func entryAt(title string, mod int) *vault.Entry {
	e := vault.NewEntry()
	e.Title = title
	e.TimeInfo = vault.TimeInfo{
		Created:         at(mod),
		LastModified:    at(mod),
		LastAccessed:    at(mod),
		LocationChanged: at(mod),
	}
	return e
}

func groupAt(name string, mod int) *vault.Group {
	g := vault.NewGroup()
	g.Name = name
	g.TimeInfo = vault.TimeInfo{
		Created:         at(mod),
		LastModified:    at(mod),
		LastAccessed:    at(mod),
		LocationChanged: at(mod),
	}
	return g
}

func newPair() (source, target *vault.Database) {
	return vault.NewDatabase(), vault.NewDatabase()
}

// S1 Create-missing.
func TestScenarioCreateMissing(t *testing.T) {
	source, target := newPair()
	e := entryAt("Gmail", 10)
	source.RootGroup.AddEntryLink(e)

	changes := New(source, target).Merge()

	got := target.FindEntryByUUID(e.UUID)
	if got == nil {
		t.Fatal("Added entry is missing from target after merge")
	}
	if got.Title != "Gmail" {
		t.Errorf("got.Title = %q, want %q", got.Title, "Gmail")
	}
	if len(changes) != 1 || changes[0].Type != Added || changes[0].UUID != e.UUID {
		t.Errorf("changes = %+v, want a single Added change for %s", changes, e.UUID)
	}
}

// S2 Newer source overwrites.
func TestScenarioNewerSourceOverwrites(t *testing.T) {
	source, target := newPair()

	id := vault.NewUUID()
	targetEntry := entryAt("Old", 5)
	targetEntry.UUID = id
	target.RootGroup.AddEntryLink(targetEntry)

	sourceEntry := entryAt("New", 10)
	sourceEntry.UUID = id
	source.RootGroup.AddEntryLink(sourceEntry)

	changes := New(source, target).Merge()

	got := target.FindEntryByUUID(id)
	if got == nil {
		t.Fatal("entry disappeared from target")
	}
	if got.Title != "New" {
		t.Errorf("got.Title = %q, want %q", got.Title, "New")
	}

	foundOldInHistory := false
	for _, h := range got.History {
		if h.Title == "Old" {
			foundOldInHistory = true
		}
	}
	if !foundOldInHistory {
		t.Error("target entry's history does not contain the old revision")
	}

	foundChange := false
	for _, c := range changes {
		if c.Type == Modified && c.Details == "Synchronizing from newer source" {
			foundChange = true
		}
	}
	if !foundChange {
		t.Errorf("changes = %+v, want a Modified/Synchronizing-from-newer-source entry", changes)
	}
}

// S3 Older source preserved as history.
func TestScenarioOlderSourcePreservedAsHistory(t *testing.T) {
	source, target := newPair()

	id := vault.NewUUID()
	targetEntry := entryAt("New", 10)
	targetEntry.UUID = id
	target.RootGroup.AddEntryLink(targetEntry)

	sourceEntry := entryAt("Old", 5)
	sourceEntry.UUID = id
	source.RootGroup.AddEntryLink(sourceEntry)

	changes := New(source, target).Merge()

	got := target.FindEntryByUUID(id)
	if got.Title != "New" {
		t.Errorf("got.Title = %q, want %q", got.Title, "New")
	}

	foundOldInHistory := false
	for _, h := range got.History {
		if h.Title == "Old" {
			foundOldInHistory = true
		}
	}
	if !foundOldInHistory {
		t.Error("target entry's history does not contain the older source revision")
	}

	foundChange := false
	for _, c := range changes {
		if c.Type == Modified && c.Details == "Synchronizing from older source" {
			foundChange = true
		}
	}
	if !foundChange {
		t.Errorf("changes = %+v, want a Modified/Synchronizing-from-older-source entry", changes)
	}
}

// S4 Move.
func TestScenarioMove(t *testing.T) {
	source, target := newPair()

	id := vault.NewUUID()

	targetA := groupAt("A", 1)
	target.RootGroup.AddChildLink(targetA)
	targetEntry := entryAt("Item", 1)
	targetEntry.UUID = id
	targetEntry.TimeInfo.LocationChanged = at(5)
	targetA.AddEntryLink(targetEntry)

	sourceA := groupAt("A", 1)
	sourceA.UUID = targetA.UUID
	source.RootGroup.AddChildLink(sourceA)
	sourceB := groupAt("B", 1)
	source.RootGroup.AddChildLink(sourceB)
	sourceEntry := entryAt("Item", 1)
	sourceEntry.UUID = id
	sourceEntry.TimeInfo.LocationChanged = at(10)
	sourceB.AddEntryLink(sourceEntry)

	changes := New(source, target).Merge()

	got := target.FindEntryByUUID(id)
	targetB := target.FindGroupByUUID(sourceB.UUID)
	if got.Group() != targetB {
		t.Error("entry was not relocated into the cloned B group")
	}
	if !got.TimeInfo.LocationChanged.Equal(at(10)) {
		t.Errorf("LocationChanged = %v, want %v", got.TimeInfo.LocationChanged, at(10))
	}

	foundMoved := false
	for _, c := range changes {
		if c.Type == Moved {
			foundMoved = true
		}
	}
	if !foundMoved {
		t.Errorf("changes = %+v, want a Moved entry", changes)
	}
}

// S5 Delete vs edit (Synchronize): edited after remote delete survives.
func TestScenarioDeleteVsEditSurvives(t *testing.T) {
	source, target := newPair()
	target.RootGroup.MergeMode = vault.MergeModeSynchronize

	id := vault.NewUUID()
	targetEntry := entryAt("Item", 20)
	targetEntry.UUID = id
	target.RootGroup.AddEntryLink(targetEntry)

	source.SetDeletedObjects([]vault.DeletedObject{{UUID: id, DeletionTime: at(10)}})

	m := New(source, target)
	m.SetForcedMergeMode(vault.MergeModeSynchronize)
	m.Merge()

	if target.FindEntryByUUID(id) == nil {
		t.Error("entry edited after the remote delete was erased, want survival")
	}
	for _, obj := range target.DeletedObjects() {
		if obj.UUID == id {
			t.Error("tombstone for a surviving entry should have been dropped")
		}
	}
}

// S6 Delete wins.
func TestScenarioDeleteWins(t *testing.T) {
	source, target := newPair()

	id := vault.NewUUID()
	targetEntry := entryAt("Item", 5)
	targetEntry.UUID = id
	target.RootGroup.AddEntryLink(targetEntry)

	source.SetDeletedObjects([]vault.DeletedObject{{UUID: id, DeletionTime: at(10)}})

	m := New(source, target)
	m.SetForcedMergeMode(vault.MergeModeSynchronize)
	changes := m.Merge()

	if target.FindEntryByUUID(id) != nil {
		t.Error("entry should have been erased by the winning tombstone")
	}

	foundTomb := false
	for _, obj := range target.DeletedObjects() {
		if obj.UUID == id && obj.DeletionTime.Equal(at(10)) {
			foundTomb = true
		}
	}
	if !foundTomb {
		t.Error("winning tombstone is missing from target.DeletedObjects()")
	}

	foundDeleted := false
	for _, c := range changes {
		if c.Type == Deleted {
			foundDeleted = true
		}
	}
	if !foundDeleted {
		t.Errorf("changes = %+v, want a Deleted entry", changes)
	}
}

// S7 Icon union.
func TestScenarioIconUnion(t *testing.T) {
	source, target := newPair()

	i1 := vault.NewUUID()
	i2 := vault.NewUUID()
	source.Metadata().AddCustomIcon(i1, []byte("icon1"))
	target.Metadata().AddCustomIcon(i2, []byte("icon2"))

	changes := New(source, target).Merge()

	if !target.Metadata().HasCustomIcon(i1) {
		t.Error("source icon was not unioned into target")
	}
	if !target.Metadata().HasCustomIcon(i2) {
		t.Error("target's own icon was dropped by the merge")
	}

	foundNote := false
	for _, c := range changes {
		if c.Details == "Adding missing icon "+i1.String() {
			foundNote = true
		}
	}
	if !foundNote {
		t.Errorf("changes = %+v, want an 'Adding missing icon' note for %s", changes, i1)
	}
}

// S8 Custom-data newer-wins.
func TestScenarioCustomDataNewerWins(t *testing.T) {
	source, target := newPair()

	target.Metadata().CustomData.Set("k1", "v1")
	target.Metadata().CustomData.Set("k2", "v2")

	source.Metadata().CustomData.Set("k1", "v1-prime")
	source.Metadata().CustomData.Set("k3", "v3")

	New(source, target).Merge()

	cd := target.Metadata().CustomData
	if cd.Value("k1") != "v1-prime" {
		t.Errorf("k1 = %q, want %q", cd.Value("k1"), "v1-prime")
	}
	if cd.Value("k3") != "v3" {
		t.Errorf("k3 = %q, want %q", cd.Value("k3"), "v3")
	}
	if cd.Contains("k2") {
		t.Error("k2 should have been removed (newer source lacks it and it is not protected)")
	}
}

func TestScenarioCustomDataProtectedKeySurvives(t *testing.T) {
	source, target := newPair()

	target.Metadata().CustomData.Set("k1", "v1")
	target.Metadata().CustomData.Set("protected", "keepme")
	target.Metadata().CustomData.SetProtected("protected", true)

	source.Metadata().CustomData.Set("k1", "v1-new")

	New(source, target).Merge()

	cd := target.Metadata().CustomData
	if !cd.Contains("protected") {
		t.Error("protected key was removed despite being absent from source")
	}
}

func TestScenarioCustomDataOlderSourceIgnored(t *testing.T) {
	source, target := newPair()

	target.Metadata().CustomData.Set("k1", "v1")
	time.Sleep(time.Millisecond)
	source.Metadata().CustomData.Set("k1", "older-looking-but-stale")

	// Make source the older side by bumping target's LastModified after
	// source's Set call above.
	target.Metadata().CustomData.Set("k2", "bump-target-newer")

	New(source, target).Merge()

	if target.Metadata().CustomData.Value("k1") != "v1" {
		t.Error("an older source overwrote a newer target's custom data")
	}
}

func TestNewPanicsOnNilDatabase(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("New(nil, target) did not panic")
		}
		if _, ok := r.(*vault.NilDatabaseError); !ok {
			t.Errorf("recovered %T, want *vault.NilDatabaseError", r)
		}
	}()
	New(nil, vault.NewDatabase())
}

func TestNewGroupPanicsOnSameDatabase(t *testing.T) {
	db := vault.NewDatabase()
	child := vault.NewGroup()
	db.RootGroup.AddChildLink(child)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("NewGroup(root, child-of-same-db) did not panic")
		}
		if _, ok := r.(*vault.CrossDatabaseError); !ok {
			t.Errorf("recovered %T, want *vault.CrossDatabaseError", r)
		}
	}()
	NewGroup(db.RootGroup, child)
}
