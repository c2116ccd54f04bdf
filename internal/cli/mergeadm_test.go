package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ravensync/vaultkeep/internal/codec/vkdb"
	"github.com/ravensync/vaultkeep/internal/codec/vksnap"
	"github.com/ravensync/vaultkeep/internal/vault"
)

func setupTargetDB(t *testing.T, dbPath string, seed *vault.Database) {
	t.Helper()
	conn, err := vkdb.Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer conn.Close()
	if _, err := conn.Migrate(); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if seed != nil {
		if err := vkdb.Save(conn, seed); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
}

func TestMergeAdmDryRunLeavesTargetUnchanged(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "target.db")

	target := vault.NewDatabase()
	entry := vault.NewEntry()
	entry.Title = "Existing"
	target.RootGroup.AddEntryLink(entry)
	setupTargetDB(t, dbPath, target)

	source := vault.NewDatabase()
	newEntry := vault.NewEntry()
	newEntry.Title = "FromSource"
	source.RootGroup.AddEntryLink(newEntry)

	snapPath := filepath.Join(tmpDir, "source.json")
	if _, err := vksnap.Export(source, vksnap.ExportOptions{OutputPath: snapPath, Canonical: true}); err != nil {
		t.Fatalf("Export: %v", err)
	}

	os.Setenv("VKEEP_DB_PATH", dbPath)
	defer os.Unsetenv("VKEEP_DB_PATH")

	mergeCommit = false
	mergeMode = ""
	rootAdmCmd.SetArgs([]string{"merge", snapPath})
	var out bytes.Buffer
	rootAdmCmd.SetOut(&out)
	rootAdmCmd.SetErr(&out)
	if err := rootAdmCmd.Execute(); err != nil {
		t.Fatalf("merge --dry-run failed: %v\noutput: %s", err, out.String())
	}

	conn, err := vkdb.Open(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer conn.Close()
	got, err := vkdb.Load(conn)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.RootGroup.Entries) != 1 {
		t.Errorf("dry-run merge modified the persisted target: got %d entries, want 1", len(got.RootGroup.Entries))
	}
}

func TestMergeAdmCommitPersistsResult(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "target.db")
	setupTargetDB(t, dbPath, vault.NewDatabase())

	source := vault.NewDatabase()
	newEntry := vault.NewEntry()
	newEntry.Title = "FromSource"
	source.RootGroup.AddEntryLink(newEntry)

	snapPath := filepath.Join(tmpDir, "source.json")
	if _, err := vksnap.Export(source, vksnap.ExportOptions{OutputPath: snapPath, Canonical: true}); err != nil {
		t.Fatalf("Export: %v", err)
	}

	os.Setenv("VKEEP_DB_PATH", dbPath)
	defer os.Unsetenv("VKEEP_DB_PATH")

	mergeCommit = true
	mergeMode = ""
	defer func() { mergeCommit = false }()

	rootAdmCmd.SetArgs([]string{"merge", "--commit", snapPath})
	var out bytes.Buffer
	rootAdmCmd.SetOut(&out)
	rootAdmCmd.SetErr(&out)
	if err := rootAdmCmd.Execute(); err != nil {
		t.Fatalf("merge --commit failed: %v\noutput: %s", err, out.String())
	}

	conn, err := vkdb.Open(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer conn.Close()
	got, err := vkdb.Load(conn)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.RootGroup.Entries) != 1 || got.RootGroup.Entries[0].Title != "FromSource" {
		t.Errorf("committed merge did not persist the source entry: %+v", got.RootGroup.Entries)
	}
}
