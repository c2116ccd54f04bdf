package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ravensync/vaultkeep/internal/codec/vkdb"
	"github.com/ravensync/vaultkeep/internal/vault"
)

func seedReadDB(t *testing.T) (dbPath string, entryUUID string) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath = filepath.Join(tmpDir, "vault.db")

	db := vault.NewDatabase()
	work := vault.NewGroup()
	work.Name = "Work"
	db.RootGroup.AddChildLink(work)

	e := vault.NewEntry()
	e.Title = "Gmail"
	e.Fields = map[string]string{"username": "alice"}
	work.AddEntryLink(e)
	entryUUID = e.UUID.String()

	conn, err := vkdb.Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer conn.Close()
	if _, err := conn.Migrate(); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if err := vkdb.Save(conn, db); err != nil {
		t.Fatalf("Save: %v", err)
	}
	return dbPath, entryUUID
}

func execRoot(t *testing.T, args []string) string {
	t.Helper()
	rootCmd.SetArgs(args)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("vkeep %v failed: %v\noutput: %s", args, err, out.String())
	}
	return out.String()
}

func TestLsListsRootChildren(t *testing.T) {
	dbPath, _ := seedReadDB(t)
	os.Setenv("VKEEP_DB_PATH", dbPath)
	defer os.Unsetenv("VKEEP_DB_PATH")

	out := execRoot(t, []string{"ls"})
	if !strings.Contains(out, "Work/") {
		t.Errorf("ls output = %q, want it to contain %q", out, "Work/")
	}
}

func TestFindMatchesCaseInsensitively(t *testing.T) {
	dbPath, _ := seedReadDB(t)
	os.Setenv("VKEEP_DB_PATH", dbPath)
	defer os.Unsetenv("VKEEP_DB_PATH")

	out := execRoot(t, []string{"find", "gmail"})
	if !strings.Contains(out, "Gmail") {
		t.Errorf("find output = %q, want it to contain %q", out, "Gmail")
	}
}

func TestCatPrintsFields(t *testing.T) {
	dbPath, entryUUID := seedReadDB(t)
	os.Setenv("VKEEP_DB_PATH", dbPath)
	defer os.Unsetenv("VKEEP_DB_PATH")

	out := execRoot(t, []string{"cat", entryUUID})
	if !strings.Contains(out, "username: alice") {
		t.Errorf("cat output = %q, want it to contain field username=alice", out)
	}
}

func TestStatReportsEntryKind(t *testing.T) {
	dbPath, entryUUID := seedReadDB(t)
	os.Setenv("VKEEP_DB_PATH", dbPath)
	defer os.Unsetenv("VKEEP_DB_PATH")

	out := execRoot(t, []string{"stat", entryUUID})
	if !strings.Contains(out, "(entry)") {
		t.Errorf("stat output = %q, want it to identify the uuid as an entry", out)
	}
}

func TestDoctorReportsNoProblemsOnFreshVault(t *testing.T) {
	dbPath, _ := seedReadDB(t)
	os.Setenv("VKEEP_DB_PATH", dbPath)
	defer os.Unsetenv("VKEEP_DB_PATH")

	out := execRoot(t, []string{"doctor"})
	if !strings.Contains(out, "OK   no duplicate UUIDs") {
		t.Errorf("doctor output = %q, want it to report no duplicate UUIDs", out)
	}
}
