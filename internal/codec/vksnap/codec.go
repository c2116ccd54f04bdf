package vksnap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ravensync/vaultkeep/internal/vault"
)

// DefaultOutputPath is used by Export when opts.OutputPath is empty.
const DefaultOutputPath = "vault.snapshot.json"

// ExportOptions controls how Export renders a snapshot to disk.
type ExportOptions struct {
	OutputPath string
	Canonical  bool
}

// ExportResult summarizes a completed export.
type ExportResult struct {
	OutputPath  string
	SnapshotRev string
	GroupCount  int
	EntryCount  int
}

// Export writes a canonical (or pretty) snapshot of db to opts.OutputPath.
func Export(db *vault.Database, opts ExportOptions) (*ExportResult, error) {
	if opts.OutputPath == "" {
		opts.OutputPath = DefaultOutputPath
	}

	snap, data, err := ExportToSnapshot(db, opts)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(opts.OutputPath), 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot directory: %w", err)
	}
	if err := os.WriteFile(opts.OutputPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("write snapshot: %w", err)
	}

	return &ExportResult{
		OutputPath:  opts.OutputPath,
		SnapshotRev: snap.Meta.SnapshotRev,
		GroupCount:  len(snap.Groups),
		EntryCount:  len(snap.Entries),
	}, nil
}

// ExportToSnapshot builds a Snapshot from db and renders it, stamping
// SnapshotRev and GeneratedAt, without touching the filesystem.
func ExportToSnapshot(db *vault.Database, opts ExportOptions) (*Snapshot, []byte, error) {
	snap := Build(db)
	snap.Meta.GeneratedAt = FormatTimestamp(time.Now())

	render := func() ([]byte, error) {
		if opts.Canonical {
			return CanonicalJSON(snap)
		}
		return PrettyJSON(snap)
	}

	data, err := render()
	if err != nil {
		return nil, nil, fmt.Errorf("render snapshot: %w", err)
	}
	snap.Meta.SnapshotRev = ComputeSnapshotRev(data)

	data, err = render()
	if err != nil {
		return nil, nil, fmt.Errorf("re-render snapshot with rev: %w", err)
	}

	return snap, data, nil
}

// ImportResult summarizes a completed import.
type ImportResult struct {
	InputPath  string
	GroupCount int
	EntryCount int
}

// Import reads a snapshot file and rebuilds a *vault.Database from it.
func Import(path string) (*vault.Database, *ImportResult, error) {
	snap, _, err := LoadSnapshot(path)
	if err != nil {
		return nil, nil, err
	}

	db, err := Load(snap)
	if err != nil {
		return nil, nil, fmt.Errorf("rebuild database from %s: %w", path, err)
	}

	return db, &ImportResult{
		InputPath:  path,
		GroupCount: len(snap.Groups),
		EntryCount: len(snap.Entries),
	}, nil
}

// LoadSnapshot reads and decodes a snapshot file, returning both the
// parsed Snapshot and its raw bytes.
func LoadSnapshot(path string) (*Snapshot, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, nil, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	if snap.Meta.SchemaVersion != SchemaVersion {
		return nil, nil, fmt.Errorf("snapshot %s has schema version %d, want %d", path, snap.Meta.SchemaVersion, SchemaVersion)
	}

	return &snap, data, nil
}

// VerifyResult reports the outcome of Verify.
type VerifyResult struct {
	Match         bool
	SnapshotRev   string
	FirstMismatch string
}

// Verify re-exports db and checks that it produces byte-identical
// canonical JSON to the snapshot at inputPath, ignoring the volatile
// GeneratedAt/SnapshotRev fields on both sides.
func Verify(db *vault.Database, inputPath string) (*VerifyResult, error) {
	onDisk, _, err := LoadSnapshot(inputPath)
	if err != nil {
		return nil, err
	}

	current := Build(db)

	onDisk.Meta.GeneratedAt = ""
	onDisk.Meta.SnapshotRev = ""
	current.Meta.GeneratedAt = ""
	current.Meta.SnapshotRev = ""

	wantBytes, err := CanonicalJSON(onDisk)
	if err != nil {
		return nil, fmt.Errorf("canonicalize on-disk snapshot: %w", err)
	}
	gotBytes, err := CanonicalJSON(current)
	if err != nil {
		return nil, fmt.Errorf("canonicalize current state: %w", err)
	}
	currentRev := ComputeSnapshotRev(gotBytes)

	if bytes.Equal(wantBytes, gotBytes) {
		return &VerifyResult{Match: true, SnapshotRev: currentRev}, nil
	}
	return &VerifyResult{
		Match:         false,
		SnapshotRev:   currentRev,
		FirstMismatch: findFirstDiff(string(wantBytes), string(gotBytes)),
	}, nil
}

// findFirstDiff returns a short window around the first differing byte
// of a and b, for diagnostics.
func findFirstDiff(a, b string) string {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			start := i - 20
			if start < 0 {
				start = 0
			}
			end := i + 20
			if end > n {
				end = n
			}
			return fmt.Sprintf("byte %d: want %q, got %q", i, a[start:end], b[start:end])
		}
	}
	if len(a) != len(b) {
		return fmt.Sprintf("length differs: want %d bytes, got %d bytes", len(a), len(b))
	}
	return ""
}
