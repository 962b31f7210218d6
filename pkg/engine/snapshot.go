package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// SnapshotVersion is the on-disk format version
const SnapshotVersion = 1

// Snapshot is the persisted form of a session's findings
type Snapshot struct {
	Version  int       `json:"version" msgpack:"version"`
	Findings []Finding `json:"findings" msgpack:"findings"`
}

// SnapshotDiff is the result of comparing a session against a baseline
type SnapshotDiff struct {
	New       []Finding `json:"new"`
	Resolved  []Finding `json:"resolved"`
	Unchanged []Finding `json:"unchanged"`
}

// binary reports whether the path selects MessagePack encoding
func binary(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".msgpack", ".mp":
		return true
	}
	return false
}

// SaveSnapshot writes the session's findings to path.
// Files ending in .msgpack or .mp are MessagePack, anything else is JSON.
func (s *Session) SaveSnapshot(path string) error {
	snap := Snapshot{Version: SnapshotVersion, Findings: s.Findings()}

	var (
		data []byte
		err  error
	)
	if binary(path) {
		data, err = msgpack.Marshal(&snap)
	} else {
		data, err = json.MarshalIndent(snap, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// LoadSnapshot appends the findings stored at path to the session
func (s *Session) LoadSnapshot(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var snap Snapshot
	if binary(path) {
		err = msgpack.Unmarshal(data, &snap)
	} else {
		err = json.Unmarshal(data, &snap)
	}
	if err != nil {
		return fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	if snap.Version > SnapshotVersion {
		return fmt.Errorf("snapshot %s has unsupported version %d", path, snap.Version)
	}
	for i, f := range snap.Findings {
		sev, err := ParseSeverity(string(f.Severity))
		if err != nil {
			return fmt.Errorf("snapshot %s finding %d: %w", path, i, err)
		}
		snap.Findings[i].Severity = sev
	}

	s.record(snap.Findings)
	return nil
}

// CompareSnapshot diffs this session against a baseline session.
// Findings are matched on severity and message, counting duplicates.
func (s *Session) CompareSnapshot(baseline *Session) SnapshotDiff {
	remaining := make(map[Finding]int)
	for _, f := range baseline.Findings() {
		remaining[f]++
	}

	diff := SnapshotDiff{
		New:       make([]Finding, 0),
		Resolved:  make([]Finding, 0),
		Unchanged: make([]Finding, 0),
	}
	for _, f := range s.Findings() {
		if remaining[f] > 0 {
			remaining[f]--
			diff.Unchanged = append(diff.Unchanged, f)
		} else {
			diff.New = append(diff.New, f)
		}
	}

	// walk the baseline again so resolved findings keep baseline order
	for _, f := range baseline.Findings() {
		if remaining[f] > 0 {
			remaining[f]--
			diff.Resolved = append(diff.Resolved, f)
		}
	}
	return diff
}
