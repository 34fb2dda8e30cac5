package main

import (
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/rexliu/navtree/pkg/ipc"
)

const snapshotFile = "snapshot.json"

// writeSnapshot replaces snapshot.json atomically.
func writeSnapshot(profileDir string, snap ipc.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(profileDir, snapshotFile)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func readSnapshot(profileDir string) (ipc.Snapshot, error) {
	var snap ipc.Snapshot
	data, err := os.ReadFile(filepath.Join(profileDir, snapshotFile))
	if err != nil {
		return snap, err
	}
	err = json.Unmarshal(data, &snap)
	return snap, err
}
