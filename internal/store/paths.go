package store

import "path/filepath"

func StatePath(root string) string {
	return filepath.Join(root, "state.toml")
}

func AuditPath(root string) string {
	return filepath.Join(root, "audit.log")
}

// BackupRoot holds copies of foreign artifacts replaced with force.
func BackupRoot(root string) string {
	return filepath.Join(root, "backups")
}
