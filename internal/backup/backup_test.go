package backup

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write document: %v", err)
	}
	return path
}

func TestCreate_JSONDocument(t *testing.T) {
	dir := t.TempDir()
	doc := writeDoc(t, dir, "bravely.json", `{"experience":100}`)

	m := NewManager(doc)
	path, err := m.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if !strings.HasPrefix(filepath.Base(path), BackupFilePrefix) {
		t.Errorf("backup name %q missing prefix", filepath.Base(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read backup: %v", err)
	}
	if string(data) != `{"experience":100}` {
		t.Errorf("backup content mismatch: %s", data)
	}
}

func TestCreate_MissingDocument(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "missing.json"))
	if _, err := m.Create(); err == nil {
		t.Error("expected error for missing document")
	}
}

func TestList_EmptyWhenNoBackups(t *testing.T) {
	dir := t.TempDir()
	doc := writeDoc(t, dir, "bravely.json", "{}")

	m := NewManager(doc)
	backups, err := m.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("expected no backups, got %d", len(backups))
	}
}

func TestCreate_SameSecondCollisionGetsCounter(t *testing.T) {
	dir := t.TempDir()
	doc := writeDoc(t, dir, "bravely.json", "{}")
	m := NewManager(doc)

	first, err := m.Create()
	if err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	second, err := m.Create()
	if err != nil {
		t.Fatalf("second Create failed: %v", err)
	}
	if first == second {
		t.Errorf("collision produced the same path: %s", first)
	}

	backups, err := m.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(backups) != 2 {
		t.Errorf("expected 2 backups, got %d", len(backups))
	}
}

func TestRestore_SwapsDocumentAndKeepsSafetyCopy(t *testing.T) {
	dir := t.TempDir()
	doc := writeDoc(t, dir, "bravely.json", `{"experience":100}`)
	m := NewManager(doc)

	backupPath, err := m.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Mutate the live document, then roll back.
	writeDoc(t, dir, "bravely.json", `{"experience":999}`)

	if err := m.Restore(backupPath); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	data, err := os.ReadFile(doc)
	if err != nil {
		t.Fatalf("failed to read restored document: %v", err)
	}
	if string(data) != `{"experience":100}` {
		t.Errorf("restored content = %s, want original", data)
	}

	// Restore must have backed up the pre-restore document first.
	backups, err := m.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(backups) < 2 {
		t.Errorf("expected safety backup before restore, got %d backups", len(backups))
	}
}

func TestRestore_MissingBackup(t *testing.T) {
	dir := t.TempDir()
	doc := writeDoc(t, dir, "bravely.json", "{}")
	m := NewManager(doc)

	if err := m.Restore(filepath.Join(dir, "backups", "nope.json")); err == nil {
		t.Error("expected error for missing backup file")
	}
}
