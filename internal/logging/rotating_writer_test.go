package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRotatingFileWriter(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "test.log")

	w, err := NewRotatingFileWriter(logPath, 100, 2)
	if err != nil {
		t.Fatalf("NewRotatingFileWriter failed: %v", err)
	}
	defer func() { _ = w.Close() }()

	line := strings.Repeat("x", 40) + "\n"

	// Two writes fit, the third forces a rotation
	for i := 0; i < 3; i++ {
		if _, err := w.Write([]byte(line)); err != nil {
			t.Fatalf("Write %d failed: %v", i, err)
		}
	}

	if _, err := os.Stat(filepath.Join(dir, "test.1.log")); err != nil {
		t.Errorf("Expected rotated backup test.1.log: %v", err)
	}

	info, err := os.Stat(logPath)
	if err != nil {
		t.Fatalf("Current log file missing: %v", err)
	}
	if info.Size() != int64(len(line)) {
		t.Errorf("Current file size = %d, want %d", info.Size(), len(line))
	}
}

func TestRotatingFileWriterBackupLimit(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "test.log")

	w, err := NewRotatingFileWriter(logPath, 10, 2)
	if err != nil {
		t.Fatalf("NewRotatingFileWriter failed: %v", err)
	}
	defer func() { _ = w.Close() }()

	// Each write exceeds maxSize, so every write after the first rotates
	for i := 0; i < 5; i++ {
		if _, err := w.Write([]byte(strings.Repeat("y", 8) + "\n")); err != nil {
			t.Fatalf("Write %d failed: %v", i, err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) > 3 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("More files than current + 2 backups: %v", names)
	}
}
