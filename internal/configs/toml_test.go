package configs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAndLoadTOML(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "test.toml")

	type TestStruct struct {
		Name string
		Port int
	}

	originalData := TestStruct{Name: "slink", Port: 8080}

	if err := SaveTOML(testFile, originalData); err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	loadedData := TestStruct{}
	if _, err := LoadTOML(testFile, &loadedData); err != nil {
		t.Fatalf("LoadTOML failed: %v", err)
	}

	if loadedData != originalData {
		t.Errorf("Expected %+v, got %+v", originalData, loadedData)
	}
}

func TestLoadTOMLNonExistent(t *testing.T) {
	var data struct{ Name string }
	if _, err := LoadTOML(filepath.Join(t.TempDir(), "nonexistent.toml"), &data); err == nil {
		t.Fatal("Expected error for non-existent file, got nil")
	}
}

func TestSaveTOMLPermissions(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "subdir", "test.toml")

	// Pre-existing loose file must be tightened.
	if err := os.MkdirAll(filepath.Dir(testFile), 0700); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(testFile, []byte("old = 1\n"), 0644); err != nil { // #nosec G306
		t.Fatalf("Failed to write file: %v", err)
	}

	if err := SaveTOML(testFile, struct{ Name string }{Name: "Test"}); err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	info, err := os.Stat(testFile)
	if err != nil {
		t.Fatalf("File was not created: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected mode 0600, got %04o", info.Mode().Perm())
	}
}

func TestSaveTOMLCreatesPrivateDirectory(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "slink", "slink.conf")

	if err := SaveTOML(testFile, struct{ Name string }{Name: "Test"}); err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	info, err := os.Stat(filepath.Dir(testFile))
	if err != nil {
		t.Fatalf("Directory was not created: %v", err)
	}
	if info.Mode().Perm() != 0700 {
		t.Errorf("Expected directory mode 0700, got %04o", info.Mode().Perm())
	}
}
