package storage

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ctx400/pv/internal/vault"
)

func TestFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pv.json")
	password := []byte("master_password")

	v, err := vault.New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := v.StoreSecret("mykey", []byte("mysecret"), password); err != nil {
		t.Fatalf("StoreSecret failed: %v", err)
	}

	store := NewFileStore(path)
	if err := store.Save(v); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Fresh load from disk
	loaded, err := NewFileStore(path).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	got, err := loaded.ReadSecret("mykey", password)
	if err != nil {
		t.Fatalf("ReadSecret failed: %v", err)
	}
	if !bytes.Equal(got, []byte("mysecret")) {
		t.Errorf("ReadSecret = %q, want mysecret", got)
	}
	if !bytes.Equal(loaded.Salt, v.Salt) {
		t.Error("Salt not preserved")
	}
	if loaded.ID != v.ID {
		t.Error("Vault ID not preserved")
	}
}

func TestFileStoreLoadMissing(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "absent.json"))
	if _, err := store.Load(); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected fs.ErrNotExist, got %v", err)
	}
}

func TestFileStoreOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pv.json")
	password := []byte("pw")

	v, _ := vault.New()
	if err := v.StoreSecret("a", []byte("one"), password); err != nil {
		t.Fatalf("StoreSecret failed: %v", err)
	}

	store := NewFileStore(path)
	if err := store.Save(v); err != nil {
		t.Fatalf("First save failed: %v", err)
	}

	if err := v.StoreSecret("b", []byte("two"), password); err != nil {
		t.Fatalf("StoreSecret failed: %v", err)
	}
	if err := store.Save(v); err != nil {
		t.Fatalf("Second save failed: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Len() != 2 {
		t.Errorf("Expected 2 entries after overwrite, got %d", loaded.Len())
	}

	// The atomic write must not leave temp files behind
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".pv-") {
			t.Errorf("Leftover temp file %s", e.Name())
		}
	}
}

func TestFileStorePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pv.json")
	v, _ := vault.New()

	if err := NewFileStore(path).Save(v); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != FilePermSecure {
		t.Errorf("Vault file mode = %o, want %o", perm, FilePermSecure)
	}
}

func TestFileStoreUnsupportedVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pv.json")
	doc := `{"format_version": 99, "salt": "AAAAAAAAAAAAAAAAAAAAAA==", "entries": {}}`
	if err := os.WriteFile(path, []byte(doc), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := NewFileStore(path).Load(); !errors.Is(err, vault.ErrUnsupportedVersion) {
		t.Errorf("Expected ErrUnsupportedVersion, got %v", err)
	}
}

func TestFileStoreMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pv.json")
	if err := os.WriteFile(path, []byte("not a vault"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := NewFileStore(path).Load(); !errors.Is(err, vault.ErrMalformed) {
		t.Errorf("Expected ErrMalformed, got %v", err)
	}
}

func TestBoltStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pv.db")
	password := []byte("master_password")

	v, _ := vault.New()
	if err := v.StoreSecret("mykey", []byte("mysecret"), password); err != nil {
		t.Fatalf("StoreSecret failed: %v", err)
	}

	store := NewBoltStore(path)
	if err := store.Save(v); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := NewBoltStore(path).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.FormatVersion != v.FormatVersion {
		t.Errorf("FormatVersion = %d, want %d", loaded.FormatVersion, v.FormatVersion)
	}
	if !bytes.Equal(loaded.Salt, v.Salt) {
		t.Error("Salt not preserved")
	}
	if loaded.ID != v.ID {
		t.Error("Vault ID not preserved")
	}

	got, err := loaded.ReadSecret("mykey", password)
	if err != nil {
		t.Fatalf("ReadSecret failed: %v", err)
	}
	if !bytes.Equal(got, []byte("mysecret")) {
		t.Errorf("ReadSecret = %q, want mysecret", got)
	}
}

func TestBoltStoreSaveDropsDeletedEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pv.db")
	password := []byte("pw")

	v, _ := vault.New()
	if err := v.StoreSecret("keep", []byte("keep"), password); err != nil {
		t.Fatalf("StoreSecret failed: %v", err)
	}
	if err := v.StoreSecret("drop", []byte("drop"), password); err != nil {
		t.Fatalf("StoreSecret failed: %v", err)
	}

	store := NewBoltStore(path)
	if err := store.Save(v); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := v.DeleteSecret("drop"); err != nil {
		t.Fatalf("DeleteSecret failed: %v", err)
	}
	if err := store.Save(v); err != nil {
		t.Fatalf("Second save failed: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Len() != 1 {
		t.Errorf("Expected 1 entry after delete and re-save, got %d", loaded.Len())
	}
	if err := loaded.DeleteSecret("drop"); !errors.Is(err, vault.ErrNotFound) {
		t.Errorf("Deleted entry should be gone, got %v", err)
	}
}

// The end-to-end scenario: create, store, save, fresh load, read.
func TestCreateStoreSaveLoadRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pv.json")
	password := []byte("master_password")

	v, err := vault.New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := v.StoreSecret("mykey", []byte("mysecret"), password); err != nil {
		t.Fatalf("StoreSecret failed: %v", err)
	}
	if err := NewFileStore(path).Save(v); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	v2, err := NewFileStore(path).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	got, err := v2.ReadSecret("mykey", password)
	if err != nil {
		t.Fatalf("ReadSecret failed: %v", err)
	}
	if !bytes.Equal(got, []byte("mysecret")) {
		t.Errorf("ReadSecret = %q, want mysecret", got)
	}
}
