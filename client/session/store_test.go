package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mysupport/mysupport/models"
)

func TestStoreRoundTripOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")

	store := NewStore(NewFileStorage(path))
	state, err := store.Load()
	if err != nil {
		t.Fatalf("Load() on missing file error = %v", err)
	}
	if state.Authenticated() {
		t.Fatal("fresh state is authenticated")
	}

	if err := store.Save("tok1", models.User{ID: 1, Email: "a@b.com", Name: "Аня"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// a new store over the same file sees what the first one wrote
	state, err = NewStore(NewFileStorage(path)).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !state.Authenticated() || state.Token != "tok1" {
		t.Errorf("Token = %q", state.Token)
	}
	if state.User == nil || state.User.ID != 1 || state.User.Name != "Аня" {
		t.Errorf("User = %+v", state.User)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	state, _ = store.Load()
	if state.Authenticated() || state.User != nil {
		t.Errorf("state after Clear = %+v", state)
	}
}

func TestLoadIgnoresBrokenUser(t *testing.T) {
	storage := NewMemoryStorage()
	storage.Set(KeyToken, "tok1")
	storage.Set(KeyUser, "{not json")

	state, err := NewStore(storage).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !state.Authenticated() || state.User != nil {
		t.Errorf("state = %+v", state)
	}
}

func TestFileStorageRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("[1,2"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, _, err := NewFileStorage(path).Get(KeyToken); err == nil {
		t.Error("Get() on corrupt file error = nil")
	}
}

func TestLoadSession(t *testing.T) {
	storage := NewMemoryStorage()
	if LoadSession(storage).Authenticated() {
		t.Fatal("empty storage is authenticated")
	}

	NewStore(storage).Save("tok1", models.User{ID: 1})
	if state := LoadSession(storage); state.Token != "tok1" || state.User.ID != 1 {
		t.Errorf("LoadSession() = %+v", state)
	}

	path := filepath.Join(t.TempDir(), "state.json")
	os.WriteFile(path, []byte("garbage"), 0o600)
	if LoadSession(NewFileStorage(path)).Authenticated() {
		t.Error("corrupt file yields authenticated state")
	}
}
