package credstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	baileys "github.com/LeonWang2006/Baileys"
)

func TestLoadMissingFileReturnsFresh(t *testing.T) {
	store := NewFile(filepath.Join(t.TempDir(), "creds.json"))

	creds, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if creds == nil {
		t.Fatal("Load returned nil credentials")
	}
	if creds.Registered {
		t.Fatal("fresh credentials should not be registered")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := NewFile(filepath.Join(t.TempDir(), "creds.json"))

	saved := &baileys.Credentials{
		Registered: true,
		Platform:   "android",
		Me:         &baileys.Contact{JID: "me@s.whatsapp.net", Name: "Me"},
		Engine:     json.RawMessage(`{"noiseKey":"abc"}`),
	}
	if err := store.Save(saved); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !loaded.Registered || loaded.Platform != "android" {
		t.Fatalf("loaded credentials = %+v, want the saved values", loaded)
	}
	if loaded.Me == nil || loaded.Me.JID != "me@s.whatsapp.net" {
		t.Fatalf("loaded Me = %+v, want saved contact", loaded.Me)
	}
	if string(loaded.Engine) != `{"noiseKey":"abc"}` {
		t.Fatalf("engine blob = %s, want it round-tripped untouched", loaded.Engine)
	}
}

func TestSaveCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "creds.json")
	store := NewFile(path)

	if err := store.Save(&baileys.Credentials{Registered: true}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("credentials file missing after save: %v", err)
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewFile(filepath.Join(dir, "creds.json"))

	if err := store.Save(&baileys.Credentials{}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "creds.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("directory contents = %v, want only creds.json", names)
	}
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := NewFile(path).Load(); err == nil {
		t.Fatal("Load succeeded on corrupt file, want error")
	}
}
