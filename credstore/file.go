package credstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	baileys "github.com/LeonWang2006/Baileys"
)

// File persists credentials as JSON at a fixed path. Writes
// go through a temp file and rename so a crash mid-write never leaves a
// truncated credential file behind.
type File struct {
	path string
}

// NewFile creates a file-backed credential store at path. The file does not
// need to exist yet; the first Load returns fresh unregistered credentials.
func NewFile(path string) *File {
	return &File{path: path}
}

// Load reads the stored credentials. A missing file is not an error: it
// yields fresh credentials for a first-time pairing flow.
func (f *File) Load() (*baileys.Credentials, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &baileys.Credentials{}, nil
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}

	var creds baileys.Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	return &creds, nil
}

// Save atomically replaces the stored credentials. The encoding is compact
// so the opaque engine blob survives byte for byte.
func (f *File) Save(creds *baileys.Credentials) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".creds-*.json")
	if err != nil {
		return fmt.Errorf("create temp credentials: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write credentials: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close credentials: %w", err)
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace credentials: %w", err)
	}
	return nil
}
