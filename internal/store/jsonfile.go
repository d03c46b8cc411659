package store

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hpungsan/timecapsule/internal/capsule"
)

// JSONFile is the flat-file backend: a single JSON array of capsule records,
// fully rewritten on every save.
type JSONFile struct {
	path string
}

// NewJSONFile returns a backend that persists to path.
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

// Load reads the data file. A missing file is reported with found=false and no error.
func (f *JSONFile) Load() ([]capsule.Capsule, bool, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s: %w", f.path, err)
	}

	var capsules []capsule.Capsule
	if err := json.Unmarshal(data, &capsules); err != nil {
		return nil, true, fmt.Errorf("decode %s: %w", f.path, err)
	}
	return capsules, true, nil
}

// Save writes the whole collection to a temp file beside the target and renames
// it into place, so a failed write leaves the previous file intact.
func (f *JSONFile) Save(capsules []capsule.Capsule) error {
	if capsules == nil {
		capsules = []capsule.Capsule{}
	}
	data, err := json.MarshalIndent(capsules, "", "    ")
	if err != nil {
		return fmt.Errorf("encode capsules: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return fmt.Errorf("generate temp file name: %w", err)
	}
	tempPath := f.path + "." + hex.EncodeToString(randBytes) + ".tmp"

	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0600)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := file.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", tempPath, err)
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", tempPath, err)
	}

	// Close before rename (required on Windows; fine elsewhere).
	if err := file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tempPath, err)
	}
	file = nil

	if err := os.Rename(tempPath, f.path); err != nil {
		return fmt.Errorf("replace %s: %w", f.path, err)
	}

	success = true
	return nil
}

// Close is a no-op; the file is not held open between saves.
func (f *JSONFile) Close() error {
	return nil
}
