package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hpungsan/timecapsule/internal/capsule"
)

func TestJSONFile_LoadMissing(t *testing.T) {
	f := NewJSONFile(filepath.Join(t.TempDir(), "missing.json"))

	capsules, found, err := f.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if found {
		t.Error("found = true, want false")
	}
	if capsules != nil {
		t.Errorf("capsules = %v, want nil", capsules)
	}
}

func TestJSONFile_SaveFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Capsules.json")
	f := NewJSONFile(path)

	err := f.Save([]capsule.Capsule{capsule.New("01ABC", "hi", "2999-01-01")})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	want := `[
    {
        "capsule_id": "01ABC",
        "message": "hi",
        "open_date": "2999-01-01"
    }
]
`
	if string(data) != want {
		t.Errorf("file content =\n%s\nwant\n%s", data, want)
	}
}

func TestJSONFile_SaveCreatesParentAndCleansTemp(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	path := filepath.Join(dir, "Capsules.json")
	f := NewJSONFile(path)

	for range 3 {
		if err := f.Save(nil); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want 1", len(entries))
	}
}

func TestJSONFile_SaveReplacesContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Capsules.json")
	f := NewJSONFile(path)

	if err := f.Save([]capsule.Capsule{capsule.New("a", "1", "2020-01-01"), capsule.New("b", "2", "2020-01-01")}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := f.Save([]capsule.Capsule{capsule.New("b", "2", "2020-01-01")}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, found, err := f.Load()
	if err != nil || !found {
		t.Fatalf("Load failed: found=%v err=%v", found, err)
	}
	if len(got) != 1 || got[0].ID != "b" {
		t.Errorf("Load() = %+v, want only b", got)
	}
}

func TestJSONFile_LoadNullIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Capsules.json")
	if err := os.WriteFile(path, []byte("null"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	got, found, err := NewJSONFile(path).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !found || len(got) != 0 {
		t.Errorf("Load() = %v, found=%v", got, found)
	}
}
