package roster

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParse(t *testing.T) {
	data := []byte(`
devices:
  - id: e00fce68
    name: electron-01
  - name: no id
  - id: 3a0042
    name: boron-02
`)
	got, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 devices, got %+v", got)
	}
	if got[0].ID != "e00fce68" || got[0].Name != "electron-01" || got[1].ID != "3a0042" {
		t.Fatalf("unexpected devices %+v", got)
	}
}

func TestParse_Errors(t *testing.T) {
	if _, err := Parse([]byte("devices: []")); !errors.Is(err, ErrEmptyRoster) {
		t.Fatalf("expected ErrEmptyRoster, got %v", err)
	}
	if _, err := Parse([]byte("devices: [")); err == nil || errors.Is(err, ErrEmptyRoster) {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.yaml")
	if err := os.WriteFile(path, []byte("devices:\n  - id: a\n    name: Alpha\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err := LoadFile(path)
	if err != nil || len(got) != 1 || got[0].Name != "Alpha" {
		t.Fatalf("LoadFile = %+v, %v", got, err)
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
