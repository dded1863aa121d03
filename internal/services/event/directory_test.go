package event

import (
	"testing"

	"github.com/LeonardoBeccarini/connevents/internal/model"
)

func TestNewDirectory_CopiesInput(t *testing.T) {
	src := map[string]string{"a": "Alpha"}
	d := NewDirectory(src)
	src["a"] = "changed"
	src["b"] = "Beta"

	if name, ok := d.Name("a"); !ok || name != "Alpha" {
		t.Fatalf("Name(a) = %q, %v", name, ok)
	}
	if _, ok := d.Name("b"); ok {
		t.Fatal("directory must not see later additions")
	}
}

func TestDirectoryFromDevices(t *testing.T) {
	d := DirectoryFromDevices([]model.Device{
		{ID: "a", Name: "first"},
		{ID: "", Name: "no id"},
		{ID: "a", Name: "second"},
		{ID: "b", Name: "Beta"},
		{ID: "c", Name: ""},
	})
	if d.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", d.Len())
	}
	if name, _ := d.Name("a"); name != "second" {
		t.Fatalf("later duplicate must win, got %q", name)
	}
	if _, ok := d.Name("c"); ok {
		t.Fatal("unnamed device must not be listed")
	}
}

func TestDirectory_Nil(t *testing.T) {
	var d *Directory
	if _, ok := d.Name("x"); ok || d.Len() != 0 {
		t.Fatal("nil directory must be empty")
	}
}
