package formats

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriteManifestEntry(t *testing.T) {
	var buf bytes.Buffer
	entries := []ManifestEntry{
		{File: "scene_1.mesh", Material: "brick"},
		{File: "scene_2.mesh", Material: ""},
	}
	for _, e := range entries {
		if err := WriteManifestEntry(&buf, e); err != nil {
			t.Fatalf("WriteManifestEntry: %v", err)
		}
	}

	want := "scene_1.mesh,brick\nscene_2.mesh,\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestParseManifest(t *testing.T) {
	src := "scene_1.mesh,brick\r\n\nscene_2.mesh,\nscene_3.mesh,a,b\n"

	entries, err := ParseManifest(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseManifest: %v", err)
	}

	want := []ManifestEntry{
		{"scene_1.mesh", "brick"},
		{"scene_2.mesh", ""},
		{"scene_3.mesh", "a,b"},
	}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(entries))
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, entries[i], want[i])
		}
	}
}

func TestParseManifest_MissingField(t *testing.T) {
	if _, err := ParseManifest(strings.NewReader("scene_1.mesh\n")); err == nil {
		t.Error("expected error for line without comma")
	}
}
