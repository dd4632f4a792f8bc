package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRelSlash(t *testing.T) {
	t.Parallel()

	root := filepath.Join("tmp", "proj")
	cases := []struct {
		name     string
		path     string
		expected string
	}{
		{name: "Root", path: root, expected: ""},
		{name: "Nested", path: filepath.Join(root, "pkg", "base.py"), expected: "pkg/base.py"},
		{name: "Outside", path: filepath.Join("tmp", "other", "x.py"), expected: "tmp/other/x.py"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := RelSlash(root, tc.path); got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestCollapseSpace(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"":                           "",
		"  route( '/a' ,\n  x=1 ) ": "route( '/a' , x=1 )",
		"\tcache\n":                 "cache",
	}
	for in, want := range cases {
		if got := CollapseSpace(in); got != want {
			t.Fatalf("CollapseSpace(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSortedStringKeys(t *testing.T) {
	t.Parallel()

	m := map[string]int{"b": 2, "a": 1, "c": 3}
	keys := SortedStringKeys(m)
	expected := []string{"a", "b", "c"}
	if len(keys) != len(expected) {
		t.Fatalf("expected %d keys, got %d", len(expected), len(keys))
	}
	for i, key := range expected {
		if keys[i] != key {
			t.Fatalf("expected %q at %d, got %q", key, i, keys[i])
		}
	}
}

func TestWriteFileWithDirs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "file.txt")
	content := []byte("hello")

	if err := WriteFileWithDirs(path, content, 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(got) != string(content) {
		t.Fatalf("expected %q, got %q", string(content), string(got))
	}
}

func TestWriteStringWithDirs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "file.txt")

	if err := WriteStringWithDirs(path, "hello", 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("expected %q, got %q", "hello", string(got))
	}
}
