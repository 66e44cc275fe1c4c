package world_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/funvibe/typeset/internal/world"
)

// ---------------------------------------------------------------------------
// Virtual world
// ---------------------------------------------------------------------------

func TestVirtual_SourceAndMain(t *testing.T) {
	w := world.NewVirtual("main", map[string]string{"main": "Hello."})
	src, err := w.Source(w.Main())
	if err != nil {
		t.Fatal(err)
	}
	if src.Text != "Hello." {
		t.Errorf("source text = %q", src.Text)
	}
}

func TestVirtual_MissingFile(t *testing.T) {
	w := world.NewVirtual("main", map[string]string{"main": ""})
	id, err := w.Resolve(w.Main(), "ghost")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Source(id); err == nil {
		t.Error("missing virtual file produced a source")
	}
}

func TestVirtual_ResolveRelative(t *testing.T) {
	w := world.NewVirtual("main", map[string]string{
		"main":        "",
		"sub/chapter": "Inside.",
	})
	id, err := w.Resolve(w.Main(), "sub/chapter")
	if err != nil {
		t.Fatal(err)
	}
	src, err := w.Source(id)
	if err != nil {
		t.Fatalf("resolved id has no source: %v", err)
	}
	if src.Text != "Inside." {
		t.Errorf("resolved wrong file: %q", src.Text)
	}
}

func TestVirtual_ResolveAppendsExtension(t *testing.T) {
	w := world.NewVirtual("main", map[string]string{"main": "", "chapter": "X"})
	a, _ := w.Resolve(w.Main(), "chapter")
	b, _ := w.Resolve(w.Main(), "chapter.tys")
	if a != b {
		t.Error("default extension not applied consistently")
	}
}

func TestVirtual_ResolveEmptyPath(t *testing.T) {
	w := world.NewVirtual("main", map[string]string{"main": ""})
	if _, err := w.Resolve(w.Main(), ""); err == nil {
		t.Error("empty import path resolved")
	}
}

// ---------------------------------------------------------------------------
// Filesystem world
// ---------------------------------------------------------------------------

func writeFile(t *testing.T, path, text string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFS_ReadsSources(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.tys"), "Root.")
	writeFile(t, filepath.Join(dir, "parts", "one.tys"), "Part.")

	w, err := world.NewFS(filepath.Join(dir, "main.tys"))
	if err != nil {
		t.Fatal(err)
	}
	if w.Root() != dir {
		t.Errorf("Root() = %q, want %q", w.Root(), dir)
	}

	src, err := w.Source(w.Main())
	if err != nil || src.Text != "Root." {
		t.Fatalf("main source = %q, %v", src.Text, err)
	}

	id, err := w.Resolve(w.Main(), "parts/one")
	if err != nil {
		t.Fatal(err)
	}
	src, err = w.Source(id)
	if err != nil || src.Text != "Part." {
		t.Errorf("resolved source = %q, %v", src.Text, err)
	}
}

func TestFS_MainWithoutExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.tys"), "")
	if _, err := world.NewFS(filepath.Join(dir, "main")); err != nil {
		t.Errorf("extensionless main rejected: %v", err)
	}
}

func TestFS_MissingMain(t *testing.T) {
	if _, err := world.NewFS(filepath.Join(t.TempDir(), "absent.tys")); err == nil {
		t.Error("missing main file accepted")
	}
}

func TestFS_SnapshotsSources(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.tys")
	writeFile(t, path, "before")

	w, err := world.NewFS(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Source(w.Main()); err != nil {
		t.Fatal(err)
	}

	// A file edit mid-compile must not change what this world sees.
	writeFile(t, path, "after")
	src, err := w.Source(w.Main())
	if err != nil {
		t.Fatal(err)
	}
	if src.Text != "before" {
		t.Errorf("world re-read an edited source: %q", src.Text)
	}
}

// ---------------------------------------------------------------------------
// Watcher
// ---------------------------------------------------------------------------

func TestWatch_ReportsSourceWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.tys")
	writeFile(t, path, "v1")

	w, err := world.Watch(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	writeFile(t, path, "v2")

	select {
	case id := <-w.Events():
		if id.Path() != path {
			t.Errorf("event for %q, want %q", id.Path(), path)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no event for a source write")
	}
}

func TestWatch_IgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := world.Watch(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	writeFile(t, filepath.Join(dir, "notes.txt"), "not a source")

	select {
	case id := <-w.Events():
		t.Errorf("unexpected event for %q", id.Path())
	case <-time.After(500 * time.Millisecond):
	}
}
