package osfilesystem

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileSystem_WriteAndReadFile(t *testing.T) {
	fs := New()
	path := filepath.Join(t.TempDir(), "clip.mp4")

	if err := fs.WriteFile(path, []byte("moov")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := fs.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "moov" {
		t.Errorf("expected %q, got %q", "moov", data)
	}
}

func TestFileSystem_WriteFileCreatesParentDirs(t *testing.T) {
	fs := New()
	path := filepath.Join(t.TempDir(), "output", "dance", "face_crop_fill_h264.mp4")

	if err := fs.WriteFile(path, []byte("x")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	exists, err := fs.Exists(path)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("expected file to exist")
	}
}

func TestFileSystem_MkdirAllExisting(t *testing.T) {
	fs := New()
	dir := filepath.Join(t.TempDir(), "output")

	if err := fs.MkdirAll(dir); err != nil {
		t.Fatalf("first MkdirAll failed: %v", err)
	}
	if err := fs.MkdirAll(dir); err != nil {
		t.Errorf("MkdirAll on an existing directory should succeed, got %v", err)
	}
}

func TestFileSystem_MkdirAllOverFile(t *testing.T) {
	fs := New()
	path := filepath.Join(t.TempDir(), "occupied")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}

	if err := fs.MkdirAll(path); err == nil {
		t.Error("expected an error when a file occupies the path")
	}
}

func TestFileSystem_Exists(t *testing.T) {
	fs := New()

	exists, err := fs.Exists(filepath.Join(t.TempDir(), "ffmpeg-fdk-aac"))
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("expected missing file to report false")
	}
}

func TestFileSystem_RemoveAndRemoveAll(t *testing.T) {
	fs := New()
	root := t.TempDir()

	file := filepath.Join(root, "a.png")
	if err := fs.WriteFile(file, []byte("png")); err != nil {
		t.Fatal(err)
	}
	if err := fs.Remove(file); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if exists, _ := fs.Exists(file); exists {
		t.Error("expected file to be removed")
	}

	nested := filepath.Join(root, "scratch", "frames", "0001.png")
	if err := fs.WriteFile(nested, []byte("png")); err != nil {
		t.Fatal(err)
	}
	if err := fs.RemoveAll(filepath.Join(root, "scratch")); err != nil {
		t.Fatalf("RemoveAll failed: %v", err)
	}
	if exists, _ := fs.Exists(filepath.Join(root, "scratch")); exists {
		t.Error("expected directory tree to be removed")
	}
}

func TestFileSystem_TempDir(t *testing.T) {
	fs := New()

	dir, err := fs.TempDir("imganimate-")
	if err != nil {
		t.Fatalf("TempDir failed: %v", err)
	}
	defer os.RemoveAll(dir)

	if !strings.HasPrefix(filepath.Base(dir), "imganimate-") {
		t.Errorf("unexpected directory name %s", dir)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Errorf("expected a directory at %s", dir)
	}
}
