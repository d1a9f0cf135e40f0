package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCreateAndCleanup(t *testing.T) {
	ws, err := Create("voicelab-test")
	if err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}

	if !strings.HasPrefix(filepath.Base(ws.Dir), "voicelab-test-") {
		t.Errorf("Unexpected workspace dir name %q", ws.Dir)
	}
	if _, err := os.Stat(ws.Dir); err != nil {
		t.Fatalf("Workspace dir missing: %v", err)
	}

	if err := ws.Cleanup(); err != nil {
		t.Fatalf("Cleanup() unexpected error: %v", err)
	}
	if _, err := os.Stat(ws.Dir); !os.IsNotExist(err) {
		t.Error("Expected workspace dir to be removed")
	}
}

func TestSaveSanitizesName(t *testing.T) {
	ws, err := Create("voicelab-test")
	if err != nil {
		t.Fatal(err)
	}
	defer ws.Cleanup()

	path, n, err := ws.Save("../../etc/my song.wav", strings.NewReader("RIFF"))
	if err != nil {
		t.Fatalf("Save() unexpected error: %v", err)
	}
	if n != 4 {
		t.Errorf("Expected 4 bytes written, got %d", n)
	}
	if filepath.Dir(path) != ws.Dir {
		t.Errorf("Saved file escaped workspace: %s", path)
	}
	if filepath.Base(path) != "my_song.wav" {
		t.Errorf("Unexpected sanitized name %q", filepath.Base(path))
	}
}

func TestFindByExt(t *testing.T) {
	ws, err := Create("voicelab-test")
	if err != nil {
		t.Fatal(err)
	}
	defer ws.Cleanup()

	if _, ok := ws.FindByExt(".mid"); ok {
		t.Error("Expected no .mid file in empty workspace")
	}

	if err := os.WriteFile(ws.Path("input_basic_pitch.mid"), []byte("MThd"), 0644); err != nil {
		t.Fatal(err)
	}
	path, ok := ws.FindByExt(".mid")
	if !ok || filepath.Base(path) != "input_basic_pitch.mid" {
		t.Errorf("FindByExt() = %q, %v", path, ok)
	}
}
