package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadEnvAppliesFile(t *testing.T) {
	saved := Session
	savedNet := Net
	t.Cleanup(func() { Session, Net = saved, savedNet })

	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	content := "DAGK_INPUT_DELAY=4\nDAGK_ROOM=arena\nDAGK_DISCONNECT_TIMEOUT=2s\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DAGK_INPUT_DELAY", "")
	t.Setenv("DAGK_ROOM", "")
	t.Setenv("DAGK_DISCONNECT_TIMEOUT", "")
	os.Unsetenv("DAGK_INPUT_DELAY")
	os.Unsetenv("DAGK_ROOM")
	os.Unsetenv("DAGK_DISCONNECT_TIMEOUT")

	if err := LoadEnv(path); err != nil {
		t.Fatal(err)
	}
	if Session.InputDelay != 4 || Net.Room != "arena" || Session.DisconnectTimeout != 2*time.Second {
		t.Fatalf("overrides not applied: %+v %+v", Session, Net)
	}
}

func TestLoadEnvMissingFileIsFine(t *testing.T) {
	if err := LoadEnv(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("missing file: %v", err)
	}
}

func TestApplyEnvRejectsBadValues(t *testing.T) {
	saved := Session
	t.Cleanup(func() { Session = saved })

	t.Setenv("DAGK_MAX_PREDICTION", "lots")
	if err := ApplyEnv(); err == nil {
		t.Fatal("expected parse error")
	}
	if Session.MaxPrediction != saved.MaxPrediction {
		t.Fatal("bad value overwrote the default")
	}
}

func TestInputBits(t *testing.T) {
	got := Input.Bits(ActionMoveUp, ActionFire, ActionNone, ActionCount)
	want := Input.Bindings[ActionMoveUp] | Input.Bindings[ActionFire]
	if got != want {
		t.Fatalf("bits = %08b, want %08b", got, want)
	}
}
