package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type configChange struct {
	old *Config
	new *Config
}

// startWatcher runs Watch in the background and asserts clean shutdown on
// test cleanup. Extra duplicate change notifications are dropped rather than
// blocking the watcher.
func startWatcher(t *testing.T, path string, initial *Config) <-chan configChange {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	changes := make(chan configChange, 16)
	done := make(chan error, 1)

	go func() {
		done <- Watch(ctx, path, initial, zerolog.Nop(), func(old, new *Config) {
			select {
			case changes <- configChange{old: old, new: new}:
			default:
			}
		})
	}()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("watch returned error: %v", err)
			}
		case <-time.After(3 * time.Second):
			t.Error("watcher did not stop after context cancel")
		}
	})

	return changes
}

func writeVoiceTarget(t *testing.T, path, target string) {
	t.Helper()
	yaml := "voice:\n  target: \"" + target + "\"\n"
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}
}

// awaitChange repeatedly applies write until a change notification arrives.
// Rewriting covers the window before the watcher has registered its watch.
func awaitChange(t *testing.T, changes <-chan configChange, write func()) configChange {
	t.Helper()

	deadline := time.After(3 * time.Second)
	for {
		write()
		select {
		case c := <-changes:
			return c
		case <-deadline:
			t.Fatal("no config change observed")
		case <-time.After(100 * time.Millisecond):
		}
	}
}

func TestWatchReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeVoiceTarget(t, path, "10.0.0.1:4000")
	initial, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	changes := startWatcher(t, path, initial)

	c := awaitChange(t, changes, func() {
		writeVoiceTarget(t, path, "10.0.0.2:4000")
	})

	if c.old.Voice.Target != "10.0.0.1:4000" {
		t.Errorf("got old target %q, want initial", c.old.Voice.Target)
	}
	if c.new.Voice.Target != "10.0.0.2:4000" {
		t.Errorf("got new target %q, want rewritten", c.new.Voice.Target)
	}
}

func TestWatchKeepsPreviousOnInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeVoiceTarget(t, path, "10.0.0.1:4000")
	initial, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	changes := startWatcher(t, path, initial)

	if err := os.WriteFile(path, []byte("voice: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	select {
	case c := <-changes:
		t.Fatalf("invalid config produced a change: %+v", c.new)
	case <-time.After(300 * time.Millisecond):
	}

	c := awaitChange(t, changes, func() {
		writeVoiceTarget(t, path, "10.0.0.3:4000")
	})

	// The invalid intermediate state must never have been applied.
	if c.old.Voice.Target != "10.0.0.1:4000" {
		t.Errorf("got old target %q, want initial", c.old.Voice.Target)
	}
	if c.new.Voice.Target != "10.0.0.3:4000" {
		t.Errorf("got new target %q", c.new.Voice.Target)
	}
}

func TestWatchIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeVoiceTarget(t, path, "10.0.0.1:4000")
	initial, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	changes := startWatcher(t, path, initial)

	if err := os.WriteFile(filepath.Join(dir, "notes.yaml"), []byte("not a config"), 0644); err != nil {
		t.Fatal(err)
	}
	select {
	case c := <-changes:
		t.Fatalf("sibling file produced a change: %+v", c.new)
	case <-time.After(300 * time.Millisecond):
	}

	c := awaitChange(t, changes, func() {
		writeVoiceTarget(t, path, "10.0.0.2:4000")
	})
	if c.new.Voice.Target != "10.0.0.2:4000" {
		t.Errorf("got new target %q", c.new.Voice.Target)
	}
}
