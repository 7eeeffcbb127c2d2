package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logadapter "github.com/forgebit/mailforge/internal/adapters/log"
)

type fakeRetunable struct {
	ch chan time.Duration
}

func (f *fakeRetunable) SetPacing(d time.Duration) {
	f.ch <- d
}

func TestWatcher_RetunesPacingOnConfigChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("pacing = \"3s\"\n"), 0o600))

	target := &fakeRetunable{ch: make(chan time.Duration, 1)}
	w := New(path, target, logadapter.NewNoopLogger())
	w.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("pacing = \"7s\"\n"), 0o600))

	select {
	case d := <-target.ch:
		assert.Equal(t, 7*time.Second, d)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for pacing retune")
	}
}

func TestWatcher_IgnoresInvalidPacing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("pacing = \"3s\"\n"), 0o600))

	target := &fakeRetunable{ch: make(chan time.Duration, 1)}
	w := New(path, target, logadapter.NewNoopLogger())
	w.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("pacing = \"not-a-duration\"\n"), 0o600))

	select {
	case d := <-target.ch:
		t.Fatalf("unexpected retune to %v", d)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_IgnoresOtherFilesInDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("pacing = \"3s\"\n"), 0o600))

	target := &fakeRetunable{ch: make(chan time.Duration, 1)}
	w := New(path, target, logadapter.NewNoopLogger())
	w.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.toml"), []byte("pacing = \"9s\"\n"), 0o600))

	select {
	case d := <-target.ch:
		t.Fatalf("unexpected retune to %v", d)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_StartFailsForMissingDirectory(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "missing", "config.toml"), &fakeRetunable{ch: make(chan time.Duration, 1)}, logadapter.NewNoopLogger())
	err := w.Start(context.Background())
	require.Error(t, err)
}
