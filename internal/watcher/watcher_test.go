package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigWatcher_ReloadOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".modkit.yml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: info\n"), 0644))

	cw, err := NewConfigWatcher(path, 50*time.Millisecond)
	require.NoError(t, err)
	defer func() { _ = cw.Stop() }()

	var reloads atomic.Int32
	cw.AddHandler(func(p string) {
		assert.Equal(t, path, p)
		reloads.Add(1)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cw.Start(ctx)

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\n"), 0644))

	assert.Eventually(t, func() bool {
		return reloads.Load() >= 1
	}, 2*time.Second, 20*time.Millisecond)
}

func TestConfigWatcher_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".modkit.yml")
	require.NoError(t, os.WriteFile(path, []byte("a: 1\n"), 0644))

	cw, err := NewConfigWatcher(path, 150*time.Millisecond)
	require.NoError(t, err)
	defer func() { _ = cw.Stop() }()

	var reloads atomic.Int32
	cw.AddHandler(func(string) { reloads.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cw.Start(ctx)

	time.Sleep(50 * time.Millisecond)
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("a: 2\n"), 0644))
		time.Sleep(20 * time.Millisecond)
	}

	assert.Eventually(t, func() bool {
		return reloads.Load() >= 1
	}, 2*time.Second, 20*time.Millisecond)
	// The burst collapses into far fewer reloads than writes
	assert.LessOrEqual(t, reloads.Load(), int32(2))
}

func TestConfigWatcher_IgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".modkit.yml")
	sibling := filepath.Join(dir, "other.yml")
	require.NoError(t, os.WriteFile(path, []byte("a: 1\n"), 0644))

	cw, err := NewConfigWatcher(path, 50*time.Millisecond)
	require.NoError(t, err)
	defer func() { _ = cw.Stop() }()

	var reloads atomic.Int32
	cw.AddHandler(func(string) { reloads.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cw.Start(ctx)

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(sibling, []byte("b: 2\n"), 0644))

	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(0), reloads.Load())
}
