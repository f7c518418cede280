package fsnotify

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/ahotrie/internal/ports"
)

var _ ports.Watcher = (*Watcher)(nil)

// waitForCallback waits up to timeout for the callback channel to receive a value.
func waitForCallback(ch <-chan string, timeout time.Duration) (string, bool) {
	select {
	case v := <-ch:
		return v, true
	case <-time.After(timeout):
		return "", false
	}
}

func startWatcher(t *testing.T, path string, extensions ...string) <-chan string {
	t.Helper()
	w, err := NewWatcher(extensions...)
	require.NoError(t, err)
	t.Cleanup(func() { w.Stop() })

	changed := make(chan string, 10)
	require.NoError(t, w.Watch(path, func(p string) {
		changed <- p
	}))

	// Give watcher time to start
	time.Sleep(50 * time.Millisecond)
	return changed
}

// =============================================================================
// Directory mode
// =============================================================================

func TestWatcher_DetectsFileChange(t *testing.T) {
	dir := t.TempDir()
	testFile := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(testFile, []byte("original"), 0644))

	changed := startWatcher(t, dir)
	require.NoError(t, os.WriteFile(testFile, []byte("modified"), 0644))

	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "expected callback for file change")
	assert.Equal(t, testFile, path)
}

func TestWatcher_DetectsNewFile(t *testing.T) {
	dir := t.TempDir()
	changed := startWatcher(t, dir)

	newFile := filepath.Join(dir, "new.txt")
	require.NoError(t, os.WriteFile(newFile, []byte("new"), 0644))

	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "expected callback for new file")
	assert.Equal(t, newFile, path)
}

func TestWatcher_DetectsDeletedFile(t *testing.T) {
	dir := t.TempDir()
	testFile := filepath.Join(dir, "to_delete.txt")
	require.NoError(t, os.WriteFile(testFile, []byte("delete me"), 0644))

	changed := startWatcher(t, dir)
	require.NoError(t, os.Remove(testFile))

	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "expected callback for deleted file")
	assert.Equal(t, testFile, path)
}

func TestWatcher_FollowsNewSubdirectories(t *testing.T) {
	dir := t.TempDir()
	changed := startWatcher(t, dir)

	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0755))
	time.Sleep(100 * time.Millisecond)

	nested := filepath.Join(sub, "deep.txt")
	require.NoError(t, os.WriteFile(nested, []byte("x"), 0644))

	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "expected callback for file in new subdirectory")
	assert.Equal(t, nested, path)
}

func TestWatcher_IgnoresNoise(t *testing.T) {
	dir := t.TempDir()

	gitDir := filepath.Join(dir, ".git")
	require.NoError(t, os.MkdirAll(gitDir, 0755))
	stateDir := filepath.Join(dir, ".ahotrie")
	require.NoError(t, os.MkdirAll(stateDir, 0755))

	changed := startWatcher(t, dir)

	os.WriteFile(filepath.Join(gitDir, "HEAD"), []byte("ref"), 0644)
	os.WriteFile(filepath.Join(stateDir, "ahotrie.db"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(dir, ".DS_Store"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(dir, "dict.yaml.swp"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(dir, "dict.yaml~"), []byte("x"), 0644)

	_, ok := waitForCallback(changed, 500*time.Millisecond)
	assert.False(t, ok, "should not have received callback for ignored files")

	dictFile := filepath.Join(dir, "dict.yaml")
	require.NoError(t, os.WriteFile(dictFile, []byte("name: d"), 0644))

	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "expected callback for a real file")
	assert.Equal(t, dictFile, path)
}

func TestWatcher_RootInsideIgnoredDir(t *testing.T) {
	dictDir := filepath.Join(t.TempDir(), ".ahotrie", "dict")
	require.NoError(t, os.MkdirAll(dictDir, 0755))

	changed := startWatcher(t, dictDir)

	dictFile := filepath.Join(dictDir, "pronouns.yaml")
	require.NoError(t, os.WriteFile(dictFile, []byte("name: pronouns"), 0644))

	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "a watched root under .ahotrie should report its files")
	assert.Equal(t, dictFile, path)
}

func TestWatcher_ExtensionFilter(t *testing.T) {
	dir := t.TempDir()
	changed := startWatcher(t, dir, ".yaml", ".yml")

	os.WriteFile(filepath.Join(dir, "readme.md"), []byte("x"), 0644)
	_, ok := waitForCallback(changed, 300*time.Millisecond)
	assert.False(t, ok, "non-matching extension must be filtered")

	dict := filepath.Join(dir, "d.yml")
	require.NoError(t, os.WriteFile(dict, []byte("name: d"), 0644))

	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok)
	assert.Equal(t, dict, path)
}

// =============================================================================
// Single-file mode
// =============================================================================

func TestWatcher_SingleFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "dict.yaml")
	require.NoError(t, os.WriteFile(target, []byte("name: a"), 0644))

	changed := startWatcher(t, target)

	os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("name: b"), 0644)
	_, ok := waitForCallback(changed, 300*time.Millisecond)
	assert.False(t, ok, "siblings of the watched file must be ignored")

	require.NoError(t, os.WriteFile(target, []byte("name: c"), 0644))
	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok)
	assert.Equal(t, target, path)
}

func TestWatcher_SingleFileAtomicSave(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "dict.yaml")
	require.NoError(t, os.WriteFile(target, []byte("name: a"), 0644))

	changed := startWatcher(t, target)

	tmp := filepath.Join(dir, "dict.yaml.new")
	require.NoError(t, os.WriteFile(tmp, []byte("name: b"), 0644))
	require.NoError(t, os.Rename(tmp, target))

	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "rename over the watched file must be reported")
	assert.Equal(t, target, path)
}

func TestWatcher_BurstDeliversLastWrite(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "dict.yaml")
	require.NoError(t, os.WriteFile(target, []byte("v1"), 0644))

	w, err := NewWatcher()
	require.NoError(t, err)
	t.Cleanup(func() { w.Stop() })

	var (
		mu   sync.Mutex
		seen []string
	)
	require.NoError(t, w.Watch(target, func(p string) {
		data, _ := os.ReadFile(p)
		mu.Lock()
		seen = append(seen, string(data))
		mu.Unlock()
	}))
	time.Sleep(50 * time.Millisecond)

	// Two saves closer together than the debounce window.
	require.NoError(t, os.WriteFile(target, []byte("v2"), 0644))
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, os.WriteFile(target, []byte("v3"), 0644))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) > 0 && seen[len(seen)-1] == "v3"
	}, 2*time.Second, 10*time.Millisecond, "the last write must reach the callback")
}

func TestWatcher_MissingPath(t *testing.T) {
	w, err := NewWatcher()
	require.NoError(t, err)
	defer w.Stop()

	err = w.Watch(filepath.Join(t.TempDir(), "missing"), func(string) {})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

// =============================================================================
// Lifecycle
// =============================================================================

func TestWatcher_Latency(t *testing.T) {
	dir := t.TempDir()
	testFile := filepath.Join(dir, "latency.txt")
	require.NoError(t, os.WriteFile(testFile, []byte("initial"), 0644))

	w, err := NewWatcher()
	require.NoError(t, err)
	defer w.Stop()

	var callbackTime time.Time
	var mu sync.Mutex
	err = w.Watch(dir, func(path string) {
		mu.Lock()
		callbackTime = time.Now()
		mu.Unlock()
	})
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)

	writeTime := time.Now()
	require.NoError(t, os.WriteFile(testFile, []byte("changed"), 0644))

	time.Sleep(500 * time.Millisecond)

	mu.Lock()
	latency := callbackTime.Sub(writeTime)
	mu.Unlock()

	assert.Less(t, latency, 100*time.Millisecond, "callback latency %v exceeds 100ms", latency)
	t.Logf("Callback latency: %v", latency)
}

func TestWatcher_StopCleanup(t *testing.T) {
	dir := t.TempDir()

	w, err := NewWatcher()
	require.NoError(t, err)

	callCount := 0
	var mu sync.Mutex
	err = w.Watch(dir, func(path string) {
		mu.Lock()
		callCount++
		mu.Unlock()
	})
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, w.Stop())

	mu.Lock()
	countAfterStop := callCount
	mu.Unlock()

	os.WriteFile(filepath.Join(dir, "after_stop.txt"), []byte("nope"), 0644)
	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	countAfterWrite := callCount
	mu.Unlock()

	assert.Equal(t, countAfterStop, countAfterWrite, "callbacks fired after Stop()")

	// Double-stop should be safe
	assert.NoError(t, w.Stop())
}
