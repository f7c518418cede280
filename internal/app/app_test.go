package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/ahotrie/internal/adapters/bbolt"
	"github.com/corey/ahotrie/internal/adapters/socket"
	"github.com/corey/ahotrie/internal/domain/dictionary"
	"github.com/corey/ahotrie/internal/domain/trie"
)

var _ socket.AppQueries = (*App)(nil)

func newTestApp(t *testing.T, src Source) *App {
	t.Helper()
	root := t.TempDir()
	a, err := New(Config{
		ProjectRoot: root,
		Source:      src,
		SocketPath:  filepath.Join(root, "test.sock"),
		NoHTTP:      true,
	})
	require.NoError(t, err)
	require.NoError(t, a.Start())
	t.Cleanup(func() { a.Stop() })
	return a
}

// waitFor polls cond until it holds or two seconds pass.
func waitFor(t *testing.T, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return false
}

// =============================================================================
// Construction
// =============================================================================

func TestNew_RequiresRootAndSource(t *testing.T) {
	_, err := New(Config{Source: Source{Keywords: []string{"a"}}})
	assert.ErrorContains(t, err, "project root required")

	_, err = New(Config{ProjectRoot: t.TempDir()})
	assert.ErrorContains(t, err, "no dictionary source")
}

func TestNew_BadSourceFails(t *testing.T) {
	_, err := New(Config{
		ProjectRoot: t.TempDir(),
		Source:      Source{Files: []string{"/does/not/exist.yaml"}},
	})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

// =============================================================================
// Daemon round trip
// =============================================================================

func TestApp_ServesQueriesOverSocket(t *testing.T) {
	a := newTestApp(t, Source{Builtins: []string{"pronouns"}})
	client := socket.NewClient(a.Server.Addr())

	result, err := client.Parse("ushers: she and his")
	require.NoError(t, err)
	assert.Equal(t, []trie.Emit{
		trie.NewEmit(8, 10, "she"),
		trie.NewEmit(16, 18, "his"),
	}, result.Emits)

	health, err := client.Health()
	require.NoError(t, err)
	assert.Equal(t, "pronouns", health.Dictionary.Name)
	assert.Equal(t, 6, health.Dictionary.Keywords)
	assert.Equal(t, 0, health.Dictionary.Reloads)
	assert.True(t, health.Dictionary.Config.OnlyWholeWords)
}

func TestApp_ReplaceUsesDictionaryReplacements(t *testing.T) {
	a := newTestApp(t, Source{Builtins: []string{"greek"}})

	got, err := a.Replace("alpha and BETA", nil)
	require.NoError(t, err)
	assert.Equal(t, "α and β", got)
}

func TestApp_ReloadOverSocket(t *testing.T) {
	dir := t.TempDir()
	path := writeDict(t, dir, "d.yaml", "name: d\nkeywords: [alpha]\n")
	a := newTestApp(t, Source{Files: []string{path}})

	writeDict(t, dir, "d.yaml", "name: d\nkeywords: [alpha, beta]\n")
	result, err := socket.NewClient(a.Server.Addr()).Reload()
	require.NoError(t, err)
	assert.Equal(t, 2, result.Dictionary.Keywords)
	assert.GreaterOrEqual(t, result.Dictionary.Reloads, 1)
}

func TestApp_HotReloadOnFileChange(t *testing.T) {
	dir := t.TempDir()
	path := writeDict(t, dir, "d.yaml", "name: d\nkeywords: [alpha]\n")
	a := newTestApp(t, Source{Files: []string{path}})
	time.Sleep(50 * time.Millisecond)

	writeDict(t, dir, "d.yaml", "name: d\nkeywords: [alpha, beta]\n")

	ok := waitFor(t, func() bool {
		found, err := a.Engine.ContainsMatch("beta")
		return err == nil && found
	})
	assert.True(t, ok, "dictionary change should be picked up")
}

func TestApp_BrokenEditKeepsPrevious(t *testing.T) {
	dir := t.TempDir()
	path := writeDict(t, dir, "d.yaml", "name: d\nkeywords: [alpha]\n")
	a := newTestApp(t, Source{Files: []string{path}})

	writeDict(t, dir, "d.yaml", "keywords: [beta]\n") // no name
	_, err := a.Reload()
	assert.ErrorIs(t, err, dictionary.ErrInvalid)

	found, err := a.Engine.ContainsMatch("alpha")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "d", a.DictionaryInfo().Name)
}

func TestApp_StoredDictionaryHotReload(t *testing.T) {
	root := t.TempDir()
	dbPath := filepath.Join(root, "ahotrie.db")

	store, err := bbolt.NewStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.SaveDictionary(dictionary.New("food", "sugar")))
	require.NoError(t, store.Close())

	a, err := New(Config{
		ProjectRoot: root,
		Source:      Source{Stored: []string{"food"}},
		DBPath:      dbPath,
		SocketPath:  filepath.Join(root, "test.sock"),
		NoHTTP:      true,
	})
	require.NoError(t, err)
	require.NoError(t, a.Start())
	defer a.Stop()
	time.Sleep(50 * time.Millisecond)

	store, err = bbolt.NewStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.SaveDictionary(dictionary.New("food", "sugar", "cocoa")))
	require.NoError(t, store.Close())

	ok := waitFor(t, func() bool {
		found, err := a.Engine.ContainsMatch("cocoa")
		return err == nil && found
	})
	assert.True(t, ok, "store change should be picked up")
}

func TestApp_StopIsIdempotent(t *testing.T) {
	a := newTestApp(t, Source{Keywords: []string{"x"}})
	require.NoError(t, a.Stop())
	require.NoError(t, a.Stop())

	_, err := os.Stat(a.Server.Addr())
	assert.True(t, os.IsNotExist(err))
}
