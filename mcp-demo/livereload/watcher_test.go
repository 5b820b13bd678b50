package livereload

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const (
	testDebounce = 50 * time.Millisecond
	quietPeriod  = 300 * time.Millisecond
)

var watched = []string{"index.html", "editor.js", "chat-engine.js", "defaults.js", "fetch-models.js"}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

// startWatcher runs a watcher over dir until the test ends.
func startWatcher(t *testing.T, dir string, files []string) *Watcher {
	t.Helper()
	w, err := NewWatcher(dir, files, testDebounce, zaptest.NewLogger(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return w
}

func expectChange(t *testing.T, w *Watcher, want string) {
	t.Helper()
	select {
	case got := <-w.Changes():
		assert.Equal(t, want, got)
	case <-time.After(3 * time.Second):
		t.Fatalf("no change reported for %s", want)
	}
}

func expectQuiet(t *testing.T, w *Watcher) {
	t.Helper()
	select {
	case got := <-w.Changes():
		t.Fatalf("unexpected change reported for %s", got)
	case <-time.After(quietPeriod):
	}
}

func TestEachWatchedFileTriggersOneChange(t *testing.T) {
	dir := t.TempDir()
	for _, name := range watched {
		writeFile(t, dir, name, "v1")
	}
	w := startWatcher(t, dir, watched)

	for _, name := range watched {
		writeFile(t, dir, name, "v2")
		expectChange(t, w, name)
		expectQuiet(t, w)
	}
}

func TestUnwatchedFileTriggersNothing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "index.html", "v1")
	w := startWatcher(t, dir, watched)

	writeFile(t, dir, "notes.txt", "hello")
	writeFile(t, dir, "index.html.bak", "hello")
	expectQuiet(t, w)
}

func TestBurstIsDebounced(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "editor.js", "v1")
	w := startWatcher(t, dir, watched)

	for i := 0; i < 5; i++ {
		writeFile(t, dir, "editor.js", "burst")
	}
	expectChange(t, w, "editor.js")
	expectQuiet(t, w)
}

func TestCreatingWatchedFileTriggersChange(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir, watched)

	writeFile(t, dir, "defaults.js", "new")
	expectChange(t, w, "defaults.js")
	expectQuiet(t, w)
}

func TestAtomicSaveTriggersOneChange(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "index.html", "v1")
	w := startWatcher(t, dir, watched)

	writeFile(t, dir, ".index.html.swp", "v2")
	require.NoError(t, os.Rename(filepath.Join(dir, ".index.html.swp"), filepath.Join(dir, "index.html")))
	expectChange(t, w, "index.html")
	expectQuiet(t, w)
}

func TestWatchesFilesInSubdirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "js"), 0755))
	w := startWatcher(t, dir, []string{"js/app.js"})

	writeFile(t, dir, "js/app.js", "v1")
	expectChange(t, w, "js/app.js")
}

func TestMissingDirectory(t *testing.T) {
	_, err := NewWatcher(t.TempDir(), []string{"missing/app.js"}, testDebounce, nil)
	assert.Error(t, err)
}

func TestChangesClosedAfterRun(t *testing.T) {
	w, err := NewWatcher(t.TempDir(), watched, testDebounce, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, w.Run(ctx))

	_, ok := <-w.Changes()
	assert.False(t, ok)
}
