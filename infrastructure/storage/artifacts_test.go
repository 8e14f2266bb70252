package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeName(t *testing.T) {
	assert.Equal(t, "TestHome_Hero_title", SafeName("TestHome/Hero title"))
	assert.Equal(t, "TestMobile_375x667", SafeName("TestMobile/375x667/"))
}

func TestPathForAndRecord(t *testing.T) {
	root := t.TempDir()
	store, err := NewArtifactStore(root, "")
	require.NoError(t, err)
	store.(*artifactStore).now = func() time.Time { return time.Date(2024, 11, 20, 10, 0, 0, 0, time.UTC) }

	path, err := store.PathFor("TestHome/Login", "screenshot", "png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "TestHome_Login", "screenshot_20241120_100000.000.png"), path)
	require.NoError(t, os.WriteFile(path, []byte("png"), 0644))

	require.NoError(t, store.Record("TestHome/Login", path))
	require.NoError(t, store.Record("TestHome/Login", path))

	manifest, err := store.Artifacts(LocalRun)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("TestHome_Login", "screenshot_20241120_100000.000.png")}, manifest["TestHome/Login"])
}

func TestRecordIsSharedAcrossStores(t *testing.T) {
	root := t.TempDir()
	a, err := NewArtifactStore(root, "run-1")
	require.NoError(t, err)
	b, err := NewArtifactStore(root, "run-1")
	require.NoError(t, err)

	require.NoError(t, a.Record("TestA", filepath.Join(root, "a.png")))
	require.NoError(t, b.Record("TestB", filepath.Join(root, "b.png")))

	manifest, err := a.Artifacts("run-1")
	require.NoError(t, err)
	assert.Len(t, manifest, 2)
}

func TestArtifactsAreScopedToTheirRun(t *testing.T) {
	root := t.TempDir()
	first, err := NewArtifactStore(root, "run-1")
	require.NoError(t, err)
	shot, err := first.PathFor("TestBrowser_Home_Hero", "failure", "png")
	require.NoError(t, err)
	require.NoError(t, first.Record("TestBrowser_Home_Hero", shot))

	second, err := NewArtifactStore(root, "run-2")
	require.NoError(t, err)
	require.NoError(t, second.Record("TestBrowser_Home_Login", filepath.Join(root, "login.png")))

	manifest, err := second.Artifacts("run-2")
	require.NoError(t, err)
	assert.NotContains(t, manifest, "TestBrowser_Home_Hero")
	assert.Equal(t, []string{"login.png"}, manifest["TestBrowser_Home_Login"])

	manifest, err = second.Artifacts("run-1")
	require.NoError(t, err)
	assert.Len(t, manifest["TestBrowser_Home_Hero"], 1)

	manifest, err = second.Artifacts("run-3")
	require.NoError(t, err)
	assert.Empty(t, manifest)
}

func TestManifestWithoutRunsLoadsEmpty(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, manifestFile), []byte(`{"TestA": ["a.png"]}`), 0644))

	store, err := NewArtifactStore(root, "run-1")
	require.NoError(t, err)
	manifest, err := store.Artifacts("run-1")
	require.NoError(t, err)
	assert.Empty(t, manifest)

	require.NoError(t, store.Record("TestB", filepath.Join(root, "b.png")))
	manifest, err = store.Artifacts("run-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"b.png"}, manifest["TestB"])
}

func TestConcurrentRecord(t *testing.T) {
	store, err := NewArtifactStore(t.TempDir(), "run-1")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.Record(fmt.Sprintf("Test%d", i%4), fmt.Sprintf("shot-%d.png", i)))
		}()
	}
	wg.Wait()

	manifest, err := store.Artifacts("run-1")
	require.NoError(t, err)
	total := 0
	for _, paths := range manifest {
		total += len(paths)
	}
	assert.Equal(t, 20, total)
}
