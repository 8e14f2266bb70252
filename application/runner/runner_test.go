package runner

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"site_uitest/domain/entities"
	"site_uitest/infrastructure/config"
	"site_uitest/infrastructure/storage"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	categories, err := entities.ParseCategories("smoke")
	require.NoError(t, err)
	return &config.Config{
		BaseURL:    config.DefaultBaseURL,
		Headless:   true,
		Timeout:    10 * time.Second,
		NavTimeout: 30 * time.Second,
		Browser:    config.BrowserFirefox,
		Driver:     config.DriverPlaywright,
		Categories: categories,
		Viewport:   config.Viewport{Width: 1920, Height: 1080},
		LogLevel:   logrus.InfoLevel,
	}
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// fakeGo writes a shell script standing in for the go binary
func fakeGo(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake go binary is a shell script")
	}
	path := filepath.Join(t.TempDir(), "go")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755))
	return path
}

func TestArgs(t *testing.T) {
	r := New(testConfig(t), nil, quietLogger())

	assert.Equal(t, []string{"test", "-json", "-count=1", "./suite/..."}, r.Args(Options{}))
	assert.Equal(t,
		[]string{"test", "-json", "-count=1", "-parallel", "4", "-run", "Home", "-timeout", "5m0s", "-short", "./suite"},
		r.Args(Options{Packages: []string{"./suite"}, Parallel: 4, Run: "Home", Timeout: 5 * time.Minute, Short: true}))
}

func TestRunCollectsResults(t *testing.T) {
	root := t.TempDir()
	// the suite process records under the run id it was handed
	suiteStore, err := storage.NewArtifactStore(root, "run-2")
	require.NoError(t, err)
	shot, err := suiteStore.PathFor("TestBrowser_Home_Login", "failure", "png")
	require.NoError(t, err)
	require.NoError(t, suiteStore.Record("TestBrowser_Home_Login", shot))

	store, err := storage.NewArtifactStore(root, "")
	require.NoError(t, err)
	r := New(testConfig(t), store, quietLogger())
	r.newID = func() string { return "run-2" }
	r.goBin = fakeGo(t, `
echo '{"Action":"run","Package":"site_uitest/suite","Test":"TestBrowser_Home_Login"}'
echo "{\"Action\":\"output\",\"Package\":\"site_uitest/suite\",\"Test\":\"TestBrowser_Home_Login\",\"Output\":\"browser=$UITEST_BROWSER categories=$UITEST_CATEGORIES run=$UITEST_RUN_ID\\n\"}"
echo '{"Action":"fail","Package":"site_uitest/suite","Test":"TestBrowser_Home_Login","Elapsed":0.5}'
echo '{"Action":"fail","Package":"site_uitest/suite","Elapsed":0.6}'
exit 1
`)

	var raw bytes.Buffer
	rep, err := r.Run(context.Background(), Options{Raw: &raw})
	require.NoError(t, err)
	require.Len(t, rep.Results, 1)

	res := rep.Results[0]
	assert.Equal(t, entities.TestStatusFail, res.Status)
	assert.Contains(t, res.Output, "browser=firefox categories=smoke run="+rep.RunID)
	assert.Len(t, res.Artifacts, 1)
	assert.True(t, rep.Failed())
	assert.Equal(t, "firefox", rep.Browser)
	assert.Equal(t, "run-2", rep.RunID)
	assert.Contains(t, raw.String(), "TestBrowser_Home_Login")
}

func TestRunIgnoresArtifactsOfEarlierRuns(t *testing.T) {
	root := t.TempDir()
	earlier, err := storage.NewArtifactStore(root, "run-1")
	require.NoError(t, err)
	for _, kind := range []string{"failure", "video"} {
		path, err := earlier.PathFor("TestBrowser_Home_Hero", kind, "png")
		require.NoError(t, err)
		require.NoError(t, earlier.Record("TestBrowser_Home_Hero", path))
	}

	store, err := storage.NewArtifactStore(root, "")
	require.NoError(t, err)
	r := New(testConfig(t), store, quietLogger())
	r.newID = func() string { return "run-2" }
	r.goBin = fakeGo(t, `
echo '{"Action":"run","Package":"site_uitest/suite","Test":"TestBrowser_Home_Hero"}'
echo '{"Action":"pass","Package":"site_uitest/suite","Test":"TestBrowser_Home_Hero","Elapsed":0.4}'
echo '{"Action":"pass","Package":"site_uitest/suite","Elapsed":0.5}'
`)

	rep, err := r.Run(context.Background(), Options{})
	require.NoError(t, err)
	require.Len(t, rep.Results, 1)
	assert.Equal(t, entities.TestStatusPass, rep.Results[0].Status)
	assert.Empty(t, rep.Results[0].Artifacts)
	assert.False(t, rep.Failed())
}

func TestRunWithoutResultsIsAnError(t *testing.T) {
	r := New(testConfig(t), nil, quietLogger())
	r.goBin = fakeGo(t, "echo 'go: cannot find main module' >&2\nexit 1\n")

	_, err := r.Run(context.Background(), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot find main module")
}

func TestRunHonoursCancellation(t *testing.T) {
	r := New(testConfig(t), nil, quietLogger())
	r.goBin = fakeGo(t, "exec sleep 5\n")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err := r.Run(ctx, Options{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
