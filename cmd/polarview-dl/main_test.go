package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/handiism/polarview-downloader/internal/download"
	"github.com/handiism/polarview-downloader/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cli "gopkg.in/urfave/cli.v1"
)

func newPolarViewServer(t *testing.T, wfsStatus int, filenames ...string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/wfs":
			if wfsStatus != http.StatusOK {
				http.Error(w, "unavailable", wfsStatus)
				return
			}
			var items []string
			for _, name := range filenames {
				items = append(items, fmt.Sprintf(
					`{"type":"Feature","geometry":{"type":"Point","coordinates":[0,0]},"properties":{"filename":%q}}`, name))
			}
			w.Write([]byte(`{"type":"FeatureCollection","features":[` + strings.Join(items, ",") + `]}`))
		case strings.HasPrefix(r.URL.Path, "/images/"):
			w.Write([]byte("data"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeConfig(t *testing.T, srv *httptest.Server, downloads string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := fmt.Sprintf("wfs_url: %s/wfs\ndownload_base_url: %s/images\ndownloads_path: %s\nlog_level: error\n",
		srv.URL, srv.URL, downloads)
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))
	return path
}

// runApp runs the CLI and returns stdout, stderr and the exit code passed
// to cli.OsExiter (0 when it was not called).
func runApp(t *testing.T, args ...string) (string, string, int) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	code := 0

	oldExiter, oldErrWriter := cli.OsExiter, cli.ErrWriter
	cli.OsExiter = func(c int) { code = c }
	cli.ErrWriter = &stderr
	defer func() {
		cli.OsExiter, cli.ErrWriter = oldExiter, oldErrWriter
	}()

	app := createCliApp()
	app.Writer = &stdout
	app.ErrWriter = &stderr
	_ = app.Run(append([]string{"polarview-dl"}, args...))

	return stdout.String(), stderr.String(), code
}

func TestApp_Query(t *testing.T) {
	srv := newPolarViewServer(t, http.StatusOK, "A.tif", "B")
	cfg := writeConfig(t, srv, t.TempDir())

	stdout, _, code := runApp(t, "query", "--config", cfg, "--date", "2024-01-01")

	assert.Zero(t, code)
	assert.Equal(t, srv.URL+"/images/A.tif.tar.gz\n"+srv.URL+"/images/B.tif.tar.gz\n", stdout)
}

func TestApp_Download(t *testing.T) {
	srv := newPolarViewServer(t, http.StatusOK, "A.tif")
	downloads := t.TempDir()
	cfg := writeConfig(t, srv, downloads)

	stdout, _, code := runApp(t, "--config", cfg, "--date", "2024-01-01", "--manifest")

	assert.Zero(t, code)
	assert.Contains(t, stdout, "1 downloaded, 0 skipped, 0 failed")
	assert.FileExists(t, filepath.Join(downloads, "2024-01-01", "A.tif.tar.gz"))
	assert.FileExists(t, filepath.Join(downloads, "2024-01-01", "manifest.txt"))
}

func TestApp_DownloadEmptyResultSucceeds(t *testing.T) {
	srv := newPolarViewServer(t, http.StatusOK)
	cfg := writeConfig(t, srv, t.TempDir())

	stdout, _, code := runApp(t, "download", "--config", cfg, "--date", "2024-01-01")

	assert.Zero(t, code)
	assert.Contains(t, stdout, "No Sentinel-1 scenes found for 2024-01-01")
}

func TestApp_QueryFailureIsReportedAndExitsZero(t *testing.T) {
	srv := newPolarViewServer(t, http.StatusInternalServerError, "A.tif")
	downloads := t.TempDir()
	cfg := writeConfig(t, srv, downloads)

	stdout, _, code := runApp(t, "--config", cfg, "--date", "2024-01-01")

	assert.Zero(t, code)
	assert.Contains(t, stdout, "Could not retrieve scene list")
	assert.Contains(t, stdout, "HTTP 500")
	assert.NoDirExists(t, filepath.Join(downloads, "2024-01-01"))
}

func TestApp_QueryFailureWithFailFlagExitsOne(t *testing.T) {
	srv := newPolarViewServer(t, http.StatusInternalServerError, "A.tif")
	downloads := t.TempDir()
	cfg := writeConfig(t, srv, downloads)

	_, stderr, code := runApp(t, "download", "--config", cfg, "--date", "2024-01-01", "--fail-on-query-error")

	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "HTTP 500")
	assert.NoDirExists(t, filepath.Join(downloads, "2024-01-01"))
}

func TestApp_QueryCommandFailure(t *testing.T) {
	srv := newPolarViewServer(t, http.StatusInternalServerError)
	cfg := writeConfig(t, srv, t.TempDir())

	stdout, stderr, code := runApp(t, "query", "--config", cfg, "--date", "2024-01-01")
	assert.Zero(t, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Could not retrieve scene list")

	_, _, code = runApp(t, "query", "--config", cfg, "--date", "2024-01-01", "--fail-on-query-error")
	assert.Equal(t, exitFailure, code)
}

func TestApp_InvalidDateExitsOne(t *testing.T) {
	_, stderr, code := runApp(t, "config", "--date", "01/02/2024")

	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "invalid date")
}

func TestApp_ConfigPrintsEffectiveSettings(t *testing.T) {
	saved := filepath.Join(t.TempDir(), "saved.yaml")

	stdout, _, code := runApp(t, "config", "--date", "2024-05-06", "--rate", "2", "--save", saved)

	assert.Zero(t, code)
	assert.Contains(t, stdout, "target_date: \"2024-05-06\"")
	assert.Contains(t, stdout, "requests_per_second: 2")
	assert.FileExists(t, saved)
}

func TestApp_Version(t *testing.T) {
	stdout, _, code := runApp(t, "version")

	assert.Zero(t, code)
	assert.Equal(t, "polarview-dl dev\n", stdout)
}

func TestExitError(t *testing.T) {
	assert.Nil(t, exitError(context.Background(), nil))

	err := exitError(context.Background(), model.NewError(model.KindStatus, "GET", "u", nil))
	require.NotNil(t, err)
	assert.Equal(t, exitFailure, err.(cli.ExitCoder).ExitCode())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = exitError(ctx, ctx.Err())
	assert.Equal(t, exitInterrupted, err.(cli.ExitCoder).ExitCode())
}

func TestRenderer_FiltersVerbose(t *testing.T) {
	var buf bytes.Buffer
	r := newRenderer(&buf, false)

	events := make(chan any, 4)
	events <- download.ProgressEvent{Message: "hidden", Level: download.LevelVerbose}
	events <- download.ProgressEvent{Message: "shown", Level: download.LevelSuccess}
	events <- download.FileProgress{Written: 10, Total: 20}
	close(events)
	r.run(events)

	assert.Equal(t, "✓ shown\n", buf.String())
}

func TestProgressLine(t *testing.T) {
	scene := &model.Scene{FileName: "X.tif.tar.gz"}

	line := progressLine(download.FileProgress{Scene: scene, Written: 1024, Total: 2048})
	assert.Equal(t, "[##########----------]  50%  1.0 KiB / 2.0 KiB  X.tif.tar.gz", line)

	line = progressLine(download.FileProgress{Scene: scene, Written: 512})
	assert.Equal(t, "     512 B  X.tif.tar.gz", line)
}
