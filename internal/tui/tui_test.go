package tui

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/handiism/polarview-downloader/internal/config"
	"github.com/handiism/polarview-downloader/internal/download"
	"github.com/handiism/polarview-downloader/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	updated, ok := next.(Model)
	require.True(t, ok)
	return updated
}

// runCmd executes cmd and every command of a resulting batch.
func runCmd(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	if batch, ok := cmd().(tea.BatchMsg); ok {
		for _, c := range batch {
			runCmd(c)
		}
	}
}

func TestModel_ToggleOptions(t *testing.T) {
	m := NewModel(config.DefaultSettings(), nil)

	m = update(t, m, key("m"))
	m = update(t, m, key("k"))
	m = update(t, m, key("v"))

	assert.True(t, m.manifest)
	assert.True(t, m.quicklook)
	assert.True(t, m.verbose)
	assert.Empty(t, m.textInput.Value())
	assert.Contains(t, m.View(), "[x] Write manifest (m)")
}

func TestModel_InvalidDateStaysOnInput(t *testing.T) {
	m := NewModel(config.DefaultSettings(), nil)
	m.textInput.SetValue("2024-13-45")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, StateInput, m.state)
	require.Error(t, m.inputErr)
	assert.Contains(t, m.View(), "invalid date")
	assert.Nil(t, m.manager)
}

func TestModel_LogsAreTrimmedAndFiltered(t *testing.T) {
	m := NewModel(config.DefaultSettings(), nil)
	m.state = StateDownloading

	m = update(t, m, ProgressMsg{Event: download.ProgressEvent{Message: "hidden", Level: download.LevelVerbose}})
	assert.Empty(t, m.logs)

	for i := 0; i < maxLogs+5; i++ {
		m = update(t, m, ProgressMsg{Event: download.ProgressEvent{Message: fmt.Sprintf("msg %d", i), Level: download.LevelInfo}})
	}
	require.Len(t, m.logs, maxLogs)
	assert.Equal(t, "msg 5", m.logs[0].Message)
	assert.Equal(t, fmt.Sprintf("msg %d", maxLogs+4), m.logs[maxLogs-1].Message)
}

func TestModel_InitErrorShowsError(t *testing.T) {
	m := NewModel(config.DefaultSettings(), nil)
	m.state = StateInitializing

	m = update(t, m, InitDoneMsg{Err: model.NewError(model.KindStatus, "GET", "u", nil)})

	assert.Equal(t, StateError, m.state)
	assert.Contains(t, m.View(), "r: new download")

	m = update(t, m, key("r"))
	assert.Equal(t, StateInput, m.state)
	assert.Nil(t, m.err)
}

func TestModel_FullRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/wfs":
			w.Write([]byte(`{"type":"FeatureCollection","features":[` +
				`{"type":"Feature","geometry":{"type":"Point","coordinates":[0,0]},"properties":{"filename":"A.tif"}}]}`))
		case "/images/A.tif.tar.gz":
			w.Write([]byte("archive"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	downloads := t.TempDir()
	settings := config.DefaultSettings()
	settings.WFSURL = srv.URL + "/wfs"
	settings.DownloadBaseURL = srv.URL + "/images"
	settings.DownloadsPath = filepath.Join(downloads, "{date}")

	m := NewModel(settings, nil)
	m.now = func() time.Time { return time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC) }

	// empty input means yesterday
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, StateInitializing, m.state)
	assert.Equal(t, "2024-01-01", m.date.Format(model.DateLayout))

	m = update(t, m, m.initialize()())
	require.Equal(t, StateDownloading, m.state)
	assert.Equal(t, 1, m.scenes)

	m = update(t, m, m.startDownload()())
	require.Equal(t, StateComplete, m.state)
	require.NotNil(t, m.report)
	assert.Equal(t, 1, m.report.Count(model.StatusDownloaded))
	assert.FileExists(t, filepath.Join(downloads, "2024-01-01", "A.tif.tar.gz"))
	assert.Contains(t, m.View(), "Downloaded: 1")
}

func TestSender_DropsMessagesAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan tea.Msg)
	send := sender(ctx, events)
	cancel()

	done := make(chan struct{})
	go func() {
		send(ProgressMsg{Event: download.ProgressEvent{Message: "late"}})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("send blocked after cancel")
	}
}

func TestModel_NewDownloadDrainsAbandonedRun(t *testing.T) {
	m := NewModel(config.DefaultSettings(), nil)
	m.state = StateError
	abandoned := make(chan tea.Msg)
	m.events = abandoned

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 300; i++ {
			abandoned <- ProgressMsg{Event: download.ProgressEvent{Message: "stale"}}
		}
		close(abandoned)
	}()

	next, cmd := m.Update(key("r"))
	require.Equal(t, StateInput, next.(Model).state)
	runCmd(cmd)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("abandoned run still blocked")
	}
}

func TestModel_IgnoresMessagesOfPreviousRun(t *testing.T) {
	m := NewModel(config.DefaultSettings(), nil)
	m.run = 2

	m = update(t, m, ProgressMsg{Event: download.ProgressEvent{Message: "old", Level: download.LevelInfo}, run: 1})
	m = update(t, m, DownloadDoneMsg{Err: context.Canceled, run: 1})

	assert.Equal(t, StateInput, m.state)
	assert.Empty(t, m.logs)
	assert.Nil(t, m.err)
}
