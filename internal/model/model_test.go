package model

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "https://www.polarview.aq/images/104_S1geotiff"

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"manifest", "manifest"},
		{"manifest:2024", "manifest_2024"},
		{"a/b\\c", "a_b_c"},
		{"trailing dots...", "trailing dots"},
		{"  spaced  ", "spaced"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeFileName(tt.input))
		})
	}
}

func TestDownloadURL(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{"tif suffix stripped", "X.tif", testBaseURL + "/X.tif.tar.gz"},
		{"no suffix", "X", testBaseURL + "/X.tif.tar.gz"},
		{"only trailing suffix stripped", "a.tif.b.tif", testBaseURL + "/a.tif.b.tif.tar.gz"},
		{"real scene", "S1B_EW_GRDM_1SDH_20210101T000000_HH.tif", testBaseURL + "/S1B_EW_GRDM_1SDH_20210101T000000_HH.tif.tar.gz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DownloadURL(testBaseURL, tt.filename))
		})
	}
}

func TestDownloadURL_TrailingSlashBase(t *testing.T) {
	assert.Equal(t, testBaseURL+"/X.tif.tar.gz", DownloadURL(testBaseURL+"/", "X.tif"))
}

func TestFileNameFromURL(t *testing.T) {
	assert.Equal(t, "X.tif.tar.gz", FileNameFromURL(testBaseURL+"/X.tif.tar.gz"))
	assert.Equal(t, "X.tif.tar.gz", FileNameFromURL(testBaseURL+"/X.tif.tar.gz?token=1"))
	assert.Equal(t, "plain", FileNameFromURL("plain"))
}

func TestWindowFor(t *testing.T) {
	date := time.Date(2024, 3, 5, 17, 30, 0, 0, time.UTC)
	w := WindowFor(date)

	assert.Equal(t, "2024-03-05T00:00:00Z", w.StartString())
	assert.Equal(t, "2024-03-05T23:59:59Z", w.EndString())
	assert.Equal(t, "2024-03-05T00:00:00Z/2024-03-05T23:59:59Z", w.String())
	assert.True(t, w.End.Before(w.Start.Add(24*time.Hour)))
}

func TestWindowFor_KeepsCalendarDayOfLocalDate(t *testing.T) {
	loc := time.FixedZone("UTC+12", 12*60*60)
	date := time.Date(2024, 12, 31, 23, 0, 0, 0, loc)

	w := WindowFor(date)

	assert.Equal(t, "2024-12-31T00:00:00Z", w.StartString())
	assert.Equal(t, "2024-12-31T23:59:59Z", w.EndString())
}

func TestParseDate(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"", "2024-02-29", false},
		{"yesterday", "2024-02-29", false},
		{"today", "2024-03-01", false},
		{"2023-07-14", "2023-07-14", false},
		{" 2023-07-14 ", "2023-07-14", false},
		{"2023-02-30", "", true},
		{"14/07/2023", "", true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.input), func(t *testing.T) {
			got, err := ParseDate(tt.input, now)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Format(DateLayout))
		})
	}
}

func TestBatch_PathComputation(t *testing.T) {
	cfg := &PathConfig{
		DownloadsPath:          "daily_sar_images/{date}",
		ManifestFileNameFormat: "manifest-{year}{month}{day}",
		ManifestFormat:         ManifestFormatCSV,
	}

	batch := NewBatch(time.Date(2023, 5, 15, 8, 0, 0, 0, time.UTC), cfg)

	assert.Equal(t, filepath.Join("daily_sar_images", "2023-05-15"), batch.Folder)
	assert.Equal(t, filepath.Join("daily_sar_images", "2023-05-15", "manifest-20230515.csv"), batch.ManifestPath)
	assert.Equal(t, "2023-05-15", batch.DateString())
}

func TestBatch_PlainFolderGetsDateSubfolder(t *testing.T) {
	cfg := &PathConfig{DownloadsPath: "daily_sar_images"}

	batch := NewBatch(time.Date(2023, 5, 15, 0, 0, 0, 0, time.UTC), cfg)

	assert.Equal(t, filepath.Join("daily_sar_images", "2023-05-15"), batch.Folder)
	assert.Equal(t, filepath.Join("daily_sar_images", "2023-05-15", "manifest.txt"), batch.ManifestPath)
}

func TestBatch_AddScene(t *testing.T) {
	batch := NewBatch(time.Date(2023, 5, 15, 0, 0, 0, 0, time.UTC), &PathConfig{DownloadsPath: "out/{date}"})

	scene, added := batch.AddScene("X.tif", testBaseURL)
	require.True(t, added)
	assert.Equal(t, testBaseURL+"/X.tif.tar.gz", scene.DownloadURL)
	assert.Equal(t, "X.tif.tar.gz", scene.FileName)
	assert.Equal(t, filepath.Join("out", "2023-05-15", "X.tif.tar.gz"), scene.Path)

	// "X" derives the same archive as "X.tif".
	dup, added := batch.AddScene("X", testBaseURL)
	assert.False(t, added)
	assert.Same(t, scene, dup)
	assert.Len(t, batch.Scenes, 1)
}

func TestManifestFormat_Extension(t *testing.T) {
	assert.Equal(t, ".txt", ManifestFormatText.Extension())
	assert.Equal(t, ".csv", ManifestFormatCSV.Extension())
}

func TestKindOf(t *testing.T) {
	statusErr := &Error{Kind: KindStatus, Op: "GET", URL: "http://x", StatusCode: 503}
	wrapped := fmt.Errorf("query: %w", statusErr)

	assert.Equal(t, KindStatus, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, KindStatus))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
	assert.Equal(t, KindCanceled, KindOf(fmt.Errorf("x: %w", context.Canceled)))
	assert.Contains(t, statusErr.Error(), "HTTP 503")
}

func TestNewError_Canceled(t *testing.T) {
	err := NewError(KindNetwork, "GET", "http://x", context.Canceled)

	assert.Equal(t, KindCanceled, err.Kind)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReport_Counts(t *testing.T) {
	report := &Report{Results: []Result{
		{Status: StatusDownloaded, Bytes: 10},
		{Status: StatusSkipped},
		{Status: StatusFailed, Err: errors.New("boom")},
		{Status: StatusDownloaded, Bytes: 5},
	}}

	assert.Equal(t, 2, report.Count(StatusDownloaded))
	assert.Equal(t, 1, report.Count(StatusSkipped))
	assert.Equal(t, 1, report.Count(StatusFailed))
	assert.Equal(t, int64(15), report.BytesReceived())
	assert.Len(t, report.Failed(), 1)
	assert.False(t, report.Failed()[0].OK())
}
