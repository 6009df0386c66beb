package download

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/handiism/polarview-downloader/internal/config"
	"github.com/handiism/polarview-downloader/internal/http"
	ioutils "github.com/handiism/polarview-downloader/internal/io"
	"github.com/handiism/polarview-downloader/internal/manifest"
	"github.com/handiism/polarview-downloader/internal/model"
	"github.com/handiism/polarview-downloader/internal/polarview"
	"go.uber.org/zap"
)

// ErrNotInitialized is returned by StartDownloads before Initialize succeeded.
var ErrNotInitialized = errors.New("manager not initialized")

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a download progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// FileProgress reports the transfer state of the scene being downloaded.
type FileProgress struct {
	Scene   *model.Scene
	Index   int // zero-based position in the batch
	Count   int // number of scenes in the batch
	Written int64
	Total   int64 // 0 when the server sent no Content-Length
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithFileProgress sets a callback receiving byte progress of each download.
func WithFileProgress(fn func(FileProgress)) Option {
	return func(m *Manager) {
		m.onFile = fn
	}
}

// WithClock overrides the clock used to resolve the default target date.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// Manager coordinates the scene downloads of one target date.
type Manager struct {
	settings   *config.Settings
	logger     *zap.Logger
	query      *polarview.Client
	httpClient *http.Client
	quicklook  *ioutils.QuicklookService
	manifest   *manifest.Creator
	now        func() time.Time

	batch    *model.Batch
	features int

	receivedBytes  int64
	totalFiles     int32
	processedFiles int32

	onProgress func(ProgressEvent)
	onFile     func(FileProgress)
}

// NewManager creates a new download Manager.
//
// Metadata queries use settings.QueryTimeout and scene downloads use
// settings.DownloadTimeout as inactivity timeouts.
func NewManager(settings *config.Settings, onProgress func(ProgressEvent), opts ...Option) *Manager {
	pathCfg := settings.ToPathConfig()
	httpClient := http.NewClient(http.Options{
		Timeout:           settings.DownloadTimeout,
		UserAgent:         settings.UserAgent,
		RequestsPerSecond: settings.RequestsPerSecond,
		ChunkSize:         settings.ChunkSize,
	})

	m := &Manager{
		settings:   settings,
		logger:     zap.NewNop(),
		query:      polarview.NewClient(settings, nil),
		httpClient: httpClient,
		quicklook:  ioutils.NewQuicklookService(settings.QuicklookMaxSize),
		manifest:   manifest.NewCreator(pathCfg.ManifestFormat),
		now:        time.Now,
		onProgress: onProgress,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Initialize resolves the target date, queries the WFS service and builds
// the batch of scenes to download.
//
// A failed query is returned as a *model.Error and no batch is built. An
// empty result is not an error; the batch then has no scenes.
func (m *Manager) Initialize(ctx context.Context) error {
	date, err := m.settings.Date(m.now())
	if err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Invalid target date: %v", err), Level: LevelError})
		return err
	}

	batch := model.NewBatch(date, m.settings.ToPathConfig())
	m.progress(ProgressEvent{Message: fmt.Sprintf("Querying Sentinel-1 scenes for %s...", batch.DateString()), Level: LevelInfo})
	m.logger.Debug("querying wfs",
		zap.String("date", batch.DateString()),
		zap.String("filter", polarview.NewQuery(m.settings, date).Filter()))

	features, err := m.query.Features(ctx, date)
	if err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Could not retrieve scene list: %v", err), Level: LevelError})
		m.logger.Error("wfs query failed",
			zap.String("date", batch.DateString()),
			zap.Stringer("kind", model.KindOf(err)),
			zap.Error(err))
		return err
	}

	for _, f := range features {
		if !f.HasFilename() {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Feature %s has no filename, ignored", f.ID), Level: LevelVerbose})
			continue
		}
		if _, added := batch.AddScene(f.Filename, m.settings.DownloadBaseURL); !added {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Duplicate scene %s, ignored", f.Filename), Level: LevelVerbose})
		}
	}

	m.batch = batch
	m.features = len(features)
	atomic.StoreInt32(&m.totalFiles, int32(len(batch.Scenes)))
	atomic.StoreInt32(&m.processedFiles, 0)
	atomic.StoreInt64(&m.receivedBytes, 0)

	if len(features) == 0 {
		m.progress(ProgressEvent{Message: fmt.Sprintf("No Sentinel-1 scenes found for %s", batch.DateString()), Level: LevelWarning})
		return nil
	}

	m.progress(ProgressEvent{Message: fmt.Sprintf("Found %d scenes, %d to download", len(features), len(batch.Scenes)), Level: LevelInfo})
	m.logger.Info("query finished",
		zap.String("date", batch.DateString()),
		zap.Int("features", len(features)),
		zap.Int("scenes", len(batch.Scenes)))

	return nil
}

// StartDownloads downloads all scenes of the batch one after another.
//
// Scenes already on disk are skipped without network access. A failed
// scene is logged and recorded in the report, and the next scene is
// processed. Cancelling ctx aborts the current transfer and stops the
// loop; the partial report is returned together with the context error.
func (m *Manager) StartDownloads(ctx context.Context) (*model.Report, error) {
	if m.batch == nil {
		return nil, ErrNotInitialized
	}

	report := &model.Report{Batch: m.batch, Features: m.features}

	if err := ioutils.EnsureDir(m.batch.Folder); err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error creating directory: %v", err), Level: LevelError})
		return report, model.NewError(model.KindIO, "mkdir", m.batch.Folder, err)
	}
	// A live transfer touches its part file at least once per download timeout.
	if removed, err := ioutils.RemoveStaleParts(m.batch.Folder, m.settings.DownloadTimeout); err != nil {
		m.logger.Warn("could not remove stale part files", zap.String("folder", m.batch.Folder), zap.Error(err))
	} else if len(removed) > 0 {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Removed %d stale partial files", len(removed)), Level: LevelVerbose})
	}

	if len(m.batch.Scenes) > 0 {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Starting download of %d scenes into %s", len(m.batch.Scenes), m.batch.Folder), Level: LevelInfo})
	}

	for i, scene := range m.batch.Scenes {
		if ctx.Err() != nil {
			break
		}

		res := m.downloadScene(ctx, i, scene)
		report.Results = append(report.Results, res)
		atomic.AddInt32(&m.processedFiles, 1)

		if model.IsKind(res.Err, model.KindCanceled) {
			break
		}
	}

	if m.settings.CreateManifest {
		m.writeManifest(report)
	}

	m.summarize(report)

	if err := ctx.Err(); err != nil {
		return report, model.NewError(model.KindCanceled, "download", m.batch.Folder, err)
	}
	return report, nil
}

// GetProgress returns current download progress. received counts the bytes
// of finished downloads plus the bytes of the current transfer.
func (m *Manager) GetProgress() (received int64, filesProcessed, filesTotal int32) {
	return atomic.LoadInt64(&m.receivedBytes),
		atomic.LoadInt32(&m.processedFiles), atomic.LoadInt32(&m.totalFiles)
}

// Batch returns the batch built by Initialize, or nil.
func (m *Manager) Batch() *model.Batch {
	return m.batch
}

// Links returns the download URLs of the batch in query order.
func (m *Manager) Links() []string {
	if m.batch == nil {
		return nil
	}
	links := make([]string, len(m.batch.Scenes))
	for i, scene := range m.batch.Scenes {
		links[i] = scene.DownloadURL
	}
	return links
}

func (m *Manager) downloadScene(ctx context.Context, index int, scene *model.Scene) model.Result {
	count := len(m.batch.Scenes)
	log := m.logger.With(zap.String("file", scene.FileName), zap.String("url", scene.DownloadURL))

	if ioutils.FileExists(scene.Path) {
		m.progress(ProgressEvent{Message: fmt.Sprintf("File %s already exists, skipping", scene.FileName), Level: LevelVerbose})
		log.Debug("skipped existing file")
		return model.Result{Scene: scene, Status: model.StatusSkipped}
	}

	m.progress(ProgressEvent{Message: fmt.Sprintf("Downloading %s (%d/%d)...", scene.FileName, index+1, count), Level: LevelInfo})

	base := atomic.LoadInt64(&m.receivedBytes)
	start := time.Now()
	n, err := m.httpClient.DownloadFile(ctx, scene.DownloadURL, scene.Path, func(written, total int64) {
		atomic.StoreInt64(&m.receivedBytes, base+written)
		if m.onFile != nil {
			m.onFile(FileProgress{Scene: scene, Index: index, Count: count, Written: written, Total: total})
		}
	})
	elapsed := time.Since(start)

	if err != nil {
		atomic.StoreInt64(&m.receivedBytes, base)
		if model.IsKind(err, model.KindCanceled) {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Download of %s canceled", scene.FileName), Level: LevelWarning})
		} else {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error downloading %s: %v", scene.DownloadURL, err), Level: LevelError})
		}
		log.Warn("download failed",
			zap.Stringer("kind", model.KindOf(err)),
			zap.Int64("bytes", n),
			zap.Error(err))
		return model.Result{Scene: scene, Status: model.StatusFailed, Bytes: n, Duration: elapsed, Err: err}
	}

	atomic.StoreInt64(&m.receivedBytes, base+n)
	m.progress(ProgressEvent{Message: fmt.Sprintf("File %s downloaded (%s)", scene.FileName, FormatBytes(n)), Level: LevelSuccess})
	log.Info("downloaded", zap.Int64("bytes", n), zap.Duration("elapsed", elapsed))

	if m.settings.CreateQuicklook {
		m.createQuicklook(ctx, scene)
	}

	return model.Result{Scene: scene, Status: model.StatusDownloaded, Bytes: n, Duration: elapsed}
}

func (m *Manager) createQuicklook(ctx context.Context, scene *model.Scene) {
	path, err := m.quicklook.CreateFromArchive(ctx, scene.Path)
	if err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error creating quicklook for %s: %v", scene.FileName, err), Level: LevelWarning})
		return
	}
	m.progress(ProgressEvent{Message: fmt.Sprintf("Created quicklook %s", path), Level: LevelVerbose})
}

func (m *Manager) writeManifest(report *model.Report) {
	content, err := m.manifest.Create(report)
	if err == nil {
		err = ioutils.WriteFileAtomic(report.Batch.ManifestPath, content)
	}
	if err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error creating manifest: %v", err), Level: LevelWarning})
		return
	}
	m.progress(ProgressEvent{Message: fmt.Sprintf("Created manifest %s", report.Batch.ManifestPath), Level: LevelSuccess})
}

func (m *Manager) summarize(report *model.Report) {
	downloaded := report.Count(model.StatusDownloaded)
	skipped := report.Count(model.StatusSkipped)
	failed := report.Count(model.StatusFailed)

	level := LevelSuccess
	if failed > 0 {
		level = LevelWarning
	}
	m.progress(ProgressEvent{
		Message: fmt.Sprintf("Finished %s: %d downloaded, %d skipped, %d failed (%s received). Files saved in %s",
			report.Batch.DateString(), downloaded, skipped, failed, FormatBytes(report.BytesReceived()), report.Batch.Folder),
		Level: level,
	})
	m.logger.Info("run finished",
		zap.String("date", report.Batch.DateString()),
		zap.Int("downloaded", downloaded),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed),
		zap.Int64("bytes", report.BytesReceived()))
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}

// FormatBytes renders n with a binary unit, e.g. "1.5 MiB".
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
