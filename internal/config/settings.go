package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/handiism/polarview-downloader/internal/model"
	"gopkg.in/yaml.v3"
)

// Settings holds all configuration options.
type Settings struct {
	// Download settings
	DownloadsPath     string        `yaml:"downloads_path"`
	TargetDate        string        `yaml:"target_date"` // YYYY-MM-DD, empty means yesterday
	DownloadBaseURL   string        `yaml:"download_base_url"`
	DownloadTimeout   time.Duration `yaml:"download_timeout"`
	ChunkSize         int           `yaml:"chunk_size"`
	RequestsPerSecond float64       `yaml:"requests_per_second"` // 0 disables throttling
	UserAgent         string        `yaml:"user_agent"`

	// WFS query settings
	WFSURL       string        `yaml:"wfs_url"`
	WFSVersion   string        `yaml:"wfs_version"`
	TypeName     string        `yaml:"type_name"`
	OutputFormat string        `yaml:"output_format"`
	TimeField    string        `yaml:"time_field"`
	QueryTimeout time.Duration `yaml:"query_timeout"`

	// Manifest settings
	CreateManifest         bool   `yaml:"create_manifest"`
	ManifestFormat         string `yaml:"manifest_format"` // txt, csv
	ManifestFileNameFormat string `yaml:"manifest_file_name_format"`

	// Quicklook settings
	CreateQuicklook  bool `yaml:"create_quicklook"`
	QuicklookMaxSize int  `yaml:"quicklook_max_size"`

	// Logging
	LogLevel string `yaml:"log_level"` // debug, info, warn, error
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		DownloadsPath:     filepath.Join("daily_sar_images", "{date}"),
		TargetDate:        "",
		DownloadBaseURL:   "https://www.polarview.aq/images/104_S1geotiff",
		DownloadTimeout:   60 * time.Second,
		ChunkSize:         8192,
		RequestsPerSecond: 0,
		UserAgent:         "polarview-downloader",

		WFSURL:       "https://geos.polarview.aq/geoserver/wfs",
		WFSVersion:   "1.1.0",
		TypeName:     "polarview:vw_s1subsets_n",
		OutputFormat: "application/json",
		TimeField:    "acqtime",
		QueryTimeout: 120 * time.Second,

		CreateManifest:         false,
		ManifestFormat:         "txt",
		ManifestFileNameFormat: "manifest",

		CreateQuicklook:  false,
		QuicklookMaxSize: 1024,

		LogLevel: "info",
	}
}

// Load reads settings from a YAML file.
//
// Fields missing from the file keep their default values. A missing file
// yields the defaults.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	settings := DefaultSettings()
	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}

	return settings, nil
}

// Save writes settings to a YAML file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := s.Marshal()
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Marshal renders the settings as YAML.
func (s *Settings) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}

// Validate checks the settings for values the downloader cannot work with.
func (s *Settings) Validate() error {
	var errs []error

	if strings.TrimSpace(s.DownloadsPath) == "" {
		errs = append(errs, errors.New("downloads_path must not be empty"))
	}
	if _, err := s.Date(time.Now()); err != nil {
		errs = append(errs, err)
	}
	for name, raw := range map[string]string{"wfs_url": s.WFSURL, "download_base_url": s.DownloadBaseURL} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("%s must be an absolute URL, got %q", name, raw))
		}
	}
	if s.TypeName == "" {
		errs = append(errs, errors.New("type_name must not be empty"))
	}
	if s.TimeField == "" {
		errs = append(errs, errors.New("time_field must not be empty"))
	}
	if s.QueryTimeout <= 0 {
		errs = append(errs, fmt.Errorf("query_timeout must be positive, got %s", s.QueryTimeout))
	}
	if s.DownloadTimeout <= 0 {
		errs = append(errs, fmt.Errorf("download_timeout must be positive, got %s", s.DownloadTimeout))
	}
	if s.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("chunk_size must be positive, got %d", s.ChunkSize))
	}
	if s.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("requests_per_second must not be negative, got %g", s.RequestsPerSecond))
	}
	switch s.ManifestFormat {
	case "txt", "csv":
	default:
		errs = append(errs, fmt.Errorf("manifest_format must be txt or csv, got %q", s.ManifestFormat))
	}
	if !slices.Contains(LogLevels, s.LogLevel) {
		errs = append(errs, fmt.Errorf("log_level must be one of %s, got %q", strings.Join(LogLevels, ", "), s.LogLevel))
	}
	if s.CreateQuicklook && s.QuicklookMaxSize <= 0 {
		errs = append(errs, fmt.Errorf("quicklook_max_size must be positive, got %d", s.QuicklookMaxSize))
	}

	return errors.Join(errs...)
}

// Date resolves TargetDate against now.
func (s *Settings) Date(now time.Time) (time.Time, error) {
	return model.ParseDate(s.TargetDate, now)
}

// ToPathConfig converts settings to PathConfig.
func (s *Settings) ToPathConfig() *model.PathConfig {
	var mf model.ManifestFormat
	switch s.ManifestFormat {
	case "csv":
		mf = model.ManifestFormatCSV
	default:
		mf = model.ManifestFormatText
	}

	return &model.PathConfig{
		DownloadsPath:          s.DownloadsPath,
		ManifestFileNameFormat: s.ManifestFileNameFormat,
		ManifestFormat:         mf,
	}
}
