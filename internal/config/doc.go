// Package config provides configuration management for polarview-downloader.
//
// This package handles:
//   - Loading and saving settings from YAML files
//   - Default configuration values
//   - Validation and target date resolution
//   - Conversion to PathConfig for other packages
//
// # Default Settings
//
//	settings := config.DefaultSettings()
//	// Downloads yesterday's scenes to daily_sar_images/{date}
//	// Queries https://geos.polarview.aq/geoserver/wfs
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/config.yaml")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// # Saving Settings
//
//	settings.TargetDate = "2024-01-31"
//	err := settings.Save("/path/to/config.yaml")
package config
