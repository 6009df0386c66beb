// Package manifest generates per-date manifest files for downloaded scenes.
//
// # Formats
//
// Two formats are supported:
//   - Text: one download URL per line, usable with `wget -i`
//   - CSV: file, url, status and bytes of every processed scene
//
// # Usage
//
//	creator := manifest.NewCreator(model.ManifestFormatCSV)
//	content, err := creator.Create(report)
//	if err != nil {
//	    return err
//	}
//	err = ioutils.WriteFileAtomic(report.Batch.ManifestPath, content)
package manifest
