// Package model defines the core data structures used throughout
// the polarview-downloader application.
//
// # Batch
//
// Batch represents all scenes of one target date and their destination folder:
//
//	batch := model.NewBatch(date, pathConfig)
//	fmt.Println(batch.Folder)       // Where to save the archives
//	fmt.Println(batch.ManifestPath) // Where to write the manifest
//
// # Scene
//
// Scene represents a single Sentinel-1 scene archive:
//
//	scene, added := batch.AddScene("S1A_..._HH.tif", baseURL)
//	fmt.Println(scene.DownloadURL) // <baseURL>/S1A_..._HH.tif.tar.gz
//	fmt.Println(scene.Path)        // Full path where the archive is saved
//
// # Time Window
//
// WindowFor covers a whole calendar day for the WFS acquisition-time filter:
//
//	w := model.WindowFor(date)
//	fmt.Println(w) // 2024-01-01T00:00:00Z/2024-01-01T23:59:59Z
//
// # Errors
//
// Error classifies failures as network, status, io, parse or canceled.
// Use KindOf to inspect any error returned by the other packages.
package model
