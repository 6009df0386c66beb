package ioutils

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
)

// ErrNoTIFF is returned when an archive contains no GeoTIFF entry.
var ErrNoTIFF = errors.New("archive contains no .tif entry")

// QuicklookService renders JPEG previews of downloaded scene archives.
//
// QuicklookService is used to:
//   - Extract the GeoTIFF from a .tif.tar.gz scene archive
//   - Resize it to fit a maximum edge length
//   - Write it as a JPEG next to the archive
//
// Example usage:
//
//	svc := NewQuicklookService(1024)
//
//	jpgPath, err := svc.CreateFromArchive(ctx, "daily_sar_images/2024-01-01/X.tif.tar.gz")
//	// jpgPath = "daily_sar_images/2024-01-01/X.jpg"
type QuicklookService struct {
	maxSize int
	quality int
}

// NewQuicklookService creates a QuicklookService scaling images to fit
// within maxSize x maxSize pixels.
func NewQuicklookService(maxSize int) *QuicklookService {
	return &QuicklookService{maxSize: maxSize, quality: 90}
}

// QuicklookPath returns the JPEG path for a scene archive, replacing the
// archive suffix (".tif.tar.gz", ".tar.gz", ".tif") with ".jpg".
//
//	QuicklookPath("dir/X.tif.tar.gz") // Returns "dir/X.jpg"
func QuicklookPath(archivePath string) string {
	p := archivePath
	for _, suffix := range []string{".tar.gz", ".tif"} {
		p = strings.TrimSuffix(p, suffix)
	}
	return p + ".jpg"
}

// CreateFromArchive decodes the first .tif entry of a gzip-compressed tar
// archive and writes its quicklook. It returns the written path.
//
// Returns an error if:
//   - The archive cannot be opened or is not a gzip tar
//   - No .tif entry is found (ErrNoTIFF)
//   - The TIFF cannot be decoded
//   - ctx is cancelled before the image is written
func (s *QuicklookService) CreateFromArchive(ctx context.Context, archivePath string) (string, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	img, err := s.decodeArchive(ctx, f)
	if err != nil {
		return "", fmt.Errorf("quicklook %s: %w", filepath.Base(archivePath), err)
	}

	data, err := s.Render(ctx, img)
	if err != nil {
		return "", err
	}

	out := QuicklookPath(archivePath)
	if err := WriteFileAtomic(out, data); err != nil {
		return "", err
	}
	return out, nil
}

func (s *QuicklookService) decodeArchive(ctx context.Context, r io.Reader) (image.Image, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		hdr, err := tr.Next()
		if err == io.EOF {
			return nil, ErrNoTIFF
		}
		if err != nil {
			return nil, err
		}

		name := strings.ToLower(hdr.Name)
		if hdr.Typeflag != tar.TypeReg || !(strings.HasSuffix(name, ".tif") || strings.HasSuffix(name, ".tiff")) {
			continue
		}

		return tiff.Decode(tr)
	}
}

// Render resizes img to fit the service's maximum size and encodes it as JPEG.
//
// The aspect ratio is preserved and images already inside the bounds are
// only re-encoded. The Catmull-Rom algorithm is used for scaling.
//
// Example:
//
//	// With maxSize 1000, a 1500x1000 image becomes 1000x666
//	data, err := svc.Render(ctx, img)
func (s *QuicklookService) Render(ctx context.Context, img image.Image) ([]byte, error) {
	bounds := img.Bounds()
	width, height := fitWithin(bounds.Dx(), bounds.Dy(), s.maxSize)

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: s.quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// fitWithin scales width x height down to fit a maxSize square.
func fitWithin(width, height, maxSize int) (int, int) {
	if maxSize <= 0 || (width <= maxSize && height <= maxSize) {
		return width, height
	}
	if width >= height {
		h := height * maxSize / width
		if h < 1 {
			h = 1
		}
		return maxSize, h
	}
	w := width * maxSize / height
	if w < 1 {
		w = 1
	}
	return w, maxSize
}
