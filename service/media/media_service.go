// Package media stores uploaded product images as webp, with a thumbnail, under the media directory.
package media

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"warehouse.GO/core/apperror"
)

const (
	MaxUploadBytes = 5 << 20
	MaxPixels      = 40_000_000
	ImageSize      = 800
	ThumbnailSize  = 200
	quality        = 80
)

// Image describes a stored upload.
type Image struct {
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
}

type Service struct {
	dir     string
	baseURL string
}

// NewService stores files below dir and builds URLs below baseURL.
func NewService(dir, baseURL string) *Service {
	return &Service{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}
}

// SaveProductImage decodes r, fits it into ImageSize and ThumbnailSize squares and writes both as webp.
func (s *Service) SaveProductImage(productID uint, r io.Reader) (*Image, error) {
	raw, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return nil, err
	}
	if len(raw) > MaxUploadBytes {
		return nil, apperror.BadRequest("Image must be at most 5 MB")
	}
	// Dimensions come from the header so a small file cannot force a huge allocation.
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, apperror.BadRequest("Unsupported or corrupt image")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, apperror.BadRequest(fmt.Sprintf("Image dimensions %dx%d are too large", cfg.Width, cfg.Height))
	}
	src, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, apperror.BadRequest("Unsupported or corrupt image")
	}
	if err := os.MkdirAll(filepath.Join(s.dir, "products"), 0o755); err != nil {
		return nil, err
	}

	base := fmt.Sprintf("%d-%s", productID, uuid.NewString()[:8])
	full := imaging.Fit(src, ImageSize, ImageSize, imaging.Lanczos)
	thumb := imaging.Fit(src, ThumbnailSize, ThumbnailSize, imaging.Lanczos)
	if err := s.write(base+".webp", full); err != nil {
		return nil, err
	}
	if err := s.write(base+"-thumb.webp", thumb); err != nil {
		_ = os.Remove(filepath.Join(s.dir, "products", base+".webp"))
		return nil, err
	}
	b := full.Bounds()
	return &Image{
		URL:          s.baseURL + path.Join("/products", base+".webp"),
		ThumbnailURL: s.baseURL + path.Join("/products", base+"-thumb.webp"),
		Width:        b.Dx(),
		Height:       b.Dy(),
	}, nil
}

func (s *Service) write(name string, img image.Image) error {
	f, err := os.Create(filepath.Join(s.dir, "products", name))
	if err != nil {
		return err
	}
	if err := webp.Encode(f, img, &webp.Options{Quality: quality}); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Remove deletes a previously stored image and its thumbnail. URLs not managed here are ignored.
func (s *Service) Remove(url string) {
	prefix := s.baseURL + "/products/"
	if !strings.HasPrefix(url, prefix) || !strings.HasSuffix(url, ".webp") {
		return
	}
	name := filepath.Base(strings.TrimPrefix(url, prefix))
	_ = os.Remove(filepath.Join(s.dir, "products", name))
	_ = os.Remove(filepath.Join(s.dir, "products", strings.TrimSuffix(name, ".webp")+"-thumb.webp"))
}
