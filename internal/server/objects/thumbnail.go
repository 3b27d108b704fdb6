package objects

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
	"github.com/dmitrijs2005/sharebox/internal/common"
)

const (
	DefaultThumbnailWidth = 320
	MinThumbnailWidth     = 16
	MaxThumbnailWidth     = 1024

	// Sources above either limit are refused before decoding.
	MaxSourcePixels = 50_000_000
	MaxSourceBytes  = 64 << 20
)

// Thumbnail renders key as a JPEG at most width pixels wide, keeping the
// aspect ratio. Images are never upscaled.
func (s *Service) Thumbnail(ctx context.Context, key string, width int) ([]byte, error) {
	if !imageExt[ext(key)] {
		return nil, fmt.Errorf("%q is not an image: %w", key, common.ErrorValidation)
	}
	switch {
	case width <= 0:
		width = DefaultThumbnailWidth
	case width < MinThumbnailWidth:
		width = MinThumbnailWidth
	case width > MaxThumbnailWidth:
		width = MaxThumbnailWidth
	}

	st, err := s.resolver.Store(ctx)
	if err != nil {
		return nil, err
	}
	c, err := st.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer c.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(c.Body, MaxSourceBytes+1))
	if err != nil {
		return nil, err
	}
	if len(raw) > MaxSourceBytes {
		return nil, fmt.Errorf("%q exceeds %d bytes: %w", key, MaxSourceBytes, common.ErrorValidation)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode %q: %w: %w", key, common.ErrorValidation, err)
	}
	if px := int64(cfg.Width) * int64(cfg.Height); px > MaxSourcePixels {
		return nil, fmt.Errorf("%q is %dx%d, too large to thumbnail: %w", key, cfg.Width, cfg.Height, common.ErrorValidation)
	}

	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode %q: %w: %w", key, common.ErrorValidation, err)
	}
	if w := img.Bounds().Dx(); w < width {
		width = w
	}
	thumb := imaging.Resize(img, width, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
