// Package imagecodec turns base64 image payloads into normalized PNG files
// scoped to a single request.
package imagecodec

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/kdduha/llama-vision/backend/internal/apperr"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	filePrefix = "vision-"
	fileExt    = ".png"

	// DefaultMaxPixels matches the decompression bomb threshold of PIL.
	DefaultMaxPixels = 178956970
)

type Codec struct {
	dir       string
	maxPixels int64
}

// New returns a codec writing normalized images under dir, or os.TempDir()
// when dir is empty.
func New(dir string) *Codec {
	if dir == "" {
		dir = os.TempDir()
	}
	return &Codec{dir: dir, maxPixels: DefaultMaxPixels}
}

// WithMaxPixels sets the largest accepted width*height. Non-positive values
// keep the default.
func (c *Codec) WithMaxPixels(n int64) *Codec {
	if n > 0 {
		c.maxPixels = n
	}
	return c
}

func (c *Codec) Dir() string { return c.dir }

// NormalizedImage is a PNG file owned by exactly one request. The owner must
// call Release on every exit path.
type NormalizedImage struct {
	path   string
	format string
	bounds image.Rectangle

	once       sync.Once
	releaseErr error
}

func (n *NormalizedImage) Path() string { return n.path }

// URL is the file:// reference consumed by the prompt builder.
func (n *NormalizedImage) URL() string { return "file://" + n.path }

// Format is the source format detected while decoding (png, jpeg, webp...).
func (n *NormalizedImage) Format() string { return n.format }

func (n *NormalizedImage) Bounds() image.Rectangle { return n.bounds }

// DataURL reads the normalized file back as a base64 data URL.
func (n *NormalizedImage) DataURL() (string, error) {
	data, err := os.ReadFile(n.path)
	if err != nil {
		return "", fmt.Errorf("read normalized image: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data), nil
}

// Release removes the backing file. Only the first call does any work; later
// calls return the first result.
func (n *NormalizedImage) Release() error {
	n.once.Do(func() {
		if err := os.Remove(n.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			n.releaseErr = fmt.Errorf("remove %s: %w", n.path, err)
		}
	})
	return n.releaseErr
}

// Decode validates raw, which may carry a data URL prefix, and persists it as
// a uniquely named PNG. Bad base64 or undecodable bytes are validation errors;
// filesystem failures are system errors and leave nothing behind.
func (c *Codec) Decode(raw string) (*NormalizedImage, error) {
	payload := stripDataURL(raw)

	data, err := decodeBase64(payload)
	if err != nil {
		return nil, apperr.Validationf("Invalid image data: %v", err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, apperr.Validationf("Invalid image data: %v", err)
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > c.maxPixels {
		return nil, apperr.Validationf("Invalid image data: image size (%d pixels) exceeds limit of %d pixels", pixels, c.maxPixels)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperr.Validationf("Invalid image data: %v", err)
	}

	path := filepath.Join(c.dir, filePrefix+uuid.NewString()+fileExt)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, apperr.System("Failed to store image", fmt.Errorf("create temp image: %w", err))
	}

	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return nil, apperr.System("Failed to store image", fmt.Errorf("encode png: %w", err))
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, apperr.System("Failed to store image", fmt.Errorf("close temp image: %w", err))
	}

	return &NormalizedImage{
		path:   path,
		format: format,
		bounds: img.Bounds(),
	}, nil
}

// stripDataURL keeps only what follows the first comma, if any.
func stripDataURL(raw string) string {
	if _, after, found := strings.Cut(raw, ","); found {
		return after
	}
	return raw
}

func decodeBase64(payload string) ([]byte, error) {
	payload = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, payload)
	if payload == "" {
		return nil, errors.New("empty payload")
	}

	if strings.HasSuffix(payload, "=") || len(payload)%4 == 0 {
		return base64.StdEncoding.DecodeString(payload)
	}
	return base64.RawStdEncoding.DecodeString(payload)
}
