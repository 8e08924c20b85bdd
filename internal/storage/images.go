package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const MaxImageSize = 10 << 20 // 10 MB

// ErrInvalidImage is returned for uploads that are not a decodable image.
var ErrInvalidImage = errors.New("invalid image")

// Images stores post images in a BlobStore after normalising them.
type Images struct {
	blobs  BlobStore
	maxDim int
	now    func() time.Time
}

func NewImages(blobs BlobStore, maxDim int) *Images {
	return &Images{blobs: blobs, maxDim: maxDim, now: time.Now}
}

// SetClock replaces the clock that dates image keys.
func (s *Images) SetClock(now func() time.Time) {
	s.now = now
}

// SaveImage decodes the upload, bounds its longest edge to maxDim and
// stores it re-encoded. It returns the key the image is stored under.
func (s *Images) SaveImage(ctx context.Context, filename string, r io.Reader) (string, error) {
	buf, format, err := Normalize(io.LimitReader(r, MaxImageSize+1), filename, s.maxDim)
	if err != nil {
		return "", err
	}

	ext := ".jpg"
	contentType := "image/jpeg"
	if format == imaging.PNG {
		ext = ".png"
		contentType = "image/png"
	}
	key := fmt.Sprintf("%s-%s%s", s.now().Format("20060102"), uuid.New().String(), ext)

	if err := s.blobs.Put(ctx, key, contentType, buf); err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	return key, nil
}

func (s *Images) OpenImage(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.blobs.Open(ctx, key)
}

func (s *Images) DeleteImage(ctx context.Context, key string) error {
	return s.blobs.Delete(ctx, key)
}

// ContentType derives the served content type from a stored key.
func ContentType(key string) string {
	if strings.EqualFold(filepath.Ext(key), ".png") {
		return "image/png"
	}
	return "image/jpeg"
}

// Normalize decodes an image (honouring EXIF orientation), fits it within
// maxDim x maxDim and re-encodes it. PNG input stays PNG, everything else
// becomes JPEG.
func Normalize(r io.Reader, filename string, maxDim int) (*bytes.Buffer, imaging.Format, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, err
	}
	if len(data) > MaxImageSize {
		return nil, 0, fmt.Errorf("%w: file size exceeds maximum limit of %d MB", ErrInvalidImage, MaxImageSize/(1<<20))
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	b := img.Bounds()
	if maxDim > 0 && (b.Dx() > maxDim || b.Dy() > maxDim) {
		img = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
	}

	format := imaging.JPEG
	if f, err := imaging.FormatFromFilename(filename); err == nil && f == imaging.PNG {
		format = imaging.PNG
	}

	out := &bytes.Buffer{}
	if err := imaging.Encode(out, img, format, imaging.JPEGQuality(85)); err != nil {
		return nil, 0, fmt.Errorf("failed to encode image: %w", err)
	}
	return out, format, nil
}
