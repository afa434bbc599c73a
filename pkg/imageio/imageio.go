// Package imageio loads and saves the images an augmentation run reads and
// writes. It decodes JPEG, PNG, GIF and WebP and encodes JPEG, PNG and WebP,
// picking the format from the file extension.
package imageio

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/menta2k/image-augment/pkg/errors"
)

// SaveOptions tunes lossy encoders. The zero value selects sensible
// defaults.
type SaveOptions struct {
	// Quality is the JPEG/WebP quality in [1,100]. Defaults to 90.
	Quality int
	// Lossless switches WebP output to lossless encoding.
	Lossless bool
}

const defaultQuality = 90

var httpClient = &http.Client{Timeout: 30 * time.Second}

// Load reads an image from a file. Formats not handled by the registered
// decoders fall back to an explicit WebP decode.
func Load(path string) (image.Image, error) {
	if img, err := imaging.Open(path); err == nil {
		return img, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()

	if img, _, err := image.Decode(f); err == nil {
		return img, nil
	}
	if _, err := f.Seek(0, io.SeekStart); err == nil {
		if img, err := webp.Decode(f); err == nil {
			return img, nil
		}
	}
	return nil, errors.New(errors.ErrCodeUnsupportedFormat, "unknown image format: %s", path)
}

// LoadURL downloads and decodes an image over http or https.
func LoadURL(imageURL string) (image.Image, error) {
	parsed, err := url.Parse(imageURL)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse url")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"unsupported url scheme %q", parsed.Scheme)
	}

	req, err := http.NewRequest(http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "build request")
	}
	req.Header.Set("User-Agent", "image-augment/1.0")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "download %s", imageURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"download %s: %s", imageURL, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body")
	}
	return Decode(data)
}

// LoadAny accepts either a file path or an http(s) URL.
func LoadAny(source string) (image.Image, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return LoadURL(source)
	}
	return Load(source)
}

// Decode decodes an in-memory image, trying the registered decoders first
// and WebP second.
func Decode(data []byte) (image.Image, error) {
	if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	return nil, errors.New(errors.ErrCodeUnsupportedFormat, "unknown image format")
}

// Save writes an image to path, choosing the encoder from the extension.
func Save(img image.Image, path string, opts SaveOptions) error {
	quality := opts.Quality
	if quality <= 0 {
		quality = defaultQuality
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".webp":
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "create %s", path)
		}
		defer f.Close()
		wo := &webp.Options{Lossless: opts.Lossless, Quality: float32(quality)}
		if err := webp.Encode(f, img, wo); err != nil {
			return errors.Wrap(errors.ErrCodeUnsupportedFormat, err, "encode webp")
		}
		return nil
	case ".png":
		return imaging.Save(img, path)
	case ".jpg", ".jpeg":
		return imaging.Save(img, path, imaging.JPEGQuality(quality))
	default:
		return errors.New(errors.ErrCodeUnsupportedFormat, "unsupported output format %q", ext)
	}
}
