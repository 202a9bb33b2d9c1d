package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gabriel-vasile/mimetype"
)

// MaxImageBytes caps product image uploads at 2048 KB.
const MaxImageBytes = 2048 * 1024

var (
	// ErrNotImage is returned when the content is not a supported raster image.
	ErrNotImage = errors.New("storage: not an image")
	// ErrImageType is returned for images outside jpeg, png and gif.
	ErrImageType = errors.New("storage: unsupported image type")
	// ErrTooLarge is returned when an upload exceeds MaxImageBytes.
	ErrTooLarge = errors.New("storage: upload too large")
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// Upload is a file received from a form, buffered in memory.
type Upload struct {
	Filename string
	Size     int64
	Data     []byte
	mime     *mimetype.MIME
}

// NewUpload wraps raw bytes as an upload.
func NewUpload(filename string, data []byte) *Upload {
	return &Upload{Filename: filename, Size: int64(len(data)), Data: data}
}

// ReadUpload buffers a multipart file, reading at most one byte past the limit.
func ReadUpload(fh *multipart.FileHeader, limit int64) (*Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("storage: open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, fmt.Errorf("storage: read upload: %w", err)
	}
	up := NewUpload(fh.Filename, data)
	if fh.Size > up.Size {
		up.Size = fh.Size
	}
	return up, nil
}

// MIME sniffs the content type.
func (u *Upload) MIME() *mimetype.MIME {
	if u.mime == nil {
		u.mime = mimetype.Detect(u.Data)
	}
	return u.mime
}

// Extension returns the file extension matching the sniffed type.
func (u *Upload) Extension() string {
	if ext, ok := imageExtensions[u.MIME().String()]; ok {
		return ext
	}
	return u.MIME().Extension()
}

// Reader exposes the buffered content.
func (u *Upload) Reader() io.Reader {
	return bytes.NewReader(u.Data)
}

// CheckImage enforces the product image rules: jpeg, png or gif up to MaxImageBytes.
func CheckImage(u *Upload) error {
	if u == nil {
		return nil
	}
	if u.Size > MaxImageBytes {
		return ErrTooLarge
	}
	detected := u.MIME()
	if !detected.Is("image/jpeg") && !detected.Is("image/png") && !detected.Is("image/gif") {
		for m := detected; m != nil; m = m.Parent() {
			if m.Is("image/webp") || m.Is("image/bmp") || m.Is("image/tiff") || m.Is("image/svg+xml") {
				return ErrImageType
			}
		}
		return ErrNotImage
	}
	return nil
}
