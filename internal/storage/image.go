package storage

import (
	"bytes"
	"errors"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"mime"
	"net/http"
	"strings"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // register WebP decoder
)

// MaxImageBytes is the upload size limit for cover images.
const MaxImageBytes = 5 << 20

var (
	ErrEmptyImage      = errors.New("no image uploaded")
	ErrImageTooLarge   = errors.New("image exceeds the 5MB limit")
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrTypeMismatch    = errors.New("image content does not match its declared type")
	ErrInvalidImage    = errors.New("invalid image file")
)

// AllowedContentTypes lists the MIME types accepted for upload.
var AllowedContentTypes = []string{"image/jpeg", "image/jpg", "image/png", "image/webp", "image/gif"}

var formatExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
}

var decodedFormats = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
	"gif":  "image/gif",
}

// Image is an upload that passed ValidateImage.
type Image struct {
	ContentType string
	Extension   string
	Data        []byte
}

// ValidateImage checks the size, declared type and actual payload of an
// upload. Only the image header is decoded.
func ValidateImage(declaredType string, data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	if len(data) > MaxImageBytes {
		return nil, ErrImageTooLarge
	}

	declared := normalizeContentType(declaredType)
	sniffed := normalizeContentType(http.DetectContentType(data))
	if _, ok := formatExtensions[sniffed]; !ok {
		return nil, ErrUnsupportedType
	}
	if declared != "" && declared != "application/octet-stream" {
		if _, ok := formatExtensions[declared]; !ok {
			return nil, ErrUnsupportedType
		}
		if declared != sniffed {
			return nil, ErrTypeMismatch
		}
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, ErrInvalidImage
	}
	if decodedFormats[format] != sniffed {
		return nil, ErrTypeMismatch
	}

	return &Image{ContentType: sniffed, Extension: formatExtensions[sniffed], Data: data}, nil
}

// NewKey returns a fresh object key for an image with the given extension.
func NewKey(ext string) string {
	return KeyPrefix + uuid.NewString() + "." + ext
}

func normalizeContentType(ct string) string {
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		mediaType = ct
	}
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	if mediaType == "image/jpg" {
		return "image/jpeg"
	}
	return mediaType
}
