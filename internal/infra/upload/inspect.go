// Package upload identifies uploaded files and pulls what it can out of them
// without OCR: image dimensions, EXIF camera data and the text layer of PDFs.
package upload

import (
	"bytes"
	"errors"
	"image"
	"strings"
	"time"

	// Register decoders for image.DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"literary-analysis/internal/domain/entity"

	"github.com/rwcarlsen/goexif/exif"
)

// ErrUnsupportedFormat is returned for uploads that are neither a known
// image format nor a PDF.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// FormatPDF is the format name reported for PDF uploads.
const FormatPDF = "pdf"

var pdfMagic = []byte("%PDF-")

var contentTypes = map[string]string{
	"png":     "image/png",
	"jpeg":    "image/jpeg",
	"gif":     "image/gif",
	"bmp":     "image/bmp",
	"tiff":    "image/tiff",
	"webp":    "image/webp",
	FormatPDF: "application/pdf",
}

// Info describes an upload.
type Info struct {
	Format      string
	ContentType string
	Width       int
	Height      int
	Camera      string
	TakenAt     *time.Time
}

// IsPDF reports whether the upload is a PDF document.
func (i Info) IsPDF() bool {
	return i.Format == FormatPDF
}

// Metadata converts i into the persisted form.
func (i Info) Metadata() *entity.ImageMetadata {
	return &entity.ImageMetadata{
		Format:  i.Format,
		Width:   i.Width,
		Height:  i.Height,
		Camera:  i.Camera,
		TakenAt: i.TakenAt,
	}
}

// Inspect sniffs data. The declared content type of an upload is never
// trusted; the format comes from the bytes.
func Inspect(data []byte) (Info, error) {
	if bytes.HasPrefix(data, pdfMagic) {
		return Info{Format: FormatPDF, ContentType: contentTypes[FormatPDF]}, nil
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, ErrUnsupportedFormat
	}

	info := Info{
		Format:      format,
		ContentType: contentTypes[format],
		Width:       cfg.Width,
		Height:      cfg.Height,
	}
	if format == "jpeg" || format == "tiff" {
		readEXIF(data, &info)
	}
	return info, nil
}

// readEXIF fills camera and capture time when the image carries EXIF data.
// Missing or broken EXIF is not an error.
func readEXIF(data []byte, info *Info) {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return
	}

	var parts []string
	for _, field := range []exif.FieldName{exif.Make, exif.Model} {
		tag, err := x.Get(field)
		if err != nil {
			continue
		}
		if v, err := tag.StringVal(); err == nil && strings.TrimSpace(v) != "" {
			parts = append(parts, strings.TrimSpace(v))
		}
	}
	info.Camera = strings.Join(parts, " ")

	if t, err := x.DateTime(); err == nil {
		info.TakenAt = &t
	}
}
