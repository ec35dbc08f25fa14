package docx

import (
	"archive/zip"
	"path"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
	"github.com/gabriel-vasile/mimetype"

	"github.com/nao1215/docmetrics/internal/model"
)

const mediaDir = "word/media/"

// identifyingTags are the EXIF tags that reveal where, when, with what or
// by whom a picture was taken.
var identifyingTags = map[string]bool{
	"GPSLatitude":        true,
	"GPSLatitudeRef":     true,
	"GPSLongitude":       true,
	"GPSLongitudeRef":    true,
	"GPSAltitude":        true,
	"Make":               true,
	"Model":              true,
	"SerialNumber":       true,
	"CameraSerialNumber": true,
	"BodySerialNumber":   true,
	"LensSerialNumber":   true,
	"Software":           true,
	"ProcessingSoftware": true,
	"HostComputer":       true,
	"Artist":             true,
	"Copyright":          true,
	"XPAuthor":           true,
	"DateTimeOriginal":   true,
	"DateTimeDigitized":  true,
	"DateTime":           true,
}

// readImages lists the pictures under word/media. Metadata is extracted
// from formats that carry EXIF; pictures larger than limit are listed
// without it.
func (l *loader) readImages(zr *zip.Reader, filename string) []model.Image {
	var images []model.Image
	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, mediaDir) || strings.HasSuffix(f.Name, "/") {
			continue
		}
		img := model.Image{
			Name: path.Base(f.Name),
			Size: int64(f.UncompressedSize64), //nolint:gosec // zip sizes fit in int64
		}

		data, err := readZipFile(zr, f.Name, l.maxEntrySize)
		if err != nil {
			l.logger.Debug("skipping unreadable image", "file", filename, "image", f.Name, "error", err)
			images = append(images, img)
			continue
		}

		mime := mimetype.Detect(data)
		img.MIMEType = mime.String()
		if hasEXIF(mime) {
			img.Metadata = imageMetadata(data)
		}
		images = append(images, img)
	}
	return images
}

func hasEXIF(m *mimetype.MIME) bool {
	return m.Is("image/jpeg") || m.Is("image/tiff") || m.Is("image/heic")
}

// imageMetadata returns the identifying EXIF tags of an image, or nil when
// it has none. The first occurrence of a tag wins, so thumbnail IFDs do not
// override the main image.
func imageMetadata(data []byte) map[string]string {
	raw, err := exif.SearchAndExtractExif(data)
	if err != nil || raw == nil {
		return nil
	}

	entries, _, err := exif.GetFlatExifData(raw, nil)
	if err != nil {
		return nil
	}

	var meta map[string]string
	for _, e := range entries {
		if !identifyingTags[e.TagName] {
			continue
		}
		if meta == nil {
			meta = make(map[string]string)
		}
		if _, ok := meta[e.TagName]; !ok {
			meta[e.TagName] = strings.TrimSpace(e.Formatted)
		}
	}
	return meta
}
