package docx

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/nao1215/docmetrics/internal/docx/docxtest"
)

// jpegWithEXIF builds a minimal JPEG whose APP1 segment holds an IFD0
// with Make and Model tags.
func jpegWithEXIF(t *testing.T, maker, model string) []byte {
	t.Helper()

	makeVal := append([]byte(maker), 0)
	modelVal := append([]byte(model), 0)
	if len(makeVal) <= 4 || len(modelVal) <= 4 {
		t.Fatal("values must not fit inline")
	}

	const ifdOffset = 8
	dataOffset := uint32(ifdOffset + 2 + 2*12 + 4)

	var tiff bytes.Buffer
	le := binary.LittleEndian
	tiff.WriteString("II")
	_ = binary.Write(&tiff, le, uint16(42))
	_ = binary.Write(&tiff, le, uint32(ifdOffset))
	_ = binary.Write(&tiff, le, uint16(2))
	for _, e := range []struct {
		tag    uint16
		value  []byte
		offset uint32
	}{
		{0x010f, makeVal, dataOffset},
		{0x0110, modelVal, dataOffset + uint32(len(makeVal))},
	} {
		_ = binary.Write(&tiff, le, e.tag)
		_ = binary.Write(&tiff, le, uint16(2)) // ASCII
		_ = binary.Write(&tiff, le, uint32(len(e.value)))
		_ = binary.Write(&tiff, le, e.offset)
	}
	_ = binary.Write(&tiff, le, uint32(0))
	tiff.Write(makeVal)
	tiff.Write(modelVal)

	var app1 bytes.Buffer
	app1.WriteString("Exif\x00\x00")
	app1.Write(tiff.Bytes())

	var jpg bytes.Buffer
	jpg.Write([]byte{0xff, 0xd8, 0xff, 0xe1})
	_ = binary.Write(&jpg, binary.BigEndian, uint16(app1.Len()+2))
	jpg.Write(app1.Bytes())
	jpg.Write([]byte{0xff, 0xd9})
	return jpg.Bytes()
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

// TestLoadImages tests listing embedded pictures and their EXIF tags.
func TestLoadImages(t *testing.T) {
	t.Parallel()

	photo := jpegWithEXIF(t, "Acme Corp", "X100 Pro")
	data := docxtest.New().
		Paragraph("A picture is worth words.").
		Media("image1.jpeg", photo).
		Media("image2.png", pngHeader).
		Bytes()

	doc, err := Load(data, "photos.docx")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(doc.Images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(doc.Images))
	}

	jpg := doc.Images[0]
	if jpg.Name != "image1.jpeg" || jpg.MIMEType != "image/jpeg" {
		t.Errorf("unexpected image %+v", jpg)
	}
	if jpg.Size != int64(len(photo)) {
		t.Errorf("Size = %d, want %d", jpg.Size, len(photo))
	}
	if jpg.Metadata["Make"] != "Acme Corp" {
		t.Errorf("Make = %q", jpg.Metadata["Make"])
	}
	if jpg.Metadata["Model"] != "X100 Pro" {
		t.Errorf("Model = %q", jpg.Metadata["Model"])
	}

	png := doc.Images[1]
	if png.MIMEType != "image/png" {
		t.Errorf("MIMEType = %q", png.MIMEType)
	}
	if png.HasMetadata() {
		t.Errorf("expected no metadata, got %v", png.Metadata)
	}
}

// TestLoadWithoutImages tests that text-only documents list no pictures.
func TestLoadWithoutImages(t *testing.T) {
	t.Parallel()

	doc, err := Load(docxtest.FromText("Just text here."), "plain.docx")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(doc.Images) != 0 {
		t.Errorf("expected no images, got %v", doc.Images)
	}
}

// TestImageMetadataWithoutEXIF tests data without an EXIF block.
func TestImageMetadataWithoutEXIF(t *testing.T) {
	t.Parallel()

	if meta := imageMetadata([]byte{0xff, 0xd8, 0xff, 0xd9}); meta != nil {
		t.Errorf("expected nil, got %v", meta)
	}
}
