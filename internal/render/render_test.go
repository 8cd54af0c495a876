package render

import (
	"archive/zip"
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/mizuki-h/pageflow/internal/epub"
)

// archiveEntry is one member of an in-memory test archive.
type archiveEntry struct {
	name string
	data []byte
}

// buildArchive assembles an EPUB-shaped ZIP (stored mimetype first) and
// opens it.
func buildArchive(t *testing.T, entries ...archiveEntry) *epub.Archive {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	mw, err := w.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	if err != nil {
		t.Fatalf("create mimetype: %v", err)
	}
	mw.Write([]byte("application/epub+zip"))

	for _, e := range entries {
		fw, err := w.Create(e.name)
		if err != nil {
			t.Fatalf("create %s: %v", e.name, err)
		}
		if _, err := fw.Write(e.data); err != nil {
			t.Fatalf("write %s: %v", e.name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	a, err := epub.Open(buf.Bytes())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return a
}

// testPackage builds a Package by hand; render only consumes the parsed form.
func testPackage(items []epub.ManifestItem, spinePaths ...string) *epub.Package {
	pkg := &epub.Package{Manifest: make(map[string]epub.ManifestItem)}
	for _, item := range items {
		pkg.Manifest[item.ID] = item
		pkg.ManifestOrder = append(pkg.ManifestOrder, item.ID)
	}
	for i, p := range spinePaths {
		var mt string
		if item, ok := pkg.ItemByPath(p); ok {
			mt = item.MediaType
		}
		pkg.Spine = append(pkg.Spine, epub.SpineItem{
			ID:        p,
			Path:      p,
			MediaType: mt,
			Linear:    true,
			Order:     i,
		})
	}
	return pkg
}

// encodePNG produces a solid-colored PNG of the given size.
func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 120, G: 40, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}
