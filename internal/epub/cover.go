package epub

import (
	"path"
	"strings"
)

// FindCoverImage locates the book's cover image in the manifest. Detection
// methods in priority order:
//  1. properties="cover-image" (EPUB 3)
//  2. <meta name="cover"> manifest reference (EPUB 2)
//  3. an image item whose basename contains "cover" (SVG excluded)
//
// The boolean is false when no cover is found.
func (p *Package) FindCoverImage() (ManifestItem, bool) {
	for _, id := range p.ManifestOrder {
		if item := p.Manifest[id]; item.IsCoverImage {
			return item, true
		}
	}

	if p.Metadata.CoverID != "" {
		if item, ok := p.Manifest[p.Metadata.CoverID]; ok {
			return item, true
		}
	}

	for _, id := range p.ManifestOrder {
		item := p.Manifest[id]
		if !isRasterImage(item.MediaType) {
			continue
		}
		if strings.Contains(strings.ToLower(path.Base(item.Path)), "cover") {
			return item, true
		}
	}

	return ManifestItem{}, false
}

// isRasterImage reports whether a media type is a raster image (SVG excluded).
func isRasterImage(mediaType string) bool {
	if mediaType == "image/svg+xml" {
		return false
	}
	return strings.HasPrefix(mediaType, "image/")
}
