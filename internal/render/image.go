package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/disintegration/imaging"

	// Extra decoders so DecodeConfig and Decode understand formats that
	// appear in real books but are not in the stdlib image registry.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/mizuki-h/pageflow/internal/epub"
)

const (
	// defaultMaxImageWidth bounds inlined image width; wider rasters are
	// downscaled before embedding to keep data URIs reasonable.
	defaultMaxImageWidth = 1200

	defaultJPEGQuality = 85

	// defaultImageMIME is assumed when the manifest cannot resolve a type.
	defaultImageMIME = "image/jpeg"
)

// Inliner rewrites chapter <img> references to base64 data URIs, downscaling
// oversized rasters on the way.
type Inliner struct {
	archive  *epub.Archive
	pkg      *epub.Package
	logger   *slog.Logger
	MaxWidth int
	Quality  int
}

// NewInliner creates an image inliner for one book.
func NewInliner(a *epub.Archive, pkg *epub.Package, logger *slog.Logger) *Inliner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Inliner{
		archive:  a,
		pkg:      pkg,
		logger:   logger,
		MaxWidth: defaultMaxImageWidth,
		Quality:  defaultJPEGQuality,
	}
}

// InlineImages replaces the src of every <img> that is not an absolute URL
// or an existing data URI with a data URI built from the archive binary.
// Per-image failures keep the original src and are logged.
func (in *Inliner) InlineImages(doc *goquery.Document, chapterPath string) {
	doc.Find("img[src]").Each(func(i int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		src = strings.TrimSpace(src)
		if src == "" || isAbsoluteURL(src) || strings.HasPrefix(src, "data:") {
			return
		}
		resolved := epub.ResolveHref(chapterPath, src)
		uri, err := in.inline(resolved)
		if err != nil {
			in.logger.Warn("failed to inline image, keeping original src", "path", resolved, "error", err)
			return
		}
		s.SetAttr("src", uri)
	})
}

// inline reads, optionally downscales, and base64-encodes one image.
func (in *Inliner) inline(archivePath string) (string, error) {
	data, err := in.archive.ReadBinary(archivePath)
	if err != nil {
		return "", err
	}

	mime := in.mimeFor(archivePath)
	data, mime = in.optimize(data, mime)

	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data)), nil
}

// mimeFor looks the image's MIME type up in the manifest, defaulting to
// image/jpeg when the path is not listed.
func (in *Inliner) mimeFor(archivePath string) string {
	if item, ok := in.pkg.ItemByPath(archivePath); ok && item.MediaType != "" {
		return item.MediaType
	}
	return defaultImageMIME
}

// optimize downscales rasters wider than MaxWidth and re-encodes them.
// Anything that cannot be decoded (SVG, corrupt data) passes through
// unchanged; inlining never fails on optimization.
func (in *Inliner) optimize(data []byte, mime string) ([]byte, string) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || in.MaxWidth <= 0 || cfg.Width <= in.MaxWidth {
		return data, mime
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data, mime
	}
	resized := imaging.Resize(src, in.MaxWidth, 0, imaging.Lanczos)

	var buf bytes.Buffer
	switch format {
	case "png":
		if err := png.Encode(&buf, resized); err != nil {
			return data, mime
		}
		return buf.Bytes(), "image/png"
	default:
		if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: in.Quality}); err != nil {
			return data, mime
		}
		return buf.Bytes(), "image/jpeg"
	}
}

// isAbsoluteURL reports whether ref carries a URL scheme (http:, https:,
// file:, ...). Scheme-relative //host references count as absolute too.
func isAbsoluteURL(ref string) bool {
	if strings.HasPrefix(ref, "//") {
		return true
	}
	if idx := strings.Index(ref, ":"); idx > 0 {
		scheme := ref[:idx]
		for _, r := range scheme {
			if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') && r != '+' && r != '-' && r != '.' {
				return false
			}
		}
		return true
	}
	return false
}
