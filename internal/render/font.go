package render

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"path"
	"regexp"
	"strings"

	"github.com/mizuki-h/pageflow/internal/epub"
)

// fontFaceRe matches a whole @font-face block.
var fontFaceRe = regexp.MustCompile(`(?is)@font-face\s*\{[^}]*\}`)

// cssURLRe matches url(...) references, capturing the unquoted target.
var cssURLRe = regexp.MustCompile(`(?i)url\(\s*['"]?([^'")]+?)['"]?\s*\)`)

// fontExtMIME maps font file extensions to MIME types, used when the
// manifest declares the generic application/octet-stream.
var fontExtMIME = map[string]string{
	".ttf":   "font/ttf",
	".otf":   "font/otf",
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".eot":   "application/vnd.ms-fontobject",
	".svg":   "image/svg+xml",
}

// defaultFontMIME is used for unknown extensions.
const defaultFontMIME = "font/opentype"

// Font is one embedded font extracted from the manifest.
type Font struct {
	ID        string
	Path      string
	MediaType string
	FileName  string

	// DataURI is the base64 data URI form of the font binary,
	// substitutable into @font-face src urls.
	DataURI string
}

// FontResolver extracts embedded fonts and rewrites @font-face url()
// references to point at the embedded data. The cache maps archive path to
// data URI and is owned per book.
type FontResolver struct {
	archive *epub.Archive
	cache   map[string]string
	logger  *slog.Logger
}

// NewFontResolver creates a resolver over the given archive.
func NewFontResolver(a *epub.Archive, logger *slog.Logger) *FontResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &FontResolver{
		archive: a,
		cache:   make(map[string]string),
		logger:  logger,
	}
}

// isFontMediaType reports whether a manifest media type denotes a font.
// The match is an intentionally permissive substring check so that legacy
// values like application/x-font-ttf and application/font-woff qualify.
func isFontMediaType(mediaType string) bool {
	mt := strings.ToLower(mediaType)
	for _, marker := range []string{"font", "otf", "ttf", "woff"} {
		if strings.Contains(mt, marker) {
			return true
		}
	}
	return false
}

// resolveFontMIME picks the embedded MIME type: the manifest value unless it
// is the generic octet-stream, else a fixed extension table.
func resolveFontMIME(item epub.ManifestItem) string {
	if item.MediaType != "" && !strings.EqualFold(item.MediaType, "application/octet-stream") {
		return item.MediaType
	}
	if mime, ok := fontExtMIME[strings.ToLower(path.Ext(item.Path))]; ok {
		return mime
	}
	return defaultFontMIME
}

// ExtractAll embeds every font-like manifest entry as a data URI, in
// manifest order. Per-entry read failures are logged and skipped.
func (r *FontResolver) ExtractAll(pkg *epub.Package) []Font {
	var fonts []Font
	for _, id := range pkg.ManifestOrder {
		item := pkg.Manifest[id]
		if !isFontMediaType(item.MediaType) {
			continue
		}
		uri, err := r.embed(item)
		if err != nil {
			r.logger.Warn("failed to embed font, skipping", "path", item.Path, "error", err)
			continue
		}
		fonts = append(fonts, Font{
			ID:        item.ID,
			Path:      item.Path,
			MediaType: resolveFontMIME(item),
			FileName:  path.Base(item.Path),
			DataURI:   uri,
		})
	}
	return fonts
}

// embed reads a font binary and converts it to a data URI through the cache.
func (r *FontResolver) embed(item epub.ManifestItem) (string, error) {
	if uri, ok := r.cache[item.Path]; ok {
		return uri, nil
	}
	data, err := r.archive.ReadBinary(item.Path)
	if err != nil {
		return "", err
	}
	uri := fmt.Sprintf("data:%s;base64,%s", resolveFontMIME(item), base64.StdEncoding.EncodeToString(data))
	r.cache[item.Path] = uri
	return uri, nil
}

// RewriteFontFaceURLs rewrites url() references inside @font-face blocks of
// css to the embedded data URIs. basePath is the stylesheet's own archive
// path, used to resolve relative references. References that are already
// data URIs or that do not resolve to an embedded font are left unchanged.
func (r *FontResolver) RewriteFontFaceURLs(css, basePath string) string {
	return fontFaceRe.ReplaceAllStringFunc(css, func(block string) string {
		return cssURLRe.ReplaceAllStringFunc(block, func(ref string) string {
			m := cssURLRe.FindStringSubmatch(ref)
			if m == nil {
				return ref
			}
			target := strings.TrimSpace(m[1])
			if strings.HasPrefix(target, "data:") {
				return ref
			}
			resolved := epub.ResolveHref(basePath, target)
			uri, ok := r.cache[resolved]
			if !ok {
				return ref
			}
			return fmt.Sprintf("url('%s')", uri)
		})
	})
}
