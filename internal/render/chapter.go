package render

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"github.com/mizuki-h/pageflow/internal/epub"
)

// ErrInvalidChapterIndex indicates a spine index outside [0, len(spine)).
var ErrInvalidChapterIndex = errors.New("render: chapter index out of range")

// Chapter is the fully assembled content of one spine item, ready for
// display: a body fragment with images inlined, plus its style rules.
type Chapter struct {
	Index int
	Path  string
	Title string

	// HTMLBody is the inner markup of the chapter's <body>, with <img>
	// sources rewritten to data URIs, scripts stripped, and no
	// <html>/<head> wrapper.
	HTMLBody string

	// StyleRules are the chapter's style contributions in document order,
	// with @font-face urls rewritten to embedded data.
	StyleRules []StyleRule

	// CombinedCSS is the concatenation of StyleRules in order.
	CombinedCSS string
}

// Loader assembles chapters from the archive. A loader is cheap; it shares
// the per-book style and font caches it was constructed with.
type Loader struct {
	archive *epub.Archive
	pkg     *epub.Package
	styles  *StyleResolver
	fonts   *FontResolver
	images  *Inliner
	logger  *slog.Logger
}

// NewLoader creates a chapter loader sharing the given style and font
// resolvers (and their caches). A nil images inliner gets the package
// defaults.
func NewLoader(a *epub.Archive, pkg *epub.Package, styles *StyleResolver, fonts *FontResolver, images *Inliner, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if images == nil {
		images = NewInliner(a, pkg, logger)
	}
	return &Loader{
		archive: a,
		pkg:     pkg,
		styles:  styles,
		fonts:   fonts,
		images:  images,
		logger:  logger,
	}
}

// Load assembles the chapter at the given spine index. Content is produced
// fresh on each call; callers wanting reuse hold the returned value.
func (l *Loader) Load(index int) (*Chapter, error) {
	if index < 0 || index >= len(l.pkg.Spine) {
		return nil, fmt.Errorf("%w: %d (spine has %d items)", ErrInvalidChapterIndex, index, len(l.pkg.Spine))
	}
	item := l.pkg.Spine[index]

	data, err := l.archive.ReadBinary(item.Path)
	if err != nil {
		return nil, err
	}

	doc, err := parseXHTML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse chapter %s: %w", item.Path, err)
	}

	title := strings.TrimSpace(doc.Find("head title").First().Text())
	if title == "" {
		title = fmt.Sprintf("Chapter %d", index+1)
	}

	// Styles are collected before the body is extracted since <link>
	// elements live in the head.
	rules := l.styles.ForChapter(doc, item.Path)
	for i := range rules {
		base := rules[i].Path
		if rules[i].Kind == RuleInline {
			base = item.Path
		}
		rules[i].CSS = l.fonts.RewriteFontFaceURLs(rules[i].CSS, base)
	}

	l.images.InlineImages(doc, item.Path)
	sanitize(doc)

	body, err := doc.Find("body").First().Html()
	if err != nil {
		return nil, fmt.Errorf("failed to extract body of %s: %w", item.Path, err)
	}

	return &Chapter{
		Index:       index,
		Path:        item.Path,
		Title:       title,
		HTMLBody:    strings.TrimSpace(body),
		StyleRules:  rules,
		CombinedCSS: CombineRules(rules),
	}, nil
}

// parseXHTML decodes chapter bytes charset-aware and parses them with goquery.
func parseXHTML(data []byte) (*goquery.Document, error) {
	r, err := charset.NewReader(bytes.NewReader(data), "application/xhtml+xml")
	if err != nil {
		r = bytes.NewReader(data)
	}
	return goquery.NewDocumentFromReader(r)
}

// sanitize strips script elements, in-body style elements (carried separately
// as StyleRules) and event handler attributes from the document.
func sanitize(doc *goquery.Document) {
	doc.Find("script").Remove()
	doc.Find("body style").Remove()

	doc.Find("body *").Each(func(i int, s *goquery.Selection) {
		node := s.Get(0)
		var toRemove []string
		for _, attr := range node.Attr {
			if strings.HasPrefix(strings.ToLower(attr.Key), "on") {
				toRemove = append(toRemove, attr.Key)
			}
		}
		for _, key := range toRemove {
			s.RemoveAttr(key)
		}
	})
}
