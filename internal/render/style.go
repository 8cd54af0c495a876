package render

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mizuki-h/pageflow/internal/epub"
)

// RuleKind distinguishes where a chapter's style rule came from.
type RuleKind int

const (
	RuleInline RuleKind = iota
	RuleExternal
)

func (k RuleKind) String() string {
	if k == RuleInline {
		return "inline"
	}
	return "external"
}

// Stylesheet is one CSS resource loaded from the manifest.
type Stylesheet struct {
	Path string
	CSS  string
}

// StyleRule is one ordered style contribution for a chapter: either an
// inline <style> element or a linked external stylesheet.
type StyleRule struct {
	Kind RuleKind

	// Path is the resolved archive-internal path for external rules,
	// empty for inline ones.
	Path string

	CSS string
}

// StyleResolver loads stylesheets from the archive and collects the rules
// relevant to a chapter. The cache is owned by the resolver and lives as
// long as the book; it is append-only and keyed by archive path.
type StyleResolver struct {
	archive *epub.Archive
	cache   map[string]string
	logger  *slog.Logger
}

// NewStyleResolver creates a resolver over the given archive.
func NewStyleResolver(a *epub.Archive, logger *slog.Logger) *StyleResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &StyleResolver{
		archive: a,
		cache:   make(map[string]string),
		logger:  logger,
	}
}

// LoadAll loads every manifest entry with media type text/css, in manifest
// order. Per-entry read failures are logged and skipped.
func (r *StyleResolver) LoadAll(pkg *epub.Package) []Stylesheet {
	var sheets []Stylesheet
	for _, id := range pkg.ManifestOrder {
		item := pkg.Manifest[id]
		if !strings.EqualFold(item.MediaType, "text/css") {
			continue
		}
		css, err := r.load(item.Path)
		if err != nil {
			r.logger.Warn("failed to load stylesheet, skipping", "path", item.Path, "error", err)
			continue
		}
		sheets = append(sheets, Stylesheet{Path: item.Path, CSS: css})
	}
	return sheets
}

// ForChapter collects the style rules for a parsed chapter document:
// inline <style> elements in document order, then each
// <link rel="stylesheet"> resolved against the chapter path. An external
// stylesheet that cannot be loaded is skipped with a warning so partial
// styling survives.
func (r *StyleResolver) ForChapter(doc *goquery.Document, chapterPath string) []StyleRule {
	var rules []StyleRule

	doc.Find("style").Each(func(i int, s *goquery.Selection) {
		css := strings.TrimSpace(s.Text())
		if css == "" {
			return
		}
		rules = append(rules, StyleRule{Kind: RuleInline, CSS: css})
	})

	doc.Find(`link[rel="stylesheet"]`).Each(func(i int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		resolved := epub.ResolveHref(chapterPath, href)
		css, err := r.load(resolved)
		if err != nil {
			r.logger.Warn("failed to load linked stylesheet, skipping", "path", resolved, "error", err)
			return
		}
		rules = append(rules, StyleRule{Kind: RuleExternal, Path: resolved, CSS: css})
	})

	return rules
}

// load fetches a stylesheet through the cache.
func (r *StyleResolver) load(path string) (string, error) {
	if css, ok := r.cache[path]; ok {
		return css, nil
	}
	css, err := r.archive.ReadText(path)
	if err != nil {
		return "", err
	}
	r.cache[path] = css
	return css, nil
}

// CombineRules concatenates rule CSS in order, separated by blank lines.
func CombineRules(rules []StyleRule) string {
	if len(rules) == 0 {
		return ""
	}
	parts := make([]string, 0, len(rules))
	for _, rule := range rules {
		parts = append(parts, rule.CSS)
	}
	return strings.Join(parts, "\n\n")
}
