// Package book assembles a loaded EPUB into a single document value:
// metadata, manifest, spine, navigation, fonts and global CSS, plus
// chapter access by index or href.
package book

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mizuki-h/pageflow/internal/epub"
	"github.com/mizuki-h/pageflow/internal/render"
)

// ErrChapterNotFound indicates an href that matches no spine item.
var ErrChapterNotFound = errors.New("book: no chapter matches href")

// Option configures Load.
type Option func(*options)

type options struct {
	logger        *slog.Logger
	chapterCache  bool
	maxImageWidth int
	jpegQuality   int
}

// WithLogger routes the document's diagnostics to l.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithImageOptions bounds inlined image width and sets the JPEG recompression
// quality. Non-positive values keep the render package defaults.
func WithImageOptions(maxWidth, quality int) Option {
	return func(o *options) {
		o.maxImageWidth = maxWidth
		o.jpegQuality = quality
	}
}

// WithChapterCache enables session-lifetime caching of assembled chapters
// by spine index. The cache belongs to this Document and dies with it.
func WithChapterCache() Option {
	return func(o *options) { o.chapterCache = true }
}

// Document is the loaded book: parsed structure plus chapter access.
// It is immutable after Load except for the optional chapter cache.
type Document struct {
	archive *epub.Archive
	pkg     *epub.Package
	nav     []epub.NavNode
	sheets  []render.Stylesheet
	fonts   []render.Font
	loader  *render.Loader
	logger  *slog.Logger

	mu    sync.Mutex
	cache map[int]*render.Chapter
}

// Load parses the archive bytes into a Document. The load chain
// (archive → container → package) is fatal on failure; navigation,
// stylesheet preloading and font extraction run concurrently afterwards
// and degrade to empty results individually.
func Load(ctx context.Context, data []byte, opts ...Option) (*Document, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	archive, err := epub.Open(data)
	if err != nil {
		return nil, err
	}
	archive.SetLogger(o.logger)

	pkgPath, err := epub.ResolvePackagePath(archive)
	if err != nil {
		return nil, err
	}
	pkg, err := epub.ParsePackage(archive, pkgPath)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d := &Document{
		archive: archive,
		pkg:     pkg,
		logger:  o.logger,
	}
	if o.chapterCache {
		d.cache = make(map[int]*render.Chapter)
	}

	styles := render.NewStyleResolver(archive, o.logger)
	fonts := render.NewFontResolver(archive, o.logger)
	images := render.NewInliner(archive, pkg, o.logger)
	if o.maxImageWidth > 0 {
		images.MaxWidth = o.maxImageWidth
	}
	if o.jpegQuality > 0 {
		images.Quality = o.jpegQuality
	}

	// Navigation, stylesheet preload and font extraction are independent;
	// all three touch only the read-only archive, so they may run in
	// parallel. Load returns after all complete.
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		d.nav = epub.ResolveNavigation(archive, pkg)
	}()
	go func() {
		defer wg.Done()
		d.sheets = styles.LoadAll(pkg)
	}()
	go func() {
		defer wg.Done()
		d.fonts = fonts.ExtractAll(pkg)
	}()
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.loader = render.NewLoader(archive, pkg, styles, fonts, images, o.logger)
	return d, nil
}

// Metadata returns the book's Dublin Core metadata.
func (d *Document) Metadata() epub.Metadata { return d.pkg.Metadata }

// Package returns the parsed package document.
func (d *Document) Package() *epub.Package { return d.pkg }

// Manifest returns the manifest items keyed by ID.
func (d *Document) Manifest() map[string]epub.ManifestItem { return d.pkg.Manifest }

// Spine returns the reading order.
func (d *Document) Spine() []epub.SpineItem { return d.pkg.Spine }

// Navigation returns the normalized table of contents.
func (d *Document) Navigation() []epub.NavNode { return d.nav }

// Fonts returns the embedded fonts extracted at load time.
func (d *Document) Fonts() []render.Font { return d.fonts }

// Stylesheets returns every manifest stylesheet loaded at load time.
func (d *Document) Stylesheets() []render.Stylesheet { return d.sheets }

// GlobalCSS concatenates every manifest stylesheet in manifest order.
func (d *Document) GlobalCSS() string {
	rules := make([]render.StyleRule, 0, len(d.sheets))
	for _, s := range d.sheets {
		rules = append(rules, render.StyleRule{Kind: render.RuleExternal, Path: s.Path, CSS: s.CSS})
	}
	return render.CombineRules(rules)
}

// Cover returns the cover image bytes and media type, or ok=false when the
// book declares no detectable cover.
func (d *Document) Cover() (data []byte, mediaType string, ok bool) {
	item, ok := d.pkg.FindCoverImage()
	if !ok {
		return nil, "", false
	}
	data, err := d.archive.ReadBinary(item.Path)
	if err != nil {
		return nil, "", false
	}
	return data, item.MediaType, true
}

// Chapter assembles the chapter at the given spine index. With the chapter
// cache enabled, repeated calls for the same index reuse the first result.
func (d *Document) Chapter(ctx context.Context, index int) (*render.Chapter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if d.cache != nil {
		d.mu.Lock()
		if ch, ok := d.cache[index]; ok {
			d.mu.Unlock()
			return ch, nil
		}
		d.mu.Unlock()
	}

	ch, err := d.loader.Load(index)
	if err != nil {
		return nil, err
	}

	if d.cache != nil {
		d.mu.Lock()
		d.cache[index] = ch
		d.mu.Unlock()
	}
	return ch, nil
}

// ChapterByHref resolves an href (fragment allowed, stripped before lookup)
// to the matching spine item's chapter.
func (d *Document) ChapterByHref(ctx context.Context, href string) (*render.Chapter, error) {
	path, _ := epub.SplitFragment(href)
	idx := d.pkg.SpineIndexOf(epub.NormalizePath(path))
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrChapterNotFound, href)
	}
	return d.Chapter(ctx, idx)
}
