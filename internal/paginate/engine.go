package paginate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/mizuki-h/pageflow/internal/book"
)

// Chrome allowances subtracted from the viewport before pagination. The
// page area is what remains after the navigation sidebar and the reader
// controls strip.
const (
	sidebarAllowance  = 32
	controlsAllowance = 72
)

var (
	// ErrCalculating is returned by page accessors while a pagination
	// pass is in flight.
	ErrCalculating = errors.New("paginate: calculation in progress")

	// ErrNotReady is returned by page accessors before the first
	// successful Calculate.
	ErrNotReady = errors.New("paginate: no pagination available")

	// ErrPaginationFailed indicates a pass that produced zero pages.
	ErrPaginationFailed = errors.New("paginate: pagination produced no pages")

	// ErrPageOutOfRange indicates a page number outside [1, TotalPages].
	ErrPageOutOfRange = errors.New("paginate: page out of range")
)

// State is the engine lifecycle phase.
type State int

const (
	StateIdle State = iota
	StateCalculating
	StateReady
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCalculating:
		return "calculating"
	case StateReady:
		return "ready"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Page locates one page within the paginated book.
type Page struct {
	// Number is the 1-based page number across the whole book.
	Number int

	// ChapterIndex is the spine index the page belongs to.
	ChapterIndex int

	// ChapterPage is the 0-based page position within the chapter.
	ChapterPage int

	// Offset and EndOffset bound the page's vertical slice of the
	// chapter, px.
	Offset    float64
	EndOffset float64
}

// Engine paginates a loaded book under a render configuration and serves
// per-page content. A new Calculate supersedes any pass still in flight;
// only the newest pass publishes results. All methods are safe for
// concurrent use.
type Engine struct {
	logger *slog.Logger

	// calcStarted, when set, runs after a pass enters Calculating and
	// before any chapter is measured. Set only by tests.
	calcStarted func()

	mu      sync.Mutex
	gen     uint64
	state   State
	doc     *book.Document
	cfg     RenderConfig
	pages   []Page
	bodies  map[int]string
	css     map[int]string
	perChap map[int]int
	current int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithEngineLogger sets the logger used for per-chapter diagnostics.
func WithEngineLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// NewEngine returns an idle engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{state: StateIdle}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Calculate paginates doc under cfg and replaces any previous result. Only
// linear spine items enter the page sequence; auxiliary (linear="no") items
// contribute no pages.
// Chapters that fail to load or measure are skipped with a warning; the
// pass fails only when no chapter yields a page. If another Calculate
// starts before this one finishes, this pass is discarded silently.
func (e *Engine) Calculate(ctx context.Context, doc *book.Document, cfg RenderConfig) error {
	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	e.gen++
	gen := e.gen
	e.state = StateCalculating
	prevDoc := e.doc
	prevPage := e.current
	e.mu.Unlock()

	if e.calcStarted != nil {
		e.calcStarted()
	}

	contentWidth := cfg.Viewport.Width - sidebarAllowance
	pageHeight := cfg.Viewport.Height - controlsAllowance

	var (
		pages   []Page
		bodies  = make(map[int]string)
		css     = make(map[int]string)
		perChap = make(map[int]int)
	)
	for _, item := range doc.Spine() {
		if !item.Linear {
			continue
		}
		if err := ctx.Err(); err != nil {
			e.abandon(gen)
			return err
		}
		ch, err := doc.Chapter(ctx, item.Order)
		if err != nil {
			e.logger.Warn("skipping chapter", "index", item.Order, "path", item.Path, "error", err)
			continue
		}
		height, err := measureHeight(ch.HTMLBody, cfg, contentWidth)
		if err != nil {
			e.logger.Warn("skipping unmeasurable chapter", "index", item.Order, "path", item.Path, "error", err)
			continue
		}
		n := int(math.Ceil(height / pageHeight))
		if n < 1 {
			n = 1
		}
		for p := 0; p < n; p++ {
			pages = append(pages, Page{
				Number:       len(pages) + 1,
				ChapterIndex: item.Order,
				ChapterPage:  p,
				Offset:       float64(p) * pageHeight,
				EndOffset:    float64(p+1) * pageHeight,
			})
		}
		bodies[item.Order] = ch.HTMLBody
		css[item.Order] = ch.CombinedCSS
		perChap[item.Order] = n
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gen != gen {
		return nil
	}
	if len(pages) == 0 {
		e.state = StateIdle
		e.doc = nil
		e.pages = nil
		return ErrPaginationFailed
	}
	e.state = StateReady
	e.doc = doc
	e.cfg = cfg
	e.pages = pages
	e.bodies = bodies
	e.css = css
	e.perChap = perChap
	if doc == prevDoc && prevPage >= 1 && prevPage <= len(pages) {
		e.current = prevPage
	} else {
		e.current = 1
	}
	return nil
}

// abandon resets the engine to idle if this pass is still the newest one.
func (e *Engine) abandon(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gen == gen {
		e.state = StateIdle
	}
}

// State reports the current lifecycle phase.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// TotalPages reports the page count of the last completed pass, or 0.
func (e *Engine) TotalPages() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pages)
}

// CurrentPage reports the reader's current page number, or 0 when not ready.
func (e *Engine) CurrentPage() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateReady {
		return 0
	}
	return e.current
}

// ready must be called with the lock held.
func (e *Engine) ready() error {
	switch e.state {
	case StateCalculating:
		return ErrCalculating
	case StateIdle:
		return ErrNotReady
	}
	return nil
}

// Page returns the location of page n.
func (e *Engine) Page(n int) (Page, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ready(); err != nil {
		return Page{}, err
	}
	if n < 1 || n > len(e.pages) {
		return Page{}, fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, n, len(e.pages))
	}
	return e.pages[n-1], nil
}

// GoToPage moves the reader to page n, clamping into [1, TotalPages], and
// returns the resulting location.
func (e *Engine) GoToPage(n int) (Page, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ready(); err != nil {
		return Page{}, err
	}
	if n < 1 {
		n = 1
	}
	if n > len(e.pages) {
		n = len(e.pages)
	}
	e.current = n
	return e.pages[n-1], nil
}

// NextPage advances one page, clamping at the last page.
func (e *Engine) NextPage() (Page, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ready(); err != nil {
		return Page{}, err
	}
	if e.current < len(e.pages) {
		e.current++
	}
	return e.pages[e.current-1], nil
}

// PrevPage moves back one page, clamping at page 1.
func (e *Engine) PrevPage() (Page, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ready(); err != nil {
		return Page{}, err
	}
	if e.current > 1 {
		e.current--
	}
	return e.pages[e.current-1], nil
}

// FirstPageOfChapter returns the page number where the chapter at spine
// index ci begins.
func (e *Engine) FirstPageOfChapter(ci int) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ready(); err != nil {
		return 0, err
	}
	return e.firstPageOf(ci)
}

// firstPageOf must be called with the lock held.
func (e *Engine) firstPageOf(ci int) (int, error) {
	for _, p := range e.pages {
		if p.ChapterIndex == ci {
			return p.Number, nil
		}
	}
	return 0, fmt.Errorf("%w: no pages for chapter %d", ErrPageOutOfRange, ci)
}

// GoToChapter moves the reader to the first page of the chapter at spine
// index ci.
func (e *Engine) GoToChapter(ci int) (Page, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ready(); err != nil {
		return Page{}, err
	}
	n, err := e.firstPageOf(ci)
	if err != nil {
		return Page{}, err
	}
	e.current = n
	return e.pages[n-1], nil
}

// PageContent renders the HTML for page n. Single-page chapters are
// returned whole; pages of longer chapters are clipped to the page area
// via a fixed-height frame and a negative offset. When CSS is enabled the
// chapter's combined stylesheet precedes the markup.
func (e *Engine) PageContent(n int) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ready(); err != nil {
		return "", err
	}
	if n < 1 || n > len(e.pages) {
		return "", fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, n, len(e.pages))
	}
	p := e.pages[n-1]
	body := e.bodies[p.ChapterIndex]

	var content string
	if e.perChap[p.ChapterIndex] == 1 {
		content = body
	} else {
		pageHeight := e.cfg.Viewport.Height - controlsAllowance
		content = fmt.Sprintf(
			`<div style="height:%.0fpx;overflow:hidden"><div style="position:relative;top:%.0fpx">%s</div></div>`,
			pageHeight, -p.Offset, body)
	}
	if e.cfg.CSSEnabled {
		if css := e.css[p.ChapterIndex]; css != "" {
			content = "<style>\n" + css + "\n</style>\n" + content
		}
	}
	return content, nil
}
