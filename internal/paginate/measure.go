package paginate

import (
	"bytes"
	"encoding/base64"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"strings"

	"golang.org/x/net/html"

	// Match the inliner's decoder set so intrinsic sizes of inlined
	// webp/tiff/bmp images resolve here too.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// The measurement model. There is no layout engine here: realized content
// height is approximated from a per-rune width model and a block-level walk
// of the chapter markup. The approximation is deterministic for a given
// (markup, config) pair, which is what pagination needs; page boundaries are
// an implementation-defined approximation, not a rendering contract.
const (
	// latinEmWidth is the average advance of proportional Latin glyphs
	// as a fraction of the font size.
	latinEmWidth = 0.52

	// cjkEmWidth covers full-width scripts.
	cjkEmWidth = 1.0

	// fallbackImageHeight is charged for images whose intrinsic size
	// cannot be decoded.
	fallbackImageHeight = 150
)

// headingScale mirrors the browser default font scaling for h1..h6.
var headingScale = map[string]float64{
	"h1": 2.0, "h2": 1.5, "h3": 1.17, "h4": 1.0, "h5": 0.83, "h6": 0.67,
}

// blockTags are elements that interrupt an inline run.
var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"div": true, "dl": true, "dd": true, "dt": true, "fieldset": true,
	"figure": true, "figcaption": true, "footer": true, "h1": true,
	"h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "li": true, "nav": true, "ol": true,
	"p": true, "pre": true, "section": true, "table": true, "tr": true,
	"ul": true,
}

// spacedBlocks get a margin charge after flushing, approximating default
// browser margins on paragraphs and headings.
var spacedBlocks = map[string]bool{
	"p": true, "blockquote": true, "figure": true, "pre": true, "table": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// skippedTags contribute no height.
var skippedTags = map[string]bool{
	"script": true, "style": true, "head": true, "title": true, "link": true, "meta": true,
}

// measurer accumulates estimated height while walking a chapter body.
type measurer struct {
	cfg          RenderConfig
	contentWidth float64

	height float64
	run    float64 // width of the current inline run, px
	scale  float64 // current heading scale
}

// measureHeight estimates the realized height in px of a chapter body
// fragment laid out at contentWidth under cfg.
func measureHeight(body string, cfg RenderConfig, contentWidth float64) (float64, error) {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return 0, err
	}

	m := &measurer{cfg: cfg, contentWidth: contentWidth, scale: 1}
	m.walk(findBody(doc))
	m.flush()
	return m.height, nil
}

// findBody locates the body element html.Parse wraps fragments in.
func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}

func (m *measurer) walk(n *html.Node) {
	if n == nil {
		return
	}
	switch n.Type {
	case html.TextNode:
		m.run += m.textWidth(n.Data)
		return
	case html.ElementNode:
		// handled below
	default:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			m.walk(c)
		}
		return
	}

	tag := n.Data
	if skippedTags[tag] {
		return
	}

	switch {
	case tag == "br":
		m.flushMinOneLine()
		return
	case tag == "img":
		m.flush()
		m.height += m.imageHeight(n)
		return
	case tag == "hr":
		m.flush()
		m.height += m.linePx()
		return
	}

	if blockTags[tag] {
		m.flush()
		prevScale := m.scale
		if s, ok := headingScale[tag]; ok {
			m.scale = s
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			m.walk(c)
		}
		m.flush()
		if spacedBlocks[tag] {
			m.height += 0.5 * m.linePx()
		}
		m.scale = prevScale
		return
	}

	// Inline element: contents join the current run.
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		m.walk(c)
	}
}

// flush converts the pending inline run into whole lines of height.
func (m *measurer) flush() {
	if m.run <= 0 {
		return
	}
	lines := math.Ceil(m.run / m.contentWidth)
	m.height += lines * m.linePx()
	m.run = 0
}

// flushMinOneLine flushes and charges at least one line (a bare <br>).
func (m *measurer) flushMinOneLine() {
	if m.run <= 0 {
		m.height += m.linePx()
		return
	}
	m.flush()
}

// linePx is the height of one text line at the current scale.
func (m *measurer) linePx() float64 {
	return m.cfg.FontSize * m.cfg.LineHeight * m.scale
}

// textWidth estimates the advance width of text after whitespace collapse.
func (m *measurer) textWidth(text string) float64 {
	collapsed := strings.Join(strings.Fields(text), " ")
	if collapsed == "" {
		return 0
	}
	var em float64
	for _, r := range collapsed {
		if isWideRune(r) {
			em += cjkEmWidth
		} else {
			em += latinEmWidth
		}
	}
	return em * m.cfg.FontSize * m.scale
}

// isWideRune reports whether a rune occupies a full em (CJK and other
// full-width scripts).
func isWideRune(r rune) bool {
	switch {
	case r >= 0x1100 && r <= 0x115F, // Hangul Jamo
		r >= 0x2E80 && r <= 0x9FFF, // CJK radicals through unified ideographs
		r >= 0xAC00 && r <= 0xD7A3, // Hangul syllables
		r >= 0xF900 && r <= 0xFAFF, // CJK compatibility ideographs
		r >= 0xFF00 && r <= 0xFF60: // full-width forms
		return true
	}
	return false
}

// imageHeight is the intrinsic image height scaled to fit contentWidth.
// Only data URIs are decodable here (the chapter loader inlines images
// before pagination); anything else gets the fallback height.
func (m *measurer) imageHeight(n *html.Node) float64 {
	var src string
	for _, attr := range n.Attr {
		if attr.Key == "src" {
			src = attr.Val
			break
		}
	}
	data, ok := decodeDataURI(src)
	if !ok {
		return fallbackImageHeight
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 {
		return fallbackImageHeight
	}
	w, h := float64(cfg.Width), float64(cfg.Height)
	if w > m.contentWidth {
		h = h * m.contentWidth / w
	}
	return h
}

// decodeDataURI extracts the payload of a base64 data URI.
func decodeDataURI(src string) ([]byte, bool) {
	if !strings.HasPrefix(src, "data:") {
		return nil, false
	}
	idx := strings.Index(src, "base64,")
	if idx < 0 {
		return nil, false
	}
	data, err := base64.StdEncoding.DecodeString(src[idx+len("base64,"):])
	if err != nil {
		return nil, false
	}
	return data, true
}
