package epub

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// ncxMediaType identifies the EPUB 2 NCX table of contents in the manifest.
const ncxMediaType = "application/x-dtbncx+xml"

// navSource is the table-of-contents schema selected from the manifest.
type navSource int

const (
	navSourceNone navSource = iota
	navSourceEPUB3
	navSourceNCX
)

// ResolveNavigation locates and parses the book's table of contents,
// preferring the EPUB 3 nav document and falling back to the EPUB 2 NCX.
// When neither exists (or the selected document cannot be parsed) a flat
// list with one node per linear spine item is synthesized, so navigation is
// never nil for a book with content. Parse failures are non-fatal.
func ResolveNavigation(a *Archive, pkg *Package) []NavNode {
	source, item := selectNavSource(pkg)

	var (
		nodes []NavNode
		err   error
	)
	switch source {
	case navSourceEPUB3:
		nodes, err = parseNavDocument(a, item.Path)
	case navSourceNCX:
		nodes, err = parseNCX(a, item.Path)
	}
	if err != nil {
		a.log().Warn("failed to parse table of contents", "path", item.Path, "error", err)
	}
	if len(nodes) == 0 {
		return synthesizeNavigation(pkg)
	}
	return nodes
}

// selectNavSource picks the TOC schema: any manifest item flagged as the
// navigation document wins, else the first NCX media type.
func selectNavSource(pkg *Package) (navSource, ManifestItem) {
	for _, id := range pkg.ManifestOrder {
		if item := pkg.Manifest[id]; item.IsNav {
			return navSourceEPUB3, item
		}
	}
	for _, id := range pkg.ManifestOrder {
		if item := pkg.Manifest[id]; item.MediaType == ncxMediaType {
			return navSourceNCX, item
		}
	}
	return navSourceNone, ManifestItem{}
}

// synthesizeNavigation builds a flat TOC with one entry per linear spine item.
func synthesizeNavigation(pkg *Package) []NavNode {
	var nodes []NavNode
	for _, si := range pkg.Spine {
		if !si.Linear {
			continue
		}
		nodes = append(nodes, NavNode{
			Title: fmt.Sprintf("Chapter %d", si.Order+1),
			Path:  si.Path,
		})
	}
	return nodes
}

// --- EPUB 3 nav document (HTML nested lists) ---

// parseNavDocument parses an EPUB 3 nav document into NavNodes. The <nav>
// marked with epub:type="toc" is preferred; otherwise the first <nav> with a
// list is used.
func parseNavDocument(a *Archive, navPath string) ([]NavNode, error) {
	data, err := a.ReadBinary(navPath)
	if err != nil {
		return nil, err
	}

	r, err := charset.NewReader(bytes.NewReader(data), "application/xhtml+xml")
	if err != nil {
		r = bytes.NewReader(data)
	}
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse nav document: %w", err)
	}

	nav := findTOCNav(doc)
	if nav == nil {
		return nil, nil
	}
	list := firstList(nav)
	if list == nil {
		return nil, nil
	}
	return parseNavList(list, navPath), nil
}

// findTOCNav returns the nav element carrying epub:type="toc", or the first
// nav element when none is marked.
func findTOCNav(doc *goquery.Document) *goquery.Selection {
	var toc, first *goquery.Selection
	doc.Find("nav").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if first == nil {
			first = s
		}
		for _, typ := range strings.Fields(s.AttrOr("epub:type", "")) {
			if typ == "toc" {
				toc = s
				return false
			}
		}
		return true
	})
	if toc != nil {
		return toc
	}
	return first
}

// firstList returns the nav's list element, preferring a direct child so a
// nested sub-list is not mistaken for the top level.
func firstList(nav *goquery.Selection) *goquery.Selection {
	if list := nav.ChildrenFiltered("ol, ul").First(); list.Length() > 0 {
		return list
	}
	if list := nav.Find("ol, ul").First(); list.Length() > 0 {
		return list
	}
	return nil
}

// parseNavList converts the list items of an ol/ul into NavNodes, recursing
// into nested lists. Items without a resolvable title are dropped, as are
// label-only items without children.
func parseNavList(list *goquery.Selection, navPath string) []NavNode {
	var nodes []NavNode
	list.ChildrenFiltered("li").Each(func(i int, li *goquery.Selection) {
		node := NavNode{}

		if anchor := li.ChildrenFiltered("a").First(); anchor.Length() > 0 {
			node.Title = strings.TrimSpace(anchor.Text())
			if href, ok := anchor.Attr("href"); ok {
				rawPath, fragment := SplitFragment(href)
				if rawPath != "" {
					node.Path = ResolveHref(navPath, rawPath)
				}
				node.Fragment = fragment
			}
		} else {
			// Label-only item: its text minus any nested list.
			clone := li.Clone()
			clone.Find("ol, ul").Remove()
			node.Title = strings.TrimSpace(clone.Text())
		}

		if nested := li.ChildrenFiltered("ol, ul").First(); nested.Length() > 0 {
			node.Children = parseNavList(nested, navPath)
		}

		if node.Title == "" {
			return
		}
		if node.Path == "" && len(node.Children) == 0 {
			return
		}
		nodes = append(nodes, node)
	})
	return nodes
}

// --- EPUB 2 NCX (XML navPoint tree) ---

type ncxDocument struct {
	XMLName xml.Name  `xml:"ncx"`
	NavMap  ncxNavMap `xml:"navMap"`
}

type ncxNavMap struct {
	NavPoints []ncxNavPoint `xml:"navPoint"`
}

type ncxNavPoint struct {
	ID        string        `xml:"id,attr"`
	PlayOrder string        `xml:"playOrder,attr"`
	Label     ncxNavLabel   `xml:"navLabel"`
	Content   ncxContent    `xml:"content"`
	Children  []ncxNavPoint `xml:"navPoint"`
}

type ncxNavLabel struct {
	Text string `xml:"text"`
}

type ncxContent struct {
	Src string `xml:"src,attr"`
}

// parseNCX parses an EPUB 2 NCX document into NavNodes.
func parseNCX(a *Archive, ncxPath string) ([]NavNode, error) {
	data, err := a.ReadBinary(ncxPath)
	if err != nil {
		return nil, err
	}

	var doc ncxDocument
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse NCX: %w", err)
	}

	return convertNavPoints(doc.NavMap.NavPoints, ncxPath), nil
}

// convertNavPoints recursively maps navPoint elements to NavNodes, ordering
// siblings by playOrder when present.
func convertNavPoints(points []ncxNavPoint, ncxPath string) []NavNode {
	var nodes []NavNode
	for _, np := range points {
		node := NavNode{
			Title: strings.TrimSpace(np.Label.Text),
		}
		if order, err := strconv.Atoi(strings.TrimSpace(np.PlayOrder)); err == nil && order > 0 {
			node.SourceOrder = order
		}
		if src := strings.TrimSpace(np.Content.Src); src != "" {
			rawPath, fragment := SplitFragment(src)
			if rawPath != "" {
				node.Path = ResolveHref(ncxPath, rawPath)
			}
			node.Fragment = fragment
		}
		node.Children = convertNavPoints(np.Children, ncxPath)

		if node.Title == "" {
			continue
		}
		if node.Path == "" && len(node.Children) == 0 {
			continue
		}
		nodes = append(nodes, node)
	}

	// playOrder governs sibling order when both sides carry one; document
	// order is kept otherwise.
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].SourceOrder == 0 || nodes[j].SourceOrder == 0 {
			return false
		}
		return nodes[i].SourceOrder < nodes[j].SourceOrder
	})
	return nodes
}
