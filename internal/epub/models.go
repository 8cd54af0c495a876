package epub

// Metadata holds the Dublin Core metadata extracted from the package document.
// Title, Creator and Language fall back to sentinel values when the OPF omits
// them; the remaining fields are empty strings when absent.
type Metadata struct {
	Title       string
	Creator     string
	Language    string
	Identifier  string
	Publisher   string
	Date        string
	Description string
	Rights      string
	Subjects    []string

	// CoverID is the EPUB 2 cover image manifest item ID
	// (from <meta name="cover" content="...">).
	CoverID string
}

// ManifestItem is one <item> of the OPF manifest. Path is archive-internal,
// already resolved against the package document's directory.
type ManifestItem struct {
	ID         string
	Path       string
	MediaType  string
	Properties []string

	// IsNav marks the EPUB 3 navigation document (properties contain "nav").
	IsNav bool

	// IsCoverImage marks the cover (properties contain "cover-image").
	IsCoverImage bool
}

// SpineItem is one accepted <itemref> of the spine. Order is positional and
// equals the item's index in Package.Spine: itemrefs with unresolvable idrefs
// are skipped without leaving gaps, so Order is the canonical chapter index.
type SpineItem struct {
	ID        string // manifest item ID
	Path      string // resolved archive-internal path
	MediaType string
	Linear    bool
	Order     int
}

// Package is the parsed OPF: metadata, manifest and reading order.
type Package struct {
	Metadata Metadata

	// Manifest maps item ID to item. ManifestOrder preserves document order
	// for deterministic iteration.
	Manifest      map[string]ManifestItem
	ManifestOrder []string

	Spine []SpineItem

	// BasePath is the directory of the package document within the archive
	// ("" when the OPF sits at the root).
	BasePath string
}

// ItemByPath returns the manifest item whose Path matches p.
func (p *Package) ItemByPath(path string) (ManifestItem, bool) {
	for _, id := range p.ManifestOrder {
		if item := p.Manifest[id]; item.Path == path {
			return item, true
		}
	}
	return ManifestItem{}, false
}

// SpineIndexOf returns the spine position of the given archive-internal path,
// or -1 when no spine item references it.
func (p *Package) SpineIndexOf(path string) int {
	for _, si := range p.Spine {
		if si.Path == path {
			return si.Order
		}
	}
	return -1
}

// NavNode is one entry of the normalized table of contents, independent of
// whether it was parsed from an EPUB 3 nav document or an EPUB 2 NCX.
type NavNode struct {
	// Title is the display label. Nodes without a resolvable title are
	// dropped during parsing.
	Title string

	// Path is the fragment-free archive-internal target path. Empty for
	// label-only nodes that merely group children.
	Path string

	// Fragment is the target fragment identifier without the leading '#'.
	Fragment string

	// SourceOrder is the NCX playOrder when present, 0 otherwise. Nav
	// documents carry no explicit ordering, so it stays 0 there.
	SourceOrder int

	Children []NavNode
}
