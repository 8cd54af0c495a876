package epub

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"path"
	"strings"

	"golang.org/x/net/html/charset"
)

// Sentinel values used when the OPF omits required metadata.
const (
	defaultTitle    = "Unknown Title"
	defaultCreator  = "Unknown Author"
	defaultLanguage = "en"
)

// opfPackage mirrors the OPF XML structure.
type opfPackage struct {
	XMLName  xml.Name    `xml:"package"`
	Version  string      `xml:"version,attr"`
	UniqueID string      `xml:"unique-identifier,attr"`
	Metadata opfMetadata `xml:"metadata"`
	Manifest opfManifest `xml:"manifest"`
	Spine    opfSpine    `xml:"spine"`
}

type opfMetadata struct {
	Title       []string        `xml:"title"`
	Creator     []string        `xml:"creator"`
	Language    []string        `xml:"language"`
	Identifier  []opfIdentifier `xml:"identifier"`
	Publisher   []string        `xml:"publisher"`
	Date        []string        `xml:"date"`
	Description []string        `xml:"description"`
	Subject     []string        `xml:"subject"`
	Rights      []string        `xml:"rights"`
	Meta        []opfMeta       `xml:"meta"`
}

type opfIdentifier struct {
	Value string `xml:",chardata"`
	ID    string `xml:"id,attr"`
}

type opfMeta struct {
	Name    string `xml:"name,attr"`
	Content string `xml:"content,attr"`
}

type opfManifest struct {
	Items []opfManifestItem `xml:"item"`
}

type opfManifestItem struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr"`
}

type opfSpine struct {
	Toc      string       `xml:"toc,attr"`
	ItemRefs []opfItemRef `xml:"itemref"`
}

type opfItemRef struct {
	IDRef  string `xml:"idref,attr"`
	Linear string `xml:"linear,attr"`
}

// ParsePackage reads and parses the package document at packagePath.
// Manifest item paths are resolved against the package document's directory.
// Spine itemrefs whose idref does not resolve in the manifest are skipped
// with a warning, so SpineItem.Order stays gapless.
func ParsePackage(a *Archive, packagePath string) (*Package, error) {
	data, err := a.ReadBinary(packagePath)
	if err != nil {
		return nil, err
	}

	// Element names are matched without namespace so that both dc:-prefixed
	// and unprefixed Dublin Core elements resolve.
	var raw opfPackage
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPackage, err)
	}

	packagePath = NormalizePath(packagePath)
	baseDir := path.Dir(packagePath)
	if baseDir == "." {
		baseDir = ""
	}

	pkg := &Package{
		Metadata: parseMetadata(&raw.Metadata),
		Manifest: make(map[string]ManifestItem, len(raw.Manifest.Items)),
		BasePath: baseDir,
	}

	for _, item := range raw.Manifest.Items {
		if item.ID == "" || item.Href == "" {
			continue
		}
		mi := ManifestItem{
			ID:        item.ID,
			Path:      ResolveHref(packagePath, item.Href),
			MediaType: item.MediaType,
		}
		if item.Properties != "" {
			mi.Properties = strings.Fields(item.Properties)
			for _, prop := range mi.Properties {
				switch prop {
				case "nav":
					mi.IsNav = true
				case "cover-image":
					mi.IsCoverImage = true
				}
			}
		}
		pkg.Manifest[item.ID] = mi
		pkg.ManifestOrder = append(pkg.ManifestOrder, item.ID)
	}

	for _, ref := range raw.Spine.ItemRefs {
		item, ok := pkg.Manifest[ref.IDRef]
		if !ok {
			a.log().Warn("spine itemref not in manifest, skipping", "idref", ref.IDRef)
			continue
		}
		pkg.Spine = append(pkg.Spine, SpineItem{
			ID:        item.ID,
			Path:      item.Path,
			MediaType: item.MediaType,
			Linear:    ref.Linear != "no",
			Order:     len(pkg.Spine),
		})
	}

	return pkg, nil
}

// parseMetadata extracts Dublin Core fields, applying sentinel defaults for
// the required title/creator/language triple.
func parseMetadata(meta *opfMetadata) Metadata {
	md := Metadata{
		Title:    defaultTitle,
		Creator:  defaultCreator,
		Language: defaultLanguage,
	}

	if v := firstNonEmpty(meta.Title); v != "" {
		md.Title = v
	}
	if v := firstNonEmpty(meta.Creator); v != "" {
		md.Creator = v
	}
	if v := firstNonEmpty(meta.Language); v != "" {
		md.Language = v
	}
	if len(meta.Identifier) > 0 {
		md.Identifier = strings.TrimSpace(meta.Identifier[0].Value)
	}
	md.Publisher = firstNonEmpty(meta.Publisher)
	md.Date = firstNonEmpty(meta.Date)
	md.Description = firstNonEmpty(meta.Description)
	md.Rights = firstNonEmpty(meta.Rights)
	for _, s := range meta.Subject {
		if s = strings.TrimSpace(s); s != "" {
			md.Subjects = append(md.Subjects, s)
		}
	}

	for _, m := range meta.Meta {
		if m.Name == "cover" && m.Content != "" {
			md.CoverID = m.Content
			break
		}
	}

	return md
}

func firstNonEmpty(values []string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
