package render

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/mizuki-h/pageflow/internal/epub"
)

func TestExtractAll(t *testing.T) {
	fontData := []byte{0x00, 0x01, 0x00, 0x00, 0xDE, 0xAD}
	a := buildArchive(t,
		archiveEntry{name: "OEBPS/fonts/serif.ttf", data: fontData},
		archiveEntry{name: "OEBPS/fonts/mystery.bin", data: fontData},
	)
	pkg := testPackage([]epub.ManifestItem{
		{ID: "f1", Path: "OEBPS/fonts/serif.ttf", MediaType: "application/x-font-ttf"},
		{ID: "f2", Path: "OEBPS/fonts/mystery.bin", MediaType: "application/octet-stream"},
		{ID: "ch1", Path: "OEBPS/ch1.xhtml", MediaType: "application/xhtml+xml"},
	})

	fonts := NewFontResolver(a, nil).ExtractAll(pkg)
	// mystery.bin has the generic media type and no font marker, so only
	// the ttf qualifies.
	if len(fonts) != 1 {
		t.Fatalf("ExtractAll() returned %d fonts, want 1", len(fonts))
	}
	f := fonts[0]
	if f.FileName != "serif.ttf" || f.MediaType != "application/x-font-ttf" {
		t.Errorf("font = %+v", f)
	}
	wantPrefix := "data:application/x-font-ttf;base64,"
	if !strings.HasPrefix(f.DataURI, wantPrefix) {
		t.Fatalf("DataURI prefix = %q", f.DataURI[:min(len(f.DataURI), 48)])
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(f.DataURI, wantPrefix))
	if err != nil || string(decoded) != string(fontData) {
		t.Errorf("DataURI does not round-trip font bytes: %v", err)
	}
}

func TestResolveFontMIME(t *testing.T) {
	tests := []struct {
		name string
		item epub.ManifestItem
		want string
	}{
		{name: "manifest type wins", item: epub.ManifestItem{Path: "f.ttf", MediaType: "font/woff2"}, want: "font/woff2"},
		{name: "octet-stream falls to extension", item: epub.ManifestItem{Path: "f.woff", MediaType: "application/octet-stream"}, want: "font/woff"},
		{name: "eot extension", item: epub.ManifestItem{Path: "f.EOT", MediaType: "application/octet-stream"}, want: "application/vnd.ms-fontobject"},
		{name: "unknown extension defaults", item: epub.ManifestItem{Path: "f.xyz", MediaType: "application/octet-stream"}, want: "font/opentype"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveFontMIME(tt.item); got != tt.want {
				t.Errorf("resolveFontMIME(%+v) = %q, want %q", tt.item, got, tt.want)
			}
		})
	}
}

func TestIsFontMediaType(t *testing.T) {
	for mt, want := range map[string]bool{
		"font/ttf":                 true,
		"application/x-font-otf":   true,
		"application/font-woff":    true,
		"FONT/WOFF2":               true,
		"application/octet-stream": false,
		"application/xhtml+xml":    false,
		"text/css":                 false,
	} {
		if got := isFontMediaType(mt); got != want {
			t.Errorf("isFontMediaType(%q) = %v, want %v", mt, got, want)
		}
	}
}

func TestRewriteFontFaceURLs(t *testing.T) {
	fontData := []byte("fontbytes")
	a := buildArchive(t,
		archiveEntry{name: "OEBPS/fonts/serif.ttf", data: fontData},
	)
	pkg := testPackage([]epub.ManifestItem{
		{ID: "f1", Path: "OEBPS/fonts/serif.ttf", MediaType: "font/ttf"},
	})
	r := NewFontResolver(a, nil)
	r.ExtractAll(pkg)

	css := `@font-face {
  font-family: "Serif";
  src: url('../fonts/serif.ttf');
}
body { background: url('../images/bg.png'); }`

	got := r.RewriteFontFaceURLs(css, "OEBPS/css/main.css")

	if !strings.Contains(got, "url('data:font/ttf;base64,") {
		t.Errorf("font url not rewritten:\n%s", got)
	}
	// url() outside @font-face stays untouched.
	if !strings.Contains(got, "url('../images/bg.png')") {
		t.Errorf("non-font url modified:\n%s", got)
	}
}

func TestRewriteFontFaceURLs_Unresolvable(t *testing.T) {
	a := buildArchive(t)
	r := NewFontResolver(a, nil)

	css := `@font-face { src: url("missing.woff"); }`
	if got := r.RewriteFontFaceURLs(css, "OEBPS/css/main.css"); got != css {
		t.Errorf("unresolvable url modified: %q", got)
	}
}

func TestRewriteFontFaceURLs_DataURIUntouched(t *testing.T) {
	a := buildArchive(t)
	r := NewFontResolver(a, nil)

	css := `@font-face { src: url(data:font/ttf;base64,AAAA); }`
	if got := r.RewriteFontFaceURLs(css, "OEBPS/css/main.css"); got != css {
		t.Errorf("data uri rewritten: %q", got)
	}
}
