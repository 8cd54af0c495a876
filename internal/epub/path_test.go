package epub

import "testing"

func TestResolveHref(t *testing.T) {
	tests := []struct {
		name string
		base string
		ref  string
		want string
	}{
		{name: "same directory", base: "OEBPS/content.opf", ref: "chapter1.xhtml", want: "OEBPS/chapter1.xhtml"},
		{name: "subdirectory", base: "OEBPS/content.opf", ref: "text/chapter1.xhtml", want: "OEBPS/text/chapter1.xhtml"},
		{name: "parent directory", base: "OEBPS/css/main.css", ref: "../fonts/serif.ttf", want: "OEBPS/fonts/serif.ttf"},
		{name: "two levels up", base: "OEBPS/text/sub/ch.xhtml", ref: "../../images/pic.png", want: "OEBPS/images/pic.png"},
		{name: "root relative", base: "OEBPS/nav.xhtml", ref: "/images/cover.jpg", want: "images/cover.jpg"},
		{name: "base at archive root", base: "content.opf", ref: "ch1.xhtml", want: "ch1.xhtml"},
		{name: "dot segment", base: "OEBPS/content.opf", ref: "./ch1.xhtml", want: "OEBPS/ch1.xhtml"},
		{name: "whitespace trimmed", base: "OEBPS/nav.xhtml", ref: " ch1.xhtml ", want: "OEBPS/ch1.xhtml"},
		{name: "empty ref", base: "OEBPS/nav.xhtml", ref: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveHref(tt.base, tt.ref); got != tt.want {
				t.Errorf("ResolveHref(%q, %q) = %q, want %q", tt.base, tt.ref, got, tt.want)
			}
		})
	}
}

func TestSplitFragment(t *testing.T) {
	tests := []struct {
		href         string
		wantPath     string
		wantFragment string
	}{
		{"chapter1.xhtml#sec1", "chapter1.xhtml", "sec1"},
		{"chapter1.xhtml", "chapter1.xhtml", ""},
		{"#sec1", "", "sec1"},
		{"", "", ""},
		{"a.xhtml#x#y", "a.xhtml", "x#y"},
	}

	for _, tt := range tests {
		gotPath, gotFragment := SplitFragment(tt.href)
		if gotPath != tt.wantPath || gotFragment != tt.wantFragment {
			t.Errorf("SplitFragment(%q) = (%q, %q), want (%q, %q)",
				tt.href, gotPath, gotFragment, tt.wantPath, tt.wantFragment)
		}
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct{ in, want string }{
		{"./OEBPS/ch1.xhtml", "OEBPS/ch1.xhtml"},
		{"/OEBPS/ch1.xhtml", "OEBPS/ch1.xhtml"},
		{`OEBPS\ch1.xhtml`, "OEBPS/ch1.xhtml"},
		{"OEBPS/ch1.xhtml", "OEBPS/ch1.xhtml"},
	}
	for _, tt := range tests {
		if got := NormalizePath(tt.in); got != tt.want {
			t.Errorf("NormalizePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
