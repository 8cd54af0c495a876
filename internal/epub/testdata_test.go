package epub

import (
	"archive/zip"
	"bytes"
	"testing"
)

// zipEntry describes one member of an in-memory test archive.
type zipEntry struct {
	name     string
	data     string
	deflated bool
}

// buildZip assembles an in-memory ZIP from entries, preserving order.
func buildZip(t *testing.T, entries []zipEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, e := range entries {
		method := zip.Store
		if e.deflated {
			method = zip.Deflate
		}
		fw, err := w.CreateHeader(&zip.FileHeader{Name: e.name, Method: method})
		if err != nil {
			t.Fatalf("create %s: %v", e.name, err)
		}
		if _, err := fw.Write([]byte(e.data)); err != nil {
			t.Fatalf("write %s: %v", e.name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

const testContainerXML = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

const testOPF = `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>Test Book</dc:title>
    <dc:creator>Test Author</dc:creator>
    <dc:language>en</dc:language>
  </metadata>
  <manifest>
    <item id="chapter1" href="chapter1.xhtml" media-type="application/xhtml+xml"/>
    <item id="chapter2" href="text/chapter2.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine>
    <itemref idref="chapter1"/>
    <itemref idref="chapter2"/>
  </spine>
</package>`

const testChapterXHTML = `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>Chapter One</title></head>
<body><h1>Chapter One</h1><p>Hello, World!</p></body>
</html>`

// minimalEPUB builds a small valid EPUB with optional extra entries.
func minimalEPUB(t *testing.T, extra ...zipEntry) []byte {
	t.Helper()
	entries := []zipEntry{
		{name: "mimetype", data: "application/epub+zip"},
		{name: "META-INF/container.xml", data: testContainerXML, deflated: true},
		{name: "OEBPS/content.opf", data: testOPF, deflated: true},
		{name: "OEBPS/chapter1.xhtml", data: testChapterXHTML, deflated: true},
		{name: "OEBPS/text/chapter2.xhtml", data: testChapterXHTML, deflated: true},
	}
	entries = append(entries, extra...)
	return buildZip(t, entries)
}

// openEPUB builds and opens a minimal EPUB, failing the test on error.
func openEPUB(t *testing.T, extra ...zipEntry) *Archive {
	t.Helper()
	a, err := Open(minimalEPUB(t, extra...))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return a
}
