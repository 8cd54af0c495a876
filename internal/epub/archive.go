package epub

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// epubMimetype is the required content of the mimetype entry.
const epubMimetype = "application/epub+zip"

// Archive provides read-only access to the contents of an EPUB (ZIP) archive
// held in memory. It is safe for concurrent reads after Open returns.
type Archive struct {
	zr     *zip.Reader
	files  map[string]*zip.File
	logger *slog.Logger
}

// Entry describes one archive member.
type Entry struct {
	Path  string
	IsDir bool
}

// Open reads the ZIP central directory from data and validates the EPUB
// mimetype entry. It returns ErrInvalidArchive when the ZIP is unreadable and
// ErrNotAnEPUB when the mimetype entry is missing or has the wrong content.
func Open(data []byte) (*Archive, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}

	a := &Archive{
		zr:    zr,
		files: make(map[string]*zip.File, len(zr.File)),
	}
	for _, f := range zr.File {
		a.files[NormalizePath(f.Name)] = f
	}

	if err := a.validateMimetype(); err != nil {
		return nil, err
	}
	return a, nil
}

// SetLogger sets the logger used for non-fatal diagnostics. Parsing helpers
// that receive the archive share it, so a loaded book logs through one place.
func (a *Archive) SetLogger(l *slog.Logger) {
	a.logger = l
}

func (a *Archive) log() *slog.Logger {
	if a.logger != nil {
		return a.logger
	}
	return slog.Default()
}

// ReadBinary returns the decompressed bytes of the archive member at path.
func (a *Archive) ReadBinary(path string) ([]byte, error) {
	f, ok := a.files[NormalizePath(path)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrResourceNotFound, path)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// ReadText returns the archive member at path as a string.
func (a *Archive) ReadText(path string) (string, error) {
	data, err := a.ReadBinary(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Has reports whether the archive contains a member at path.
func (a *Archive) Has(path string) bool {
	_, ok := a.files[NormalizePath(path)]
	return ok
}

// Entries lists all archive members in central-directory order.
func (a *Archive) Entries() []Entry {
	entries := make([]Entry, 0, len(a.zr.File))
	for _, f := range a.zr.File {
		entries = append(entries, Entry{
			Path:  NormalizePath(f.Name),
			IsDir: f.FileInfo().IsDir(),
		})
	}
	return entries
}

// validateMimetype checks the mandatory mimetype entry, which must be the
// archive's first member. Content equality is the normative check; a
// compressed mimetype entry is tolerated with a warning since readers in the
// wild produce such archives.
func (a *Archive) validateMimetype() error {
	f, ok := a.files["mimetype"]
	if !ok {
		return fmt.Errorf("%w: missing mimetype entry", ErrNotAnEPUB)
	}
	if NormalizePath(a.zr.File[0].Name) != "mimetype" {
		return fmt.Errorf("%w: mimetype entry is not first in the archive", ErrNotAnEPUB)
	}
	if f.Method != zip.Store {
		a.log().Warn("mimetype entry is compressed, expected stored")
	}
	content, err := a.ReadBinary("mimetype")
	if err != nil {
		return fmt.Errorf("%w: unreadable mimetype entry", ErrNotAnEPUB)
	}
	if strings.TrimSpace(string(content)) != epubMimetype {
		return fmt.Errorf("%w: mimetype is %q", ErrNotAnEPUB, strings.TrimSpace(string(content)))
	}
	return nil
}
