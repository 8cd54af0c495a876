package epub

import "errors"

// Sentinel errors returned by the epub package. Callers match with errors.Is;
// wrapped variants carry the offending path or detail.
var (
	// ErrInvalidArchive indicates the ZIP central directory could not be read.
	ErrInvalidArchive = errors.New("epub: invalid archive")

	// ErrNotAnEPUB indicates the mimetype entry is missing or its content is
	// not "application/epub+zip".
	ErrNotAnEPUB = errors.New("epub: not an EPUB file")

	// ErrMalformedContainer indicates META-INF/container.xml is missing,
	// unparseable, or carries no rootfile full-path.
	ErrMalformedContainer = errors.New("epub: malformed container.xml")

	// ErrMalformedPackage indicates the OPF package document is unparseable.
	ErrMalformedPackage = errors.New("epub: malformed package document")

	// ErrResourceNotFound indicates an archive-internal path lookup miss.
	ErrResourceNotFound = errors.New("epub: resource not found in archive")
)
