package epub

import (
	"encoding/xml"
	"fmt"
)

// containerPath is the fixed location of the OCF container descriptor.
const containerPath = "META-INF/container.xml"

// container mirrors the META-INF/container.xml structure.
type container struct {
	Rootfiles struct {
		Rootfile []struct {
			FullPath  string `xml:"full-path,attr"`
			MediaType string `xml:"media-type,attr"`
		} `xml:"rootfile"`
	} `xml:"rootfiles"`
}

// ResolvePackagePath reads META-INF/container.xml and returns the
// archive-internal path of the package (OPF) document. The container format
// mandates the descriptor at its fixed path, so any absence or parse failure
// is ErrMalformedContainer; there is no fallback search.
func ResolvePackagePath(a *Archive) (string, error) {
	data, err := a.ReadBinary(containerPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedContainer, err)
	}

	var c container
	if err := xml.Unmarshal(data, &c); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedContainer, err)
	}

	// Prefer the rootfile declaring the package media type.
	for _, rf := range c.Rootfiles.Rootfile {
		if rf.FullPath != "" && (rf.MediaType == "application/oebps-package+xml" || rf.MediaType == "") {
			return NormalizePath(rf.FullPath), nil
		}
	}
	for _, rf := range c.Rootfiles.Rootfile {
		if rf.FullPath != "" {
			return NormalizePath(rf.FullPath), nil
		}
	}

	return "", fmt.Errorf("%w: no rootfile full-path", ErrMalformedContainer)
}
