// Package iiif derives IIIF Image API URLs for digitized page images and
// assembles IIIF Presentation 2 manifests from them.
package iiif

import (
	"fmt"
	"path"
	"strconv"
	"strings"
)

// counterWidth is the zero-padded page counter at the end of every image
// short name, e.g. the "0019" in bc2023-159_0019.jp2.
const counterWidth = 4

// MalformedFilenameError reports an image filename that does not follow
// the {collection-unit-id}_{NNNN}.{ext} naming convention. The offending
// file is excluded from its record's image list.
type MalformedFilenameError struct {
	Filename string
	Reason   string
}

func (e *MalformedFilenameError) Error() string {
	return fmt.Sprintf("malformed image filename %q: %s", e.Filename, e.Reason)
}

// Image is one page image on the IIIF server, described entirely by its
// filename plus the server's base URL. Height and Width stay zero until
// LookupDimensions succeeds; a zero-dimension image at manifest-build
// time is skipped.
type Image struct {
	// Filename, e.g. "bc2023-159_0019.jp2".
	Filename string

	// ShortName is the filename without its extension, e.g. "bc2023-159_0019".
	ShortName string

	// Counter is the zero-padded page sequence number, e.g. "0019".
	Counter string

	// CollectionUnitID is the prefix shared by every page of one item,
	// e.g. "bc2023-159".
	CollectionUnitID string

	ImageURL      string
	InfoURL       string
	ThumbnailURL  string
	AnnotationURL string
	CanvasURL     string
	RangeURL      string

	Height int
	Width  int
}

// NewImage parses a local or remote file path into an Image. baseURL is
// the IIIF image server prefix, e.g. "https://iiif.bc.edu/iiif/2". No
// network access happens here; dimensions come later.
func NewImage(filepath, baseURL string) (*Image, error) {
	filename := path.Base(filepath)

	shortName := filename
	if dot := strings.Index(filename, "."); dot >= 0 {
		shortName = filename[:dot]
	}

	// Shortest legal short name is a 1-character unit id, the separator,
	// and the counter.
	if len(shortName) < counterWidth+2 {
		return nil, &MalformedFilenameError{Filename: filename, Reason: "too short to contain a page counter"}
	}

	counter := shortName[len(shortName)-counterWidth:]
	sequence, err := strconv.ParseUint(counter, 10, 32)
	if err != nil {
		return nil, &MalformedFilenameError{Filename: filename, Reason: "page counter is not numeric"}
	}
	if sequence == 0 {
		return nil, &MalformedFilenameError{Filename: filename, Reason: "page counters start at 0001"}
	}
	if shortName[len(shortName)-counterWidth-1] != '_' {
		return nil, &MalformedFilenameError{Filename: filename, Reason: "page counter is not underscore-separated"}
	}
	unitID := shortName[:len(shortName)-counterWidth-1]

	imageURL := fmt.Sprintf("%s/%s", baseURL, filename)
	return &Image{
		Filename:         filename,
		ShortName:        shortName,
		Counter:          counter,
		CollectionUnitID: unitID,
		ImageURL:         imageURL,
		InfoURL:          imageURL + "/info.json",
		ThumbnailURL:     imageURL + "/full/!200,200/0/default.jpg",
		AnnotationURL:    fmt.Sprintf("%s/%s/%s/annotation/1", baseURL, unitID, counter),
		CanvasURL:        fmt.Sprintf("%s/%s/canvas/%s", baseURL, unitID, counter),
		RangeURL:         fmt.Sprintf("%s/%s/range/r-%d", baseURL, unitID, sequence-1),
	}, nil
}

// HasDimensions reports whether a dimension lookup has populated this image.
func (i *Image) HasDimensions() bool {
	return i.Height > 0 && i.Width > 0
}
