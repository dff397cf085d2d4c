// Package records normalizes heterogeneous metadata sources (MARC exports,
// digitization workbooks, ArchivesSpace API responses) into a single
// SourceRecord contract consumed by the manifest builder.
package records

import "fmt"

// SourceRecord is one bibliographic or archival entity, regardless of
// where its metadata came from.
//
// Identifier, Title, and PublicationYear are mandatory: they return an
// error (usually *InsufficientMetadataError) when the backing source
// cannot supply them. Citation and Attribution are optional: they report
// absence through their second return value and never fail. An unknown
// publication year is the empty string, not an error.
//
// CatalogIdentifier is the identifier the record is known by in the
// system of record. It ignores operator-supplied image-name overrides,
// so handle registrations keep linking to the record's own catalog
// entry even when the page images were named with a different prefix.
type SourceRecord interface {
	Identifier() (string, error)
	CatalogIdentifier() (string, error)
	Title() (string, error)
	PublicationYear() (string, error)
	Citation() (string, bool)
	Attribution() (string, bool)
	ManifestURL() (string, error)
	HandleURL() (string, error)
}

// Links derives the institution-standard manifest and handle URLs for an
// identifier. Adapters whose backing source carries an authoritative URL
// (e.g. the workbook's handle column) override the derivation.
type Links struct {
	// ManifestBase is the URL prefix for published manifests,
	// e.g. "https://library.bc.edu/iiif/manifests".
	ManifestBase string

	// HandleBase is the handle resolver prefix including the
	// institutional naming authority, e.g. "http://hdl.handle.net/2345.2".
	HandleBase string
}

func (l Links) ManifestURL(identifier string) string {
	return fmt.Sprintf("%s/%s.json", l.ManifestBase, identifier)
}

func (l Links) HandleURL(identifier string) string {
	return fmt.Sprintf("%s/%s", l.HandleBase, identifier)
}
