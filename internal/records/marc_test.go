package records

import (
	"errors"
	"strings"
	"testing"

	"github.com/miku/marc21"
)

var testLinks = Links{
	ManifestBase: "https://library.bc.edu/iiif/manifests",
	HandleBase:   "http://hdl.handle.net/2345.2",
}

func marcRecord(fields ...marc21.Field) *marc21.Record {
	return &marc21.Record{Fields: fields}
}

func dataField(tag string, subfields ...*marc21.SubField) *marc21.DataField {
	return &marc21.DataField{Tag: tag, Ind1: ' ', Ind2: ' ', SubFields: subfields}
}

func subfield(code byte, value string) *marc21.SubField {
	return &marc21.SubField{Code: code, Value: value}
}

func sampleMARC() *marc21.Record {
	return marcRecord(
		&marc21.ControlField{Tag: "001", Data: "991006b1234567"},
		dataField("245", subfield('a', "Sample Title /")),
		dataField("260", subfield('c', "[1901].")),
	)
}

func TestMARCIdentifier(t *testing.T) {
	record := NewMARCRecord(sampleMARC(), "", testLinks)
	identifier, err := record.Identifier()
	if err != nil {
		t.Fatalf("Identifier returned error: %v", err)
	}
	if identifier != "b1234567" {
		t.Errorf("Expected b1234567, got %s", identifier)
	}
}

func TestMARCIdentifierOverride(t *testing.T) {
	record := NewMARCRecord(sampleMARC(), "ms-2020-020-142452", testLinks)
	identifier, err := record.Identifier()
	if err != nil {
		t.Fatalf("Identifier returned error: %v", err)
	}
	if identifier != "ms-2020-020-142452" {
		t.Errorf("Expected override identifier, got %s", identifier)
	}
}

func TestMARCCatalogIdentifierIgnoresOverride(t *testing.T) {
	record := NewMARCRecord(sampleMARC(), "ms-2020-020-142452", testLinks)
	mms, err := record.CatalogIdentifier()
	if err != nil {
		t.Fatalf("CatalogIdentifier returned error: %v", err)
	}
	if mms != "b1234567" {
		t.Errorf("Expected the control-number identifier, got %s", mms)
	}
}

func TestMARCCatalogIdentifierOverrideFallback(t *testing.T) {
	record := NewMARCRecord(marcRecord(dataField("245", subfield('a', "No Control Number"))), "ms-2020-020", testLinks)
	mms, err := record.CatalogIdentifier()
	if err != nil {
		t.Fatalf("CatalogIdentifier returned error: %v", err)
	}
	if mms != "ms-2020-020" {
		t.Errorf("Expected the override fallback, got %s", mms)
	}
}

func TestMARCIdentifierMissing(t *testing.T) {
	record := NewMARCRecord(marcRecord(dataField("245", subfield('a', "No Control Number"))), "", testLinks)
	_, err := record.Identifier()
	var insufficient *InsufficientMetadataError
	if !errors.As(err, &insufficient) {
		t.Fatalf("Expected InsufficientMetadataError, got %v", err)
	}
	if insufficient.Field != "identifier" {
		t.Errorf("Expected the error to name the identifier field, got %s", insufficient.Field)
	}
}

func TestMARCTitle(t *testing.T) {
	tests := []struct {
		name     string
		fields   []*marc21.SubField
		expected string
	}{
		{
			name:     "trailing punctuation trimmed",
			fields:   []*marc21.SubField{subfield('a', "Sample Title /")},
			expected: "Sample Title",
		},
		{
			name:     "remainder appended",
			fields:   []*marc21.SubField{subfield('a', "Sample Title :"), subfield('b', "a subtitle.")},
			expected: "Sample Title : a subtitle.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := NewMARCRecord(marcRecord(dataField("245", tt.fields...)), "", testLinks)
			title, err := record.Title()
			if err != nil {
				t.Fatalf("Title returned error: %v", err)
			}
			if title != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, title)
			}
		})
	}
}

func TestMARCTitleMissing(t *testing.T) {
	record := NewMARCRecord(marcRecord(), "", testLinks)
	_, err := record.Title()
	var insufficient *InsufficientMetadataError
	if !errors.As(err, &insufficient) {
		t.Fatalf("Expected InsufficientMetadataError, got %v", err)
	}
}

func TestMARCPublicationYear(t *testing.T) {
	tests := []struct {
		name     string
		record   *marc21.Record
		expected string
	}{
		{
			name:     "imprint date",
			record:   marcRecord(dataField("260", subfield('c', "[1901]."))),
			expected: "1901",
		},
		{
			name:     "production statement fallback",
			record:   marcRecord(dataField("264", subfield('c', "1957"))),
			expected: "1957",
		},
		{
			name:     "unknown date is empty, not an error",
			record:   marcRecord(),
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			year, err := NewMARCRecord(tt.record, "", testLinks).PublicationYear()
			if err != nil {
				t.Fatalf("PublicationYear returned error: %v", err)
			}
			if year != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, year)
			}
		})
	}
}

func TestMARCCitation(t *testing.T) {
	base := func(extra ...marc21.Field) *marc21.Record {
		fields := []marc21.Field{
			&marc21.ControlField{Tag: "001", Data: "991006b1234567"},
			dataField("245", subfield('a', "Sample Title")),
			dataField("260", subfield('c', "1901")),
		}
		return marcRecord(append(fields, extra...)...)
	}

	tests := []struct {
		name     string
		record   *marc21.Record
		contains string
	}{
		{
			name:     "no location field cites Burns",
			record:   base(),
			contains: "John J. Burns Library, Boston College",
		},
		{
			name:     "location without rare book marker cites Burns",
			record:   base(dataField("510", subfield('a', "Stacks"))),
			contains: "John J. Burns Library, Boston College",
		},
		{
			name:     "rare book room cites Law",
			record:   base(dataField("510", subfield('a', "BCLL RBR"))),
			contains: "BCLL RBR, Daniel R. Coquillette Rare Book Room",
		},
		{
			name:     "sub-location appended to the room",
			record:   base(dataField("510", subfield('a', "BCLL RBR"), subfield('c', "Box 4"))),
			contains: "BCLL RBR Box 4, Daniel R. Coquillette Rare Book Room",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			citation, ok := NewMARCRecord(tt.record, "", testLinks).Citation()
			if !ok {
				t.Fatal("Expected a citation")
			}
			if !strings.Contains(citation, tt.contains) {
				t.Errorf("Citation %q does not contain %q", citation, tt.contains)
			}
			if !strings.Contains(citation, "http://hdl.handle.net/2345.2/b1234567") {
				t.Errorf("Citation %q does not end with the handle", citation)
			}
		})
	}
}

func TestMARCURLs(t *testing.T) {
	record := NewMARCRecord(sampleMARC(), "", testLinks)

	manifestURL, err := record.ManifestURL()
	if err != nil {
		t.Fatalf("ManifestURL returned error: %v", err)
	}
	if manifestURL != "https://library.bc.edu/iiif/manifests/b1234567.json" {
		t.Errorf("Unexpected manifest URL %s", manifestURL)
	}

	handleURL, err := record.HandleURL()
	if err != nil {
		t.Fatalf("HandleURL returned error: %v", err)
	}
	if handleURL != "http://hdl.handle.net/2345.2/b1234567" {
		t.Errorf("Unexpected handle URL %s", handleURL)
	}
}

func TestMARCAttributionAbsent(t *testing.T) {
	if _, ok := NewMARCRecord(sampleMARC(), "", testLinks).Attribution(); ok {
		t.Error("MARC records carry no attribution")
	}
}
