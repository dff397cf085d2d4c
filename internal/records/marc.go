package records

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/miku/marc21"
)

const (
	controlNumberTag = "001"
	titleTag         = "245"
	imprintTag       = "260"
	productionTag    = "264"
	locationTag      = "510"
)

// MARCRecord adapts one binary MARC record exported from the ILS.
//
// The identifier is normally the trailing portion of the 001 control
// number, but operators can supply an override when the images on the
// image server were named with something other than the record's own
// identifier.
type MARCRecord struct {
	rec      *marc21.Record
	override string
	links    Links
}

// NewMARCRecord wraps a parsed MARC record. override, when non-empty,
// replaces the control-number-derived identifier.
func NewMARCRecord(rec *marc21.Record, override string, links Links) *MARCRecord {
	return &MARCRecord{rec: rec, override: override, links: links}
}

// ReadMARCFile reads a batch of binary MARC records. The override
// identifier, when set, applies to every record in the batch (in practice
// batches with overrides contain a single record).
func ReadMARCFile(r io.Reader, override string, links Links) ([]SourceRecord, error) {
	var out []SourceRecord
	for {
		rec, err := marc21.ReadRecord(r)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading MARC record: %w", err)
		}
		out = append(out, NewMARCRecord(rec, override, links))
	}
	return out, nil
}

func (r *MARCRecord) Identifier() (string, error) {
	if r.override != "" {
		return r.override, nil
	}
	if mms, ok := r.controlIdentifier(); ok {
		return mms, nil
	}
	return "", &InsufficientMetadataError{Field: "identifier"}
}

// CatalogIdentifier is the MMS number from the 001 control field even
// when an image-name override is in effect; the override only names the
// image files, not the catalog record. It falls back to the override for
// records with no usable control number.
func (r *MARCRecord) CatalogIdentifier() (string, error) {
	if mms, ok := r.controlIdentifier(); ok {
		return mms, nil
	}
	return r.Identifier()
}

func (r *MARCRecord) controlIdentifier() (string, bool) {
	control, ok := r.controlField(controlNumberTag)
	if !ok || len(control) <= 6 {
		return "", false
	}
	// The control number carries a fixed 6-character source prefix ahead
	// of the usable identifier.
	return control[6:], true
}

func (r *MARCRecord) Title() (string, error) {
	title, ok := r.subfield(titleTag, 'a')
	if !ok {
		return "", &InsufficientMetadataError{Field: "title"}
	}
	if remainder, ok := r.subfield(titleTag, 'b'); ok {
		title = title + " " + remainder
	}
	return strings.TrimRight(title, " /:;,"), nil
}

// PublicationYear reads the imprint date, preferring the 260 imprint over
// the newer 264 production statement. Records with no usable date yield
// an empty string.
func (r *MARCRecord) PublicationYear() (string, error) {
	for _, tag := range []string{imprintTag, productionTag} {
		if date, ok := r.subfield(tag, 'c'); ok {
			return strings.Trim(date, "[] ."), nil
		}
	}
	return "", nil
}

// Citation selects the preferred-citation template based on the holding
// location. Items whose location field is missing, or present but not
// tagged as the Law Library rare book room, are cited as Burns Library
// holdings; any lookup failure falls back to the Burns template rather
// than propagating.
func (r *MARCRecord) Citation() (string, bool) {
	title, err := r.Title()
	if err != nil {
		return "", false
	}
	handle, err := r.HandleURL()
	if err != nil {
		return "", false
	}
	year, _ := r.PublicationYear()

	location, ok := r.subfield(locationTag, 'a')
	if !ok || !strings.Contains(location, rareBookRoomMarker) {
		return burnsCitation(title, year, handle), true
	}

	room := location
	if sub, ok := r.subfield(locationTag, 'c'); ok {
		room = room + " " + sub
	}
	return lawCitation(title, year, room, handle), true
}

// Attribution is never carried in our MARC exports; the manifest builder
// applies the institutional default.
func (r *MARCRecord) Attribution() (string, bool) {
	return "", false
}

func (r *MARCRecord) ManifestURL() (string, error) {
	identifier, err := r.Identifier()
	if err != nil {
		return "", err
	}
	return r.links.ManifestURL(identifier), nil
}

func (r *MARCRecord) HandleURL() (string, error) {
	identifier, err := r.Identifier()
	if err != nil {
		return "", err
	}
	return r.links.HandleURL(identifier), nil
}

func (r *MARCRecord) controlField(tag string) (string, bool) {
	for _, field := range r.rec.Fields {
		if field.GetTag() != tag {
			continue
		}
		if control, ok := field.(*marc21.ControlField); ok {
			return control.Data, true
		}
	}
	return "", false
}

func (r *MARCRecord) subfield(tag string, code byte) (string, bool) {
	for _, field := range r.rec.Fields {
		if field.GetTag() != tag {
			continue
		}
		data, ok := field.(*marc21.DataField)
		if !ok {
			continue
		}
		for _, sub := range data.SubFields {
			if sub.Code == code && sub.Value != "" {
				return sub.Value, true
			}
		}
	}
	return "", false
}
