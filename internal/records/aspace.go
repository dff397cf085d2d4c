package records

import (
	"net/url"
	"path"
	"strings"
)

// ASpaceResponse is the subset of an ArchivesSpace archival object
// response the adapter reads. Dates and notes are variable-cardinality
// lists of loosely typed entries; missing entries are normal, not errors.
type ASpaceResponse struct {
	Title       string       `json:"title"`
	EADLocation string       `json:"ead_location"`
	Dates       []ASpaceDate `json:"dates"`
	Notes       []ASpaceNote `json:"notes"`
}

type ASpaceDate struct {
	Label      string `json:"label"`
	Expression string `json:"expression"`
	Begin      string `json:"begin"`
}

type ASpaceNote struct {
	Type     string          `json:"type"`
	Subnotes []ASpaceSubnote `json:"subnotes"`
}

type ASpaceSubnote struct {
	Content string `json:"content"`
}

// Note types whose first subnote supplies citation and rights text.
const (
	preferredCitationNote = "prefercite"
	useRestrictionNote    = "userestrict"
)

// ASpaceRecord adapts one ArchivesSpace API response.
type ASpaceRecord struct {
	response ASpaceResponse
	override string
	links    Links
}

func NewASpaceRecord(response ASpaceResponse, override string, links Links) *ASpaceRecord {
	return &ASpaceRecord{response: response, override: override, links: links}
}

// Identifier prefers a caller-supplied identifier; otherwise the EAD
// location is usually a handle whose last path segment is the identifier.
func (r *ASpaceRecord) Identifier() (string, error) {
	if r.override != "" {
		return r.override, nil
	}
	if identifier, ok := r.eadIdentifier(); ok {
		return identifier, nil
	}
	return "", &InsufficientMetadataError{Field: "identifier"}
}

// CatalogIdentifier is the finding aid's own identifier even when an
// image-name override is in effect, falling back to the override for
// records with no EAD location.
func (r *ASpaceRecord) CatalogIdentifier() (string, error) {
	if identifier, ok := r.eadIdentifier(); ok {
		return identifier, nil
	}
	return r.Identifier()
}

func (r *ASpaceRecord) eadIdentifier() (string, bool) {
	if r.response.EADLocation == "" {
		return "", false
	}
	location, err := url.Parse(r.response.EADLocation)
	if err != nil {
		return "", false
	}
	if identifier := path.Base(location.Path); identifier != "" && identifier != "." && identifier != "/" {
		return identifier, true
	}
	return "", false
}

func (r *ASpaceRecord) Title() (string, error) {
	if r.response.Title == "" {
		return "", &InsufficientMetadataError{Field: "title"}
	}
	return r.response.Title, nil
}

// PublicationYear selects the first date entry labeled as the item's
// creation date, first match wins. No matching entry is an empty year,
// not an error.
func (r *ASpaceRecord) PublicationYear() (string, error) {
	for _, date := range r.response.Dates {
		label := strings.TrimSuffix(strings.ToLower(date.Label), ":")
		if label != "creation" {
			continue
		}
		if date.Expression != "" {
			return date.Expression, nil
		}
		return date.Begin, nil
	}
	return "", nil
}

func (r *ASpaceRecord) Citation() (string, bool) {
	return r.noteContent(preferredCitationNote)
}

func (r *ASpaceRecord) Attribution() (string, bool) {
	return r.noteContent(useRestrictionNote)
}

func (r *ASpaceRecord) ManifestURL() (string, error) {
	identifier, err := r.Identifier()
	if err != nil {
		return "", err
	}
	return r.links.ManifestURL(identifier), nil
}

func (r *ASpaceRecord) HandleURL() (string, error) {
	identifier, err := r.Identifier()
	if err != nil {
		return "", err
	}
	return r.links.HandleURL(identifier), nil
}

func (r *ASpaceRecord) noteContent(noteType string) (string, bool) {
	for _, note := range r.response.Notes {
		if note.Type != noteType || len(note.Subnotes) == 0 {
			continue
		}
		if content := note.Subnotes[0].Content; content != "" {
			return content, true
		}
	}
	return "", false
}
