package iiif

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/bclibraries/manifester/internal/records"
)

// IIIF Presentation 2 constants.
const (
	presentationContext = "http://iiif.io/api/presentation/2/context.json"
	imageContext        = "http://iiif.io/api/image/2/context.json"
	imageProfile        = "http://iiif.io/api/image/2/level2.json"
)

// DefaultAttribution is applied when the source record carries no rights
// statement of its own.
const DefaultAttribution = "Though the copyright interests have not been transferred to Boston College, " +
	"all of the items in the collection are in the public domain. " +
	"To request the removal of an item, see https://library.bc.edu/takedown."

// ErrEmptyImageList means zero pages were available for a record. A
// manifest needs at least one canvas, so nothing is published.
var ErrEmptyImageList = errors.New("no images to build a manifest from")

// Manifest is one IIIF Presentation 2 manifest document.
type Manifest struct {
	Context     string          `json:"@context"`
	ID          string          `json:"@id"`
	Type        string          `json:"@type"`
	Label       string          `json:"label"`
	Thumbnail   string          `json:"thumbnail"`
	ViewingHint string          `json:"viewingHint"`
	Attribution string          `json:"attribution"`
	Metadata    []MetadataEntry `json:"metadata"`
	Sequences   []Sequence      `json:"sequences"`
	Structures  []Range         `json:"structures"`
}

// MetadataEntry is one descriptive metadata pair. The handle entry uses
// the bare "handle" key; everything else is label/value.
type MetadataEntry struct {
	Handle string `json:"handle,omitempty"`
	Label  string `json:"label,omitempty"`
	Value  string `json:"value,omitempty"`
}

type Sequence struct {
	Type     string   `json:"@type"`
	Canvases []Canvas `json:"canvases"`
}

type Canvas struct {
	ID     string       `json:"@id"`
	Type   string       `json:"@type"`
	Label  string       `json:"label"`
	Width  int          `json:"width"`
	Height int          `json:"height"`
	Images []Annotation `json:"images"`
}

type Annotation struct {
	ID         string   `json:"@id"`
	Type       string   `json:"@type"`
	On         string   `json:"on"`
	Motivation string   `json:"motivation"`
	Resource   Resource `json:"resource"`
}

type Resource struct {
	ID      string  `json:"@id"`
	Type    string  `json:"@type"`
	Format  string  `json:"format"`
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	Service Service `json:"service"`
}

type Service struct {
	Context string `json:"@context"`
	ID      string `json:"@id"`
	Profile string `json:"profile"`
}

// Range is one entry in the manifest's structures list, referencing
// exactly one canvas.
type Range struct {
	ID       string   `json:"@id"`
	Type     string   `json:"@type"`
	Label    string   `json:"label"`
	Canvases []string `json:"canvases"`
}

// BuildManifest composes an ordered image list and one source record into
// a manifest. Canvas and range order is exactly the input image order, so
// callers must sort images by filename first. Images still missing
// dimensions are dropped from the sequence and structures with a warning;
// if none survive, the manifest is not built.
func BuildManifest(images []*Image, record records.SourceRecord) (*Manifest, error) {
	if len(images) == 0 {
		return nil, ErrEmptyImageList
	}

	identifier, err := record.Identifier()
	if err != nil {
		return nil, fmt.Errorf("building manifest: %w", err)
	}
	title, err := record.Title()
	if err != nil {
		return nil, fmt.Errorf("building manifest for %s: %w", identifier, err)
	}
	manifestURL, err := record.ManifestURL()
	if err != nil {
		return nil, fmt.Errorf("building manifest for %s: %w", identifier, err)
	}
	handleURL, err := record.HandleURL()
	if err != nil {
		return nil, fmt.Errorf("building manifest for %s: %w", identifier, err)
	}

	pages := make([]*Image, 0, len(images))
	for _, image := range images {
		if !image.HasDimensions() {
			slog.Warn("Skipping page with unknown dimensions", "identifier", identifier, "filename", image.Filename)
			continue
		}
		pages = append(pages, image)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("record %s: %w", identifier, ErrEmptyImageList)
	}

	attribution, ok := record.Attribution()
	if !ok {
		attribution = DefaultAttribution
	}

	metadata := []MetadataEntry{{Handle: handleURL}}
	if citation, ok := record.Citation(); ok {
		metadata = append(metadata, MetadataEntry{Label: "Preferred Citation", Value: citation})
	}

	return &Manifest{
		Context:     presentationContext,
		ID:          manifestURL,
		Type:        "sc:Manifest",
		Label:       title,
		Thumbnail:   images[0].ThumbnailURL,
		ViewingHint: "paged",
		Attribution: attribution,
		Metadata:    metadata,
		Sequences:   []Sequence{{Type: "sc:Sequence", Canvases: buildCanvases(pages)}},
		Structures:  buildStructures(pages),
	}, nil
}

func buildCanvases(pages []*Image) []Canvas {
	canvases := make([]Canvas, 0, len(pages))
	for _, page := range pages {
		canvases = append(canvases, Canvas{
			ID:     page.CanvasURL,
			Type:   "sc:Canvas",
			Label:  page.ShortName,
			Width:  page.Width,
			Height: page.Height,
			Images: []Annotation{
				{
					ID:         page.AnnotationURL,
					Type:       "oa:Annotation",
					On:         page.CanvasURL,
					Motivation: "sc:painting",
					Resource: Resource{
						ID:     page.ImageURL + "/full/full/0/default.jpg",
						Type:   "dctypes:Image",
						Format: "image/jpeg",
						Width:  page.Width,
						Height: page.Height,
						Service: Service{
							Context: imageContext,
							ID:      page.ImageURL,
							Profile: imageProfile,
						},
					},
				},
			},
		})
	}
	return canvases
}

// buildStructures emits one flat range per page so viewers can jump to
// any page directly.
func buildStructures(pages []*Image) []Range {
	structures := make([]Range, 0, len(pages))
	for _, page := range pages {
		structures = append(structures, Range{
			ID:       page.RangeURL,
			Type:     "sc:Range",
			Label:    page.ShortName,
			Canvases: []string{page.CanvasURL},
		})
	}
	return structures
}
