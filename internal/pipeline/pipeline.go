// Package pipeline orchestrates one publishing run: match images to each
// record, look up dimensions, and write the manifest, viewer page, and
// handle batch artifacts.
package pipeline

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bclibraries/manifester/internal/config"
	"github.com/bclibraries/manifester/internal/handle"
	"github.com/bclibraries/manifester/internal/iiif"
	"github.com/bclibraries/manifester/internal/records"
	"github.com/bclibraries/manifester/internal/remote"
	"github.com/bclibraries/manifester/internal/view"
)

// Pipeline processes a batch of source records sequentially. Per-record
// failures are logged and skipped; only connection-level problems abort
// a run.
type Pipeline struct {
	cfg        config.Config
	matcher    *remote.Matcher
	dimensions *iiif.DimensionClient
	batch      *handle.Batch
}

func New(cfg config.Config, matcher *remote.Matcher) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		matcher:    matcher,
		dimensions: iiif.NewDimensionClient(time.Duration(cfg.LookupDelay)),
		batch: &handle.Batch{
			Prefix:   cfg.HandlePrefix,
			Password: cfg.HandlePassword,
		},
	}
}

// Run publishes every record in the batch. imageBase, when non-empty,
// overrides the record identifier as the image filename prefix to match
// (only sensible for single-record batches). The returned error covers
// run-level failures; per-record failures are logged and counted.
func (p *Pipeline) Run(sources []records.SourceRecord, imageBase string) error {
	published := 0
	for _, record := range sources {
		if err := p.processRecord(record, imageBase); err != nil {
			slog.Error("Skipping record", "error", err)
			continue
		}
		published++
	}
	slog.Info("Batch finished", "published", published, "skipped", len(sources)-published)

	batchPath, err := p.batch.Write(p.cfg.HandleDir)
	if err != nil {
		return err
	}
	if batchPath != "" {
		slog.Info("Wrote handle batch", "path", batchPath, "handles", p.batch.Len())
	}
	return nil
}

func (p *Pipeline) processRecord(record records.SourceRecord, imageBase string) error {
	identifier, err := record.Identifier()
	if err != nil {
		return err
	}
	catalogID, err := record.CatalogIdentifier()
	if err != nil {
		return err
	}

	base := imageBase
	if base == "" {
		base = identifier
	}

	filenames := p.matcher.Match(base)
	if len(filenames) == 0 {
		return fmt.Errorf("record %s: no images found for %s: %w", identifier, base, iiif.ErrEmptyImageList)
	}

	images := make([]*iiif.Image, 0, len(filenames))
	for _, filename := range filenames {
		image, err := iiif.NewImage(filename, p.cfg.IIIFBaseURL)
		if err != nil {
			slog.Warn("Excluding file from record", "identifier", identifier, "error", err)
			continue
		}
		images = append(images, image)
	}
	sort.Slice(images, func(i, j int) bool { return images[i].Filename < images[j].Filename })

	p.dimensions.LookupAll(images)

	manifest, err := iiif.BuildManifest(images, record)
	if err != nil {
		return err
	}

	if err := p.writeManifest(identifier, manifest); err != nil {
		return err
	}
	if err := p.writeView(identifier, record, manifest); err != nil {
		return err
	}

	// The handle is created under the (possibly overridden) identifier,
	// but its target is always the record's own catalog entry.
	p.batch.Add(identifier, fmt.Sprintf("%s/%s", p.cfg.CatalogLinkBase, catalogID))
	slog.Info("Published record", "identifier", identifier, "pages", len(manifest.Sequences[0].Canvases))
	return nil
}

func (p *Pipeline) writeManifest(identifier string, manifest *iiif.Manifest) error {
	if err := os.MkdirAll(p.cfg.ManifestDir, 0755); err != nil {
		return fmt.Errorf("creating manifest directory: %w", err)
	}
	raw, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing manifest for %s: %w", identifier, err)
	}
	path := filepath.Join(p.cfg.ManifestDir, identifier+".json")
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("writing manifest for %s: %w", identifier, err)
	}
	return nil
}

func (p *Pipeline) writeView(identifier string, record records.SourceRecord, manifest *iiif.Manifest) error {
	if err := os.MkdirAll(p.cfg.ViewDir, 0755); err != nil {
		return fmt.Errorf("creating view directory: %w", err)
	}
	out, err := os.Create(filepath.Join(p.cfg.ViewDir, identifier))
	if err != nil {
		return fmt.Errorf("creating view file for %s: %w", identifier, err)
	}
	defer out.Close()

	handleURL, _ := record.HandleURL()
	return view.Render(out, view.Page{
		Identifier:  identifier,
		Title:       manifest.Label,
		ManifestURL: manifest.ID,
		HandleURL:   handleURL,
		CanvasID:    manifest.Sequences[0].Canvases[0].ID,
		Location:    p.cfg.Location,
	})
}
