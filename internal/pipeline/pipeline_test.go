package pipeline

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bclibraries/manifester/internal/config"
	"github.com/bclibraries/manifester/internal/iiif"
	"github.com/bclibraries/manifester/internal/records"
	"github.com/bclibraries/manifester/internal/remote"
	"github.com/miku/marc21"
)

type fakeDirectory struct {
	files []string
}

func (d *fakeDirectory) Files() []string { return d.files }

func testConfig(t *testing.T, iiifBaseURL string) config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.IIIFBaseURL = iiifBaseURL
	cfg.ManifestDir = filepath.Join(dir, "manifests")
	cfg.ViewDir = filepath.Join(dir, "view")
	cfg.HandleDir = filepath.Join(dir, "hdl")
	cfg.LookupDelay = 0
	return cfg
}

func sampleMARCRecord() records.SourceRecord {
	rec := &marc21.Record{Fields: []marc21.Field{
		&marc21.ControlField{Tag: "001", Data: "991006b1234567"},
		&marc21.DataField{Tag: "245", Ind1: ' ', Ind2: ' ', SubFields: []*marc21.SubField{
			{Code: 'a', Value: "Sample Title"},
		}},
	}}
	return records.NewMARCRecord(rec, "", records.Links{
		ManifestBase: "https://library.bc.edu/iiif/manifests",
		HandleBase:   "http://hdl.handle.net/2345.2",
	})
}

func TestRunPublishesRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"height":3000,"width":2000}`)
	}))
	defer server.Close()

	cfg := testConfig(t, server.URL)
	directory := &fakeDirectory{files: []string{"b1234567_0002.jp2", "b1234567_0001.jp2"}}
	pipe := New(cfg, remote.NewMatcher(directory, nil))

	if err := pipe.Run([]records.SourceRecord{sampleMARCRecord()}, ""); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(cfg.ManifestDir, "b1234567.json"))
	if err != nil {
		t.Fatalf("Reading manifest: %v", err)
	}
	var manifest iiif.Manifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		t.Fatalf("Unmarshalling manifest: %v", err)
	}

	if manifest.Label != "Sample Title" {
		t.Errorf("Unexpected label %s", manifest.Label)
	}
	canvases := manifest.Sequences[0].Canvases
	if len(canvases) != 2 {
		t.Fatalf("Expected 2 canvases, got %d", len(canvases))
	}
	if canvases[0].Label != "b1234567_0001" || canvases[1].Label != "b1234567_0002" {
		t.Errorf("Canvases out of filename order: %s, %s", canvases[0].Label, canvases[1].Label)
	}
	if len(manifest.Metadata) != 2 || !strings.Contains(manifest.Metadata[1].Value, "John J. Burns Library") {
		t.Errorf("Expected a Burns citation entry, got %+v", manifest.Metadata)
	}

	viewPage, err := os.ReadFile(filepath.Join(cfg.ViewDir, "b1234567"))
	if err != nil {
		t.Fatalf("Reading view page: %v", err)
	}
	if !strings.Contains(string(viewPage), "https://library.bc.edu/iiif/manifests/b1234567.json") {
		t.Error("View page missing manifest URL")
	}

	batches, err := filepath.Glob(filepath.Join(cfg.HandleDir, "handles-*.txt"))
	if err != nil || len(batches) != 1 {
		t.Fatalf("Expected one handle batch file, got %v (%v)", batches, err)
	}
	batch, _ := os.ReadFile(batches[0])
	if !strings.Contains(string(batch), "CREATE 2345.2/b1234567") {
		t.Error("Handle batch missing CREATE statement")
	}
}

func TestRunSkipsRecordWithNoImages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"height":3000,"width":2000}`)
	}))
	defer server.Close()

	cfg := testConfig(t, server.URL)
	directory := &fakeDirectory{files: []string{"unrelated_0001.jp2"}}
	pipe := New(cfg, remote.NewMatcher(directory, nil))

	if err := pipe.Run([]records.SourceRecord{sampleMARCRecord()}, ""); err != nil {
		t.Fatalf("A skipped record must not fail the run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.ManifestDir, "b1234567.json")); !os.IsNotExist(err) {
		t.Error("No manifest should be written for a record with zero images")
	}
}

func TestRunImageBaseOverride(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"height":3000,"width":2000}`)
	}))
	defer server.Close()

	cfg := testConfig(t, server.URL)
	directory := &fakeDirectory{files: []string{"ms-2020-020_0001.jp2"}}
	pipe := New(cfg, remote.NewMatcher(directory, nil))

	rec := &marc21.Record{Fields: []marc21.Field{
		&marc21.ControlField{Tag: "001", Data: "991006b1234567"},
		&marc21.DataField{Tag: "245", Ind1: ' ', Ind2: ' ', SubFields: []*marc21.SubField{
			{Code: 'a', Value: "Sample Title"},
		}},
	}}
	source := records.NewMARCRecord(rec, "ms-2020-020", records.Links{
		ManifestBase: "https://library.bc.edu/iiif/manifests",
		HandleBase:   "http://hdl.handle.net/2345.2",
	})

	if err := pipe.Run([]records.SourceRecord{source}, "ms-2020-020"); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.ManifestDir, "ms-2020-020.json")); err != nil {
		t.Errorf("Expected manifest named by the override identifier: %v", err)
	}

	// The handle is created under the override but resolves to the
	// record's own catalog entry.
	batches, err := filepath.Glob(filepath.Join(cfg.HandleDir, "handles-*.txt"))
	if err != nil || len(batches) != 1 {
		t.Fatalf("Expected one handle batch file, got %v (%v)", batches, err)
	}
	batch, _ := os.ReadFile(batches[0])
	if !strings.Contains(string(batch), "CREATE 2345.2/ms-2020-020") {
		t.Error("Handle batch should create the handle under the override identifier")
	}
	if !strings.Contains(string(batch), "201 URL 86400 1110 UTF8 https://bclib.bc.edu/libsearch/bc/mms/b1234567") {
		t.Error("Handle batch should target the record's own catalog entry")
	}
	if strings.Contains(string(batch), "/mms/ms-2020-020") {
		t.Error("Catalog link must not use the override identifier")
	}
}
