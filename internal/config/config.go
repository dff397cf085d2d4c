// Package config carries every setting the pipeline needs. One Config
// value is built at startup and handed explicitly into each component;
// nothing reads ambient state after that.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML configs can use values like "2s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config is the full runtime configuration. Defaults cover the standard
// institutional setup; a YAML config file and environment variables can
// override them, and CLI flags override both.
type Config struct {
	// IIIFBaseURL is the image server prefix, e.g. "https://iiif.bc.edu/iiif/2".
	IIIFBaseURL string `yaml:"iiif_base_url"`

	// ManifestBaseURL and HandleBaseURL are the prefixes for derived
	// record URLs; see records.Links.
	ManifestBaseURL string `yaml:"manifest_base_url"`
	HandleBaseURL   string `yaml:"handle_base_url"`

	// HandlePrefix is the institutional naming authority for new handles.
	HandlePrefix string `yaml:"handle_prefix"`

	// CatalogLinkBase is where registered handles resolve to, with the
	// record identifier appended.
	CatalogLinkBase string `yaml:"catalog_link_base"`

	// SSH is the image server connection string, e.g. "florinb@scenery.bc.edu".
	SSH string `yaml:"ssh"`

	// ImageDir is the image directory on the image server.
	ImageDir string `yaml:"image_dir"`

	ManifestDir string `yaml:"manifest_dir"`
	ViewDir     string `yaml:"view_dir"`
	HandleDir   string `yaml:"handle_dir"`

	// Location labels the holding institution in viewer pages.
	Location string `yaml:"location"`

	// LookupDelay is the courtesy pause between dimension lookups against
	// the shared image server.
	LookupDelay Duration `yaml:"lookup_delay"`

	ASpaceBaseURL string `yaml:"aspace_base_url"`
	ASpaceUser    string `yaml:"aspace_user"`

	// Credentials come from the environment only, never the config file.
	HandlePassword string `yaml:"-"`
	ASpacePassword string `yaml:"-"`
}

// Default returns the standard institutional configuration.
func Default() Config {
	return Config{
		IIIFBaseURL:     "https://iiif.bc.edu/iiif/2",
		ManifestBaseURL: "https://library.bc.edu/iiif/manifests",
		HandleBaseURL:   "http://hdl.handle.net/2345.2",
		HandlePrefix:    "2345.2",
		CatalogLinkBase: "https://bclib.bc.edu/libsearch/bc/mms",
		ImageDir:        "/opt/cantaloupe/images",
		ManifestDir:     "manifests",
		ViewDir:         "view",
		HandleDir:       "hdl",
		Location:        "Boston College",
		LookupDelay:     Duration(500 * time.Millisecond),
		ASpaceBaseURL:   "https://cassandra.bc.edu/api",
	}
}

// Load builds a Config from defaults, an optional YAML file, and the
// environment, in that order of increasing precedence. path may be empty.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	cfg.applyEnvironment()
	return cfg, nil
}

func (c *Config) applyEnvironment() {
	overlay(&c.IIIFBaseURL, "IIIF_BASE_URL")
	overlay(&c.SSH, "SSH_CREDENTIALS")
	overlay(&c.ImageDir, "IMAGE_DIR")
	overlay(&c.ManifestDir, "MANIFEST_DIR")
	overlay(&c.ViewDir, "VIEW_DIR")
	overlay(&c.ASpaceBaseURL, "ASPACE_BASE_URL")
	overlay(&c.ASpaceUser, "ASPACE_USER")
	overlay(&c.HandlePassword, "HANDLE_PASSWD")
	overlay(&c.ASpacePassword, "ASPACE_PASSWD")
}

func overlay(target *string, key string) {
	if value := os.Getenv(key); value != "" {
		*target = value
	}
}
