package iiif

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// ImageNotFoundError reports that the image server has no usable info
// document for a page. The page is skipped, not fatal.
type ImageNotFoundError struct {
	Filename   string
	StatusCode int
	Reason     string
}

func (e *ImageNotFoundError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("image %s: info request returned status %d", e.Filename, e.StatusCode)
	}
	return fmt.Sprintf("image %s: %s", e.Filename, e.Reason)
}

// DimensionClient fetches pixel dimensions from the image server's
// per-image info documents.
type DimensionClient struct {
	httpClient *http.Client

	// delay is slept between consecutive lookups. The image server is
	// shared with public traffic and resource-intensive per request, so
	// batch lookups are throttled.
	delay time.Duration
}

// NewDimensionClient creates a dimension lookup client with the given
// courtesy delay between batched requests.
func NewDimensionClient(delay time.Duration) *DimensionClient {
	return &DimensionClient{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		delay: delay,
	}
}

// Lookup fetches one image's info document and populates its Height and
// Width.
func (c *DimensionClient) Lookup(image *Image) error {
	resp, err := c.httpClient.Get(image.InfoURL)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", image.InfoURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &ImageNotFoundError{Filename: image.Filename, StatusCode: resp.StatusCode}
	}

	var info struct {
		Height int `json:"height"`
		Width  int `json:"width"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return fmt.Errorf("decoding info document for %s: %w", image.Filename, err)
	}
	if info.Height == 0 || info.Width == 0 {
		return &ImageNotFoundError{Filename: image.Filename, Reason: "info document has no dimensions"}
	}

	image.Height = info.Height
	image.Width = info.Width
	return nil
}

// LookupAll fetches dimensions for every image, one at a time with the
// configured delay between calls. Failed lookups are logged and leave the
// image dimensionless; the manifest builder drops those pages.
func (c *DimensionClient) LookupAll(images []*Image) {
	for i, image := range images {
		if i > 0 && c.delay > 0 {
			time.Sleep(c.delay)
		}
		if err := c.Lookup(image); err != nil {
			slog.Warn("Dimension lookup failed, page will be skipped", "filename", image.Filename, "error", err)
		}
	}
}
