// Package aspace is a minimal ArchivesSpace API client: session login and
// archival object lookup.
package aspace

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bclibraries/manifester/internal/records"
)

const sessionHeader = "X-ArchivesSpace-Session"

// Client talks to one ArchivesSpace backend.
type Client struct {
	BaseURL string

	httpClient *http.Client
	session    string
}

// NewClient creates a client for an ArchivesSpace API base URL, e.g.
// "https://cassandra.bc.edu/api".
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Login authenticates and stores the session token for later lookups.
func (c *Client) Login(user, password string) error {
	loginURL := fmt.Sprintf("%s/users/%s/login", c.BaseURL, url.PathEscape(user))
	resp, err := c.httpClient.PostForm(loginURL, url.Values{"password": {password}})
	if err != nil {
		return fmt.Errorf("logging in to ArchivesSpace: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("ArchivesSpace login returned status %d: %s", resp.StatusCode, string(body))
	}

	var auth struct {
		Session string `json:"session"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		return fmt.Errorf("decoding ArchivesSpace login response: %w", err)
	}
	if auth.Session == "" {
		return fmt.Errorf("ArchivesSpace login response carried no session token")
	}

	c.session = auth.Session
	return nil
}

// Lookup fetches one archival object by its repository-relative URI, e.g.
// "/repositories/2/archival_objects/12345". Login must have succeeded
// first.
func (c *Client) Lookup(recordURI string) (records.ASpaceResponse, error) {
	var response records.ASpaceResponse
	if c.session == "" {
		return response, fmt.Errorf("ArchivesSpace lookup before login")
	}

	req, err := http.NewRequest(http.MethodGet, c.BaseURL+recordURI, nil)
	if err != nil {
		return response, fmt.Errorf("building ArchivesSpace request: %w", err)
	}
	req.Header.Set(sessionHeader, c.session)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return response, fmt.Errorf("fetching ArchivesSpace record %s: %w", recordURI, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return response, fmt.Errorf("ArchivesSpace returned status %d for %s", resp.StatusCode, recordURI)
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return response, fmt.Errorf("decoding ArchivesSpace record %s: %w", recordURI, err)
	}
	return response, nil
}
