// Package remote talks to the IIIF image server over SFTP: listing the
// image directory, matching page images to a record, fixing permissions,
// and uploading new files.
package remote

import (
	"log/slog"
	"path"
	"regexp"
	"sort"
	"strings"
)

// Lister provides the filenames of the remote image directory. The
// listing is fetched once per run and shared read-only across every
// matching attempt.
type Lister interface {
	Files() []string
}

// PermissionFixer makes a remote file world-readable so the image server
// can serve it publicly.
type PermissionFixer interface {
	EnsureWorldReadable(filename string) error
}

// leadingAlphaDigits matches an alphabetic run at the start of an image
// base followed immediately by a digit, e.g. the "ms2" of "ms2020".
var leadingAlphaDigits = regexp.MustCompile(`^([a-z]+)(\d)`)

// Matcher finds the page images belonging to a record among the remote
// directory listing, tolerating the naming inconsistencies accumulated
// across years of digitization projects.
type Matcher struct {
	lister Lister
	fixer  PermissionFixer
}

// NewMatcher builds a matcher over a directory listing. fixer may be nil,
// in which case matched files are left with whatever permissions they have.
func NewMatcher(lister Lister, fixer PermissionFixer) *Matcher {
	return &Matcher{lister: lister, fixer: fixer}
}

// Match returns the sorted filenames whose names start with imageBase,
// trying progressively normalized spellings of the base until one
// matches:
//
//  1. the base as given
//  2. lowercased
//  3. with a dash inserted between the leading letters and digits
//  4. with underscores converted to dashes
//  5. with dashes converted to underscores
//
// An empty result after all five attempts means no images exist for the
// record. Every matched file has its permissions corrected as a side
// effect; permission failures are logged, never fatal.
func (m *Matcher) Match(imageBase string) []string {
	base := imageBase
	for _, normalize := range []func(string) string{
		func(s string) string { return s },
		strings.ToLower,
		func(s string) string { return leadingAlphaDigits.ReplaceAllString(s, "$1-$2") },
		func(s string) string { return strings.ReplaceAll(s, "_", "-") },
		func(s string) string { return strings.ReplaceAll(s, "-", "_") },
	} {
		base = normalize(base)
		slog.Debug("Looking for images", "pattern", base+"*")
		if matches := m.listFiles(base); len(matches) > 0 {
			m.fixPermissions(matches)
			return matches
		}
	}
	return nil
}

func (m *Matcher) listFiles(imageBase string) []string {
	var matches []string
	for _, file := range m.lister.Files() {
		if ok, err := path.Match(imageBase+"*", file); err == nil && ok {
			matches = append(matches, file)
		}
	}
	sort.Strings(matches)
	return matches
}

func (m *Matcher) fixPermissions(filenames []string) {
	if m.fixer == nil {
		return
	}
	for _, filename := range filenames {
		if err := m.fixer.EnsureWorldReadable(filename); err != nil {
			slog.Warn("Could not fix image permissions", "filename", filename, "error", err)
		}
	}
}
