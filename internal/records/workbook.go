package records

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Worksheet names expected in a digitization metadata workbook.
const (
	manifestSheet     = "Manifest"
	digitizationSheet = "Digitization"
)

// Manifest worksheet column order. The schema is fixed by the template
// archivists fill in, one row per digitized item.
const (
	colIdentifier = iota
	colHandle
	colTitle
	colAttribution
	colCitation
)

// WorkbookRow adapts one row of the Manifest worksheet. The identifier
// can be supplied from the sibling Digitization worksheet when the
// manifest row's own identifier column is empty or wrong.
type WorkbookRow struct {
	row      []string
	override string
	links    Links
}

func NewWorkbookRow(row []string, override string, links Links) *WorkbookRow {
	return &WorkbookRow{row: row, override: override, links: links}
}

// ReadWorkbook loads every data row of a digitization workbook. When the
// Digitization worksheet is present it must have the same number of rows
// as the Manifest worksheet, and its first column supplies the identifier
// for the matching manifest row.
func ReadWorkbook(path string, links Links) ([]SourceRecord, error) {
	workbook, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", path, err)
	}
	defer workbook.Close()

	manifestRows, err := workbook.GetRows(manifestSheet)
	if err != nil {
		return nil, fmt.Errorf("reading %s worksheet: %w", manifestSheet, err)
	}

	var digitizationRows [][]string
	if index, _ := workbook.GetSheetIndex(digitizationSheet); index >= 0 {
		digitizationRows, err = workbook.GetRows(digitizationSheet)
		if err != nil {
			return nil, fmt.Errorf("reading %s worksheet: %w", digitizationSheet, err)
		}
		if len(digitizationRows) != len(manifestRows) {
			return nil, fmt.Errorf("row count mismatch between %s (%d) and %s (%d) worksheets",
				digitizationSheet, len(digitizationRows), manifestSheet, len(manifestRows))
		}
	}

	var out []SourceRecord
	for i, row := range manifestRows {
		// Row 0 is the header.
		if i == 0 {
			continue
		}
		override := ""
		if digitizationRows != nil {
			override = cell(digitizationRows[i], colIdentifier)
		}
		out = append(out, NewWorkbookRow(row, override, links))
	}
	return out, nil
}

func (r *WorkbookRow) Identifier() (string, error) {
	if r.override != "" {
		return r.override, nil
	}
	if identifier := cell(r.row, colIdentifier); identifier != "" {
		return identifier, nil
	}
	return "", &InsufficientMetadataError{Field: "identifier"}
}

// CatalogIdentifier matches Identifier: the Digitization worksheet
// supplies the item's own identifier, not an image-name alias.
func (r *WorkbookRow) CatalogIdentifier() (string, error) {
	return r.Identifier()
}

func (r *WorkbookRow) Title() (string, error) {
	if title := cell(r.row, colTitle); title != "" {
		return title, nil
	}
	return "", &InsufficientMetadataError{Field: "title"}
}

// PublicationYear fails unconditionally: the workbook template never
// carried a reliable date column.
func (r *WorkbookRow) PublicationYear() (string, error) {
	return "", fmt.Errorf("publication year: %w", ErrFieldUnsupported)
}

func (r *WorkbookRow) Citation() (string, bool) {
	citation := cell(r.row, colCitation)
	return citation, citation != ""
}

func (r *WorkbookRow) Attribution() (string, bool) {
	attribution := cell(r.row, colAttribution)
	return attribution, attribution != ""
}

func (r *WorkbookRow) ManifestURL() (string, error) {
	identifier, err := r.Identifier()
	if err != nil {
		return "", err
	}
	return r.links.ManifestURL(identifier), nil
}

// HandleURL prefers the handle recorded in the workbook, since those rows
// were registered ahead of digitization; the derived URL is a fallback.
func (r *WorkbookRow) HandleURL() (string, error) {
	if handle := cell(r.row, colHandle); handle != "" {
		return handle, nil
	}
	identifier, err := r.Identifier()
	if err != nil {
		return "", err
	}
	return r.links.HandleURL(identifier), nil
}

func cell(row []string, index int) string {
	if index >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[index])
}
