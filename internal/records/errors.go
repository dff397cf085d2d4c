package records

import (
	"errors"
	"fmt"
)

// InsufficientMetadataError reports that a mandatory SourceRecord field
// could not be resolved from the backing source. It is fatal for the
// record it names, never for the batch.
type InsufficientMetadataError struct {
	Field string
}

func (e *InsufficientMetadataError) Error() string {
	return fmt.Sprintf("not enough metadata to resolve %s", e.Field)
}

// ErrFieldUnsupported is returned by adapters whose backing source never
// carried a given field at all (as opposed to a source that should have
// it but doesn't).
var ErrFieldUnsupported = errors.New("field not supported by this record source")
