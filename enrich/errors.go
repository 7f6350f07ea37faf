package enrich

import "errors"

var (
	// ErrGeneratorRequired is returned when a generation backend is not provided.
	ErrGeneratorRequired = errors.New("generator required")
)
