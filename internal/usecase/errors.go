package usecase

import "errors"

var (
	// ErrUnknownIndex means the requested index is not in the registry.
	ErrUnknownIndex = errors.New("unknown index")
	// ErrNoData means neither the cache nor the upstream produced data.
	ErrNoData = errors.New("no data available")
	// ErrNoEvaluations is the explicit marker for an accuracy query with
	// no evaluated predictions to aggregate.
	ErrNoEvaluations = errors.New("no evaluated predictions")
)
