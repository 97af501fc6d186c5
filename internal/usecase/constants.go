package usecase

import "time"

const (
	// DefaultBatchSize is the number of rows written per append operation.
	DefaultBatchSize = 1000

	// DefaultConnCheckTimeout bounds the connectivity check before an ingestion.
	DefaultConnCheckTimeout = 5 * time.Second
)
