package ingest

import (
	"context"
	"time"

	"github.com/sig-0/premiums/storage/types"
)

// Provider is a single scheduled premium snapshot provider
type Provider interface {
	// Name returns the human-readable name of the provider
	Name() string

	// Interval returns the interval at which the provider should be called
	Interval() time.Duration

	// Fetch is the provider's main fetch job, yielding premium snapshots
	Fetch(context.Context) ([]*types.Snapshot, error)
}
