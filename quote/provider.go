package quote

import (
	"context"
	"fmt"
	"time"

	"github.com/sig-0/premiums/storage/types"
)

// ScheduledProvider adapts an Orchestrator and a fiat list into a
// periodic ingest provider, one snapshot per fiat per run
type ScheduledProvider struct {
	orchestrator *Orchestrator
	fiats        []types.Currency
	interval     time.Duration
}

// NewScheduledProvider creates a new scheduled snapshot provider
func NewScheduledProvider(
	orchestrator *Orchestrator,
	fiats []types.Currency,
	interval time.Duration,
) *ScheduledProvider {
	return &ScheduledProvider{
		orchestrator: orchestrator,
		fiats:        fiats,
		interval:     interval,
	}
}

func (p *ScheduledProvider) Name() string {
	return fmt.Sprintf("P2P premiums (%s)", p.orchestrator.config.Asset)
}

func (p *ScheduledProvider) Interval() time.Duration {
	return p.interval
}

// Fetch computes one snapshot per configured fiat. Data shortages are
// embedded in the snapshots themselves, so the only error here is a
// rate-contract violation
func (p *ScheduledProvider) Fetch(ctx context.Context) ([]*types.Snapshot, error) {
	snapshots := make([]*types.Snapshot, 0, len(p.fiats))

	for _, fiat := range p.fiats {
		snapshot, err := p.orchestrator.Snapshot(ctx, fiat)
		if err != nil {
			return nil, fmt.Errorf("unable to snapshot %s: %w", fiat, err)
		}

		snapshots = append(snapshots, snapshot)
	}

	return snapshots, nil
}
